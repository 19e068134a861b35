// Package responder is the HTTP client for the remote AI responder: one
// multipart POST per turn carrying the prompt and, optionally, a single
// image attachment.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"textora/internal/logging"
)

// Acknowledgement is the reply text used when the responder returns a success
// body with neither a response nor a message field.
const Acknowledgement = "I received your message."

// DefaultEndpoint is the local development responder.
const DefaultEndpoint = "http://localhost:5000/generate"

// Config holds client construction options.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// DefaultConfig returns sensible defaults for a local responder.
func DefaultConfig() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Timeout:  2 * time.Minute,
	}
}

// Image is the raw bytes of an image attachment accompanying a prompt.
type Image struct {
	Name string
	Data []byte
}

// Client talks to the remote responder. Failures are terminal for the turn:
// no retry, no explicit per-request timeout beyond the client default.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a responder client.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Endpoint returns the configured responder URL, for error affordances.
func (c *Client) Endpoint() string { return c.endpoint }

// successBody is the expected shape of a 2xx reply.
type successBody struct {
	Response string   `json:"response"`
	Message  string   `json:"message"`
	Images   []string `json:"images"`
}

// Reply is a parsed success body. Images is non-empty only when the responder
// generated artwork alongside the text.
type Reply struct {
	Text   string
	Images []string
}

// errorBody is the optional shape of a non-2xx reply.
type errorBody struct {
	Error string `json:"error"`
}

// Generate posts the prompt (and optional image) and returns the reply.
// The reply text falls back from the response field to the message field to a
// generic acknowledgement.
func (c *Client) Generate(ctx context.Context, prompt string, image *Image) (Reply, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("prompt", prompt); err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}
	if image != nil {
		part, err := form.CreateFormFile("image", image.Name)
		if err != nil {
			return Reply{}, fmt.Errorf("build request: %w", err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return Reply{}, fmt.Errorf("build request: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	logging.Send("POST %s prompt_len=%d image=%v", c.endpoint, len(prompt), image != nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.SendError("request failed: %v", err)
		return Reply{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.SendError("read response: %v", err)
		return Reply{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Error detail comes from the optional error field; a body that
		// does not parse falls back to the status-coded message.
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		detail := eb.Error
		if detail == "" {
			detail = fmt.Sprintf("Server error: %d", resp.StatusCode)
		}
		logging.SendError("responder status %d: %s", resp.StatusCode, detail)
		return Reply{}, fmt.Errorf("%s", detail)
	}

	var sb successBody
	if err := json.Unmarshal(data, &sb); err != nil {
		logging.SendError("malformed response body: %v", err)
		return Reply{}, fmt.Errorf("malformed response: %w", err)
	}

	text := sb.Response
	if text == "" {
		text = sb.Message
	}
	if text == "" {
		text = Acknowledgement
	}
	logging.Send("reply_len=%d images=%d", len(text), len(sb.Images))
	return Reply{Text: text, Images: sb.Images}, nil
}
