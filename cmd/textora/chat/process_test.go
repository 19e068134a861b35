package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"textora/internal/config"
	"textora/internal/responder"
	"textora/internal/session"
	"textora/internal/voice"
)

type fakeResponder struct {
	mu         sync.Mutex
	calls      int
	lastPrompt string
	lastImage  *responder.Image
	reply      responder.Reply
	err        error
}

func (f *fakeResponder) Generate(ctx context.Context, prompt string, image *responder.Image) (responder.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastPrompt = prompt
	f.lastImage = image
	if f.err != nil {
		return responder.Reply{}, f.err
	}
	return f.reply, nil
}

func (f *fakeResponder) Endpoint() string { return "http://localhost:5000/generate" }

func newTestModel(t *testing.T, fake *fakeResponder) Model {
	t.Helper()
	m := New(Options{
		Workspace: t.TempDir(),
		Config:    config.Default(),
		Client:    fake,
		Bridge:    voice.NewBridge(nil, nil, false),
	})
	m.showLanding = false
	return m
}

func writeAttachment(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("filedata"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// pump executes a command tree, feeding resulting messages back through
// Update until quiescent. Spinner ticks are dropped; they re-arm forever.
func pump(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		next, nextCmd := m.Update(msg)
		m = next.(Model)
		queue = append(queue, nextCmd)
	}
	return m
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	fake := &fakeResponder{}
	m := newTestModel(t, fake)

	m2, cmd := m.handleSubmit()
	if cmd != nil {
		t.Error("empty submit produced a command")
	}
	if m2.session.Len() != 0 {
		t.Errorf("log mutated: %d messages", m2.session.Len())
	}
	if fake.calls != 0 {
		t.Errorf("network calls = %d", fake.calls)
	}
}

func TestSubmitTextSuccess(t *testing.T) {
	fake := &fakeResponder{reply: responder.Reply{Text: "hi back"}}
	m := newTestModel(t, fake)
	m.textarea.SetValue("hello")

	m2, cmd := m.handleSubmit()
	if !m2.isLoading {
		t.Error("typing indicator not set")
	}
	msgs := m2.session.Messages()
	if len(msgs) != 1 || msgs[0].Sender != session.SenderUser || msgs[0].Text != "hello" {
		t.Fatalf("messages = %+v", msgs)
	}
	if m2.textarea.Value() != "" {
		t.Error("composer not cleared")
	}

	m3 := pump(t, m2, cmd)
	if fake.calls != 1 {
		t.Fatalf("network calls = %d", fake.calls)
	}
	if m3.isLoading {
		t.Error("typing indicator not cleared")
	}
	msgs = m3.session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	last := msgs[1]
	if last.Sender != session.SenderAI || last.Text != "hi back" || last.IsError {
		t.Errorf("reply = %+v", last)
	}
}

func TestSubmitFailureAppendsErrorTemplate(t *testing.T) {
	fake := &fakeResponder{err: errors.New("Server error: 500")}
	m := newTestModel(t, fake)
	m.textarea.SetValue("hello")

	m2, cmd := m.handleSubmit()
	m3 := pump(t, m2, cmd)

	if m3.isLoading {
		t.Error("typing indicator not cleared on failure")
	}
	msgs := m3.session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	last := msgs[1]
	if !last.IsError || last.Sender != session.SenderAI {
		t.Fatalf("reply = %+v", last)
	}
	want := "Sorry, I encountered an error: Server error: 500. Please ensure the backend server is running on http://localhost:5000/generate"
	if last.Text != want {
		t.Errorf("error text = %q", last.Text)
	}
}

func TestAttachmentOnlyClarificationNoNetworkCall(t *testing.T) {
	fake := &fakeResponder{}
	m := newTestModel(t, fake)
	m.queue.Enqueue(writeAttachment(t, t.TempDir(), "photo.png"))

	m2, cmd := m.handleSubmit()
	m3 := pump(t, m2, cmd)

	if fake.calls != 0 {
		t.Fatalf("network calls = %d, want 0", fake.calls)
	}
	msgs := m3.session.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Kind != session.KindFileUpload || msgs[0].Status != session.UploadCompleted {
		t.Errorf("file message = %+v", msgs[0])
	}
	if msgs[1].Sender != session.SenderAI || msgs[1].Text != filesOnlyReply {
		t.Errorf("clarification = %+v", msgs[1])
	}
	if m3.queue.Len() != 0 {
		t.Error("queue not drained")
	}
}

func TestImageWithTextSingleRequestCarriesBoth(t *testing.T) {
	fake := &fakeResponder{reply: responder.Reply{Text: "a cat"}}
	m := newTestModel(t, fake)
	m.queue.Enqueue(writeAttachment(t, t.TempDir(), "cat.png"))
	m.textarea.SetValue("Describe this")

	m2, cmd := m.handleSubmit()
	m3 := pump(t, m2, cmd)

	if fake.calls != 1 {
		t.Fatalf("network calls = %d, want 1", fake.calls)
	}
	if fake.lastPrompt != "Describe this" {
		t.Errorf("prompt = %q", fake.lastPrompt)
	}
	if fake.lastImage == nil || fake.lastImage.Name != "cat.png" || string(fake.lastImage.Data) != "filedata" {
		t.Errorf("image = %+v", fake.lastImage)
	}

	msgs := m3.session.Messages()
	if len(msgs) != 3 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Kind != session.KindFileUpload || msgs[1].Kind != session.KindText || msgs[2].Sender != session.SenderAI {
		t.Errorf("log shape wrong: %+v", msgs)
	}
}

func TestOnlyFirstImageAccompaniesPrompt(t *testing.T) {
	fake := &fakeResponder{reply: responder.Reply{Text: "ok"}}
	m := newTestModel(t, fake)
	dir := t.TempDir()
	m.queue.Enqueue(writeAttachment(t, dir, "first.png"), writeAttachment(t, dir, "second.png"))
	m.textarea.SetValue("compare")

	m2, cmd := m.handleSubmit()
	m3 := pump(t, m2, cmd)

	if fake.lastImage == nil || fake.lastImage.Name != "first.png" {
		t.Errorf("image = %+v", fake.lastImage)
	}
	// Both attachments still show in the log.
	if m3.session.FileMessageCount() != 2 {
		t.Errorf("file messages = %d", m3.session.FileMessageCount())
	}
}

func TestSubmitIgnoredWhileLoading(t *testing.T) {
	fake := &fakeResponder{}
	m := newTestModel(t, fake)
	m.isLoading = true
	m.textarea.SetValue("hello")

	m2, cmd := m.handleSubmit()
	if cmd != nil || m2.session.Len() != 0 || fake.calls != 0 {
		t.Error("submit ran while a request was in flight")
	}
	if m2.textarea.Value() != "hello" {
		t.Error("composer cleared while loading")
	}
}

func TestReplyWithImagesAppendsCarousel(t *testing.T) {
	fake := &fakeResponder{reply: responder.Reply{
		Text:   "generated",
		Images: []string{"http://x/1.png", "http://x/2.png"},
	}}
	m := newTestModel(t, fake)
	m.textarea.SetValue("draw a cat")

	m2, cmd := m.handleSubmit()
	m3 := pump(t, m2, cmd)

	msgs := m3.session.Messages()
	if len(msgs) != 3 {
		t.Fatalf("messages = %d", len(msgs))
	}
	last := msgs[2]
	if last.Kind != session.KindImageCarousel || len(last.Images) != 2 {
		t.Fatalf("carousel = %+v", last)
	}
}

func TestQuickActionSeedsPromptAndSends(t *testing.T) {
	fake := &fakeResponder{reply: responder.Reply{Text: "sure"}}
	m := newTestModel(t, fake)
	m.showLanding = true

	m2, cmd := m.quickAction("Upload an image.")
	m3 := pump(t, m2, cmd)

	if m3.showLanding {
		t.Error("still on landing")
	}
	msgs := m3.session.Messages()
	if len(msgs) != 3 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Text != greeting {
		t.Errorf("greeting missing: %+v", msgs[0])
	}
	if msgs[1].Sender != session.SenderUser || msgs[1].Text != "Upload an image." {
		t.Errorf("seeded prompt = %+v", msgs[1])
	}
	if fake.lastPrompt != "Upload an image." {
		t.Errorf("prompt sent = %q", fake.lastPrompt)
	}
}

func TestEnterChatSeedsGreetingOnce(t *testing.T) {
	fake := &fakeResponder{}
	m := newTestModel(t, fake)
	m.showLanding = true

	m2, _ := m.enterChat()
	if m2.session.Len() != 1 || m2.session.Messages()[0].Text != greeting {
		t.Fatalf("messages = %+v", m2.session.Messages())
	}

	// Re-entering a non-empty chat does not re-seed.
	m2.showLanding = true
	m3, _ := m2.enterChat()
	if m3.session.Len() != 1 {
		t.Errorf("greeting duplicated: %d messages", m3.session.Len())
	}
}

func TestNewChatArchivesAndReturnsToLanding(t *testing.T) {
	fake := &fakeResponder{reply: responder.Reply{Text: "hi back"}}
	m := newTestModel(t, fake)
	m.textarea.SetValue("hello")
	m2, cmd := m.handleSubmit()
	m3 := pump(t, m2, cmd)

	m4 := m3.startNewChat()
	if !m4.showLanding {
		t.Error("did not return to landing")
	}
	if m4.session.Len() != 0 {
		t.Errorf("log not cleared: %d", m4.session.Len())
	}
	hist := m4.session.History()
	if len(hist) != 1 {
		t.Fatalf("history = %d", len(hist))
	}
	if !strings.HasPrefix(hist[0].Preview, "hi back") {
		t.Errorf("preview = %q", hist[0].Preview)
	}
}

func TestNewChatReleasesMessagePreviews(t *testing.T) {
	fake := &fakeResponder{}
	m := newTestModel(t, fake)
	m.queue.Enqueue(writeAttachment(t, t.TempDir(), "photo.png"))
	preview := m.queue.Items()[0].PreviewPath
	if preview == "" {
		t.Fatal("no preview created")
	}

	m2, cmd := m.handleSubmit() // attachment-only send moves the preview into the log
	m3 := pump(t, m2, cmd)
	m3.startNewChat()

	if _, err := os.Stat(preview); !os.IsNotExist(err) {
		t.Errorf("preview still on disk: %v", err)
	}
}
