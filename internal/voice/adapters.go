package voice

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"textora/internal/logging"
)

// Fixed utterance parameters. The synthesis side is fire-and-forget with a
// constant rate and volume; there are no per-utterance knobs.
const (
	speechRateWPM  = "175"
	espeakAmp      = "90" // 0-200, ~0.9 volume
	maxRecordSecs  = "8"
	whisperLocale  = "en"
	openaiTTSSpeed = 1.0
)

// Options selects and configures the platform adapters. Binaries are
// discovered on PATH unless overridden.
type Options struct {
	OpenAIKey     string
	SpeakCommand  string
	RecordCommand string
	PlayCommand   string
}

// Detect probes the platform once at startup and returns a bridge wired with
// whatever speech capability exists. Missing capability leaves the
// corresponding direction disabled rather than failing.
func Detect(opts Options, muted bool) *Bridge {
	spk := detectSpeaker(opts)
	rec := detectRecognizer(opts)
	logging.Boot("voice capability: input=%v output=%v", rec != nil, spk != nil)
	return NewBridge(rec, spk, muted)
}

func detectSpeaker(opts Options) Speaker {
	if opts.SpeakCommand != "" {
		if path, err := exec.LookPath(opts.SpeakCommand); err == nil {
			return newExecSpeaker(path)
		}
	}
	for _, bin := range []string{"say", "espeak-ng", "espeak"} {
		if path, err := exec.LookPath(bin); err == nil {
			return newExecSpeaker(path)
		}
	}
	if opts.OpenAIKey != "" {
		if player := findPlayer(opts.PlayCommand); player != "" {
			return newOpenAISpeaker(opts.OpenAIKey, player)
		}
	}
	return nil
}

func detectRecognizer(opts Options) Recognizer {
	// Recognition needs both a capture binary and the transcription API.
	if opts.OpenAIKey == "" {
		return nil
	}
	recorder := findRecorder(opts.RecordCommand)
	if recorder == "" {
		return nil
	}
	return &openaiRecognizer{
		client:   openai.NewClient(opts.OpenAIKey),
		recorder: recorder,
	}
}

func findRecorder(override string) string {
	candidates := []string{"rec", "sox", "arecord"}
	if override != "" {
		candidates = append([]string{override}, candidates...)
	}
	for _, bin := range candidates {
		if path, err := exec.LookPath(bin); err == nil {
			return path
		}
	}
	return ""
}

func findPlayer(override string) string {
	candidates := []string{"afplay", "mpg123", "ffplay", "aplay"}
	if override != "" {
		candidates = append([]string{override}, candidates...)
	}
	for _, bin := range candidates {
		if path, err := exec.LookPath(bin); err == nil {
			return path
		}
	}
	return ""
}

// execSpeaker speaks through a platform TTS binary (say or espeak).
type execSpeaker struct {
	bin string

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newExecSpeaker(bin string) *execSpeaker {
	return &execSpeaker{bin: bin}
}

func (s *execSpeaker) args(text string) []string {
	switch {
	case isEspeak(s.bin):
		return []string{"-s", speechRateWPM, "-a", espeakAmp, text}
	default: // say
		return []string{"-r", speechRateWPM, text}
	}
}

func isEspeak(bin string) bool {
	base := filepath.Base(bin)
	return base == "espeak" || base == "espeak-ng"
}

func (s *execSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	cmd := exec.CommandContext(ctx, s.bin, s.args(text)...)
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}
	return nil
}

func (s *execSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// openaiSpeaker synthesizes speech via the OpenAI audio API and plays the
// resulting clip with a local player binary.
type openaiSpeaker struct {
	client *openai.Client
	player string

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newOpenAISpeaker(apiKey, player string) *openaiSpeaker {
	return &openaiSpeaker{client: openai.NewClient(apiKey), player: player}
}

func (s *openaiSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.VoiceAlloy,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          openaiTTSSpeed,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	clip, err := os.CreateTemp("", "textora-tts-*.mp3")
	if err != nil {
		return err
	}
	defer os.Remove(clip.Name())
	if _, err := io.Copy(clip, resp); err != nil {
		clip.Close()
		return err
	}
	if err := clip.Close(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, s.player, clip.Name())
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("speech playback: %w", err)
	}
	return nil
}

func (s *openaiSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// openaiRecognizer captures one clip with a local recorder binary and
// transcribes it via the OpenAI audio API. Non-continuous, final results
// only, fixed locale.
type openaiRecognizer struct {
	client   *openai.Client
	recorder string
}

func (r *openaiRecognizer) Listen(ctx context.Context) (string, error) {
	clip, err := os.CreateTemp("", "textora-stt-*.wav")
	if err != nil {
		return "", err
	}
	clip.Close()
	defer os.Remove(clip.Name())

	if err := r.record(ctx, clip.Name()); err != nil {
		return "", err
	}

	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: clip.Name(),
		Language: whisperLocale,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}

func (r *openaiRecognizer) record(ctx context.Context, path string) error {
	var args []string
	switch {
	case isSox(r.recorder):
		// Stop on 1.5s of trailing silence, cap the clip length.
		args = []string{"-q", path, "silence", "1", "0.1", "2%", "1", "1.5", "2%", "trim", "0", maxRecordSecs}
		if filepath.Base(r.recorder) == "sox" {
			args = append([]string{"-d"}, args...)
		}
	default: // arecord
		args = []string{"-q", "-f", "cd", "-d", maxRecordSecs, path}
	}
	cmd := exec.CommandContext(ctx, r.recorder, args...)
	if err := cmd.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("audio capture: %w", err)
	}
	return ctx.Err()
}

func isSox(bin string) bool {
	b := filepath.Base(bin)
	return b == "rec" || b == "sox"
}
