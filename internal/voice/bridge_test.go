package voice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Listen(ctx context.Context) (string, error) {
	return f.text, f.err
}

type fakeSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (f *fakeSpeaker) Speak(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeaker) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeSpeaker) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...), f.cancels
}

func TestNilRecognizerIsUnsupported(t *testing.T) {
	b := NewBridge(nil, &fakeSpeaker{}, false)
	if b.State() != Unsupported {
		t.Fatalf("state = %v", b.State())
	}
	if b.SupportsInput() {
		t.Error("input reported supported")
	}
	if !b.SupportsOutput() {
		t.Error("output reported unsupported")
	}
	if b.ToggleListen() {
		t.Error("toggle on unsupported bridge started a listen")
	}
}

func TestToggleListenTransitions(t *testing.T) {
	b := NewBridge(&fakeRecognizer{text: "hello"}, nil, false)

	if !b.ToggleListen() {
		t.Fatal("first toggle should start listening")
	}
	if b.State() != Listening || !b.VoiceMode() {
		t.Fatalf("state = %v voiceMode = %v", b.State(), b.VoiceMode())
	}

	// Toggle-off aborts and deasserts voice mode.
	if b.ToggleListen() {
		t.Fatal("second toggle should stop listening")
	}
	if b.State() != Idle || b.VoiceMode() {
		t.Fatalf("state = %v voiceMode = %v", b.State(), b.VoiceMode())
	}
}

func TestListenDoneSettles(t *testing.T) {
	b := NewBridge(&fakeRecognizer{text: "hello"}, nil, false)
	b.ToggleListen()

	text, err := b.Listen(context.Background())
	if err != nil || text != "hello" {
		t.Fatalf("Listen = %q, %v", text, err)
	}
	b.ListenDone()
	if b.State() != Idle || b.VoiceMode() {
		t.Fatalf("state = %v voiceMode = %v", b.State(), b.VoiceMode())
	}
}

func TestListenFailedSettles(t *testing.T) {
	b := NewBridge(&fakeRecognizer{err: errors.New("mic broken")}, nil, false)
	b.ToggleListen()

	if _, err := b.Listen(context.Background()); err == nil {
		t.Fatal("expected recognizer error")
	}
	b.ListenFailed(errors.New("mic broken"))
	if b.State() != Idle || b.VoiceMode() {
		t.Fatalf("state = %v voiceMode = %v", b.State(), b.VoiceMode())
	}
}

func TestSpeakSkippedWhenMuted(t *testing.T) {
	spk := &fakeSpeaker{}
	b := NewBridge(nil, spk, true)

	if err := b.Speak(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	spoken, _ := spk.snapshot()
	if len(spoken) != 0 {
		t.Errorf("spoke while muted: %v", spoken)
	}
}

func TestSpeakCancelsPrevious(t *testing.T) {
	spk := &fakeSpeaker{}
	b := NewBridge(nil, spk, false)

	b.Speak(context.Background(), "first")
	b.Speak(context.Background(), "second")

	spoken, cancels := spk.snapshot()
	if len(spoken) != 2 {
		t.Fatalf("spoken = %v", spoken)
	}
	if cancels != 2 {
		t.Errorf("cancels = %d, want 2", cancels)
	}
}

func TestSpeakEmptyIsNoop(t *testing.T) {
	spk := &fakeSpeaker{}
	b := NewBridge(nil, spk, false)
	b.Speak(context.Background(), "")
	if spoken, _ := spk.snapshot(); len(spoken) != 0 {
		t.Errorf("spoke empty text: %v", spoken)
	}
}

func TestMuteCancelsInFlightUtterance(t *testing.T) {
	spk := &fakeSpeaker{}
	b := NewBridge(nil, spk, false)

	b.SetMuted(true)
	if _, cancels := spk.snapshot(); cancels != 1 {
		t.Errorf("mute did not cancel; cancels = %d", cancels)
	}
	if !b.Muted() {
		t.Error("not muted")
	}

	// Unmuting does not cancel again.
	b.SetMuted(false)
	if _, cancels := spk.snapshot(); cancels != 1 {
		t.Errorf("unmute cancelled; cancels = %d", cancels)
	}
}

func TestCancelSpeech(t *testing.T) {
	spk := &fakeSpeaker{}
	b := NewBridge(nil, spk, false)
	b.CancelSpeech()
	if _, cancels := spk.snapshot(); cancels != 1 {
		t.Errorf("cancels = %d", cancels)
	}
}

func TestAppendTranscript(t *testing.T) {
	cases := []struct {
		existing, transcript, want string
	}{
		{"", "hello", "hello"},
		{"draft", "more words", "draft more words"},
		{"draft", "  ", "draft"},
		{"  ", "hello", "hello"},
		{"draft ", "tail", "draft  tail"},
	}
	for _, tc := range cases {
		if got := AppendTranscript(tc.existing, tc.transcript); got != tc.want {
			t.Errorf("AppendTranscript(%q, %q) = %q, want %q", tc.existing, tc.transcript, got, tc.want)
		}
	}
}
