// Package voice bridges the chat to speech: one-shot speech-to-text feeding
// the composer, and text-to-speech for assistant replies. The bridge is an
// explicit three-state machine so adapter error and completion paths cannot
// leave listening and voice-mode flags inconsistent.
package voice

import (
	"context"
	"strings"
	"sync"

	"textora/internal/logging"
)

// State is the bridge's listening state.
type State int

const (
	Idle State = iota
	Listening
	Unsupported
)

// String returns the display name for each state.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Listening:
		return "Listening"
	default:
		return "Unsupported"
	}
}

// Recognizer captures one utterance and returns the final transcript.
// Implementations are one-shot: a single listen, final results only.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Speaker speaks text aloud. Speak blocks until the utterance finishes or is
// cancelled; Cancel stops any in-flight utterance immediately.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Bridge owns the voice input/output state. Capability is fixed at
// construction; a nil adapter permanently disables that direction.
type Bridge struct {
	mu         sync.Mutex
	recognizer Recognizer
	speaker    Speaker
	state      State
	voiceMode  bool
	muted      bool

	listenCancel context.CancelFunc
}

// NewBridge builds a bridge from whatever adapters are available.
func NewBridge(rec Recognizer, spk Speaker, muted bool) *Bridge {
	b := &Bridge{recognizer: rec, speaker: spk, muted: muted}
	if rec == nil {
		b.state = Unsupported
	}
	return b
}

// SupportsInput reports whether speech-to-text is available.
func (b *Bridge) SupportsInput() bool { return b.recognizer != nil }

// SupportsOutput reports whether speech synthesis is available.
func (b *Bridge) SupportsOutput() bool { return b.speaker != nil }

// State returns the current listening state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// VoiceMode reports whether voice input mode is asserted.
func (b *Bridge) VoiceMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.voiceMode
}

// Muted reports whether speech output is muted.
func (b *Bridge) Muted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}

// ToggleListen flips voice input. Returns true when a listen should be
// started; toggling while listening stops the in-flight listen and deasserts
// voice mode. On unsupported platforms it is a no-op.
func (b *Bridge) ToggleListen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Unsupported:
		return false
	case Listening:
		if b.listenCancel != nil {
			b.listenCancel()
			b.listenCancel = nil
		}
		b.state = Idle
		b.voiceMode = false
		logging.Voice("voice input: off")
		return false
	default:
		b.state = Listening
		b.voiceMode = true
		logging.Voice("voice input: on")
		return true
	}
}

// Listen runs the recognizer for one utterance. Called off the UI goroutine;
// the bridge keeps the cancel handle so a toggle-off can abort it.
func (b *Bridge) Listen(ctx context.Context) (string, error) {
	b.mu.Lock()
	if b.recognizer == nil {
		b.mu.Unlock()
		return "", context.Canceled
	}
	ctx, cancel := context.WithCancel(ctx)
	b.listenCancel = cancel
	rec := b.recognizer
	b.mu.Unlock()
	defer cancel()

	return rec.Listen(ctx)
}

// ListenDone records adapter-reported completion: back to Idle, voice mode
// deasserted. Voice is a one-shot listen, not a persistent mode.
func (b *Bridge) ListenDone() {
	b.settle()
}

// ListenFailed records an adapter error; the machine falls back to Idle and
// voice mode is deasserted.
func (b *Bridge) ListenFailed(err error) {
	logging.VoiceError("recognition failed: %v", err)
	b.settle()
}

func (b *Bridge) settle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Listening {
		b.state = Idle
	}
	b.voiceMode = false
	b.listenCancel = nil
}

// Speak voices text once. Skipped when output is unsupported or muted; any
// previous utterance is cancelled first.
func (b *Bridge) Speak(ctx context.Context, text string) error {
	b.mu.Lock()
	spk := b.speaker
	muted := b.muted
	b.mu.Unlock()
	if spk == nil || muted || text == "" {
		return nil
	}
	spk.Cancel()
	logging.Voice("speaking %d chars", len(text))
	return spk.Speak(ctx, text)
}

// SetMuted flips mute. Muting cancels any in-flight utterance immediately.
func (b *Bridge) SetMuted(muted bool) {
	b.mu.Lock()
	b.muted = muted
	spk := b.speaker
	b.mu.Unlock()
	if muted && spk != nil {
		spk.Cancel()
	}
}

// CancelSpeech stops any in-flight utterance, e.g. when starting a new chat.
func (b *Bridge) CancelSpeech() {
	b.mu.Lock()
	spk := b.speaker
	b.mu.Unlock()
	if spk != nil {
		spk.Cancel()
	}
}

// AppendTranscript merges a recognized transcript into the composer text,
// space-joined and trimmed.
func AppendTranscript(existing, transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return transcript
	}
	return strings.TrimSpace(existing + " " + transcript)
}
