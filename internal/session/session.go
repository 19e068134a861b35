package session

import (
	"time"

	"github.com/google/uuid"

	"textora/internal/logging"
)

// Panel enumerates the side panels. Exactly one may be open at a time;
// modeling this as a single value makes invalid combinations unrepresentable.
type Panel int

const (
	PanelNone Panel = iota
	PanelHistory
	PanelSettings
	PanelProfile
)

// HistoryEntry is the archival summary of a finished session. Never mutated
// after creation.
type HistoryEntry struct {
	ID      string
	Date    string
	Time    string
	Preview string
	Count   int
}

// previewLimit is the number of characters of the last non-empty message
// carried into a history entry.
const previewLimit = 80

// Session is the conversation session controller. All mutation happens on the
// UI goroutine in response to discrete events, so there is no locking.
type Session struct {
	messages []Message
	history  []HistoryEntry
	nextID   int64

	activePanel Panel
	modalImage  *CarouselImage
	lastSpoken  int64

	now func() time.Time
}

// New returns an empty session using the wall clock for timestamps.
func New() *Session {
	return &Session{now: time.Now}
}

// NewWithClock returns an empty session with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Session {
	return &Session{now: now}
}

func (s *Session) stamp() string {
	return s.now().Format("15:04:05")
}

func (s *Session) allocID() int64 {
	s.nextID++
	return s.nextID
}

// Messages returns the log in display order.
func (s *Session) Messages() []Message { return s.messages }

// Len reports the current log length.
func (s *Session) Len() int { return len(s.messages) }

// FileMessageCount reports how many file_upload messages the log holds.
func (s *Session) FileMessageCount() int {
	n := 0
	for _, m := range s.messages {
		if m.Kind == KindFileUpload {
			n++
		}
	}
	return n
}

// AppendUserText appends a user text message.
func (s *Session) AppendUserText(text string) Message {
	return s.append(Message{Sender: SenderUser, Kind: KindText, Text: text})
}

// AppendAIText appends an assistant text message.
func (s *Session) AppendAIText(text string) Message {
	return s.append(Message{Sender: SenderAI, Kind: KindText, Text: text})
}

// AppendAIError appends an error-flagged assistant text message.
func (s *Session) AppendAIError(text string) Message {
	return s.append(Message{Sender: SenderAI, Kind: KindText, Text: text, IsError: true})
}

// AppendUpload materializes a pending attachment as a completed file_upload
// message. No real upload progress is modeled; the status is display-only.
func (s *Session) AppendUpload(u Upload) Message {
	return s.append(Message{
		Sender:      SenderUser,
		Kind:        KindFileUpload,
		FileName:    u.Name,
		FileSize:    u.Size,
		FileType:    u.MIME,
		PreviewPath: u.PreviewPath,
		IsPDF:       u.IsPDF,
		Status:      UploadCompleted,
	})
}

// AppendCarousel appends an assistant image_carousel message holding all
// images produced by one AI turn. Image IDs share the message ID space so
// they stay unique within the session.
func (s *Session) AppendCarousel(urls []string) Message {
	images := make([]CarouselImage, 0, len(urls))
	for _, u := range urls {
		images = append(images, CarouselImage{ID: s.allocID(), URL: u})
	}
	return s.append(Message{Sender: SenderAI, Kind: KindImageCarousel, Images: images})
}

func (s *Session) append(m Message) Message {
	m.ID = s.allocID()
	m.Timestamp = s.stamp()
	s.messages = append(s.messages, m)
	return m
}

// History returns the archive, oldest first.
func (s *Session) History() []HistoryEntry { return s.history }

// StartNew archives the current log (when non-empty) and clears it. The
// preview is the first 80 characters of the most recent message carrying
// non-empty text; file- and image-only messages are skipped. Reports whether
// an archive entry was created.
func (s *Session) StartNew() bool {
	archived := false
	if len(s.messages) > 0 {
		preview := ""
		for i := len(s.messages) - 1; i >= 0; i-- {
			if s.messages[i].Text != "" {
				preview = s.messages[i].Text
				break
			}
		}
		if len(preview) > previewLimit {
			preview = preview[:previewLimit]
		}
		now := s.now()
		s.history = append(s.history, HistoryEntry{
			ID:      uuid.NewString(),
			Date:    now.Format("2006-01-02"),
			Time:    now.Format("15:04:05"),
			Preview: preview,
			Count:   len(s.messages),
		})
		archived = true
		logging.Session("archived session: %d messages, preview=%q", len(s.messages), preview)
	}
	s.messages = nil
	s.modalImage = nil
	s.lastSpoken = 0
	return archived
}

// TogglePanel opens the given panel, closing any other; re-invoking the
// opener for the already-open panel closes it.
func (s *Session) TogglePanel(p Panel) {
	if s.activePanel == p {
		s.activePanel = PanelNone
		return
	}
	s.activePanel = p
}

// ClosePanels closes whichever panel is open.
func (s *Session) ClosePanels() { s.activePanel = PanelNone }

// ActivePanel reports which panel is open, if any.
func (s *Session) ActivePanel() Panel { return s.activePanel }

// OpenImage looks up an image by ID within the most recent image_carousel
// message only and sets it as the modal target. Reports whether it was found.
func (s *Session) OpenImage(id int64) bool {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Kind != KindImageCarousel {
			continue
		}
		for _, img := range m.Images {
			if img.ID == id {
				s.modalImage = &img
				return true
			}
		}
		return false
	}
	return false
}

// CloseImage clears the modal target.
func (s *Session) CloseImage() { s.modalImage = nil }

// ModalImage returns the currently enlarged image, or nil.
func (s *Session) ModalImage() *CarouselImage { return s.modalImage }

// LatestCarousel returns the most recent image_carousel message, if any.
func (s *Session) LatestCarousel() (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Kind == KindImageCarousel {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// NextUnspoken returns the newest non-error assistant text message that has
// not been handed out for speech yet. Tracking by ID means re-renders never
// double-speak a message.
func (s *Session) NextUnspoken() (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Sender == SenderAI && m.Kind == KindText && m.Text != "" && !m.IsError {
			if m.ID == s.lastSpoken {
				return Message{}, false
			}
			return m, true
		}
	}
	return Message{}, false
}

// MarkSpoken records that the given message has been spoken.
func (s *Session) MarkSpoken(id int64) { s.lastSpoken = id }
