package chat

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"textora/internal/attach"
	"textora/internal/logging"
	"textora/internal/responder"
	"textora/internal/session"
)

// enterChat leaves the landing screen, seeding the greeting into an empty log.
func (m Model) enterChat() (Model, tea.Cmd) {
	m.showLanding = false
	if m.session.Len() == 0 {
		m.session.AppendAIText(greeting)
	}
	m.refreshViewport()
	return m, m.speakLatest()
}

// quickAction enters the chat with a pre-seeded prompt and sends it.
func (m Model) quickAction(prompt string) (Model, tea.Cmd) {
	next, enterCmd := m.enterChat()
	next.textarea.SetValue(prompt)
	next, submitCmd := next.handleSubmit()
	return next, tea.Batch(enterCmd, submitCmd)
}

// handleSubmit runs one send: pending attachments become completed file_upload
// messages first, then the prompt goes to the responder. Attachments with no
// prompt get a local clarification reply and no network call. Submissions are
// ignored while a request is in flight.
func (m Model) handleSubmit() (Model, tea.Cmd) {
	if m.isLoading {
		return m, nil
	}
	input := strings.TrimSpace(m.textarea.Value())
	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	pending := m.queue.Drain()
	if input == "" && len(pending) == 0 {
		return m, nil
	}

	for _, u := range pending {
		m.session.AppendUpload(session.Upload{
			Name:        u.Name,
			Size:        u.Size,
			MIME:        u.MIME,
			PreviewPath: u.PreviewPath,
			IsPDF:       u.IsPDF,
		})
	}
	m.textarea.Reset()

	if input == "" {
		m.session.AppendAIText(filesOnlyReply)
		m.refreshViewport()
		return m, m.speakLatest()
	}

	m.session.AppendUserText(input)
	image := firstImage(pending)
	m.isLoading = true
	m.statusNote = ""
	m.refreshViewport()
	return m, tea.Batch(m.spinner.Tick, m.sendCmd(input, image))
}

// firstImage loads the bytes of the first image attachment in the batch. Later
// images stay in the log but are dropped from the request.
func firstImage(pending []*attach.PendingUpload) *responder.Image {
	for _, u := range pending {
		if !u.IsImage() {
			continue
		}
		data, err := os.ReadFile(u.Path)
		if err != nil {
			logging.Attach("read %s: %v", u.Path, err)
			return nil
		}
		return &responder.Image{Name: u.Name, Data: data}
	}
	return nil
}

func (m Model) sendCmd(prompt string, image *responder.Image) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		reply, err := client.Generate(context.Background(), prompt, image)
		if err != nil {
			return sendFailedMsg{err: err}
		}
		return replyMsg{reply: reply}
	}
}

func (m Model) listenCmd() tea.Cmd {
	bridge := m.bridge
	return func() tea.Msg {
		text, err := bridge.Listen(context.Background())
		return transcriptMsg{text: text, err: err}
	}
}

// speakLatest voices the newest unspoken assistant reply, at most once per
// message.
func (m Model) speakLatest() tea.Cmd {
	if m.bridge == nil || !m.bridge.SupportsOutput() || m.bridge.Muted() {
		return nil
	}
	msg, ok := m.session.NextUnspoken()
	if !ok {
		return nil
	}
	m.session.MarkSpoken(msg.ID)
	bridge := m.bridge
	return func() tea.Msg {
		if err := bridge.Speak(context.Background(), msg.Text); err != nil {
			logging.VoiceError("speak: %v", err)
		}
		return nil
	}
}

// startNewChat archives the current log and returns to the landing screen.
// In-flight speech is cancelled; preview temp files are released before the
// log is cleared.
func (m Model) startNewChat() Model {
	if m.bridge != nil {
		m.bridge.CancelSpeech()
	}
	m.releaseMessagePreviews()
	m.queue.Clear()
	m.session.StartNew()
	m.textarea.Reset()
	m.isLoading = false
	m.showLanding = true
	m.statusNote = ""
	m.refreshViewport()
	return m
}

// releaseMessagePreviews removes preview temp files owned by file_upload
// messages in the log.
func (m Model) releaseMessagePreviews() {
	for _, msg := range m.session.Messages() {
		if msg.Kind == session.KindFileUpload {
			attach.ReleasePreviewFile(msg.PreviewPath)
		}
	}
}

func (m Model) downloadCmd(images []session.CarouselImage) tea.Cmd {
	d := m.downloader
	return func() tea.Msg {
		saved, err := d.SaveAll(context.Background(), images)
		return downloadsDoneMsg{saved: len(saved), err: err}
	}
}
