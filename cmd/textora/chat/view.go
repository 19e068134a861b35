package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"textora/internal/attach"
	"textora/internal/session"
	"textora/internal/voice"
)

// refreshViewport re-renders the transcript and keeps the view pinned to the
// newest message.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if img := m.session.ModalImage(); img != nil {
		return m.renderModal(*img)
	}

	if m.showLanding {
		return m.renderLanding()
	}

	if m.viewMode == FilePickerView {
		title := m.styles.Header.Render(" Attach a file ")
		hint := m.styles.Muted.Render("Enter: select  Esc: cancel")
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			m.styles.Content.Render(m.filepicker.View()),
			hint,
		)
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())
	if panel := m.renderPanel(); panel != "" {
		chatView = lipgloss.JoinHorizontal(lipgloss.Top, chatView, "  ", panel)
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	sections := []string{header, chatView}
	if chips := m.renderPendingChips(); chips != "" {
		sections = append(sections, chips)
	}
	sections = append(sections, inputArea, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTranscript() string {
	var sb strings.Builder

	for _, msg := range m.session.Messages() {
		switch msg.Kind {
		case session.KindText:
			if msg.Sender == session.SenderUser {
				sb.WriteString(m.styles.UserLabel.Render("You") + m.styles.Muted.Render("  "+msg.Timestamp) + "\n")
				sb.WriteString(m.styles.UserBubble.Render(msg.Text))
				sb.WriteString("\n")
				continue
			}
			sb.WriteString(m.styles.AILabel.Render("Textora AI") + m.styles.Muted.Render("  "+msg.Timestamp) + "\n")
			if msg.IsError {
				sb.WriteString(m.styles.ErrorText.Render(msg.Text))
				sb.WriteString("\n")
			} else {
				sb.WriteString(m.safeRenderMarkdown(msg.Text))
				sb.WriteString("\n")
			}

		case session.KindFileUpload:
			sb.WriteString(m.styles.UserLabel.Render("You") + m.styles.Muted.Render("  "+msg.Timestamp) + "\n")
			sb.WriteString(m.renderFileUpload(msg))
			sb.WriteString("\n")

		case session.KindImageCarousel:
			sb.WriteString(m.styles.AILabel.Render("Textora AI") + m.styles.Muted.Render("  "+msg.Timestamp) + "\n")
			sb.WriteString(m.renderCarousel(msg))
			sb.WriteString("\n")
		}
	}

	if m.isLoading {
		sb.WriteString("\n" + m.spinner.View() + m.styles.Muted.Render(" Textora AI is typing..."))
	}

	return sb.String()
}

func (m Model) renderFileUpload(msg session.Message) string {
	label := fmt.Sprintf("%s (%s)", msg.FileName, attach.FormatSize(msg.FileSize))
	if msg.IsPDF {
		label += " [PDF]"
	}
	chip := m.styles.Chip.Render("📎 " + label)
	status := m.styles.Success.Render(" ✓ " + string(msg.Status))
	return chip + status
}

func (m Model) renderCarousel(msg session.Message) string {
	var lines []string
	for _, img := range msg.Images {
		lines = append(lines, fmt.Sprintf("[%d] %s", img.ID, img.URL))
	}
	lines = append(lines, m.styles.Muted.Render("/image <id>: view  /download: save all"))
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

// safeRenderMarkdown renders markdown with panic recovery; glamour can panic
// on pathological input.
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" Textora AI ")
	version := m.styles.Badge.Render(Version)

	var status string
	switch {
	case m.isLoading:
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render("Thinking..."))
	case m.bridge != nil && m.bridge.State() == voice.Listening:
		status = m.styles.Warning.Render("Listening")
	default:
		status = m.styles.Success.Render("Ready")
	}

	indicators := ""
	if m.bridge != nil && m.bridge.Muted() {
		indicators = m.styles.Muted.Render("  [MUTED]")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", version, "  ", status, indicators)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter() string {
	if m.statusNote != "" {
		return m.styles.Footer.Render(m.statusNote)
	}
	hotkeys := "Enter: send | Alt+A: attach | Alt+V: voice | Alt+M: mute | Alt+T: theme | Alt+H/S/P: panels | Alt+N: new chat | /help"
	return m.styles.Footer.Render(hotkeys)
}

func (m Model) renderPendingChips() string {
	if m.queue.Len() == 0 {
		return ""
	}
	var chips []string
	for _, u := range m.queue.Items() {
		label := fmt.Sprintf("%s (%s)", u.Name, attach.FormatSize(u.Size))
		if u.IsPDF {
			label += " [PDF]"
		}
		chips = append(chips, m.styles.Chip.Render("📎 "+label))
	}
	hint := m.styles.Muted.Render("  /unattach <n> removes")
	return "  " + strings.Join(chips, " ") + hint
}

func (m Model) renderPanel() string {
	switch m.session.ActivePanel() {
	case session.PanelHistory:
		return m.renderHistoryPanel()
	case session.PanelSettings:
		return m.renderSettingsPanel()
	case session.PanelProfile:
		return m.renderProfilePanel()
	default:
		return ""
	}
}

func (m Model) renderHistoryPanel() string {
	var lines []string
	lines = append(lines, m.styles.PanelHeader.Render("Chat History"))
	entries := m.session.History()
	if len(entries) == 0 {
		lines = append(lines, m.styles.Muted.Render("No previous chats yet."))
	}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s", e.Date, e.Time))
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("  %s (%d messages)", e.Preview, e.Count)))
	}
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderSettingsPanel() string {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	voiceIn := "unavailable"
	voiceOut := "unavailable"
	muted := false
	if m.bridge != nil {
		if m.bridge.SupportsInput() {
			voiceIn = "available"
		}
		if m.bridge.SupportsOutput() {
			voiceOut = "available"
		}
		muted = m.bridge.Muted()
	}
	lines := []string{
		m.styles.PanelHeader.Render("Settings"),
		fmt.Sprintf("Theme: %s (Alt+T)", m.cfg.Theme),
		fmt.Sprintf("Muted: %s (Alt+M)", onOff(muted)),
		fmt.Sprintf("Voice input: %s (Alt+V)", voiceIn),
		fmt.Sprintf("Voice output: %s", voiceOut),
		m.styles.Muted.Render("Endpoint: " + m.client.Endpoint()),
	}
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderProfilePanel() string {
	lines := []string{
		m.styles.PanelHeader.Render("Profile"),
		"User",
		fmt.Sprintf("Messages this session: %d", m.session.Len()),
		fmt.Sprintf("Files shared: %d", m.session.FileMessageCount()),
		fmt.Sprintf("Archived chats: %d", len(m.session.History())),
	}
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderLanding() string {
	title := m.styles.Title.Render("Textora AI")
	subtitle := m.styles.Subtitle.Render("Hi there, I am Textora AI")

	cards := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.styles.QuickAction.Render("[1] Upload Images\n"+m.styles.Muted.Render("Next-Gen answers")),
		m.styles.QuickAction.Render("[2] Generate Voice-Response\n"+m.styles.Muted.Render("Smart Voice Bot")),
		m.styles.QuickAction.Render("[3] Interact with AI\n"+m.styles.Muted.Render("Intelligent Assistant")),
	)

	hint := m.styles.Muted.Render("Enter: start chatting  1-3: quick actions  Esc: quit")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		subtitle,
		"\n",
		cards,
		"\n",
		hint,
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderModal(img session.CarouselImage) string {
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.PanelHeader.Render(fmt.Sprintf("Image %d", img.ID)),
		img.URL,
		"",
		m.styles.Muted.Render("Alt+D: download  Esc: close"),
	)
	panel := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(1, 2).
		Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
