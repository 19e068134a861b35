package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"textora/internal/session"
)

const helpText = `## Commands

| Command | Description |
|---------|-------------|
| /new | Archive this chat and start over |
| /theme | Toggle dark/light theme |
| /mute | Toggle speech output |
| /voice | Toggle voice input |
| /attach [path...] | Attach files (picker when no path) |
| /unattach <n> | Remove the n-th pending attachment |
| /image <id> | Enlarge a generated image |
| /download | Save the latest carousel's images |
| /like, /dislike | Rate the latest reply |
| /history, /settings, /profile | Toggle side panels |
| /quit | Exit |

Hotkeys: Alt+A attach, Alt+V voice, Alt+M mute, Alt+T theme, Alt+N new chat.`

// handleCommand processes /command input from the composer.
func (m Model) handleCommand(input string) (Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]
	args := parts[1:]
	m.textarea.Reset()

	switch cmd {
	case "/quit", "/exit", "/q":
		m.shutdown()
		return m, tea.Quit

	case "/new":
		return m.startNewChat(), nil

	case "/theme":
		return m.toggleTheme(), nil

	case "/mute":
		return m.toggleMute(), nil

	case "/voice":
		if m.bridge == nil || !m.bridge.SupportsInput() {
			m.statusNote = "Voice input is not available"
			return m, nil
		}
		if m.bridge.ToggleListen() {
			m.statusNote = "Listening..."
			return m, m.listenCmd()
		}
		m.statusNote = ""
		return m, nil

	case "/attach":
		if len(args) == 0 {
			m.viewMode = FilePickerView
			return m, m.filepicker.Init()
		}
		added := m.queue.Enqueue(args...)
		m.statusNote = fmt.Sprintf("Attached %d file(s)", len(added))
		return m, nil

	case "/unattach":
		return m.unattach(args), nil

	case "/image":
		if len(args) != 1 {
			m.statusNote = "Usage: /image <id>"
			return m, nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || !m.session.OpenImage(id) {
			m.statusNote = "Image not found in the latest carousel"
		}
		return m, nil

	case "/download":
		next, dlCmd, _ := m.downloadShortcut()
		return next, dlCmd

	case "/like":
		m.statusNote = likeReply
		return m, nil

	case "/dislike":
		m.statusNote = dislikeReply
		return m, nil

	case "/history":
		m.session.TogglePanel(session.PanelHistory)
		return m, nil

	case "/settings":
		m.session.TogglePanel(session.PanelSettings)
		return m, nil

	case "/profile":
		m.session.TogglePanel(session.PanelProfile)
		return m, nil

	case "/help":
		m.session.AppendAIText(helpText)
		m.refreshViewport()
		return m, nil

	default:
		m.statusNote = fmt.Sprintf("Unknown command %s. Try /help.", cmd)
		return m, nil
	}
}

// unattach removes a pending attachment by its 1-based position.
func (m Model) unattach(args []string) Model {
	if len(args) != 1 {
		m.statusNote = "Usage: /unattach <n>"
		return m
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > m.queue.Len() {
		m.statusNote = "No such attachment"
		return m
	}
	u := m.queue.Items()[n-1]
	m.queue.Remove(u.ID)
	m.statusNote = fmt.Sprintf("Removed %s", u.Name)
	return m
}
