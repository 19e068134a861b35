package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"textora/cmd/textora/ui"
	"textora/internal/config"
	"textora/internal/logging"
	"textora/internal/session"
	"textora/internal/voice"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		m = next

	case replyMsg:
		m.isLoading = false
		m.session.AppendAIText(msg.reply.Text)
		if len(msg.reply.Images) > 0 {
			m.session.AppendCarousel(msg.reply.Images)
		}
		m.refreshViewport()
		return m, m.speakLatest()

	case sendFailedMsg:
		m.isLoading = false
		m.session.AppendAIError(fmt.Sprintf(errorTemplate, msg.err, m.client.Endpoint()))
		m.refreshViewport()
		return m, nil

	case transcriptMsg:
		if msg.err != nil {
			m.bridge.ListenFailed(msg.err)
			m.statusNote = "Voice recognition failed"
			return m, nil
		}
		m.bridge.ListenDone()
		m.textarea.SetValue(voice.AppendTranscript(m.textarea.Value(), msg.text))
		m.statusNote = ""
		return m, nil

	case downloadsDoneMsg:
		if msg.err != nil {
			m.statusNote = fmt.Sprintf("Downloads finished with errors (%d saved)", msg.saved)
		} else {
			m.statusNote = fmt.Sprintf("Saved %d image(s)", msg.saved)
		}
		return m, nil

	case configReloadedMsg:
		m = m.applyConfig(msg.cfg)
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// updateComponents forwards unhandled messages to the focused bubbles.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.viewMode == FilePickerView {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if ok, path := m.filepicker.DidSelectFile(msg); ok {
			m.queue.Enqueue(path)
			m.viewMode = ChatView
			m.statusNote = fmt.Sprintf("Attached %s", path)
		}
		return m, cmd
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// handleKey processes keyboard input. The bool result reports whether the key
// was consumed; unconsumed keys flow to the composer and viewport.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return m, tea.Quit, true

	case "esc":
		switch {
		case m.viewMode == FilePickerView:
			m.viewMode = ChatView
			return m, nil, true
		case m.session.ModalImage() != nil:
			m.session.CloseImage()
			return m, nil, true
		case m.session.ActivePanel() != session.PanelNone:
			m.session.ClosePanels()
			return m, nil, true
		default:
			m.shutdown()
			return m, tea.Quit, true
		}

	case "alt+m":
		m = m.toggleMute()
		return m, nil, true

	case "alt+v":
		if m.bridge == nil || !m.bridge.SupportsInput() {
			m.statusNote = "Voice input is not available"
			return m, nil, true
		}
		if m.bridge.ToggleListen() {
			m.statusNote = "Listening..."
			return m, m.listenCmd(), true
		}
		m.statusNote = ""
		return m, nil, true

	case "alt+t":
		m = m.toggleTheme()
		return m, nil, true

	case "alt+h":
		m.session.TogglePanel(session.PanelHistory)
		return m, nil, true

	case "alt+s":
		m.session.TogglePanel(session.PanelSettings)
		return m, nil, true

	case "alt+p":
		m.session.TogglePanel(session.PanelProfile)
		return m, nil, true

	case "alt+a":
		m.viewMode = FilePickerView
		return m, m.filepicker.Init(), true

	case "alt+n":
		m = m.startNewChat()
		return m, nil, true

	case "alt+d":
		return m.downloadShortcut()

	case "enter":
		if m.viewMode == FilePickerView {
			return m, nil, false
		}
		if m.showLanding {
			next, cmd := m.enterChat()
			return next, cmd, true
		}
		next, cmd := m.handleSubmit()
		return next, cmd, true
	}

	if m.showLanding {
		switch msg.String() {
		case "1":
			next, cmd := m.quickAction("Upload an image.")
			return next, cmd, true
		case "2":
			next, cmd := m.quickAction("Generate a voice-response.")
			return next, cmd, true
		case "3":
			next, cmd := m.quickAction("Summarize the top news headlines.")
			return next, cmd, true
		}
		// The landing screen has no composer; swallow stray keys.
		return m, nil, true
	}

	return m, nil, false
}

// downloadShortcut saves the modal image when one is enlarged, otherwise every
// image of the most recent carousel.
func (m Model) downloadShortcut() (Model, tea.Cmd, bool) {
	if img := m.session.ModalImage(); img != nil {
		m.statusNote = "Downloading..."
		return m, m.downloadCmd([]session.CarouselImage{*img}), true
	}
	if carousel, ok := m.session.LatestCarousel(); ok {
		m.statusNote = "Downloading..."
		return m, m.downloadCmd(carousel.Images), true
	}
	m.statusNote = "No images to download"
	return m, nil, true
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 3
	footerHeight := 2
	inputHeight := m.textarea.Height() + 2

	vpWidth := msg.Width - 4
	vpHeight := msg.Height - headerHeight - footerHeight - inputHeight - 2
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}

	m.textarea.SetWidth(msg.Width - 4)
	m.filepicker.Height = vpHeight
	m.renderer = newMarkdownRenderer(m.cfg.Theme, vpWidth-4)
	m.refreshViewport()
	return m
}

func (m Model) toggleMute() Model {
	if m.bridge == nil {
		return m
	}
	muted := !m.bridge.Muted()
	m.bridge.SetMuted(muted)
	m.cfg.Muted = muted
	m.persistConfig()
	if muted {
		m.statusNote = "Speech muted"
	} else {
		m.statusNote = "Speech unmuted"
	}
	return m
}

func (m Model) toggleTheme() Model {
	if m.cfg.Theme == "light" {
		m.cfg.Theme = "dark"
	} else {
		m.cfg.Theme = "light"
	}
	m.persistConfig()
	return m.applyTheme(m.cfg.Theme)
}

func (m Model) applyTheme(theme string) Model {
	m.styles = ui.NewStyles(ui.ThemeByName(theme))
	m.renderer = newMarkdownRenderer(theme, m.viewport.Width-4)
	m.refreshViewport()
	return m
}

// applyConfig folds a hot-reloaded config into the running session. Only the
// live-tunable fields take effect; endpoint changes need a restart.
func (m Model) applyConfig(cfg *config.Config) Model {
	if cfg == nil {
		return m
	}
	if cfg.Theme != m.cfg.Theme {
		m = m.applyTheme(cfg.Theme)
	}
	if m.bridge != nil && cfg.Muted != m.bridge.Muted() {
		m.bridge.SetMuted(cfg.Muted)
	}
	if cfg.Endpoint != m.cfg.Endpoint {
		logging.Config("endpoint change to %s requires restart", cfg.Endpoint)
	}
	m.cfg.Theme = cfg.Theme
	m.cfg.Muted = cfg.Muted
	return m
}

func (m Model) persistConfig() {
	if m.cfgPath == "" {
		return
	}
	if err := m.cfg.Save(m.cfgPath); err != nil {
		logging.Config("save failed: %v", err)
	}
}

// shutdown releases transient resources before quitting.
func (m Model) shutdown() {
	if m.bridge != nil {
		m.bridge.CancelSpeech()
	}
	m.queue.Clear()
	m.releaseMessagePreviews()
	logging.CloseAll()
}
