// Package chat provides the interactive Textora TUI: the landing screen, the
// chat transcript, the composer with its attachment queue, the voice controls,
// and the side panels.
package chat

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"textora/cmd/textora/ui"
	"textora/internal/attach"
	"textora/internal/config"
	"textora/internal/download"
	"textora/internal/logging"
	"textora/internal/responder"
	"textora/internal/session"
	"textora/internal/voice"
)

// Version is the build tag shown in the header badge.
const Version = "v1.0"

// Canned assistant lines. These mirror the product copy exactly; tests pin
// them.
const (
	greeting       = "Hi there, I am Textora AI. How can I help you today?"
	filesOnlyReply = "I've received your file(s). Please add a message to tell me what you'd like me to do with them."
	likeReply      = "Thanks for the positive feedback!"
	dislikeReply   = "We appreciate your feedback and will improve!"
)

// errorTemplate is the diagnostic appended when a send fails. The endpoint is
// named so the user can check the backend.
const errorTemplate = "Sorry, I encountered an error: %s. Please ensure the backend server is running on %s"

// Responder is the remote AI boundary; faked in tests.
type Responder interface {
	Generate(ctx context.Context, prompt string, image *responder.Image) (responder.Reply, error)
	Endpoint() string
}

// ViewMode determines which component is focused/active.
type ViewMode int

const (
	ChatView ViewMode = iota
	FilePickerView
)

// Messages for tea updates.
type (
	// replyMsg carries a successful responder round-trip.
	replyMsg struct{ reply responder.Reply }

	// sendFailedMsg carries a terminal send failure.
	sendFailedMsg struct{ err error }

	// transcriptMsg carries the outcome of a one-shot listen.
	transcriptMsg struct {
		text string
		err  error
	}

	// downloadsDoneMsg reports a finished carousel download batch.
	downloadsDoneMsg struct {
		saved int
		err   error
	}

	// configReloadedMsg carries a hot-reloaded config from the fsnotify
	// watcher.
	configReloadedMsg struct{ cfg *config.Config }
)

// Options holds everything the chat model needs at construction.
type Options struct {
	Workspace  string
	Config     *config.Config
	ConfigPath string
	Client     Responder
	Bridge     *voice.Bridge
}

// Model is the main model for the interactive chat interface.
type Model struct {
	// UI components
	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model
	styles     ui.Styles
	renderer   *glamour.TermRenderer

	viewMode    ViewMode
	showLanding bool
	isLoading   bool
	statusNote  string

	width  int
	height int
	ready  bool

	// Conversation state
	session    *session.Session
	queue      *attach.Queue
	bridge     *voice.Bridge
	downloader *download.Downloader
	client     Responder

	cfg       *config.Config
	cfgPath   string
	workspace string
}

// New builds the chat model from pre-wired collaborators.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".pdf"}
	fp.CurrentDirectory = opts.Workspace

	downloadsDir := cfg.DownloadsDir
	if !filepath.IsAbs(downloadsDir) {
		downloadsDir = filepath.Join(opts.Workspace, downloadsDir)
	}

	return Model{
		textarea:    ta,
		spinner:     sp,
		filepicker:  fp,
		styles:      ui.NewStyles(ui.ThemeByName(cfg.Theme)),
		showLanding: true,
		session:     session.New(),
		queue:       attach.NewQueue(filepath.Join(opts.Workspace, ".textora", "cache")),
		bridge:      opts.Bridge,
		downloader:  download.New(downloadsDir),
		client:      opts.Client,
		cfg:         cfg,
		cfgPath:     opts.ConfigPath,
		workspace:   opts.Workspace,
	}
}

// Init starts the cursor blink and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// newMarkdownRenderer builds the glamour renderer for the active theme. A
// construction failure degrades to plain text rendering.
func newMarkdownRenderer(theme string, wrap int) *glamour.TermRenderer {
	style := "dark"
	if theme == "light" {
		style = "light"
	}
	if wrap < 20 {
		wrap = 80
	}
	var (
		r   *glamour.TermRenderer
		err error
	)
	if style == "light" {
		r, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(wrap),
		)
	} else {
		r, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
	}
	if err != nil {
		logging.Boot("markdown renderer unavailable: %v", err)
		return nil
	}
	return r
}

// Run launches the TUI and keeps the config hot-reload watcher alive for the
// program's lifetime.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, func(cfg *config.Config) {
			p.Send(configReloadedMsg{cfg: cfg})
		})
		if err != nil {
			logging.Config("hot reload disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	_, err := p.Run()
	return err
}
