package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"textora/cmd/textora/chat"
	"textora/internal/config"
	"textora/internal/logging"
	"textora/internal/responder"
	"textora/internal/voice"
)

var (
	// Global flags
	verbose   bool
	workspace string
	endpoint  string
	theme     string

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd launches the interactive chat by default.
var rootCmd = &cobra.Command{
	Use:   "textora",
	Short: "Textora AI - conversational chat client",
	Long: `Textora is a terminal chat client for the Textora AI responder:
a conversation transcript with file/image attachments, optional speech
input/output, and generated-image downloads.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Interactive mode has its own UI; keep zap for the one-shot commands.
		if cmd.Use == "textora" && cmd.CalledAs() == "textora" {
			return nil
		}
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

// sendCmd performs one prompt round-trip without the TUI.
var sendCmd = &cobra.Command{
	Use:   "send [prompt]",
	Short: "Send a single prompt and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		prompt := ""
		for i, a := range args {
			if i > 0 {
				prompt += " "
			}
			prompt += a
		}

		client := responder.New(responder.Config{Endpoint: cfg.Endpoint})
		logger.Info("sending prompt",
			zap.String("endpoint", cfg.Endpoint),
			zap.Int("prompt_len", len(prompt)))

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		reply, err := client.Generate(ctx, prompt, nil)
		if err != nil {
			logger.Error("send failed", zap.Error(err))
			return err
		}
		fmt.Println(reply.Text)
		for _, url := range reply.Images {
			fmt.Println(url)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("textora", chat.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: cwd)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "responder endpoint URL")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "", "UI theme (dark or light)")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the workspace, loads .env and the YAML config, and
// applies flag overrides. Flags beat env beats file.
func loadConfig() (*config.Config, string, error) {
	ws := workspace
	if ws == "" {
		var err error
		ws, err = os.Getwd()
		if err != nil {
			return nil, "", err
		}
	}

	// Optional; a missing .env is fine.
	_ = godotenv.Load(filepath.Join(ws, ".env"))

	path := config.DefaultPath(ws)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if theme != "" {
		cfg.Theme = theme
		if cfg.Theme != "light" {
			cfg.Theme = "dark"
		}
	}
	return cfg, ws, nil
}

func runInteractiveChat() error {
	cfg, ws, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(ws, logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.CloseAll()

	bridge := voice.Detect(voice.Options{
		OpenAIKey:     cfg.Voice.OpenAIAPIKey,
		SpeakCommand:  cfg.Voice.SpeakCommand,
		RecordCommand: cfg.Voice.RecordCommand,
		PlayCommand:   cfg.Voice.PlayCommand,
	}, cfg.Muted)

	cfgPath := config.DefaultPath(ws)
	// The watcher needs the parent directory to exist.
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		cfgPath = ""
	}

	return chat.Run(chat.Options{
		Workspace:  ws,
		Config:     cfg,
		ConfigPath: cfgPath,
		Client:     responder.New(responder.Config{Endpoint: cfg.Endpoint}),
		Bridge:     bridge,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
