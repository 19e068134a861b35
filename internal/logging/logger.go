// Package logging provides config-driven categorized file-based logging for
// Textora. Logs are written to .textora/logs/ with separate files per
// category. When debug mode is off every call is a silent no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and capability probing
	CategorySession  Category = "session"  // Log mutations, archiving
	CategorySend     Category = "send"     // Responder round-trips
	CategoryAttach   Category = "attach"   // Attachment queue, preview lifecycle
	CategoryVoice    Category = "voice"    // Speech recognition and synthesis
	CategoryDownload Category = "download" // Carousel image downloads
	CategoryConfig   Category = "config"   // Config load/reload
)

// Settings mirrors the logging block of the user config. A local copy avoids
// an import cycle with internal/config.
type Settings struct {
	DebugMode  bool
	Level      string
	Categories map[string]bool
}

// Logger writes to one category's log file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  Settings
	setMu     sync.RWMutex
	logLevel  int
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// Initialize sets up the logging directory from the user config. Should be
// called once at startup with the workspace path.
func Initialize(workspace string, s Settings) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	setMu.Lock()
	settings = s
	switch s.Level {
	case "debug":
		logLevel = levelDebug
	case "warn", "warning":
		logLevel = levelWarn
	case "error":
		logLevel = levelError
	default:
		logLevel = levelInfo
	}
	setMu.Unlock()

	if !s.DebugMode {
		return nil // Silent no-op in production mode.
	}

	logsDir = filepath.Join(workspace, ".textora", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== Textora logging initialized ===")
	boot.Info("workspace: %s", workspace)
	boot.Info("level: %s", s.Level)
	return nil
}

func categoryEnabled(c Category) bool {
	setMu.RLock()
	defer setMu.RUnlock()
	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, ok := settings.Categories[string(c)]
	if !ok {
		return true // Enabled by default when not listed.
	}
	return enabled
}

// Get returns (or creates) the logger for a category. Returns a no-op logger
// when debug mode or the category is disabled.
func Get(c Category) *Logger {
	if !categoryEnabled(c) || logsDir == "" {
		return &Logger{category: c}
	}

	loggersMu.RLock()
	if l, ok := loggers[c]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}

	// Date prefix keeps rotation trivial.
	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), c)
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open log file %s: %v\n", name, err)
		return &Logger{category: c}
	}

	l := &Logger{
		category: c,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[c] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	if l.logger == nil || logLevel > levelDebug {
		return
	}
	l.logger.Printf("[DEBUG] "+format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	if l.logger == nil || logLevel > levelInfo {
		return
	}
	l.logger.Printf("[INFO] "+format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	if l.logger == nil || logLevel > levelWarn {
		return
	}
	l.logger.Printf("[WARN] "+format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] "+format, args...)
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions; no-ops when the category is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...any) { Get(CategoryBoot).Info(format, args...) }

// Session logs to the session category.
func Session(format string, args ...any) { Get(CategorySession).Info(format, args...) }

// Send logs to the send category.
func Send(format string, args ...any) { Get(CategorySend).Info(format, args...) }

// SendError logs an error to the send category.
func SendError(format string, args ...any) { Get(CategorySend).Error(format, args...) }

// Attach logs to the attach category.
func Attach(format string, args ...any) { Get(CategoryAttach).Info(format, args...) }

// Voice logs to the voice category.
func Voice(format string, args ...any) { Get(CategoryVoice).Info(format, args...) }

// VoiceError logs an error to the voice category.
func VoiceError(format string, args ...any) { Get(CategoryVoice).Error(format, args...) }

// Download logs to the download category.
func Download(format string, args ...any) { Get(CategoryDownload).Info(format, args...) }

// Config logs to the config category.
func Config(format string, args ...any) { Get(CategoryConfig).Info(format, args...) }
