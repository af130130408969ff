// Package common holds the logger and display formatting shared by the portal and navctl.
package common

import (
	"os"

	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

const (
	logTimeFormat     = "2006-01-02T15:04:05Z07:00"
	defaultLogFile    = "logs/nav-portal.log"
	defaultMaxLogSize = 500 * 1024
	defaultLogBackups = 20
)

// Logger is the arbor logger used across nav-portal.
type Logger struct {
	arbor.ILogger
}

// NewLoggerFromConfig builds a logger for the [logging] section.
// Unknown outputs are ignored; the memory writer is always attached so
// request logs can be looked up by correlation id.
func NewLoggerFromConfig(cfg config.LoggingConfig) *Logger {
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	l := arbor.NewLogger()
	for _, out := range outputs {
		switch out {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: logTimeFormat,
			})
		case "file":
			l = l.WithFileWriter(fileWriterConfig(cfg))
		}
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	l = l.WithMemoryWriter(models.WriterConfiguration{Type: models.LogWriterTypeMemory}).
		WithLevelFromString(level)

	return &Logger{ILogger: l}
}

func fileWriterConfig(cfg config.LoggingConfig) models.WriterConfiguration {
	wc := models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   cfg.FilePath,
		MaxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		MaxBackups: cfg.MaxBackups,
		TimeFormat: logTimeFormat,
	}
	if wc.FileName == "" {
		wc.FileName = defaultLogFile
	}
	if wc.MaxSize <= 0 {
		wc.MaxSize = defaultMaxLogSize
	}
	if wc.MaxBackups <= 0 {
		wc.MaxBackups = defaultLogBackups
	}
	return wc
}

// NewSilentLogger returns a logger that drops everything.
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger().WithWriters([]writers.IWriter{discard{}})}
}

// discard is an arbor writer with no output. Passing it explicitly keeps
// the logger off arbor's globally registered writers.
type discard struct{}

func (d discard) Write(p []byte) (int, error)           { return len(p), nil }
func (d discard) WithLevel(_ log.Level) writers.IWriter { return d }
func (d discard) GetFilePath() string                   { return "" }
func (d discard) Close() error                          { return nil }

// WithCorrelationId tags every entry from the returned logger with id.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}
