package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"subtitle-merger/internal/config"
)

// New builds a logger from runtime configuration, writing to stderr.
func New(cfg *config.Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput builds a logger writing to out.
func NewWithOutput(cfg *config.Config, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(parseLevel(cfg))

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// parseLevel maps the configured level name, forcing debug in development.
func parseLevel(cfg *config.Config) logrus.Level {
	if cfg.IsDevelopment() {
		return logrus.DebugLevel
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Sink records errors that are recovered locally and never shown verbatim.
type Sink struct {
	log logrus.FieldLogger
}

// NewSink wraps a logger as a diagnostic sink.
func NewSink(log logrus.FieldLogger) *Sink {
	return &Sink{log: log}
}

// Report logs err with the operation that swallowed it.
func (s *Sink) Report(op string, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}
	s.log.WithField("op", op).WithError(err).Error("operation failed")
}
