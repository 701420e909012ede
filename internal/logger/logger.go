package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type config struct {
	zap.Config
	// ws replaces OutputPaths when set
	ws zapcore.WriteSyncer
}

type Option func(*config) error

// WithLevel sets the minimum level: debug, info, warn or error.
func WithLevel(level string) Option {
	return func(cfg *config) error {
		lvl, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return nil
	}
}

// WithDevelopment switches to the human readable console encoder.
func WithDevelopment(dev bool) Option {
	return func(cfg *config) error {
		if !dev {
			return nil
		}
		level := cfg.Level
		cfg.Config = zap.NewDevelopmentConfig()
		cfg.Level = level
		cfg.OutputPaths = []string{"stderr"}
		return nil
	}
}

// WithOutput replaces the log sinks, e.g. a file path or "stdout".
func WithOutput(paths ...string) Option {
	return func(cfg *config) error {
		cfg.OutputPaths = paths
		cfg.ws = nil
		return nil
	}
}

// WithWriter sends log entries to w instead of the configured sinks.
func WithWriter(w io.Writer) Option {
	return func(cfg *config) error {
		if w == nil {
			return fmt.Errorf("nil log writer")
		}
		cfg.ws = zapcore.AddSync(w)
		return nil
	}
}

// New builds a production logger writing JSON lines to stderr.
func New(opts ...Option) (*zap.Logger, error) {
	cfg := config{Config: zap.NewProductionConfig()}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.ws == nil {
		return cfg.Build()
	}

	enc := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	if cfg.Encoding == "console" {
		enc = zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	}
	zopts := []zap.Option{zap.ErrorOutput(cfg.ws)}
	if !cfg.DisableCaller {
		zopts = append(zopts, zap.AddCaller())
	}
	if cfg.Development {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(zapcore.NewCore(enc, cfg.ws, cfg.Level), zopts...), nil
}
