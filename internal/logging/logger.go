package logging

import (
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger so call sites depend on one type.
type Logger struct {
    *zap.Logger
}

// Config defines logger configuration.
type Config struct {
    Level       string // "debug", "info", "warn", "error"
    Development bool
    OutputPaths []string
}

// New creates a logger. Development selects console encoding and stack traces.
func New(cfg Config) (*Logger, error) {
    level, err := parseLevel(cfg.Level)
    if err != nil { return nil, err }
    out := cfg.OutputPaths
    if len(out) == 0 { out = []string{"stdout"} }

    zapCfg := zap.Config{
        Level:             zap.NewAtomicLevelAt(level),
        Development:       cfg.Development,
        Encoding:          encodingFormat(cfg.Development),
        EncoderConfig:     encoderConfig(cfg.Development),
        OutputPaths:       out,
        ErrorOutputPaths:  []string{"stderr"},
        DisableStacktrace: !cfg.Development,
    }
    logger, err := zapCfg.Build()
    if err != nil { return nil, err }
    return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything; tests use it.
func NewNop() *Logger { return &Logger{Logger: zap.NewNop()} }

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(name string) *Logger { return &Logger{Logger: l.Logger.Named(name)} }

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger { return &Logger{Logger: l.Logger.With(fields...)} }

func parseLevel(level string) (zapcore.Level, error) {
    var l zapcore.Level
    if level == "" { return zapcore.InfoLevel, nil }
    if err := l.UnmarshalText([]byte(level)); err != nil {
        return zapcore.InfoLevel, err
    }
    return l, nil
}

func encodingFormat(development bool) string {
    if development { return "console" }
    return "json"
}

func encoderConfig(development bool) zapcore.EncoderConfig {
    if development {
        cfg := zap.NewDevelopmentEncoderConfig()
        cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
        return cfg
    }
    return zapcore.EncoderConfig{
        TimeKey:        "timestamp",
        LevelKey:       "level",
        NameKey:        "logger",
        CallerKey:      "caller",
        FunctionKey:    zapcore.OmitKey,
        MessageKey:     "message",
        StacktraceKey:  "stacktrace",
        LineEnding:     zapcore.DefaultLineEnding,
        EncodeLevel:    zapcore.LowercaseLevelEncoder,
        EncodeTime:     zapcore.ISO8601TimeEncoder,
        EncodeDuration: zapcore.SecondsDurationEncoder,
        EncodeCaller:   zapcore.ShortCallerEncoder,
    }
}
