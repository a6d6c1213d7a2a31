// Copyright 2025 The ribatlas authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides a leveled logger backed by zap. Log calls take a
// message and a flat list of key value pairs, e.g.
//
//	log.Info("Parsed RIB file", "records", n, "skipped", skipped)
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

// Level is the log level type. It is a thin wrapper around zapcore.Level.
type Level = zapcore.Level

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Config configures the logger.
type Config struct {
	// Level of the logging: debug|info|error. Defaults to info.
	Level string
	// Format of the logging: human|json. Defaults to human.
	Format string
}

// InitDefaults populates unset fields to their default values.
func (c *Config) InitDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "human"
	}
}

var root = &logger{logger: zap.NewNop()}

// Setup configures the process-wide root logger. It must be called before the
// first log call anywhere in the process, typically from the main command.
func Setup(cfg Config) error {
	cfg.InitDefaults()
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return serrors.WrapStr("parsing log level", err, "level", cfg.Level)
	}
	var encoding string
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	switch cfg.Format {
	case "human":
		encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		encoding = "json"
	default:
		return serrors.New("format not supported", "format", cfg.Format)
	}
	zCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
	l, err := zCfg.Build()
	if err != nil {
		return serrors.WrapStr("creating logger", err)
	}
	zap.ReplaceGlobals(l)
	root = &logger{logger: l}
	return nil
}

// Root returns the root logger. It is never nil.
func Root() Logger {
	return root
}

// Flush writes buffered log entries to the underlying sinks.
func Flush() {
	_ = root.logger.Sync()
}

// New creates a logger with the given context, derived from the root logger.
func New(ctx ...any) Logger {
	return root.New(ctx...)
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) {
	root.Debug(msg, ctx...)
}

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) {
	root.Info(msg, ctx...)
}

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) {
	root.Error(msg, ctx...)
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(lvl)
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}
