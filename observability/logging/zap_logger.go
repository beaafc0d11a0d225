// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package logging

import (
	"context"
	"math/rand"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts *zap.Logger to the Logger interface, for deployments
// that want zap's sink/encoder ecosystem (file rotation, sampling
// backends, OTEL exporters) instead of the bundled StructuredLogger.
type ZapLogger struct {
	core         *zap.Logger
	atom         zap.AtomicLevel
	mu           sync.Mutex
	samplingRate float64
}

// NewZapLogger builds a production JSON zap.Logger at the given level.
func NewZapLogger(level Level) *ZapLogger {
	atom := zap.NewAtomicLevel()
	atom.SetLevel(toZapLevel(level))

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(zapcore.AddSync(os.Stdout)), atom)

	return &ZapLogger{
		core:         zap.New(core),
		atom:         atom,
		samplingRate: 1.0,
	}
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	if l.samplingRate < 1.0 && rand.Float64() > l.samplingRate {
		return
	}
	l.core.Debug(msg, l.zapFields(ctx, fields)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.core.Info(msg, l.zapFields(ctx, fields)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.core.Warn(msg, l.zapFields(ctx, fields)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.core.Error(msg, l.zapFields(ctx, fields)...)
}

func (l *ZapLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.core.Fatal(msg, l.zapFields(ctx, fields)...)
}

// With creates a child logger with persistent fields.
func (l *ZapLogger) With(fields ...Field) Logger {
	return &ZapLogger{
		core:         l.core.With(toZapFields(fields)...),
		atom:         l.atom,
		samplingRate: l.samplingRate,
	}
}

// SetLevel sets the minimum log level.
func (l *ZapLogger) SetLevel(level Level) {
	l.atom.SetLevel(toZapLevel(level))
}

// SetSamplingRate sets the sampling rate for debug logs.
func (l *ZapLogger) SetSamplingRate(rate float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	l.samplingRate = rate
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.core.Sync()
}

func (l *ZapLogger) zapFields(ctx context.Context, fields []Field) []zap.Field {
	all := append(extractContextFields(ctx), fields...)
	return toZapFields(all)
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
