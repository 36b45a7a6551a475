// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin facade over log/slog shared by all packages.
package log

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger writes key/value structured records.
type Logger interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
}

var root atomic.Pointer[slog.Logger]

func init() {
	root.Store(slog.New(DiscardHandler()))
}

// SetDefault replaces the root logger used by all derived loggers.
func SetDefault(handler slog.Handler) {
	root.Store(slog.New(handler))
}

// NewTerminalHandler builds a leveled text handler writing to stderr.
func NewTerminalHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
}

// WithContext derives a logger carrying the given key/value context.
func WithContext(ctx ...interface{}) Logger {
	return &logger{ctx: ctx}
}

type logger struct {
	ctx []interface{}
}

func (l *logger) with() *slog.Logger {
	return root.Load().With(l.ctx...)
}

func (l *logger) Debug(msg string, ctx ...interface{}) { l.with().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.with().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.with().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.with().Error(msg, ctx...) }
