// Copyright 2024 The pevm Authors
// This file is part of the pevm library.
//
// The pevm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The pevm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the pevm library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides a small leveled, structured logger in the style of
// go-ethereum's log package. Call sites pass alternating key/value pairs;
// Crit records are annotated with the caller's stack frame so a panic site
// can be found without attaching a debugger.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a log severity, ordered from least to most verbose (LvlCrit
// is 0, LvlTrace the highest).
type Level int

const (
	LvlCrit Level = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Level) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled records with key/value context.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	ctx    []interface{}
}

var root = New()

// New creates a standalone logger writing to os.Stderr at LvlInfo.
func New() *Logger {
	return &Logger{out: os.Stderr, level: LvlInfo}
}

// SetOutput redirects the root logger's output.
func SetOutput(w io.Writer) { root.SetOutput(w) }

// SetOutput redirects this logger's output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetLevel sets the root logger's minimum emitted level.
func SetLevel(lvl Level) { root.SetLevel(lvl) }

// SetLevel sets this logger's minimum emitted level.
func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
}

// New returns a child logger with additional persistent context.
func (l *Logger) New(ctx ...interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	child := &Logger{out: l.out, level: l.level}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *Logger) write(lvl Level, msg string, ctx []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl > l.level {
		return
	}
	fmt.Fprintf(l.out, "%s [%s] %s", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), lvl, msg)
	all := append(append([]interface{}{}, l.ctx...), ctx...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(l.out, " %v=%v", all[i], all[i+1])
	}
	if lvl == LvlCrit {
		fmt.Fprintf(l.out, " stack=%+v", stack.Trace().TrimRuntime())
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *Logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

// Package-level helpers forward to the root logger, mirroring the
// go-ethereum log package's free functions.
func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }

// NewWith creates a child of the root logger with additional context.
func NewWith(ctx ...interface{}) *Logger { return root.New(ctx...) }
