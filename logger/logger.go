/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the narrow interface the core depends on. A session holds
// one, derived from a package-level default via With.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	With(f Fields) Logger
}

type wrap struct {
	entry *logrus.Entry
}

// Default returns a Logger writing to stderr at Info level, text
// formatter, matching nabbar-golib's logrus defaults.
func Default() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return &wrap{entry: logrus.NewEntry(l)}
}

// FromLogrus adapts a caller-supplied *logrus.Logger, letting a host
// application route the transport layer's log lines through its own
// logrus instance (hooks, syslog, json formatter, ...).
func FromLogrus(l *logrus.Logger) Logger {
	return &wrap{entry: logrus.NewEntry(l)}
}

func (w *wrap) Debug(msg string) { w.entry.Debug(msg) }
func (w *wrap) Info(msg string)  { w.entry.Info(msg) }
func (w *wrap) Warn(msg string)  { w.entry.Warn(msg) }
func (w *wrap) Error(msg string) { w.entry.Error(msg) }

func (w *wrap) With(f Fields) Logger {
	return &wrap{entry: w.entry.WithFields(f.Logrus())}
}

// Nop discards everything; used as the zero-value logger when a
// session is opened without an explicit Logger.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string)        {}
func (nopLogger) Info(string)         {}
func (nopLogger) Warn(string)         {}
func (nopLogger) Error(string)        {}
func (nopLogger) With(Fields) Logger  { return nopLogger{} }
