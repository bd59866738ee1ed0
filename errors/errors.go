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

package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Error is the interface every error returned by this module satisfies.
// It wraps the standard error with a Kind and an optional parent chain
// so that, e.g., a ConnectionAborted surfaced to a reaper can still
// expose the underlying IoFailed that caused the abort.
type Error interface {
	error

	// Kind returns the taxonomy class of this error.
	Kind() Kind
	// Is reports whether this error (or any parent) is of the given Kind.
	Is(k Kind) bool
	// Unwrap exposes the parent chain to errors.Is/errors.As.
	Unwrap() []error
	// Trace returns "file:line" of the call site that created this error.
	Trace() string
}

type terr struct {
	kind    Kind
	msg     string
	parent  []error
	file    string
	line    int
}

func (e *terr) Error() string {
	if e.msg == "" {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.msg
}

func (e *terr) Kind() Kind { return e.kind }

func (e *terr) Is(k Kind) bool {
	if e.kind == k {
		return true
	}
	for _, p := range e.parent {
		var te Error
		if errors.As(p, &te) && te.Is(k) {
			return true
		}
	}
	return false
}

func (e *terr) Unwrap() []error { return e.parent }

func (e *terr) Trace() string {
	return fmt.Sprintf("%s:%d", e.file, e.line)
}

func frame() (file string, line int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown", 0
	}
	return file, line
}

// New creates an Error of the given Kind with a plain message and an
// optional set of parent errors (e.g. the driver error that triggered
// a ConnectionAborted).
func New(k Kind, msg string, parent ...error) Error {
	file, line := frame()
	return &terr{kind: k, msg: msg, parent: parent, file: file, line: line}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(k Kind, pattern string, args ...any) Error {
	file, line := frame()
	return &terr{kind: k, msg: fmt.Sprintf(pattern, args...), file: file, line: line}
}

// Is reports whether err is (or wraps, via errors.As) an Error of the given Kind.
func Is(err error, k Kind) bool {
	if err == nil {
		return false
	}
	var te Error
	if errors.As(err, &te) {
		return te.Is(k)
	}
	return false
}

// KindOf returns the Kind of err, or Unknown if err is not one of ours.
func KindOf(err error) Kind {
	var te Error
	if errors.As(err, &te) {
		return te.Kind()
	}
	return Unknown
}
