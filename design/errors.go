/*
 * ODDF - Open Digital Design Framework
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package design

import "fmt"

// DesignError reports a structural problem detected while building or
// elaborating a design: a type mismatch, a width mismatch, driving an
// already-driven input, an unconnected input at simulation start, an
// impossible cast, or an invalid bus index.
type DesignError struct {
	Msg string
}

func (e *DesignError) Error() string { return "design error: " + e.Msg }

func NewDesignError(format string, args ...interface{}) error {
	return &DesignError{Msg: fmt.Sprintf(format, args...)}
}

// RuntimeError is produced by a Function block or an assertion during
// simulation when user code signals a violated invariant.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return "runtime error: " + e.Msg }

func NewRuntimeError(format string, args ...interface{}) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// DomainError reports fixed-point parameters out of bounds (word width
// <= 0 or over the dfx capacity).
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return "domain error: " + e.Msg }

func NewDomainError(format string, args ...interface{}) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

// RangeError reports that a numeric conversion cannot represent the
// value.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return "range error: " + e.Msg }

func NewRangeError(format string, args ...interface{}) error {
	return &RangeError{Msg: fmt.Sprintf(format, args...)}
}

// TimeoutError reports that a configuration-bus read did not acknowledge
// within the configured window.
type TimeoutError struct {
	Msg string
}

func (e *TimeoutError) Error() string { return "timeout error: " + e.Msg }

func NewTimeoutError(format string, args ...interface{}) error {
	return &TimeoutError{Msg: fmt.Sprintf(format, args...)}
}

// IoError reports a recorder file operation failure.
type IoError struct {
	Msg string
	Err error
}

func (e *IoError) Error() string {
	if e.Err != nil {
		return "io error: " + e.Msg + ": " + e.Err.Error()
	}
	return "io error: " + e.Msg
}

func (e *IoError) Unwrap() error { return e.Err }

func NewIoError(msg string, err error) error {
	return &IoError{Msg: msg, Err: err}
}
