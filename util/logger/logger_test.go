/*
 * S370 - Wrapper for slog
 *
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

package logger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestHandleWritesFormattedLine(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, &debug)

	logger := slog.New(h)
	logger.Info("starting up", "module", "sim")

	out := buf.String()
	if !strings.Contains(out, "INFO:") {
		t.Fatalf("output = %q, want it to contain level %q", out, "INFO:")
	}
	if !strings.Contains(out, "starting up") {
		t.Fatalf("output = %q, want it to contain the message", out)
	}
	if !strings.Contains(out, "sim") {
		t.Fatalf("output = %q, want it to contain the attribute value", out)
	}
}

func TestHandleSkipsDisabledLevels(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}, &debug)

	logger := slog.New(h)
	logger.Info("should not appear")

	if buf.Len() != 0 {
		t.Fatalf("buffer = %q, want empty: info below configured warn level", buf.String())
	}
}

func TestHandleMirrorsWarningsRegardlessOfDebugFlag(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, &debug)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	oldStderr := os.Stderr
	os.Stderr = w
	logger := slog.New(h)
	logger.Warn("disk almost full")
	os.Stderr = oldStderr
	w.Close()
	mirrored, _ := io.ReadAll(r)
	r.Close()

	if !strings.Contains(buf.String(), "disk almost full") {
		t.Fatalf("file output = %q, want it to contain the message", buf.String())
	}
	if !strings.Contains(string(mirrored), "disk almost full") {
		t.Fatalf("stderr output = %q, want the warning mirrored with debug off", string(mirrored))
	}
}

func TestSetDebugUpdatesMirroring(t *testing.T) {
	var buf bytes.Buffer
	debug := false
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, &debug)

	if h.debug {
		t.Fatalf("debug = true, want false before SetDebug")
	}
	enabled := true
	h.SetDebug(&enabled)
	if !h.debug {
		t.Fatalf("debug = false, want true after SetDebug")
	}
}

func TestInitInstallsWorkingDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, slog.LevelInfo, false)

	slog.Default().Info("hello from Init")

	if !strings.Contains(buf.String(), "hello from Init") {
		t.Fatalf("output = %q, want it to contain the message", buf.String())
	}
}
