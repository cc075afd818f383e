/*
 * ODDF - Log debug data to a file
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

// Package debug writes mask-gated trace messages to a registered file,
// keyed by module name rather than device number, and provides the
// Assert helper a design's Function blocks use to turn a host-language
// invariant into a design.RuntimeError during simulation.
package debug

import (
	"fmt"
	"os"
	"sync"

	"github.com/christian-volmer/oddf-sub000/config/configparser"
	"github.com/christian-volmer/oddf-sub000/design"
)

var logFile *os.File

var (
	masksMu sync.Mutex
	masks   = map[string]int{}
)

// SetMask sets the debug mask associated with module. Bits in mask
// select which Debugf calls against that module name are written.
func SetMask(module string, mask int) {
	masksMu.Lock()
	defer masksMu.Unlock()
	masks[module] = mask
}

// GetMask returns the debug mask currently registered for module, or 0
// if none has been set.
func GetMask(module string) int {
	masksMu.Lock()
	defer masksMu.Unlock()
	return masks[module]
}

// Debugf writes a trace line for module if level is set in the mask
// most recently registered for it via SetMask or the DEBUG
// configuration directive. With no debug file open, Debugf is a no-op.
func Debugf(module string, level int, format string, a ...interface{}) {
	if (GetMask(module) & level) == 0 {
		return
	}
	if logFile == nil {
		return
	}
	fmt.Fprintf(logFile, module+": "+format+"\n", a...)
}

// Assertf panics with a design.RuntimeError if cond is false,
// formatting a message the same way Debugf does. Meant to be called
// from the callback passed to blocks.Function, whose Evaluate recovers
// the panic and re-raises it typed as a design.RuntimeError.
func Assertf(cond bool, format string, a ...interface{}) {
	if cond {
		return
	}
	panic(design.NewRuntimeError(format, a...))
}

func init() {
	configparser.RegisterValue("DEBUGFILE", create)
	configparser.RegisterOptions("DEBUG", setDebugMask)
}

func create(fileName string, _ []configparser.Option) error {
	if logFile != nil {
		return fmt.Errorf("can't have more than one debug file, previous: %s", logFile.Name())
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s", fileName)
	}

	logFile = file
	return nil
}

// setDebugMask handles "DEBUG <module> <flag>, <flag>, ..." lines,
// OR-ing one bit per named flag (bit position given by the flag's
// position in the option list) into the mask registered for module.
func setDebugMask(module string, options []configparser.Option) error {
	mask := 0
	for i := range options {
		mask |= 1 << uint(i)
	}
	SetMask(module, mask)
	return nil
}
