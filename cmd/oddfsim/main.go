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

// Command oddfsim builds a design, elaborates it, optionally emits
// Verilog for its module hierarchy, and either runs it for a fixed
// number of cycles or drops into an interactive console for stepping
// it and poking its configuration bus.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/christian-volmer/oddf-sub000/blocks"
	"github.com/christian-volmer/oddf-sub000/command/simcommand"
	"github.com/christian-volmer/oddf-sub000/confbus"
	"github.com/christian-volmer/oddf-sub000/config/configparser"
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
	"github.com/christian-volmer/oddf-sub000/elaborate"
	"github.com/christian-volmer/oddf-sub000/util/debug"
	"github.com/christian-volmer/oddf-sub000/util/logger"
	"github.com/christian-volmer/oddf-sub000/verilog"
)

var addrWidth = 8

var moduleOverrides = map[string][]configparser.Option{}

func init() {
	configparser.RegisterValue("ADDRWIDTH", func(value string, _ []configparser.Option) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("ADDRWIDTH: invalid width %q", value)
		}
		addrWidth = v
		return nil
	})

	// Bussification overrides per module name: which named entity in the
	// design gets its own confbus register range, and how it is laid
	// out. The static demo design below doesn't consult these, but any
	// design built from a configuration-driven generator would look them
	// up by module name before calling Builder.AddRange.
	configparser.RegisterOptions("MODULE", func(value string, options []configparser.Option) error {
		moduleOverrides[value] = options
		return nil
	})
}

func main() {
	optConfig := getopt.StringLong("cfg", 'c', "", "Configuration file")
	optSteps := getopt.IntLong("steps", 's', 0, "Run this many cycles non-interactively, then exit")
	optTrace := getopt.BoolLong("trace", 't', "Enable debug-level logging to stderr")
	optDebugMask := getopt.IntLong("debug-mask", 'm', 0, "Debug mask to register for the \"sim\" module")
	optVerilogDir := getopt.StringLong("verilog", 'o', "", "Directory to emit Verilog into, then exit")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *optTrace {
		level = slog.LevelDebug
	}
	logger.Init(os.Stderr, level, *optTrace)

	if *optDebugMask != 0 {
		debug.SetMask("sim", *optDebugMask)
	}

	if *optConfig != "" {
		if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
			slog.Error("configuration file not found", "path", *optConfig)
			os.Exit(1)
		}
		if err := configparser.LoadConfigFile(*optConfig); err != nil {
			slog.Error("failed to load configuration", "error", err.Error())
			os.Exit(1)
		}
	}

	d := design.New("top")
	ctrl, err := buildDesign(d)
	if err != nil {
		slog.Error("failed to build design", "error", err.Error())
		os.Exit(1)
	}

	if *optVerilogDir != "" {
		if err := emitVerilog(d, *optVerilogDir); err != nil {
			slog.Error("failed to emit verilog", "error", err.Error())
			os.Exit(1)
		}
		return
	}

	if *optSteps > 0 {
		ctrl.Scheduler().Run(*optSteps)
		fmt.Printf("ran %d cycles\n", ctrl.Scheduler().CycleCount())
		return
	}

	runConsole(ctrl)
}

// buildDesign wires a small demonstration design onto d's configuration
// bus: a free-running counter that increments by 1 plus whatever value
// was last written to its "step" register, with the running count
// itself readable back over the bus. Exercises Constant, Plus, Delay
// and the confbus Builder/Controller pair together.
func buildDesign(d *design.Design) (*confbus.Controller, error) {
	addrType := dfx.Fixed(false, addrWidth, 0)
	ctrl := confbus.NewController(d, addrType)
	builder := confbus.NewBuilder(d, addrType, ctrl.Address, ctrl.WriteEnable, ctrl.WriteData, ctrl.ReadRequest, ctrl.ClearAll)

	counterType := dfx.Fixed(false, 32, 0)
	step := builder.AddWriteRegister(counterType, "step")

	one := blocks.Constant(d, dfx.FromInt64(counterType, 1))

	count := design.NewForward[dfx.Value](counterType)
	wide := blocks.Plus(d, &count.Node, one, step)
	next := blocks.ReinterpretCast(d, wide, counterType)

	delayBuilder := blocks.NewDelay(d, nil)
	counterOut := delayBuilder.AddPath(next, dfx.Zero(counterType))
	count.Assign(counterOut)

	builder.AddReadRegister(counterType, "count", counterOut)

	readAck, readData := builder.Finalize()
	if err := ctrl.Attach(readAck, readData); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func emitVerilog(d *design.Design, dir string) error {
	ed, err := elaborate.Elaborate(d)
	if err != nil {
		return err
	}
	files, err := verilog.Emit(ed)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Content), 0o644); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %d module(s) to %s\n", len(files), dir)
	return nil
}

func runConsole(ctrl *confbus.Controller) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(s string) []string {
		return simcommand.CompleteCmd(s)
	})

	for {
		command, err := line.Prompt("oddfsim> ")
		if err == nil {
			line.AppendHistory(command)
			quit, perr := simcommand.ProcessCommand(command, ctrl)
			if perr != nil {
				fmt.Println("Error: " + perr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("error reading line", "error", err.Error())
		return
	}
}
