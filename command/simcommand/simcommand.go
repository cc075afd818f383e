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

// Package simcommand implements the interactive console's command
// line: a minimum-unique-prefix dispatch table over a running
// confbus.Controller, in the same style as the teacher's device
// console (step/run/peek/poke/reset/quit instead of attach/show/ipl).
package simcommand

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/christian-volmer/oddf-sub000/confbus"
)

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *confbus.Controller) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "step", min: 2, process: step},
	{name: "run", min: 3, process: run},
	{name: "reset", min: 3, process: reset},
	{name: "peek", min: 2, process: peek},
	{name: "poke", min: 2, process: poke},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand executes one line of input against ctrl, returning
// true if the caller should stop the REPL.
func ProcessCommand(commandLine string, ctrl *confbus.Controller) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()
	if name == "" {
		return false, nil
	}

	match := matchList(name)
	switch len(match) {
	case 0:
		return false, errors.New("command not found: " + name)
	case 1:
		return match[0].process(&line, ctrl)
	default:
		return false, errors.New("ambiguous command: " + name)
	}
}

// CompleteCmd returns the full command names that currentLine's first
// word is a unique-enough prefix of, for use as a liner completer.
func CompleteCmd(currentLine string) []string {
	line := cmdLine{line: currentLine}
	name := line.getWord()
	matches := matchList(name)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

func matchCommand(c cmd, name string) bool {
	if len(name) > len(c.name) {
		return false
	}
	for i := range name {
		if name[i] != c.name[i] {
			return false
		}
	}
	return len(name) >= c.min
}

func matchList(name string) []cmd {
	name = strings.ToLower(name)
	var matches []cmd
	for _, c := range cmdList {
		if matchCommand(c, name) {
			matches = append(matches, c)
		}
	}
	return matches
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	return line.pos >= len(line.line)
}

func (line *cmdLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return line.line[start:line.pos]
}

func step(_ *cmdLine, ctrl *confbus.Controller) (bool, error) {
	ctrl.Scheduler().Cycle()
	fmt.Printf("cycle %d\n", ctrl.Scheduler().CycleCount())
	return false, nil
}

func run(line *cmdLine, ctrl *confbus.Controller) (bool, error) {
	word := line.getWord()
	n := 1
	if word != "" {
		v, err := strconv.Atoi(word)
		if err != nil {
			return false, fmt.Errorf("run: invalid cycle count %q", word)
		}
		n = v
	}
	ctrl.Scheduler().Run(n)
	fmt.Printf("cycle %d\n", ctrl.Scheduler().CycleCount())
	return false, nil
}

func reset(_ *cmdLine, ctrl *confbus.Controller) (bool, error) {
	ctrl.Scheduler().Reset()
	fmt.Println("reset")
	return false, nil
}

func peek(line *cmdLine, ctrl *confbus.Controller) (bool, error) {
	word := line.getWord()
	addr, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		return false, fmt.Errorf("peek: invalid address %q", word)
	}
	value, err := ctrl.Read(addr)
	if err != nil {
		return false, err
	}
	fmt.Printf("%#x: %#x\n", addr, value)
	return false, nil
}

func poke(line *cmdLine, ctrl *confbus.Controller) (bool, error) {
	addrWord := line.getWord()
	valueWord := line.getWord()
	addr, err := strconv.ParseInt(addrWord, 0, 64)
	if err != nil {
		return false, fmt.Errorf("poke: invalid address %q", addrWord)
	}
	value, err := strconv.ParseInt(valueWord, 0, 64)
	if err != nil {
		return false, fmt.Errorf("poke: invalid value %q", valueWord)
	}
	ctrl.Write(addr, value)
	return false, nil
}

func quit(_ *cmdLine, _ *confbus.Controller) (bool, error) {
	return true, nil
}
