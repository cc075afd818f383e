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

// Package configparser reads ODDF build-time configuration files: a
// line-based, registration-pattern format where each recognised first
// word dispatches to a handler registered by some other package's
// init function (bussification overrides per module name,
// configuration-bus address width, per-module debug masks).
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Option is one whitespace-separated option following a parameter's first
// value, optionally carrying an "=value" and/or a list of sub-values.
type Option struct {
	Name     string    // Name of option.
	EqualOpt string    // Value of string after =.
	Value    []*string // Value of option.
}

// parameterName is the first word on a configuration line.
type parameterName struct {
	name string
}

// FirstValue is the token immediately following a parameter name —
// a module path, a numeric width, a file name, or a debug module name,
// depending on the
// parameter's registered type.
type FirstValue struct {
	value string
}

// Current option line being parsed.
type optionLine struct {
	line string
	pos  int
}

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <parameter> <whitespace> <value> *(<whitespace> <options>) |
 *           <parameter> <whitespace> <options> |
 *           <parameter>
 * <parameter> := <string>
 * <value> ::= *(<letter> | <number> | '.' | '_' | '/' | '-')
 * <options> ::= *(<option> *(<whitespace>))
 * <option> ::= <name> ['=' <quoteopt>] *(',' *(<whitespace>) <string>)
 * <quoteopt> ::= <string> | '"' *(<letter> | <whitespace>) '"'
 * <string> ::= *(<letter> | <number>)
 */

const (
	TypeValue   = 1 + iota // Parameter takes a single first value (e.g. a module path).
	TypeOptions            // Parameter takes a first value plus a whitespace-separated option list.
	TypeSwitch             // Parameter takes no value, just sets a flag.
)

type parameterDef struct {
	create func(string, []Option) error
	ty     int
}

var parameters = map[string]parameterDef{}

var lineNumber int

func getParameter(name string) int {
	p, ok := parameters[name]
	if !ok {
		return 0
	}
	return p.ty
}

// RegisterValue registers a parameter taking exactly one value and no
// further options, e.g. "BUSWIDTH 32". Should be called from an init
// function.
func RegisterValue(name string, fn func(string, []Option) error) {
	name = strings.ToUpper(name)
	parameters[name] = parameterDef{create: fn, ty: TypeValue}
}

// RegisterOptions registers a parameter taking a value followed by a
// whitespace-separated option list, e.g. "MODULE top.adder bus named=x".
// Should be called from an init function.
func RegisterOptions(name string, fn func(string, []Option) error) {
	name = strings.ToUpper(name)
	parameters[name] = parameterDef{create: fn, ty: TypeOptions}
}

// RegisterSwitch registers a bare flag parameter with no value, e.g.
// "TRACE". Should be called from an init function.
func RegisterSwitch(name string, fn func(string, []Option) error) {
	name = strings.ToUpper(name)
	parameters[name] = parameterDef{create: fn, ty: TypeSwitch}
}

func createValue(name string, first *FirstValue) error {
	name = strings.ToUpper(name)
	p, ok := parameters[name]
	if !ok {
		return errors.New("unknown parameter: " + name)
	}
	if p.ty != TypeValue {
		return errors.New("not a value parameter: " + name)
	}
	return p.create(first.value, nil)
}

func createOptions(name string, first *FirstValue, options []Option) error {
	name = strings.ToUpper(name)
	p, ok := parameters[name]
	if !ok {
		return errors.New("unknown parameter: " + name)
	}
	if p.ty != TypeOptions {
		return errors.New("not an options parameter: " + name)
	}
	return p.create(first.value, options)
}

func createSwitch(name string) error {
	name = strings.ToUpper(name)
	p, ok := parameters[name]
	if !ok {
		return errors.New("unknown switch: " + name)
	}
	if p.ty != TypeSwitch {
		return errors.New("not a switch parameter: " + name)
	}
	return p.create("", nil)
}

// LoadConfigFile reads and dispatches every parameter line in name.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		line := optionLine{}
		var err error
		line.line, err = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := line.parseLine(); err != nil {
			return err
		}
	}
	return nil
}

func (line *optionLine) parseLine() error {
	param := line.parseParameterName()
	if param == nil {
		return nil
	}

	switch getParameter(param.name) {
	case TypeValue:
		first := line.parseFirstValue()
		if first == nil {
			return fmt.Errorf("parameter %s requires a value, line %d", param.name, lineNumber)
		}
		return createValue(param.name, first)

	case TypeOptions:
		first := line.parseFirstValue()
		if first == nil {
			return fmt.Errorf("parameter %s requires a value, line %d", param.name, lineNumber)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return createOptions(param.name, first, options)

	case TypeSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return fmt.Errorf("switch %s does not take a value, line %d", param.name, lineNumber)
		}
		return createSwitch(param.name)

	case 0:
		return fmt.Errorf("no parameter %s registered, line %d", param.name, lineNumber)
	}
	return nil
}

func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

func (line *optionLine) getNext(inQuote bool) byte {
	line.pos++
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	if unicode.IsLetter(rune(by)) || unicode.IsNumber(rune(by)) || inQuote {
		return by
	}
	return 0
}

func (line *optionLine) getPeek() byte {
	if (line.pos + 1) >= len(line.line) {
		return 0
	}
	return line.line[line.pos+1]
}

func (line *optionLine) parseParameterName() *parameterName {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}

	param := parameterName{}
	for !line.isEOL() {
		by := line.line[line.pos]
		if !unicode.IsLetter(rune(by)) && !unicode.IsNumber(rune(by)) {
			break
		}
		param.name += string([]byte{by})
		line.pos++
	}
	if param.name == "" {
		return nil
	}
	param.name = strings.ToUpper(param.name)
	return &param
}

func (line *optionLine) parseFirstValue() *FirstValue {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}

	value := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if !unicode.IsLetter(rune(by)) && !unicode.IsNumber(rune(by)) && by != '.' && by != '_' && by != '/' && by != '-' {
			break
		}
		value += string([]byte{by})
		line.pos++
	}
	if value == "" {
		return nil
	}
	return &FirstValue{value: value}
}

func (line *optionLine) parseQuoteString() (string, bool) {
	inQuote := false
	value := ""

	if line.getPeek() == '"' {
		inQuote = true
		_ = line.getNext(true)
	}

	for {
		by := line.getNext(inQuote)
		if by == '"' && inQuote {
			by = line.getNext(inQuote)
			if by != '"' {
				return value, true
			}
		}

		space := unicode.IsSpace(rune(by))
		if !inQuote && (space || by == 0 || by == ',') {
			return value, true
		}

		value += string(by)
		if line.isEOL() {
			return value, !inQuote
		}
	}
}

func (line *optionLine) getName() (string, error) {
	if line.isEOL() {
		return "", nil
	}

	by := line.line[line.pos]
	if !unicode.IsLetter(rune(by)) {
		if !line.isEOL() {
			return "", fmt.Errorf("invalid option encountered line %d [%d]", lineNumber, line.pos)
		}
		return "", nil
	}

	value := ""
	for {
		value += string([]byte{by})
		by = line.getNext(false)
		if by == 0 {
			break
		}
	}
	return value, nil
}

func (line *optionLine) parseOption() (*Option, error) {
	line.skipSpace()

	value, err := line.getName()
	if value == "" {
		return nil, err
	}

	option := Option{Name: value}

	if line.isEOL() {
		return &option, nil
	}

	if line.line[line.pos] == '=' {
		v, ok := line.parseQuoteString()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string line %d [%d]", lineNumber, line.pos)
		}
		option.EqualOpt = v
	}

	line.skipSpace()

	for !line.isEOL() && line.line[line.pos] == ',' {
		line.pos++
		line.skipSpace()
		v, err := line.getName()
		if err != nil {
			return nil, err
		}
		if v != "" {
			option.Value = append(option.Value, &v)
		}
		line.skipSpace()
	}

	return &option, nil
}

func (line *optionLine) parseOptions() ([]Option, error) {
	var options []Option
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			break
		}
		options = append(options, *option)
	}
	return options, nil
}
