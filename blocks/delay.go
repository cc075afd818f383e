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

package blocks

import (
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

// delayBlock is a register: one or more data inputs of identical type,
// one data output per input, with an optional clock-enable input. On
// Step the outputs take on the inputs' values, gated by the
// clock-enable when present; on AsyncReset every output returns to its
// reset value (zero by default).
type delayBlock struct {
	design.BlockBase
	enable *design.InputPin[bool]
	paths  []delayPath
}

type delayPath struct {
	in   *design.InputPin[dfx.Value]
	out  *design.OutputPin[dfx.Value]
	init dfx.Value
}

func (b *delayBlock) Evaluate()              {}
func (b *delayBlock) CanEvaluate() bool      { return false }
func (b *delayBlock) GetSourceBlocks() []design.Block { return nil }

func (b *delayBlock) GetStep() design.Step { return (*delayStep)(b) }

type delayStep delayBlock

func (s *delayStep) Step() {
	b := (*delayBlock)(s)
	if b.enable != nil && !b.enable.GetValue() {
		return
	}
	for _, p := range b.paths {
		p.out.Value = p.in.GetValue()
	}
}

func (s *delayStep) AsyncReset() {
	b := (*delayBlock)(s)
	for _, p := range b.paths {
		p.out.Value = p.init
	}
}

// GetProperties reports whether a clock-enable pin is present, plus
// each path's reset value, so the Verilog emitter can render the
// reset branch of the always_ff block without inputs of its own (the
// reset value is baked into the block at construction, not wired).
func (b *delayBlock) GetProperties(p *design.Properties) {
	p.SetInt("hasEnable", boolToInt(b.enable != nil))
	for i, path := range b.paths {
		reset, _ := path.init.ToInt64()
		p.SetIntAt("reset", i, int(reset))
	}
}

// DelayBuilder accumulates data paths sharing one delay block and one
// optional clock-enable, mirroring the reference's block-with-add_path
// idiom (cf. decide_block_dynfix).
type DelayBuilder struct {
	d     *design.Design
	block *delayBlock
}

// NewDelay starts a delay block gated by the given clock-enable node
// (may be nil for an always-enabled register).
func NewDelay(d *design.Design, enable *design.Node[bool]) *DelayBuilder {
	b := &delayBlock{}
	b.BlockBase = design.NewBlockBase(b, "delay", d.CurrentLevel())
	if enable != nil {
		b.enable = design.NewInputPin[bool](b, enable)
	}
	d.Add(b)
	return &DelayBuilder{d: d, block: b}
}

// AddPath registers one data path with the given reset value, returning
// its registered output node.
func (db *DelayBuilder) AddPath(in *design.Node[dfx.Value], resetValue dfx.Value) *design.Node[dfx.Value] {
	inPin := design.NewInputPin[dfx.Value](db.block, in)
	outPin := design.NewOutputPin[dfx.Value](db.block, resetValue.Type())
	outPin.Value = resetValue
	db.block.paths = append(db.block.paths, delayPath{in: inPin, out: outPin, init: resetValue})
	return outPin.Node()
}
