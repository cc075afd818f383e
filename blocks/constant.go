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

// Package blocks implements the block catalogue (C4) and the peripheral
// testbench modules (C9): the concrete block classes that give the
// design graph its computational content.
package blocks

import (
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

// constantBlock has zero inputs and a compile-time value on its single
// output; it is never evaluated.
type constantBlock struct {
	design.BlockBase
	out   *design.OutputPin[dfx.Value]
	value dfx.Value
}

func (b *constantBlock) Evaluate()                     {}
func (b *constantBlock) CanEvaluate() bool              { return false }
func (b *constantBlock) GetSourceBlocks() []design.Block { return nil }

// GetProperties reports the constant's type and value so the Verilog
// emitter can render it as a sized literal without a type assertion
// back into this package.
func (b *constantBlock) GetProperties(p *design.Properties) {
	p.SetInt("wordWidth", b.value.Type().GetWordWidth())
	p.SetInt("signed", boolToInt(b.value.Type().IsSigned()))
	p.SetInt("fraction", b.value.Type().GetFraction())
	if v, err := b.value.ToInt64(); err == nil {
		p.SetInt("value", int(v))
	}
}

// Constant returns a handle to a constant dynfix value.
func Constant(d *design.Design, value dfx.Value) *design.Node[dfx.Value] {
	b := &constantBlock{value: value}
	b.BlockBase = design.NewBlockBase(b, "constant", d.CurrentLevel())
	b.out = design.NewOutputPin[dfx.Value](b, value.Type())
	b.out.Value = value
	d.Add(b)
	return b.out.Node()
}

// ConstantBool returns a handle to a constant boolean value.
func ConstantBool(d *design.Design, value bool) *design.Node[bool] {
	b := &constBoolBlock{value: value}
	b.BlockBase = design.NewBlockBase(b, "constant", d.CurrentLevel())
	b.out = design.NewOutputPin[bool](b, dfx.Bool)
	b.out.Value = value
	d.Add(b)
	return b.out.Node()
}

type constBoolBlock struct {
	design.BlockBase
	out   *design.OutputPin[bool]
	value bool
}

func (b *constBoolBlock) Evaluate()                      {}
func (b *constBoolBlock) CanEvaluate() bool               { return false }
func (b *constBoolBlock) GetSourceBlocks() []design.Block { return nil }

// GetProperties reports the constant's boolean value so the Verilog
// emitter can render it as a 1-bit literal.
func (b *constBoolBlock) GetProperties(p *design.Properties) {
	p.SetInt("wordWidth", 1)
	p.SetInt("value", boolToInt(b.value))
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// identityBlock copies its input to its output. Simplify splices it out
// of the graph unless it is self-feeding.
type identityBlock struct {
	design.BlockBase
	in  *design.InputPin[dfx.Value]
	out *design.OutputPin[dfx.Value]
}

// Identity returns a pass-through node. Used internally to back
// temporary placeholders that end up driven by a real block; surfaced
// for front-ends that need an explicit identity tap.
func Identity(d *design.Design, in *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	b := &identityBlock{}
	b.BlockBase = design.NewBlockBase(b, "identity", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.out = design.NewOutputPin[dfx.Value](b, in.Type())
	d.Add(b)
	return b.out.Node()
}

func (b *identityBlock) Evaluate() { b.out.Value = b.in.GetValue() }
func (b *identityBlock) CanEvaluate() bool { return true }
func (b *identityBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

// Simplify reroutes the identity's sole input directly to all of its
// output's consumers and marks the block for removal, unless the input
// is already driven by this same block (a self-loop, which Simplify
// must not try to eliminate).
func (b *identityBlock) Simplify() {
	driver := b.in.GetDrivingBlock()
	if driver == b {
		return
	}
	outBase := b.out.Base()
	driverPin := b.in.Base().Driver()
	if driverPin == nil {
		return
	}
	for _, consumer := range append([]*design.InputPinBase(nil), outBase.Consumers()...) {
		consumer.Connect(driverPin)
	}
}

func (b *identityBlock) IsTemporary() bool { return false }
