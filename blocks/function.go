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

// functionBlock wraps an arbitrary host-language callable for use
// during simulation only; it has no Verilog representation and must be
// elaborated away (e.g. replaced or removed) before code generation, a
// constraint the elaborator's CheckConsistency pass enforces.
type functionBlock struct {
	design.BlockBase
	ins  []*design.InputPin[dfx.Value]
	outs []*design.OutputPin[dfx.Value]
	fn   func(in []dfx.Value, out []dfx.Value) []dfx.Value
}

func (b *functionBlock) CanEvaluate() bool { return true }
func (b *functionBlock) GetSourceBlocks() []design.Block {
	blocks := make([]design.Block, len(b.ins))
	for i, p := range b.ins {
		blocks[i] = p.GetDrivingBlock()
	}
	return blocks
}

func (b *functionBlock) Evaluate() {
	in := make([]dfx.Value, len(b.ins))
	for i, p := range b.ins {
		in[i] = p.GetValue()
	}
	out := make([]dfx.Value, len(b.outs))
	for i, p := range b.outs {
		out[i] = p.Value
	}

	result := func() (result []dfx.Value) {
		defer func() {
			if r := recover(); r != nil {
				panic(design.NewRuntimeError("function: %s: %v", b.GetFullName(), r))
			}
		}()
		return b.fn(in, out)
	}()

	for i, p := range b.outs {
		p.Value = result[i].Copy(p.Type())
	}
}

// Function wraps fn as a combinational block for simulation-only use:
// fn receives the current input values and the output values from the
// previous evaluation, and must return one value per entry in
// outTypes. It is never emitted to Verilog.
func Function(d *design.Design, ins []*design.Node[dfx.Value], outTypes []dfx.Type, fn func(in []dfx.Value, out []dfx.Value) []dfx.Value) []*design.Node[dfx.Value] {
	b := &functionBlock{fn: fn}
	b.BlockBase = design.NewBlockBase(b, "function", d.CurrentLevel())
	b.ins = make([]*design.InputPin[dfx.Value], len(ins))
	for i, n := range ins {
		b.ins[i] = design.NewInputPin[dfx.Value](b, n)
	}
	b.outs = make([]*design.OutputPin[dfx.Value], len(outTypes))
	nodes := make([]*design.Node[dfx.Value], len(outTypes))
	for i, t := range outTypes {
		b.outs[i] = design.NewOutputPin[dfx.Value](b, t)
		b.outs[i].Value = dfx.Zero(t)
		nodes[i] = b.outs[i].Node()
	}
	d.Add(b)
	return nodes
}

// IsTemporary reports true for every function block, so the
// elaborator's CheckConsistency pass rejects any design that still
// contains one; no pass in this module replaces a function block with a
// synthesizable equivalent.
func (b *functionBlock) IsTemporary() bool { return true }
