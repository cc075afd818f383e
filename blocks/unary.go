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

// negateBlock computes the two's-complement negation of its operand,
// widened by one bit and forced signed so that negating the most
// negative representable value does not overflow.
type negateBlock struct {
	design.BlockBase
	in  *design.InputPin[dfx.Value]
	out *design.OutputPin[dfx.Value]
}

func (b *negateBlock) CanEvaluate() bool { return true }
func (b *negateBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *negateBlock) Evaluate() {
	b.out.Value = b.in.GetValue().CopyNegate(b.out.Type())
}

// Negate returns -in.
func Negate(d *design.Design, in *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	t := in.Type()
	outType := dfx.Fixed(true, t.GetWordWidth()+1, t.GetFraction())

	b := &negateBlock{}
	b.BlockBase = design.NewBlockBase(b, "negate", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.out = design.NewOutputPin[dfx.Value](b, outType)
	d.Add(b)
	return b.out.Node()
}

// notFixedBlock computes the one's-complement (bitwise NOT) of its
// fixed-point operand, preserving its type exactly.
type notFixedBlock struct {
	design.BlockBase
	in  *design.InputPin[dfx.Value]
	out *design.OutputPin[dfx.Value]
}

func (b *notFixedBlock) CanEvaluate() bool { return true }
func (b *notFixedBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *notFixedBlock) Evaluate() {
	b.out.Value = b.in.GetValue().CopyNot(b.out.Type())
}

// NotFixed returns the bitwise complement of in, keeping its type.
func NotFixed(d *design.Design, in *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	b := &notFixedBlock{}
	b.BlockBase = design.NewBlockBase(b, "not", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.out = design.NewOutputPin[dfx.Value](b, in.Type())
	d.Add(b)
	return b.out.Node()
}

// notBlock is the boolean complement.
type notBlock struct {
	design.BlockBase
	in  *design.InputPin[bool]
	out *design.OutputPin[bool]
}

func (b *notBlock) CanEvaluate() bool { return true }
func (b *notBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *notBlock) Evaluate() {
	b.out.Value = !b.in.GetValue()
}

// Not returns the logical complement of in.
func Not(d *design.Design, in *design.Node[bool]) *design.Node[bool] {
	b := &notBlock{}
	b.BlockBase = design.NewBlockBase(b, "not", d.CurrentLevel())
	b.in = design.NewInputPin[bool](b, in)
	b.out = design.NewOutputPin[bool](b, dfx.Bool)
	d.Add(b)
	return b.out.Node()
}
