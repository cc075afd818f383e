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

// plusBlock sums N fixed-point operands. The output's word width is the
// widest summand's width plus ceil(log2(N)) guard bits, and every
// operand is pre-shifted to the common fraction at build time so
// Evaluate only ever adds aligned limbs.
type plusBlock struct {
	design.BlockBase
	terms []*design.InputPin[dfx.Value]
	shift []int
	out   *design.OutputPin[dfx.Value]
}

func (b *plusBlock) CanEvaluate() bool { return true }
func (b *plusBlock) GetSourceBlocks() []design.Block {
	blocks := make([]design.Block, len(b.terms))
	for i, p := range b.terms {
		blocks[i] = p.GetDrivingBlock()
	}
	return blocks
}

func (b *plusBlock) Evaluate() {
	sum := dfx.Zero(b.out.Type())
	for i, p := range b.terms {
		sum = p.GetValue().AccumulateShiftLeft(sum, b.shift[i])
	}
	b.out.Value = sum
}

func ceilLog2(n int) int {
	bits := 0
	for (1 << bits) < n {
		bits++
	}
	return bits
}

// Plus sums the given operands. The result type is signed if any
// operand is signed, carries the maximum fraction among the operands,
// and a word width equal to the widest (fraction-aligned) operand plus
// ceil(log2(len(terms))) guard bits against overflow during
// accumulation.
func Plus(d *design.Design, terms ...*design.Node[dfx.Value]) *design.Node[dfx.Value] {
	if len(terms) == 0 {
		panic("blocks: Plus requires at least one operand")
	}

	signed := false
	maxFraction := 0
	for _, t := range terms {
		if t.Type().IsSigned() {
			signed = true
		}
		if f := t.Type().GetFraction(); f > maxFraction {
			maxFraction = f
		}
	}

	maxAlignedWidth := 0
	shifts := make([]int, len(terms))
	for i, t := range terms {
		shift := maxFraction - t.Type().GetFraction()
		shifts[i] = shift
		alignedWidth := t.Type().GetWordWidth() + shift
		if t.Type().IsSigned() != signed {
			alignedWidth++
		}
		if alignedWidth > maxAlignedWidth {
			maxAlignedWidth = alignedWidth
		}
	}

	outType := dfx.Fixed(signed, maxAlignedWidth+ceilLog2(len(terms)), maxFraction)

	b := &plusBlock{shift: shifts}
	b.BlockBase = design.NewBlockBase(b, "plus", d.CurrentLevel())
	b.terms = make([]*design.InputPin[dfx.Value], len(terms))
	for i, t := range terms {
		b.terms[i] = design.NewInputPin[dfx.Value](b, t)
	}
	b.out = design.NewOutputPin[dfx.Value](b, outType)
	d.Add(b)
	return b.out.Node()
}

// timesBlock multiplies exactly two fixed-point operands.
type timesBlock struct {
	design.BlockBase
	a, bIn *design.InputPin[dfx.Value]
	out    *design.OutputPin[dfx.Value]
}

func (t *timesBlock) CanEvaluate() bool { return true }
func (t *timesBlock) GetSourceBlocks() []design.Block {
	return []design.Block{t.a.GetDrivingBlock(), t.bIn.GetDrivingBlock()}
}

func (t *timesBlock) Evaluate() {
	product := dfx.Zero(t.out.Type())
	av := t.a.GetValue()
	bv := t.bIn.GetValue()
	if av.Type().IsSigned() || bv.Type().IsSigned() {
		t.out.Value = av.AccumulateMultiplySigned(product, bv, 0)
	} else {
		t.out.Value = av.AccumulateMultiplyUnsigned(product, bv, 0)
	}
}

// Times multiplies a and b. The result's fraction is the sum of the
// operands' fractions and its word width is the sum of the operands'
// word widths, except that a single-bit unsigned operand (a boolean
// gate in fixed-point disguise) contributes zero extra width since it
// can only scale the other operand by 0 or 1.
func Times(d *design.Design, a, b *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	at, bt := a.Type(), b.Type()
	signed := at.IsSigned() || bt.IsSigned()
	fraction := at.GetFraction() + bt.GetFraction()

	widthA := at.GetWordWidth()
	if widthA == 1 && !at.IsSigned() {
		widthA = 0
	}
	widthB := bt.GetWordWidth()
	if widthB == 1 && !bt.IsSigned() {
		widthB = 0
	}
	width := widthA + widthB
	if width == 0 {
		width = 1
	}

	outType := dfx.Fixed(signed, width, fraction)

	blk := &timesBlock{}
	blk.BlockBase = design.NewBlockBase(blk, "times", d.CurrentLevel())
	blk.a = design.NewInputPin[dfx.Value](blk, a)
	blk.bIn = design.NewInputPin[dfx.Value](blk, b)
	blk.out = design.NewOutputPin[dfx.Value](blk, outType)
	d.Add(blk)
	return blk.out.Node()
}

type boolReduceKind int

const (
	reduceAnd boolReduceKind = iota
	reduceOr
	reduceXor
)

// boolFlatBlock is an N-ary boolean reduction: And, Or or Xor over a
// flat list of boolean operands.
type boolFlatBlock struct {
	design.BlockBase
	terms []*design.InputPin[bool]
	out   *design.OutputPin[bool]
	kind  boolReduceKind
}

func (b *boolFlatBlock) CanEvaluate() bool { return true }
func (b *boolFlatBlock) GetSourceBlocks() []design.Block {
	blocks := make([]design.Block, len(b.terms))
	for i, p := range b.terms {
		blocks[i] = p.GetDrivingBlock()
	}
	return blocks
}

func (b *boolFlatBlock) Evaluate() {
	switch b.kind {
	case reduceAnd:
		result := true
		for _, p := range b.terms {
			result = result && p.GetValue()
		}
		b.out.Value = result
	case reduceOr:
		result := false
		for _, p := range b.terms {
			result = result || p.GetValue()
		}
		b.out.Value = result
	case reduceXor:
		result := false
		for _, p := range b.terms {
			result = result != p.GetValue()
		}
		b.out.Value = result
	}
}

func newBoolFlat(d *design.Design, className string, kind boolReduceKind, terms []*design.Node[bool]) *design.Node[bool] {
	if len(terms) == 0 {
		panic("blocks: " + className + " requires at least one operand")
	}
	b := &boolFlatBlock{kind: kind}
	b.BlockBase = design.NewBlockBase(b, className, d.CurrentLevel())
	b.terms = make([]*design.InputPin[bool], len(terms))
	for i, t := range terms {
		b.terms[i] = design.NewInputPin[bool](b, t)
	}
	b.out = design.NewOutputPin[bool](b, dfx.Bool)
	d.Add(b)
	return b.out.Node()
}

// And reduces its operands with logical AND.
func And(d *design.Design, terms ...*design.Node[bool]) *design.Node[bool] {
	return newBoolFlat(d, "and", reduceAnd, terms)
}

// Or reduces its operands with logical OR.
func Or(d *design.Design, terms ...*design.Node[bool]) *design.Node[bool] {
	return newBoolFlat(d, "or", reduceOr, terms)
}

// Xor reduces its operands with logical XOR.
func Xor(d *design.Design, terms ...*design.Node[bool]) *design.Node[bool] {
	return newBoolFlat(d, "xor", reduceXor, terms)
}
