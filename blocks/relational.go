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

type relKind int

const (
	relEqual relKind = iota
	relNotEqual
	relLess
	relLessEqual
)

// relationalBlock compares two fixed-point operands, pre-aligned to
// their common type, and produces a single boolean.
type relationalBlock struct {
	design.BlockBase
	a, bIn  *design.InputPin[dfx.Value]
	out     *design.OutputPin[bool]
	kind    relKind
	aShift  int
	bShift  int
	cmpType dfx.Type
}

func (b *relationalBlock) CanEvaluate() bool { return true }
func (b *relationalBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.a.GetDrivingBlock(), b.bIn.GetDrivingBlock()}
}

func (b *relationalBlock) Evaluate() {
	av := b.a.GetValue().CopyShiftLeft(b.cmpType, b.aShift)
	bv := b.bIn.GetValue().CopyShiftLeft(b.cmpType, b.bShift)

	var cmp int
	if b.cmpType.IsSigned() {
		cmp = dfx.CompareSigned(av, bv)
	} else {
		cmp = dfx.CompareUnsigned(av, bv)
	}

	switch b.kind {
	case relEqual:
		b.out.Value = cmp == 0
	case relNotEqual:
		b.out.Value = cmp != 0
	case relLess:
		b.out.Value = cmp < 0
	case relLessEqual:
		b.out.Value = cmp <= 0
	}
}

func newRelational(d *design.Design, className string, kind relKind, a, bOperand *design.Node[dfx.Value]) *design.Node[bool] {
	at, bt := a.Type(), bOperand.Type()

	signed := at.IsSigned() || bt.IsSigned()
	fraction := at.GetFraction()
	if bt.GetFraction() > fraction {
		fraction = bt.GetFraction()
	}
	aShift := fraction - at.GetFraction()
	bShift := fraction - bt.GetFraction()

	width := at.GetWordWidth() + aShift
	if w := bt.GetWordWidth() + bShift; w > width {
		width = w
	}
	if at.IsSigned() != signed {
		width++
	}
	if bt.IsSigned() != signed {
		width++
	}

	cmpType := dfx.Fixed(signed, width, fraction)

	b := &relationalBlock{kind: kind, aShift: aShift, bShift: bShift, cmpType: cmpType}
	b.BlockBase = design.NewBlockBase(b, className, d.CurrentLevel())
	b.a = design.NewInputPin[dfx.Value](b, a)
	b.bIn = design.NewInputPin[dfx.Value](b, bOperand)
	b.out = design.NewOutputPin[bool](b, dfx.Bool)
	d.Add(b)
	return b.out.Node()
}

// Equal reports whether a == b, aligned to their common type.
func Equal(d *design.Design, a, b *design.Node[dfx.Value]) *design.Node[bool] {
	return newRelational(d, "equal", relEqual, a, b)
}

// NotEqual reports whether a != b, aligned to their common type.
func NotEqual(d *design.Design, a, b *design.Node[dfx.Value]) *design.Node[bool] {
	return newRelational(d, "not_equal", relNotEqual, a, b)
}

// Less reports whether a < b, aligned to their common type.
func Less(d *design.Design, a, b *design.Node[dfx.Value]) *design.Node[bool] {
	return newRelational(d, "less", relLess, a, b)
}

// LessEqual reports whether a <= b, aligned to their common type.
func LessEqual(d *design.Design, a, b *design.Node[dfx.Value]) *design.Node[bool] {
	return newRelational(d, "less_equal", relLessEqual, a, b)
}
