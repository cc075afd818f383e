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

// CastMode selects the overflow policy applied by a cast block when the
// destination type cannot represent the shifted/rounded result.
type CastMode int

const (
	WrapAround CastMode = iota
	Saturate
)

type castKind int

const (
	castFloor castKind = iota
	castNearest
	castConvergent
	castReinterpret
)

type castBlock struct {
	design.BlockBase
	in   *design.InputPin[dfx.Value]
	out  *design.OutputPin[dfx.Value]
	kind castKind
	mode CastMode
}

func (b *castBlock) CanEvaluate() bool { return true }
func (b *castBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *castBlock) Evaluate() {
	b.out.Value = castValue(b.in.GetValue(), b.out.Type(), b.kind, b.mode)
}

func newCast(d *design.Design, className string, in *design.Node[dfx.Value], dst dfx.Type, kind castKind, mode CastMode) *design.Node[dfx.Value] {
	b := &castBlock{kind: kind, mode: mode}
	b.BlockBase = design.NewBlockBase(b, className, d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.out = design.NewOutputPin[dfx.Value](b, dst)
	d.Add(b)
	return b.out.Node()
}

// FloorCast rounds toward negative infinity: the two's-complement
// representation already floors on a plain shift, so this is a shift
// to the destination's fraction followed by an (optional) saturation
// check.
func FloorCast(d *design.Design, in *design.Node[dfx.Value], dst dfx.Type, mode CastMode) *design.Node[dfx.Value] {
	return newCast(d, "floor_cast", in, dst, castFloor, mode)
}

// NearestCast adds half a destination-ULP before flooring, i.e. rounds
// to nearest with ties going toward +infinity (a positive tie rounds
// away from zero, a negative tie toward zero).
func NearestCast(d *design.Design, in *design.Node[dfx.Value], dst dfx.Type, mode CastMode) *design.Node[dfx.Value] {
	return newCast(d, "nearest_cast", in, dst, castNearest, mode)
}

// ConvergentCast performs banker's rounding (round half to even) when
// both source and destination are fixed-point and the destination has
// fewer fractional bits than the source.
func ConvergentCast(d *design.Design, in *design.Node[dfx.Value], dst dfx.Type, mode CastMode) *design.Node[dfx.Value] {
	return newCast(d, "convergent_cast", in, dst, castConvergent, mode)
}

// ReinterpretCast copies the source's bit pattern and re-canonicalizes
// it under the destination type, without any shift for fraction
// alignment.
func ReinterpretCast(d *design.Design, in *design.Node[dfx.Value], dst dfx.Type) *design.Node[dfx.Value] {
	return newCast(d, "reinterpret_cast", in, dst, castReinterpret, WrapAround)
}

func castValue(v dfx.Value, dst dfx.Type, kind castKind, mode CastMode) dfx.Value {
	if kind == castReinterpret {
		return v.Copy(dst)
	}

	srcT := v.Type()
	dropped := srcT.GetFraction() - dst.GetFraction()

	var wide dfx.Value
	switch {
	case dropped <= 0:
		// No bits dropped: floor, nearest and convergent all agree, a
		// pure shift-left (or no shift) into a wide intermediate type
		// preserves the value exactly.
		wideType := dfx.Fixed(srcT.IsSigned() || dst.IsSigned(), dst.GetWordWidth()+8, dst.GetFraction())
		wide = v.CopyShiftLeft(wideType, -dropped)
	default:
		wideType := dfx.Fixed(srcT.IsSigned() || dst.IsSigned(), srcT.GetWordWidth()+8, srcT.GetFraction())
		biased := v.Copy(wideType)

		switch kind {
		case castNearest:
			biased = rawBias(wideType, 1<<uint(dropped-1)).AccumulateShiftLeft(biased, 0)
		case castConvergent:
			// Round half to even: add the half-ULP bias only when the
			// bit pattern below it is not exactly the tie value, or
			// when it is a tie and the retained LSB would otherwise be
			// odd. The dropped bits come off biased's raw
			// two's-complement pattern one at a time via Bit rather than
			// through ToInt64: wideType's word width
			// (srcT.GetWordWidth()+8) routinely exceeds 64 bits for
			// dynfix's wide types, and ToInt64 errors whenever the
			// reinterpreted-unsigned value doesn't fit in that range.
			tieBit := int64(1) << uint(dropped-1)
			var remainder int64
			for i := 0; i < dropped; i++ {
				if biased.Bit(i) {
					remainder |= int64(1) << uint(i)
				}
			}
			if remainder != tieBit {
				if remainder > tieBit {
					biased = rawBias(wideType, tieBit).AccumulateShiftLeft(biased, 0)
				}
			} else {
				if biased.Bit(dropped) {
					biased = rawBias(wideType, tieBit).AccumulateShiftLeft(biased, 0)
				}
			}
		}

		wide = biased.CopyShiftLeft(wideType, -dropped)
	}

	if mode == Saturate {
		wide = saturate(wide, dst)
	}
	return wide.Copy(dst)
}

// rawBias builds a value whose raw two's-complement bit pattern under
// wideType equals raw exactly, bypassing dfx.FromInt64's usual
// scaling by wideType's fraction (which would turn a raw bias of e.g.
// one half-dropped-ULP into that many whole wideType units instead).
func rawBias(wideType dfx.Type, raw int64) dfx.Value {
	rawType := dfx.Fixed(wideType.IsSigned(), wideType.GetWordWidth(), 0)
	return dfx.FromInt64(rawType, raw).Copy(wideType)
}

func saturate(wide dfx.Value, dst dfx.Type) dfx.Value {
	wideType := dfx.Fixed(dst.IsSigned(), dst.GetWordWidth()+8, dst.GetFraction())
	min := dfx.GetMin(dst).Copy(wideType)
	max := dfx.GetMax(dst).Copy(wideType)
	wide = wide.Copy(wideType)

	cmp := dfx.CompareUnsigned
	if dst.IsSigned() {
		cmp = dfx.CompareSigned
	}
	if cmp(wide, min) < 0 {
		wide = min
	} else if cmp(wide, max) > 0 {
		wide = max
	}
	return wide
}
