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

package dfx

import (
	"fmt"
	"math"
)

// LimbBits is the width of one storage limb.
const LimbBits = 32

// MaxLimbs caps dynfix storage at 4 limbs (128 bits), matching the
// reference implementation's compile-time limit. See DESIGN.md, Open
// Question decision 3: this could be made dynamic, but the wrap-around
// invariant and the fixed 4-limb capacity are kept identical to the
// original rather than generalized.
const MaxLimbs = 4

// MaxWordWidth is the largest word width representable in MaxLimbs limbs.
const MaxWordWidth = MaxLimbs * LimbBits

// Value is a dynfix: a fixed-width signed or unsigned two's-complement
// integer interpreted with a binary-point offset, stored as a
// fixed-capacity little-endian array of 32-bit limbs. Bits above the
// declared word width always carry the correctly sign- or
// zero-extended value; Value never holds a non-canonical bit pattern
// for longer than the inside of one operation.
type Value struct {
	typ   Type
	limbs [MaxLimbs]uint32
}

func limbCount(wordWidth int) int {
	return (wordWidth + LimbBits - 1) / LimbBits
}

// Zero returns the canonical zero value of the given fixed-point type.
func Zero(t Type) Value {
	return Value{typ: t}
}

// FromInt64 constructs a dynfix from a native 64-bit integer, scaled by
// the type's fraction and wrapped to its word width.
func FromInt64(t Type, v int64) Value {
	var limbs [MaxLimbs]uint32
	neg := v < 0
	u := uint64(v)
	if neg {
		u = uint64(-v)
	}
	limbs[0] = uint32(u)
	limbs[1] = uint32(u >> 32)
	val := Value{typ: t, limbs: limbs}
	if neg {
		val.limbs = negateLimbs(val.limbs)
	}
	if t.fraction > 0 {
		val.limbs = shiftLeftLimbs(val.limbs, t.fraction)
	} else if t.fraction < 0 {
		val.limbs = shiftRightLimbs(val.limbs, -t.fraction, t.signed)
	}
	wrapAround(&val.limbs, t.signed, t.wordWidth)
	return val
}

// FromFloat64 constructs a dynfix from a double by scaling by 2^fraction
// and rounding toward -infinity (floor), matching the reference
// double-to-dynfix constructor's behavior.
func FromFloat64(t Type, v float64) Value {
	scaled := v * math.Pow(2, float64(t.fraction))
	f := math.Floor(scaled)

	val := Value{typ: t}
	neg := f < 0
	mag := math.Abs(f)

	// Decompose the magnitude into limbs by repeated division; mag can
	// exceed the range of a uint64 for very wide fixed-point types, so
	// this does not just cast through int64.
	for i := 0; i < MaxLimbs && mag != 0; i++ {
		rem := math.Mod(mag, 4294967296.0)
		val.limbs[i] = uint32(rem)
		mag = math.Floor(mag / 4294967296.0)
	}
	if neg {
		val.limbs = negateLimbs(val.limbs)
	}
	wrapAround(&val.limbs, t.signed, t.wordWidth)
	return val
}

func (v Value) Type() Type { return v.typ }

// ToFloat64 converts back to a double, limb-weighted, matching the
// reference operator double().
func (v Value) ToFloat64() float64 {
	limbs := v.limbs
	neg := v.typ.signed && (limbs[limbCount(v.typ.wordWidth)-1]>>uint((v.typ.wordWidth-1)%32))&1 == 1
	if neg {
		limbs = negateLimbs(limbs)
	}
	result := 0.0
	weight := 1.0
	for i := 0; i < MaxLimbs; i++ {
		result += float64(limbs[i]) * weight
		weight *= 4294967296.0
	}
	if neg {
		result = -result
	}
	return result / math.Pow(2, float64(v.typ.fraction))
}

// ToInt64 converts to a native 64-bit integer. It fails with an error
// (the caller maps this to design.RangeError) if the value has a
// non-zero fraction or does not fit in 64 bits.
func (v Value) ToInt64() (int64, error) {
	if v.typ.fraction != 0 {
		return 0, fmt.Errorf("dfx: cannot convert %s to int64: non-zero fraction", v.typ)
	}
	limbs := v.limbs
	neg := v.typ.signed && (limbs[limbCount(v.typ.wordWidth)-1]>>uint((v.typ.wordWidth-1)%32))&1 == 1
	if neg {
		limbs = negateLimbs(limbs)
	}
	for i := 2; i < MaxLimbs; i++ {
		if limbs[i] != 0 {
			return 0, fmt.Errorf("dfx: value does not fit in int64")
		}
	}
	u := uint64(limbs[0]) | uint64(limbs[1])<<32
	if neg {
		if u > 1<<63 {
			return 0, fmt.Errorf("dfx: value does not fit in int64")
		}
		return -int64(u), nil
	}
	if u >= 1<<63 {
		return 0, fmt.Errorf("dfx: value does not fit in int64")
	}
	return int64(u), nil
}

// Copy re-interprets the source value under the destination's type and
// re-canonicalizes (wrap-around). This is the primitive every other
// operation below composes.
func (v Value) Copy(dst Type) Value {
	out := Value{typ: dst, limbs: v.limbs}
	wrapAround(&out.limbs, dst.signed, dst.wordWidth)
	return out
}

// CopyNegate computes the two's-complement negation into the
// destination type, which is typically one bit wider than the source
// to represent the sign-flip of the most negative value.
func (v Value) CopyNegate(dst Type) Value {
	out := Value{typ: dst, limbs: negateLimbs(v.limbs)}
	wrapAround(&out.limbs, dst.signed, dst.wordWidth)
	return out
}

// CopyNot computes the bitwise complement into the destination type.
func (v Value) CopyNot(dst Type) Value {
	var limbs [MaxLimbs]uint32
	for i := range limbs {
		limbs[i] = ^v.limbs[i]
	}
	out := Value{typ: dst, limbs: limbs}
	wrapAround(&out.limbs, dst.signed, dst.wordWidth)
	return out
}

// CopyShiftLeft shifts left by k bits into the destination type, losing
// bits beyond the destination's word width and re-canonicalizing.
func (v Value) CopyShiftLeft(dst Type, k int) Value {
	var limbs [MaxLimbs]uint32
	if k >= 0 {
		limbs = shiftLeftLimbs(v.limbs, k)
	} else {
		limbs = shiftRightLimbs(v.limbs, -k, v.typ.signed)
	}
	out := Value{typ: dst, limbs: limbs}
	wrapAround(&out.limbs, dst.signed, dst.wordWidth)
	return out
}

// CopyShiftRight shifts right by k bits into the destination type:
// arithmetic if the source is signed, logical otherwise.
func (v Value) CopyShiftRight(dst Type, k int) Value {
	var limbs [MaxLimbs]uint32
	if k >= 0 {
		limbs = shiftRightLimbs(v.limbs, k, v.typ.signed)
	} else {
		limbs = shiftLeftLimbs(v.limbs, -k)
	}
	out := Value{typ: dst, limbs: limbs}
	wrapAround(&out.limbs, dst.signed, dst.wordWidth)
	return out
}

// AccumulateShiftLeft computes dst += (v << k) with ripple carry across
// limbs, re-canonicalizing into the destination's type. This is the
// core primitive of the multi-summand adder block.
func (v Value) AccumulateShiftLeft(dst Value, k int) Value {
	var shifted [MaxLimbs]uint32
	if k >= 0 {
		shifted = shiftLeftLimbs(v.limbs, k)
	} else {
		shifted = shiftRightLimbs(v.limbs, -k, v.typ.signed)
	}
	out := Value{typ: dst.typ, limbs: addLimbs(dst.limbs, shifted)}
	wrapAround(&out.limbs, dst.typ.signed, dst.typ.wordWidth)
	return out
}

// CopyMultiplyUnsigned multiplies by a 32-bit unsigned factor, producing
// a result in the (typically wider) destination type.
func (v Value) CopyMultiplyUnsigned(dst Type, factor uint32) Value {
	var limbs [MaxLimbs]uint32
	var carry uint64
	for i := 0; i < MaxLimbs; i++ {
		prod := uint64(v.limbs[i])*uint64(factor) + carry
		limbs[i] = uint32(prod)
		carry = prod >> 32
	}
	out := Value{typ: dst, limbs: limbs}
	wrapAround(&out.limbs, dst.signed, dst.wordWidth)
	return out
}

// AccumulateMultiplyUnsigned performs the schoolbook multiply-accumulate
// step dst += (v * other) << (32*limbOffset), treating both operands as
// unsigned magnitudes.
func (v Value) AccumulateMultiplyUnsigned(dst Value, other Value, limbOffset int) Value {
	out := dst
	nv := limbCount(v.typ.wordWidth)
	no := limbCount(other.typ.wordWidth)
	for i := 0; i < nv; i++ {
		var carry uint64
		for j := 0; j < no; j++ {
			idx := i + j + limbOffset
			if idx >= MaxLimbs {
				break
			}
			prod := uint64(v.limbs[i])*uint64(other.limbs[j]) + carry
			sum := uint64(out.limbs[idx]) + (prod & 0xFFFFFFFF)
			out.limbs[idx] = uint32(sum)
			carry = (prod >> 32) + (sum >> 32)
		}
		for idx := i + no + limbOffset; idx < MaxLimbs && carry != 0; idx++ {
			sum := uint64(out.limbs[idx]) + carry
			out.limbs[idx] = uint32(sum)
			carry = sum >> 32
		}
	}
	wrapAround(&out.limbs, dst.typ.signed, dst.typ.wordWidth)
	return out
}

// AccumulateMultiplySigned is AccumulateMultiplyUnsigned except the
// highest limb of each operand is treated as signed or unsigned
// according to that operand's declared signedness (the schoolbook
// multiplier's sign-correction step).
func (v Value) AccumulateMultiplySigned(dst Value, other Value, limbOffset int) Value {
	result := v.AccumulateMultiplyUnsigned(dst, other, limbOffset)

	nv := limbCount(v.typ.wordWidth)
	no := limbCount(other.typ.wordWidth)

	if v.typ.signed && topLimbSign(v.limbs, v.typ.wordWidth) {
		result = subtractShifted(result, other, limbOffset+nv, no)
	}
	if other.typ.signed && topLimbSign(other.limbs, other.typ.wordWidth) {
		result = subtractShifted(result, v, limbOffset+no, nv)
	}
	wrapAround(&result.limbs, dst.typ.signed, dst.typ.wordWidth)
	return result
}

func subtractShifted(dst Value, operand Value, limbOffset int, count int) Value {
	borrow := uint64(0)
	for j := 0; j < count; j++ {
		idx := j + limbOffset
		if idx >= MaxLimbs {
			break
		}
		diff := uint64(dst.limbs[idx]) - uint64(operand.limbs[j]) - borrow
		dst.limbs[idx] = uint32(diff)
		if diff>>63 != 0 {
			borrow = 1
		} else {
			borrow = 0
		}
	}
	for idx := limbOffset + count; idx < MaxLimbs && borrow != 0; idx++ {
		diff := uint64(dst.limbs[idx]) - borrow
		dst.limbs[idx] = uint32(diff)
		if diff>>63 != 0 {
			borrow = 1
		} else {
			borrow = 0
		}
	}
	return dst
}

func topLimbSign(limbs [MaxLimbs]uint32, wordWidth int) bool {
	idx := (wordWidth - 1) / 32
	bit := uint((wordWidth - 1) % 32)
	return (limbs[idx]>>bit)&1 == 1
}

// CompareUnsigned compares two values as unsigned magnitudes, returning
// -1, 0 or +1.
func CompareUnsigned(a, b Value) int {
	for i := MaxLimbs - 1; i >= 0; i-- {
		if a.limbs[i] != b.limbs[i] {
			if a.limbs[i] < b.limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// CompareSigned compares two values as two's-complement signed
// integers.
func CompareSigned(a, b Value) int {
	as := topLimbSign(a.limbs, a.typ.wordWidth)
	bs := topLimbSign(b.limbs, b.typ.wordWidth)
	if as != bs {
		if as {
			return -1
		}
		return 1
	}
	return CompareUnsigned(a, b)
}

// CompareEqual reports bit-for-bit equality of the canonical limb
// arrays (both values must already be wrapped to their own type).
func CompareEqual(a, b Value) bool {
	return a.limbs == b.limbs
}

// OverflowWrapAround re-establishes the canonical-form invariant: bits
// above the declared word width are cleared (unsigned) or sign-extended
// (signed). Exported so callers building a Value's limbs manually (e.g.
// blocks composing a bus into a dynfix) can canonicalize explicitly.
func (v Value) OverflowWrapAround() Value {
	out := v
	wrapAround(&out.limbs, v.typ.signed, v.typ.wordWidth)
	return out
}

// Bit returns the boolean value of bit index i (0 = least significant).
func (v Value) Bit(i int) bool {
	return (v.limbs[i/32]>>uint(i%32))&1 == 1
}

// WithBit returns a copy of v with bit i set to b, re-canonicalized.
func (v Value) WithBit(i int, b bool) Value {
	out := v
	if b {
		out.limbs[i/32] |= 1 << uint(i%32)
	} else {
		out.limbs[i/32] &^= 1 << uint(i%32)
	}
	wrapAround(&out.limbs, out.typ.signed, out.typ.wordWidth)
	return out
}

func wrapAround(limbs *[MaxLimbs]uint32, signed bool, wordWidth int) {
	topLimb := (wordWidth - 1) / 32
	topBit := uint((wordWidth - 1) % 32)

	var fill uint32
	if signed && (limbs[topLimb]>>topBit)&1 == 1 {
		fill = ^uint32(0)
	}

	var keepMask uint32
	if topBit == 31 {
		keepMask = ^uint32(0)
	} else {
		keepMask = (uint32(1) << (topBit + 1)) - 1
	}
	limbs[topLimb] = (limbs[topLimb] & keepMask) | (fill &^ keepMask)

	for i := topLimb + 1; i < MaxLimbs; i++ {
		limbs[i] = fill
	}
}

func shiftLeftLimbs(limbs [MaxLimbs]uint32, k int) [MaxLimbs]uint32 {
	var out [MaxLimbs]uint32
	if k <= 0 {
		return limbs
	}
	limbShift := k / 32
	bitShift := uint(k % 32)
	for i := MaxLimbs - 1; i >= 0; i-- {
		srcIdx := i - limbShift
		if srcIdx < 0 || srcIdx >= MaxLimbs {
			continue
		}
		v := limbs[srcIdx] << bitShift
		if bitShift > 0 && srcIdx-1 >= 0 {
			v |= limbs[srcIdx-1] >> (32 - bitShift)
		}
		out[i] = v
	}
	return out
}

func shiftRightLimbs(limbs [MaxLimbs]uint32, k int, signed bool) [MaxLimbs]uint32 {
	var out [MaxLimbs]uint32
	if k <= 0 {
		return limbs
	}
	fill := uint32(0)
	if signed && (limbs[MaxLimbs-1]>>31) == 1 {
		fill = ^uint32(0)
	}
	limbShift := k / 32
	bitShift := uint(k % 32)
	for i := 0; i < MaxLimbs; i++ {
		srcIdx := i + limbShift
		var v uint32
		if srcIdx < MaxLimbs {
			v = limbs[srcIdx] >> bitShift
			if bitShift > 0 {
				var hi uint32
				if srcIdx+1 < MaxLimbs {
					hi = limbs[srcIdx+1]
				} else {
					hi = fill
				}
				v |= hi << (32 - bitShift)
			}
		} else {
			v = fill
		}
		out[i] = v
	}
	return out
}

func negateLimbs(limbs [MaxLimbs]uint32) [MaxLimbs]uint32 {
	var out [MaxLimbs]uint32
	carry := uint64(1)
	for i := 0; i < MaxLimbs; i++ {
		v := uint64(^limbs[i]) + carry
		out[i] = uint32(v)
		carry = v >> 32
	}
	return out
}

func addLimbs(a, b [MaxLimbs]uint32) [MaxLimbs]uint32 {
	var out [MaxLimbs]uint32
	carry := uint64(0)
	for i := 0; i < MaxLimbs; i++ {
		v := uint64(a[i]) + uint64(b[i]) + carry
		out[i] = uint32(v)
		carry = v >> 32
	}
	return out
}

// GetMin returns the minimum representable value of t.
func GetMin(t Type) Value {
	if !t.signed {
		return Zero(t)
	}
	var limbs [MaxLimbs]uint32
	idx := (t.wordWidth - 1) / 32
	bit := uint((t.wordWidth - 1) % 32)
	limbs[idx] = 1 << bit
	out := Value{typ: t, limbs: limbs}
	wrapAround(&out.limbs, t.signed, t.wordWidth)
	return out
}

// GetMax returns the maximum representable value of t.
func GetMax(t Type) Value {
	var limbs [MaxLimbs]uint32
	for i := range limbs {
		limbs[i] = ^uint32(0)
	}
	if t.signed {
		idx := (t.wordWidth - 1) / 32
		bit := uint((t.wordWidth - 1) % 32)
		limbs[idx] &^= 1 << bit
	}
	out := Value{typ: t, limbs: limbs}
	wrapAround(&out.limbs, t.signed, t.wordWidth)
	return out
}

// CommonType returns a single fixed-point type that can losslessly hold
// any of the given types: signed if any input is signed (with one extra
// bit when a signed/unsigned mix forces promotion), fraction = max
// input fraction, word width = the smallest that accommodates every
// input once aligned to that fraction.
func CommonType(types []Type) Type {
	if len(types) == 0 {
		panic("dfx: CommonType of empty set")
	}

	anySigned := false
	maxFraction := math.MinInt32
	for _, t := range types {
		if t.signed {
			anySigned = true
		}
		if t.fraction > maxFraction {
			maxFraction = t.fraction
		}
	}

	maxIntegerBits := 0
	for _, t := range types {
		integerBits := t.wordWidth - t.fraction
		if anySigned && !t.signed {
			integerBits++
		}
		if integerBits > maxIntegerBits {
			maxIntegerBits = integerBits
		}
	}

	wordWidth := maxIntegerBits + maxFraction
	if wordWidth < 1 {
		wordWidth = 1
	}
	return Fixed(anySigned, wordWidth, maxFraction)
}
