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

// Package dfx implements the fixed-point arithmetic kernel (dynfix) and
// the runtime type descriptor used throughout the design graph.
package dfx

import (
	"fmt"
	"hash/fnv"
)

// Class identifies the kind of signal a Type describes.
type Class int

const (
	ClassUnknown Class = iota
	ClassBool
	ClassInt32
	ClassInt64
	ClassDouble
	ClassFixedPoint
)

func (c Class) String() string {
	switch c {
	case ClassBool:
		return "bool"
	case ClassInt32:
		return "int32"
	case ClassInt64:
		return "int64"
	case ClassDouble:
		return "double"
	case ClassFixedPoint:
		return "fixed"
	default:
		return "unknown"
	}
}

// Type is the runtime description of a signal: boolean, 32/64-bit
// integer, floating point, or fixed-point with signedness, word width
// and fraction. The empty Type{} is the "unknown" placeholder used
// before a temporary pin is typed.
type Type struct {
	class     Class
	signed    bool
	wordWidth int
	fraction  int
}

// Bool, Int32, Int64 and Double are the non-parameterized signal types.
var (
	Bool   = Type{class: ClassBool}
	Int32  = Type{class: ClassInt32}
	Int64  = Type{class: ClassInt64}
	Double = Type{class: ClassDouble}
)

// Fixed returns the fixed-point type with the given signedness, word
// width and fraction. wordWidth <= 0 or larger than MaxWordWidth panics
// with a DomainError-flavored message; callers that need to report this
// as a design.DomainError should validate before calling Fixed, since
// dfx has no dependency on the design error types.
func Fixed(signed bool, wordWidth, fraction int) Type {
	if wordWidth <= 0 || wordWidth > MaxWordWidth {
		panic(fmt.Sprintf("dfx: word width %d out of range (1..%d)", wordWidth, MaxWordWidth))
	}
	return Type{class: ClassFixedPoint, signed: signed, wordWidth: wordWidth, fraction: fraction}
}

// Sfix is shorthand for a signed fixed-point type.
func Sfix(wordWidth, fraction int) Type { return Fixed(true, wordWidth, fraction) }

// Ufix is shorthand for an unsigned fixed-point type.
func Ufix(wordWidth, fraction int) Type { return Fixed(false, wordWidth, fraction) }

func (t Type) GetClass() Class { return t.class }

func (t Type) IsClass(c Class) bool { return t.class == c }

// IsKnown reports whether the type has been assigned (i.e. is not the
// zero-value placeholder type of an unbound handle).
func (t Type) IsKnown() bool { return t.class != ClassUnknown }

// IsSigned panics if called on a non-fixed-point type, matching the
// original dynfix type descriptor's behavior for ill-typed queries.
func (t Type) IsSigned() bool {
	t.requireFixed("IsSigned")
	return t.signed
}

func (t Type) GetWordWidth() int {
	t.requireFixed("GetWordWidth")
	return t.wordWidth
}

func (t Type) GetFraction() int {
	t.requireFixed("GetFraction")
	return t.fraction
}

func (t Type) requireFixed(op string) {
	if t.class != ClassFixedPoint {
		panic(fmt.Sprintf("dfx: %s called on non-fixed-point type %s", op, t))
	}
}

// Equal reports structural equality.
func (t Type) Equal(other Type) bool {
	return t == other
}

// Hash returns a hash suitable for keying maps of Type and for feeding
// the elaborator's structural instance hash.
func (t Type) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%t:%d:%d", t.class, t.signed, t.wordWidth, t.fraction)
	return h.Sum64()
}

func (t Type) String() string {
	switch t.class {
	case ClassUnknown:
		return "unknown"
	case ClassBool, ClassInt32, ClassInt64, ClassDouble:
		return t.class.String()
	case ClassFixedPoint:
		kind := "ufix"
		if t.signed {
			kind = "sfix"
		}
		return fmt.Sprintf("%s<%d,%d>", kind, t.wordWidth, t.fraction)
	default:
		return "invalid"
	}
}
