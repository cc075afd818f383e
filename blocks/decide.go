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

// decideBlock provides nested if-then-else functionality: one boolean
// decision input and a list of (true, false) operand paths. Output i =
// decision ? true_i : false_i. Ported from decide_dynfix.cpp: true and
// false operands of a path may have different widths, so add_path
// computes one common type and pre-shifts each side to align before
// building the path, rather than aligning at Evaluate time.
type decideBlock struct {
	design.BlockBase
	decision *design.InputPin[bool]
	paths    []decidePath
}

type decidePath struct {
	trueIn, falseIn    *design.InputPin[dfx.Value]
	out                *design.OutputPin[dfx.Value]
	trueShift, falseShift int
}

func (b *decideBlock) CanEvaluate() bool { return true }

func (b *decideBlock) GetSourceBlocks() []design.Block {
	blocks := []design.Block{b.decision.GetDrivingBlock()}
	for _, p := range b.paths {
		blocks = append(blocks, p.trueIn.GetDrivingBlock(), p.falseIn.GetDrivingBlock())
	}
	return blocks
}

func (b *decideBlock) Evaluate() {
	decision := b.decision.GetValue()
	for _, p := range b.paths {
		if decision {
			p.out.Value = p.trueIn.GetValue().CopyShiftLeft(p.out.Type(), p.trueShift)
		} else {
			p.out.Value = p.falseIn.GetValue().CopyShiftLeft(p.out.Type(), p.falseShift)
		}
	}
}

func (b *decideBlock) GetProperties(props *design.Properties) {
	for i, p := range b.paths {
		props.SetIntAt("TrueShift", i, p.trueShift)
		props.SetIntAt("FalseShift", i, p.falseShift)
	}
}

// DecideBuilder accumulates (true, false) paths sharing one decision
// input.
type DecideBuilder struct {
	d     *design.Design
	block *decideBlock
}

// NewDecide starts a decide block gated by the given boolean decision.
func NewDecide(d *design.Design, decision *design.Node[bool]) *DecideBuilder {
	b := &decideBlock{}
	b.BlockBase = design.NewBlockBase(b, "decide", d.CurrentLevel())
	b.decision = design.NewInputPin[bool](b, decision)
	d.Add(b)
	return &DecideBuilder{d: d, block: b}
}

// AddPath computes the common type of trueInput and falseInput (aligned
// signedness, fraction and word width, exactly as decide_dynfix.cpp's
// add_path does), pre-shifts both operands to that common fraction, and
// returns a node carrying decision ? trueInput : falseInput.
func (db *DecideBuilder) AddPath(trueInput, falseInput *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	trueT := trueInput.Type()
	falseT := falseInput.Type()

	trueSigned, trueWidth, trueFraction := trueT.IsSigned(), trueT.GetWordWidth(), trueT.GetFraction()
	falseSigned, falseWidth, falseFraction := falseT.IsSigned(), falseT.GetWordWidth(), falseT.GetFraction()
	trueShift, falseShift := 0, 0

	// Signedness: promote the unsigned side by one bit if the other is signed.
	if trueSigned && !falseSigned {
		falseSigned = true
		falseWidth++
	} else if falseSigned && !trueSigned {
		trueSigned = true
		trueWidth++
	}

	// Fraction: widen and pre-shift the side with the smaller fraction.
	if trueFraction > falseFraction {
		falseWidth += trueFraction - falseFraction
		falseShift += trueFraction - falseFraction
		falseFraction = trueFraction
	} else if falseFraction > trueFraction {
		trueWidth += falseFraction - trueFraction
		trueShift += falseFraction - trueFraction
		trueFraction = falseFraction
	}

	// Word width: widen the narrower side (after fraction alignment).
	if trueWidth > falseWidth {
		falseWidth = trueWidth
	} else if falseWidth > trueWidth {
		trueWidth = falseWidth
	}

	outType := dfx.Fixed(trueSigned, trueWidth, trueFraction)

	trueIn := design.NewInputPin[dfx.Value](db.block, trueInput)
	falseIn := design.NewInputPin[dfx.Value](db.block, falseInput)
	out := design.NewOutputPin[dfx.Value](db.block, outType)

	db.block.paths = append(db.block.paths, decidePath{
		trueIn: trueIn, falseIn: falseIn, out: out,
		trueShift: trueShift, falseShift: falseShift,
	})
	return out.Node()
}
