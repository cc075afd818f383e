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

// LabelClass records which side of a hierarchy boundary a label marks.
// It is exposed through GetProperties as "Class"; the passes of the
// elaborate package do not read it.
type LabelClass int

const (
	LabelInput LabelClass = iota
	LabelOutput
)

// labelBlock is a zero-cost pass-through ornament: it carries a port
// name and class, exposed through GetProperties, and contributes
// nothing to simulation beyond forwarding its value. The elaborator
// does not use either to place or name ports.
type labelBlock struct {
	design.BlockBase
	in    *design.InputPin[dfx.Value]
	out   *design.OutputPin[dfx.Value]
	name  string
	class LabelClass
}

func (b *labelBlock) CanEvaluate() bool { return true }
func (b *labelBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *labelBlock) Evaluate() {
	b.out.Value = b.in.GetValue()
}

func (b *labelBlock) GetProperties(props *design.Properties) {
	props.SetString("Name", b.name)
	if b.class == LabelInput {
		props.SetString("Class", "input")
	} else {
		props.SetString("Class", "output")
	}
}

// Label names a signal and records whether it marks an input or an
// output, forwarding in unchanged.
func Label(d *design.Design, name string, class LabelClass, in *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	b := &labelBlock{name: name, class: class}
	b.BlockBase = design.NewBlockBase(b, "label", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.out = design.NewOutputPin[dfx.Value](b, in.Type())
	d.Add(b)
	return b.out.Node()
}

// terminateBlock is a sink with no output: it exists only to give a
// signal a driving consumer so the elaborator and simulator do not
// treat it as dangling.
type terminateBlock struct {
	design.BlockBase
	in *design.InputPin[dfx.Value]
}

func (b *terminateBlock) CanEvaluate() bool              { return true }
func (b *terminateBlock) Evaluate()                      {}
func (b *terminateBlock) GetSourceBlocks() []design.Block { return []design.Block{b.in.GetDrivingBlock()} }

// Terminate consumes in without producing an output, anchoring an
// otherwise-unused signal.
func Terminate(d *design.Design, in *design.Node[dfx.Value]) {
	b := &terminateBlock{}
	b.BlockBase = design.NewBlockBase(b, "terminate", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	d.Add(b)
}

// signalBlock is an alias: a pass-through used purely to attach a
// human-readable name (exposed through GetProperties) to an
// intermediate signal; like Label, it does not affect elaboration's
// port placement.
type signalBlock struct {
	design.BlockBase
	in   *design.InputPin[dfx.Value]
	out  *design.OutputPin[dfx.Value]
	name string
}

func (b *signalBlock) CanEvaluate() bool { return true }
func (b *signalBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}
func (b *signalBlock) Evaluate() { b.out.Value = b.in.GetValue() }
func (b *signalBlock) GetProperties(props *design.Properties) {
	props.SetString("Name", b.name)
}

// Signal attaches name to in for display purposes.
func Signal(d *design.Design, name string, in *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	b := &signalBlock{name: name}
	b.BlockBase = design.NewBlockBase(b, "signal", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.out = design.NewOutputPin[dfx.Value](b, in.Type())
	d.Add(b)
	return b.out.Node()
}

// probeBlock is a testbench tap: it records the most recent value seen
// on in so a test can read it back between simulation steps, without
// otherwise participating in the design.
type probeBlock struct {
	design.BlockBase
	in    *design.InputPin[dfx.Value]
	value dfx.Value
}

func (b *probeBlock) CanEvaluate() bool { return true }
func (b *probeBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}
func (b *probeBlock) Evaluate() { b.value = b.in.GetValue() }

// Probe is a testbench handle returned by NewProbe that exposes the
// most recently evaluated value of its tapped signal.
type Probe struct {
	block *probeBlock
}

// Value returns the last value Evaluate captured on the tapped signal.
func (p *Probe) Value() dfx.Value { return p.block.value }

// NewProbe taps in for read-back by a test driver.
func NewProbe(d *design.Design, in *design.Node[dfx.Value]) *Probe {
	b := &probeBlock{}
	b.BlockBase = design.NewBlockBase(b, "probe", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	d.Add(b)
	return &Probe{block: b}
}

// spareBlock reserves count flip-flops that contribute no logic but
// must survive CanRemove, since their purpose is to hold die area or
// timing margin for a future design revision.
type spareBlock struct {
	design.BlockBase
	count int
}

func (b *spareBlock) Evaluate()                       {}
func (b *spareBlock) CanEvaluate() bool               { return false }
func (b *spareBlock) GetSourceBlocks() []design.Block { return nil }
func (b *spareBlock) CanRemove() bool                 { return false }
func (b *spareBlock) GetStep() design.Step            { return (*spareStep)(b) }

func (b *spareBlock) GetProperties(props *design.Properties) {
	props.SetInt("Count", b.count)
}

type spareStep spareBlock

func (s *spareStep) Step()       {}
func (s *spareStep) AsyncReset() {}

// Spare reserves count flip-flops that are never optimised away.
func Spare(d *design.Design, count int) {
	b := &spareBlock{count: count}
	b.BlockBase = design.NewBlockBase(b, "spare", d.CurrentLevel())
	d.Add(b)
}
