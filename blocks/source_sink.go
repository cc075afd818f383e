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

// FreeRunning is implemented by blocks whose output changes on every
// enabled clock regardless of their (possibly absent) inputs, such as
// Source. The simulator's dirty-propagation pass consults this
// interface to keep re-evaluating a free-running block's consumers
// even though no driving input ever reports a change.
type FreeRunning interface {
	IsFreeRunning() bool
}

// sourceBlock emits one element of a host-supplied sequence per
// enabled clock. With no enable input it behaves as Source; an enable
// input turns it into a gated source, matching the reference library's
// Source/ThrottledSource split. There is no periodic mode: once feed is
// exhausted the source holds its last output.
type sourceBlock struct {
	design.BlockBase
	enable *design.InputPin[bool]
	out    *design.OutputPin[dfx.Value]
	feed   func() (dfx.Value, bool)
	done   bool
}

func (b *sourceBlock) Evaluate()              {}
func (b *sourceBlock) CanEvaluate() bool      { return false }
func (b *sourceBlock) GetSourceBlocks() []design.Block { return nil }
func (b *sourceBlock) IsFreeRunning() bool    { return true }

func (b *sourceBlock) GetStep() design.Step { return (*sourceStep)(b) }

type sourceStep sourceBlock

func (s *sourceStep) Step() {
	b := (*sourceBlock)(s)
	if b.done {
		return
	}
	if b.enable != nil && !b.enable.GetValue() {
		return
	}
	v, ok := b.feed()
	if !ok {
		b.done = true
		return
	}
	b.out.Value = v.Copy(b.out.Type())
}

func (s *sourceStep) AsyncReset() {
	b := (*sourceBlock)(s)
	b.done = false
	b.out.Value = dfx.Zero(b.out.Type())
}

// Source emits one value from feed per enabled clock. feed returns
// (value, true) for each element and (_, false) once exhausted, after
// which the source holds its last output. A nil enable makes the
// source free-running at every clock.
func Source(d *design.Design, outType dfx.Type, enable *design.Node[bool], feed func() (dfx.Value, bool)) *design.Node[dfx.Value] {
	b := &sourceBlock{feed: feed}
	b.BlockBase = design.NewBlockBase(b, "source", d.CurrentLevel())
	if enable != nil {
		b.enable = design.NewInputPin[bool](b, enable)
	}
	b.out = design.NewOutputPin[dfx.Value](b, outType)
	b.out.Value = dfx.Zero(outType)
	d.Add(b)
	return b.out.Node()
}

// ThrottledSource is a Source gated by an explicit enable, provided as
// a distinct constructor for readability at call sites (the reference
// library names the gated and ungated forms differently even though
// they share an implementation).
func ThrottledSource(d *design.Design, outType dfx.Type, enable *design.Node[bool], feed func() (dfx.Value, bool)) *design.Node[dfx.Value] {
	if enable == nil {
		panic("blocks: ThrottledSource requires a non-nil enable")
	}
	return Source(d, outType, enable, feed)
}

// sinkBlock captures one element per enabled clock by invoking capture
// with the sampled value.
type sinkBlock struct {
	design.BlockBase
	in      *design.InputPin[dfx.Value]
	enable  *design.InputPin[bool]
	capture func(dfx.Value)
}

func (b *sinkBlock) Evaluate()              {}
func (b *sinkBlock) CanEvaluate() bool      { return false }
func (b *sinkBlock) GetSourceBlocks() []design.Block {
	if b.enable != nil {
		return []design.Block{b.in.GetDrivingBlock(), b.enable.GetDrivingBlock()}
	}
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *sinkBlock) GetStep() design.Step { return (*sinkStep)(b) }

type sinkStep sinkBlock

func (s *sinkStep) Step() {
	b := (*sinkBlock)(s)
	if b.enable != nil && !b.enable.GetValue() {
		return
	}
	b.capture(b.in.GetValue())
}

func (s *sinkStep) AsyncReset() {}

// Sink invokes capture with in's value on every enabled clock.
func Sink(d *design.Design, in *design.Node[dfx.Value], enable *design.Node[bool], capture func(dfx.Value)) {
	b := &sinkBlock{capture: capture}
	b.BlockBase = design.NewBlockBase(b, "sink", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	if enable != nil {
		b.enable = design.NewInputPin[bool](b, enable)
	}
	d.Add(b)
}

// fifoBlock is a simple synchronous FIFO queue: push on write-enable,
// pop on read-enable, with the head element and empty/full flags
// exposed through Evaluate.
// Depth is fixed at construction.
type fifoBlock struct {
	design.BlockBase
	writeEnable *design.InputPin[bool]
	writeData   *design.InputPin[dfx.Value]
	readEnable  *design.InputPin[bool]
	readData    *design.OutputPin[dfx.Value]
	empty       *design.OutputPin[bool]
	full        *design.OutputPin[bool]
	queue       []dfx.Value
	depth       int
	dataType    dfx.Type
}

func (b *fifoBlock) CanEvaluate() bool { return true }
func (b *fifoBlock) GetSourceBlocks() []design.Block {
	return nil
}

func (b *fifoBlock) Evaluate() {
	b.empty.Value = len(b.queue) == 0
	b.full.Value = len(b.queue) >= b.depth
	if len(b.queue) > 0 {
		b.readData.Value = b.queue[0]
	} else {
		b.readData.Value = dfx.Zero(b.dataType)
	}
}

func (b *fifoBlock) GetStep() design.Step { return (*fifoStep)(b) }

type fifoStep fifoBlock

func (s *fifoStep) Step() {
	b := (*fifoBlock)(s)
	if b.readEnable.GetValue() && len(b.queue) > 0 {
		b.queue = b.queue[1:]
	}
	if b.writeEnable.GetValue() && len(b.queue) < b.depth {
		b.queue = append(b.queue, b.writeData.GetValue().Copy(b.dataType))
	}
}

func (s *fifoStep) AsyncReset() {
	b := (*fifoBlock)(s)
	b.queue = b.queue[:0]
}

// Fifo builds a synchronous FIFO of the given depth and element type,
// returning (readData, empty, full).
func Fifo(d *design.Design, depth int, dataType dfx.Type, writeEnable *design.Node[bool], writeData *design.Node[dfx.Value], readEnable *design.Node[bool]) (readData *design.Node[dfx.Value], empty, full *design.Node[bool]) {
	if depth <= 0 {
		panic("blocks: Fifo depth must be positive")
	}

	b := &fifoBlock{depth: depth, dataType: dataType, queue: make([]dfx.Value, 0, depth)}
	b.BlockBase = design.NewBlockBase(b, "fifo", d.CurrentLevel())
	b.writeEnable = design.NewInputPin[bool](b, writeEnable)
	b.writeData = design.NewInputPin[dfx.Value](b, writeData)
	b.readEnable = design.NewInputPin[bool](b, readEnable)
	b.readData = design.NewOutputPin[dfx.Value](b, dataType)
	b.readData.Value = dfx.Zero(dataType)
	b.empty = design.NewOutputPin[bool](b, dfx.Bool)
	b.empty.Value = true
	b.full = design.NewOutputPin[bool](b, dfx.Bool)
	d.Add(b)
	return b.readData.Node(), b.empty.Node(), b.full.Node()
}

// recorderBlock appends one sampled value per enabled clock to an
// in-memory trace that testbenches read back through Recorder.Trace.
type recorderBlock struct {
	design.BlockBase
	in     *design.InputPin[dfx.Value]
	enable *design.InputPin[bool]
	trace  []dfx.Value
}

func (b *recorderBlock) Evaluate()              {}
func (b *recorderBlock) CanEvaluate() bool      { return false }
func (b *recorderBlock) GetSourceBlocks() []design.Block {
	if b.enable != nil {
		return []design.Block{b.in.GetDrivingBlock(), b.enable.GetDrivingBlock()}
	}
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *recorderBlock) GetStep() design.Step { return (*recorderStep)(b) }

type recorderStep recorderBlock

func (s *recorderStep) Step() {
	b := (*recorderBlock)(s)
	if b.enable != nil && !b.enable.GetValue() {
		return
	}
	b.trace = append(b.trace, b.in.GetValue())
}

func (s *recorderStep) AsyncReset() {
	b := (*recorderBlock)(s)
	b.trace = b.trace[:0]
}

// Recorder is the testbench handle returned by NewRecorder.
type Recorder struct {
	block *recorderBlock
}

// Trace returns the values captured so far, oldest first.
func (r *Recorder) Trace() []dfx.Value {
	return append([]dfx.Value(nil), r.block.trace...)
}

// NewRecorder appends in's value to an in-memory trace on every
// enabled clock.
func NewRecorder(d *design.Design, in *design.Node[dfx.Value], enable *design.Node[bool]) *Recorder {
	b := &recorderBlock{}
	b.BlockBase = design.NewBlockBase(b, "recorder", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	if enable != nil {
		b.enable = design.NewInputPin[bool](b, enable)
	}
	d.Add(b)
	return &Recorder{block: b}
}
