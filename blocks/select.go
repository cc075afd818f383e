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

// selectBlock performs an indexed read of a contiguous, statically
// sized window into a bus; the window's starting index is a
// fixed-point integer evaluated at simulation time, its length is
// fixed at build time. Emits a multiplexer cascade in Verilog; here it
// is evaluated directly.
type selectBlock struct {
	design.BlockBase
	length int
	index  *design.InputPin[dfx.Value]
	bus    []*design.InputPin[dfx.Value]
	outs   []*design.OutputPin[dfx.Value]
}

func (b *selectBlock) CanEvaluate() bool { return true }
func (b *selectBlock) GetSourceBlocks() []design.Block {
	blocks := make([]design.Block, 0, len(b.bus)+1)
	blocks = append(blocks, b.index.GetDrivingBlock())
	for _, p := range b.bus {
		blocks = append(blocks, p.GetDrivingBlock())
	}
	return blocks
}

func (b *selectBlock) Evaluate() {
	idx, err := b.index.GetValue().ToInt64()
	if err != nil {
		panic(design.NewDesignError("select: %s: %v", b.GetFullName(), err))
	}
	if idx < 0 || int(idx)+b.length > len(b.bus) {
		panic(design.NewDesignError("select: %s: index %d out of range [0,%d]", b.GetFullName(), idx, len(b.bus)-b.length))
	}
	for i, out := range b.outs {
		out.Value = b.bus[int(idx)+i].GetValue().Copy(out.Type())
	}
}

// Select returns bus[index:index+length], indexed dynamically at
// simulation time; length is fixed at build time, mirroring the
// original select_block_dynfix's split between a dynamic starting
// index and a static output width.
func Select(d *design.Design, bus []*design.Node[dfx.Value], index *design.Node[dfx.Value], length int) []*design.Node[dfx.Value] {
	if len(bus) == 0 {
		panic("blocks: Select over an empty bus")
	}
	if length <= 0 || length > len(bus) {
		panic("blocks: Select: length out of range")
	}
	b := &selectBlock{length: length}
	b.BlockBase = design.NewBlockBase(b, "select", d.CurrentLevel())
	b.index = design.NewInputPin[dfx.Value](b, index)
	b.bus = make([]*design.InputPin[dfx.Value], len(bus))
	for i, n := range bus {
		b.bus[i] = design.NewInputPin[dfx.Value](b, n)
	}

	outType := dfx.CommonType(busTypes(bus))
	b.outs = make([]*design.OutputPin[dfx.Value], length)
	nodes := make([]*design.Node[dfx.Value], length)
	for i := range b.outs {
		b.outs[i] = design.NewOutputPin[dfx.Value](b, outType)
		nodes[i] = b.outs[i].Node()
	}
	d.Add(b)
	return nodes
}

// replaceBlock produces a new bus with a contiguous range, starting at
// a dynamic index, substituted by replacement values.
type replaceBlock struct {
	design.BlockBase
	index       *design.InputPin[dfx.Value]
	bus         []*design.InputPin[dfx.Value]
	replacement []*design.InputPin[dfx.Value]
	outs        []*design.OutputPin[dfx.Value]
}

func (b *replaceBlock) CanEvaluate() bool { return true }
func (b *replaceBlock) GetSourceBlocks() []design.Block {
	blocks := []design.Block{b.index.GetDrivingBlock()}
	for _, p := range b.bus {
		blocks = append(blocks, p.GetDrivingBlock())
	}
	for _, p := range b.replacement {
		blocks = append(blocks, p.GetDrivingBlock())
	}
	return blocks
}

func (b *replaceBlock) Evaluate() {
	idx, err := b.index.GetValue().ToInt64()
	if err != nil {
		panic(design.NewDesignError("replace: %s: %v", b.GetFullName(), err))
	}
	for i, out := range b.outs {
		if int64(i) >= idx && int64(i) < idx+int64(len(b.replacement)) {
			out.Value = b.replacement[int64(i)-idx].GetValue().Copy(out.Type())
		} else {
			out.Value = b.bus[i].GetValue().Copy(out.Type())
		}
	}
}

// Replace substitutes bus[index:index+len(replacement)] with
// replacement and returns the resulting bus, which has the same length
// as bus.
func Replace(d *design.Design, bus []*design.Node[dfx.Value], index *design.Node[dfx.Value], replacement []*design.Node[dfx.Value]) []*design.Node[dfx.Value] {
	if len(replacement) > len(bus) {
		panic("blocks: Replace: replacement longer than target bus")
	}
	b := &replaceBlock{}
	b.BlockBase = design.NewBlockBase(b, "replace", d.CurrentLevel())
	b.index = design.NewInputPin[dfx.Value](b, index)
	b.bus = make([]*design.InputPin[dfx.Value], len(bus))
	for i, n := range bus {
		b.bus[i] = design.NewInputPin[dfx.Value](b, n)
	}
	b.replacement = make([]*design.InputPin[dfx.Value], len(replacement))
	for i, n := range replacement {
		b.replacement[i] = design.NewInputPin[dfx.Value](b, n)
	}

	outTypes := busTypes(bus)
	b.outs = make([]*design.OutputPin[dfx.Value], len(bus))
	nodes := make([]*design.Node[dfx.Value], len(bus))
	for i := range b.outs {
		b.outs[i] = design.NewOutputPin[dfx.Value](b, outTypes[i])
		nodes[i] = b.outs[i].Node()
	}
	d.Add(b)
	return nodes
}

func busTypes(bus []*design.Node[dfx.Value]) []dfx.Type {
	types := make([]dfx.Type, len(bus))
	for i, n := range bus {
		types[i] = n.Type()
	}
	return types
}
