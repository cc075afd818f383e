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

// bitComposeBlock converts a bus of booleans into a fixed-point word;
// the bus width must equal the destination's word width.
type bitComposeBlock struct {
	design.BlockBase
	bits []*design.InputPin[bool]
	out  *design.OutputPin[dfx.Value]
}

func (b *bitComposeBlock) CanEvaluate() bool { return true }
func (b *bitComposeBlock) GetSourceBlocks() []design.Block {
	blocks := make([]design.Block, len(b.bits))
	for i, p := range b.bits {
		blocks[i] = p.GetDrivingBlock()
	}
	return blocks
}

func (b *bitComposeBlock) Evaluate() {
	v := dfx.Zero(b.out.Type())
	for i, p := range b.bits {
		v = v.WithBit(i, p.GetValue())
	}
	b.out.Value = v
}

// BitCompose composes a word of the given type from a bus of booleans,
// least-significant bit first. len(bits) must equal typ.GetWordWidth().
func BitCompose(d *design.Design, bits []*design.Node[bool], typ dfx.Type) *design.Node[dfx.Value] {
	if len(bits) != typ.GetWordWidth() {
		panic("blocks: BitCompose bus width must equal the destination word width")
	}
	b := &bitComposeBlock{}
	b.BlockBase = design.NewBlockBase(b, "bit_compose", d.CurrentLevel())
	b.bits = make([]*design.InputPin[bool], len(bits))
	for i, n := range bits {
		b.bits[i] = design.NewInputPin[bool](b, n)
	}
	b.out = design.NewOutputPin[dfx.Value](b, typ)
	d.Add(b)
	return b.out.Node()
}

// bitExtractBlock converts a fixed-point word into a bus of booleans
// over [firstBitIndex, lastBitIndex], recorded as properties for the
// emitter.
type bitExtractBlock struct {
	design.BlockBase
	in    *design.InputPin[dfx.Value]
	outs  []*design.OutputPin[bool]
	first int
	last  int
}

func (b *bitExtractBlock) CanEvaluate() bool { return true }
func (b *bitExtractBlock) GetSourceBlocks() []design.Block {
	return []design.Block{b.in.GetDrivingBlock()}
}

func (b *bitExtractBlock) Evaluate() {
	v := b.in.GetValue()
	for i, out := range b.outs {
		out.Value = v.Bit(b.first + i)
	}
}

func (b *bitExtractBlock) GetProperties(props *design.Properties) {
	props.SetInt("FirstBitIndex", b.first)
	props.SetInt("LastBitIndex", b.last)
}

// BitExtract extracts bits [firstBitIndex, firstBitIndex+width) of in
// as a bus of booleans, least-significant bit first.
func BitExtract(d *design.Design, in *design.Node[dfx.Value], firstBitIndex, width int) []*design.Node[bool] {
	b := &bitExtractBlock{first: firstBitIndex, last: firstBitIndex + width - 1}
	b.BlockBase = design.NewBlockBase(b, "bit_extract", d.CurrentLevel())
	b.in = design.NewInputPin[dfx.Value](b, in)
	b.outs = make([]*design.OutputPin[bool], width)
	nodes := make([]*design.Node[bool], width)
	for i := range b.outs {
		b.outs[i] = design.NewOutputPin[bool](b, dfx.Bool)
		nodes[i] = b.outs[i].Node()
	}
	d.Add(b)
	return nodes
}
