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

// Package design implements the typed block-graph intermediate
// representation: nodes, pins, hierarchy levels and the Design
// container that owns every block.
package design

import (
	"fmt"

	"github.com/christian-volmer/oddf-sub000/dfx"
)

// Step is the interface for clocked blocks: Step advances the internal
// register, AsyncReset restores the reset state and marks downstream
// dirty.
type Step interface {
	Step()
	AsyncReset()
}

// Block is the contract every design-graph element implements. The
// catalogue of block classes is closed and statically known (spec.md
// Design Notes); modeling it as a Go interface rather than a tagged
// union with a dispatch table is a deliberate departure recorded in
// DESIGN.md — it achieves the same dispatch effect idiomatically, the
// way the teacher models its own closed device vocabulary as an
// interface.
type Block interface {
	GetName() string
	GetClassName() string
	GetFullName() string
	GetHierarchyLevel() *Level

	GetInputPins() []*InputPinBase
	GetOutputPins() []*OutputPinBase

	// GetProperties writes named scalar/array properties consumed by
	// the Verilog emitter and hashed by the elaborator. Default is a
	// no-op; override when a block has per-instance parameters.
	GetProperties(*Properties)

	// Evaluate reads current driver values of all inputs and writes
	// new values to all outputs.
	Evaluate()

	// GetSourceBlocks returns the blocks that must be evaluated before
	// this one in the combinational order. Clocked blocks return an
	// empty set: their register output does not combinationally depend
	// on any input.
	GetSourceBlocks() []Block

	// GetStep returns an IStep-equivalent if the block is clocked, or
	// nil for purely combinational blocks.
	GetStep() Step

	// CanEvaluate reports whether Evaluate should be called during
	// simulation.
	CanEvaluate() bool

	// Simplify runs once at simulator/elaborator start-up; the identity
	// block uses it to splice itself out.
	Simplify()

	// IsTemporary is true for a placeholder block backing an unbound
	// handle.
	IsTemporary() bool

	// CanRemove reports whether the block has no function and can be
	// safely dropped by the elaborator. Default: true if unconnected.
	CanRemove() bool

	registerInput(typ dfx.Type) *InputPinBase
	registerOutput(typ dfx.Type) *OutputPinBase
}

// BlockBase is embedded by every concrete block. It implements the pin
// bookkeeping and the defaulted parts of the Block contract
// (Simplify/IsTemporary/CanRemove/GetProperties/GetStep), grounded on
// the reference's BlockBase (block_base.h).
type BlockBase struct {
	self      Block
	name      string
	className string
	level     *Level

	inputs  []*InputPinBase
	outputs []*OutputPinBase

	hierarchySeq int
}

var blockSeq int

// NewBlockBase constructs the embeddable base for a block of the given
// class, created at the given hierarchy level. self must be the
// concrete block embedding this BlockBase; it is recorded so that pins
// registered through the base report the concrete block as their owner
// (Go has no implicit "virtual this" across an embedded field).
func NewBlockBase(self Block, className string, level *Level) BlockBase {
	blockSeq++
	return BlockBase{self: self, className: className, level: level, hierarchySeq: blockSeq}
}

func (b *BlockBase) SetName(name string) { b.name = name }

func (b *BlockBase) GetName() string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("%s$%d", b.className, b.hierarchySeq)
}

func (b *BlockBase) GetClassName() string { return b.className }

func (b *BlockBase) GetFullName() string {
	if b.level == nil {
		return b.GetName()
	}
	return b.level.Path() + "." + b.GetName()
}

func (b *BlockBase) GetHierarchyLevel() *Level { return b.level }

func (b *BlockBase) GetInputPins() []*InputPinBase   { return b.inputs }
func (b *BlockBase) GetOutputPins() []*OutputPinBase { return b.outputs }

func (b *BlockBase) GetProperties(*Properties) {}

func (b *BlockBase) GetStep() Step { return nil }

func (b *BlockBase) Simplify() {}

func (b *BlockBase) IsTemporary() bool { return false }

// CanRemove is true if the block has no connections on any pin.
func (b *BlockBase) CanRemove() bool {
	for _, in := range b.inputs {
		if in.driver != nil {
			return false
		}
	}
	for _, out := range b.outputs {
		if len(out.consumer) != 0 {
			return false
		}
	}
	return true
}

// registerInput appends a new input pin, reporting the concrete block
// recorded in NewBlockBase as the pin's owner.
func (b *BlockBase) registerInput(typ dfx.Type) *InputPinBase {
	p := newInputPinBase(b.self, typ, len(b.inputs))
	b.inputs = append(b.inputs, p)
	return p
}

func (b *BlockBase) registerOutput(typ dfx.Type) *OutputPinBase {
	p := newOutputPinBase(b.self, typ, len(b.outputs))
	b.outputs = append(b.outputs, p)
	return p
}
