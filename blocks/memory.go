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

// memoryBlock is a single dual-port memory: one read port (combinational
// address, registered one cycle later on the output, the same latency
// as a block-RAM read) and one write port (address, data and enable,
// applied synchronously on Step). The backing store is a flat slice
// indexed by address, mirroring the emulator's flat-array memory model.
type memoryBlock struct {
	design.BlockBase
	readAddress  *design.InputPin[dfx.Value]
	writeEnable  *design.InputPin[bool]
	writeAddress *design.InputPin[dfx.Value]
	writeData    *design.InputPin[dfx.Value]
	out          *design.OutputPin[dfx.Value]
	store        []dfx.Value
	dataType     dfx.Type
}

func (b *memoryBlock) Evaluate()              {}
func (b *memoryBlock) CanEvaluate() bool      { return false }
func (b *memoryBlock) GetSourceBlocks() []design.Block { return nil }

func (b *memoryBlock) GetStep() design.Step { return (*memoryStep)(b) }

type memoryStep memoryBlock

func (s *memoryStep) Step() {
	b := (*memoryBlock)(s)

	readAddr, err := b.readAddress.GetValue().ToInt64()
	if err != nil {
		panic(design.NewDesignError("memory: %s: %v", b.GetFullName(), err))
	}
	if int(readAddr) < 0 || int(readAddr) >= len(b.store) {
		panic(design.NewRangeError("memory: %s: read address %d out of range [0,%d)", b.GetFullName(), readAddr, len(b.store)))
	}
	b.out.Value = b.store[readAddr]

	if b.writeEnable.GetValue() {
		writeAddr, err := b.writeAddress.GetValue().ToInt64()
		if err != nil {
			panic(design.NewDesignError("memory: %s: %v", b.GetFullName(), err))
		}
		if int(writeAddr) < 0 || int(writeAddr) >= len(b.store) {
			panic(design.NewRangeError("memory: %s: write address %d out of range [0,%d)", b.GetFullName(), writeAddr, len(b.store)))
		}
		b.store[writeAddr] = b.writeData.GetValue().Copy(b.dataType)
	}
}

func (s *memoryStep) AsyncReset() {
	b := (*memoryBlock)(s)
	b.out.Value = dfx.Zero(b.dataType)
}

func (b *memoryBlock) GetProperties(props *design.Properties) {
	props.SetInt("Depth", len(b.store))
}

// MemoryPort is the back-door testbench handle returned alongside a
// memory's registered read output: it lets a test load or peek the
// backing store directly, bypassing the write port's one-cycle
// latency.
type MemoryPort struct {
	block *memoryBlock
}

// Load writes value directly into the backing store at addr.
func (m *MemoryPort) Load(addr int, value dfx.Value) {
	m.block.store[addr] = value.Copy(m.block.dataType)
}

// Peek reads the backing store directly at addr, without going
// through the registered read port.
func (m *MemoryPort) Peek(addr int) dfx.Value {
	return m.block.store[addr]
}

// Memory builds a dual-port memory of the given depth and element
// type, returning its registered read output and a back-door
// testbench handle.
func Memory(d *design.Design, depth int, dataType dfx.Type, readAddress *design.Node[dfx.Value], writeEnable *design.Node[bool], writeAddress, writeData *design.Node[dfx.Value]) (*design.Node[dfx.Value], *MemoryPort) {
	if depth <= 0 {
		panic("blocks: Memory depth must be positive")
	}

	b := &memoryBlock{store: make([]dfx.Value, depth), dataType: dataType}
	for i := range b.store {
		b.store[i] = dfx.Zero(dataType)
	}
	b.BlockBase = design.NewBlockBase(b, "memory", d.CurrentLevel())
	b.readAddress = design.NewInputPin[dfx.Value](b, readAddress)
	b.writeEnable = design.NewInputPin[bool](b, writeEnable)
	b.writeAddress = design.NewInputPin[dfx.Value](b, writeAddress)
	b.writeData = design.NewInputPin[dfx.Value](b, writeData)
	b.out = design.NewOutputPin[dfx.Value](b, dataType)
	b.out.Value = dfx.Zero(dataType)
	d.Add(b)
	return b.out.Node(), &MemoryPort{block: b}
}
