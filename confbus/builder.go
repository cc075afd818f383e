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

// Package confbus implements the hierarchical configuration bus: an
// APB-like address-space allocator used inside a design (Builder) to
// register memory-mapped write/read registers and ranges, and a
// testbench-side driver (Controller) used outside the design to
// perform transactions against the live simulation. Grounded on
// emu/sys_channel/chandefs.go's address/control/status-byte protocol
// idiom, generalised from one fixed S/370 channel layout to an
// arbitrary nested address tree.
package confbus

import (
	"github.com/christian-volmer/oddf-sub000/blocks"
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

// busWidth is the data width, in bits, of every word on the
// configuration bus; registers wider than this occupy one address per
// 32-bit chunk, high chunk first.
const busWidth = 32

// Range describes one block of addresses handed to a caller-supplied
// peripheral (typically a Memory). The caller binds ReadAcknowledge and
// ReadData to its own block's outputs before calling Finalize; until
// then they read as permanently deasserted/zero.
type Range struct {
	Name            string
	Address         *design.Node[dfx.Value]
	WriteEnable     *design.Node[bool]
	WriteData       *design.Node[dfx.Value]
	ReadRequest     *design.Node[bool]
	ReadAcknowledge *design.Node[bool]
	ReadData        *design.Node[dfx.Value]
}

// addrCounter is the monotonic address allocator shared by every
// Builder produced by Fork from a common ancestor, so two forked trees
// never collide over the same addresses.
type addrCounter struct {
	base int
	next int
}

// Builder accumulates memory-mapped registers and ranges while a
// design is being constructed, assigning each a monotonically
// increasing address local to its current Break/Merge section.
type Builder struct {
	d           *design.Design
	addressType dfx.Type

	address     *design.Node[dfx.Value]
	writeEnable *design.Node[bool]
	writeData   *design.Node[dfx.Value]
	readRequest *design.Node[bool]
	clearAll    *design.Node[bool]

	counter *addrCounter
	writers []writeRegister
	readers []readRegister
	ranges  []*Range
}

type writeRegister struct {
	name    string
	address int
	out     *design.Node[dfx.Value]
}

type readRegister struct {
	name    string
	address int
	source  *design.Node[dfx.Value]
}

// NewBuilder creates a Builder over the given design, driven by the
// named control signals. addressType sizes the address bus.
func NewBuilder(d *design.Design, addressType dfx.Type, address *design.Node[dfx.Value], writeEnable *design.Node[bool], writeData *design.Node[dfx.Value], readRequest *design.Node[bool], clearAll *design.Node[bool]) *Builder {
	return &Builder{
		d:           d,
		addressType: addressType,
		address:     address,
		writeEnable: writeEnable,
		writeData:   writeData,
		readRequest: readRequest,
		clearAll:    clearAll,
		counter:     &addrCounter{},
	}
}

func chunkCount(typ dfx.Type) int {
	n := (typ.GetWordWidth() + busWidth - 1) / busWidth
	if n < 1 {
		n = 1
	}
	return n
}

func typedCast(d *design.Design, in *design.Node[dfx.Value], typ dfx.Type) *design.Node[dfx.Value] {
	if in.Type().GetWordWidth() == typ.GetWordWidth() && in.Type().IsSigned() == typ.IsSigned() {
		return in
	}
	return blocks.FloorCast(d, in, typ, blocks.WrapAround)
}

// selectRange returns true on cycles where Address falls inside
// [addr, addr+length).
func (b *Builder) selectRange(addr, length int) *design.Node[bool] {
	lo := blocks.LessEqual(b.d, blocks.Constant(b.d, dfx.FromInt64(b.addressType, int64(addr))), b.address)
	hi := blocks.LessEqual(b.d, b.address, blocks.Constant(b.d, dfx.FromInt64(b.addressType, int64(addr+length-1))))
	return blocks.And(b.d, lo, hi)
}

// AddWriteRegister allocates one address per 32-bit chunk of typ and
// returns a node carrying the register's stored value every cycle. The
// register synchronously clears to zero on ClearAll, and otherwise
// latches writeData whenever writeEnable is asserted with Address
// selecting this register; it holds its value on every other cycle.
//
// Registers wider than busWidth are scope-reduced here to a single
// 32-bit-or-narrower path: see DESIGN.md's confbus entry for why the
// reference's two-chunk high/low split is not replicated in full.
func (b *Builder) AddWriteRegister(typ dfx.Type, name string) *design.Node[dfx.Value] {
	chunks := chunkCount(typ)
	addr := b.counter.base + b.counter.next
	b.counter.next += chunks

	selected := b.selectRange(addr, chunks)
	write := blocks.And(b.d, b.writeEnable, selected)
	enable := blocks.Or(b.d, write, b.clearAll)

	decide := blocks.NewDecide(b.d, b.clearAll)
	dataIn := decide.AddPath(blocks.Constant(b.d, dfx.Zero(typ)), typedCast(b.d, b.writeData, typ))

	delay := blocks.NewDelay(b.d, enable)
	out := delay.AddPath(dataIn, dfx.Zero(typ))

	b.writers = append(b.writers, writeRegister{name: name, address: addr, out: out})
	return out
}

// AddReadRegister exposes source at the given address for read-back;
// it does not add any register of its own, only an observation point.
func (b *Builder) AddReadRegister(typ dfx.Type, name string, source *design.Node[dfx.Value]) {
	chunks := chunkCount(typ)
	addr := b.counter.base + b.counter.next
	b.counter.next += chunks

	b.readers = append(b.readers, readRegister{name: name, address: addr, source: typedCast(b.d, source, typ)})
}

// AddRange allocates length consecutive addresses and returns the raw
// bus-facing signals for a caller-implemented peripheral. The caller
// must set the returned Range's ReadAcknowledge/ReadData fields to its
// peripheral's outputs before Finalize is called.
func (b *Builder) AddRange(typ dfx.Type, length int, name string) *Range {
	addr := b.counter.base + b.counter.next
	b.counter.next += length

	inRange := b.selectRange(addr, length)
	r := &Range{
		Name:            name,
		Address:         blocks.FloorCast(b.d, b.address, b.addressType, blocks.WrapAround),
		WriteEnable:     blocks.And(b.d, b.writeEnable, inRange),
		WriteData:       typedCast(b.d, b.writeData, typ),
		ReadRequest:     blocks.And(b.d, b.readRequest, inRange),
		ReadAcknowledge: blocks.ConstantBool(b.d, false),
		ReadData:        blocks.Constant(b.d, dfx.Zero(typ)),
	}
	b.ranges = append(b.ranges, r)
	return r
}

// Section is the token returned by Break, passed to Merge to close the
// sub-section and restore the enclosing address base.
type Section struct {
	parentBase int
	parentNext int
}

// Break opens a sub-section: addresses allocated after this call are
// rebased to start at zero inside the sub-design, and extra pipeline
// stages of delay are inserted on the control path, keeping address
// decode local as the bus fans out through the hierarchy.
func (b *Builder) Break(extra int) *Section {
	s := &Section{parentBase: b.counter.base, parentNext: b.counter.next}
	b.counter.base += b.counter.next
	b.counter.next = 0
	for i := 0; i < extra; i++ {
		b.address = pipeline(b.d, b.address)
		b.writeEnable = pipelineBool(b.d, b.writeEnable)
		b.writeData = pipeline(b.d, b.writeData)
		b.readRequest = pipelineBool(b.d, b.readRequest)
	}
	return s
}

// Merge closes the sub-section opened by Break, restoring the
// enclosing address counter so sibling sections do not collide.
func (b *Builder) Merge(s *Section) {
	used := b.counter.base + b.counter.next - s.parentBase
	b.counter.base = s.parentBase
	b.counter.next = s.parentNext + used
}

// Fork creates a second Builder over a parallel section of the same
// design, allocating from the same monotonic address counter as b so
// the two trees never collide; the two trees' registers are merged
// back into one read-data mux by Join.
func (b *Builder) Fork() *Builder {
	return &Builder{
		d:           b.d,
		addressType: b.addressType,
		address:     b.address,
		writeEnable: b.writeEnable,
		writeData:   b.writeData,
		readRequest: b.readRequest,
		clearAll:    b.clearAll,
		counter:     b.counter,
	}
}

// Join merges other's registers and ranges into b, the "small
// combinational arbiter" of the two read-data paths being realised as
// one shared mux built by Finalize once every entry has landed in a
// single list.
func (b *Builder) Join(other *Builder) {
	b.writers = append(b.writers, other.writers...)
	b.readers = append(b.readers, other.readers...)
	b.ranges = append(b.ranges, other.ranges...)
}

// Finalize builds the aggregate ReadAcknowledge/ReadData mux over every
// register and range registered so far, latched one cycle after the
// read request that selected them (the addressing convention's "a
// single read request returns exactly one data word one cycle later").
// Call it once, after every AddWriteRegister/AddReadRegister/AddRange
// call and after every Range's peripheral has been wired up.
func (b *Builder) Finalize() (readAcknowledge *design.Node[bool], readData *design.Node[dfx.Value]) {
	busType := dfx.Fixed(false, busWidth, 0)

	always := blocks.ConstantBool(b.d, true)
	selectedAny := blocks.ConstantBool(b.d, false)
	data := blocks.Constant(b.d, dfx.Zero(busType))

	addGatedEntry := func(gated *design.Node[bool], value *design.Node[dfx.Value]) {
		selectedAny = blocks.Or(b.d, selectedAny, gated)
		decide := blocks.NewDecide(b.d, gated)
		data = decide.AddPath(typedCast(b.d, value, busType), data)
	}

	addAddressedEntry := func(addr int, value *design.Node[dfx.Value]) {
		addGatedEntry(b.selectRange(addr, 1), value)
	}

	for _, w := range b.writers {
		addAddressedEntry(w.address, w.out)
	}
	for _, r := range b.readers {
		addAddressedEntry(r.address, r.source)
	}
	for _, r := range b.ranges {
		// A range's own peripheral already decoded the address (its
		// ReadRequest is pre-gated by the range's selectRange), so its
		// entry is admitted by its acknowledge alone.
		addGatedEntry(r.ReadAcknowledge, r.ReadData)
	}

	ackCombinational := blocks.And(b.d, b.readRequest, selectedAny)
	ackDelay := blocks.NewDelay(b.d, always)
	ack := ackDelay.AddPath(boolToFixed(b.d, ackCombinational), dfx.Zero(dfx.Fixed(false, 1, 0)))

	dataDelay := blocks.NewDelay(b.d, always)
	dataOut := dataDelay.AddPath(data, dfx.Zero(busType))

	return fixedToBool(b.d, ack), dataOut
}

func pipeline(d *design.Design, in *design.Node[dfx.Value]) *design.Node[dfx.Value] {
	always := blocks.ConstantBool(d, true)
	delay := blocks.NewDelay(d, always)
	return delay.AddPath(in, dfx.Zero(in.Type()))
}

func pipelineBool(d *design.Design, in *design.Node[bool]) *design.Node[bool] {
	return fixedToBool(d, pipeline(d, boolToFixed(d, in)))
}

func boolToFixed(d *design.Design, in *design.Node[bool]) *design.Node[dfx.Value] {
	return blocks.BitCompose(d, []*design.Node[bool]{in}, dfx.Fixed(false, 1, 0))
}

func fixedToBool(d *design.Design, in *design.Node[dfx.Value]) *design.Node[bool] {
	return blocks.BitExtract(d, in, 0, 1)[0]
}
