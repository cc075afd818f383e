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

package confbus

import (
	"github.com/christian-volmer/oddf-sub000/blocks"
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
	"github.com/christian-volmer/oddf-sub000/sim"
)

// Controller drives the configuration bus from outside the design
// under test: Address/WriteEnable/WriteData/ReadRequest/ClearAll are
// pushed in through Source blocks owned by the Controller itself, and
// ReadAcknowledge/ReadData are sampled back through a Sink, so a caller
// never has to rebuild the design between transactions.
type Controller struct {
	d       *design.Design
	sched   *sim.Scheduler
	timeout int

	addressType dfx.Type
	busType     dfx.Type

	pendingAddress     dfx.Value
	pendingWriteEnable bool
	pendingWriteData   dfx.Value
	pendingReadRequest bool
	pendingClearAll    bool

	lastAck  bool
	lastData dfx.Value

	Address     *design.Node[dfx.Value]
	WriteEnable *design.Node[bool]
	WriteData   *design.Node[dfx.Value]
	ReadRequest *design.Node[bool]
	ClearAll    *design.Node[bool]
}

// NewController builds the Controller's own driving nodes in d's
// current hierarchy scope. The caller passes Address/WriteEnable/
// WriteData/ReadRequest/ClearAll to confbus.NewBuilder to wire them
// into the design under test, then calls Attach once the design is
// complete (after Builder.Finalize) to bind the read-back signals and
// start the scheduler.
func NewController(d *design.Design, addressType dfx.Type) *Controller {
	c := &Controller{
		d:           d,
		addressType: addressType,
		busType:     dfx.Fixed(false, busWidth, 0),
		timeout:     16,
	}
	c.pendingAddress = dfx.Zero(addressType)
	c.pendingWriteData = dfx.Zero(c.busType)

	c.Address = blocks.Source(d, addressType, nil, func() (dfx.Value, bool) { return c.pendingAddress, true })
	c.WriteData = blocks.Source(d, c.busType, nil, func() (dfx.Value, bool) { return c.pendingWriteData, true })
	c.WriteEnable = boolSource(d, func() bool { return c.pendingWriteEnable })
	c.ReadRequest = boolSource(d, func() bool { return c.pendingReadRequest })
	c.ClearAll = boolSource(d, func() bool { return c.pendingClearAll })
	return c
}

// boolSource adapts Source's dfx.Value-only feed into a single-bit
// Node[bool] driver, the same bit-packing idiom confbus/builder.go
// uses for its internal pipeline registers.
func boolSource(d *design.Design, read func() bool) *design.Node[bool] {
	typ := dfx.Fixed(false, 1, 0)
	node := blocks.Source(d, typ, nil, func() (dfx.Value, bool) {
		if read() {
			return dfx.FromInt64(typ, 1), true
		}
		return dfx.FromInt64(typ, 0), true
	})
	return fixedToBool(d, node)
}

// Attach binds the builder's aggregated read-back signals and starts
// the cycle-accurate scheduler over the whole design. Call this once,
// after every block in the design (including the configuration bus)
// has been constructed.
func (c *Controller) Attach(readAcknowledge *design.Node[bool], readData *design.Node[dfx.Value]) error {
	blocks.Sink(c.d, boolToFixed(c.d, readAcknowledge), nil, func(v dfx.Value) {
		bit, _ := v.ToInt64()
		c.lastAck = bit != 0
	})
	blocks.Sink(c.d, readData, nil, func(v dfx.Value) {
		c.lastData = v
	})

	sched, err := sim.NewScheduler(c.d)
	if err != nil {
		return err
	}
	c.sched = sched
	c.sched.Reset()
	return nil
}

// SetTimeout changes the number of cycles Read waits for
// ReadAcknowledge before returning a TimeoutError.
func (c *Controller) SetTimeout(cycles int) {
	c.timeout = cycles
}

// Scheduler exposes the underlying cycle-accurate scheduler, e.g. to
// run idle cycles between transactions.
func (c *Controller) Scheduler() *sim.Scheduler {
	return c.sched
}

// ClearAllRegisters pulses ClearAll for one cycle, synchronously
// resetting every register reachable through the bus.
func (c *Controller) ClearAllRegisters() {
	c.pendingClearAll = true
	c.sched.Cycle()
	c.pendingClearAll = false
}

// Write performs one bus write transaction: it drives Address/
// WriteData/WriteEnable for one cycle and advances the scheduler.
func (c *Controller) Write(address int64, value int64) {
	c.pendingAddress = dfx.FromInt64(c.addressType, address)
	c.pendingWriteData = dfx.FromInt64(c.busType, value)
	c.pendingWriteEnable = true
	c.sched.Cycle()
	c.pendingWriteEnable = false
}

// Read performs one bus read transaction, blocking (advancing the
// scheduler) for up to the configured timeout before ReadAcknowledge
// asserts. Returns a TimeoutError if the acknowledge never arrives.
// An acknowledge still asserted from an earlier read is first let
// deassert, so it is not taken for this read's acknowledge.
func (c *Controller) Read(address int64) (int64, error) {
	for i := 0; c.lastAck && i < c.timeout; i++ {
		c.sched.Cycle()
	}
	c.pendingAddress = dfx.FromInt64(c.addressType, address)
	c.pendingReadRequest = true
	defer func() { c.pendingReadRequest = false }()

	for i := 0; i < c.timeout; i++ {
		c.sched.Cycle()
		if c.lastAck {
			v, _ := c.lastData.ToInt64()
			return v, nil
		}
	}
	return 0, design.NewTimeoutError("confbus: no ReadAcknowledge for address %d within %d cycles", address, c.timeout)
}
