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

package design

import "github.com/christian-volmer/oddf-sub000/dfx"

// OutputPinBase is the untyped view of an output pin used by the
// elaborator and simulator, which only need its identity, owner and
// consumer list, not its value's static Go type.
type OutputPinBase struct {
	owner    Block
	typ      dfx.Type
	index    int
	consumer []*InputPinBase
}

func newOutputPinBase(owner Block, typ dfx.Type, index int) *OutputPinBase {
	return &OutputPinBase{owner: owner, typ: typ, index: index}
}

func (o *OutputPinBase) Owner() Block   { return o.owner }
func (o *OutputPinBase) Type() dfx.Type { return o.typ }
func (o *OutputPinBase) Index() int     { return o.index }

// Consumers returns the input pins currently driven by this output.
func (o *OutputPinBase) Consumers() []*InputPinBase {
	return o.consumer
}

func (o *OutputPinBase) addConsumer(in *InputPinBase) {
	o.consumer = append(o.consumer, in)
}

func (o *OutputPinBase) removeConsumer(in *InputPinBase) {
	for i, c := range o.consumer {
		if c == in {
			o.consumer = append(o.consumer[:i], o.consumer[i+1:]...)
			return
		}
	}
}

// disconnectAll severs every consumer's back-reference, used when the
// owning block is removed from the design.
func (o *OutputPinBase) disconnectAll() {
	for _, c := range append([]*InputPinBase(nil), o.consumer...) {
		c.driver = nil
	}
	o.consumer = nil
}

// InputPinBase is the untyped view of an input pin.
type InputPinBase struct {
	owner  Block
	typ    dfx.Type
	index  int
	driver *OutputPinBase
}

func newInputPinBase(owner Block, typ dfx.Type, index int) *InputPinBase {
	return &InputPinBase{owner: owner, typ: typ, index: index}
}

func (i *InputPinBase) Owner() Block   { return i.owner }
func (i *InputPinBase) Type() dfx.Type { return i.typ }
func (i *InputPinBase) Index() int     { return i.index }

// Driver returns the output pin driving this input, or nil if
// unconnected.
func (i *InputPinBase) Driver() *OutputPinBase { return i.driver }

// Connect disconnects any existing driver and connects to out. out must
// be driven (bound), matching the building API's "using an unbound
// placeholder with consumers" DesignError condition enforced by node.go
// at a higher level; this method itself does no type checking.
func (i *InputPinBase) Connect(out *OutputPinBase) {
	if i.driver == out {
		return
	}
	i.Disconnect()
	i.driver = out
	out.addConsumer(i)
}

// Disconnect removes the reciprocal link to the current driver, if any.
func (i *InputPinBase) Disconnect() {
	if i.driver != nil {
		i.driver.removeConsumer(i)
		i.driver = nil
	}
}

// OutputPin is the typed, per-block-instance front door to an
// OutputPinBase: owned by exactly one block, holds the block's current
// simulated value.
type OutputPin[T any] struct {
	base  *OutputPinBase
	Value T
}

// NewOutputPin registers a new output pin on owner with the given
// static type, in declaration order.
func NewOutputPin[T any](owner Block, typ dfx.Type) *OutputPin[T] {
	p := &OutputPin[T]{}
	p.base = owner.registerOutput(typ)
	return p
}

func (p *OutputPin[T]) Base() *OutputPinBase { return p.base }
func (p *OutputPin[T]) Type() dfx.Type       { return p.base.typ }

// Node returns a bound handle to this output pin.
func (p *OutputPin[T]) Node() *Node[T] {
	return &Node[T]{driver: p}
}

// InputPin is the typed front door to an InputPinBase.
type InputPin[T any] struct {
	base *InputPinBase
	node *Node[T]
}

// NewInputPin registers a new input pin on owner and connects it to the
// output pin behind n, in declaration order.
func NewInputPin[T any](owner Block, n *Node[T]) *InputPin[T] {
	p := &InputPin[T]{node: n}
	p.base = owner.registerInput(n.typ())
	if n.driver != nil {
		p.base.Connect(n.driver.base)
	} else {
		n.addForward(p)
	}
	return p
}

func (p *InputPin[T]) Base() *InputPinBase { return p.base }
func (p *InputPin[T]) Type() dfx.Type      { return p.base.typ }

// GetValue returns the current value of the driving output pin. It
// panics if the pin's node was never driven; sim.NewScheduler does not
// check for such pins before blocks are evaluated.
func (p *InputPin[T]) GetValue() T {
	return p.node.driver.Value
}

// GetDrivingBlock returns the block driving this input, or nil if
// unconnected.
func (p *InputPin[T]) GetDrivingBlock() Block {
	if p.base.driver == nil {
		return nil
	}
	return p.base.driver.owner
}

// rebind is called by ForwardNode.Assign when the placeholder this pin was
// created against is rewired onto a real driver.
func (p *InputPin[T]) rebind(out *OutputPin[T]) {
	p.node.driver = out
	p.base.Connect(out.base)
}
