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

// Node is the front-end "handle": a lightweight reference to an output
// pin together with its static type. A Node is temporary when it has no
// driver yet (it refers to a just-created placeholder) and bound once a
// real block's output has been attached.
type Node[T any] struct {
	driver *OutputPin[T]
	placeholderType dfx.Type

	// pending collects input pins created against this node while it
	// was still temporary; ForwardNode.Assign rewires all of them onto
	// the real driver the moment it is known.
	pending []*InputPin[T]
}

// NewTemporary creates an unbound placeholder handle of the given
// static type. Building a block input against it registers a forward
// reference on the node; such references are resolved only through
// ForwardNode.Assign. Nothing checks for an unresolved reference before
// simulation: evaluating a block whose input still refers to an
// undriven placeholder panics in InputPin.GetValue.
func NewTemporary[T any](typ dfx.Type) *Node[T] {
	return &Node[T]{placeholderType: typ}
}

// IsDriven reports whether the node already refers to a real block's
// output.
func (n *Node[T]) IsDriven() bool { return n.driver != nil }

func (n *Node[T]) typ() dfx.Type {
	if n.driver != nil {
		return n.driver.Type()
	}
	return n.placeholderType
}

// Type returns the node's static type, whether bound or still a typed
// placeholder.
func (n *Node[T]) Type() dfx.Type { return n.typ() }

func (n *Node[T]) addForward(p *InputPin[T]) {
	n.pending = append(n.pending, p)
}

// ForwardNode is a Node that additionally permits exactly one deferred
// assignment. The first Assign call promotes the node to bound and
// rewires every consumer originally created against the placeholder
// onto the real driver — the Go equivalent of the reference's
// `operator<<=` one-shot forward-handle promotion.
type ForwardNode[T any] struct {
	Node[T]
	assigned bool
}

// NewForward creates a forward handle of the given static type.
func NewForward[T any](typ dfx.Type) *ForwardNode[T] {
	return &ForwardNode[T]{Node: Node[T]{placeholderType: typ}}
}

// Assign performs the one-shot promotion: every input pin already
// connected to this handle's placeholder is rewired onto n's driving
// output, and further calls to Assign panic (the reference
// implementation throws on a second `<<=`, since a forward handle
// exists precisely to be filled in exactly once). n must already be
// driven — it is normally the Node returned by a block constructor
// called after the forward handle, closing a feedback loop.
func (f *ForwardNode[T]) Assign(n *Node[T]) {
	if f.assigned {
		panic("design: forward node already assigned")
	}
	if n.driver == nil {
		panic("design: cannot assign a forward node from an undriven node")
	}
	f.assigned = true
	out := n.driver
	f.driver = out
	for _, p := range f.pending {
		p.rebind(out)
	}
	f.pending = nil
}
