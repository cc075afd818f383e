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

// Package sim implements the cycle-accurate simulator: a topological
// scheduler over the combinational part of a design's block graph, and
// a clocked-step loop that advances every register once per cycle.
package sim

import (
	"github.com/christian-volmer/oddf-sub000/blocks"
	"github.com/christian-volmer/oddf-sub000/design"
)

type color int

const (
	white color = iota
	gray
	black
)

// Scheduler holds the topologically-sorted evaluation order for one
// design together with the set of clocked blocks that must Step each
// cycle, mirroring the split the reference simulator makes between a
// block's combinational Evaluate and its registered Step.
type Scheduler struct {
	design   *design.Design
	topo     []design.Block
	steppers []design.Block
	free     []design.Block
	dirty    map[design.Block]bool
	cycle    int64
}

// NewScheduler runs Simplify on every block in d once, then computes a
// topological evaluation order over the blocks that CanEvaluate,
// ordered by GetSourceBlocks dependencies. It returns a DesignError if
// the combinational graph contains a cycle.
func NewScheduler(d *design.Design) (*Scheduler, error) {
	for _, b := range d.Blocks() {
		b.Simplify()
	}

	s := &Scheduler{design: d, dirty: map[design.Block]bool{}}

	colors := map[design.Block]color{}
	var order []design.Block

	var visit func(b design.Block) error
	visit = func(b design.Block) error {
		switch colors[b] {
		case black:
			return nil
		case gray:
			return design.NewDesignError("sim: combinational cycle detected at %s", b.GetFullName())
		}
		colors[b] = gray
		for _, src := range b.GetSourceBlocks() {
			if src == nil {
				continue
			}
			if err := visit(src); err != nil {
				return err
			}
		}
		colors[b] = black
		order = append(order, b)
		return nil
	}

	for _, b := range d.Blocks() {
		if !b.CanEvaluate() {
			continue
		}
		if err := visit(b); err != nil {
			return nil, err
		}
	}

	s.topo = order

	for _, b := range d.Blocks() {
		if step := b.GetStep(); step != nil {
			s.steppers = append(s.steppers, b)
		}
		if fr, ok := b.(blocks.FreeRunning); ok && fr.IsFreeRunning() {
			s.free = append(s.free, b)
		}
	}

	return s, nil
}

// SetDirty flags b for re-evaluation on the next Cycle and transitively
// marks every block downstream of it. A testbench calls this after
// mutating state behind a block's back (e.g. a MemoryPort.Load) to
// force the affected cone to re-evaluate even though no input changed
// through a connected pin.
func (s *Scheduler) SetDirty(b design.Block) {
	s.markDirty(b)
}

// markDirty flags b and transitively every consumer reachable through
// its output pins, so a single upstream change re-evaluates the whole
// affected combinational cone this cycle.
func (s *Scheduler) markDirty(b design.Block) {
	if s.dirty[b] {
		return
	}
	s.dirty[b] = true
	for _, out := range b.GetOutputPins() {
		for _, consumer := range out.Consumers() {
			s.markDirty(consumer.Owner())
		}
	}
}

// Reset runs AsyncReset on every clocked block and marks the entire
// combinational graph dirty, so the first Cycle call evaluates
// everything once from a known state.
func (s *Scheduler) Reset() {
	for _, b := range s.steppers {
		b.GetStep().AsyncReset()
	}
	s.cycle = 0
	for _, b := range s.topo {
		s.markDirty(b)
	}
}

// Cycle evaluates every dirty block in topological order, steps every
// clocked block, and then marks next cycle's dirty set: every
// free-running block (a Source with no enable driving it combinationally
// still changes every clock) and every consumer of a just-stepped
// register, since a register's output is free to change on any Step.
func (s *Scheduler) Cycle() {
	for _, b := range s.topo {
		if s.dirty[b] {
			b.Evaluate()
		}
	}
	s.dirty = map[design.Block]bool{}

	for _, b := range s.steppers {
		b.GetStep().Step()
	}

	for _, b := range s.free {
		s.markDirty(b)
	}
	for _, b := range s.steppers {
		s.markDirty(b)
	}

	s.cycle++
}

// Run calls Cycle n times.
func (s *Scheduler) Run(n int) {
	for i := 0; i < n; i++ {
		s.Cycle()
	}
}

// CycleCount returns the number of cycles executed since the last
// Reset.
func (s *Scheduler) CycleCount() int64 { return s.cycle }
