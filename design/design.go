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

// Design owns every block created against it; blocks live for the full
// Design lifetime. The reference implementation exposes "the current
// design" through a process-wide singleton (spec.md Design Notes); this
// port instead threads a *Design explicitly through the building API
// and offers With as the scoped equivalent, so construction never
// depends on implicit global state and nested/concurrent designs are
// simply separate *Design values.
type Design struct {
	Hierarchy *Hierarchy
	blocks    []Block
}

// New creates an empty design rooted at a hierarchy level named
// rootName (typically the top-level module name).
func New(rootName string) *Design {
	return &Design{Hierarchy: NewHierarchy(rootName)}
}

// Add registers a newly constructed block with the design, keeping it
// alive for the design's lifetime and making it visible to the
// simulator and elaborator. Block constructors call this after wiring
// up their own BlockBase.
func (d *Design) Add(b Block) {
	d.blocks = append(d.blocks, b)
}

// Blocks returns every block owned by the design, in creation order.
func (d *Design) Blocks() []Block {
	return d.blocks
}

// With runs fn with a named hierarchy scope current, restoring the
// previous scope on return (including on panic).
func (d *Design) With(name string, fn func(*Level)) {
	d.Hierarchy.With(name, fn)
}

// CurrentLevel returns the innermost hierarchy level currently active
// for block construction.
func (d *Design) CurrentLevel() *Level {
	return d.Hierarchy.Current()
}
