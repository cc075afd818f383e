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

// Level is one node of the hierarchy tree. Each level has a name, the
// module name used for code emission, a parent, a sibling and a
// first-child pointer. Every block records the level in which it was
// created.
type Level struct {
	Name       string
	ModuleName string

	parent      *Level
	firstChild  *Level
	nextSibling *Level
}

// Parent returns the enclosing level, or nil at the root.
func (l *Level) Parent() *Level { return l.parent }

// ChildOf reports whether l is other, or a descendant of other.
func (l *Level) ChildOf(other *Level) bool {
	for cur := l; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Path returns the full dotted hierarchical path from the root to l.
func (l *Level) Path() string {
	if l == nil {
		return ""
	}
	if l.parent == nil {
		return l.Name
	}
	parent := l.parent.Path()
	if parent == "" {
		return l.Name
	}
	return parent + "." + l.Name
}

// Hierarchy owns the tree of levels and the current-scope stack used by
// the design-building API.
type Hierarchy struct {
	root  *Level
	stack []*Level
}

// NewHierarchy creates a hierarchy with a single root level.
func NewHierarchy(rootName string) *Hierarchy {
	root := &Level{Name: rootName, ModuleName: rootName}
	return &Hierarchy{root: root, stack: []*Level{root}}
}

// Root returns the top-level hierarchy level.
func (h *Hierarchy) Root() *Level { return h.root }

// Current returns the innermost level on the scope stack.
func (h *Hierarchy) Current() *Level { return h.stack[len(h.stack)-1] }

// Enter pushes a new named child scope of the current level and returns
// it. If a child with this name already exists it is reused, matching
// the idiom of repeatedly entering the same named scope to add more
// blocks to an existing module.
func (h *Hierarchy) Enter(name string) *Level {
	parent := h.Current()
	for c := parent.firstChild; c != nil; c = c.nextSibling {
		if c.Name == name {
			h.stack = append(h.stack, c)
			return c
		}
	}

	level := &Level{Name: name, ModuleName: name, parent: parent}
	if parent.firstChild == nil {
		parent.firstChild = level
	} else {
		last := parent.firstChild
		for last.nextSibling != nil {
			last = last.nextSibling
		}
		last.nextSibling = level
	}
	h.stack = append(h.stack, level)
	return level
}

// Leave pops the current scope, restoring its parent as current. It is
// a no-op at the root, matching "restore on every exit path" semantics
// when called from a deferred scope-exit helper.
func (h *Hierarchy) Leave() {
	if len(h.stack) > 1 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

// With enters the named scope, runs fn with it current, and leaves the
// scope on every exit path (including panics), mirroring the reference
// implementation's scoped level-rebinding helper.
func (h *Hierarchy) With(name string, fn func(*Level)) {
	level := h.Enter(name)
	defer h.Leave()
	fn(level)
}

// Children returns the direct child levels of l, in creation order.
func (l *Level) Children() []*Level {
	var out []*Level
	for c := l.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}
