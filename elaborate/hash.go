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

package elaborate

import (
	"fmt"
	"hash/fnv"

	"github.com/christian-volmer/oddf-sub000/design"
)

// structuralHash summarizes an entity's block composition, port shape
// and per-block properties into a single value that two structurally
// identical entities are guaranteed to share. It is only ever used as a
// pre-filter ahead of entitiesEqual (DESIGN.md Open Question decision
// 4): a collision here just costs an extra deep-equality check, it
// never causes two different entities to unify.
func structuralHash(e *Entity) uint64 {
	h := fnv.New64a()

	write := func(s string) { h.Write([]byte(s)); h.Write([]byte{0}) }

	write(fmt.Sprintf("blocks:%d", len(e.Blocks)))
	for _, b := range e.Blocks {
		write(b.GetClassName())
		props := design.NewProperties()
		b.GetProperties(props)
		write(fmt.Sprintf("%d", props.Hash()))
		write(fmt.Sprintf("in:%d out:%d", len(b.GetInputPins()), len(b.GetOutputPins())))
	}

	write(fmt.Sprintf("ports:%d", len(e.Ports)))
	for _, p := range e.Ports {
		write(fmt.Sprintf("%d:%s", p.Direction, p.Type.String()))
	}

	return h.Sum64()
}

// entitiesEqual performs the full structural comparison GenerateModules
// falls back on once two entities' hashes agree: same block count, same
// per-block class/properties/pin-shape in discovery order, and the same
// port shape. This is deliberately stricter than a semantic
// isomorphism check (it does not try to find a relabeling that makes
// two differently-ordered entities match) — see DESIGN.md Open Question
// decision 4.
func entitiesEqual(a, b *Entity) bool {
	if a == b {
		return true
	}
	if len(a.Blocks) != len(b.Blocks) || len(a.Ports) != len(b.Ports) {
		return false
	}

	for i := range a.Blocks {
		ba, bb := a.Blocks[i], b.Blocks[i]
		if ba.GetClassName() != bb.GetClassName() {
			return false
		}
		if len(ba.GetInputPins()) != len(bb.GetInputPins()) {
			return false
		}
		if len(ba.GetOutputPins()) != len(bb.GetOutputPins()) {
			return false
		}
		pa, pb := design.NewProperties(), design.NewProperties()
		ba.GetProperties(pa)
		bb.GetProperties(pb)
		if !pa.Equal(pb) {
			return false
		}
	}

	for i := range a.Ports {
		pa, pb := a.Ports[i], b.Ports[i]
		if pa.Direction != pb.Direction {
			return false
		}
		if !pa.Type.Equal(pb.Type) {
			return false
		}
	}

	return true
}
