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

// Package elaborate implements the structural elaborator (C6): it turns
// a design's flat block graph, scoped by hierarchy level, into a module
// hierarchy suitable for Verilog emission. The pass order is fixed,
// grounded on original_source/lib/oddf/src/generator/generator.cpp:
// Simplify all blocks, MapEntities, MapConnections, PlacePorts
// (fixpoint), NamePorts, IdentifyInstances, GenerateModules (structural
// unification), CheckConsistency.
package elaborate

import (
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

// PortDirection is a port's role at an entity boundary.
type PortDirection int

const (
	PortInput PortDirection = iota
	PortOutput
)

// Port is one named signal crossing an entity's boundary.
type Port struct {
	Name      string
	Direction PortDirection
	Type      dfx.Type
	Outer     *design.OutputPinBase // for PortOutput: the entity-internal driver
	OuterIn   *design.InputPinBase  // for PortInput: one of possibly many internal consumers
}

// Entity is one hierarchy level turned into a (pre-unification) module
// candidate: the blocks it owns, and the ports punched through its
// boundary by PlacePorts.
type Entity struct {
	Level     *design.Level
	Name      string
	Blocks    []design.Block
	Ports     []*Port
	Instances []*Instance

	// ModuleName is assigned by GenerateModules once entities have been
	// grouped into unification classes; entities in the same class share
	// one ModuleName.
	ModuleName string
}

// Instance is one entity used as a sub-module inside its parent entity,
// the structural-elaboration analogue of a Verilog module instantiation.
type Instance struct {
	Name   string
	Entity *Entity
}

// Design is the root of an elaboration run: every entity keyed by its
// hierarchy level, and the list of unified modules ready for emission.
type Design struct {
	Entities map[*design.Level]*Entity
	Root     *Entity
	Modules  []*Module
}

// Module is one unification class of structurally-identical entities:
// exactly one of them (Representative) is emitted, and every entity in
// Members is rewired to instantiate it.
type Module struct {
	Name          string
	Representative *Entity
	Members       []*Entity
	Hash          uint64
}
