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
	"testing"

	"github.com/christian-volmer/oddf-sub000/blocks"
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

// buildTwoLevelAdder builds top { a, b := Constant; sub { s := a + b } }
// with a and b created in the root scope and consumed one level down,
// exercising PlacePorts across exactly one boundary.
func buildTwoLevelAdder(d *design.Design) *design.Node[dfx.Value] {
	typ := dfx.Fixed(false, 8, 0)
	a := blocks.Constant(d, dfx.FromInt64(typ, 3))
	b := blocks.Constant(d, dfx.FromInt64(typ, 4))

	var sum *design.Node[dfx.Value]
	d.With("adder", func(*design.Level) {
		sum = blocks.Plus(d, a, b)
	})
	return sum
}

func TestMapEntitiesCoversEveryLevel(t *testing.T) {
	d := design.New("top")
	buildTwoLevelAdder(d)

	ed := mapEntities(d)
	if len(ed.Entities) != 2 {
		t.Fatalf("got %d entities, want 2 (top, top.adder)", len(ed.Entities))
	}
	if ed.Root.Level != d.Hierarchy.Root() {
		t.Fatalf("Root entity does not correspond to the design's root level")
	}
}

func TestPlacePortsPunchesBoundary(t *testing.T) {
	d := design.New("top")
	buildTwoLevelAdder(d)

	ed, err := Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	var adderEntity *Entity
	for _, e := range ed.Entities {
		if e.Level.Name == "adder" {
			adderEntity = e
		}
	}
	if adderEntity == nil {
		t.Fatalf("no entity found for the adder scope")
	}

	var inputPorts int
	for _, p := range adderEntity.Ports {
		if p.Direction == PortInput {
			inputPorts++
		}
	}
	if inputPorts != 2 {
		t.Fatalf("adder entity has %d input ports, want 2 (a and b crossing the boundary)", inputPorts)
	}
}

func TestIdentifyInstancesRegistersChild(t *testing.T) {
	d := design.New("top")
	buildTwoLevelAdder(d)

	ed, err := Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	if len(ed.Root.Instances) != 1 {
		t.Fatalf("root entity has %d instances, want 1", len(ed.Root.Instances))
	}
	if ed.Root.Instances[0].Entity.Level.Name != "adder" {
		t.Fatalf("root's instance is not the adder entity")
	}
}

func TestGenerateModulesUnifiesIdenticalInstances(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)

	// Two structurally identical leaf scopes, built the same way, should
	// be unified into a single Module by hash + deep equality.
	build := func(name string) {
		d.With(name, func(*design.Level) {
			a := blocks.Constant(d, dfx.FromInt64(typ, 1))
			blocks.Negate(d, a)
		})
	}
	build("left")
	build("right")

	ed, err := Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	var leftEntity, rightEntity *Entity
	for _, e := range ed.Entities {
		switch e.Level.Name {
		case "left":
			leftEntity = e
		case "right":
			rightEntity = e
		}
	}
	if leftEntity == nil || rightEntity == nil {
		t.Fatalf("did not find both leaf entities")
	}
	if leftEntity.ModuleName != rightEntity.ModuleName {
		t.Fatalf("structurally identical entities were not unified: %q != %q", leftEntity.ModuleName, rightEntity.ModuleName)
	}

	for _, m := range ed.Modules {
		if m.Name == leftEntity.ModuleName && len(m.Members) != 2 {
			t.Fatalf("unified module has %d members, want 2", len(m.Members))
		}
	}
}

func TestSubstituteHashExpandsToken(t *testing.T) {
	got := substituteHash("block_%Hash%", 0xdeadbeef)
	want := "block_00000000deadbeef"
	if got != want {
		t.Fatalf("substituteHash = %q, want %q", got, want)
	}
}

func TestCheckConsistencyRejectsTemporaryBlock(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)
	in := blocks.Constant(d, dfx.FromInt64(typ, 1))
	blocks.Function(d, []*design.Node[dfx.Value]{in}, []dfx.Type{typ}, func(in, out []dfx.Value) []dfx.Value {
		return []dfx.Value{in[0]}
	})

	if _, err := Elaborate(d); err == nil {
		t.Fatalf("Elaborate should reject a design with an un-replaced Function block")
	}
}
