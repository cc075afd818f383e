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

package verilog

import (
	"strings"
	"testing"

	"github.com/christian-volmer/oddf-sub000/blocks"
	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
	"github.com/christian-volmer/oddf-sub000/elaborate"
)

// buildTwoLevelAdder mirrors elaborate's own fixture: two constants at
// the root, consumed by a Plus one level down, so Emit has to render
// both a parent module with an instance and a leaf module.
func buildTwoLevelAdder(d *design.Design) {
	typ := dfx.Fixed(false, 8, 0)
	a := blocks.Constant(d, dfx.FromInt64(typ, 3))
	b := blocks.Constant(d, dfx.FromInt64(typ, 4))

	d.With("adder", func(*design.Level) {
		blocks.Plus(d, a, b)
	})
}

func TestEmitProducesOneFilePerModule(t *testing.T) {
	d := design.New("top")
	buildTwoLevelAdder(d)

	ed, err := elaborate.Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	files, err := Emit(ed)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(files) != len(ed.Modules) {
		t.Fatalf("got %d files, want %d (one per unique module)", len(files), len(ed.Modules))
	}

	names := ListOfFiles(files)
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate file name %q in list-of-files manifest", n)
		}
		seen[n] = true
	}
}

func TestEmitDeduplicatesStructurallyIdenticalModules(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)

	build := func(name string) {
		d.With(name, func(*design.Level) {
			a := blocks.Constant(d, dfx.FromInt64(typ, 1))
			blocks.Negate(d, a)
		})
	}
	build("left")
	build("right")

	ed, err := elaborate.Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	files, err := Emit(ed)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// left and right unify into one module; root is a second module. The
	// leaf module's file must only be emitted once even though it backs
	// two instances.
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 (root + one unified leaf module)", len(files))
	}
}

func TestEmitModuleDeclaresClkAndResetFirst(t *testing.T) {
	d := design.New("top")
	buildTwoLevelAdder(d)

	ed, err := elaborate.Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	files, err := Emit(ed)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	for _, f := range files {
		header := f.Content[:strings.Index(f.Content, ");")]
		clkIdx := strings.Index(header, "clk")
		rstIdx := strings.Index(header, ResetName)
		if clkIdx < 0 || rstIdx < 0 {
			t.Fatalf("module %s is missing clk or %s in its port list:\n%s", f.Name, ResetName, header)
		}
		if rstIdx < clkIdx {
			t.Fatalf("module %s declares %s before clk, want clk first", f.Name, ResetName)
		}
	}
}

func TestEmitRendersSelectAsPriorityMuxCascade(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)
	idxType := dfx.Fixed(false, 2, 0)

	bus := []*design.Node[dfx.Value]{
		blocks.Constant(d, dfx.FromInt64(typ, 10)),
		blocks.Constant(d, dfx.FromInt64(typ, 20)),
		blocks.Constant(d, dfx.FromInt64(typ, 30)),
	}
	index := blocks.Constant(d, dfx.FromInt64(idxType, 1))
	blocks.Select(d, bus, index, 2)

	ed, err := elaborate.Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	files, err := Emit(ed)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var found bool
	for _, f := range files {
		if strings.Contains(f.Content, "== 0) ?") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no emitted file contains a select priority-mux cascade")
	}
}

func TestEmitRendersReplaceAsPerBitMux(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)
	idxType := dfx.Fixed(false, 2, 0)

	bus := []*design.Node[dfx.Value]{
		blocks.Constant(d, dfx.FromInt64(typ, 10)),
		blocks.Constant(d, dfx.FromInt64(typ, 20)),
		blocks.Constant(d, dfx.FromInt64(typ, 30)),
	}
	replacement := []*design.Node[dfx.Value]{
		blocks.Constant(d, dfx.FromInt64(typ, 99)),
	}
	index := blocks.Constant(d, dfx.FromInt64(idxType, 1))
	blocks.Replace(d, bus, index, replacement)

	ed, err := elaborate.Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	files, err := Emit(ed)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var found bool
	for _, f := range files {
		if strings.Contains(f.Content, "== 0) ?") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no emitted file contains a replace priority-mux cascade")
	}
}

func TestEmitRendersConstantAsSizedBinaryLiteral(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)
	blocks.Constant(d, dfx.FromInt64(typ, 5))

	ed, err := elaborate.Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	files, err := Emit(ed)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var rootFile *File
	for i := range files {
		if strings.Contains(files[i].Content, "8'b00000101") {
			rootFile = &files[i]
		}
	}
	if rootFile == nil {
		t.Fatalf("no emitted file contains the expected 8'b00000101 literal for constant value 5")
	}
}
