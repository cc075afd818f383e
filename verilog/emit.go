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

// Package verilog implements the minimal SystemVerilog emitter: one
// file per unique module produced by the elaborator, sufficient to
// exercise module deduplication and round-trip the port/declaration
// conventions named in spec.md §6. It is not a synthesizable-quality
// code generator for the full block catalogue — see DESIGN.md's
// verilog entry for the set of block classes it renders behaviorally
// versus the ones it emits as a commented placeholder.
package verilog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/elaborate"
)

// ResetName is the name given to the active-low asynchronous reset
// port; spec.md §6 allows this to be configured, defaulting to "nrst".
var ResetName = "nrst"

// File is one emitted SystemVerilog source file.
type File struct {
	Name    string
	Content string
}

// Emit renders one File per unique module in ed.Modules, in a
// deterministic (name-sorted) order, plus returns the list-of-files
// manifest spec.md §6 calls for.
func Emit(ed *elaborate.Design) ([]File, error) {
	var files []File

	modules := append([]*elaborate.Module(nil), ed.Modules...)
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })

	for _, m := range modules {
		content, err := emitModule(m)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: m.Name + ".sv", Content: content})
	}

	return files, nil
}

// ListOfFiles returns just the file names, in emission order, matching
// the "list of files" manifest format a build script consumes.
func ListOfFiles(files []File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func emitModule(m *elaborate.Module) (string, error) {
	e := m.Representative
	var b strings.Builder

	fmt.Fprintf(&b, "module %s (\n", m.Name)
	fmt.Fprintf(&b, "\tinput logic clk,\n")
	fmt.Fprintf(&b, "\tinput logic %s", ResetName)

	for _, p := range e.Ports {
		dir := "input"
		if p.Direction == elaborate.PortOutput {
			dir = "output"
		}
		fmt.Fprintf(&b, ",\n\t%s logic %s %s", dir, widthSpec(p.Type.GetWordWidth()), p.Name)
	}
	b.WriteString("\n);\n\n")

	for _, ins := range e.Instances {
		emitSignalDecls(&b, ins)
	}
	emitBlockDecls(&b, e)

	b.WriteString("\n")
	if err := emitBlockBehavior(&b, e); err != nil {
		return "", err
	}

	for _, ins := range e.Instances {
		emitInstance(&b, ins)
	}

	emitOutputPortAssigns(&b, e)

	b.WriteString("\nendmodule\n")
	return b.String(), nil
}

func widthSpec(width int) string {
	if width <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", width-1)
}

func signalName(b design.Block, index int) string {
	return fmt.Sprintf("%s_n%d", sanitize(b.GetName()), index)
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// emitSignalDecls declares one wire per port of an instantiated child
// entity, prefixed with the instance name so that two instances of the
// same module never collide in the parent's flat net namespace.
func emitSignalDecls(b *strings.Builder, ins *elaborate.Instance) {
	for _, p := range ins.Entity.Ports {
		fmt.Fprintf(b, "\tlogic %s%s;\n", widthSpec(p.Type.GetWordWidth()), instancePortNet(ins, p))
	}
}

func instancePortNet(ins *elaborate.Instance, p *elaborate.Port) string {
	return sanitize(ins.Name) + "_" + p.Name
}

func signedSpec(signed bool) string {
	if signed {
		return "signed "
	}
	return ""
}

func emitBlockDecls(b *strings.Builder, e *elaborate.Entity) {
	for _, blk := range e.Blocks {
		for i, out := range blk.GetOutputPins() {
			fmt.Fprintf(b, "\tvar logic %s%s%s;\n", signedSpec(out.Type().IsSigned()), widthSpec(out.Type().GetWordWidth()), signalName(blk, i))
		}
	}
}

// emitOutputPortAssigns drives every one of e's output ports from its
// underlying net, resolved the same way an internal consumer pin would
// resolve it (own block, or a child instance's exported port).
func emitOutputPortAssigns(b *strings.Builder, e *elaborate.Entity) {
	for _, p := range e.Ports {
		if p.Direction != elaborate.PortOutput {
			continue
		}
		if net, ok := resolveDriverNet(e, p.Outer); ok {
			fmt.Fprintf(b, "\n\tassign %s = %s;\n", p.Name, net)
		}
	}
}

func emitInstance(b *strings.Builder, ins *elaborate.Instance) {
	fmt.Fprintf(b, "\n\t%s %s (\n\t\t.clk(clk),\n\t\t.%s(%s)", ins.Entity.ModuleName, sanitize(ins.Name), ResetName, ResetName)
	for _, p := range ins.Entity.Ports {
		fmt.Fprintf(b, ",\n\t\t.%s(%s)", p.Name, instancePortNet(ins, p))
	}
	b.WriteString("\n\t);\n")
}
