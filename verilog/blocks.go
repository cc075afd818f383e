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
	"fmt"
	"strings"

	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
	"github.com/christian-volmer/oddf-sub000/elaborate"
)

// emitBlockBehavior renders one statement per block in e, dispatching on
// the block's class name (the same strings the blocks package gives
// design.NewBlockBase — see DESIGN.md's verilog entry for the class
// list this covers). Classes without a behavioral rendering fall back
// to a commented placeholder rather than failing the whole module.
func emitBlockBehavior(b *strings.Builder, e *elaborate.Entity) error {
	for _, blk := range e.Blocks {
		ins := blk.GetInputPins()
		nets := make([]string, len(ins))
		for i, in := range ins {
			nets[i] = netForInput(e, in)
		}
		outs := blk.GetOutputPins()

		switch blk.GetClassName() {

		case "constant":
			props := design.NewProperties()
			blk.GetProperties(props)
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), constantLiteral(blk, props))

		case "identity":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), nets[0])

		case "negate":
			fmt.Fprintf(b, "\tassign %s = -%s;\n", outName(blk, 0, outs), signedNet(outs[0].Type().IsSigned(), nets[0]))

		case "not", "bool_not":
			fmt.Fprintf(b, "\tassign %s = ~%s;\n", outName(blk, 0, outs), nets[0])

		case "plus":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), strings.Join(signedNets(outs[0].Type().IsSigned(), nets), " + "))

		case "times":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), strings.Join(signedNets(outs[0].Type().IsSigned(), nets), " * "))

		case "and":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), strings.Join(nets, " & "))

		case "or":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), strings.Join(nets, " | "))

		case "xor":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), strings.Join(nets, " ^ "))

		case "equal":
			fmt.Fprintf(b, "\tassign %s = (%s == %s);\n", outName(blk, 0, outs), nets[0], nets[1])

		case "not_equal":
			fmt.Fprintf(b, "\tassign %s = (%s != %s);\n", outName(blk, 0, outs), nets[0], nets[1])

		case "less":
			fmt.Fprintf(b, "\tassign %s = (%s < %s);\n", outName(blk, 0, outs), nets[0], nets[1])

		case "less_equal":
			fmt.Fprintf(b, "\tassign %s = (%s <= %s);\n", outName(blk, 0, outs), nets[0], nets[1])

		case "decide":
			// inputs: decision, then (trueIn, falseIn) interleaved per
			// AddPath call, in the order decide.go's AddPath registers
			// them. Pre-shift alignment from AddPath's width/fraction
			// promotion is not replicated here; see DESIGN.md's verilog
			// entry for this gap.
			decision := nets[0]
			rest := nets[1:]
			for i := range outs {
				fmt.Fprintf(b, "\tassign %s = %s ? %s : %s;\n", outName(blk, i, outs), decision, rest[2*i], rest[2*i+1])
			}

		case "select":
			// One output per window position, cascaded into a priority
			// mux over every starting index the dynamic Index input can
			// take; the highest starting index needs no guard since it's
			// the only one left once every lower index is excluded.
			idxNet := nets[0]
			busNets := nets[1:]
			windowLen := len(outs)
			maxStart := len(busNets) - windowLen
			for i := 0; i < windowLen; i++ {
				expr := busNets[maxStart+i]
				for s := maxStart - 1; s >= 0; s-- {
					expr = fmt.Sprintf("(%s == %d) ? %s : %s", idxNet, s, busNets[s+i], expr)
				}
				fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, i, outs), expr)
			}

		case "replace":
			// Same priority-mux-over-starting-index idea as "select",
			// but per output position i the candidate for a given start s
			// is either a replacement net (when i falls in [s, s+replLen))
			// or the original bus net.
			idxNet := nets[0]
			busLen := len(outs)
			busNets := nets[1 : 1+busLen]
			replNets := nets[1+busLen:]
			replLen := len(replNets)
			maxStart := busLen - replLen
			candidate := func(start, i int) string {
				if i >= start && i < start+replLen {
					return replNets[i-start]
				}
				return busNets[i]
			}
			for i := 0; i < busLen; i++ {
				expr := candidate(maxStart, i)
				for s := maxStart - 1; s >= 0; s-- {
					expr = fmt.Sprintf("(%s == %d) ? %s : %s", idxNet, s, candidate(s, i), expr)
				}
				fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, i, outs), expr)
			}

		case "bit_compose":
			fmt.Fprintf(b, "\tassign %s = {%s};\n", outName(blk, 0, outs), strings.Join(reverseStrings(nets), ", "))

		case "bit_extract":
			for i := range outs {
				fmt.Fprintf(b, "\tassign %s = %s[%d];\n", outName(blk, i, outs), nets[0], i)
			}

		case "floor_cast", "nearest_cast", "convergent_cast", "reinterpret_cast":
			fmt.Fprintf(b, "\tassign %s = %s;\n", outName(blk, 0, outs), castExpr(nets[0], outs[0].Type()))

		case "delay":
			props := design.NewProperties()
			blk.GetProperties(props)
			emitDelay(b, blk, nets, outs, props)

		case "source", "sink", "label", "signal", "terminate", "spare", "probe", "memory", "fifo", "recorder", "function":
			fmt.Fprintf(b, "\t// %s %q not rendered behaviorally; see DESIGN.md's verilog entry.\n", blk.GetClassName(), blk.GetName())

		default:
			fmt.Fprintf(b, "\t// unrecognised block class %q (%s) not rendered.\n", blk.GetClassName(), blk.GetName())
		}
	}
	return nil
}

func outName(blk design.Block, index int, outs []*design.OutputPinBase) string {
	return signalName(blk, index)
}

func signedNet(signed bool, net string) string {
	if signed {
		return fmt.Sprintf("$signed(%s)", net)
	}
	return net
}

func signedNets(signed bool, nets []string) []string {
	if !signed {
		return nets
	}
	out := make([]string, len(nets))
	for i, n := range nets {
		out[i] = signedNet(true, n)
	}
	return out
}

func reverseStrings(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

func castExpr(net string, dst dfx.Type) string {
	if dst.IsSigned() {
		return fmt.Sprintf("$signed(%s)", net)
	}
	return net
}

// emitDelay renders a Delay block as a synchronous register: an
// always_ff block clocked on posedge clk, asynchronously reset low on
// the (active-low) reset, with the enable gating the data capture in
// the non-reset branch — matching the teacher corpus's synchronous
// register idiom for clock-enabled flops. The reset value per path is
// not wired as an input (delay.go bakes it into the block at
// construction): GetProperties surfaces it instead.
func emitDelay(b *strings.Builder, blk design.Block, nets []string, outs []*design.OutputPinBase, props *design.Properties) {
	hasEnable, _ := props.GetInt("hasEnable")
	dataNets := nets
	var enable string
	if hasEnable != 0 {
		enable = nets[0]
		dataNets = nets[1:]
	}

	resets, _ := props.GetIntArray("reset")

	fmt.Fprintf(b, "\talways_ff @(posedge clk or negedge %s) begin\n", ResetName)
	fmt.Fprintf(b, "\t\tif (!%s) begin\n", ResetName)
	for i := range outs {
		reset := 0
		if i < len(resets) {
			reset = resets[i]
		}
		fmt.Fprintf(b, "\t\t\t%s <= %d'b%s;\n", outName(blk, i, outs), outs[i].Type().GetWordWidth(), resetBits(outs[i].Type().GetWordWidth(), reset))
	}
	if enable != "" {
		fmt.Fprintf(b, "\t\tend else if (%s) begin\n", enable)
	} else {
		b.WriteString("\t\tend else begin\n")
	}
	for i := range outs {
		fmt.Fprintf(b, "\t\t\t%s <= %s;\n", outName(blk, i, outs), dataNets[i])
	}
	b.WriteString("\t\tend\n\tend\n")
}

func resetBits(width, value int) string {
	v := dfx.FromInt64(dfx.Fixed(false, width, 0), int64(value))
	var bits strings.Builder
	for i := width - 1; i >= 0; i-- {
		if v.Bit(i) {
			bits.WriteByte('1')
		} else {
			bits.WriteByte('0')
		}
	}
	return bits.String()
}

// constantLiteral renders a constant block's value as a sized binary
// literal (e.g. 8'b00101100), bit-by-bit through dfx.Value.Bit, the
// only portable accessor dfx.Value exposes for this.
func constantLiteral(blk design.Block, props *design.Properties) string {
	width, ok := props.GetInt("wordWidth")
	if !ok || width <= 0 {
		width = 1
	}
	raw, _ := props.GetInt("value")
	signed, _ := props.GetInt("signed")

	v := dfx.FromInt64(dfx.Fixed(signed != 0, width, 0), int64(raw))
	var bits strings.Builder
	for i := width - 1; i >= 0; i-- {
		if v.Bit(i) {
			bits.WriteByte('1')
		} else {
			bits.WriteByte('0')
		}
	}
	return fmt.Sprintf("%d'b%s", width, bits.String())
}

// netForInput resolves the local Verilog net driving one of e's
// block's input pins: an internal block signal when the driver lives
// in e itself, a prefixed instance net when the driver is exported by
// one of e's direct child instances, or e's own boundary input port
// name when the driver lives outside e entirely.
func netForInput(e *elaborate.Entity, in *design.InputPinBase) string {
	driver := in.Driver()
	if driver == nil {
		return "'0"
	}

	if net, ok := resolveDriverNet(e, driver); ok {
		return net
	}

	for _, p := range e.Ports {
		if p.Direction == elaborate.PortInput && p.OuterIn != nil && p.OuterIn.Driver() == driver {
			return p.Name
		}
	}

	return "'0"
}

// resolveDriverNet finds driver's local net within e, either as one of
// e's own blocks' outputs or as a net already exported by one of e's
// direct child instances; it does not consider e's own boundary input
// ports (only netForInput's caller needs that fallback).
func resolveDriverNet(e *elaborate.Entity, driver *design.OutputPinBase) (string, bool) {
	for _, blk := range e.Blocks {
		if blk == driver.Owner() {
			return signalName(blk, driver.Index()), true
		}
	}

	for _, ins := range e.Instances {
		for _, p := range ins.Entity.Ports {
			if p.Direction == elaborate.PortOutput && p.Outer == driver {
				return instancePortNet(ins, p), true
			}
		}
	}

	return "", false
}
