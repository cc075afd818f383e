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

package blocks

import (
	"testing"

	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

func soleDelay(t *testing.T, d *design.Design) design.Block {
	t.Helper()
	var found design.Block
	for _, b := range d.Blocks() {
		if b.GetClassName() == "delay" {
			if found != nil {
				t.Fatalf("design has more than one delay block")
			}
			found = b
		}
	}
	if found == nil {
		t.Fatalf("design has no delay block")
	}
	return found
}

func TestDelayPropertiesReportNoEnableAndResetValue(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)

	db := NewDelay(d, nil)
	db.AddPath(intNode(d, typ, 1), dfx.FromInt64(typ, 42))

	blk := soleDelay(t, d)
	props := design.NewProperties()
	blk.GetProperties(props)

	hasEnable, _ := props.GetInt("hasEnable")
	if hasEnable != 0 {
		t.Fatalf("hasEnable = %d, want 0 for a delay built with a nil enable", hasEnable)
	}
	resets, ok := props.GetIntArray("reset")
	if !ok || len(resets) != 1 || resets[0] != 42 {
		t.Fatalf("reset = (%v, %v), want ([42], true)", resets, ok)
	}
}

func TestDelayPropertiesReportEnablePresent(t *testing.T) {
	d := design.New("top")
	typ := dfx.Fixed(false, 8, 0)
	enable := ConstantBool(d, true)

	db := NewDelay(d, enable)
	db.AddPath(intNode(d, typ, 1), dfx.Zero(typ))

	blk := soleDelay(t, d)
	props := design.NewProperties()
	blk.GetProperties(props)

	hasEnable, _ := props.GetInt("hasEnable")
	if hasEnable == 0 {
		t.Fatalf("hasEnable = 0, want nonzero for a delay built with an explicit enable")
	}
}
