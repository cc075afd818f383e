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

// soleConstant returns the single "constant"-class block in d, failing
// the test if there isn't exactly one.
func soleConstant(t *testing.T, d *design.Design) design.Block {
	t.Helper()
	var found design.Block
	for _, b := range d.Blocks() {
		if b.GetClassName() == "constant" {
			if found != nil {
				t.Fatalf("design has more than one constant block")
			}
			found = b
		}
	}
	if found == nil {
		t.Fatalf("design has no constant block")
	}
	return found
}

func TestConstantPropertiesExposeValue(t *testing.T) {
	d := design.New("top")
	Constant(d, dfx.FromInt64(dfx.Fixed(true, 8, 0), -5))

	blk := soleConstant(t, d)
	props := design.NewProperties()
	blk.GetProperties(props)

	width, ok := props.GetInt("wordWidth")
	if !ok || width != 8 {
		t.Fatalf("wordWidth = (%d, %v), want (8, true)", width, ok)
	}
	signed, _ := props.GetInt("signed")
	if signed == 0 {
		t.Fatalf("signed = 0, want nonzero for a signed constant")
	}
	value, ok := props.GetInt("value")
	if !ok || value != -5 {
		t.Fatalf("value = (%d, %v), want (-5, true)", value, ok)
	}
}

func TestConstantBoolPropertiesExposeValue(t *testing.T) {
	d := design.New("top")
	ConstantBool(d, true)

	blk := soleConstant(t, d)
	props := design.NewProperties()
	blk.GetProperties(props)

	value, ok := props.GetInt("value")
	if !ok || value != 1 {
		t.Fatalf("value = (%d, %v), want (1, true)", value, ok)
	}
}
