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

package confbus

import (
	"testing"

	"github.com/christian-volmer/oddf-sub000/design"
	"github.com/christian-volmer/oddf-sub000/dfx"
)

// buildBus wires one Controller to one Builder over a fresh design with
// a single write register and a single read register, and returns the
// Controller ready for transactions.
func buildBus(t *testing.T) (*Controller, *design.Node[dfx.Value]) {
	t.Helper()
	d := design.New("top")
	addrType := dfx.Fixed(false, 8, 0)

	ctrl := NewController(d, addrType)
	builder := NewBuilder(d, addrType, ctrl.Address, ctrl.WriteEnable, ctrl.WriteData, ctrl.ReadRequest, ctrl.ClearAll)

	regType := dfx.Fixed(false, 32, 0)
	reg := builder.AddWriteRegister(regType, "scratch")
	builder.AddReadRegister(regType, "scratch_echo", reg)

	ack, data := builder.Finalize()
	if err := ctrl.Attach(ack, data); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return ctrl, reg
}

func TestControllerWriteThenRead(t *testing.T) {
	ctrl, _ := buildBus(t)
	ctrl.SetTimeout(64)

	ctrl.Write(0, 0x1234)

	got, err := ctrl.Read(1) // the AddReadRegister observation point, one address past the write register
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != 0x1234 {
		t.Fatalf("Read(1) = %#x, want 0x1234", got)
	}
}

func TestControllerReadTimesOutOnUnmappedAddress(t *testing.T) {
	ctrl, _ := buildBus(t)
	ctrl.SetTimeout(8)

	_, err := ctrl.Read(200)
	if err == nil {
		t.Fatalf("Read of an unmapped address should time out")
	}
}

func TestControllerClearAllResetsRegister(t *testing.T) {
	ctrl, _ := buildBus(t)
	ctrl.SetTimeout(64)

	ctrl.Write(0, 0xff)
	if got, err := ctrl.Read(1); err != nil || got != 0xff {
		t.Fatalf("Read after write = (%d, %v), want (255, nil)", got, err)
	}

	ctrl.ClearAllRegisters()

	got, err := ctrl.Read(1)
	if err != nil {
		t.Fatalf("Read after ClearAll: %v", err)
	}
	if got != 0 {
		t.Fatalf("Read after ClearAll = %d, want 0", got)
	}
}
