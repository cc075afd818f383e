package design

import (
	"testing"

	"github.com/christian-volmer/oddf-sub000/dfx"
)

// probeSource and probeSink are minimal test-only blocks exercising the
// pin wiring contract without depending on the blocks package.

type probeSource struct {
	BlockBase
	Out   *OutputPin[bool]
	value bool
}

func newProbeSource(d *Design, value bool) *probeSource {
	b := &probeSource{value: value}
	b.BlockBase = NewBlockBase(b, "probe_source", d.CurrentLevel())
	b.Out = NewOutputPin[bool](b, dfx.Bool)
	d.Add(b)
	return b
}

func (b *probeSource) Evaluate()                { b.Out.Value = b.value }
func (b *probeSource) CanEvaluate() bool         { return true }
func (b *probeSource) GetSourceBlocks() []Block  { return nil }

type probeSink struct {
	BlockBase
	In  *InputPin[bool]
	Got bool
}

func newProbeSink(d *Design, n *Node[bool]) *probeSink {
	b := &probeSink{}
	b.BlockBase = NewBlockBase(b, "probe_sink", d.CurrentLevel())
	b.In = NewInputPin[bool](b, n)
	d.Add(b)
	return b
}

func (b *probeSink) Evaluate()               { b.Got = b.In.GetValue() }
func (b *probeSink) CanEvaluate() bool       { return true }
func (b *probeSink) GetSourceBlocks() []Block { return []Block{b.In.GetDrivingBlock()} }

func TestPinWiringInvariants(t *testing.T) {
	d := New("top")
	src := newProbeSource(d, true)
	sink := newProbeSink(d, src.Out.Node())

	src.Evaluate()
	sink.Evaluate()

	if !sink.Got {
		t.Fatalf("sink did not observe source value")
	}

	out := src.Out.Base()
	in := sink.In.Base()

	if in.Driver() != out {
		t.Fatalf("input's driver back-reference is wrong")
	}
	consumers := out.Consumers()
	if len(consumers) != 1 || consumers[0] != in {
		t.Fatalf("output's consumer list does not contain exactly the connected input: %v", consumers)
	}

	in.Disconnect()
	if len(out.Consumers()) != 0 {
		t.Fatalf("disconnect did not remove the consumer")
	}
	if in.Driver() != nil {
		t.Fatalf("disconnect did not clear the driver back-reference")
	}
}

func TestForwardNodePromotion(t *testing.T) {
	d := New("top")

	fwd := NewForward[bool](dfx.Bool)
	sink := newProbeSink(d, &fwd.Node)

	if fwd.IsDriven() {
		t.Fatalf("freshly created forward node reports driven")
	}

	src := newProbeSource(d, true)
	fwd.Assign(src.Out.Node())

	if !fwd.IsDriven() {
		t.Fatalf("forward node not marked driven after Assign")
	}

	src.Evaluate()
	sink.Evaluate()
	if !sink.Got {
		t.Fatalf("sink connected through a forward node did not observe the promoted driver's value")
	}

	out := src.Out.Base()
	consumers := out.Consumers()
	if len(consumers) != 1 || consumers[0] != sink.In.Base() {
		t.Fatalf("forward promotion did not rewire the pending consumer onto the real driver")
	}
}

func TestHierarchyScoping(t *testing.T) {
	d := New("top")

	var inner *Level
	d.With("sub", func(l *Level) {
		inner = l
		if d.CurrentLevel() != l {
			t.Fatalf("With did not make the entered level current")
		}
	})

	if d.CurrentLevel() != d.Hierarchy.Root() {
		t.Fatalf("With did not restore the previous level on exit")
	}
	if inner.Path() != "top.sub" {
		t.Fatalf("Path() = %q, want top.sub", inner.Path())
	}
	if !inner.ChildOf(d.Hierarchy.Root()) {
		t.Fatalf("inner level should be ChildOf the root")
	}
}

func TestCanRemove(t *testing.T) {
	d := New("top")
	src := newProbeSource(d, false)

	if !src.CanRemove() {
		t.Fatalf("unconnected block should be removable")
	}

	_ = newProbeSink(d, src.Out.Node())
	if src.CanRemove() {
		t.Fatalf("connected block should not be removable")
	}
}
