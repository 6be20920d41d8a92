package jitad

import (
	"errors"
	"testing"
)

func TestRecorderActivateConflict(t *testing.T) {
	r1, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	defer r1.Deactivate()

	r2, err := NewRecorder(false)
	if err != nil {
		t.Fatal(err)
	}
	if err := r2.Activate(); !errors.Is(err, ErrRecorderConflict) {
		t.Fatalf("Activate() = %v, want ErrRecorderConflict", err)
	}
}

func TestRecorderDeactivateIsIdempotent(t *testing.T) {
	r, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	r.Deactivate()
	r.Deactivate() // must not panic
	if r.IsActive() {
		t.Fatal("recorder still reports active after Deactivate")
	}
}

func TestRecorderComputeAdjointsThenClearDerivatives(t *testing.T) {
	r, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Deactivate()

	x := 3.0
	xv := Input(&x)
	y := xv.Mul(xv)
	y.MarkOutput()

	*r.Derivative(y.Slot()) = 1
	if err := r.ComputeAdjoints(); err != nil {
		t.Fatal(err)
	}
	if r.DerivativeValue(xv.Slot()) != 6.0 {
		t.Fatalf("dy/dx = %v, want 6", r.DerivativeValue(xv.Slot()))
	}

	r.ClearDerivatives()
	for slot := Slot(0); int(slot) < r.Graph().NodeCount(); slot++ {
		if r.DerivativeValue(slot) != 0 {
			t.Fatalf("slot %d adjoint = %v after ClearDerivatives, want 0", slot, r.DerivativeValue(slot))
		}
	}
}

func TestRecorderRegisteringSameInputTwiceIsNoOp(t *testing.T) {
	r, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Deactivate()

	x := 1.0
	xv := Input(&x)
	before := r.Graph().NodeCount()

	var slot Slot = xv.Slot()
	r.registerInputValue(&slot, &x)
	if r.Graph().NodeCount() != before {
		t.Fatal("registerInputValue on an already-recorded scalar appended a node")
	}
}

func TestRecorderUnrecordedOutputIsNoOp(t *testing.T) {
	r, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Deactivate()

	NewValue(42).MarkOutput() // never touched an active scalar
	if len(r.Graph().Outputs()) != 0 {
		t.Fatal("marking an unrecorded value as output should be a no-op")
	}
}

func TestRecorderReEvaluatesAfterInputMutation(t *testing.T) {
	r, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Deactivate()

	x := 2.0
	xv := Input(&x)
	y := xv.Mul(xv)
	y.MarkOutput()
	*r.Derivative(y.Slot()) = 1

	if err := r.ComputeAdjoints(); err != nil {
		t.Fatal(err)
	}
	if r.DerivativeValue(xv.Slot()) != 4.0 {
		t.Fatalf("dy/dx at x=2 = %v, want 4", r.DerivativeValue(xv.Slot()))
	}

	x = 5.0 // mutate the live input in place, no new recording
	if err := r.ComputeAdjoints(); err != nil {
		t.Fatal(err)
	}
	if r.DerivativeValue(xv.Slot()) != 10.0 {
		t.Fatalf("dy/dx at x=5 = %v, want 10", r.DerivativeValue(xv.Slot()))
	}
}

func TestRecorderNewRecordingClearsGraph(t *testing.T) {
	r, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Deactivate()

	x := 1.0
	xv := Input(&x)
	xv.Mul(xv).MarkOutput()
	if r.Graph().NodeCount() == 0 {
		t.Fatal("expected nodes to be recorded")
	}

	r.NewRecording()
	if r.Graph().NodeCount() != 0 {
		t.Fatal("NewRecording did not clear the graph")
	}
	if !r.IsActive() {
		t.Fatal("NewRecording must leave the recorder active")
	}
}

func TestRecorderAdoptTransfersActiveStatus(t *testing.T) {
	r1, err := NewRecorder(true)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := NewRecorder(false)
	if err != nil {
		t.Fatal(err)
	}

	if err := r2.Adopt(r1); err != nil {
		t.Fatal(err)
	}
	if r1.IsActive() {
		t.Fatal("r1 should no longer be active after being adopted from")
	}
	if !r2.IsActive() {
		t.Fatal("r2 should be active after adopting r1")
	}
	r2.Deactivate()
}
