package jitad

import (
	"fmt"
	"log"
	"sync"
)

// Debug enables the recorder's lifecycle trace lines (Activate,
// Deactivate, NewRecording, ComputeAdjoints). Off by default so normal
// use and tests stay silent.
var Debug = false

func debugf(format string, args ...any) {
	if Debug {
		log.Printf("[jitad] "+format, args...)
	}
}

var (
	activeMu       sync.Mutex
	activeRecorder *Recorder
)

// Active returns the process's currently active Recorder, or nil if none
// is active. The active recorder is a single process-wide slot, guarded by
// activeMu, rather than a per-goroutine one: it stands in for the
// thread-local statics a C++ implementation would use, and a single Go
// process-wide guarded pointer is the simplest faithful substitute.
func Active() *Recorder {
	activeMu.Lock()
	defer activeMu.Unlock()
	return activeRecorder
}

// Recorder owns a Graph and the bookkeeping needed to seed and harvest
// adjoints around it: live input-value pointers, the per-slot adjoint
// vector, and the backend used to evaluate the graph. At most one
// Recorder may be active (see Active) at a time.
type Recorder struct {
	graph   *Graph
	backend Backend

	inputValues []*float64
	derivatives []float64

	active bool
}

// RecorderOption configures a Recorder at construction; options are
// applied in order by NewRecorder.
type RecorderOption func(*Recorder)

// WithBackend overrides the default backend (a CompiledBackend) used by
// ComputeAdjoints.
func WithBackend(b Backend) RecorderOption {
	return func(r *Recorder) { r.backend = b }
}

// NewRecorder creates a recorder. If activate is true (the default
// behavior a caller gets from calling NewRecorder with no further action
// needed), it immediately becomes the active recorder; activation failure
// is surfaced as an error rather than panicking, since a second recorder
// racing to activate on another goroutine is not a programming error in
// the way a malformed graph would be.
func NewRecorder(activate bool, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		graph:   NewGraph(),
		backend: NewCompiledBackend(),
	}
	for _, opt := range opts {
		opt(r)
	}
	debugf("NewRecorder(activate=%v)", activate)
	if activate {
		if err := r.Activate(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Graph returns the recorder's graph.
func (r *Recorder) Graph() *Graph {
	return r.graph
}

// Activate makes r the process's active recorder. It fails with
// ErrRecorderConflict if another recorder is already active.
func (r *Recorder) Activate() error {
	activeMu.Lock()
	defer activeMu.Unlock()
	debugf("Activate() called, current active=%p", activeRecorder)
	if activeRecorder != nil && activeRecorder != r {
		return fmt.Errorf("%w", ErrRecorderConflict)
	}
	activeRecorder = r
	r.active = true
	return nil
}

// Deactivate releases r's claim on the active-recorder slot. It is
// idempotent: deactivating an already-inactive recorder, or one that
// isn't the currently active one, does nothing.
func (r *Recorder) Deactivate() {
	activeMu.Lock()
	defer activeMu.Unlock()
	debugf("Deactivate() called")
	if activeRecorder == r {
		activeRecorder = nil
	}
	r.active = false
}

// IsActive reports whether r is the process's currently active recorder.
func (r *Recorder) IsActive() bool {
	activeMu.Lock()
	defer activeMu.Unlock()
	return activeRecorder == r && r.active
}

// Adopt transfers active status from other to r: if other was active,
// other ceases to be active and r becomes active instead. If other was
// not active, Adopt does nothing. This does not move or copy other's
// graph or derivatives — Go has no destructive-move equivalent, so a
// caller that wants r's graph populated must still build it itself; Adopt
// only hands off the process-wide active-recorder slot.
func (r *Recorder) Adopt(other *Recorder) error {
	activeMu.Lock()
	wasActive := activeRecorder == other
	activeMu.Unlock()
	if !wasActive {
		return nil
	}
	other.Deactivate()
	return r.Activate()
}

// NewRecording clears the graph, constant pool, input-value pointers, and
// adjoints, and resets the backend, while leaving the recorder's active
// status untouched.
func (r *Recorder) NewRecording() {
	debugf("NewRecording() called")
	r.graph.Clear()
	r.inputValues = r.inputValues[:0]
	r.derivatives = r.derivatives[:0]
	r.backend.Reset()
}

// registerInputValue allocates an Input node for a scalar that doesn't
// yet carry one, stores the new slot through slot, and records a pointer
// to its live value. A scalar that already carries a slot is left as is.
func (r *Recorder) registerInputValue(slot *Slot, value *float64) {
	if *slot != InvalidSlot {
		return
	}
	*slot = r.graph.AddInput()
	r.inputValues = append(r.inputValues, value)
}

// registerOutputValue appends slot to the output list if it names a
// recorded (non-constant-only) node; an unrecorded scalar is a
// compile-time constant with no dependency on any input, and is silently
// skipped.
func (r *Recorder) registerOutputValue(slot Slot) {
	if slot == InvalidSlot {
		return
	}
	r.graph.MarkOutput(slot)
}

// Derivative returns a mutable reference to the adjoint cell for slot,
// extending the adjoint vector (with zeros) on demand. Callers seed
// output adjoints through this before calling ComputeAdjoints.
func (r *Recorder) Derivative(slot Slot) *float64 {
	if int(slot) >= len(r.derivatives) {
		grown := make([]float64, slot+1)
		copy(grown, r.derivatives)
		r.derivatives = grown
	}
	return &r.derivatives[slot]
}

// DerivativeValue returns the current adjoint at slot, or 0 if the
// adjoint vector doesn't extend that far.
func (r *Recorder) DerivativeValue(slot Slot) float64 {
	if int(slot) >= len(r.derivatives) {
		return 0
	}
	return r.derivatives[slot]
}

// ClearDerivatives zeroes every entry of the adjoint vector in place,
// without shrinking it.
func (r *Recorder) ClearDerivatives() {
	for i := range r.derivatives {
		r.derivatives[i] = 0
	}
}

// ComputeAdjoints gathers live input values and seeded output adjoints,
// compiles and evaluates the backend, then writes the returned per-input
// adjoints back into the slots of the corresponding input nodes.
//
// Interior-node adjoints are not touched by this call beyond the inputs
// themselves.
func (r *Recorder) ComputeAdjoints() error {
	debugf("ComputeAdjoints() called, nodeCount=%d", r.graph.NodeCount())

	inputs := r.graph.Inputs()
	outputs := r.graph.Outputs()

	values := make([]float64, len(inputs))
	for i, ptr := range r.inputValues {
		values[i] = *ptr
	}

	outAdj := make([]float64, len(outputs))
	for i, slot := range outputs {
		outAdj[i] = r.DerivativeValue(slot)
	}

	if err := r.backend.Compile(r.graph); err != nil {
		return fmt.Errorf("jitad: compile: %w", err)
	}

	inAdj := make([]float64, len(inputs))
	if err := r.backend.ComputeAdjoints(r.graph, values, outAdj, inAdj); err != nil {
		return fmt.Errorf("jitad: compute adjoints: %w", err)
	}

	if n := r.graph.NodeCount(); n > len(r.derivatives) {
		grown := make([]float64, n)
		copy(grown, r.derivatives)
		r.derivatives = grown
	}
	for i, slot := range inputs {
		r.derivatives[slot] = inAdj[i]
	}
	return nil
}

// Memory returns an approximate byte footprint of the graph and the
// adjoint vector.
func (r *Recorder) Memory() uintptr {
	const bytesPerNode = 1 + 3*4 + 8 + 1 // opcode + 3 operands + immediate + flags, packed
	return uintptr(r.graph.NodeCount())*bytesPerNode + uintptr(len(r.derivatives))*8
}

// Position identifies a point in the recording, as of the most recent
// call. The corresponding rewind operations are undesigned stubs, so
// Position has no consumer yet beyond documenting where they would hook
// in.
type Position uint32

// Position returns the current node count as a checkpoint position.
func (r *Recorder) Position() Position {
	return Position(r.graph.NodeCount())
}

// ResetTo, ClearDerivativesAfter and ComputeAdjointsTo are empty stubs.
// No real checkpoint/rewind behavior is designed yet; they exist so
// callers porting code against a checkpoint-based API have somewhere to
// call into.
func (r *Recorder) ResetTo(Position)              {}
func (r *Recorder) ClearDerivativesAfter(Position) {}
func (r *Recorder) ComputeAdjointsTo(Position)     {}
