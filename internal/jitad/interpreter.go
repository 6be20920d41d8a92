package jitad

import "fmt"

// InterpreterBackend is the mandatory, reference Backend implementation:
// a dense forward pass in slot-increasing order followed by a dense
// reverse pass in slot-decreasing order, with no reordering or
// approximation. Every other backend's output is judged against this one.
type InterpreterBackend struct {
	values []float64 // scratch forward-value buffer, indexed by slot
	adj    []float64 // scratch adjoint buffer, indexed by slot
}

// NewInterpreterBackend returns a ready-to-use InterpreterBackend.
func NewInterpreterBackend() *InterpreterBackend {
	return &InterpreterBackend{}
}

// Compile validates the graph and sizes the backend's scratch buffers. It
// does not otherwise transform the graph: the interpreter has no
// optimization passes.
func (ib *InterpreterBackend) Compile(graph *Graph) error {
	if err := graph.Validate(); err != nil {
		return err
	}
	n := graph.NodeCount()
	ib.values = growFloat64(ib.values, n)
	ib.adj = growFloat64(ib.adj, n)
	return nil
}

// Reset discards the scratch buffers.
func (ib *InterpreterBackend) Reset() {
	ib.values = nil
	ib.adj = nil
}

// Forward runs the forward pass: inputs aligned with graph.Inputs(),
// outputs filled in aligned with graph.Outputs().
func (ib *InterpreterBackend) Forward(graph *Graph, inputs, outputs []float64) error {
	if len(inputs) != len(graph.Inputs()) {
		return fmt.Errorf("%w: got %d, want %d", ErrInputCountMismatch, len(inputs), len(graph.Inputs()))
	}
	if len(outputs) != len(graph.Outputs()) {
		return fmt.Errorf("%w: got %d, want %d", ErrOutputCountMismatch, len(outputs), len(graph.Outputs()))
	}
	n := graph.NodeCount()
	ib.values = growFloat64(ib.values, n)
	if err := ib.runForward(graph, inputs); err != nil {
		return err
	}
	for i, slot := range graph.Outputs() {
		outputs[i] = ib.values[slot]
	}
	return nil
}

// runForward walks every slot in increasing order, filling ib.values.
func (ib *InterpreterBackend) runForward(graph *Graph, inputs []float64) error {
	n := Slot(graph.NodeCount())
	constPool := graph.ConstPool()
	nextInput := 0
	for s := Slot(0); s < n; s++ {
		op := graph.OpCode(s)
		if !op.Valid() {
			return fmt.Errorf("%w: node %d", ErrUnknownOpcode, s)
		}
		switch op {
		case OpInput:
			if nextInput >= len(inputs) {
				return fmt.Errorf("%w: node %d has no matching input value", ErrInputCountMismatch, s)
			}
			ib.values[s] = inputs[nextInput]
			nextInput++
		case OpConstant:
			ib.values[s] = forwardEval(op, 0, 0, graph.Immediate(s), constPool)
		default:
			a, b, _ := graph.Operands(s)
			if a >= s || (op.Arity() > 1 && b >= s) {
				return fmt.Errorf("%w: node %d", ErrSlotOutOfRange, s)
			}
			av, bv := ib.values[a], ib.values[b]
			ib.values[s] = forwardEval(op, av, bv, graph.Immediate(s), constPool)
		}
	}
	return nil
}

// ComputeAdjoints runs a forward pass (the interpreter is handed raw
// input values, not forward values, so it must compute them itself
// before it can compute local partials) followed by the reverse pass:
// output adjoints scattered onto the output slots (summed on repeats),
// walked in decreasing slot order, accumulating onto operands; Input
// nodes' final adjoints are copied out in input-list order.
func (ib *InterpreterBackend) ComputeAdjoints(graph *Graph, inputValues, outputAdjoints, inputAdjoints []float64) error {
	inputs := graph.Inputs()
	outputs := graph.Outputs()
	if len(inputValues) != len(inputs) {
		return fmt.Errorf("%w: got %d, want %d", ErrInputCountMismatch, len(inputValues), len(inputs))
	}
	if len(outputAdjoints) != len(outputs) {
		return fmt.Errorf("%w: got %d, want %d", ErrOutputCountMismatch, len(outputAdjoints), len(outputs))
	}
	if len(inputAdjoints) != len(inputs) {
		return fmt.Errorf("%w: got %d, want %d", ErrInputCountMismatch, len(inputAdjoints), len(inputs))
	}

	n := graph.NodeCount()
	ib.values = growFloat64(ib.values, n)
	if err := ib.runForward(graph, inputValues); err != nil {
		return err
	}

	ib.adj = growFloat64(ib.adj, n)
	for i := range ib.adj {
		ib.adj[i] = 0
	}
	for i, slot := range outputs {
		ib.adj[slot] += outputAdjoints[i]
	}

	for s := Slot(n) - 1; s != InvalidSlot && int(s) < n; s-- {
		op := graph.OpCode(s)
		switch op {
		case OpInput, OpConstant:
			// No operands to propagate to.
		default:
			a, b, _ := graph.Operands(s)
			av, bv := ib.values[a], ib.values[b]
			da, db := localPartials(op, av, bv, ib.values[s], graph.Immediate(s))
			ib.adj[a] += ib.adj[s] * da
			if op.Arity() > 1 {
				ib.adj[b] += ib.adj[s] * db
			}
		}
		if s == 0 {
			break
		}
	}

	for i, slot := range inputs {
		inputAdjoints[i] = ib.adj[slot]
	}
	return nil
}

func growFloat64(buf []float64, n int) []float64 {
	if cap(buf) < n {
		grown := make([]float64, n)
		copy(grown, buf)
		return grown
	}
	return buf[:n]
}
