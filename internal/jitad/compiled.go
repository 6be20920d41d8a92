package jitad

import "fmt"

// kernelOp is one compiled instruction of a CompiledBackend's kernel: it
// reads already-computed slots of buf and writes its own slot.
type kernelOp func(buf []float64)

// CompileOptions configures a CompiledBackend's Compile step, following
// the plain-struct-plus-constructor configuration convention used
// throughout this package.
type CompileOptions struct {
	// DedupeConstants enables constant-pool common-subexpression
	// elimination: a Constant node whose pool value was already produced
	// by an earlier Constant node in the same graph copies that node's
	// slot instead of re-reading the pool. The forward value is bit-
	// identical either way; this only removes a redundant pool lookup.
	DedupeConstants bool
}

// DefaultCompileOptions returns the options a CompiledBackend constructed
// without arguments uses: constant deduplication on, nothing else tunable
// yet.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{DedupeConstants: true}
}

// CompiledBackend is the default "native" Backend. It stands in for a real
// native-code generator: compile lowers each graph node into a specialized
// Go closure over a flat []float64 buffer instead of emitting machine
// code, but it satisfies the same contract — compile, forward,
// computeAdjoints, reset — so a genuine JIT could be dropped in behind the
// Backend interface without the Recorder changing at all. Compile also
// runs a dead-code-elimination pass, marking every node unreachable from
// an output with FlagDead so Forward can skip its kernel entirely. Its
// reverse pass is not fused: it delegates entirely to an embedded
// InterpreterBackend.
type CompiledBackend struct {
	opts CompileOptions

	kernel []kernelOp
	buf    []float64

	inputSlots  []Slot
	outputSlots []Slot

	interp *InterpreterBackend
}

// NewCompiledBackend returns a ready-to-use CompiledBackend using
// DefaultCompileOptions.
func NewCompiledBackend() *CompiledBackend {
	return NewCompiledBackendWithOptions(DefaultCompileOptions())
}

// NewCompiledBackendWithOptions returns a CompiledBackend configured with
// opts.
func NewCompiledBackendWithOptions(opts CompileOptions) *CompiledBackend {
	return &CompiledBackend{opts: opts, interp: NewInterpreterBackend()}
}

// Compile lowers graph into a sequence of closures, one per node, and
// sizes the value buffer. Returns ErrKernelCompilationFailed if the graph
// fails validation; a malformed graph is reported as an error, not a
// panic.
func (cb *CompiledBackend) Compile(graph *Graph) error {
	if err := graph.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrKernelCompilationFailed, err)
	}
	if err := cb.interp.Compile(graph); err != nil {
		return fmt.Errorf("%w: %v", ErrKernelCompilationFailed, err)
	}

	cb.markDeadNodes(graph)

	n := graph.NodeCount()
	cb.kernel = make([]kernelOp, n)
	constPool := graph.ConstPool()
	firstSlotForValue := make(map[float64]Slot, n)

	for s := 0; s < n; s++ {
		slot := Slot(s)
		op := graph.OpCode(slot)
		switch op {
		case OpInput:
			cb.kernel[s] = nil // filled directly from the input array in Forward
		case OpConstant:
			imm := graph.Immediate(slot)
			value := constPool[int(imm)]
			if cb.opts.DedupeConstants {
				if earlier, ok := firstSlotForValue[value]; ok && !graph.Flags(earlier).Has(FlagDead) {
					cb.kernel[s] = func(buf []float64) { buf[slot] = buf[earlier] }
					continue
				}
				firstSlotForValue[value] = slot
			}
			cb.kernel[s] = func(buf []float64) { buf[slot] = forwardEval(OpConstant, 0, 0, imm, constPool) }
		default:
			a, b, _ := graph.Operands(slot)
			imm := graph.Immediate(slot)
			cb.kernel[s] = func(buf []float64) {
				buf[slot] = forwardEval(op, buf[a], buf[b], imm, constPool)
			}
		}
	}

	cb.inputSlots = graph.Inputs()
	cb.outputSlots = graph.Outputs()
	if cb.buf == nil || cap(cb.buf) < n {
		cb.buf = make([]float64, n)
	} else {
		cb.buf = cb.buf[:n]
	}
	return nil
}

// markDeadNodes runs a single backward scan over graph marking, via
// FlagDead, every node that is not reachable from any output through
// operand edges. Because operand slots are always strictly less than
// their node's own slot, one pass from the last node to the first
// suffices: a node is live iff it is an output or an operand of a live
// node already visited. Forward skips running the kernel for dead nodes.
func (cb *CompiledBackend) markDeadNodes(graph *Graph) {
	n := graph.NodeCount()
	live := make([]bool, n)
	for _, slot := range graph.Outputs() {
		live[slot] = true
	}
	for s := n - 1; s >= 0; s-- {
		slot := Slot(s)
		if !live[s] {
			graph.SetFlags(slot, graph.Flags(slot)|FlagDead)
			continue
		}
		graph.SetFlags(slot, graph.Flags(slot)&^FlagDead)
		op := graph.OpCode(slot)
		a, b, _ := graph.Operands(slot)
		if op.Arity() > 0 {
			live[a] = true
		}
		if op.Arity() > 1 {
			live[b] = true
		}
	}
}

// Forward runs the compiled kernel once, seeding Input slots from inputs
// in graph.Inputs() order and reading outputs in graph.Outputs() order.
func (cb *CompiledBackend) Forward(graph *Graph, inputs, outputs []float64) error {
	if cb.buf == nil {
		return fmt.Errorf("%w: Forward called before Compile", ErrBufferAllocationFailed)
	}
	if len(inputs) != len(cb.inputSlots) {
		return fmt.Errorf("%w: got %d, want %d", ErrInputCountMismatch, len(inputs), len(cb.inputSlots))
	}
	if len(outputs) != len(cb.outputSlots) {
		return fmt.Errorf("%w: got %d, want %d", ErrOutputCountMismatch, len(outputs), len(cb.outputSlots))
	}

	for i, slot := range cb.inputSlots {
		cb.buf[slot] = inputs[i]
	}
	for s, op := range cb.kernel {
		slot := Slot(s)
		if graph.OpCode(slot) == OpInput || graph.Flags(slot).Has(FlagDead) {
			continue
		}
		op(cb.buf)
	}
	for i, slot := range cb.outputSlots {
		outputs[i] = cb.buf[slot]
	}
	return nil
}

// ComputeAdjoints delegates entirely to the embedded InterpreterBackend:
// this backend has no fused reverse-mode kernel.
func (cb *CompiledBackend) ComputeAdjoints(graph *Graph, inputValues, outputAdjoints, inputAdjoints []float64) error {
	return cb.interp.ComputeAdjoints(graph, inputValues, outputAdjoints, inputAdjoints)
}

// Reset discards the compiled kernel, the value buffer, and the embedded
// interpreter's scratch state.
func (cb *CompiledBackend) Reset() {
	cb.kernel = nil
	cb.buf = nil
	cb.inputSlots = nil
	cb.outputSlots = nil
	cb.interp.Reset()
}
