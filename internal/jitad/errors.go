package jitad

import "errors"

// Sentinel error kinds, following the plain fmt.Errorf("...: %w", ...)
// wrapping style used throughout internal/tensor rather than a custom
// structured-error type (see DESIGN.md).
var (
	// ErrRecorderConflict is returned when activating a recorder while
	// another is already active.
	ErrRecorderConflict = errors.New("jitad: recorder already active")

	// ErrSlotOutOfRange is returned when an operand slot is not strictly
	// less than the dependent node's own slot, or when a slot referenced
	// by the input/output lists does not name a recorded node.
	ErrSlotOutOfRange = errors.New("jitad: slot out of range")

	// ErrUnknownOpcode is returned for an opcode value outside the table.
	ErrUnknownOpcode = errors.New("jitad: unknown opcode")

	// ErrArityMismatch is returned when a node is missing an operand its
	// opcode requires.
	ErrArityMismatch = errors.New("jitad: arity mismatch")

	// ErrInputCountMismatch is returned when a backend is handed an input
	// array whose length disagrees with the graph's input list.
	ErrInputCountMismatch = errors.New("jitad: input count mismatch")

	// ErrOutputCountMismatch is returned when a backend is handed an
	// output array whose length disagrees with the graph's output list.
	ErrOutputCountMismatch = errors.New("jitad: output count mismatch")

	// ErrKernelCompilationFailed is returned by a JIT backend when
	// native-kernel generation fails.
	ErrKernelCompilationFailed = errors.New("jitad: kernel compilation failed")

	// ErrBufferAllocationFailed is returned by a JIT backend when it has
	// no value buffer to evaluate into, e.g. Forward before Compile or
	// after Reset.
	ErrBufferAllocationFailed = errors.New("jitad: buffer allocation failed")
)
