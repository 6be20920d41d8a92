package jitad

// Backend is the contract a graph evaluator must satisfy.
// InterpreterBackend is the mandatory, always-correct implementation;
// CompiledBackend is the default "native" implementation, and the
// interface is the seam a real native-code backend could be wired in at
// without the Recorder changing at all.
//
// Implementations are move-only / not meaningfully copyable: callers
// should treat a Backend value as owned by whichever Recorder holds it
// and not share one across Recorders without calling Reset first.
type Backend interface {
	// Compile prepares the backend to evaluate graph: validating it,
	// translating it into whatever internal representation the backend
	// uses, and sizing any scratch buffers. It must be called again after
	// the graph changes (e.g. a new recording) before Forward or
	// ComputeAdjoints are called again.
	Compile(graph *Graph) error

	// Forward evaluates the graph's forward pass: inputs is aligned with
	// graph.Inputs(), outputs is aligned with graph.Outputs() and is
	// filled in by this call.
	Forward(graph *Graph, inputs, outputs []float64) error

	// ComputeAdjoints evaluates the graph's reverse pass: inputValues is
	// aligned with graph.Inputs(), outputAdjoints is aligned with
	// graph.Outputs() and holds the seeded output adjoints, and
	// inputAdjoints is aligned with graph.Inputs() and is filled in by
	// this call with the accumulated input adjoints.
	ComputeAdjoints(graph *Graph, inputValues, outputAdjoints, inputAdjoints []float64) error

	// Reset discards any compiled state (kernel, buffers) so the next
	// Compile starts from scratch.
	Reset()
}
