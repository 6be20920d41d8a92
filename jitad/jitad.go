// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package jitad provides a reverse-mode automatic-differentiation engine
// with a just-in-time-compilable computation graph.
//
// It records a directed acyclic computation graph produced by evaluating a
// user program over an active numeric type (Value), then evaluates both
// the forward values and the reverse-mode adjoints of designated outputs
// with respect to designated inputs.
//
// Example:
//
//	rec, _ := jitad.NewRecorder(true)
//	defer rec.Deactivate()
//
//	xVal := 3.0
//	x := jitad.Input(&xVal)
//	y := x.Mul(x).AddScalar(2) // y = x^2 + 2
//	y.MarkOutput()
//
//	*rec.Derivative(y.Slot()) = 1
//	rec.ComputeAdjoints()
//	dydx := rec.DerivativeValue(x.Slot()) // 2*x == 6
package jitad

import "github.com/born-ml/jitad/internal/jitad"

// Value is the active-scalar type: a float64 that also carries a slot in
// the currently active Recorder's graph.
type Value = jitad.Value

// ComplexValue is a complex number expressed as two consecutive Values.
type ComplexValue = jitad.ComplexValue

// Recorder owns a recorded graph and the bookkeeping needed to seed and
// harvest adjoints around it. At most one Recorder is active per process.
type Recorder = jitad.Recorder

// RecorderOption configures a Recorder at construction.
type RecorderOption = jitad.RecorderOption

// Backend evaluates a recorded graph's forward pass and reverse-mode
// adjoints. InterpreterBackend is the reference implementation;
// CompiledBackend is the default.
type Backend = jitad.Backend

// Graph is the columnar computation-graph store a Recorder owns.
type Graph = jitad.Graph

// Slot identifies a node within one recording.
type Slot = jitad.Slot

// InvalidSlot is the sentinel denoting "unassigned".
const InvalidSlot = jitad.InvalidSlot

// NewRecorder creates a Recorder. If activate is true it immediately
// becomes the process's active recorder.
func NewRecorder(activate bool, opts ...RecorderOption) (*Recorder, error) {
	return jitad.NewRecorder(activate, opts...)
}

// WithBackend overrides the default backend (CompiledBackend) a Recorder
// uses for ComputeAdjoints.
func WithBackend(b Backend) RecorderOption {
	return jitad.WithBackend(b)
}

// Active returns the process's currently active Recorder, or nil.
func Active() *Recorder {
	return jitad.Active()
}

// NewValue wraps v as an unrecorded constant.
func NewValue(v float64) Value {
	return jitad.NewValue(v)
}

// Input registers *v as an input of the active recorder. It panics if no
// recorder is active.
func Input(v *float64) Value {
	return jitad.Input(v)
}

// NewComplexValue wraps (re, im) as unrecorded constants.
func NewComplexValue(re, im float64) ComplexValue {
	return jitad.NewComplexValue(re, im)
}

// ComplexInput registers *re then *im as two successive inputs.
func ComplexInput(re, im *float64) ComplexValue {
	return jitad.ComplexInput(re, im)
}

// NewInterpreterBackend returns the mandatory reference Backend.
func NewInterpreterBackend() *jitad.InterpreterBackend {
	return jitad.NewInterpreterBackend()
}

// NewCompiledBackend returns the default "native" Backend.
func NewCompiledBackend() *jitad.CompiledBackend {
	return jitad.NewCompiledBackend()
}

// CompileOptions configures a CompiledBackend's Compile step.
type CompileOptions = jitad.CompileOptions

// DefaultCompileOptions returns the options NewCompiledBackend uses.
func DefaultCompileOptions() CompileOptions {
	return jitad.DefaultCompileOptions()
}

// NewCompiledBackendWithOptions returns a CompiledBackend configured with
// opts.
func NewCompiledBackendWithOptions(opts CompileOptions) *jitad.CompiledBackend {
	return jitad.NewCompiledBackendWithOptions(opts)
}

// SetDebug enables or disables the recorder's lifecycle trace lines.
func SetDebug(enabled bool) {
	jitad.Debug = enabled
}
