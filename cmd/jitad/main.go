// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package main provides the jitad demo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/jitad/jitad"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("jitad %s\n", version)
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "eval" {
		runEval()
		return
	}

	fmt.Println("jitad - reverse-mode automatic differentiation with a JIT-compilable graph")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  eval       Evaluate y = sin(x) + 2*cos(x) at x=2 and print dy/dx")
}

// runEval records and differentiates end-to-end scenario E3 from the test
// suite (y = sin(x) + 2*cos(x) at x=2), once against each backend, and
// prints both so a reader can see the interpreter and the compiled
// backend agree.
func runEval() {
	x := 2.0
	for _, backend := range []struct {
		name string
		b    jitad.Backend
	}{
		{"interpreter", jitad.NewInterpreterBackend()},
		{"compiled", jitad.NewCompiledBackend()},
	} {
		rec, err := jitad.NewRecorder(true, jitad.WithBackend(backend.b))
		if err != nil {
			fmt.Fprintln(os.Stderr, "jitad:", err)
			os.Exit(1)
		}

		xv := jitad.Input(&x)
		y := xv.Sin().Add(xv.Cos().MulScalar(2))
		y.MarkOutput()

		*rec.Derivative(y.Slot()) = 1
		if err := rec.ComputeAdjoints(); err != nil {
			fmt.Fprintln(os.Stderr, "jitad:", err)
			os.Exit(1)
		}

		fmt.Printf("%-12s y=%.6f dy/dx=%.6f\n", backend.name, y.Float64(), rec.DerivativeValue(xv.Slot()))
		rec.Deactivate()
	}
}
