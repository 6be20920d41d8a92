package jitad

import (
	"math"
	"testing"
)

// e2eCase is one row of an end-to-end forward-and-adjoint scenario table.
type e2eCase struct {
	name       string
	x          float64
	build      func(x Value) Value
	wantValue  float64
	wantDeriv  float64
}

func e2eCases() []e2eCase {
	return []e2eCase{
		{
			name:      "E1",
			x:         1.0,
			build:     func(x Value) Value { return x.MulScalar(3).AddScalar(2) },
			wantValue: 5.0,
			wantDeriv: 3.0,
		},
		{
			name:      "E2",
			x:         2.0,
			build:     func(x Value) Value { return x.MulScalar(3).AddScalar(2) },
			wantValue: 8.0,
			wantDeriv: 3.0,
		},
		{
			name: "E3",
			x:    2.0,
			build: func(x Value) Value {
				return x.Sin().Add(x.Cos().MulScalar(2))
			},
			wantValue: math.Sin(2) + 2*math.Cos(2),
			wantDeriv: math.Cos(2) - 2*math.Sin(2),
		},
		{
			name: "E4",
			x:    2.0,
			build: func(x Value) Value {
				return x.DivScalar(10).Exp().Add(x.AddScalar(5).Log()).Add(x.AddScalar(1).Sqrt())
			},
			wantValue: math.Exp(2.0/10) + math.Log(2.0+5) + math.Sqrt(2.0+1),
			wantDeriv: math.Exp(2.0/10)/10 + 1.0/7.0 + 1.0/(2*math.Sqrt(3)),
		},
		{
			name: "E5",
			x:    0.5,
			build: func(x Value) Value {
				return ScalarDivValue(1, x.AddScalar(2)).Add(x.Mul(x))
			},
			wantValue: 1.0/(0.5+2) + 0.5*0.5,
			wantDeriv: -1.0/((0.5+2)*(0.5+2)) + 2*0.5,
		},
		{
			name: "E6",
			x:    2.0,
			build: func(x Value) Value {
				return x.DivScalar(2).Erf().Add(x.AddScalar(1).Cbrt())
			},
			wantValue: math.Erf(2.0/2) + math.Cbrt(2.0+1),
			wantDeriv: (1/math.Sqrt(math.Pi))*math.Exp(-1) + 1.0/(3*math.Cbrt(9)),
		},
	}
}

func runE2ECase(t *testing.T, tc e2eCase, backend Backend) {
	t.Helper()
	r, err := NewRecorder(true, WithBackend(backend))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Deactivate()

	x := tc.x
	xv := Input(&x)
	y := tc.build(xv)
	y.MarkOutput()

	if math.Abs(y.Float64()-tc.wantValue) > 1e-4 {
		t.Errorf("%s: forward value = %v, want %v", tc.name, y.Float64(), tc.wantValue)
	}

	*r.Derivative(y.Slot()) = 1
	if err := r.ComputeAdjoints(); err != nil {
		t.Fatal(err)
	}
	got := r.DerivativeValue(xv.Slot())
	if math.Abs(got-tc.wantDeriv) > 1e-4 {
		t.Errorf("%s: d/dx = %v, want %v", tc.name, got, tc.wantDeriv)
	}
}

func TestEndToEndScenariosInterpreter(t *testing.T) {
	for _, tc := range e2eCases() {
		t.Run(tc.name, func(t *testing.T) {
			runE2ECase(t, tc, NewInterpreterBackend())
		})
	}
}

func TestEndToEndScenariosCompiled(t *testing.T) {
	for _, tc := range e2eCases() {
		t.Run(tc.name, func(t *testing.T) {
			runE2ECase(t, tc, NewCompiledBackend())
		})
	}
}
