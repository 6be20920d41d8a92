package jitad

// Value is the active-scalar type: a float64 plus an optional slot
// identifying its node in the currently active recorder's graph. Arithmetic
// methods intercept into Active()'s graph whenever a recorder is active and
// at least one operand already carries a slot; if neither operand is
// recorded, the result is numerically a constant and carries the sentinel
// slot, the same check the teacher's tensor ops run before touching a
// backend's tape (see internal/autodiff/ops/add.go).
type Value struct {
	value float64
	slot  Slot
}

// NewValue wraps v as an unrecorded constant.
func NewValue(v float64) Value {
	return Value{value: v, slot: InvalidSlot}
}

// Input registers *v as an input of the active recorder and returns the
// resulting active scalar. The recorder keeps v itself, not a copy, so
// mutating *v between recording and a later ComputeAdjoints call is picked
// up automatically. It panics if no recorder is active; activation is the
// caller's responsibility, not this function's.
func Input(v *float64) Value {
	r := Active()
	if r == nil {
		panic("jitad: Input called with no active recorder")
	}
	x := Value{value: *v, slot: InvalidSlot}
	r.registerInputValue(&x.slot, v)
	return x
}

// Float64 returns the scalar's current value.
func (x Value) Float64() float64 { return x.value }

// Slot returns x's node slot, or InvalidSlot if x was never recorded.
func (x Value) Slot() Slot { return x.slot }

// MarkOutput registers x as an output of the active recorder. Calling it
// with no recorder active is a no-op: there is nothing to register against.
func (x Value) MarkOutput() {
	if r := Active(); r != nil {
		r.registerOutputValue(x.slot)
	}
}

// recordUnary appends a unary node for op if x is recorded and a recorder
// is active, otherwise just evaluates op's forward rule directly.
func recordUnary(op OpCode, x Value) Value {
	result := forwardEval(op, x.value, 0, 0, nil)
	r := Active()
	if r == nil || x.slot == InvalidSlot {
		return Value{value: result, slot: InvalidSlot}
	}
	slot := r.graph.AddNode(op, x.slot, InvalidSlot, InvalidSlot)
	return Value{value: result, slot: slot}
}

// recordBinary appends a binary active-active node for op if either
// operand is recorded and a recorder is active; unrecorded operands are
// promoted to constants via AddConstant.
func recordBinary(op OpCode, x, y Value) Value {
	result := forwardEval(op, x.value, y.value, 0, nil)
	r := Active()
	if r == nil || (x.slot == InvalidSlot && y.slot == InvalidSlot) {
		return Value{value: result, slot: InvalidSlot}
	}
	a := x.slot
	if a == InvalidSlot {
		a = r.graph.AddConstant(x.value)
	}
	b := y.slot
	if b == InvalidSlot {
		b = r.graph.AddConstant(y.value)
	}
	slot := r.graph.AddNode(op, a, b, InvalidSlot)
	return Value{value: result, slot: slot}
}

// recordScalar appends a scalar-mixed node for op, storing scalar in the
// node's immediate, if x is recorded and a recorder is active.
func recordScalar(op OpCode, x Value, scalar float64) Value {
	result := forwardEval(op, x.value, 0, scalar, nil)
	r := Active()
	if r == nil || x.slot == InvalidSlot {
		return Value{value: result, slot: InvalidSlot}
	}
	slot := r.graph.AddNode(op, x.slot, InvalidSlot, InvalidSlot, scalar)
	return Value{value: result, slot: slot}
}

func (x Value) Neg() Value  { return recordUnary(OpNeg, x) }
func (x Value) Abs() Value  { return recordUnary(OpAbs, x) }
func (x Value) Sqrt() Value { return recordUnary(OpSqrt, x) }
func (x Value) Cbrt() Value { return recordUnary(OpCbrt, x) }
func (x Value) Exp() Value  { return recordUnary(OpExp, x) }
func (x Value) Log() Value  { return recordUnary(OpLog, x) }
func (x Value) Log10() Value { return recordUnary(OpLog10, x) }
func (x Value) Log2() Value  { return recordUnary(OpLog2, x) }
func (x Value) Sin() Value  { return recordUnary(OpSin, x) }
func (x Value) Cos() Value  { return recordUnary(OpCos, x) }
func (x Value) Tan() Value  { return recordUnary(OpTan, x) }
func (x Value) Sinh() Value { return recordUnary(OpSinh, x) }
func (x Value) Cosh() Value { return recordUnary(OpCosh, x) }
func (x Value) Tanh() Value { return recordUnary(OpTanh, x) }
func (x Value) Erf() Value  { return recordUnary(OpErf, x) }
func (x Value) Asin() Value { return recordUnary(OpAsin, x) }
func (x Value) Acos() Value { return recordUnary(OpAcos, x) }
func (x Value) Atan() Value { return recordUnary(OpAtan, x) }

func (x Value) Add(y Value) Value   { return recordBinary(OpAdd, x, y) }
func (x Value) Sub(y Value) Value   { return recordBinary(OpSub, x, y) }
func (x Value) Mul(y Value) Value   { return recordBinary(OpMul, x, y) }
func (x Value) Div(y Value) Value   { return recordBinary(OpDiv, x, y) }
func (x Value) Pow(y Value) Value   { return recordBinary(OpPow, x, y) }
func (x Value) Atan2(y Value) Value { return recordBinary(OpAtan2, x, y) }
func (x Value) Min(y Value) Value   { return recordBinary(OpMin, x, y) }
func (x Value) Max(y Value) Value   { return recordBinary(OpMax, x, y) }

// AddScalar, etc. implement the scalar-active / active-scalar opcode pairs;
// the "1"/"2" suffixes match ScalarSub1/ScalarSub2 and ScalarDiv1/ScalarDiv2's
// left/right distinction: "1" is scalar-op-active, "2" is active-op-scalar.
func (x Value) AddScalar(s float64) Value      { return recordScalar(OpScalarAdd, x, s) }
func ScalarSubValue(s float64, x Value) Value  { return recordScalar(OpScalarSub1, x, s) }
func (x Value) SubScalar(s float64) Value      { return recordScalar(OpScalarSub2, x, s) }
func (x Value) MulScalar(s float64) Value      { return recordScalar(OpScalarMul, x, s) }
func ScalarDivValue(s float64, x Value) Value  { return recordScalar(OpScalarDiv1, x, s) }
func (x Value) DivScalar(s float64) Value      { return recordScalar(OpScalarDiv2, x, s) }
func ScalarPowValue(s float64, x Value) Value  { return recordScalar(OpScalarPow1, x, s) }
func (x Value) PowScalar(s float64) Value      { return recordScalar(OpScalarPow2, x, s) }

// ComplexValue represents a complex number as two consecutive active
// scalars: there is no complex-specific opcode, real arithmetic decomposes
// complex operations at this layer instead.
type ComplexValue struct {
	Re, Im Value
}

// NewComplexValue wraps (re, im) as unrecorded constants.
func NewComplexValue(re, im float64) ComplexValue {
	return ComplexValue{Re: NewValue(re), Im: NewValue(im)}
}

// ComplexInput registers *re then *im, in that order, as two successive
// inputs of the active recorder.
func ComplexInput(re, im *float64) ComplexValue {
	return ComplexValue{Re: Input(re), Im: Input(im)}
}

// MarkOutput registers both components, real then imaginary.
func (z ComplexValue) MarkOutput() {
	z.Re.MarkOutput()
	z.Im.MarkOutput()
}

func (z ComplexValue) Add(w ComplexValue) ComplexValue {
	return ComplexValue{Re: z.Re.Add(w.Re), Im: z.Im.Add(w.Im)}
}

func (z ComplexValue) Sub(w ComplexValue) ComplexValue {
	return ComplexValue{Re: z.Re.Sub(w.Re), Im: z.Im.Sub(w.Im)}
}

// Mul implements (a+bi)(c+di) = (ac-bd) + (ad+bc)i entirely in terms of the
// real-valued opcodes.
func (z ComplexValue) Mul(w ComplexValue) ComplexValue {
	ac := z.Re.Mul(w.Re)
	bd := z.Im.Mul(w.Im)
	ad := z.Re.Mul(w.Im)
	bc := z.Im.Mul(w.Re)
	return ComplexValue{Re: ac.Sub(bd), Im: ad.Add(bc)}
}

// Abs returns |z| = sqrt(re^2 + im^2) as a real active scalar.
func (z ComplexValue) Abs() Value {
	return z.Re.Mul(z.Re).Add(z.Im.Mul(z.Im)).Sqrt()
}
