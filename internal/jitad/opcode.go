package jitad

import "math"

// OpCode identifies the primitive operation a Node performs.
//
// Arity, whether the immediate is meaningful, and the local-partial rule
// used during the reverse pass are all fixed per opcode; see opcodeTable,
// forwardEval and localPartials.
type OpCode uint8

const (
	// Nullary.
	OpInput OpCode = iota
	OpConstant

	// Unary elementary.
	OpNeg
	OpAbs
	OpSqrt
	OpCbrt
	OpExp
	OpLog
	OpLog10
	OpLog2
	OpSin
	OpCos
	OpTan
	OpSinh
	OpCosh
	OpTanh
	OpErf
	OpAsin
	OpAcos
	OpAtan

	// Binary active-active.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpAtan2
	OpMin
	OpMax

	// Binary scalar-active / active-scalar. The scalar operand is stored
	// in the node's immediate, not in an operand slot.
	OpScalarAdd
	OpScalarSub1 // scalar - active
	OpScalarSub2 // active - scalar
	OpScalarMul
	OpScalarDiv1 // scalar / active
	OpScalarDiv2 // active / scalar
	OpScalarPow1 // scalar ^ active
	OpScalarPow2 // active ^ scalar

	opCodeCount
)

// arity is the number of operand slots (as opposed to the immediate) an
// opcode consumes.
type arity int

const (
	arity0 arity = 0
	arity1 arity = 1
	arity2 arity = 2
)

type opcodeInfo struct {
	name          string
	arity         arity
	usesImmediate bool
}

var opcodeTable = [opCodeCount]opcodeInfo{
	OpInput:    {"Input", arity0, false},
	OpConstant: {"Constant", arity0, true},

	OpNeg:  {"Neg", arity1, false},
	OpAbs:  {"Abs", arity1, false},
	OpSqrt: {"Sqrt", arity1, false},
	OpCbrt: {"Cbrt", arity1, false},
	OpExp:  {"Exp", arity1, false},
	OpLog:  {"Log", arity1, false},
	OpLog10: {"Log10", arity1, false},
	OpLog2:  {"Log2", arity1, false},
	OpSin:   {"Sin", arity1, false},
	OpCos:   {"Cos", arity1, false},
	OpTan:   {"Tan", arity1, false},
	OpSinh:  {"Sinh", arity1, false},
	OpCosh:  {"Cosh", arity1, false},
	OpTanh:  {"Tanh", arity1, false},
	OpErf:   {"Erf", arity1, false},
	OpAsin:  {"Asin", arity1, false},
	OpAcos:  {"Acos", arity1, false},
	OpAtan:  {"Atan", arity1, false},

	OpAdd:   {"Add", arity2, false},
	OpSub:   {"Sub", arity2, false},
	OpMul:   {"Mul", arity2, false},
	OpDiv:   {"Div", arity2, false},
	OpPow:   {"Pow", arity2, false},
	OpAtan2: {"Atan2", arity2, false},
	OpMin:   {"Min", arity2, false},
	OpMax:   {"Max", arity2, false},

	OpScalarAdd:  {"ScalarAdd", arity1, true},
	OpScalarSub1: {"ScalarSub1", arity1, true},
	OpScalarSub2: {"ScalarSub2", arity1, true},
	OpScalarMul:  {"ScalarMul", arity1, true},
	OpScalarDiv1: {"ScalarDiv1", arity1, true},
	OpScalarDiv2: {"ScalarDiv2", arity1, true},
	OpScalarPow1: {"ScalarPow1", arity1, true},
	OpScalarPow2: {"ScalarPow2", arity1, true},
}

// String returns the opcode's mnemonic, or "Unknown" for a value outside
// the table.
func (op OpCode) String() string {
	if op >= opCodeCount {
		return "Unknown"
	}
	return opcodeTable[op].name
}

// Valid reports whether op is a recognized opcode.
func (op OpCode) Valid() bool {
	return op < opCodeCount
}

// Arity returns the number of operand slots (a, b, c) the opcode reads.
// It does not count the immediate.
func (op OpCode) Arity() int {
	if !op.Valid() {
		return 0
	}
	return int(opcodeTable[op].arity)
}

// UsesImmediate reports whether the opcode's forward/reverse rule reads
// the node's immediate field.
func (op OpCode) UsesImmediate() bool {
	if !op.Valid() {
		return false
	}
	return opcodeTable[op].usesImmediate
}

// forwardEval computes a node's forward value from its operands' already
// computed forward values, the constant pool (for OpConstant), and the
// node's immediate. b is meaningless for opcodes with arity < 2, and a
// for opcodes with arity 0; Input nodes are handled by the caller (the interpreter reads the next
// entry of the live input array, not this function).
func forwardEval(op OpCode, a, b, immediate float64, constPool []float64) float64 {
	switch op {
	case OpConstant:
		idx := int(immediate)
		return constPool[idx]

	case OpNeg:
		return -a
	case OpAbs:
		return math.Abs(a)
	case OpSqrt:
		return math.Sqrt(a)
	case OpCbrt:
		return math.Cbrt(a)
	case OpExp:
		return math.Exp(a)
	case OpLog:
		return math.Log(a)
	case OpLog10:
		return math.Log10(a)
	case OpLog2:
		return math.Log2(a)
	case OpSin:
		return math.Sin(a)
	case OpCos:
		return math.Cos(a)
	case OpTan:
		return math.Tan(a)
	case OpSinh:
		return math.Sinh(a)
	case OpCosh:
		return math.Cosh(a)
	case OpTanh:
		return math.Tanh(a)
	case OpErf:
		return math.Erf(a)
	case OpAsin:
		return math.Asin(a)
	case OpAcos:
		return math.Acos(a)
	case OpAtan:
		return math.Atan(a)

	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	case OpPow:
		return math.Pow(a, b)
	case OpAtan2:
		return math.Atan2(a, b)
	case OpMin:
		return math.Min(a, b)
	case OpMax:
		return math.Max(a, b)

	case OpScalarAdd:
		return a + immediate
	case OpScalarSub1:
		return immediate - a
	case OpScalarSub2:
		return a - immediate
	case OpScalarMul:
		return a * immediate
	case OpScalarDiv1:
		return immediate / a
	case OpScalarDiv2:
		return a / immediate
	case OpScalarPow1:
		return math.Pow(immediate, a)
	case OpScalarPow2:
		return math.Pow(a, immediate)

	default:
		panic("jitad: forwardEval: unreachable for opcode " + op.String())
	}
}

// localPartials returns the local partial derivatives of a node's forward
// rule with respect to each of its (up to two) operands, given the
// operands' forward values (a, b), the node's own forward value (value),
// and the immediate. Only the first op.Arity() return values are
// meaningful.
//
// Abs uses sub-gradient 0 at 0. Min/Max resolve ties to the first operand.
func localPartials(op OpCode, a, b, value, immediate float64) (da, db float64) {
	switch op {
	case OpNeg:
		return -1, 0
	case OpAbs:
		switch {
		case a > 0:
			return 1, 0
		case a < 0:
			return -1, 0
		default:
			return 0, 0
		}
	case OpSqrt:
		return 0.5 / value, 0
	case OpCbrt:
		return 1 / (3 * value * value), 0
	case OpExp:
		return value, 0
	case OpLog:
		return 1 / a, 0
	case OpLog10:
		return 1 / (a * math.Ln10), 0
	case OpLog2:
		return 1 / (a * math.Ln2), 0
	case OpSin:
		return math.Cos(a), 0
	case OpCos:
		return -math.Sin(a), 0
	case OpTan:
		c := math.Cos(a)
		return 1 / (c * c), 0
	case OpSinh:
		return math.Cosh(a), 0
	case OpCosh:
		return math.Sinh(a), 0
	case OpTanh:
		return 1 - value*value, 0
	case OpErf:
		return 2 / math.SqrtPi * math.Exp(-a*a), 0
	case OpAsin:
		return 1 / math.Sqrt(1-a*a), 0
	case OpAcos:
		return -1 / math.Sqrt(1-a*a), 0
	case OpAtan:
		return 1 / (1 + a*a), 0

	case OpAdd:
		return 1, 1
	case OpSub:
		return 1, -1
	case OpMul:
		return b, a
	case OpDiv:
		return 1 / b, -a / (b * b)
	case OpPow:
		return b * math.Pow(a, b-1), value * math.Log(a)
	case OpAtan2:
		denom := a*a + b*b
		return b / denom, -a / denom
	case OpMin:
		if a <= b {
			return 1, 0
		}
		return 0, 1
	case OpMax:
		if a >= b {
			return 1, 0
		}
		return 0, 1

	case OpScalarAdd:
		return 1, 0
	case OpScalarSub1:
		return -1, 0
	case OpScalarSub2:
		return 1, 0
	case OpScalarMul:
		return immediate, 0
	case OpScalarDiv1:
		return -immediate / (a * a), 0
	case OpScalarDiv2:
		return 1 / immediate, 0
	case OpScalarPow1:
		return value * math.Log(immediate), 0
	case OpScalarPow2:
		return immediate * math.Pow(a, immediate-1), 0

	default:
		panic("jitad: localPartials: unreachable for opcode " + op.String())
	}
}
