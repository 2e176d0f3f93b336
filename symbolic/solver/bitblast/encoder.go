package bitblast

import (
	"fmt"

	"github.com/crillab/gophersat/bf"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// maxWordWidth bounds the width of any intermediate integer.
const maxWordWidth = 256

// bit is a single boolean signal of the circuit: either a known constant or a formula over solver variables.
type bit struct {
	isConst bool
	value   bool
	f       bf.Formula
}

var (
	falseBit = bit{isConst: true, value: false}
	trueBit  = bit{isConst: true, value: true}
)

// constBit returns the constant signal v.
func constBit(v bool) bit {
	if v {
		return trueBit
	}
	return falseBit
}

// word is a two's complement integer, least significant bit first. Its width is its length.
type word []bit

// msb returns the sign bit of the word.
func (w word) msb() bit {
	return w[len(w)-1]
}

// encoder translates expressions into a circuit of boolean signals. Every gate output is a fresh auxiliary variable
// constrained by clauses, which keeps the final formula linear in the size of the circuit.
type encoder struct {
	// intWidth is the width of integer variables.
	intWidth int

	// clauses are the gate definitions collected so far.
	clauses []bf.Formula

	// nextAux is the index of the next auxiliary variable.
	nextAux int

	// ints and bools cache the signals of input variables by name.
	ints  map[string]word
	bools map[string]bit
}

// newEncoder creates an encoder for integer variables of the given width.
func newEncoder(intWidth int) *encoder {
	return &encoder{
		intWidth: intWidth,
		clauses:  make([]bf.Formula, 0),
		ints:     make(map[string]word),
		bools:    make(map[string]bit),
	}
}

// intBitName returns the name of the solver variable holding bit i of integer variable name.
func intBitName(name string, i int) string {
	return fmt.Sprintf("%s#%d", name, i)
}

// fresh returns a new auxiliary variable.
func (e *encoder) fresh() bit {
	name := fmt.Sprintf("$%d", e.nextAux)
	e.nextAux++
	return bit{f: bf.Var(name)}
}

// clause adds the disjunction of the provided literals to the circuit.
func (e *encoder) clause(literals ...bf.Formula) {
	e.clauses = append(e.clauses, bf.Or(literals...))
}

func (e *encoder) not(a bit) bit {
	if a.isConst {
		return constBit(!a.value)
	}
	return bit{f: bf.Not(a.f)}
}

func (e *encoder) and(a, b bit) bit {
	switch {
	case a.isConst && !a.value, b.isConst && !b.value:
		return falseBit
	case a.isConst:
		return b
	case b.isConst:
		return a
	}
	out := e.fresh()
	e.clause(bf.Not(out.f), a.f)
	e.clause(bf.Not(out.f), b.f)
	e.clause(out.f, bf.Not(a.f), bf.Not(b.f))
	return out
}

func (e *encoder) or(a, b bit) bit {
	return e.not(e.and(e.not(a), e.not(b)))
}

func (e *encoder) xor(a, b bit) bit {
	switch {
	case a.isConst && b.isConst:
		return constBit(a.value != b.value)
	case a.isConst:
		if a.value {
			return e.not(b)
		}
		return b
	case b.isConst:
		if b.value {
			return e.not(a)
		}
		return a
	}
	out := e.fresh()
	e.clause(bf.Not(out.f), a.f, b.f)
	e.clause(bf.Not(out.f), bf.Not(a.f), bf.Not(b.f))
	e.clause(out.f, bf.Not(a.f), b.f)
	e.clause(out.f, a.f, bf.Not(b.f))
	return out
}

// constWord returns the narrowest word representing v.
func constWord(v int64) word {
	n := utils.BitLengthSigned(v)
	w := make(word, n)
	for i := 0; i < n; i++ {
		w[i] = constBit((v>>uint(i))&1 == 1)
	}
	return w
}

// extend sign-extends w to n bits.
func extend(w word, n int) word {
	r := make(word, n)
	copy(r, w)
	for i := len(w); i < n; i++ {
		r[i] = w.msb()
	}
	return r
}

// wrap keeps the low bits of w as a signed or unsigned integer of that width. Unsigned results get an extra zero
// sign bit so they stay non-negative.
func wrap(w word, bits int, signed bool) word {
	var low word
	if len(w) >= bits {
		low = make(word, bits, bits+1)
		copy(low, w[:bits])
	} else {
		low = extend(w, bits)
	}
	if !signed {
		low = append(low, falseBit)
	}
	return low
}

// checkWidth returns an error if a word of n bits would exceed maxWordWidth.
func checkWidth(n int) error {
	if n > maxWordWidth {
		return errors.Errorf("intermediate integer of %d bits exceeds the limit of %d bits", n, maxWordWidth)
	}
	return nil
}

// addWithCarry adds two words of equal width with a ripple-carry adder, discarding the final carry.
func (e *encoder) addWithCarry(x, y word, carry bit) word {
	sum := make(word, len(x))
	for i := range x {
		t := e.xor(x[i], y[i])
		sum[i] = e.xor(t, carry)
		carry = e.or(e.and(x[i], y[i]), e.and(carry, t))
	}
	return sum
}

// add returns x + y, one bit wider than the widest operand so the sum never overflows.
func (e *encoder) add(x, y word) (word, error) {
	n := max(len(x), len(y)) + 1
	if err := checkWidth(n); err != nil {
		return nil, err
	}
	return e.addWithCarry(extend(x, n), extend(y, n), falseBit), nil
}

// sub returns x - y, one bit wider than the widest operand so the difference never overflows.
func (e *encoder) sub(x, y word) (word, error) {
	n := max(len(x), len(y)) + 1
	if err := checkWidth(n); err != nil {
		return nil, err
	}
	ny := extend(y, n)
	for i := range ny {
		ny[i] = e.not(ny[i])
	}
	return e.addWithCarry(extend(x, n), ny, trueBit), nil
}

// mul returns x * y, as wide as both operands together so the product never overflows.
func (e *encoder) mul(x, y word) (word, error) {
	n := len(x) + len(y)
	if err := checkWidth(n); err != nil {
		return nil, err
	}
	xe, ye := extend(x, n), extend(y, n)

	// Shift-and-add modulo 2^n, which is exact as the product fits in n bits
	product := constWord(0)
	product = extend(product, n)
	for i := 0; i < n; i++ {
		partial := make(word, n)
		for j := 0; j < n; j++ {
			if j < i {
				partial[j] = falseBit
			} else {
				partial[j] = e.and(xe[j-i], ye[i])
			}
		}
		product = e.addWithCarry(product, partial, falseBit)
	}
	return product, nil
}

// equal returns whether two words hold the same value.
func (e *encoder) equal(x, y word) bit {
	n := max(len(x), len(y))
	xe, ye := extend(x, n), extend(y, n)
	result := trueBit
	for i := 0; i < n; i++ {
		result = e.and(result, e.not(e.xor(xe[i], ye[i])))
	}
	return result
}

// less returns whether x < y, as the sign of their exact difference.
func (e *encoder) less(x, y word) (bit, error) {
	d, err := e.sub(x, y)
	if err != nil {
		return bit{}, err
	}
	return d.msb(), nil
}

// intVar returns the word of an integer variable.
func (e *encoder) intVar(name string) word {
	if w, ok := e.ints[name]; ok {
		return w
	}
	w := make(word, e.intWidth)
	for i := range w {
		w[i] = bit{f: bf.Var(intBitName(name, i))}
	}
	e.ints[name] = w
	return w
}

// boolVar returns the signal of a boolean variable.
func (e *encoder) boolVar(name string) bit {
	if b, ok := e.bools[name]; ok {
		return b
	}
	b := bit{f: bf.Var(name)}
	e.bools[name] = b
	return b
}

// encodeInt translates an integer expression into a word.
func (e *encoder) encodeInt(x expr.Expr) (word, error) {
	switch t := x.(type) {
	case *expr.IntConst:
		return constWord(t.Value), nil
	case *expr.Var:
		if t.Type != expr.SortInt {
			return nil, errors.Errorf("variable %v is not an integer", t.Name)
		}
		return e.intVar(t.Name), nil
	case *expr.Neg:
		operand, err := e.encodeInt(t.X)
		if err != nil {
			return nil, err
		}
		return e.sub(constWord(0), operand)
	case *expr.Wrap:
		operand, err := e.encodeInt(t.X)
		if err != nil {
			return nil, err
		}
		return wrap(operand, t.Bits, t.Signed), nil
	case *expr.Arith:
		left, err := e.encodeInt(t.X)
		if err != nil {
			return nil, err
		}
		right, err := e.encodeInt(t.Y)
		if err != nil {
			return nil, err
		}
		switch t.Op {
		case expr.OpAdd:
			return e.add(left, right)
		case expr.OpSub:
			return e.sub(left, right)
		default:
			return e.mul(left, right)
		}
	default:
		return nil, errors.Errorf("expression %v is not an integer", x)
	}
}

// encodeBool translates a boolean expression into a signal.
func (e *encoder) encodeBool(x expr.Expr) (bit, error) {
	switch t := x.(type) {
	case *expr.BoolConst:
		return constBit(t.Value), nil
	case *expr.Var:
		if t.Type != expr.SortBool {
			return bit{}, errors.Errorf("variable %v is not a boolean", t.Name)
		}
		return e.boolVar(t.Name), nil
	case *expr.Not:
		operand, err := e.encodeBool(t.X)
		if err != nil {
			return bit{}, err
		}
		return e.not(operand), nil
	case *expr.Logic:
		result := constBit(t.Op == expr.OpAnd)
		for _, operand := range t.Operands {
			b, err := e.encodeBool(operand)
			if err != nil {
				return bit{}, err
			}
			if t.Op == expr.OpAnd {
				result = e.and(result, b)
			} else {
				result = e.or(result, b)
			}
		}
		return result, nil
	case *expr.Compare:
		return e.encodeCompare(t)
	default:
		return bit{}, errors.Errorf("expression %v is not a boolean", x)
	}
}

// encodeCompare translates a comparison over integers or booleans into a signal.
func (e *encoder) encodeCompare(c *expr.Compare) (bit, error) {
	if c.X.Sort() == expr.SortBool {
		left, err := e.encodeBool(c.X)
		if err != nil {
			return bit{}, err
		}
		right, err := e.encodeBool(c.Y)
		if err != nil {
			return bit{}, err
		}
		switch c.Op {
		case expr.OpEq:
			return e.not(e.xor(left, right)), nil
		case expr.OpNe:
			return e.xor(left, right), nil
		default:
			return bit{}, errors.Errorf("operator %v is not defined on booleans", c.Op)
		}
	}

	left, err := e.encodeInt(c.X)
	if err != nil {
		return bit{}, err
	}
	right, err := e.encodeInt(c.Y)
	if err != nil {
		return bit{}, err
	}
	switch c.Op {
	case expr.OpEq:
		return e.equal(left, right), nil
	case expr.OpNe:
		return e.not(e.equal(left, right)), nil
	case expr.OpLt:
		return e.less(left, right)
	case expr.OpGt:
		return e.less(right, left)
	case expr.OpLe:
		gt, err := e.less(right, left)
		return e.not(gt), err
	default:
		lt, err := e.less(left, right)
		return e.not(lt), err
	}
}
