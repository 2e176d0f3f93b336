package expr

import (
	"math/big"

	"github.com/pkg/errors"
)

// Eval evaluates the expression under the provided assignment. Integer arithmetic is carried out over unbounded
// integers and only overflows where a Wrap says so, so an error is returned only when a variable is unassigned, the expression is ill-sorted, or an integer
// result does not fit in an int64.
func Eval(e Expr, env Assignment) (Value, error) {
	switch t := e.(type) {
	case *Var:
		return env.Lookup(t.Name, t.Type)
	case *IntConst:
		return IntValue(t.Value), nil
	case *BoolConst:
		return BoolValue(t.Value), nil
	case *Arith, *Neg, *Wrap:
		i, err := evalInt(e, env)
		if err != nil {
			return Value{}, err
		}
		if !i.IsInt64() {
			return Value{}, errors.Errorf("integer expression %v evaluates to %v which exceeds 64 bits", e, i)
		}
		return IntValue(i.Int64()), nil
	default:
		b, err := EvalBool(e, env)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	}
}

// EvalBool evaluates a boolean-sorted expression under the provided assignment.
func EvalBool(e Expr, env Assignment) (bool, error) {
	switch t := e.(type) {
	case *BoolConst:
		return t.Value, nil
	case *Var:
		v, err := env.Lookup(t.Name, SortBool)
		if err != nil {
			return false, err
		}
		return v.Bool, nil
	case *Not:
		b, err := EvalBool(t.X, env)
		return !b, err
	case *Logic:
		// Short-circuit the same way the target language would
		for _, operand := range t.Operands {
			b, err := EvalBool(operand, env)
			if err != nil {
				return false, err
			}
			if t.Op == OpAnd && !b {
				return false, nil
			}
			if t.Op == OpOr && b {
				return true, nil
			}
		}
		return t.Op == OpAnd, nil
	case *Compare:
		return evalCompare(t, env)
	default:
		return false, errors.Errorf("expression %v is not boolean", e)
	}
}

func evalCompare(c *Compare, env Assignment) (bool, error) {
	if c.X.Sort() == SortBool || c.Y.Sort() == SortBool {
		if c.X.Sort() != c.Y.Sort() {
			return false, errors.Errorf("comparison %v mixes integer and boolean operands", c)
		}
		x, err := EvalBool(c.X, env)
		if err != nil {
			return false, err
		}
		y, err := EvalBool(c.Y, env)
		if err != nil {
			return false, err
		}
		switch c.Op {
		case OpEq:
			return x == y, nil
		case OpNe:
			return x != y, nil
		default:
			return false, errors.Errorf("operator %v is not defined on booleans in %v", c.Op, c)
		}
	}

	x, err := evalInt(c.X, env)
	if err != nil {
		return false, err
	}
	y, err := evalInt(c.Y, env)
	if err != nil {
		return false, err
	}
	cmp := x.Cmp(y)
	switch c.Op {
	case OpEq:
		return cmp == 0, nil
	case OpNe:
		return cmp != 0, nil
	case OpLt:
		return cmp < 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

func evalInt(e Expr, env Assignment) (*big.Int, error) {
	switch t := e.(type) {
	case *IntConst:
		return big.NewInt(t.Value), nil
	case *Var:
		v, err := env.Lookup(t.Name, SortInt)
		if err != nil {
			return nil, err
		}
		return big.NewInt(v.Int), nil
	case *Neg:
		x, err := evalInt(t.X, env)
		if err != nil {
			return nil, err
		}
		return x.Neg(x), nil
	case *Wrap:
		x, err := evalInt(t.X, env)
		if err != nil {
			return nil, err
		}
		return wrapInt(x, t.Bits, t.Signed), nil
	case *Arith:
		x, err := evalInt(t.X, env)
		if err != nil {
			return nil, err
		}
		y, err := evalInt(t.Y, env)
		if err != nil {
			return nil, err
		}
		switch t.Op {
		case OpAdd:
			return x.Add(x, y), nil
		case OpSub:
			return x.Sub(x, y), nil
		default:
			return x.Mul(x, y), nil
		}
	default:
		return nil, errors.Errorf("expression %v is not an integer", e)
	}
}

// wrapInt reduces x modulo 2^bits into the range of a signed or unsigned integer of that width.
func wrapInt(x *big.Int, bits int, signed bool) *big.Int {
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	r := new(big.Int).Mod(x, modulus)
	if signed && r.Bit(bits-1) == 1 {
		r.Sub(r, modulus)
	}
	return r
}
