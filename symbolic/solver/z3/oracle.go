//go:build z3

package z3

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/mitchellh/go-z3"
	"github.com/pkg/errors"
)

// Available indicates whether the binary was built with z3 support.
const Available = true

// Oracle is a types.Oracle which creates a z3 context per query, so queries may be solved concurrently.
type Oracle struct {
	// timeout is passed to z3 so an abandoned query stops on its own.
	timeout time.Duration
}

// NewOracle creates an Oracle. A positive timeout bounds every query inside z3 itself.
func NewOracle(timeout time.Duration) (*Oracle, error) {
	return &Oracle{timeout: timeout}, nil
}

// Name returns the name of the backend.
func (o *Oracle) Name() string {
	return Name
}

// Solve decides the query. z3 cannot be interrupted from Go, so when the context is done first, Solve returns the
// context's error and the query finishes in the background, bounded by the oracle timeout.
func (o *Oracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type outcome struct {
		result *types.OracleResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := o.solve(query)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.result, out.err
	}
}

// solve decides the query in a fresh z3 context.
func (o *Oracle) solve(query *types.Query) (*types.OracleResult, error) {
	config := z3.NewConfig()
	if o.timeout > 0 {
		config.SetParamValue("timeout", strconv.FormatInt(o.timeout.Milliseconds(), 10))
	}
	ctx := z3.NewContext(config)
	config.Close()
	defer ctx.Close()

	t := &translator{ctx: ctx, vars: make(map[string]*z3.AST)}
	for _, v := range query.Vars {
		t.declare(v)
	}
	formula, err := t.translate(query.Formula)
	if err != nil {
		return nil, err
	}

	solver := ctx.NewSolver()
	defer solver.Close()
	solver.Assert(formula)
	for _, side := range t.sideConditions {
		solver.Assert(side)
	}

	switch solver.Check() {
	case z3.False:
		return &types.OracleResult{Status: types.OracleUnsat}, nil
	case z3.Undef:
		return &types.OracleResult{Status: types.OracleUnknown, Diagnostic: "z3 returned an undefined verdict"}, nil
	}

	m := solver.Model()
	assignments := m.Assignments()
	m.Close()

	model := make(expr.Assignment, len(query.Vars))
	for _, v := range query.Vars {
		ast, ok := assignments[v.Name]
		if !ok {
			continue
		}
		if v.Type == expr.SortBool {
			model[v.Name] = expr.BoolValue(ast.String() == "true")
		} else {
			model[v.Name] = expr.IntValue(int64(ast.Int()))
		}
	}
	return &types.OracleResult{Status: types.OracleSat, Model: model}, nil
}

// translator converts expressions into z3 terms of a single context.
type translator struct {
	ctx  *z3.Context
	vars map[string]*z3.AST

	// sideConditions constrain the auxiliary quotients introduced for wrapped integers.
	sideConditions []*z3.AST
}

// pow2 returns the integer term 2^n for n up to 64.
func (t *translator) pow2(n int) *z3.AST {
	if n <= 62 {
		return t.ctx.Int(1<<uint(n), t.ctx.IntSort())
	}
	return t.ctx.Int(1<<31, t.ctx.IntSort()).Mul(t.ctx.Int(1<<uint(n-31), t.ctx.IntSort()))
}

// wrap returns x reduced into the range of the wrapped type as x - q*2^bits, where q is a fresh integer constrained
// so the result lies within that range.
func (t *translator) wrap(x *z3.AST, w *expr.Wrap) *z3.AST {
	name := fmt.Sprintf("wrap!%d", len(t.sideConditions))
	quotient := t.ctx.Const(t.ctx.Symbol(name), t.ctx.IntSort())
	modulus := t.pow2(w.Bits)
	result := x.Sub(quotient.Mul(modulus))

	low := t.ctx.Int(int(w.Min()), t.ctx.IntSort())
	t.sideConditions = append(t.sideConditions, result.Ge(low).And(result.Lt(low.Add(modulus))))
	return result
}

// declare creates the constant of a variable.
func (t *translator) declare(v *expr.Var) *z3.AST {
	if ast, ok := t.vars[v.Name]; ok {
		return ast
	}
	sort := t.ctx.IntSort()
	if v.Type == expr.SortBool {
		sort = t.ctx.BoolSort()
	}
	ast := t.ctx.Const(t.ctx.Symbol(v.Name), sort)
	t.vars[v.Name] = ast
	return ast
}

// translate returns the z3 term of an expression.
func (t *translator) translate(e expr.Expr) (*z3.AST, error) {
	switch n := e.(type) {
	case *expr.Var:
		return t.declare(n), nil
	case *expr.IntConst:
		return t.ctx.Int(int(n.Value), t.ctx.IntSort()), nil
	case *expr.BoolConst:
		if n.Value {
			return t.ctx.True(), nil
		}
		return t.ctx.False(), nil
	case *expr.Neg:
		x, err := t.translate(n.X)
		if err != nil {
			return nil, err
		}
		return t.ctx.Int(0, t.ctx.IntSort()).Sub(x), nil
	case *expr.Wrap:
		x, err := t.translate(n.X)
		if err != nil {
			return nil, err
		}
		return t.wrap(x, n), nil
	case *expr.Not:
		x, err := t.translate(n.X)
		if err != nil {
			return nil, err
		}
		return x.Not(), nil
	case *expr.Arith:
		x, y, err := t.translatePair(n.X, n.Y)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case expr.OpAdd:
			return x.Add(y), nil
		case expr.OpSub:
			return x.Sub(y), nil
		default:
			return x.Mul(y), nil
		}
	case *expr.Compare:
		x, y, err := t.translatePair(n.X, n.Y)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case expr.OpEq:
			return x.Eq(y), nil
		case expr.OpNe:
			return x.Eq(y).Not(), nil
		case expr.OpLt:
			return x.Lt(y), nil
		case expr.OpLe:
			return x.Le(y), nil
		case expr.OpGt:
			return x.Gt(y), nil
		default:
			return x.Ge(y), nil
		}
	case *expr.Logic:
		result := t.ctx.True()
		if n.Op == expr.OpOr {
			result = t.ctx.False()
		}
		for _, operand := range n.Operands {
			x, err := t.translate(operand)
			if err != nil {
				return nil, err
			}
			if n.Op == expr.OpAnd {
				result = result.And(x)
			} else {
				result = result.Or(x)
			}
		}
		return result, nil
	default:
		return nil, errors.Errorf("cannot translate expression %v of type %T", e, e)
	}
}

func (t *translator) translatePair(a, b expr.Expr) (*z3.AST, *z3.AST, error) {
	x, err := t.translate(a)
	if err != nil {
		return nil, nil, err
	}
	y, err := t.translate(b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
