// Package bitblast provides a pure-Go oracle which decides queries over bounded integers by translating them into
// propositional formulas and handing those to a SAT solver.
package bitblast

import (
	"context"

	"github.com/crillab/gophersat/bf"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// Name is the backend name of the oracle.
const Name = "bitblast"

// Oracle is a types.Oracle which bit-blasts queries. Integer variables are two's complement bit vectors of a fixed
// width, while every intermediate result is wide enough to never overflow, so arithmetic matches mathematical
// integers for any value a variable can hold. Overflow only happens where the query wraps a value explicitly.
type Oracle struct {
	// intWidth is the width of integer variables, in bits.
	intWidth int
}

// NewOracle creates an Oracle whose integer variables are intWidth bits wide. intWidth must be within [2, 64].
func NewOracle(intWidth int) (*Oracle, error) {
	if intWidth < 2 || intWidth > 64 {
		return nil, errors.Errorf("integer width must be within [2, 64], got %d", intWidth)
	}
	return &Oracle{intWidth: intWidth}, nil
}

// Name returns the name of the backend.
func (o *Oracle) Name() string {
	return Name
}

// IntWidth returns the width of integer variables, in bits.
func (o *Oracle) IntWidth() int {
	return o.intWidth
}

// solveOutcome carries the result of a bf.Solve call back from its goroutine.
type solveOutcome struct {
	sat   bool
	model map[string]bool
}

// Solve decides the query. The SAT solver cannot be interrupted, so when the context is done first, Solve returns the
// context's error and the solver finishes in the background.
func (o *Oracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc := newEncoder(o.intWidth)
	root, err := enc.encodeBool(query.Formula)
	if err != nil {
		return nil, err
	}

	// Constant formulas need no solver call
	if root.isConst {
		if !root.value {
			return &types.OracleResult{Status: types.OracleUnsat}, nil
		}
		return &types.OracleResult{Status: types.OracleSat, Model: o.decode(query.Vars, nil)}, nil
	}

	formula := bf.And(append(enc.clauses, root.f)...)
	done := make(chan solveOutcome, 1)
	go func() {
		// The model is nil when the formula is unsatisfiable
		model := bf.Solve(formula)
		done <- solveOutcome{sat: model != nil, model: model}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case outcome := <-done:
		if !outcome.sat {
			return &types.OracleResult{Status: types.OracleUnsat}, nil
		}
		return &types.OracleResult{Status: types.OracleSat, Model: o.decode(query.Vars, outcome.model)}, nil
	}
}

// decode reads the values of the provided variables from a SAT model. Variables the model does not bind take the
// value of a zero bit.
func (o *Oracle) decode(vars []*expr.Var, model map[string]bool) expr.Assignment {
	assignment := make(expr.Assignment, len(vars))
	for _, v := range vars {
		if v.Type == expr.SortBool {
			assignment[v.Name] = expr.BoolValue(model[v.Name])
			continue
		}

		var value uint64
		for i := 0; i < o.intWidth; i++ {
			if model[intBitName(v.Name, i)] {
				value |= 1 << uint(i)
			}
		}
		// Sign-extend from the variable width
		if o.intWidth < 64 && value&(1<<uint(o.intWidth-1)) != 0 {
			value |= ^uint64(0) << uint(o.intWidth)
		}
		assignment[v.Name] = expr.IntValue(int64(value))
	}
	return assignment
}
