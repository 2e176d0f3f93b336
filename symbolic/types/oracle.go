package types

import (
	"context"

	"github.com/crytic/symgen/symbolic/expr"
)

// OracleStatus describes the verdict of a satisfiability oracle.
type OracleStatus string

const (
	// OracleSat indicates the query is satisfiable and a model was produced.
	OracleSat OracleStatus = "sat"
	// OracleUnsat indicates the query is provably unsatisfiable.
	OracleUnsat OracleStatus = "unsat"
	// OracleUnknown indicates the oracle could not decide the query.
	OracleUnknown OracleStatus = "unknown"
)

// Query is a satisfiability question posed to an oracle.
type Query struct {
	// Vars are the variables the model must assign, in a stable order.
	Vars []*expr.Var

	// Formula is the boolean formula to satisfy.
	Formula expr.Expr
}

// String returns a canonical textual form of the query, suitable for use as a cache key.
func (q *Query) String() string {
	s := ""
	for _, v := range q.Vars {
		s += v.Name + ":" + v.Type.String() + ";"
	}
	return s + expr.Canonical(q.Formula)
}

// OracleResult is the answer of an oracle to a Query.
type OracleResult struct {
	// Status is the oracle's verdict.
	Status OracleStatus `json:"status"`

	// Model holds the witness when Status is OracleSat.
	Model expr.Assignment `json:"model,omitempty"`

	// Diagnostic holds any additional output from the oracle, such as the reason for an unknown verdict.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Oracle describes a satisfiability engine which can answer queries over integer and boolean expressions.
type Oracle interface {
	// Name returns the name of the backend.
	Name() string

	// Solve decides the query. An error is returned if the oracle rejected the query or failed, including when the
	// context is cancelled or its deadline is exceeded.
	Solve(ctx context.Context, query *Query) (*OracleResult, error)
}
