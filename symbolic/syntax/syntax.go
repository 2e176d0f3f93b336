// Package syntax describes the minimal parsed form of a target function that frontends produce and the condition
// extractor consumes. It only distinguishes conditionals, returns, and everything else.
package syntax

import (
	"fmt"

	"github.com/crytic/symgen/symbolic/expr"
)

// Position describes a location in the target source file.
type Position struct {
	// Line is the 1-based line number.
	Line int `json:"line" yaml:"line"`

	// Column is the 1-based column number.
	Column int `json:"column" yaml:"column"`
}

// String returns a "line:column" representation of the Position.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Param describes an input parameter of the target function.
type Param struct {
	// Name is the parameter name as it appears in the source.
	Name string `json:"name" yaml:"name"`

	// Sort is the sort the parameter is modelled as.
	Sort expr.Sort `json:"sort" yaml:"sort"`

	// TypeText is the declared type of the parameter in the source language, if any.
	TypeText string `json:"type" yaml:"type"`

	// Min and Max bound the values an integer parameter may take. They are ignored for boolean parameters.
	Min int64 `json:"min" yaml:"min"`
	Max int64 `json:"max" yaml:"max"`
}

// Var returns the expression variable which refers to this parameter.
func (p Param) Var() *expr.Var {
	return expr.NewVar(p.Name, p.Sort)
}

// RangeConstraint returns the constraint which bounds the parameter to its declared range, or nil if the parameter
// is not an integer.
func (p Param) RangeConstraint() expr.Expr {
	if p.Sort != expr.SortInt {
		return nil
	}
	v := p.Var()
	return expr.NewAnd(expr.NewCompare(expr.OpGe, v, expr.NewInt(p.Min)), expr.NewCompare(expr.OpLe, v, expr.NewInt(p.Max)))
}

// Function is a parsed target function.
type Function struct {
	// Name is the function name.
	Name string

	// Package is the enclosing package or module name, if the language has one.
	Package string

	// Language is the name of the frontend which produced the function.
	Language string

	// Params are the function's parameters in declaration order.
	Params []Param

	// ResultTypes are the declared result types in the source language, if any.
	ResultTypes []string

	// Body is the sequence of top-level statements of the function.
	Body []Stmt

	// ImplicitReturnLabel is the outcome label of falling off the end of the function, e.g. "None" in Python.
	ImplicitReturnLabel string

	// Position is the location of the function declaration.
	Position Position
}

// Stmt is a statement in a function body. The set of implementations is closed: If, Return and Unsupported.
type Stmt interface {
	// Pos returns the location of the statement.
	Pos() Position

	stmtNode()
}

// If is a conditional statement whose condition could be translated into an expression.
type If struct {
	// Cond is the translated condition.
	Cond expr.Expr

	// CondText is the condition as written in the source.
	CondText string

	// Then is the body executed when Cond holds.
	Then []Stmt

	// Else is the body executed otherwise. An else-if chain is represented as an Else holding a single If.
	Else []Stmt

	// Position is the location of the statement.
	Position Position
}

// Return is a terminal statement.
type Return struct {
	// Label is the returned expression as written in the source. It identifies the outcome.
	Label string

	// Value is the returned value translated into an expression, or nil if it could not be translated. It is used to
	// compute expected values for outcomes which depend on the inputs.
	Value expr.Expr

	// DependsOnInputs indicates whether the returned value refers to any parameter.
	DependsOnInputs bool

	// Implicit indicates that the return was not written in the source but reached by falling off the function end.
	Implicit bool

	// Position is the location of the statement.
	Position Position
}

// Unsupported is any statement, or any conditional whose condition, is outside the supported language subset.
type Unsupported struct {
	// Kind names the kind of construct, e.g. "for statement".
	Kind string

	// Text is the source text of the construct.
	Text string

	// Position is the location of the construct.
	Position Position
}

func (s *If) Pos() Position          { return s.Position }
func (s *Return) Pos() Position      { return s.Position }
func (s *Unsupported) Pos() Position { return s.Position }

func (*If) stmtNode()          {}
func (*Return) stmtNode()      {}
func (*Unsupported) stmtNode() {}
