// Package expr defines the structured expression representation shared by every stage of the generator. Frontends
// build expressions once from a parsed target, the extractor tags them as predicates, and oracle backends translate
// them directly into their own formats. Expressions are never rendered to text and parsed back for evaluation.
package expr

import "fmt"

// Sort describes the type of value an expression evaluates to.
type Sort int

const (
	// SortInt describes an integer-valued expression.
	SortInt Sort = iota
	// SortBool describes a boolean-valued expression.
	SortBool
)

// String returns a readable name for the Sort.
func (s Sort) String() string {
	switch s {
	case SortInt:
		return "int"
	case SortBool:
		return "bool"
	default:
		return "unknown"
	}
}

// MarshalText encodes the Sort by name.
func (s Sort) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a Sort from its name.
func (s *Sort) UnmarshalText(text []byte) error {
	switch string(text) {
	case "int":
		*s = SortInt
	case "bool":
		*s = SortBool
	default:
		return fmt.Errorf("unknown sort %q", string(text))
	}
	return nil
}

// ArithOp describes a binary integer operation.
type ArithOp int

const (
	// OpAdd describes integer addition.
	OpAdd ArithOp = iota
	// OpSub describes integer subtraction.
	OpSub
	// OpMul describes integer multiplication.
	OpMul
)

// CompareOp describes a binary comparison which yields a boolean.
type CompareOp int

const (
	// OpEq describes equality. It is defined over both integer and boolean operands.
	OpEq CompareOp = iota
	// OpNe describes inequality. It is defined over both integer and boolean operands.
	OpNe
	// OpLt describes a strict less-than comparison over integers.
	OpLt
	// OpLe describes a less-than-or-equal comparison over integers.
	OpLe
	// OpGt describes a strict greater-than comparison over integers.
	OpGt
	// OpGe describes a greater-than-or-equal comparison over integers.
	OpGe
)

// Negate returns the comparison operator which yields the opposite result for the same operands.
func (op CompareOp) Negate() CompareOp {
	switch op {
	case OpEq:
		return OpNe
	case OpNe:
		return OpEq
	case OpLt:
		return OpGe
	case OpLe:
		return OpGt
	case OpGt:
		return OpLe
	default:
		return OpLt
	}
}

// Swap returns the comparison operator which yields the same result when the operands are exchanged.
func (op CompareOp) Swap() CompareOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}

// LogicOp describes an n-ary boolean connective.
type LogicOp int

const (
	// OpAnd describes a conjunction.
	OpAnd LogicOp = iota
	// OpOr describes a disjunction.
	OpOr
)

// Expr is a node in an expression tree. The set of implementations is closed: Var, IntConst, BoolConst, Arith, Neg,
// Wrap, Compare, Not and Logic.
type Expr interface {
	// Sort returns the sort of the value the expression evaluates to.
	Sort() Sort

	// String renders the expression in a Go-like infix syntax for reporting purposes.
	String() string

	exprNode()
}

// Var is a reference to a named input variable.
type Var struct {
	Name string
	Type Sort
}

// IntConst is an integer literal.
type IntConst struct {
	Value int64
}

// BoolConst is a boolean literal.
type BoolConst struct {
	Value bool
}

// Arith is a binary integer operation.
type Arith struct {
	Op   ArithOp
	X, Y Expr
}

// Neg is an integer negation.
type Neg struct {
	X Expr
}

// Wrap reduces an integer into the range of a fixed-width integer type, the way two's complement arithmetic
// overflows. It is how typed arithmetic of languages with fixed-width integers is expressed.
type Wrap struct {
	X Expr

	// Bits is the width of the type, between 1 and 64.
	Bits int

	// Signed indicates whether the type is signed.
	Signed bool
}

// Compare is a binary comparison.
type Compare struct {
	Op   CompareOp
	X, Y Expr
}

// Not is a boolean negation.
type Not struct {
	X Expr
}

// Logic is an n-ary conjunction or disjunction. A Logic with no operands is the identity of its operator.
type Logic struct {
	Op       LogicOp
	Operands []Expr
}

func (*Var) exprNode()       {}
func (*IntConst) exprNode()  {}
func (*BoolConst) exprNode() {}
func (*Arith) exprNode()     {}
func (*Neg) exprNode()       {}
func (*Wrap) exprNode()      {}
func (*Compare) exprNode()   {}
func (*Not) exprNode()       {}
func (*Logic) exprNode()     {}

func (v *Var) Sort() Sort     { return v.Type }
func (*IntConst) Sort() Sort  { return SortInt }
func (*BoolConst) Sort() Sort { return SortBool }
func (*Arith) Sort() Sort     { return SortInt }
func (*Neg) Sort() Sort       { return SortInt }
func (*Wrap) Sort() Sort      { return SortInt }
func (*Compare) Sort() Sort   { return SortBool }
func (*Not) Sort() Sort       { return SortBool }
func (*Logic) Sort() Sort     { return SortBool }

// NewVar returns a variable reference of the given sort.
func NewVar(name string, sort Sort) *Var {
	return &Var{Name: name, Type: sort}
}

// NewInt returns an integer literal.
func NewInt(value int64) *IntConst {
	return &IntConst{Value: value}
}

// NewBool returns a boolean literal.
func NewBool(value bool) *BoolConst {
	return &BoolConst{Value: value}
}

// NewArith returns a binary integer operation.
func NewArith(op ArithOp, x, y Expr) *Arith {
	return &Arith{Op: op, X: x, Y: y}
}

// NewNeg returns an integer negation.
func NewNeg(x Expr) *Neg {
	return &Neg{X: x}
}

// NewWrap returns x reduced into the range of an integer type of the given width and signedness.
func NewWrap(x Expr, bits int, signed bool) *Wrap {
	return &Wrap{X: x, Bits: bits, Signed: signed}
}

// Min returns the smallest value of the wrapped type.
func (w *Wrap) Min() int64 {
	if !w.Signed {
		return 0
	}
	return -1 << uint(w.Bits-1)
}

// TypeName returns the Go-style name of the wrapped type, such as int8 or uint64.
func (w *Wrap) TypeName() string {
	if w.Signed {
		return fmt.Sprintf("int%d", w.Bits)
	}
	return fmt.Sprintf("uint%d", w.Bits)
}

// NewCompare returns a comparison of x and y.
func NewCompare(op CompareOp, x, y Expr) *Compare {
	return &Compare{Op: op, X: x, Y: y}
}

// NewNot returns the structural negation of x. It does not push the negation inwards, so the negated form of a
// predicate always remains recognisable as such in reports.
func NewNot(x Expr) *Not {
	return &Not{X: x}
}

// NewAnd returns the conjunction of the provided operands.
func NewAnd(operands ...Expr) *Logic {
	return &Logic{Op: OpAnd, Operands: operands}
}

// NewOr returns the disjunction of the provided operands.
func NewOr(operands ...Expr) *Logic {
	return &Logic{Op: OpOr, Operands: operands}
}
