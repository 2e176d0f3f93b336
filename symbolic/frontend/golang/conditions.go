package golang

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
)

// conditionError describes the node which prevented a Go expression from being translated.
type conditionError struct {
	kind string
	node ast.Node
}

var (
	arithOps = map[token.Token]expr.ArithOp{
		token.ADD: expr.OpAdd,
		token.SUB: expr.OpSub,
		token.MUL: expr.OpMul,
	}
	compareOps = map[token.Token]expr.CompareOp{
		token.EQL: expr.OpEq,
		token.NEQ: expr.OpNe,
		token.LSS: expr.OpLt,
		token.LEQ: expr.OpLe,
		token.GTR: expr.OpGt,
		token.GEQ: expr.OpGe,
	}
)

// expr translates a Go expression over the parameters.
func (t *translator) expr(e ast.Expr) (expr.Expr, *conditionError) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return t.expr(n.X)
	case *ast.Ident:
		if v, ok := t.params[n.Name]; ok {
			return v, nil
		}
		switch n.Name {
		case "true":
			return expr.NewBool(true), nil
		case "false":
			return expr.NewBool(false), nil
		}
		return nil, &conditionError{kind: "identifier which is not a parameter", node: n}
	case *ast.BasicLit:
		return t.literal(n, "")
	case *ast.UnaryExpr:
		switch n.Op {
		case token.SUB:
			// Negative literals are folded so the most negative integer can be written
			if lit, ok := n.X.(*ast.BasicLit); ok {
				return t.literal(lit, "-")
			}
			x, err := t.expr(n.X)
			if err != nil {
				return nil, err
			}
			return t.wrap(n, expr.NewNeg(x)), nil
		case token.ADD:
			return t.expr(n.X)
		case token.NOT:
			x, err := t.expr(n.X)
			if err != nil {
				return nil, err
			}
			return expr.NewNot(x), nil
		}
		return nil, &conditionError{kind: fmt.Sprintf("operator %v", n.Op), node: n}
	case *ast.BinaryExpr:
		x, err := t.expr(n.X)
		if err != nil {
			return nil, err
		}
		y, err := t.expr(n.Y)
		if err != nil {
			return nil, err
		}
		if op, ok := arithOps[n.Op]; ok {
			return t.wrap(n, expr.NewArith(op, x, y)), nil
		}
		if op, ok := compareOps[n.Op]; ok {
			return expr.NewCompare(op, x, y), nil
		}
		switch n.Op {
		case token.LAND:
			return expr.NewAnd(x, y), nil
		case token.LOR:
			return expr.NewOr(x, y), nil
		}
		return nil, &conditionError{kind: fmt.Sprintf("operator %v", n.Op), node: n}
	case *ast.CallExpr:
		return nil, &conditionError{kind: "call expression", node: n}
	case *ast.SelectorExpr:
		return nil, &conditionError{kind: "selector expression", node: n}
	case *ast.IndexExpr, *ast.IndexListExpr:
		return nil, &conditionError{kind: "index expression", node: n}
	default:
		return nil, &conditionError{kind: "expression", node: e}
	}
}

// staticType returns the integer type of a typed expression. Untyped constant expressions, and expressions which are
// not integers, have none.
func (t *translator) staticType(e ast.Expr) (integerType, bool) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return t.staticType(n.X)
	case *ast.Ident:
		it, ok := t.intTypes[n.Name]
		return it, ok
	case *ast.UnaryExpr:
		if n.Op == token.SUB || n.Op == token.ADD {
			return t.staticType(n.X)
		}
	case *ast.BinaryExpr:
		if _, ok := arithOps[n.Op]; ok {
			// Operands of a typed operation share one type, unless one of them is an untyped constant
			if it, ok := t.staticType(n.X); ok {
				return it, true
			}
			return t.staticType(n.Y)
		}
	}
	return integerType{}, false
}

// wrap returns the translation e of an arithmetic node, overflowing at the width of the node's type like Go does.
func (t *translator) wrap(node ast.Expr, e expr.Expr) expr.Expr {
	it, ok := t.staticType(node)
	if !ok {
		return e
	}
	return expr.NewWrap(e, it.wrapBits(), it.signed)
}

// literal translates an integer literal, with an optional sign prefix.
func (t *translator) literal(lit *ast.BasicLit, sign string) (expr.Expr, *conditionError) {
	if lit.Kind != token.INT {
		return nil, &conditionError{kind: strings.ToLower(lit.Kind.String()) + " literal", node: lit}
	}
	value, err := strconv.ParseInt(sign+lit.Value, 0, 64)
	if err != nil {
		return nil, &conditionError{kind: "integer literal out of range", node: lit}
	}
	return expr.NewInt(value), nil
}
