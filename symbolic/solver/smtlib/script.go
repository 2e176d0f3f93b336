// Package smtlib provides an oracle which decides queries by running an external SMT-LIB2 solver process, such as z3
// or cvc5, over integer arithmetic.
package smtlib

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// sortName returns the SMT-LIB2 sort of an expression sort.
func sortName(sort expr.Sort) string {
	if sort == expr.SortBool {
		return "Bool"
	}
	return "Int"
}

// reservedSymbols are the reserved words and predefined functions of SMT-LIB2 and its integer theory, which a
// variable may only be named by as a quoted symbol.
var reservedSymbols = map[string]bool{
	"par": true, "NUMERAL": true, "DECIMAL": true, "STRING": true, "_": true, "!": true, "as": true, "let": true,
	"exists": true, "forall": true, "match": true, "true": true, "false": true, "not": true, "and": true, "or": true,
	"xor": true, "ite": true, "distinct": true, "div": true, "mod": true, "abs": true, "to_real": true, "to_int": true,
	"is_int": true, "Int": true, "Bool": true, "Real": true,
}

// symbol returns the SMT-LIB2 symbol for a variable name. Names which are not simple symbols, start with a digit, or
// are reserved are quoted.
func symbol(name string) string {
	if name == "" || reservedSymbols[name] || name[0] >= '0' && name[0] <= '9' {
		return "|" + name + "|"
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "|" + name + "|"
		}
	}
	return name
}

// RenderScript returns the SMT-LIB2 script deciding the query and asking for the values of its variables.
func RenderScript(query *types.Query) (string, error) {
	var sb strings.Builder
	sb.WriteString("(set-option :produce-models true)\n")
	sb.WriteString("(set-logic ALL)\n")
	for _, v := range query.Vars {
		fmt.Fprintf(&sb, "(declare-const %s %s)\n", symbol(v.Name), sortName(v.Type))
	}

	// Variables referenced by the formula but not listed must still be declared
	declared := make(map[string]bool, len(query.Vars))
	for _, v := range query.Vars {
		declared[v.Name] = true
	}
	for _, v := range expr.Vars(query.Formula) {
		if !declared[v.Name] {
			declared[v.Name] = true
			fmt.Fprintf(&sb, "(declare-const %s %s)\n", symbol(v.Name), sortName(v.Type))
		}
	}

	formula, err := renderExpr(query.Formula)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&sb, "(assert %s)\n", formula)
	sb.WriteString("(check-sat)\n")
	if len(query.Vars) > 0 {
		names := make([]string, len(query.Vars))
		for i, v := range query.Vars {
			names[i] = symbol(v.Name)
		}
		fmt.Fprintf(&sb, "(get-value (%s))\n", strings.Join(names, " "))
	}
	sb.WriteString("(exit)\n")
	return sb.String(), nil
}

// renderInt returns the SMT-LIB2 literal of an integer. Negative literals are written as a negation.
func renderInt(v int64) string {
	if v < 0 {
		// Formatting the magnitude of math.MinInt64 requires an unsigned conversion
		return fmt.Sprintf("(- %d)", uint64(-(v+1))+1)
	}
	return fmt.Sprintf("%d", v)
}

// renderExpr returns the SMT-LIB2 term of an expression.
func renderExpr(e expr.Expr) (string, error) {
	switch t := e.(type) {
	case *expr.Var:
		return symbol(t.Name), nil
	case *expr.IntConst:
		return renderInt(t.Value), nil
	case *expr.BoolConst:
		if t.Value {
			return "true", nil
		}
		return "false", nil
	case *expr.Neg:
		x, err := renderExpr(t.X)
		if err != nil {
			return "", err
		}
		return "(- " + x + ")", nil
	case *expr.Wrap:
		x, err := renderExpr(t.X)
		if err != nil {
			return "", err
		}
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(t.Bits))
		if !t.Signed {
			return fmt.Sprintf("(mod %s %s)", x, modulus), nil
		}
		half := new(big.Int).Rsh(modulus, 1)
		return fmt.Sprintf("(- (mod (+ %s %s) %s) %s)", x, half, modulus, half), nil
	case *expr.Not:
		x, err := renderExpr(t.X)
		if err != nil {
			return "", err
		}
		return "(not " + x + ")", nil
	case *expr.Arith:
		op := map[expr.ArithOp]string{expr.OpAdd: "+", expr.OpSub: "-", expr.OpMul: "*"}[t.Op]
		return renderApplication(op, t.X, t.Y)
	case *expr.Compare:
		switch t.Op {
		case expr.OpNe:
			eq, err := renderApplication("=", t.X, t.Y)
			if err != nil {
				return "", err
			}
			return "(not " + eq + ")", nil
		default:
			op := map[expr.CompareOp]string{
				expr.OpEq: "=", expr.OpLt: "<", expr.OpLe: "<=", expr.OpGt: ">", expr.OpGe: ">=",
			}[t.Op]
			return renderApplication(op, t.X, t.Y)
		}
	case *expr.Logic:
		if len(t.Operands) == 0 {
			return renderExpr(expr.NewBool(t.Op == expr.OpAnd))
		}
		if len(t.Operands) == 1 {
			return renderExpr(t.Operands[0])
		}
		op := "and"
		if t.Op == expr.OpOr {
			op = "or"
		}
		return renderApplication(op, t.Operands...)
	default:
		return "", errors.Errorf("cannot render expression %v of type %T", e, e)
	}
}

// renderApplication returns the SMT-LIB2 application of an operator to the provided operands.
func renderApplication(op string, operands ...expr.Expr) (string, error) {
	parts := make([]string, 0, len(operands)+1)
	parts = append(parts, op)
	for _, operand := range operands {
		s, err := renderExpr(operand)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, " ") + ")", nil
}
