package python

import (
	"strconv"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
	sitter "github.com/smacker/go-tree-sitter"
)

// conditionError describes the node which prevented a Python expression from being translated.
type conditionError struct {
	kind string
	node *sitter.Node
}

var (
	arithOps = map[string]expr.ArithOp{
		"+": expr.OpAdd,
		"-": expr.OpSub,
		"*": expr.OpMul,
	}
	compareOps = map[string]expr.CompareOp{
		"==": expr.OpEq,
		"!=": expr.OpNe,
		"<":  expr.OpLt,
		"<=": expr.OpLe,
		">":  expr.OpGt,
		">=": expr.OpGe,
	}
)

// expr translates a Python expression over the parameters.
func (t *translator) expr(node *sitter.Node) (expr.Expr, *conditionError) {
	switch node.Type() {
	case "parenthesized_expression":
		if node.NamedChildCount() != 1 {
			return nil, &conditionError{kind: "parenthesized expression", node: node}
		}
		return t.expr(node.NamedChild(0))
	case "identifier":
		if v, ok := t.params[t.text(node)]; ok {
			return v, nil
		}
		return nil, &conditionError{kind: "identifier which is not a parameter", node: node}
	case "true":
		return expr.NewBool(true), nil
	case "false":
		return expr.NewBool(false), nil
	case "integer":
		return t.integer(node, "")
	case "unary_operator":
		operator := t.text(node.ChildByFieldName("operator"))
		argument := node.ChildByFieldName("argument")
		switch operator {
		case "-":
			// Negative literals are folded so the most negative integer can be written
			if argument.Type() == "integer" {
				return t.integer(argument, "-")
			}
			x, err := t.expr(argument)
			if err != nil {
				return nil, err
			}
			return expr.NewNeg(x), nil
		case "+":
			return t.expr(argument)
		}
		return nil, &conditionError{kind: "operator " + operator, node: node}
	case "not_operator":
		x, err := t.expr(node.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		return expr.NewNot(x), nil
	case "binary_operator":
		operator := t.text(node.ChildByFieldName("operator"))
		op, ok := arithOps[operator]
		if !ok {
			return nil, &conditionError{kind: "operator " + operator, node: node}
		}
		x, y, err := t.pair(node.ChildByFieldName("left"), node.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		return expr.NewArith(op, x, y), nil
	case "boolean_operator":
		x, y, err := t.pair(node.ChildByFieldName("left"), node.ChildByFieldName("right"))
		if err != nil {
			return nil, err
		}
		if t.text(node.ChildByFieldName("operator")) == "and" {
			return expr.NewAnd(x, y), nil
		}
		return expr.NewOr(x, y), nil
	case "comparison_operator":
		return t.comparison(node)
	case "call":
		return nil, &conditionError{kind: "call expression", node: node}
	case "attribute":
		return nil, &conditionError{kind: "attribute access", node: node}
	default:
		return nil, &conditionError{kind: kindOf(node), node: node}
	}
}

func (t *translator) pair(a, b *sitter.Node) (expr.Expr, expr.Expr, *conditionError) {
	x, err := t.expr(a)
	if err != nil {
		return nil, nil, err
	}
	y, err := t.expr(b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// comparison translates a comparison, which may be a chain such as "a < b <= c" meaning "a < b and b <= c".
func (t *translator) comparison(node *sitter.Node) (expr.Expr, *conditionError) {
	operandNodes := make([]*sitter.Node, 0)
	ops := make([]expr.CompareOp, 0)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.IsNamed() {
			if child.Type() != "comment" {
				operandNodes = append(operandNodes, child)
			}
			continue
		}
		op, ok := compareOps[child.Type()]
		if !ok {
			return nil, &conditionError{kind: "operator " + child.Type(), node: node}
		}
		ops = append(ops, op)
	}
	if len(operandNodes) != len(ops)+1 {
		return nil, &conditionError{kind: "comparison", node: node}
	}

	operands := make([]expr.Expr, len(operandNodes))
	for i, operandNode := range operandNodes {
		operand, err := t.expr(operandNode)
		if err != nil {
			return nil, err
		}
		operands[i] = operand
	}
	terms := make([]expr.Expr, len(ops))
	for i, op := range ops {
		terms[i] = expr.NewCompare(op, operands[i], operands[i+1])
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return expr.NewAnd(terms...), nil
}

// integer translates an integer literal, with an optional sign prefix.
func (t *translator) integer(node *sitter.Node, sign string) (expr.Expr, *conditionError) {
	text := t.text(node)
	// Python spells octal literals with a lower or upper case o, and only a zero literal may have leading zeros
	if strings.HasPrefix(text, "0") && len(text) > 1 && strings.Trim(text, "0_") != "" && !strings.ContainsAny(text[1:2], "xXoObB") {
		return nil, &conditionError{kind: "integer literal", node: node}
	}
	value, err := strconv.ParseInt(sign+text, 0, 64)
	if err != nil {
		return nil, &conditionError{kind: "integer literal out of range", node: node}
	}
	return expr.NewInt(value), nil
}
