package expr

import (
	"strconv"
	"strings"
)

// Operator precedences used when rendering, mirroring Go's binary operator precedence.
const (
	precOr = iota + 1
	precAnd
	precCompare
	precAdd
	precMul
	precUnary
	precAtom
)

// String returns the operator token.
func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	default:
		return "*"
	}
}

// String returns the operator token.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

// String returns the operator token.
func (op LogicOp) String() string {
	if op == OpOr {
		return "||"
	}
	return "&&"
}

func (v *Var) String() string       { return v.Name }
func (c *IntConst) String() string  { return strconv.FormatInt(c.Value, 10) }
func (c *BoolConst) String() string { return strconv.FormatBool(c.Value) }
func (a *Arith) String() string     { return render(a) }
func (n *Neg) String() string       { return render(n) }
func (w *Wrap) String() string      { return render(w) }
func (c *Compare) String() string   { return render(c) }
func (n *Not) String() string       { return render(n) }
func (l *Logic) String() string     { return render(l) }

// precedence returns the binding strength of the outermost operator of e.
func precedence(e Expr) int {
	switch t := e.(type) {
	case *Arith:
		if t.Op == OpMul {
			return precMul
		}
		return precAdd
	case *Compare:
		return precCompare
	case *Logic:
		if len(t.Operands) == 0 {
			return precAtom
		} else if len(t.Operands) == 1 {
			return precedence(t.Operands[0])
		}
		if t.Op == OpOr {
			return precOr
		}
		return precAnd
	case *Wrap:
		return precedence(t.X)
	case *Neg, *Not:
		return precUnary
	case *IntConst:
		if t.Value < 0 {
			return precUnary
		}
		return precAtom
	default:
		return precAtom
	}
}

// Canonical renders the expression like String, except that every Wrap is written as a conversion to its type, so
// expressions which differ only in where integers overflow render differently.
func Canonical(e Expr) string {
	p := &printer{conversions: true}
	p.write(e)
	return p.sb.String()
}

func render(e Expr) string {
	p := &printer{}
	p.write(e)
	return p.sb.String()
}

// printer renders expressions in infix syntax. Wraps are left implicit unless conversions is set.
type printer struct {
	sb          strings.Builder
	conversions bool
}

// precedence returns the binding strength of e as rendered by this printer.
func (p *printer) precedence(e Expr) int {
	if _, ok := e.(*Wrap); ok && p.conversions {
		return precAtom
	}
	return precedence(e)
}

// writeOperand writes e, wrapping it in parentheses when it binds looser than min.
func (p *printer) writeOperand(e Expr, min int) {
	if p.precedence(e) < min {
		p.sb.WriteByte('(')
		p.write(e)
		p.sb.WriteByte(')')
		return
	}
	p.write(e)
}

func (p *printer) write(e Expr) {
	sb := &p.sb
	switch t := e.(type) {
	case *Wrap:
		if !p.conversions {
			p.write(t.X)
			return
		}
		sb.WriteString(t.TypeName() + "(")
		p.write(t.X)
		sb.WriteByte(')')
	case *Arith:
		prec := p.precedence(t)
		p.writeOperand(t.X, prec)
		sb.WriteString(" " + t.Op.String() + " ")
		// Left associative, so a right operand of equal precedence needs parentheses
		p.writeOperand(t.Y, prec+1)
	case *Neg:
		sb.WriteByte('-')
		p.writeOperand(t.X, precUnary+1)
	case *Compare:
		p.writeOperand(t.X, precCompare+1)
		sb.WriteString(" " + t.Op.String() + " ")
		p.writeOperand(t.Y, precCompare+1)
	case *Not:
		sb.WriteByte('!')
		p.writeOperand(t.X, precUnary+1)
	case *Logic:
		switch len(t.Operands) {
		case 0:
			sb.WriteString(strconv.FormatBool(t.Op == OpAnd))
		case 1:
			p.write(t.Operands[0])
		default:
			prec := p.precedence(t)
			for i, operand := range t.Operands {
				if i > 0 {
					sb.WriteString(" " + t.Op.String() + " ")
				}
				p.writeOperand(operand, prec+1)
			}
		}
	default:
		sb.WriteString(e.String())
	}
}
