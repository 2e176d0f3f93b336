package smtlib

import (
	"math/big"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// sexpr is a parsed s-expression: either an atom or a list.
type sexpr struct {
	atom   string
	list   []*sexpr
	isList bool
}

// String returns the s-expression in SMT-LIB2 syntax.
func (s *sexpr) String() string {
	if !s.isList {
		return s.atom
	}
	parts := make([]string, len(s.list))
	for i, item := range s.list {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// tokenize splits solver output into parentheses, string literals, quoted symbols and atoms.
func tokenize(output string) ([]string, error) {
	tokens := make([]string, 0)
	for i := 0; i < len(output); {
		c := output[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ';':
			// Comments run to the end of the line
			for i < len(output) && output[i] != '\n' {
				i++
			}
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		case c == '"':
			// Double quotes are escaped by doubling them
			j := i + 1
			for {
				if j >= len(output) {
					return nil, errors.New("unterminated string literal in solver output")
				}
				if output[j] == '"' {
					if j+1 < len(output) && output[j+1] == '"' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			tokens = append(tokens, output[i:j+1])
			i = j + 1
		case c == '|':
			j := strings.IndexByte(output[i+1:], '|')
			if j < 0 {
				return nil, errors.New("unterminated quoted symbol in solver output")
			}
			tokens = append(tokens, output[i:i+j+2])
			i += j + 2
		default:
			j := i
			for j < len(output) && !strings.ContainsRune(" \t\n\r()\";|", rune(output[j])) {
				j++
			}
			tokens = append(tokens, output[i:j])
			i = j
		}
	}
	return tokens, nil
}

// parseSexprs parses every top-level s-expression of the solver output.
func parseSexprs(output string) ([]*sexpr, error) {
	tokens, err := tokenize(output)
	if err != nil {
		return nil, err
	}

	stack := [][]*sexpr{make([]*sexpr, 0)}
	for _, token := range tokens {
		switch token {
		case "(":
			stack = append(stack, make([]*sexpr, 0))
		case ")":
			if len(stack) == 1 {
				return nil, errors.New("unbalanced parenthesis in solver output")
			}
			list := &sexpr{list: stack[len(stack)-1], isList: true}
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = append(stack[len(stack)-1], list)
		default:
			stack[len(stack)-1] = append(stack[len(stack)-1], &sexpr{atom: token})
		}
	}
	if len(stack) != 1 {
		return nil, errors.New("unbalanced parenthesis in solver output")
	}
	return stack[0], nil
}

// unquote strips the quotes of a string literal or quoted symbol.
func unquote(atom string) string {
	if len(atom) >= 2 && (atom[0] == '"' && atom[len(atom)-1] == '"' || atom[0] == '|' && atom[len(atom)-1] == '|') {
		return strings.ReplaceAll(atom[1:len(atom)-1], `""`, `"`)
	}
	return atom
}

// parseValue converts a value term from a get-value response into a Value of the given sort.
func parseValue(s *sexpr, sort expr.Sort) (expr.Value, error) {
	if sort == expr.SortBool {
		switch s.String() {
		case "true":
			return expr.BoolValue(true), nil
		case "false":
			return expr.BoolValue(false), nil
		}
		return expr.Value{}, errors.Errorf("invalid boolean value %v", s)
	}

	// Integers are either numerals or a negated numeral
	negative := false
	if s.isList {
		if len(s.list) != 2 || s.list[0].isList || s.list[0].atom != "-" || s.list[1].isList {
			return expr.Value{}, errors.Errorf("invalid integer value %v", s)
		}
		negative = true
		s = s.list[1]
	}
	value, ok := new(big.Int).SetString(s.atom, 10)
	if !ok {
		return expr.Value{}, errors.Errorf("invalid integer value %v", s)
	}
	if negative {
		value.Neg(value)
	}
	if !value.IsInt64() {
		return expr.Value{}, errors.Errorf("integer value %v does not fit in 64 bits", value)
	}
	return expr.IntValue(value.Int64()), nil
}

// ParseOutput interprets the output of a solver which ran a script produced by RenderScript. Errors the solver
// reported after a verdict, such as a model being unavailable after unsat, are kept as the diagnostic.
func ParseOutput(output string, vars []*expr.Var) (*types.OracleResult, error) {
	sexprs, err := parseSexprs(output)
	if err != nil {
		return nil, err
	}

	result := &types.OracleResult{}
	diagnostics := make([]string, 0)
	sorts := make(map[string]expr.Sort, len(vars))
	for _, v := range vars {
		sorts[v.Name] = v.Type
	}

	for _, s := range sexprs {
		switch {
		case !s.isList && result.Status == "":
			switch s.atom {
			case "sat":
				result.Status = types.OracleSat
			case "unsat":
				result.Status = types.OracleUnsat
			case "unknown":
				result.Status = types.OracleUnknown
			default:
				diagnostics = append(diagnostics, s.atom)
			}
		case s.isList && len(s.list) > 0 && !s.list[0].isList && s.list[0].atom == "error":
			messages := make([]string, 0, len(s.list)-1)
			for _, item := range s.list[1:] {
				messages = append(messages, unquote(item.String()))
			}
			diagnostics = append(diagnostics, strings.Join(messages, " "))
		case s.isList && result.Status == types.OracleSat:
			// A get-value response is a list of (name value) pairs
			model := make(expr.Assignment, len(s.list))
			for _, pair := range s.list {
				if !pair.isList || len(pair.list) != 2 || pair.list[0].isList {
					return nil, errors.Errorf("invalid get-value entry %v", pair)
				}
				name := unquote(pair.list[0].atom)
				sort, ok := sorts[name]
				if !ok {
					continue
				}
				value, err := parseValue(pair.list[1], sort)
				if err != nil {
					return nil, errors.Wrapf(err, "invalid value for %v", name)
				}
				model[name] = value
			}
			result.Model = model
		default:
			diagnostics = append(diagnostics, s.String())
		}
	}

	result.Diagnostic = strings.Join(diagnostics, "; ")
	if result.Status == "" {
		if result.Diagnostic == "" {
			return nil, errors.New("solver produced no verdict")
		}
		return nil, errors.Errorf("solver produced no verdict: %v", result.Diagnostic)
	}
	if result.Status == types.OracleSat && result.Model == nil {
		result.Model = make(expr.Assignment)
	}
	return result, nil
}
