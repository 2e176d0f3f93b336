// Package golang implements the frontend for Go target functions, built on the standard go/parser.
package golang

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/extraction"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/pkg/errors"
)

// Language is the name of the Go frontend.
const Language = "go"

// integerType describes a predeclared integer type. A zero width denotes a type whose width depends on the platform.
type integerType struct {
	signed bool
	bits   int
}

// wrapBits returns the width arithmetic of the type overflows at. Platform-dependent types are taken to be 64 bits
// wide.
func (it integerType) wrapBits() int {
	if it.bits == 0 {
		return 64
	}
	return it.bits
}

// integerTypes maps the predeclared integer types to their signedness and width.
var integerTypes = map[string]integerType{
	"int": {true, 0}, "int8": {true, 8}, "int16": {true, 16}, "int32": {true, 32}, "int64": {true, 64},
	"uint": {false, 0}, "uint8": {false, 8}, "uint16": {false, 16}, "uint32": {false, 32}, "uint64": {false, 64},
	"byte": {false, 8}, "rune": {true, 32},
}

// Frontend parses Go source files.
type Frontend struct {
	// intWidth is the width integer parameters are restricted to.
	intWidth int
}

// NewFrontend creates a Frontend restricting integer parameters to signed integers of intWidth bits.
func NewFrontend(intWidth int) *Frontend {
	return &Frontend{intWidth: intWidth}
}

// Language returns the name of the frontend.
func (f *Frontend) Language() string {
	return Language
}

// ParseFunction parses a Go source file and returns the top-level function with the provided name.
func (f *Frontend) ParseFunction(src []byte, name string) (*syntax.Function, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse the Go source")
	}

	var decl *ast.FuncDecl
	for _, d := range file.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Recv == nil && fd.Name.Name == name {
			decl = fd
			break
		}
	}
	if decl == nil {
		return nil, errors.Errorf("function %v is not declared in package %v", name, file.Name.Name)
	}
	if decl.Body == nil {
		return nil, errors.Errorf("function %v has no body", name)
	}

	t := newTranslator(fset, src)
	fn := &syntax.Function{
		Name:     name,
		Package:  file.Name.Name,
		Language: Language,
		Position: t.position(decl),
	}

	unsupported := func(kind string, node ast.Node) error {
		return &extraction.UnsupportedConstructError{Function: name, Kind: kind, Text: t.text(node), Position: t.position(node)}
	}
	if decl.Type.TypeParams != nil && len(decl.Type.TypeParams.List) > 0 {
		return nil, unsupported("type parameters", decl.Type.TypeParams)
	}

	// Translate the parameters
	for _, field := range decl.Type.Params.List {
		typeText := t.typeText(field.Type)
		ident, _ := field.Type.(*ast.Ident)
		if len(field.Names) == 0 {
			return nil, unsupported("unnamed parameter", field)
		}
		for _, paramName := range field.Names {
			if paramName.Name == "_" {
				return nil, unsupported("blank parameter", paramName)
			}

			var param syntax.Param
			shape, isInteger := integerTypes[typeText]
			switch {
			case ident != nil && isInteger:
				param = syntax.NewIntParam(paramName.Name, typeText, shape.signed, shape.bits, f.intWidth)
			case ident != nil && ident.Name == "bool":
				param = syntax.NewBoolParam(paramName.Name, typeText)
			default:
				return nil, unsupported("parameter of type "+typeText, field)
			}
			fn.Params = append(fn.Params, param)
			t.params[param.Name] = param.Var()
			if isInteger {
				t.intTypes[param.Name] = shape
			}
		}
	}

	if decl.Type.Results != nil {
		for _, field := range decl.Type.Results.List {
			count := max(1, len(field.Names))
			for i := 0; i < count; i++ {
				fn.ResultTypes = append(fn.ResultTypes, t.typeText(field.Type))
			}
		}
	}

	fn.Body = t.stmts(decl.Body.List)
	return fn, nil
}

// ParseExpr parses a Go expression over the provided parameters, such as a domain constraint.
func (f *Frontend) ParseExpr(src string, params []syntax.Param) (expr.Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse the expression %q", src)
	}
	t := newTranslator(token.NewFileSet(), []byte(src))
	for _, param := range params {
		t.params[param.Name] = param.Var()
		if shape, ok := integerTypes[param.TypeText]; ok && param.Sort == expr.SortInt {
			t.intTypes[param.Name] = shape
		}
	}

	e, condErr := t.expr(node)
	if condErr != nil {
		return nil, errors.Errorf("%v in expression %q", condErr.kind, src)
	}
	if err := expr.TypeCheck(e); err != nil {
		return nil, errors.Wrapf(err, "invalid expression %q", src)
	}
	return e, nil
}

// translator converts statements and expressions of a single source file.
type translator struct {
	fset   *token.FileSet
	src    []byte
	params map[string]*expr.Var

	// intTypes holds the declared types of integer parameters.
	intTypes map[string]integerType
}

func newTranslator(fset *token.FileSet, src []byte) *translator {
	return &translator{
		fset:     fset,
		src:      src,
		params:   make(map[string]*expr.Var),
		intTypes: make(map[string]integerType),
	}
}

// position returns the position of a node.
func (t *translator) position(node ast.Node) syntax.Position {
	p := t.fset.Position(node.Pos())
	return syntax.Position{Line: p.Line, Column: p.Column}
}

// text returns the source text of a node.
func (t *translator) text(node ast.Node) string {
	start, end := t.fset.Position(node.Pos()).Offset, t.fset.Position(node.End()).Offset
	if start < 0 || end > len(t.src) || start > end {
		return ""
	}
	return string(t.src[start:end])
}

// typeText returns the canonical text of a type expression.
func (t *translator) typeText(node ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, t.fset, node); err != nil {
		return t.text(node)
	}
	return buf.String()
}

// stmts translates a statement list. Blocks are flattened, as no supported statement introduces bindings.
func (t *translator) stmts(list []ast.Stmt) []syntax.Stmt {
	result := make([]syntax.Stmt, 0, len(list))
	for _, s := range list {
		switch n := s.(type) {
		case *ast.BlockStmt:
			result = append(result, t.stmts(n.List)...)
		case *ast.EmptyStmt:
		default:
			result = append(result, t.stmt(s))
		}
	}
	return result
}

// stmt translates a single statement which is neither a block nor empty.
func (t *translator) stmt(s ast.Stmt) syntax.Stmt {
	switch n := s.(type) {
	case *ast.ReturnStmt:
		return t.returnStmt(n)
	case *ast.IfStmt:
		return t.ifStmt(n)
	default:
		return &syntax.Unsupported{Kind: stmtKind(s), Text: t.text(s), Position: t.position(s)}
	}
}

func (t *translator) returnStmt(n *ast.ReturnStmt) syntax.Stmt {
	ret := &syntax.Return{Label: "return", Position: t.position(n)}
	if len(n.Results) == 0 {
		return ret
	}

	labels := make([]string, len(n.Results))
	for i, result := range n.Results {
		labels[i] = t.text(result)
		ast.Inspect(result, func(node ast.Node) bool {
			if ident, ok := node.(*ast.Ident); ok && t.params[ident.Name] != nil {
				ret.DependsOnInputs = true
			}
			return true
		})
	}
	ret.Label = strings.Join(labels, ", ")

	if len(n.Results) == 1 {
		if value, err := t.expr(n.Results[0]); err == nil && expr.TypeCheck(value) == nil {
			ret.Value = value
		}
	}
	return ret
}

func (t *translator) ifStmt(n *ast.IfStmt) syntax.Stmt {
	if n.Init != nil {
		return &syntax.Unsupported{Kind: "if statement with initializer", Text: t.text(n.Init), Position: t.position(n.Init)}
	}

	cond, condErr := t.expr(n.Cond)
	if condErr != nil {
		return &syntax.Unsupported{Kind: condErr.kind + " in condition", Text: t.text(condErr.node), Position: t.position(condErr.node)}
	}
	if err := expr.TypeCheck(cond); err != nil || cond.Sort() != expr.SortBool {
		return &syntax.Unsupported{Kind: "ill-typed condition", Text: t.text(n.Cond), Position: t.position(n.Cond)}
	}

	stmt := &syntax.If{
		Cond:     cond,
		CondText: t.text(n.Cond),
		Then:     t.stmts(n.Body.List),
		Position: t.position(n),
	}
	switch e := n.Else.(type) {
	case *ast.BlockStmt:
		stmt.Else = t.stmts(e.List)
	case *ast.IfStmt:
		stmt.Else = []syntax.Stmt{t.ifStmt(e)}
	}
	return stmt
}

// stmtKind names the kind of an unsupported statement.
func stmtKind(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.ForStmt:
		return "for statement"
	case *ast.RangeStmt:
		return "range statement"
	case *ast.AssignStmt:
		if n.Tok == token.DEFINE {
			return "variable declaration"
		}
		return "assignment"
	case *ast.IncDecStmt:
		return n.Tok.String() + " statement"
	case *ast.SwitchStmt:
		return "switch statement"
	case *ast.TypeSwitchStmt:
		return "type switch statement"
	case *ast.SelectStmt:
		return "select statement"
	case *ast.BranchStmt:
		return n.Tok.String() + " statement"
	case *ast.DeferStmt:
		return "defer statement"
	case *ast.GoStmt:
		return "go statement"
	case *ast.ExprStmt:
		if _, ok := n.X.(*ast.CallExpr); ok {
			return "call statement"
		}
		return "expression statement"
	case *ast.DeclStmt:
		return "declaration"
	case *ast.LabeledStmt:
		return "labeled statement"
	case *ast.SendStmt:
		return "send statement"
	default:
		return "statement"
	}
}
