// Package python implements the frontend for Python target functions, built on the tree-sitter Python grammar.
package python

import (
	"context"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/extraction"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Language is the name of the Python frontend.
const Language = "python"

// implicitReturnLabel is the value of a Python function which falls off its end.
const implicitReturnLabel = "None"

// Frontend parses Python source files.
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

// parse parses Python source into a syntax tree, which the caller must close.
func parse(src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse the Python source")
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, errors.New("the Python source contains syntax errors")
	}
	return tree, nil
}

// ParseFunction parses a Python source file and returns the module-level function with the provided name.
func (f *Frontend) ParseFunction(src []byte, name string) (*syntax.Function, error) {
	tree, err := parse(src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	def := findFunction(tree.RootNode(), name, src)
	if def == nil {
		return nil, errors.Errorf("function %v is not defined at module level", name)
	}

	t := &translator{src: src, params: make(map[string]*expr.Var)}
	fn := &syntax.Function{
		Name:                name,
		Language:            Language,
		ImplicitReturnLabel: implicitReturnLabel,
		Position:            position(def),
	}
	unsupported := func(kind string, node *sitter.Node) error {
		return &extraction.UnsupportedConstructError{Function: name, Kind: kind, Text: t.text(node), Position: position(node)}
	}

	// Translate the parameters
	parameters := def.ChildByFieldName("parameters")
	for i := 0; i < int(parameters.NamedChildCount()); i++ {
		node := parameters.NamedChild(i)
		var nameNode, typeNode *sitter.Node
		switch node.Type() {
		case "identifier":
			nameNode = node
		case "typed_parameter":
			nameNode = node.NamedChild(0)
			typeNode = node.ChildByFieldName("type")
		case "default_parameter", "typed_default_parameter":
			nameNode = node.ChildByFieldName("name")
			typeNode = node.ChildByFieldName("type")
		case "comment":
			continue
		default:
			return nil, unsupported(kindOf(node), node)
		}
		if nameNode == nil || nameNode.Type() != "identifier" {
			return nil, unsupported(kindOf(node), node)
		}

		paramName := t.text(nameNode)
		var param syntax.Param
		switch typeText := t.typeText(typeNode); typeText {
		case "", "int":
			param = syntax.NewIntParam(paramName, typeText, true, 0, f.intWidth)
		case "bool":
			param = syntax.NewBoolParam(paramName, typeText)
		default:
			return nil, unsupported("parameter of type "+typeText, node)
		}
		fn.Params = append(fn.Params, param)
		t.params[paramName] = param.Var()
	}

	if returnType := def.ChildByFieldName("return_type"); returnType != nil {
		fn.ResultTypes = []string{t.text(returnType)}
	}

	fn.Body = t.block(def.ChildByFieldName("body"))
	return fn, nil
}

// findFunction returns the module-level definition of the named function, including decorated ones.
func findFunction(root *sitter.Node, name string, src []byte) *sitter.Node {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "decorated_definition" {
			child = child.ChildByFieldName("definition")
		}
		if child == nil || child.Type() != "function_definition" {
			continue
		}
		if n := child.ChildByFieldName("name"); n != nil && n.Content(src) == name {
			return child
		}
	}
	return nil
}

// ParseExpr parses a Python expression over the provided parameters, such as a domain constraint.
func (f *Frontend) ParseExpr(src string, params []syntax.Param) (expr.Expr, error) {
	tree, err := parse([]byte(src))
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse the expression %q", src)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.NamedChildCount() != 1 || root.NamedChild(0).Type() != "expression_statement" || root.NamedChild(0).NamedChildCount() != 1 {
		return nil, errors.Errorf("%q is not a single expression", src)
	}

	t := &translator{src: []byte(src), params: make(map[string]*expr.Var)}
	for _, param := range params {
		t.params[param.Name] = param.Var()
	}
	e, condErr := t.expr(root.NamedChild(0).NamedChild(0))
	if condErr != nil {
		return nil, errors.Errorf("%v in expression %q", condErr.kind, src)
	}
	if err := expr.TypeCheck(e); err != nil {
		return nil, errors.Wrapf(err, "invalid expression %q", src)
	}
	return e, nil
}

// position returns the 1-based position of a node.
func position(node *sitter.Node) syntax.Position {
	p := node.StartPoint()
	return syntax.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// kindOf names the kind of a node, e.g. "for statement" for a for_statement node.
func kindOf(node *sitter.Node) string {
	return strings.ReplaceAll(node.Type(), "_", " ")
}

// translator converts statements and expressions of a single source file.
type translator struct {
	src    []byte
	params map[string]*expr.Var
}

// text returns the source text of a node.
func (t *translator) text(node *sitter.Node) string {
	return node.Content(t.src)
}

// typeText returns the text of a type annotation, or an empty string if there is none.
func (t *translator) typeText(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(t.text(node))
}

// block translates the statements of a block.
func (t *translator) block(node *sitter.Node) []syntax.Stmt {
	result := make([]syntax.Stmt, 0)
	if node == nil {
		return result
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "comment", "pass_statement":
		case "expression_statement":
			// Docstrings and other bare strings are no-ops
			if child.NamedChildCount() == 1 && child.NamedChild(0).Type() == "string" {
				continue
			}
			result = append(result, t.expressionStatement(child))
		case "return_statement":
			result = append(result, t.returnStatement(child))
		case "if_statement":
			result = append(result, t.ifStatement(child))
		default:
			result = append(result, &syntax.Unsupported{Kind: kindOf(child), Text: t.text(child), Position: position(child)})
		}
	}
	return result
}

// expressionStatement translates an expression statement, which is always unsupported.
func (t *translator) expressionStatement(node *sitter.Node) syntax.Stmt {
	kind := "expression statement"
	if node.NamedChildCount() > 0 {
		switch node.NamedChild(0).Type() {
		case "call":
			kind = "call statement"
		case "assignment", "augmented_assignment":
			kind = "assignment"
		}
	}
	return &syntax.Unsupported{Kind: kind, Text: t.text(node), Position: position(node)}
}

func (t *translator) returnStatement(node *sitter.Node) syntax.Stmt {
	ret := &syntax.Return{Label: implicitReturnLabel, Position: position(node)}
	if node.NamedChildCount() == 0 {
		return ret
	}

	value := node.NamedChild(0)
	ret.Label = t.text(value)
	ret.DependsOnInputs = t.referencesParams(value)
	if e, err := t.expr(value); err == nil && expr.TypeCheck(e) == nil {
		ret.Value = e
	}
	return ret
}

// referencesParams indicates whether any identifier within node names a parameter.
func (t *translator) referencesParams(node *sitter.Node) bool {
	if node.Type() == "identifier" {
		return t.params[t.text(node)] != nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if t.referencesParams(node.NamedChild(i)) {
			return true
		}
	}
	return false
}

// ifStatement translates an if statement. Its elif and else clauses become a chain of nested conditionals.
func (t *translator) ifStatement(node *sitter.Node) syntax.Stmt {
	clauses := make([]*sitter.Node, 0)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "elif_clause" || child.Type() == "else_clause" {
			clauses = append(clauses, child)
		}
	}
	return t.conditional(node, node.ChildByFieldName("condition"), node.ChildByFieldName("consequence"), clauses)
}

// conditional translates one conditional of an if/elif/else chain, given the clauses which follow it.
func (t *translator) conditional(node *sitter.Node, condition *sitter.Node, consequence *sitter.Node, rest []*sitter.Node) syntax.Stmt {
	cond, condErr := t.expr(condition)
	if condErr != nil {
		return &syntax.Unsupported{Kind: condErr.kind + " in condition", Text: t.text(condErr.node), Position: position(condErr.node)}
	}
	if err := expr.TypeCheck(cond); err != nil || cond.Sort() != expr.SortBool {
		return &syntax.Unsupported{Kind: "ill-typed condition", Text: t.text(condition), Position: position(condition)}
	}

	stmt := &syntax.If{
		Cond:     cond,
		CondText: t.text(condition),
		Then:     t.block(consequence),
		Position: position(node),
	}
	if len(rest) > 0 {
		next := rest[0]
		if next.Type() == "else_clause" {
			stmt.Else = t.block(next.ChildByFieldName("body"))
		} else {
			stmt.Else = []syntax.Stmt{t.conditional(next, next.ChildByFieldName("condition"), next.ChildByFieldName("consequence"), rest[1:])}
		}
	}
	return stmt
}
