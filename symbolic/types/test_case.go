package types

import (
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
)

// InputValue is the concrete value of one input parameter.
type InputValue struct {
	// Name is the parameter name.
	Name string `json:"name" yaml:"name" cbor:"name"`

	// Value is the concrete value of the parameter.
	Value expr.Value `json:"value" yaml:"value" cbor:"value"`
}

// TestCase is a concrete input tuple which drives the target function down one path, together with the outcome it is
// expected to reach.
type TestCase struct {
	// PathID is the identifier of the path this test case targets.
	PathID int `json:"pathId" yaml:"pathId" cbor:"pathId"`

	// Inputs are the input values, in parameter declaration order.
	Inputs []InputValue `json:"inputs" yaml:"inputs" cbor:"inputs"`

	// Outcome is the label of the return the inputs are expected to reach.
	Outcome string `json:"outcome" yaml:"outcome" cbor:"outcome"`

	// Expected is the value the outcome evaluates to under the inputs, if the returned expression could be
	// translated.
	Expected *expr.Value `json:"expected,omitempty" yaml:"expected,omitempty" cbor:"expected,omitempty"`

	// Condition is the path condition the inputs satisfy.
	Condition string `json:"condition" yaml:"condition" cbor:"condition"`

	// DuplicateOf lists the identifiers of other paths whose test cases have identical inputs. Such test cases are
	// kept, as they target logically different paths.
	DuplicateOf []int `json:"duplicateOf,omitempty" yaml:"duplicateOf,omitempty" cbor:"duplicateOf,omitempty"`
}

// Assignment returns the inputs of the test case as an assignment.
func (tc *TestCase) Assignment() expr.Assignment {
	a := make(expr.Assignment, len(tc.Inputs))
	for _, input := range tc.Inputs {
		a[input.Name] = input.Value
	}
	return a
}

// InputTuple returns the inputs in a "name=value, ..." form.
func (tc *TestCase) InputTuple() string {
	parts := make([]string, len(tc.Inputs))
	for i, input := range tc.Inputs {
		parts[i] = input.Name + "=" + input.Value.String()
	}
	return strings.Join(parts, ", ")
}

// IsDuplicate indicates whether another test case shares this test case's inputs.
func (tc *TestCase) IsDuplicate() bool {
	return len(tc.DuplicateOf) > 0
}
