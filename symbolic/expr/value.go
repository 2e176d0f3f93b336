package expr

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Value is a concrete integer or boolean value.
type Value struct {
	// Sort describes which of the value fields is meaningful.
	Sort Sort

	// Int holds the value when Sort is SortInt.
	Int int64

	// Bool holds the value when Sort is SortBool.
	Bool bool
}

// IntValue returns an integer Value.
func IntValue(v int64) Value {
	return Value{Sort: SortInt, Int: v}
}

// BoolValue returns a boolean Value.
func BoolValue(v bool) Value {
	return Value{Sort: SortBool, Bool: v}
}

// ZeroValue returns the zero Value of the given sort.
func ZeroValue(sort Sort) Value {
	return Value{Sort: sort}
}

// String returns the literal form of the value.
func (v Value) String() string {
	if v.Sort == SortBool {
		return strconv.FormatBool(v.Bool)
	}
	return strconv.FormatInt(v.Int, 10)
}

// Any returns the value as an int64 or a bool.
func (v Value) Any() any {
	if v.Sort == SortBool {
		return v.Bool
	}
	return v.Int
}

// MarshalJSON encodes the value as a bare JSON number or boolean.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Sort == SortBool {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Int)
}

// UnmarshalJSON decodes a bare JSON number or boolean.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.WithStack(err)
	}
	switch t := raw.(type) {
	case bool:
		*v = BoolValue(t)
	case float64:
		i, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return errors.Errorf("value %s is not an integer", string(b))
		}
		*v = IntValue(i)
	default:
		return errors.Errorf("unsupported value %s", string(b))
	}
	return nil
}

// MarshalYAML encodes the value as a YAML scalar.
func (v Value) MarshalYAML() (any, error) {
	return v.Any(), nil
}

// UnmarshalYAML decodes a YAML boolean or integer scalar.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if node.Tag == "!!bool" {
		if err := node.Decode(&b); err != nil {
			return errors.WithStack(err)
		}
		*v = BoolValue(b)
		return nil
	}
	var i int64
	if err := node.Decode(&i); err != nil {
		return errors.Wrapf(err, "value %q is not an integer or boolean", node.Value)
	}
	*v = IntValue(i)
	return nil
}

// Assignment maps input variable names to concrete values.
type Assignment map[string]Value

// Lookup returns the value of the named variable, or an error if it is not assigned or has the wrong sort.
func (a Assignment) Lookup(name string, sort Sort) (Value, error) {
	v, ok := a[name]
	if !ok {
		return Value{}, fmt.Errorf("variable %q is not assigned", name)
	}
	if v.Sort != sort {
		return Value{}, fmt.Errorf("variable %q is assigned a %v value but is used as %v", name, v.Sort, sort)
	}
	return v, nil
}

// Clone returns a shallow copy of the assignment.
func (a Assignment) Clone() Assignment {
	c := make(Assignment, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}
