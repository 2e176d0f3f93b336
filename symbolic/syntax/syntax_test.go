package syntax

import (
	"math"
	"testing"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/stretchr/testify/assert"
)

// TestNewIntParam verifies that parameter ranges are the intersection of the type range and the integer width.
func TestNewIntParam(t *testing.T) {
	// Create the list of test cases
	testCases := []struct {
		typeText string
		signed   bool
		bits     int
		width    int
		min      int64
		max      int64
	}{
		{"int", true, 0, 16, math.MinInt16, math.MaxInt16},
		{"uint", false, 0, 16, 0, math.MaxInt16},
		{"int8", true, 8, 16, math.MinInt8, math.MaxInt8},
		{"uint8", false, 8, 16, 0, math.MaxUint8},
		{"int64", true, 64, 16, math.MinInt16, math.MaxInt16},
		{"uint64", false, 64, 64, 0, math.MaxInt64},
		{"int32", true, 32, 64, math.MinInt32, math.MaxInt32},
	}

	for _, tc := range testCases {
		p := NewIntParam("x", tc.typeText, tc.signed, tc.bits, tc.width)
		assert.EqualValues(t, expr.SortInt, p.Sort, tc.typeText)
		assert.EqualValues(t, tc.min, p.Min, tc.typeText)
		assert.EqualValues(t, tc.max, p.Max, tc.typeText)
	}
}

// TestParamRangeConstraint verifies the range constraints of integer and boolean parameters.
func TestParamRangeConstraint(t *testing.T) {
	p := NewIntParam("x", "int8", true, 8, 16)
	assert.EqualValues(t, "x >= -128 && x <= 127", p.RangeConstraint().String())
	assert.Nil(t, NewBoolParam("ok", "bool").RangeConstraint())
	assert.EqualValues(t, "12:4", Position{Line: 12, Column: 4}.String())
}
