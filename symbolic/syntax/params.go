package syntax

import (
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/utils"
)

// NewIntParam creates an integer parameter whose range is that of its declared type, restricted to what a signed
// integer of intWidth bits can hold. A bits value of zero denotes a type without a fixed width, whose range is the
// intWidth range alone.
func NewIntParam(name string, typeText string, signed bool, bits int, intWidth int) Param {
	min, max := utils.GetInt64Constraints(true, intWidth)
	if bits > 0 {
		typeMin, typeMax := utils.GetInt64Constraints(signed, bits)
		min, max = maxInt64(min, typeMin), minInt64(max, typeMax)
	} else if !signed {
		min = 0
	}
	return Param{Name: name, Sort: expr.SortInt, TypeText: typeText, Min: min, Max: max}
}

// NewBoolParam creates a boolean parameter.
func NewBoolParam(name string, typeText string) Param {
	return Param{Name: name, Sort: expr.SortBool, TypeText: typeText}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
