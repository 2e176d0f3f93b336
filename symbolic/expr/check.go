package expr

import "github.com/pkg/errors"

// TypeCheck verifies that every operator in e is applied to operands of the sorts it is defined on.
func TypeCheck(e Expr) error {
	var err error
	Inspect(e, func(n Expr) bool {
		if err != nil {
			return false
		}
		switch t := n.(type) {
		case *Arith:
			if t.X.Sort() != SortInt || t.Y.Sort() != SortInt {
				err = errors.Errorf("operator %v requires integer operands in %v", t.Op, t)
			}
		case *Neg:
			if t.X.Sort() != SortInt {
				err = errors.Errorf("negation requires an integer operand in %v", t)
			}
		case *Wrap:
			if t.X.Sort() != SortInt {
				err = errors.Errorf("%v conversion requires an integer operand in %v", t.TypeName(), t)
			} else if t.Bits < 1 || t.Bits > 64 {
				err = errors.Errorf("integer width %d is outside 1 to 64 bits", t.Bits)
			}
		case *Compare:
			if t.X.Sort() != t.Y.Sort() {
				err = errors.Errorf("comparison mixes %v and %v operands in %v", t.X.Sort(), t.Y.Sort(), t)
			} else if t.X.Sort() == SortBool && t.Op != OpEq && t.Op != OpNe {
				err = errors.Errorf("operator %v is not defined on booleans in %v", t.Op, t)
			}
		case *Not:
			if t.X.Sort() != SortBool {
				err = errors.Errorf("logical not requires a boolean operand in %v", t)
			}
		case *Logic:
			for _, operand := range t.Operands {
				if operand.Sort() != SortBool {
					err = errors.Errorf("operator %v requires boolean operands in %v", t.Op, t)
					break
				}
			}
		}
		return err == nil
	})
	return err
}
