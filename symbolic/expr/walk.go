package expr

// Inspect traverses e in depth-first order, calling f for each node. If f returns false, the children of that node
// are not visited.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch t := e.(type) {
	case *Arith:
		Inspect(t.X, f)
		Inspect(t.Y, f)
	case *Neg:
		Inspect(t.X, f)
	case *Wrap:
		Inspect(t.X, f)
	case *Compare:
		Inspect(t.X, f)
		Inspect(t.Y, f)
	case *Not:
		Inspect(t.X, f)
	case *Logic:
		for _, operand := range t.Operands {
			Inspect(operand, f)
		}
	}
}

// Vars returns the distinct variables referenced by e in order of first occurrence.
func Vars(e Expr) []*Var {
	seen := make(map[string]bool)
	vars := make([]*Var, 0)
	Inspect(e, func(n Expr) bool {
		if v, ok := n.(*Var); ok && !seen[v.Name] {
			seen[v.Name] = true
			vars = append(vars, v)
		}
		return true
	})
	return vars
}

// Size returns the number of nodes in e.
func Size(e Expr) int {
	count := 0
	Inspect(e, func(Expr) bool {
		count++
		return true
	})
	return count
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.Name == y.Name && x.Type == y.Type
	case *IntConst:
		y, ok := b.(*IntConst)
		return ok && x.Value == y.Value
	case *BoolConst:
		y, ok := b.(*BoolConst)
		return ok && x.Value == y.Value
	case *Arith:
		y, ok := b.(*Arith)
		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)
	case *Neg:
		y, ok := b.(*Neg)
		return ok && Equal(x.X, y.X)
	case *Wrap:
		y, ok := b.(*Wrap)
		return ok && x.Bits == y.Bits && x.Signed == y.Signed && Equal(x.X, y.X)
	case *Compare:
		y, ok := b.(*Compare)
		return ok && x.Op == y.Op && Equal(x.X, y.X) && Equal(x.Y, y.Y)
	case *Not:
		y, ok := b.(*Not)
		return ok && Equal(x.X, y.X)
	case *Logic:
		y, ok := b.(*Logic)
		if !ok || x.Op != y.Op || len(x.Operands) != len(y.Operands) {
			return false
		}
		for i := range x.Operands {
			if !Equal(x.Operands[i], y.Operands[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}
