package targets

// Triangle classifies a triangle by its side lengths.
func Triangle(a, b, c int) string {
	if a == b {
		if b == c {
			return "equilateral"
		}
		return "isosceles"
	}
	if b == c || a == c {
		return "isosceles"
	}
	return "scalene"
}

// Sign has a path which no input can reach.
func Sign(x int) string {
	if x > 0 {
		if x < 0 {
			return "impossible"
		}
		return "positive"
	}
	return "non-positive"
}

// Clamp returns values which depend on its inputs.
func Clamp(x int8, limit int8, enabled bool) int8 {
	if !enabled {
		return x
	}
	if x > limit {
		return limit
	} else if x < -limit {
		return -limit
	}
	{
	}
	return x
}

// Sum contains a loop.
func Sum(n int) int {
	if n < 0 {
		return 0
	}
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}
	return total
}

// Even uses an operator outside the supported subset.
func Even(n int) bool {
	if n%2 == 0 {
		return true
	}
	return false
}

// Grade calls a function as a statement.
func Grade(score uint8, bonus bool) {
	if score+10 >= 90 && bonus {
		println("A")
	}
}

// Scale takes an unsupported parameter type.
func Scale(x float64) float64 {
	return x
}
