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

// Sign contains a branch no input can take.
func Sign(x int) string {
	if x > 0 {
		if x < 0 {
			return "unreachable"
		}
		return "positive"
	}
	return "non-positive"
}

// Distance returns the distance between two points on a line.
func Distance(from, to int16) int32 {
	if from > to {
		return int32(from) - int32(to)
	}
	return int32(to) - int32(from)
}

// Offset shifts x by a flag-dependent amount.
func Offset(x int8, up bool) int {
	if up {
		return int(x) + 1
	}
	if x < -100 {
		return 0
	}
	return int(x) - 1
}

// Overflow branches on a sum which wraps around.
func Overflow(a, b int8) int {
	if a+b > 100 {
		return 1
	}
	if a+b < -100 {
		return 2
	}
	return 0
}

// Decrement has a branch only reachable when the difference wraps below zero.
func Decrement(n uint8) string {
	if n-1 == 255 {
		return "wrapped"
	}
	return "decremented"
}

// Countdown contains a loop.
func Countdown(n int) int {
	for n > 0 {
		n--
	}
	return n
}
