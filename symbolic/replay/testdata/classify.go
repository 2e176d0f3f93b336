package main

import "fmt"

func main() {
	fmt.Println(Classify(1))
}

// Classify buckets an integer.
func Classify(x int) string {
	if x > 10 {
		return "big"
	}
	if x < 0 {
		return "negative"
	}
	return "small"
}

// Split returns the magnitude of its input with the flag it was given.
func Split(x int8, neg bool) (int8, bool) {
	if neg {
		return -x, true
	}
	return x, false
}

// Broken panics on one input.
func Broken(x int) int {
	if x == 3 {
		panic("three")
	}
	return x
}
