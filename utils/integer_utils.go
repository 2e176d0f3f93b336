package utils

import (
	"math"
	"math/big"
)

// GetIntegerConstraints takes a bit length and signedness and returns the minimum and maximum values (inclusive) an
// integer of that shape can hold.
func GetIntegerConstraints(signed bool, bitLength int) (*big.Int, *big.Int) {
	if signed {
		// Signed integers range over [-2^(n-1), 2^(n-1) - 1]
		max := new(big.Int).Lsh(big.NewInt(1), uint(bitLength-1))
		min := new(big.Int).Neg(max)
		max.Sub(max, big.NewInt(1))
		return min, max
	}

	// Unsigned integers range over [0, 2^n - 1]
	max := new(big.Int).Lsh(big.NewInt(1), uint(bitLength))
	max.Sub(max, big.NewInt(1))
	return big.NewInt(0), max
}

// GetInt64Constraints returns the same bounds as GetIntegerConstraints, clamped to the range of an int64.
func GetInt64Constraints(signed bool, bitLength int) (int64, int64) {
	min, max := GetIntegerConstraints(signed, bitLength)
	return clampToInt64(min), clampToInt64(max)
}

// clampToInt64 converts b to an int64, saturating at the bounds of the type.
func clampToInt64(b *big.Int) int64 {
	if b.IsInt64() {
		return b.Int64()
	}
	if b.Sign() < 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// BitLengthSigned returns the number of bits required to represent v in two's complement.
func BitLengthSigned(v int64) int {
	if v < 0 {
		// The magnitude of ^v is one less than that of v, which is what two's complement needs
		return new(big.Int).Not(big.NewInt(v)).BitLen() + 1
	}
	return big.NewInt(v).BitLen() + 1
}
