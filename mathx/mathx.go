// Package mathx provides small float helpers shared by the scan generators.
package mathx

import "math"

// Tol is the tolerance below which a step or span is treated as zero
const Tol = 1e-12

// Round rounds a float to the nearest "unit" (0.1 for tenth, 0.01 for hundredth, and so on).
func Round(x, unit float64) float64 {
	return math.Round(x/unit) * unit
}

// IsZero returns true if |x| is below Tol
func IsZero(x float64) bool {
	return math.Abs(x) < Tol
}

// Sign returns -1, 0, or 1 according to the sign of x
func Sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Greater2n returns the smallest power of two that is >= n.
// n <= 1 returns 1.
func Greater2n(n int) int {
	out := 1
	for out < n {
		out <<= 1
	}
	return out
}

// Odd returns true if i is odd
func Odd(i int) bool {
	return i%2 != 0
}
