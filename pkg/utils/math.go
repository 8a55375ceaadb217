package utils

import "math"

// NormalizeL2 scales x in place to unit length and returns its length before
// scaling. A zero vector is left as is and 0 is returned.
func NormalizeL2(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return 0
	}
	n := math.Sqrt(sum)
	inv := float32(1 / n)
	for i := range x {
		x[i] *= inv
	}
	return n
}
