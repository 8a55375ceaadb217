package vector

import "math"

// Norm returns the Euclidean length of x.
func Norm(x []float32) float64 {
	return math.Sqrt(dot(x, x))
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// CosineSimilarity returns the cosine of the angle between a and b. Vectors
// of different length, or with a zero vector among them, score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosine(a, b, Norm(a), Norm(b))
}

// cosine scores a against b given both lengths, so stored vectors need their
// length computed only once.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}
