// Package vector provides small utilities for embedding vectors (L2 normalization, dimension checks).
package vector

import "math"

// NormalizeL2 takes a raw embedding vector and normalizes it to a length of 1.
// It modifies the slice in-place. A zero vector is left unchanged.
func NormalizeL2(v []float32) {
	var sumSquares float64

	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	if sumSquares == 0 {
		return
	}

	magnitude := math.Sqrt(sumSquares)

	for i := range v {
		v[i] = float32(float64(v[i]) / magnitude)
	}
}

// SameDimensions reports whether every vector in vs has length dim.
func SameDimensions(dim int, vs ...[]float32) bool {
	for _, v := range vs {
		if len(v) != dim {
			return false
		}
	}

	return true
}
