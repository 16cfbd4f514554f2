// Package embedding holds helpers shared by the embedding provider
// adapters.
package embedding

import "math"

// Normalize scales a vector to unit length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector
}

// ToFloat32 converts an API float64 vector to float32.
func ToFloat32(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}
