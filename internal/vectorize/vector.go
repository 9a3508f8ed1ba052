package vectorize

import "math"

// Vector is a sparse document vector mapping vocabulary index to weight.
// Absent indices are zero.
type Vector map[int]float64

// Dot returns the dot product of two vectors.
func (v Vector) Dot(o Vector) float64 {
	// Iterate the smaller map.
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for i, w := range v {
		sum += w * o[i]
	}
	return sum
}

// Norm returns the Euclidean norm of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// IsZero reports whether the vector has no non-zero components.
func (v Vector) IsZero() bool {
	for _, w := range v {
		if w != 0 {
			return false
		}
	}
	return true
}

// Normalize scales the vector to unit length in place. Zero vectors are
// left untouched.
func (v Vector) Normalize() {
	n := v.Norm()
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	for i, w := range v {
		c[i] = w
	}
	return c
}
