package las

import (
	"fmt"
	"math"
)

// Transform is the fixed-point quantization for one axis: a stored integer n
// maps to the real-world coordinate n*Scale + Offset.
type Transform struct {
	Scale  float64
	Offset float64
}

// DefaultTransform returns the identity quantization (scale 1, offset 0).
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// Validate returns ErrInvalidScale unless the scale is strictly positive.
func (t Transform) Validate() error {
	if !(t.Scale > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidScale, t.Scale)
	}
	return nil
}

// Real converts a stored integer to a real-world coordinate.
func (t Transform) Real(n int32) float64 {
	return float64(n)*t.Scale + t.Offset
}

// Raw converts a real-world coordinate to its stored integer, rounding half
// away from zero. Truncating here instead would bias coordinates toward zero
// and corrupt bounds for negative values.
func (t Transform) Raw(x float64) int32 {
	return int32(math.Round((x - t.Offset) / t.Scale))
}

// Transforms holds the per-axis quantizations from the header.
type Transforms struct {
	X, Y, Z Transform
}

// DefaultTransforms returns identity quantization on all three axes.
func DefaultTransforms() Transforms {
	return Transforms{DefaultTransform(), DefaultTransform(), DefaultTransform()}
}

// Validate checks all three scales.
func (t Transforms) Validate() error {
	for _, axis := range []Transform{t.X, t.Y, t.Z} {
		if err := axis.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Vector is an x/y/z triple of real-world coordinates.
type Vector struct {
	X, Y, Z float64
}

// Bounds is an axis-aligned box over real-world coordinates.
type Bounds struct {
	Min Vector
	Max Vector
}

// emptyBounds is the identity for Grow: any grown point becomes both min and
// max.
func emptyBounds() Bounds {
	return Bounds{
		Min: Vector{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Vector{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// Grow expands the bounds to contain v.
func (b *Bounds) Grow(v Vector) {
	b.Min.X = math.Min(b.Min.X, v.X)
	b.Min.Y = math.Min(b.Min.Y, v.Y)
	b.Min.Z = math.Min(b.Min.Z, v.Z)
	b.Max.X = math.Max(b.Max.X, v.X)
	b.Max.Y = math.Max(b.Max.Y, v.Y)
	b.Max.Z = math.Max(b.Max.Z, v.Z)
}

// IsEmpty reports whether no point has been grown into the bounds.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X
}
