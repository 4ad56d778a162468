package valueobjects

import (
	"math"

	pkgerrors "canvascore/pkg/errors"
)

// Transform is a value object describing an entity's placement on the canvas:
// position of the top-left corner, bounding size, and rotation in degrees.
type Transform struct {
	x        float64
	y        float64
	width    float64
	height   float64
	rotation float64
}

// NewTransform creates a transform with validation
func NewTransform(x, y, width, height, rotation float64) (Transform, error) {
	for _, v := range []float64{x, y, width, height, rotation} {
		if !isFinite(v) {
			return Transform{}, pkgerrors.NewValidation("transform values must be finite numbers")
		}
	}
	if width < 0 || height < 0 {
		return Transform{}, pkgerrors.NewValidation("width and height cannot be negative")
	}
	return Transform{x: x, y: y, width: width, height: height, rotation: rotation}, nil
}

// NewTransformAt creates a zero-size transform at the given position
func NewTransformAt(x, y float64) (Transform, error) {
	return NewTransform(x, y, 0, 0, 0)
}

// X returns the X coordinate
func (t Transform) X() float64 {
	return t.x
}

// Y returns the Y coordinate
func (t Transform) Y() float64 {
	return t.y
}

// Width returns the bounding width
func (t Transform) Width() float64 {
	return t.width
}

// Height returns the bounding height
func (t Transform) Height() float64 {
	return t.height
}

// Rotation returns the rotation in degrees
func (t Transform) Rotation() float64 {
	return t.rotation
}

// DistanceTo calculates the Euclidean distance between two transform positions
func (t Transform) DistanceTo(other Transform) float64 {
	dx := t.x - other.x
	dy := t.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two transforms are equal
func (t Transform) Equals(other Transform) bool {
	const epsilon = 1e-9
	return math.Abs(t.x-other.x) < epsilon &&
		math.Abs(t.y-other.y) < epsilon &&
		math.Abs(t.width-other.width) < epsilon &&
		math.Abs(t.height-other.height) < epsilon &&
		math.Abs(t.rotation-other.rotation) < epsilon
}

// Translate moves the transform by the given offsets
func (t Transform) Translate(dx, dy float64) (Transform, error) {
	return NewTransform(t.x+dx, t.y+dy, t.width, t.height, t.rotation)
}

// WithSize returns a copy of the transform with a new bounding size
func (t Transform) WithSize(width, height float64) (Transform, error) {
	return NewTransform(t.x, t.y, width, height, t.rotation)
}

// isFinite checks if a value is a valid finite number
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
