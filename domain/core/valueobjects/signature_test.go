package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSignature_Deterministic(t *testing.T) {
	tr, err := NewTransform(12, 17, 100, 50, 0)
	require.NoError(t, err)

	style := map[string]string{"fill": "#ff0000", "opacity": "0.5"}

	s1 := ComputeSignature("image", "layer-1", tr, style, 10)
	s2 := ComputeSignature("image", "layer-1", tr, map[string]string{"opacity": "0.5", "fill": "#ff0000"}, 10)

	assert.True(t, s1.Equals(s2), "signature must not depend on style map order")
	assert.False(t, s1.IsZero())
}

func TestComputeSignature_PositionRounding(t *testing.T) {
	near1, _ := NewTransformAt(12, 17)
	near2, _ := NewTransformAt(8, 21)
	far, _ := NewTransformAt(52, 17)

	s1 := ComputeSignature("image", "layer-1", near1, nil, 10)
	s2 := ComputeSignature("image", "layer-1", near2, nil, 10)
	s3 := ComputeSignature("image", "layer-1", far, nil, 10)

	// Both round to the same grid cell
	assert.True(t, s1.Equals(s2))
	assert.False(t, s1.Equals(s3))
}

func TestComputeSignature_Discriminators(t *testing.T) {
	tr, _ := NewTransformAt(10, 10)

	base := ComputeSignature("image", "layer-1", tr, nil, 10)

	tests := []struct {
		name string
		sig  Signature
	}{
		{"different kind", ComputeSignature("text", "layer-1", tr, nil, 10)},
		{"different layer", ComputeSignature("image", "layer-2", tr, nil, 10)},
		{"different style", ComputeSignature("image", "layer-1", tr, map[string]string{"fill": "#000"}, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, base.Equals(tt.sig))
		})
	}
}

func TestComputeSignature_FineGridKeepsCellsDistinct(t *testing.T) {
	cellA, _ := NewTransformAt(10.0, 10.0)
	cellB, _ := NewTransformAt(10.5, 10.0)
	sameAsA, _ := NewTransformAt(10.2, 10.1)

	s1 := ComputeSignature("image", "layer-1", cellA, nil, 0.5)
	s2 := ComputeSignature("image", "layer-1", cellB, nil, 0.5)
	s3 := ComputeSignature("image", "layer-1", sameAsA, nil, 0.5)

	// Adjacent sub-unit cells must not collapse into one fingerprint
	assert.False(t, s1.Equals(s2))
	assert.True(t, s1.Equals(s3))
}

func TestComputeSignature_ZeroGridFallsBack(t *testing.T) {
	tr, _ := NewTransformAt(10.4, 10.4)
	trNear, _ := NewTransformAt(10.1, 9.8)

	s1 := ComputeSignature("shape", "l", tr, nil, 0)
	s2 := ComputeSignature("shape", "l", trNear, nil, 0)

	assert.True(t, s1.Equals(s2))
}
