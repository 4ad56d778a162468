package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvascore/domain/core/valueobjects"
)

func mustTransform(t *testing.T, x, y float64) valueobjects.Transform {
	t.Helper()
	tr, err := valueobjects.NewTransformAt(x, y)
	require.NoError(t, err)
	return tr
}

func TestNewEntity(t *testing.T) {
	tr := mustTransform(t, 10, 10)

	tests := []struct {
		name    string
		kind    EntityKind
		layerID string
		wantErr bool
	}{
		{name: "valid image", kind: KindImage, layerID: "layer-1"},
		{name: "valid group", kind: KindGroup, layerID: "layer-2"},
		{name: "unknown kind", kind: EntityKind("video"), layerID: "layer-1", wantErr: true},
		{name: "empty layer", kind: KindText, layerID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntity(tt.kind, tt.layerID, tr, map[string]string{"fill": "#fff"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, e.ID().IsZero())
			assert.Equal(t, tt.kind, e.Kind())
			assert.Equal(t, tt.layerID, e.LayerID())
			assert.Equal(t, 1, e.Version())
		})
	}
}

func TestEntity_StyleEncapsulation(t *testing.T) {
	e, err := NewEntity(KindShape, "layer-1", mustTransform(t, 0, 0), map[string]string{"fill": "#fff"})
	require.NoError(t, err)

	// Mutating the returned map must not leak into the entity
	style := e.Style()
	style["fill"] = "#000"

	v, ok := e.StyleValue("fill")
	assert.True(t, ok)
	assert.Equal(t, "#fff", v)
}

func TestEntity_SetTransform(t *testing.T) {
	e, err := NewEntity(KindImage, "layer-1", mustTransform(t, 0, 0), nil)
	require.NoError(t, err)

	v1 := e.Version()
	e.SetTransform(mustTransform(t, 5, 5))
	assert.Equal(t, 5.0, e.Transform().X())
	assert.Equal(t, v1+1, e.Version())

	// Setting an equal transform is a no-op
	e.SetTransform(mustTransform(t, 5, 5))
	assert.Equal(t, v1+1, e.Version())
}

func TestEntity_MoveToLayer(t *testing.T) {
	e, err := NewEntity(KindText, "layer-1", mustTransform(t, 0, 0), nil)
	require.NoError(t, err)

	require.NoError(t, e.MoveToLayer("layer-2"))
	assert.Equal(t, "layer-2", e.LayerID())

	assert.Error(t, e.MoveToLayer(""))

	// Same layer is a no-op
	v := e.Version()
	require.NoError(t, e.MoveToLayer("layer-2"))
	assert.Equal(t, v, e.Version())
}

func TestEntity_CloneIsDeep(t *testing.T) {
	e, err := NewEntity(KindImage, "layer-1", mustTransform(t, 10, 10), map[string]string{"fill": "#abc"})
	require.NoError(t, err)

	c := e.Clone()
	require.NoError(t, c.SetStyleValue("fill", "#000"))

	v, _ := e.StyleValue("fill")
	assert.Equal(t, "#abc", v)
	assert.True(t, e.ID().Equals(c.ID()))
}

func TestEntity_StateEquals(t *testing.T) {
	e, err := NewEntity(KindImage, "layer-1", mustTransform(t, 10, 10), map[string]string{"fill": "#abc"})
	require.NoError(t, err)

	clone := e.Clone()
	assert.True(t, e.StateEquals(clone))

	clone.SetTransform(mustTransform(t, 11, 10))
	assert.False(t, e.StateEquals(clone))

	assert.False(t, e.StateEquals(nil))
}

func TestEntity_SignatureIgnoresID(t *testing.T) {
	tr := mustTransform(t, 10, 10)
	a, err := NewEntity(KindImage, "layer-1", tr, map[string]string{"fill": "#abc"})
	require.NoError(t, err)
	b, err := NewEntity(KindImage, "layer-1", tr, map[string]string{"fill": "#abc"})
	require.NoError(t, err)

	assert.False(t, a.ID().Equals(b.ID()))
	assert.True(t, a.Signature(10).Equals(b.Signature(10)))
}

func TestReconstructEntity(t *testing.T) {
	src, err := NewEntity(KindShape, "layer-1", mustTransform(t, 1, 2), map[string]string{"stroke": "1px"})
	require.NoError(t, err)

	rebuilt, err := ReconstructEntity(
		src.ID(), src.Kind(), src.LayerID(), src.Transform(), src.Style(),
		src.CreatedAt(), src.UpdatedAt(), src.Version(),
	)
	require.NoError(t, err)
	assert.True(t, src.StateEquals(rebuilt))
	assert.Equal(t, src.CreatedAt(), rebuilt.CreatedAt())
	assert.Equal(t, src.Version(), rebuilt.Version())

	_, err = ReconstructEntity(valueobjects.EntityID{}, KindShape, "l", src.Transform(), nil, src.CreatedAt(), src.UpdatedAt(), 1)
	assert.Error(t, err)
}
