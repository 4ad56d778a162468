package valueobjects

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// Signature is a structural fingerprint used to recognize "the same" entity
// after it has been deleted and replaced by a look-alike. It is derived from
// attributes that survive replacement (kind, layer, approximate position,
// style content) and deliberately excludes the entity id.
//
// Two entities sharing a signature are candidates for identity equivalence,
// never a proof: collisions are broken by proximity heuristics.
type Signature struct {
	value string
}

// ComputeSignature derives a signature from an entity's structural attributes.
// Positions are rounded to the given grid so that sub-grid jitter introduced
// by a replacement does not change the fingerprint. A grid of zero or less
// falls back to whole-unit rounding.
func ComputeSignature(kind string, layerID string, transform Transform, style map[string]string, grid float64) Signature {
	if grid <= 0 {
		grid = 1
	}
	gx := math.Round(transform.X()/grid) * grid
	gy := math.Round(transform.Y()/grid) * grid

	// %g keeps sub-unit grid cells distinct (10 vs 10.5 with a 0.5 grid)
	return Signature{value: fmt.Sprintf("%s|%s|%g,%g|%016x", kind, layerID, gx, gy, hashStyle(style))}
}

// String returns the signature's string form
func (s Signature) String() string {
	return s.value
}

// Equals checks if two signatures are identical
func (s Signature) Equals(other Signature) bool {
	return s.value == other.value
}

// IsZero checks if the signature is unset
func (s Signature) IsZero() bool {
	return s.value == ""
}

// hashStyle produces a deterministic hash over style pairs, independent
// of map iteration order.
func hashStyle(style map[string]string) uint64 {
	if len(style) == 0 {
		return 0
	}

	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(style[k]))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
