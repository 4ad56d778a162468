package config

import (
	"sync/atomic"
	"time"
)

// TieBreakRule identifies a single rule in the similarity-recovery
// tie-break order.
type TieBreakRule string

const (
	TieBreakSignature TieBreakRule = "signature"
	TieBreakNearest   TieBreakRule = "nearest"
	TieBreakNewest    TieBreakRule = "newest"
)

// DomainConfig holds tunable business rules for selection recovery
// and command history.
type DomainConfig struct {
	// Recovery settings
	RecoveryTolerance float64        // max positional distance for a recovery candidate
	SignatureGrid     float64        // rounding grid applied to positions inside signatures
	TieBreakOrder     []TieBreakRule // applied in order until a single candidate remains

	// History constraints
	MaxHistorySize int

	// Workflow lifecycle
	WorkflowTTL   time.Duration
	SweepInterval time.Duration

	// Coordinate bounds
	MaxCoordinate float64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Recovery settings
		RecoveryTolerance: 25.0,
		SignatureGrid:     10.0,
		TieBreakOrder:     []TieBreakRule{TieBreakSignature, TieBreakNearest, TieBreakNewest},

		// History constraints
		MaxHistorySize: 200,

		// Workflow lifecycle
		WorkflowTTL:   10 * time.Minute,
		SweepInterval: time.Minute,

		// Coordinate bounds
		MaxCoordinate: 100000,
	}
}

// Store holds the live domain configuration behind an atomic pointer so a
// hot reload can swap it while managers keep reading. Current returns an
// immutable snapshot; callers wanting fresh values re-read per operation.
type Store struct {
	current atomic.Pointer[DomainConfig]
}

// NewStore creates a store seeded with the given configuration. Nil falls
// back to the defaults.
func NewStore(cfg *DomainConfig) *Store {
	if cfg == nil {
		cfg = DefaultDomainConfig()
	}
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Current returns the active configuration snapshot
func (s *Store) Current() *DomainConfig {
	return s.current.Load()
}

// Update swaps in a new configuration. Nil updates are ignored.
func (s *Store) Update(next *DomainConfig) {
	if next == nil {
		return
	}
	s.current.Store(next)
}
