package selection

import (
	"context"
	"sort"

	"canvascore/application/ports"
	"canvascore/domain/config"
	"canvascore/domain/core/entities"
)

// Recovery strategy names, recorded on events and metrics
const (
	StrategyDirect    = "direct"
	StrategyMapped    = "mapped"
	StrategyRecovered = "recovered"
	StrategyDropped   = "dropped"
)

// recoveryResult is the outcome of re-identifying one snapshot member
type recoveryResult struct {
	entity    *entities.Entity
	strategy  string
	ambiguous bool
	// candidates counts how many look-alikes survived the proximity filter
	candidates int
	// rule names the tie-break rule that settled an ambiguous recovery
	rule config.TieBreakRule
}

// recoverer runs the similarity heuristic: filter live entities by
// (kind, layer) equality and positional proximity, then break ties by the
// configured policy. The tie-break order is a heuristic, not a contract,
// so it stays isolated here and is swappable through DomainConfig.
type recoverer struct {
	store ports.GraphStore
	cfg   *config.Store
}

// recover attempts similarity recovery for one original member described by
// meta. Entities whose ids are in taken are already claimed by another
// member of the same resolution pass and are excluded.
func (r *recoverer) recover(ctx context.Context, meta RecoveryMetadata, taken map[string]struct{}) (recoveryResult, bool) {
	cfg := r.cfg.Current()
	live, err := r.store.FindByKindAndLayer(ctx, meta.Kind, meta.LayerID)
	if err != nil {
		return recoveryResult{}, false
	}

	candidates := make([]*entities.Entity, 0, len(live))
	for _, e := range live {
		if _, claimed := taken[e.ID().String()]; claimed {
			continue
		}
		if meta.Transform.DistanceTo(e.Transform()) <= cfg.RecoveryTolerance {
			candidates = append(candidates, e)
		}
	}

	switch len(candidates) {
	case 0:
		return recoveryResult{}, false
	case 1:
		return recoveryResult{
			entity:     candidates[0],
			strategy:   StrategyRecovered,
			candidates: 1,
		}, true
	}

	chosen, rule := r.breakTie(cfg, meta, candidates)
	return recoveryResult{
		entity:     chosen,
		strategy:   StrategyRecovered,
		ambiguous:  true,
		candidates: len(candidates),
		rule:       rule,
	}, true
}

// breakTie narrows multiple candidates down to one, applying the configured
// rules in order and stopping as soon as a single candidate remains.
func (r *recoverer) breakTie(cfg *config.DomainConfig, meta RecoveryMetadata, candidates []*entities.Entity) (*entities.Entity, config.TieBreakRule) {
	remaining := candidates
	var lastRule config.TieBreakRule

	for _, rule := range cfg.TieBreakOrder {
		lastRule = rule
		switch rule {
		case config.TieBreakSignature:
			matched := make([]*entities.Entity, 0, len(remaining))
			for _, e := range remaining {
				if e.Signature(cfg.SignatureGrid).Equals(meta.Signature) {
					matched = append(matched, e)
				}
			}
			if len(matched) > 0 {
				remaining = matched
			}
		case config.TieBreakNearest:
			sort.SliceStable(remaining, func(i, j int) bool {
				return meta.Transform.DistanceTo(remaining[i].Transform()) <
					meta.Transform.DistanceTo(remaining[j].Transform())
			})
			remaining = remaining[:1]
		case config.TieBreakNewest:
			sort.SliceStable(remaining, func(i, j int) bool {
				return remaining[i].CreatedAt().After(remaining[j].CreatedAt())
			})
			remaining = remaining[:1]
		}
		if len(remaining) == 1 {
			return remaining[0], lastRule
		}
	}

	// Policy exhausted without converging; take the first survivor
	return remaining[0], lastRule
}
