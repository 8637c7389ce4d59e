// Package roster seeds a franchise's fighters the first time the franchise
// is created, or whenever its persisted roster is absent or corrupt.
package roster

import (
	"fmt"

	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/gamedata"
	"github.com/samdwyer/glassfist/internal/rng"
)

// Generator produces the starting roster for a franchise.
type Generator interface {
	Generate(franchiseID string) ([]entity.Fighter, error)
}

// Curated returns the fixed historical-style pool used in single-party mode.
type Curated struct {
	pool []entity.Fighter
}

// NewCurated creates a generator over the given pool.
func NewCurated(pool []entity.Fighter) *Curated {
	return &Curated{pool: pool}
}

// LoadCurated creates a generator over the embedded fighters.json pool.
func LoadCurated() (*Curated, error) {
	pool, err := gamedata.LoadFighterPool()
	if err != nil {
		return nil, err
	}
	return NewCurated(pool), nil
}

// Generate returns a deep copy of the pool. The franchise id is ignored:
// the curated pool keeps its own ids and the result is always the same.
func (c *Curated) Generate(string) ([]entity.Fighter, error) {
	if len(c.pool) == 0 {
		return nil, fmt.Errorf("curated pool is empty")
	}
	out := make([]entity.Fighter, len(c.pool))
	for i := range c.pool {
		out[i] = c.pool[i].Clone()
	}
	return out, nil
}

// Procedural stat ranges (inclusive).
const (
	ProceduralStatMin  = 60
	ProceduralStatMax  = 72
	ProceduralReachMin = 66
	ProceduralReachMax = 74

	proceduralWeightClass = "Welterweight"
)

// Procedural synthesizes one rookie per style, used in dual-party mode.
type Procedural struct {
	rng rng.Source
}

// NewProcedural creates a procedural generator drawing from src.
func NewProcedural(src rng.Source) *Procedural {
	return &Procedural{rng: src}
}

// Generate returns three fighters (outboxer, slugger, swarmer) with ids
// "<franchiseID>-F1".."-F3" and stats in the procedural range.
func (p *Procedural) Generate(franchiseID string) ([]entity.Fighter, error) {
	if franchiseID == "" {
		return nil, fmt.Errorf("franchise id is required")
	}

	styles := entity.Styles()
	out := make([]entity.Fighter, 0, len(styles))
	for i, style := range styles {
		id := fmt.Sprintf("%s-F%d", franchiseID, i+1)
		f := entity.Fighter{
			ID:          id,
			Name:        "Rookie " + id,
			Style:       style,
			WeightClass: proceduralWeightClass,
			Level:       1,
		}
		for _, s := range entity.BoundedStats() {
			// RaiseStat from zero sets the stat to the drawn value.
			f.RaiseStat(s, rng.Between(p.rng, ProceduralStatMin, ProceduralStatMax))
		}
		f.Reach = rng.Between(p.rng, ProceduralReachMin, ProceduralReachMax)
		out = append(out, f)
	}
	return out, nil
}
