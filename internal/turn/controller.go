// Package turn holds the two-party turn controller.
package turn

// =============================================================================
// TURN STATE MACHINE
// =============================================================================
//
//     ActiveA --EndTurn(A)--> ActiveB --EndTurn(B)--> ActiveA ...
//
// There is no terminal state. Any call made by the inactive party is
// rejected with NOT_YOUR_TURN and changes nothing.
//
// Season:
// -------
// The season counter advances once both parties have completed an EndTurn
// since the last advance. The bookkeeping is then cleared.

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/samdwyer/glassfist/internal/errors"
	"github.com/samdwyer/glassfist/internal/telemetry"
)

// Party identifies one of the two franchises.
type Party string

const (
	PartyA Party = "A"
	PartyB Party = "B"
)

// Parties lists both parties in turn order.
func Parties() []Party {
	return []Party{PartyA, PartyB}
}

// Other returns the opposing party.
func (p Party) Other() Party {
	if p == PartyA {
		return PartyB
	}
	return PartyA
}

// Valid reports whether p names a known party.
func (p Party) Valid() bool {
	return p == PartyA || p == PartyB
}

// ParseParty converts "A" or "B" into a Party.
func ParseParty(s string) (Party, error) {
	p := Party(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown party %q", s)
	}
	return p, nil
}

// State is the persisted form of a Controller.
type State struct {
	Turn            Party         `json:"turn"`
	Season          int           `json:"season"`
	TurnsThisSeason map[Party]int `json:"turnsThisSeason,omitempty"`
}

// Validate checks a restored state.
func (s State) Validate() error {
	if !s.Turn.Valid() {
		return fmt.Errorf("turn state: unknown party %q", s.Turn)
	}
	if s.Season < 1 {
		return fmt.Errorf("turn state: season %d below 1", s.Season)
	}
	for p, n := range s.TurnsThisSeason {
		if !p.Valid() || n < 0 {
			return fmt.Errorf("turn state: bad bookkeeping %s=%d", p, n)
		}
	}
	return nil
}

// Controller tracks whose turn it is and the season counter.
// It is safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	turn   Party
	season int
	taken  map[Party]int

	tracer trace.Tracer
}

// NewController starts at season 1 with party A to act.
func NewController() *Controller {
	return &Controller{
		turn:   PartyA,
		season: 1,
		taken:  make(map[Party]int, 2),
		tracer: telemetry.Tracer("turn"),
	}
}

// Restore rebuilds a controller from a persisted state.
func Restore(s State) (*Controller, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := NewController()
	c.turn = s.Turn
	c.season = s.Season
	for p, n := range s.TurnsThisSeason {
		c.taken[p] = n
	}
	return c, nil
}

// Active returns the party allowed to act.
func (c *Controller) Active() Party {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turn
}

// Season returns the current season, starting at 1.
func (c *Controller) Season() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.season
}

// Authorize returns NOT_YOUR_TURN unless p holds the turn.
func (c *Controller) Authorize(p Party) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorize(p)
}

func (c *Controller) authorize(p Party) error {
	if p != c.turn {
		return apperrors.Newf(apperrors.CodeNotYourTurn, "it is franchise %s's turn", c.turn).
			WithMeta("party", string(p))
	}
	return nil
}

// EndTurn hands the turn to the other party. It reports whether the season
// advanced as a result.
func (c *Controller) EndTurn(ctx context.Context, p Party) (bool, error) {
	_, span := c.tracer.Start(ctx, "turn.end")
	defer span.End()
	span.SetAttributes(attribute.String("party", string(p)))

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.authorize(p); err != nil {
		span.SetAttributes(attribute.String("outcome", "rejected"))
		return false, err
	}

	c.taken[p]++
	c.turn = p.Other()

	advanced := c.taken[PartyA] > 0 && c.taken[PartyB] > 0
	if advanced {
		c.season++
		clear(c.taken)
	}

	span.SetAttributes(
		attribute.String("outcome", "accepted"),
		attribute.String("next", string(c.turn)),
		attribute.Int("season", c.season),
		attribute.Bool("season_advanced", advanced),
	)
	return advanced, nil
}

// State returns a snapshot suitable for persistence.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{Turn: c.turn, Season: c.season}
	for p, n := range c.taken {
		if n > 0 {
			if s.TurnsThisSeason == nil {
				s.TurnsThisSeason = make(map[Party]int, 2)
			}
			s.TurnsThisSeason[p] = n
		}
	}
	return s
}
