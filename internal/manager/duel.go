package manager

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/gamedata"
	"github.com/samdwyer/glassfist/internal/metrics"
	"github.com/samdwyer/glassfist/internal/roster"
	"github.com/samdwyer/glassfist/internal/turn"
)

// Snapshot is a consistent read of the two-franchise game.
type Snapshot struct {
	A      entity.Franchise
	B      entity.Franchise
	Active turn.Party
	Season int
}

// Franchise returns the franchise of a party.
func (s Snapshot) Franchise(p turn.Party) entity.Franchise {
	if p == turn.PartyB {
		return s.B
	}
	return s.A
}

// TwoFranchiseManager runs the turn-based two-party game. Every call names
// the acting party and is rejected with NOT_YOUR_TURN unless that party
// holds the turn.
type TwoFranchiseManager struct {
	*ledger
	turns *turn.Controller
	slots map[turn.Party]*slot
}

type slot struct {
	key       string
	franchise entity.Franchise
}

// NewTwoFranchiseManager loads both franchises and the turn state, seeding
// whatever is absent or corrupt.
func NewTwoFranchiseManager(ctx context.Context, d Deps) (*TwoFranchiseManager, error) {
	d = d.withDefaults()

	def, err := gamedata.LoadEconomy(gamedata.ModeDuel)
	if err != nil {
		return nil, err
	}
	gen := roster.NewProcedural(d.Rand)
	ld := loader{store: d.Store, logger: d.Logger, metrics: d.Metrics}

	m := &TwoFranchiseManager{
		ledger: newLedger(d, economy.RulesFromDef(gamedata.ModeDuel, def)),
		slots:  make(map[turn.Party]*slot, 2),
	}
	for _, p := range turn.Parties() {
		key := keyFor(p)
		f, err := ld.franchise(ctx, key, func() (entity.Franchise, error) {
			return seedFranchise(def.Franchise, string(p), "Franchise "+string(p), gen)
		})
		if err != nil {
			return nil, err
		}
		m.slots[p] = &slot{key: key, franchise: f}
		m.metrics.Cash(f.ID, f.Cash)
	}

	m.turns, err = ld.turn(ctx)
	if err != nil {
		return nil, err
	}
	m.metrics.Season(m.turns.Season())
	return m, nil
}

func keyFor(p turn.Party) string {
	if p == turn.PartyB {
		return KeyFranchiseB
	}
	return KeyFranchiseA
}

// Active returns the party holding the turn.
func (m *TwoFranchiseManager) Active() turn.Party {
	return m.turns.Active()
}

// Season returns the current season.
func (m *TwoFranchiseManager) Season() int {
	return m.turns.Season()
}

// Franchise returns a deep copy of a party's franchise.
func (m *TwoFranchiseManager) Franchise(p turn.Party) entity.Franchise {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot(p).franchise.Clone()
}

// Snapshot returns both franchises with the turn indicator.
func (m *TwoFranchiseManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		A:      m.slots[turn.PartyA].franchise.Clone(),
		B:      m.slots[turn.PartyB].franchise.Clone(),
		Active: m.turns.Active(),
		Season: m.turns.Season(),
	}
}

// FacilityDisplayCost returns the hub price of a party's facility.
func (m *TwoFranchiseManager) FacilityDisplayCost(p turn.Party, name string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolver.FacilityDisplayCost(m.slot(p).franchise, name)
}

// Log returns recent action messages, oldest first.
func (m *TwoFranchiseManager) Log() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log()
}

// OnChange registers fn to run after every accepted action or turn change.
func (m *TwoFranchiseManager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange(fn)
}

func (m *TwoFranchiseManager) slot(p turn.Party) *slot {
	if s, ok := m.slots[p]; ok {
		return s
	}
	return m.slots[turn.PartyA]
}

func (m *TwoFranchiseManager) act(ctx context.Context, p turn.Party, a economy.Action) (economy.Outcome, error) {
	m.mu.Lock()
	if err := m.turns.Authorize(p); err != nil {
		m.rejected(a.Kind, string(p), err)
		m.mu.Unlock()
		return economy.Outcome{}, err
	}

	s := m.slot(p)
	if a.Kind == economy.KindMarqueeFight && a.Label == "" {
		a.Label = s.franchise.Name
	}
	out, accepted, err := m.apply(ctx, s.key, &s.franchise, a)
	var listeners []func()
	if accepted {
		listeners = m.changed()
	}
	m.mu.Unlock()

	notify(listeners)
	return out, err
}

// UpgradeFacility raises one of p's facilities a level.
func (m *TwoFranchiseManager) UpgradeFacility(ctx context.Context, p turn.Party, name string) (economy.Outcome, error) {
	return m.act(ctx, p, economy.Action{Kind: economy.KindUpgradeFacility, Facility: name})
}

// HireStaff fills one of p's staff roles.
func (m *TwoFranchiseManager) HireStaff(ctx context.Context, p turn.Party, role string) (economy.Outcome, error) {
	return m.act(ctx, p, economy.Action{Kind: economy.KindHireStaff, Role: role})
}

// ScheduleEvent books an event for p.
func (m *TwoFranchiseManager) ScheduleEvent(ctx context.Context, p turn.Party, eventType string) (economy.Outcome, error) {
	return m.act(ctx, p, economy.Action{Kind: economy.KindScheduleEvent, EventType: eventType})
}

// OfferSponsor signs a sponsor for p.
func (m *TwoFranchiseManager) OfferSponsor(ctx context.Context, p turn.Party) (economy.Outcome, error) {
	return m.act(ctx, p, economy.Action{Kind: economy.KindOfferSponsor})
}

// TrainFighter trains p's first fighter.
func (m *TwoFranchiseManager) TrainFighter(ctx context.Context, p turn.Party) (economy.Outcome, error) {
	return m.act(ctx, p, economy.Action{Kind: economy.KindTrainFighter})
}

// MarqueeFight logs a planned marquee fight for p.
func (m *TwoFranchiseManager) MarqueeFight(ctx context.Context, p turn.Party) (economy.Outcome, error) {
	return m.act(ctx, p, economy.Action{Kind: economy.KindMarqueeFight})
}

// EndTurn passes the turn to the other party and saves the turn state.
// It reports whether the season advanced.
func (m *TwoFranchiseManager) EndTurn(ctx context.Context, p turn.Party) (bool, error) {
	m.mu.Lock()
	advanced, err := m.turns.EndTurn(ctx, p)
	if err != nil {
		m.rejected(economy.KindEndTurn, string(p), err)
		m.mu.Unlock()
		return false, err
	}

	m.metrics.Action(string(economy.KindEndTurn), metrics.OutcomeAccepted)
	m.metrics.Season(m.turns.Season())
	m.record("Franchise " + string(p) + " ended turn. Franchise " + string(m.turns.Active()) + " to act.")
	if advanced {
		m.record("Season " + strconv.Itoa(m.turns.Season()) + " begins")
	}
	m.logger.Debug("turn ended",
		zap.String("party", string(p)),
		zap.Int("season", m.turns.Season()),
		zap.Bool("season_advanced", advanced),
	)

	err = save(ctx, m.store, KeyTurn, m.turns.State())
	if err != nil {
		m.logger.Error("save turn state failed", zap.Error(err))
	}
	listeners := m.changed()
	m.mu.Unlock()

	notify(listeners)
	return advanced, err
}

// Dispatch applies a command on behalf of cmd.Party.
func (m *TwoFranchiseManager) Dispatch(ctx context.Context, cmd Command) (economy.Outcome, error) {
	if cmd.Kind == economy.KindEndTurn {
		if _, err := m.EndTurn(ctx, cmd.Party); err != nil {
			return economy.Outcome{}, err
		}
		return economy.Outcome{Action: economy.KindEndTurn}, nil
	}
	return m.act(ctx, cmd.Party, cmd.action())
}
