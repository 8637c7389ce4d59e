package manager

import (
	"context"
	"fmt"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/gamedata"
	"github.com/samdwyer/glassfist/internal/roster"
)

const (
	soloFranchiseID   = "main"
	soloFranchiseName = "Your Franchise"
)

// FranchiseManager runs the single-party game. Its franchise is stored
// under KeySolo and seeded with the curated roster.
type FranchiseManager struct {
	*ledger
	franchise entity.Franchise
}

// NewFranchiseManager loads the saved franchise or seeds a new one.
func NewFranchiseManager(ctx context.Context, d Deps) (*FranchiseManager, error) {
	d = d.withDefaults()

	def, err := gamedata.LoadEconomy(gamedata.ModeSolo)
	if err != nil {
		return nil, err
	}
	curated, err := roster.LoadCurated()
	if err != nil {
		return nil, err
	}

	ld := loader{store: d.Store, logger: d.Logger, metrics: d.Metrics}
	f, err := ld.franchise(ctx, KeySolo, func() (entity.Franchise, error) {
		return seedFranchise(def.Franchise, soloFranchiseID, soloFranchiseName, curated)
	})
	if err != nil {
		return nil, err
	}

	m := &FranchiseManager{
		ledger:    newLedger(d, economy.RulesFromDef(gamedata.ModeSolo, def)),
		franchise: f,
	}
	m.metrics.Cash(f.ID, f.Cash)
	return m, nil
}

// Franchise returns a deep copy of the current franchise.
func (m *FranchiseManager) Franchise() entity.Franchise {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.franchise.Clone()
}

// FacilityDisplayCost returns the hub price of a facility.
func (m *FranchiseManager) FacilityDisplayCost(name string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolver.FacilityDisplayCost(m.franchise, name)
}

// Log returns recent action messages, oldest first.
func (m *FranchiseManager) Log() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.log()
}

// OnChange registers fn to run after every accepted action.
func (m *FranchiseManager) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange(fn)
}

func (m *FranchiseManager) act(ctx context.Context, a economy.Action) (economy.Outcome, error) {
	m.mu.Lock()
	out, accepted, err := m.apply(ctx, KeySolo, &m.franchise, a)
	var listeners []func()
	if accepted {
		listeners = m.changed()
	}
	m.mu.Unlock()

	notify(listeners)
	return out, err
}

// UpgradeFacility raises a facility one level.
func (m *FranchiseManager) UpgradeFacility(ctx context.Context, name string) (economy.Outcome, error) {
	return m.act(ctx, economy.Action{Kind: economy.KindUpgradeFacility, Facility: name})
}

// HireStaff fills a staff role.
func (m *FranchiseManager) HireStaff(ctx context.Context, role string) (economy.Outcome, error) {
	return m.act(ctx, economy.Action{Kind: economy.KindHireStaff, Role: role})
}

// ScheduleEvent books an event of the given type.
func (m *FranchiseManager) ScheduleEvent(ctx context.Context, eventType string) (economy.Outcome, error) {
	return m.act(ctx, economy.Action{Kind: economy.KindScheduleEvent, EventType: eventType})
}

// OfferSponsor signs a random sponsor.
func (m *FranchiseManager) OfferSponsor(ctx context.Context) (economy.Outcome, error) {
	return m.act(ctx, economy.Action{Kind: economy.KindOfferSponsor})
}

// TrainFighter trains the named fighter.
func (m *FranchiseManager) TrainFighter(ctx context.Context, fighterID string) (economy.Outcome, error) {
	return m.act(ctx, economy.Action{Kind: economy.KindTrainFighter, FighterID: fighterID})
}

// MarqueeFight logs a planned marquee fight.
func (m *FranchiseManager) MarqueeFight(ctx context.Context) (economy.Outcome, error) {
	return m.act(ctx, economy.Action{Kind: economy.KindMarqueeFight})
}

// Dispatch applies a command. The party is ignored and end turn is not
// available in the single-party game.
func (m *FranchiseManager) Dispatch(ctx context.Context, cmd Command) (economy.Outcome, error) {
	if cmd.Kind == economy.KindEndTurn {
		return economy.Outcome{}, fmt.Errorf("%w: no turns in solo mode", unsupported(cmd.Kind))
	}
	return m.act(ctx, cmd.action())
}
