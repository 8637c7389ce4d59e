package manager

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	apperrors "github.com/samdwyer/glassfist/internal/errors"
	"github.com/samdwyer/glassfist/internal/metrics"
	"github.com/samdwyer/glassfist/internal/rng"
	"github.com/samdwyer/glassfist/internal/store"
	"github.com/samdwyer/glassfist/internal/turn"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testDeps(t *testing.T, mem *store.Memory) Deps {
	t.Helper()
	return Deps{
		Store:  mem,
		Logger: zaptest.NewLogger(t),
		Rand:   rng.Fixed(),
		Now:    func() time.Time { return fixedNow },
		IDs:    economy.NewCounter("evt"),
	}
}

func stored(t *testing.T, mem *store.Memory, key string) entity.Franchise {
	t.Helper()
	blob, ok, err := mem.Load(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "%s not saved", key)
	f, err := decodeFranchise(blob)
	require.NoError(t, err)
	return f
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
		return total
	}
	return 0
}

// --- single party ---

func TestSoloSeedsAndSaves(t *testing.T) {
	mem := store.NewMemory()
	m, err := NewFranchiseManager(context.Background(), testDeps(t, mem))
	require.NoError(t, err)

	f := m.Franchise()
	assert.Equal(t, "main", f.ID)
	assert.Equal(t, "Your Franchise", f.Name)
	assert.Equal(t, 5000, f.Cash)
	assert.Len(t, f.Markets, 3)
	assert.Len(t, f.Roster, 5)
	for _, name := range entity.FacilityNames() {
		assert.Equal(t, 1, f.Facilities[name])
	}
	assert.Equal(t, f, stored(t, mem, KeySolo))
}

func TestSoloRestoresSavedFranchise(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	first, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)
	_, err = first.UpgradeFacility(ctx, entity.FacilityGym)
	require.NoError(t, err)

	second, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)
	assert.Equal(t, first.Franchise(), second.Franchise())
	assert.Equal(t, 3000, second.Franchise().Cash)
}

func TestSoloReseedsCorruptBlob(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", `{"cash": 12`},
		{"negative cash", `{"id":"main","cash":-5,"facilities":{"gym":1},"fighters":[{"id":"1"}]}`},
		{"facility above cap", `{"id":"main","cash":5,"facilities":{"gym":4},"fighters":[{"id":"1"}]}`},
		{"empty roster", `{"id":"main","cash":5,"facilities":{"gym":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			mem.Put(KeySolo, []byte(tt.blob))

			core, logs := observer.New(zap.WarnLevel)
			rec := metrics.New()
			d := testDeps(t, mem)
			d.Logger = zap.New(core)
			d.Metrics = rec

			m, err := NewFranchiseManager(context.Background(), d)
			require.NoError(t, err, "corrupt state is never surfaced")

			assert.Equal(t, 5000, m.Franchise().Cash)
			assert.Equal(t, m.Franchise(), stored(t, mem, KeySolo))
			assert.Equal(t, 1, logs.FilterMessage("discarding corrupt state").Len())
			assert.Equal(t, 1.0, metricValue(t, rec.Registry(), "glassfist_storage_corrupt_total"))
		})
	}
}

func TestSoloRestoredMissingFacilityStartsAtLevelOne(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	seed, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)
	f := seed.Franchise()
	f.Facilities = map[string]int{entity.FacilityGym: 2}
	blob, err := json.Marshal(f)
	require.NoError(t, err)
	mem.Put(KeySolo, blob)

	m, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)
	require.Equal(t, map[string]int{entity.FacilityGym: 2}, m.Franchise().Facilities)

	out, err := m.UpgradeFacility(ctx, entity.FacilityTraining)
	require.NoError(t, err)
	assert.Equal(t, 2000, out.Cost)
	assert.Equal(t, 2, m.Franchise().Facilities[entity.FacilityTraining])
	assert.Equal(t, 2, stored(t, mem, KeySolo).Facilities[entity.FacilityTraining])
}

func TestDecodeFranchiseIsStorageCorrupt(t *testing.T) {
	_, err := decodeFranchise([]byte("nope"))
	assert.ErrorIs(t, err, apperrors.ErrStorageCorrupt)
}

func TestSoloActionSavesImmediately(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	m, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)

	out, err := m.HireStaff(ctx, entity.RoleCoach)
	require.NoError(t, err)
	assert.Equal(t, 1000, out.Cost)

	saved := stored(t, mem, KeySolo)
	assert.Equal(t, 4000, saved.Cash)
	require.True(t, saved.IsHired(entity.RoleCoach))
	assert.Equal(t, fixedNow, saved.Staff[entity.RoleCoach].HiredAt)
}

func TestSoloRejectedActionLeavesStoreUntouched(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	m, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)

	_, err = m.UpgradeFacility(ctx, entity.FacilityGym)
	require.NoError(t, err)
	before, _, _ := mem.Load(ctx, KeySolo)

	_, err = m.UpgradeFacility(ctx, entity.FacilityGym) // 4000 > 3000
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	_, err = m.TrainFighter(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	after, _, _ := mem.Load(ctx, KeySolo)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, 3000, m.Franchise().Cash)
}

func TestSoloSaveFailureIsReturned(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	m, err := NewFranchiseManager(ctx, testDeps(t, mem))
	require.NoError(t, err)

	mem.FailSaves = errors.New("disk full")
	out, err := m.ScheduleEvent(ctx, "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2000, out.Cost)

	// The mutation stays in memory.
	assert.Equal(t, 3000, m.Franchise().Cash)
	assert.Equal(t, 5000, stored(t, mem, KeySolo).Cash)
}

func TestSoloTrainFighter(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	d := testDeps(t, mem)
	d.Rand = rng.Fixed(1) // stamina
	m, err := NewFranchiseManager(ctx, d)
	require.NoError(t, err)

	target := m.Franchise().Roster[1]
	out, err := m.TrainFighter(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatStamina, out.Stat)

	trained, ok := m.Franchise().FindFighter(target.ID)
	require.True(t, ok)
	assert.Equal(t, min(100, target.Stamina+5), trained.Stamina)
	assert.Equal(t, 4500, m.Franchise().Cash)
}

func TestSoloFranchiseIsACopy(t *testing.T) {
	m, err := NewFranchiseManager(context.Background(), testDeps(t, store.NewMemory()))
	require.NoError(t, err)

	f := m.Franchise()
	f.Cash = 1
	f.Facilities[entity.FacilityGym] = 3
	f.Roster[0].Power = 0

	fresh := m.Franchise()
	assert.Equal(t, 5000, fresh.Cash)
	assert.Equal(t, 1, fresh.Facilities[entity.FacilityGym])
	assert.NotZero(t, fresh.Roster[0].Power)
}

func TestSoloDisplayCost(t *testing.T) {
	m, err := NewFranchiseManager(context.Background(), testDeps(t, store.NewMemory()))
	require.NoError(t, err)

	cost, ok := m.FacilityDisplayCost(entity.FacilityMedia)
	require.True(t, ok)
	assert.Equal(t, 3000, cost)
}

func TestSoloDispatchRejectsEndTurn(t *testing.T) {
	m, err := NewFranchiseManager(context.Background(), testDeps(t, store.NewMemory()))
	require.NoError(t, err)

	_, err = m.Dispatch(context.Background(), Command{Kind: economy.KindEndTurn})
	assert.Error(t, err)

	out, err := m.Dispatch(context.Background(), Command{Kind: economy.KindOfferSponsor})
	require.NoError(t, err)
	assert.Equal(t, economy.KindOfferSponsor, out.Action)
}

func TestLogKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	m, err := NewFranchiseManager(ctx, testDeps(t, store.NewMemory()))
	require.NoError(t, err)

	for i := 0; i < LogSize+10; i++ {
		_, err := m.OfferSponsor(ctx)
		require.NoError(t, err)
	}
	_, err = m.MarqueeFight(ctx)
	require.NoError(t, err)

	log := m.Log()
	require.Len(t, log, LogSize)
	assert.Equal(t, "Marquee fight planned: Your Franchise vs opponent (stub)", log[len(log)-1])
	assert.Equal(t, "Signed Local Brand at $250/mo", log[0])
}

func TestOnChangeOnlyAfterAcceptedActions(t *testing.T) {
	ctx := context.Background()
	m, err := NewFranchiseManager(ctx, testDeps(t, store.NewMemory()))
	require.NoError(t, err)

	calls := 0
	m.OnChange(func() {
		calls++
		_ = m.Franchise() // listeners may read back without deadlocking
	})

	_, err = m.UpgradeFacility(ctx, entity.FacilityGym)
	require.NoError(t, err)
	_, err = m.UpgradeFacility(ctx, "pool")
	require.Error(t, err)

	assert.Equal(t, 1, calls)
}

func TestSoloSaveFailureCountsOneOutcome(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	rec := metrics.New()
	d := testDeps(t, mem)
	d.Metrics = rec
	m, err := NewFranchiseManager(ctx, d)
	require.NoError(t, err)

	mem.FailSaves = errors.New("disk full")
	_, err = m.ScheduleEvent(ctx, "local")
	require.Error(t, err)

	assert.Equal(t, 1.0, metricValue(t, rec.Registry(), "glassfist_actions_total"))
}

func TestManagerMetrics(t *testing.T) {
	ctx := context.Background()
	rec := metrics.New()
	d := testDeps(t, store.NewMemory())
	d.Metrics = rec
	m, err := NewFranchiseManager(ctx, d)
	require.NoError(t, err)

	_, err = m.UpgradeFacility(ctx, entity.FacilityGym)
	require.NoError(t, err)
	_, err = m.HireStaff(ctx, "mascot")
	require.Error(t, err)

	assert.Equal(t, 2.0, metricValue(t, rec.Registry(), "glassfist_actions_total"))
	assert.Equal(t, 3000.0, metricValue(t, rec.Registry(), "glassfist_cash"))
}

// --- two party ---

func newDuel(t *testing.T, mem *store.Memory) *TwoFranchiseManager {
	t.Helper()
	m, err := NewTwoFranchiseManager(context.Background(), testDeps(t, mem))
	require.NoError(t, err)
	return m
}

func TestDuelSeedsBoth(t *testing.T) {
	mem := store.NewMemory()
	m := newDuel(t, mem)

	snap := m.Snapshot()
	assert.Equal(t, turn.PartyA, snap.Active)
	assert.Equal(t, 1, snap.Season)

	for _, p := range turn.Parties() {
		f := snap.Franchise(p)
		assert.Equal(t, string(p), f.ID)
		assert.Equal(t, "Franchise "+string(p), f.Name)
		assert.Equal(t, 8000, f.Cash)
		assert.Len(t, f.Markets, 2)
		require.Len(t, f.Roster, 3)
		assert.Equal(t, string(p)+"-F1", f.Roster[0].ID)
		assert.Equal(t, f, stored(t, mem, keyFor(p)))
	}

	blob, ok, err := mem.Load(context.Background(), KeyTurn)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"turn":"A","season":1}`, string(blob))
}

func TestDuelTurnScenario(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	m := newDuel(t, mem)

	_, err := m.UpgradeFacility(ctx, turn.PartyB, entity.FacilityGym)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
	assert.Equal(t, 8000, m.Franchise(turn.PartyB).Cash)
	assert.Equal(t, 1, m.Franchise(turn.PartyB).Facilities[entity.FacilityGym])

	_, err = m.EndTurn(ctx, turn.PartyA)
	require.NoError(t, err)
	assert.Equal(t, turn.PartyB, m.Active())

	out, err := m.UpgradeFacility(ctx, turn.PartyB, entity.FacilityGym)
	require.NoError(t, err)
	assert.Equal(t, 2000, out.Cost)
	assert.Equal(t, 6000, m.Franchise(turn.PartyB).Cash)
	assert.Equal(t, 6000, stored(t, mem, KeyFranchiseB).Cash)
	assert.Equal(t, 8000, m.Franchise(turn.PartyA).Cash)
}

func TestDuelInactivePartyIsRejectedEverywhere(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	m := newDuel(t, mem)
	before := m.Snapshot()

	calls := []func() error{
		func() error { _, err := m.UpgradeFacility(ctx, turn.PartyB, entity.FacilityGym); return err },
		func() error { _, err := m.HireStaff(ctx, turn.PartyB, entity.RoleCoach); return err },
		func() error { _, err := m.ScheduleEvent(ctx, turn.PartyB, "local"); return err },
		func() error { _, err := m.OfferSponsor(ctx, turn.PartyB); return err },
		func() error { _, err := m.TrainFighter(ctx, turn.PartyB); return err },
		func() error { _, err := m.MarqueeFight(ctx, turn.PartyB); return err },
		func() error { _, err := m.EndTurn(ctx, turn.PartyB); return err },
		func() error { _, err := m.EndTurn(ctx, "C"); return err },
	}
	for i, call := range calls {
		assert.ErrorIs(t, call(), apperrors.ErrNotYourTurn, "call %d", i)
	}
	assert.Equal(t, before, m.Snapshot())
	assert.Empty(t, m.Log())
}

func TestDuelTrainFighterTrainsFirst(t *testing.T) {
	ctx := context.Background()
	m := newDuel(t, store.NewMemory())

	out, err := m.TrainFighter(ctx, turn.PartyA)
	require.NoError(t, err)
	assert.Equal(t, "A-F1", out.FighterID)
	assert.Equal(t, entity.StatPower, out.Stat)
	// Fixed rng draws 0, so procedural stats sit at the range minimum.
	assert.Equal(t, 65, m.Franchise(turn.PartyA).Roster[0].Power)
	assert.Equal(t, 8000, m.Franchise(turn.PartyA).Cash)
}

func TestDuelMarqueeFight(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	m := newDuel(t, mem)
	before, _, _ := mem.Load(ctx, KeyFranchiseA)

	out, err := m.MarqueeFight(ctx, turn.PartyA)
	require.NoError(t, err)
	assert.Equal(t, "Marquee fight planned: Franchise A vs opponent (stub)", out.Message)

	after, _, _ := mem.Load(ctx, KeyFranchiseA)
	assert.Equal(t, string(before), string(after))
}

func TestDuelSeasonAdvancesAndPersists(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	rec := metrics.New()
	d := testDeps(t, mem)
	d.Metrics = rec
	m, err := NewTwoFranchiseManager(ctx, d)
	require.NoError(t, err)

	advanced, err := m.EndTurn(ctx, turn.PartyA)
	require.NoError(t, err)
	assert.False(t, advanced)

	reopened := newDuel(t, mem)
	assert.Equal(t, turn.PartyB, reopened.Active())
	assert.Equal(t, 1, reopened.Season())

	advanced, err = reopened.EndTurn(ctx, turn.PartyB)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, 2, reopened.Season())
	assert.Contains(t, reopened.Log(), "Season 2 begins")

	again := newDuel(t, mem)
	assert.Equal(t, turn.PartyA, again.Active())
	assert.Equal(t, 2, again.Season())
	assert.Equal(t, 1.0, metricValue(t, rec.Registry(), "glassfist_season"))
}

func TestDuelReseedsCorruptTurnState(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(KeyTurn, []byte(`{"turn":"Z","season":4}`))

	m := newDuel(t, mem)
	assert.Equal(t, turn.PartyA, m.Active())
	assert.Equal(t, 1, m.Season())

	blob, _, err := mem.Load(context.Background(), KeyTurn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"turn":"A","season":1}`, string(blob))
}

func TestDuelCorruptFranchiseOnlyReseedsThatKey(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	first := newDuel(t, mem)
	_, err := first.HireStaff(ctx, turn.PartyA, entity.RoleScout)
	require.NoError(t, err)

	mem.Put(KeyFranchiseB, []byte(`[]`))
	m := newDuel(t, mem)
	assert.Equal(t, 7200, m.Franchise(turn.PartyA).Cash)
	assert.Equal(t, 8000, m.Franchise(turn.PartyB).Cash)
}

func TestDuelEndTurnSaveFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	m := newDuel(t, mem)

	mem.FailSaves = errors.New("read-only")
	_, err := m.EndTurn(ctx, turn.PartyA)
	assert.Error(t, err)
	assert.Equal(t, turn.PartyB, m.Active(), "turn change stays in memory")
}

func TestDuelDispatchMenu(t *testing.T) {
	ctx := context.Background()
	m := newDuel(t, store.NewMemory())

	cmd, err := MenuCommand(turn.PartyA, 3, entity.RoleCoach)
	require.NoError(t, err)
	out, err := m.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, economy.KindHireStaff, out.Action)
	assert.True(t, m.Franchise(turn.PartyA).IsHired(entity.RoleCoach))

	cmd, err = MenuCommand(turn.PartyA, 4, "")
	require.NoError(t, err)
	out, err = m.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "local show", out.Event.Name)
	assert.Equal(t, "evt-1", out.Event.ID)

	cmd, err = MenuCommand(turn.PartyA, 8, "")
	require.NoError(t, err)
	out, err = m.Dispatch(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, economy.KindEndTurn, out.Action)
	assert.Equal(t, turn.PartyB, m.Active())

	cmd, err = MenuCommand(turn.PartyA, 1, "")
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, cmd)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)

	assert.Equal(t, 8000-800-1200, m.Franchise(turn.PartyA).Cash)
}

func TestMenuCommand(t *testing.T) {
	tests := []struct {
		choice int
		want   Command
	}{
		{1, Command{Kind: economy.KindUpgradeFacility, Party: turn.PartyB, Facility: entity.FacilityGym}},
		{2, Command{Kind: economy.KindUpgradeFacility, Party: turn.PartyB, Facility: entity.FacilityTraining}},
		{3, Command{Kind: economy.KindHireStaff, Party: turn.PartyB, Role: entity.RoleMedic}},
		{4, Command{Kind: economy.KindScheduleEvent, Party: turn.PartyB, EventType: "local"}},
		{5, Command{Kind: economy.KindOfferSponsor, Party: turn.PartyB}},
		{6, Command{Kind: economy.KindTrainFighter, Party: turn.PartyB}},
		{7, Command{Kind: economy.KindMarqueeFight, Party: turn.PartyB}},
		{8, Command{Kind: economy.KindEndTurn, Party: turn.PartyB}},
	}
	for _, tt := range tests {
		got, err := MenuCommand(turn.PartyB, tt.choice, entity.RoleMedic)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "choice %d", tt.choice)
	}

	_, err := MenuCommand(turn.PartyA, 9, "")
	assert.Error(t, err)
	assert.Len(t, TurnMenu(), 8)
}

func TestDuelOnChangeAfterEndTurn(t *testing.T) {
	ctx := context.Background()
	m := newDuel(t, store.NewMemory())

	var seen []turn.Party
	m.OnChange(func() { seen = append(seen, m.Snapshot().Active) })

	_, err := m.EndTurn(ctx, turn.PartyB)
	require.Error(t, err)
	_, err = m.EndTurn(ctx, turn.PartyA)
	require.NoError(t, err)
	_, err = m.OfferSponsor(ctx, turn.PartyB)
	require.NoError(t, err)

	assert.Equal(t, []turn.Party{turn.PartyB, turn.PartyB}, seen)
}

func TestSnapshotRoundTripsThroughJSON(t *testing.T) {
	m := newDuel(t, store.NewMemory())
	snap := m.Snapshot()

	blob, err := json.Marshal(snap.A)
	require.NoError(t, err)
	var back entity.Franchise
	require.NoError(t, json.Unmarshal(blob, &back))
	assert.Equal(t, snap.A, back)
}
