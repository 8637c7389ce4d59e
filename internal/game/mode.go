package game

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/manager"
	"github.com/samdwyer/glassfist/internal/turn"
	"github.com/samdwyer/glassfist/internal/ui"
)

// mode adapts one of the managers to the hub.
type mode interface {
	header() string
	panels() []ui.Panel
	menu() []string
	// choose maps a menu key to a command, or to a follow-up state when
	// the action needs another choice first.
	choose(choice int) (manager.Command, State, error)
	// withRole and withFighter complete a pending choice.
	withRole(role string) manager.Command
	withFighter(index int) (manager.Command, error)
	fighters() []entity.Fighter
	dispatch(ctx context.Context, cmd manager.Command) (economy.Outcome, error)
	log() []string
	onChange(fn func())
}

func displayCosts(cost func(string) (int, bool)) map[string]int {
	out := make(map[string]int, len(entity.FacilityNames()))
	for _, name := range entity.FacilityNames() {
		if c, ok := cost(name); ok {
			out[name] = c
		}
	}
	return out
}

// solo adapts a FranchiseManager.
type solo struct {
	m *manager.FranchiseManager
}

var soloMenu = []string{
	"1 Upgrade Gym", "2 Upgrade Training", "3 Upgrade Media", "4 Hire Staff",
	"5 Schedule Event", "6 Sponsor", "7 Train Fighter", "8 Marquee Fight", "q Quit",
}

func (s solo) header() string { return "" }

func (s solo) panels() []ui.Panel {
	return []ui.Panel{{
		Franchise:   s.m.Franchise(),
		DisplayCost: displayCosts(s.m.FacilityDisplayCost),
	}}
}

func (s solo) menu() []string { return soloMenu }

func (s solo) choose(choice int) (manager.Command, State, error) {
	switch choice {
	case 1:
		return manager.Command{Kind: economy.KindUpgradeFacility, Facility: entity.FacilityGym}, StateMenu, nil
	case 2:
		return manager.Command{Kind: economy.KindUpgradeFacility, Facility: entity.FacilityTraining}, StateMenu, nil
	case 3:
		return manager.Command{Kind: economy.KindUpgradeFacility, Facility: entity.FacilityMedia}, StateMenu, nil
	case 4:
		return manager.Command{}, StatePickRole, nil
	case 5:
		return manager.Command{Kind: economy.KindScheduleEvent, EventType: economy.DefaultEventType}, StateMenu, nil
	case 6:
		return manager.Command{Kind: economy.KindOfferSponsor}, StateMenu, nil
	case 7:
		return manager.Command{}, StatePickFighter, nil
	case 8:
		return manager.Command{Kind: economy.KindMarqueeFight}, StateMenu, nil
	default:
		return manager.Command{}, StateMenu, fmt.Errorf("invalid menu choice %d", choice)
	}
}

func (s solo) withRole(role string) manager.Command {
	return manager.Command{Kind: economy.KindHireStaff, Role: role}
}

func (s solo) withFighter(index int) (manager.Command, error) {
	roster := s.m.Franchise().Roster
	if index < 0 || index >= len(roster) {
		return manager.Command{}, fmt.Errorf("no fighter %d", index+1)
	}
	return manager.Command{Kind: economy.KindTrainFighter, FighterID: roster[index].ID}, nil
}

func (s solo) fighters() []entity.Fighter { return s.m.Franchise().Roster }

func (s solo) dispatch(ctx context.Context, cmd manager.Command) (economy.Outcome, error) {
	return s.m.Dispatch(ctx, cmd)
}

func (s solo) log() []string      { return s.m.Log() }
func (s solo) onChange(fn func()) { s.m.OnChange(fn) }

// duel adapts a TwoFranchiseManager. Every command is issued on behalf of
// the party holding the turn.
type duel struct {
	m *manager.TwoFranchiseManager
}

func (d duel) header() string {
	snap := d.m.Snapshot()
	return "Season " + strconv.Itoa(snap.Season) + "   Franchise " + string(snap.Active) + " to act"
}

func (d duel) panels() []ui.Panel {
	snap := d.m.Snapshot()
	out := make([]ui.Panel, 0, 2)
	for _, p := range turn.Parties() {
		out = append(out, ui.Panel{
			Franchise: snap.Franchise(p),
			Active:    snap.Active == p,
			DisplayCost: displayCosts(func(name string) (int, bool) {
				return d.m.FacilityDisplayCost(p, name)
			}),
		})
	}
	return out
}

func (d duel) menu() []string {
	items := manager.TurnMenu()
	out := make([]string, 0, len(items)+1)
	for _, it := range items {
		out = append(out, strconv.Itoa(it.Choice)+" "+it.Label)
	}
	return append(out, "q Quit")
}

func (d duel) choose(choice int) (manager.Command, State, error) {
	if choice == 3 {
		return manager.Command{}, StatePickRole, nil
	}
	cmd, err := manager.MenuCommand(d.m.Active(), choice, "")
	return cmd, StateMenu, err
}

func (d duel) withRole(role string) manager.Command {
	cmd, _ := manager.MenuCommand(d.m.Active(), 3, role)
	return cmd
}

func (d duel) withFighter(int) (manager.Command, error) {
	return manager.Command{}, fmt.Errorf("fighter choice is not used in duel mode")
}

func (d duel) fighters() []entity.Fighter { return nil }

func (d duel) dispatch(ctx context.Context, cmd manager.Command) (economy.Outcome, error) {
	return d.m.Dispatch(ctx, cmd)
}

func (d duel) log() []string      { return d.m.Log() }
func (d duel) onChange(fn func()) { d.m.OnChange(fn) }
