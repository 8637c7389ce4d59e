package manager

import (
	"fmt"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/turn"
)

// Command is a confirmed user intent. The presentation layer builds it
// once the user has chosen an action and its parameters; the manager only
// validates and applies it.
type Command struct {
	Kind      economy.Kind
	Party     turn.Party
	Facility  string
	Role      string
	EventType string
	FighterID string
}

func (c Command) action() economy.Action {
	return economy.Action{
		Kind:      c.Kind,
		Facility:  c.Facility,
		Role:      c.Role,
		EventType: c.EventType,
		FighterID: c.FighterID,
	}
}

// MenuItem is one entry of the numbered turn menu.
type MenuItem struct {
	Choice int
	Label  string
}

// TurnMenu lists the numbered two-franchise turn menu.
func TurnMenu() []MenuItem {
	return []MenuItem{
		{1, "Upgrade Gym"},
		{2, "Upgrade Training"},
		{3, "Hire Staff"},
		{4, "Schedule Local Event"},
		{5, "Sponsor"},
		{6, "Train Fighter"},
		{7, "Marquee Fight"},
		{8, "End Turn"},
	}
}

// MenuCommand maps a turn menu choice to a command. role is only read for
// Hire Staff.
func MenuCommand(p turn.Party, choice int, role string) (Command, error) {
	cmd := Command{Party: p}
	switch choice {
	case 1:
		cmd.Kind, cmd.Facility = economy.KindUpgradeFacility, entity.FacilityGym
	case 2:
		cmd.Kind, cmd.Facility = economy.KindUpgradeFacility, entity.FacilityTraining
	case 3:
		cmd.Kind, cmd.Role = economy.KindHireStaff, role
	case 4:
		cmd.Kind, cmd.EventType = economy.KindScheduleEvent, economy.DefaultEventType
	case 5:
		cmd.Kind = economy.KindOfferSponsor
	case 6:
		cmd.Kind = economy.KindTrainFighter
	case 7:
		cmd.Kind = economy.KindMarqueeFight
	case 8:
		cmd.Kind = economy.KindEndTurn
	default:
		return Command{}, fmt.Errorf("invalid menu choice %d", choice)
	}
	return cmd, nil
}
