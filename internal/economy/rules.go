package economy

import (
	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/gamedata"
)

// Rules is the cost table a Resolver enforces.
type Rules struct {
	Mode                gamedata.Mode
	FacilityBaseCost    int
	FacilityDisplayCost int
	MaxFacilityLevel    int
	HireCost            int
	EventCost           int
	EventName           gamedata.EventNameDef
	TrainCost           int
	TrainIncrement      int
	TrainTarget         gamedata.TrainTarget
	SponsorOffers       []entity.Sponsor
}

// RulesFromDef builds the rules for a mode from its data table.
func RulesFromDef(mode gamedata.Mode, def gamedata.ModeDef) Rules {
	offers := make([]entity.Sponsor, len(def.SponsorOffers))
	copy(offers, def.SponsorOffers)
	return Rules{
		Mode:                mode,
		FacilityBaseCost:    def.FacilityBaseCost,
		FacilityDisplayCost: def.FacilityDisplayCost,
		MaxFacilityLevel:    entity.MaxFacilityLevel,
		HireCost:            def.HireCost,
		EventCost:           def.EventCost,
		EventName:           def.EventName,
		TrainCost:           def.TrainCost,
		TrainIncrement:      def.TrainIncrement,
		TrainTarget:         def.TrainTarget,
		SponsorOffers:       offers,
	}
}

// LoadRules loads the embedded rules for a mode.
func LoadRules(mode gamedata.Mode) (Rules, error) {
	def, err := gamedata.LoadEconomy(mode)
	if err != nil {
		return Rules{}, err
	}
	return RulesFromDef(mode, def), nil
}

// UpgradeCost is the amount charged to upgrade a facility from level.
func (r Rules) UpgradeCost(level int) int {
	return r.FacilityBaseCost * level
}

// DisplayCost is the facility price shown in the hub. It is never charged.
func (r Rules) DisplayCost(level int) int {
	return r.FacilityDisplayCost * level
}
