package economy

import (
	"context"
	"fmt"

	"github.com/samdwyer/glassfist/internal/entity"
)

// Action is an intent value built by the presentation layer once the user
// has confirmed a choice. Only the fields relevant to Kind are read.
type Action struct {
	Kind      Kind
	Facility  string
	Role      string
	EventType string
	FighterID string
	Label     string
}

// Mutates reports whether an accepted action of this kind changes the franchise.
func (k Kind) Mutates() bool {
	switch k {
	case KindUpgradeFacility, KindHireStaff, KindScheduleEvent, KindOfferSponsor, KindTrainFighter:
		return true
	default:
		return false
	}
}

// Apply routes an action to the matching resolver operation.
// KindEndTurn is not a franchise action and is rejected here; turn changes
// belong to the turn controller.
func (r *Resolver) Apply(ctx context.Context, f entity.Franchise, a Action) (entity.Franchise, Outcome, error) {
	switch a.Kind {
	case KindUpgradeFacility:
		return r.UpgradeFacility(ctx, f, a.Facility)
	case KindHireStaff:
		return r.HireStaff(ctx, f, a.Role)
	case KindScheduleEvent:
		return r.ScheduleEvent(ctx, f, a.EventType)
	case KindOfferSponsor:
		return r.OfferSponsor(ctx, f)
	case KindTrainFighter:
		return r.TrainFighter(ctx, f, a.FighterID)
	case KindMarqueeFight:
		return r.MarqueeFight(ctx, f, a.Label)
	default:
		return f, Outcome{}, fmt.Errorf("unsupported action %q", a.Kind)
	}
}
