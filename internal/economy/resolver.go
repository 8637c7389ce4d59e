// Package economy validates and applies the costed franchise actions.
package economy

// =============================================================================
// ACTION PROTOCOL
// =============================================================================
//
// Every action is a pure function over a franchise value:
//
//     (entity.Franchise, params) -> (entity.Franchise, Outcome, error)
//
// 1. Validate parameters (unknown facility/role/fighter -> NOT_FOUND,
//    facility at cap -> MAX_LEVEL).
// 2. Compute the cost from the Rules table.
// 3. cost > cash -> INSUFFICIENT_FUNDS.
// 4. Clone, debit, apply the effect to the clone and return it.
//
// On any error the input franchise is returned as-is, so a rejected action
// is a no-op transaction. The caller swaps in the returned value only on
// success.
//
// Costs:
// ------
//     upgradeFacility  FacilityBaseCost x current level
//     hireStaff        HireCost (overwrites any existing assignment)
//     scheduleEvent    EventCost
//     offerSponsor     free, uniform pick from SponsorOffers
//     trainFighter     TrainCost, +TrainIncrement on one random bounded stat
//     marqueeFight     free, no mutation
//
// Telemetry:
// ----------
// - action.<kind>: franchise, cost, cash_before, outcome

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/glassfist/internal/entity"
	apperrors "github.com/samdwyer/glassfist/internal/errors"
	"github.com/samdwyer/glassfist/internal/gamedata"
	"github.com/samdwyer/glassfist/internal/rng"
	"github.com/samdwyer/glassfist/internal/telemetry"
)

// Kind names one of the callables exposed to the presentation layer.
type Kind string

const (
	KindUpgradeFacility Kind = "upgradeFacility"
	KindHireStaff       Kind = "hireStaff"
	KindScheduleEvent   Kind = "scheduleEvent"
	KindOfferSponsor    Kind = "offerSponsor"
	KindTrainFighter    Kind = "trainFighter"
	KindMarqueeFight    Kind = "marqueeFight"
	KindEndTurn         Kind = "endTurn"
)

// DefaultEventType is used when an event is scheduled without a type.
const DefaultEventType = "local"

// Outcome describes an accepted action.
type Outcome struct {
	Action  Kind
	Cost    int
	Message string

	Facility string
	Level    int // facility level after the upgrade

	Role    string
	Event   *entity.Event
	Sponsor *entity.Sponsor

	FighterID string
	Stat      entity.Stat
	Before    int
	After     int
}

// Resolver applies actions under a rules table. It holds no franchise state.
type Resolver struct {
	rules  Rules
	rng    rng.Source
	now    func() time.Time
	ids    IDSource
	tracer trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the wall clock used for hire and event dates.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithIDs overrides the event id source.
func WithIDs(ids IDSource) Option {
	return func(r *Resolver) { r.ids = ids }
}

// WithTracer overrides the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Resolver) { r.tracer = t }
}

// NewResolver creates a resolver for the given rules and random source.
func NewResolver(rules Rules, src rng.Source, opts ...Option) *Resolver {
	r := &Resolver{
		rules:  rules,
		rng:    src,
		now:    time.Now,
		ids:    UUIDSource{},
		tracer: telemetry.Tracer("economy"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FacilityDisplayCost returns the hub price for a facility at its current level.
func (r *Resolver) FacilityDisplayCost(f entity.Franchise, name string) (int, bool) {
	level, ok := f.FacilityLevel(name)
	if !ok {
		return 0, false
	}
	return r.rules.DisplayCost(level), true
}

// UpgradeFacility raises a facility by one level for FacilityBaseCost x level.
// A facility at the cap is rejected with MAX_LEVEL and is never charged.
func (r *Resolver) UpgradeFacility(ctx context.Context, f entity.Franchise, name string) (entity.Franchise, Outcome, error) {
	span := r.start(ctx, KindUpgradeFacility, f)
	defer span.End()

	level, ok := f.FacilityLevel(name)
	if !ok {
		return r.reject(span, f, apperrors.Newf(apperrors.CodeNotFound, "unknown facility %q", name).WithMeta("facility", name))
	}
	if level >= r.rules.MaxFacilityLevel {
		return r.reject(span, f, apperrors.Newf(apperrors.CodeMaxLevel, "%s is already level %d", name, level).WithMeta("facility", name))
	}

	cost := r.rules.UpgradeCost(level)
	next, err := charge(f, cost)
	if err != nil {
		return r.reject(span, f, err)
	}
	next.Facilities[name] = min(r.rules.MaxFacilityLevel, level+1)

	return r.accept(span, next, Outcome{
		Action:   KindUpgradeFacility,
		Cost:     cost,
		Facility: name,
		Level:    next.Facilities[name],
		Message:  "Upgraded " + name + " to level " + strconv.Itoa(next.Facilities[name]),
	})
}

// HireStaff fills a staff role, replacing any existing assignment.
func (r *Resolver) HireStaff(ctx context.Context, f entity.Franchise, role string) (entity.Franchise, Outcome, error) {
	span := r.start(ctx, KindHireStaff, f)
	defer span.End()

	if !entity.IsStaffRole(role) {
		return r.reject(span, f, apperrors.Newf(apperrors.CodeNotFound, "unknown staff role %q", role).WithMeta("role", role))
	}

	cost := r.rules.HireCost
	next, err := charge(f, cost)
	if err != nil {
		return r.reject(span, f, err)
	}
	if next.Staff == nil {
		next.Staff = make(map[string]*entity.StaffAssignment)
	}
	next.Staff[role] = &entity.StaffAssignment{HiredAt: r.stamp()}

	return r.accept(span, next, Outcome{
		Action:  KindHireStaff,
		Cost:    cost,
		Role:    role,
		Message: "Hired " + strings.ToUpper(role),
	})
}

// ScheduleEvent books a new event dated today.
func (r *Resolver) ScheduleEvent(ctx context.Context, f entity.Franchise, eventType string) (entity.Franchise, Outcome, error) {
	span := r.start(ctx, KindScheduleEvent, f)
	defer span.End()

	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		eventType = DefaultEventType
	}

	cost := r.rules.EventCost
	next, err := charge(f, cost)
	if err != nil {
		return r.reject(span, f, err)
	}

	label := eventType
	if r.rules.EventName.Upper {
		label = strings.ToUpper(label)
	}
	ev := entity.Event{
		ID:   r.ids.NewID(),
		Type: eventType,
		Date: r.now().Format(time.DateOnly),
		Name: label + r.rules.EventName.Suffix,
	}
	next.Events = append(next.Events, ev)

	return r.accept(span, next, Outcome{
		Action:  KindScheduleEvent,
		Cost:    cost,
		Event:   &ev,
		Message: "Scheduled " + ev.Name + " on " + ev.Date,
	})
}

// OfferSponsor signs one sponsor picked uniformly from the offer table.
// There is no cap and duplicates are allowed.
func (r *Resolver) OfferSponsor(ctx context.Context, f entity.Franchise) (entity.Franchise, Outcome, error) {
	span := r.start(ctx, KindOfferSponsor, f)
	defer span.End()

	offer, ok := rng.Pick(r.rng, r.rules.SponsorOffers)
	if !ok {
		return r.reject(span, f, apperrors.New(apperrors.CodeNotFound, "no sponsor offers available"))
	}

	next := f.Clone()
	next.Sponsors = append(next.Sponsors, offer)

	return r.accept(span, next, Outcome{
		Action:  KindOfferSponsor,
		Sponsor: &offer,
		Message: "Signed " + offer.Company + " at $" + strconv.Itoa(offer.MonthlyAmount) + "/mo",
	})
}

// TrainFighter raises one bounded stat, picked uniformly, by TrainIncrement
// (clamped at the stat cap). With TrainExplicit rules the fighter is named
// by fighterID; with TrainFirst rules roster index 0 is trained and
// fighterID is ignored. An unknown fighter or empty roster is NOT_FOUND.
func (r *Resolver) TrainFighter(ctx context.Context, f entity.Franchise, fighterID string) (entity.Franchise, Outcome, error) {
	span := r.start(ctx, KindTrainFighter, f)
	defer span.End()

	idx := 0
	switch r.rules.TrainTarget {
	case gamedata.TrainFirst:
		if len(f.Roster) == 0 {
			return r.reject(span, f, apperrors.New(apperrors.CodeNotFound, "roster is empty"))
		}
	default:
		idx = f.FighterIndex(fighterID)
		if idx < 0 {
			return r.reject(span, f, apperrors.Newf(apperrors.CodeNotFound, "fighter %q not found", fighterID).WithMeta("fighter", fighterID))
		}
	}

	cost := r.rules.TrainCost
	next, err := charge(f, cost)
	if err != nil {
		return r.reject(span, f, err)
	}

	stat, _ := rng.Pick(r.rng, entity.BoundedStats())
	fighter := &next.Roster[idx]
	before, after, _ := fighter.RaiseStat(stat, r.rules.TrainIncrement)

	span.SetAttributes(
		attribute.String("fighter", fighter.ID),
		attribute.String("stat", string(stat)),
	)
	msg := fighter.Name + "'s " + string(stat) + " improved!"
	if cost > 0 {
		msg += " Cost: $" + strconv.Itoa(cost)
	}
	return r.accept(span, next, Outcome{
		Action:    KindTrainFighter,
		Cost:      cost,
		FighterID: fighter.ID,
		Stat:      stat,
		Before:    before,
		After:     after,
		Message:   msg,
	})
}

// MarqueeFight is a hook for the future combat subsystem. It only produces
// a log message and never changes the franchise.
func (r *Resolver) MarqueeFight(ctx context.Context, f entity.Franchise, label string) (entity.Franchise, Outcome, error) {
	span := r.start(ctx, KindMarqueeFight, f)
	defer span.End()

	if label == "" {
		label = f.Name
	}
	return r.accept(span, f, Outcome{
		Action:  KindMarqueeFight,
		Message: "Marquee fight planned: " + label + " vs opponent (stub)",
	})
}

// charge debits cost from a clone of f, or rejects without touching f.
func charge(f entity.Franchise, cost int) (entity.Franchise, error) {
	if cost > f.Cash {
		return f, apperrors.Newf(apperrors.CodeInsufficientFunds, "costs $%d, cash is $%d", cost, f.Cash).
			WithMeta("cost", strconv.Itoa(cost))
	}
	next := f.Clone()
	next.Cash -= cost
	return next, nil
}

// stamp is the hire timestamp. Event dates use r.now() directly so they
// follow the local calendar day.
func (r *Resolver) stamp() time.Time {
	// Round(0) strips the monotonic reading so stored times round-trip.
	return r.now().UTC().Round(0)
}

func (r *Resolver) start(ctx context.Context, kind Kind, f entity.Franchise) trace.Span {
	_, span := r.tracer.Start(ctx, "action."+string(kind))
	span.SetAttributes(
		attribute.String("franchise", f.ID),
		attribute.Int("cash_before", f.Cash),
	)
	return span
}

func (r *Resolver) reject(span trace.Span, f entity.Franchise, err error) (entity.Franchise, Outcome, error) {
	span.SetAttributes(
		attribute.String("outcome", "rejected"),
		attribute.String("code", string(apperrors.GetCode(err))),
	)
	return f, Outcome{}, err
}

func (r *Resolver) accept(span trace.Span, f entity.Franchise, out Outcome) (entity.Franchise, Outcome, error) {
	span.SetAttributes(
		attribute.String("outcome", "accepted"),
		attribute.Int("cost", out.Cost),
	)
	return f, out, nil
}
