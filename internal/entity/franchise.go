// Package entity provides the franchise and fighter data model.
package entity

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Facility level bounds.
const (
	MinFacilityLevel = 1
	MaxFacilityLevel = 3
)

// Facility names.
const (
	FacilityGym      = "gym"
	FacilityTraining = "training"
	FacilityMedia    = "media"
)

// Staff role names.
const (
	RoleGM        = "gm"
	RoleCoach     = "coach"
	RoleScout     = "scout"
	RoleMedic     = "medic"
	RolePublicist = "publicist"
)

// FacilityNames lists the known facilities in display order.
func FacilityNames() []string {
	return []string{FacilityGym, FacilityTraining, FacilityMedia}
}

// StaffRoles lists the known staff roles in display order.
func StaffRoles() []string {
	return []string{RoleGM, RoleCoach, RoleScout, RoleMedic, RolePublicist}
}

// IsFacility reports whether name is a known facility.
func IsFacility(name string) bool {
	return lo.Contains(FacilityNames(), name)
}

// IsStaffRole reports whether role is a known staff role.
func IsStaffRole(role string) bool {
	return lo.Contains(StaffRoles(), role)
}

// Market is a revenue-producing territory.
type Market struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Revenue int    `json:"revenue"`
	Level   int    `json:"level"`
	Growth  int    `json:"growth,omitempty"`
}

// StaffAssignment records when a role was filled.
type StaffAssignment struct {
	HiredAt time.Time `json:"hiredAt"`
}

// Sponsor is a signed sponsorship deal.
type Sponsor struct {
	Company       string `json:"company"`
	MonthlyAmount int    `json:"monthlyAmount"`
	Requirements  string `json:"requirements"`
}

// Event is a scheduled show.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Date string `json:"date"` // YYYY-MM-DD
	Name string `json:"name"`
}

// Franchise is one player-owned economic entity.
// It is mutated only through the economy package, which works on clones.
type Franchise struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Cash         int                         `json:"cash"`
	Markets      []Market                    `json:"markets"`
	Facilities   map[string]int              `json:"facilities"`
	Staff        map[string]*StaffAssignment `json:"staff"`
	Sponsors     []Sponsor                   `json:"sponsors"`
	Events       []Event                     `json:"events"`
	FanSentiment int                         `json:"fanSentiment"`
	Roster       []Fighter                   `json:"fighters"`
}

// NewFranchise creates a franchise with every facility at level 1, every
// staff role open and empty sponsor/event lists.
func NewFranchise(id, name string, cash int) Franchise {
	f := Franchise{
		ID:         id,
		Name:       name,
		Cash:       cash,
		Markets:    []Market{},
		Facilities: make(map[string]int, len(FacilityNames())),
		Staff:      make(map[string]*StaffAssignment, len(StaffRoles())),
		Sponsors:   []Sponsor{},
		Events:     []Event{},
		Roster:     []Fighter{},
	}
	for _, name := range FacilityNames() {
		f.Facilities[name] = MinFacilityLevel
	}
	for _, role := range StaffRoles() {
		f.Staff[role] = nil
	}
	return f
}

// FacilityLevel returns the level of a facility. A known facility absent
// from the map is at MinFacilityLevel; ok is false only for unknown names.
func (f Franchise) FacilityLevel(name string) (int, bool) {
	if level, ok := f.Facilities[name]; ok {
		return level, true
	}
	if IsFacility(name) {
		return MinFacilityLevel, true
	}
	return 0, false
}

// IsHired reports whether a staff role is filled.
func (f Franchise) IsHired(role string) bool {
	return f.Staff[role] != nil
}

// FighterIndex returns the roster index of the fighter with the given id, or -1.
func (f Franchise) FighterIndex(id string) int {
	_, idx, ok := lo.FindIndexOf(f.Roster, func(ft Fighter) bool { return ft.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// FindFighter returns the fighter with the given id.
func (f Franchise) FindFighter(id string) (*Fighter, bool) {
	idx := f.FighterIndex(id)
	if idx < 0 {
		return nil, false
	}
	return &f.Roster[idx], true
}

// MonthlySponsorIncome sums the monthly amount of every sponsor.
func (f Franchise) MonthlySponsorIncome() int {
	return lo.SumBy(f.Sponsors, func(s Sponsor) int { return s.MonthlyAmount })
}

// Validate checks the franchise invariants.
func (f Franchise) Validate() error {
	if f.Cash < 0 {
		return fmt.Errorf("franchise %s: negative cash %d", f.ID, f.Cash)
	}
	if f.Facilities == nil {
		return fmt.Errorf("franchise %s: missing facilities", f.ID)
	}
	for name, level := range f.Facilities {
		if level < MinFacilityLevel || level > MaxFacilityLevel {
			return fmt.Errorf("franchise %s: facility %s level %d outside [%d,%d]",
				f.ID, name, level, MinFacilityLevel, MaxFacilityLevel)
		}
	}
	if len(f.Roster) == 0 {
		return fmt.Errorf("franchise %s: empty roster", f.ID)
	}
	seen := make(map[string]bool, len(f.Roster))
	for i := range f.Roster {
		if err := f.Roster[i].Validate(); err != nil {
			return fmt.Errorf("franchise %s: %w", f.ID, err)
		}
		if seen[f.Roster[i].ID] {
			return fmt.Errorf("franchise %s: duplicate fighter id %s", f.ID, f.Roster[i].ID)
		}
		seen[f.Roster[i].ID] = true
	}
	return nil
}

// Clone returns a deep copy of the franchise.
func (f Franchise) Clone() Franchise {
	out := f
	out.Markets = cloneSlice(f.Markets)
	out.Sponsors = cloneSlice(f.Sponsors)
	out.Events = cloneSlice(f.Events)

	if f.Facilities != nil {
		out.Facilities = make(map[string]int, len(f.Facilities))
		for k, v := range f.Facilities {
			out.Facilities[k] = v
		}
	}
	if f.Staff != nil {
		out.Staff = make(map[string]*StaffAssignment, len(f.Staff))
		for k, v := range f.Staff {
			if v == nil {
				out.Staff[k] = nil
				continue
			}
			a := *v
			out.Staff[k] = &a
		}
	}
	if f.Roster != nil {
		out.Roster = make([]Fighter, len(f.Roster))
		for i := range f.Roster {
			out.Roster[i] = f.Roster[i].Clone()
		}
	}
	return out
}

// cloneSlice copies a slice of value types, keeping nil as nil.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
