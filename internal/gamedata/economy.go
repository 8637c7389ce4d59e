package gamedata

import (
	"fmt"

	"github.com/samdwyer/glassfist/internal/entity"
)

// Mode selects between the single-party and dual-party rule tables.
type Mode string

const (
	ModeSolo Mode = "solo"
	ModeDuel Mode = "duel"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSolo, ModeDuel:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown game mode %q", s)
	}
}

// TrainTarget says which fighter a training action improves.
type TrainTarget string

const (
	// TrainExplicit trains the fighter named by the caller.
	TrainExplicit TrainTarget = "explicit"
	// TrainFirst always trains roster index 0.
	TrainFirst TrainTarget = "first"
)

// FranchiseDef holds the starting state of a freshly seeded franchise.
type FranchiseDef struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Cash         int             `json:"cash"`
	FanSentiment int             `json:"fanSentiment"`
	Markets      []entity.Market `json:"markets"`
}

// EventNameDef describes how scheduled events are labelled.
type EventNameDef struct {
	Upper  bool   `json:"upper"`  // Upper-case the event type
	Suffix string `json:"suffix"` // Appended after the type
}

// ModeDef holds the cost table and defaults for one game mode.
type ModeDef struct {
	Franchise           FranchiseDef     `json:"franchise"`
	FacilityBaseCost    int              `json:"facilityBaseCost"`    // Charged per current level
	FacilityDisplayCost int              `json:"facilityDisplayCost"` // Shown per current level, never charged
	HireCost            int              `json:"hireCost"`
	EventCost           int              `json:"eventCost"`
	EventName           EventNameDef     `json:"eventName"`
	TrainCost           int              `json:"trainCost"`
	TrainIncrement      int              `json:"trainIncrement"`
	TrainTarget         TrainTarget      `json:"trainTarget"`
	SponsorOffers       []entity.Sponsor `json:"sponsorOffers"`
}

// Validate checks the table for values that would break the economy invariants.
func (m ModeDef) Validate() error {
	for name, v := range map[string]int{
		"facilityBaseCost":    m.FacilityBaseCost,
		"facilityDisplayCost": m.FacilityDisplayCost,
		"hireCost":            m.HireCost,
		"eventCost":           m.EventCost,
		"trainCost":           m.TrainCost,
		"franchise.cash":      m.Franchise.Cash,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if m.TrainIncrement <= 0 {
		return fmt.Errorf("trainIncrement must be positive, got %d", m.TrainIncrement)
	}
	switch m.TrainTarget {
	case TrainExplicit, TrainFirst:
	default:
		return fmt.Errorf("unknown trainTarget %q", m.TrainTarget)
	}
	if len(m.SponsorOffers) == 0 {
		return fmt.Errorf("at least one sponsor offer is required")
	}
	return nil
}

// EconomyFile represents the structure of economy.json.
type EconomyFile struct {
	Modes map[Mode]ModeDef `json:"modes"`
}

// Mode returns the validated table for a mode.
func (e EconomyFile) Mode(mode Mode) (ModeDef, error) {
	def, ok := e.Modes[mode]
	if !ok {
		return ModeDef{}, fmt.Errorf("economy.json has no %q mode", mode)
	}
	if err := def.Validate(); err != nil {
		return ModeDef{}, fmt.Errorf("economy.json mode %q: %w", mode, err)
	}
	return def, nil
}

// LoadEconomy loads the economy table for a mode.
func LoadEconomy(mode Mode) (ModeDef, error) {
	file, err := Load[EconomyFile]("economy.json")
	if err != nil {
		return ModeDef{}, err
	}
	return file.Mode(mode)
}

// MustLoadEconomy loads the economy table for a mode, panicking on error.
func MustLoadEconomy(mode Mode) ModeDef {
	def, err := LoadEconomy(mode)
	if err != nil {
		panic(err)
	}
	return def
}
