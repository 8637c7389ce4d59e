package entity

import "fmt"

// Stat bounds for the seven trainable stats.
const (
	MinStat = 0
	MaxStat = 100
)

// Style represents a fighter's boxing style.
type Style string

const (
	StyleOutboxer Style = "outboxer"
	StyleSlugger  Style = "slugger"
	StyleSwarmer  Style = "swarmer"
)

// Styles lists every known style in roster order.
func Styles() []Style {
	return []Style{StyleOutboxer, StyleSlugger, StyleSwarmer}
}

// ParseStyle converts a string into a Style.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StyleOutboxer, StyleSlugger, StyleSwarmer:
		return Style(s), nil
	default:
		return "", fmt.Errorf("unknown fighter style %q", s)
	}
}

// Stat names one of the seven bounded stats.
type Stat string

const (
	StatPower      Stat = "power"
	StatStamina    Stat = "stamina"
	StatSpeed      Stat = "speed"
	StatDefense    Stat = "defense"
	StatChin       Stat = "chin"
	StatHeart      Stat = "heart"
	StatAggression Stat = "aggression"
)

// BoundedStats returns the seven bounded stats in a fixed order.
// Training picks uniformly from this list, so the order is part of the
// contract with the injected random source.
func BoundedStats() []Stat {
	return []Stat{StatPower, StatStamina, StatSpeed, StatDefense, StatChin, StatHeart, StatAggression}
}

// Record is a fighter's win/loss record.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	KOs    int `json:"kos"`
}

// Contract describes a signed fighter. A nil contract means free agent.
type Contract struct {
	Term   int `json:"term"` // weeks
	Salary int `json:"salary"`
	Bonus  int `json:"bonus"`
}

// Fighter is a roster member with bounded performance stats.
type Fighter struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Style       Style  `json:"style"`
	WeightClass string `json:"weightClass"`

	Power      int `json:"power"`
	Stamina    int `json:"stamina"`
	Speed      int `json:"speed"`
	Defense    int `json:"defense"`
	Chin       int `json:"chin"`
	Heart      int `json:"heart"`
	Aggression int `json:"aggression"`
	Reach      int `json:"reach"` // inches, not bounded

	Record   Record    `json:"record"`
	Contract *Contract `json:"contract,omitempty"`

	// Progression and scouting data carried by the curated pool.
	Level       int    `json:"level,omitempty"`
	Experience  int    `json:"experience,omitempty"`
	Potential   int    `json:"potential,omitempty"`
	Elo         int    `json:"elo,omitempty"`
	MarketValue int    `json:"marketValue,omitempty"`
	Color       string `json:"characterColor,omitempty"`
}

// IsFreeAgent reports whether the fighter has no contract.
func (f *Fighter) IsFreeAgent() bool {
	return f.Contract == nil
}

// statPtr returns a pointer to the named bounded stat, or nil.
func (f *Fighter) statPtr(s Stat) *int {
	switch s {
	case StatPower:
		return &f.Power
	case StatStamina:
		return &f.Stamina
	case StatSpeed:
		return &f.Speed
	case StatDefense:
		return &f.Defense
	case StatChin:
		return &f.Chin
	case StatHeart:
		return &f.Heart
	case StatAggression:
		return &f.Aggression
	default:
		return nil
	}
}

// StatValue returns the value of a bounded stat.
func (f *Fighter) StatValue(s Stat) (int, bool) {
	p := f.statPtr(s)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// RaiseStat adds delta to a bounded stat, clamped to [MinStat, MaxStat],
// and returns the value before and after.
func (f *Fighter) RaiseStat(s Stat, delta int) (before, after int, ok bool) {
	p := f.statPtr(s)
	if p == nil {
		return 0, 0, false
	}
	before = *p
	*p = clamp(before+delta, MinStat, MaxStat)
	return before, *p, true
}

// Validate checks the fighter's bounded fields.
func (f *Fighter) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("fighter has empty id")
	}
	for _, s := range BoundedStats() {
		v, _ := f.StatValue(s)
		if v < MinStat || v > MaxStat {
			return fmt.Errorf("fighter %s: %s=%d outside [%d,%d]", f.ID, s, v, MinStat, MaxStat)
		}
	}
	if f.Record.Wins < 0 || f.Record.Losses < 0 || f.Record.KOs < 0 {
		return fmt.Errorf("fighter %s: negative record", f.ID)
	}
	return nil
}

// Clone returns a deep copy of the fighter.
func (f Fighter) Clone() Fighter {
	if f.Contract != nil {
		c := *f.Contract
		f.Contract = &c
	}
	return f
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
