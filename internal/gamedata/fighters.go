package gamedata

import (
	"errors"

	"github.com/samdwyer/glassfist/internal/entity"
)

// FighterPoolFile represents the structure of fighters.json.
type FighterPoolFile struct {
	Fighters []entity.Fighter `json:"fighters"`
}

// LoadFighterPool loads the curated single-party roster.
// Every call returns fresh values, so callers may mutate the result.
func LoadFighterPool() ([]entity.Fighter, error) {
	file, err := Load[FighterPoolFile]("fighters.json")
	if err != nil {
		return nil, err
	}
	if len(file.Fighters) == 0 {
		return nil, errors.New("no fighters loaded from fighters.json")
	}
	return file.Fighters, nil
}

// MustLoadFighterPool loads the curated roster, panicking on error.
func MustLoadFighterPool() []entity.Fighter {
	pool, err := LoadFighterPool()
	if err != nil {
		panic(err)
	}
	return pool
}
