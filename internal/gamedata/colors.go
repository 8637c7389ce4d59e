package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/glassfist/internal/entity"
)

// fallbackFighterColor is used when a fighter has no usable colour.
var fallbackFighterColor = tcell.NewRGBColor(0x41, 0x69, 0xE1)

// ParseHexColor converts a hex color string (e.g., "#FF0000" or "FF0000") to a tcell.Color.
func ParseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color length: %s", hex)
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %s: %w", hex, err)
	}

	return tcell.NewHexColor(int32(rgb)), nil
}

// FighterColor returns the display colour for a fighter's roster card.
func FighterColor(f entity.Fighter) tcell.Color {
	if f.Color == "" {
		return fallbackFighterColor
	}
	color, err := ParseHexColor(f.Color)
	if err != nil {
		return fallbackFighterColor
	}
	return color
}
