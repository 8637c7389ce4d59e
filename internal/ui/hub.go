package ui

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/gamedata"
)

// Panel is one franchise card.
type Panel struct {
	Franchise entity.Franchise
	Active    bool
	// DisplayCost is the hub price per facility.
	DisplayCost map[string]int
}

// Hub is everything drawn in one frame.
type Hub struct {
	Title  string
	Header string // season and turn indicator
	Panels []Panel
	Menu   []string
	Prompt []string // shown instead of Menu while a choice is pending
	Status string
	Failed bool // Status reports a rejection
	Log    []string
}

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHeading = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleActive  = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleOK      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer draws hub frames.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws a full frame.
func (r *Renderer) Render(h Hub) {
	r.screen.Clear()
	w, height := r.screen.Size()

	x := r.screen.Text(0, 0, w, h.Title, styleTitle)
	if h.Header != "" {
		r.screen.Text(x+2, 0, w, h.Header, styleHeading)
	}

	// Panels share the width evenly.
	bottom := 2
	if n := len(h.Panels); n > 0 {
		colW := w / n
		for i, p := range h.Panels {
			end := r.panel(i*colW, 2, (i+1)*colW-1, p)
			bottom = max(bottom, end)
		}
	}

	y := bottom + 1
	lines, style := h.Menu, styleText
	if len(h.Prompt) > 0 {
		lines, style = h.Prompt, styleHeading
	}
	for _, line := range lines {
		r.screen.Text(0, y, w, line, style)
		y++
	}

	y++
	logRows := height - y - 2
	if logRows > 0 {
		start := max(0, len(h.Log)-logRows)
		for _, line := range h.Log[start:] {
			r.screen.Text(0, y, w, "· "+line, styleDim)
			y++
		}
	}

	if h.Status != "" && height > 0 {
		st := styleOK
		if h.Failed {
			st = styleError
		}
		r.screen.Text(0, height-1, w, h.Status, st)
	}

	r.screen.Show()
}

// panel draws one franchise card and returns the row after it.
func (r *Renderer) panel(x, y, maxX int, p Panel) int {
	f := p.Franchise
	name := f.Name
	style := styleHeading
	if p.Active {
		name += "  [YOUR TURN]"
		style = styleActive
	}
	r.screen.Text(x, y, maxX, name, style)
	y++

	line := func(text string) {
		r.screen.Text(x, y, maxX, text, styleText)
		y++
	}

	line("Cash $" + strconv.Itoa(f.Cash) + "   Fans " + strconv.Itoa(f.FanSentiment) +
		"   Sponsors $" + strconv.Itoa(f.MonthlySponsorIncome()) + "/mo")

	markets := make([]string, 0, len(f.Markets))
	for _, m := range f.Markets {
		markets = append(markets, m.Name+" $"+strconv.Itoa(m.Revenue))
	}
	line("Markets: " + strings.Join(markets, ", "))

	for _, name := range entity.FacilityNames() {
		level, _ := f.FacilityLevel(name)
		text := "  " + name + " L" + strconv.Itoa(level)
		if cost, ok := p.DisplayCost[name]; ok && level < entity.MaxFacilityLevel {
			text += "  ($" + strconv.Itoa(cost) + ")"
		}
		line(text)
	}

	staff := make([]string, 0, len(entity.StaffRoles()))
	for _, role := range entity.StaffRoles() {
		mark := "-"
		if f.IsHired(role) {
			mark = "✓"
		}
		staff = append(staff, role+" "+mark)
	}
	line("Staff: " + strings.Join(staff, "  "))

	line("Events: " + strconv.Itoa(len(f.Events)))
	for _, ev := range lastN(f.Events, 3) {
		line("  " + ev.Date + " " + ev.Name)
	}

	line("Roster:")
	for _, ft := range f.Roster {
		nameStyle := tcell.StyleDefault.Foreground(gamedata.FighterColor(ft)).Bold(true)
		cx := r.screen.Text(x+2, y, maxX, ft.Name, nameStyle)
		r.screen.Text(cx+1, y, maxX, fighterLine(ft), styleText)
		y++
	}
	return y
}

func fighterLine(f entity.Fighter) string {
	var b strings.Builder
	b.WriteString("(" + string(f.Style) + ")")
	for _, s := range entity.BoundedStats() {
		v, _ := f.StatValue(s)
		b.WriteString(" " + strings.ToUpper(string(s)[:3]) + " " + strconv.Itoa(v))
	}
	return b.String()
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
