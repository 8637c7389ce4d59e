package game

import (
	"context"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	"github.com/samdwyer/glassfist/internal/manager"
	"github.com/samdwyer/glassfist/internal/telemetry"
	"github.com/samdwyer/glassfist/internal/ui"
)

const title = "GLASS FIST MANAGER"

// Game holds the hub state.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	mode     mode
	logger   *zap.Logger
	tracer   trace.Tracer

	state   State
	status  string
	failed  bool
	running bool
}

// NewSolo creates a hub over the single-party manager.
func NewSolo(screen *ui.Screen, m *manager.FranchiseManager, logger *zap.Logger) *Game {
	return newGame(screen, solo{m: m}, logger)
}

// NewDuel creates a hub over the two-party manager.
func NewDuel(screen *ui.Screen, m *manager.TwoFranchiseManager, logger *zap.Logger) *Game {
	return newGame(screen, duel{m: m}, logger)
}

func newGame(screen *ui.Screen, md mode, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		mode:     md,
		logger:   logger,
		tracer:   telemetry.Tracer("game"),
		state:    StateMenu,
		running:  true,
	}
}

// Run executes the hub loop until the user quits or ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	// Changes made outside the key handler still trigger a redraw.
	g.mode.onChange(func() {
		_ = g.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	go func() {
		<-ctx.Done()
		_ = g.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
	}()

	for g.running {
		g.render()
		g.handleInput(ctx)
		if ctx.Err() != nil {
			g.running = false
		}
	}

	g.screen.Close()
	return nil
}

func (g *Game) render() {
	g.renderer.Render(g.hub())
}

func (g *Game) hub() ui.Hub {
	h := ui.Hub{
		Title:  title,
		Header: g.mode.header(),
		Panels: g.mode.panels(),
		Menu:   g.mode.menu(),
		Status: g.status,
		Failed: g.failed,
		Log:    g.mode.log(),
	}
	switch g.state {
	case StatePickRole:
		h.Prompt = []string{"Hire which role? (Esc to cancel)"}
		for i, role := range entity.StaffRoles() {
			h.Prompt = append(h.Prompt, strconv.Itoa(i+1)+" "+role)
		}
	case StatePickFighter:
		h.Prompt = []string{"Train which fighter? (Esc to cancel)"}
		for i, f := range g.mode.fighters() {
			h.Prompt = append(h.Prompt, strconv.Itoa(i+1)+" "+f.Name)
		}
	}
	return h
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) {
	switch ev := g.screen.PollEvent().(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		g.running = false
		return
	case tcell.KeyEscape:
		if g.state == StateMenu {
			g.running = false
		}
		g.state = StateMenu
		return
	case tcell.KeyRune:
	default:
		return
	}

	r := ev.Rune()
	if g.state == StateMenu && (r == 'q' || r == 'Q') {
		g.running = false
		return
	}
	if r < '1' || r > '9' {
		return
	}
	g.choose(ctx, int(r-'0'))
}

func (g *Game) choose(ctx context.Context, n int) {
	switch g.state {
	case StatePickRole:
		roles := entity.StaffRoles()
		if n > len(roles) {
			return
		}
		g.state = StateMenu
		g.dispatch(ctx, g.mode.withRole(roles[n-1]))

	case StatePickFighter:
		cmd, err := g.mode.withFighter(n - 1)
		if err != nil {
			return
		}
		g.state = StateMenu
		g.dispatch(ctx, cmd)

	default:
		cmd, next, err := g.mode.choose(n)
		if err != nil {
			return
		}
		if next != StateMenu {
			g.state = next
			return
		}
		g.dispatch(ctx, cmd)
	}
}

func (g *Game) dispatch(ctx context.Context, cmd manager.Command) {
	ctx, span := g.tracer.Start(ctx, "game.command")
	defer span.End()
	span.SetAttributes(
		attribute.String("kind", string(cmd.Kind)),
		attribute.String("party", string(cmd.Party)),
	)

	out, err := g.mode.dispatch(ctx, cmd)
	if err != nil {
		// Rejections are shown on the status line; the hub keeps running.
		g.status, g.failed = err.Error(), true
		g.logger.Debug("command failed", zap.String("kind", string(cmd.Kind)), zap.Error(err))
		return
	}
	g.status, g.failed = out.Message, false
	if cmd.Kind == economy.KindEndTurn {
		g.status = "Franchise " + string(cmd.Party) + " ended turn"
	}
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
