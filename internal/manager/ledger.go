// Package manager owns the franchises of a running game, gates actions by
// turn, and persists every accepted mutation.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/glassfist/internal/economy"
	"github.com/samdwyer/glassfist/internal/entity"
	apperrors "github.com/samdwyer/glassfist/internal/errors"
	"github.com/samdwyer/glassfist/internal/logging"
	"github.com/samdwyer/glassfist/internal/metrics"
	"github.com/samdwyer/glassfist/internal/rng"
	"github.com/samdwyer/glassfist/internal/store"
)

// LogSize is the number of recent messages kept for display.
const LogSize = 50

// Deps are the collaborators a manager is built from.
type Deps struct {
	Store   store.Store
	Logger  *zap.Logger
	Metrics *metrics.Recorder
	// Rand drives stat training, sponsor picks and procedural rosters.
	Rand rng.Source
	// Now and IDs override the resolver clock and event id source.
	Now func() time.Time
	IDs economy.IDSource
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Rand == nil {
		d.Rand = rng.New(0)
	}
	if d.Store == nil {
		d.Store = store.NewMemory()
	}
	return d
}

func (d Deps) resolverOptions() []economy.Option {
	var opts []economy.Option
	if d.Now != nil {
		opts = append(opts, economy.WithClock(d.Now))
	}
	if d.IDs != nil {
		opts = append(opts, economy.WithIDs(d.IDs))
	}
	return opts
}

// ledger is the state shared by both managers: the resolver, persistence,
// the message log and change listeners. Callers hold mu.
type ledger struct {
	mu sync.Mutex

	resolver *economy.Resolver
	store    store.Store
	logger   *zap.Logger
	metrics  *metrics.Recorder

	recent    []string
	listeners []func()
}

func newLedger(d Deps, rules economy.Rules) *ledger {
	return &ledger{
		resolver: economy.NewResolver(rules, d.Rand, d.resolverOptions()...),
		store:    d.Store,
		logger:   d.Logger,
		metrics:  d.Metrics,
	}
}

// apply runs an action against *cur and reports whether it was accepted.
// On acceptance *cur is replaced and, for mutating kinds, saved under key.
// A failed save keeps the new state in memory and is returned. Each attempt
// is counted under exactly one outcome.
func (l *ledger) apply(ctx context.Context, key string, cur *entity.Franchise, a economy.Action) (economy.Outcome, bool, error) {
	next, out, err := l.resolver.Apply(ctx, *cur, a)
	if err != nil {
		l.rejected(a.Kind, cur.ID, err)
		return economy.Outcome{}, false, err
	}

	*cur = next
	l.metrics.Cash(cur.ID, cur.Cash)
	l.record(out.Message)
	l.logger.Debug("action accepted",
		zap.String("action", string(a.Kind)),
		zap.String("franchise", cur.ID),
		zap.Int("cost", out.Cost),
		zap.Int("cash", cur.Cash),
	)

	if a.Kind.Mutates() {
		if err := save(ctx, l.store, key, *cur); err != nil {
			l.metrics.Action(string(a.Kind), metrics.OutcomeFailed)
			l.logger.Error("save after action failed", zap.String("key", key), zap.Error(err))
			return out, true, err
		}
	}
	l.metrics.Action(string(a.Kind), metrics.OutcomeAccepted)
	return out, true, nil
}

func (l *ledger) rejected(kind economy.Kind, franchiseID string, err error) {
	outcome := metrics.OutcomeRejected
	if !apperrors.IsRejection(err) {
		outcome = metrics.OutcomeFailed
	}
	l.metrics.Action(string(kind), outcome)
	l.logger.Info("action rejected",
		zap.String("action", string(kind)),
		zap.String("franchise", franchiseID),
		zap.String("code", string(apperrors.GetCode(err))),
		zap.Error(err),
	)
}

func (l *ledger) record(msg string) {
	if msg == "" {
		return
	}
	l.recent = append(l.recent, msg)
	if over := len(l.recent) - LogSize; over > 0 {
		l.recent = append(l.recent[:0:0], l.recent[over:]...)
	}
}

func (l *ledger) log() []string {
	return append([]string(nil), l.recent...)
}

// changed returns the listeners to call once mu is released.
func (l *ledger) changed() []func() {
	return append([]func(){}, l.listeners...)
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}

func (l *ledger) onChange(fn func()) {
	l.listeners = append(l.listeners, fn)
}

func unsupported(kind economy.Kind) error {
	return fmt.Errorf("unsupported command %q", kind)
}
