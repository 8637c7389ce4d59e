package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/samdwyer/glassfist/internal/entity"
	apperrors "github.com/samdwyer/glassfist/internal/errors"
	"github.com/samdwyer/glassfist/internal/gamedata"
	"github.com/samdwyer/glassfist/internal/metrics"
	"github.com/samdwyer/glassfist/internal/roster"
	"github.com/samdwyer/glassfist/internal/store"
	"github.com/samdwyer/glassfist/internal/turn"
)

// Store keys.
const (
	KeySolo       = "gfm_franchise"
	KeyFranchiseA = "gfm_franchiseA"
	KeyFranchiseB = "gfm_franchiseB"
	KeyTurn       = "gfm_turn"
)

// decodeFranchise parses a persisted franchise. A blob that does not parse
// or parses into an invalid franchise is STORAGE_CORRUPT.
func decodeFranchise(blob []byte) (entity.Franchise, error) {
	var f entity.Franchise
	if err := json.Unmarshal(blob, &f); err != nil {
		return entity.Franchise{}, apperrors.Wrap(apperrors.CodeStorageCorrupt, "decode franchise", err)
	}
	if err := f.Validate(); err != nil {
		return entity.Franchise{}, apperrors.Wrap(apperrors.CodeStorageCorrupt, "validate franchise", err)
	}
	return f, nil
}

func decodeTurn(blob []byte) (*turn.Controller, error) {
	var s turn.State
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageCorrupt, "decode turn state", err)
	}
	c, err := turn.Restore(s)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageCorrupt, "restore turn state", err)
	}
	return c, nil
}

func save(ctx context.Context, st store.Store, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Save(ctx, key, blob); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// seedFranchise builds a fresh franchise from a mode's defaults.
func seedFranchise(def gamedata.FranchiseDef, id, name string, gen roster.Generator) (entity.Franchise, error) {
	if def.ID != "" {
		id = def.ID
	}
	if def.Name != "" {
		name = def.Name
	}
	f := entity.NewFranchise(id, name, def.Cash)
	f.FanSentiment = def.FanSentiment
	f.Markets = append([]entity.Market(nil), def.Markets...)

	fighters, err := gen.Generate(id)
	if err != nil {
		return entity.Franchise{}, fmt.Errorf("seed roster for %s: %w", id, err)
	}
	f.Roster = fighters
	return f, nil
}

// loader restores state at construction time. Absent or corrupt keys are
// reseeded and the seed is saved immediately.
type loader struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Recorder
}

func (l loader) franchise(ctx context.Context, key string, seed func() (entity.Franchise, error)) (entity.Franchise, error) {
	blob, ok, err := l.store.Load(ctx, key)
	if err != nil {
		return entity.Franchise{}, fmt.Errorf("load %s: %w", key, err)
	}
	if ok {
		f, err := decodeFranchise(blob)
		if err == nil {
			l.logger.Debug("franchise restored", zap.String("key", key), zap.String("franchise", f.ID))
			return f, nil
		}
		l.corrupt(key, err)
	}

	f, err := seed()
	if err != nil {
		return entity.Franchise{}, err
	}
	if err := save(ctx, l.store, key, f); err != nil {
		return entity.Franchise{}, err
	}
	l.logger.Info("franchise seeded", zap.String("key", key), zap.String("franchise", f.ID), zap.Int("cash", f.Cash))
	return f, nil
}

func (l loader) turn(ctx context.Context) (*turn.Controller, error) {
	blob, ok, err := l.store.Load(ctx, KeyTurn)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyTurn, err)
	}
	if ok {
		c, err := decodeTurn(blob)
		if err == nil {
			return c, nil
		}
		l.corrupt(KeyTurn, err)
	}

	c := turn.NewController()
	if err := save(ctx, l.store, KeyTurn, c.State()); err != nil {
		return nil, err
	}
	return c, nil
}

func (l loader) corrupt(key string, err error) {
	l.logger.Warn("discarding corrupt state", zap.String("key", key), zap.Error(err))
	l.metrics.StorageCorrupt()
}
