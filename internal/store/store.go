// Package store persists opaque JSON blobs under string keys.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/glassfist/internal/config"
	"github.com/samdwyer/glassfist/internal/telemetry"
)

// Store is a durable key to blob mapping.
//
// Load reports ok=false when the key was never saved. An error means the
// backend itself failed; corrupt contents are the caller's concern.
type Store interface {
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
	Close() error
}

// Open creates the backend named by cfg.Backend, wrapped with tracing.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		s = NewMemory()
	case config.BackendRedis:
		s, err = OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Traced(s, cfg.Backend), nil
}

// Memory keeps blobs in process memory. Nothing survives a restart.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailSaves makes every Save return this error. Used by tests.
	FailSaves error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load implements Store.
func (m *Memory) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Save implements Store.
func (m *Memory) Save(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// Put writes a blob directly, bypassing FailSaves. Used to seed tests.
func (m *Memory) Put(key string, blob []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

// traced records store.load and store.save spans around another store.
type traced struct {
	next    Store
	backend string
	tracer  trace.Tracer
}

// Traced wraps s so every call produces a span.
func Traced(s Store, backend string) Store {
	return &traced{next: s, backend: backend, tracer: telemetry.Tracer("store")}
}

func (t *traced) Load(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := t.tracer.Start(ctx, "store.load")
	defer span.End()

	blob, ok, err := t.next.Load(ctx, key)
	span.SetAttributes(
		attribute.String("backend", t.backend),
		attribute.String("key", key),
		attribute.Bool("found", ok),
		attribute.Int("bytes", len(blob)),
	)
	if err != nil {
		span.RecordError(err)
	}
	return blob, ok, err
}

func (t *traced) Save(ctx context.Context, key string, blob []byte) error {
	ctx, span := t.tracer.Start(ctx, "store.save")
	defer span.End()

	err := t.next.Save(ctx, key, blob)
	span.SetAttributes(
		attribute.String("backend", t.backend),
		attribute.String("key", key),
		attribute.Int("bytes", len(blob)),
	)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (t *traced) Close() error {
	return t.next.Close()
}
