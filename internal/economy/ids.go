package economy

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource mints event identifiers that are unique per process.
type IDSource interface {
	NewID() string
}

// UUIDSource mints time-ordered UUIDv7 ids. Two events scheduled within the
// same millisecond still get distinct ids.
type UUIDSource struct{}

// NewID implements IDSource.
func (UUIDSource) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Counter mints "<prefix>-<n>" ids from a monotonic counter.
type Counter struct {
	prefix string
	n      atomic.Int64
}

// NewCounter creates a counter id source.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// NewID implements IDSource.
func (c *Counter) NewID() string {
	return fmt.Sprintf("%s-%d", c.prefix, c.n.Add(1))
}
