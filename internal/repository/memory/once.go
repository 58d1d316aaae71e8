package memory

import (
	"context"
	"sync"
	"time"
)

// OnceSet records consumed identifiers until they expire.
// It mirrors cache.Cache.ConsumeOnce for tests and local runs.
type OnceSet struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewOnceSet creates an empty OnceSet.
func NewOnceSet() *OnceSet {
	return &OnceSet{seen: make(map[string]time.Time), now: time.Now}
}

// ConsumeOnce returns true the first time id is seen within ttl. An empty id
// is never accepted.
func (o *OnceSet) ConsumeOnce(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if id == "" {
		return false, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	if exp, ok := o.seen[id]; ok && now.Before(exp) {
		return false, nil
	}
	o.seen[id] = now.Add(ttl)
	return true, nil
}

// Release forgets id so it can be consumed again.
func (o *OnceSet) Release(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	delete(o.seen, id)
	o.mu.Unlock()
	return nil
}
