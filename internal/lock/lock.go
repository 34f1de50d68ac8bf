// Package lock serializes settlement work per group, across processes with Redis
// or within one process when Redis is not configured.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when a lock could not be obtained in time.
var ErrBusy = errors.New("lock is held by another worker")

// Release frees an obtained lock.
type Release func(ctx context.Context) error

// Locker obtains exclusive locks by key.
type Locker interface {
	Obtain(ctx context.Context, key string) (Release, error)
}

// GroupKey is the lock key for a group's settlement state.
func GroupKey(groupID string) string {
	return "lock:group:" + groupID
}

// Local is an in-process Locker. Waiters block until the holder releases or ctx ends.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *Local) Obtain(ctx context.Context, key string) (Release, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Join(ErrBusy, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}
