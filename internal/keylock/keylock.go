package keylock

import (
	"context"
	"sync"
)

// Locker serializes read-modify-write sections per natural key, e.g.
// (userID, date) for attendance rows or (userID, yearMonth) for bonus rows.
// The backing store has no transactional isolation, so every mutation path
// must run inside Do for its key.
type Locker interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// InProcess is the default Locker: a reference-counted mutex per key.
// Entries are dropped as soon as the last holder releases, so the map stays
// bounded by concurrent keys, not all keys ever seen.
type InProcess struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewInProcess() *InProcess {
	return &InProcess{
		entries: make(map[string]*entry),
	}
}

func (l *InProcess) acquire(key string) *entry {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

func (l *InProcess) release(key string, e *entry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()
}

func (l *InProcess) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := l.acquire(key)
	defer l.release(key, e)

	return fn(ctx)
}
