package service

import (
	"context"
	"sync"
)

// lazy holds a value loaded on first use. Concurrent callers wait for one
// load. A failed load is not remembered, so the next call tries again.
// peek and reset never wait on a load in flight.
type lazy[T any] struct {
	loadMu sync.Mutex

	mu     sync.RWMutex
	value  T
	loaded bool
}

// get returns the cached value or runs load.
func (l *lazy[T]) get(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.peek(); ok {
		return v, nil
	}

	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	if v, ok := l.peek(); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	l.mu.Lock()
	l.value, l.loaded = v, true
	l.mu.Unlock()
	return v, nil
}

// peek returns the cached value without loading.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.loaded
}

// reset drops the cached value and returns it.
func (l *lazy[T]) reset() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.value, l.loaded
	var zero T
	l.value, l.loaded = zero, false
	return v, ok
}
