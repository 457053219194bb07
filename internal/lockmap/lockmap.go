// Package lockmap provides per-key mutual exclusion.
package lockmap

import (
	"context"
	"sync"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Keyed is a set of mutexes addressed by key. Entries exist only while
// some goroutine holds or waits for them, so the map does not grow with
// the number of keys ever seen.
type Keyed[K comparable] struct {
	mu sync.Mutex
	m  map[K]*entry
}

// New creates an empty keyed mutex.
func New[K comparable]() *Keyed[K] {
	return &Keyed[K]{m: make(map[K]*entry)}
}

// Lock blocks until key is free or ctx is done. The returned func releases
// the lock and must be called exactly once.
func (k *Keyed[K]) Lock(ctx context.Context, key K) (unlock func(), err error) {
	e := k.acquire(key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (k *Keyed[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}

func (k *Keyed[K]) acquire(key K) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.m[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.m[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed[K]) release(key K, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.m, key)
	}
}
