package usecase

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SignerLocks hands out exclusive, context-aware locks keyed by signer.
// A holder owns the account's nonce sequence from submission until the
// confirmation wait ends.
type SignerLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewSignerLocks creates an empty lock table
func NewSignerLocks() *SignerLocks {
	return &SignerLocks{sems: make(map[string]*semaphore.Weighted)}
}

// Acquire blocks until the key is free or ctx ends. The returned release
// func is idempotent.
func (l *SignerLocks) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}
