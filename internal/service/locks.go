package service

import (
	"context"
	"sync"
)

// OwnerLocks serialises ledger work per owner. Generation and purchase
// share one instance so a run's check-then-charge cannot interleave with
// another run or a purchase of the same owner.
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

// ownerLock is a one-slot semaphore so waiters can give up on ctx
type ownerLock struct {
	sem  chan struct{}
	refs int
}

func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[string]*ownerLock)}
}

// Lock waits until the owner's lock is held and returns its release func.
// It returns ctx.Err() if ctx ends first, without holding the lock.
func (l *OwnerLocks) Lock(ctx context.Context, ownerID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	lk, ok := l.locks[ownerID]
	if !ok {
		lk = &ownerLock{sem: make(chan struct{}, 1)}
		l.locks[ownerID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(ownerID, lk)
		return nil, ctx.Err()
	}

	return func() {
		<-lk.sem
		l.release(ownerID, lk)
	}, nil
}

func (l *OwnerLocks) release(ownerID string, lk *ownerLock) {
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, ownerID)
	}
	l.mu.Unlock()
}

func (l *OwnerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
