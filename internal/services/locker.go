package services

import "sync"

// entityLocker hands out one mutex per entity key so that every mutating
// ledger operation on a single product or account runs in an exclusive
// critical section. Locks are never held across entities; each operation
// acquires exactly one, which rules out deadlock between concurrent sales
// regardless of line-item order.
type entityLocker struct {
	locks sync.Map // key -> *sync.Mutex
}

func newEntityLocker() *entityLocker {
	return &entityLocker{}
}

func (l *entityLocker) lock(key string) func() {
	v, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
