package service

import (
	"sync"

	"github.com/google/uuid"
)

// itemLocks serializes the read-check-write sequence of stock operations per
// item. Operations on different items run in parallel; two writers on the same
// item never interleave between the stock check and the level update.
type itemLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

var stockLocks = &itemLocks{locks: make(map[uuid.UUID]*sync.Mutex)}

// lock acquires the per-item mutex and returns its unlock func.
func (l *itemLocks) lock(itemID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[itemID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[itemID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
