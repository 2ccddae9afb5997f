package service

import (
	"sync"

	"github.com/google/uuid"
)

// leadLocks serializes interaction processing per lead. Interactions for
// different leads proceed in parallel; two for the same lead are applied in
// arrival order. Locks are created on demand and kept for the process
// lifetime, which is fine for the cardinality involved.
type leadLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newLeadLocks() *leadLocks {
	return &leadLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *leadLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
