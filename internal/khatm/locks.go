package khatm

import "sync"

// scheduleLocks hands out one mutex per khatm ID so that transitions on
// sessions of the same khatm are serialized while different khatms proceed
// in parallel.
type scheduleLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newScheduleLocks() *scheduleLocks {
	return &scheduleLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *scheduleLocks) get(khatmID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[khatmID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[khatmID] = m
	}
	return m
}

func (l *scheduleLocks) forget(khatmID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, khatmID)
}
