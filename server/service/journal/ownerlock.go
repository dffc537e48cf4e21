package journal

import "sync"

// ownerLocks serializes read-modify-write cycles on per-owner rows
// (streak state, daily analytics). Lock granularity is one mutex per
// owner so different owners never contend.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int32]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{
		locks: make(map[int32]*sync.Mutex),
	}
}

func (l *ownerLocks) get(creatorID int32) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[creatorID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[creatorID] = m
	}
	return m
}

// Lock acquires the mutex for an owner and returns its unlock func.
func (l *ownerLocks) Lock(creatorID int32) func() {
	m := l.get(creatorID)
	m.Lock()
	return m.Unlock
}
