package services

import "sync"

// userLocks serializes all mutations of one user's investment collection:
// accrual ticks, the reconciler and user-initiated contribute/withdraw/edit
// actions all acquire the same per-user lock. The reference design got this
// ordering for free from a single-threaded runtime; here it is explicit.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a user, creating it on first use.
func (l *userLocks) Lock(userID string) {
	l.forUser(userID).Lock()
}

// Unlock releases the user's mutex.
func (l *userLocks) Unlock(userID string) {
	l.forUser(userID).Unlock()
}

func (l *userLocks) forUser(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}
