package utils

import (
	"sync"
	"time"
)

type sessionLock struct {
	mu       sync.Mutex
	holders  int
	lastUsed time.Time
}

// SessionLocks hands out one mutex per game session so that a
// load→handle→save cycle never interleaves with another for the same game.
type SessionLocks struct {
	locks         map[string]*sessionLock
	mutex         sync.Mutex
	cleanupTicker *time.Ticker
	done          chan struct{}
	closeOnce     sync.Once
}

// NewSessionLocks creates a lock manager. Idle entries older than idleAfter
// are dropped every sweepEvery; a zero sweepEvery disables the sweep.
func NewSessionLocks(sweepEvery, idleAfter time.Duration) *SessionLocks {
	sl := &SessionLocks{
		locks: make(map[string]*sessionLock),
		done:  make(chan struct{}),
	}

	if sweepEvery > 0 {
		sl.cleanupTicker = time.NewTicker(sweepEvery)
		go sl.cleanupRoutine(idleAfter)
	}
	return sl
}

// Lock blocks until gameID is free and returns the matching unlock func
func (sl *SessionLocks) Lock(gameID string) func() {
	sl.mutex.Lock()
	lock, exists := sl.locks[gameID]
	if !exists {
		lock = &sessionLock{}
		sl.locks[gameID] = lock
	}
	lock.holders++
	sl.mutex.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		sl.mutex.Lock()
		lock.holders--
		lock.lastUsed = time.Now()
		sl.mutex.Unlock()
	}
}

// Size returns the number of tracked sessions
func (sl *SessionLocks) Size() int {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	return len(sl.locks)
}

// Close stops the sweep routine
func (sl *SessionLocks) Close() {
	sl.closeOnce.Do(func() {
		if sl.cleanupTicker != nil {
			sl.cleanupTicker.Stop()
		}
		close(sl.done)
	})
}

func (sl *SessionLocks) cleanupRoutine(idleAfter time.Duration) {
	for {
		select {
		case <-sl.cleanupTicker.C:
			sl.sweep(time.Now(), idleAfter)
		case <-sl.done:
			return
		}
	}
}

// sweep drops locks nobody holds or waits on that have been idle for idleAfter
func (sl *SessionLocks) sweep(now time.Time, idleAfter time.Duration) int {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	removed := 0
	for gameID, lock := range sl.locks {
		if lock.holders == 0 && now.Sub(lock.lastUsed) >= idleAfter {
			delete(sl.locks, gameID)
			removed++
		}
	}
	return removed
}
