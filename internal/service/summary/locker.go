package summary

import "sync"

// windowLocks serializes refreshes per window key. Entries are dropped once
// no goroutine holds or waits for them.
type windowLocks struct {
	mu    sync.Mutex
	locks map[string]*windowLock
}

type windowLock struct {
	mu   sync.Mutex
	refs int
}

func newWindowLocks() *windowLocks {
	return &windowLocks{locks: make(map[string]*windowLock)}
}

// acquire blocks until key is free and returns its release func
func (l *windowLocks) acquire(key string) func() {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &windowLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *windowLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
