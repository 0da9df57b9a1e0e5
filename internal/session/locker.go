package session

import "sync"

// Locker serializes turns per session while allowing unlimited parallelism
// across sessions. Prior state is read-modify-write across several stages
// of a turn, so a second in-flight turn for the same session could observe
// it half-updated.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker creates an empty session locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the session, creating it on first use.
func (l *Locker) Lock(key string) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
}

// Unlock releases the session's mutex.
func (l *Locker) Unlock(key string) {
	l.mu.Lock()
	m, ok := l.locks[key]
	l.mu.Unlock()

	if ok {
		m.Unlock()
	}
}
