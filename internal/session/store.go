// Package session holds per-conversation state and the primitives that keep
// concurrent turns of one conversation from interleaving.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store loads and saves profiles keyed by session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (Profile, error)
	Save(ctx context.Context, p Profile) error
}

// Locker serializes work on a single session.
type Locker interface {
	WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error
}

// MemoryStore keeps profiles in process memory. Profiles idle for longer than ttl are dropped on access.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore. A zero ttl keeps profiles forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (Profile, error) {
	s.mu.RLock()
	p, ok := s.profiles[sessionID]
	s.mu.RUnlock()
	if !ok {
		return Profile{}, ErrNotFound
	}
	if s.expired(p) {
		s.mu.Lock()
		delete(s.profiles, sessionID)
		s.mu.Unlock()
		return Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, p Profile) error {
	if p.SessionID == "" {
		return errors.New("session: profile has no session id")
	}
	s.mu.Lock()
	s.profiles[p.SessionID] = p.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) expired(p Profile) bool {
	return s.ttl > 0 && s.now().Sub(p.UpdatedAt) > s.ttl
}

// LocalLocker is an in-process keyed mutex. Waiting honours context cancellation.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localLock)}
}

func (l *LocalLocker) WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	lock := l.ref(sessionID)
	defer l.unref(sessionID, lock)

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock.sem }()

	return fn(ctx)
}

func (l *LocalLocker) ref(sessionID string) *localLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &localLock{sem: make(chan struct{}, 1)}
		l.locks[sessionID] = lock
	}
	lock.refs++
	return lock
}

func (l *LocalLocker) unref(sessionID string, lock *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, sessionID)
	}
}
