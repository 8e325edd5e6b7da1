package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	p := New("s1", time.Now())
	p.Name = "Bob"
	p.Pending = &Pending{DoctorID: 3}
	require.NoError(t, store.Save(ctx, p))

	// mutating the caller's copy must not leak into the store
	p.Pending.DoctorID = 99

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.Equal(t, 3, got.Pending.DoctorID)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, New("s1", now)))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	err := NewMemoryStore(0).Save(context.Background(), Profile{})
	assert.Error(t, err)
}

func TestLocalLockerSerializesSameSession(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithSessionLock(ctx, "s1", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.locks)
}

func TestLocalLockerDifferentSessionsDoNotBlock(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithSessionLock(ctx, "a", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	done := make(chan struct{})
	go func() {
		_ = locker.WithSessionLock(ctx, "b", func(ctx context.Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different session blocked")
	}
	close(release)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	locker := NewLocalLocker()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithSessionLock(context.Background(), "s1", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := locker.WithSessionLock(ctx, "s1", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}
