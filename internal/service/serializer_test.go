package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializerRunsOneAtATimePerKey(t *testing.T) {
	s := NewSerializer(nil)
	ctx := context.Background()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(ctx, "session-1", func(ctx context.Context) error {
				n := active.Add(1)
				for {
					m := maxActive.Load()
					if n <= m || maxActive.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestSerializerPreservesArrivalOrder(t *testing.T) {
	s := NewSerializer(nil)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Do(ctx, "k", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Do(ctx, "k", func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}(i)
		// Let each goroutine enqueue before the next one starts.
		require.Eventually(t, func() bool { return queuedJobs(s, "k") == i+1 }, time.Second, time.Millisecond)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSerializerKeysRunConcurrently(t *testing.T) {
	s := NewSerializer(nil)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Do(ctx, "blocked", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started
	defer close(release)

	done := make(chan error, 1)
	go func() {
		done <- s.Do(ctx, "other", func(ctx context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("mutation on an unrelated key waited for a blocked key")
	}
}

func TestSerializerSkipsAbandonedJobs(t *testing.T) {
	s := NewSerializer(nil)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), "k", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var ran atomic.Bool
	err := s.Do(ctx, "k", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.Do(context.Background(), "k", func(ctx context.Context) error { return nil }))
	assert.False(t, ran.Load())
}

func TestSerializerReturnsErrorsAndRecoversPanics(t *testing.T) {
	s := NewSerializer(nil)
	ctx := context.Background()

	boom := errors.New("boom")
	assert.ErrorIs(t, s.Do(ctx, "k", func(ctx context.Context) error { return boom }), boom)

	err := s.Do(ctx, "k", func(ctx context.Context) error { panic("bad mutation") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad mutation")

	// The queue keeps working after a panic.
	assert.NoError(t, s.Do(ctx, "k", func(ctx context.Context) error { return nil }))
}

func TestSerializerReleasesIdleQueues(t *testing.T) {
	s := NewSerializer(nil)
	require.NoError(t, s.Do(context.Background(), "k", func(ctx context.Context) error { return nil }))

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.queues) == 0
	}, time.Second, time.Millisecond)
}

func queuedJobs(s *Serializer, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[key]
	if !ok {
		return 0
	}
	return len(q.jobs)
}
