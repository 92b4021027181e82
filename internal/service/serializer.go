package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/metrics"
)

// Queue keys for the catalogs. Cart sessions are keyed by session id.
const (
	productCatalogKey = "catalog:products"
	couponCatalogKey  = "catalog:coupons"
)

const (
	jobPending int32 = iota
	jobStarted
	jobAbandoned
)

type job struct {
	ctx      context.Context
	fn       func(ctx context.Context) error
	state    atomic.Int32
	enqueued time.Time
	done     chan error
}

type keyQueue struct {
	jobs []*job
}

// Serializer runs mutations one at a time per key, in arrival order.
// Different keys run concurrently. A key's worker exits once its queue drains.
type Serializer struct {
	mu      sync.Mutex
	queues  map[string]*keyQueue
	metrics *metrics.StorefrontMetrics
}

func NewSerializer(m *metrics.StorefrontMetrics) *Serializer {
	return &Serializer{
		queues:  make(map[string]*keyQueue),
		metrics: m,
	}
}

// Do enqueues fn behind every earlier mutation for key and waits for it.
// If ctx ends before fn starts, fn is skipped and ctx.Err() is returned.
// Once fn has started, Do waits for it to finish.
func (s *Serializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j := &job{ctx: ctx, fn: fn, enqueued: time.Now(), done: make(chan error, 1)}

	s.mu.Lock()
	q, running := s.queues[key]
	if !running {
		q = &keyQueue{}
		s.queues[key] = q
	}
	q.jobs = append(q.jobs, j)
	s.mu.Unlock()

	if !running {
		go s.drain(key, q)
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		if j.state.CompareAndSwap(jobPending, jobAbandoned) {
			return ctx.Err()
		}
		return <-j.done
	}
}

func (s *Serializer) drain(key string, q *keyQueue) {
	for {
		s.mu.Lock()
		if len(q.jobs) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		j := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		s.mu.Unlock()

		if !j.state.CompareAndSwap(jobPending, jobStarted) {
			continue
		}
		s.metrics.ObserveQueueWait(queueLabel(key), time.Since(j.enqueued))
		j.done <- run(j)
	}
}

func run(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mutation panicked: %v", r)
		}
	}()
	return j.fn(j.ctx)
}

func queueLabel(key string) string {
	switch key {
	case productCatalogKey, couponCatalogKey:
		return key
	default:
		return "cart"
	}
}
