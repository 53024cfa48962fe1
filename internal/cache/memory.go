package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a generation
type LoadFunc[T any] func(ctx context.Context) (T, error)

// entry is a completed load. Failures are kept too, so a failed generation
// stays failed until the caller moves to a new one.
type entry[T any] struct {
	value T
	err   error
}

// Store runs at most one load per generation and serves its outcome forever
type Store[T any] struct {
	entries     *gocache.Cache
	group       singleflight.Group
	retired     sync.Map // Keys dropped by Forget; late loads for them are not stored
	loadTimeout time.Duration
	loads       atomic.Int64
}

// NewStore creates a store. loadTimeout bounds each load; zero means no limit.
func NewStore[T any](loadTimeout time.Duration) *Store[T] {
	return &Store[T]{
		entries:     gocache.New(gocache.NoExpiration, 0),
		loadTimeout: loadTimeout,
	}
}

// Get returns the value for gen, running load if no caller has yet. Concurrent
// callers share the in-flight load. The load is detached from ctx, so a caller
// that gives up waiting does not cancel it for the others.
func (s *Store[T]) Get(ctx context.Context, gen Generation, load LoadFunc[T]) (T, error) {
	key := gen.Key()
	if e, ok := s.lookup(key); ok {
		return e.value, e.err
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		// Double-check after winning the flight
		if e, ok := s.lookup(key); ok {
			return e, nil
		}

		loadCtx := context.WithoutCancel(ctx)
		if s.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.loadTimeout)
			defer cancel()
		}

		s.loads.Add(1)
		value, err := load(loadCtx)
		e := entry[T]{value: value, err: err}
		if _, gone := s.retired.Load(key); !gone {
			s.entries.Set(key, e, gocache.NoExpiration)
		}
		return e, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		e := res.Val.(entry[T])
		return e.value, e.err
	}
}

// Loaded reports whether gen has completed, and with which error
func (s *Store[T]) Loaded(gen Generation) (bool, error) {
	e, ok := s.lookup(gen.Key())
	return ok, e.err
}

// Forget drops the outcome stored for gen and retires it. A load still in
// flight for gen answers its waiters but is not stored.
func (s *Store[T]) Forget(gen Generation) {
	key := gen.Key()
	s.retired.Store(key, struct{}{})
	s.entries.Delete(key)
}

// Len returns the number of completed generations held
func (s *Store[T]) Len() int {
	return s.entries.ItemCount()
}

// Loads returns how many loads have run
func (s *Store[T]) Loads() int64 {
	return s.loads.Load()
}

func (s *Store[T]) lookup(key string) (entry[T], bool) {
	val, found := s.entries.Get(key)
	if !found {
		return entry[T]{}, false
	}
	return val.(entry[T]), true
}
