package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testGen() Generation {
	return Generation{Grammar: 1, Dialect: "auto", Source: "http://example.com/lg.txt"}
}

func TestGeneration_Key(t *testing.T) {
	g := testGen()
	if g.Key() != testGen().Key() {
		t.Error("expected stable key")
	}
	if g.Key() == g.Next().Key() {
		t.Error("expected next generation to have a new key")
	}
	other := g
	other.Grammar = 2
	if g.Key() == other.Key() {
		t.Error("expected grammar version to change the key")
	}
	if g.Next().Revision != 1 || g.Revision != 0 {
		t.Error("Next must not mutate the receiver")
	}
}

func TestStore_LoadsOncePerGeneration(t *testing.T) {
	store := NewStore[string](time.Second)
	var calls int32
	release := make(chan struct{})

	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "table", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := store.Get(context.Background(), testGen(), load)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly one load, got %d", got)
	}
	for i, v := range results {
		if v != "table" {
			t.Errorf("caller %d got %q", i, v)
		}
	}

	// Later callers reuse the completed value
	if _, err := store.Get(context.Background(), testGen(), load); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected no reload, got %d loads", got)
	}
	if store.Loads() != 1 || store.Len() != 1 {
		t.Errorf("unexpected counters loads=%d len=%d", store.Loads(), store.Len())
	}
}

func TestStore_FailureIsMemoized(t *testing.T) {
	store := NewStore[int](0)
	boom := errors.New("fetch failed")
	var calls int32
	load := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, boom
	}

	for i := 0; i < 3; i++ {
		if _, err := store.Get(context.Background(), testGen(), load); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected failed generation to stay failed, got %d loads", calls)
	}
	if done, err := store.Loaded(testGen()); !done || !errors.Is(err, boom) {
		t.Errorf("expected loaded failure, got %v %v", done, err)
	}

	// A new generation retries
	next := testGen().Next()
	v, err := store.Get(context.Background(), next, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 7, nil
	})
	if err != nil || v != 7 {
		t.Errorf("expected 7 from new generation, got %d %v", v, err)
	}
	if calls != 2 {
		t.Errorf("expected a second load for the new generation, got %d", calls)
	}
}

func TestStore_WaiterCanAbandon(t *testing.T) {
	store := NewStore[string](time.Second)
	release := make(chan struct{})
	started := make(chan struct{})
	load := func(ctx context.Context) (string, error) {
		close(started)
		select {
		case <-release:
			return "done", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := store.Get(ctx, testGen(), load)
		errCh <- err
	}()

	<-started
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled wait, got %v", err)
	}

	// The shared load keeps running for everyone else
	close(release)
	v, err := store.Get(context.Background(), testGen(), load)
	if err != nil || v != "done" {
		t.Errorf("expected detached load to complete, got %q %v", v, err)
	}
}

func TestStore_LoadTimeout(t *testing.T) {
	store := NewStore[string](10 * time.Millisecond)
	_, err := store.Get(context.Background(), testGen(), func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestStore_Forget(t *testing.T) {
	store := NewStore[int](0)
	_, _ = store.Get(context.Background(), testGen(), func(ctx context.Context) (int, error) { return 1, nil })
	store.Forget(testGen())
	if done, _ := store.Loaded(testGen()); done {
		t.Error("expected generation to be forgotten")
	}
}

func TestStore_ForgetDuringLoad(t *testing.T) {
	store := NewStore[int](time.Second)
	started := make(chan struct{})
	release := make(chan struct{})

	result := make(chan int, 1)
	go func() {
		v, _ := store.Get(context.Background(), testGen(), func(ctx context.Context) (int, error) {
			close(started)
			<-release
			return 7, nil
		})
		result <- v
	}()

	<-started
	store.Forget(testGen())
	close(release)

	if v := <-result; v != 7 {
		t.Errorf("expected waiter to receive 7, got %d", v)
	}
	if done, _ := store.Loaded(testGen()); done || store.Len() != 0 {
		t.Errorf("expected no entry for a forgotten generation, len=%d", store.Len())
	}
}
