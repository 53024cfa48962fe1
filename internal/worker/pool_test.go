package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap_PreservesOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3}
	out, err := Map(context.Background(), 3, inputs, func(ctx context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, n := range inputs {
		if out[i] != n*10 {
			t.Errorf("output %d: expected %d, got %d", i, n*10, out[i])
		}
	}
}

func TestMap_Empty(t *testing.T) {
	out, err := Map(context.Background(), 4, []string{}, func(ctx context.Context, s string) (string, error) {
		t.Error("fn should not be called")
		return s, nil
	})
	if err != nil || len(out) != 0 {
		t.Errorf("expected empty result, got %v %v", out, err)
	}
}

func TestMap_WorkerBound(t *testing.T) {
	var active, peak int32
	inputs := make([]int, 20)

	_, err := Map(context.Background(), 2, inputs, func(ctx context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 2 {
		t.Errorf("expected at most 2 concurrent workers, saw %d", peak)
	}
}

func TestMap_FirstErrorStopsWork(t *testing.T) {
	var executed int32
	boom := errors.New("boom")
	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}

	_, err := Map(context.Background(), 1, inputs, func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&executed, 1)
		if n == 3 {
			return 0, boom
		}
		return n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := atomic.LoadInt32(&executed); got >= int32(len(inputs)) {
		t.Errorf("expected remaining work to be skipped, executed %d", got)
	}
}

func TestMap_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Map(ctx, 2, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
