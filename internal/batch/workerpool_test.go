package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(3, 10)
	pool.Start(context.Background(), nil)

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		if err := pool.Submit(context.Background(), func(ctx context.Context) error {
			count.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	pool.Close()

	if got := count.Load(); got != 10 {
		t.Errorf("ran %d jobs, want 10", got)
	}
}

func TestWorkerPool_ReportsErrors(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	var errs atomic.Int32
	pool.Start(context.Background(), func(err error) { errs.Add(1) })

	for i := 0; i < 3; i++ {
		_ = pool.Submit(context.Background(), func(ctx context.Context) error {
			return errors.New("boom")
		})
	}
	pool.Close()

	if got := errs.Load(); got != 3 {
		t.Errorf("got %d errors, want 3", got)
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	pool.Start(context.Background(), nil)
	pool.Close()
	pool.Close()

	err := pool.Submit(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Submit() error = %v, want ErrPoolClosed", err)
	}
}

func TestWorkerPool_SubmitCancelled(t *testing.T) {
	// no workers are started, so the queue stays full
	pool := NewWorkerPool(1, 1)
	noop := func(ctx context.Context) error { return nil }
	if err := pool.Submit(context.Background(), noop); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pool.Submit(ctx, noop); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit() error = %v, want context.Canceled", err)
	}
}
