package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestImportLimiter_Status(t *testing.T) {
	l := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	steps := []struct {
		name string
		do   func()
		want ImportLimiterStatus
	}{
		{name: "initial", do: func() {}, want: ImportLimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2}},
		{name: "one acquired", do: func() { l.Acquire(ctx) }, want: ImportLimiterStatus{Active: 1, Available: 1, MaxConcurrent: 2}},
		{name: "full", do: func() { l.Acquire(ctx) }, want: ImportLimiterStatus{Active: 2, Available: 0, MaxConcurrent: 2}},
		{name: "one released", do: l.Release, want: ImportLimiterStatus{Active: 1, Available: 1, MaxConcurrent: 2}},
		{name: "drained", do: l.Release, want: ImportLimiterStatus{Active: 0, Available: 2, MaxConcurrent: 2}},
	}

	for _, s := range steps {
		s.do()
		if got := l.Status(); got != s.want {
			t.Errorf("%s: Status() = %+v, want %+v", s.name, got, s.want)
		}
	}
}

func TestImportLimiter_BusyAfterMaxWait(t *testing.T) {
	l := NewImportLimiter(1, 50*time.Millisecond)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer l.Release()

	start := time.Now()
	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrImportBusy) {
		t.Fatalf("second Acquire() error = %v, want ErrImportBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("rejected after %v, want to wait about 50ms", elapsed)
	}
}

func TestImportLimiter_CallerCancel(t *testing.T) {
	l := NewImportLimiter(1, 5*time.Second)
	l.Acquire(context.Background())
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want the caller's deadline rather than ErrImportBusy", err)
	}
}

func TestImportLimiter_NeverExceedsMax(t *testing.T) {
	const maxConcurrent = 3
	l := NewImportLimiter(maxConcurrent, 5*time.Second)

	var (
		wg      sync.WaitGroup
		running atomic.Int32
		peak    atomic.Int32
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			defer l.Release()

			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > maxConcurrent {
		t.Errorf("peak concurrency = %d, want <= %d", got, maxConcurrent)
	}
	if got := l.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount() = %d after all released, want 0", got)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	l := NewImportLimiter(2, time.Second)

	if err := l.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain() on idle limiter error = %v", err)
	}

	l.Acquire(context.Background())
	l.Acquire(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.WaitForDrain(context.Background()) }()

	l.Release()
	select {
	case <-done:
		t.Fatal("WaitForDrain() returned with one import still active")
	case <-time.After(20 * time.Millisecond):
	}

	l.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain() did not return after the last release")
	}
}

func TestImportLimiter_WaitForDrainTimeout(t *testing.T) {
	l := NewImportLimiter(1, time.Second)
	l.Acquire(context.Background())
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() error = %v, want DeadlineExceeded", err)
	}
}

func TestImportLimiter_Defaults(t *testing.T) {
	l := NewImportLimiter(0, -time.Second)
	if got := l.Status().MaxConcurrent; got != DefaultMaxConcurrentImports {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentImports)
	}
	if l.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", l.maxWait, DefaultMaxWaitTime)
	}
}
