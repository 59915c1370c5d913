package memo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoizerDo(t *testing.T) {
	ctx := context.Background()
	m := New[string](nil)
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	v, err := m.Do(ctx, "key", time.Minute, fetch)
	if err != nil || v != "value" {
		t.Fatalf("expected value, got %q err=%v", v, err)
	}
	v, err = m.Do(ctx, "key", time.Minute, fetch)
	if err != nil || v != "value" {
		t.Fatalf("expected cached value, got %q err=%v", v, err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one compute, got %d", n)
	}
}

func TestMemoizerCollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	m := New[string](nil)
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "value", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Do(ctx, "key", time.Minute, fetch)
			if err != nil || v != "value" {
				t.Errorf("expected value, got %q err=%v", v, err)
			}
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected concurrent misses to collapse into one compute, got %d", n)
	}
}

func TestMemoizerError(t *testing.T) {
	ctx := context.Background()
	m := New[string](nil)
	boom := errors.New("boom")
	var calls atomic.Int32

	fail := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	}

	if _, err := m.Do(ctx, "key", time.Minute, fail); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	// Failures are not cached; the next call computes again.
	if _, err := m.Do(ctx, "key", time.Minute, fail); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected two computes, got %d", n)
	}
}

func TestMemoizerTTL(t *testing.T) {
	ctx := context.Background()
	m := New[string](nil)
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	if _, err := m.Do(ctx, "key", 10*time.Millisecond, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := m.Do(ctx, "key", time.Minute, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected recompute after expiry, got %d computes", n)
	}
}

func TestMemoizerForget(t *testing.T) {
	ctx := context.Background()
	m := New[string](nil)
	var calls atomic.Int32

	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "value", nil
	}

	if _, err := m.Do(ctx, "key", time.Minute, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Forget(ctx, "key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cache().Len() != 0 {
		t.Fatalf("expected empty cache after forget, got %d", m.Cache().Len())
	}
	if _, err := m.Do(ctx, "key", time.Minute, fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected recompute after forget, got %d computes", n)
	}
}
