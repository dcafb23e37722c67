package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "catalog", []string{"bl1"})
	v, ok := s.Get(ctx, "catalog")
	if !ok {
		t.Fatal("expected cached value")
	}
	if got := v.([]string); len(got) != 1 || got[0] != "bl1" {
		t.Fatalf("unexpected cached value: %v", got)
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(5 * time.Millisecond)
	ctx := context.Background()

	s.Set(ctx, "catalog", "value")
	time.Sleep(10 * time.Millisecond)

	if _, ok := s.Get(ctx, "catalog"); ok {
		t.Fatal("expected expired entry to be gone")
	}
}

func TestGetOrLoadCachesResult(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()
	loads := 0

	loader := func(context.Context) (any, error) {
		loads++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		v, err := s.GetOrLoad(ctx, "key", loader)
		if err != nil {
			t.Fatalf("get or load: %v", err)
		}
		if v != "loaded" {
			t.Fatalf("unexpected value: %v", v)
		}
	}

	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()
	loads := 0

	loader := func(context.Context) (any, error) {
		loads++
		if loads == 1 {
			return nil, fmt.Errorf("boom")
		}
		return "recovered", nil
	}

	if _, err := s.GetOrLoad(ctx, "key", loader); err == nil {
		t.Fatal("expected first load to fail")
	}
	v, err := s.GetOrLoad(ctx, "key", loader)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if v != "recovered" {
		t.Fatalf("unexpected value: %v", v)
	}
}
