package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get missing = hit=%v err=%v, want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get = hit=%v err=%v, want hit", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("Get = %q, want value", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	original := []byte("value")
	c.Set(ctx, "k", original, 0)
	original[0] = 'X'

	data, _, _ := c.Get(ctx, "k")
	if string(data) != "value" {
		t.Errorf("cached data aliased caller slice: %q", data)
	}
}

func TestNullCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("null cache should never hit")
	}
}

func TestKeyerDistinguishesOptions(t *testing.T) {
	k := NewDefaultKeyer()

	s1 := k.SnapshotKey("hash", SnapshotKeyOpts{ParameterDivisor: 10, BiologyDivisor: 100})
	s2 := k.SnapshotKey("hash", SnapshotKeyOpts{ParameterDivisor: 20, BiologyDivisor: 100})
	if s1 == s2 {
		t.Error("different snapshot opts should produce different keys")
	}
	if !strings.HasPrefix(s1, "snapshot:") {
		t.Errorf("snapshot key prefix: %s", s1)
	}

	l1 := k.LayoutKey("hash", LayoutKeyOpts{Width: 800, Seed: 42})
	l2 := k.LayoutKey("hash", LayoutKeyOpts{Width: 800, Seed: 43})
	if l1 == l2 {
		t.Error("different seeds should produce different layout keys")
	}

	a1 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "json"})
	if a1 == a2 {
		t.Error("different formats should produce different artifact keys")
	}
}

func TestHashStability(t *testing.T) {
	if Hash([]byte("data")) != Hash([]byte("data")) {
		t.Error("Hash is not deterministic")
	}
	if len(Hash([]byte("data"))) != 64 {
		t.Errorf("Hash length = %d, want 64", len(Hash([]byte("data"))))
	}
}
