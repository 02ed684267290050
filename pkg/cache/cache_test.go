package cache

import (
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte(`[{"i":"a","x":0,"y":0,"w":1,"h":1}]`))
	if len(h) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h))
	}
	if h != Hash([]byte(`[{"i":"a","x":0,"y":0,"w":1,"h":1}]`)) {
		t.Error("Hash is not deterministic")
	}
	if h == Hash([]byte(`[{"i":"a","x":1,"y":0,"w":1,"h":1}]`)) {
		t.Error("moved item hashes like the original")
	}
}

func TestHashValue(t *testing.T) {
	type item struct {
		I    string `json:"i"`
		X, Y int
	}
	a, err := HashValue([]item{{"a", 0, 0}, {"b", 1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashValue([]item{{"b", 1, 0}, {"a", 0, 0}})
	if a == b {
		t.Error("item order should change the hash")
	}
	if _, err := HashValue(func() {}); err == nil {
		t.Error("expected error for a value JSON cannot encode")
	}
}

func TestOpKeyNonFiniteOptions(t *testing.T) {
	opts := OpKeyOpts{Cols: 12, RowHeight: math.Inf(1)}
	k := NewDefaultKeyer().OpKey("compact", "h", opts)
	if !strings.HasPrefix(k, "op:compact:") {
		t.Errorf("OpKey = %q", k)
	}
	if k != NewDefaultKeyer().OpKey("compact", "h", opts) {
		t.Error("OpKey is not deterministic for non-finite options")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := OpKeyOpts{Cols: 12, CompactType: "vertical", Margin: [2]float64{10, 10}}

	k1 := k.OpKey("compact", "hash123", opts)
	if k1 != k.OpKey("compact", "hash123", opts) {
		t.Error("OpKey should be deterministic")
	}
	if !strings.HasPrefix(k1, "op:compact:") {
		t.Errorf("OpKey unexpected prefix: %s", k1)
	}

	if k1 == k.OpKey("move", "hash123", opts) {
		t.Error("Different operations should produce different keys")
	}
	if k1 == k.OpKey("compact", "hash456", opts) {
		t.Error("Different inputs should produce different keys")
	}

	other := opts
	other.CompactType = "horizontal"
	if k1 == k.OpKey("compact", "hash123", other) {
		t.Error("Different OpKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	key := scoped.OpKey("compact", "abc", OpKeyOpts{})
	if key != "tenant:123:"+inner.OpKey("compact", "abc", OpKeyOpts{}) {
		t.Errorf("ScopedKeyer OpKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.OpKey("sync", "h", OpKeyOpts{})
	if !strings.HasPrefix(key, "prefix:op:sync:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`[{"i":"a"}]`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != `[{"i":"a"}]` {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned as a hit")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v; want 3, nil", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if c.Dir() == "" {
		t.Error("Dir() is empty")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("STACKGRID_TEST_REDIS")
	if url == "" {
		t.Skip("STACKGRID_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "stackgrid:test:" + Hash([]byte(t.Name()))
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Errorf("Get after Delete = %v, %v", hit, err)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should stay nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v, want a retryable ErrNetwork", err)
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message = %q", err.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("plain errors are not retryable")
	}
}

func TestBackoffRetry(t *testing.T) {
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}
	tests := []struct {
		name      string
		failures  int
		fail      error
		wantCalls int
		wantErr   error
	}{
		{"succeeds at once", 0, nil, 1, nil},
		{"plain error stops", 5, ErrNotFound, 1, ErrNotFound},
		{"recovers after a retry", 1, Retryable(ErrNetwork), 2, nil},
		{"gives up after the last attempt", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Retry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.fail
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoffRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
