package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Engine hooks
	e := NoopEngineHooks{}
	e.OnCompact(ctx, "vertical", 10, time.Millisecond)
	e.OnMove(ctx, "vertical", 3, false, time.Millisecond)
	e.OnResize(ctx, "se", true, time.Millisecond)
	e.OnSync(ctx, 1, 2, time.Millisecond)

	// Session hooks
	s := NoopSessionHooks{}
	s.OnGesture(ctx, "drag", "start")
	s.OnLayoutChange(ctx, 4)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "compact")
	c.OnCacheMiss(ctx, "move")
	c.OnCacheSet(ctx, "sync", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/compact")
	h.OnResponse(ctx, "POST", "/v1/compact", 200, time.Second)
	h.OnError(ctx, "POST", "/v1/compact", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Engine() should return NoopEngineHooks by default")
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customEngine := &testEngineHooks{}
	SetEngineHooks(customEngine)
	if Engine() != customEngine {
		t.Error("SetEngineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Engine().(NoopEngineHooks); !ok {
		t.Error("Reset() should restore NoopEngineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEngineHooks{}
	SetEngineHooks(custom)

	// Setting nil should be ignored
	SetEngineHooks(nil)

	if Engine() != custom {
		t.Error("SetEngineHooks(nil) should be ignored")
	}

	Reset()
}

func TestInstall(t *testing.T) {
	Reset()
	defer Reset()

	p := NewPrometheus(prometheus.NewRegistry())
	Install(p)

	if Engine() != EngineHooks(p) || Session() != SessionHooks(p) || Cache() != CacheHooks(p) || HTTP() != HTTPHooks(p) {
		t.Error("Install should register every implemented category")
	}

	// A partial implementation only replaces its own category.
	Install(&testCacheHooks{})
	if Engine() != EngineHooks(p) {
		t.Error("Install replaced hooks the value does not implement")
	}
}

func TestPrometheus(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.OnMove(ctx, "vertical", 2, false, time.Millisecond)
	p.OnMove(ctx, "vertical", 0, true, time.Millisecond)
	p.OnResize(ctx, "se", true, time.Millisecond)
	p.OnSync(ctx, 3, 1, time.Millisecond)
	p.OnGesture(ctx, "drag", "start")
	p.OnGesture(ctx, "drag", "start")
	p.OnLayoutChange(ctx, 7)
	p.OnCacheHit(ctx, "compact")
	p.OnCacheSet(ctx, "compact", 128)
	p.OnResponse(ctx, "POST", "/v1/move", 200, time.Millisecond)
	p.OnError(ctx, "POST", "/v1/move", errors.New("boom"))

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"move vetoes", testutil.ToFloat64(p.vetoes.WithLabelValues("move")), 1},
		{"resize vetoes", testutil.ToFloat64(p.vetoes.WithLabelValues("resize")), 1},
		{"sync added", testutil.ToFloat64(p.syncChanges.WithLabelValues("added")), 3},
		{"sync removed", testutil.ToFloat64(p.syncChanges.WithLabelValues("removed")), 1},
		{"drag starts", testutil.ToFloat64(p.gestures.WithLabelValues("drag", "start")), 2},
		{"layout items", testutil.ToFloat64(p.layoutItems), 7},
		{"cache hits", testutil.ToFloat64(p.cacheOps.WithLabelValues("compact", "hit")), 1},
		{"cache bytes", testutil.ToFloat64(p.cacheBytes), 128},
		{"requests", testutil.ToFloat64(p.requests.WithLabelValues("POST", "/v1/move", "200")), 1},
		{"errors", testutil.ToFloat64(p.reqErrors.WithLabelValues("POST", "/v1/move")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if n, err := testutil.GatherAndCount(reg, "stackgrid_operation_duration_seconds"); err != nil || n != 3 {
		t.Errorf("operation duration series = %d, %v; want 3", n, err)
	}
}

// Test implementations
type testEngineHooks struct{ NoopEngineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
