package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopClosureHooks{}
	c.OnStart(ctx, 10, 2)
	c.OnPass(ctx, 1, 5, 3, time.Millisecond)
	c.OnConverged(ctx, 3, 7, time.Millisecond)
	c.OnDiagnostic(ctx, "edx/foo", errors.New("bad line"))

	ch := NoopCacheHooks{}
	ch.OnCacheHit(ctx, "closure")
	ch.OnCacheMiss(ctx, "closure")
	ch.OnCacheSet(ctx, "closure", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Closure().(NoopClosureHooks); !ok {
		t.Error("Closure() should return NoopClosureHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customClosure := &testClosureHooks{}
	SetClosureHooks(customClosure)
	if Closure() != customClosure {
		t.Error("SetClosureHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// nil is ignored
	SetClosureHooks(nil)
	if Closure() != customClosure {
		t.Error("SetClosureHooks(nil) should keep the current hooks")
	}

	Reset()
	if _, ok := Closure().(NoopClosureHooks); !ok {
		t.Error("Reset() should restore NoopClosureHooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testClosureHooks{}
	SetClosureHooks(h)

	ctx := context.Background()
	Closure().OnPass(ctx, 1, 4, 2, time.Millisecond)
	Closure().OnPass(ctx, 2, 4, 0, time.Millisecond)
	Closure().OnConverged(ctx, 2, 4, time.Millisecond)

	if h.passes != 2 {
		t.Errorf("passes = %d, want 2", h.passes)
	}
	if !h.converged {
		t.Error("OnConverged not received")
	}
}

type testClosureHooks struct {
	NoopClosureHooks
	passes    int
	converged bool
}

func (h *testClosureHooks) OnPass(context.Context, int, int, int, time.Duration) { h.passes++ }
func (h *testClosureHooks) OnConverged(context.Context, int, int, time.Duration) {
	h.converged = true
}

type testCacheHooks struct{ NoopCacheHooks }
