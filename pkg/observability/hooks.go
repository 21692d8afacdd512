// Package observability provides hooks for metrics and logging around the
// closure computation and its result cache.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so library packages can
// emit events without importing a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetClosureHooks(&logClosureHooks{logger})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Closure().OnPass(ctx, pass, installed, added, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Closure Hooks
// =============================================================================

// ClosureHooks receives events from the closure engine.
type ClosureHooks interface {
	// OnStart is called once with the number of records and entry points.
	OnStart(ctx context.Context, records, entryPoints int)

	// OnPass is called after every full pass over the installed set.
	OnPass(ctx context.Context, pass, installed, added int, duration time.Duration)

	// OnConverged is called when a pass adds no new records.
	OnConverged(ctx context.Context, passes, installed int, duration time.Duration)

	// OnDiagnostic is called for every dependency line that could not be parsed.
	OnDiagnostic(ctx context.Context, repo string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopClosureHooks is a no-op implementation of ClosureHooks.
type NoopClosureHooks struct{}

func (NoopClosureHooks) OnStart(context.Context, int, int)                    {}
func (NoopClosureHooks) OnPass(context.Context, int, int, int, time.Duration) {}
func (NoopClosureHooks) OnConverged(context.Context, int, int, time.Duration) {}
func (NoopClosureHooks) OnDiagnostic(context.Context, string, error)          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	closureHooks ClosureHooks = NoopClosureHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetClosureHooks registers custom closure hooks.
// This should be called once at application startup before any closure runs.
func SetClosureHooks(h ClosureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		closureHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Closure returns the registered closure hooks.
func Closure() ClosureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return closureHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	closureHooks = NoopClosureHooks{}
	cacheHooks = NoopCacheHooks{}
}
