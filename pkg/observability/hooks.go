// Package observability provides hooks for metrics, tracing, and logging.
//
// The package keeps the core library free of observability framework
// dependencies: hook interfaces cover the interesting pipeline events,
// no-op implementations are installed by default, and main can register
// real implementations (Prometheus, OpenTelemetry, whatever) at startup.
//
// Libraries emit events through the accessors:
//
//	observability.Pipeline().OnComposeStart(ctx, recordID)
//	// ... compose ...
//	observability.Pipeline().OnComposeComplete(ctx, recordID, warnings, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the poster pipeline.
type PipelineHooks interface {
	// Workbook events
	OnReadStart(ctx context.Context, path string)
	OnReadComplete(ctx context.Context, path string, recordCount int, duration time.Duration, err error)

	// Compose events, one pair per record
	OnComposeStart(ctx context.Context, recordID string)
	OnComposeComplete(ctx context.Context, recordID string, warningCount int, duration time.Duration, err error)

	// Render events, one pair per record and format
	OnRenderStart(ctx context.Context, recordID, format string)
	OnRenderComplete(ctx context.Context, recordID, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnReadStart(context.Context, string)                                  {}
func (NoopPipelineHooks) OnReadComplete(context.Context, string, int, time.Duration, error)    {}
func (NoopPipelineHooks) OnComposeStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnComposeComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, string)                        {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// Call once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// Call once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
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
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
