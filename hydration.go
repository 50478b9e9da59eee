package relay

import "sync/atomic"

// RenderContext carries what a render pass knows about its environment.
// It is passed explicitly to Client.RuntimeData.
type RenderContext struct {
	// Hydrated is true once client-side code has completed its first
	// render. It is false for every server-side render.
	Hydrated bool
}

var (
	// ServerRender is the context of a server-side or static render.
	ServerRender = RenderContext{Hydrated: false}
	// HydratedRender is the context of a client render after hydration.
	HydratedRender = RenderContext{Hydrated: true}
)

// Hydration tracks whether a client session has completed its first
// render. The flag only moves from false to true.
// The zero value is not hydrated and ready to use.
type Hydration struct {
	done atomic.Bool
}

// MarkHydrated flips the flag. It returns true only for the call that
// performed the transition.
func (h *Hydration) MarkHydrated() bool {
	return h.done.CompareAndSwap(false, true)
}

// Hydrated reports whether MarkHydrated has been called.
func (h *Hydration) Hydrated() bool {
	return h.done.Load()
}

// RenderContext returns the context for a render pass starting now.
// All reads within one pass should share the returned value.
func (h *Hydration) RenderContext() RenderContext {
	return RenderContext{Hydrated: h.Hydrated()}
}
