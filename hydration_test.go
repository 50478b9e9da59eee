package relay

import (
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHydration(t *testing.T) {
	c := qt.New(t)
	var h Hydration
	c.Assert(h.Hydrated(), qt.IsFalse)
	c.Assert(h.RenderContext(), qt.Equals, ServerRender)

	c.Assert(h.MarkHydrated(), qt.IsTrue)
	c.Assert(h.Hydrated(), qt.IsTrue)
	c.Assert(h.RenderContext(), qt.Equals, HydratedRender)

	// The flag never goes back.
	c.Assert(h.MarkHydrated(), qt.IsFalse)
	c.Assert(h.Hydrated(), qt.IsTrue)
}

func TestHydration_SingleTransition(t *testing.T) {
	c := qt.New(t)
	var h Hydration
	var wg sync.WaitGroup
	var mu sync.Mutex
	transitions := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.MarkHydrated() {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	c.Assert(transitions, qt.Equals, 1)
}
