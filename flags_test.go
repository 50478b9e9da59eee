package relay

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestIsFlagActive(t *testing.T) {
	c := qt.New(t)
	rd, err := ParseRuntimeData([]byte(`{
		"WAFFLE_FLAGS": [["a", false], ["a", true], ["b", true]],
		"WAFFLE_SWITCHES": [["s", true]]
	}`))
	c.Assert(err, qt.IsNil)

	// The first occurrence governs.
	c.Assert(IsFlagActive(rd, "a"), qt.IsFalse)
	c.Assert(IsFlagActive(rd, "b"), qt.IsTrue)
	c.Assert(IsFlagActive(rd, "missing"), qt.IsFalse)
	c.Assert(IsFlagActive(rd, "s"), qt.IsFalse)

	c.Assert(IsSwitchActive(rd, "s"), qt.IsTrue)
	c.Assert(IsSwitchActive(rd, "a"), qt.IsFalse)
}

func TestIsFlagActive_NilData(t *testing.T) {
	c := qt.New(t)
	c.Assert(IsFlagActive(nil, "tips"), qt.IsFalse)
	c.Assert(IsSwitchActive(nil, "tips"), qt.IsFalse)
	c.Assert(IsFlagActive(DefaultRuntimeData(), "tips"), qt.IsFalse)
}
