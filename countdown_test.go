package relay

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

var decomposeTests = []struct {
	ms   int64
	want Countdown
}{
	{0, Countdown{}},
	{499, Countdown{}},
	{999, Countdown{}},
	{1000, Countdown{Seconds: 1}},
	{1337, Countdown{Seconds: 1}},
	{59999, Countdown{Seconds: 59}},
	{60000, Countdown{Minutes: 1}},
	{((5*24+4)*60+3)*60*1000 + 2*1000 + 42, Countdown{Days: 5, Hours: 4, Minutes: 3, Seconds: 2}},
	{-1, Countdown{}},
	{-90061000, Countdown{}},
}

func TestDecompose(t *testing.T) {
	c := qt.New(t)
	for _, test := range decomposeTests {
		c.Assert(Decompose(test.ms), qt.Equals, test.want, qt.Commentf("ms %d", test.ms))
	}
}

func TestDecompose_Floor(t *testing.T) {
	c := qt.New(t)
	for ms := int64(0); ms < 3*msPerDay; ms += 7919 {
		cd := Decompose(ms)
		c.Assert(cd.Hours < 24 && cd.Minutes < 60 && cd.Seconds < 60, qt.IsTrue, qt.Commentf("%d: %+v", ms, cd))
		total := cd.Milliseconds()
		c.Assert(total <= ms && ms-total < 1000, qt.IsTrue, qt.Commentf("%d: %+v", ms, cd))
	}
}

func TestCountdownUntil(t *testing.T) {
	c := qt.New(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cd := CountdownUntil(now, now.Add(26*time.Hour+90*time.Second+500*time.Millisecond))
	c.Assert(cd, qt.Equals, Countdown{Days: 1, Hours: 2, Minutes: 1, Seconds: 30})
	c.Assert(cd.Done(), qt.IsFalse)

	cd = CountdownUntil(now, now.Add(-time.Minute))
	c.Assert(cd.Done(), qt.IsTrue)
}
