package relay

import "time"

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Countdown is a duration split into whole days, hours, minutes and
// seconds.
type Countdown struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Decompose splits ms milliseconds into a Countdown, rounding down to the
// second. Negative input yields the zero Countdown.
func Decompose(ms int64) Countdown {
	if ms < 0 {
		return Countdown{}
	}
	return Countdown{
		Days:    ms / msPerDay,
		Hours:   ms % msPerDay / msPerHour,
		Minutes: ms % msPerHour / msPerMinute,
		Seconds: ms % msPerMinute / msPerSecond,
	}
}

// CountdownUntil returns the time left between now and end.
func CountdownUntil(now, end time.Time) Countdown {
	return Decompose(end.Sub(now).Milliseconds())
}

// Milliseconds returns the duration the countdown represents.
func (c Countdown) Milliseconds() int64 {
	return c.Days*msPerDay + c.Hours*msPerHour + c.Minutes*msPerMinute + c.Seconds*msPerSecond
}

// Done reports whether no whole second is left.
func (c Countdown) Done() bool {
	return c == Countdown{}
}
