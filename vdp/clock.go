package vdp

// TicksPerSecond is the VDP's fixed master clock rate.
const TicksPerSecond = 21477270

// TicksPerLine is the number of ticks in one scan line, on every VDP
// revision covered by this core.
const TicksPerLine = 1368

// EmuTime is a tick count since the emulator's epoch. It is monotonically
// non-decreasing for any single VDP instance: the clock never goes
// backwards.
type EmuTime int64

// Add returns t advanced by n ticks.
func (t EmuTime) Add(n int) EmuTime {
	return t + EmuTime(n)
}

// Sub returns the number of ticks between t and earlier (t - earlier).
func (t EmuTime) Sub(earlier EmuTime) int {
	return int(t - earlier)
}

// Before reports whether t happens strictly before other.
func (t EmuTime) Before(other EmuTime) bool {
	return t < other
}

// Clock is a fixed-rate tick counter. It has no internal mutable time of its
// own beyond the frame origin: every entry point into the VDP is driven by a
// caller-supplied EmuTime, so Clock's only job is converting between
// absolute ticks and ticks-into-the-current-frame.
type Clock struct {
	frameStart EmuTime
}

// NewClock creates a Clock whose current frame starts at origin.
func NewClock(origin EmuTime) *Clock {
	return &Clock{frameStart: origin}
}

// FrameStart returns the start-of-frame reference time.
func (c *Clock) FrameStart() EmuTime {
	return c.frameStart
}

// SetFrameStart rebases the clock to a new frame origin. Called by VDP at
// VSYNC.
func (c *Clock) SetFrameStart(t EmuTime) {
	c.frameStart = t
}

// TicksIntoFrame converts an absolute time into ticks elapsed since
// FrameStart. The result is only meaningful if t >= FrameStart().
func (c *Clock) TicksIntoFrame(t EmuTime) int {
	return t.Sub(c.frameStart)
}

// AtTicksIntoFrame returns the absolute EmuTime for a given tick offset from
// FrameStart.
func (c *Clock) AtTicksIntoFrame(ticks int) EmuTime {
	return c.frameStart.Add(ticks)
}
