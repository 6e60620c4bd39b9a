package timeline

import (
	"fmt"
	"math"
	"strings"
)

// BoundPolicy decides what Tick does when time passes the configured duration.
type BoundPolicy uint8

const (
	// BoundWrap restarts from zero, looping the timeline.
	BoundWrap BoundPolicy = iota
	// BoundClamp stops at the duration and pauses playback.
	BoundClamp
	// BoundNone lets time run past the duration.
	BoundNone
)

func ParseBoundPolicy(s string) (BoundPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap", "loop":
		return BoundWrap, nil
	case "clamp":
		return BoundClamp, nil
	case "none", "unbounded":
		return BoundNone, nil
	}
	return BoundWrap, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func (p BoundPolicy) String() string {
	switch p {
	case BoundWrap:
		return "wrap"
	case BoundClamp:
		return "clamp"
	case BoundNone:
		return "none"
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// Clock is the playback clock. Time is in seconds. Not safe for concurrent use.
type Clock struct {
	current  float64
	playing  bool
	duration float64
	policy   BoundPolicy
}

// NewClock returns a paused clock at zero. A duration <= 0 disables bounding.
func NewClock(duration float64, policy BoundPolicy) *Clock {
	return &Clock{duration: duration, policy: policy}
}

func (c *Clock) Play()  { c.playing = true }
func (c *Clock) Pause() { c.playing = false }

// Toggle flips between playing and paused and returns the new state.
func (c *Clock) Toggle() bool {
	c.playing = !c.playing
	return c.playing
}

func (c *Clock) Playing() bool     { return c.playing }
func (c *Clock) Current() float64  { return c.current }
func (c *Clock) Duration() float64 { return c.duration }

func (c *Clock) Policy() BoundPolicy { return c.policy }

func (c *Clock) SetDuration(d float64) {
	c.duration = d
}

func (c *Clock) SetPolicy(p BoundPolicy) {
	c.policy = p
}

// Tick advances time by delta seconds while playing. Deltas that are not
// positive finite numbers are ignored, so time never moves backward on its own.
// It reports whether the current time changed.
func (c *Clock) Tick(delta float64) bool {
	if !c.playing || !(delta > 0) || math.IsInf(delta, 1) {
		return false
	}

	prev := c.current
	next := c.current + delta

	if c.duration > 0 {
		switch c.policy {
		case BoundWrap:
			if next >= c.duration {
				next = math.Mod(next, c.duration)
			}
		case BoundClamp:
			if next >= c.duration {
				next = c.duration
				c.playing = false
			}
		}
	}

	c.current = next
	return next != prev
}

// Seek jumps to t regardless of play state. The value is stored as given.
func (c *Clock) Seek(t float64) {
	if math.IsNaN(t) {
		return
	}
	c.current = t
}

// Reset is Seek(0).
func (c *Clock) Reset() {
	c.Seek(0)
}

// FormatTimecode renders t as MM:SS:FF at the given frame rate.
func FormatTimecode(t float64, fps int) string {
	if t < 0 {
		t = 0
	}
	if fps <= 0 {
		fps = 30
	}
	minutes := int(t / 60)
	seconds := int(math.Mod(t, 60))
	frames := int(math.Mod(t, 1) * float64(fps))
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}
