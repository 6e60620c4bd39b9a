package editor

import (
	"fmt"
	"strings"

	"github.com/zeusync/zeuscene/internal/core/effects"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/timeline"
)

// SeekPolicy decides whether Seek re-evaluates keyframes while paused.
type SeekPolicy uint8

const (
	// SeekRecompute applies keyframes at the new time immediately, playing or not.
	SeekRecompute SeekPolicy = iota
	// SeekWhilePlaying only re-evaluates when the clock is playing; a paused
	// scrub leaves objects where they are until the next tick.
	SeekWhilePlaying
)

func ParseSeekPolicy(s string) (SeekPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recompute", "always":
		return SeekRecompute, nil
	case "while_playing", "playing":
		return SeekWhilePlaying, nil
	}
	return SeekRecompute, fmt.Errorf("%w: %q", ErrUnknownSeekPolicy, s)
}

func (p SeekPolicy) String() string {
	switch p {
	case SeekRecompute:
		return "recompute"
	case SeekWhilePlaying:
		return "while_playing"
	}
	return fmt.Sprintf("seek(%d)", uint8(p))
}

type Options struct {
	// Duration of the timeline in seconds.
	Duration float64
	Bound    timeline.BoundPolicy
	Seek     SeekPolicy

	// WallClock drives effect expiry. Defaults to effects.SystemClock.
	WallClock effects.Clock
	Bus       bus.EventBus
	Logger    log.Log
}

func DefaultOptions() Options {
	return Options{
		Duration: 10,
		Bound:    timeline.BoundWrap,
		Seek:     SeekRecompute,
	}
}
