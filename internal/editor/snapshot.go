package editor

import (
	"time"

	"github.com/zeusync/zeuscene/internal/core/keyframe"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

// Snapshot is a read-only copy of the scene for renderers.
type Snapshot struct {
	Revision uint64         `json:"revision"`
	Time     float64        `json:"time"`
	Playing  bool           `json:"playing"`
	Duration float64        `json:"duration"`
	Selected string         `json:"selected,omitempty"`
	Objects  []scene.Object `json:"objects"`
	// Expiring maps effect ids to seconds left before removal.
	Expiring map[string]float64 `json:"expiring,omitempty"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		Revision: e.revision,
		Time:     e.clock.Current(),
		Playing:  e.clock.Playing(),
		Duration: e.clock.Duration(),
		Selected: e.selected,
		Objects:  e.objects.List(),
	}
	for _, o := range s.Objects {
		if !o.IsEffect {
			continue
		}
		if left, ok := e.expiry.Remaining(o.ID); ok {
			if s.Expiring == nil {
				s.Expiring = make(map[string]float64)
			}
			s.Expiring[o.ID] = left.Seconds()
		}
	}
	return s
}

// Revision increases with every visible change.
func (e *Editor) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

func (e *Editor) Object(id string) (scene.Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.objects.Get(id)
}

// Keyframes returns the object's keys for prop in time order. Unknown objects
// have no keys.
func (e *Editor) Keyframes(id string, prop scene.Property) []keyframe.Keyframe {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.objects.Has(id) {
		return nil
	}
	return e.keys.Query(id, prop)
}

// KeyTimes returns the distinct key times of the object for timeline markers.
func (e *Editor) KeyTimes(id string) []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.objects.Has(id) {
		return nil
	}
	return e.keys.Times(id)
}

func (e *Editor) CurrentTime() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock.Current()
}

func (e *Editor) Playing() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock.Playing()
}

// EffectRemaining reports how long the effect has left to live.
func (e *Editor) EffectRemaining(id string) (time.Duration, bool) {
	return e.expiry.Remaining(id)
}
