package keyframe

import (
	"sort"

	"github.com/zeusync/zeuscene/internal/core/scene"
)

// Keyframe is the recorded value of one property of one object at one time.
type Keyframe struct {
	Time     float64        `json:"time" yaml:"time"`
	ObjectID string         `json:"objectId" yaml:"objectId"`
	Property scene.Property `json:"property" yaml:"property"`
	Value    scene.Vec3     `json:"value" yaml:"value"`
}

// Store is an append-only log of keyframes with per-object pruning. It does not
// know which objects exist; callers validate ids before adding. Not safe for
// concurrent use.
type Store struct {
	keys []Keyframe
}

func NewStore() *Store {
	return &Store{}
}

// Add appends a keyframe. Any time is accepted, including negative ones.
func (s *Store) Add(objectID string, time float64, prop scene.Property, value scene.Vec3) Keyframe {
	k := Keyframe{Time: time, ObjectID: objectID, Property: prop, Value: value}
	s.keys = append(s.keys, k)
	return k
}

// AddSnapshot records position, rotation and scale of t at the given time.
func (s *Store) AddSnapshot(objectID string, time float64, t scene.Transform) []Keyframe {
	out := make([]Keyframe, 0, len(scene.Properties))
	for _, p := range scene.Properties {
		out = append(out, s.Add(objectID, time, p, t.Get(p)))
	}
	return out
}

// RemoveByObject drops every keyframe of the object and returns how many went.
func (s *Store) RemoveByObject(objectID string) int {
	return s.removeWhere(func(k Keyframe) bool { return k.ObjectID == objectID })
}

// RemoveAt drops every keyframe of the object recorded at exactly time.
func (s *Store) RemoveAt(objectID string, time float64) int {
	return s.removeWhere(func(k Keyframe) bool { return k.ObjectID == objectID && k.Time == time })
}

func (s *Store) removeWhere(match func(Keyframe) bool) int {
	kept := s.keys[:0]
	for _, k := range s.keys {
		if !match(k) {
			kept = append(kept, k)
		}
	}
	removed := len(s.keys) - len(kept)
	clear(s.keys[len(kept):])
	s.keys = kept
	return removed
}

// Query returns the object's keyframes for prop sorted by time. Keyframes that
// share a time keep their insertion order.
func (s *Store) Query(objectID string, prop scene.Property) []Keyframe {
	var out []Keyframe
	for _, k := range s.keys {
		if k.ObjectID == objectID && k.Property == prop {
			out = append(out, k)
		}
	}
	sortByTime(out)
	return out
}

// ForObject returns every keyframe of the object grouped by property.
func (s *Store) ForObject(objectID string) map[scene.Property][]Keyframe {
	out := make(map[scene.Property][]Keyframe)
	for _, k := range s.keys {
		if k.ObjectID == objectID {
			out[k.Property] = append(out[k.Property], k)
		}
	}
	for p := range out {
		sortByTime(out[p])
	}
	return out
}

// Times returns the distinct key times of the object in ascending order.
func (s *Store) Times(objectID string) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, k := range s.keys {
		if k.ObjectID != objectID {
			continue
		}
		if _, ok := seen[k.Time]; ok {
			continue
		}
		seen[k.Time] = struct{}{}
		out = append(out, k.Time)
	}
	sort.Float64s(out)
	return out
}

// AnimatedObjects returns the ids that own at least one keyframe, in order of
// their first keyframe.
func (s *Store) AnimatedObjects() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range s.keys {
		if _, ok := seen[k.ObjectID]; ok {
			continue
		}
		seen[k.ObjectID] = struct{}{}
		out = append(out, k.ObjectID)
	}
	return out
}

// All returns a copy of every keyframe in insertion order.
func (s *Store) All() []Keyframe {
	out := make([]Keyframe, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Store) Len() int {
	return len(s.keys)
}

func (s *Store) Clear() {
	s.keys = nil
}

func sortByTime(keys []Keyframe) {
	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i].Time < keys[j].Time
	})
}
