package keyframe

import (
	"github.com/zeusync/zeuscene/internal/core/scene"
)

// Interpolate resolves a property value at time t from one object's keyframes
// for that property. It returns false when keys is empty.
//
// Before the first key and after the last key the nearest key's value is
// returned unchanged. In between, components are interpolated linearly between
// the last key at or before t and the first key after t. When several keys
// share a time the one inserted last is used.
//
// keys may be in any order; it is not modified.
func Interpolate(keys []Keyframe, t float64) (scene.Vec3, bool) {
	if len(keys) == 0 {
		return scene.Vec3{}, false
	}

	track := collapse(keys)

	// index of the first key strictly after t
	after := len(track)
	for i, k := range track {
		if k.Time > t {
			after = i
			break
		}
	}

	switch {
	case after == 0:
		return track[0].Value, true
	case after == len(track):
		return track[len(track)-1].Value, true
	}

	before, next := track[after-1], track[after]
	return lerp(before, next, t), true
}

// Resolve applies every keyed property in tracks to base at time t. Properties
// without keys keep their value from base.
func Resolve(base scene.Transform, tracks map[scene.Property][]Keyframe, t float64) scene.Transform {
	out := base
	for _, p := range scene.Properties {
		if v, ok := Interpolate(tracks[p], t); ok {
			out = out.With(p, v)
		}
	}
	return out
}

func lerp(a, b Keyframe, t float64) scene.Vec3 {
	span := b.Time - a.Time
	var frac float64
	if span != 0 {
		frac = (t - a.Time) / span
	}
	return a.Value.Add(b.Value.Sub(a.Value).Mul(frac))
}

// collapse sorts a copy of keys by time and keeps only the last inserted key
// for every time.
func collapse(keys []Keyframe) []Keyframe {
	sorted := make([]Keyframe, len(keys))
	copy(sorted, keys)
	sortByTime(sorted)

	out := sorted[:0]
	for _, k := range sorted {
		if n := len(out); n > 0 && out[n-1].Time == k.Time {
			out[n-1] = k
			continue
		}
		out = append(out, k)
	}
	return out
}
