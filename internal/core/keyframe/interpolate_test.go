package keyframe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

func key(t float64, v scene.Vec3) Keyframe {
	return Keyframe{Time: t, ObjectID: "a", Property: scene.PropertyPosition, Value: v}
}

func TestInterpolateEmpty(t *testing.T) {
	_, ok := Interpolate(nil, 1)
	assert.False(t, ok)
}

func TestInterpolateSingleKeyClamps(t *testing.T) {
	v := scene.Vec3{1, -2, 3}
	keys := []Keyframe{key(5, v)}

	for _, at := range []float64{-100, 0, 4.999, 5, 5.001, 1e9} {
		got, ok := Interpolate(keys, at)
		require.True(t, ok)
		assert.Equal(t, v, got, "t=%v", at)
	}
}

func TestInterpolateScenario(t *testing.T) {
	keys := []Keyframe{
		key(0, scene.Vec3{0, 0, 0}),
		key(2, scene.Vec3{4, 0, 0}),
	}

	cases := []struct {
		at   float64
		want scene.Vec3
	}{
		{at: 1, want: scene.Vec3{2, 0, 0}},
		{at: 3, want: scene.Vec3{4, 0, 0}},
		{at: -1, want: scene.Vec3{0, 0, 0}},
		{at: 0, want: scene.Vec3{0, 0, 0}},
		{at: 2, want: scene.Vec3{4, 0, 0}},
		{at: 0.5, want: scene.Vec3{1, 0, 0}},
	}
	for _, tc := range cases {
		got, ok := Interpolate(keys, tc.at)
		require.True(t, ok)
		assert.Equal(t, tc.want, got, "t=%v", tc.at)
	}
}

func TestInterpolateMidpoint(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		t0 := r.Float64()*10 - 5
		t1 := t0 + r.Float64()*10 + 0.01
		v0 := scene.Vec3{r.NormFloat64(), r.NormFloat64(), r.NormFloat64()}
		v1 := scene.Vec3{r.NormFloat64(), r.NormFloat64(), r.NormFloat64()}

		got, ok := Interpolate([]Keyframe{key(t0, v0), key(t1, v1)}, (t0+t1)/2)
		require.True(t, ok)
		mid := v0.Add(v1).Mul(0.5)
		for c := 0; c < 3; c++ {
			assert.InDelta(t, mid[c], got[c], 1e-9)
		}
	}
}

func TestInterpolateUnsortedInput(t *testing.T) {
	keys := []Keyframe{
		key(4, scene.Vec3{8, 0, 0}),
		key(0, scene.Vec3{0, 0, 0}),
		key(2, scene.Vec3{4, 4, 0}),
	}
	got, ok := Interpolate(keys, 3)
	require.True(t, ok)
	assert.Equal(t, scene.Vec3{6, 2, 0}, got)
	assert.Equal(t, float64(4), keys[0].Time, "input must not be reordered")
}

func TestInterpolateDeterministic(t *testing.T) {
	keys := []Keyframe{
		key(0, scene.Vec3{0, 1, 2}),
		key(3, scene.Vec3{3, 1, -2}),
	}
	first, _ := Interpolate(keys, 1.25)
	for i := 0; i < 10; i++ {
		again, _ := Interpolate(keys, 1.25)
		assert.Equal(t, first, again)
	}
}

func TestInterpolateDuplicateTimeLastWins(t *testing.T) {
	keys := []Keyframe{
		key(0, scene.Vec3{0, 0, 0}),
		key(1, scene.Vec3{10, 0, 0}),
		key(1, scene.Vec3{20, 0, 0}),
		key(2, scene.Vec3{40, 0, 0}),
	}

	got, ok := Interpolate(keys, 1)
	require.True(t, ok)
	assert.Equal(t, scene.Vec3{20, 0, 0}, got)

	// the surviving duplicate is also the segment endpoint on both sides
	got, _ = Interpolate(keys, 0.5)
	assert.Equal(t, scene.Vec3{10, 0, 0}, got)
	got, _ = Interpolate(keys, 1.5)
	assert.Equal(t, scene.Vec3{30, 0, 0}, got)
}

func TestInterpolateOnlyDuplicates(t *testing.T) {
	keys := []Keyframe{
		key(1, scene.Vec3{1, 1, 1}),
		key(1, scene.Vec3{2, 2, 2}),
	}
	for _, at := range []float64{0, 1, 2} {
		got, ok := Interpolate(keys, at)
		require.True(t, ok)
		assert.Equal(t, scene.Vec3{2, 2, 2}, got)
	}
}

func TestLerpZeroSpan(t *testing.T) {
	a := key(1, scene.Vec3{1, 0, 0})
	b := key(1, scene.Vec3{5, 0, 0})
	assert.Equal(t, scene.Vec3{1, 0, 0}, lerp(a, b, 1))
}

func TestResolveKeepsUnkeyedProperties(t *testing.T) {
	base := scene.Transform{
		Position: scene.Vec3{9, 9, 9},
		Rotation: scene.Vec3{0, 1, 0},
		Scale:    scene.Vec3{2, 2, 2},
	}
	tracks := map[scene.Property][]Keyframe{
		scene.PropertyPosition: {key(0, scene.Vec3{0, 0, 0}), key(2, scene.Vec3{4, 0, 0})},
	}

	got := Resolve(base, tracks, 1)
	assert.Equal(t, scene.Vec3{2, 0, 0}, got.Position)
	assert.Equal(t, base.Rotation, got.Rotation)
	assert.Equal(t, base.Scale, got.Scale)
}

func TestResolveClampsScale(t *testing.T) {
	tracks := map[scene.Property][]Keyframe{
		scene.PropertyScale: {
			{Time: 0, Property: scene.PropertyScale, Value: scene.Vec3{-1, 1, 1}},
		},
	}
	got := Resolve(scene.IdentityTransform(), tracks, 0)
	assert.Equal(t, scene.Vec3{scene.MinScale, 1, 1}, got.Scale)
}
