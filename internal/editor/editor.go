package editor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/zeusync/zeuscene/internal/core/effects"
	"github.com/zeusync/zeuscene/internal/core/events/bus"
	"github.com/zeusync/zeuscene/internal/core/keyframe"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/internal/core/timeline"
)

// Editor owns the whole scene state: objects, keyframes, the playback clock,
// pending effect expiries and the selection.
//
// Every mutation holds the write lock for its full duration, so an object and
// its keyframes always disappear together. Readers take snapshots under the
// read lock. Events are published after the lock is released, so handlers may
// call back into the Editor.
type Editor struct {
	mu      sync.RWMutex
	objects *scene.Store
	keys    *keyframe.Store
	clock   *timeline.Clock
	expiry  *effects.Scheduler
	// lifetimes maps live effect ids to the generation of their expiry, so a
	// timer armed for an earlier object with the same id cannot remove it.
	lifetimes   map[string]uint64
	lifetimeSeq uint64
	selected    string
	revision    uint64
	seek        SeekPolicy

	bus    bus.EventBus
	logger log.Log
}

func New(opts Options) *Editor {
	if opts.Bus == nil {
		opts.Bus = bus.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}
	return &Editor{
		objects:   scene.NewStore(),
		keys:      keyframe.NewStore(),
		clock:     timeline.NewClock(opts.Duration, opts.Bound),
		expiry:    effects.NewScheduler(opts.WallClock),
		lifetimes: make(map[string]uint64),
		seek:      opts.Seek,
		bus:       opts.Bus,
		logger:    opts.Logger.With(log.String("component", "editor")),
	}
}

// Bus returns the bus the editor publishes change events on.
func (e *Editor) Bus() bus.EventBus {
	return e.bus
}

// tx collects the outcome of one locked mutation.
type tx struct {
	changed bool
	events  []bus.Event
}

func (t *tx) emit(typ string, data any) {
	t.changed = true
	t.events = append(t.events, bus.NewEvent(typ, eventSource, data))
}

func (e *Editor) mutate(fn func(t *tx)) {
	t := &tx{}
	e.mu.Lock()
	fn(t)
	if t.changed {
		e.revision++
	}
	e.mu.Unlock()

	if len(t.events) == 0 {
		return
	}
	if err := e.bus.PublishBatch(t.events...); err != nil {
		e.logger.Warn("Event handler failed", log.Error(err))
	}
}

// AddObject places a new object and selects it. Effect kinds are forwarded to
// AddEffect with the kind's default lifetime. A nil transform means identity.
func (e *Editor) AddObject(kind scene.Kind, initial *scene.Transform) (string, error) {
	if initial != nil && !initial.Finite() {
		return "", fmt.Errorf("%w: transform", ErrInvalidValue)
	}
	if kind.IsEffect() {
		return e.AddEffect(kind, initial, 0)
	}
	return e.add(scene.Object{Kind: kind, Transform: transformOrIdentity(initial)}, 0)
}

// AddModel places a rigged model with an optional display name.
func (e *Editor) AddModel(kind scene.Kind, name string) (string, error) {
	if !kind.IsModel() {
		return "", fmt.Errorf("%w: %q", ErrNotAModel, kind)
	}
	return e.add(scene.Object{Kind: kind, Name: name, Transform: scene.IdentityTransform()}, 0)
}

// AddEffect places an effect that removes itself after lifetime. A lifetime
// <= 0 uses the kind's default.
func (e *Editor) AddEffect(kind scene.Kind, initial *scene.Transform, lifetime time.Duration) (string, error) {
	if !kind.IsEffect() {
		return "", fmt.Errorf("%w: %q", ErrNotAnEffect, kind)
	}
	if initial != nil && !initial.Finite() {
		return "", fmt.Errorf("%w: transform", ErrInvalidValue)
	}
	if lifetime <= 0 {
		lifetime = kind.DefaultLifetime()
	}
	return e.add(scene.Object{
		Kind:           kind,
		Transform:      transformOrIdentity(initial),
		EffectDuration: lifetime.Seconds(),
	}, lifetime)
}

func (e *Editor) add(o scene.Object, lifetime time.Duration) (string, error) {
	var (
		stored scene.Object
		err    error
	)
	e.mutate(func(t *tx) {
		stored, err = e.objects.Add(o)
		if err != nil {
			return
		}
		if stored.IsEffect {
			e.scheduleExpiryLocked(stored.ID, lifetime)
		}
		e.selected = stored.ID
		t.emit(EventObjectAdded, stored)
		t.emit(EventSelection, stored.ID)
	})
	if err != nil {
		return "", err
	}

	e.logger.Debug("Object added",
		log.String("object_id", stored.ID),
		log.String("kind", stored.Kind.String()),
		log.Duration("lifetime", lifetime))
	return stored.ID, nil
}

// UpdateObject applies a partial edit. Unknown ids and patches carrying NaN or
// infinite components are ignored.
func (e *Editor) UpdateObject(id string, p scene.Patch) bool {
	if !p.Finite() {
		e.logger.Debug("Rejected non-finite patch", log.String("object_id", id))
		return false
	}
	var ok bool
	e.mutate(func(t *tx) {
		if ok = e.objects.Update(id, p); ok {
			o, _ := e.objects.Get(id)
			t.emit(EventObjectUpdated, o)
		}
	})
	return ok
}

// DeleteObject removes the object together with its keyframes and any pending
// expiry. Deleting an absent id is a no-op and returns false.
func (e *Editor) DeleteObject(id string) bool {
	return e.remove(id, false)
}

// scheduleExpiryLocked arms the lifetime of effect id under a new generation.
func (e *Editor) scheduleExpiryLocked(id string, lifetime time.Duration) {
	e.lifetimeSeq++
	gen := e.lifetimeSeq
	e.lifetimes[id] = gen
	e.expiry.Schedule(id, lifetime, func(id string) { e.expire(id, gen) })
}

// expire removes effect id if gen is still its current lifetime. A timer that
// fired just before the object was deleted, re-imported or re-added loses here.
func (e *Editor) expire(id string, gen uint64) {
	var ok bool
	e.mutate(func(t *tx) {
		if cur, live := e.lifetimes[id]; !live || cur != gen {
			return
		}
		ok = e.removeLocked(t, id, true)
	})
	if ok {
		e.logger.Debug("Effect expired", log.String("object_id", id))
	}
}

func (e *Editor) remove(id string, expired bool) bool {
	var ok bool
	e.mutate(func(t *tx) {
		ok = e.removeLocked(t, id, expired)
	})
	return ok
}

func (e *Editor) removeLocked(t *tx, id string, expired bool) bool {
	if !e.objects.Remove(id) {
		return false
	}
	pruned := e.keys.RemoveByObject(id)
	e.expiry.Cancel(id)
	delete(e.lifetimes, id)
	t.emit(EventObjectRemoved, RemovedObject{ID: id, Expired: expired, Keyframes: pruned})
	if e.selected == id {
		e.selected = ""
		t.emit(EventSelection, "")
	}
	return true
}

// Select marks id as the selected object. An empty id clears the selection.
// Selecting an unknown id is ignored.
func (e *Editor) Select(id string) bool {
	var ok bool
	e.mutate(func(t *tx) {
		if id != "" && !e.objects.Has(id) {
			return
		}
		ok = true
		if e.selected != id {
			e.selected = id
			t.emit(EventSelection, id)
		}
	})
	return ok
}

func (e *Editor) Selected() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected
}

// AddKeyframe records one property value. Keys for unknown objects are
// rejected with ErrObjectNotFound and nothing is stored.
func (e *Editor) AddKeyframe(id string, at float64, prop scene.Property, value scene.Vec3) error {
	if !prop.Valid() {
		return fmt.Errorf("%w: %q", scene.ErrUnknownProperty, prop)
	}
	if !finite(at) || !scene.Finite(value) {
		return fmt.Errorf("%w: key at %v = %v", ErrInvalidValue, at, value)
	}
	var err error
	e.mutate(func(t *tx) {
		if !e.objects.Has(id) {
			err = fmt.Errorf("%w: %s", ErrObjectNotFound, id)
			return
		}
		k := e.keys.Add(id, at, prop, value)
		t.emit(EventKeyframeAdded, []keyframe.Keyframe{k})
	})
	return err
}

// AddKeyframeSnapshot records position, rotation and scale of the object as
// they are now. A nil time means the clock's current time.
func (e *Editor) AddKeyframeSnapshot(id string, at *float64) error {
	if at != nil && !finite(*at) {
		return fmt.Errorf("%w: time %v", ErrInvalidValue, *at)
	}
	var err error
	e.mutate(func(t *tx) {
		err = e.snapshotLocked(t, id, at)
	})
	return err
}

// AddKeyframeForSelection records one property of the selected object at the
// current time.
func (e *Editor) AddKeyframeForSelection(prop scene.Property) error {
	if !prop.Valid() {
		return fmt.Errorf("%w: %q", scene.ErrUnknownProperty, prop)
	}
	var err error
	e.mutate(func(t *tx) {
		if e.selected == "" {
			err = ErrNoSelection
			return
		}
		o, ok := e.objects.Get(e.selected)
		if !ok {
			err = fmt.Errorf("%w: %s", ErrObjectNotFound, e.selected)
			return
		}
		k := e.keys.Add(o.ID, e.clock.Current(), prop, o.Get(prop))
		t.emit(EventKeyframeAdded, []keyframe.Keyframe{k})
	})
	return err
}

func (e *Editor) snapshotLocked(t *tx, id string, at *float64) error {
	o, ok := e.objects.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	when := e.clock.Current()
	if at != nil {
		when = *at
	}
	t.emit(EventKeyframeAdded, e.keys.AddSnapshot(id, when, o.Transform))
	return nil
}

// RemoveKeyframesAt deletes every key of the object at exactly time at.
func (e *Editor) RemoveKeyframesAt(id string, at float64) int {
	var n int
	e.mutate(func(t *tx) {
		if n = e.keys.RemoveAt(id, at); n > 0 {
			t.emit(EventKeyframeRemoved, id)
			e.recomputeLocked(t)
		}
	})
	return n
}

func (e *Editor) Play() {
	e.mutate(func(t *tx) {
		if !e.clock.Playing() {
			e.clock.Play()
			t.emit(EventClock, e.clockStateLocked())
		}
	})
}

func (e *Editor) Pause() {
	e.mutate(func(t *tx) {
		if e.clock.Playing() {
			e.clock.Pause()
			t.emit(EventClock, e.clockStateLocked())
		}
	})
}

// TogglePlay flips playback and returns the new state.
func (e *Editor) TogglePlay() bool {
	var playing bool
	e.mutate(func(t *tx) {
		playing = e.clock.Toggle()
		t.emit(EventClock, e.clockStateLocked())
	})
	return playing
}

// Seek moves the clock to at. Whether objects follow immediately depends on
// the SeekPolicy. NaN and infinite times are ignored.
func (e *Editor) Seek(at float64) {
	if !finite(at) {
		return
	}
	e.mutate(func(t *tx) {
		e.clock.Seek(at)
		t.emit(EventClock, e.clockStateLocked())
		if e.seek == SeekRecompute || e.clock.Playing() {
			e.recomputeLocked(t)
		}
	})
}

func (e *Editor) Reset() {
	e.Seek(0)
}

// SetDuration changes the timeline length. NaN and infinite values are ignored.
func (e *Editor) SetDuration(d float64) {
	if !finite(d) {
		return
	}
	e.mutate(func(t *tx) {
		e.clock.SetDuration(d)
		t.emit(EventClock, e.clockStateLocked())
	})
}

// Tick advances the clock by delta seconds and, if it was playing, writes the
// interpolated transforms of every animated object back into the scene before
// returning. It reports whether anything changed.
func (e *Editor) Tick(delta float64) bool {
	var changed bool
	e.mutate(func(t *tx) {
		if !e.clock.Playing() {
			return
		}
		if e.clock.Tick(delta) {
			t.emit(EventClock, e.clockStateLocked())
		}
		e.recomputeLocked(t)
		changed = t.changed
	})
	return changed
}

// recomputeLocked evaluates keyframes at the current time for every object
// that has any. Keys whose object is gone are skipped.
func (e *Editor) recomputeLocked(t *tx) {
	now := e.clock.Current()
	for _, id := range e.keys.AnimatedObjects() {
		o, ok := e.objects.Get(id)
		if !ok {
			continue
		}
		next := keyframe.Resolve(o.Transform, e.keys.ForObject(id), now)
		if next == o.Transform {
			continue
		}
		for _, p := range scene.Properties {
			e.objects.SetProperty(id, p, next.Get(p))
		}
		o, _ = e.objects.Get(id)
		t.emit(EventObjectUpdated, o)
	}
}

func (e *Editor) clockStateLocked() ClockState {
	return ClockState{
		Time:     e.clock.Current(),
		Playing:  e.clock.Playing(),
		Duration: e.clock.Duration(),
	}
}

// Close cancels pending effect expiries.
func (e *Editor) Close() {
	e.expiry.Stop()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func transformOrIdentity(t *scene.Transform) scene.Transform {
	if t == nil {
		return scene.IdentityTransform()
	}
	return *t
}
