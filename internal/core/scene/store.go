package scene

import (
	"fmt"
	"strconv"
)

// Store holds the scene's objects in insertion order. It is not safe for
// concurrent use; the owner serialises access.
type Store struct {
	objects map[string]*Object
	order   []string
}

func NewStore() *Store {
	return &Store{objects: make(map[string]*Object)}
}

// Add inserts o, filling in an id, name and colour when they are empty and
// applying the scale floor. It returns the stored copy.
func (s *Store) Add(o Object) (Object, error) {
	if !o.Kind.Valid() {
		return Object{}, fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
	if o.ID == "" {
		o.ID = NewID()
	}
	if _, exists := s.objects[o.ID]; exists {
		return Object{}, fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
	}
	if o.Name == "" {
		o.Name = o.Kind.Title() + " " + strconv.Itoa(len(s.order)+1)
	}
	o.Color = NormalizeColor(o.Color, o.Kind.DefaultColor())
	o.Transform = o.Transform.Normalized()
	o.IsEffect = o.Kind.IsEffect()
	if !o.IsEffect {
		o.EffectDuration = 0
	}

	stored := o
	s.objects[o.ID] = &stored
	s.order = append(s.order, o.ID)
	return stored, nil
}

func (s *Store) Get(id string) (Object, bool) {
	o, ok := s.objects[id]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

func (s *Store) Has(id string) bool {
	_, ok := s.objects[id]
	return ok
}

// Update applies p to the object. Unknown ids are ignored and reported as false.
func (s *Store) Update(id string, p Patch) bool {
	o, ok := s.objects[id]
	if !ok {
		return false
	}
	p.apply(o)
	return true
}

// SetProperty overwrites one transform property. It reports whether the stored
// value changed.
func (s *Store) SetProperty(id string, prop Property, v Vec3) bool {
	o, ok := s.objects[id]
	if !ok {
		return false
	}
	next := o.Transform.With(prop, v)
	if next == o.Transform {
		return false
	}
	o.Transform = next
	return true
}

// Remove deletes the object. Removing an absent id is not an error.
func (s *Store) Remove(id string) bool {
	if _, ok := s.objects[id]; !ok {
		return false
	}
	delete(s.objects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns copies of every object in insertion order.
func (s *Store) List() []Object {
	out := make([]Object, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.objects[id])
	}
	return out
}

func (s *Store) Len() int {
	return len(s.order)
}

// Clear drops every object.
func (s *Store) Clear() {
	s.objects = make(map[string]*Object)
	s.order = nil
}
