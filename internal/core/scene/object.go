package scene

import (
	"time"

	"github.com/google/uuid"
)

// Object is a single placed item: a primitive, a rigged model or an effect.
type Object struct {
	ID        string `json:"id" yaml:"id"`
	Kind      Kind   `json:"type" yaml:"type"`
	Transform `yaml:",inline"`
	Color     string `json:"color" yaml:"color"`
	Name      string `json:"name" yaml:"name"`

	// Effects remove themselves EffectDuration seconds after creation.
	IsEffect       bool    `json:"isEffect,omitempty" yaml:"isEffect,omitempty"`
	EffectDuration float64 `json:"effectDuration,omitempty" yaml:"effectDuration,omitempty"`
}

// NewID returns a fresh object id. Ids are random and never reused.
func NewID() string {
	return "obj-" + uuid.NewString()
}

// Lifetime converts EffectDuration to a time.Duration.
func (o Object) Lifetime() time.Duration {
	return time.Duration(o.EffectDuration * float64(time.Second))
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Position *Vec3   `json:"position,omitempty"`
	Rotation *Vec3   `json:"rotation,omitempty"`
	Scale    *Vec3   `json:"scale,omitempty"`
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Position == nil && p.Rotation == nil && p.Scale == nil && p.Name == nil && p.Color == nil
}

// Finite reports whether every vector the patch sets is finite.
func (p Patch) Finite() bool {
	for _, v := range []*Vec3{p.Position, p.Rotation, p.Scale} {
		if v != nil && !Finite(*v) {
			return false
		}
	}
	return true
}

func (p Patch) apply(o *Object) {
	if p.Position != nil {
		o.Position = *p.Position
	}
	if p.Rotation != nil {
		o.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		o.Scale = ClampScale(*p.Scale)
	}
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Color != nil {
		o.Color = NormalizeColor(*p.Color, o.Color)
	}
}
