package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// MinScale is the smallest allowed scale component. Zero or negative scale
// would make the object's geometry degenerate.
const MinScale = 0.1

type Vec3 = mgl64.Vec3

// Property names one channel of a Transform.
type Property string

const (
	PropertyPosition Property = "position"
	PropertyRotation Property = "rotation"
	PropertyScale    Property = "scale"
)

// Properties lists every animatable property in a fixed order.
var Properties = [...]Property{PropertyPosition, PropertyRotation, PropertyScale}

func ParseProperty(s string) (Property, error) {
	p := Property(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProperty, s)
	}
	return p, nil
}

func (p Property) Valid() bool {
	switch p {
	case PropertyPosition, PropertyRotation, PropertyScale:
		return true
	}
	return false
}

func (p Property) String() string { return string(p) }

// Transform places an object in the scene. Rotation holds Euler angles in radians.
type Transform struct {
	Position Vec3 `json:"position" yaml:"position"`
	Rotation Vec3 `json:"rotation" yaml:"rotation"`
	Scale    Vec3 `json:"scale" yaml:"scale"`
}

func IdentityTransform() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// Get returns the value of one property. Unknown properties yield the zero vector.
func (t Transform) Get(p Property) Vec3 {
	switch p {
	case PropertyPosition:
		return t.Position
	case PropertyRotation:
		return t.Rotation
	case PropertyScale:
		return t.Scale
	}
	return Vec3{}
}

// With returns a copy of t with property p replaced by v.
func (t Transform) With(p Property, v Vec3) Transform {
	switch p {
	case PropertyPosition:
		t.Position = v
	case PropertyRotation:
		t.Rotation = v
	case PropertyScale:
		t.Scale = ClampScale(v)
	}
	return t
}

// Normalized returns t with the scale floor applied.
func (t Transform) Normalized() Transform {
	t.Scale = ClampScale(t.Scale)
	return t
}

// Finite reports whether every component of v is neither NaN nor infinite.
func Finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (t Transform) Finite() bool {
	return Finite(t.Position) && Finite(t.Rotation) && Finite(t.Scale)
}

// ClampScale raises every component of s to at least MinScale.
func ClampScale(s Vec3) Vec3 {
	for i := range s {
		if !(s[i] >= MinScale) {
			s[i] = MinScale
		}
	}
	return s
}
