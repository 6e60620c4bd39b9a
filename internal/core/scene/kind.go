package scene

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies what an object renders as.
type Kind string

const (
	KindBox      Kind = "box"
	KindSphere   Kind = "sphere"
	KindCylinder Kind = "cylinder"
	KindCone     Kind = "cone"
	KindTorus    Kind = "torus"

	KindRobot     Kind = "robot"
	KindCharacter Kind = "character"
	KindAnimal    Kind = "animal"
	KindVehicle   Kind = "vehicle"

	KindFire      Kind = "fire"
	KindExplosion Kind = "explosion"
	KindSmoke     Kind = "smoke"
	KindSparkle   Kind = "sparkle"
	KindRain      Kind = "rain"
)

type category uint8

const (
	categoryPrimitive category = iota + 1
	categoryModel
	categoryEffect
)

type kindInfo struct {
	category category
	title    string
	color    string
	lifetime time.Duration
}

var kinds = map[Kind]kindInfo{
	KindBox:      {category: categoryPrimitive, title: "Box"},
	KindSphere:   {category: categoryPrimitive, title: "Sphere"},
	KindCylinder: {category: categoryPrimitive, title: "Cylinder"},
	KindCone:     {category: categoryPrimitive, title: "Cone"},
	KindTorus:    {category: categoryPrimitive, title: "Torus"},

	KindRobot:     {category: categoryModel, title: "Robot"},
	KindCharacter: {category: categoryModel, title: "Character"},
	KindAnimal:    {category: categoryModel, title: "Animal"},
	KindVehicle:   {category: categoryModel, title: "Vehicle"},

	KindFire:      {category: categoryEffect, title: "Fire", color: "#FF4500", lifetime: 3 * time.Second},
	KindExplosion: {category: categoryEffect, title: "Explosion", color: "#FFA500", lifetime: 1500 * time.Millisecond},
	KindSmoke:     {category: categoryEffect, title: "Smoke", color: "#888888", lifetime: 4 * time.Second},
	KindSparkle:   {category: categoryEffect, title: "Sparkle", color: "#FFD700", lifetime: 2 * time.Second},
	KindRain:      {category: categoryEffect, title: "Rain", color: "#4169E1", lifetime: 5 * time.Second},
}

// ParseKind accepts any case and surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) IsPrimitive() bool { return kinds[k].category == categoryPrimitive }
func (k Kind) IsModel() bool     { return kinds[k].category == categoryModel }
func (k Kind) IsEffect() bool    { return kinds[k].category == categoryEffect }

// Title is the display name used for generated object names.
func (k Kind) Title() string {
	if info, ok := kinds[k]; ok {
		return info.title
	}
	return string(k)
}

// DefaultColor returns the colour a new object of this kind starts with.
func (k Kind) DefaultColor() string {
	if info, ok := kinds[k]; ok && info.color != "" {
		return info.color
	}
	return DefaultColor
}

// DefaultLifetime is how long an effect of this kind lives when no duration is given.
// Non-effect kinds return zero.
func (k Kind) DefaultLifetime() time.Duration {
	return kinds[k].lifetime
}

func (k Kind) String() string { return string(k) }
