package export

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zeusync/zeuscene/internal/core/keyframe"
	"github.com/zeusync/zeuscene/internal/core/scene"
)

// Version is the only document version this package reads and writes.
const Version = "1.0"

// Document is the persisted form of a scene.
type Document struct {
	Version   string              `json:"version" yaml:"version"`
	Duration  float64             `json:"duration" yaml:"duration"`
	Objects   []scene.Object      `json:"objects" yaml:"objects"`
	Keyframes []keyframe.Keyframe `json:"keyframes" yaml:"keyframes"`
	Metadata  Metadata            `json:"metadata" yaml:"metadata"`
}

type Metadata struct {
	FPS        int       `json:"fps" yaml:"fps"`
	Resolution string    `json:"resolution" yaml:"resolution"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

func DefaultMetadata() Metadata {
	return Metadata{
		FPS:        30,
		Resolution: "1920x1080",
	}
}

// Validate checks the document for problems that would make it unloadable.
// Keyframes pointing at missing objects are not an error; see Prune.
func (d Document) Validate() error {
	var errs []error
	if d.Version != Version {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedVersion, d.Version))
	}
	if d.Duration < 0 || !finite(d.Duration) {
		errs = append(errs, fmt.Errorf("%w: duration %v", ErrInvalidDocument, d.Duration))
	}
	if d.Metadata.FPS < 0 {
		errs = append(errs, fmt.Errorf("%w: fps %d", ErrInvalidDocument, d.Metadata.FPS))
	}

	seen := make(map[string]struct{}, len(d.Objects))
	for i, o := range d.Objects {
		if o.ID == "" {
			errs = append(errs, fmt.Errorf("object %d: %w", i, scene.ErrEmptyID))
			continue
		}
		if _, dup := seen[o.ID]; dup {
			errs = append(errs, fmt.Errorf("object %d: %w: %s", i, scene.ErrDuplicateID, o.ID))
		}
		seen[o.ID] = struct{}{}
		if !o.Kind.Valid() {
			errs = append(errs, fmt.Errorf("object %s: %w: %q", o.ID, scene.ErrUnknownKind, o.Kind))
		}
		if !o.Transform.Finite() || !finite(o.EffectDuration) {
			errs = append(errs, fmt.Errorf("object %s: %w: non-finite value", o.ID, ErrInvalidDocument))
		}
	}
	for i, k := range d.Keyframes {
		if !k.Property.Valid() {
			errs = append(errs, fmt.Errorf("keyframe %d: %w: %q", i, scene.ErrUnknownProperty, k.Property))
		}
		if !finite(k.Time) || !scene.Finite(k.Value) {
			errs = append(errs, fmt.Errorf("keyframe %d: %w: non-finite value", i, ErrInvalidDocument))
		}
	}
	return errors.Join(errs...)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Prune returns a copy of the document without keyframes whose object is
// missing, and how many were dropped.
func (d Document) Prune() (Document, int) {
	ids := make(map[string]struct{}, len(d.Objects))
	for _, o := range d.Objects {
		ids[o.ID] = struct{}{}
	}
	out := d
	out.Keyframes = make([]keyframe.Keyframe, 0, len(d.Keyframes))
	for _, k := range d.Keyframes {
		if _, ok := ids[k.ObjectID]; ok {
			out.Keyframes = append(out.Keyframes, k)
		}
	}
	return out, len(d.Keyframes) - len(out.Keyframes)
}
