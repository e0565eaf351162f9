package genome

import (
	"github.com/matzehuels/genomap/pkg/errors"
)

// Strand values for [Feature.Strand].
const (
	StrandForward = "+"
	StrandReverse = "-"
)

// Map is an annotated sequence.
type Map struct {
	Name     string    `json:"name" toml:"name"`
	Length   int       `json:"length" toml:"length"`
	Circular bool      `json:"circular" toml:"circular"`
	Features []Feature `json:"features" toml:"features"`
}

// Feature is an annotated range on a map. Start and Stop are 1-based and
// inclusive; on a circular map Start > Stop means the feature crosses the
// origin.
type Feature struct {
	Name   string `json:"name" toml:"name"`
	Start  int    `json:"start" toml:"start"`
	Stop   int    `json:"stop" toml:"stop"`
	Strand string `json:"strand,omitempty" toml:"strand"`
	Track  string `json:"track,omitempty" toml:"track"`
}

// Span returns the number of bases the feature covers.
func (f Feature) Span(length int, circular bool) int {
	if circular && f.Start > f.Stop && length > 0 {
		return length - f.Start + f.Stop + 1
	}
	if f.Start > f.Stop {
		return f.Start - f.Stop + 1
	}
	return f.Stop - f.Start + 1
}

// MidBp returns the midpoint of the feature, following it across the origin
// of a circular map.
func (f Feature) MidBp(length int, circular bool) float64 {
	start, stop := float64(f.Start), float64(f.Stop)
	if !circular || f.Start <= f.Stop || length <= 0 {
		return (start + stop) / 2
	}
	mid := start + float64(f.Span(length, circular)-1)/2
	if mid > float64(length) {
		mid -= float64(length)
	}
	return mid
}

// Named returns the features that carry a label.
func (m *Map) Named() []Feature {
	out := make([]Feature, 0, len(m.Features))
	for _, f := range m.Features {
		if f.Name != "" {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the map-level fields. Feature ranges outside the map are
// clamped by the index rather than rejected here.
func (m *Map) Validate() error {
	if m.Length <= 0 {
		return errors.New(errors.ErrCodeInvalidMap, "map %q has non-positive length %d", m.Name, m.Length)
	}
	if err := errors.ValidateName("map", m.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMap, err, "invalid map name")
	}
	for i, f := range m.Features {
		if err := errors.ValidateLabel("feature", f.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidMap, err, "feature %d", i)
		}
		switch f.Strand {
		case "", StrandForward, StrandReverse:
		default:
			return errors.New(errors.ErrCodeInvalidMap, "feature %d (%s): unknown strand %q", i, f.Name, f.Strand)
		}
	}
	return nil
}
