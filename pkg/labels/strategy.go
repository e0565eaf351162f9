package labels

import (
	"github.com/matzehuels/genomap/pkg/geometry"
)

// Default configuration values.
const (
	DefaultLineLength     = 20.0
	DefaultMaxLineAngle   = 80.0
	DefaultMargin         = 2.0
	DefaultBoundaryMargin = 2.0
)

// Strategy places a set of labels around the map.
//
// After Place returns every label has a bounding box that overlaps no other
// label's box, and a valid attach point. Place must be deterministic: calling
// it again on the same labels yields the same boxes.
type Strategy interface {
	Place(labels []*Label, baseOffset float64) Report
}

// Config holds the tunables shared by the built-in strategies.
type Config struct {
	// LineLength is the initial leader line length in pixels.
	LineLength float64
	// MaxLineAngle is the largest angle in degrees a leader line may lean
	// away from the radial direction.
	MaxLineAngle float64
	// Margin is the gap in pixels between stacked labels.
	Margin float64
	// BoundaryMargin is the gap in pixels kept between two islands that
	// clashed but could not be merged.
	BoundaryMargin float64
	// WrapIslands folds the last island into the first when they collide
	// across the origin of a circular map.
	WrapIslands bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LineLength:     DefaultLineLength,
		MaxLineAngle:   DefaultMaxLineAngle,
		Margin:         DefaultMargin,
		BoundaryMargin: DefaultBoundaryMargin,
	}
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.LineLength <= 0 {
		c.LineLength = DefaultLineLength
	}
	if c.MaxLineAngle <= 0 {
		c.MaxLineAngle = DefaultMaxLineAngle
	}
	c.MaxLineAngle = min(c.MaxLineAngle, 89.9)
	if c.Margin < 0 {
		c.Margin = 0
	}
	if c.BoundaryMargin < 0 {
		c.BoundaryMargin = 0
	}
	return c
}

// Report summarises one placement pass.
type Report struct {
	Labels int `json:"labels"`
	// InitialIslands is the number of islands found before merging.
	InitialIslands int `json:"initial_islands"`
	// MergeIterations counts clashes resolved by the merge loop. It never
	// exceeds InitialIslands.
	MergeIterations int `json:"merge_iterations"`
	Merges          int `json:"merges"`
	Boundaries      int `json:"boundaries"`
	// IslandSizes lists the final islands in position order.
	IslandSizes []int `json:"island_sizes,omitempty"`
	Popped      int   `json:"popped"`
}

// =============================================================================
// Default
// =============================================================================

// Default places every label radially at its home position and lengthens
// its leader line until the box clears all earlier labels. Labels are
// processed in the order given.
type Default struct {
	Provider geometry.Provider
	Config   Config
}

// NewDefault returns the radial strategy.
func NewDefault(p geometry.Provider, cfg Config) *Default {
	return &Default{Provider: p, Config: cfg}
}

// Place implements [Strategy].
func (d *Default) Place(labels []*Label, baseOffset float64) Report {
	rep := Report{Labels: len(labels)}
	if len(labels) == 0 {
		return rep
	}
	cfg := d.Config.withDefaults()
	t := newTrack(d.Provider, baseOffset)

	placed := make([]geometry.Rect, 0, len(labels))
	for _, l := range labels {
		l.HomeBp = t.norm(l.HomeBp)
		l.Popped = false
		l.ClockAttachment = d.Provider.ClockPositionForBp(l.HomeBp, true)
		t.extend(l, l.HomeBp, baseOffset+cfg.LineLength, placed)
		placed = append(placed, l.Rect)
	}
	return rep
}

// Ensure the built-in strategies implement Strategy.
var (
	_ Strategy = (*Default)(nil)
	_ Strategy = (*Angled)(nil)
)
