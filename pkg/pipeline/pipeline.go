// Package pipeline turns a feature map into label placements.
//
// This package implements the index → window → placement pipeline that the
// CLI and the HTTP API share. By centralizing this logic, both entry points
// produce identical layouts for identical input.
//
// # Architecture
//
// A layout is computed in three steps:
//
//  1. Index: build (or reuse) the interval index over the map's named features
//  2. Window: query the features visible at the requested zoom and centre,
//     thinned by a stable stride when there are more than MaxLabels
//  3. Place: measure each label and run the placement strategy around a
//     circular or linear map geometry
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	defer runner.Close()
//
//	m, err := genome.ImportFile("pUC19.json")
//	if err != nil {
//	    return err
//	}
//	result, hit, err := runner.Layout(ctx, m, pipeline.Options{Strategy: "angled"})
//
// Results are cached under the hash of the map and the options that affect
// the output, so a repeated request is answered without placing any labels.
package pipeline

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genomap/pkg/cache"
	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/labels"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultRadiusRatio sizes a circular map relative to the smaller
	// canvas dimension when no radius is given.
	DefaultRadiusRatio = 0.3

	// DefaultTrackOffset is the distance in pixels between a linear axis
	// and the start of the leader lines.
	DefaultTrackOffset = 10.0

	// DefaultFontSize is the label font size in pixels.
	DefaultFontSize = 12.0

	// DefaultZoom shows the whole map.
	DefaultZoom = 1.0

	// DefaultStrategy is the default placement strategy.
	DefaultStrategy = StrategyAngled
)

// Strategy names.
const (
	StrategyAngled  = "angled"
	StrategyDefault = "default"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a layout.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Canvas
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Radius float64 `json:"radius,omitempty"` // circular maps only

	// Placement
	Strategy     string  `json:"strategy,omitempty"`
	LineLength   float64 `json:"line_length,omitempty"`
	MaxLineAngle float64 `json:"max_line_angle,omitempty"`
	Margin       float64 `json:"margin,omitempty"`
	FontSize     float64 `json:"font_size,omitempty"`
	WrapIslands  bool    `json:"wrap_islands,omitempty"`

	// Visible window
	Zoom      float64 `json:"zoom,omitempty"`
	CenterBp  int     `json:"center_bp,omitempty"`  // 0 centres the map
	MaxLabels int     `json:"max_labels,omitempty"` // 0 places every visible label

	// Refresh skips the cache lookup; the new result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateStrategy checks that a strategy name is registered.
func ValidateStrategy(name string) error {
	if _, ok := lookupStrategy(name); !ok {
		return errors.New(errors.ErrCodeInvalidStrategy, "invalid strategy: %q (must be one of: %s)", name, strategyNames())
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	for name, v := range map[string]float64{
		"width": o.Width, "height": o.Height, "radius": o.Radius,
		"line_length": o.LineLength, "margin": o.Margin, "font_size": o.FontSize, "zoom": o.Zoom,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative number, got %v", name, v)
		}
	}
	if o.MaxLineAngle < 0 || o.MaxLineAngle >= 90 {
		return errors.New(errors.ErrCodeInvalidInput, "max_line_angle must be in [0, 90), got %v", o.MaxLineAngle)
	}
	if o.MaxLabels < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_labels must not be negative")
	}
	if o.CenterBp < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "center_bp must not be negative")
	}

	o.SetDefaults()
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.LineLength == 0 {
		o.LineLength = labels.DefaultLineLength
	}
	if o.MaxLineAngle == 0 {
		o.MaxLineAngle = labels.DefaultMaxLineAngle
	}
	if o.Margin == 0 {
		o.Margin = labels.DefaultMargin
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Zoom == 0 {
		o.Zoom = DefaultZoom
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LabelConfig returns the placement configuration.
func (o *Options) LabelConfig() labels.Config {
	return labels.Config{
		LineLength:     o.LineLength,
		MaxLineAngle:   o.MaxLineAngle,
		Margin:         o.Margin,
		BoundaryMargin: o.Margin,
		WrapIslands:    o.WrapIslands,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:     o.Strategy,
		Width:        o.Width,
		Height:       o.Height,
		Radius:       o.Radius,
		LineLength:   o.LineLength,
		MaxLineAngle: o.MaxLineAngle,
		Margin:       o.Margin,
		FontSize:     o.FontSize,
		Zoom:         o.Zoom,
		CenterBp:     o.CenterBp,
		MaxLabels:    o.MaxLabels,
		WrapIslands:  o.WrapIslands,
	}
}
