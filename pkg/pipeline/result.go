package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/genomap/pkg/geometry"
	"github.com/matzehuels/genomap/pkg/labels"
)

// Result holds the placed labels of one layout.
type Result struct {
	ID       string `json:"id"`
	Map      string `json:"map"`
	MapHash  string `json:"map_hash,omitempty"`
	Length   int    `json:"length"`
	Circular bool   `json:"circular"`
	Window   Window `json:"window"`
	Strategy string `json:"strategy"`

	Labels []Placement `json:"labels"`
	Stats  Stats       `json:"stats"`
}

// Placement is the final position of one label.
type Placement struct {
	Name     string  `json:"name"`
	HomeBp   float64 `json:"home_bp"`
	AttachBp float64 `json:"attach_bp"`

	BoundingBox     geometry.Rect  `json:"bounding_box"`
	AttachmentPoint geometry.Point `json:"attachment_point"`
	// LinePoint is the map-side end of the leader line.
	LinePoint       geometry.Point `json:"line_point"`
	ClockAttachment int            `json:"clock_attachment"`
	LineLength      float64        `json:"line_length"`

	Direction int  `json:"direction"`
	Popped    bool `json:"popped,omitempty"`
}

// Stats summarises a layout.
type Stats struct {
	Features        int           `json:"features"`
	Visible         int           `json:"visible"`
	Labels          int           `json:"labels"`
	InitialIslands  int           `json:"initial_islands"`
	MergeIterations int           `json:"merge_iterations"`
	FinalIslands    int           `json:"final_islands"`
	Popped          int           `json:"popped"`
	Duration        time.Duration `json:"duration_ns"`
}

func newPlacement(l *labels.Label, base float64) Placement {
	return Placement{
		Name:            l.Name,
		HomeBp:          l.HomeBp,
		AttachBp:        l.AttachBp,
		BoundingBox:     l.Rect,
		AttachmentPoint: l.AttachPoint,
		LinePoint:       l.LinePoint,
		ClockAttachment: l.ClockAttachment,
		LineLength:      l.LineLength(base),
		Direction:       l.Direction,
		Popped:          l.Popped,
	}
}

// MarshalResult serializes a result to JSON.
func MarshalResult(r *Result) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult deserializes a result from JSON.
func UnmarshalResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
