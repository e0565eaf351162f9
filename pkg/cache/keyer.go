package cache

// Keyer derives cache keys.
type Keyer interface {
	// IndexKey returns the key of the feature index built for a map.
	IndexKey(mapHash string) string
	// LayoutKey returns the key of a layout computed for a map.
	LayoutKey(mapHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the layout options that change the output.
// Logging and cache settings are not part of the key.
type LayoutKeyOpts struct {
	Strategy     string  `json:"strategy"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Radius       float64 `json:"radius"`
	LineLength   float64 `json:"line_length"`
	MaxLineAngle float64 `json:"max_line_angle"`
	Margin       float64 `json:"margin"`
	FontSize     float64 `json:"font_size"`
	Zoom         float64 `json:"zoom"`
	CenterBp     int     `json:"center_bp"`
	MaxLabels    int     `json:"max_labels"`
	WrapIslands  bool    `json:"wrap_islands"`
}

// DefaultKeyer builds keys of the form "kind:hash".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// IndexKey implements [Keyer].
func (DefaultKeyer) IndexKey(mapHash string) string {
	return "index:" + mapHash
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(mapHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", mapHash, opts)
}
