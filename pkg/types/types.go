package types

// Dimension is a width/height pair in whole pixels. Derived dimensions are
// rounded to the nearest integer at the moment they are finalized; no
// fractional pixels survive across pipeline stages.
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether both axes are unset.
func (d Dimension) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}

// AspectRatio returns width divided by height, or 0 for a degenerate height.
func (d Dimension) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// Offset is a signed placement position. Positive values place content with a
// margin from the canvas origin; negative values push the content's top-left
// outside the canvas, i.e. the canvas crops it.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}
