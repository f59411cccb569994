// Package resize computes the geometry of a resize operation: given the
// intrinsic size of a source image and one of five fitting policies, it
// derives the scaled image size, the canvas size, and the placement offset of
// the scaled image on that canvas. It performs no pixel work.
package resize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/imagefit/imagefit/pkg/types"
)

var (
	// ErrInvalidMethod is returned for a nil or unrecognized method value.
	ErrInvalidMethod = errors.New("resize: invalid method")

	// ErrUnresolvedConstraint is returned when the sizing inputs are
	// insufficient for the chosen method.
	ErrUnresolvedConstraint = errors.New("resize: unresolved constraint")
)

// Method is the closed set of fitting policies. A zero Width or Height field
// means the bound is unset.
type Method interface {
	method()
	String() string
}

// Standard ignores the source aspect ratio entirely: the image is stretched
// to exactly Width x Height.
type Standard struct {
	Width  int
	Height int
}

// Circumscribed fills the target rectangle completely, cropping overflow on
// the unconstrained axis. The canvas keeps the target aspect ratio and the
// scaled image is centered on it.
type Circumscribed struct {
	Width  int
	Height int
}

// Inscribed fits the image entirely inside the target rectangle, padding the
// unused space. The canvas keeps the target aspect ratio and the scaled image
// is centered on it.
type Inscribed struct {
	Width  int
	Height int
}

// Proportionate scales the image to fit the bounds and shrinks the canvas to
// exactly match the scaled image: no padding, no cropping.
type Proportionate struct {
	Width  int
	Height int
}

// CropProportionate resizes a sub-rectangle of the source instead of the
// whole image. The crop rectangle starts at (CropX, CropY); CropWidth and
// CropHeight default to the source size minus the offset when zero. This is
// the only policy that produces negative placement offsets: the full scaled
// source is composited with its crop origin pushed outside the canvas.
type CropProportionate struct {
	Width      int
	Height     int
	CropX      int
	CropY      int
	CropWidth  int
	CropHeight int
}

func (Standard) method()          {}
func (Circumscribed) method()     {}
func (Inscribed) method()         {}
func (Proportionate) method()     {}
func (CropProportionate) method() {}

func (Standard) String() string          { return "standard" }
func (Circumscribed) String() string     { return "circumscribed" }
func (Inscribed) String() string         { return "inscribed" }
func (Proportionate) String() string     { return "proportionate" }
func (CropProportionate) String() string { return "crop-proportionate" }

// Result is the geometry contract between the calculator and the session.
// It is produced fresh per call and never mutated afterwards.
type Result struct {
	Scaled types.Dimension
	Canvas types.Dimension
	Offset types.Offset
}

// Calculate derives the resize geometry for src under the given method. It is
// pure: it neither touches pixels nor retains state between calls.
func Calculate(src types.Dimension, m Method) (Result, error) {
	switch m := m.(type) {
	case Standard:
		return standard(m)
	case Circumscribed:
		return circumscribed(src, m)
	case CropProportionate:
		return cropProportionate(src, m)
	case Inscribed:
		return inscribed(src, m)
	case Proportionate:
		return proportionate(src, m)
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrInvalidMethod, m)
	}
}

// MethodByName builds a Method from its CLI/user-facing name. The crop
// parameters are only consulted for the crop-proportionate method.
func MethodByName(name string, width, height, cropX, cropY, cropWidth, cropHeight int) (Method, error) {
	switch strings.ToLower(name) {
	case "standard":
		return Standard{Width: width, Height: height}, nil
	case "circumscribed":
		return Circumscribed{Width: width, Height: height}, nil
	case "inscribed":
		return Inscribed{Width: width, Height: height}, nil
	case "proportionate":
		return Proportionate{Width: width, Height: height}, nil
	case "crop", "crop-proportionate":
		return CropProportionate{
			Width: width, Height: height,
			CropX: cropX, CropY: cropY,
			CropWidth: cropWidth, CropHeight: cropHeight,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, name)
	}
}

func standard(m Standard) (Result, error) {
	if m.Width <= 0 && m.Height <= 0 {
		return Result{}, fmt.Errorf("%w: standard needs a max width or height", ErrUnresolvedConstraint)
	}
	d := types.Dimension{Width: m.Width, Height: m.Height}
	return Result{Scaled: d, Canvas: d}, nil
}

func circumscribed(src types.Dimension, m Circumscribed) (Result, error) {
	if m.Width <= 0 && m.Height <= 0 {
		return Result{}, fmt.Errorf("%w: circumscribed needs a max width or height", ErrUnresolvedConstraint)
	}
	if err := checkSource(src); err != nil {
		return Result{}, err
	}
	w, h := src.Width, src.Height

	var scaled, canvas types.Dimension
	// Whichever axis overflows its bound more is left unconstrained; the
	// image is scaled against the other bound and overflows the canvas on
	// the unconstrained axis.
	if m.Width <= 0 || (m.Height > 0 && w*m.Height >= h*m.Width) {
		scaled.Height = clampTo(h, m.Height)
		scaled.Width = round(float64(w) * float64(scaled.Height) / float64(h))
		canvas.Height = scaled.Height
		canvas.Width = backScale(m.Width, canvas.Height, m.Height, scaled.Width)
	} else {
		scaled.Width = clampTo(w, m.Width)
		scaled.Height = round(float64(h) * float64(scaled.Width) / float64(w))
		canvas.Width = scaled.Width
		canvas.Height = backScale(m.Height, canvas.Width, m.Width, scaled.Height)
	}
	return Result{Scaled: scaled, Canvas: canvas, Offset: centered(canvas, scaled)}, nil
}

func inscribed(src types.Dimension, m Inscribed) (Result, error) {
	if m.Width <= 0 && m.Height <= 0 {
		return Result{}, fmt.Errorf("%w: inscribed needs a max width or height", ErrUnresolvedConstraint)
	}
	if err := checkSource(src); err != nil {
		return Result{}, err
	}
	w, h := src.Width, src.Height

	var scaled, canvas types.Dimension
	// Mirror of circumscribed: the axis with the larger overflow is the
	// constrained one, so the whole image lands inside the canvas and the
	// remaining space on the other axis becomes padding.
	if m.Height <= 0 || (m.Width > 0 && w*m.Height >= h*m.Width) {
		scaled.Width = clampTo(w, m.Width)
		scaled.Height = round(float64(h) * float64(scaled.Width) / float64(w))
		canvas.Width = scaled.Width
		canvas.Height = backScale(m.Height, canvas.Width, m.Width, scaled.Height)
	} else {
		scaled.Height = clampTo(h, m.Height)
		scaled.Width = round(float64(w) * float64(scaled.Height) / float64(h))
		canvas.Height = scaled.Height
		canvas.Width = backScale(m.Width, canvas.Height, m.Height, scaled.Width)
	}
	return Result{Scaled: scaled, Canvas: canvas, Offset: centered(canvas, scaled)}, nil
}

func proportionate(src types.Dimension, m Proportionate) (Result, error) {
	if m.Width <= 0 && m.Height <= 0 {
		return Result{}, fmt.Errorf("%w: proportionate needs a max width or height", ErrUnresolvedConstraint)
	}
	if err := checkSource(src); err != nil {
		return Result{}, err
	}
	scaled := fitProportionate(src.Width, src.Height, m.Width, m.Height)
	return Result{Scaled: scaled, Canvas: scaled}, nil
}

func cropProportionate(src types.Dimension, m CropProportionate) (Result, error) {
	if err := checkSource(src); err != nil {
		return Result{}, err
	}
	cropW := m.CropWidth
	if cropW == 0 {
		cropW = src.Width - m.CropX
	}
	cropH := m.CropHeight
	if cropH == 0 {
		cropH = src.Height - m.CropY
	}
	if cropW <= 0 || cropH <= 0 {
		return Result{}, fmt.Errorf("%w: crop rectangle %dx%d is not resolvable", ErrUnresolvedConstraint, cropW, cropH)
	}

	// The crop rectangle, not the source, is fitted into the bounds; the
	// fitted crop becomes the canvas.
	canvas := fitProportionate(cropW, cropH, m.Width, m.Height)

	// The full source is scaled by the canvas/crop factor and placed with
	// the crop origin pushed above/left of the canvas.
	scaled := types.Dimension{
		Width:  round(float64(src.Width) * float64(canvas.Width) / float64(cropW)),
		Height: round(float64(src.Height) * float64(canvas.Height) / float64(cropH)),
	}
	offset := types.Offset{
		X: -round(float64(m.CropX) * float64(canvas.Width) / float64(cropW)),
		Y: -round(float64(m.CropY) * float64(canvas.Height) / float64(cropH)),
	}
	return Result{Scaled: scaled, Canvas: canvas, Offset: offset}, nil
}

// fitProportionate scales (w, h) to fit within (maxW, maxH), never upscaling.
// The branch condition is kept exactly as the historical behavior: an unset
// maxW selects the width branch, where an unset bound simply does not clamp.
// With a single bound set this degenerates to a no-op on the source size.
func fitProportionate(w, h, maxW, maxH int) types.Dimension {
	var out types.Dimension
	if maxW <= 0 || (maxH > 0 && w*maxH >= h*maxW) {
		out.Width = clampTo(w, maxW)
		out.Height = round(float64(h) * float64(out.Width) / float64(w))
	} else {
		out.Height = clampTo(h, maxH)
		out.Width = round(float64(w) * float64(out.Height) / float64(h))
	}
	return out
}

// round implements half-away-from-zero rounding, applied once per derived
// axis.
func round(v float64) int {
	return int(math.Round(v))
}

// clampTo caps v at bound; a bound of zero or less does not clamp.
func clampTo(v, bound int) int {
	if bound > 0 && v > bound {
		return bound
	}
	return v
}

// backScale derives the canvas length on the unconstrained axis by scaling
// the bound pair proportionally to the already-fixed canvas axis. When either
// bound is unset the scaled length is used directly.
func backScale(bound, canvasOther, boundOther, scaledAxis int) int {
	if bound <= 0 || boundOther <= 0 {
		return scaledAxis
	}
	return round(float64(bound) * float64(canvasOther) / float64(boundOther))
}

// centered places scaled in the middle of canvas; a larger scaled size yields
// a negative offset (equal visual crop on both sides).
func centered(canvas, scaled types.Dimension) types.Offset {
	return types.Offset{
		X: round(float64(canvas.Width-scaled.Width) / 2),
		Y: round(float64(canvas.Height-scaled.Height) / 2),
	}
}

func checkSource(src types.Dimension) error {
	if src.Width <= 0 || src.Height <= 0 {
		return fmt.Errorf("%w: source dimensions %dx%d", ErrUnresolvedConstraint, src.Width, src.Height)
	}
	return nil
}
