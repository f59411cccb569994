// Package engine defines the narrow boundary to the image-processing backend.
// The rest of the system requests geometry and format operations through the
// Engine interface and never inspects pixel data itself.
package engine

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/imagefit/imagefit/pkg/orientation"
)

// Handle is an opaque reference to the engine's decoded image object. The
// owning session must not share it across sessions.
type Handle = *image.NRGBA

// Format is an image encoding tag.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	WEBP Format = "webp"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// SupportsAlpha reports whether the encoding can hold an alpha channel.
func (f Format) SupportsAlpha() bool {
	switch f {
	case PNG, GIF, WEBP:
		return true
	default:
		return false
	}
}

// Lossy reports whether encoding in f applies lossy compression.
func (f Format) Lossy() bool {
	return f == JPEG || f == WEBP
}

// ParseFormat normalizes a user-supplied format or extension name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "gif":
		return GIF, nil
	case "webp":
		return WEBP, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("engine: unknown format %q", s)
	}
}

// Decoded is the result of decoding a source image.
type Decoded struct {
	Handle      Handle
	Width       int
	Height      int
	Format      Format
	Orientation orientation.Orientation
}

// Engine is the set of capabilities the session requires from the backend.
// Operations that cannot fail on an in-memory image return the new handle
// directly; decode and encode surface *EngineError.
type Engine interface {
	DecodeFile(path string) (*Decoded, error)
	DecodeBlob(b []byte) (*Decoded, error)

	Rotate(h Handle, degrees float64, fill color.Color) Handle
	NewCanvas(width, height int, fill color.Color) Handle
	Resize(h Handle, width, height int, filter imaging.ResampleFilter, blurSigma float64) Handle
	Composite(canvas, overlay Handle, x, y int) Handle
	PaintTransparent(h Handle, c color.Color, threshold uint32) Handle
	SetBackground(h Handle, c color.Color) Handle
	RoundCorners(h Handle, rx, ry int) Handle

	EncodeFile(h Handle, path string, format Format, quality int) error
	EncodeBlob(h Handle, format Format, quality int) ([]byte, error)

	// DecodeLegacyBitmap re-decodes an encoded blob through the generic
	// bitmap interface, yielding a handle outside the engine's native type.
	DecodeLegacyBitmap(b []byte) (image.Image, error)
}

// EngineError wraps any failure surfaced by the backend, carrying the failing
// operation for diagnostics. It is propagated unchanged to callers.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return "engine: " + e.Op + ": " + e.Err.Error()
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
