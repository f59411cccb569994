package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"

	"github.com/imagefit/imagefit/pkg/orientation"
)

// Imaging is the default Engine built on github.com/disintegration/imaging,
// with WebP support via chai2010/webp. It is stateless; every operation
// returns a fresh image.
type Imaging struct{}

var _ Engine = (*Imaging)(nil)

// NewImaging returns the default engine.
func NewImaging() *Imaging {
	return &Imaging{}
}

// DecodeFile decodes the image at path.
func (e *Imaging) DecodeFile(path string) (*Decoded, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &EngineError{Op: "decode " + path, Err: err}
	}
	return e.DecodeBlob(b)
}

// DecodeBlob decodes an encoded image from memory. The EXIF orientation tag
// is extracted when present; images without one report Normal.
func (e *Imaging) DecodeBlob(b []byte) (*Decoded, error) {
	img, name, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		// Registered decoders may miss some WebP variants; try the
		// dedicated decoder before giving up.
		if wimg, werr := webp.Decode(bytes.NewReader(b)); werr == nil {
			img, name = wimg, "webp"
		} else {
			return nil, &EngineError{Op: "decode", Err: err}
		}
	}

	format, err := ParseFormat(name)
	if err != nil {
		return nil, &EngineError{Op: "decode", Err: err}
	}

	h := imaging.Clone(img)
	return &Decoded{
		Handle:      h,
		Width:       h.Rect.Dx(),
		Height:      h.Rect.Dy(),
		Format:      format,
		Orientation: exifOrientation(b),
	}, nil
}

// exifOrientation reads the EXIF orientation tag from the encoded bytes.
// Missing or unparsable EXIF data is not an error for non-JPEG sources.
func exifOrientation(b []byte) orientation.Orientation {
	x, err := exif.Decode(bytes.NewReader(b))
	if err != nil {
		return orientation.Normal
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return orientation.Normal
	}
	v, err := tag.Int(0)
	if err != nil {
		return orientation.Normal
	}
	return orientation.Orientation(v)
}

// Rotate turns the image counter-clockwise by degrees. Right angles use the
// exact lossless rotations; any other angle exposes corner area filled with
// fill.
func (e *Imaging) Rotate(h Handle, degrees float64, fill color.Color) Handle {
	switch degrees {
	case 0:
		return h
	case 90:
		return imaging.Rotate90(h)
	case 180:
		return imaging.Rotate180(h)
	case 270:
		return imaging.Rotate270(h)
	default:
		return imaging.Rotate(h, degrees, fill)
	}
}

// NewCanvas creates a blank image filled with the given color.
func (e *Imaging) NewCanvas(width, height int, fill color.Color) Handle {
	return imaging.New(width, height, fill)
}

// Resize resamples the image to the exact target size. A positive blurSigma
// applies a gaussian blur after resampling.
func (e *Imaging) Resize(h Handle, width, height int, filter imaging.ResampleFilter, blurSigma float64) Handle {
	out := imaging.Resize(h, width, height, filter)
	if blurSigma > 0 {
		out = imaging.Blur(out, blurSigma)
	}
	return out
}

// Composite draws overlay onto canvas at (x, y) with source-over semantics.
// Negative coordinates are valid and crop the overlay at the canvas edge.
func (e *Imaging) Composite(canvas, overlay Handle, x, y int) Handle {
	return imaging.Overlay(canvas, overlay, image.Pt(x, y), 1.0)
}

// PaintTransparent makes every pixel within threshold of c fully transparent.
// The distance metric is the maximum per-channel difference on the engine's
// 16-bit channel scale.
func (e *Imaging) PaintTransparent(h Handle, c color.Color, threshold uint32) Handle {
	out := imaging.Clone(h)
	cr, cg, cb, _ := c.RGBA()

	w, ht := out.Rect.Dx(), out.Rect.Dy()
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			px := out.NRGBAAt(x, y)
			if chanDist(uint32(px.R)*0x101, cr) <= threshold &&
				chanDist(uint32(px.G)*0x101, cg) <= threshold &&
				chanDist(uint32(px.B)*0x101, cb) <= threshold {
				px.A = 0
				out.SetNRGBA(x, y, px)
			}
		}
	}
	return out
}

// SetBackground flattens the image onto a solid background, discarding any
// transparency.
func (e *Imaging) SetBackground(h Handle, c color.Color) Handle {
	bg := imaging.New(h.Rect.Dx(), h.Rect.Dy(), c)
	return imaging.Overlay(bg, h, image.Pt(0, 0), 1.0)
}

// RoundCorners applies a rounded-rectangle alpha mask with the given corner
// radii. There is no mask primitive in the imaging library, so the mask is
// drawn with the standard library's draw.DrawMask.
func (e *Imaging) RoundCorners(h Handle, rx, ry int) Handle {
	w, ht := h.Rect.Dx(), h.Rect.Dy()
	if rx > w/2 {
		rx = w / 2
	}
	if ry > ht/2 {
		ry = ht / 2
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, ht))
	rx2, ry2 := int64(rx)*int64(rx), int64(ry)*int64(ry)
	for y := 0; y < ht; y++ {
		dy := cornerDist(y, ht, ry)
		for x := 0; x < w; x++ {
			dx := cornerDist(x, w, rx)
			a := uint8(0xff)
			if dx > 0 && dy > 0 {
				// Ellipse test against the corner center.
				if int64(dx)*int64(dx)*ry2+int64(dy)*int64(dy)*rx2 > rx2*ry2 {
					a = 0
				}
			}
			mask.SetAlpha(x, y, color.Alpha{A: a})
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, ht))
	draw.DrawMask(out, out.Rect, h, image.Point{}, mask, image.Point{}, draw.Src)
	return out
}

// cornerDist returns how far coordinate v sits inside a corner arc of the
// given radius on an axis of length n, or 0 outside the corner bands.
func cornerDist(v, n, radius int) int {
	if v < radius {
		return radius - v
	}
	if v >= n-radius {
		return v - (n - radius - 1)
	}
	return 0
}

// EncodeFile encodes the image to path in the given format.
func (e *Imaging) EncodeFile(h Handle, path string, format Format, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return &EngineError{Op: "encode " + path, Err: err}
	}
	if err := e.encode(f, h, format, quality); err != nil {
		f.Close()
		return &EngineError{Op: "encode " + path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &EngineError{Op: "encode " + path, Err: err}
	}
	return nil
}

// EncodeBlob encodes the image into memory.
func (e *Imaging) EncodeBlob(h Handle, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.encode(&buf, h, format, quality); err != nil {
		return nil, &EngineError{Op: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

func (e *Imaging) encode(w io.Writer, h Handle, format Format, quality int) error {
	if format == WEBP {
		return webp.Encode(w, h, &webp.Options{Quality: float32(quality)})
	}
	f, err := formatOf(format)
	if err != nil {
		return err
	}
	if format == JPEG {
		return imaging.Encode(w, h, f, imaging.JPEGQuality(quality))
	}
	return imaging.Encode(w, h, f)
}

// DecodeLegacyBitmap decodes an encoded blob into a generic bitmap handle.
func (e *Imaging) DecodeLegacyBitmap(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		if wimg, werr := webp.Decode(bytes.NewReader(b)); werr == nil {
			return wimg, nil
		}
		return nil, &EngineError{Op: "decode legacy bitmap", Err: err}
	}
	return img, nil
}

func chanDist(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func formatOf(format Format) (imaging.Format, error) {
	switch format {
	case JPEG:
		return imaging.JPEG, nil
	case PNG:
		return imaging.PNG, nil
	case GIF:
		return imaging.GIF, nil
	case BMP:
		return imaging.BMP, nil
	case TIFF:
		return imaging.TIFF, nil
	default:
		return 0, fmt.Errorf("unsupported encode format %q", format)
	}
}
