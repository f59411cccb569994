package engine

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/imagefit/imagefit/pkg/orientation"
)

// createTestHandle builds a solid-color engine image
func createTestHandle(width, height int, c color.NRGBA) Handle {
	img := imaging.New(width, height, c)
	return img
}

func TestDecodeBlobRoundTrip(t *testing.T) {
	eng := NewImaging()
	src := createTestHandle(40, 20, color.NRGBA{200, 30, 30, 255})

	for _, format := range []Format{JPEG, PNG, GIF, WEBP, BMP, TIFF} {
		blob, err := eng.EncodeBlob(src, format, 90)
		if err != nil {
			t.Fatalf("EncodeBlob(%s) failed: %v", format, err)
		}
		if len(blob) == 0 {
			t.Fatalf("EncodeBlob(%s) produced no data", format)
		}

		dec, err := eng.DecodeBlob(blob)
		if err != nil {
			t.Fatalf("DecodeBlob(%s) failed: %v", format, err)
		}
		if dec.Width != 40 || dec.Height != 20 {
			t.Errorf("%s: expected 40x20, got %dx%d", format, dec.Width, dec.Height)
		}
		if dec.Format != format {
			t.Errorf("expected format %s, got %s", format, dec.Format)
		}
		if dec.Orientation != orientation.Normal {
			t.Errorf("%s: expected normal orientation, got %d", format, dec.Orientation)
		}
	}
}

func TestDecodeBlobInvalidData(t *testing.T) {
	eng := NewImaging()
	_, err := eng.DecodeBlob([]byte("not an image"))
	if err == nil {
		t.Fatal("expected decode error")
	}

	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Errorf("expected *EngineError, got %T", err)
	}
}

func TestDecodeFileMissing(t *testing.T) {
	eng := NewImaging()
	if _, err := eng.DecodeFile("/nonexistent/image.png"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewCanvasFill(t *testing.T) {
	eng := NewImaging()
	canvas := eng.NewCanvas(10, 10, color.NRGBA{0, 0, 255, 255})

	if got := canvas.NRGBAAt(5, 5); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("expected blue fill, got %v", got)
	}
}

func TestCompositeNegativeOffset(t *testing.T) {
	eng := NewImaging()
	canvas := eng.NewCanvas(10, 10, color.NRGBA{0, 0, 0, 255})
	overlay := createTestHandle(20, 10, color.NRGBA{255, 255, 255, 255})

	out := eng.Composite(canvas, overlay, -5, 0)

	if out.Rect.Dx() != 10 || out.Rect.Dy() != 10 {
		t.Fatalf("canvas size changed: %v", out.Rect)
	}
	// The overlay covers the full canvas; pixels left of its origin were
	// cropped away.
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("expected white at (0,0), got %v", got)
	}
	if got := out.NRGBAAt(9, 9); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("expected white at (9,9), got %v", got)
	}
}

func TestCompositeSourceOver(t *testing.T) {
	eng := NewImaging()
	canvas := eng.NewCanvas(10, 10, color.NRGBA{255, 0, 0, 255})
	overlay := createTestHandle(4, 4, color.NRGBA{0, 255, 0, 255})

	out := eng.Composite(canvas, overlay, 3, 3)

	if got := out.NRGBAAt(4, 4); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("expected overlay pixel at (4,4), got %v", got)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("expected canvas pixel at (0,0), got %v", got)
	}
}

func TestResizeExactSize(t *testing.T) {
	eng := NewImaging()
	src := createTestHandle(100, 50, color.NRGBA{10, 20, 30, 255})

	out := eng.Resize(src, 40, 40, imaging.Lanczos, 0)
	if out.Rect.Dx() != 40 || out.Rect.Dy() != 40 {
		t.Errorf("expected 40x40, got %dx%d", out.Rect.Dx(), out.Rect.Dy())
	}
}

func TestRotateRightAngles(t *testing.T) {
	eng := NewImaging()
	src := createTestHandle(30, 10, color.NRGBA{1, 2, 3, 255})
	fill := color.NRGBA{255, 255, 255, 255}

	for _, c := range []struct {
		degrees float64
		w, h    int
	}{
		{0, 30, 10},
		{90, 10, 30},
		{180, 30, 10},
		{270, 10, 30},
	} {
		out := eng.Rotate(src, c.degrees, fill)
		if out.Rect.Dx() != c.w || out.Rect.Dy() != c.h {
			t.Errorf("rotate %.0f: expected %dx%d, got %dx%d",
				c.degrees, c.w, c.h, out.Rect.Dx(), out.Rect.Dy())
		}
	}
}

func TestPaintTransparent(t *testing.T) {
	eng := NewImaging()
	src := imaging.New(4, 1, color.NRGBA{255, 255, 255, 255})
	src.SetNRGBA(0, 0, color.NRGBA{252, 252, 252, 255}) // near white
	src.SetNRGBA(1, 0, color.NRGBA{0, 0, 0, 255})       // far from white

	out := eng.PaintTransparent(src, color.NRGBA{255, 255, 255, 255}, 1279)

	if got := out.NRGBAAt(0, 0).A; got != 0 {
		t.Errorf("near-white pixel should be transparent, alpha %d", got)
	}
	if got := out.NRGBAAt(1, 0).A; got != 255 {
		t.Errorf("black pixel should stay opaque, alpha %d", got)
	}
	if got := out.NRGBAAt(2, 0).A; got != 0 {
		t.Errorf("exact-match pixel should be transparent, alpha %d", got)
	}
	// The input is not mutated.
	if got := src.NRGBAAt(2, 0).A; got != 255 {
		t.Errorf("source image was mutated, alpha %d", got)
	}
}

func TestSetBackgroundFlattens(t *testing.T) {
	eng := NewImaging()
	src := imaging.New(2, 2, color.NRGBA{0, 0, 0, 0}) // fully transparent
	src.SetNRGBA(0, 0, color.NRGBA{10, 10, 10, 255})

	out := eng.SetBackground(src, color.NRGBA{255, 0, 0, 255})

	if got := out.NRGBAAt(1, 1); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("transparent pixel should take the background, got %v", got)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{10, 10, 10, 255}) {
		t.Errorf("opaque pixel should be kept, got %v", got)
	}
}

func TestRoundCorners(t *testing.T) {
	eng := NewImaging()
	src := createTestHandle(40, 40, color.NRGBA{100, 100, 100, 255})

	out := eng.RoundCorners(src, 10, 10)

	if got := out.NRGBAAt(0, 0).A; got != 0 {
		t.Errorf("corner pixel should be transparent, alpha %d", got)
	}
	if got := out.NRGBAAt(39, 39).A; got != 0 {
		t.Errorf("opposite corner should be transparent, alpha %d", got)
	}
	if got := out.NRGBAAt(20, 20).A; got != 255 {
		t.Errorf("center should stay opaque, alpha %d", got)
	}
	if got := out.NRGBAAt(20, 0).A; got != 255 {
		t.Errorf("edge midpoint should stay opaque, alpha %d", got)
	}
}

func TestDecodeLegacyBitmap(t *testing.T) {
	eng := NewImaging()
	src := createTestHandle(12, 8, color.NRGBA{5, 5, 5, 255})

	blob, err := eng.EncodeBlob(src, PNG, 0)
	if err != nil {
		t.Fatalf("EncodeBlob failed: %v", err)
	}

	legacy, err := eng.DecodeLegacyBitmap(blob)
	if err != nil {
		t.Fatalf("DecodeLegacyBitmap failed: %v", err)
	}
	b := legacy.Bounds()
	if b.Dx() != 12 || b.Dy() != 8 {
		t.Errorf("expected 12x8, got %dx%d", b.Dx(), b.Dy())
	}

	if _, err := eng.DecodeLegacyBitmap([]byte("garbage")); err == nil {
		t.Error("expected error for invalid legacy blob")
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"jpg", JPEG},
		{"JPEG", JPEG},
		{".png", PNG},
		{"gif", GIF},
		{"webp", WEBP},
		{"tif", TIFF},
		{"bmp", BMP},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", c.in, got, c.want)
		}
	}

	if _, err := ParseFormat("svg"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatCapabilities(t *testing.T) {
	if JPEG.SupportsAlpha() {
		t.Error("jpeg must not report alpha support")
	}
	if !PNG.SupportsAlpha() {
		t.Error("png must report alpha support")
	}
	if !JPEG.Lossy() || PNG.Lossy() {
		t.Error("lossy classification wrong")
	}
}

var _ image.Image = Handle(nil)
