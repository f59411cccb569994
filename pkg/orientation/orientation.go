// Package orientation maps EXIF orientation values to the rotation needed to
// display an image upright.
package orientation

// Orientation is the EXIF orientation tag value (1-8). Zero means the tag was
// absent.
type Orientation int

const (
	Normal           Orientation = 1
	MirrorHorizontal Orientation = 2
	UpsideDown       Orientation = 3
	MirrorVertical   Orientation = 4
	MirrorTranspose  Orientation = 5
	RotatedCCW       Orientation = 6 // needs a 90° clockwise correction
	MirrorTransverse Orientation = 7
	RotatedCW        Orientation = 8 // needs a 90° counter-clockwise correction
)

// Rotation is the correction instruction applied to a decoded image.
type Rotation int

const (
	None Rotation = iota
	Rotate180
	Rotate90CW
	Rotate90CCW
)

// Normalize maps an orientation tag to its rotation correction. Only the
// three purely rotated orientations are handled; the four mirrored variants
// (2, 4, 5, 7) are left uncorrected.
func Normalize(o Orientation) Rotation {
	switch o {
	case UpsideDown:
		return Rotate180
	case RotatedCCW:
		return Rotate90CW
	case RotatedCW:
		return Rotate90CCW
	default:
		return None
	}
}

// Degrees returns the counter-clockwise rotation angle, the convention used
// by the image engine.
func (r Rotation) Degrees() float64 {
	switch r {
	case Rotate180:
		return 180
	case Rotate90CW:
		return 270
	case Rotate90CCW:
		return 90
	default:
		return 0
	}
}
