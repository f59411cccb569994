// Package imagefit provides deterministic resize geometry and a session-based
// pipeline for loading, fitting, post-processing, and persisting raster
// images.
//
// The geometry model separates three values for every resize: the scaled size
// of the resampled source, the canvas it is composited onto, and the placement
// offset of the image on that canvas. Five fitting policies derive these
// values from the source size and a target bounding rectangle; all pixel work
// is delegated to a pluggable image engine.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/imagefit/imagefit"
//		"github.com/imagefit/imagefit/pkg/resize"
//	)
//
//	func main() {
//		fit := imagefit.New()
//
//		// Load an image, fit it inside 510x580, write it back out.
//		s, err := fit.Open("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := s.Resize(resize.Inscribed{Width: 510, Height: 580}, ""); err != nil {
//			log.Fatal(err)
//		}
//		if err := s.Write("photo_fitted.jpg"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of four main components:
//
// 1. Calculator (pkg/resize): pure geometry for the five fitting policies
// 2. Session (pkg/session): load → normalize → resize → post-process → write
// 3. Engine (pkg/engine): the boundary to the pixel-processing backend
// 4. Orientation (pkg/orientation): EXIF orientation correction
//
// Fitting policies:
//
//   - Standard: stretch to the exact target rectangle, ignoring aspect ratio
//   - Circumscribed: fill the target completely, cropping the overflow
//   - Inscribed: fit inside the target, padding the unused space
//   - Proportionate: fit inside the target with the canvas shrunk to match
//   - CropProportionate: fit an explicit sub-rectangle of the source
//
// Every operation is synchronous and a session exclusively owns its image;
// concurrent processing means running independent sessions.
package imagefit

import (
	"image"

	"github.com/hashicorp/go-hclog"

	"github.com/imagefit/imagefit/internal/utils"
	"github.com/imagefit/imagefit/pkg/engine"
	"github.com/imagefit/imagefit/pkg/resize"
	"github.com/imagefit/imagefit/pkg/session"
	"github.com/imagefit/imagefit/pkg/types"
)

// Version of the imagefit library
const Version = "1.0.0"

// ImageFit provides a high-level interface for the resize pipeline
type ImageFit struct {
	engine  engine.Engine
	factory *session.Factory
}

// New creates a new ImageFit with the default engine and configuration
func New() *ImageFit {
	eng := engine.NewImaging()
	return &ImageFit{
		engine:  eng,
		factory: session.NewFactory(eng),
	}
}

// NewWithConfig creates a new ImageFit with custom session defaults and an
// optional logger
func NewWithConfig(cfg session.Config, logger hclog.Logger) *ImageFit {
	eng := engine.NewImaging()
	return &ImageFit{
		engine:  eng,
		factory: session.NewFactoryWithConfig(eng, cfg, logger),
	}
}

// Open loads an image from file
func (f *ImageFit) Open(path string) (*session.Session, error) {
	return f.factory.Open(path)
}

// FromHandle adopts an already-decoded engine image
func (f *ImageFit) FromHandle(h engine.Handle) (*session.Session, error) {
	return f.factory.FromHandle(h)
}

// FromLegacyBitmap loads an image from an encoded legacy bitmap blob
func (f *ImageFit) FromLegacyBitmap(blob []byte) (*session.Session, error) {
	return f.factory.FromLegacyBitmap(blob)
}

// NewSession builds a session from any supported source form
func (f *ImageFit) NewSession(src any) (*session.Session, error) {
	return f.factory.New(src)
}

// Calculate exposes the pure geometry calculator for a source image size
func (f *ImageFit) Calculate(width, height int, m resize.Method) (resize.Result, error) {
	return resize.Calculate(types.Dimension{Width: width, Height: height}, m)
}

// ProcessFile is a convenience function that loads an image, resizes it with
// the given method, and writes it to outputPath. The target format is derived
// from the output extension when it differs from the source.
func (f *ImageFit) ProcessFile(inputPath, outputPath string, m resize.Method) error {
	s, err := f.factory.Open(inputPath)
	if err != nil {
		return err
	}

	var target engine.Format
	if format, ok := utils.FormatFromPath(outputPath); ok && format != s.Format() {
		target = format
	}

	if err := s.Resize(m, target); err != nil {
		return err
	}
	return s.Write(outputPath)
}

// ExportLegacy re-encodes an open session through the legacy bitmap interface
func (f *ImageFit) ExportLegacy(s *session.Session) (image.Image, error) {
	return s.ExportLegacyHandle()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
