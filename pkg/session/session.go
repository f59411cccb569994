// Package session orchestrates the lifecycle of a single image: load,
// orientation normalization, resize, transparency and rounding stages, and
// persistence. A session exclusively owns its engine handle and runs every
// operation synchronously; processing several images concurrently means
// running independent sessions.
package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"

	"github.com/imagefit/imagefit/pkg/engine"
	"github.com/imagefit/imagefit/pkg/orientation"
	"github.com/imagefit/imagefit/pkg/resize"
	"github.com/imagefit/imagefit/pkg/types"
)

var (
	// ErrUnsupportedSource is returned when a construction input is neither
	// a file path, an engine handle, nor a legacy bitmap blob.
	ErrUnsupportedSource = errors.New("session: unsupported source")

	// ErrMissingDestination is returned by Write when no destination path
	// was ever supplied.
	ErrMissingDestination = errors.New("session: missing destination path")
)

// Config carries the named defaults that used to be process-wide constants.
// It is passed explicitly so the calculator and the engine stay testable
// without a fully constructed session.
type Config struct {
	// Quality is the compression quality applied to lossy formats on write.
	Quality int

	// MaxWidth and MaxHeight fill unset resize bounds.
	MaxWidth  int
	MaxHeight int

	// TransparencyThreshold is the default color distance for
	// MakeTransparent, on the engine's 16-bit channel scale.
	TransparencyThreshold uint32

	// Filter is the resampling filter used for every resize.
	Filter imaging.ResampleFilter

	// BlurSigma is an optional gaussian blur applied after resampling.
	BlurSigma float64

	// Background is the fill for non-transparent canvases, the rotation
	// fill, and the default MakeTransparent target.
	Background color.Color
}

// DefaultConfig returns the standard defaults.
func DefaultConfig() Config {
	return Config{
		Quality:               75,
		MaxWidth:              510,
		MaxHeight:             580,
		TransparencyThreshold: 1279,
		Filter:                imaging.Lanczos,
		BlurSigma:             0,
		Background:            color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Factory creates sessions bound to an engine, a config, and a logger.
type Factory struct {
	engine engine.Engine
	config Config
	logger hclog.Logger
}

// NewFactory returns a factory with the default configuration and no logging.
func NewFactory(eng engine.Engine) *Factory {
	return NewFactoryWithConfig(eng, DefaultConfig(), nil)
}

// NewFactoryWithConfig returns a factory with custom defaults. A nil logger
// disables logging.
func NewFactoryWithConfig(eng engine.Engine, cfg Config, logger hclog.Logger) *Factory {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Factory{engine: eng, config: cfg, logger: logger}
}

// Session holds one decoded image and its current geometry and format. It is
// created in the ready state and becomes finalized after a successful Write.
type Session struct {
	eng    engine.Engine
	cfg    Config
	log    hclog.Logger
	handle engine.Handle
	size   types.Dimension
	format engine.Format
	path   string

	finalized bool
}

// New builds a session from any of the supported source forms: a file path,
// an engine handle, or an encoded legacy bitmap blob.
func (f *Factory) New(src any) (*Session, error) {
	switch src := src.(type) {
	case string:
		return f.Open(src)
	case engine.Handle:
		return f.FromHandle(src)
	case []byte:
		return f.FromLegacyBitmap(src)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}

// Open decodes the image at path and normalizes its orientation. The path is
// remembered as the default write destination.
func (f *Factory) Open(path string) (*Session, error) {
	dec, err := f.engine.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	s := f.fromDecoded(dec)
	s.path = path
	return s, nil
}

// FromHandle adopts an already-decoded engine handle. Handle-sourced images
// carry no encoding information, so the format defaults to JPEG.
func (f *Factory) FromHandle(h engine.Handle) (*Session, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil engine handle", ErrUnsupportedSource)
	}
	return f.fromDecoded(&engine.Decoded{
		Handle:      h,
		Width:       h.Rect.Dx(),
		Height:      h.Rect.Dy(),
		Format:      engine.JPEG,
		Orientation: orientation.Normal,
	}), nil
}

// FromLegacyBitmap decodes an encoded blob through the legacy bitmap
// interface and adopts the result.
func (f *Factory) FromLegacyBitmap(blob []byte) (*Session, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty bitmap blob", ErrUnsupportedSource)
	}
	dec, err := f.engine.DecodeBlob(blob)
	if err != nil {
		return nil, err
	}
	return f.fromDecoded(dec), nil
}

func (f *Factory) fromDecoded(dec *engine.Decoded) *Session {
	s := &Session{
		eng:    f.engine,
		cfg:    f.config,
		log:    f.logger,
		handle: dec.Handle,
		size:   types.Dimension{Width: dec.Width, Height: dec.Height},
		format: dec.Format,
	}

	if rot := orientation.Normalize(dec.Orientation); rot != orientation.None {
		s.log.Debug("correcting orientation", "tag", int(dec.Orientation))
		s.handle = s.eng.Rotate(s.handle, rot.Degrees(), s.cfg.Background)
		s.size = types.Dimension{Width: s.handle.Rect.Dx(), Height: s.handle.Rect.Dy()}
	}
	return s
}

// Resize computes the geometry for the given method, then rebuilds the image:
// a fresh canvas of the computed size, the source resampled to the scaled
// size, and a source-over composite at the placement offset. Unset method
// bounds are filled from the configured defaults. A non-empty targetFormat
// switches the session's format before the canvas fill color is chosen.
// On error the session state is left untouched.
func (s *Session) Resize(m resize.Method, targetFormat engine.Format) error {
	if err := s.ensureReady("resize"); err != nil {
		return err
	}

	m = s.applyBounds(m)
	res, err := resize.Calculate(s.size, m)
	if err != nil {
		return err
	}

	if targetFormat != "" {
		s.format = targetFormat
	}

	fill := s.cfg.Background
	if s.format.SupportsAlpha() {
		fill = color.NRGBA{}
	}

	canvas := s.eng.NewCanvas(res.Canvas.Width, res.Canvas.Height, fill)
	scaled := s.eng.Resize(s.handle, res.Scaled.Width, res.Scaled.Height, s.cfg.Filter, s.cfg.BlurSigma)
	s.handle = s.eng.Composite(canvas, scaled, res.Offset.X, res.Offset.Y)
	s.size = res.Canvas

	s.log.Debug("resized",
		"method", m.String(),
		"scaled", res.Scaled,
		"canvas", res.Canvas,
		"offset", res.Offset,
	)
	return nil
}

// applyBounds fills unset max width/height fields from the configured
// defaults, mirroring the historical call-surface defaults.
func (s *Session) applyBounds(m resize.Method) resize.Method {
	w, h := s.cfg.MaxWidth, s.cfg.MaxHeight
	switch m := m.(type) {
	case resize.Standard:
		return resize.Standard{Width: or(m.Width, w), Height: or(m.Height, h)}
	case resize.Circumscribed:
		return resize.Circumscribed{Width: or(m.Width, w), Height: or(m.Height, h)}
	case resize.Inscribed:
		return resize.Inscribed{Width: or(m.Width, w), Height: or(m.Height, h)}
	case resize.Proportionate:
		return resize.Proportionate{Width: or(m.Width, w), Height: or(m.Height, h)}
	case resize.CropProportionate:
		m.Width = or(m.Width, w)
		m.Height = or(m.Height, h)
		return m
	default:
		return m
	}
}

// MakeTransparent turns every pixel close to the background color fully
// transparent and forces the format to a transparency-capable encoding. A nil
// color and a zero threshold fall back to the configured defaults.
func (s *Session) MakeTransparent(background color.Color, threshold uint32) error {
	if err := s.ensureReady("make transparent"); err != nil {
		return err
	}
	if background == nil {
		background = s.cfg.Background
	}
	if threshold == 0 {
		threshold = s.cfg.TransparencyThreshold
	}

	s.handle = s.eng.PaintTransparent(s.handle, background, threshold)
	s.format = engine.PNG
	s.log.Debug("painted transparent", "threshold", threshold)
	return nil
}

// RoundCorners applies a rounded-rectangle alpha mask. A zero radius defaults
// to a quarter of the width/height sum. When the current format cannot hold
// alpha, the masked corner area is filled with the given color so it does not
// come out black after encoding.
func (s *Session) RoundCorners(c color.Color, radius int) error {
	if err := s.ensureReady("round corners"); err != nil {
		return err
	}
	if radius <= 0 {
		radius = (s.size.Width + s.size.Height) / 4
	}
	if c == nil {
		c = s.cfg.Background
	}

	s.handle = s.eng.RoundCorners(s.handle, radius, radius)
	if !s.format.SupportsAlpha() {
		s.handle = s.eng.SetBackground(s.handle, c)
	}
	s.log.Debug("rounded corners", "radius", radius)
	return nil
}

// Write encodes the image to path, falling back to the path supplied at
// construction. The file is written to a temporary location in the target
// directory and renamed into place, so concurrent readers never observe a
// partial file; a failed encode leaves the temporary file unrenamed. A
// successful write finalizes the session.
func (s *Session) Write(path string) error {
	if err := s.ensureReady("write"); err != nil {
		return err
	}
	if path == "" {
		path = s.path
	}
	if path == "" {
		return ErrMissingDestination
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".imagefit-*")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close temp file: %w", err)
	}

	if err := s.eng.EncodeFile(s.handle, tmpName, s.format, s.cfg.Quality); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("session: rename into place: %w", err)
	}

	s.path = path
	s.finalized = true
	s.log.Debug("wrote image", "path", path, "format", string(s.format), "size", s.size)
	return nil
}

// ExportLegacyHandle encodes the current image and immediately re-decodes it
// through the legacy bitmap interface, returning that handle. The session
// state is not mutated.
func (s *Session) ExportLegacyHandle() (image.Image, error) {
	if err := s.ensureReady("export legacy handle"); err != nil {
		return nil, err
	}
	blob, err := s.eng.EncodeBlob(s.handle, s.format, s.cfg.Quality)
	if err != nil {
		return nil, err
	}
	return s.eng.DecodeLegacyBitmap(blob)
}

// Path returns the file identity, if any.
func (s *Session) Path() string { return s.path }

// SetPath sets the file identity used as the default write destination.
func (s *Session) SetPath(path string) { s.path = path }

// Width returns the current image width.
func (s *Session) Width() int { return s.size.Width }

// Height returns the current image height.
func (s *Session) Height() int { return s.size.Height }

// Size returns the current dimensions.
func (s *Session) Size() types.Dimension { return s.size }

// Format returns the current encoding format.
func (s *Session) Format() engine.Format { return s.format }

// Handle exposes the engine handle for read access. The session keeps
// exclusive ownership; callers must not mutate or retain it.
func (s *Session) Handle() engine.Handle { return s.handle }

func (s *Session) ensureReady(op string) error {
	if s.finalized {
		return fmt.Errorf("session: %s on finalized session", op)
	}
	return nil
}

func or(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
