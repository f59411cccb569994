package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/imagefit/imagefit"
	"github.com/imagefit/imagefit/internal/config"
	"github.com/imagefit/imagefit/internal/utils"
	"github.com/imagefit/imagefit/pkg/engine"
	"github.com/imagefit/imagefit/pkg/resize"
	"github.com/imagefit/imagefit/pkg/session"
)

func main() {
	var in, out, method, format, configPath string
	var maxW, maxH int
	var cropX, cropY, cropW, cropH int
	var quality int
	var transparent bool
	var threshold uint
	var round bool
	var radius int
	var verbose bool

	flag.StringVar(&in, "in", "", "input image path (jpg/png/gif/webp/bmp/tiff)")
	flag.StringVar(&out, "out", "", "output path (default: derived from input and config)")
	flag.StringVar(&method, "method", "", "resize method: standard|circumscribed|inscribed|proportionate|crop")
	flag.StringVar(&format, "format", "", "target format (default: from output extension)")
	flag.StringVar(&configPath, "config", "", "JSON config file")

	flag.IntVar(&maxW, "maxw", 0, "max width (default from config)")
	flag.IntVar(&maxH, "maxh", 0, "max height (default from config)")
	flag.IntVar(&cropX, "cropx", 0, "crop offset x (crop method)")
	flag.IntVar(&cropY, "cropy", 0, "crop offset y (crop method)")
	flag.IntVar(&cropW, "cropw", 0, "crop width (crop method, default: source width minus offset)")
	flag.IntVar(&cropH, "croph", 0, "crop height (crop method, default: source height minus offset)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP quality (default from config)")

	flag.BoolVar(&transparent, "transparent", false, "paint the background color transparent")
	flag.UintVar(&threshold, "threshold", 0, "color distance for -transparent (default from config)")
	flag.BoolVar(&round, "round", false, "round the corners")
	flag.IntVar(&radius, "radius", 0, "corner radius for -round (default: (width+height)/4)")
	flag.BoolVar(&verbose, "v", false, "verbose logging")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.jpg [-out output.png] [-method proportionate] [-maxw 510] [-maxh 580]", filepath.Base(os.Args[0]))
	}

	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "imagefit",
		Level: level,
	})

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if method == "" {
		method = cfg.Resize.Method
	}
	if maxW == 0 {
		maxW = cfg.Resize.MaxWidth
	}
	if maxH == 0 {
		maxH = cfg.Resize.MaxHeight
	}
	if quality == 0 {
		quality = cfg.Resize.Quality
	}

	m, err := resize.MethodByName(method, maxW, maxH, cropX, cropY, cropW, cropH)
	if err != nil {
		logger.Error("unknown resize method", "method", method, "error", err)
		os.Exit(1)
	}

	if out == "" {
		if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
			logger.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
		out = utils.GenerateOutputFilename(in, cfg.Output.OutputDir,
			cfg.Output.Prefix, cfg.Output.Suffix, cfg.Output.DefaultFormat)
	}

	sessionCfg := session.DefaultConfig()
	sessionCfg.MaxWidth = maxW
	sessionCfg.MaxHeight = maxH
	sessionCfg.Quality = quality
	if cfg.Resize.TransparencyThreshold > 0 {
		sessionCfg.TransparencyThreshold = cfg.Resize.TransparencyThreshold
	}

	fit := imagefit.NewWithConfig(sessionCfg, logger)

	s, err := fit.Open(in)
	if err != nil {
		logger.Error("failed to load image", "path", in, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded image", "path", in,
		"size", fmt.Sprintf("%dx%d", s.Width(), s.Height()), "format", string(s.Format()))

	var target engine.Format
	if format != "" {
		target, err = engine.ParseFormat(format)
		if err != nil {
			logger.Error("unknown target format", "format", format, "error", err)
			os.Exit(1)
		}
	} else if f, ok := utils.FormatFromPath(out); ok && f != s.Format() {
		target = f
	}

	if err := s.Resize(m, target); err != nil {
		logger.Error("resize failed", "method", m.String(), "error", err)
		os.Exit(1)
	}

	if transparent {
		if err := s.MakeTransparent(nil, uint32(threshold)); err != nil {
			logger.Error("transparency failed", "error", err)
			os.Exit(1)
		}
	}
	if round {
		if err := s.RoundCorners(nil, radius); err != nil {
			logger.Error("rounding failed", "error", err)
			os.Exit(1)
		}
	}

	if err := s.Write(out); err != nil {
		logger.Error("write failed", "path", out, "error", err)
		os.Exit(1)
	}
	logger.Info("wrote image", "path", out,
		"size", fmt.Sprintf("%dx%d", s.Width(), s.Height()), "format", string(s.Format()))
}
