// Command speedr renders a generated shape or an OBJ/glTF model with the
// toon shader inside the terminal. Run with -h for flags and controls.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/taigrr/speedr/internal/config"
	"github.com/taigrr/speedr/internal/logging"
	"github.com/taigrr/speedr/pkg/loader"
)

var (
	configDir   = flag.String("config", ".", "Directory containing speedr.yaml")
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG/BMP/WebP)")
	targetFPS   = flag.Int("fps", 0, "Target FPS (overrides config)")
	bgColor     = flag.String("bg", "", "Background color, hex or name (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level (overrides config)")
	logFile     = flag.String("log-file", "", "Write logs to this file (overrides config)")
)

const controls = `
Controls:
  drag         spin the model
  click        sparks where the ray hits the model
  wheel, +/-   zoom
  w s a d q e  pitch, yaw and roll
  space        random spin
  r            reset
  t            texture on/off
  x            wireframe
  l            aim the sun (click to place)
  ?            HUD
  esc          quit
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage: speedr [flags] [model.obj|model.gltf|model.glb]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, controls)
	}
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if flag.NArg() > 0 {
		cfg.Model = flag.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "texture":
			cfg.Texture = *texturePath
		case "fps":
			cfg.FPS = *targetFPS
		case "bg":
			cfg.Background = *bgColor
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
}

// openLog returns the log destination. The terminal is taken over by the
// viewer, so logs only go to a file.
func openLog(cfg *config.Config) (zerolog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New(cfg.LogLevel, f), f, nil
}

func run(cfg *config.Config) error {
	log, closer, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var model *loader.Model
	title := "torus knot"
	if cfg.Model != "" {
		model, err = loader.Load(cfg.Model)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		title = filepath.Base(cfg.Model)
		log.Info().Str("model", cfg.Model).
			Int("vertices", model.Geometry.Count()).
			Int("triangles", model.Geometry.TriangleCount()).
			Bool("texture", model.Texture != nil).
			Msg("Loaded model")
	}

	viewer, err := NewViewer(cfg, model, title, log)
	if err != nil {
		return err
	}
	defer viewer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return viewer.Run(ctx, cfg.FPS)
}
