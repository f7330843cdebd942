// speedrview - desktop window front end for the software renderer.
//
// Controls:
//
//	Mouse drag  - Orbit the camera
//	Wheel       - Zoom in/out
//	X           - Toggle wireframe
//	P           - Save a screenshot to speedr.png
//	Esc         - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/taigrr/speedr/internal/config"
	"github.com/taigrr/speedr/internal/logging"
	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/loader"
	"github.com/taigrr/speedr/pkg/math3d"
	"github.com/taigrr/speedr/pkg/render"
	"github.com/taigrr/speedr/pkg/scene"
)

var configDir = flag.String("config", ".", "Directory containing speedr.yaml")

type game struct {
	cfg *config.Config
	log zerolog.Logger

	scene     *scene.Scene
	camera    *scene.PerspectiveCamera
	model     *scene.Mesh
	particles *scene.ParticleSystem
	clock     *scene.Clock

	dev      *render.SoftwareDevice
	renderer *render.Renderer
	screen   *ebiten.Image

	yaw, pitch, distance float64
	lastX, lastY         int
}

func newGame(cfg *config.Config, log zerolog.Logger) (*game, error) {
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}
	g := &game{
		cfg:      cfg,
		log:      log,
		scene:    scene.NewScene(),
		clock:    scene.NewClock(),
		distance: 5,
		pitch:    0.3,
	}
	g.scene.Background = &bg
	g.scene.Fog = &scene.Fog{Color: bg, Near: 6, Far: 14}

	model := &loader.Model{
		Geometry:  geometry.Torus(1, 0.4, 24, 64, 2*math.Pi),
		BaseColor: math3d.Hex(0x6ca0dc),
	}
	if cfg.Model != "" {
		if model, err = loader.Load(cfg.Model); err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
	}
	loader.Fit(model.Geometry, 2)
	g.model = model.Mesh()
	if cfg.Texture != "" {
		g.model.Material.Map = scene.LoadTexture(cfg.Texture)
	}

	floor := scene.NewMesh(geometry.Plane(8, 8), scene.NewLambertMaterial(math3d.Hex(0x3a3a4a)))
	floor.Position = math3d.V3(0, -1.2, 0)
	floor.Rotation = math3d.E(-math.Pi/2, 0, 0)

	sun := scene.NewDirectionalLight(math3d.RGB(1, 1, 1), 1)
	sun.Position = math3d.V3(3, 5, 4)

	g.particles = scene.NewParticleSystem(max(cfg.Particles, 1), cfg.FPS, scene.NewPointsMaterial(math3d.Hex(0xffd75f), 3))
	g.particles.Visible = cfg.Particles > 0

	if err := g.scene.Add(scene.NewAmbientLight(math3d.RGB(1, 1, 1), 0.3), sun, floor, g.model, g.particles); err != nil {
		return nil, err
	}

	g.camera = scene.NewPerspectiveCamera(cfg.FOVRadians(), float64(cfg.Width)/float64(cfg.Height), 0.1, 100)
	g.dev = render.NewSoftwareDevice(cfg.Width, cfg.Height)
	g.renderer, err = render.New(g.dev, render.WithLogger(log), render.WithFrustumCulling(cfg.Culling))
	if err != nil {
		return nil, err
	}
	g.renderer.SetSize(cfg.Width, cfg.Height)
	return g, nil
}

func (g *game) orbit() {
	g.pitch = math3d.Clamp(g.pitch, -1.4, 1.4)
	g.camera.Position = math3d.V3(
		g.distance*math.Cos(g.pitch)*math.Sin(g.yaw),
		g.distance*math.Sin(g.pitch),
		g.distance*math.Cos(g.pitch)*math.Cos(g.yaw),
	)
	g.camera.LookAt(math3d.Zero3())
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.model.Material.Wireframe = !g.model.Material.Wireframe
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if err := g.dev.Framebuffer().SavePNG("speedr.png"); err != nil {
			g.log.Error().Err(err).Msg("Screenshot failed")
		} else {
			g.log.Info().Str("path", "speedr.png").Msg("Saved screenshot")
		}
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.lastX, g.lastY = x, y
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.yaw -= float64(x-g.lastX) * 0.01
		g.pitch += float64(y-g.lastY) * 0.01
		g.lastX, g.lastY = x, y
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.distance = math3d.Clamp(g.distance-dy*0.5, 1, 20)
	}
	g.orbit()

	dt := g.clock.Delta()
	g.model.Rotation.Y += dt * 0.5
	if g.particles.Visible {
		for range 2 {
			vel := math3d.V3(rand.Float64()-0.5, 4+rand.Float64(), rand.Float64()-0.5)
			g.particles.Spawn(math3d.V3(0, 1, 0), vel, 1.5)
		}
	}
	g.particles.Update(dt)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if err := g.renderer.Render(g.scene, g.camera); err != nil {
		g.log.Warn().Err(err).Msg("Frame rendered with errors")
	}
	fb := g.dev.Framebuffer()
	if g.screen == nil {
		g.screen = ebiten.NewImage(fb.Width, fb.Height)
	}
	g.screen.WritePixels(fb.ToImage().Pix)
	screen.DrawImage(g.screen, nil)

	info := g.renderer.Info()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %0.1f  draws: %d  culled: %d  particles: %d",
		ebiten.ActualFPS(), info.DrawCalls, info.Culled, g.particles.Alive()))
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

func main() {
	flag.Parse()
	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		cfg.Model = flag.Arg(0)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	g, err := newGame(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer g.renderer.Dispose()

	title := "speedr"
	if cfg.Model != "" {
		title += " - " + filepath.Base(cfg.Model)
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.FPS)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error().Err(err).Msg("Window closed with error")
	}
}
