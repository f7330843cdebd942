package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/rs/zerolog"

	"github.com/taigrr/speedr/internal/config"
	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/loader"
	"github.com/taigrr/speedr/pkg/math3d"
	"github.com/taigrr/speedr/pkg/raycast"
	"github.com/taigrr/speedr/pkg/render"
	"github.com/taigrr/speedr/pkg/scene"
)

const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h" // Any-event tracking, SGR encoding
	mouseOff = "\x1b[?1003l\x1b[?1006l"

	torqueStrength = 3.0
	minDistance    = 1.0
	maxDistance    = 20.0
)

// Viewer owns the scene and the interaction state of the terminal viewer.
type Viewer struct {
	log zerolog.Logger

	scene     *scene.Scene
	camera    *scene.PerspectiveCamera
	model     *scene.Mesh
	texture   *scene.Texture
	sun       *scene.DirectionalLight
	particles *scene.ParticleSystem
	effects   *scene.Effects
	clock     *scene.Clock

	dev       *render.SoftwareDevice
	renderer  *render.Renderer
	presenter *render.TerminalPresenter
	hud       *HUD

	spin     *Spin
	torque   struct{ pitch, yaw, roll float64 }
	distance float64

	cols, rows int

	textureOn    bool
	showHUD      bool
	lightMode    bool
	lightDir     math3d.Vec3
	pendingLight math3d.Vec3

	mouseDown              bool
	lastMouseX, lastMouseY int
}

// NewViewer builds the scene around model, or a built-in torus knot when
// model has no geometry.
func NewViewer(cfg *config.Config, model *loader.Model, title string, log zerolog.Logger) (*Viewer, error) {
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		log:       log,
		scene:     scene.NewScene(),
		clock:     scene.NewClock(),
		spin:      NewSpin(cfg.FPS),
		distance:  5,
		textureOn: true,
		lightDir:  math3d.V3(0.5, 1, 0.3).Normalize(),
	}
	v.scene.Background = &bg

	if model == nil || model.Geometry == nil {
		model = &loader.Model{
			Geometry:  geometry.TorusKnot(1, 0.3, 128, 16, 2, 3),
			BaseColor: math3d.RGB(0.8, 0.8, 0.8),
		}
	}
	loader.Fit(model.Geometry, 2)
	v.model = model.Mesh()
	v.texture = v.model.Material.Map
	if cfg.Texture != "" {
		v.texture = scene.LoadTexture(cfg.Texture)
	}
	if v.texture == nil {
		light, dark := color.RGBA{200, 200, 200, 255}, color.RGBA{100, 100, 100, 255}
		v.texture = scene.NewTexture(render.CheckerImage(64, 8, light, dark))
	}
	v.model.Material.Map = v.texture
	v.hud = &HUD{Title: title, Triangles: model.Geometry.TriangleCount()}

	v.sun = scene.NewDirectionalLight(math3d.RGB(1, 1, 1), 1)
	v.sun.Position = v.lightDir.Scale(10)
	v.particles = scene.NewParticleSystem(max(cfg.Particles, 1), cfg.FPS, scene.NewPointsMaterial(math3d.Hex(0xffd75f), 2))
	v.particles.Name = "sparks"
	v.particles.Visible = cfg.Particles > 0
	if err := v.scene.Add(
		scene.NewAmbientLight(math3d.RGB(1, 1, 1), 0.3),
		v.sun,
		v.model,
		v.particles,
	); err != nil {
		return nil, err
	}

	v.effects = scene.NewEffects(v.scene)

	v.camera = scene.NewPerspectiveCamera(cfg.FOVRadians(), 1, 0.1, 100)
	v.camera.Position = math3d.V3(0, 0, v.distance)
	v.camera.LookAt(math3d.Zero3())

	v.dev = render.NewSoftwareDevice(1, 1)
	v.renderer, err = render.New(v.dev,
		render.WithLogger(log),
		render.WithClearColor(bg),
		render.WithFrustumCulling(cfg.Culling),
	)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return v, nil
}

// Resize matches the framebuffer and camera to a cols×rows terminal.
func (v *Viewer) Resize(cols, rows int) {
	v.cols, v.rows = cols, rows
	w, h := render.CellSize(cols, rows)
	v.renderer.SetSize(w, h)
	if h > 0 {
		v.camera.Aspect = float64(w) / float64(h)
	}
	if v.presenter != nil {
		v.presenter.Resize(cols, rows)
	}
}

// cellToNDC maps the center of terminal cell (x, y) to normalized device
// coordinates.
func cellToNDC(x, y, cols, rows int) math3d.Vec2 {
	return math3d.V2(
		(float64(x)+0.5)/float64(cols)*2-1,
		1-(float64(y)+0.5)/float64(rows)*2,
	)
}

// screenToLightDir maps a cell to a direction on the hemisphere facing the
// camera, used to aim the light with the mouse.
func screenToLightDir(x, y, cols, rows int) math3d.Vec3 {
	p := cellToNDC(x, y, cols, rows)
	lenSq := p.X*p.X + p.Y*p.Y
	if lenSq > 1 {
		p = p.Scale(1 / math.Sqrt(lenSq))
		lenSq = 1
	}
	return math3d.V3(p.X, p.Y, math.Sqrt(1-lenSq)).Normalize()
}

// pick casts a ray through cell (x, y). A hit leaves a fading ghost of the
// model, a distance label and a burst of sparks.
func (v *Viewer) pick(x, y int) {
	v.camera.UpdateMatrixWorld()
	v.camera.UpdateProjectionMatrix()
	rc := raycast.New(raycast.Ray{})
	rc.SetFromCamera(cellToNDC(x, y, v.cols, v.rows), v.camera)
	hits := rc.IntersectObject(v.model, false)
	if len(hits) == 0 {
		return
	}
	p := hits[0].Point
	v.log.Debug().Float64("distance", hits[0].Distance).
		Float64("x", p.X).Float64("y", p.Y).Float64("z", p.Z).Msg("Picked model")
	v.effects.Ghost(v.model, 0.4)
	v.effects.FloatingText(fmt.Sprintf("%.1f", hits[0].Distance), p, math3d.Hex(0xffd75f))
	if !v.particles.Visible {
		return
	}
	for range 24 {
		vel := math3d.V3(rand.Float64()-0.5, rand.Float64()+0.5, rand.Float64()-0.5).Scale(4)
		if !v.particles.Spawn(p, vel, 1+rand.Float64()) {
			break
		}
	}
}

func (v *Viewer) setDistance(d float64) {
	v.distance = math3d.Clamp(d, minDistance, maxDistance)
	v.camera.Position = math3d.V3(0, 0, v.distance)
}

// handle applies one terminal event. It returns false when the viewer
// should quit.
func (v *Viewer) handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.Resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("ctrl+c"):
			return false
		case ev.MatchString("escape"):
			if !v.lightMode {
				return false
			}
			v.lightMode = false
		case ev.MatchString("w", "up"):
			v.torque.pitch = -torqueStrength
		case ev.MatchString("s", "down"):
			v.torque.pitch = torqueStrength
		case ev.MatchString("a", "left"):
			v.torque.yaw = -torqueStrength
		case ev.MatchString("d", "right"):
			v.torque.yaw = torqueStrength
		case ev.MatchString("q"):
			v.torque.roll = -torqueStrength
		case ev.MatchString("e"):
			v.torque.roll = torqueStrength
		case ev.MatchString("space"):
			v.spin.Impulse((rand.Float64()-0.5)*1.5, (rand.Float64()-0.5)*1.5, (rand.Float64()-0.5)*1.5)
		case ev.MatchString("r"):
			v.spin.Reset()
			v.setDistance(5)
		case ev.MatchString("+", "="):
			v.setDistance(v.distance - 0.5)
		case ev.MatchString("-", "_"):
			v.setDistance(v.distance + 0.5)
		case ev.MatchString("t"):
			v.textureOn = !v.textureOn
		case ev.MatchString("x"):
			v.model.Material.Wireframe = !v.model.Material.Wireframe
		case ev.MatchString("l"):
			v.lightMode = true
			v.pendingLight = v.lightDir
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "up", "s", "down"):
			v.torque.pitch = 0
		case ev.MatchString("a", "left", "d", "right"):
			v.torque.yaw = 0
		case ev.MatchString("q", "e"):
			v.torque.roll = 0
		}

	case uv.MouseClickEvent:
		if v.lightMode {
			v.lightDir = v.pendingLight
			v.lightMode = false
			break
		}
		v.mouseDown = true
		v.lastMouseX, v.lastMouseY = ev.X, ev.Y
		v.pick(ev.X, ev.Y)

	case uv.MouseReleaseEvent:
		v.mouseDown = false

	case uv.MouseMotionEvent:
		if v.lightMode {
			v.pendingLight = screenToLightDir(ev.X, ev.Y, v.cols, v.rows)
		} else if v.mouseDown {
			dx, dy := ev.X-v.lastMouseX, ev.Y-v.lastMouseY
			v.spin.Impulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			v.lastMouseX, v.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.setDistance(v.distance - 0.5)
		case uv.MouseWheelDown:
			v.setDistance(v.distance + 0.5)
		}
	}
	return true
}

// step advances the simulation by one frame of dt seconds.
func (v *Viewer) step(dt float64) {
	dt = math.Min(dt, 0.1)

	// Torque decays on its own; many terminals never report key releases.
	v.spin.Impulse(v.torque.pitch*dt, v.torque.yaw*dt, v.torque.roll*dt)
	v.torque.pitch *= 0.9
	v.torque.yaw *= 0.9
	v.torque.roll *= 0.9
	v.spin.Update()
	v.model.Rotation = math3d.E(v.spin.Pitch.Angle, v.spin.Yaw.Angle, v.spin.Roll.Angle)

	light := v.lightDir
	if v.lightMode {
		light = v.pendingLight
	}
	v.sun.Position = light.Scale(10)

	if v.textureOn {
		v.model.Material.Map = v.texture
	} else {
		v.model.Material.Map = nil
	}

	v.particles.Update(dt)
	v.effects.Update(dt)
}

func (v *Viewer) frame() error {
	if err := v.renderer.Render(v.scene, v.camera); err != nil {
		v.log.Warn().Err(err).Msg("Frame rendered with errors")
	}
	info := v.renderer.Info()
	st := hudStatus{
		FPS:       v.renderer.Stats().FPS(),
		DrawCalls: info.DrawCalls,
		Particles: v.particles.Alive(),
		Texture:   v.textureOn,
		Wireframe: v.model.Material.Wireframe,
		LightMode: v.lightMode,
		Visible:   v.showHUD,
	}
	return v.presenter.Present(v.dev.Framebuffer(), func(scr uv.Screen, area uv.Rectangle) {
		v.hud.Draw(scr, area, st)
	})
}

// Run drives the terminal until ctx is canceled or the user quits.
func (v *Viewer) Run(ctx context.Context, fps int) error {
	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)
	fmt.Fprint(os.Stdout, mouseOn)
	defer func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			v.log.Error().Err(err).Msg("Failed to restore terminal")
		}
	}()

	v.presenter = render.NewTerminalPresenter(term, cols, rows)
	v.Resize(cols, rows)
	v.log.Info().Int("cols", cols).Int("rows", rows).Int("fps", fps).Msg("Viewer started")

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ws, resized := ev.(uv.WindowSizeEvent); resized {
				term.Erase()
				term.Resize(ws.Width, ws.Height)
			}
			if !v.handle(ev) {
				return nil
			}
		case <-ticker.C:
			v.step(v.clock.Delta())
			if err := v.frame(); err != nil {
				return err
			}
		}
	}
}

// Close releases GPU-side resources.
func (v *Viewer) Close() {
	v.renderer.Dispose()
}
