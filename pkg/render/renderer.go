// Package render draws a scene graph through a Device. It owns the GPU
// resource cache: vertex buffers keyed by geometry ID and textures keyed by
// texture ID, each re-uploaded only when the source version advances.
//
// SoftwareDevice is the bundled Device: a z-buffered CPU rasterizer whose
// Framebuffer can be presented to a terminal, a window or a PNG file.
package render

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
	"github.com/taigrr/speedr/pkg/scene"
)

// Light defaults used when the scene has no light of a kind.
var (
	DefaultLightDir   = math3d.V3(0.5, 1, 0.8).Normalize()
	DefaultLightColor = math3d.RGB(1, 1, 1)
	DefaultAmbient    = math3d.RGB(0.4, 0.4, 0.4)
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// WithClearColor sets the color used when the scene has no background.
func WithClearColor(c math3d.Color) Option {
	return func(r *Renderer) { r.clearColor = c }
}

// WithFrustumCulling toggles skipping drawables whose world bounds are
// outside the view frustum. It is on by default.
func WithFrustumCulling(enabled bool) Option {
	return func(r *Renderer) { r.culling = enabled }
}

// WithShader selects the shader program. The default is ToonShader.
func WithShader(src ShaderSource) Option {
	return func(r *Renderer) { r.shader = src }
}

// Info describes the cache and the last frame.
type Info struct {
	Geometries int // Cached geometries
	Textures   int // Cached textures
	DrawCalls  int
	Culled     int // Drawables skipped by frustum culling
	Vertices   int // Vertices submitted
	Frame      uint64
}

type geometryEntry struct {
	buffers [slotCount]BufferHandle
	version uint64
}

type textureEntry struct {
	handle  TextureHandle
	version uint64
}

type frameLights struct {
	dir     math3d.Vec3
	color   math3d.Color
	ambient math3d.Color
}

// Renderer draws scenes. It is not safe for concurrent use; Render is
// called from the loop that mutates the scene.
type Renderer struct {
	dev        Device
	log        zerolog.Logger
	shader     ShaderSource
	program    ProgramHandle
	clearColor math3d.Color
	culling    bool

	width, height int

	geometries map[uint64]*geometryEntry
	textures   map[uint64]*textureEntry

	info  Info
	stats *Stats
}

// New creates a renderer on dev and compiles its shader program.
// A nil device fails with ErrNoContext and a program that does not build
// fails with ErrShaderCompile; no renderer is returned in either case.
func New(dev Device, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		dev:        dev,
		log:        zerolog.Nop(),
		shader:     ToonShader,
		clearColor: math3d.RGB(0, 0, 0),
		culling:    true,
		geometries: make(map[uint64]*geometryEntry),
		textures:   make(map[uint64]*textureEntry),
		stats:      NewStats(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if dev == nil {
		r.log.Error().Err(ErrNoContext).Msg("Renderer disabled")
		return nil, ErrNoContext
	}
	p, err := dev.CompileProgram(r.shader)
	if err != nil {
		r.log.Error().Err(err).Str("program", string(r.shader)).Msg("Failed to build shader program")
		if !errors.Is(err, ErrShaderCompile) {
			err = fmt.Errorf("%w: %w", ErrShaderCompile, err)
		}
		return nil, err
	}
	r.program = p
	r.log.Debug().Str("program", string(r.shader)).Msg("Renderer ready")
	return r, nil
}

// SetSize resizes the viewport.
func (r *Renderer) SetSize(width, height int) {
	if r == nil || r.dev == nil {
		return
	}
	r.width, r.height = width, height
	r.dev.Viewport(width, height)
}

// Size returns the viewport size set by SetSize.
func (r *Renderer) Size() (width, height int) {
	if r == nil {
		return 0, 0
	}
	return r.width, r.height
}

// Info returns cache sizes and counters for the last frame.
func (r *Renderer) Info() Info {
	if r == nil {
		return Info{}
	}
	info := r.info
	info.Geometries, info.Textures = len(r.geometries), len(r.textures)
	return info
}

// Stats returns the frame-rate counter.
func (r *Renderer) Stats() *Stats {
	if r == nil {
		return nil
	}
	return r.stats
}

// Render draws one frame: it updates world matrices, scans the scene for
// lights, then draws every visible Mesh and Points in pre-order with one
// draw call each.
//
// Drawables whose geometry breaks the layout contract are skipped and
// reported in the returned error, joined with any others found in the
// same frame. The rest of the frame is still drawn. Calling Render on a
// nil Renderer does nothing.
func (r *Renderer) Render(s *scene.Scene, cam *scene.PerspectiveCamera) error {
	if r == nil || r.dev == nil || s == nil || cam == nil {
		return nil
	}

	s.UpdateMatrixWorld()
	if cam.Parent() == nil {
		cam.UpdateMatrixWorld()
	}
	cam.UpdateProjectionMatrix()

	lights := scanLights(s)
	viewProj := cam.ViewProjectionMatrix()
	frustum := NewFrustum(viewProj)

	bg := r.clearColor
	if s.Background != nil {
		bg = *s.Background
	}
	r.dev.Clear(bg)
	r.dev.UseProgram(r.program)

	r.info = Info{Frame: r.info.Frame + 1}
	var errs []error
	s.TraverseVisible(func(o scene.Object) {
		d, ok := o.(scene.Renderable)
		if !ok {
			return
		}
		if err := r.draw(d, s, viewProj, frustum, lights); err != nil {
			errs = append(errs, err)
		}
	})
	r.stats.Tick()
	return errors.Join(errs...)
}

// scanLights returns the first directional and first ambient light in
// pre-order, falling back to the defaults.
func scanLights(s *scene.Scene) frameLights {
	l := frameLights{dir: DefaultLightDir, color: DefaultLightColor, ambient: DefaultAmbient}
	var haveDir, haveAmbient bool
	s.TraverseVisible(func(o scene.Object) {
		switch light := o.(type) {
		case *scene.DirectionalLight:
			if !haveDir {
				haveDir = true
				if d := light.Direction(); d.LenSq() > 0 {
					l.dir = d
				}
				l.color = light.Radiance()
			}
		case *scene.AmbientLight:
			if !haveAmbient {
				haveAmbient = true
				l.ambient = light.Radiance()
			}
		}
	})
	return l
}

func (r *Renderer) draw(d scene.Renderable, s *scene.Scene, viewProj math3d.Mat4, frustum Frustum, lights frameLights) error {
	g, m := d.Drawable()
	if g == nil || m == nil {
		return nil
	}
	n := d.Base()
	mode := DrawTriangles
	validate := g.ValidateTriangles
	if d.Kind() == scene.KindPoints {
		mode = DrawPoints
		validate = g.Validate
	} else if m.Wireframe {
		mode = DrawLines
	}
	if g.Count() == 0 {
		return nil
	}
	if g.Disposed() {
		r.log.Warn().Str("object", n.Name).Uint64("geometry", g.ID()).Msg("Skipping disposed geometry")
		return nil
	}
	if err := validate(); err != nil {
		r.log.Warn().Err(err).Str("object", n.Name).Str("kind", d.Kind().String()).Msg("Skipping malformed geometry")
		return fmt.Errorf("%w: %s %q: %w", ErrInvalidGeometry, d.Kind(), n.Name, err)
	}

	world := n.WorldMatrix()
	if r.culling && !frustum.IntersectsBox(g.BoundingBox().ApplyMat4(world)) {
		r.info.Culled++
		return nil
	}

	r.bindGeometry(g)

	u := Uniforms{
		MVP:          viewProj.Mul(world),
		Model:        world,
		NormalMatrix: world.Inverse().Transpose(),
		Color:        m.Color,
		Opacity:      m.Opacity,
		LightDir:     lights.dir,
		LightColor:   lights.color,
		Ambient:      lights.ambient,
		PointSize:    m.Size,
	}
	if !m.Lit() || mode != DrawTriangles {
		u.LightColor = math3d.Color{}
		u.Ambient = math3d.RGB(1, 1, 1)
	}
	if s.Fog != nil {
		u.FogColor, u.FogNear, u.FogFar = s.Fog.Color, s.Fog.Near, s.Fog.Far
	}

	r.dev.BindTexture(0)
	if m.Map != nil && m.Map.Loaded() && !m.Map.Disposed() {
		r.dev.BindTexture(r.bindTexture(m.Map))
		u.HasTexture = true
	}

	r.dev.SetUniforms(u)
	r.dev.SetBlend(m.Transparent)
	r.dev.SetDepthMask(!m.Transparent)
	r.dev.SetCullFace(!m.DoubleSided)
	r.dev.DrawArrays(mode, g.Count())

	r.info.DrawCalls++
	r.info.Vertices += g.Count()
	return nil
}

var slotAttributes = [slotCount]string{
	SlotPosition: geometry.AttrPosition,
	SlotNormal:   geometry.AttrNormal,
	SlotUV:       geometry.AttrUV,
}

// bindGeometry fetches or creates the cached buffers for g, uploads them
// if g changed since the last upload, and binds them.
func (r *Renderer) bindGeometry(g *geometry.Geometry) {
	e, ok := r.geometries[g.ID()]
	if !ok {
		e = &geometryEntry{}
		r.geometries[g.ID()] = e
		g.OnDispose(r.Release)
	}

	if !ok || e.version != g.Version() {
		for slot, name := range slotAttributes {
			attr := g.Attribute(name)
			switch {
			case attr == nil && e.buffers[slot] != 0:
				r.dev.DeleteBuffer(e.buffers[slot])
				e.buffers[slot] = 0
			case attr != nil:
				if e.buffers[slot] == 0 {
					e.buffers[slot] = r.dev.CreateBuffer()
				}
				r.dev.UpdateBuffer(e.buffers[slot], attr.Array, attr.ItemSize)
			}
		}
		r.log.Debug().Uint64("geometry", g.ID()).Str("name", g.Name).
			Uint64("version", g.Version()).Int("vertices", g.Count()).Msg("Uploaded geometry")
		e.version = g.Version()
	}

	for slot, h := range e.buffers {
		r.dev.BindBuffer(slot, h)
	}
}

// bindTexture fetches or creates the cached texture for t, uploading the
// current image if its version advanced.
func (r *Renderer) bindTexture(t *scene.Texture) TextureHandle {
	e, ok := r.textures[t.ID()]
	if !ok {
		e = &textureEntry{handle: r.dev.CreateTexture()}
		r.textures[t.ID()] = e
		t.OnDispose(r.ReleaseTexture)
	}
	img, version := t.Image()
	if version != e.version && img != nil {
		r.dev.UpdateTexture(e.handle, img, t.Repeat, t.Smooth)
		e.version = version
		b := img.Bounds()
		r.log.Debug().Uint64("texture", t.ID()).Uint64("version", version).
			Int("width", b.Dx()).Int("height", b.Dy()).Msg("Uploaded texture")
	}
	return e.handle
}

// Release frees the device buffers cached for g. Disposing a geometry
// releases it from every renderer that drew it.
func (r *Renderer) Release(g *geometry.Geometry) {
	if r == nil || g == nil {
		return
	}
	e, ok := r.geometries[g.ID()]
	if !ok {
		return
	}
	for _, h := range e.buffers {
		if h != 0 {
			r.dev.DeleteBuffer(h)
		}
	}
	delete(r.geometries, g.ID())
}

// ReleaseTexture frees the device texture cached for t. Disposing a
// texture releases it from every renderer that drew it.
func (r *Renderer) ReleaseTexture(t *scene.Texture) {
	if r == nil || t == nil {
		return
	}
	e, ok := r.textures[t.ID()]
	if !ok {
		return
	}
	r.dev.DeleteTexture(e.handle)
	delete(r.textures, t.ID())
}

// Dispose frees every cached resource and the shader program. The
// renderer must not be used afterwards.
func (r *Renderer) Dispose() {
	if r == nil || r.dev == nil {
		return
	}
	for _, e := range r.geometries {
		for _, h := range e.buffers {
			if h != 0 {
				r.dev.DeleteBuffer(h)
			}
		}
	}
	for _, e := range r.textures {
		r.dev.DeleteTexture(e.handle)
	}
	clear(r.geometries)
	clear(r.textures)
	r.dev.DeleteProgram(r.program)
	r.dev = nil
}
