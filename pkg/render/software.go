package render

import (
	"fmt"
	"image"

	"github.com/taigrr/speedr/pkg/math3d"
)

// DeviceStats counts resource traffic on a SoftwareDevice.
type DeviceStats struct {
	BufferUploads  int
	TextureUploads int
	DrawCalls      int
	Buffers        int // Live buffers
	Textures       int // Live textures
	Programs       int // Live programs
}

type vertexBuffer struct {
	data     []float32
	itemSize int
}

// SoftwareDevice is a Device that rasterizes on the CPU into a
// Framebuffer. Its shader programs are Go functions registered by name.
type SoftwareDevice struct {
	fb   *Framebuffer
	rast *Rasterizer

	shaders  map[ShaderSource]Shader
	programs map[ProgramHandle]Shader
	buffers  map[BufferHandle]*vertexBuffer
	textures map[TextureHandle]*Texture
	last     uint32

	program  Shader
	uniforms Uniforms
	bound    [slotCount]BufferHandle
	texture  TextureHandle

	stats DeviceStats
}

// NewSoftwareDevice returns a device with a width×height color target and
// the toon shader registered.
func NewSoftwareDevice(width, height int) *SoftwareDevice {
	fb := NewFramebuffer(width, height)
	d := &SoftwareDevice{
		fb:       fb,
		rast:     NewRasterizer(fb),
		shaders:  map[ShaderSource]Shader{ToonShader: Toon},
		programs: make(map[ProgramHandle]Shader),
		buffers:  make(map[BufferHandle]*vertexBuffer),
		textures: make(map[TextureHandle]*Texture),
	}
	return d
}

// RegisterShader makes s available to CompileProgram under src.
func (d *SoftwareDevice) RegisterShader(src ShaderSource, s Shader) {
	d.shaders[src] = s
}

// Framebuffer returns the color target.
func (d *SoftwareDevice) Framebuffer() *Framebuffer {
	return d.fb
}

// Rasterizer returns the rasterizer, mainly for its statistics.
func (d *SoftwareDevice) Rasterizer() *Rasterizer {
	return d.rast
}

// Stats returns the resource counters.
func (d *SoftwareDevice) Stats() DeviceStats {
	s := d.stats
	s.Buffers, s.Textures, s.Programs = len(d.buffers), len(d.textures), len(d.programs)
	return s
}

func (d *SoftwareDevice) handle() uint32 {
	d.last++
	return d.last
}

func (d *SoftwareDevice) Viewport(width, height int) {
	if width == d.fb.Width && height == d.fb.Height {
		return
	}
	d.fb.Resize(width, height)
	d.rast.Resize()
}

func (d *SoftwareDevice) Clear(c math3d.Color) {
	d.fb.Clear(c.RGBA(1))
	d.rast.ClearDepth()
	d.rast.Stats = RasterStats{}
}

func (d *SoftwareDevice) CreateBuffer() BufferHandle {
	h := BufferHandle(d.handle())
	d.buffers[h] = &vertexBuffer{}
	return h
}

func (d *SoftwareDevice) UpdateBuffer(b BufferHandle, data []float32, itemSize int) {
	buf, ok := d.buffers[b]
	if !ok {
		return
	}
	buf.data = append(buf.data[:0], data...)
	buf.itemSize = itemSize
	d.stats.BufferUploads++
}

func (d *SoftwareDevice) DeleteBuffer(b BufferHandle) {
	delete(d.buffers, b)
	for slot, h := range d.bound {
		if h == b {
			d.bound[slot] = 0
		}
	}
}

func (d *SoftwareDevice) BindBuffer(slot int, b BufferHandle) {
	if slot >= 0 && slot < slotCount {
		d.bound[slot] = b
	}
}

func (d *SoftwareDevice) CompileProgram(src ShaderSource) (ProgramHandle, error) {
	s, ok := d.shaders[src]
	if !ok || s == nil {
		return 0, fmt.Errorf("%w: unknown program %q", ErrShaderCompile, src)
	}
	h := ProgramHandle(d.handle())
	d.programs[h] = s
	return h, nil
}

func (d *SoftwareDevice) DeleteProgram(p ProgramHandle) {
	delete(d.programs, p)
}

func (d *SoftwareDevice) UseProgram(p ProgramHandle) {
	d.program = d.programs[p]
}

func (d *SoftwareDevice) SetUniforms(u Uniforms) {
	d.uniforms = u
}

func (d *SoftwareDevice) CreateTexture() TextureHandle {
	h := TextureHandle(d.handle())
	d.textures[h] = nil
	return h
}

func (d *SoftwareDevice) UpdateTexture(t TextureHandle, img image.Image, repeat, smooth bool) {
	if _, ok := d.textures[t]; !ok || img == nil {
		return
	}
	tex := NewTexture(img, MaxTextureSize)
	if !repeat {
		tex.Wrap = WrapClamp
	}
	if smooth {
		tex.Filter = FilterBilinear
	}
	d.textures[t] = tex
	d.stats.TextureUploads++
}

func (d *SoftwareDevice) DeleteTexture(t TextureHandle) {
	delete(d.textures, t)
	if d.texture == t {
		d.texture = 0
	}
}

func (d *SoftwareDevice) BindTexture(t TextureHandle) {
	d.texture = t
}

func (d *SoftwareDevice) SetBlend(enabled bool)    { d.rast.Blend = enabled }
func (d *SoftwareDevice) SetDepthMask(write bool)  { d.rast.DepthWrite = write }
func (d *SoftwareDevice) SetCullFace(enabled bool) { d.rast.CullBackfaces = enabled }

// DrawArrays runs the current program over count vertices of the bound
// buffers. Missing normal or uv buffers read as zero.
func (d *SoftwareDevice) DrawArrays(mode DrawMode, count int) {
	pos := d.buffers[d.bound[SlotPosition]]
	if d.program == nil || pos == nil || pos.itemSize != 3 {
		return
	}
	count = min(count, len(pos.data)/3)
	normal := d.buffers[d.bound[SlotNormal]]
	uv := d.buffers[d.bound[SlotUV]]
	d.stats.DrawCalls++

	u := &d.uniforms
	tex := d.textures[d.texture]
	program := d.program
	shade := func(f Fragment) (math3d.Color, float64) {
		return program(u, f, tex)
	}

	vertex := func(i int) clipVertex {
		o := i * 3
		p := math3d.V3(float64(pos.data[o]), float64(pos.data[o+1]), float64(pos.data[o+2]))
		v := clipVertex{Clip: u.MVP.MulVec4(math3d.V4FromV3(p, 1))}
		if normal != nil && len(normal.data) >= o+3 {
			n := math3d.V3(float64(normal.data[o]), float64(normal.data[o+1]), float64(normal.data[o+2]))
			v.Normal = u.NormalMatrix.MulVec3Dir(n).Normalize()
		}
		if uv != nil && len(uv.data) >= i*2+2 {
			v.UV = math3d.V2(float64(uv.data[i*2]), float64(uv.data[i*2+1]))
		}
		return v
	}

	switch mode {
	case DrawTriangles:
		for i := 0; i+2 < count; i += 3 {
			d.rast.DrawTriangle([3]clipVertex{vertex(i), vertex(i + 1), vertex(i + 2)}, shade)
		}
	case DrawPoints:
		for i := range count {
			d.rast.DrawPoint(vertex(i), u.PointSize, shade)
		}
	case DrawLines:
		for i := 0; i+2 < count; i += 3 {
			tri := [3]clipVertex{vertex(i), vertex(i + 1), vertex(i + 2)}
			c, _ := shade(Fragment{Depth: tri[0].Clip.W})
			d.rast.DrawEdges(tri, c)
		}
	}
}

var _ Device = (*SoftwareDevice)(nil)
