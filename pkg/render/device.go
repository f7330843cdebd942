package render

import (
	"errors"
	"image"

	"github.com/taigrr/speedr/pkg/math3d"
)

var (
	// ErrNoContext is returned when a renderer is created without a device.
	ErrNoContext = errors.New("render: no graphics context")
	// ErrShaderCompile is returned when a shader program cannot be built.
	ErrShaderCompile = errors.New("render: shader compilation failed")
	// ErrInvalidGeometry is returned when a drawable's buffers break the
	// attribute layout contract.
	ErrInvalidGeometry = errors.New("render: invalid geometry")
)

// Handles are opaque identifiers issued by a Device. Zero is never issued
// and means "none" when binding.
type (
	BufferHandle  uint32
	ProgramHandle uint32
	TextureHandle uint32
)

// ShaderSource names a shading program known to the device.
type ShaderSource string

// ToonShader is the banded diffuse plus rim shader every material uses.
const ToonShader ShaderSource = "toon"

// DrawMode selects the primitive assembled from bound vertex buffers.
type DrawMode int

const (
	DrawTriangles DrawMode = iota
	DrawPoints
	DrawLines // Triangle edges
)

// Vertex attribute slots.
const (
	SlotPosition = iota
	SlotNormal
	SlotUV
	slotCount
)

// Uniforms are the per-draw inputs to the shader program.
type Uniforms struct {
	MVP          math3d.Mat4
	Model        math3d.Mat4
	NormalMatrix math3d.Mat4 // Inverse transpose of Model

	Color   math3d.Color
	Opacity float64

	LightDir   math3d.Vec3 // Unit vector toward the light
	LightColor math3d.Color
	Ambient    math3d.Color

	HasTexture bool
	PointSize  float64 // Sprite edge in pixels for DrawPoints

	FogColor math3d.Color
	FogNear  float64
	FogFar   float64 // Fog is off when FogFar <= FogNear
}

// Device is the graphics context the renderer draws through. Calls are
// made from a single goroutine.
type Device interface {
	Viewport(width, height int)
	// Clear resets the color target to c and the depth buffer to far.
	Clear(c math3d.Color)

	CreateBuffer() BufferHandle
	// UpdateBuffer uploads data to b. The device keeps its own copy.
	UpdateBuffer(b BufferHandle, data []float32, itemSize int)
	DeleteBuffer(b BufferHandle)
	// BindBuffer attaches b to an attribute slot; 0 detaches.
	BindBuffer(slot int, b BufferHandle)

	CompileProgram(src ShaderSource) (ProgramHandle, error)
	DeleteProgram(p ProgramHandle)
	UseProgram(p ProgramHandle)
	SetUniforms(u Uniforms)

	CreateTexture() TextureHandle
	UpdateTexture(t TextureHandle, img image.Image, repeat, smooth bool)
	DeleteTexture(t TextureHandle)
	// BindTexture selects the sampled texture; 0 unbinds.
	BindTexture(t TextureHandle)

	SetBlend(enabled bool)
	SetDepthMask(write bool)
	SetCullFace(enabled bool)

	DrawArrays(mode DrawMode, count int)
}
