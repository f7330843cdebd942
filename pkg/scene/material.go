package scene

import "github.com/taigrr/speedr/pkg/math3d"

// MaterialKind selects how a material is shaded.
type MaterialKind int

const (
	// MaterialBasic ignores lights.
	MaterialBasic MaterialKind = iota
	// MaterialLambert is toon-shaded diffuse.
	MaterialLambert
	// MaterialPhong is toon-shaded diffuse with a shininess hint.
	MaterialPhong
	// MaterialPoints draws vertices as square sprites of Size pixels.
	MaterialPoints
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialBasic:
		return "basic"
	case MaterialLambert:
		return "lambert"
	case MaterialPhong:
		return "phong"
	case MaterialPoints:
		return "points"
	default:
		return "unknown"
	}
}

// Material describes the surface state for one draw call.
type Material struct {
	Kind        MaterialKind
	Color       math3d.Color
	Map         *Texture // Optional, multiplied into Color
	Opacity     float64
	Transparent bool // Blended and excluded from depth writes
	DoubleSided bool
	Wireframe   bool    // Draw triangle edges, unlit and without depth test
	Size        float64 // Point sprite size in pixels
	Shininess   float64
}

func newMaterial(kind MaterialKind, color math3d.Color) *Material {
	return &Material{Kind: kind, Color: color, Opacity: 1}
}

// NewBasicMaterial returns an unlit material.
func NewBasicMaterial(color math3d.Color) *Material {
	return newMaterial(MaterialBasic, color)
}

// NewLambertMaterial returns a diffuse material.
func NewLambertMaterial(color math3d.Color) *Material {
	return newMaterial(MaterialLambert, color)
}

// NewPhongMaterial returns a diffuse material with the given shininess.
func NewPhongMaterial(color math3d.Color, shininess float64) *Material {
	m := newMaterial(MaterialPhong, color)
	m.Shininess = shininess
	return m
}

// NewPointsMaterial returns a sprite material.
func NewPointsMaterial(color math3d.Color, size float64) *Material {
	m := newMaterial(MaterialPoints, color)
	m.Size = size
	return m
}

// Lit reports whether lights affect the material.
func (m *Material) Lit() bool {
	return m.Kind == MaterialLambert || m.Kind == MaterialPhong
}
