package scene

import (
	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
)

// Renderable is implemented by kinds that draw a geometry with a material.
type Renderable interface {
	Object
	Drawable() (*geometry.Geometry, *Material)
}

// Group is a node with no content of its own.
type Group struct {
	Node
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	g := &Group{}
	g.init(g)
	return g
}

func (g *Group) Kind() Kind { return KindGroup }

// Fog fades fragments linearly toward Color between Near and Far view
// distance.
type Fog struct {
	Color     math3d.Color
	Near, Far float64
}

// Factor returns the fog blend weight at view distance d.
func (f *Fog) Factor(d float64) float64 {
	if f == nil || f.Far <= f.Near {
		return 0
	}
	return math3d.Clamp((d-f.Near)/(f.Far-f.Near), 0, 1)
}

// Scene is the root of a renderable tree.
type Scene struct {
	Node

	// Background, when set, replaces the renderer's clear color.
	Background *math3d.Color
	Fog        *Fog
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	s := &Scene{}
	s.init(s)
	return s
}

func (s *Scene) Kind() Kind { return KindScene }

// Mesh draws Geometry as triangles shaded by Material.
type Mesh struct {
	Node
	Geometry *geometry.Geometry
	Material *Material
}

// NewMesh pairs a geometry with a material. A nil material defaults to a
// white Lambert material.
func NewMesh(g *geometry.Geometry, m *Material) *Mesh {
	if m == nil {
		m = NewLambertMaterial(math3d.Hex(0xffffff))
	}
	mesh := &Mesh{Geometry: g, Material: m}
	mesh.init(mesh)
	return mesh
}

func (m *Mesh) Kind() Kind { return KindMesh }

// Drawable returns the geometry and material.
func (m *Mesh) Drawable() (*geometry.Geometry, *Material) {
	return m.Geometry, m.Material
}

// Points draws each vertex of Geometry as a square sprite.
type Points struct {
	Node
	Geometry *geometry.Geometry
	Material *Material
}

// NewPoints pairs a geometry with a points material.
func NewPoints(g *geometry.Geometry, m *Material) *Points {
	if m == nil {
		m = NewPointsMaterial(math3d.Hex(0xffffff), 1)
	}
	p := &Points{Geometry: g, Material: m}
	p.init(p)
	return p
}

func (p *Points) Kind() Kind { return KindPoints }

// Drawable returns the geometry and material.
func (p *Points) Drawable() (*geometry.Geometry, *Material) {
	return p.Geometry, p.Material
}
