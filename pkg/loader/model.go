// Package loader reads triangle meshes from OBJ and glTF files into
// geometry buffers.
package loader

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
	"github.com/taigrr/speedr/pkg/scene"
)

var (
	// ErrSyntax is returned for a malformed line in a text model.
	ErrSyntax = errors.New("loader: syntax error")
	// ErrUnsupported is returned for an unknown file extension.
	ErrUnsupported = errors.New("loader: unsupported format")
	// ErrNoTriangles is returned when a file contains no triangle geometry.
	ErrNoTriangles = errors.New("loader: no triangles")
)

// Model is a loaded mesh with its base material inputs.
type Model struct {
	Geometry  *geometry.Geometry
	BaseColor math3d.Color
	Texture   image.Image // Base color image, nil if the file has none
}

// Load reads a model, choosing the format by file extension.
func Load(path string) (*Model, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		g, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		return &Model{Geometry: g, BaseColor: math3d.RGB(1, 1, 1)}, nil
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Mesh wraps the model in a lit mesh. The texture, if any, is attached as
// the material map.
func (m *Model) Mesh() *scene.Mesh {
	mat := scene.NewLambertMaterial(m.BaseColor)
	if m.Texture != nil {
		mat.Map = scene.NewTexture(m.Texture)
	}
	mesh := scene.NewMesh(m.Geometry, mat)
	mesh.Name = m.Geometry.Name
	return mesh
}

// Fit centers g on the origin and scales it uniformly so its largest
// dimension equals size. Empty or flat-to-a-point geometry is left alone.
func Fit(g *geometry.Geometry, size float64) {
	b := g.BoundingBox()
	if b.IsEmpty() {
		return
	}
	dims := b.Size()
	largest := max(dims.X, dims.Y, dims.Z)
	if largest <= 0 {
		return
	}
	c := b.Center()
	s := size / largest
	pos := g.Position()
	for i := range pos.Count() {
		pos.SetVec3(i, pos.Vec3(i).Sub(c).Scale(s))
	}
	g.Bump()
}

// triangles accumulates expanded triangle corners.
type triangles struct {
	pos, norm, uv []float32
}

func (t *triangles) corner(p, n math3d.Vec3, uv math3d.Vec2) {
	t.pos = append(t.pos, float32(p.X), float32(p.Y), float32(p.Z))
	t.norm = append(t.norm, float32(n.X), float32(n.Y), float32(n.Z))
	t.uv = append(t.uv, float32(uv.X), float32(uv.Y))
}

func (t *triangles) geometry(name string) (*geometry.Geometry, error) {
	if len(t.pos) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTriangles, name)
	}
	g := geometry.New()
	g.Name = name
	g.Params = geometry.Params{Kind: "model"}
	g.SetAttribute(geometry.AttrPosition, t.pos, 3)
	g.SetAttribute(geometry.AttrNormal, t.norm, 3)
	g.SetAttribute(geometry.AttrUV, t.uv, 2)
	return g, nil
}
