package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/speedr/pkg/math3d"
)

func generators() map[string]*Geometry {
	return map[string]*Geometry{
		"box":          Box(1, 2, 3),
		"plane":        Plane(4, 2),
		"sphere":       Sphere(SphereOptions{Radius: 2}),
		"hemisphere":   Sphere(SphereOptions{Radius: 1, ThetaLength: math.Pi / 2}),
		"capsule":      Capsule(0.5, 2, 4, 8),
		"torus":        Torus(10, 3, 16, 100, 0),
		"torus arc":    Torus(2, 0.5, 8, 12, math.Pi),
		"torus knot":   TorusKnot(10, 3, 64, 8, 2, 3),
		"tube":         Tube([]math3d.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {X: 1, Y: 1, Z: 2}}, 12, 0.2, 6, false),
		"closed tube":  Tube([]math3d.Vec3{{}, {X: 2}, {X: 1, Y: 2}}, 9, 0.3, 5, true),
		"tetrahedron":  Tetrahedron(1.5),
		"octahedron":   Octahedron(2),
		"icosahedron":  Icosahedron(0.75),
		"dodecahedron": Dodecahedron(1),
		"cylinder":     Cylinder(1, 2, 3),
		"cone":         Cone(1, 2),
		"ring":         Ring(0.5, 1, 16, 2),
		"swapped ring": Ring(2, 1, 8, 1),
		"zero sphere":  Sphere(SphereOptions{}),
	}
}

func TestGeneratorsProduceValidFlatBuffers(t *testing.T) {
	for name, g := range generators() {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, g.ValidateTriangles())
			require.NotZero(t, g.Count())
			assert.Zero(t, g.Count()%3)
			assert.Equal(t, g.Count(), g.Normal().Count())
			assert.Equal(t, g.Count(), g.UV().Count())

			for i := range g.Count() {
				_, n, uv := g.Vertex(i)
				assert.InDelta(t, 1, n.Len(), 1e-5, "normal %d", i)
				assert.True(t, uv.X >= 0 && uv.X <= 1 && uv.Y >= 0 && uv.Y <= 1, "uv %d = %v", i, uv)
			}
		})
	}
}

func TestRadiusContract(t *testing.T) {
	tests := []struct {
		name   string
		g      *Geometry
		radius float64
	}{
		{"sphere", Sphere(SphereOptions{Radius: 3, WidthSegments: 12, HeightSegments: 7}), 3},
		{"partial sphere", Sphere(SphereOptions{Radius: 0.5, PhiStart: 1, PhiLength: 2, ThetaStart: 0.3, ThetaLength: 1}), 0.5},
		{"default sphere", Sphere(SphereOptions{}), 1},
		{"tetrahedron", Tetrahedron(2), 2},
		{"octahedron", Octahedron(1.25), 1.25},
		{"icosahedron", Icosahedron(4), 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := tc.g.Position()
			for i := range pos.Count() {
				assert.InDelta(t, tc.radius, pos.Vec3(i).Len(), 1e-5)
			}
		})
	}
}

func TestClosedSurfacesFaceOutward(t *testing.T) {
	for _, g := range []*Geometry{
		Box(1, 1, 1),
		Sphere(SphereOptions{Radius: 1}),
		Tetrahedron(1),
		Octahedron(1),
		Icosahedron(1),
		Capsule(1, 1, 3, 8),
	} {
		t.Run(g.Name, func(t *testing.T) {
			pos := g.Position()
			for tri := 0; tri < pos.Count(); tri += 3 {
				a, b, c := pos.Vec3(tri), pos.Vec3(tri+1), pos.Vec3(tri+2)
				n := b.Sub(a).Cross(c.Sub(a))
				if n.LenSq() < 1e-12 {
					continue
				}
				centroid := a.Add(b).Add(c).Scale(1.0 / 3)
				assert.Positive(t, n.Dot(centroid), "triangle %d winds inward", tri/3)
			}
		})
	}
}

func TestRingSwappedRadii(t *testing.T) {
	g := Ring(2, 1, 8, 1)
	assert.Equal(t, 2.0, g.Params.Radius)
	pos := g.Position()
	for i := range pos.Count() {
		r := pos.Vec3(i).Len()
		assert.True(t, r >= 1-1e-9 && r <= 2+1e-9, "vertex %d at radius %v", i, r)
	}
	for tri := 0; tri < pos.Count(); tri += 3 {
		a, b, c := pos.Vec3(tri), pos.Vec3(tri+1), pos.Vec3(tri+2)
		assert.Positive(t, b.Sub(a).Cross(c.Sub(a)).Z, "triangle %d faces -Z", tri/3)
	}
}

func TestBoxBounds(t *testing.T) {
	g := Box(2, 4, 6)
	b := g.BoundingBox()
	assert.Equal(t, math3d.V3(-1, -2, -3), b.Min)
	assert.Equal(t, math3d.V3(1, 2, 3), b.Max)
	assert.Equal(t, 36, g.Count())
	assert.Equal(t, Params{Kind: "box", Width: 2, Height: 4, Depth: 6}, g.Params)
}

func TestCapsuleShape(t *testing.T) {
	radius, length := 0.5, 2.0
	g := Capsule(radius, length, 4, 8)
	pos := g.Position()
	for i := range pos.Count() {
		p := pos.Vec3(i)
		// Distance to the axis segment is always the radius.
		axis := math3d.V3(0, math3d.Clamp(p.Y, -length/2, length/2), 0)
		assert.InDelta(t, radius, p.Distance(axis), 1e-5)
	}
	b := g.BoundingBox()
	assert.InDelta(t, length/2+radius, b.Max.Y, 1e-5)
	assert.InDelta(t, -length/2-radius, b.Min.Y, 1e-5)
}

func TestTorusShape(t *testing.T) {
	g := Torus(10, 3, 16, 100, 0)
	pos := g.Position()
	for i := range pos.Count() {
		p := pos.Vec3(i)
		ring := math.Hypot(p.X, p.Y) - 10
		assert.InDelta(t, 3, math.Hypot(ring, p.Z), 1e-4)
	}
}

func TestRotationMinimizingFrames(t *testing.T) {
	t.Run("orthonormal along helix", func(t *testing.T) {
		var pts, tangents []math3d.Vec3
		for i := range 50 {
			u := float64(i) * 0.2
			pts = append(pts, math3d.V3(math.Cos(u), u*0.3, math.Sin(u)))
			tangents = append(tangents, math3d.V3(-math.Sin(u), 0.3, math.Cos(u)))
		}
		f := RotationMinimizingFrames(pts, tangents, false)
		for i := range pts {
			assert.InDelta(t, 1, f.Normals[i].Len(), 1e-9)
			assert.InDelta(t, 0, f.Normals[i].Dot(f.Tangents[i]), 1e-9)
			assert.InDelta(t, 0, f.Binormals[i].Dot(f.Normals[i]), 1e-9)
		}
	})

	t.Run("vertical tangent falls back", func(t *testing.T) {
		pts := []math3d.Vec3{{}, {Y: 1}, {Y: 2}}
		tangents := []math3d.Vec3{{Y: 1}, {Y: 1}, {Y: 1}}
		f := RotationMinimizingFrames(pts, tangents, false)
		for _, n := range f.Normals {
			assert.True(t, n.IsFinite())
			assert.InDelta(t, 1, n.Len(), 1e-9)
		}
	})

	t.Run("closed curve frames meet", func(t *testing.T) {
		g := TorusKnot(2, 0.4, 80, 8, 2, 3)
		require.NoError(t, g.Validate())
		var pts []math3d.Vec3
		for i := 0; i <= 80; i++ {
			pts = append(pts, knotPoint(float64(i)/80*4*math.Pi, 2, 3, 2))
		}
		last := len(pts) - 1
		tangents := make([]math3d.Vec3, len(pts))
		for i := range last {
			tangents[i] = pts[i+1].Sub(pts[i])
		}
		tangents[last] = tangents[0]
		f := RotationMinimizingFrames(pts, tangents, true)
		assert.InDelta(t, 1, f.Normals[0].Dot(f.Normals[len(pts)-1]), 1e-6)
	})

	t.Run("no twist on straight path", func(t *testing.T) {
		g := Tube([]math3d.Vec3{{}, {X: 5}}, 10, 1, 8, false)
		pos := g.Position()
		for i := range pos.Count() {
			p := pos.Vec3(i)
			assert.InDelta(t, 1, math.Hypot(p.Y, p.Z), 1e-5)
		}
	})
}

func TestTubeDegeneratePath(t *testing.T) {
	g := Tube([]math3d.Vec3{{X: 1}}, 8, 1, 8, false)
	require.NoError(t, g.Validate())
	assert.Zero(t, g.Count())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Geometry)
		want error
	}{
		{"valid", func(*Geometry) {}, nil},
		{"missing position", func(g *Geometry) { g.DeleteAttribute(AttrPosition) }, ErrMissingPosition},
		{"short normals", func(g *Geometry) { g.SetAttribute(AttrNormal, make([]float32, 9), 3) }, ErrCountMismatch},
		{"ragged uv", func(g *Geometry) { g.SetAttribute(AttrUV, make([]float32, 5), 2) }, ErrAttributeLength},
		{"wrong stride", func(g *Geometry) { g.SetAttribute(AttrUV, make([]float32, 108), 3) }, ErrItemSize},
		{"partial triangle", func(g *Geometry) {
			g.SetAttribute(AttrPosition, make([]float32, 12), 3)
			g.DeleteAttribute(AttrNormal)
			g.DeleteAttribute(AttrUV)
		}, ErrNotTriangles},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := Box(1, 1, 1)
			tc.mut(g)
			err := g.ValidateTriangles()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVersionAndBoundsCache(t *testing.T) {
	g := Box(2, 2, 2)
	v := g.Version()
	assert.Equal(t, 1.0, g.BoundingBox().Max.X)

	pos := g.Position()
	pos.SetVec3(0, math3d.V3(5, 0, 0))
	assert.Equal(t, 1.0, g.BoundingBox().Max.X, "bounds are cached until Bump")

	g.Bump()
	assert.Equal(t, v+1, g.Version())
	assert.Equal(t, 5.0, g.BoundingBox().Max.X)
}

func TestIdentityAndClone(t *testing.T) {
	a, b := Box(1, 1, 1), Box(1, 1, 1)
	assert.NotEqual(t, a.ID(), b.ID())

	c := a.Clone()
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Equal(t, a.Position().Array, c.Position().Array)
	c.Position().Array[0] = 42
	assert.NotEqual(t, float32(42), a.Position().Array[0])
}

func TestDispose(t *testing.T) {
	g := Sphere(SphereOptions{Radius: 1, WidthSegments: 4, HeightSegments: 2})
	calls := 0
	g.OnDispose(func(d *Geometry) {
		assert.Same(t, g, d)
		calls++
	})
	g.Dispose()
	g.Dispose()
	assert.Equal(t, 1, calls)
	assert.True(t, g.Disposed())
}

func TestComputeFlatNormals(t *testing.T) {
	g := New()
	g.SetAttribute(AttrPosition, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3)
	g.ComputeFlatNormals()
	require.NoError(t, g.Validate())
	for i := range 3 {
		_, n, _ := g.Vertex(i)
		assert.Equal(t, math3d.V3(0, 0, 1), n)
	}
}
