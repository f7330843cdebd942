package geometry

import "github.com/taigrr/speedr/pkg/math3d"

// boxFace is one side of a box: its outward normal and the in-plane axes
// with u × v == normal.
type boxFace struct {
	normal, u, v math3d.Vec3
}

var boxFaces = [6]boxFace{
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
}

// Two counter-clockwise triangles per face, as (u, v) corners.
var quadCorners = [6]math3d.Vec2{
	{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1},
	{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
}

func (f boxFace) emit(out *flat, half math3d.Vec3) {
	for _, c := range quadCorners {
		p := f.normal.
			Add(f.u.Scale(2*c.X - 1)).
			Add(f.v.Scale(2*c.Y - 1)).
			Mul(half)
		out.vertex(p, f.normal, c)
	}
}

// Box returns an axis-aligned box centered on the origin with flat face
// normals and a full [0,1] uv square on every face.
func Box(width, height, depth float64) *Geometry {
	half := math3d.V3(width/2, height/2, depth/2)
	var out flat
	for _, f := range boxFaces {
		f.emit(&out, half)
	}
	return out.build(Params{Kind: "box", Width: width, Height: height, Depth: depth})
}

// Plane returns a rectangle in the XY plane facing +Z.
func Plane(width, height float64) *Geometry {
	var out flat
	boxFaces[4].emit(&out, math3d.V3(width/2, height/2, 0))
	return out.build(Params{Kind: "plane", Width: width, Height: height})
}

// Dodecahedron returns a cube proxy whose circumscribed sphere has the
// given radius.
func Dodecahedron(radius float64) *Geometry {
	side := 2 * radius / sqrt3
	g := Box(side, side, side)
	g.Name = "dodecahedron"
	g.Params = Params{Kind: "dodecahedron", Radius: radius}
	return g
}

// Cylinder returns a box proxy sized to the larger of the two radii.
func Cylinder(radiusTop, radiusBottom, height float64) *Geometry {
	r := max(radiusTop, radiusBottom)
	g := Box(2*r, height, 2*r)
	g.Name = "cylinder"
	g.Params = Params{Kind: "cylinder", Radius: r, Height: height}
	return g
}

// Cone returns a box proxy for a cone of the given base radius.
func Cone(radius, height float64) *Geometry {
	g := Cylinder(0, radius, height)
	g.Name = "cone"
	g.Params.Kind = "cone"
	return g
}
