package geometry

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

var sqrt3 = math.Sqrt(3)

var (
	tetraVertices = []float64{1, 1, 1, -1, -1, 1, -1, 1, -1, 1, -1, -1}
	tetraIndices  = []int{2, 1, 0, 0, 3, 2, 1, 3, 0, 2, 3, 1}

	octaVertices = []float64{1, 0, 0, -1, 0, 0, 0, 1, 0, 0, -1, 0, 0, 0, 1, 0, 0, -1}
	octaIndices  = []int{0, 2, 4, 0, 4, 3, 0, 3, 5, 0, 5, 2, 1, 2, 5, 1, 5, 3, 1, 3, 4, 1, 4, 2}

	goldenRatio = (1 + math.Sqrt(5)) / 2

	icosaVertices = []float64{
		-1, goldenRatio, 0, 1, goldenRatio, 0, -1, -goldenRatio, 0, 1, -goldenRatio, 0,
		0, -1, goldenRatio, 0, 1, goldenRatio, 0, -1, -goldenRatio, 0, 1, -goldenRatio,
		goldenRatio, 0, -1, goldenRatio, 0, 1, -goldenRatio, 0, -1, -goldenRatio, 0, 1,
	}
	icosaIndices = []int{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}
)

var faceUVs = [3]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// polyhedron projects the vertex table onto a sphere of the given radius
// and emits each face with its flat normal, wound to face outward.
func polyhedron(kind string, vertices []float64, indices []int, radius float64) *Geometry {
	pts := make([]math3d.Vec3, len(vertices)/3)
	for i := range pts {
		pts[i] = math3d.V3(vertices[i*3], vertices[i*3+1], vertices[i*3+2]).Normalize().Scale(radius)
	}

	var out flat
	for f := 0; f+2 < len(indices); f += 3 {
		a, b, c := pts[indices[f]], pts[indices[f+1]], pts[indices[f+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(a.Add(b).Add(c)) < 0 {
			b, c = c, b
			n = n.Negate()
		}
		n = n.Normalize()
		out.vertex(a, n, faceUVs[0])
		out.vertex(b, n, faceUVs[1])
		out.vertex(c, n, faceUVs[2])
	}
	return out.build(Params{Kind: kind, Radius: radius})
}

// Tetrahedron returns a regular tetrahedron inscribed in a sphere of radius.
func Tetrahedron(radius float64) *Geometry {
	return polyhedron("tetrahedron", tetraVertices, tetraIndices, radius)
}

// Octahedron returns a regular octahedron inscribed in a sphere of radius.
func Octahedron(radius float64) *Geometry {
	return polyhedron("octahedron", octaVertices, octaIndices, radius)
}

// Icosahedron returns a regular icosahedron inscribed in a sphere of radius.
func Icosahedron(radius float64) *Geometry {
	return polyhedron("icosahedron", icosaVertices, icosaIndices, radius)
}
