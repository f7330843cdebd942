package geometry

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

// Torus returns a ring of radius around the Z axis with a circular cross
// section of radius tube. arc limits the sweep; zero means a full turn.
func Torus(radius, tube float64, radialSegments, tubularSegments int, arc float64) *Geometry {
	radialSegments = max(2, radialSegments)
	tubularSegments = max(3, tubularSegments)
	if arc <= 0 {
		arc = 2 * math.Pi
	}

	var m indexed
	for j := 0; j <= radialSegments; j++ {
		v := float64(j) / float64(radialSegments) * 2 * math.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * arc
			ring := radius + tube*math.Cos(v)
			p := math3d.V3(ring*math.Cos(u), ring*math.Sin(u), tube*math.Sin(v))
			center := math3d.V3(radius*math.Cos(u), radius*math.Sin(u), 0)
			uv := math3d.V2(float64(i)/float64(tubularSegments), float64(j)/float64(radialSegments))
			m.vertex(p, p.Sub(center).Normalize(), uv)
		}
	}

	stride := tubularSegments + 1
	for j := 1; j <= radialSegments; j++ {
		for i := 1; i <= tubularSegments; i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			m.quad(a, b, c, d)
		}
	}

	return m.flatten(Params{Kind: "torus", Radius: radius + tube, Depth: 2 * tube})
}

// TorusKnot returns a tube of radius tube swept along the (p, q) torus knot
// curve of the given radius.
func TorusKnot(radius, tube float64, tubularSegments, radialSegments, p, q int) *Geometry {
	tubularSegments = max(3, tubularSegments)
	if p == 0 {
		p = 2
	}
	if q == 0 {
		q = 3
	}

	path := make([]math3d.Vec3, tubularSegments+1)
	span := float64(p) * 2 * math.Pi
	for i := range path {
		u := float64(i) / float64(tubularSegments) * span
		path[i] = knotPoint(u, float64(p), float64(q), radius)
	}

	g := sweep(path, true, tube, radialSegments)
	g.Name = "torusknot"
	g.Params = Params{Kind: "torusknot", Radius: radius*1.5 + tube}
	return g
}

func knotPoint(u, p, q, radius float64) math3d.Vec3 {
	quOverP := q / p * u
	cs := math.Cos(quOverP)
	return math3d.V3(
		radius*(2+cs)*0.5*math.Cos(u),
		radius*(2+cs)*0.5*math.Sin(u),
		radius*math.Sin(quOverP)*0.5,
	)
}
