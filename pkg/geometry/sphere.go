package geometry

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

// SphereOptions configures Sphere. Zero fields take the defaults of a full
// 32x16 sphere of radius 1.
type SphereOptions struct {
	Radius         float64
	WidthSegments  int
	HeightSegments int
	PhiStart       float64
	PhiLength      float64
	ThetaStart     float64
	ThetaLength    float64
}

func (o SphereOptions) withDefaults() SphereOptions {
	if o.Radius == 0 {
		o.Radius = 1
	}
	if o.WidthSegments == 0 {
		o.WidthSegments = 32
	}
	if o.HeightSegments == 0 {
		o.HeightSegments = 16
	}
	o.WidthSegments = max(3, o.WidthSegments)
	o.HeightSegments = max(2, o.HeightSegments)
	if o.PhiLength == 0 {
		o.PhiLength = 2 * math.Pi
	}
	if o.ThetaLength == 0 {
		o.ThetaLength = math.Pi
	}
	return o
}

// spherical returns the unit direction for polar angle theta (from +Y) and
// azimuth phi.
func spherical(theta, phi float64) math3d.Vec3 {
	st := math.Sin(theta)
	return math3d.V3(-math.Cos(phi)*st, math.Cos(theta), math.Sin(phi)*st)
}

// latitudeBand adds rows of vertices for theta in [theta0, theta1] on a
// sphere of radius r shifted by yOffset, and triangulates them. The uv v
// coordinate is remapped to [v0, v1]. Triangles collapsing into a pole are
// skipped.
func (m *indexed) latitudeBand(r, yOffset, theta0, theta1, phi0, phiLen float64, rows, cols int, v0, v1 float64) {
	base := len(m.pos)
	for y := 0; y <= rows; y++ {
		fy := float64(y) / float64(rows)
		theta := theta0 + fy*(theta1-theta0)
		for x := 0; x <= cols; x++ {
			fx := float64(x) / float64(cols)
			n := spherical(theta, phi0+fx*phiLen)
			p := n.Scale(r)
			p.Y += yOffset
			m.vertex(p, n, math3d.V2(fx, 1-math3d.Lerp(v0, v1, fy)))
		}
	}

	stride := cols + 1
	for y := range rows {
		for x := range cols {
			a := base + y*stride + x + 1
			b := base + y*stride + x
			c := base + (y+1)*stride + x
			d := base + (y+1)*stride + x + 1
			if y != 0 || theta0 > 0 {
				m.tri(a, b, d)
			}
			if y != rows-1 || theta1 < math.Pi {
				m.tri(b, c, d)
			}
		}
	}
}

// Sphere returns a UV sphere. Every position lies at distance Radius from
// the origin and normals point outward.
func Sphere(opts SphereOptions) *Geometry {
	o := opts.withDefaults()
	var m indexed
	thetaEnd := math.Min(o.ThetaStart+o.ThetaLength, math.Pi)
	m.latitudeBand(o.Radius, 0, o.ThetaStart, thetaEnd, o.PhiStart, o.PhiLength,
		o.HeightSegments, o.WidthSegments, 0, 1)
	return m.flatten(Params{Kind: "sphere", Radius: o.Radius})
}

// Capsule returns a cylinder of the given length capped by two hemispheres.
// The top cap, body and bottom cap are built as separate bands that share
// seam positions.
func Capsule(radius, length float64, capSegments, radialSegments int) *Geometry {
	capSegments = max(1, capSegments)
	radialSegments = max(3, radialSegments)
	half := length / 2

	var m indexed
	m.latitudeBand(radius, half, 0, math.Pi/2, 0, 2*math.Pi, capSegments, radialSegments, 0, 0.25)

	// Body: a straight band from +half to -half with horizontal normals.
	base := len(m.pos)
	stride := radialSegments + 1
	for row, y := range [2]float64{half, -half} {
		v := 0.25 + 0.5*float64(row)
		for x := 0; x <= radialSegments; x++ {
			fx := float64(x) / float64(radialSegments)
			n := spherical(math.Pi/2, fx*2*math.Pi)
			p := n.Scale(radius)
			p.Y = y
			m.vertex(p, n, math3d.V2(fx, 1-v))
		}
	}
	for x := range radialSegments {
		m.quad(base+x+1, base+x, base+stride+x, base+stride+x+1)
	}

	m.latitudeBand(radius, -half, math.Pi/2, math.Pi, 0, 2*math.Pi, capSegments, radialSegments, 0.75, 1)

	return m.flatten(Params{Kind: "capsule", Radius: radius, Height: length + 2*radius})
}
