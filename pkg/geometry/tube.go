package geometry

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

// Frames is a sequence of orthonormal (tangent, normal, binormal) bases
// along a curve.
type Frames struct {
	Tangents  []math3d.Vec3
	Normals   []math3d.Vec3
	Binormals []math3d.Vec3
}

// RotationMinimizingFrames computes frames along points using the double
// reflection method. tangents must have the same length as points. When
// closed is true the accumulated twist is spread evenly so the last frame
// matches the first.
func RotationMinimizingFrames(points, tangents []math3d.Vec3, closed bool) Frames {
	n := len(points)
	f := Frames{
		Tangents:  make([]math3d.Vec3, n),
		Normals:   make([]math3d.Vec3, n),
		Binormals: make([]math3d.Vec3, n),
	}
	if n == 0 {
		return f
	}

	prev := math3d.V3(0, 0, 1)
	for i, t := range tangents {
		t = t.Normalize()
		if t.LenSq() == 0 {
			t = prev
		}
		f.Tangents[i], prev = t, t
	}

	t0 := f.Tangents[0]
	normal := t0.Cross(math3d.Up())
	if normal.LenSq() < 0.01 {
		normal = t0.Cross(math3d.V3(0, 0, 1))
	}
	f.Normals[0] = normal.Normalize()

	for i := 0; i < n-1; i++ {
		f.Normals[i+1] = transport(points[i], points[i+1], f.Tangents[i], f.Tangents[i+1], f.Normals[i])
	}

	if closed && n > 1 {
		first, last := f.Normals[0], f.Normals[n-1]
		theta := math.Acos(math3d.Clamp(first.Dot(last), -1, 1)) / float64(n-1)
		if t0.Dot(first.Cross(last)) > 0 {
			theta = -theta
		}
		for i := 1; i < n; i++ {
			q := math3d.QuatFromAxisAngle(f.Tangents[i], theta*float64(i))
			f.Normals[i] = q.Rotate(f.Normals[i])
		}
	}

	for i := range n {
		f.Binormals[i] = f.Tangents[i].Cross(f.Normals[i]).Normalize()
	}
	return f
}

// transport carries normal r from (x0, t0) to (x1, t1) with two reflections.
func transport(x0, x1, t0, t1, r math3d.Vec3) math3d.Vec3 {
	v1 := x1.Sub(x0)
	c1 := v1.Dot(v1)
	rL, tL := r, t0
	if c1 > 0 {
		rL = r.AddScaled(v1, -2/c1*v1.Dot(r))
		tL = t0.AddScaled(v1, -2/c1*v1.Dot(t0))
	}
	v2 := t1.Sub(tL)
	c2 := v2.Dot(v2)
	if c2 > 0 {
		rL = rL.AddScaled(v2, -2/c2*v2.Dot(rL))
	}
	// Re-orthogonalize against the new tangent to stop drift.
	rL = rL.AddScaled(t1, -rL.Dot(t1))
	if rL.LenSq() == 0 {
		return r
	}
	return rL.Normalize()
}

// Tube sweeps a circle of the given radius along a polyline. Positions and
// tangents between path points are linearly interpolated.
func Tube(path []math3d.Vec3, tubularSegments int, radius float64, radialSegments int, closed bool) *Geometry {
	if len(path) < 2 {
		return build(Params{Kind: "tube", Radius: radius}, nil, nil, nil)
	}
	tubularSegments = max(1, tubularSegments)

	pts := path
	if closed {
		pts = append(append([]math3d.Vec3(nil), path...), path[0])
	}
	segs := len(pts) - 1

	samples := make([]math3d.Vec3, tubularSegments+1)
	tangents := make([]math3d.Vec3, tubularSegments+1)
	for i := range samples {
		x := float64(i) / float64(tubularSegments) * float64(segs)
		k := min(int(math.Floor(x)), segs-1)
		samples[i] = pts[k].Lerp(pts[k+1], x-float64(k))
		tangents[i] = pts[k+1].Sub(pts[k])
	}

	g := sweepFrames(samples, RotationMinimizingFrames(samples, tangents, closed), radius, radialSegments)
	g.Name = "tube"
	g.Params = Params{Kind: "tube", Radius: radius}
	return g
}

// sweep builds a tube along points with tangents from forward differences.
func sweep(points []math3d.Vec3, closed bool, radius float64, radialSegments int) *Geometry {
	n := len(points)
	tangents := make([]math3d.Vec3, n)
	for i := range points {
		switch {
		case i < n-1:
			tangents[i] = points[i+1].Sub(points[i])
		case closed && n > 1:
			tangents[i] = points[1].Sub(points[0])
		case n > 1:
			tangents[i] = points[i].Sub(points[i-1])
		}
	}
	return sweepFrames(points, RotationMinimizingFrames(points, tangents, closed), radius, radialSegments)
}

func sweepFrames(points []math3d.Vec3, f Frames, radius float64, radialSegments int) *Geometry {
	radialSegments = max(3, radialSegments)
	rings := len(points)

	var m indexed
	for i, p := range points {
		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			n := f.Normals[i].Scale(-math.Cos(v)).AddScaled(f.Binormals[i], math.Sin(v)).Normalize()
			uv := math3d.V2(float64(i)/float64(rings-1), float64(j)/float64(radialSegments))
			m.vertex(p.AddScaled(n, radius), n, uv)
		}
	}

	stride := radialSegments + 1
	for j := 1; j < rings; j++ {
		for i := 1; i <= radialSegments; i++ {
			a := stride*(j-1) + i - 1
			b := stride*j + i - 1
			c := stride*j + i
			d := stride*(j-1) + i
			m.quad(a, b, c, d)
		}
	}
	return m.flatten(Params{})
}
