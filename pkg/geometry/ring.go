package geometry

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

// Ring returns a flat annulus in the XY plane facing +Z.
// thetaSegments is clamped to at least 3 and phiSegments, the number of
// concentric bands, to at least 1. Swapped radii are reordered.
func Ring(innerRadius, outerRadius float64, thetaSegments, phiSegments int) *Geometry {
	innerRadius, outerRadius = math.Abs(innerRadius), math.Abs(outerRadius)
	if innerRadius > outerRadius {
		innerRadius, outerRadius = outerRadius, innerRadius
	}
	thetaSegments = max(3, thetaSegments)
	phiSegments = max(1, phiSegments)
	normal := math3d.V3(0, 0, 1)

	var m indexed
	step := (outerRadius - innerRadius) / float64(phiSegments)
	for j := 0; j <= phiSegments; j++ {
		r := innerRadius + float64(j)*step
		for i := 0; i <= thetaSegments; i++ {
			seg := float64(i) / float64(thetaSegments) * 2 * math.Pi
			p := math3d.V3(r*math.Cos(seg), r*math.Sin(seg), 0)
			uv := math3d.V2(0.5, 0.5)
			if outerRadius != 0 {
				uv = math3d.V2((p.X/outerRadius+1)/2, (p.Y/outerRadius+1)/2)
			}
			m.vertex(p, normal, uv)
		}
	}

	stride := thetaSegments + 1
	for j := range phiSegments {
		for i := range thetaSegments {
			s := j*stride + i
			m.quad(s, s+stride, s+stride+1, s+1)
		}
	}
	return m.flatten(Params{Kind: "ring", Radius: outerRadius})
}
