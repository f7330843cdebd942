package render

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

// DrawEdges draws the three edges of a triangle as one-pixel lines without
// depth testing. Edges are clipped to the near plane.
func (r *Rasterizer) DrawEdges(tri [3]clipVertex, c math3d.Color) {
	rgba := c.RGBA(1)
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := nearDistance(a), nearDistance(b)
		if da < 0 && db < 0 {
			continue
		}
		if da < 0 {
			a = lerpVertex(a, b, da/(da-db))
		} else if db < 0 {
			b = lerpVertex(a, b, da/(da-db))
		}
		sa, sb := r.toScreen(a), r.toScreen(b)
		r.fb.DrawLine(
			int(math.Floor(sa.X)), int(math.Floor(sa.Y)),
			int(math.Floor(sb.X)), int(math.Floor(sb.Y)),
			rgba,
		)
	}
}
