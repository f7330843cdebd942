package render

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

// clipVertex is a vertex after the vertex stage: a clip-space position plus
// the varyings interpolated across the primitive.
type clipVertex struct {
	Clip   math3d.Vec4
	Normal math3d.Vec3
	UV     math3d.Vec2
}

func lerpVertex(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		Clip:   a.Clip.Lerp(b.Clip, t),
		Normal: a.Normal.Lerp(b.Normal, t),
		UV:     a.UV.Lerp(b.UV, t),
	}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y   float64 // Pixels, y down
	Z      float64 // NDC depth in [-1, 1]
	InvW   float64 // 1/w for perspective-correct interpolation
	Normal math3d.Vec3
	UV     math3d.Vec2
}

type shadeFunc func(Fragment) (math3d.Color, float64)

// RasterStats counts primitives and fragments since the last reset.
type RasterStats struct {
	Triangles int // Triangles that reached the pixel loop
	Culled    int // Back-facing triangles dropped
	Points    int
	Fragments int // Fragments that passed the depth test
}

// Rasterizer scan-converts clip-space primitives into a framebuffer with a
// z-buffer.
type Rasterizer struct {
	fb      *Framebuffer
	zbuffer []float64

	CullBackfaces bool // Drop triangles wound clockwise on screen
	DepthWrite    bool // Write depth for passing fragments
	Blend         bool // Composite fragments by their alpha

	Stats RasterStats
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{fb: fb, CullBackfaces: true, DepthWrite: true}
	r.Resize()
	return r
}

// Resize matches the depth buffer to the framebuffer.
func (r *Rasterizer) Resize() {
	n := r.fb.Width * r.fb.Height
	if cap(r.zbuffer) >= n {
		r.zbuffer = r.zbuffer[:n]
	} else {
		r.zbuffer = make([]float64, n)
	}
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int { return r.fb.Width }

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int { return r.fb.Height }

// ClearDepth resets every depth sample to the far value.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Depth returns the stored depth at (x, y).
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

func (r *Rasterizer) toScreen(v clipVertex) screenVertex {
	invW := 1 / v.Clip.W
	return screenVertex{
		X:      (v.Clip.X*invW + 1) * 0.5 * float64(r.Width()),
		Y:      (1 - v.Clip.Y*invW) * 0.5 * float64(r.Height()),
		Z:      v.Clip.Z * invW,
		InvW:   invW,
		Normal: v.Normal,
		UV:     v.UV,
	}
}

// nearDistance is positive for points in front of the near plane.
func nearDistance(v clipVertex) float64 {
	return v.Clip.Z + v.Clip.W
}

// clipNear clips a convex polygon against the near plane
// (Sutherland-Hodgman) and appends the result to out.
func clipNear(in []clipVertex, out []clipVertex) []clipVertex {
	for i := range in {
		a, b := in[i], in[(i+1)%len(in)]
		da, db := nearDistance(a), nearDistance(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

// DrawTriangle clips a triangle to the near plane and rasterizes what is
// left. Triangles are front-facing when counter-clockwise in NDC.
func (r *Rasterizer) DrawTriangle(tri [3]clipVertex, shade shadeFunc) {
	if nearDistance(tri[0]) >= 0 && nearDistance(tri[1]) >= 0 && nearDistance(tri[2]) >= 0 {
		r.rasterize(tri, shade)
		return
	}
	var buf [4]clipVertex
	poly := clipNear(tri[:], buf[:0])
	for i := 1; i+1 < len(poly); i++ {
		r.rasterize([3]clipVertex{poly[0], poly[i], poly[i+1]}, shade)
	}
}

func (r *Rasterizer) rasterize(tri [3]clipVertex, shade shadeFunc) {
	sv := [3]screenVertex{r.toScreen(tri[0]), r.toScreen(tri[1]), r.toScreen(tri[2])}

	// Screen y points down, so counter-clockwise in NDC has negative area here.
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area == 0 {
		return
	}
	back := area > 0
	if back && r.CullBackfaces {
		r.Stats.Culled++
		return
	}
	if area < 0 {
		sv[1], sv[2] = sv[2], sv[1]
		area = -area
	}

	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.Stats.Triangles++

	// Edge 0: v1 -> v2, edge 1: v2 -> v0, edge 2: v0 -> v1.
	a0, b0, c0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a1, b1, c1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a2, b2, c2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1 / area

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := a0*px + b0*py + c0
	w1Row := a1*px + b1*py + c1
	w2Row := a2*px + b2*py + c2

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				l0, l1, l2 := w0*invArea, w1*invArea, w2*invArea
				z := l0*sv[0].Z + l1*sv[1].Z + l2*sv[2].Z
				idx := y*width + x
				if z <= 1 && z < r.zbuffer[idx] {
					// Perspective-correct weights.
					p0, p1, p2 := l0*sv[0].InvW, l1*sv[1].InvW, l2*sv[2].InvW
					invW := p0 + p1 + p2
					p0, p1, p2 = p0/invW, p1/invW, p2/invW

					n := sv[0].Normal.Scale(p0).AddScaled(sv[1].Normal, p1).AddScaled(sv[2].Normal, p2).Normalize()
					if back {
						n = n.Negate()
					}
					frag := Fragment{
						Normal: n,
						UV: math3d.V2(
							p0*sv[0].UV.X+p1*sv[1].UV.X+p2*sv[2].UV.X,
							p0*sv[0].UV.Y+p1*sv[1].UV.Y+p2*sv[2].UV.Y,
						),
						Depth: 1 / invW,
					}
					c, alpha := shade(frag)
					r.writeFragment(x, y, idx, z, c, alpha)
				}
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0Row += b0
		w1Row += b1
		w2Row += b2
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// edge (x0, y0) -> (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

func (r *Rasterizer) writeFragment(x, y, idx int, z float64, c math3d.Color, alpha float64) {
	r.Stats.Fragments++
	if r.Blend {
		r.fb.BlendPixel(x, y, c.RGBA(1), math3d.Clamp(alpha, 0, 1))
	} else {
		r.fb.SetPixel(x, y, c.RGBA(1))
	}
	if r.DepthWrite {
		r.zbuffer[idx] = z
	}
}

// DrawPoint rasterizes a screen-aligned square sprite of size pixels
// centered on v. Fragment UVs run across the sprite with v up.
func (r *Rasterizer) DrawPoint(v clipVertex, size float64, shade shadeFunc) {
	if v.Clip.W <= 0 {
		return
	}
	sv := r.toScreen(v)
	if sv.Z < -1 || sv.Z > 1 {
		return
	}
	size = math.Max(size, 1)
	half := size / 2
	x0 := max(int(math.Ceil(sv.X-half-0.5)), 0)
	x1 := min(int(math.Ceil(sv.X+half-0.5))-1, r.Width()-1)
	y0 := max(int(math.Ceil(sv.Y-half-0.5)), 0)
	y1 := min(int(math.Ceil(sv.Y+half-0.5))-1, r.Height()-1)
	if x0 > x1 || y0 > y1 {
		return
	}
	r.Stats.Points++

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			idx := y*r.Width() + x
			if sv.Z >= r.zbuffer[idx] {
				continue
			}
			frag := Fragment{
				UV: math3d.V2(
					(float64(x)+0.5-(sv.X-half))/size,
					1-(float64(y)+0.5-(sv.Y-half))/size,
				),
				Depth: v.Clip.W,
			}
			c, alpha := shade(frag)
			r.writeFragment(x, y, idx, sv.Z, c, alpha)
		}
	}
}
