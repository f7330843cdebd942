package render

import (
	"math"
	"testing"

	"github.com/taigrr/speedr/pkg/math3d"
)

func solid(c math3d.Color) shadeFunc {
	return func(Fragment) (math3d.Color, float64) { return c, 1 }
}

// vert builds a clip-space vertex with w = 1 so clip equals NDC.
func vert(x, y, z float64) clipVertex {
	return clipVertex{Clip: math3d.V4(x, y, z, 1), Normal: math3d.V3(0, 0, 1)}
}

// ccw is counter-clockwise in NDC and covers the center of the target.
func ccw(z float64) [3]clipVertex {
	return [3]clipVertex{vert(-0.5, -0.5, z), vert(0.5, -0.5, z), vert(0, 0.5, z)}
}

func cw(z float64) [3]clipVertex {
	t := ccw(z)
	t[1], t[2] = t[2], t[1]
	return t
}

var (
	red   = math3d.RGB(1, 0, 0)
	green = math3d.RGB(0, 1, 0)
)

func TestEdgeCoeffs(t *testing.T) {
	a, b, c := edgeCoeffs(0, 0, 10, 0)
	tests := []struct {
		name   string
		x, y   float64
		expect float64
	}{
		{"on edge", 5, 0, 0},
		{"below in screen space", 5, 2, 20},
		{"above in screen space", 5, -2, -20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a*tc.x + b*tc.y + c; math.Abs(got-tc.expect) > 1e-9 {
				t.Errorf("edge(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.expect)
			}
		})
	}
}

func TestDrawTriangleFillsCenter(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DrawTriangle(ccw(0), solid(red))

	if got := fb.GetPixel(5, 5); got != red.RGBA(1) {
		t.Errorf("center pixel = %v, want red", got)
	}
	if got := fb.GetPixel(0, 0); got.R != 0 {
		t.Errorf("corner pixel = %v, want untouched", got)
	}
	if r.Stats.Triangles != 1 || r.Stats.Fragments == 0 {
		t.Errorf("stats = %+v", r.Stats)
	}
}

func TestBackfaceCulling(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DrawTriangle(cw(0), solid(red))
	if r.Stats.Culled != 1 || r.Stats.Fragments != 0 {
		t.Fatalf("clockwise triangle should be culled, stats = %+v", r.Stats)
	}

	r.CullBackfaces = false
	var normal math3d.Vec3
	r.DrawTriangle(cw(0), func(f Fragment) (math3d.Color, float64) {
		normal = f.Normal
		return red, 1
	})
	if fb.GetPixel(5, 5) != red.RGBA(1) {
		t.Error("double-sided triangle should be drawn")
	}
	if !normal.ApproxEqual(math3d.V3(0, 0, -1), 1e-9) {
		t.Errorf("back face normal = %v, want flipped", normal)
	}
}

func TestDepthTest(t *testing.T) {
	tests := []struct {
		name  string
		first [3]clipVertex
		fc    math3d.Color
		then  [3]clipVertex
		tc    math3d.Color
	}{
		{"near drawn last", ccw(0.5), red, ccw(-0.5), green},
		{"near drawn first", ccw(-0.5), green, ccw(0.5), red},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(10, 10)
			r := NewRasterizer(fb)
			r.DrawTriangle(tc.first, solid(tc.fc))
			r.DrawTriangle(tc.then, solid(tc.tc))
			if got := fb.GetPixel(5, 5); got != green.RGBA(1) {
				t.Errorf("center = %v, want the nearer triangle", got)
			}
			if d := r.Depth(5, 5); math.Abs(d+0.5) > 1e-9 {
				t.Errorf("depth = %v, want -0.5", d)
			}
		})
	}
}

func TestDepthMaskOff(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DepthWrite = false
	r.DrawTriangle(ccw(-0.5), solid(green))
	r.DrawTriangle(ccw(0.5), solid(red))
	if got := fb.GetPixel(5, 5); got != red.RGBA(1) {
		t.Errorf("center = %v, want red when depth writes are off", got)
	}
}

func TestDrawTriangleBeyondFarPlane(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DrawTriangle(ccw(1.5), solid(red))
	if r.Stats.Fragments != 0 {
		t.Errorf("fragments = %d, want 0 beyond the far plane", r.Stats.Fragments)
	}
}

func TestClipNear(t *testing.T) {
	tri := [3]clipVertex{
		{Clip: math3d.V4(-0.5, -0.5, -3, 1)},
		vert(0.5, -0.5, 0),
		vert(0, 0.5, 0),
	}
	poly := clipNear(tri[:], nil)
	if len(poly) != 4 {
		t.Fatalf("clipped polygon has %d vertices, want 4", len(poly))
	}
	for i, v := range poly {
		if nearDistance(v) < -1e-9 {
			t.Errorf("vertex %d behind near plane: %v", i, v.Clip)
		}
	}

	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DrawTriangle(tri, solid(red))
	if r.Stats.Triangles == 0 {
		t.Error("partially visible triangle should be drawn")
	}

	r.Stats = RasterStats{}
	behind := [3]clipVertex{
		{Clip: math3d.V4(0, 0, -3, 1)},
		{Clip: math3d.V4(1, 0, -3, 1)},
		{Clip: math3d.V4(0, 1, -3, 1)},
	}
	r.DrawTriangle(behind, solid(red))
	if r.Stats.Triangles != 0 {
		t.Error("triangle behind the camera should be dropped")
	}
}

func TestDrawPoint(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DrawPoint(vert(0, 0, 0), 3, solid(red))
	if r.Stats.Fragments != 9 {
		t.Errorf("fragments = %d, want 9 for a 3px sprite", r.Stats.Fragments)
	}
	if fb.GetPixel(5, 5) != red.RGBA(1) {
		t.Error("sprite should cover its center")
	}

	r.Stats = RasterStats{}
	r.DrawPoint(clipVertex{Clip: math3d.V4(0, 0, 0, -1)}, 3, solid(red))
	if r.Stats.Points != 0 {
		t.Error("point behind the camera should be dropped")
	}
}

func TestBlend(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.Clear(math3d.RGB(0, 0, 0).RGBA(1))
	r := NewRasterizer(fb)
	r.Blend = true
	r.DrawTriangle(ccw(0), func(Fragment) (math3d.Color, float64) { return red, 0.5 })
	if got := fb.GetPixel(5, 5); got.R != 128 || got.G != 0 {
		t.Errorf("blended pixel = %v, want half red", got)
	}
}

func TestDrawEdges(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	r := NewRasterizer(fb)
	r.DrawEdges(ccw(0), green)
	if fb.GetPixel(5, 5) == green.RGBA(1) {
		t.Error("wireframe should not fill the interior")
	}
	lit := 0
	for _, p := range fb.Pixels {
		if p == green.RGBA(1) {
			lit++
		}
	}
	if lit == 0 {
		t.Error("wireframe drew nothing")
	}
}

func TestToonBands(t *testing.T) {
	u := &Uniforms{
		Color:      math3d.RGB(1, 1, 1),
		Opacity:    0.75,
		LightDir:   math3d.V3(0, 0, 1),
		LightColor: math3d.RGB(1, 1, 1),
	}
	tests := []struct {
		name   string
		normal math3d.Vec3
		expect float64
	}{
		{"facing light", math3d.V3(0, 0, 1), 0.8},
		{"half lit", math3d.V3(math.Sqrt(3)/2, 0, 0.5), 0.8/3 + 0.2*0.125},
		{"grazing", math3d.V3(1, 0, 0), 0.2},
		{"facing away", math3d.V3(0, 0, -1), 0.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, a := Toon(u, Fragment{Normal: tc.normal}, nil)
			if math.Abs(c.R-tc.expect) > 1e-9 {
				t.Errorf("R = %v, want %v", c.R, tc.expect)
			}
			if a != 0.75 {
				t.Errorf("alpha = %v, want opacity", a)
			}
		})
	}
}

func TestToonFog(t *testing.T) {
	u := &Uniforms{
		Color:    math3d.RGB(1, 1, 1),
		Ambient:  math3d.RGB(1, 1, 1),
		FogColor: math3d.RGB(0, 0, 1),
		FogNear:  10,
		FogFar:   20,
	}
	tests := []struct {
		depth float64
		blue  float64
		red   float64
	}{
		{5, 1, 1},
		{15, 1, 0.5},
		{30, 1, 0},
	}
	for _, tc := range tests {
		c, _ := Toon(u, Fragment{Normal: math3d.V3(0, 0, 1), Depth: tc.depth}, nil)
		if math.Abs(c.R-tc.red) > 1e-9 || math.Abs(c.B-tc.blue) > 1e-9 {
			t.Errorf("depth %v: color = %+v, want R=%v B=%v", tc.depth, c, tc.red, tc.blue)
		}
	}
}
