package render

import (
	"math"

	"github.com/taigrr/speedr/pkg/math3d"
)

const toonSteps = 3

// Fragment is the interpolated input to a shader at one pixel.
type Fragment struct {
	Normal math3d.Vec3 // World-space unit normal; zero when the draw has none
	UV     math3d.Vec2
	Depth  float64 // View-space distance along the camera axis
}

// Shader computes the color and alpha of a fragment. tex is nil when no
// texture is bound.
type Shader func(u *Uniforms, f Fragment, tex *Texture) (math3d.Color, float64)

// Toon quantizes the diffuse term into three bands and adds a rim term
// that brightens surfaces facing away from the light:
//
//	diffuse = floor(max(N·L, 0) * 3) / 3
//	rim     = (1 - max(N·L, 0))^3
//	color   = (ambient + 0.8·diffuse·sun + 0.2·rim·sun) · base · texel
//
// Alpha is the material opacity scaled by the texel alpha. Linear fog is
// blended in last.
func Toon(u *Uniforms, f Fragment, tex *Texture) (math3d.Color, float64) {
	ndl := math.Max(f.Normal.Dot(u.LightDir), 0)
	diffuse := math.Floor(ndl*toonSteps) / toonSteps
	rim := math.Pow(1-ndl, 3)

	light := u.Ambient.
		Add(u.LightColor.Scale(diffuse * 0.8)).
		Add(u.LightColor.Scale(rim * 0.2))
	c := light.Mul(u.Color)
	alpha := u.Opacity
	if u.HasTexture && tex != nil {
		texel := tex.Sample(f.UV.X, f.UV.Y)
		c = c.Mul(math3d.ColorFromRGBA(texel))
		alpha *= float64(texel.A) / 255
	}

	if u.FogFar > u.FogNear {
		k := math3d.Clamp((f.Depth-u.FogNear)/(u.FogFar-u.FogNear), 0, 1)
		c = c.Lerp(u.FogColor, k)
	}
	return c, alpha
}
