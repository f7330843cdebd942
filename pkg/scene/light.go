package scene

import "github.com/taigrr/speedr/pkg/math3d"

// Light is implemented by every light kind.
type Light interface {
	Object
	Radiance() math3d.Color
}

// lightBase holds the fields shared by all lights.
type lightBase struct {
	Color     math3d.Color
	Intensity float64
}

// Radiance returns Color scaled by Intensity.
func (l *lightBase) Radiance() math3d.Color {
	return l.Color.Scale(l.Intensity)
}

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Node
	lightBase
}

// NewAmbientLight returns an ambient light.
func NewAmbientLight(color math3d.Color, intensity float64) *AmbientLight {
	l := &AmbientLight{lightBase: lightBase{color, intensity}}
	l.init(l)
	return l
}

func (l *AmbientLight) Kind() Kind { return KindAmbientLight }

// DirectionalLight shines parallel rays from its position toward Target.
type DirectionalLight struct {
	Node
	lightBase
	Target math3d.Vec3
}

// NewDirectionalLight returns a light positioned at (0, 1, 0) aimed at the
// origin.
func NewDirectionalLight(color math3d.Color, intensity float64) *DirectionalLight {
	l := &DirectionalLight{lightBase: lightBase{color, intensity}}
	l.init(l)
	l.Position = math3d.Up()
	return l
}

func (l *DirectionalLight) Kind() Kind { return KindDirectionalLight }

// Direction returns the unit vector from Target toward the light, which is
// the L vector used in shading. It is zero if the two coincide.
func (l *DirectionalLight) Direction() math3d.Vec3 {
	return l.WorldPosition().Sub(l.Target).Normalize()
}

// PointLight radiates from its position. Distance is the cutoff range (0
// for unlimited) and Decay the attenuation exponent. The toon shader only
// uses directional and ambient light, so point lights are carried for
// collaborators that read them from the graph.
type PointLight struct {
	Node
	lightBase
	Distance float64
	Decay    float64
}

// NewPointLight returns a point light.
func NewPointLight(color math3d.Color, intensity, distance float64) *PointLight {
	l := &PointLight{lightBase: lightBase{color, intensity}, Distance: distance, Decay: 2}
	l.init(l)
	return l
}

func (l *PointLight) Kind() Kind { return KindPointLight }
