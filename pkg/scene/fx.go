package scene

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
)

const (
	ghostOpacity = 0.6

	textDuration = 1.0
	textLift     = 2.0 // Start height above the anchor
	textRise     = 3.0 // Units per second
	textHeight   = 0.5
	textPadding  = 2
)

type effect struct {
	mesh     *Mesh
	age      float64
	duration float64
	opacity  float64
	rise     float64
	owned    bool // Geometry and texture are disposed on removal
}

// Effects runs short fade-out effects attached under a root node. Update
// advances them by the frame time, normally Clock.Delta, and removes each
// effect from the tree once it has faded.
type Effects struct {
	root   Object
	active []*effect
}

// NewEffects returns an effect runner that attaches to root.
func NewEffects(root Object) *Effects {
	return &Effects{root: root}
}

// Active returns the number of running effects.
func (fx *Effects) Active() int {
	return len(fx.active)
}

// Ghost adds an unlit translucent copy of m with m's local transform. The
// copy shares m's geometry and fades to nothing over duration seconds.
func (fx *Effects) Ghost(m *Mesh, duration float64) *Mesh {
	if m == nil || m.Geometry == nil || m.Material == nil {
		return nil
	}
	mat := NewBasicMaterial(m.Material.Color)
	mat.Opacity = ghostOpacity
	mat.Transparent = true
	ghost := NewMesh(m.Geometry, mat)
	ghost.Name = m.Name + " ghost"
	ghost.Position, ghost.Rotation, ghost.Scale = m.Position, m.Rotation, m.Scale
	return fx.start(&effect{mesh: ghost, duration: duration, opacity: ghostOpacity})
}

// FloatingText adds a label above pos that rises and fades out over one
// second. The label is a plane tilted back toward a camera looking down.
func (fx *Effects) FloatingText(text string, pos math3d.Vec3, c math3d.Color) *Mesh {
	img := TextImage(text, c)
	tex := NewTexture(img)
	tex.Repeat = false
	mat := NewBasicMaterial(math3d.RGB(1, 1, 1))
	mat.Map = tex
	mat.Transparent = true
	mat.DoubleSided = true

	b := img.Bounds()
	w := textHeight * float64(b.Dx()) / float64(b.Dy())
	label := NewMesh(geometry.Plane(w, textHeight), mat)
	label.Name = text
	label.Position = pos.Add(math3d.V3(0, textLift, 0))
	label.Rotation = math3d.E(-math.Pi/4, 0, 0)
	return fx.start(&effect{mesh: label, duration: textDuration, opacity: 1, rise: textRise, owned: true})
}

func (fx *Effects) start(e *effect) *Mesh {
	if fx.root == nil {
		return nil
	}
	if err := fx.root.Base().Add(e.mesh); err != nil {
		return nil
	}
	fx.active = append(fx.active, e)
	return e.mesh
}

// Update ages every effect by dt seconds. Finished effects are detached;
// resources created by the effect itself are disposed.
func (fx *Effects) Update(dt float64) {
	live := fx.active[:0]
	for _, e := range fx.active {
		e.age += dt
		if e.age >= e.duration {
			e.mesh.RemoveFromParent()
			if e.owned {
				e.mesh.Geometry.Dispose()
				if e.mesh.Material.Map != nil {
					e.mesh.Material.Map.Dispose()
				}
			}
			continue
		}
		e.mesh.Material.Opacity = e.opacity * (1 - e.age/e.duration)
		e.mesh.Position.Y += e.rise * dt
		live = append(live, e)
	}
	clear(fx.active[len(live):])
	fx.active = live
}

// TextImage renders text in a 7x13 bitmap font on a transparent
// background with a small margin.
func TextImage(text string, c math3d.Color) *image.RGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	height := metrics.Height.Ceil()

	img := image.NewRGBA(image.Rect(0, 0, max(width, 1)+2*textPadding, height+2*textPadding))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c.RGBA(1)),
		Face: face,
		Dot:  fixed.P(textPadding, textPadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	return img
}
