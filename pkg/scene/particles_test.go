package scene

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/speedr/pkg/math3d"
)

func TestParticleSystem(t *testing.T) {
	ps := NewParticleSystem(4, 60, nil)
	assert.Equal(t, KindPoints, ps.Kind())
	require.NoError(t, ps.Geometry.Validate())

	for range 4 {
		assert.True(t, ps.Spawn(math3d.V3(1, 1, 1), math3d.V3(0, 5, 0), 0.5))
	}
	assert.False(t, ps.Spawn(math3d.Zero3(), math3d.Zero3(), 1), "pool is full")

	v := ps.Geometry.Version()
	ps.Update(0.1)
	assert.Equal(t, v+1, ps.Geometry.Version())
	assert.Equal(t, 4, ps.Alive())

	p := ps.Geometry.Position().Vec3(0)
	assert.Greater(t, p.Y, 1.0, "particle moved up")
	assert.InDelta(t, 1, p.X, 1e-6)

	ps.Update(1)
	assert.Zero(t, ps.Alive())
	for _, f := range ps.Geometry.Position().Array {
		assert.Zero(t, f)
	}

	_, isRenderable := Object(ps).(Renderable)
	assert.True(t, isRenderable)
}

func TestParticleSystemBadArguments(t *testing.T) {
	var ps *ParticleSystem
	require.NotPanics(t, func() { ps = NewParticleSystem(8, 0, nil) })
	assert.Equal(t, 8, ps.Capacity())
	assert.True(t, ps.Spawn(math3d.Zero3(), math3d.V3(0, 1, 0), 5))
	require.NotPanics(t, func() { ps.Update(2.5) })
	assert.Equal(t, 1, ps.Alive())

	empty := NewParticleSystem(-3, 60, nil)
	assert.Zero(t, empty.Capacity())
	assert.False(t, empty.Spawn(math3d.Zero3(), math3d.Zero3(), 1))

	shrunk := NewParticleSystem(4, 60, nil)
	for range 4 {
		shrunk.Spawn(math3d.V3(1, 0, 0), math3d.Zero3(), 1)
	}
	shrunk.Geometry.SetAttribute("position", make([]float32, 6), 3)
	require.NotPanics(t, func() { shrunk.Update(0.05) })
	assert.Equal(t, 2, shrunk.Geometry.Count())
}

func TestTextureVersioning(t *testing.T) {
	tex := NewTexture(nil)
	assert.False(t, tex.Loaded())
	assert.Zero(t, tex.Version())

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	tex.SetImage(img)
	assert.True(t, tex.Loaded())
	assert.Equal(t, uint64(1), tex.Version())

	tex.NeedsUpdate()
	got, v := tex.Image()
	assert.Same(t, img, got)
	assert.Equal(t, uint64(2), v)

	assert.NotEqual(t, tex.ID(), NewTexture(img).ID())
}

func TestLoadTextureMissingFile(t *testing.T) {
	tex := LoadTexture(t.TempDir() + "/missing.png")
	assert.Eventually(t, func() bool { return tex.Err() != nil }, time.Second, time.Millisecond)
	assert.False(t, tex.Loaded())
}

func TestMaterials(t *testing.T) {
	m := NewPhongMaterial(math3d.Hex(0xff0000), 30)
	assert.Equal(t, MaterialPhong, m.Kind)
	assert.Equal(t, 1.0, m.Opacity)
	assert.True(t, m.Lit())
	assert.False(t, NewBasicMaterial(math3d.Color{}).Lit())
	assert.Equal(t, 3.0, NewPointsMaterial(math3d.Color{}, 3).Size)
}
