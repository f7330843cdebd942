package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/speedr/pkg/math3d"
)

// writeTriangleGLB saves a single indexed triangle with a red base color
// and, if withImage is set, an embedded 2x2 PNG.
func writeTriangleGLB(t *testing.T, withImage bool) string {
	t.Helper()
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}}),
		},
		Material: gltf.Index(0),
	}
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0, 0, 1}}
	if withImage {
		src := image.NewRGBA(image.Rect(0, 0, 2, 2))
		src.Set(0, 0, color.RGBA{0, 255, 0, 255})
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, src))
		imgIdx, err := modeler.WriteImage(doc, "albedo", "image/png", &buf)
		require.NoError(t, err)
		doc.Textures = []*gltf.Texture{{Source: gltf.Index(imgIdx)}}
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: 0}
	}
	doc.Materials = []*gltf.Material{{Name: "red", PBRMetallicRoughness: pbr}}
	doc.Meshes = []*gltf.Mesh{{Name: "tri", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestLoadGLB(t *testing.T) {
	path := writeTriangleGLB(t, false)
	m, err := LoadGLB(path)
	require.NoError(t, err)

	g := m.Geometry
	require.NoError(t, g.ValidateTriangles())
	assert.Equal(t, 3, g.Count())
	assert.Equal(t, "tri.glb", g.Name)
	assert.Equal(t, math3d.RGB(1, 0, 0), m.BaseColor)
	assert.Nil(t, m.Texture)

	_, n, uv := g.Vertex(1)
	assert.True(t, n.ApproxEqual(math3d.V3(0, 0, 1), 1e-6), "smooth normal, got %v", n)
	assert.True(t, uv.Sub(math3d.V2(1, 1)).Len() < 1e-6, "v is flipped, got %v", uv)
}

func TestLoadGLBEmbeddedImage(t *testing.T) {
	path := writeTriangleGLB(t, true)
	m, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, m.Texture)
	assert.Equal(t, image.Rect(0, 0, 2, 2), m.Texture.Bounds())

	mesh := m.Mesh()
	require.NotNil(t, mesh.Material.Map)
	assert.True(t, mesh.Material.Map.Loaded())
}

func TestLoadGLTFMissing(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.Error(t, err)
}

func TestSmoothNormals(t *testing.T) {
	// Two triangles folded along the x axis share vertices 0 and 1.
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	indices := []uint32{0, 1, 2, 1, 0, 3}
	n := smoothNormals(positions, indices)
	want := math3d.V3(0, 1, 1).Normalize()
	assert.True(t, n[0].ApproxEqual(want, 1e-9), "shared vertex, got %v", n[0])
	assert.True(t, n[2].ApproxEqual(math3d.V3(0, 0, 1), 1e-9))
	assert.True(t, n[3].ApproxEqual(math3d.V3(0, 1, 0), 1e-9))
}
