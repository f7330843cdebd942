package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 2
usemtl none
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuad(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)
	require.NoError(t, g.ValidateTriangles())
	assert.Equal(t, 6, g.Count())

	pos, n, uv := g.Vertex(4)
	assert.Equal(t, math3d.V3(1, 1, 0), pos)
	assert.Equal(t, math3d.V3(0, 0, 1), n, "normals are normalized")
	assert.Equal(t, math3d.V2(1, 1), uv)

	b := g.BoundingBox()
	assert.Equal(t, math3d.V3(0, 0, 0), b.Min)
	assert.Equal(t, math3d.V3(1, 1, 0), b.Max)
}

func TestParseOBJDefaults(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	g, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	for i := range g.Count() {
		_, n, uv := g.Vertex(i)
		assert.True(t, n.ApproxEqual(math3d.V3(0, 0, 1), 1e-9), "flat normal, got %v", n)
		assert.Equal(t, math3d.V2(0, 0), uv)
	}
}

func TestParseOBJIndexForms(t *testing.T) {
	tests := []struct {
		name string
		face string
	}{
		{"positions only", "f 1 2 3"},
		{"with uv", "f 1/1 2/1 3/1"},
		{"with normal", "f 1//1 2//1 3//1"},
		{"full", "f 1/1/1 2/1/1 3/1/1"},
		{"negative", "f -3/-1/-1 -2/-1/-1 -1/-1/-1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0.5 0.5\nvn 0 0 1\n" + tc.face + "\n"
			g, err := ParseOBJ(strings.NewReader(src))
			require.NoError(t, err)
			assert.Equal(t, 3, g.Count())
			p, _, _ := g.Vertex(1)
			assert.Equal(t, math3d.V3(1, 0, 0), p)
		})
	}
}

func TestParseOBJFanTriangulation(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 2 1 0\nv 1 2 0\nv 0 1 0\nf 1 2 3 4 5\n"
	g, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, g.TriangleCount())
	for tri := range 3 {
		p, _, _ := g.Vertex(tri * 3)
		assert.Equal(t, math3d.V3(0, 0, 0), p, "fan shares the first vertex")
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
	}{
		{"short vertex", "v 1 2\n", "line 1"},
		{"bad number", "v 0 0 0\nv a b c\n", "line 2"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", "line 3"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n", "line 4"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "line 4"},
		{"missing uv", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n", "line 4"},
		{"bad form", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1/1 2 3\n", "line 4"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tc.src))
			require.ErrorIs(t, err, ErrSyntax)
			assert.Contains(t, err.Error(), tc.line)
		})
	}
}

func TestParseOBJEmpty(t *testing.T) {
	_, err := ParseOBJ(strings.NewReader("# nothing\nv 0 0 0\n"))
	assert.ErrorIs(t, err, ErrNoTriangles)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.OBJ")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quad.OBJ", m.Geometry.Name)
	assert.Equal(t, math3d.RGB(1, 1, 1), m.BaseColor)
	assert.Nil(t, m.Texture)

	mesh := m.Mesh()
	assert.Same(t, m.Geometry, mesh.Geometry)
	assert.Nil(t, mesh.Material.Map)
	assert.True(t, mesh.Material.Lit())

	_, err = Load(filepath.Join(dir, "model.stl"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = LoadOBJ(filepath.Join(dir, "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFit(t *testing.T) {
	g := geometry.Box(4, 2, 1)
	pos := g.Position()
	for i := range pos.Count() {
		pos.SetVec3(i, pos.Vec3(i).Add(math3d.V3(10, 5, 0)))
	}
	g.Bump()
	v := g.Version()

	Fit(g, 2)
	b := g.BoundingBox()
	assert.True(t, b.Center().ApproxEqual(math3d.Zero3(), 1e-6))
	assert.True(t, b.Size().ApproxEqual(math3d.V3(2, 1, 0.5), 1e-6))
	assert.Greater(t, g.Version(), v)

	Fit(geometry.New(), 2)
}
