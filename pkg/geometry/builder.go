package geometry

import "github.com/taigrr/speedr/pkg/math3d"

// indexed collects shared vertices plus a triangle index list. Generators
// build their grids here and expand to the flat layout at the end.
type indexed struct {
	pos  []math3d.Vec3
	norm []math3d.Vec3
	uv   []math3d.Vec2
	idx  []int
}

func (m *indexed) vertex(p, n math3d.Vec3, uv math3d.Vec2) int {
	m.pos = append(m.pos, p)
	m.norm = append(m.norm, n)
	m.uv = append(m.uv, uv)
	return len(m.pos) - 1
}

func (m *indexed) tri(a, b, c int) {
	m.idx = append(m.idx, a, b, c)
}

// quad splits the grid cell a-b-c-d into (a,b,d) and (b,c,d).
func (m *indexed) quad(a, b, c, d int) {
	m.tri(a, b, d)
	m.tri(b, c, d)
}

// flatten expands the index list so every triangle owns its vertices.
func (m *indexed) flatten(params Params) *Geometry {
	n := len(m.idx)
	pos := make([]float32, 0, n*3)
	norm := make([]float32, 0, n*3)
	uv := make([]float32, 0, n*2)
	for _, i := range m.idx {
		p, nn, t := m.pos[i], m.norm[i], m.uv[i]
		pos = append(pos, float32(p.X), float32(p.Y), float32(p.Z))
		norm = append(norm, float32(nn.X), float32(nn.Y), float32(nn.Z))
		uv = append(uv, float32(t.X), float32(t.Y))
	}
	return build(params, pos, norm, uv)
}

// flat accumulates independent triangle vertices.
type flat struct {
	pos, norm, uv []float32
}

func (f *flat) vertex(p, n math3d.Vec3, uv math3d.Vec2) {
	f.pos = append(f.pos, float32(p.X), float32(p.Y), float32(p.Z))
	f.norm = append(f.norm, float32(n.X), float32(n.Y), float32(n.Z))
	f.uv = append(f.uv, float32(uv.X), float32(uv.Y))
}

func (f *flat) build(params Params) *Geometry {
	return build(params, f.pos, f.norm, f.uv)
}

func build(params Params, pos, norm, uv []float32) *Geometry {
	g := New()
	g.Name = params.Kind
	g.Params = params
	g.attributes[AttrPosition] = &Attribute{Array: pos, ItemSize: 3}
	g.attributes[AttrNormal] = &Attribute{Array: norm, ItemSize: 3}
	g.attributes[AttrUV] = &Attribute{Array: uv, ItemSize: 2}
	g.version = 1
	return g
}
