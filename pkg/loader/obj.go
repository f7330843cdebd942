package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
)

type objCorner struct {
	v, vt, vn int // Zero-based; -1 when absent
}

type objParser struct {
	positions []math3d.Vec3
	uvs       []math3d.Vec2
	normals   []math3d.Vec3
	out       triangles
}

// ParseOBJ reads Wavefront OBJ text. It understands v, vt, vn and f
// statements; polygons are fan-triangulated and indices may be negative
// (relative to the end of the list so far). Other statements are ignored.
// Faces without normals get flat normals and missing texture coordinates
// read as (0, 0).
func ParseOBJ(r io.Reader) (*geometry.Geometry, error) {
	return parseOBJ(r, "obj")
}

// LoadOBJ parses the OBJ file at path.
func LoadOBJ(path string) (*geometry.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()
	return parseOBJ(f, filepath.Base(path))
}

func parseOBJ(r io.Reader, name string) (*geometry.Geometry, error) {
	var p objParser
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := p.statement(fields[0], fields[1:]); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrSyntax, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	return p.out.geometry(name)
}

func (p *objParser) statement(kw string, args []string) error {
	switch kw {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math3d.V3(v[0], v[1], v[2]))
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math3d.V3(v[0], v[1], v[2]).Normalize())
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, math3d.V2(v[0], v[1]))
	case "f":
		return p.face(args)
	}
	return nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", args[i])
		}
		out[i] = f
	}
	return out, nil
}

func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs 3 vertices, got %d", len(args))
	}
	corners := make([]objCorner, len(args))
	for i, a := range args {
		c, err := p.corner(a)
		if err != nil {
			return err
		}
		corners[i] = c
	}
	for i := 1; i+1 < len(corners); i++ {
		p.emit(corners[0], corners[i], corners[i+1])
	}
	return nil
}

// corner parses v, v/t, v//n or v/t/n.
func (p *objParser) corner(s string) (objCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("bad face vertex %q", s)
	}
	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolveIndex(parts[0], len(p.positions)); err != nil || c.v < 0 {
		return objCorner{}, fmt.Errorf("bad vertex index in %q", s)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolveIndex(parts[1], len(p.uvs)); err != nil || c.vt < 0 {
			return objCorner{}, fmt.Errorf("bad texture index in %q", s)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil || c.vn < 0 {
			return objCorner{}, fmt.Errorf("bad normal index in %q", s)
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative OBJ index into a zero-based
// index into a list of length n, or -1 if it is out of range.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return -1, nil
	}
}

func (p *objParser) emit(a, b, c objCorner) {
	tri := [3]objCorner{a, b, c}
	pos := [3]math3d.Vec3{p.positions[a.v], p.positions[b.v], p.positions[c.v]}
	flat := pos[1].Sub(pos[0]).Cross(pos[2].Sub(pos[0])).Normalize()
	for i, k := range tri {
		n := flat
		if k.vn >= 0 {
			n = p.normals[k.vn]
		}
		var uv math3d.Vec2
		if k.vt >= 0 {
			uv = p.uvs[k.vt]
		}
		p.out.corner(pos[i], n, uv)
	}
}
