// Package geometry holds flat, non-indexed triangle buffers and the
// procedural generators that produce them.
//
// Every triangle vertex is an independent entry in each attribute buffer.
// Attributes are float32 slices with a fixed stride: 3 for position and
// normal, 2 for uv.
package geometry

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/taigrr/speedr/pkg/math3d"
)

// Standard attribute names.
const (
	AttrPosition = "position"
	AttrNormal   = "normal"
	AttrUV       = "uv"
)

var (
	// ErrMissingPosition is returned when a geometry has no position attribute.
	ErrMissingPosition = errors.New("geometry: missing position attribute")
	// ErrItemSize is returned for a non-positive or non-standard item size.
	ErrItemSize = errors.New("geometry: invalid item size")
	// ErrAttributeLength is returned when a buffer length is not a multiple of its item size.
	ErrAttributeLength = errors.New("geometry: attribute length not a multiple of item size")
	// ErrCountMismatch is returned when attributes disagree on vertex count.
	ErrCountMismatch = errors.New("geometry: attribute counts differ")
	// ErrNotTriangles is returned when the vertex count is not a multiple of 3.
	ErrNotTriangles = errors.New("geometry: vertex count not a multiple of 3")
)

var standardItemSize = map[string]int{
	AttrPosition: 3,
	AttrNormal:   3,
	AttrUV:       2,
}

var lastID atomic.Uint64

// Attribute is a flat float buffer with a fixed stride.
type Attribute struct {
	Array    []float32
	ItemSize int
}

// Count returns the number of items in the buffer.
func (a *Attribute) Count() int {
	if a == nil || a.ItemSize <= 0 {
		return 0
	}
	return len(a.Array) / a.ItemSize
}

// Vec3 reads item i as a 3-vector.
func (a *Attribute) Vec3(i int) math3d.Vec3 {
	o := i * a.ItemSize
	return math3d.V3(float64(a.Array[o]), float64(a.Array[o+1]), float64(a.Array[o+2]))
}

// Vec2 reads item i as a 2-vector.
func (a *Attribute) Vec2(i int) math3d.Vec2 {
	o := i * a.ItemSize
	return math3d.V2(float64(a.Array[o]), float64(a.Array[o+1]))
}

// SetVec3 writes item i.
func (a *Attribute) SetVec3(i int, v math3d.Vec3) {
	o := i * a.ItemSize
	a.Array[o], a.Array[o+1], a.Array[o+2] = float32(v.X), float32(v.Y), float32(v.Z)
}

// Params records the dimensions a generator was called with.
// They are informational; bounds are always computed from the buffers.
type Params struct {
	Kind   string
	Width  float64
	Height float64
	Depth  float64
	Radius float64
}

// Geometry is a set of named attribute buffers describing a triangle list.
//
// Attribute arrays are owned by the geometry. Code that mutates an array in
// place must call Bump so caches keyed on the geometry notice the change.
type Geometry struct {
	Name   string
	Params Params

	id         uint64
	attributes map[string]*Attribute
	version    uint64

	bounds        math3d.Box3
	boundsVersion uint64
	boundsValid   bool

	disposed  bool
	onDispose []func(*Geometry)
}

// New returns an empty geometry with a fresh process-unique ID.
func New() *Geometry {
	return &Geometry{
		id:         lastID.Add(1),
		attributes: make(map[string]*Attribute),
	}
}

// ID returns the stable identity of g.
func (g *Geometry) ID() uint64 {
	return g.id
}

// SetAttribute stores array under name and bumps the version.
// The geometry takes ownership of array.
func (g *Geometry) SetAttribute(name string, array []float32, itemSize int) {
	g.attributes[name] = &Attribute{Array: array, ItemSize: itemSize}
	g.Bump()
}

// Attribute returns the named buffer or nil.
func (g *Geometry) Attribute(name string) *Attribute {
	return g.attributes[name]
}

// DeleteAttribute removes the named buffer.
func (g *Geometry) DeleteAttribute(name string) {
	if _, ok := g.attributes[name]; ok {
		delete(g.attributes, name)
		g.Bump()
	}
}

// Position, Normal and UV are shorthands for the standard attributes.
func (g *Geometry) Position() *Attribute { return g.attributes[AttrPosition] }
func (g *Geometry) Normal() *Attribute   { return g.attributes[AttrNormal] }
func (g *Geometry) UV() *Attribute       { return g.attributes[AttrUV] }

// Count returns the number of vertices, taken from the position buffer.
func (g *Geometry) Count() int {
	return g.Position().Count()
}

// TriangleCount returns Count()/3.
func (g *Geometry) TriangleCount() int {
	return g.Count() / 3
}

// Version returns the mutation generation.
func (g *Geometry) Version() uint64 {
	return g.version
}

// Bump marks the buffers as modified.
func (g *Geometry) Bump() {
	g.version++
}

// Validate checks the buffer layout contract: a position buffer exists,
// every buffer has a sane stride, and all buffers hold the same number of
// items.
func (g *Geometry) Validate() error {
	pos := g.Position()
	if pos == nil {
		return ErrMissingPosition
	}
	for name, attr := range g.attributes {
		if attr.ItemSize <= 0 {
			return fmt.Errorf("%w: %s has item size %d", ErrItemSize, name, attr.ItemSize)
		}
		if want, ok := standardItemSize[name]; ok && attr.ItemSize != want {
			return fmt.Errorf("%w: %s has item size %d, want %d", ErrItemSize, name, attr.ItemSize, want)
		}
		if len(attr.Array)%attr.ItemSize != 0 {
			return fmt.Errorf("%w: %s has %d floats for item size %d", ErrAttributeLength, name, len(attr.Array), attr.ItemSize)
		}
		if attr.Count() != pos.Count() {
			return fmt.Errorf("%w: %s has %d items, position has %d", ErrCountMismatch, name, attr.Count(), pos.Count())
		}
	}
	return nil
}

// ValidateTriangles is Validate plus a check that the vertices form whole
// triangles.
func (g *Geometry) ValidateTriangles() error {
	if err := g.Validate(); err != nil {
		return err
	}
	if n := g.Count(); n%3 != 0 {
		return fmt.Errorf("%w: %d vertices", ErrNotTriangles, n)
	}
	return nil
}

// BoundingBox returns the exact extents of the position buffer.
// The result is cached until the next Bump.
func (g *Geometry) BoundingBox() math3d.Box3 {
	if g.boundsValid && g.boundsVersion == g.version {
		return g.bounds
	}
	b := math3d.EmptyBox3()
	if pos := g.Position(); pos != nil {
		for i := range pos.Count() {
			b = b.ExpandByPoint(pos.Vec3(i))
		}
	}
	g.bounds, g.boundsVersion, g.boundsValid = b, g.version, true
	return b
}

// Vertex returns the attributes of vertex i. Missing normal or uv buffers
// read as zero.
func (g *Geometry) Vertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	pos = g.Position().Vec3(i)
	if n := g.Normal(); n != nil {
		normal = n.Vec3(i)
	}
	if t := g.UV(); t != nil {
		uv = t.Vec2(i)
	}
	return pos, normal, uv
}

// ComputeFlatNormals replaces the normal buffer with per-face normals.
func (g *Geometry) ComputeFlatNormals() {
	pos := g.Position()
	if pos == nil {
		return
	}
	normals := make([]float32, pos.Count()*3)
	n := &Attribute{Array: normals, ItemSize: 3}
	for tri := 0; tri+2 < pos.Count(); tri += 3 {
		a, b, c := pos.Vec3(tri), pos.Vec3(tri+1), pos.Vec3(tri+2)
		fn := b.Sub(a).Cross(c.Sub(a)).Normalize()
		n.SetVec3(tri, fn)
		n.SetVec3(tri+1, fn)
		n.SetVec3(tri+2, fn)
	}
	g.SetAttribute(AttrNormal, normals, 3)
}

// Clone returns a deep copy with a new ID.
func (g *Geometry) Clone() *Geometry {
	c := New()
	c.Name = g.Name
	c.Params = g.Params
	for name, attr := range g.attributes {
		c.attributes[name] = &Attribute{
			Array:    append([]float32(nil), attr.Array...),
			ItemSize: attr.ItemSize,
		}
	}
	c.version = 1
	return c
}

// OnDispose registers fn to run when g is disposed.
func (g *Geometry) OnDispose(fn func(*Geometry)) {
	g.onDispose = append(g.onDispose, fn)
}

// Dispose runs the dispose hooks once. The buffers stay readable.
func (g *Geometry) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	hooks := g.onDispose
	g.onDispose = nil
	for _, fn := range hooks {
		fn(g)
	}
}

// Disposed reports whether Dispose was called.
func (g *Geometry) Disposed() bool {
	return g.disposed
}
