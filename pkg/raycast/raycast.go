// Package raycast picks scene objects with rays tested against their
// world-space bounding boxes.
package raycast

import (
	"cmp"
	"math"
	"slices"

	"github.com/taigrr/speedr/pkg/math3d"
	"github.com/taigrr/speedr/pkg/scene"
)

// Ray is a half-line. Direction should be unit length for hit distances to
// be in world units.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.AddScaled(r.Direction, t)
}

// IntersectBox returns the entry distance of r into b. A ray starting inside
// the box reports the exit distance instead. Boxes entirely behind the
// origin miss, as does a ray with a zero or non-finite direction.
func (r Ray) IntersectBox(b math3d.Box3) (float64, bool) {
	if b.IsEmpty() || r.Direction.LenSq() == 0 || !r.Direction.IsFinite() || !r.Origin.IsFinite() {
		return 0, false
	}
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for axis := range 3 {
		o := r.Origin.Component(axis)
		d := r.Direction.Component(axis)
		lo, hi := b.Min.Component(axis), b.Max.Component(axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t0, t1 := (lo-o)*inv, (hi-o)*inv
		if inv < 0 {
			t0, t1 = t1, t0
		}
		tmin = max(tmin, t0)
		tmax = min(tmax, t1)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	t := tmax
	if tmin >= 0 {
		t = tmin
	}
	if math.IsInf(t, 0) || math.IsNaN(t) {
		return 0, false
	}
	return t, true
}

// Hit is one ray intersection.
type Hit struct {
	Distance float64
	Point    math3d.Vec3
	Object   scene.Object
}

// Raycaster casts a ray against objects. Hits closer than Near or farther
// than Far are dropped.
type Raycaster struct {
	Ray  Ray
	Near float64
	Far  float64
}

// New returns a raycaster for r with an unbounded range.
func New(r Ray) *Raycaster {
	return &Raycaster{Ray: r, Far: math.Inf(1)}
}

// SetFromCamera aims the ray from the camera through coord, given in
// normalized device coordinates (x and y in [-1, 1], y up).
//
// The camera's world matrix must be current.
func (rc *Raycaster) SetFromCamera(coord math3d.Vec2, cam *scene.PerspectiveCamera) {
	near := cam.Unproject(math3d.V3(coord.X, coord.Y, -1))
	far := cam.Unproject(math3d.V3(coord.X, coord.Y, 1))
	rc.Ray.Origin = cam.WorldPosition()
	rc.Ray.Direction = far.Sub(near).Normalize()
	if rc.Far == 0 {
		rc.Far = math.Inf(1)
	}
}

// IntersectObject tests obj and, when recursive, its descendants.
// Results are sorted nearest first; no hits gives nil.
func (rc *Raycaster) IntersectObject(obj scene.Object, recursive bool) []Hit {
	var hits []Hit
	rc.intersect(obj, recursive, &hits)
	sortHits(hits)
	return hits
}

// IntersectObjects is IntersectObject over several roots with one sorted
// result.
func (rc *Raycaster) IntersectObjects(objs []scene.Object, recursive bool) []Hit {
	var hits []Hit
	for _, obj := range objs {
		rc.intersect(obj, recursive, &hits)
	}
	sortHits(hits)
	return hits
}

// IntersectBox reports where the ray enters b, honoring Near and Far.
func (rc *Raycaster) IntersectBox(b math3d.Box3) (math3d.Vec3, bool) {
	t, ok := rc.Ray.IntersectBox(b)
	if !ok || !rc.inRange(t) {
		return math3d.Vec3{}, false
	}
	return rc.Ray.At(t), true
}

func (rc *Raycaster) intersect(obj scene.Object, recursive bool, hits *[]Hit) {
	if obj == nil {
		return
	}
	n := obj.Base()
	if !n.Visible {
		return
	}
	if r, ok := obj.(scene.Renderable); ok {
		if g, _ := r.Drawable(); g != nil && g.Position() != nil {
			box := g.BoundingBox().ApplyMat4(n.WorldMatrix())
			if t, ok := rc.Ray.IntersectBox(box); ok && rc.inRange(t) {
				*hits = append(*hits, Hit{Distance: t, Point: rc.Ray.At(t), Object: obj})
			}
		}
	}
	if !recursive {
		return
	}
	for _, c := range n.Children() {
		rc.intersect(c, true, hits)
	}
}

func (rc *Raycaster) inRange(t float64) bool {
	far := rc.Far
	if far == 0 {
		far = math.Inf(1)
	}
	return t >= rc.Near && t <= far
}

func sortHits(hits []Hit) {
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
}
