package scene

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/speedr/pkg/geometry"
	"github.com/taigrr/speedr/pkg/math3d"
)

type particle struct {
	proj *harmonica.Projectile
	pos  math3d.Vec3
	life float64
}

// ParticleSystem is a Points object backed by a fixed pool of ballistic
// particles. Each Update writes live particle positions into the geometry,
// parks dead slots at the origin and bumps the geometry version.
//
// Particles advance in fixed steps of 1/fps seconds; Update accumulates
// frame time and runs as many steps as fit.
type ParticleSystem struct {
	Points

	Gravity math3d.Vec3

	capacity  int
	step      float64
	remainder float64
	particles []particle
}

// NewParticleSystem returns an empty system holding up to capacity particles, stepping at
// fps updates per second. A non-positive fps steps once per second.
func NewParticleSystem(capacity, fps int, m *Material) *ParticleSystem {
	capacity, fps = max(capacity, 0), max(fps, 1)
	if m == nil {
		m = NewPointsMaterial(math3d.Hex(0xffffff), 2)
	}
	g := geometry.New()
	g.Name = "particles"
	g.SetAttribute(geometry.AttrPosition, make([]float32, capacity*3), 3)

	ps := &ParticleSystem{
		Points:    Points{Geometry: g, Material: m},
		Gravity:   math3d.V3(0, -9.81, 0),
		capacity:  capacity,
		step:      harmonica.FPS(fps),
		particles: make([]particle, 0, capacity),
	}
	ps.init(ps)
	return ps
}

// Spawn emits a particle at pos with velocity vel that lives for life
// seconds. It returns false when the pool is full.
func (ps *ParticleSystem) Spawn(pos, vel math3d.Vec3, life float64) bool {
	if len(ps.particles) >= ps.capacity {
		return false
	}
	proj := harmonica.NewProjectile(
		ps.step,
		harmonica.Point{X: pos.X, Y: pos.Y, Z: pos.Z},
		harmonica.Vector{X: vel.X, Y: vel.Y, Z: vel.Z},
		harmonica.Vector{X: ps.Gravity.X, Y: ps.Gravity.Y, Z: ps.Gravity.Z},
	)
	ps.particles = append(ps.particles, particle{proj: proj, pos: pos, life: life})
	return true
}

// Capacity returns the pool size.
func (ps *ParticleSystem) Capacity() int {
	return ps.capacity
}

// Alive returns the number of live particles.
func (ps *ParticleSystem) Alive() int {
	return len(ps.particles)
}

// Update advances the simulation by dt seconds and rewrites the geometry.
func (ps *ParticleSystem) Update(dt float64) {
	ps.remainder += dt
	for ps.remainder >= ps.step {
		ps.remainder -= ps.step
		live := ps.particles[:0]
		for _, p := range ps.particles {
			p.life -= ps.step
			if p.life <= 0 {
				continue
			}
			pt := p.proj.Update()
			p.pos = math3d.V3(pt.X, pt.Y, pt.Z)
			live = append(live, p)
		}
		ps.particles = live
	}

	if ps.Geometry == nil {
		return
	}
	pos := ps.Geometry.Position()
	if pos == nil {
		return
	}
	clear(pos.Array)
	for i, p := range ps.particles[:min(len(ps.particles), pos.Count())] {
		pos.SetVec3(i, p.pos)
	}
	ps.Geometry.Bump()
}
