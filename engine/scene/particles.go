package scene

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is the axis-aligned box particles bounce inside.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Contains reports whether p lies inside b, walls included.
func (b Bounds) Contains(p mgl32.Vec3) bool {
	for i := range 3 {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

type particle struct {
	position mgl32.Vec3
	// velocity is the distance moved per step.
	velocity mgl32.Vec3
	axis     mgl32.Vec3
	angle    float32
	color    mgl32.Vec4
}

// step advances p one frame step, reflecting off the walls of b, and spins it around its axis.
func (p *particle) step(b Bounds, spin float32) {
	p.position = p.position.Add(p.velocity)
	for i := range 3 {
		switch {
		case p.position[i] < b.Min[i]:
			p.position[i] = 2*b.Min[i] - p.position[i]
			p.velocity[i] = -p.velocity[i]
		case p.position[i] > b.Max[i]:
			p.position[i] = 2*b.Max[i] - p.position[i]
			p.velocity[i] = -p.velocity[i]
		}
		p.position[i] = min(max(p.position[i], b.Min[i]), b.Max[i])
	}
	p.angle = float32(math.Mod(float64(p.angle+spin), 2*math.Pi))
}

func (p *particle) instance(size float32) gpuInstance {
	model := mgl32.Translate3D(p.position.Elem()).
		Mul4(mgl32.HomogRotate3D(p.angle, p.axis)).
		Mul4(mgl32.Scale3D(size, size, size))
	return gpuInstance{Model: model, Color: p.color}
}

// particleSystem owns the particles and decides when new ones appear.
type particleSystem struct {
	bounds        Bounds
	emitter       mgl32.Vec3
	speed         float32
	spin          float32
	maxParticles  int
	spawnInterval float64

	rng       *rand.Rand
	particles []particle
	lastSpawn float64
	started   bool
}

func newParticleSystem(seed int64, bounds Bounds, emitter mgl32.Vec3, speed, spin float32, maxParticles int, spawnInterval float64) *particleSystem {
	for i := range 3 {
		emitter[i] = min(max(emitter[i], bounds.Min[i]), bounds.Max[i])
	}
	return &particleSystem{
		bounds:        bounds,
		emitter:       emitter,
		speed:         speed,
		spin:          spin,
		maxParticles:  maxParticles,
		spawnInterval: spawnInterval,
		rng:           rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		particles:     make([]particle, 0, maxParticles),
	}
}

// spawn adds up to n particles without exceeding the cap and returns how many were added.
func (s *particleSystem) spawn(n int) int {
	added := 0
	for ; added < n && len(s.particles) < s.maxParticles; added++ {
		s.particles = append(s.particles, s.newParticle())
	}
	return added
}

// tick spawns the particles due at now. The first call only starts the clock.
func (s *particleSystem) tick(now float64) int {
	if !s.started {
		s.started = true
		s.lastSpawn = now
		return 0
	}
	if s.spawnInterval <= 0 {
		return 0
	}
	if len(s.particles) >= s.maxParticles {
		s.lastSpawn = now
		return 0
	}

	added := 0
	for now-s.lastSpawn >= s.spawnInterval && len(s.particles) < s.maxParticles {
		added += s.spawn(1)
		s.lastSpawn += s.spawnInterval
	}
	return added
}

// stepRange advances particles [lo, hi). Disjoint ranges may run concurrently.
func (s *particleSystem) stepRange(lo, hi int) {
	for i := lo; i < hi; i++ {
		s.particles[i].step(s.bounds, s.spin)
	}
}

// newParticle leaves the emitter heading upward or level.
func (s *particleSystem) newParticle() particle {
	heading := s.unitVector()
	heading[1] = float32(math.Abs(float64(heading[1])))
	hue := s.rng.Float32()
	r, g, b := hsvToRGB(hue, 0.7, 0.95)
	return particle{
		position: s.emitter,
		velocity: heading.Mul(s.speed),
		axis:     s.unitVector(),
		angle:    s.rng.Float32() * 2 * math.Pi,
		color:    mgl32.Vec4{r, g, b, 1},
	}
}

func (s *particleSystem) unitVector() mgl32.Vec3 {
	for {
		v := mgl32.Vec3{float32(s.rng.NormFloat64()), float32(s.rng.NormFloat64()), float32(s.rng.NormFloat64())}
		if l := v.Len(); l > 1e-6 {
			return v.Mul(1 / l)
		}
	}
}

// chunks splits n items into at most parts contiguous [lo, hi) ranges of near-equal size.
func chunks(n, parts int) [][2]int {
	if n <= 0 {
		return nil
	}
	parts = max(min(parts, n), 1)
	out := make([][2]int, 0, parts)
	size, extra := n/parts, n%parts
	lo := 0
	for i := range parts {
		hi := lo + size
		if i < extra {
			hi++
		}
		out = append(out, [2]int{lo, hi})
		lo = hi
	}
	return out
}

func hsvToRGB(h, s, v float32) (float32, float32, float32) {
	h = float32(math.Mod(float64(h), 1)) * 6
	c := v * s
	x := c * (1 - float32(math.Abs(math.Mod(float64(h), 2)-1)))
	m := v - c
	var r, g, b float32
	switch int(h) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
