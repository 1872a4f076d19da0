package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	testBounds  = Bounds{Min: mgl32.Vec3{-10, -10, -25}, Max: mgl32.Vec3{10, 10, -5}}
	testEmitter = mgl32.Vec3{0, -1, -15}
)

func TestParticleBounces(t *testing.T) {
	tests := []struct {
		name         string
		start        mgl32.Vec3
		velocity     mgl32.Vec3
		wantPosition mgl32.Vec3
		wantVelocity mgl32.Vec3
	}{
		{"free flight", mgl32.Vec3{0, 0, -10}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, -10}, mgl32.Vec3{1, 0, 0}},
		{"max x wall", mgl32.Vec3{9.5, 0, -10}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{9.5, 0, -10}, mgl32.Vec3{-1, 0, 0}},
		{"near z wall", mgl32.Vec3{0, 0, -5.5}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, -5.5}, mgl32.Vec3{0, 0, -1}},
		{"min y wall", mgl32.Vec3{0, -9.75, -10}, mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{0, -9.75, -10}, mgl32.Vec3{0, 0.5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := particle{position: tt.start, velocity: tt.velocity, axis: mgl32.Vec3{0, 1, 0}}
			p.step(testBounds, 0)
			if !nearVec3(p.position, tt.wantPosition, 1e-5) {
				t.Errorf("position = %v, want %v", p.position, tt.wantPosition)
			}
			if !p.velocity.ApproxEqual(tt.wantVelocity) {
				t.Errorf("velocity = %v, want %v", p.velocity, tt.wantVelocity)
			}
		})
	}
}

func TestParticlesStayInBounds(t *testing.T) {
	s := newParticleSystem(7, testBounds, testEmitter, 0.5, 0.05, 64, 1)
	s.spawn(64)
	for range 1000 {
		s.stepRange(0, len(s.particles))
	}
	for i, p := range s.particles {
		if !testBounds.Contains(p.position) {
			t.Fatalf("particle %d escaped to %v", i, p.position)
		}
		if got := p.velocity.Len(); !mgl32.FloatEqualThreshold(got, 0.5, 1e-4) {
			t.Fatalf("particle %d speed = %v, want 0.5", i, got)
		}
	}
}

func TestSpawnIsSeededAndCapped(t *testing.T) {
	a := newParticleSystem(42, testBounds, testEmitter, 0.01, 0.05, 3, 1)
	b := newParticleSystem(42, testBounds, testEmitter, 0.01, 0.05, 3, 1)

	if got := a.spawn(5); got != 3 {
		t.Fatalf("spawn(5) with cap 3 added %d", got)
	}
	b.spawn(3)
	for i := range a.particles {
		if a.particles[i].velocity != b.particles[i].velocity || a.particles[i].axis != b.particles[i].axis {
			t.Errorf("particle %d differs between equal seeds", i)
		}
	}
}

func TestParticlesLeaveTheEmitter(t *testing.T) {
	tests := []struct {
		name    string
		emitter mgl32.Vec3
		want    mgl32.Vec3
	}{
		{"chimney", testEmitter, testEmitter},
		{"outside is clamped", mgl32.Vec3{0, -40, -15}, mgl32.Vec3{0, -10, -15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newParticleSystem(3, testBounds, tt.emitter, 0.01, 0.05, 32, 1)
			s.spawn(32)
			for i, p := range s.particles {
				if p.position != tt.want {
					t.Fatalf("particle %d spawned at %v, want %v", i, p.position, tt.want)
				}
				if p.velocity.Y() < 0 {
					t.Errorf("particle %d heads down: velocity %v", i, p.velocity)
				}
				if got := p.velocity.Len(); got < 0.0099 || got > 0.0101 {
					t.Errorf("particle %d speed = %v, want 0.01", i, got)
				}
			}
		})
	}
}

func TestTickSpawnsOnInterval(t *testing.T) {
	s := newParticleSystem(1, testBounds, testEmitter, 0.01, 0.05, 4, 1)
	steps := []struct {
		now  float64
		want int
	}{
		{10, 0},
		{10.5, 0},
		{11, 1},
		{13.2, 2},
		{20, 1},
		{30, 0},
	}
	for _, st := range steps {
		if got := s.tick(st.now); got != st.want {
			t.Errorf("tick(%v) spawned %d, want %d", st.now, got, st.want)
		}
	}
	if len(s.particles) != 4 {
		t.Errorf("particles = %d, want the cap of 4", len(s.particles))
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		n, parts int
		want     [][2]int
	}{
		{0, 4, nil},
		{3, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
		{10, 3, [][2]int{{0, 4}, {4, 7}, {7, 10}}},
		{5, 0, [][2]int{{0, 5}}},
	}
	for _, tt := range tests {
		got := chunks(tt.n, tt.parts)
		if len(got) != len(tt.want) {
			t.Errorf("chunks(%d, %d) = %v, want %v", tt.n, tt.parts, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("chunks(%d, %d) = %v, want %v", tt.n, tt.parts, got, tt.want)
				break
			}
		}
	}
}

func TestCubeMeshFacesOutward(t *testing.T) {
	vertices, indices := cubeMesh()
	if len(vertices) != 24 || len(indices) != 36 {
		t.Fatalf("cube has %d vertices and %d indices", len(vertices), len(indices))
	}
	for i := 0; i < len(indices); i += 3 {
		a := mgl32.Vec3(vertices[indices[i]].Position)
		b := mgl32.Vec3(vertices[indices[i+1]].Position)
		c := mgl32.Vec3(vertices[indices[i+2]].Position)
		n := mgl32.Vec3(vertices[indices[i]].Normal)
		if b.Sub(a).Cross(c.Sub(a)).Dot(n) <= 0 {
			t.Errorf("triangle %d winds clockwise seen from outside", i/3)
		}
	}
}
