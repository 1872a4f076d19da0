package scene

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene during construction.
type SceneBuilderOption func(*scene)

// WithBounds sets the box particles spawn and bounce inside.
//
// Parameters:
//   - bounds: the box in world meters
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBounds(bounds Bounds) SceneBuilderOption {
	return func(s *scene) {
		s.bounds = bounds
	}
}

// WithEmitter sets the point new particles leave from. A point outside the bounds is moved onto the nearest wall.
//
// Parameters:
//   - point: the emitter position in world meters
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEmitter(point mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.emitter = point
	}
}

// WithInitialParticles sets how many particles exist before the first frame.
//
// Parameters:
//   - n: the initial particle count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInitialParticles(n int) SceneBuilderOption {
	return func(s *scene) {
		if n >= 0 {
			s.initialParticles = n
		}
	}
}

// WithMaxParticles caps the particle count. It also sizes the instance buffer.
//
// Parameters:
//   - n: the maximum particle count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaxParticles(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.maxParticles = n
		}
	}
}

// WithSpawnInterval sets how often a new particle appears, measured on the predicted display clock.
//
// Parameters:
//   - seconds: the spawn interval; zero or less disables spawning
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpawnInterval(seconds float64) SceneBuilderOption {
	return func(s *scene) {
		s.spawnInterval = seconds
	}
}

// WithSpeed sets the distance a particle travels per frame step.
//
// Parameters:
//   - perStep: the speed in meters per step
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpeed(perStep float32) SceneBuilderOption {
	return func(s *scene) {
		s.speed = perStep
	}
}

// WithSpin sets how far each particle turns around its own axis per frame step.
//
// Parameters:
//   - radiansPerStep: the spin per step
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpin(radiansPerStep float32) SceneBuilderOption {
	return func(s *scene) {
		s.spin = radiansPerStep
	}
}

// WithParticleSize sets the cube edge length.
func WithParticleSize(meters float32) SceneBuilderOption {
	return func(s *scene) {
		if meters > 0 {
			s.particleSize = meters
		}
	}
}

// WithWorkers sets how many pool workers integrate particles in parallel.
//
// Parameters:
//   - n: the worker count (at least 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n >= 1 {
			s.workers = n
		}
	}
}

// WithSeed fixes the random seed particles are generated from. Zero keeps the clock-based default.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSeed(seed int64) SceneBuilderOption {
	return func(s *scene) {
		if seed != 0 {
			s.seed = seed
		}
	}
}

// WithLogger sets the parent logger.
func WithLogger(logger *log.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
