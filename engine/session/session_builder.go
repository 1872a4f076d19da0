package session

import (
	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/charmbracelet/log"
)

// SessionBuilderOption is a functional option for configuring a session during Open.
type SessionBuilderOption func(*session)

// WithClipPlanes sets the near and far planes used for the per-eye projections.
//
// Parameters:
//   - near: near clipping plane distance in meters
//   - far: far clipping plane distance in meters
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithClipPlanes(near, far float32) SessionBuilderOption {
	return func(s *session) {
		s.near = near
		s.far = far
	}
}

// WithClipRange selects the depth range the per-eye projections map into.
//
// Parameters:
//   - clip: the clip range (WebGPU zero-to-one by default)
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithClipRange(clip common.ClipRange) SessionBuilderOption {
	return func(s *session) {
		s.clipRange = clip
	}
}

// WithPixelDensity sets the render density requested from the runtime for the recommended eye texture sizes.
//
// Parameters:
//   - density: pixels per display pixel at the center of the view (1.0 matches the panel)
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithPixelDensity(density float32) SessionBuilderOption {
	return func(s *session) {
		if density > 0 {
			s.pixelDensity = density
		}
	}
}

// WithMirrorDivisor sets how much smaller the desktop mirror is than the combined render target.
//
// Parameters:
//   - divisor: the scale-down factor (default 4)
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithMirrorDivisor(divisor int) SessionBuilderOption {
	return func(s *session) {
		if divisor >= 1 {
			s.mirrorDivisor = divisor
		}
	}
}

// WithLogger sets the parent logger. The session logs under its own prefix with a session field.
//
// Parameters:
//   - logger: the parent logger
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithLogger(logger *log.Logger) SessionBuilderOption {
	return func(s *session) {
		s.logger = logger
	}
}
