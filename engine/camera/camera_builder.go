package camera

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/bind_group_provider"
)

type CameraBuilderOption func(*eyeCamera)

// WithBindGroupProvider replaces the provider the camera uniform is stored on.
//
// Parameters:
//   - provider: the bind group provider to use
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's bind group provider
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) CameraBuilderOption {
	return func(c *eyeCamera) {
		if provider != nil {
			c.bindGroupProvider = provider
		}
	}
}
