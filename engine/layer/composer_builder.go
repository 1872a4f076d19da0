package layer

import "github.com/Carmen-Shannon/oxy-vr/engine/hmd"

// ComposerBuilderOption is a functional option for configuring a Composer.
type ComposerBuilderOption func(*composer)

// WithFlags sets the layer flags passed to the compositor.
//
// Parameters:
//   - flags: the layer flags (e.g. hmd.LayerFlagTextureOriginAtBottomLeft)
//
// Returns:
//   - ComposerBuilderOption: option function to apply
func WithFlags(flags hmd.LayerFlags) ComposerBuilderOption {
	return func(c *composer) {
		c.layer.Flags = flags
	}
}
