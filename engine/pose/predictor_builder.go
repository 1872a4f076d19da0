package pose

import "github.com/Carmen-Shannon/oxy-vr/engine/hmd"

// PredictorBuilderOption is a functional option for configuring a Predictor.
type PredictorBuilderOption func(*predictor)

// WithControllers sets which controllers Input reads.
//
// Parameters:
//   - controllers: a controller type mask (default hmd.ControllerTypeTouch)
//
// Returns:
//   - PredictorBuilderOption: option function to apply
func WithControllers(controllers hmd.ControllerType) PredictorBuilderOption {
	return func(p *predictor) {
		p.controllers = controllers
	}
}
