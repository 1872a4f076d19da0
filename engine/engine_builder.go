package engine

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/pose"
	"github.com/Carmen-Shannon/oxy-vr/engine/profiler"
	"github.com/charmbracelet/log"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiler records the result of every frame in p.
//
// Parameters:
//   - p: the profiler (nil disables profiling)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithSwapChainLength requests a swap chain ring length. Zero lets the runtime choose.
//
// Parameters:
//   - length: the requested number of buffers
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSwapChainLength(length int) EngineBuilderOption {
	return func(e *engine) {
		e.swapChainLength = length
	}
}

// WithTextureFormat sets the color format of the swap chain and the mirror.
//
// Parameters:
//   - format: the texture format (default sRGB RGBA8)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTextureFormat(format hmd.TextureFormat) EngineBuilderOption {
	return func(e *engine) {
		e.textureFormat = format
	}
}

// WithLayerFlags sets the flags of the submitted layer.
//
// Parameters:
//   - flags: the layer flags
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLayerFlags(flags hmd.LayerFlags) EngineBuilderOption {
	return func(e *engine) {
		e.layerFlags = flags
	}
}

// WithRecenterOnInit toggles recentering the tracking origin at the end of Init.
//
// Parameters:
//   - enabled: whether to recenter (default true)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecenterOnInit(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.recenterOnInit = enabled
	}
}

// WithPredictor replaces the session-backed pose predictor.
//
// Parameters:
//   - p: the predictor
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPredictor(p pose.Predictor) EngineBuilderOption {
	return func(e *engine) {
		e.predictor = p
	}
}

// WithStateObserver registers a callback invoked on every frame state transition.
//
// Parameters:
//   - observer: receives the previous and next state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStateObserver(observer func(from, to FrameState)) EngineBuilderOption {
	return func(e *engine) {
		e.observer = observer
	}
}

// WithLogger overrides the session logger.
//
// Parameters:
//   - logger: the parent logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}
