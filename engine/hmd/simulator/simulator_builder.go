package simulator

import (
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/charmbracelet/log"
)

// SimulatorBuilderOption is a functional option applied to the simulator during New.
type SimulatorBuilderOption func(*simulator)

// WithResolution sets the panel resolution reported in the headset description.
//
// Parameters:
//   - width: combined panel width in pixels
//   - height: panel height in pixels
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithResolution(width, height int) SimulatorBuilderOption {
	return func(s *simulator) {
		if width > 0 && height > 0 {
			s.resolution = hmd.Sizei{W: width, H: height}
		}
	}
}

// WithRefreshRate sets the display refresh rate the frame timing is predicted with.
//
// Parameters:
//   - hz: refresh rate in hertz
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithRefreshRate(hz float32) SimulatorBuilderOption {
	return func(s *simulator) {
		if hz > 0 {
			s.refreshRate = hz
		}
	}
}

// WithIPD sets the interpupillary distance used for the head-to-eye offsets.
//
// Parameters:
//   - meters: the distance between the eyes
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithIPD(meters float32) SimulatorBuilderOption {
	return func(s *simulator) {
		if meters >= 0 {
			s.ipd = meters
		}
	}
}

// WithPixelsPerTan sets how many panel pixels cover one unit of view tangent at the center of the lens.
//
// Parameters:
//   - pixels: pixels per tangent unit
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithPixelsPerTan(pixels float32) SimulatorBuilderOption {
	return func(s *simulator) {
		if pixels > 0 {
			s.pixelsPerTan = pixels
		}
	}
}

// WithLookSpeed sets how fast the arrow keys turn the simulated head.
//
// Parameters:
//   - radiansPerSecond: yaw and pitch rate while a key is held
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithLookSpeed(radiansPerSecond float32) SimulatorBuilderOption {
	return func(s *simulator) {
		s.lookSpeed = radiansPerSecond
	}
}

// WithMoveSpeed sets how fast the movement keys carry the simulated head.
//
// Parameters:
//   - metersPerSecond: translation speed while a key is held
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithMoveSpeed(metersPerSecond float32) SimulatorBuilderOption {
	return func(s *simulator) {
		s.moveSpeed = metersPerSecond
	}
}

// WithDisconnectDrill makes the device report a lost display for a run of submissions, then come back.
//
// Parameters:
//   - after: the first submission (1-based) that fails; zero disables the drill
//   - span: how many consecutive submissions fail
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithDisconnectDrill(after, span int64) SimulatorBuilderOption {
	return func(s *simulator) {
		s.drill = disconnectDrill{after: after, span: span}
	}
}

// WithClock replaces the wall clock the runtime time is measured with.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - SimulatorBuilderOption: option function to apply
func WithClock(now func() time.Time) SimulatorBuilderOption {
	return func(s *simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the parent logger.
func WithLogger(logger *log.Logger) SimulatorBuilderOption {
	return func(s *simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}
