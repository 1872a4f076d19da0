package session

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/layer"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Descriptor is the static per-eye rendering setup derived once from the device after the session opens.
type Descriptor struct {
	Hmd              hmd.HmdDesc
	EyeRenderDesc    [hmd.EyeCount]hmd.EyeRenderDesc
	EyeTextureSizes  [hmd.EyeCount]hmd.Sizei
	EyeProjections   [hmd.EyeCount]mgl32.Mat4
	RenderTargetSize hmd.Sizei
	MirrorSize       hmd.Sizei
	ViewScale        hmd.ViewScaleDesc
}

// Fov returns the render field of view of both eyes.
func (d Descriptor) Fov() [hmd.EyeCount]hmd.FovPort {
	return [hmd.EyeCount]hmd.FovPort{d.EyeRenderDesc[hmd.EyeLeft].Fov, d.EyeRenderDesc[hmd.EyeRight].Fov}
}

// HmdToEyePoses returns the fixed head-to-eye offsets of both eyes.
func (d Descriptor) HmdToEyePoses() [hmd.EyeCount]hmd.Pose {
	return [hmd.EyeCount]hmd.Pose{d.EyeRenderDesc[hmd.EyeLeft].HmdToEyePose, d.EyeRenderDesc[hmd.EyeRight].HmdToEyePose}
}

// session implements the Session interface.
type session struct {
	mu *sync.Mutex

	id     string
	driver hmd.Driver
	device hmd.Device
	logger *log.Logger

	near          float32
	far           float32
	clipRange     common.ClipRange
	pixelDensity  float32
	mirrorDivisor int

	descriptor *Descriptor

	dependents map[int]string
	nextRetain int
	closed     bool
}

// Session owns the connection to the headset runtime.
// It is the root of the resource hierarchy: swap chains and mirrors retain it and must be released before Close.
// A Session is not reentrant and must only be used from the frame loop goroutine.
type Session interface {
	// ID returns the unique identifier of this session, used to correlate log lines.
	//
	// Returns:
	//   - string: the session UUID
	ID() string

	// Device returns the connected runtime device.
	//
	// Returns:
	//   - hmd.Device: the device
	Device() hmd.Device

	// Logger returns the session-scoped logger.
	//
	// Returns:
	//   - *log.Logger: a logger carrying the session field
	Logger() *log.Logger

	// Describe returns the static rendering descriptor. The device is queried on the first call only.
	//
	// Returns:
	//   - Descriptor: per-eye FOV, offsets, texture sizes, projections and derived sizes
	Describe() Descriptor

	// Retain registers a dependent resource. The returned release func must be called once the resource is destroyed.
	//
	// Parameters:
	//   - name: a label for the dependent, reported if Close is called too early
	//
	// Returns:
	//   - func(): releases the registration (idempotent)
	Retain(name string) func()

	// SubmitFrame hands a composed layer to the compositor.
	//
	// Parameters:
	//   - frameIndex: the frame index the layer's poses were predicted for
	//   - layer: the layer payload
	//
	// Returns:
	//   - error: an error wrapping hmd.ErrFrameSubmitFailed if the compositor rejected the frame
	SubmitFrame(frameIndex int64, layer hmd.LayerEyeFov) error

	// Recenter makes the current head yaw and position the tracking origin.
	//
	// Returns:
	//   - error: an error if the runtime refused
	Recenter() error

	// Close destroys the device and shuts the runtime down.
	// Closing while dependents are retained is a programming error and panics.
	Close()
}

var _ Session = &session{}

// Open initializes the runtime through driver and connects to the headset.
//
// Parameters:
//   - driver: the runtime driver
//   - options: functional options for projection and sizing
//
// Returns:
//   - Session: the open session
//   - error: an error wrapping hmd.ErrDeviceUnavailable if the runtime or headset is missing
func Open(driver hmd.Driver, options ...SessionBuilderOption) (Session, error) {
	s := &session{
		mu:            &sync.Mutex{},
		id:            uuid.NewString(),
		driver:        driver,
		near:          0.01,
		far:           1000,
		clipRange:     common.ClipRangeZeroToOne,
		pixelDensity:  1,
		mirrorDivisor: 4,
		dependents:    make(map[int]string),
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = logging.Component(s.logger, "session").With("session", s.id)

	if err := driver.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initialize runtime: %w", hmd.ErrDeviceUnavailable, err)
	}

	device, err := driver.Create()
	if err != nil {
		driver.Shutdown()
		return nil, fmt.Errorf("%w: create device: %w", hmd.ErrDeviceUnavailable, err)
	}
	if device == nil {
		driver.Shutdown()
		return nil, fmt.Errorf("%w: no headset connected", hmd.ErrDeviceUnavailable)
	}
	s.device = device

	s.logger.Info("session opened")
	return s, nil
}

func (s *session) ID() string {
	return s.id
}

func (s *session) Device() hmd.Device {
	return s.device
}

func (s *session) Logger() *log.Logger {
	return s.logger
}

func (s *session) Describe() Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.descriptor != nil {
		return *s.descriptor
	}

	d := &Descriptor{Hmd: s.device.HmdDesc()}
	for _, eye := range hmd.Eyes {
		fov := d.Hmd.DefaultEyeFov[eye]
		d.EyeRenderDesc[eye] = s.device.RenderDesc(eye, fov)
		d.EyeTextureSizes[eye] = s.device.FovTextureSize(eye, fov, s.pixelDensity)
		d.EyeProjections[eye] = common.FovProjection(fov.UpTan, fov.DownTan, fov.LeftTan, fov.RightTan, s.near, s.far, s.clipRange)
	}
	_, d.RenderTargetSize = layer.PackViewports(d.EyeTextureSizes)
	d.MirrorSize = d.RenderTargetSize.Div(s.mirrorDivisor)
	d.ViewScale = hmd.ViewScaleDesc{
		HmdToEyePose:                 d.HmdToEyePoses(),
		HmdSpaceToWorldScaleInMeters: 1,
	}
	s.descriptor = d

	s.logger.Info("headset described",
		"product", d.Hmd.ProductName,
		"resolution", fmt.Sprintf("%dx%d", d.Hmd.Resolution.W, d.Hmd.Resolution.H),
		"render_target", fmt.Sprintf("%dx%d", d.RenderTargetSize.W, d.RenderTargetSize.H),
		"mirror", fmt.Sprintf("%dx%d", d.MirrorSize.W, d.MirrorSize.H),
	)
	return *d
}

func (s *session) Retain(name string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		panic(fmt.Sprintf("session: %s retained after close", name))
	}
	id := s.nextRetain
	s.nextRetain++
	s.dependents[id] = name

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.dependents, id)
		})
	}
}

func (s *session) SubmitFrame(frameIndex int64, layer hmd.LayerEyeFov) error {
	viewScale := s.Describe().ViewScale
	if err := s.device.SubmitFrame(frameIndex, &viewScale, &layer); err != nil {
		return fmt.Errorf("%w: frame %d: %w", hmd.ErrFrameSubmitFailed, frameIndex, err)
	}
	return nil
}

func (s *session) Recenter() error {
	if err := s.device.RecenterTrackingOrigin(); err != nil {
		return fmt.Errorf("recenter tracking origin: %w", err)
	}
	s.logger.Info("tracking origin recentered")
	return nil
}

func (s *session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.dependents) > 0 {
		names := slices.Sorted(maps.Values(s.dependents))
		s.mu.Unlock()
		panic(fmt.Sprintf("session: close with live dependents %v", names))
	}
	s.closed = true
	s.mu.Unlock()

	s.device.Destroy()
	s.driver.Shutdown()
	s.logger.Info("session closed")
}
