// Package simulator is a desktop stand-in for a headset runtime. It allocates eye buffers on the renderer's GPU
// device, drives a keyboard-controlled head, and composites submitted frames into the mirror texture.
package simulator

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Default field of view tangents of the left eye; the right eye mirrors them.
var defaultLeftFov = hmd.FovPort{UpTan: 1.329, DownTan: 1.329, LeftTan: 1.058, RightTan: 1.092}

// maxFovScale widens the default field of view into the maximum one.
const maxFovScale = 1.1

// simulator implements the Simulator interface.
type simulator struct {
	mu *sync.Mutex

	logger *log.Logger
	now    func() time.Time

	productName  string
	resolution   hmd.Sizei
	refreshRate  float32
	ipd          float32
	pixelsPerTan float32
	lookSpeed    float32
	moveSpeed    float32
	drill        disconnectDrill

	initialized bool
	dev         *device

	gpuDevice *wgpu.Device
	gpuQueue  *wgpu.Queue
	blitter   renderer.Blitter
	keys      KeySource
}

// Simulator is an hmd.Driver whose single device lives on the desktop.
//
// GPU resources come from the renderer: BindGPU must be called before swap chains or mirrors are created.
// BindKeys connects the keyboard that drives the simulated head and controllers.
type Simulator interface {
	hmd.Driver

	// BindGPU shares the renderer's device with the runtime.
	//
	// Parameters:
	//   - device: the GPU device eye buffers are created on
	//   - queue: the device queue
	//   - blitter: the copier used by the compositor
	BindGPU(device *wgpu.Device, queue *wgpu.Queue, blitter renderer.Blitter)

	// BindKeys connects the key state that drives tracking and controller input.
	//
	// Parameters:
	//   - keys: the key source, usually the mirror window
	BindKeys(keys KeySource)
}

var _ Simulator = &simulator{}

// New creates a simulator with CV1-like defaults.
//
// Parameters:
//   - options: variadic SimulatorBuilderOption functions
//
// Returns:
//   - Simulator: the simulated runtime
func New(options ...SimulatorBuilderOption) Simulator {
	s := &simulator{
		mu:           &sync.Mutex{},
		logger:       logging.Discard(),
		now:          time.Now,
		productName:  "Oxy Simulated HMD",
		resolution:   hmd.Sizei{W: 2160, H: 1200},
		refreshRate:  90,
		ipd:          0.064,
		pixelsPerTan: 549,
		lookSpeed:    1.5,
		moveSpeed:    1.2,
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = logging.Component(s.logger, "simulator")
	return s
}

func (s *simulator) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return errors.New("simulator: already initialized")
	}
	s.initialized = true
	s.logger.Info("runtime initialized", "refresh_hz", s.refreshRate, "resolution", fmt.Sprintf("%dx%d", s.resolution.W, s.resolution.H))
	return nil
}

func (s *simulator) Create() (hmd.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil, errors.New("simulator: runtime not initialized")
	}
	if s.dev != nil {
		return nil, errors.New("simulator: device already created")
	}

	start := s.now()
	s.dev = &device{
		sim:     s,
		start:   start,
		cadence: newCadence(0, s.refreshRate),
		tracker: newTracker(s.lookSpeed, s.moveSpeed),
		drill:   s.drill,
		logger:  s.logger,
	}
	return s.dev, nil
}

func (s *simulator) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev != nil && !s.dev.destroyed {
		s.logger.Warn("runtime shut down with a live device")
	}
	s.initialized = false
	s.dev = nil
	s.logger.Info("runtime shut down")
}

func (s *simulator) BindGPU(device *wgpu.Device, queue *wgpu.Queue, blitter renderer.Blitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpuDevice = device
	s.gpuQueue = queue
	s.blitter = blitter
}

func (s *simulator) BindKeys(keys KeySource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
}

func (s *simulator) gpu() (*wgpu.Device, renderer.Blitter, KeySource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gpuDevice, s.blitter, s.keys
}

// fovTextureSize returns the pixel size that gives density pixels per panel pixel at the center of fov.
func fovTextureSize(fov hmd.FovPort, pixelsPerTan, density float32) hmd.Sizei {
	w := math.Ceil(float64((fov.LeftTan + fov.RightTan) * pixelsPerTan * density))
	h := math.Ceil(float64((fov.UpTan + fov.DownTan) * pixelsPerTan * density))
	return hmd.Sizei{W: max(int(w), 1), H: max(int(h), 1)}
}

// mirrorFov returns the right-eye counterpart of a left-eye field of view.
func mirrorFov(f hmd.FovPort) hmd.FovPort {
	return hmd.FovPort{UpTan: f.UpTan, DownTan: f.DownTan, LeftTan: f.RightTan, RightTan: f.LeftTan}
}

func scaleFov(f hmd.FovPort, k float32) hmd.FovPort {
	return hmd.FovPort{UpTan: f.UpTan * k, DownTan: f.DownTan * k, LeftTan: f.LeftTan * k, RightTan: f.RightTan * k}
}

// device is the simulated headset.
type device struct {
	sim    *simulator
	logger *log.Logger

	start   time.Time
	cadence cadence
	tracker *tracker
	drill   disconnectDrill

	chains      []*swapChain
	mirrors     []*mirrorTexture
	submissions int64
	lost        bool
	destroyed   bool
	blitter     renderer.Blitter
}

var _ hmd.Device = &device{}

func (d *device) HmdDesc() hmd.HmdDesc {
	left := defaultLeftFov
	return hmd.HmdDesc{
		ProductName:    d.sim.productName,
		Manufacturer:   "Oxy",
		Resolution:     d.sim.resolution,
		DisplayRefresh: d.sim.refreshRate,
		DefaultEyeFov:  [hmd.EyeCount]hmd.FovPort{left, mirrorFov(left)},
		MaxEyeFov:      [hmd.EyeCount]hmd.FovPort{scaleFov(left, maxFovScale), scaleFov(mirrorFov(left), maxFovScale)},
	}
}

func (d *device) RenderDesc(eye hmd.Eye, fov hmd.FovPort) hmd.EyeRenderDesc {
	offset := d.sim.ipd / 2
	if eye == hmd.EyeLeft {
		offset = -offset
	}
	return hmd.EyeRenderDesc{
		Eye: eye,
		Fov: fov,
		HmdToEyePose: hmd.Pose{
			Orientation: mgl32.QuatIdent(),
			Position:    mgl32.Vec3{offset, 0, 0},
		},
	}
}

func (d *device) FovTextureSize(_ hmd.Eye, fov hmd.FovPort, pixelsPerDisplayPixel float32) hmd.Sizei {
	return fovTextureSize(fov, d.sim.pixelsPerTan, pixelsPerDisplayPixel)
}

func (d *device) CreateTextureSwapChain(desc hmd.SwapChainDesc) (hmd.TextureSwapChain, error) {
	gpu, blitter, _ := d.sim.gpu()
	if gpu == nil {
		return nil, errNoGPU
	}
	if desc.MipLevels > 1 || desc.SampleCount > 1 {
		return nil, fmt.Errorf("simulator: swap chains support 1 mip and 1 sample, got %d and %d", desc.MipLevels, desc.SampleCount)
	}
	d.blitter = blitter

	n := desc.Length
	if n <= 0 {
		n = defaultRingLength
	}
	sc := &swapChain{dev: d, desc: desc, ring: newRing(n), buffers: make([]*gpuTexture, 0, n)}
	for i := range n {
		tex, err := newGPUTexture(gpu, fmt.Sprintf("Eye Buffer %d", i), desc.Size, desc.Format)
		if err != nil {
			for _, b := range sc.buffers {
				b.release(blitter)
			}
			return nil, err
		}
		sc.buffers = append(sc.buffers, tex)
	}
	d.chains = append(d.chains, sc)

	d.logger.Debug("swap chain created", "length", n, "size", fmt.Sprintf("%dx%d", desc.Size.W, desc.Size.H), "format", desc.Format)
	return sc, nil
}

func (d *device) CreateMirrorTexture(desc hmd.MirrorTextureDesc) (hmd.MirrorTexture, error) {
	gpu, blitter, _ := d.sim.gpu()
	if gpu == nil {
		return nil, errNoGPU
	}
	d.blitter = blitter

	tex, err := newGPUTexture(gpu, "Mirror Texture", desc.Size, desc.Format)
	if err != nil {
		return nil, err
	}
	m := &mirrorTexture{dev: d, tex: tex}
	d.mirrors = append(d.mirrors, m)
	return m, nil
}

func (d *device) PredictedDisplayTime(frameIndex int64) float64 {
	return d.cadence.predict(frameIndex, d.TimeInSeconds())
}

func (d *device) TrackingState(absTime float64, _ bool) hmd.TrackingState {
	_, _, keys := d.sim.gpu()
	d.tracker.update(keys, d.TimeInSeconds())

	status := hmd.StatusOrientationTracked | hmd.StatusPositionTracked
	if d.lost {
		status = 0
	}

	state := hmd.TrackingState{
		HeadPose: hmd.PoseState{Pose: d.tracker.head(absTime), Status: status, TimeInSecs: absTime},
	}
	hands := d.tracker.hands(absTime)
	for h := range hmd.HandCount {
		state.HandPoses[h] = hmd.PoseState{Pose: hands[h], Status: status, TimeInSecs: absTime}
	}
	return state
}

func (d *device) InputState(controllers hmd.ControllerType) (hmd.InputState, error) {
	connected := controllers & hmd.ControllerTypeTouch
	if connected == 0 {
		return hmd.InputState{}, fmt.Errorf("simulator: controllers %b are not connected", controllers)
	}

	in := hmd.InputState{
		TimeInSeconds:  d.TimeInSeconds(),
		ControllerType: connected,
		Buttons:        d.tracker.buttons,
	}
	for h := range hmd.HandCount {
		if connected&(hmd.ControllerTypeLTouch<<h) != 0 {
			in.IndexTrigger[h] = d.tracker.triggers[h]
		}
	}
	return in, nil
}

func (d *device) TimeInSeconds() float64 {
	return d.sim.now().Sub(d.start).Seconds()
}

func (d *device) SubmitFrame(frameIndex int64, viewScale *hmd.ViewScaleDesc, layers ...*hmd.LayerEyeFov) error {
	d.submissions++
	lost := d.drill.lost(d.submissions)
	if lost != d.lost {
		d.lost = lost
		if lost {
			d.logger.Warn("display lost", "frame", frameIndex)
		} else {
			d.logger.Info("display reconnected", "frame", frameIndex)
		}
	}
	if lost {
		return hmd.ErrDeviceLost
	}

	if viewScale != nil && viewScale.HmdSpaceToWorldScaleInMeters <= 0 {
		return fmt.Errorf("simulator: world scale must be positive, got %v", viewScale.HmdSpaceToWorldScaleInMeters)
	}
	if len(layers) == 0 || layers[0] == nil {
		return errors.New("simulator: no layer submitted")
	}

	// The mirror shows the bottom-most layer.
	if err := d.composite(layers[0]); err != nil {
		return err
	}
	d.cadence.record(frameIndex, d.TimeInSeconds())
	return nil
}

// composite copies the layer's latest committed eye buffer into every mirror.
func (d *device) composite(layer *hmd.LayerEyeFov) error {
	sc, ok := layer.ColorTexture.(*swapChain)
	if !ok || sc.dev != d || sc.destroyed {
		return errors.New("simulator: layer texture is not a live swap chain of this device")
	}
	src, ok := sc.latest()
	if !ok {
		return errors.New("simulator: layer swap chain has no committed buffer")
	}
	if d.blitter == nil {
		return errNoGPU
	}

	flip := layer.Flags&hmd.LayerFlagTextureOriginAtBottomLeft != 0
	for _, m := range d.mirrors {
		if err := d.blitter.Blit(src.view, m.tex.view, renderer.WGPUFormat(m.tex.format), flip); err != nil {
			return fmt.Errorf("simulator: composite: %w", err)
		}
	}
	return nil
}

func (d *device) RecenterTrackingOrigin() error {
	if d.lost {
		return hmd.ErrDeviceLost
	}
	d.tracker.recenter()
	return nil
}

func (d *device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if live := len(d.chains) + len(d.mirrors); live > 0 {
		d.logger.Warn("device destroyed with live textures", "count", live)
	}
	for _, sc := range slices.Clone(d.chains) {
		sc.Destroy()
	}
	for _, m := range slices.Clone(d.mirrors) {
		m.Destroy()
	}
}

func (d *device) forgetChain(sc *swapChain) {
	d.chains = slices.DeleteFunc(d.chains, func(c *swapChain) bool { return c == sc })
}

func (d *device) forgetMirror(m *mirrorTexture) {
	d.mirrors = slices.DeleteFunc(d.mirrors, func(x *mirrorTexture) bool { return x == m })
}
