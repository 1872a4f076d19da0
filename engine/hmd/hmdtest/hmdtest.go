// Package hmdtest provides recording fakes of the HMD runtime for tests.
package hmdtest

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/go-gl/mathgl/mgl32"
)

// Recorder keeps an ordered log of runtime calls shared by a device and the resources it creates.
type Recorder struct {
	mu    *sync.Mutex
	calls []string
}

// NewRecorder returns an empty call log.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}}
}

// Record appends name to the call log. Fakes outside this package use it to interleave their own calls.
func (r *Recorder) Record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

// Calls returns a copy of every recorded call name in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Filter returns the recorded calls whose names are in names, in order.
func (r *Recorder) Filter(names ...string) []string {
	var out []string
	for _, c := range r.Calls() {
		if slices.Contains(names, c) {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times name was recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// Call names recorded by the fakes.
const (
	CallInitialize    = "initialize"
	CallCreate        = "create"
	CallShutdown      = "shutdown"
	CallHmdDesc       = "hmd_desc"
	CallRenderDesc    = "render_desc"
	CallCreateChain   = "create_swap_chain"
	CallCreateMirror  = "create_mirror"
	CallAcquire       = "acquire"
	CallCommit        = "commit"
	CallDestroyChain  = "destroy_swap_chain"
	CallDestroyMirror = "destroy_mirror"
	CallSubmit        = "submit"
	CallRecenter      = "recenter"
	CallDestroy       = "destroy_device"
)

// ErrInjected is the error returned by injected failures.
var ErrInjected = errors.New("hmdtest: injected failure")

// Driver is a fake hmd.Driver that hands out a preconfigured Device.
type Driver struct {
	Device    *Device
	InitErr   error
	CreateErr error
}

var _ hmd.Driver = &Driver{}

func (d *Driver) Initialize() error {
	d.Device.Recorder.Record(CallInitialize)
	return d.InitErr
}

func (d *Driver) Create() (hmd.Device, error) {
	d.Device.Recorder.Record(CallCreate)
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	return d.Device, nil
}

func (d *Driver) Shutdown() {
	d.Device.Recorder.Record(CallShutdown)
}

// Submission is a copy of one SubmitFrame call.
type Submission struct {
	FrameIndex int64
	Layer      hmd.LayerEyeFov
}

// Device is a fake hmd.Device with fixed per-eye sizes, scripted failures and a full call log.
type Device struct {
	Recorder *Recorder

	Desc        hmd.HmdDesc
	EyeSizes    [hmd.EyeCount]hmd.Sizei
	IPD         float32
	BufferCount int

	// FrameDuration spaces predicted display times. Defaults to 1/90 s.
	FrameDuration float64

	Head  hmd.Pose
	Hands [hmd.HandCount]hmd.Pose
	Input hmd.InputState

	SwapChainErr error
	MirrorErr    error
	InputErr     error

	// FailAcquire lists 1-based acquire attempts that fail.
	FailAcquire []int
	// FailCommit lists 1-based commit attempts that fail.
	FailCommit []int
	// FailSubmit lists frame indices whose submission fails.
	FailSubmit []int64

	Submissions []Submission
	Chains      []*SwapChain
	Mirrors     []*Mirror
	Destroyed   bool

	now float64
}

var _ hmd.Device = &Device{}

// NewDevice returns a fake with the given ring length and per-eye recommended size.
//
// Parameters:
//   - buffers: swap chain ring length reported by the fake
//   - eye: recommended texture size for both eyes
//
// Returns:
//   - *Device: the fake device
func NewDevice(buffers int, eye hmd.Sizei) *Device {
	fov := hmd.FovPort{UpTan: 1, DownTan: 1, LeftTan: 1, RightTan: 1}
	return &Device{
		Recorder: NewRecorder(),
		Desc: hmd.HmdDesc{
			ProductName:    "Fake HMD",
			Resolution:     hmd.Sizei{W: eye.W * 2, H: eye.H},
			DisplayRefresh: 90,
			DefaultEyeFov:  [hmd.EyeCount]hmd.FovPort{fov, fov},
			MaxEyeFov:      [hmd.EyeCount]hmd.FovPort{fov, fov},
		},
		EyeSizes:      [hmd.EyeCount]hmd.Sizei{eye, eye},
		IPD:           0.064,
		BufferCount:   buffers,
		FrameDuration: 1.0 / 90.0,
		Head:          hmd.IdentityPose(),
		Hands:         [hmd.HandCount]hmd.Pose{hmd.IdentityPose(), hmd.IdentityPose()},
	}
}

// NewDriver wraps a fake device in a fake driver.
func NewDriver(d *Device) *Driver {
	return &Driver{Device: d}
}

func (d *Device) HmdDesc() hmd.HmdDesc {
	d.Recorder.Record(CallHmdDesc)
	return d.Desc
}

func (d *Device) RenderDesc(eye hmd.Eye, fov hmd.FovPort) hmd.EyeRenderDesc {
	d.Recorder.Record(CallRenderDesc)
	offset := d.IPD / 2
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

func (d *Device) FovTextureSize(eye hmd.Eye, _ hmd.FovPort, _ float32) hmd.Sizei {
	return d.EyeSizes[eye]
}

func (d *Device) CreateTextureSwapChain(desc hmd.SwapChainDesc) (hmd.TextureSwapChain, error) {
	d.Recorder.Record(CallCreateChain)
	if d.SwapChainErr != nil {
		return nil, d.SwapChainErr
	}
	n := d.BufferCount
	if desc.Length > 0 {
		n = desc.Length
	}
	sc := &SwapChain{device: d, Desc: desc, buffers: make([]*Texture, n)}
	for i := range sc.buffers {
		sc.buffers[i] = &Texture{Name: fmt.Sprintf("eye buffer %d", i), Sz: desc.Size, Fmt: desc.Format}
	}
	d.Chains = append(d.Chains, sc)
	return sc, nil
}

func (d *Device) CreateMirrorTexture(desc hmd.MirrorTextureDesc) (hmd.MirrorTexture, error) {
	d.Recorder.Record(CallCreateMirror)
	if d.MirrorErr != nil {
		return nil, d.MirrorErr
	}
	m := &Mirror{device: d, Desc: desc, tex: &Texture{Name: "mirror", Sz: desc.Size, Fmt: desc.Format}}
	d.Mirrors = append(d.Mirrors, m)
	return m, nil
}

func (d *Device) PredictedDisplayTime(frameIndex int64) float64 {
	return float64(frameIndex) * d.FrameDuration
}

func (d *Device) TrackingState(absTime float64, _ bool) hmd.TrackingState {
	state := hmd.TrackingState{
		HeadPose: hmd.PoseState{
			Pose:       d.Head,
			Status:     hmd.StatusOrientationTracked | hmd.StatusPositionTracked,
			TimeInSecs: absTime,
		},
	}
	for h := range hmd.HandCount {
		state.HandPoses[h] = hmd.PoseState{Pose: d.Hands[h], Status: hmd.StatusOrientationTracked, TimeInSecs: absTime}
	}
	return state
}

func (d *Device) InputState(controllers hmd.ControllerType) (hmd.InputState, error) {
	if d.InputErr != nil {
		return hmd.InputState{}, d.InputErr
	}
	in := d.Input
	in.ControllerType = controllers
	return in, nil
}

// TimeInSeconds advances a fake clock by a millisecond per call so successive samples differ.
func (d *Device) TimeInSeconds() float64 {
	d.now += 0.001
	return d.now
}

func (d *Device) SubmitFrame(frameIndex int64, _ *hmd.ViewScaleDesc, layers ...*hmd.LayerEyeFov) error {
	d.Recorder.Record(CallSubmit)
	if slices.Contains(d.FailSubmit, frameIndex) {
		return ErrInjected
	}
	if len(layers) != 1 || layers[0] == nil {
		return fmt.Errorf("hmdtest: want exactly one layer, got %d", len(layers))
	}
	d.Submissions = append(d.Submissions, Submission{FrameIndex: frameIndex, Layer: *layers[0]})
	return nil
}

func (d *Device) RecenterTrackingOrigin() error {
	d.Recorder.Record(CallRecenter)
	return nil
}

func (d *Device) Destroy() {
	d.Recorder.Record(CallDestroy)
	d.Destroyed = true
}

// Texture is a fake hmd.Texture.
type Texture struct {
	Name string
	Sz   hmd.Sizei
	Fmt  hmd.TextureFormat
}

var _ hmd.Texture = &Texture{}

func (t *Texture) Label() string { return t.Name }
func (t *Texture) Size() hmd.Sizei { return t.Sz }
func (t *Texture) Format() hmd.TextureFormat { return t.Fmt }

// SwapChain is a fake hmd.TextureSwapChain that advances its index on every commit.
type SwapChain struct {
	device    *Device
	Desc      hmd.SwapChainDesc
	buffers   []*Texture
	index     int
	acquires  int
	commits   int
	Destroyed bool
}

var _ hmd.TextureSwapChain = &SwapChain{}

func (s *SwapChain) Length() (int, error) {
	return len(s.buffers), nil
}

func (s *SwapChain) CurrentIndex() (int, error) {
	s.acquires++
	if slices.Contains(s.device.FailAcquire, s.acquires) {
		return 0, ErrInjected
	}
	s.device.Recorder.Record(CallAcquire)
	return s.index, nil
}

func (s *SwapChain) Buffer(index int) (hmd.Texture, error) {
	if index < 0 || index >= len(s.buffers) {
		return nil, fmt.Errorf("hmdtest: buffer index %d out of range", index)
	}
	return s.buffers[index], nil
}

func (s *SwapChain) Commit() error {
	s.commits++
	s.device.Recorder.Record(CallCommit)
	if slices.Contains(s.device.FailCommit, s.commits) {
		return ErrInjected
	}
	s.index = (s.index + 1) % len(s.buffers)
	return nil
}

func (s *SwapChain) Destroy() {
	s.device.Recorder.Record(CallDestroyChain)
	s.Destroyed = true
}

// Mirror is a fake hmd.MirrorTexture.
type Mirror struct {
	device    *Device
	Desc      hmd.MirrorTextureDesc
	tex       *Texture
	Destroyed bool
}

var _ hmd.MirrorTexture = &Mirror{}

func (m *Mirror) Buffer() (hmd.Texture, error) {
	if m.Destroyed {
		return nil, errors.New("hmdtest: mirror destroyed")
	}
	return m.tex, nil
}

func (m *Mirror) Destroy() {
	m.device.Recorder.Record(CallDestroyMirror)
	m.Destroyed = true
}
