package simulator

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd/hmdtest"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func createDevice(t *testing.T, options ...SimulatorBuilderOption) (Simulator, hmd.Device, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	options = append([]SimulatorBuilderOption{WithLogger(logging.Discard()), WithClock(clock.now)}, options...)

	sim := New(options...)
	if err := sim.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	dev, err := sim.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		dev.Destroy()
		sim.Shutdown()
	})
	return sim, dev, clock
}

func TestDriverLifecycle(t *testing.T) {
	sim := New(WithLogger(logging.Discard()))
	if _, err := sim.Create(); err == nil {
		t.Fatal("Create before Initialize must fail")
	}
	if err := sim.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := sim.Initialize(); err == nil {
		t.Error("second Initialize must fail")
	}
	dev, err := sim.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sim.Create(); err == nil {
		t.Error("only one device may be created")
	}
	dev.Destroy()
	sim.Shutdown()
}

func TestHmdDesc(t *testing.T) {
	_, dev, _ := createDevice(t, WithResolution(1920, 1080), WithRefreshRate(72))

	desc := dev.HmdDesc()
	if desc.Resolution != (hmd.Sizei{W: 1920, H: 1080}) {
		t.Errorf("resolution = %+v", desc.Resolution)
	}
	if desc.DisplayRefresh != 72 {
		t.Errorf("refresh = %v, want 72", desc.DisplayRefresh)
	}
	left, right := desc.DefaultEyeFov[hmd.EyeLeft], desc.DefaultEyeFov[hmd.EyeRight]
	if left.LeftTan != right.RightTan || left.RightTan != right.LeftTan {
		t.Errorf("right eye fov %+v does not mirror left %+v", right, left)
	}
	for _, eye := range hmd.Eyes {
		if desc.MaxEyeFov[eye].UpTan <= desc.DefaultEyeFov[eye].UpTan {
			t.Errorf("%v max fov must exceed the default", eye)
		}
	}
}

func TestRenderDescSplitsIPD(t *testing.T) {
	_, dev, _ := createDevice(t, WithIPD(0.06))
	fov := dev.HmdDesc().DefaultEyeFov[hmd.EyeLeft]

	tests := []struct {
		eye   hmd.Eye
		wantX float32
	}{
		{hmd.EyeLeft, -0.03},
		{hmd.EyeRight, 0.03},
	}
	for _, tt := range tests {
		t.Run(tt.eye.String(), func(t *testing.T) {
			rd := dev.RenderDesc(tt.eye, fov)
			if rd.Eye != tt.eye || rd.Fov != fov {
				t.Errorf("render desc = %+v", rd)
			}
			if !rd.HmdToEyePose.Position.ApproxEqualThreshold(mgl32.Vec3{tt.wantX, 0, 0}, 1e-6) {
				t.Errorf("eye offset = %v, want x %v", rd.HmdToEyePose.Position, tt.wantX)
			}
		})
	}
}

func TestFovTextureSize(t *testing.T) {
	square := hmd.FovPort{UpTan: 1, DownTan: 1, LeftTan: 1, RightTan: 1}
	tests := []struct {
		name    string
		fov     hmd.FovPort
		density float32
		want    hmd.Sizei
	}{
		{"unit density", square, 1, hmd.Sizei{W: 200, H: 200}},
		{"half density", square, 0.5, hmd.Sizei{W: 100, H: 100}},
		{"asymmetric", hmd.FovPort{UpTan: 0.5, DownTan: 1, LeftTan: 1, RightTan: 0.25}, 1, hmd.Sizei{W: 125, H: 150}},
		{"degenerate", hmd.FovPort{}, 1, hmd.Sizei{W: 1, H: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fovTextureSize(tt.fov, 100, tt.density); got != tt.want {
				t.Errorf("fovTextureSize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTexturesNeedGPU(t *testing.T) {
	_, dev, _ := createDevice(t)

	_, err := dev.CreateTextureSwapChain(hmd.SwapChainDesc{
		Format: hmd.TextureFormatR8G8B8A8UnormSrgb,
		Size:   hmd.Sizei{W: 64, H: 32},
	})
	if !errors.Is(err, errNoGPU) {
		t.Errorf("swap chain err = %v, want errNoGPU", err)
	}
	_, err = dev.CreateMirrorTexture(hmd.MirrorTextureDesc{
		Format: hmd.TextureFormatR8G8B8A8UnormSrgb,
		Size:   hmd.Sizei{W: 16, H: 8},
	})
	if !errors.Is(err, errNoGPU) {
		t.Errorf("mirror err = %v, want errNoGPU", err)
	}
}

func TestTiming(t *testing.T) {
	_, dev, clock := createDevice(t, WithRefreshRate(4))

	clock.advance(300 * time.Millisecond)
	if got := dev.TimeInSeconds(); !mgl32.FloatEqualThreshold(float32(got), 0.3, 1e-6) {
		t.Errorf("TimeInSeconds = %v, want 0.3", got)
	}
	if got := dev.PredictedDisplayTime(0); !mgl32.FloatEqualThreshold(float32(got), 0.75, 1e-6) {
		t.Errorf("PredictedDisplayTime = %v, want 0.75", got)
	}
}

func TestTrackingFollowsKeys(t *testing.T) {
	sim, dev, clock := createDevice(t, WithMoveSpeed(1))
	keys := heldKeys{}
	sim.BindKeys(keys)

	dev.TrackingState(0, true)
	keys[common.KeyW] = true
	clock.advance(50 * time.Millisecond)

	state := dev.TrackingState(0.05, true)
	if z := state.HeadPose.Pose.Position.Z(); z >= 0 {
		t.Errorf("head z = %v, want forward motion", z)
	}
	want := hmd.StatusOrientationTracked | hmd.StatusPositionTracked
	if state.HeadPose.Status != want {
		t.Errorf("status = %b, want %b", state.HeadPose.Status, want)
	}
	for h := range hmd.HandCount {
		if state.HandPoses[h].Status != want {
			t.Errorf("hand %d status = %b", h, state.HandPoses[h].Status)
		}
	}
}

func TestInputState(t *testing.T) {
	sim, dev, _ := createDevice(t)
	sim.BindKeys(heldKeys{common.KeyZ: true, common.KeyX: true})
	dev.TrackingState(0, false)

	if _, err := dev.InputState(hmd.ControllerTypeRemote); err == nil {
		t.Error("the remote is not connected")
	}

	in, err := dev.InputState(hmd.ControllerTypeLTouch)
	if err != nil {
		t.Fatalf("InputState: %v", err)
	}
	if !in.TriggerPressed(hmd.HandLeft) {
		t.Error("left trigger must be pressed")
	}
	if in.TriggerPressed(hmd.HandRight) {
		t.Error("right controller was not requested")
	}

	in, err = dev.InputState(hmd.ControllerTypeTouch | hmd.ControllerTypeRemote)
	if err != nil {
		t.Fatalf("InputState: %v", err)
	}
	if in.ControllerType != hmd.ControllerTypeTouch {
		t.Errorf("controller type = %b, want touch only", in.ControllerType)
	}
	if !in.TriggerPressed(hmd.HandRight) {
		t.Error("right trigger must be pressed")
	}
}

func TestSubmitRejectsBadLayers(t *testing.T) {
	_, dev, _ := createDevice(t)

	tests := []struct {
		name   string
		layers []*hmd.LayerEyeFov
	}{
		{"no layers", nil},
		{"nil layer", []*hmd.LayerEyeFov{nil}},
		{"foreign swap chain", []*hmd.LayerEyeFov{{ColorTexture: &hmdtest.SwapChain{}}}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dev.SubmitFrame(int64(i), nil, tt.layers...)
			if err == nil || errors.Is(err, hmd.ErrDeviceLost) {
				t.Errorf("err = %v, want a rejection", err)
			}
		})
	}

	err := dev.SubmitFrame(9, &hmd.ViewScaleDesc{}, &hmd.LayerEyeFov{})
	if err == nil {
		t.Error("a zero world scale must be rejected")
	}
}

func TestDisconnectDrillLosesDevice(t *testing.T) {
	_, dev, _ := createDevice(t, WithDisconnectDrill(2, 2))

	for n := int64(1); n <= 4; n++ {
		err := dev.SubmitFrame(n, nil)
		lost := errors.Is(err, hmd.ErrDeviceLost)
		if wantLost := n == 2 || n == 3; lost != wantLost {
			t.Fatalf("submission %d: err = %v, lost = %v, want %v", n, err, lost, wantLost)
		}

		if lost {
			if got := dev.TrackingState(0, true).HeadPose.Status; got != 0 {
				t.Errorf("submission %d: status = %b while lost", n, got)
			}
			if err := dev.RecenterTrackingOrigin(); !errors.Is(err, hmd.ErrDeviceLost) {
				t.Errorf("recenter while lost: %v", err)
			}
		}
	}
	if err := dev.RecenterTrackingOrigin(); err != nil {
		t.Errorf("recenter after reconnect: %v", err)
	}
}
