package hmd

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Eye identifies one of the two stereo views.
type Eye int

const (
	// EyeLeft is the left eye view, always rendered first.
	EyeLeft Eye = iota

	// EyeRight is the right eye view.
	EyeRight

	// EyeCount is the number of eyes.
	EyeCount
)

// Eyes is the fixed per-eye iteration order.
var Eyes = [EyeCount]Eye{EyeLeft, EyeRight}

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	default:
		return fmt.Sprintf("eye(%d)", int(e))
	}
}

// Hand identifies a tracked controller.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
	HandCount
)

// FovPort describes a field of view as the tangents of the four half angles measured from the view axis.
type FovPort struct {
	UpTan    float32 `yaml:"up_tan"`
	DownTan  float32 `yaml:"down_tan"`
	LeftTan  float32 `yaml:"left_tan"`
	RightTan float32 `yaml:"right_tan"`
}

// Sizei is an integer width and height in pixels.
type Sizei struct {
	W int
	H int
}

// Empty reports whether either dimension is non-positive.
func (s Sizei) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Div returns s scaled down by divisor, never below one pixel per dimension.
//
// Parameters:
//   - divisor: the integer scale-down factor (values below 1 are treated as 1)
//
// Returns:
//   - Sizei: the scaled size
func (s Sizei) Div(divisor int) Sizei {
	if divisor < 1 {
		divisor = 1
	}
	return Sizei{W: max(s.W/divisor, 1), H: max(s.H/divisor, 1)}
}

// Vector2i is an integer pixel position.
type Vector2i struct {
	X int
	Y int
}

// Recti is a pixel rectangle inside a render target.
type Recti struct {
	Pos  Vector2i
	Size Sizei
}

// Pose is a rigid transform: an orientation followed by a translation.
type Pose struct {
	Orientation mgl32.Quat
	Position    mgl32.Vec3
}

// IdentityPose returns the pose with no rotation at the origin.
func IdentityPose() Pose {
	return Pose{Orientation: mgl32.QuatIdent()}
}

// Matrix returns the world transform of the pose (translation * rotation).
//
// Returns:
//   - mgl32.Mat4: the column-major world matrix
func (p Pose) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).Mul4(p.Orientation.Mat4())
}

// Transform applies offset in the local frame of p, yielding offset's pose expressed in p's parent space.
//
// Parameters:
//   - offset: a pose relative to p
//
// Returns:
//   - Pose: the composed pose
func (p Pose) Transform(offset Pose) Pose {
	return Pose{
		Orientation: p.Orientation.Mul(offset.Orientation).Normalize(),
		Position:    p.Position.Add(p.Orientation.Rotate(offset.Position)),
	}
}

// StatusFlags describes the quality of a tracked pose.
type StatusFlags uint32

const (
	StatusOrientationTracked StatusFlags = 1 << iota
	StatusPositionTracked
)

// PoseState is a tracked pose and its status at a point in time.
type PoseState struct {
	Pose       Pose
	Status     StatusFlags
	TimeInSecs float64
}

// TrackingState is the result of a pose prediction query.
type TrackingState struct {
	HeadPose  PoseState
	HandPoses [HandCount]PoseState
}

// ControllerType selects which controllers an input query reads.
type ControllerType uint32

const (
	ControllerTypeLTouch ControllerType = 1 << iota
	ControllerTypeRTouch
	ControllerTypeRemote

	ControllerTypeTouch = ControllerTypeLTouch | ControllerTypeRTouch
)

// Button is a controller button bitmask.
type Button uint32

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonEnter
)

// TriggerPressThreshold is the analog value above which a trigger counts as pressed.
const TriggerPressThreshold = 0.5

// InputState is the most recently polled controller input. It is never time-predicted.
type InputState struct {
	TimeInSeconds  float64
	Buttons        Button
	IndexTrigger   [HandCount]float32
	HandTrigger    [HandCount]float32
	ControllerType ControllerType
}

// TriggerPressed reports whether the index trigger of hand is past TriggerPressThreshold.
func (s InputState) TriggerPressed(hand Hand) bool {
	return s.IndexTrigger[hand] > TriggerPressThreshold
}

// HmdDesc is the static description of the connected headset.
type HmdDesc struct {
	ProductName    string
	Manufacturer   string
	Resolution     Sizei
	DisplayRefresh float32
	DefaultEyeFov  [EyeCount]FovPort
	MaxEyeFov      [EyeCount]FovPort
}

// EyeRenderDesc is the per-eye rendering description: the field of view and the fixed head-to-eye offset.
type EyeRenderDesc struct {
	Eye          Eye
	Fov          FovPort
	HmdToEyePose Pose
}

// TextureFormat enumerates the color formats a swap chain can be created with.
type TextureFormat int

const (
	TextureFormatUnknown TextureFormat = iota
	TextureFormatR8G8B8A8Unorm
	TextureFormatR8G8B8A8UnormSrgb
	TextureFormatB8G8R8A8UnormSrgb
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case TextureFormatR8G8B8A8UnormSrgb:
		return "R8G8B8A8_UNORM_SRGB"
	case TextureFormatB8G8R8A8UnormSrgb:
		return "B8G8R8A8_UNORM_SRGB"
	default:
		return "UNKNOWN"
	}
}

// SwapChainDesc describes a texture swap chain to create.
type SwapChainDesc struct {
	Format      TextureFormat
	Size        Sizei
	MipLevels   int
	SampleCount int
	// Length requests a ring length. Zero lets the runtime choose.
	Length int
}

// MirrorTextureDesc describes the desktop mirror texture to create.
type MirrorTextureDesc struct {
	Format TextureFormat
	Size   Sizei
}

// LayerFlags modifies how the compositor reads a layer.
type LayerFlags uint32

const (
	// LayerFlagTextureOriginAtBottomLeft marks textures whose first row is the bottom of the image.
	LayerFlagTextureOriginAtBottomLeft LayerFlags = 1 << iota
	LayerFlagHeadLocked
)

// LayerEyeFov is the per-frame submission payload: one shared color texture ring, per-eye viewport, field of view and
// render pose, and the single tracking sample time both eye poses came from.
type LayerEyeFov struct {
	Flags            LayerFlags
	ColorTexture     TextureSwapChain
	Viewport         [EyeCount]Recti
	Fov              [EyeCount]FovPort
	RenderPose       [EyeCount]Pose
	SensorSampleTime float64
}

// ViewScaleDesc carries the world scale and the per-eye offsets used by the compositor for time warp.
type ViewScaleDesc struct {
	HmdToEyePose                 [EyeCount]Pose
	HmdSpaceToWorldScaleInMeters float32
}
