package layer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
)

// ErrPoseNotRecorded is returned by ToSubmission when an eye has no pose for the current frame.
var ErrPoseNotRecorded = errors.New("layer: eye pose not recorded this frame")

// PackViewports lays the eye viewports side by side inside one shared render target.
// The left eye starts at x = 0, the right eye starts at the left eye's width, and both start at y = 0.
//
// Parameters:
//   - sizes: the recommended texture size of each eye
//
// Returns:
//   - [hmd.EyeCount]hmd.Recti: the viewport of each eye
//   - hmd.Sizei: the combined render target size (sum of widths, max of heights)
func PackViewports(sizes [hmd.EyeCount]hmd.Sizei) ([hmd.EyeCount]hmd.Recti, hmd.Sizei) {
	left, right := sizes[hmd.EyeLeft], sizes[hmd.EyeRight]

	var viewports [hmd.EyeCount]hmd.Recti
	viewports[hmd.EyeLeft] = hmd.Recti{Pos: hmd.Vector2i{X: 0, Y: 0}, Size: left}
	viewports[hmd.EyeRight] = hmd.Recti{Pos: hmd.Vector2i{X: left.W, Y: 0}, Size: right}

	return viewports, hmd.Sizei{W: left.W + right.W, H: max(left.H, right.H)}
}

// composer implements the Composer interface.
type composer struct {
	layer    hmd.LayerEyeFov
	target   hmd.Sizei
	recorded [hmd.EyeCount]bool
}

// Composer builds the per-frame layer payload submitted to the compositor.
// Viewports and field of view are fixed at construction; poses and the sample time are written every frame.
type Composer interface {
	// SetColorTexture sets the swap chain the layer's viewports index into.
	//
	// Parameters:
	//   - chain: the runtime swap chain
	SetColorTexture(chain hmd.TextureSwapChain)

	// Viewport returns the rectangle of eye inside the render target.
	//
	// Parameters:
	//   - eye: the eye
	//
	// Returns:
	//   - hmd.Recti: the eye viewport
	Viewport(eye hmd.Eye) hmd.Recti

	// RenderTargetSize returns the combined size of both packed viewports.
	//
	// Returns:
	//   - hmd.Sizei: the render target size
	RenderTargetSize() hmd.Sizei

	// BeginFrame forgets which eyes have been recorded. Call once per frame before RecordPose.
	BeginFrame()

	// RecordPose stores the render pose of eye and the frame's shared sample time.
	//
	// Parameters:
	//   - eye: the eye being rendered
	//   - pose: the eye pose the view matrix was built from
	//   - sampleTime: the time the tracking sample behind both eye poses was taken
	RecordPose(eye hmd.Eye, pose hmd.Pose, sampleTime float64)

	// ToSubmission returns the completed layer payload.
	//
	// Returns:
	//   - hmd.LayerEyeFov: the layer, valid until the next RecordPose
	//   - error: ErrPoseNotRecorded if either eye has not been recorded since BeginFrame
	ToSubmission() (hmd.LayerEyeFov, error)
}

var _ Composer = &composer{}

// NewComposer packs the eye viewports and stores the per-eye field of view.
//
// Parameters:
//   - fov: the render field of view of each eye
//   - sizes: the recommended texture size of each eye
//   - options: functional options for the layer
//
// Returns:
//   - Composer: the composer
func NewComposer(fov [hmd.EyeCount]hmd.FovPort, sizes [hmd.EyeCount]hmd.Sizei, options ...ComposerBuilderOption) Composer {
	c := &composer{}
	c.layer.Viewport, c.target = PackViewports(sizes)
	c.layer.Fov = fov
	for _, eye := range hmd.Eyes {
		c.layer.RenderPose[eye] = hmd.IdentityPose()
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *composer) SetColorTexture(chain hmd.TextureSwapChain) {
	c.layer.ColorTexture = chain
}

func (c *composer) Viewport(eye hmd.Eye) hmd.Recti {
	return c.layer.Viewport[eye]
}

func (c *composer) RenderTargetSize() hmd.Sizei {
	return c.target
}

func (c *composer) BeginFrame() {
	c.recorded = [hmd.EyeCount]bool{}
}

func (c *composer) RecordPose(eye hmd.Eye, pose hmd.Pose, sampleTime float64) {
	c.layer.RenderPose[eye] = pose
	c.layer.SensorSampleTime = sampleTime
	c.recorded[eye] = true
}

func (c *composer) ToSubmission() (hmd.LayerEyeFov, error) {
	for _, eye := range hmd.Eyes {
		if !c.recorded[eye] {
			return hmd.LayerEyeFov{}, fmt.Errorf("%w: %s", ErrPoseNotRecorded, eye)
		}
	}
	return c.layer, nil
}
