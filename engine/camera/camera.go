package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

type eyeCamera struct {
	mu *sync.Mutex

	eye hmd.Eye

	projection     mgl32.Mat4
	view           mgl32.Mat4
	viewProjection mgl32.Mat4
	position       mgl32.Vec3

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// EyeCamera holds the matrices one eye is drawn with and the GPU resources they are uploaded to.
// The frame loop hands it a new projection and view every time that eye is rendered.
// Each eye owns its own uniform buffer so both eyes can be recorded into one render pass.
type EyeCamera interface {
	// Eye returns the eye this camera renders.
	Eye() hmd.Eye

	// Update stores new eye matrices and recomputes the combined view-projection.
	//
	// Parameters:
	//   - projection: the eye projection
	//   - view: the eye view matrix
	//   - eyePosition: the world-space point between the eyes
	Update(projection, view mgl32.Mat4, eyePosition mgl32.Vec3)

	// ViewProjection returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// Position returns the eye position passed to the last Update.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space position
	Position() mgl32.Vec3

	// Uniform packs the current state for upload.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform contents
	Uniform() GPUCameraUniform

	// BindGroupProvider returns the provider holding the camera's uniform buffer and bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the camera resources
	BindGroupProvider() bind_group_provider.BindGroupProvider
}

var _ EyeCamera = &eyeCamera{}

// NewEyeCamera creates a camera for eye with identity matrices.
//
// Parameters:
//   - eye: the eye the camera renders
//   - options: functional options to configure the camera
//
// Returns:
//   - EyeCamera: the camera
func NewEyeCamera(eye hmd.Eye, options ...CameraBuilderOption) EyeCamera {
	c := &eyeCamera{
		mu:                &sync.Mutex{},
		eye:               eye,
		projection:        mgl32.Ident4(),
		view:              mgl32.Ident4(),
		viewProjection:    mgl32.Ident4(),
		bindGroupProvider: bind_group_provider.NewBindGroupProvider("camera_" + eye.String()),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *eyeCamera) Eye() hmd.Eye {
	return c.eye
}

func (c *eyeCamera) Update(projection, view mgl32.Mat4, eyePosition mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = projection
	c.view = view
	c.viewProjection = projection.Mul4(view)
	c.position = eyePosition
}

func (c *eyeCamera) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *eyeCamera) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *eyeCamera) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:    c.viewProjection,
		EyePosition: c.position,
	}
}

func (c *eyeCamera) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}
