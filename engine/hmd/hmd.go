package hmd

// Driver is the entry point into an HMD runtime.
// A driver is initialized once per process and creates at most one Device.
type Driver interface {
	// Initialize loads and starts the runtime.
	//
	// Returns:
	//   - error: an error if the runtime cannot be started
	Initialize() error

	// Create opens a connection to the first available headset.
	//
	// Returns:
	//   - Device: the connected device
	//   - error: an error if no headset is present
	Create() (Device, error)

	// Shutdown stops the runtime. All devices must be destroyed first.
	Shutdown()
}

// Device is a connected headset session on the runtime.
// Devices are not reentrant: every call must come from the same goroutine.
type Device interface {
	// HmdDesc returns the static headset description.
	//
	// Returns:
	//   - HmdDesc: the headset description
	HmdDesc() HmdDesc

	// RenderDesc returns the render description for an eye at the given field of view.
	//
	// Parameters:
	//   - eye: the eye to describe
	//   - fov: the field of view to render with
	//
	// Returns:
	//   - EyeRenderDesc: the per-eye render description
	RenderDesc(eye Eye, fov FovPort) EyeRenderDesc

	// FovTextureSize returns the recommended texture size for an eye at the given field of view and density.
	//
	// Parameters:
	//   - eye: the eye to size
	//   - fov: the field of view to render with
	//   - pixelsPerDisplayPixel: render density relative to the panel at the center of the view
	//
	// Returns:
	//   - Sizei: the recommended texture size
	FovTextureSize(eye Eye, fov FovPort, pixelsPerDisplayPixel float32) Sizei

	// CreateTextureSwapChain allocates a ring of color textures the application renders into.
	//
	// Parameters:
	//   - desc: the swap chain description
	//
	// Returns:
	//   - TextureSwapChain: the created ring
	//   - error: an error if the description is rejected
	CreateTextureSwapChain(desc SwapChainDesc) (TextureSwapChain, error)

	// CreateMirrorTexture allocates the texture the compositor mirrors the headset view into.
	//
	// Parameters:
	//   - desc: the mirror texture description
	//
	// Returns:
	//   - MirrorTexture: the created mirror
	//   - error: an error if the description is rejected
	CreateMirrorTexture(desc MirrorTextureDesc) (MirrorTexture, error)

	// PredictedDisplayTime estimates when the frame with the given index will be displayed, in runtime seconds.
	//
	// Parameters:
	//   - frameIndex: the application frame index (0 means the next frame)
	//
	// Returns:
	//   - float64: the absolute predicted display time in seconds
	PredictedDisplayTime(frameIndex int64) float64

	// TrackingState predicts head and hand poses at an absolute time.
	//
	// Parameters:
	//   - absTime: the absolute time in runtime seconds
	//   - latencyMarker: true when the result will be used for rendering
	//
	// Returns:
	//   - TrackingState: the predicted poses
	TrackingState(absTime float64, latencyMarker bool) TrackingState

	// InputState returns the latest polled controller input for the given controller types.
	//
	// Parameters:
	//   - controllers: the controllers to read
	//
	// Returns:
	//   - InputState: the controller input
	//   - error: an error if the controllers are not connected
	InputState(controllers ControllerType) (InputState, error)

	// TimeInSeconds returns the current runtime time.
	//
	// Returns:
	//   - float64: runtime seconds
	TimeInSeconds() float64

	// SubmitFrame hands the frame's layers to the compositor.
	//
	// Parameters:
	//   - frameIndex: the frame index the poses were predicted for
	//   - viewScale: world scale and eye offsets, or nil for defaults
	//   - layers: the layers to composite, bottom first
	//
	// Returns:
	//   - error: an error if the compositor rejects the frame or the display was lost
	SubmitFrame(frameIndex int64, viewScale *ViewScaleDesc, layers ...*LayerEyeFov) error

	// RecenterTrackingOrigin makes the current head yaw and position the tracking origin.
	//
	// Returns:
	//   - error: an error if the headset is not tracked
	RecenterTrackingOrigin() error

	// Destroy closes the device connection.
	Destroy()
}

// Texture is a GPU color buffer owned by the runtime.
type Texture interface {
	// Label returns a debug name for the texture.
	Label() string

	// Size returns the texture size in pixels.
	Size() Sizei

	// Format returns the texture color format.
	Format() TextureFormat
}

// TextureSwapChain is a ring of textures cycled between the application and the compositor.
// Exactly one buffer is writable at a time: the one at CurrentIndex, until Commit advances the ring.
type TextureSwapChain interface {
	// Length returns the number of buffers in the ring.
	//
	// Returns:
	//   - int: the ring length
	//   - error: an error if the ring is invalid
	Length() (int, error)

	// CurrentIndex returns the index of the buffer the application may write this frame.
	//
	// Returns:
	//   - int: the writable buffer index
	//   - error: an error if no buffer is available
	CurrentIndex() (int, error)

	// Buffer returns the texture at index.
	//
	// Parameters:
	//   - index: a ring index in [0, Length)
	//
	// Returns:
	//   - Texture: the buffer texture
	//   - error: an error if the index is out of range
	Buffer(index int) (Texture, error)

	// Commit hands the current buffer to the compositor and advances the ring.
	//
	// Returns:
	//   - error: an error if the commit violates the ring protocol
	Commit() error

	// Destroy releases the ring.
	Destroy()
}

// MirrorTexture is the read-only desktop mirror of the composited headset view.
type MirrorTexture interface {
	// Buffer returns the readable mirror texture.
	//
	// Returns:
	//   - Texture: the mirror texture
	//   - error: an error if the mirror has been destroyed
	Buffer() (Texture, error)

	// Destroy releases the mirror.
	Destroy()
}
