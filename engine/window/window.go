package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the desktop mirror window.
// Input is poll-and-query: callbacks only queue key events, which the frame loop drains once per iteration.
type Window interface {
	// PollEvents processes pending window system events without blocking.
	PollEvents()

	// SwapBuffers presents the desktop frame through the registered swap callback.
	SwapBuffers()

	// ShouldClose reports whether the window was asked to close (close button or Escape).
	//
	// Returns:
	//   - bool: true once closing was requested
	ShouldClose() bool

	// KeyEvents drains the key events queued since the previous call.
	//
	// Returns:
	//   - []common.KeyEvent: the queued events in arrival order
	KeyEvents() []common.KeyEvent

	// KeyDown queries whether key is currently held.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true while the key is pressed
	KeyDown(key int) bool

	// SetSwapCallback sets the function SwapBuffers calls to present the desktop surface.
	//
	// Parameters:
	//   - callback: the present function (or nil to disable)
	SetSwapCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// resizable allows the user to resize the window.
	resizable bool

	// keys buffers key transitions between polls.
	keys *common.KeyQueue

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// onSwap presents the desktop surface.
	onSwap func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window with the specified options.
// Must be called from the main goroutine; the OS thread is locked for GLFW.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if GLFW or the window could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Oxy VR Mirror",
		width:     666,
		height:    396,
		resizable: false,
		keys:      common.NewKeyQueue(64),
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) PollEvents() {
	platformPollEvents(w)
}

func (w *engineWindow) SwapBuffers() {
	if w.onSwap != nil {
		w.onSwap()
	}
}

func (w *engineWindow) ShouldClose() bool {
	return !platformIsRunningCheck(w)
}

func (w *engineWindow) KeyEvents() []common.KeyEvent {
	return w.keys.Drain()
}

func (w *engineWindow) KeyDown(key int) bool {
	return platformKeyDown(w, key)
}

func (w *engineWindow) SetSwapCallback(callback func()) {
	w.onSwap = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
