package engine

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/layer"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/pose"
	"github.com/Carmen-Shannon/oxy-vr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-vr/engine/session"
	"github.com/Carmen-Shannon/oxy-vr/engine/swapchain"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// Window is the desktop window the mirror is shown in. It also delivers keyboard input.
type Window interface {
	// PollEvents processes pending window system events and queues key events.
	PollEvents()

	// SwapBuffers presents the desktop back buffer.
	SwapBuffers()

	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool

	// KeyEvents drains the key events queued since the previous call.
	KeyEvents() []common.KeyEvent

	// Width returns the window client width in pixels.
	Width() int

	// Height returns the window client height in pixels.
	Height() int
}

// Framebuffer owns the GPU render target the eyes are drawn into and the desktop mirror presentation.
type Framebuffer interface {
	// Configure allocates size-dependent attachments (depth) for the packed stereo render target.
	Configure(size hmd.Sizei) error

	// Bind attaches tex as the color target and clears color and depth.
	Bind(tex hmd.Texture) error

	// Viewport restricts drawing to rect inside the bound target.
	Viewport(rect hmd.Recti)

	// Unbind finishes drawing into the bound target.
	Unbind() error

	// BlitMirror draws the mirror texture onto the desktop window.
	BlitMirror(mirror hmd.Texture, windowSize hmd.Sizei) error
}

// SceneRenderer draws the world once per eye.
type SceneRenderer interface {
	// Render draws the scene with the given eye matrices.
	//
	// Parameters:
	//   - projection: the eye projection
	//   - view: the eye view matrix
	//   - eyePosition: the point between the eyes, used for lighting
	Render(projection, view mgl32.Mat4, eyePosition mgl32.Vec3)
}

// FramePreparer is optionally implemented by a SceneRenderer to update per-frame state before the eyes are drawn.
type FramePreparer interface {
	PrepareFrame(prediction pose.Prediction, input hmd.InputState)
}

// engine implements the Engine interface.
// Drives one synchronous frame state machine on the calling goroutine.
type engine struct {
	sess        session.Session
	window      Window
	framebuffer Framebuffer
	scene       SceneRenderer
	preparer    FramePreparer
	predictor   pose.Predictor
	profiler    *profiler.Profiler
	logger      *log.Logger

	swapChainLength int
	textureFormat   hmd.TextureFormat
	layerFlags      hmd.LayerFlags
	recenterOnInit  bool
	observer        func(from, to FrameState)

	descriptor session.Descriptor
	composer   layer.Composer
	swapChain  swapchain.SwapChain
	mirror     swapchain.Mirror

	frameIndex  int64
	state       FrameState
	initialized bool
}

// Engine is the frame loop controller.
// Each iteration predicts poses, renders both eyes into one swap chain buffer, submits the layer
// and mirrors the result to the desktop window.
type Engine interface {
	// Init acquires the stereo resources: descriptor, composer, render target, swap chain and mirror.
	// On failure everything created so far is released in reverse order.
	//
	// Returns:
	//   - error: an error wrapping hmd.ErrResourceCreationFailed if a resource could not be created
	Init() error

	// Run loops until the window asks to close. Per-frame errors are logged and never returned.
	Run()

	// Shutdown releases the mirror then the swap chain. The caller closes the session afterwards.
	Shutdown()

	// FrameIndex returns the index of the most recent frame. It is 0 before the first iteration.
	//
	// Returns:
	//   - int64: the frame counter
	FrameIndex() int64

	// State returns the current frame state. It is StateIdle between iterations.
	//
	// Returns:
	//   - FrameState: the current state
	State() FrameState

	// Descriptor returns the session descriptor captured by Init.
	//
	// Returns:
	//   - session.Descriptor: the descriptor
	Descriptor() session.Descriptor
}

var _ Engine = &engine{}

// NewEngine creates a frame loop over an open session.
//
// Parameters:
//   - sess: the open session; it must outlive the engine
//   - window: the desktop window
//   - framebuffer: the GPU render target and mirror presenter
//   - scene: the scene drawn for each eye
//   - options: functional options for the engine
//
// Returns:
//   - Engine: the engine, not yet initialized
func NewEngine(sess session.Session, window Window, framebuffer Framebuffer, scene SceneRenderer, options ...EngineBuilderOption) Engine {
	e := &engine{
		sess:           sess,
		window:         window,
		framebuffer:    framebuffer,
		scene:          scene,
		logger:         sess.Logger(),
		textureFormat:  hmd.TextureFormatR8G8B8A8UnormSrgb,
		recenterOnInit: true,
		state:          StateIdle,
	}
	if p, ok := scene.(FramePreparer); ok {
		e.preparer = p
	}
	for _, opt := range options {
		opt(e)
	}
	e.logger = logging.Component(e.logger, "engine")
	return e
}

func (e *engine) Init() error {
	if e.initialized {
		return nil
	}

	e.descriptor = e.sess.Describe()
	e.composer = layer.NewComposer(e.descriptor.Fov(), e.descriptor.EyeTextureSizes, layer.WithFlags(e.layerFlags))

	if err := e.framebuffer.Configure(e.descriptor.RenderTargetSize); err != nil {
		return fmt.Errorf("%w: configure render target: %w", hmd.ErrResourceCreationFailed, err)
	}

	sc, err := swapchain.New(e.sess, e.descriptor.RenderTargetSize,
		swapchain.WithLength(e.swapChainLength),
		swapchain.WithFormat(e.textureFormat),
		swapchain.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	e.swapChain = sc
	e.composer.SetColorTexture(sc.Handle())

	m, err := swapchain.NewMirror(e.sess, e.descriptor.MirrorSize, e.textureFormat)
	if err != nil {
		e.swapChain.Destroy()
		e.swapChain = nil
		return err
	}
	e.mirror = m

	if e.predictor == nil {
		e.predictor = pose.NewPredictor(e.sess)
	}
	if e.recenterOnInit {
		if err := e.predictor.Recenter(); err != nil {
			e.logger.Warn("initial recenter failed", "err", err)
		}
	}

	e.initialized = true
	e.logger.Info("engine initialized", "swap_chain_length", sc.Length())
	return nil
}

func (e *engine) Run() {
	if !e.initialized {
		panic("engine: Run called before Init")
	}

	for !e.window.ShouldClose() {
		result := e.frame()
		if e.profiler != nil {
			e.profiler.Record(result)
		}
	}
	e.logger.Info("window closed", "frames", e.frameIndex)
}

func (e *engine) Shutdown() {
	if e.mirror != nil {
		e.mirror.Destroy()
		e.mirror = nil
	}
	if e.swapChain != nil {
		e.swapChain.Destroy()
		e.swapChain = nil
	}
	e.initialized = false
}

func (e *engine) FrameIndex() int64 {
	return e.frameIndex
}

func (e *engine) State() FrameState {
	return e.state
}

func (e *engine) Descriptor() session.Descriptor {
	return e.descriptor
}

// transition moves the state machine along a table edge. An illegal edge is a bug in the loop and panics.
func (e *engine) transition(to FrameState) {
	if !CanTransition(e.state, to) {
		panic(fmt.Sprintf("engine: illegal frame transition %s -> %s", e.state, to))
	}
	from := e.state
	e.state = to
	if e.observer != nil {
		e.observer(from, to)
	}
}

// frame runs one loop iteration and always ends in StateIdle with the desktop presented and input polled.
func (e *engine) frame() profiler.FrameResult {
	e.frameIndex++
	e.transition(StatePosePredicted)

	pred := e.predictor.Predict(e.frameIndex)
	if e.preparer != nil {
		in, err := e.predictor.Input()
		if err != nil {
			e.logger.Debug("controller input unavailable", "frame", e.frameIndex, "err", err)
		}
		e.preparer.PrepareFrame(pred, in)
	}
	e.composer.BeginFrame()

	result := e.renderAndSubmit(pred)

	e.present()
	e.transition(StateIdle)
	return result
}

func (e *engine) renderAndSubmit(pred pose.Prediction) profiler.FrameResult {
	_, buffer, err := e.swapChain.AcquireCurrent()
	if err != nil {
		e.warn("acquire swap chain buffer", err)
		return profiler.FrameSkipped
	}
	e.transition(StateBufferAcquired)

	if err := e.framebuffer.Bind(buffer); err != nil {
		e.warn("bind eye buffer", err)
		// The buffer holds stale contents. It is committed only to keep acquire and commit paired; submit is skipped.
		if err := e.swapChain.Commit(); err != nil {
			e.warn("commit unrendered buffer", err)
			return profiler.FrameSkipped
		}
		e.transition(StateCommitted)
		return profiler.FrameSkipped
	}

	e.renderEyes(pred)
	e.transition(StateEyesRendered)

	if err := e.framebuffer.Unbind(); err != nil {
		e.warn("finish eye pass", err)
	}
	if err := e.swapChain.Commit(); err != nil {
		e.warn("commit eye buffer", err)
		return profiler.FrameDropped
	}
	e.transition(StateCommitted)

	if err := e.submit(); err != nil {
		e.warn("submit frame", err)
		return profiler.FrameDropped
	}
	e.transition(StateSubmitted)

	if err := e.blitMirror(); err != nil {
		e.warn("blit mirror", err)
		return profiler.FrameMirrorFailed
	}
	e.transition(StateMirrorBlitted)
	return profiler.FrameComplete
}

// renderEyes draws the left eye then the right eye into their viewports of the bound buffer.
func (e *engine) renderEyes(pred pose.Prediction) {
	center := pred.EyeCenter()
	for _, eye := range hmd.Eyes {
		e.framebuffer.Viewport(e.composer.Viewport(eye))
		e.composer.RecordPose(eye, pred.Eyes[eye], pred.SampleTime)
		e.scene.Render(e.descriptor.EyeProjections[eye], pred.View(eye), center)
	}
}

func (e *engine) submit() error {
	payload, err := e.composer.ToSubmission()
	if err != nil {
		return fmt.Errorf("%w: %w", hmd.ErrFrameSubmitFailed, err)
	}
	return e.sess.SubmitFrame(e.frameIndex, payload)
}

func (e *engine) blitMirror() error {
	tex, err := e.mirror.Texture()
	if err != nil {
		return err
	}
	size := hmd.Sizei{W: e.window.Width(), H: e.window.Height()}
	if err := e.framebuffer.BlitMirror(tex, size); err != nil {
		return fmt.Errorf("%w: %w", hmd.ErrMirrorBlitFailed, err)
	}
	return nil
}

// present shows the desktop frame, polls the window and handles loop-level keys.
func (e *engine) present() {
	e.window.SwapBuffers()
	e.window.PollEvents()

	if common.Pressed(e.window.KeyEvents(), common.KeyR) {
		if err := e.predictor.Recenter(); err != nil {
			e.warn("recenter", err)
		}
	}
}

func (e *engine) warn(op string, err error) {
	level := log.WarnLevel
	if errors.Is(err, hmd.ErrProtocolViolation) {
		level = log.ErrorLevel
	}
	e.logger.Log(level, op+" failed", "frame", e.frameIndex, "err", err)
}
