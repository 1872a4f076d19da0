package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the part of a desktop window the renderer presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend
	blitter     Blitter
	logger      *log.Logger

	clearColor wgpu.Color
	eyeFormat  hmd.TextureFormat

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
}

// Renderer draws stereo frames into runtime-owned eye buffers and mirrors the composited result to the desktop.
//
// It owns the GPU device. Runtimes that allocate eye buffers on the same device receive it through Device and
// Queue. Scene code registers pipelines and buffers here and issues DrawCall between Bind and Unbind.
type Renderer interface {
	// Configure allocates the depth buffer for the packed stereo render target.
	//
	// Parameters:
	//   - size: the render target size
	//
	// Returns:
	//   - error: an error if the depth buffer could not be created
	Configure(size hmd.Sizei) error

	// Bind opens an eye pass over tex, clearing color and depth.
	//
	// Parameters:
	//   - tex: a swap chain buffer created on this renderer's device
	//
	// Returns:
	//   - error: an error if tex is not a GPU texture of this device or the pass could not be opened
	Bind(tex hmd.Texture) error

	// Viewport restricts drawing to one eye's rectangle of the bound buffer.
	//
	// Parameters:
	//   - rect: the eye viewport
	Viewport(rect hmd.Recti)

	// Unbind ends the eye pass and submits it.
	//
	// Returns:
	//   - error: an error if no pass is open
	Unbind() error

	// BlitMirror copies the mirror texture over the whole window surface. A zero-sized window is skipped.
	//
	// Parameters:
	//   - mirror: the runtime mirror texture
	//   - windowSize: the current window size
	//
	// Returns:
	//   - error: an error if the surface image could not be acquired or the copy failed
	BlitMirror(mirror hmd.Texture, windowSize hmd.Sizei) error

	// Present shows the surface image acquired by BlitMirror.
	Present()

	// Resize reconfigures the window surface.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Device returns the GPU device.
	Device() *wgpu.Device

	// Queue returns the GPU queue.
	Queue() *wgpu.Queue

	// Blitter returns the shared full-texture copier.
	Blitter() Blitter

	// Pipeline retrieves the registered Pipeline for key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for each pipeline and caches it by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data onto provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes
	//   - indexData: the raw uint32 index data bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitInstanceBuffer allocates the per-instance vertex stream drawn from vertex buffer slot 1.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// InitUniformBindGroup creates the uniform buffers and bind group for one group of a registered pipeline.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the resources on
	//   - pipelineKey: the registered pipeline whose layout is used
	//   - group: the bind group index
	//   - sizes: buffer sizes keyed by binding (nil uses MinBindingSize)
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or resource creation fails
	InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, sizes map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// DrawCall encodes one instanced draw into the bound eye pass.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - meshProvider: the provider holding vertex, instance and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: providers whose bind groups are set in group order
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or no pass is open
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// Release frees the pipelines, the blitter and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the GPU device, configures the window surface and prepares the mirror blitter.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - surface: the desktop window to present to
//   - options: variadic RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter, device or surface format is available
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		logger:        logging.Discard(),
		clearColor:    wgpu.Color{R: 0, G: 0, B: 0.4, A: 0},
		eyeFormat:     hmd.TextureFormatR8G8B8A8UnormSrgb,
		presentMode:   PresentModeUncapped,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hmd.ErrResourceCreationFailed, err)
	}

	r.backend.SetPresentMode(r.presentMode)
	if err := r.backend.ConfigureSurface(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("%w: %w", hmd.ErrResourceCreationFailed, err)
	}

	r.blitter, err = NewBlitter(r.backend.Device(), r.backend.Queue())
	if err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("%w: %w", hmd.ErrResourceCreationFailed, err)
	}

	r.logger.Debug("renderer ready", "surface_format", r.backend.SurfaceFormat(), "eye_format", r.eyeFormat)
	return r, nil
}

func (r *renderer) Configure(size hmd.Sizei) error {
	return r.backend.ConfigureDepth(size)
}

func (r *renderer) Bind(tex hmd.Texture) error {
	view, err := viewOf(tex)
	if err != nil {
		return err
	}
	return r.backend.BeginEyePass(view, r.clearColor)
}

func (r *renderer) Viewport(rect hmd.Recti) {
	r.backend.SetViewport(rect)
}

func (r *renderer) Unbind() error {
	return r.backend.EndEyePass()
}

func (r *renderer) BlitMirror(mirror hmd.Texture, windowSize hmd.Sizei) error {
	if windowSize.Empty() {
		return nil
	}

	src, err := viewOf(mirror)
	if err != nil {
		return err
	}
	dst, err := r.backend.AcquireSurfaceView()
	if err != nil {
		return fmt.Errorf("failed to acquire surface image: %w", err)
	}
	return r.blitter.Blit(src, dst, r.backend.SurfaceFormat(), false)
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Warn("surface reconfigure failed", "width", width, "height", height, "err", err)
	}
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) Blitter() Blitter {
	return r.blitter
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p, WGPUFormat(r.eyeFormat)); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	return r.backend.InitInstanceBuffer(provider, size)
}

func (r *renderer) InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, sizes map[int]uint64) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	descriptors := p.BindGroupLayoutDescriptors()
	if group < 0 || group >= len(descriptors) {
		return fmt.Errorf("render pipeline %q has no bind group %d", pipelineKey, group)
	}
	return r.backend.InitUniformBindGroup(provider, p.BindGroupLayout(group), descriptors[group], sizes)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()

	if r.blitter != nil {
		r.blitter.Release()
	}
	r.backend.Release()
}
