package renderer

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed shaders/blit.wgsl
var blitSource string

// blitParamsSize is the size of the blit uniform (a single vec4).
const blitParamsSize = 16

// BlitLayout is the bind group layout of the blit shader: a sampled texture, a sampler and the flip uniform.
var BlitLayout = wgpu.BindGroupLayoutDescriptor{
	Label: "Blit Bind Group Layout",
	Entries: []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeNonFiltering,
			},
		},
		{
			Binding:    2,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: blitParamsSize,
			},
		},
	},
}

type blitKey struct {
	src    *wgpu.TextureView
	format wgpu.TextureFormat
	flip   bool
}

type blitter struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	sampler    *wgpu.Sampler
	params     [2]*wgpu.Buffer // straight, flipped
	pipelines  map[wgpu.TextureFormat]pipeline.Pipeline
	bindGroups map[blitKey]*wgpu.BindGroup
}

// Blitter copies whole textures into render targets with a full-screen triangle.
// It serves both the desktop mirror and runtimes that composite eye buffers on the same device.
type Blitter interface {
	// Blit draws src over all of dst.
	//
	// Parameters:
	//   - src: the view to sample
	//   - dst: the view to render into
	//   - dstFormat: the format of dst
	//   - flipY: true to flip the image vertically
	//
	// Returns:
	//   - error: an error if a GPU object could not be created or the commands could not be encoded
	Blit(src, dst *wgpu.TextureView, dstFormat wgpu.TextureFormat, flipY bool) error

	// Forget drops the cached bind groups that reference src. Call it before releasing src.
	//
	// Parameters:
	//   - src: a view previously passed to Blit
	Forget(src *wgpu.TextureView)

	// Release frees every GPU object the blitter owns.
	Release()
}

var _ Blitter = &blitter{}

// NewBlitter creates a Blitter on device.
//
// Parameters:
//   - device: the device the source and destination textures live on
//   - queue: the device queue
//
// Returns:
//   - Blitter: the blitter
//   - error: an error if the sampler or the uniform buffers could not be created
func NewBlitter(device *wgpu.Device, queue *wgpu.Queue) (Blitter, error) {
	b := &blitter{
		mu:         &sync.Mutex{},
		device:     device,
		queue:      queue,
		pipelines:  make(map[wgpu.TextureFormat]pipeline.Pipeline),
		bindGroups: make(map[blitKey]*wgpu.BindGroup),
	}

	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blit sampler: %w", err)
	}
	b.sampler = sampler

	for i, flip := range []float32{0, 1} {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Blit Params Buffer",
			Size:  blitParamsSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("failed to create blit params: %w", err)
		}
		queue.WriteBuffer(buf, 0, common.SliceToBytes([]float32{flip, 0, 0, 0}))
		b.params[i] = buf
	}

	return b, nil
}

func (b *blitter) Blit(src, dst *wgpu.TextureView, dstFormat wgpu.TextureFormat, flipY bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.pipelineFor(dstFormat)
	if err != nil {
		return err
	}
	bg, err := b.bindGroupFor(p, blitKey{src: src, format: dstFormat, flip: flipY})
	if err != nil {
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       dst,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{A: 1},
			},
		},
	})
	pass.SetPipeline(p.RenderPipeline())
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	return nil
}

func (b *blitter) pipelineFor(format wgpu.TextureFormat) (pipeline.Pipeline, error) {
	if p, ok := b.pipelines[format]; ok {
		return p, nil
	}

	p := pipeline.NewPipeline(fmt.Sprintf("Blit %v", format), blitSource,
		pipeline.WithBindGroupLayouts(BlitLayout),
		pipeline.WithColorFormat(format),
		pipeline.WithDepthAttached(false),
		pipeline.WithCullMode(wgpu.CullModeNone),
	)
	if err := buildRenderPipeline(b.device, p, format); err != nil {
		return nil, fmt.Errorf("failed to create blit pipeline: %w", err)
	}
	b.pipelines[format] = p
	return p, nil
}

func (b *blitter) bindGroupFor(p pipeline.Pipeline, key blitKey) (*wgpu.BindGroup, error) {
	if bg, ok := b.bindGroups[key]; ok {
		return bg, nil
	}

	params := b.params[0]
	if key.flip {
		params = b.params[1]
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Blit Bind Group",
		Layout: p.BindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: key.src},
			{Binding: 1, Sampler: b.sampler},
			{Binding: 2, Buffer: params, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blit bind group: %w", err)
	}
	b.bindGroups[key] = bg
	return bg, nil
}

func (b *blitter) Forget(src *wgpu.TextureView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, bg := range b.bindGroups {
		if k.src == src {
			bg.Release()
			delete(b.bindGroups, k)
		}
	}
}

func (b *blitter) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, bg := range b.bindGroups {
		bg.Release()
		delete(b.bindGroups, k)
	}
	for f, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, f)
	}
	for i, buf := range b.params {
		if buf != nil {
			buf.Release()
			b.params[i] = nil
		}
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
}
