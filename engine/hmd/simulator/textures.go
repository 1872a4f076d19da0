package simulator

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// defaultRingLength is the ring length used when the application lets the runtime choose.
const defaultRingLength = 3

var errNoGPU = errors.New("simulator: no GPU device bound")

// gpuTexture is a runtime-owned color buffer on the shared device.
type gpuTexture struct {
	label  string
	size   hmd.Sizei
	format hmd.TextureFormat
	tex    *wgpu.Texture
	view   *wgpu.TextureView
}

var _ renderer.GPUTexture = &gpuTexture{}

func newGPUTexture(device *wgpu.Device, label string, size hmd.Sizei, format hmd.TextureFormat) (*gpuTexture, error) {
	wf := renderer.WGPUFormat(format)
	if wf == wgpu.TextureFormatUndefined {
		return nil, fmt.Errorf("simulator: unsupported texture format %v", format)
	}
	if size.Empty() {
		return nil, fmt.Errorf("simulator: invalid texture size %dx%d", size.W, size.H)
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(size.W),
			Height:             uint32(size.H),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wf,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &gpuTexture{label: label, size: size, format: format, tex: tex, view: view}, nil
}

func (t *gpuTexture) Label() string { return t.label }
func (t *gpuTexture) Size() hmd.Sizei { return t.size }
func (t *gpuTexture) Format() hmd.TextureFormat { return t.format }
func (t *gpuTexture) Texture() *wgpu.Texture { return t.tex }
func (t *gpuTexture) View() *wgpu.TextureView { return t.view }

func (t *gpuTexture) release(blitter renderer.Blitter) {
	if t.view != nil {
		if blitter != nil {
			blitter.Forget(t.view)
		}
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// swapChain is the simulator's texture ring.
type swapChain struct {
	dev       *device
	desc      hmd.SwapChainDesc
	ring      *ring
	buffers   []*gpuTexture
	destroyed bool
}

var _ hmd.TextureSwapChain = &swapChain{}

func (s *swapChain) Length() (int, error) {
	if s.destroyed {
		return 0, errors.New("simulator: swap chain destroyed")
	}
	return len(s.buffers), nil
}

func (s *swapChain) CurrentIndex() (int, error) {
	if s.destroyed {
		return 0, errors.New("simulator: swap chain destroyed")
	}
	return s.ring.current(), nil
}

func (s *swapChain) Buffer(index int) (hmd.Texture, error) {
	if index < 0 || index >= len(s.buffers) {
		return nil, fmt.Errorf("simulator: buffer index %d out of range [0,%d)", index, len(s.buffers))
	}
	return s.buffers[index], nil
}

func (s *swapChain) Commit() error {
	if s.destroyed {
		return errors.New("simulator: commit on destroyed swap chain")
	}
	s.ring.commit()
	return nil
}

func (s *swapChain) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, b := range s.buffers {
		b.release(s.dev.blitter)
	}
	s.dev.forgetChain(s)
}

// latest returns the most recently committed buffer.
func (s *swapChain) latest() (*gpuTexture, bool) {
	i, ok := s.ring.latest()
	if !ok {
		return nil, false
	}
	return s.buffers[i], true
}

// mirrorTexture is the compositor's desktop copy of the headset view.
type mirrorTexture struct {
	dev       *device
	tex       *gpuTexture
	destroyed bool
}

var _ hmd.MirrorTexture = &mirrorTexture{}

func (m *mirrorTexture) Buffer() (hmd.Texture, error) {
	if m.destroyed {
		return nil, errors.New("simulator: mirror destroyed")
	}
	return m.tex, nil
}

func (m *mirrorTexture) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.tex.release(m.dev.blitter)
	m.dev.forgetMirror(m)
}
