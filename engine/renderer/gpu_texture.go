package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPUTexture is an hmd.Texture backed by a WebGPU texture that the renderer can draw into or sample from.
// Runtimes that share the renderer's device hand these out as swap chain and mirror buffers.
type GPUTexture interface {
	hmd.Texture

	// Texture returns the underlying GPU texture.
	Texture() *wgpu.Texture

	// View returns the default full-texture view.
	View() *wgpu.TextureView
}

// WGPUFormat maps a runtime texture format onto its WebGPU equivalent.
//
// Parameters:
//   - f: the runtime texture format
//
// Returns:
//   - wgpu.TextureFormat: the WebGPU format, or wgpu.TextureFormatUndefined for unknown formats
func WGPUFormat(f hmd.TextureFormat) wgpu.TextureFormat {
	switch f {
	case hmd.TextureFormatR8G8B8A8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case hmd.TextureFormatR8G8B8A8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case hmd.TextureFormatB8G8R8A8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	default:
		return wgpu.TextureFormatUndefined
	}
}

// viewOf returns the GPU view behind a runtime texture.
func viewOf(tex hmd.Texture) (*wgpu.TextureView, error) {
	if tex == nil {
		return nil, fmt.Errorf("no texture")
	}
	g, ok := tex.(GPUTexture)
	if !ok {
		return nil, fmt.Errorf("texture %q is not backed by this renderer's device", tex.Label())
	}
	if g.View() == nil {
		return nil, fmt.Errorf("texture %q has been released", tex.Label())
	}
	return g.View(), nil
}
