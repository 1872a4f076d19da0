package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how mirror frames are presented to the desktop window.
type PresentMode int

const (
	// PresentModeUncapped presents immediately without waiting for vertical blank.
	// The headset runtime paces the frame loop, so the desktop mirror must never block it.
	PresentModeUncapped PresentMode = iota

	// PresentModeVSync waits for the monitor's vertical blank before presenting.
	PresentModeVSync
)

// ParsePresentMode maps a configuration name onto a PresentMode.
//
// Parameters:
//   - name: "immediate" or "vsync"
//
// Returns:
//   - PresentMode: the matching mode, PresentModeUncapped for anything else
func ParsePresentMode(name string) PresentMode {
	if name == "vsync" {
		return PresentModeVSync
	}
	return PresentModeUncapped
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
