package swapchain

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/session"
)

// mirror implements the Mirror interface.
type mirror struct {
	handle  hmd.MirrorTexture
	release func()
	size    hmd.Sizei
}

// Mirror is the desktop-side copy of the composited headset view.
type Mirror interface {
	// Texture returns the readable mirror texture.
	//
	// Returns:
	//   - hmd.Texture: the mirror texture
	//   - error: an error wrapping hmd.ErrMirrorBlitFailed if the runtime could not provide it
	Texture() (hmd.Texture, error)

	// Size returns the mirror size in pixels.
	//
	// Returns:
	//   - hmd.Sizei: the mirror size
	Size() hmd.Sizei

	// Destroy releases the mirror and its hold on the session.
	Destroy()
}

var _ Mirror = &mirror{}

// NewMirror creates the mirror texture the compositor copies each submitted frame into.
//
// Parameters:
//   - sess: the owning session; it is retained until Destroy
//   - size: the mirror size, usually the desktop window size
//   - format: the mirror color format
//
// Returns:
//   - Mirror: the mirror
//   - error: an error wrapping hmd.ErrResourceCreationFailed if the runtime could not allocate it
func NewMirror(sess session.Session, size hmd.Sizei, format hmd.TextureFormat) (Mirror, error) {
	if size.Empty() {
		return nil, fmt.Errorf("%w: mirror size %dx%d", hmd.ErrResourceCreationFailed, size.W, size.H)
	}

	handle, err := sess.Device().CreateMirrorTexture(hmd.MirrorTextureDesc{Format: format, Size: size})
	if err != nil {
		return nil, fmt.Errorf("%w: create mirror: %w", hmd.ErrResourceCreationFailed, err)
	}

	m := &mirror{
		handle:  handle,
		release: sess.Retain("mirror texture"),
		size:    size,
	}
	sess.Logger().Info("mirror created", "size", fmt.Sprintf("%dx%d", size.W, size.H))
	return m, nil
}

func (m *mirror) Texture() (hmd.Texture, error) {
	if m.handle == nil {
		return nil, fmt.Errorf("%w: mirror destroyed", hmd.ErrMirrorBlitFailed)
	}
	tex, err := m.handle.Buffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hmd.ErrMirrorBlitFailed, err)
	}
	return tex, nil
}

func (m *mirror) Size() hmd.Sizei {
	return m.size
}

func (m *mirror) Destroy() {
	if m.handle == nil {
		return
	}
	m.handle.Destroy()
	m.handle = nil
	m.release()
}
