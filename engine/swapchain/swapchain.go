package swapchain

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/session"
	"github.com/charmbracelet/log"
)

// swapChain implements the SwapChain interface.
type swapChain struct {
	sess    session.Session
	handle  hmd.TextureSwapChain
	release func()
	logger  *log.Logger

	size   hmd.Sizei
	format hmd.TextureFormat
	length int
	want   int

	buffers  []hmd.Texture
	acquired bool
}

// SwapChain guards the acquire and commit protocol of a runtime texture ring.
// Exactly one buffer may be acquired at a time and every acquire must be followed by a commit.
type SwapChain interface {
	// Length returns the number of buffers in the ring.
	//
	// Returns:
	//   - int: the ring length (always >= 1)
	Length() int

	// Size returns the pixel size shared by every buffer.
	//
	// Returns:
	//   - hmd.Sizei: the buffer size
	Size() hmd.Sizei

	// Format returns the color format shared by every buffer.
	//
	// Returns:
	//   - hmd.TextureFormat: the buffer format
	Format() hmd.TextureFormat

	// Handle returns the runtime ring, referenced by the submitted layer.
	//
	// Returns:
	//   - hmd.TextureSwapChain: the runtime handle
	Handle() hmd.TextureSwapChain

	// AcquireCurrent returns the buffer the application may render into this frame.
	//
	// Returns:
	//   - int: the buffer index in [0, Length)
	//   - hmd.Texture: the buffer
	//   - error: an error wrapping hmd.ErrFrameAcquireFailed if no buffer is available or one is already acquired
	AcquireCurrent() (int, hmd.Texture, error)

	// Commit hands the acquired buffer to the compositor and advances the ring.
	//
	// Returns:
	//   - error: hmd.ErrProtocolViolation if nothing is acquired, or an error wrapping hmd.ErrFrameSubmitFailed
	Commit() error

	// Acquired reports whether a buffer is currently held.
	//
	// Returns:
	//   - bool: true between a successful AcquireCurrent and the next Commit
	Acquired() bool

	// Destroy releases the ring and its hold on the session.
	Destroy()
}

var _ SwapChain = &swapChain{}

// New creates a texture ring sized for the packed stereo render target.
//
// Parameters:
//   - sess: the owning session; it is retained until Destroy
//   - size: the render target size
//   - options: functional options for ring length, format and logging
//
// Returns:
//   - SwapChain: the ring
//   - error: an error wrapping hmd.ErrResourceCreationFailed if the runtime could not allocate it
func New(sess session.Session, size hmd.Sizei, options ...SwapChainBuilderOption) (SwapChain, error) {
	sc := &swapChain{
		sess:   sess,
		size:   size,
		format: hmd.TextureFormatR8G8B8A8UnormSrgb,
		logger: sess.Logger(),
	}
	for _, opt := range options {
		opt(sc)
	}
	sc.logger = logging.Component(sc.logger, "swapchain")

	if size.Empty() {
		return nil, fmt.Errorf("%w: swap chain size %dx%d", hmd.ErrResourceCreationFailed, size.W, size.H)
	}

	handle, err := sess.Device().CreateTextureSwapChain(hmd.SwapChainDesc{
		Format:      sc.format,
		Size:        size,
		MipLevels:   1,
		SampleCount: 1,
		Length:      sc.want,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create swap chain: %w", hmd.ErrResourceCreationFailed, err)
	}
	sc.handle = handle

	if err := sc.loadBuffers(); err != nil {
		handle.Destroy()
		return nil, fmt.Errorf("%w: %w", hmd.ErrResourceCreationFailed, err)
	}

	sc.release = sess.Retain("swap chain")
	sc.logger.Info("swap chain created",
		"length", sc.length,
		"size", fmt.Sprintf("%dx%d", size.W, size.H),
		"format", sc.format,
	)
	return sc, nil
}

func (sc *swapChain) loadBuffers() error {
	n, err := sc.handle.Length()
	if err != nil {
		return fmt.Errorf("query swap chain length: %w", err)
	}
	if n < 1 {
		return fmt.Errorf("swap chain reported %d buffers", n)
	}

	sc.buffers = make([]hmd.Texture, n)
	for i := range n {
		tex, err := sc.handle.Buffer(i)
		if err != nil {
			return fmt.Errorf("swap chain buffer %d: %w", i, err)
		}
		sc.buffers[i] = tex
	}
	sc.length = n
	return nil
}

func (sc *swapChain) Length() int {
	return sc.length
}

func (sc *swapChain) Size() hmd.Sizei {
	return sc.size
}

func (sc *swapChain) Format() hmd.TextureFormat {
	return sc.format
}

func (sc *swapChain) Handle() hmd.TextureSwapChain {
	return sc.handle
}

func (sc *swapChain) AcquireCurrent() (int, hmd.Texture, error) {
	if sc.acquired {
		return 0, nil, fmt.Errorf("%w: %w: buffer already acquired", hmd.ErrFrameAcquireFailed, hmd.ErrProtocolViolation)
	}

	index, err := sc.handle.CurrentIndex()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", hmd.ErrFrameAcquireFailed, err)
	}
	if index < 0 || index >= sc.length {
		return 0, nil, fmt.Errorf("%w: index %d outside ring of %d", hmd.ErrFrameAcquireFailed, index, sc.length)
	}

	sc.acquired = true
	return index, sc.buffers[index], nil
}

func (sc *swapChain) Commit() error {
	if !sc.acquired {
		return fmt.Errorf("%w: commit without acquire", hmd.ErrProtocolViolation)
	}
	// The buffer is released to the compositor whether or not the runtime accepted it.
	sc.acquired = false

	if err := sc.handle.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", hmd.ErrFrameSubmitFailed, err)
	}
	return nil
}

func (sc *swapChain) Acquired() bool {
	return sc.acquired
}

func (sc *swapChain) Destroy() {
	if sc.handle == nil {
		return
	}
	sc.handle.Destroy()
	sc.handle = nil
	sc.buffers = nil
	sc.release()
	sc.logger.Debug("swap chain destroyed")
}
