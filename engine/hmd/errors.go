package hmd

import "errors"

var (
	// ErrDeviceUnavailable means no headset or runtime is present. Fatal at startup.
	ErrDeviceUnavailable = errors.New("hmd: device unavailable")

	// ErrResourceCreationFailed means a swap chain or mirror texture could not be allocated. Fatal at startup.
	ErrResourceCreationFailed = errors.New("hmd: resource creation failed")

	// ErrFrameAcquireFailed means no swap chain buffer could be acquired this frame.
	ErrFrameAcquireFailed = errors.New("hmd: frame acquire failed")

	// ErrFrameSubmitFailed means the compositor did not accept this frame.
	ErrFrameSubmitFailed = errors.New("hmd: frame submit failed")

	// ErrMirrorBlitFailed means the mirror could not be shown on the desktop window.
	ErrMirrorBlitFailed = errors.New("hmd: mirror blit failed")

	// ErrProtocolViolation means acquire and commit were not strictly paired.
	ErrProtocolViolation = errors.New("hmd: swap chain protocol violation")

	// ErrDeviceLost means the headset disconnected. Submissions fail until it returns.
	ErrDeviceLost = errors.New("hmd: device lost")
)
