package swapchain

import (
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/charmbracelet/log"
)

// SwapChainBuilderOption is a functional option for configuring a SwapChain.
type SwapChainBuilderOption func(*swapChain)

// WithLength requests a ring length. Zero lets the runtime choose.
//
// Parameters:
//   - length: the requested number of buffers
//
// Returns:
//   - SwapChainBuilderOption: option function to apply
func WithLength(length int) SwapChainBuilderOption {
	return func(sc *swapChain) {
		if length > 0 {
			sc.want = length
		}
	}
}

// WithFormat sets the color format of the ring buffers.
//
// Parameters:
//   - format: the texture format
//
// Returns:
//   - SwapChainBuilderOption: option function to apply
func WithFormat(format hmd.TextureFormat) SwapChainBuilderOption {
	return func(sc *swapChain) {
		sc.format = format
	}
}

// WithLogger overrides the session logger.
//
// Parameters:
//   - logger: the parent logger
//
// Returns:
//   - SwapChainBuilderOption: option function to apply
func WithLogger(logger *log.Logger) SwapChainBuilderOption {
	return func(sc *swapChain) {
		sc.logger = logger
	}
}
