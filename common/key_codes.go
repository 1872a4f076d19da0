package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII), simulated head forward
	KeyA     = 65  // A key (ASCII), simulated head strafe left
	KeyS     = 83  // S key (ASCII), simulated head back
	KeyD     = 68  // D key (ASCII), simulated head strafe right
	KeyQ     = 81  // Q key (ASCII), simulated head down
	KeyE     = 69  // E key (ASCII), simulated head up
	KeyR     = 82  // R key (ASCII), recenter tracking origin
	KeyX     = 88  // X key (ASCII), simulated right index trigger
	KeyZ     = 90  // Z key (ASCII), simulated left index trigger
	KeySpace = 32  // Spacebar (ASCII), simulated A button
	KeyEsc   = 256 // Escape key (GLFW), closes the window
)

// Arrow keys rotate the simulated head.
const (
	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)
