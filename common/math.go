package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// ClipRange selects the normalized device depth range a projection maps into.
type ClipRange int

const (
	// ClipRangeZeroToOne maps near to 0 and far to 1 (WebGPU, Direct3D, Vulkan).
	ClipRangeZeroToOne ClipRange = iota

	// ClipRangeOpenGL maps near to -1 and far to 1.
	ClipRangeOpenGL
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PutMat4 writes a column-major matrix into buf as 16 little-endian float32 values.
//
// Parameters:
//   - buf: destination (must be at least 64 bytes)
//   - m: the matrix to write
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m[i]))
	}
}

// FovProjection builds an asymmetric off-axis perspective projection from the tangents of the four half angles of a
// field of view. The view looks down -Z, right-handed, matching mgl32.
//
// Parameters:
//   - upTan, downTan, leftTan, rightTan: tangents of the half angles from the view axis (all positive)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//   - clip: the depth range to map into
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func FovProjection(upTan, downTan, leftTan, rightTan, near, far float32, clip ClipRange) mgl32.Mat4 {
	if clip == ClipRangeOpenGL {
		return mgl32.Frustum(-leftTan*near, rightTan*near, -downTan*near, upTan*near, near, far)
	}

	l, r := -leftTan*near, rightTan*near
	b, t := -downTan*near, upTan*near

	var m mgl32.Mat4
	m[0] = 2 * near / (r - l)
	m[5] = 2 * near / (t - b)
	m[8] = (r + l) / (r - l)
	m[9] = (t + b) / (t - b)
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b mgl32.Vec3) mgl32.Vec3 {
	return a.Add(b).Mul(0.5)
}

// ForwardAxis returns the -Z axis of the rotation q, the direction a pose is facing.
func ForwardAxis(q mgl32.Quat) mgl32.Vec3 {
	return q.Rotate(mgl32.Vec3{0, 0, -1})
}
