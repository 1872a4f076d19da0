package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUCameraUniformSource is the WGSL definition of the CameraUniform struct.
// Shaders that bind an eye camera prepend it to their own source.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of one eye's camera uniform buffer.
// Size: 80 bytes (WGSL uniform aligned).
type GPUCameraUniform struct {
	ViewProj    [16]float32 // offset  0: combined view-projection matrix (mat4x4<f32>)
	EyePosition [3]float32  // offset 64: world-space point between the eyes (vec3<f32>)
	_pad        float32     // offset 76: padding to 80 bytes
}

// GPUCameraUniformSize is the byte size of GPUCameraUniform.
const GPUCameraUniformSize = 80

// BindGroupLayout is the layout of the camera bind group: a single uniform buffer visible to both stages.
var BindGroupLayout = wgpu.BindGroupLayoutDescriptor{
	Label: "Eye Camera Bind Group Layout",
	Entries: []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: GPUCameraUniformSize,
			},
		},
	},
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a little-endian byte buffer for upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.EyePosition[i]))
	}
	return buf
}
