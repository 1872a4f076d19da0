package scene

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// gpuVertex is one cube corner as laid out in the vertex buffer.
type gpuVertex struct {
	Position [3]float32
	Normal   [3]float32
}

// gpuInstance is one drawn cube as laid out in the instance buffer.
type gpuInstance struct {
	Model [16]float32
	// Color alpha above one draws the instance unlit.
	Color [4]float32
}

const (
	vertexSize   = 24
	instanceSize = 80
)

// vertexLayouts binds the cube mesh to slot 0 and the per-instance stream to slot 1.
var vertexLayouts = []wgpu.VertexBufferLayout{
	{
		ArrayStride: vertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	},
	{
		ArrayStride: instanceSize,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 6},
		},
	},
}

// cubeFaces lists each face normal with two in-plane axes whose cross product is the normal.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// cubeMesh returns a unit cube centered on the origin with flat per-face normals and counter-clockwise front faces.
func cubeMesh() ([]gpuVertex, []uint32) {
	vertices := make([]gpuVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}

	for _, face := range cubeFaces {
		normal, u, v := face[0], face[1], face[2]
		base := uint32(len(vertices))
		for _, c := range corners {
			p := normal.Mul(0.5).Add(u.Mul(c[0])).Add(v.Mul(c[1]))
			vertices = append(vertices, gpuVertex{Position: p, Normal: normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
