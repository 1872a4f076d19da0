package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("scene", "// wgsl")

	if p.PipelineKey() != "scene" || p.Source() != "// wgsl" {
		t.Fatalf("key/source = %q/%q", p.PipelineKey(), p.Source())
	}
	if p.VertexEntryPoint() != "vs_main" || p.FragmentEntryPoint() != "fs_main" {
		t.Errorf("entry points = %q/%q, want vs_main/fs_main", p.VertexEntryPoint(), p.FragmentEntryPoint())
	}
	if !p.DepthAttached() || !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Error("depth should be attached, tested and written by default")
	}
	if p.BlendEnabled() {
		t.Error("blending should be off by default")
	}
	if p.ColorFormat() != wgpu.TextureFormatUndefined {
		t.Errorf("ColorFormat = %v, want undefined", p.ColorFormat())
	}
	if p.RenderPipeline() != nil || p.BindGroupLayout(0) != nil {
		t.Error("unregistered pipeline must not hold GPU objects")
	}
}

func TestNewPipelineOptions(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 24, StepMode: wgpu.VertexStepModeVertex}
	group := wgpu.BindGroupLayoutDescriptor{Label: "camera"}

	p := NewPipeline("blit", "",
		WithEntryPoints("v", "f"),
		WithVertexLayouts(layout),
		WithBindGroupLayouts(group),
		WithColorFormat(wgpu.TextureFormatBGRA8Unorm),
		WithDepthAttached(false),
		WithCullMode(wgpu.CullModeNone),
		WithBlendEnabled(true),
	)

	if p.VertexEntryPoint() != "v" || p.FragmentEntryPoint() != "f" {
		t.Errorf("entry points = %q/%q", p.VertexEntryPoint(), p.FragmentEntryPoint())
	}
	if len(p.VertexLayouts()) != 1 || p.VertexLayouts()[0].ArrayStride != 24 {
		t.Errorf("VertexLayouts = %+v", p.VertexLayouts())
	}
	if len(p.BindGroupLayoutDescriptors()) != 1 || p.BindGroupLayoutDescriptors()[0].Label != "camera" {
		t.Errorf("BindGroupLayoutDescriptors = %+v", p.BindGroupLayoutDescriptors())
	}
	if p.ColorFormat() != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("ColorFormat = %v", p.ColorFormat())
	}
	if p.DepthAttached() {
		t.Error("WithDepthAttached(false) not applied")
	}
	if p.CullMode() != wgpu.CullModeNone || !p.BlendEnabled() {
		t.Error("cull or blend option not applied")
	}
	if p.BindGroupLayout(-1) != nil || p.BindGroupLayout(3) != nil {
		t.Error("out of range group must return nil")
	}
}
