package bind_group_provider

import "testing"

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("cube", WithIndexCount(36))

	if p.Label() != "cube" {
		t.Errorf("Label = %q, want cube", p.Label())
	}
	if p.IndexCount() != 36 {
		t.Errorf("IndexCount = %d, want 36", p.IndexCount())
	}
	if p.BindGroup() != nil || p.VertexBuffer() != nil || p.InstanceBuffer() != nil || p.IndexBuffer() != nil {
		t.Error("new provider must not hold GPU resources")
	}
	if p.Buffer(0) != nil || p.Buffer(InstanceBinding) != nil {
		t.Error("Buffer on an empty provider must return nil")
	}
}

func TestReleaseEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("empty", WithIndexCount(6))
	p.Release()
	p.Release()

	if p.IndexCount() != 0 {
		t.Errorf("IndexCount after Release = %d, want 0", p.IndexCount())
	}
}
