package scene

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/pose"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

type drawCall struct {
	key       string
	instances uint32
	camera    bind_group_provider.BindGroupProvider
}

type fakeRenderer struct {
	pipelines   []string
	indexCount  int
	instanceCap uint64
	uniforms    []bind_group_provider.BindGroupProvider
	writes      []bind_group_provider.BufferWrite
	draws       []drawCall
	registerErr error
}

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	for _, p := range pipelines {
		f.pipelines = append(f.pipelines, p.PipelineKey())
	}
	return nil
}

func (f *fakeRenderer) InitMeshBuffers(_ bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	f.indexCount = indexCount
	return nil
}

func (f *fakeRenderer) InitInstanceBuffer(_ bind_group_provider.BindGroupProvider, size uint64) error {
	f.instanceCap = size
	return nil
}

func (f *fakeRenderer) InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, _ string, _ int, _ map[int]uint64) error {
	f.uniforms = append(f.uniforms, provider)
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) DrawCall(key string, _ bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.draws = append(f.draws, drawCall{key: key, instances: instanceCount, camera: bindGroups[0]})
	return nil
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *fakeRenderer) {
	t.Helper()
	options = append([]SceneBuilderOption{
		WithLogger(logging.Discard()),
		WithSeed(3),
		WithWorkers(2),
		WithInitialParticles(5),
		WithMaxParticles(10),
	}, options...)
	s := NewScene(options...)
	t.Cleanup(s.Release)

	r := &fakeRenderer{}
	if err := s.Init(r); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s, r
}

func trackedPrediction(displayTime float64) pose.Prediction {
	pred := pose.Prediction{DisplayTime: displayTime}
	for h := range hmd.HandCount {
		pred.Hands[h] = hmd.IdentityPose()
		pred.HandStatus[h] = hmd.StatusOrientationTracked | hmd.StatusPositionTracked
	}
	return pred
}

func TestInitCreatesResources(t *testing.T) {
	_, r := newTestScene(t)

	if len(r.pipelines) != 1 || r.pipelines[0] != PipelineKey {
		t.Errorf("pipelines = %v", r.pipelines)
	}
	if r.indexCount != 36 {
		t.Errorf("index count = %d, want 36", r.indexCount)
	}
	if want := uint64((10 + int(hmd.HandCount)) * instanceSize); r.instanceCap != want {
		t.Errorf("instance buffer = %d bytes, want %d", r.instanceCap, want)
	}
	if len(r.uniforms) != int(hmd.EyeCount) || r.uniforms[0] == r.uniforms[1] {
		t.Error("each eye needs its own camera uniform")
	}
}

func TestInitFailure(t *testing.T) {
	s := NewScene(WithLogger(logging.Discard()), WithWorkers(1))
	defer s.Release()

	injected := errors.New("no device")
	if err := s.Init(&fakeRenderer{registerErr: injected}); !errors.Is(err, injected) {
		t.Fatalf("Init err = %v", err)
	}
	// Without a renderer the frame hooks are no-ops.
	s.PrepareFrame(trackedPrediction(0), hmd.InputState{})
	s.Render(mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec3{})
}

func TestPrepareFrameStagesInstances(t *testing.T) {
	s, r := newTestScene(t)

	s.PrepareFrame(trackedPrediction(1), hmd.InputState{})
	if got, want := s.InstanceCount(), 5+int(hmd.HandCount); got != want {
		t.Fatalf("instances = %d, want %d", got, want)
	}
	last := r.writes[len(r.writes)-1]
	if last.Binding != bind_group_provider.InstanceBinding {
		t.Errorf("instance write targets binding %d", last.Binding)
	}
	if len(last.Data) != s.InstanceCount()*instanceSize {
		t.Errorf("instance write is %d bytes", len(last.Data))
	}

	pred := trackedPrediction(1.1)
	pred.HandStatus[hmd.HandRight] = 0
	s.PrepareFrame(pred, hmd.InputState{})
	if got, want := s.InstanceCount(), 5+1; got != want {
		t.Errorf("untracked hands get no laser: instances = %d, want %d", got, want)
	}
}

func TestParticlesSpawnOverTime(t *testing.T) {
	s, _ := newTestScene(t, WithSpawnInterval(0.5))

	for i := range 5 {
		s.PrepareFrame(trackedPrediction(float64(i)*0.5), hmd.InputState{})
	}
	if got := s.ParticleCount(); got != 9 {
		t.Errorf("particles = %d, want 9", got)
	}
	for i := range 10 {
		s.PrepareFrame(trackedPrediction(3+float64(i)), hmd.InputState{})
	}
	if got := s.ParticleCount(); got != 10 {
		t.Errorf("particles = %d, want the cap of 10", got)
	}
}

func TestRenderAlternatesEyeCameras(t *testing.T) {
	s, r := newTestScene(t)

	for range 2 {
		s.PrepareFrame(trackedPrediction(0), hmd.InputState{})
		s.Render(mgl32.Ident4(), mgl32.Translate3D(0.032, 0, 0), mgl32.Vec3{})
		s.Render(mgl32.Ident4(), mgl32.Translate3D(-0.032, 0, 0), mgl32.Vec3{})
	}

	if len(r.draws) != 4 {
		t.Fatalf("draws = %d, want 4", len(r.draws))
	}
	for i, d := range r.draws {
		if d.key != PipelineKey || int(d.instances) != s.InstanceCount() {
			t.Errorf("draw %d = %+v", i, d)
		}
		if want := r.uniforms[i%2]; d.camera != want {
			t.Errorf("draw %d used the %s camera", i, d.camera.Label())
		}
	}
}

func TestLaserColor(t *testing.T) {
	tests := []struct {
		name    string
		trigger float32
		want    mgl32.Vec4
	}{
		{"idle", 0, laserIdle},
		{"at threshold", 0.5, laserIdle},
		{"pressed", 0.8, laserFiring},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := laserInstance(hmd.IdentityPose(), tt.trigger)
			if mgl32.Vec4(got.Color) != tt.want {
				t.Errorf("color = %v, want %v", got.Color, tt.want)
			}
		})
	}
}

// nearVec3 compares with an absolute tolerance. Relative comparisons fail against exact zeros.
func nearVec3(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() < eps
}

func TestLaserPointsForward(t *testing.T) {
	hand := hmd.Pose{
		Orientation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
		Position:    mgl32.Vec3{1, 1, 0},
	}
	model := mgl32.Mat4(laserInstance(hand, 0).Model)

	start := model.Mul4x1(mgl32.Vec4{0, 0, 0.5, 1}).Vec3()
	end := model.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1}).Vec3()
	if !nearVec3(start, hand.Position, 1e-4) {
		t.Errorf("beam starts at %v, want the hand at %v", start, hand.Position)
	}
	if !nearVec3(end, mgl32.Vec3{1 - laserLength, 1, 0}, 1e-3) {
		t.Errorf("beam ends at %v", end)
	}
}
