// Package scene is the world drawn into each eye: a box of bouncing, spinning cubes and a laser from each tracked hand.
package scene

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-vr/common"
	"github.com/Carmen-Shannon/oxy-vr/engine/camera"
	"github.com/Carmen-Shannon/oxy-vr/engine/hmd"
	"github.com/Carmen-Shannon/oxy-vr/engine/logging"
	"github.com/Carmen-Shannon/oxy-vr/engine/pose"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-vr/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shaders/scene.wgsl
var sceneSource string

// PipelineKey is the key the scene's render pipeline is registered under.
const PipelineKey = "scene"

// Renderer is the part of the GPU renderer the scene draws through.
type Renderer interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error
	InitUniformBindGroup(provider bind_group_provider.BindGroupProvider, pipelineKey string, group int, sizes map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

type scene struct {
	mu     *sync.Mutex
	logger *log.Logger

	r        Renderer
	pool     worker.DynamicWorkerPool
	released bool

	// options
	seed             int64
	bounds           Bounds
	emitter          mgl32.Vec3
	speed            float32
	spin             float32
	particleSize     float32
	initialParticles int
	maxParticles     int
	spawnInterval    float64
	workers          int

	system    *particleSystem
	cameras   [hmd.EyeCount]camera.EyeCamera
	mesh      bind_group_provider.BindGroupProvider
	instances []gpuInstance

	instanceCount int
	renderCount   int
}

// Scene draws the particle box and the hand lasers.
//
// PrepareFrame runs once per frame before the eyes are drawn: it spawns and integrates the particles and uploads the
// instance data. Render is then called once per eye, left first, and records one instanced draw.
type Scene interface {
	// Init creates the pipeline, the cube mesh, the instance buffer and one camera uniform per eye.
	//
	// Parameters:
	//   - r: the renderer to create GPU resources on
	//
	// Returns:
	//   - error: an error if a pipeline or buffer could not be created
	Init(r Renderer) error

	// PrepareFrame advances the simulation one step and stages the instance data for this frame.
	//
	// Parameters:
	//   - prediction: the poses predicted for this frame
	//   - input: the controller input sampled for this frame
	PrepareFrame(prediction pose.Prediction, input hmd.InputState)

	// Render draws the scene into the current eye viewport.
	//
	// Parameters:
	//   - projection: the eye projection
	//   - view: the eye view matrix
	//   - eyePosition: the point between the eyes
	Render(projection, view mgl32.Mat4, eyePosition mgl32.Vec3)

	// ParticleCount returns the number of live particles.
	ParticleCount() int

	// InstanceCount returns how many cubes the last PrepareFrame staged, lasers included.
	InstanceCount() int

	// Release stops the integration workers and frees the GPU resources.
	Release()
}

var _ Scene = &scene{}

// NewScene creates the scene and its first particles. GPU resources are created later by Init.
//
// Parameters:
//   - options: functional options for the scene
//
// Returns:
//   - Scene: the scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:               &sync.Mutex{},
		logger:           logging.Discard(),
		seed:             time.Now().UnixNano(),
		bounds:           Bounds{Min: mgl32.Vec3{-10, -10, -25}, Max: mgl32.Vec3{10, 10, -5}},
		emitter:          mgl32.Vec3{0, -1, -15},
		speed:            0.01,
		spin:             0.05,
		particleSize:     0.5,
		initialParticles: 5,
		maxParticles:     256,
		spawnInterval:    1,
		workers:          4,
		mesh:             bind_group_provider.NewBindGroupProvider("scene_cubes"),
	}
	for _, option := range options {
		option(s)
	}
	s.logger = logging.Component(s.logger, "scene")

	s.system = newParticleSystem(s.seed, s.bounds, s.emitter, s.speed, s.spin, s.maxParticles, s.spawnInterval)
	s.system.spawn(s.initialParticles)
	s.instances = make([]gpuInstance, 0, s.maxParticles+int(hmd.HandCount))
	for _, eye := range hmd.Eyes {
		s.cameras[eye] = camera.NewEyeCamera(eye)
	}

	// Queue size of 256 leaves headroom over any sensible worker count.
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	return s
}

func (s *scene) Init(r Renderer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := pipeline.NewPipeline(PipelineKey, camera.GPUCameraUniformSource+sceneSource,
		pipeline.WithVertexLayouts(vertexLayouts...),
		pipeline.WithBindGroupLayouts(camera.BindGroupLayout),
	)
	if err := r.RegisterPipelines(p); err != nil {
		return fmt.Errorf("scene pipeline: %w", err)
	}

	vertices, indices := cubeMesh()
	if err := r.InitMeshBuffers(s.mesh, common.SliceToBytes(vertices), common.SliceToBytes(indices), len(indices)); err != nil {
		return fmt.Errorf("scene mesh: %w", err)
	}
	if err := r.InitInstanceBuffer(s.mesh, uint64(cap(s.instances)*instanceSize)); err != nil {
		return fmt.Errorf("scene instances: %w", err)
	}
	for _, cam := range s.cameras {
		if err := r.InitUniformBindGroup(cam.BindGroupProvider(), PipelineKey, 0, nil); err != nil {
			return fmt.Errorf("%s eye camera: %w", cam.Eye(), err)
		}
	}

	s.r = r
	s.logger.Info("scene ready", "particles", len(s.system.particles), "max_particles", s.maxParticles, "workers", s.workers)
	return nil
}

func (s *scene) PrepareFrame(prediction pose.Prediction, input hmd.InputState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.renderCount = 0

	if n := s.system.tick(prediction.DisplayTime); n > 0 {
		s.logger.Debug("particles spawned", "count", n, "total", len(s.system.particles))
	}
	s.integrate()

	s.instances = s.instances[:0]
	for i := range s.system.particles {
		s.instances = append(s.instances, s.system.particles[i].instance(s.particleSize))
	}
	for h := range hmd.HandCount {
		if prediction.HandStatus[h]&hmd.StatusOrientationTracked == 0 {
			continue
		}
		s.instances = append(s.instances, laserInstance(prediction.Hands[h], input.IndexTrigger[h]))
	}
	s.instanceCount = len(s.instances)

	if s.r != nil && s.instanceCount > 0 {
		s.r.WriteBuffers([]bind_group_provider.BufferWrite{{
			Provider: s.mesh,
			Binding:  bind_group_provider.InstanceBinding,
			Data:     common.SliceToBytes(s.instances),
		}})
	}
}

// integrate steps every particle once, fanned out over the worker pool. It returns after all chunks are done.
func (s *scene) integrate() {
	var wg sync.WaitGroup
	for i, span := range chunks(len(s.system.particles), s.workers) {
		wg.Add(1)
		lo, hi := span[0], span[1]
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				s.system.stepRange(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Render(projection, view mgl32.Mat4, eyePosition mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil || s.released || s.instanceCount == 0 {
		return
	}

	// Both eyes are recorded into one pass, so each eye reads its own uniform buffer.
	cam := s.cameras[s.renderCount%int(hmd.EyeCount)]
	s.renderCount++

	cam.Update(projection, view, eyePosition)
	u := cam.Uniform()
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: cam.BindGroupProvider(),
		Binding:  0,
		Data:     u.Marshal(),
	}})

	err := s.r.DrawCall(PipelineKey, s.mesh, uint32(s.instanceCount), []bind_group_provider.BindGroupProvider{cam.BindGroupProvider()})
	if err != nil {
		s.logger.Warn("draw failed", "eye", cam.Eye(), "err", err)
	}
}

func (s *scene) ParticleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.system.particles)
}

func (s *scene) InstanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instanceCount
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true
	s.pool.Stop()
	s.mesh.Release()
	for _, cam := range s.cameras {
		cam.BindGroupProvider().Release()
	}
	s.r = nil
}
