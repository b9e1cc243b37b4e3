// Package native implements the simulation stepper on the GPU through
// wgpu/hal compute shaders. Respawn and physics run as kernels; bake
// and render stay on the CPU reference implementation, which also
// serves as the full fallback when no GPU is available.
package native

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/backend/cpu"
	"github.com/gogpu/swarmstep/tensor"
)

// DeviceHandle is an alias for gpucontext.DeviceProvider: host
// applications that already own a GPU device pass one in so the stepper
// shares it instead of creating its own.
type DeviceHandle = gpucontext.DeviceProvider

// Stepper runs respawn and physics on the GPU. It owns its device
// unless a shared one is installed via SetDeviceProvider.
type Stepper struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	physics *kernel
	respawn *kernel

	fallback       *cpu.Stepper
	gpuReady       bool
	externalDevice bool
	seed           uint32

	logger *slog.Logger
}

// kernel bundles one compute pipeline with its layouts.
type kernel struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

var _ swarmstep.Stepper = (*Stepper)(nil)

// New creates a GPU stepper. Device acquisition happens in Init; until
// then (and whenever the GPU is unavailable) every operation runs on
// the embedded CPU stepper.
func New(opts ...cpu.Option) *Stepper {
	return &Stepper{
		fallback: cpu.New(opts...),
		seed:     1,
	}
}

// Name returns "wgpu".
func (s *Stepper) Name() string { return "wgpu" }

// Init initializes the CPU fallback and then tries to bring up the
// GPU. GPU failure is not fatal: the stepper degrades to CPU and logs
// a warning.
func (s *Stepper) Init() error {
	if err := s.fallback.Init(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initGPU(); err != nil {
		s.log().Warn("wgpu: GPU unavailable, running on CPU", "err", err)
	}
	return nil
}

// Close releases GPU resources and the CPU fallback.
func (s *Stepper) Close() {
	s.mu.Lock()
	s.destroyKernels()
	if !s.externalDevice {
		if s.device != nil {
			s.device.Destroy()
		}
		if s.instance != nil {
			s.instance.Destroy()
		}
	}
	s.instance = nil
	s.device = nil
	s.queue = nil
	s.gpuReady = false
	s.externalDevice = false
	s.mu.Unlock()

	s.fallback.Close()
}

// SetLogger installs the logger, shared with the CPU fallback.
func (s *Stepper) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
	s.fallback.SetLogger(l)
}

func (s *Stepper) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.New(discardHandler{})
}

// SetDeviceProvider switches the stepper to a shared GPU device from a
// host application. The provider must additionally expose HalDevice()
// and HalQueue() returning the underlying hal types.
func (s *Stepper) SetDeviceProvider(provider DeviceHandle) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroyKernels()
	if !s.externalDevice && s.device != nil {
		s.device.Destroy()
	}
	if s.instance != nil {
		s.instance.Destroy()
		s.instance = nil
	}

	s.device = device
	s.queue = queue
	s.externalDevice = true

	if err := s.createKernels(); err != nil {
		s.gpuReady = false
		return fmt.Errorf("wgpu: create kernels on shared device: %w", err)
	}
	s.gpuReady = true
	s.log().Info("wgpu: switched to shared GPU device")
	return nil
}

// Bake runs on the CPU: it executes once per scene, so kernel launch
// overhead would dominate any win.
func (s *Stepper) Bake(scene *swarmstep.Scene, dims int) error {
	return s.fallback.Bake(scene, dims)
}

// Respawn re-places drones of reset environments, on the GPU when one
// is available.
func (s *Stepper) Respawn(reset tensor.View[uint8], respawns *swarmstep.Respawns, drones *swarmstep.Drones) error {
	s.mu.Lock()
	ready := s.gpuReady
	s.mu.Unlock()
	if !ready {
		return s.fallback.Respawn(reset, respawns, drones)
	}
	if err := s.dispatchRespawn(reset, respawns, drones); err != nil {
		s.log().Warn("wgpu: respawn dispatch failed, falling back to CPU", "err", err)
		return s.fallback.Respawn(reset, respawns, drones)
	}
	return nil
}

// Physics advances the drones one step, on the GPU when one is
// available.
func (s *Stepper) Physics(movement *swarmstep.Movement, scene *swarmstep.Scene, drones *swarmstep.Drones) error {
	s.mu.Lock()
	ready := s.gpuReady
	s.mu.Unlock()
	if !ready {
		return s.fallback.Physics(movement, scene, drones)
	}
	if err := s.dispatchPhysics(movement, scene, drones); err != nil {
		s.log().Warn("wgpu: physics dispatch failed, falling back to CPU", "err", err)
		return s.fallback.Physics(movement, scene, drones)
	}
	return nil
}

// Render runs on the CPU. The ray fan needs the ragged texel chain and
// per-drone silhouettes; moving it to a kernel is tracked but not done.
func (s *Stepper) Render(drones *swarmstep.Drones, scene *swarmstep.Scene) (*swarmstep.Render, error) {
	return s.fallback.Render(drones, scene)
}

func (s *Stepper) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	s.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	s.device = openDev.Device
	s.queue = openDev.Queue
	if err := s.createKernels(); err != nil {
		s.device.Destroy()
		s.device = nil
		s.queue = nil
		return fmt.Errorf("create kernels: %w", err)
	}
	s.gpuReady = true
	s.log().Info("wgpu: GPU stepper initialized", "adapter", selected.Info.Name)
	return nil
}

func (s *Stepper) destroyKernels() {
	if s.device == nil {
		return
	}
	for _, k := range []*kernel{s.physics, s.respawn} {
		if k == nil {
			continue
		}
		if k.pipeline != nil {
			s.device.DestroyComputePipeline(k.pipeline)
		}
		if k.pipeLayout != nil {
			s.device.DestroyPipelineLayout(k.pipeLayout)
		}
		if k.bindLayout != nil {
			s.device.DestroyBindGroupLayout(k.bindLayout)
		}
		if k.shader != nil {
			s.device.DestroyShaderModule(k.shader)
		}
	}
	s.physics = nil
	s.respawn = nil
}
