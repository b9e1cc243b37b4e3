package native

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/tensor"
)

const gpuTimeout = 5 * time.Second

type physicsParams struct {
	Envs        uint32
	PerEnv      uint32
	Restitution float32
	Dt          float32
}

type respawnParams struct {
	Envs   uint32
	PerEnv uint32
	Seed   uint32
	Pad    uint32
}

// uploaded is a GPU buffer created and filled for one dispatch.
type uploaded struct {
	buf  hal.Buffer
	size uint64
}

// upload creates a buffer and writes data into it. Zero-length uploads
// are padded to one word so the binding stays valid.
func (s *Stepper) upload(label string, data []byte, usage gputypes.BufferUsage) (uploaded, error) {
	if len(data) == 0 {
		data = make([]byte, 4)
	}
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return uploaded{}, fmt.Errorf("create %s buffer: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return uploaded{buf: buf, size: uint64(len(data))}, nil
}

// dispatchState runs one kernel over the packed drone state: it binds
// the params buffer, four read-only inputs and the read-write state,
// dispatches one thread per drone, then reads the state back.
func (s *Stepper) dispatchState(k *kernel, label string, params []byte, inputs [][]byte, state []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gpuReady {
		return fmt.Errorf("%s: GPU not ready", label)
	}

	stateBytes := f32Bytes(state)
	bufs := make([]uploaded, 0, 6)
	defer func() {
		for _, u := range bufs {
			s.device.DestroyBuffer(u.buf)
		}
	}()

	paramsBuf, err := s.upload(label+"_params", params, gputypes.BufferUsageUniform)
	if err != nil {
		return err
	}
	bufs = append(bufs, paramsBuf)
	for i, in := range inputs {
		u, err := s.upload(fmt.Sprintf("%s_in%d", label, i), in, gputypes.BufferUsageStorage)
		if err != nil {
			return err
		}
		bufs = append(bufs, u)
	}
	stateBuf, err := s.upload(label+"_state", stateBytes, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	bufs = append(bufs, stateBuf)

	staging, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_staging", Size: stateBuf.size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer s.device.DestroyBuffer(staging)

	entries := make([]gputypes.BindGroupEntry, len(bufs))
	for i, u := range bufs {
		entries[i] = gputypes.BindGroupEntry{
			Binding:  uint32(i),
			Resource: gputypes.BufferBinding{Buffer: u.buf.NativeHandle(), Offset: 0, Size: u.size},
		}
	}
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: label + "_bind", Layout: k.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer s.device.DestroyBindGroup(bg)

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label + "_pass"})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	threads := uint32(len(state) / stateStride)
	pass.Dispatch((threads+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()
	encoder.CopyBufferToBuffer(stateBuf.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: stateBuf.size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)
	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	if err := s.queue.ReadBuffer(staging, 0, stateBytes); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	return nil
}

func (s *Stepper) dispatchPhysics(movement *swarmstep.Movement, scene *swarmstep.Scene, drones *swarmstep.Drones) error {
	if movement == nil || scene == nil || drones == nil {
		return fmt.Errorf("wgpu: physics on nil bundle")
	}
	envs := drones.Envs()
	if scene.Envs() != envs {
		return fmt.Errorf("wgpu: scene has %d environments, drones have %d", scene.Envs(), envs)
	}

	lines := scene.Lines.Accessor()
	params := physicsParams{
		Envs:        uint32(envs),
		PerEnv:      uint32(drones.PerEnv()),
		Restitution: swarmstep.CurrentConfig().Restitution,
		Dt:          1.0 / 60,
	}
	state := packState(drones)
	err := s.dispatchState(s.physics, "swarm_physics",
		structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)),
		[][]byte{
			f32Bytes(scene.Lines.Vals().Data()),
			i32Bytes(lines.Starts),
			i32Bytes(lines.Widths),
			i32Bytes(packCommands(movement)),
		},
		state)
	if err != nil {
		return err
	}
	unpackState(drones, state)
	return nil
}

func (s *Stepper) dispatchRespawn(reset tensor.View[uint8], respawns *swarmstep.Respawns, drones *swarmstep.Drones) error {
	if respawns == nil || drones == nil {
		return fmt.Errorf("wgpu: respawn on nil bundle")
	}
	if !reset.Valid() || reset.Rank() != 1 {
		return fmt.Errorf("wgpu: reset flags must be a rank-1 view")
	}
	envs := drones.Envs()
	if reset.Size(0) != envs || respawns.Envs() != envs {
		return fmt.Errorf("wgpu: reset=%d respawns=%d drones=%d environments",
			reset.Size(0), respawns.Envs(), envs)
	}

	s.mu.Lock()
	s.seed++
	seed := s.seed
	s.mu.Unlock()

	zones := respawns.Centers.Accessor()
	params := respawnParams{
		Envs:   uint32(envs),
		PerEnv: uint32(drones.PerEnv()),
		Seed:   seed,
	}
	state := packState(drones)
	err := s.dispatchState(s.respawn, "swarm_respawn",
		structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)),
		[][]byte{
			f32Bytes(packZones(respawns)),
			i32Bytes(zones.Starts),
			i32Bytes(zones.Widths),
			u32Bytes(expandFlags(reset.Data())),
		},
		state)
	if err != nil {
		return err
	}
	unpackState(drones, state)
	return nil
}
