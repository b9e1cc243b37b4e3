package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// workgroupSize is the thread count per workgroup; one thread per
// drone.
const workgroupSize = 64

// compileToSPIRV compiles WGSL to SPIR-V words. Some Vulkan drivers
// reject the WGSL path, so kernels are always fed pre-compiled SPIR-V.
func compileToSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createKernels builds the physics and respawn pipelines on the
// current device.
func (s *Stepper) createKernels() error {
	var err error
	s.physics, err = s.makeKernel("swarm_physics", physicsShaderSource, []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 4, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 5, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
	})
	if err != nil {
		return err
	}
	s.respawn, err = s.makeKernel("swarm_respawn", respawnShaderSource, []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 4, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 5, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
	})
	return err
}

func (s *Stepper) makeKernel(label, wgsl string, entries []gputypes.BindGroupLayoutEntry) (*kernel, error) {
	spirv, err := compileToSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	k := &kernel{}
	k.shader, err = s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader module: %w", label, err)
	}
	k.bindLayout, err = s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%s bind layout: %w", label, err)
	}
	k.pipeLayout, err = s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline layout: %w", label, err)
	}
	k.pipeline, err = s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: label + "_pipeline", Layout: k.pipeLayout,
		Compute: hal.ComputeState{Module: k.shader, EntryPoint: "main"},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", label, err)
	}
	return k, nil
}

// physicsShaderSource advances one drone per thread. State layout per
// drone: angle, angular momentum, pos.x, pos.y, mom.x, mom.y. Commands
// layout per drone: mesial, lateral, yaw. The constants mirror the CPU
// stepper so both backends agree step for step up to float ordering.
const physicsShaderSource = `
struct Params {
    envs: u32,
    per_env: u32,
    restitution: f32,
    dt: f32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> walls: array<f32>;
@group(0) @binding(2) var<storage, read> wall_starts: array<i32>;
@group(0) @binding(3) var<storage, read> wall_widths: array<i32>;
@group(0) @binding(4) var<storage, read> commands: array<i32>;
@group(0) @binding(5) var<storage, read_write> state: array<f32>;

const THRUST: f32 = 5.0;
const TORQUE: f32 = 180.0;
const LIN_DRAG: f32 = 0.98;
const ANG_DRAG: f32 = 0.9;
const COLLIDE_EPS: f32 = 1e-3;
const DEG: f32 = 0.017453292519943295;

fn seg_hit(p: vec2<f32>, q: vec2<f32>, a: vec2<f32>, b: vec2<f32>) -> f32 {
    let d = q - p;
    let s = b - a;
    let denom = d.x * s.y - d.y * s.x;
    if (denom == 0.0) {
        return -1.0;
    }
    let ao = a - p;
    let t = (ao.x * s.y - ao.y * s.x) / denom;
    let u = (ao.x * d.y - ao.y * d.x) / denom;
    if (t < 0.0 || t > 1.0 || u < 0.0 || u > 1.0) {
        return -1.0;
    }
    return t;
}

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    let total = params.envs * params.per_env;
    if (i >= total) {
        return;
    }
    let e = i / params.per_env;

    var angle = state[6u * i];
    var angmom = state[6u * i + 1u];
    var pos = vec2<f32>(state[6u * i + 2u], state[6u * i + 3u]);
    var mom = vec2<f32>(state[6u * i + 4u], state[6u * i + 5u]);

    let mesial = f32(commands[3u * i]);
    let lateral = f32(commands[3u * i + 1u]);
    let yaw = f32(commands[3u * i + 2u]);

    let rad = angle * DEG;
    let fwd = vec2<f32>(cos(rad), sin(rad));
    let side = vec2<f32>(-fwd.y, fwd.x);
    mom = mom + fwd * (mesial * THRUST * params.dt);
    mom = mom + side * (lateral * THRUST * params.dt);
    mom = mom * LIN_DRAG;
    angmom = (angmom + yaw * TORQUE * params.dt) * ANG_DRAG;

    let ws = u32(wall_starts[e]);
    let ww = u32(wall_widths[e]);

    var remaining = params.dt;
    for (var bounce = 0u; bounce < 4u; bounce = bounce + 1u) {
        let delta = mom * remaining;
        let next = pos + delta;

        var best_t = -1.0;
        var best_w = 0u;
        for (var w = 0u; w < ww; w = w + 1u) {
            let base = (ws + w) * 4u;
            let a = vec2<f32>(walls[base], walls[base + 1u]);
            let b = vec2<f32>(walls[base + 2u], walls[base + 3u]);
            let t = seg_hit(pos, next, a, b);
            if (t >= 0.0 && (best_t < 0.0 || t < best_t)) {
                best_t = t;
                best_w = w;
            }
        }
        if (best_t < 0.0) {
            pos = next;
            break;
        }

        let base = (ws + best_w) * 4u;
        let a = vec2<f32>(walls[base], walls[base + 1u]);
        let b = vec2<f32>(walls[base + 2u], walls[base + 3u]);
        let d = b - a;
        let dl = length(d);
        var n = vec2<f32>(0.0, 0.0);
        if (dl > 0.0) {
            n = vec2<f32>(-d.y / dl, d.x / dl);
        }
        if (dot(n, mom) > 0.0) {
            n = -n;
        }

        let stop_t = max(best_t - COLLIDE_EPS, 0.0);
        pos = pos + delta * stop_t;
        mom = mom - n * ((1.0 + params.restitution) * dot(n, mom));
        remaining = remaining * (1.0 - best_t);
        if (remaining <= 0.0) {
            break;
        }
    }

    var new_angle = angle + angmom * params.dt;
    new_angle = new_angle - 360.0 * floor(new_angle / 360.0);

    state[6u * i] = new_angle;
    state[6u * i + 1u] = angmom;
    state[6u * i + 2u] = pos.x;
    state[6u * i + 3u] = pos.y;
    state[6u * i + 4u] = mom.x;
    state[6u * i + 5u] = mom.y;
}
`

// respawnShaderSource re-places one drone per thread when its
// environment's reset flag is set. Zone layout per zone: center.x,
// center.y, radius, lower.x, lower.y, upper.x, upper.y. Randomness is
// a PCG hash of (seed, drone, try), so a respawn is reproducible for a
// given seed.
const respawnShaderSource = `
struct Params {
    envs: u32,
    per_env: u32,
    seed: u32,
    pad: u32,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read> zones: array<f32>;
@group(0) @binding(2) var<storage, read> zone_starts: array<i32>;
@group(0) @binding(3) var<storage, read> zone_widths: array<i32>;
@group(0) @binding(4) var<storage, read> reset_flags: array<u32>;
@group(0) @binding(5) var<storage, read_write> state: array<f32>;

fn pcg(v: u32) -> u32 {
    var s = v * 747796405u + 2891336453u;
    let w = ((s >> ((s >> 28u) + 4u)) ^ s) * 277803737u;
    return (w >> 22u) ^ w;
}

fn frand(v: u32) -> f32 {
    return f32(pcg(v) & 0x00ffffffu) / 16777216.0;
}

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    let total = params.envs * params.per_env;
    if (i >= total) {
        return;
    }
    let e = i / params.per_env;
    if (reset_flags[e] == 0u) {
        return;
    }

    let stream = params.seed * 2654435769u + i * 40503u;
    let nz = u32(zone_widths[e]);

    var p = vec2<f32>(0.0, 0.0);
    if (nz > 0u) {
        let z = u32(zone_starts[e]) + (pcg(stream) % nz);
        let base = z * 7u;
        let c = vec2<f32>(zones[base], zones[base + 1u]);
        let r = zones[base + 2u];
        let lo = vec2<f32>(zones[base + 3u], zones[base + 4u]);
        let hi = vec2<f32>(zones[base + 5u], zones[base + 6u]);

        p = c;
        for (var try_i = 0u; try_i < 16u; try_i = try_i + 1u) {
            let cand = vec2<f32>(
                lo.x + frand(stream + 2u * try_i + 1u) * (hi.x - lo.x),
                lo.y + frand(stream + 2u * try_i + 2u) * (hi.y - lo.y),
            );
            if (length(cand - c) <= r) {
                p = cand;
                break;
            }
        }
    }

    state[6u * i] = frand(stream + 97u) * 360.0;
    state[6u * i + 1u] = 0.0;
    state[6u * i + 2u] = p.x;
    state[6u * i + 3u] = p.y;
    state[6u * i + 4u] = 0.0;
    state[6u * i + 5u] = 0.0;
}
`
