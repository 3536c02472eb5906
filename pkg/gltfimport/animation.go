package gltfimport

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/taigrr/sceneport/pkg/scene"
)

// Key times convert from the asset's seconds to milliseconds.
const millisecondsFromSeconds = 1000

// trsSamplers collects the per-node samplers of one animation, keyed by
// target path. Morph weight channels are not materialized.
type trsSamplers struct {
	translation *gltf.AnimationSampler
	rotation    *gltf.AnimationSampler
	scale       *gltf.AnimationSampler
}

// importAnimations groups every animation's channels by target node and
// builds one output channel per animated node. Key times are converted
// to milliseconds; duration is the latest key across all channels.
func (st *importState) importAnimations() error {
	if st.doc.Scene == nil {
		return nil
	}

	for _, anim := range st.doc.Animations {
		out := &scene.Animation{Name: anim.Name}

		grouped := gatherSamplers(anim)
		nodes := make([]int, 0, len(grouped))
		for ni := range grouped {
			nodes = append(nodes, ni)
		}
		// Deterministic channel order keeps repeated imports
		// bitwise-identical.
		sort.Ints(nodes)

		for _, ni := range nodes {
			if ni < 0 || ni >= len(st.doc.Nodes) {
				continue
			}
			ch, err := st.nodeChannel(st.doc.Nodes[ni], ni, grouped[ni])
			if err != nil {
				return fmt.Errorf("animation %q: %w", anim.Name, err)
			}
			out.Channels = append(out.Channels, ch)
		}

		var maxDuration float64
		for _, ch := range out.Channels {
			if n := len(ch.PositionKeys); n > 0 && ch.PositionKeys[n-1].Time > maxDuration {
				maxDuration = ch.PositionKeys[n-1].Time
			}
			if n := len(ch.RotationKeys); n > 0 && ch.RotationKeys[n-1].Time > maxDuration {
				maxDuration = ch.RotationKeys[n-1].Time
			}
			if n := len(ch.ScaleKeys); n > 0 && ch.ScaleKeys[n-1].Time > maxDuration {
				maxDuration = ch.ScaleKeys[n-1].Time
			}
		}
		out.Duration = maxDuration

		st.out.Animations = append(st.out.Animations, out)
	}
	return nil
}

// gatherSamplers indexes an animation's channels by target node.
func gatherSamplers(anim *gltf.Animation) map[int]*trsSamplers {
	grouped := make(map[int]*trsSamplers)
	for _, ch := range anim.Channels {
		if ch.Sampler == nil || *ch.Sampler < 0 || *ch.Sampler >= len(anim.Samplers) {
			continue
		}
		if ch.Target.Node == nil {
			continue
		}
		s := grouped[*ch.Target.Node]
		if s == nil {
			s = &trsSamplers{}
			grouped[*ch.Target.Node] = s
		}
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			s.translation = anim.Samplers[*ch.Sampler]
		case gltf.TRSRotation:
			s.rotation = anim.Samplers[*ch.Sampler]
		case gltf.TRSScale:
			s.scale = anim.Samplers[*ch.Sampler]
		}
	}
	return grouped
}

// nodeChannel decodes the gathered samplers of one node into keyframes.
// Paths without a sampler fall back to a single key at time 0 holding
// the node's static transform component, when that component is set.
func (st *importState) nodeChannel(node *gltf.Node, idx int, s *trsSamplers) (*scene.NodeAnim, error) {
	ch := &scene.NodeAnim{NodeName: nodeName(node, idx)}

	if s.translation != nil {
		times, values, err := st.samplerVec3(s.translation)
		if err != nil {
			return nil, err
		}
		ch.PositionKeys = make([]scene.VectorKey, len(times))
		for i := range times {
			ch.PositionKeys[i] = scene.VectorKey{
				Time:  float64(times[i]) * millisecondsFromSeconds,
				Value: values[i],
			}
		}
	} else if t := node.TranslationOrDefault(); t != [3]float64{} {
		ch.PositionKeys = []scene.VectorKey{{
			Value: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		}}
	}

	if s.rotation != nil {
		times, values, err := st.samplerVec4(s.rotation)
		if err != nil {
			return nil, err
		}
		ch.RotationKeys = make([]scene.QuatKey, len(times))
		for i := range times {
			q := values[i]
			// Storage order (x,y,z,w) shifts cyclically into the
			// output field order.
			ch.RotationKeys[i] = scene.QuatKey{
				Time: float64(times[i]) * millisecondsFromSeconds,
				Value: mgl32.Quat{
					W: q[2],
					V: mgl32.Vec3{q[3], q[0], q[1]},
				},
			}
		}
	} else if r := node.RotationOrDefault(); r != [4]float64{0, 0, 0, 1} {
		ch.RotationKeys = []scene.QuatKey{{
			Value: mgl32.Quat{
				W: float32(r[3]),
				V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
			},
		}}
	}

	if s.scale != nil {
		times, values, err := st.samplerVec3(s.scale)
		if err != nil {
			return nil, err
		}
		ch.ScaleKeys = make([]scene.VectorKey, len(times))
		for i := range times {
			ch.ScaleKeys[i] = scene.VectorKey{
				Time:  float64(times[i]) * millisecondsFromSeconds,
				Value: values[i],
			}
		}
	} else if sc := node.ScaleOrDefault(); sc != [3]float64{1, 1, 1} {
		ch.ScaleKeys = []scene.VectorKey{{
			Value: mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])},
		}}
	}

	return ch, nil
}

// samplerVec3 decodes a sampler's input times and VEC3 output values,
// truncated to the shorter of the two streams.
func (st *importState) samplerVec3(s *gltf.AnimationSampler) ([]float32, []mgl32.Vec3, error) {
	times, err := st.samplerTimes(s)
	if err != nil {
		return nil, nil, err
	}
	if s.Output == nil {
		return nil, nil, fmt.Errorf("%w: sampler has no output accessor", ErrMalformedAccessor)
	}
	values, err := extractVec3(st.doc, st.accessor(*s.Output))
	if err != nil {
		return nil, nil, err
	}
	if len(values) < len(times) {
		times = times[:len(values)]
	}
	return times, values, nil
}

// samplerVec4 decodes a sampler's input times and VEC4 output values,
// truncated to the shorter of the two streams.
func (st *importState) samplerVec4(s *gltf.AnimationSampler) ([]float32, []mgl32.Vec4, error) {
	times, err := st.samplerTimes(s)
	if err != nil {
		return nil, nil, err
	}
	if s.Output == nil {
		return nil, nil, fmt.Errorf("%w: sampler has no output accessor", ErrMalformedAccessor)
	}
	values, err := extractVec4(st.doc, st.accessor(*s.Output))
	if err != nil {
		return nil, nil, err
	}
	if len(values) < len(times) {
		times = times[:len(values)]
	}
	return times, values, nil
}

func (st *importState) samplerTimes(s *gltf.AnimationSampler) ([]float32, error) {
	if s.Input == nil {
		return nil, fmt.Errorf("%w: sampler has no input accessor", ErrMalformedAccessor)
	}
	return extractFloats(st.doc, st.accessor(*s.Input))
}
