package scene

import "github.com/go-gl/mathgl/mgl32"

// VectorKey is a timed translation or scale sample. Time is in
// milliseconds.
type VectorKey struct {
	Time  float64
	Value mgl32.Vec3
}

// QuatKey is a timed rotation sample. Time is in milliseconds.
type QuatKey struct {
	Time  float64
	Value mgl32.Quat
}

// NodeAnim carries the sampled TRS keyframes that animate a single node,
// addressed by name.
type NodeAnim struct {
	NodeName string

	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScaleKeys    []VectorKey
}

// Animation groups one channel per animated node. Duration is the
// latest key time across all channels, in the same units as key times
// (milliseconds). TicksPerSecond is 0: key times are already scaled.
type Animation struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []*NodeAnim
}

// Channel returns the channel targeting the named node, or nil.
func (a *Animation) Channel(nodeName string) *NodeAnim {
	for _, c := range a.Channels {
		if c.NodeName == nodeName {
			return c
		}
	}
	return nil
}
