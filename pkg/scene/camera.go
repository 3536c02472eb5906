package scene

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera. Orientation comes from the node the
// camera is bound to; LookAt is the camera-space default view direction.
// Cameras are named after their binding node.
type Camera struct {
	Name string

	LookAt        mgl32.Vec3
	AspectRatio   float32
	HorizontalFOV float32
	NearClip      float32
	FarClip       float32
}
