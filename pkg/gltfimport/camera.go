package gltfimport

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/taigrr/sceneport/pkg/scene"
)

// importCameras materializes perspective cameras. Orthographic cameras
// are not supported; their slots stay at defaults so indices from the
// document keep lining up. Camera names are assigned later by the node
// phase, from the binding node.
func (st *importState) importCameras() {
	if len(st.doc.Cameras) == 0 {
		return
	}
	st.out.Cameras = make([]*scene.Camera, len(st.doc.Cameras))
	for i, cam := range st.doc.Cameras {
		out := &scene.Camera{
			// Cameras point down -Z by default; orientation comes from
			// the node transform.
			LookAt: mgl32.Vec3{0, 0, -1},
		}
		if p := cam.Perspective; p != nil {
			if p.AspectRatio != nil {
				out.AspectRatio = float32(*p.AspectRatio)
			}
			out.HorizontalFOV = float32(p.Yfov) * out.AspectRatio
			out.NearClip = float32(p.Znear)
			if p.Zfar != nil {
				out.FarClip = float32(*p.Zfar)
			}
		}
		st.out.Cameras[i] = out
	}
}
