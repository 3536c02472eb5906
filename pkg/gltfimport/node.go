package gltfimport

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/sceneport/pkg/scene"
)

// importNodes builds the output hierarchy from the designated scene's
// root list. A single root becomes the output root directly; multiple
// roots hang under a synthetic "ROOT" node.
func (st *importState) importNodes() error {
	if st.doc.Scene == nil {
		return nil
	}
	sceneIdx := *st.doc.Scene
	if sceneIdx < 0 || sceneIdx >= len(st.doc.Scenes) {
		st.log.Warn("document designates an unknown scene", zap.Int("scene", sceneIdx))
		return nil
	}
	roots := st.doc.Scenes[sceneIdx].Nodes

	switch len(roots) {
	case 0:
	case 1:
		root, err := st.importNode(roots[0])
		if err != nil {
			return err
		}
		st.out.Root = root
	default:
		root := &scene.Node{Name: "ROOT", Transform: mgl32.Ident4()}
		for _, idx := range roots {
			child, err := st.importNode(idx)
			if err != nil {
				return err
			}
			child.Parent = root
			root.Children = append(root.Children, child)
		}
		st.out.Root = root
	}
	return nil
}

func (st *importState) importNode(idx int) (*scene.Node, error) {
	if idx < 0 || idx >= len(st.doc.Nodes) {
		return nil, fmt.Errorf("%w: node index %d out of range", ErrInvalidFormat, idx)
	}
	node := st.doc.Nodes[idx]
	out := &scene.Node{Name: nodeName(node, idx)}

	for _, ci := range node.Children {
		child, err := st.importNode(ci)
		if err != nil {
			return nil, err
		}
		child.Parent = out
		out.Children = append(out.Children, child)
	}

	out.Transform = nodeTransform(node)

	if node.Mesh != nil {
		mi := *node.Mesh
		if mi >= 0 && mi+1 < len(st.meshOffsets) {
			for j := st.meshOffsets[mi]; j < st.meshOffsets[mi+1]; j++ {
				out.Meshes = append(out.Meshes, j)
			}
			if node.Skin != nil && len(out.Meshes) > 0 {
				st.attachSkin(node, out)
			}
		} else {
			st.log.Warn("node references unknown mesh",
				zap.String("node", out.Name), zap.Int("mesh", mi))
		}
	}

	if node.Camera != nil {
		ci := *node.Camera
		if ci >= 0 && ci < len(st.out.Cameras) {
			// Cameras take the name of the node they are bound to.
			st.out.Cameras[ci].Name = out.Name
		}
	}

	return out, nil
}

// nodeName falls back to the dense node index when the source carries no
// name.
func nodeName(node *gltf.Node, idx int) string {
	if node.Name != "" {
		return node.Name
	}
	return "node-" + strconv.Itoa(idx)
}

// nodeTransform composes the node's local transform: an explicit matrix
// when present, otherwise T*R*S with missing components as identity.
func nodeTransform(node *gltf.Node) mgl32.Mat4 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	m := mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2]))
	q := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}
	m = m.Mul4(q.Mat4())
	return m.Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// attachSkin transposes the per-vertex joint influences of the node's
// mesh into per-bone vertex-weight lists and attaches one bone set per
// output mesh slot. Skin inconsistencies degrade to empty bone data.
func (st *importState) attachSkin(node *gltf.Node, out *scene.Node) {
	skinIdx := *node.Skin
	if skinIdx < 0 || skinIdx >= len(st.doc.Skins) {
		st.log.Warn("node references unknown skin",
			zap.String("node", out.Name), zap.Int("skin", skinIdx))
		return
	}
	skin := st.doc.Skins[skinIdx]
	mesh := st.doc.Meshes[*node.Mesh]

	offsets := st.boneOffsets(skin)

	for p, prim := range mesh.Primitives {
		if p >= len(out.Meshes) {
			break
		}
		weighting := st.vertexWeightMap(prim, len(skin.Joints))

		bones := make([]*scene.Bone, len(skin.Joints))
		for i, jointIdx := range skin.Joints {
			bone := &scene.Bone{Offset: offsets[i]}
			if jointIdx >= 0 && jointIdx < len(st.doc.Nodes) {
				bone.Name = nodeName(st.doc.Nodes[jointIdx], jointIdx)
			} else {
				bone.Name = "bone-" + strconv.Itoa(i)
			}
			if w := weighting[i]; len(w) > 0 {
				bone.Weights = w
			} else {
				// Consumers require at least one weight per bone.
				bone.Weights = []scene.VertexWeight{{}}
			}
			bones[i] = bone
		}
		st.out.Meshes[out.Meshes[p]].Bones = bones
	}
}

// boneOffsets returns one offset matrix per joint: the skin's inverse
// bind matrices when provided, otherwise each joint node's composed
// local transform.
func (st *importState) boneOffsets(skin *gltf.Skin) []mgl32.Mat4 {
	offsets := make([]mgl32.Mat4, len(skin.Joints))

	if skin.InverseBindMatrices != nil {
		ibms, err := extractMat4(st.doc, st.accessor(*skin.InverseBindMatrices))
		if err != nil {
			st.log.Warn("unreadable inverse bind matrices", zap.Error(err))
		} else {
			for i := range offsets {
				if i < len(ibms) {
					offsets[i] = ibms[i]
				} else {
					offsets[i] = mgl32.Ident4()
				}
			}
			return offsets
		}
	}

	for i, jointIdx := range skin.Joints {
		if jointIdx >= 0 && jointIdx < len(st.doc.Nodes) {
			offsets[i] = nodeTransform(st.doc.Nodes[jointIdx])
		} else {
			offsets[i] = mgl32.Ident4()
		}
	}
	return offsets
}

// vertexWeightMap inverts the JOINTS_0/WEIGHTS_0 4-tuple influence
// streams into one vertex-weight list per bone. Zero weights and
// out-of-range bone indices are skipped.
func (st *importState) vertexWeightMap(prim *gltf.Primitive, numBones int) [][]scene.VertexWeight {
	weighting := make([][]scene.VertexWeight, numBones)

	jIdx, jOK := prim.Attributes[gltf.JOINTS_0]
	wIdx, wOK := prim.Attributes[gltf.WEIGHTS_0]
	if !jOK || !wOK {
		return weighting
	}
	jAcc, wAcc := st.accessor(jIdx), st.accessor(wIdx)
	if jAcc == nil || wAcc == nil || jAcc.Count != wAcc.Count {
		return weighting
	}

	weights, err := extractVec4(st.doc, wAcc)
	if err != nil {
		st.log.Warn("unreadable vertex weights", zap.Error(err))
		return weighting
	}
	joints, err := extractJoints(st.doc, jAcc)
	if err != nil {
		st.log.Warn("unreadable vertex joints", zap.Error(err))
		return weighting
	}

	for v := range joints {
		if v >= len(weights) {
			break
		}
		for j := 0; j < 4; j++ {
			w := weights[v][j]
			bone := int(joints[v][j])
			if w > 0 && bone < numBones {
				if weighting[bone] == nil {
					weighting[bone] = make([]scene.VertexWeight, 0, 8)
				}
				weighting[bone] = append(weighting[bone], scene.VertexWeight{
					VertexID: uint32(v),
					Weight:   w,
				})
			}
		}
	}
	return weighting
}
