package gltfimport

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/sceneport/pkg/scene"
)

// importMeshes expands every input mesh into one output mesh per
// primitive and records the expansion ranges in meshOffsets, with a
// trailing sentinel, for the node phase to consume.
func (st *importState) importMeshes() error {
	k := 0
	st.meshOffsets = make([]int, 0, len(st.doc.Meshes)+1)
	for mi, mesh := range st.doc.Meshes {
		st.meshOffsets = append(st.meshOffsets, k)
		k += len(mesh.Primitives)

		for pi, prim := range mesh.Primitives {
			out, err := st.convertPrimitive(mesh, mi, pi, prim)
			if err != nil {
				return err
			}
			st.out.Meshes = append(st.out.Meshes, out)
		}
	}
	st.meshOffsets = append(st.meshOffsets, k)
	return nil
}

func (st *importState) convertPrimitive(mesh *gltf.Mesh, meshIdx, primIdx int, prim *gltf.Primitive) (*scene.Mesh, error) {
	name := mesh.Name
	if name == "" {
		name = "mesh-" + strconv.Itoa(meshIdx)
	}
	if len(mesh.Primitives) > 1 {
		name = name + "-" + strconv.Itoa(primIdx)
	}

	out := &scene.Mesh{
		Name:           name,
		PrimitiveTypes: primitiveTypeFlag(prim.Mode),
		MaterialIndex:  len(st.out.Materials) - 1,
	}
	if prim.Material != nil {
		out.MaterialIndex = *prim.Material
	}

	attr := prim.Attributes

	if posIdx, ok := attr[gltf.POSITION]; ok {
		positions, err := extractVec3(st.doc, st.accessor(posIdx))
		if err != nil {
			return nil, fmt.Errorf("mesh %q: read positions: %w", name, err)
		}
		out.Positions = positions
	}
	nv := len(out.Positions)

	// Tangents are only extracted when normals are present; the
	// bitangent derives from both.
	var tangents []mgl32.Vec4
	if normIdx, ok := attr[gltf.NORMAL]; ok {
		normals, err := extractVec3(st.doc, st.accessor(normIdx))
		if err != nil {
			return nil, fmt.Errorf("mesh %q: read normals: %w", name, err)
		}
		out.Normals = normals

		if tanIdx, ok := attr[gltf.TANGENT]; ok {
			tangents, err = extractVec4(st.doc, st.accessor(tanIdx))
			if err != nil {
				return nil, fmt.Errorf("mesh %q: read tangents: %w", name, err)
			}
			out.Tangents = make([]mgl32.Vec3, nv)
			out.Bitangents = make([]mgl32.Vec3, nv)
			for i := 0; i < nv && i < len(tangents) && i < len(out.Normals); i++ {
				t := tangents[i]
				xyz := t.Vec3()
				out.Tangents[i] = xyz
				out.Bitangents[i] = out.Normals[i].Cross(xyz).Mul(t.W())
			}
		}
	}

	for c := 0; c < scene.MaxColorSets; c++ {
		idx, ok := attr["COLOR_"+strconv.Itoa(c)]
		if !ok {
			continue
		}
		acc := st.accessor(idx)
		if acc == nil || acc.Count != nv {
			st.log.Warn("color stream size does not match the vertex count",
				zap.String("mesh", name), zap.Int("channel", c))
			continue
		}
		colors, err := extractColors(st.doc, acc)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: read colors: %w", name, err)
		}
		out.Colors[c] = colors
	}

	for tc := 0; tc < scene.MaxUVChannels; tc++ {
		idx, ok := attr["TEXCOORD_"+strconv.Itoa(tc)]
		if !ok {
			continue
		}
		acc := st.accessor(idx)
		if acc == nil || acc.Count != nv {
			st.log.Warn("texcoord stream size does not match the vertex count",
				zap.String("mesh", name), zap.Int("channel", tc))
			continue
		}
		uvs, comps, err := extractTexCoords(st.doc, acc)
		if err != nil {
			return nil, fmt.Errorf("mesh %q: read texcoords: %w", name, err)
		}
		// glTF puts the texture origin at the top left; output uses
		// bottom left.
		for i := range uvs {
			uvs[i][1] = 1 - uvs[i][1]
		}
		out.TexCoords[tc] = uvs
		out.UVComponents[tc] = comps
	}

	st.convertMorphTargets(mesh, prim, out, tangents)

	faces, err := st.assembleFaces(prim, nv, name)
	if err != nil {
		return nil, err
	}
	out.Faces = faces
	st.validateFaces(out)

	return out, nil
}

// convertMorphTargets builds one animated-mesh copy per morph target,
// each initialized from the base attributes with the target's deltas
// added on. Target errors degrade to the base data rather than aborting.
func (st *importState) convertMorphTargets(mesh *gltf.Mesh, prim *gltf.Primitive, out *scene.Mesh, baseTangents []mgl32.Vec4) {
	if len(prim.Targets) == 0 {
		return
	}
	nv := out.VertexCount()

	for ti, target := range prim.Targets {
		mt := &scene.MorphTarget{
			Name:       out.Name + "-target-" + strconv.Itoa(ti),
			Positions:  append([]mgl32.Vec3(nil), out.Positions...),
			Normals:    append([]mgl32.Vec3(nil), out.Normals...),
			Tangents:   append([]mgl32.Vec3(nil), out.Tangents...),
			Bitangents: append([]mgl32.Vec3(nil), out.Bitangents...),
		}
		if ti < len(mesh.Weights) {
			mt.Weight = float32(mesh.Weights[ti])
		}

		if idx, ok := target[gltf.POSITION]; ok {
			deltas, err := extractVec3(st.doc, st.accessor(idx))
			if err != nil {
				st.log.Warn("unreadable morph position deltas",
					zap.String("mesh", out.Name), zap.Int("target", ti), zap.Error(err))
			} else {
				for v := 0; v < nv && v < len(deltas); v++ {
					mt.Positions[v] = mt.Positions[v].Add(deltas[v])
				}
			}
		}
		if idx, ok := target[gltf.NORMAL]; ok {
			deltas, err := extractVec3(st.doc, st.accessor(idx))
			if err != nil {
				st.log.Warn("unreadable morph normal deltas",
					zap.String("mesh", out.Name), zap.Int("target", ti), zap.Error(err))
			} else {
				for v := 0; v < nv && v < len(mt.Normals) && v < len(deltas); v++ {
					mt.Normals[v] = mt.Normals[v].Add(deltas[v])
				}
			}
		}
		if idx, ok := target[gltf.TANGENT]; ok {
			deltas, err := extractVec3(st.doc, st.accessor(idx))
			if err != nil {
				st.log.Warn("unreadable morph tangent deltas",
					zap.String("mesh", out.Name), zap.Int("target", ti), zap.Error(err))
			} else {
				for v := 0; v < nv && v < len(baseTangents) && v < len(deltas) && v < len(mt.Normals); v++ {
					t := baseTangents[v]
					xyz := t.Vec3().Add(deltas[v])
					mt.Tangents[v] = xyz
					mt.Bitangents[v] = mt.Normals[v].Cross(xyz).Mul(t.W())
				}
			}
		}

		out.MorphTargets = append(out.MorphTargets, mt)
	}
}

// assembleFaces produces the face list for a primitive, reading through
// the index accessor when present and consuming positions sequentially
// otherwise. A signed index accessor drops the face list with a warning.
func (st *importState) assembleFaces(prim *gltf.Primitive, vertexCount int, name string) ([]scene.Face, error) {
	at := func(i int) uint32 { return uint32(i) }
	count := vertexCount

	if prim.Indices != nil {
		reader, n, err := indexReader(st.doc, st.accessor(*prim.Indices))
		if errors.Is(err, errSignedIndices) {
			st.log.Warn("dropping index stream with signed component type",
				zap.String("mesh", name))
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("mesh %q: read indices: %w", name, err)
		}
		at, count = reader, n
	}

	return buildFaces(prim.Mode, count, at), nil
}

// buildFaces maps an index stream onto faces per topology. Strip and fan
// modes chain through previously produced faces so the winding stays
// consistent across the whole primitive.
func buildFaces(mode gltf.PrimitiveMode, count int, at func(int) uint32) []scene.Face {
	switch mode {
	case gltf.PrimitivePoints:
		faces := make([]scene.Face, count)
		for i := range faces {
			faces[i] = scene.Face{Indices: []uint32{at(i)}}
		}
		return faces

	case gltf.PrimitiveLines:
		faces := make([]scene.Face, count/2)
		for i := 0; i+1 < count; i += 2 {
			faces[i/2] = scene.Face{Indices: []uint32{at(i), at(i + 1)}}
		}
		return faces

	case gltf.PrimitiveLineLoop, gltf.PrimitiveLineStrip:
		if count < 2 {
			return nil
		}
		n := count
		if mode == gltf.PrimitiveLineStrip {
			n = count - 1
		}
		faces := make([]scene.Face, n)
		faces[0] = scene.Face{Indices: []uint32{at(0), at(1)}}
		for i := 2; i < count; i++ {
			faces[i-1] = scene.Face{Indices: []uint32{faces[i-2].Indices[1], at(i)}}
		}
		if mode == gltf.PrimitiveLineLoop {
			faces[count-1] = scene.Face{Indices: []uint32{faces[count-2].Indices[1], faces[0].Indices[0]}}
		}
		return faces

	case gltf.PrimitiveTriangles:
		faces := make([]scene.Face, count/3)
		for i := 0; i+2 < count; i += 3 {
			faces[i/3] = scene.Face{Indices: []uint32{at(i), at(i + 1), at(i + 2)}}
		}
		return faces

	case gltf.PrimitiveTriangleStrip:
		if count < 3 {
			return nil
		}
		faces := make([]scene.Face, count-2)
		for i := range faces {
			if (i+1)%2 == 0 {
				// Even triangles flip their leading edge to keep the
				// winding uniform across the strip.
				faces[i] = scene.Face{Indices: []uint32{at(i + 1), at(i), at(i + 2)}}
			} else {
				faces[i] = scene.Face{Indices: []uint32{at(i), at(i + 1), at(i + 2)}}
			}
		}
		return faces

	case gltf.PrimitiveTriangleFan:
		if count < 3 {
			return nil
		}
		faces := make([]scene.Face, count-2)
		faces[0] = scene.Face{Indices: []uint32{at(0), at(1), at(2)}}
		for i := 1; i < len(faces); i++ {
			faces[i] = scene.Face{Indices: []uint32{faces[0].Indices[0], faces[i-1].Indices[2], at(i + 2)}}
		}
		return faces
	}
	return nil
}

// validateFaces warns once when any produced face references a vertex
// outside the mesh's range.
func (st *importState) validateFaces(m *scene.Mesh) {
	nv := uint32(m.VertexCount())
	for fi, f := range m.Faces {
		for _, idx := range f.Indices {
			if idx >= nv {
				st.log.Warn("face references vertex out of range",
					zap.String("mesh", m.Name),
					zap.Int("face", fi),
					zap.Uint32("index", idx),
					zap.Uint32("vertices", nv))
				return
			}
		}
	}
}

func primitiveTypeFlag(mode gltf.PrimitiveMode) scene.PrimitiveType {
	switch mode {
	case gltf.PrimitivePoints:
		return scene.PrimitivePoint
	case gltf.PrimitiveLines, gltf.PrimitiveLineLoop, gltf.PrimitiveLineStrip:
		return scene.PrimitiveLine
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		return scene.PrimitiveTriangle
	}
	return 0
}
