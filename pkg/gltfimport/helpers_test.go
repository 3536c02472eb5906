package gltfimport

import (
	"encoding/binary"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/sceneport/pkg/scene"
)

// Test documents are assembled in memory: one buffer per accessor keeps
// the fixtures easy to follow.

func newTestDoc() *gltf.Document {
	return &gltf.Document{Asset: gltf.Asset{Version: "2.0"}}
}

// addAccessor appends data as its own buffer, buffer view, and accessor,
// returning the accessor index.
func addAccessor(doc *gltf.Document, data []byte, comp gltf.ComponentType, typ gltf.AccessorType, count int) int {
	bufIdx := len(doc.Buffers)
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{ByteLength: len(data), Data: data})
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: bufIdx, ByteLength: len(data)})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(len(doc.BufferViews) - 1),
		ComponentType: comp,
		Type:          typ,
		Count:         count,
	})
	return len(doc.Accessors) - 1
}

func floatBytes(vals ...float32) []byte {
	b := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

func u16Bytes(vals ...uint16) []byte {
	b := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return b
}

func u32Bytes(vals ...uint32) []byte {
	b := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

// addPositions registers a VEC3 float accessor holding the given
// vertices, three floats each.
func addPositions(doc *gltf.Document, xyz ...float32) int {
	return addAccessor(doc, floatBytes(xyz...), gltf.ComponentFloat, gltf.AccessorVec3, len(xyz)/3)
}

// singleMeshDoc wraps one primitive into a document with a one-node
// scene so the full import pipeline runs.
func singleMeshDoc(prim *gltf.Primitive) *gltf.Document {
	doc := newTestDoc()
	doc.Meshes = []*gltf.Mesh{{Name: "mesh", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func faceIndices(faces []scene.Face) [][]uint32 {
	out := make([][]uint32, len(faces))
	for i, f := range faces {
		out[i] = f.Indices
	}
	return out
}
