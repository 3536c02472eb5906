package scene

import "github.com/go-gl/mathgl/mgl32"

// PrimitiveType is a bitset describing the kinds of faces a mesh carries.
type PrimitiveType uint32

const (
	PrimitivePoint PrimitiveType = 1 << iota
	PrimitiveLine
	PrimitiveTriangle
)

// Attribute channel limits per mesh.
const (
	MaxColorSets  = 8
	MaxUVChannels = 8
)

// Face references the vertices of one point, edge, or triangle.
// Indices are positions into the owning mesh's vertex arrays.
type Face struct {
	Indices []uint32
}

// VertexWeight binds a single vertex to a bone with the given influence.
type VertexWeight struct {
	VertexID uint32
	Weight   float32
}

// Bone deforms a subset of a mesh's vertices. Weights always holds at
// least one entry; bones with no real influence carry a single zero
// weight so consumers can rely on a non-empty list.
type Bone struct {
	Name    string
	Offset  mgl32.Mat4
	Weights []VertexWeight
}

// MorphTarget is an absolute copy of the base mesh's deformable
// attributes with the target's deltas already applied. Weight is the
// static blend weight assigned at the mesh level, if any.
type MorphTarget struct {
	Name       string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	Weight     float32
}

// Mesh is one draw call's worth of geometry: flat per-vertex attribute
// arrays plus a face list. All attribute slices are either empty or
// exactly VertexCount long, except where a channel was skipped during
// import.
type Mesh struct {
	Name           string
	PrimitiveTypes PrimitiveType

	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3

	Colors       [MaxColorSets][]mgl32.Vec4
	TexCoords    [MaxUVChannels][]mgl32.Vec3
	UVComponents [MaxUVChannels]int

	Faces []Face

	// MaterialIndex references Scene.Materials. A primitive without an
	// explicit material gets the scene's trailing default material; an
	// explicit index is copied from the source as given, without a range
	// check.
	MaterialIndex int

	Bones        []*Bone
	MorphTargets []*MorphTarget
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// HasNormals reports whether per-vertex normals are present.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0
}

// HasTangents reports whether tangents (and therefore bitangents) are
// present.
func (m *Mesh) HasTangents() bool {
	return len(m.Tangents) > 0
}
