package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMeshCounts(t *testing.T) {
	m := &Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount: got %d want 3", m.VertexCount())
	}
	if m.FaceCount() != 1 {
		t.Errorf("FaceCount: got %d want 1", m.FaceCount())
	}
	if m.HasNormals() || m.HasTangents() {
		t.Errorf("empty attribute channels should report absent")
	}
}

func TestFindNode(t *testing.T) {
	root := &Node{Name: "root"}
	arm := &Node{Name: "arm", Parent: root}
	hand := &Node{Name: "hand", Parent: arm}
	arm.Children = []*Node{hand}
	root.Children = []*Node{arm}

	if got := root.FindNode("hand"); got != hand {
		t.Errorf("FindNode(hand): got %+v", got)
	}
	if got := root.FindNode("missing"); got != nil {
		t.Errorf("FindNode(missing): got %+v", got)
	}
	if got := root.FindNode("root"); got != root {
		t.Errorf("FindNode(root): got %+v", got)
	}
}

func TestGlobalTransformComposes(t *testing.T) {
	root := &Node{Name: "root", Transform: mgl32.Translate3D(1, 0, 0)}
	child := &Node{Name: "child", Transform: mgl32.Translate3D(0, 2, 0), Parent: root}
	root.Children = []*Node{child}

	p := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, child.GlobalTransform())
	if p != (mgl32.Vec3{1, 2, 0}) {
		t.Errorf("global transform: got %v want (1,2,0)", p)
	}
}

func TestTextureRefEmbedded(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"*0", true},
		{"*12", true},
		{"textures/wood.png", false},
		{"", false},
	}
	for _, tt := range tests {
		ref := &TextureRef{URI: tt.uri}
		if got := ref.Embedded(); got != tt.want {
			t.Errorf("Embedded(%q): got %v want %v", tt.uri, got, tt.want)
		}
	}
}

func TestAnimationChannelLookup(t *testing.T) {
	anim := &Animation{
		Channels: []*NodeAnim{
			{NodeName: "hip"},
			{NodeName: "knee"},
		},
	}
	if ch := anim.Channel("knee"); ch == nil || ch.NodeName != "knee" {
		t.Errorf("Channel(knee): got %+v", ch)
	}
	if ch := anim.Channel("toe"); ch != nil {
		t.Errorf("Channel(toe): got %+v", ch)
	}
}

func TestSceneHasMeshes(t *testing.T) {
	s := &Scene{}
	if s.HasMeshes() {
		t.Errorf("empty scene reports meshes")
	}
	s.Meshes = append(s.Meshes, &Mesh{})
	if !s.HasMeshes() {
		t.Errorf("scene with a mesh reports none")
	}
}
