package scene

import "github.com/go-gl/mathgl/mgl32"

// Node is one element of the scene hierarchy. Children are owned by
// their parent; Parent is a non-owning back reference set after
// construction. Meshes holds indices into Scene.Meshes.
type Node struct {
	Name string

	Transform mgl32.Mat4

	Parent   *Node
	Children []*Node

	Meshes []int
}

// FindNode returns the first node named name in this subtree, searching
// depth first, or nil.
func (n *Node) FindNode(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindNode(name); found != nil {
			return found
		}
	}
	return nil
}

// GlobalTransform composes the node's transform with all its ancestors'.
func (n *Node) GlobalTransform() mgl32.Mat4 {
	if n.Parent == nil {
		return n.Transform
	}
	return n.Parent.GlobalTransform().Mul4(n.Transform)
}
