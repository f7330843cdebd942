// Package scene implements the retained-mode scene graph: transform-owning
// nodes composed into a tree, plus the cameras, lights and materials that
// hang off it.
//
// Every node kind embeds Node and is addressed through the Object
// interface. A parent exclusively owns its ordered children; a child keeps a
// non-owning reference to its parent. The single-parent invariant is
// maintained by Add and Remove, which are the only way to change either side.
package scene

import (
	"errors"
	"slices"

	"github.com/taigrr/speedr/pkg/math3d"
)

var (
	// ErrNilChild is returned when adding a nil object.
	ErrNilChild = errors.New("scene: nil child")
	// ErrCycle is returned when adding a node to itself or to one of its descendants.
	ErrCycle = errors.New("scene: adding node would create a cycle")
)

// Kind identifies the concrete type of an Object.
type Kind int

const (
	KindNode Kind = iota
	KindGroup
	KindScene
	KindMesh
	KindPoints
	KindCamera
	KindAmbientLight
	KindDirectionalLight
	KindPointLight
)

var kindNames = [...]string{
	KindNode:             "node",
	KindGroup:            "group",
	KindScene:            "scene",
	KindMesh:             "mesh",
	KindPoints:           "points",
	KindCamera:           "camera",
	KindAmbientLight:     "ambient-light",
	KindDirectionalLight: "directional-light",
	KindPointLight:       "point-light",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Object is implemented by every node kind.
type Object interface {
	Base() *Node
	Kind() Kind
}

// Node is the transform-owning base shared by all kinds. A bare *Node is
// itself an Object of KindNode.
type Node struct {
	Name     string
	Position math3d.Vec3
	Rotation math3d.Euler
	Scale    math3d.Vec3
	Visible  bool
	UserData map[string]any

	local math3d.Mat4
	world math3d.Mat4

	self     Object
	parent   Object
	children []Object
}

// NewNode returns a generic node.
func NewNode() *Node {
	n := &Node{}
	n.init(n)
	return n
}

func (n *Node) init(self Object) {
	n.self = self
	n.Scale = math3d.One3()
	n.Visible = true
	n.local = math3d.Identity()
	n.world = math3d.Identity()
}

// Base returns n. Embedding kinds promote it to reach their shared state.
func (n *Node) Base() *Node { return n }

// Kind returns KindNode. Embedding types override it.
func (n *Node) Kind() Kind { return KindNode }

// object returns the outermost Object wrapping n.
func (n *Node) object() Object {
	if n.self == nil {
		return n
	}
	return n.self
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() Object {
	return n.parent
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []Object {
	return slices.Clone(n.children)
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Add appends children in order. A child that already has a parent is
// detached from it first. A nil child fails with ErrNilChild, and adding n
// to itself or to one of its descendants fails with ErrCycle; in both
// cases no child is attached.
func (n *Node) Add(children ...Object) error {
	for _, child := range children {
		if child == nil || child.Base() == nil {
			return ErrNilChild
		}
		c := child.Base()
		for a := Object(n); a != nil; a = a.Base().parent {
			if a.Base() == c {
				return ErrCycle
			}
		}
	}
	for _, child := range children {
		c := child.Base()
		if c.parent != nil {
			c.parent.Base().Remove(child)
		}
		c.parent = n.object()
		n.children = append(n.children, c.object())
	}
	return nil
}

// Remove detaches each child by identity. Objects that are not children of
// n are ignored.
func (n *Node) Remove(children ...Object) {
	for _, child := range children {
		if child == nil {
			continue
		}
		c := child.Base()
		i := slices.IndexFunc(n.children, func(o Object) bool { return o.Base() == c })
		if i < 0 {
			continue
		}
		n.children = slices.Delete(n.children, i, i+1)
		c.parent = nil
	}
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Base().Remove(n)
	}
}

// Clear removes every child.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.Base().parent = nil
	}
	n.children = nil
}

// Traverse calls fn on n and then on every descendant, depth first, in
// child order. Invisible nodes are included.
func (n *Node) Traverse(fn func(Object)) {
	fn(n.object())
	for _, c := range n.children {
		c.Base().Traverse(fn)
	}
}

// TraverseVisible is Traverse restricted to visible nodes. An invisible
// node hides its whole subtree.
func (n *Node) TraverseVisible(fn func(Object)) {
	if !n.Visible {
		return
	}
	fn(n.object())
	for _, c := range n.children {
		c.Base().TraverseVisible(fn)
	}
}

// GetObjectByName returns the first node in pre-order with the given name.
func (n *Node) GetObjectByName(name string) Object {
	if n.Name == name {
		return n.object()
	}
	for _, c := range n.children {
		if o := c.Base().GetObjectByName(name); o != nil {
			return o
		}
	}
	return nil
}

// UpdateMatrix recomposes the local matrix from Position, Rotation and Scale.
func (n *Node) UpdateMatrix() {
	n.local = math3d.Compose(n.Position, n.Rotation, n.Scale)
}

// UpdateMatrixWorld recomposes local matrices and sets
// world = parent.world · local for n and its whole subtree in one
// top-down pass. A root's world matrix is its local matrix.
func (n *Node) UpdateMatrixWorld() {
	if n.parent != nil {
		n.updateWorld(n.parent.Base().world, true)
		return
	}
	n.updateWorld(math3d.Mat4{}, false)
}

func (n *Node) updateWorld(parentWorld math3d.Mat4, hasParent bool) {
	n.UpdateMatrix()
	if hasParent {
		n.world = parentWorld.Mul(n.local)
	} else {
		n.world = n.local
	}
	for _, c := range n.children {
		c.Base().updateWorld(n.world, true)
	}
}

// LocalMatrix returns the matrix computed by the last update.
func (n *Node) LocalMatrix() math3d.Mat4 {
	return n.local
}

// WorldMatrix returns the matrix computed by the last UpdateMatrixWorld.
func (n *Node) WorldMatrix() math3d.Mat4 {
	return n.world
}

// WorldPosition returns the translation of the world matrix.
func (n *Node) WorldPosition() math3d.Vec3 {
	return n.world.Translation()
}

// LookAt rotates n so it faces target, given in the parent's space.
// Cameras and lights point their -Z axis at the target; every other kind
// points +Z at it.
func (n *Node) LookAt(target math3d.Vec3) {
	var m math3d.Mat4
	switch n.object().Kind() {
	case KindCamera, KindDirectionalLight, KindPointLight:
		m = math3d.LookAt(n.Position, target, math3d.Up())
	default:
		m = math3d.LookAt(target, n.Position, math3d.Up())
	}
	n.Rotation = math3d.EulerFromMat4(m)
}
