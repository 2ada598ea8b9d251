package ebb

import (
	"fmt"
	"sync/atomic"
)

// --- ID counter ---

// nodeIDCounter is atomic because registries may create nodes from several
// goroutines. Tree edits themselves are single-threaded.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// --- Node ---

// Node is the interface every scene-graph element satisfies. Concrete node
// types embed [Base] and are always used through pointers. AsNode returns the
// embedded Base, which holds the tree links and implements the tree
// operations.
type Node interface {
	AsNode() *Base
}

// NodePtr constrains a type parameter to *T where *T is a [Node]. It lets
// [New] allocate a T and hand back the pointer type without a type switch.
type NodePtr[T any] interface {
	*T
	Node
}

// Base holds the tree links shared by every node type. It is meant to be
// embedded; its zero value is usable once the enclosing node has been bound
// by [New], [Bind], or by being added to a parent.
type Base struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	self     Node
	parent   Node
	children []Node

	disposed bool
}

// AsNode implements [Node].
func (b *Base) AsNode() *Base {
	return b
}

// Self returns the outermost node that embeds b. For an unbound Base this is
// b itself.
func (b *Base) Self() Node {
	if b.self == nil {
		return b
	}
	return b.self
}

// String returns the node's name, or its type and ID when it has none.
func (b *Base) String() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("%T#%d", b.Self(), b.ID)
}

// Container is a node with no behavior of its own. It groups children and is
// the default scene root.
type Container struct {
	Base
}

// --- Construction ---

// New allocates a node of type T, runs its Init hook, and appends it to
// parent. A nil parent makes the node a root.
//
//	root := ebb.New[ebb.Container](nil)
//	tr := ebb.New[ebb.Transform](root)
func New[T any, PT NodePtr[T]](parent Node) PT {
	n := PT(new(T))
	bind(n)
	if parent != nil {
		bind(parent)
		parent.AsNode().AddChild(n)
	}
	return n
}

// NewWith is like [New] but also adopts children. Each child that already has
// a parent is detached from it first, so it ends up under the new node
// exactly once.
func NewWith[T any, PT NodePtr[T]](parent Node, children ...Node) PT {
	n := New[T, PT](parent)
	for _, child := range children {
		n.AsNode().AddChild(child)
	}
	return n
}

// Bind prepares a node that was created with a composite literal rather than
// [New]: it records n as the node's identity, assigns an ID, and runs the Init
// hook. Binding an already-bound node is a no-op. Bind returns n.
func Bind(n Node) Node {
	bind(n)
	return n
}

func bind(n Node) {
	b := n.AsNode()
	if b.self != nil {
		return
	}
	b.self = n
	b.ID = nextNodeID()
	if in, ok := n.(Initer); ok {
		in.Init()
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first; the
// detach and append happen in one step.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (b *Base) AddChild(child Node) {
	child = b.prepareChild(child, "AddChild")
	b.children = append(b.children, child)
	b.afterAdd(child)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (b *Base) AddChildAt(child Node, index int) {
	child = b.prepareChild(child, "AddChildAt")
	// Index is checked after detaching: moving a node within the same
	// parent shortens the list by one.
	if index < 0 || index > len(b.children) {
		panic("ebb: child index out of range")
	}
	b.children = append(b.children, nil)
	copy(b.children[index+1:], b.children[index:])
	b.children[index] = child
	b.afterAdd(child)
}

// prepareChild validates child, binds it, and detaches it from its current
// parent. It returns the child's bound identity.
func (b *Base) prepareChild(child Node, op string) Node {
	if child == nil {
		panic("ebb: cannot add nil child")
	}
	bind(child)
	child = child.AsNode().Self()
	if globalDebug {
		debugCheckDisposed(b, op+" (parent)")
		debugCheckDisposed(child.AsNode(), op+" (child)")
	}
	if isAncestor(child, b.Self()) {
		panic("ebb: adding child would create a cycle")
	}
	cb := child.AsNode()
	if cb.parent != nil {
		cb.parent.AsNode().removeChildByPtr(cb)
	}
	cb.parent = b.Self()
	return child
}

func (b *Base) afterAdd(child Node) {
	if globalDebug {
		debugCheckTreeDepth(child.AsNode())
		debugCheckChildCount(b)
	}
}

// RemoveChild detaches the first child identical to child.
// No-op if child is not a child of this node.
func (b *Base) RemoveChild(child Node) {
	if child == nil {
		return
	}
	cb := child.AsNode()
	if globalDebug {
		debugCheckDisposed(b, "RemoveChild")
	}
	if b.removeChildByPtr(cb) {
		cb.parent = nil
	}
}

// RemoveChildAt removes and returns the child at the given index.
func (b *Base) RemoveChildAt(index int) Node {
	if index < 0 || index >= len(b.children) {
		panic("ebb: child index out of range")
	}
	child := b.children[index]
	copy(b.children[index:], b.children[index+1:])
	b.children[len(b.children)-1] = nil
	b.children = b.children[:len(b.children)-1]
	child.AsNode().parent = nil
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (b *Base) RemoveFromParent() {
	if b.parent == nil {
		return
	}
	b.parent.AsNode().RemoveChild(b)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (b *Base) RemoveChildren() {
	for i, child := range b.children {
		child.AsNode().parent = nil
		b.children[i] = nil
	}
	b.children = b.children[:0]
}

// SetChildIndex moves child to a new index among its siblings.
func (b *Base) SetChildIndex(child Node, index int) {
	cb := child.AsNode()
	if cb.parent == nil || cb.parent.AsNode() != b {
		panic("ebb: child's parent is not this node")
	}
	nc := len(b.children)
	if index < 0 || index >= nc {
		panic("ebb: child index out of range")
	}
	oldIndex := b.indexOf(cb)
	if oldIndex == index {
		return
	}
	child = b.children[oldIndex]
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(b.children[oldIndex:], b.children[oldIndex+1:index+1])
	} else {
		copy(b.children[index+1:], b.children[index:oldIndex])
	}
	b.children[index] = child
}

// --- Accessors ---

// Parent returns the node's parent, or nil for a root.
func (b *Base) Parent() Node {
	return b.parent
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (b *Base) Children() []Node {
	return b.children
}

// NumChildren returns the number of children.
func (b *Base) NumChildren() int {
	return len(b.children)
}

// HasChildren reports whether the node has at least one child.
func (b *Base) HasChildren() bool {
	return len(b.children) > 0
}

// ChildAt returns the child at the given index.
// Panics if index is out of range; check NumChildren first.
func (b *Base) ChildAt(index int) Node {
	if index < 0 || index >= len(b.children) {
		panic("ebb: child index out of range")
	}
	return b.children[index]
}

// IndexInParent returns the node's position among its siblings, or -1 for a
// root.
func (b *Base) IndexInParent() int {
	if b.parent == nil {
		return -1
	}
	return b.parent.AsNode().indexOf(b)
}

// Root returns the topmost ancestor of the node (the node itself for a root).
func (b *Base) Root() Node {
	n := b.Self()
	for n.AsNode().parent != nil {
		n = n.AsNode().parent
	}
	return n
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. A disposed node's children are
// destroyed with it, never promoted to the grandparent. Disposing again only
// detaches the node, which matters if it was re-added after disposal.
func (b *Base) Dispose() {
	b.RemoveFromParent()
	if b.disposed {
		return
	}
	b.dispose()
}

// disposeChildrenFrom detaches and disposes children[from:], last first.
func (b *Base) disposeChildrenFrom(from int) {
	for len(b.children) > from {
		b.RemoveChildAt(len(b.children) - 1).AsNode().Dispose()
	}
}

func (b *Base) dispose() {
	b.disposed = true
	if d, ok := b.self.(Disposer); ok {
		d.OnDispose()
	}
	for _, child := range b.children {
		cb := child.AsNode()
		cb.parent = nil
		cb.dispose()
	}
	b.children = nil
	b.parent = nil
	b.ID = 0
}

// IsDisposed returns true if this node has been disposed.
func (b *Base) IsDisposed() bool {
	return b.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node Node) bool {
	cb := candidate.AsNode()
	for p := node; p != nil; p = p.AsNode().parent {
		if p.AsNode() == cb {
			return true
		}
	}
	return false
}

func (b *Base) indexOf(cb *Base) int {
	for i, c := range b.children {
		if c.AsNode() == cb {
			return i
		}
	}
	return -1
}

// removeChildByPtr removes child from b.children without clearing its parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (b *Base) removeChildByPtr(cb *Base) bool {
	i := b.indexOf(cb)
	if i < 0 {
		return false
	}
	copy(b.children[i:], b.children[i+1:])
	b.children[len(b.children)-1] = nil
	b.children = b.children[:len(b.children)-1]
	return true
}
