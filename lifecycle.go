package ebb

import "github.com/hajimehoshi/ebiten/v2"

// Hooks a node type may implement. Traversal over children is done by the
// package, so an implementation only handles its own node.

// Initer is implemented by nodes that need one-time initialization. Init runs
// when the node is bound, before it is attached to any parent.
type Initer interface {
	Init()
}

// Setupper is implemented by nodes that prepare themselves when a tree is
// first run or reloaded.
type Setupper interface {
	Setup()
}

// Updater is implemented by nodes that advance once per frame tick.
type Updater interface {
	Update()
}

// Drawer is implemented by nodes that render into the frame.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// Disposer is implemented by nodes that release resources when disposed.
// OnDispose runs before the node's children are disposed.
type Disposer interface {
	OnDispose()
}

// Setup calls the Setup hook of n and then of every descendant, in
// pre-order. It is called once when a tree is loaded or first run.
func Setup(n Node) {
	if s, ok := n.(Setupper); ok {
		s.Setup()
	}
	for _, child := range n.AsNode().children {
		Setup(child)
	}
}

// Update calls the Update hook of n and then of every descendant, in
// pre-order. Hooks must not add or remove siblings while the walk is in
// progress; queue structural edits with [Scene.Defer] instead.
func Update(n Node) {
	if u, ok := n.(Updater); ok {
		u.Update()
	}
	for _, child := range n.AsNode().children {
		Update(child)
	}
}

// Draw calls the Draw hook of n and then of every descendant, in pre-order,
// so children paint over their parents.
func Draw(n Node, screen *ebiten.Image) {
	if d, ok := n.(Drawer); ok {
		d.Draw(screen)
	}
	for _, child := range n.AsNode().children {
		Draw(child, screen)
	}
}
