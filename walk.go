package ebb

// Typed lookups test the dynamic type of each node with a type assertion, so
// T may be a concrete pointer type (*Transform) or an interface
// (Transformer). A type that embeds another node type matches the embedded
// type only through an interface the embedded type's methods satisfy.

// ChildOf returns the idx-th direct child of n whose dynamic type is T,
// counting matches only, in insertion order. It reports false when fewer than
// idx+1 children match.
func ChildOf[T any](n Node, idx int) (T, bool) {
	var zero T
	if idx < 0 {
		return zero, false
	}
	for _, child := range n.AsNode().children {
		if t, ok := child.(T); ok {
			if idx == 0 {
				return t, true
			}
			idx--
		}
	}
	return zero, false
}

// FirstChildOf returns the first direct child of n whose dynamic type is T.
func FirstChildOf[T any](n Node) (T, bool) {
	return ChildOf[T](n, 0)
}

// SiblingOf returns the idx-th child of n's parent whose dynamic type is T.
// n itself is among the candidates. It reports false when n has no parent.
func SiblingOf[T any](n Node, idx int) (T, bool) {
	parent := n.AsNode().parent
	if parent == nil {
		var zero T
		return zero, false
	}
	return ChildOf[T](parent, idx)
}

// Ancestor returns the nearest ancestor of n (excluding n) whose dynamic type
// is T.
func Ancestor[T any](n Node) (T, bool) {
	for p := n.AsNode().parent; p != nil; p = p.AsNode().parent {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// FindChildren returns every descendant of n (excluding n) whose dynamic type
// is T, in depth-first pre-order: each child is visited before its own
// children, and its subtree before its next sibling.
func FindChildren[T any](n Node) []T {
	var out []T
	return appendDescendants(out, n)
}

func appendDescendants[T any](out []T, n Node) []T {
	for _, child := range n.AsNode().children {
		if t, ok := child.(T); ok {
			out = append(out, t)
		}
		out = appendDescendants(out, child)
	}
	return out
}

// FindAll returns every descendant of the root of n's tree whose dynamic type
// is T, as [FindChildren] does from the root. The root itself is not
// included. The result does not depend on which node of the tree it is
// called from.
func FindAll[T any](n Node) []T {
	return FindChildren[T](n.AsNode().Root())
}

// Walk calls fn for n and each of its descendants in pre-order. When fn
// returns false the node's children are skipped.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.AsNode().children {
		Walk(child, fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n, n included.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}
