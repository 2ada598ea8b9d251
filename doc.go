// Package ebb is a scene-graph node system for [Ebitengine] games.
//
// A scene is a tree of nodes. Every node type embeds [Base], which owns the
// children and a back-reference to the parent, and adds behavior through
// optional hook interfaces ([Initer], [Setupper], [Updater], [Drawer],
// [Disposer], [Saver], [Loader]). The package walks the tree and calls the
// hooks, so a node type never has to forward calls to its children.
//
// # Building trees
//
// Create nodes with [New], passing the parent (nil for a root):
//
//	root := ebb.New[ebb.Container](nil)
//	body := ebb.New[ebb.Transform](root)
//	body.SetPosition(320, 240)
//	mesh := ebb.New[ebb.MeshRenderer](body)
//	mesh.SetMesh(vertices, indices)
//
// [Base.AddChild] reparents in one step: a node that already has a parent is
// detached from it first. Adding an ancestor as a child panics.
// [Base.Dispose] destroys a node together with its whole subtree.
//
// # Typed lookups
//
// Children are stored as [Node] values; typed queries filter them by their
// dynamic type:
//
//	tr, ok := ebb.FirstChildOf[*ebb.Transform](root)
//	second, ok := ebb.ChildOf[*ebb.Transform](root, 1)
//	peer, ok := ebb.SiblingOf[*ebb.MeshRenderer](tr, 0)
//	all := ebb.FindAll[ebb.Transformer](mesh) // whole tree, any entry point
//
// # Persistence
//
// [Save] writes the subtree below a root as a self-describing binary stream:
// each node is tagged with a [TypeID] derived from its Go type, and [Load]
// recreates nodes of the right type through a [Registry]. Types met during a
// save are registered automatically; a program that loads a tree without
// saving first registers its own types up front:
//
//	ebb.RegisterType[Spinner](ebb.DefaultRegistry())
//
// Nodes persist their own fields by implementing [Saver] and [Loader].
//
// # Running
//
// [Run] opens a window and drives a [Scene]: the setup pass once, then the
// update pass every tick and the draw pass every frame.
// A [Window] node under the scene root stores the title and size with the
// tree, so a loaded scene restores them.
//
// [Ebitengine]: https://ebitengine.org
package ebb
