package ebb

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"sync"
)

// TypeID identifies a concrete node type in the persisted stream. It is the
// 64-bit FNV-1a hash of the type's package-qualified name, so it is stable
// across runs and builds as long as the type keeps its name and import path.
type TypeID uint64

// String formats the ID the way logs and errors print it.
func (id TypeID) String() string {
	return fmt.Sprintf("0x%016x", uint64(id))
}

// Factory creates a node of one concrete type, already attached to parent.
// parent may be nil, in which case the node is a root.
type Factory func(parent Node) Node

// TypeInfo is one registry entry.
type TypeInfo struct {
	ID   TypeID
	Name string
	New  Factory
}

// Registry maps type IDs to node factories so a stream can recreate nodes of
// types it only knows by ID. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[TypeID]TypeInfo
}

// NewRegistry returns a registry preloaded with the node types defined in
// this package.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[TypeID]TypeInfo)}
	RegisterType[Container](r)
	RegisterType[Transform](r)
	RegisterType[Tween](r)
	RegisterType[MeshRenderer](r)
	RegisterType[FPS](r)
	RegisterType[Window](r)
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by [Save], [Load]
// and scenes that have no registry of their own.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register maps id to factory. Registering an ID again replaces the previous
// entry.
func (r *Registry) Register(id TypeID, name string, factory Factory) {
	if factory == nil {
		panic("ebb: nil factory for " + name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.types[id]; ok && prev.Name != name {
		Logger().Warn("type ID reassigned", "id", id, "old", prev.Name, "new", name)
	}
	r.types[id] = TypeInfo{ID: id, Name: name, New: factory}
}

// RegisterType registers T with a factory that constructs T directly and
// returns its ID.
func RegisterType[T any, PT NodePtr[T]](r *Registry) TypeID {
	name := typeName(reflect.TypeFor[T]())
	id := idForName(name)
	r.Register(id, name, func(parent Node) Node {
		return New[T, PT](parent)
	})
	return id
}

// Create looks up id and invokes its factory with parent. It returns
// ErrUnregisteredType if no factory is registered for id.
func (r *Registry) Create(id TypeID, parent Node) (Node, error) {
	r.mu.RLock()
	info, ok := r.types[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnregisteredType, id)
	}
	if parent != nil {
		bind(parent)
	}
	n := info.New(parent)
	if n == nil {
		return nil, fmt.Errorf("ebb: factory for %s returned nil", info.Name)
	}
	bind(n)
	// Factories are expected to attach; attach here when one did not.
	if parent != nil && n.AsNode().parent == nil {
		parent.AsNode().AddChild(n)
	}
	Logger().Debug("created node", "type", info.Name, "id", id)
	return n, nil
}

// Resolve returns the ID of n's dynamic type. A type seen for the first time
// is registered with a factory built from its reflected type; an existing
// entry for the ID is never replaced.
func (r *Registry) Resolve(n Node) (TypeID, error) {
	rt := reflect.TypeOf(n.AsNode().Self())
	name := typeName(rt)
	id := idForName(name)

	r.mu.RLock()
	info, ok := r.types[id]
	r.mu.RUnlock()
	if ok {
		if info.Name != name {
			return 0, fmt.Errorf("%w: %s and %s share %v", ErrTypeCollision, info.Name, name, id)
		}
		return id, nil
	}

	if rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, rt)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		r.types[id] = TypeInfo{ID: id, Name: name, New: reflectFactory(rt.Elem())}
		Logger().Debug("registered node type", "type", name, "id", id)
	}
	return id, nil
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id TypeID) (TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.types[id]
	return info, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Types returns all entries sorted by name.
func (r *Registry) Types() []TypeInfo {
	r.mu.RLock()
	out := make([]TypeInfo, 0, len(r.types))
	for _, info := range r.types {
		out = append(out, info)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TypeIDOf returns the ID of n's dynamic type without registering it.
func TypeIDOf(n Node) TypeID {
	return idForName(typeName(reflect.TypeOf(n.AsNode().Self())))
}

// TypeIDFor returns the ID of node type T.
func TypeIDFor[T any, PT NodePtr[T]]() TypeID {
	return idForName(typeName(reflect.TypeFor[T]()))
}

// reflectFactory builds a factory for struct type st whose pointer
// implements Node.
func reflectFactory(st reflect.Type) Factory {
	return func(parent Node) Node {
		n := reflect.New(st).Interface().(Node)
		bind(n)
		if parent != nil {
			bind(parent)
			parent.AsNode().AddChild(n)
		}
		return n
	}
}

// typeName returns the package-qualified name of t, looking through one
// level of pointer.
func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func idForName(name string) TypeID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return TypeID(h.Sum64())
}
