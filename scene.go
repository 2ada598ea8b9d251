package ebb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EventSink is the interface for optional ECS integration.
// When set on a Scene, lifecycle events are forwarded to it.
type EventSink interface {
	EmitEvent(event SceneEvent)
}

// EventType identifies a kind of scene lifecycle event.
type EventType uint8

const (
	EventSetup  EventType = iota // fires after the setup pass over the tree
	EventLoaded                  // fires after a tree has been loaded into the root
	EventSaved                   // fires after the tree has been saved
	EventQuit                    // fires when Quit is called
)

// SceneEvent carries lifecycle data for the ECS bridge.
type SceneEvent struct {
	Type   EventType
	RootID uint32
	Nodes  int    // nodes involved, root excluded
	Path   string // file path for EventLoaded/EventSaved via LoadFile/SaveFile
}

// Scene owns the root of the active tree and drives it: Setup once, Update
// once per tick, Draw once per frame.
type Scene struct {
	root  Node
	reg   *Registry
	store EventSink
	debug bool

	needsSetup bool
	deferred   []func()
	quit       bool
}

// NewScene creates a scene around root. A nil root gets a Container named
// "root".
func NewScene(root Node) *Scene {
	if root == nil {
		c := New[Container](nil)
		c.Name = "root"
		root = c
	}
	Bind(root)
	return &Scene{root: root.AsNode().Self(), needsSetup: true}
}

// Root returns the scene's root node.
func (s *Scene) Root() Node {
	return s.root
}

// SetRegistry sets the registry used by Save and Load. nil means
// DefaultRegistry.
func (s *Scene) SetRegistry(r *Registry) {
	s.reg = r
}

// Registry returns the registry used by Save and Load.
func (s *Scene) Registry() *Registry {
	if s.reg == nil {
		return DefaultRegistry()
	}
	return s.reg
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EventSink) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing is logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Setup runs the setup pass over the whole tree. Update calls it on the
// first tick and after each Load, so it rarely needs to be called directly.
func (s *Scene) Setup() {
	Setup(s.root)
	s.needsSetup = false
	s.flushDeferred()
	Logger().Info("scene setup", "root", s.root.AsNode().String())
	s.emit(SceneEvent{Type: EventSetup, Nodes: Count(s.root) - 1})
}

// Update runs one tick: the setup pass if one is pending, the update pass,
// then every edit queued with Defer.
func (s *Scene) Update() {
	var stats debugStats
	var t0 time.Time

	if s.debug {
		t0 = time.Now()
	}
	if s.needsSetup {
		s.Setup()
	}
	if s.debug {
		stats.setupTime = time.Since(t0)
		t0 = time.Now()
	}

	Update(s.root)

	if s.debug {
		stats.updateTime = time.Since(t0)
		stats.deferred = len(s.deferred)
		t0 = time.Now()
	}

	s.flushDeferred()

	if s.debug {
		stats.deferredTime = time.Since(t0)
		s.debugLog(stats)
	}
}

// Draw runs the draw pass over the tree.
func (s *Scene) Draw(screen *ebiten.Image) {
	Draw(s.root, screen)
}

// Defer queues fn to run after the current setup or update pass. Use it for
// structural edits (adding, removing, disposing nodes) from inside hooks.
func (s *Scene) Defer(fn func()) {
	s.deferred = append(s.deferred, fn)
}

// flushDeferred runs queued edits, including ones queued by those edits.
func (s *Scene) flushDeferred() {
	for len(s.deferred) > 0 {
		queue := s.deferred
		s.deferred = nil
		for _, fn := range queue {
			fn()
		}
	}
}

// Quit asks the driver to stop after the current frame.
func (s *Scene) Quit() {
	if s.quit {
		return
	}
	s.quit = true
	s.emit(SceneEvent{Type: EventQuit})
}

// Done reports whether Quit has been called.
func (s *Scene) Done() bool {
	return s.quit
}

// --- Persistence ---

// Save writes the tree below the root to w.
func (s *Scene) Save(w io.Writer) error {
	n, err := s.encode(w)
	if err != nil {
		return err
	}
	s.saved(n, "")
	return nil
}

func (s *Scene) encode(w io.Writer) (int, error) {
	enc := NewEncoder(w, s.Registry())
	if err := enc.Encode(s.root); err != nil {
		return 0, err
	}
	return enc.Nodes(), nil
}

func (s *Scene) saved(nodes int, path string) {
	Logger().Info("scene saved", "nodes", nodes, "path", path)
	s.emit(SceneEvent{Type: EventSaved, Nodes: nodes, Path: path})
}

// Load replaces the root's children with the tree read from r and disposes
// the previous children. The next Update runs the setup pass again. On error
// the previous children are put back unchanged.
func (s *Scene) Load(r io.Reader) error {
	return s.load(r, "")
}

func (s *Scene) load(r io.Reader, path string) error {
	rb := s.root.AsNode()
	old := make([]Node, len(rb.children))
	copy(old, rb.children)
	rb.RemoveChildren()

	dec := NewDecoder(r, s.Registry())
	if err := dec.Decode(s.root); err != nil {
		// Decode has already disposed whatever it attached.
		self := rb.Self()
		for _, c := range old {
			c.AsNode().parent = self
		}
		rb.children = append(rb.children, old...)
		return err
	}
	for _, c := range old {
		c.AsNode().Dispose()
	}
	s.needsSetup = true
	Logger().Info("scene loaded", "nodes", dec.Nodes(), "path", path)
	s.emit(SceneEvent{Type: EventLoaded, Nodes: dec.Nodes(), Path: path})
	return nil
}

// SaveFile writes the tree below the root to the file at path, replacing it.
func (s *Scene) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	n, err := s.encode(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.saved(n, path)
	return nil
}

// LoadFile is Load reading from the file at path.
func (s *Scene) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()
	if err := s.load(bufio.NewReader(f), path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (s *Scene) emit(e SceneEvent) {
	if s.store == nil {
		return
	}
	e.RootID = s.root.AsNode().ID
	s.store.EmitEvent(e)
}
