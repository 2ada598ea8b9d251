package ebb

import (
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/goccy/go-yaml"
)

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// debugStats holds per-frame timing. Only populated when Scene.debug is true.
type debugStats struct {
	setupTime    time.Duration
	updateTime   time.Duration
	deferredTime time.Duration
	deferred     int
}

// debugLog reports frame timing through the package logger.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	Logger().Debug("frame",
		"setup", stats.setupTime,
		"update", stats.updateTime,
		"deferred", stats.deferredTime,
		"deferredCount", stats.deferred,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode; in release mode callers
// skip this entirely.
func debugCheckDisposed(b *Base, op string) {
	if b.disposed {
		panic(fmt.Sprintf("ebb debug: %s on disposed node %q", op, b.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(b *Base) {
	depth := 0
	for p := b.Self(); p != nil; p = p.AsNode().parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"node", b.String(), "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(b *Base) {
	if len(b.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", b.String(), "children", len(b.children), "threshold", debugMaxChildCount)
	}
}

// dumpNode is the YAML shape written by Dump.
type dumpNode struct {
	Type     string     `yaml:"type"`
	Name     string     `yaml:"name,omitempty"`
	ID       uint32     `yaml:"id"`
	Children []dumpNode `yaml:"children,omitempty"`
}

func newDumpNode(n Node) dumpNode {
	b := n.AsNode()
	t := reflect.TypeOf(b.Self())
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	d := dumpNode{Type: t.String(), Name: b.Name, ID: b.ID}
	for _, c := range b.children {
		d.Children = append(d.Children, newDumpNode(c))
	}
	return d
}

// Dump writes the subtree rooted at n to w as YAML, one mapping per node
// with its Go type, name, ID and children. The output is for inspection
// only; use Save to persist a tree.
func Dump(w io.Writer, n Node) error {
	out, err := yaml.Marshal(newDumpNode(n))
	if err != nil {
		return fmt.Errorf("ebb: dump: %w", err)
	}
	_, err = w.Write(out)
	return err
}
