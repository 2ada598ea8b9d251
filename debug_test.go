package ebb

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

// captureLog routes the package logger into a buffer for the rest of the
// test.
func captureLog(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	s := NewScene(nil)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := New[Container](s.Root())
	child := newContainer("child")
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	s := NewScene(nil)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := newContainer("parent")
	parent.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild to disposed parent, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(newContainer("child"))
}

func TestReleaseMode_DisposedNodeNoOp(t *testing.T) {
	s := NewScene(nil)
	s.SetDebugMode(false)

	child := newContainer("child")
	child.Dispose()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("release mode should not panic on disposed node, got: %v", r)
		}
	}()
	s.Root().AsNode().AddChild(child)
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn)
	s := NewScene(nil)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	current := s.Root()
	for range debugMaxTreeDepth + 5 {
		current = New[Container](current)
	}

	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn)
	s := NewScene(nil)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := New[Container](s.Root())
	parent.Name = "many_children"
	for range debugMaxChildCount + 1 {
		New[Container](parent)
	}

	out := buf.String()
	if !strings.Contains(out, "child count exceeds threshold") || !strings.Contains(out, "many_children") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestDebugMode_NoWarningsWhenOff(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn)
	current := Node(newContainer("root"))
	for range debugMaxTreeDepth + 5 {
		current = New[Container](current)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output with debug off, got: %q", buf.String())
	}
}

func TestDebugMode_FrameTiming(t *testing.T) {
	buf := captureLog(t, slog.LevelDebug)
	s := NewScene(nil)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	s.Defer(func() {})
	s.Update()

	out := buf.String()
	if !strings.Contains(out, "msg=frame") || !strings.Contains(out, "deferredCount=") {
		t.Errorf("expected frame timing log, got: %q", out)
	}
}

func TestDump(t *testing.T) {
	root := newContainer("root")
	a := newFoo(root, "a")
	newFoo(a, "a1")
	New[bar](root)

	var buf bytes.Buffer
	if err := Dump(&buf, root); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	var got dumpNode
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, buf.String())
	}
	if got.Type != "ebb.Container" || got.Name != "root" || got.ID != root.ID {
		t.Errorf("root = %+v", got)
	}
	if len(got.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(got.Children))
	}
	if c := got.Children[0]; c.Type != "ebb.foo" || c.Name != "a" || len(c.Children) != 1 || c.Children[0].Name != "a1" {
		t.Errorf("first child = %+v", c)
	}
	if c := got.Children[1]; c.Type != "ebb.bar" || c.Name != "" || c.Children != nil {
		t.Errorf("second child = %+v", c)
	}
}
