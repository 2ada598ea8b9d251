package ebb

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type drawRecorder struct {
	Base
	order *[]string
}

func (d *drawRecorder) Draw(*ebiten.Image) {
	*d.order = append(*d.order, "draw:"+d.Name)
}

type initRecorder struct {
	Base
	inits      int
	hadParent  bool
	boundAtRun bool
}

func (p *initRecorder) Init() {
	p.inits++
	p.hadParent = p.Parent() != nil
	p.boundAtRun = p.ID != 0
}

// orderedTree builds root → [a → [a1], b] of foos sharing one log.
func orderedTree(log *[]string) *foo {
	root := newFoo(nil, "root")
	a := newFoo(root, "a")
	a1 := newFoo(a, "a1")
	b := newFoo(root, "b")
	for _, f := range []*foo{root, a, a1, b} {
		f.order = log
	}
	return root
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetupPreOrder(t *testing.T) {
	var log []string
	Setup(orderedTree(&log))
	assertOrder(t, log, []string{"setup:root", "setup:a", "setup:a1", "setup:b"})
}

func TestUpdatePreOrder(t *testing.T) {
	var log []string
	Update(orderedTree(&log))
	assertOrder(t, log, []string{"update:root", "update:a", "update:a1", "update:b"})
}

func TestUpdateReachesChildrenOfNonUpdaters(t *testing.T) {
	root := newContainer("root")
	group := New[bar](root)
	f := newFoo(group, "leaf")
	Update(root)
	if f.updates != 1 {
		t.Errorf("updates = %d, want 1", f.updates)
	}
}

func TestDrawPreOrder(t *testing.T) {
	var log []string
	root := New[drawRecorder](nil)
	root.Name, root.order = "root", &log
	a := New[drawRecorder](root)
	a.Name, a.order = "a", &log
	New[Container](root)
	b := New[drawRecorder](root)
	b.Name, b.order = "b", &log

	Draw(root, nil)
	assertOrder(t, log, []string{"draw:root", "draw:a", "draw:b"})
}

func TestInitRunsOnceBeforeAttach(t *testing.T) {
	root := newContainer("root")
	p := New[initRecorder](root)
	if p.inits != 1 {
		t.Errorf("inits = %d, want 1", p.inits)
	}
	if p.hadParent {
		t.Error("Init should run before the node is attached")
	}
	if !p.boundAtRun {
		t.Error("Init should run after the ID is assigned")
	}

	other := newContainer("other")
	other.AddChild(p)
	if p.inits != 1 {
		t.Error("reparenting should not run Init again")
	}
}

func TestSetupCountsOncePerCall(t *testing.T) {
	root := newFoo(nil, "root")
	child := newFoo(root, "child")
	Setup(root)
	Setup(root)
	if root.setups != 2 || child.setups != 2 {
		t.Errorf("setups = (%d, %d), want (2, 2)", root.setups, child.setups)
	}
}
