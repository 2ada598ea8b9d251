package ebb

import (
	"bytes"
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Local ---

func TestLocalIdentity(t *testing.T) {
	n := New[Transform](nil)
	assertMatrix(t, "identity", n.Local(), identityTransform)
}

func TestLocalTranslation(t *testing.T) {
	n := New[Transform](nil)
	n.SetPosition(10, 20)
	assertMatrix(t, "translation", n.Local(), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestLocalScale(t *testing.T) {
	n := New[Transform](nil)
	n.SetScale(2, 3)
	assertMatrix(t, "scale", n.Local(), [6]float64{2, 0, 0, 3, 0, 0})
}

func TestLocalRotation90(t *testing.T) {
	n := New[Transform](nil)
	n.SetRotation(math.Pi / 2)
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", n.Local(), [6]float64{0, 1, -1, 0, 0, 0})
}

func TestLocalPivot(t *testing.T) {
	n := New[Transform](nil)
	n.SetPosition(100, 200)
	n.SetPivot(16, 16)
	// T(100,200) * T(-16,-16) = [1,0,0,1, 84, 184]
	assertMatrix(t, "pivot", n.Local(), [6]float64{1, 0, 0, 1, 84, 184})
}

func TestLocalSkew(t *testing.T) {
	n := New[Transform](nil)
	n.SetSkew(math.Pi/4, 0) // tan = 1
	assertMatrix(t, "skew", n.Local(), [6]float64{1, 0, 1, 1, 0, 0})
}

func TestLocalCombined(t *testing.T) {
	n := New[Transform](nil)
	n.SetPosition(50, 100)
	n.SetScale(2, 2)
	n.SetRotation(math.Pi / 2)
	// Scale(2,2) then Rotate(90°): a=0, b=2, c=-2, d=0
	assertMatrix(t, "combined", n.Local(), [6]float64{0, 2, -2, 0, 50, 100})
}

// --- multiplyAffine / invertAffine ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "id*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*id", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineTranslations(t *testing.T) {
	a := [6]float64{1, 0, 0, 1, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 3}
	assertMatrix(t, "translations", multiplyAffine(a, b), [6]float64{1, 0, 0, 1, 15, 23})
}

func TestInvertAffine(t *testing.T) {
	n := New[Transform](nil)
	n.SetScale(2, 1)
	n.SetRotation(math.Pi / 3)
	n.SetPosition(10, 20)
	m := n.Local()
	assertMatrix(t, "m*inv=id", multiplyAffine(m, invertAffine(m)), identityTransform)
}

func TestInvertAffineSingularReturnsIdentity(t *testing.T) {
	m := [6]float64{0, 0, 0, 1, 10, 20}
	assertMatrix(t, "singular→identity", invertAffine(m), identityTransform)
}

// --- World ---

func TestWorldParentChild(t *testing.T) {
	parent := New[Transform](nil)
	child := New[Transform](parent)
	parent.X = 100
	child.X = 10

	assertNear(t, "parent.tx", parent.World()[4], 100)
	assertNear(t, "child.tx", child.World()[4], 110)
}

func TestWorldSkipsNonTransformNodes(t *testing.T) {
	parent := New[Transform](nil)
	parent.SetPosition(100, 50)
	group := New[Container](parent)
	child := New[Transform](group)
	child.SetPosition(1, 2)

	w := child.World()
	assertNear(t, "tx", w[4], 101)
	assertNear(t, "ty", w[5], 52)
}

func TestWorldReflectsMovedAncestor(t *testing.T) {
	parent := New[Transform](nil)
	child := New[Transform](parent)
	_ = child.World()
	parent.Translate(7, 0)
	assertNear(t, "tx", child.World()[4], 7)
}

func TestWorldOf(t *testing.T) {
	root := newContainer("root")
	assertMatrix(t, "no transform", WorldOf(root), identityTransform)

	tr := New[Transform](root)
	tr.SetPosition(3, 4)
	leaf := New[bar](tr)
	assertMatrix(t, "leaf", WorldOf(leaf), [6]float64{1, 0, 0, 1, 3, 4})
	assertMatrix(t, "self", WorldOf(tr), [6]float64{1, 0, 0, 1, 3, 4})
}

// embeddedTransform embeds Transform and so satisfies Transformer.
type embeddedTransform struct {
	Transform
}

func TestWorldThroughEmbeddedTransform(t *testing.T) {
	parent := New[embeddedTransform](nil)
	parent.SetPosition(20, 0)
	child := New[Transform](parent)
	child.SetPosition(1, 0)

	assertNear(t, "tx", child.World()[4], 21)
	if _, ok := FirstChildOf[*Transform](parent); !ok {
		t.Error("child should be found as *Transform")
	}
	if got := FindAll[Transformer](child); len(got) != 1 {
		t.Errorf("FindAll[Transformer] = %d, want 1 (root excluded)", len(got))
	}
}

func TestDeepHierarchy(t *testing.T) {
	var parent Node
	var last *Transform
	for range 10 {
		last = New[Transform](parent)
		last.X = 10
		parent = last
	}
	// Each level adds 10 to tx.
	assertNear(t, "deep.tx", last.World()[4], 100)
}

// --- Coordinate conversion ---

func TestWorldToLocalRoundtrip(t *testing.T) {
	parent := New[Transform](nil)
	child := New[Transform](parent)
	parent.SetPosition(100, 50)
	child.SetPosition(10, 20)
	child.SetScale(2, 3)
	child.SetRotation(math.Pi / 6)

	wx, wy := 150.0, 80.0
	lx, ly := child.WorldToLocal(wx, wy)
	wx2, wy2 := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx2, wx)
	assertNear(t, "roundtrip.y", wy2, wy)
}

func TestLocalToWorldIdentity(t *testing.T) {
	n := New[Transform](nil)
	n.SetPosition(50, 100)
	wx, wy := n.LocalToWorld(0, 0)
	assertNear(t, "origin.x", wx, 50)
	assertNear(t, "origin.y", wy, 100)
}

func TestWorldToLocalZeroScale(t *testing.T) {
	n := New[Transform](nil)
	n.SetScale(0, 0)
	// Should not panic; with identity inverse, output = input.
	lx, ly := n.WorldToLocal(100, 200)
	assertNear(t, "lx", lx, 100)
	assertNear(t, "ly", ly, 200)
}

// --- Setters ---

func TestSetters(t *testing.T) {
	n := New[Transform](nil)
	n.SetPosition(1, 2)
	n.Translate(3, 4)
	n.SetRotation(0.5)
	n.Rotate(0.25)
	n.SetScale(2, 3)
	n.SetSkew(0.1, 0.2)
	n.SetPivot(5, 6)

	assertNear(t, "X", n.X, 4)
	assertNear(t, "Y", n.Y, 6)
	assertNear(t, "Rotation", n.Rotation, 0.75)
	assertNear(t, "ScaleX", n.ScaleX, 2)
	assertNear(t, "ScaleY", n.ScaleY, 3)
	assertNear(t, "SkewX", n.SkewX, 0.1)
	assertNear(t, "SkewY", n.SkewY, 0.2)
	assertNear(t, "PivotX", n.PivotX, 5)
	assertNear(t, "PivotY", n.PivotY, 6)
}

// --- Persistence ---

func TestTransformPayload(t *testing.T) {
	src := New[Transform](nil)
	src.SetPosition(1, 2)
	src.SetScale(3, 4)
	src.SetRotation(5)
	src.SetSkew(6, 7)
	src.SetPivot(8, 9)

	var w PayloadWriter
	if err := src.SaveNode(&w); err != nil {
		t.Fatalf("SaveNode: %v", err)
	}
	if w.Len() != 9*8 {
		t.Errorf("payload = %d bytes, want %d", w.Len(), 9*8)
	}

	dst := New[Transform](nil)
	r := NewPayloadReader(w.Bytes())
	if err := dst.LoadNode(r); err != nil {
		t.Fatalf("LoadNode: %v", err)
	}
	assertMatrix(t, "local", dst.Local(), src.Local())
	if dst.X != 1 || dst.PivotY != 9 {
		t.Errorf("fields = %+v", dst)
	}
}

func TestTransformLoadShortPayload(t *testing.T) {
	n := New[Transform](nil)
	if err := n.LoadNode(NewPayloadReader(make([]byte, 8))); err == nil {
		t.Error("expected error for short payload")
	}
}

func TestTransformTreeRoundTrip(t *testing.T) {
	root := newContainer("root")
	a := New[Transform](root)
	a.SetPosition(100, 0)
	b := New[Transform](a)
	b.SetRotation(math.Pi / 2)
	c := New[Transform](b)
	c.SetPosition(10, 0)
	want := c.World()

	var buf bytes.Buffer
	if err := Save(&buf, root); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dst := newContainer("root")
	if err := Load(&buf, dst); err != nil {
		t.Fatalf("Load: %v", err)
	}
	all := FindAll[*Transform](dst)
	if len(all) != 3 {
		t.Fatalf("loaded %d transforms, want 3", len(all))
	}
	assertMatrix(t, "deepest world", all[2].World(), want)
}

// --- Benchmarks ---

func BenchmarkLocal(b *testing.B) {
	n := New[Transform](nil)
	n.SetPosition(100, 200)
	n.SetScale(2, 3)
	n.SetRotation(0.5)
	n.SetPivot(16, 16)
	b.ReportAllocs()
	for b.Loop() {
		_ = n.Local()
	}
}

func BenchmarkWorldDeep(b *testing.B) {
	var parent Node
	var last *Transform
	for range 16 {
		last = New[Transform](parent)
		last.X = 1
		parent = last
	}
	b.ReportAllocs()
	for b.Loop() {
		_ = last.World()
	}
}
