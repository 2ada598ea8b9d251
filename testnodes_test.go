package ebb

// Node types shared by the tests.

// fooer is satisfied by foo and by every type that embeds it.
type fooer interface {
	Node
	fooLabel() string
}

type foo struct {
	Base
	Label string

	setups  int
	updates int
	order   *[]string
}

func (f *foo) fooLabel() string { return f.Label }

func (f *foo) Setup() {
	f.setups++
	f.record("setup:" + f.Label)
}

func (f *foo) Update() {
	f.updates++
	f.record("update:" + f.Label)
}

func (f *foo) record(s string) {
	if f.order != nil {
		*f.order = append(*f.order, s)
	}
}

func (f *foo) SaveNode(w *PayloadWriter) error {
	w.WriteString(f.Label)
	return nil
}

func (f *foo) LoadNode(r *PayloadReader) error {
	f.Label = r.ReadString()
	return r.Err()
}

type bar struct {
	Base
}

// specialFoo embeds foo and so matches fooer but not *foo.
type specialFoo struct {
	foo
}

// newFoo creates a foo under parent, labeled and named label.
func newFoo(parent Node, label string) *foo {
	f := New[foo](parent)
	f.Name = label
	f.Label = label
	return f
}

// testRegistry returns a fresh registry with the test types registered.
func testRegistry() *Registry {
	r := NewRegistry()
	RegisterType[foo](r)
	RegisterType[bar](r)
	RegisterType[specialFoo](r)
	return r
}
