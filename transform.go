package ebb

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Transformer is satisfied by *Transform and by any node type that embeds
// Transform, so typed lookups for Transformer find both.
type Transformer interface {
	Node
	AsTransform() *Transform
}

// Transform positions its subtree in 2D. Children inherit the transform of
// their nearest Transformer ancestor.
type Transform struct {
	Base

	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64 // radians
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64
}

// Init implements [Initer].
func (t *Transform) Init() {
	t.ScaleX = 1
	t.ScaleY = 1
}

// AsTransform implements [Transformer].
func (t *Transform) AsTransform() *Transform {
	return t
}

// Local computes the local affine matrix from the node's transform
// properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y)
func (t *Transform) Local() [6]float64 {
	sx := t.ScaleX
	sy := t.ScaleY

	sin, cos := math.Sincos(t.Rotation)

	var tanSkewX, tanSkewY float64
	if t.SkewX != 0 {
		tanSkewX = math.Tan(t.SkewX)
	}
	if t.SkewY != 0 {
		tanSkewY = math.Tan(t.SkewY)
	}

	// After Scale * Translate(-pivot):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	//
	// After Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := t.PivotX
	py := t.PivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(X, Y):
	return [6]float64{ra, rb, rc, rd, rtx + t.X, rty + t.Y}
}

// World returns the node's local matrix composed with those of its
// Transformer ancestors. It is computed on demand; nothing is cached, so a
// moved ancestor is reflected immediately.
func (t *Transform) World() [6]float64 {
	local := t.Local()
	if p, ok := Ancestor[Transformer](t); ok {
		return multiplyAffine(p.AsTransform().World(), local)
	}
	return local
}

// WorldOf returns the world matrix that applies to n: that of n itself when
// it is a Transformer, otherwise that of its nearest Transformer ancestor,
// otherwise the identity.
func WorldOf(n Node) [6]float64 {
	if t, ok := n.(Transformer); ok {
		return t.AsTransform().World()
	}
	if t, ok := Ancestor[Transformer](n); ok {
		return t.AsTransform().World()
	}
	return identityTransform
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y.
func (t *Transform) SetPosition(x, y float64) {
	t.X = x
	t.Y = y
}

// Translate moves the node by (dx, dy) in its parent's space.
func (t *Transform) Translate(dx, dy float64) {
	t.X += dx
	t.Y += dy
}

// SetScale sets the node's ScaleX and ScaleY.
func (t *Transform) SetScale(sx, sy float64) {
	t.ScaleX = sx
	t.ScaleY = sy
}

// SetRotation sets the node's rotation in radians.
func (t *Transform) SetRotation(r float64) {
	t.Rotation = r
}

// Rotate adds r radians to the node's rotation.
func (t *Transform) Rotate(r float64) {
	t.Rotation += r
}

// SetSkew sets the node's SkewX and SkewY.
func (t *Transform) SetSkew(sx, sy float64) {
	t.SkewX = sx
	t.SkewY = sy
}

// SetPivot sets the node's PivotX and PivotY.
func (t *Transform) SetPivot(px, py float64) {
	t.PivotX = px
	t.PivotY = py
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (t *Transform) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(t.World()), wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (t *Transform) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(t.World(), lx, ly)
}

// --- Persistence ---

// SaveNode implements [Saver].
func (t *Transform) SaveNode(w *PayloadWriter) error {
	for _, v := range t.fields() {
		w.WriteFloat64(*v)
	}
	return nil
}

// LoadNode implements [Loader].
func (t *Transform) LoadNode(r *PayloadReader) error {
	for _, v := range t.fields() {
		*v = r.ReadFloat64()
	}
	return r.Err()
}

// fields lists the persisted fields in stream order.
func (t *Transform) fields() [9]*float64 {
	return [9]*float64{
		&t.X, &t.Y,
		&t.ScaleX, &t.ScaleY,
		&t.Rotation,
		&t.SkewX, &t.SkewY,
		&t.PivotX, &t.PivotY,
	}
}
