package ebb

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// MeshRenderer draws triangles under the world transform of its nearest
// Transformer ancestor. The vertex and index data are opaque to the tree:
// they come from whatever loader the application uses and are persisted
// as-is.
type MeshRenderer struct {
	Base

	Vertices []ebiten.Vertex
	Indices  []uint16
	Image    *ebiten.Image // source texture; nil draws untextured. Not persisted.
	Tint     Color

	transformedVerts []ebiten.Vertex // preallocated transform buffer
	aabb             Rect            // cached local-space AABB
	aabbDirty        bool            // recompute AABB when true
}

// Init implements [Initer].
func (m *MeshRenderer) Init() {
	m.Tint = ColorWhite
	m.aabbDirty = true
}

// SetMesh replaces the vertex and index data.
func (m *MeshRenderer) SetMesh(vertices []ebiten.Vertex, indices []uint16) {
	m.Vertices = vertices
	m.Indices = indices
	m.aabbDirty = true
}

// InvalidateBounds marks the cached AABB as needing recomputation.
// Call this after modifying Vertices in place.
func (m *MeshRenderer) InvalidateBounds() {
	m.aabbDirty = true
}

// Bounds returns the local-space bounding box of the vertices.
func (m *MeshRenderer) Bounds() Rect {
	if m.aabbDirty {
		m.aabb = computeMeshAABB(m.Vertices)
		m.aabbDirty = false
	}
	return m.aabb
}

// Draw implements [Drawer].
func (m *MeshRenderer) Draw(screen *ebiten.Image) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return
	}
	verts := m.ensureTransformedVerts()
	transformVertices(m.Vertices, verts, WorldOf(m), m.Tint)
	img := m.Image
	if img == nil {
		img = ensureWhitePixel()
	}
	screen.DrawTriangles(verts, m.Indices, img, nil)
}

// OnDispose implements [Disposer]. It drops the transform buffer.
func (m *MeshRenderer) OnDispose() {
	m.transformedVerts = nil
}

// transformVertices applies an affine transform and color tint to src vertices,
// writing the result into dst. dst must be at least len(src) in length.
//
// Matrix layout: [0]=a, [1]=b, [2]=c, [3]=d, [4]=tx, [5]=ty
// newX = a*x + c*y + tx, newY = b*x + d*y + ty
//
// Color components are multiplied (vertex color * tint) and premultiplied by
// the tint's alpha.
func transformVertices(src, dst []ebiten.Vertex, transform [6]float64, tint Color) {
	a, b, c, d, tx, ty := transform[0], transform[1], transform[2], transform[3], transform[4], transform[5]
	cr := float32(tint.R)
	cg := float32(tint.G)
	cb := float32(tint.B)
	ca := float32(tint.A)

	for i := range src {
		s := &src[i]
		ox := float64(s.DstX)
		oy := float64(s.DstY)
		dst[i] = ebiten.Vertex{
			DstX:   float32(a*ox + c*oy + tx),
			DstY:   float32(b*ox + d*oy + ty),
			SrcX:   s.SrcX,
			SrcY:   s.SrcY,
			ColorR: s.ColorR * cr * ca,
			ColorG: s.ColorG * cg * ca,
			ColorB: s.ColorB * cb * ca,
			ColorA: s.ColorA * ca,
		}
	}
}

// computeMeshAABB scans DstX/DstY of the given vertices and returns
// the axis-aligned bounding box in local space.
func computeMeshAABB(verts []ebiten.Vertex) Rect {
	if len(verts) == 0 {
		return Rect{}
	}
	minX := float64(verts[0].DstX)
	minY := float64(verts[0].DstY)
	maxX := minX
	maxY := minY
	for i := 1; i < len(verts); i++ {
		x := float64(verts[i].DstX)
		y := float64(verts[i].DstY)
		minX = min(minX, x)
		maxX = max(maxX, x)
		minY = min(minY, y)
		maxY = max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ensureTransformedVerts grows the transform buffer to fit len(m.Vertices),
// using a high-water-mark strategy (never shrinks).
func (m *MeshRenderer) ensureTransformedVerts() []ebiten.Vertex {
	need := len(m.Vertices)
	if cap(m.transformedVerts) < need {
		m.transformedVerts = make([]ebiten.Vertex, need)
	}
	m.transformedVerts = m.transformedVerts[:need]
	return m.transformedVerts
}

// --- White pixel singleton ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by untextured meshes.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// --- Persistence ---

// vertexSize is the encoded size of one ebiten.Vertex: eight float32 fields.
const vertexSize = 8 * 4

// SaveNode implements [Saver]. It writes the tint, the vertices and the
// indices.
func (m *MeshRenderer) SaveNode(w *PayloadWriter) error {
	w.WriteFloat64(m.Tint.R)
	w.WriteFloat64(m.Tint.G)
	w.WriteFloat64(m.Tint.B)
	w.WriteFloat64(m.Tint.A)
	w.WriteUint32(uint32(len(m.Vertices)))
	for i := range m.Vertices {
		v := &m.Vertices[i]
		for _, f := range [8]float32{v.DstX, v.DstY, v.SrcX, v.SrcY, v.ColorR, v.ColorG, v.ColorB, v.ColorA} {
			w.WriteFloat32(f)
		}
	}
	w.WriteUint32(uint32(len(m.Indices)))
	for _, idx := range m.Indices {
		w.WriteUint16(idx)
	}
	return nil
}

// LoadNode implements [Loader].
func (m *MeshRenderer) LoadNode(r *PayloadReader) error {
	m.Tint = Color{r.ReadFloat64(), r.ReadFloat64(), r.ReadFloat64(), r.ReadFloat64()}

	nv := int(r.ReadUint32())
	if !r.Need(nv * vertexSize) {
		return fmt.Errorf("mesh vertices: %w", r.Err())
	}
	verts := make([]ebiten.Vertex, nv)
	for i := range verts {
		verts[i] = ebiten.Vertex{
			DstX: r.ReadFloat32(), DstY: r.ReadFloat32(),
			SrcX: r.ReadFloat32(), SrcY: r.ReadFloat32(),
			ColorR: r.ReadFloat32(), ColorG: r.ReadFloat32(),
			ColorB: r.ReadFloat32(), ColorA: r.ReadFloat32(),
		}
	}

	ni := int(r.ReadUint32())
	if !r.Need(ni * 2) {
		return fmt.Errorf("mesh indices: %w", r.Err())
	}
	indices := make([]uint16, ni)
	for i := range indices {
		indices[i] = r.ReadUint16()
	}
	if err := r.Err(); err != nil {
		return err
	}
	m.SetMesh(verts, indices)
	return nil
}
