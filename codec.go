package ebb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Stream layout:
//
//	stream       := magic "EBBT" | version uint16 | record(root)
//	record(node) := childCount uint32
//	                childCount × ( typeID uint64 | payloadLen uint32 | payload | record(child) )
//
// All integers are little-endian. The root's own type and payload are not
// stored: the caller supplies a root of the right type to load into.

const streamMagic = "EBBT"

// StreamVersion is the format version written by [Encoder].
const StreamVersion uint16 = 1

// Limits checked on read before anything is allocated.
const (
	MaxChildren = 1 << 20  // children per node
	MaxPayload  = 64 << 20 // payload bytes per node
	MaxDepth    = 1024     // nesting depth below the root
)

// --- Encoder ---

// Encoder writes node trees to an output stream.
type Encoder struct {
	w       io.Writer
	reg     *Registry
	scratch [8]byte
	payload PayloadWriter
	nodes   int
}

// NewEncoder returns an encoder that writes to w and resolves type IDs with
// reg. A nil reg means [DefaultRegistry].
func NewEncoder(w io.Writer, reg *Registry) *Encoder {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Encoder{w: w, reg: reg}
}

// Encode writes the stream header followed by the records of root's
// subtree. Types not yet in the registry are registered as they are met.
func (e *Encoder) Encode(root Node) error {
	e.nodes = 0
	if _, err := io.WriteString(e.w, streamMagic); err != nil {
		return fmt.Errorf("ebb: write header: %w", err)
	}
	if err := e.writeUint16(StreamVersion); err != nil {
		return fmt.Errorf("ebb: write header: %w", err)
	}
	return e.writeRecord(root, 0)
}

// Nodes returns the number of nodes written by the last Encode, root
// excluded.
func (e *Encoder) Nodes() int {
	return e.nodes
}

func (e *Encoder) writeRecord(n Node, depth int) error {
	children := n.AsNode().children
	if len(children) > MaxChildren {
		return fmt.Errorf("%w: %s has %d children (max %d)", ErrTooLarge, n.AsNode(), len(children), MaxChildren)
	}
	if len(children) > 0 && depth >= MaxDepth {
		return fmt.Errorf("%w: depth exceeds %d", ErrTooLarge, MaxDepth)
	}
	if err := e.writeUint32(uint32(len(children))); err != nil {
		return fmt.Errorf("ebb: write child count: %w", err)
	}
	for i, child := range children {
		id, err := e.reg.Resolve(child)
		if err != nil {
			return fmt.Errorf("ebb: save child %d of %s: %w", i, n.AsNode(), err)
		}
		if err := e.writeUint64(uint64(id)); err != nil {
			return fmt.Errorf("ebb: write type ID: %w", err)
		}
		if err := e.writePayload(child); err != nil {
			return fmt.Errorf("ebb: save child %d of %s: %w", i, n.AsNode(), err)
		}
		e.nodes++
		Logger().Debug("saved node", "node", child.AsNode().String(), "id", id,
			"children", child.AsNode().NumChildren())
		if err := e.writeRecord(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writePayload(n Node) error {
	e.payload.reset()
	if s, ok := n.(Saver); ok {
		if err := s.SaveNode(&e.payload); err != nil {
			return err
		}
	}
	if e.payload.Len() > MaxPayload {
		return fmt.Errorf("%w: payload of %d bytes (max %d)", ErrTooLarge, e.payload.Len(), MaxPayload)
	}
	if err := e.writeUint32(uint32(e.payload.Len())); err != nil {
		return err
	}
	_, err := e.w.Write(e.payload.Bytes())
	return err
}

func (e *Encoder) writeUint16(v uint16) error {
	binary.LittleEndian.PutUint16(e.scratch[:2], v)
	_, err := e.w.Write(e.scratch[:2])
	return err
}

func (e *Encoder) writeUint32(v uint32) error {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	_, err := e.w.Write(e.scratch[:4])
	return err
}

func (e *Encoder) writeUint64(v uint64) error {
	binary.LittleEndian.PutUint64(e.scratch[:8], v)
	_, err := e.w.Write(e.scratch[:8])
	return err
}

// --- Decoder ---

// Decoder reads node trees from an input stream.
type Decoder struct {
	r       io.Reader
	reg     *Registry
	scratch [8]byte
	payload bytes.Buffer
	nodes   int
}

// NewDecoder returns a decoder that reads from r and creates nodes with reg.
// A nil reg means [DefaultRegistry].
func NewDecoder(r io.Reader, reg *Registry) *Decoder {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Decoder{r: r, reg: reg}
}

// Decode reads one stream and appends the stored children to root,
// recreating each node through the registry. On error every child this call
// attached to root is disposed, so root keeps only the children it had
// before.
func (d *Decoder) Decode(root Node) error {
	d.nodes = 0
	if err := d.readHeader(); err != nil {
		return err
	}
	rb := root.AsNode()
	before := len(rb.children)
	if err := d.readRecord(root, 0); err != nil {
		rb.disposeChildrenFrom(before)
		return err
	}
	return nil
}

// Nodes returns the number of nodes created by the last Decode.
func (d *Decoder) Nodes() int {
	return d.nodes
}

func (d *Decoder) readHeader() error {
	var magic [len(streamMagic)]byte
	if err := d.readFull(magic[:]); err != nil {
		return fmt.Errorf("ebb: read header: %w", err)
	}
	if string(magic[:]) != streamMagic {
		return ErrBadMagic
	}
	version, err := d.readUint16()
	if err != nil {
		return fmt.Errorf("ebb: read header: %w", err)
	}
	if version != StreamVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return nil
}

func (d *Decoder) readRecord(n Node, depth int) error {
	count, err := d.readUint32()
	if err != nil {
		return fmt.Errorf("ebb: read child count of %s: %w", n.AsNode(), err)
	}
	if count > MaxChildren {
		return fmt.Errorf("%w: child count %d (max %d)", ErrTooLarge, count, MaxChildren)
	}
	if count > 0 && depth >= MaxDepth {
		return fmt.Errorf("%w: depth exceeds %d", ErrTooLarge, MaxDepth)
	}
	for i := uint32(0); i < count; i++ {
		raw, err := d.readUint64()
		if err != nil {
			return fmt.Errorf("ebb: read type ID of child %d of %s: %w", i, n.AsNode(), err)
		}
		child, err := d.reg.Create(TypeID(raw), n)
		if err != nil {
			return fmt.Errorf("ebb: load child %d of %s: %w", i, n.AsNode(), err)
		}
		d.nodes++
		if err := d.readPayload(child); err != nil {
			return fmt.Errorf("ebb: load child %d of %s: %w", i, n.AsNode(), err)
		}
		if err := d.readRecord(child, depth+1); err != nil {
			return err
		}
		if l, ok := child.(LoadedHook); ok {
			l.Loaded()
		}
	}
	return nil
}

func (d *Decoder) readPayload(n Node) error {
	size, err := d.readUint32()
	if err != nil {
		return fmt.Errorf("read payload length: %w", err)
	}
	if size > MaxPayload {
		return fmt.Errorf("%w: payload of %d bytes (max %d)", ErrTooLarge, size, MaxPayload)
	}
	// The buffer grows as bytes arrive, so a bogus length in a short stream
	// never allocates the full amount.
	d.payload.Reset()
	got, err := d.payload.ReadFrom(io.LimitReader(d.r, int64(size)))
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	if got < int64(size) {
		return fmt.Errorf("read payload: %w", ErrTruncated)
	}

	l, ok := n.(Loader)
	if !ok {
		if size > 0 {
			return fmt.Errorf("%w: %d bytes for %T, which has no loader", ErrTrailingPayload, size, n)
		}
		return nil
	}
	pr := NewPayloadReader(d.payload.Bytes())
	if err := l.LoadNode(pr); err != nil {
		return err
	}
	if err := pr.Err(); err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	if pr.Len() != 0 {
		return fmt.Errorf("%w: %d bytes left by %T", ErrTrailingPayload, pr.Len(), n)
	}
	return nil
}

func (d *Decoder) readFull(p []byte) error {
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}

func (d *Decoder) readUint16() (uint16, error) {
	if err := d.readFull(d.scratch[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.scratch[:2]), nil
}

func (d *Decoder) readUint32() (uint32, error) {
	if err := d.readFull(d.scratch[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.scratch[:4]), nil
}

func (d *Decoder) readUint64() (uint64, error) {
	if err := d.readFull(d.scratch[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(d.scratch[:8]), nil
}

// --- Convenience ---

// Save writes root's subtree to w using the default registry.
func Save(w io.Writer, root Node) error {
	return NewEncoder(w, nil).Encode(root)
}

// Load reads a stream written by [Save] and appends the stored children to
// root, using the default registry.
func Load(r io.Reader, root Node) error {
	return NewDecoder(r, nil).Decode(root)
}
