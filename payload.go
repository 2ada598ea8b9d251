package ebb

import (
	"encoding/binary"
	"math"
)

// Saver is implemented by nodes that persist their own fields. SaveNode is
// called once per node while the tree is saved; the bytes it writes are
// stored length-prefixed ahead of the node's children.
type Saver interface {
	SaveNode(w *PayloadWriter) error
}

// Loader is the counterpart of Saver. LoadNode runs after the node has been
// created and attached to its parent and before its children are read. It
// must consume exactly what SaveNode wrote.
type Loader interface {
	LoadNode(r *PayloadReader) error
}

// LoadedHook is implemented by nodes that need to react once their whole
// subtree has been loaded.
type LoadedHook interface {
	Loaded()
}

// PayloadWriter accumulates one node's payload. All multi-byte values are
// little-endian.
type PayloadWriter struct {
	buf []byte
}

func (w *PayloadWriter) reset() {
	w.buf = w.buf[:0]
}

// Bytes returns the payload written so far.
func (w *PayloadWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *PayloadWriter) Len() int {
	return len(w.buf)
}

// WriteBool appends a single byte, 1 for true.
func (w *PayloadWriter) WriteBool(v bool) {
	var b byte
	if v {
		b = 1
	}
	w.buf = append(w.buf, b)
}

// WriteUint8 appends v.
func (w *PayloadWriter) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteUint16 appends v.
func (w *PayloadWriter) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteUint32 appends v.
func (w *PayloadWriter) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteUint64 appends v.
func (w *PayloadWriter) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteInt32 appends v.
func (w *PayloadWriter) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteFloat32 appends the IEEE 754 bits of v.
func (w *PayloadWriter) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends the IEEE 754 bits of v.
func (w *PayloadWriter) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteBytes appends a uint32 length followed by p.
func (w *PayloadWriter) WriteBytes(p []byte) {
	w.WriteUint32(uint32(len(p)))
	w.buf = append(w.buf, p...)
}

// WriteString appends a uint32 length followed by the bytes of s.
func (w *PayloadWriter) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// PayloadReader reads one node's payload. Every read checks the remaining
// length first; the first short read sets a sticky ErrTruncated, after which
// reads return zero values. Check Err once after a sequence of reads.
type PayloadReader struct {
	data []byte
	off  int
	err  error
}

// NewPayloadReader returns a reader over p.
func NewPayloadReader(p []byte) *PayloadReader {
	return &PayloadReader{data: p}
}

// Err returns the first error encountered, if any.
func (r *PayloadReader) Err() error {
	return r.err
}

// Len returns the number of unread bytes.
func (r *PayloadReader) Len() int {
	return len(r.data) - r.off
}

// next returns the next n bytes, or nil after recording ErrTruncated.
func (r *PayloadReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Len() {
		r.err = ErrTruncated
		return nil
	}
	p := r.data[r.off : r.off+n]
	r.off += n
	return p
}

// ReadBool reads a byte written by WriteBool.
func (r *PayloadReader) ReadBool() bool {
	return r.ReadUint8() != 0
}

// ReadUint8 reads a byte.
func (r *PayloadReader) ReadUint8() uint8 {
	p := r.next(1)
	if p == nil {
		return 0
	}
	return p[0]
}

// ReadUint16 reads a little-endian uint16.
func (r *PayloadReader) ReadUint16() uint16 {
	p := r.next(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

// ReadUint32 reads a little-endian uint32.
func (r *PayloadReader) ReadUint32() uint32 {
	p := r.next(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

// ReadUint64 reads a little-endian uint64.
func (r *PayloadReader) ReadUint64() uint64 {
	p := r.next(8)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(p)
}

// ReadInt32 reads a value written by WriteInt32.
func (r *PayloadReader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

// ReadFloat32 reads a value written by WriteFloat32.
func (r *PayloadReader) ReadFloat32() float32 {
	return math.Float32frombits(r.ReadUint32())
}

// ReadFloat64 reads a value written by WriteFloat64.
func (r *PayloadReader) ReadFloat64() float64 {
	return math.Float64frombits(r.ReadUint64())
}

// ReadBytes reads a length-prefixed byte slice. The result is a copy.
func (r *PayloadReader) ReadBytes() []byte {
	n := r.ReadUint32()
	p := r.next(int(n))
	if p == nil {
		return nil
	}
	return append([]byte(nil), p...)
}

// ReadString reads a length-prefixed string.
func (r *PayloadReader) ReadString() string {
	n := r.ReadUint32()
	return string(r.next(int(n)))
}

// Need reports whether at least n more bytes are available, recording
// ErrTruncated when they are not. Loaders call it before allocating for a
// count read from the payload.
func (r *PayloadReader) Need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || n > r.Len() {
		r.err = ErrTruncated
		return false
	}
	return true
}
