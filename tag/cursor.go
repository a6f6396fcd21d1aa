package tag

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/anaminus/parse"
	"github.com/tagtools/tagfile"
)

// Reader reads typed values from a buffer. Every read checks the remaining
// length before consuming or allocating anything, and fails with
// TruncatedInput if the buffer is too short.
type Reader struct {
	src  *bytes.Reader
	fr   *parse.BinaryReader
	base int64
	size int64
	buf  [8]byte
}

// NewReader returns a Reader over b.
func NewReader(b []byte) *Reader {
	r := &Reader{
		src:  bytes.NewReader(b),
		size: int64(len(b)),
	}
	r.fr = parse.NewBinaryReader(r.src)
	return r
}

// Pos returns the current offset from the start of the buffer.
func (r *Reader) Pos() int64 {
	return r.base + r.fr.N()
}

// Len returns the length of the buffer.
func (r *Reader) Len() int64 {
	return r.size
}

// Remaining returns the number of bytes after the current offset.
func (r *Reader) Remaining() int64 {
	return r.size - r.Pos()
}

// SetPos sets the current offset.
func (r *Reader) SetPos(off int64) error {
	if off < 0 || off > r.size {
		return TruncatedInput{Offset: off, Need: 0, Have: r.size - off}
	}
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return err
	}
	r.fr = parse.NewBinaryReader(r.src)
	r.base = off
	return nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(int64(n)); err != nil {
		return err
	}
	return r.SetPos(r.Pos() + int64(n))
}

func (r *Reader) need(n int64) error {
	if n < 0 || n > r.Remaining() {
		return TruncatedInput{Offset: r.Pos(), Need: n, Have: r.Remaining()}
	}
	return nil
}

func (r *Reader) fill(p []byte) error {
	if err := r.need(int64(len(p))); err != nil {
		return err
	}
	if r.fr.Bytes(p) {
		if err := r.fr.Err(); err != nil {
			return err
		}
		return io.ErrUnexpectedEOF
	}
	return nil
}

// next reads n bytes into scratch space, which is valid until the following
// read.
func (r *Reader) next(n int) ([]byte, error) {
	p := r.buf[:n]
	if err := r.fill(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Bytes reads n bytes into a new slice.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(int64(n)); err != nil {
		return nil, err
	}
	p := make([]byte, n)
	if err := r.fill(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Reader) Uint8() (uint8, error) {
	p, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *Reader) Uint16(o binary.ByteOrder) (uint16, error) {
	p, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return o.Uint16(p), nil
}

func (r *Reader) Uint32(o binary.ByteOrder) (uint32, error) {
	p, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return o.Uint32(p), nil
}

func (r *Reader) Uint64(o binary.ByteOrder) (uint64, error) {
	p, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return o.Uint64(p), nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Int16(o binary.ByteOrder) (int16, error) {
	v, err := r.Uint16(o)
	return int16(v), err
}

func (r *Reader) Int32(o binary.ByteOrder) (int32, error) {
	v, err := r.Uint32(o)
	return int32(v), err
}

func (r *Reader) Float32(o binary.ByteOrder) (float32, error) {
	v, err := r.Uint32(o)
	return math.Float32frombits(v), err
}

// Code reads a four-character code. Codes are stored as bytes, and are not
// affected by byte order.
func (r *Reader) Code() (c tagfile.Code, err error) {
	err = r.fill(c[:])
	return c, err
}

// FixedString reads a string field of the given width. The text ends at the
// first null byte. If any byte following the first null byte is non-zero,
// tail holds the bytes from the null byte up to the last non-zero byte.
func (r *Reader) FixedString(width int) (s string, tail []byte, err error) {
	p, err := r.Bytes(width)
	if err != nil {
		return "", nil, err
	}
	i := bytes.IndexByte(p, 0)
	if i < 0 {
		return string(p), nil, nil
	}
	if isZero(p[i:]) {
		return string(p[:i]), nil, nil
	}
	end := len(p)
	for p[end-1] == 0 {
		end--
	}
	return string(p[:i]), p[i:end], nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

////////////////////////////////////////////////////////////////

// Writer writes typed values to a growing buffer.
type Writer struct {
	buf bytes.Buffer
	fw  *parse.BinaryWriter
	tmp [8]byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	w := &Writer{}
	w.fw = parse.NewBinaryWriter(&w.buf)
	return w
}

// Pos returns the number of bytes written.
func (w *Writer) Pos() int64 {
	return int64(w.buf.Len())
}

// Bytes returns the written bytes. The slice is valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) PutBytes(p []byte) error {
	if w.fw.Bytes(p) {
		return w.fw.Err()
	}
	return nil
}

// Skip writes n zero bytes.
func (w *Writer) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	return w.PutBytes(make([]byte, n))
}

// Patch overwrites previously written bytes at offset off.
func (w *Writer) Patch(off int64, p []byte) error {
	if off < 0 || off+int64(len(p)) > w.Pos() {
		return TruncatedInput{Offset: off, Need: int64(len(p)), Have: w.Pos() - off}
	}
	copy(w.buf.Bytes()[off:], p)
	return nil
}

// PatchUint32 overwrites a previously written uint32 at offset off.
func (w *Writer) PatchUint32(off int64, o binary.ByteOrder, v uint32) error {
	var p [4]byte
	o.PutUint32(p[:], v)
	return w.Patch(off, p[:])
}

func (w *Writer) PutUint8(v uint8) error {
	w.tmp[0] = v
	return w.PutBytes(w.tmp[:1])
}

func (w *Writer) PutUint16(o binary.ByteOrder, v uint16) error {
	o.PutUint16(w.tmp[:2], v)
	return w.PutBytes(w.tmp[:2])
}

func (w *Writer) PutUint32(o binary.ByteOrder, v uint32) error {
	o.PutUint32(w.tmp[:4], v)
	return w.PutBytes(w.tmp[:4])
}

func (w *Writer) PutUint64(o binary.ByteOrder, v uint64) error {
	o.PutUint64(w.tmp[:8], v)
	return w.PutBytes(w.tmp[:8])
}

func (w *Writer) PutInt8(v int8) error {
	return w.PutUint8(uint8(v))
}

func (w *Writer) PutInt16(o binary.ByteOrder, v int16) error {
	return w.PutUint16(o, uint16(v))
}

func (w *Writer) PutInt32(o binary.ByteOrder, v int32) error {
	return w.PutUint32(o, uint32(v))
}

func (w *Writer) PutFloat32(o binary.ByteOrder, v float32) error {
	return w.PutUint32(o, math.Float32bits(v))
}

func (w *Writer) PutCode(c tagfile.Code) error {
	return w.PutBytes(c[:])
}

// PutFixedString writes s followed by null bytes up to width. s must not be
// longer than width. Null bytes within s are written as they are, so a string
// read with a tail is written back unchanged.
func (w *Writer) PutFixedString(s string, width int) error {
	p := make([]byte, width)
	copy(p, s)
	return w.PutBytes(p)
}
