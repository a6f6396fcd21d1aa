package tag

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/errors"
)

// Encoder encodes a tagfile.Tree into a stream of bytes.
type Encoder struct {
	// Registry provides dialects and schemas. If nil, DefaultRegistry is
	// used.
	Registry *Registry
}

func (e Encoder) registry() *Registry {
	if e.Registry == nil {
		return DefaultRegistry
	}
	return e.Registry
}

// Encode formats tree, writing the result to w. The data length and checksum
// of the header are computed from the body.
//
// err is a BuildError if the tree does not satisfy its schema, or
// UnsupportedSchemaVersion if the registry has no schema for the tree.
func (e Encoder) Encode(w io.Writer, tree *tagfile.Tree) (warn, err error) {
	if w == nil {
		return nil, errors.New("nil writer")
	}
	b, warn, err := e.EncodeBytes(tree)
	if err != nil {
		return warn, err
	}
	if _, err := w.Write(b); err != nil {
		return warn, err
	}
	return warn, nil
}

// EncodeBytes formats tree, returning the bytes.
func (e Encoder) EncodeBytes(tree *tagfile.Tree) (b []byte, warn, err error) {
	if tree == nil || tree.Root == nil {
		return nil, nil, ErrNilTree
	}
	enc := &encoder{w: NewWriter()}
	err = enc.encode(e.registry(), tree)
	warn = enc.warn.Return()
	if err != nil {
		return nil, warn, err
	}
	return enc.w.Bytes(), warn, nil
}

// Build encodes tree using DefaultRegistry.
func Build(tree *tagfile.Tree) (b []byte, warn, err error) {
	return Encoder{}.EncodeBytes(tree)
}

type encoder struct {
	w    *Writer
	ctx  Context
	warn errors.Errors
}

func (e *encoder) encode(reg *Registry, tree *tagfile.Tree) error {
	dialect, err := reg.Dialect(tree.Header.Engine)
	if err != nil {
		return err
	}
	body, err := reg.Body(tree.Header.Group, dialect)
	if err != nil {
		return err
	}
	e.ctx = newContext(dialect)

	// Data length and checksum are patched once the body is written.
	if err := e.w.PutBytes(appendHeader(nil, tree.Header, dialect.Order)); err != nil {
		return err
	}
	if err := e.writeScope(body, []*tagfile.Element{tree.Root}, "", false); err != nil {
		return err
	}

	b := e.w.Bytes()
	o := dialect.Order
	if err := e.w.PatchUint32(offsetDataLength, o, uint32(len(b)-HeaderSize)); err != nil {
		return err
	}
	return e.w.PatchUint32(offsetChecksum, o, Checksum(b[HeaderSize:]))
}

func buildError(path, format string, a ...interface{}) error {
	return BuildError{Path: path, Reason: fmt.Sprintf(format, a...)}
}

func (e *encoder) writeScope(s *Struct, elems []*tagfile.Element, path string, indexed bool) error {
	var sc scope
	for i, elem := range elems {
		p := path
		if indexed {
			p = elemPath(path, i)
		}
		if err := e.writeRecord(s, elem, p, &sc); err != nil {
			return err
		}
	}
	for _, p := range sc.blocks {
		if err := e.writeBlock(p); err != nil {
			return err
		}
	}
	for _, p := range sc.tails {
		if err := e.writeTail(p); err != nil {
			return err
		}
	}
	for _, p := range sc.raws {
		if err := e.writeRaw(p); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeRecord(s *Struct, elem *tagfile.Element, path string, sc *scope) error {
	if elem == nil {
		return buildError(path, "nil element")
	}
	if len(elem.Fields) != len(s.Fields) {
		return buildError(path, "element has %d fields, %s has %d", len(elem.Fields), s.Name, len(s.Fields))
	}
	for i := range s.Fields {
		f := &s.Fields[i]
		p := fieldPath(path, f.Name)
		if elem.Fields[i].Name != f.Name {
			return buildError(path, "field %d is %q, expected %q", i, elem.Fields[i].Name, f.Name)
		}
		v := elem.Fields[i].Value
		if v == nil && f.Kind == KindPad {
			if err := e.w.Skip(f.Width); err != nil {
				return err
			}
			continue
		}
		if v == nil || v.Type() != f.Kind.ValueType() {
			return buildError(p, "%s field holds %s", f.Kind, typeName(v))
		}
		if err := e.writeField(f, v, p); err != nil {
			return err
		}
		pend := pending{elem: elem, index: i, field: f, path: p}
		switch v := v.(type) {
		case *tagfile.Block:
			if len(v.Elements) > 0 {
				sc.blocks = append(sc.blocks, pend)
			}
		case *tagfile.TagRef:
			if v.NameLength > 0 {
				sc.tails = append(sc.tails, pend)
			}
		case tagfile.ValueVarString:
			if len(v) > 0 {
				sc.tails = append(sc.tails, pend)
			}
		case *tagfile.Raw:
			if len(v.Data) > 0 {
				sc.raws = append(sc.raws, pend)
			}
		}
	}
	return nil
}

func typeName(v tagfile.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type().String()
}

func checkRange(path string, f *Field, v, min, max int64) error {
	if v < min || v > max {
		return buildError(path, "value %d out of range for %s", v, f.Kind)
	}
	return nil
}

func (e *encoder) writeField(f *Field, v tagfile.Value, path string) error {
	w := e.w
	o := e.ctx.Order
	switch f.Kind {
	case KindInt8:
		x := int64(v.(tagfile.ValueInt))
		if err := checkRange(path, f, x, math.MinInt8, math.MaxInt8); err != nil {
			return err
		}
		return w.PutInt8(int8(x))
	case KindInt16:
		x := int64(v.(tagfile.ValueInt))
		if err := checkRange(path, f, x, math.MinInt16, math.MaxInt16); err != nil {
			return err
		}
		return w.PutInt16(o, int16(x))
	case KindInt32:
		return w.PutInt32(o, int32(v.(tagfile.ValueInt)))
	case KindUint8:
		x := int64(v.(tagfile.ValueUint))
		if err := checkRange(path, f, x, 0, math.MaxUint8); err != nil {
			return err
		}
		return w.PutUint8(uint8(x))
	case KindUint16:
		x := int64(v.(tagfile.ValueUint))
		if err := checkRange(path, f, x, 0, math.MaxUint16); err != nil {
			return err
		}
		return w.PutUint16(o, uint16(x))
	case KindUint32:
		return w.PutUint32(o, uint32(v.(tagfile.ValueUint)))
	case KindFloat:
		return w.PutFloat32(o, float32(v.(tagfile.ValueFloat)))
	case KindEnum16:
		x := int64(v.(tagfile.ValueEnum))
		if err := checkRange(path, f, x, math.MinInt16, math.MaxInt16); err != nil {
			return err
		}
		return w.PutInt16(o, int16(x))
	case KindEnum32:
		return w.PutInt32(o, int32(v.(tagfile.ValueEnum)))
	case KindFlags8:
		x := int64(v.(tagfile.ValueFlags))
		if err := checkRange(path, f, x, 0, math.MaxUint8); err != nil {
			return err
		}
		return w.PutUint8(uint8(x))
	case KindFlags16:
		x := int64(v.(tagfile.ValueFlags))
		if err := checkRange(path, f, x, 0, math.MaxUint16); err != nil {
			return err
		}
		return w.PutUint16(o, uint16(x))
	case KindFlags32:
		return w.PutUint32(o, uint32(v.(tagfile.ValueFlags)))
	case KindString:
		s := string(v.(tagfile.ValueString))
		if len(s) > f.Width {
			return buildError(path, "string of length %d exceeds width %d", len(s), f.Width)
		}
		return w.PutFixedString(s, f.Width)
	case KindVector2:
		x := v.(tagfile.ValueVector2)
		return e.floats(x.X, x.Y)
	case KindVector3:
		x := v.(tagfile.ValueVector3)
		return e.floats(x.X, x.Y, x.Z)
	case KindQuaternion:
		x := v.(tagfile.ValueQuaternion)
		return e.floats(x.I, x.J, x.K, x.W)
	case KindRGB:
		x := v.(tagfile.ValueColor)
		return e.floats(x.R, x.G, x.B)
	case KindRGBA:
		x := v.(tagfile.ValueColor)
		return e.floats(x.R, x.G, x.B, x.A)
	case KindARGB:
		x := v.(tagfile.ValueColor)
		return e.floats(x.A, x.R, x.G, x.B)
	case KindARGB8:
		x := v.(tagfile.ValueColor8)
		return w.PutUint32(o, uint32(x.A)<<24|uint32(x.R)<<16|uint32(x.G)<<8|uint32(x.B))
	case KindShortBounds:
		x := v.(tagfile.ValueShortBounds)
		if err := w.PutInt16(o, x.Min); err != nil {
			return err
		}
		return w.PutInt16(o, x.Max)
	case KindBounds:
		x := v.(tagfile.ValueBounds)
		return e.floats(x.Min, x.Max)
	case KindPad:
		x := v.(tagfile.ValuePad)
		if len(x) == 0 {
			return w.Skip(f.Width)
		}
		if len(x) != f.Width {
			return buildError(path, "padding of length %d, expected %d", len(x), f.Width)
		}
		return w.PutBytes(x)
	case KindTagRef:
		return e.writeTagRef(v.(*tagfile.TagRef), path)
	case KindBlock:
		return e.writeBlockRecord(f, v.(*tagfile.Block), path)
	case KindRaw:
		return e.writeRawRecord(v.(*tagfile.Raw))
	case KindVarString:
		return e.writeLength(f, string(v.(tagfile.ValueVarString)), path)
	}
	return buildError(path, "invalid field kind")
}

func (e *encoder) floats(x ...float32) error {
	for _, v := range x {
		if err := e.w.PutFloat32(e.ctx.Order, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeLength(f *Field, s string, path string) error {
	ctx := e.ctx
	if f.SwapLength {
		ctx = ctx.Swapped()
	}
	if f.Width == 2 {
		if len(s) > math.MaxUint16 {
			return buildError(path, "string of length %d exceeds 16-bit length", len(s))
		}
		return e.w.PutUint16(ctx.Order, uint16(len(s)))
	}
	if int64(len(s)) > math.MaxUint32 {
		return buildError(path, "string of length %d exceeds 32-bit length", len(s))
	}
	return e.w.PutUint32(ctx.Order, uint32(len(s)))
}

func (e *encoder) writeTagRef(ref *tagfile.TagRef, path string) error {
	if int64(ref.NameLength) != int64(len(ref.Name)) {
		return buildError(path, "reference name length %d does not match name %q", ref.NameLength, ref.Name)
	}
	if strings.IndexByte(ref.Name, 0) >= 0 {
		return buildError(path, "reference name contains null byte")
	}
	o := e.ctx.Order
	if err := e.w.PutCode(ref.Group); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, ref.Address); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, ref.NameLength); err != nil {
		return err
	}
	return e.w.PutUint32(o, ref.Salt)
}

func (e *encoder) writeBlockRecord(f *Field, b *tagfile.Block, path string) error {
	if int64(b.Count) != int64(len(b.Elements)) {
		return buildError(path, "block count %d does not match %d elements", b.Count, len(b.Elements))
	}
	if len(b.Elements) > 0 && f.Block.Struct(b.Version) == nil {
		return buildError(path, "unknown block version %d", b.Version)
	}
	if max := f.Block.MaxCount; max > 0 && b.Count > max {
		e.warn = e.warn.Append(CountExceedsMax{Path: path, Count: b.Count, Max: max})
	}
	o := e.ctx.Order
	if err := e.w.PutUint32(o, b.Count); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, b.Address); err != nil {
		return err
	}
	return e.w.PutUint32(o, b.Definition)
}

func (e *encoder) writeRawRecord(raw *tagfile.Raw) error {
	o := e.ctx.Order
	if err := e.w.PutUint32(o, uint32(len(raw.Data))); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, raw.Flags); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, raw.Offset); err != nil {
		return err
	}
	return e.w.PutUint64(o, raw.Address)
}

// writeBlock writes the header and elements of a non-empty block.
func (e *encoder) writeBlock(p pending) error {
	b := p.value().(*tagfile.Block)
	def := p.field.Block
	s := def.Struct(b.Version)
	o := e.ctx.Order

	if err := e.w.PutCode(def.Signature); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, b.Version); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, uint32(len(b.Elements))); err != nil {
		return err
	}
	if err := e.w.PutUint32(o, uint32(s.Size())); err != nil {
		return err
	}
	return e.writeScope(s, b.Elements, p.path, true)
}

func (e *encoder) writeTail(p pending) error {
	switch v := p.value().(type) {
	case *tagfile.TagRef:
		if err := e.w.PutBytes([]byte(v.Name)); err != nil {
			return err
		}
		if e.ctx.Dialect.TerminatedNames {
			return e.w.PutUint8(0)
		}
	case tagfile.ValueVarString:
		return e.w.PutBytes([]byte(v))
	}
	return nil
}

func (e *encoder) writeRaw(p pending) error {
	raw := p.value().(*tagfile.Raw)
	if n := p.field.LeadPad; n > 0 {
		switch len(raw.Lead) {
		case 0:
			if err := e.w.Skip(n); err != nil {
				return err
			}
		case n:
			if err := e.w.PutBytes(raw.Lead); err != nil {
				return err
			}
		default:
			return buildError(p.path, "lead pad has length %d, expected %d", len(raw.Lead), n)
		}
	}
	return e.w.PutBytes(raw.Data)
}

// Equal reports whether encoding tree reproduces b exactly.
func (e Encoder) Equal(tree *tagfile.Tree, b []byte) (bool, error) {
	out, _, err := e.EncodeBytes(tree)
	if err != nil {
		return false, err
	}
	return bytes.Equal(out, b), nil
}
