package tag

import (
	"bytes"
	"io"
	"strconv"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/errors"
)

// Decoder decodes a stream of bytes into a tagfile.Tree.
type Decoder struct {
	// Registry provides dialects and schemas. If nil, DefaultRegistry is
	// used.
	Registry *Registry
}

func (d Decoder) registry() *Registry {
	if d.Registry == nil {
		return DefaultRegistry
	}
	return d.Registry
}

// Decode reads data from r and decodes it into a tree.
//
// warn contains non-fatal diagnostics, such as TrailingData or
// NonZeroPadding. err is a DataError wrapping the first fatal error:
// TruncatedInput, SchemaViolation or UnsupportedSchemaVersion.
func (d Decoder) Decode(r io.Reader) (tree *tagfile.Tree, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return d.DecodeBytes(b)
}

// DecodeBytes decodes b into a tree.
func (d Decoder) DecodeBytes(b []byte) (tree *tagfile.Tree, warn, err error) {
	dec := &decoder{r: NewReader(b)}
	tree, err = dec.decode(d.registry())
	warn = dec.warn.Return()
	if err != nil {
		return nil, warn, DataError{Offset: dec.r.Pos(), Cause: err}
	}
	return tree, warn, nil
}

// Parse decodes b using DefaultRegistry.
func Parse(b []byte) (tree *tagfile.Tree, warn, err error) {
	return Decoder{}.DecodeBytes(b)
}

// pending is a field whose content follows the fixed records of its scope.
type pending struct {
	elem  *tagfile.Element
	index int
	field *Field
	path  string
	// Length of a variable string.
	n int64
}

func (p pending) value() tagfile.Value {
	return p.elem.Fields[p.index].Value
}

// scope holds the pending fields of one record array: the top-level record,
// or every element of a block.
type scope struct {
	blocks []pending
	tails  []pending
	raws   []pending
}

type decoder struct {
	r    *Reader
	ctx  Context
	warn errors.Errors
}

func (d *decoder) decode(reg *Registry) (*tagfile.Tree, error) {
	h, dialect, err := readHeader(d.r, reg)
	if err != nil {
		return nil, err
	}
	d.ctx = newContext(dialect)
	body, err := reg.Body(h.Group, dialect)
	if err != nil {
		return nil, err
	}

	elems, err := d.readScope(body, 1, "", false)
	if err != nil {
		return nil, err
	}
	tree := &tagfile.Tree{Header: h, Root: elems[0]}

	end := d.r.Pos()
	if n := d.r.Remaining(); n > 0 {
		d.warn = d.warn.Append(TrailingData{Offset: end, Count: n})
	}
	length := end - HeaderSize
	if length != int64(h.DataLength) {
		d.warn = d.warn.Append(LengthMismatch{Header: h.DataLength, Actual: length})
	}
	if sum := Checksum(d.body(end)); sum != h.Checksum {
		d.warn = d.warn.Append(ChecksumMismatch{Header: h.Checksum, Computed: sum})
	}
	return tree, nil
}

// body returns the bytes between the header and end.
func (d *decoder) body(end int64) []byte {
	if err := d.r.SetPos(HeaderSize); err != nil {
		return nil
	}
	b, _ := d.r.Bytes(int(end - HeaderSize))
	return b
}

func fieldPath(path string, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// readScope reads n records of s, followed by the content of their blocks,
// their names and strings, and their raw data.
func (d *decoder) readScope(s *Struct, n int, path string, indexed bool) ([]*tagfile.Element, error) {
	var sc scope
	elems := make([]*tagfile.Element, n)
	for i := range elems {
		p := path
		if indexed {
			p = elemPath(path, i)
		}
		e, err := d.readRecord(s, p, &sc)
		if err != nil {
			return nil, err
		}
		elems[i] = e
	}
	for _, p := range sc.blocks {
		if err := d.readBlock(p); err != nil {
			return nil, err
		}
	}
	for _, p := range sc.tails {
		if err := d.readTail(p); err != nil {
			return nil, err
		}
	}
	for _, p := range sc.raws {
		if err := d.readRaw(p); err != nil {
			return nil, err
		}
	}
	return elems, nil
}

func (d *decoder) readRecord(s *Struct, path string, sc *scope) (*tagfile.Element, error) {
	e := &tagfile.Element{Fields: make([]tagfile.Field, len(s.Fields))}
	for i := range s.Fields {
		f := &s.Fields[i]
		e.Fields[i].Name = f.Name
		p := fieldPath(path, f.Name)
		v, n, err := d.readField(f, p)
		if err != nil {
			return nil, err
		}
		e.Fields[i].Value = v
		pend := pending{elem: e, index: i, field: f, path: p, n: n}
		switch v := v.(type) {
		case *tagfile.Block:
			if v.Count > 0 {
				sc.blocks = append(sc.blocks, pend)
			}
		case *tagfile.TagRef:
			if v.NameLength > 0 {
				sc.tails = append(sc.tails, pend)
			}
		case tagfile.ValueVarString:
			if n > 0 {
				sc.tails = append(sc.tails, pend)
			}
		case *tagfile.Raw:
			if v.Size > 0 {
				sc.raws = append(sc.raws, pend)
			}
		}
	}
	return e, nil
}

// readField reads the fixed record of a field. n is the length of the content
// of a variable string.
func (d *decoder) readField(f *Field, path string) (v tagfile.Value, n int64, err error) {
	r := d.r
	o := d.ctx.Order
	switch f.Kind {
	case KindInt8:
		x, err := r.Int8()
		return tagfile.ValueInt(x), 0, err
	case KindInt16:
		x, err := r.Int16(o)
		return tagfile.ValueInt(x), 0, err
	case KindInt32:
		x, err := r.Int32(o)
		return tagfile.ValueInt(x), 0, err
	case KindUint8:
		x, err := r.Uint8()
		return tagfile.ValueUint(x), 0, err
	case KindUint16:
		x, err := r.Uint16(o)
		return tagfile.ValueUint(x), 0, err
	case KindUint32:
		x, err := r.Uint32(o)
		return tagfile.ValueUint(x), 0, err
	case KindFloat:
		x, err := r.Float32(o)
		return tagfile.ValueFloat(x), 0, err
	case KindEnum16:
		x, err := r.Int16(o)
		return tagfile.ValueEnum(x), 0, err
	case KindEnum32:
		x, err := r.Int32(o)
		return tagfile.ValueEnum(x), 0, err
	case KindFlags8:
		x, err := r.Uint8()
		return tagfile.ValueFlags(x), 0, err
	case KindFlags16:
		x, err := r.Uint16(o)
		return tagfile.ValueFlags(x), 0, err
	case KindFlags32:
		x, err := r.Uint32(o)
		return tagfile.ValueFlags(x), 0, err
	case KindString:
		pos := r.Pos()
		s, tail, err := r.FixedString(f.Width)
		if err != nil {
			return nil, 0, err
		}
		if tail != nil {
			d.warn = d.warn.Append(NonZeroPadding{Offset: pos + int64(len(s)), Path: path, Bytes: tail})
			return tagfile.ValueString(s + string(tail)), 0, nil
		}
		return tagfile.ValueString(s), 0, nil
	case KindVector2:
		x, err := d.floats(2)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueVector2{X: x[0], Y: x[1]}, 0, nil
	case KindVector3:
		x, err := d.floats(3)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueVector3{X: x[0], Y: x[1], Z: x[2]}, 0, nil
	case KindQuaternion:
		x, err := d.floats(4)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueQuaternion{I: x[0], J: x[1], K: x[2], W: x[3]}, 0, nil
	case KindRGB:
		x, err := d.floats(3)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueColor{R: x[0], G: x[1], B: x[2]}, 0, nil
	case KindRGBA:
		x, err := d.floats(4)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueColor{R: x[0], G: x[1], B: x[2], A: x[3]}, 0, nil
	case KindARGB:
		x, err := d.floats(4)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueColor{A: x[0], R: x[1], G: x[2], B: x[3]}, 0, nil
	case KindARGB8:
		x, err := r.Uint32(o)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueColor8{A: uint8(x >> 24), R: uint8(x >> 16), G: uint8(x >> 8), B: uint8(x)}, 0, nil
	case KindShortBounds:
		min, err := r.Int16(o)
		if err != nil {
			return nil, 0, err
		}
		max, err := r.Int16(o)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueShortBounds{Min: min, Max: max}, 0, nil
	case KindBounds:
		x, err := d.floats(2)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueBounds{Min: x[0], Max: x[1]}, 0, nil
	case KindPad:
		pos := r.Pos()
		b, err := r.Bytes(f.Width)
		if err != nil {
			return nil, 0, err
		}
		if !isZero(b) {
			d.warn = d.warn.Append(NonZeroPadding{Offset: pos, Path: path, Bytes: b})
		}
		return tagfile.ValuePad(b), 0, nil
	case KindTagRef:
		return d.readTagRef()
	case KindBlock:
		return d.readBlockRecord(f)
	case KindRaw:
		return d.readRawRecord()
	case KindVarString:
		n, err := d.readLength(f)
		if err != nil {
			return nil, 0, err
		}
		return tagfile.ValueVarString(""), n, nil
	}
	return nil, 0, SchemaViolation{Path: path, Reason: "invalid field kind"}
}

func (d *decoder) floats(n int) ([4]float32, error) {
	var x [4]float32
	for i := 0; i < n; i++ {
		v, err := d.r.Float32(d.ctx.Order)
		if err != nil {
			return x, err
		}
		x[i] = v
	}
	return x, nil
}

func (d *decoder) readLength(f *Field) (int64, error) {
	ctx := d.ctx
	if f.SwapLength {
		ctx = ctx.Swapped()
	}
	if f.Width == 2 {
		n, err := d.r.Uint16(ctx.Order)
		return int64(n), err
	}
	n, err := d.r.Uint32(ctx.Order)
	return int64(n), err
}

func (d *decoder) readTagRef() (tagfile.Value, int64, error) {
	var ref tagfile.TagRef
	var err error
	if ref.Group, err = d.r.Code(); err != nil {
		return nil, 0, err
	}
	if ref.Address, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if ref.NameLength, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if ref.Salt, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	return &ref, 0, nil
}

func (d *decoder) readBlockRecord(f *Field) (tagfile.Value, int64, error) {
	b := tagfile.Block{Version: f.Block.Current}
	var err error
	if b.Count, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if b.Address, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if b.Definition, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	return &b, 0, nil
}

func (d *decoder) readRawRecord() (tagfile.Value, int64, error) {
	var raw tagfile.Raw
	var err error
	if raw.Size, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if raw.Flags, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if raw.Offset, err = d.r.Uint32(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	if raw.Address, err = d.r.Uint64(d.ctx.Order); err != nil {
		return nil, 0, err
	}
	return &raw, 0, nil
}

// readBlock reads the header and elements of a non-empty block.
func (d *decoder) readBlock(p pending) error {
	b := p.value().(*tagfile.Block)
	def := p.field.Block
	o := d.ctx.Order

	sig, err := d.r.Code()
	if err != nil {
		return err
	}
	version, err := d.r.Uint32(o)
	if err != nil {
		return err
	}
	count, err := d.r.Uint32(o)
	if err != nil {
		return err
	}
	stride, err := d.r.Uint32(o)
	if err != nil {
		return err
	}

	if sig != def.Signature {
		return SchemaViolation{Path: p.path, Reason: "block signature is " + strconv.Quote(sig.String()) + ", expected " + strconv.Quote(def.Signature.String())}
	}
	if count != b.Count {
		return SchemaViolation{Path: p.path, Reason: "block header count " + strconv.FormatUint(uint64(count), 10) + " does not match declared count " + strconv.FormatUint(uint64(b.Count), 10)}
	}
	s := def.Struct(version)
	if s == nil {
		return SchemaViolation{Path: p.path, Reason: "unknown block version " + strconv.FormatUint(uint64(version), 10)}
	}
	if stride == 0 && count > 0 {
		return SchemaViolation{Path: p.path, Reason: "block elements have no size"}
	}
	if int(stride) != s.Size() {
		return SchemaViolation{Path: p.path, Reason: "block stride " + strconv.FormatUint(uint64(stride), 10) + " does not match element size " + strconv.Itoa(s.Size())}
	}
	if def.MaxCount > 0 && count > def.MaxCount {
		d.warn = d.warn.Append(CountExceedsMax{Path: p.path, Count: count, Max: def.MaxCount})
	}
	if need := int64(count) * int64(stride); need > d.r.Remaining() {
		return TruncatedInput{Offset: d.r.Pos(), Need: need, Have: d.r.Remaining()}
	}

	b.Version = version
	b.Elements, err = d.readScope(s, int(count), p.path, true)
	return err
}

// readTail reads the name of a reference, or the content of a variable
// string.
func (d *decoder) readTail(p pending) error {
	switch v := p.value().(type) {
	case *tagfile.TagRef:
		name, err := d.r.Bytes(int(v.NameLength))
		if err != nil {
			return err
		}
		if d.ctx.Dialect.TerminatedNames {
			nul, err := d.r.Uint8()
			if err != nil {
				return err
			}
			if nul != 0 {
				return SchemaViolation{Path: p.path, Reason: "reference name is not terminated"}
			}
		}
		if bytes.IndexByte(name, 0) >= 0 {
			return SchemaViolation{Path: p.path, Reason: "reference name contains null byte"}
		}
		v.Name = string(name)
	case tagfile.ValueVarString:
		b, err := d.r.Bytes(int(p.n))
		if err != nil {
			return err
		}
		p.elem.Fields[p.index].Value = tagfile.ValueVarString(b)
	}
	return nil
}

// readRaw reads the payload of a raw data field.
func (d *decoder) readRaw(p pending) error {
	raw := p.value().(*tagfile.Raw)
	if n := p.field.LeadPad; n > 0 {
		lead, err := d.r.Bytes(n)
		if err != nil {
			return err
		}
		raw.Lead = lead
	}
	data, err := d.r.Bytes(int(raw.Size))
	if err != nil {
		return err
	}
	raw.Data = data
	return nil
}
