package tag

import (
	"fmt"

	"github.com/tagtools/tagfile"
)

// Kind is the encoding of a field within a record.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindUint8
	KindUint16
	KindUint32
	KindFloat
	KindEnum16
	KindEnum32
	KindFlags8
	KindFlags16
	KindFlags32
	KindString
	KindVector2
	KindVector3
	KindQuaternion
	KindRGB
	KindRGBA
	KindARGB
	KindARGB8
	KindShortBounds
	KindBounds
	KindPad
	KindTagRef
	KindBlock
	KindRaw
	KindVarString
)

type kindInfo struct {
	name string
	// Fixed size of the field, or 0 if the size is given by the field width.
	size int
	typ  tagfile.Type
}

var kinds = map[Kind]kindInfo{
	KindInt8:        {"int8", 1, tagfile.TypeInt},
	KindInt16:       {"int16", 2, tagfile.TypeInt},
	KindInt32:       {"int32", 4, tagfile.TypeInt},
	KindUint8:       {"uint8", 1, tagfile.TypeUint},
	KindUint16:      {"uint16", 2, tagfile.TypeUint},
	KindUint32:      {"uint32", 4, tagfile.TypeUint},
	KindFloat:       {"float", 4, tagfile.TypeFloat},
	KindEnum16:      {"enum16", 2, tagfile.TypeEnum},
	KindEnum32:      {"enum32", 4, tagfile.TypeEnum},
	KindFlags8:      {"flags8", 1, tagfile.TypeFlags},
	KindFlags16:     {"flags16", 2, tagfile.TypeFlags},
	KindFlags32:     {"flags32", 4, tagfile.TypeFlags},
	KindString:      {"string", 0, tagfile.TypeString},
	KindVector2:     {"vector2", 8, tagfile.TypeVector2},
	KindVector3:     {"vector3", 12, tagfile.TypeVector3},
	KindQuaternion:  {"quaternion", 16, tagfile.TypeQuaternion},
	KindRGB:         {"rgb", 12, tagfile.TypeColor},
	KindRGBA:        {"rgba", 16, tagfile.TypeColor},
	KindARGB:        {"argb", 16, tagfile.TypeColor},
	KindARGB8:       {"argb8", 4, tagfile.TypeColor8},
	KindShortBounds: {"short bounds", 4, tagfile.TypeShortBounds},
	KindBounds:      {"bounds", 8, tagfile.TypeBounds},
	KindPad:         {"pad", 0, tagfile.TypePad},
	KindTagRef:      {"tag reference", 16, tagfile.TypeTagRef},
	KindBlock:       {"block", 12, tagfile.TypeBlock},
	KindRaw:         {"raw data", 20, tagfile.TypeRaw},
	KindVarString:   {"variable string", 0, tagfile.TypeVarString},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "invalid"
}

// ValueType returns the type of value that holds a field of the kind.
func (k Kind) ValueType() tagfile.Type {
	return kinds[k].typ
}

// Field describes one field of a record.
type Field struct {
	// Name is the name of the field. Padding fields have no name.
	Name string
	Kind Kind
	// Width is the size of a string or padding field, or the size of the
	// length prefix of a variable string.
	Width int
	// Block is the definition of a block field.
	Block *BlockDef
	// Group is the expected group of a tag reference field. It is used only
	// as the group of new references.
	Group tagfile.Code
	// LeadPad is the number of bytes preceding the payload of a raw data
	// field, when the payload is not empty.
	LeadPad int
	// SwapLength indicates that the length prefix of a variable string uses
	// the byte order opposite to that of the dialect.
	SwapLength bool
}

// Size returns the size of the fixed record of the field.
func (f Field) Size() int {
	info := kinds[f.Kind]
	if info.size > 0 {
		return info.size
	}
	return f.Width
}

func (f Field) validate() error {
	if _, ok := kinds[f.Kind]; !ok {
		return fmt.Errorf("field %q: invalid kind %d", f.Name, f.Kind)
	}
	switch f.Kind {
	case KindString, KindPad:
		if f.Width <= 0 {
			return fmt.Errorf("field %q: %s requires positive width", f.Name, f.Kind)
		}
	case KindVarString:
		if f.Width != 2 && f.Width != 4 {
			return fmt.Errorf("field %q: variable string length must be 2 or 4 bytes", f.Name)
		}
	case KindBlock:
		if f.Block == nil {
			return fmt.Errorf("field %q: block has no definition", f.Name)
		}
	case KindRaw:
		if f.LeadPad < 0 {
			return fmt.Errorf("field %q: negative lead pad", f.Name)
		}
	}
	if f.Name == "" && f.Kind != KindPad {
		return fmt.Errorf("%s field requires a name", f.Kind)
	}
	return nil
}

func Int8(name string) Field    { return Field{Name: name, Kind: KindInt8} }
func Int16(name string) Field   { return Field{Name: name, Kind: KindInt16} }
func Int32(name string) Field   { return Field{Name: name, Kind: KindInt32} }
func Uint8(name string) Field   { return Field{Name: name, Kind: KindUint8} }
func Uint16(name string) Field  { return Field{Name: name, Kind: KindUint16} }
func Uint32(name string) Field  { return Field{Name: name, Kind: KindUint32} }
func Float(name string) Field   { return Field{Name: name, Kind: KindFloat} }
func Enum16(name string) Field  { return Field{Name: name, Kind: KindEnum16} }
func Enum32(name string) Field  { return Field{Name: name, Kind: KindEnum32} }
func Flags8(name string) Field  { return Field{Name: name, Kind: KindFlags8} }
func Flags16(name string) Field { return Field{Name: name, Kind: KindFlags16} }
func Flags32(name string) Field { return Field{Name: name, Kind: KindFlags32} }

func Vector2(name string) Field     { return Field{Name: name, Kind: KindVector2} }
func Vector3(name string) Field     { return Field{Name: name, Kind: KindVector3} }
func Quaternion(name string) Field  { return Field{Name: name, Kind: KindQuaternion} }
func RGB(name string) Field         { return Field{Name: name, Kind: KindRGB} }
func RGBA(name string) Field        { return Field{Name: name, Kind: KindRGBA} }
func ARGB(name string) Field        { return Field{Name: name, Kind: KindARGB} }
func ARGB8(name string) Field       { return Field{Name: name, Kind: KindARGB8} }
func ShortBounds(name string) Field { return Field{Name: name, Kind: KindShortBounds} }
func Bounds(name string) Field      { return Field{Name: name, Kind: KindBounds} }

// String32 is a fixed string of 32 bytes.
func String32(name string) Field { return Field{Name: name, Kind: KindString, Width: 32} }

// String256 is a fixed string of 256 bytes.
func String256(name string) Field { return Field{Name: name, Kind: KindString, Width: 256} }

// Pad is an unnamed span of n padding bytes.
func Pad(n int) Field { return Field{Kind: KindPad, Width: n} }

// Ref is a tag reference. group is the expected group of the referent, and
// may be zero.
func Ref(name string, group string) Field {
	f := Field{Name: name, Kind: KindTagRef}
	if group != "" {
		f.Group = tagfile.MakeCode(group)
	}
	return f
}

// Block is a block of elements described by def.
func Block(name string, def *BlockDef) Field {
	return Field{Name: name, Kind: KindBlock, Block: def}
}

// RawData is an opaque span of bytes.
func RawData(name string) Field { return Field{Name: name, Kind: KindRaw} }

// RawLeadPad is an opaque span of bytes whose payload is preceded by n bytes
// of padding when it is not empty.
func RawLeadPad(name string, n int) Field {
	return Field{Name: name, Kind: KindRaw, LeadPad: n}
}

// VarString is a string with a 2-byte length prefix.
func VarString(name string) Field {
	return Field{Name: name, Kind: KindVarString, Width: 2}
}

// LongVarString is a string with a 4-byte length prefix.
func LongVarString(name string) Field {
	return Field{Name: name, Kind: KindVarString, Width: 4}
}

// LegacyVarString is a string with a 4-byte length prefix stored in the byte
// order opposite to that of the dialect.
func LegacyVarString(name string) Field {
	return Field{Name: name, Kind: KindVarString, Width: 4, SwapLength: true}
}

////////////////////////////////////////////////////////////////

// Struct is an ordered list of fields making up a fixed-size record.
type Struct struct {
	Name   string
	Fields []Field
	size   int
}

// NewStruct returns a Struct with the given fields. Panics if there are no
// fields, if a field is invalid, or if two fields have the same name.
func NewStruct(name string, fields ...Field) *Struct {
	if len(fields) == 0 {
		panic("tag: struct " + name + " has no fields")
	}
	s := &Struct{Name: name, Fields: fields}
	names := map[string]bool{}
	for _, f := range fields {
		if err := f.validate(); err != nil {
			panic("tag: struct " + name + ": " + err.Error())
		}
		if f.Name != "" {
			if names[f.Name] {
				panic("tag: struct " + name + ": duplicate field " + f.Name)
			}
			names[f.Name] = true
		}
		s.size += f.Size()
	}
	return s
}

// Size returns the size of the fixed record.
func (s *Struct) Size() int {
	return s.size
}

// Index returns the index of the field with the given name, or -1.
func (s *Struct) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name != "" && f.Name == name {
			return i
		}
	}
	return -1
}

// New returns an element with a default value for each field. Numbers are
// zero, padding is zeroed, blocks are empty and use the current version of
// their definition, and references are null.
func (s *Struct) New() *tagfile.Element {
	e := &tagfile.Element{Fields: make([]tagfile.Field, len(s.Fields))}
	for i, f := range s.Fields {
		e.Fields[i] = tagfile.Field{Name: f.Name, Value: f.newValue()}
	}
	return e
}

func (f Field) newValue() tagfile.Value {
	switch f.Kind {
	case KindPad:
		return make(tagfile.ValuePad, f.Width)
	case KindTagRef:
		group := f.Group
		if group == (tagfile.Code{}) {
			group = tagfile.NullCode
		}
		return &tagfile.TagRef{Group: group}
	case KindBlock:
		return &tagfile.Block{Version: f.Block.Current}
	default:
		return tagfile.NewValue(f.Kind.ValueType())
	}
}

////////////////////////////////////////////////////////////////

// DefaultBlockSignature is the signature of block headers.
var DefaultBlockSignature = tagfile.MakeCode("tbfd")

// BlockDef describes a kind of block: the layout of its elements per version,
// and the maximum number of elements.
type BlockDef struct {
	Name      string
	Signature tagfile.Code
	// MaxCount is the maximum number of elements. Zero means unlimited.
	MaxCount uint32
	// Versions maps a block version to the layout of its elements.
	Versions map[uint32]*Struct
	// Current is the version used for new blocks.
	Current uint32
}

// NewBlockDef returns a block definition whose version 0 elements have the
// layout s.
func NewBlockDef(name string, max uint32, s *Struct) *BlockDef {
	return &BlockDef{
		Name:      name,
		Signature: DefaultBlockSignature,
		MaxCount:  max,
		Versions:  map[uint32]*Struct{0: s},
	}
}

// WithVersion adds a version of the element layout and makes it current.
func (d *BlockDef) WithVersion(v uint32, s *Struct) *BlockDef {
	d.Versions[v] = s
	d.Current = v
	return d
}

// Struct returns the element layout of version v, or nil.
func (d *BlockDef) Struct(v uint32) *Struct {
	return d.Versions[v]
}
