package tagfile

import (
	"strconv"
	"strings"
)

// Type represents the type of a field value.
type Type byte

// String returns a string representation of the type. If the type is not
// valid, then the returned value will be "Invalid".
func (t Type) String() string {
	s, ok := typeStrings[t]
	if !ok {
		return "Invalid"
	}
	return s
}

const (
	TypeInvalid Type = iota
	TypeInt
	TypeUint
	TypeFloat
	TypeEnum
	TypeFlags
	TypeString
	TypeVarString
	TypeVector2
	TypeVector3
	TypeQuaternion
	TypeColor
	TypeColor8
	TypeBounds
	TypeShortBounds
	TypePad
	TypeTagRef
	TypeBlock
	TypeRaw
)

var typeStrings = map[Type]string{
	TypeInt:         "int",
	TypeUint:        "uint",
	TypeFloat:       "float",
	TypeEnum:        "enum",
	TypeFlags:       "flags",
	TypeString:      "string",
	TypeVarString:   "varstring",
	TypeVector2:     "Vector2",
	TypeVector3:     "Vector3",
	TypeQuaternion:  "Quaternion",
	TypeColor:       "Color",
	TypeColor8:      "Color8",
	TypeBounds:      "Bounds",
	TypeShortBounds: "ShortBounds",
	TypePad:         "pad",
	TypeTagRef:      "TagRef",
	TypeBlock:       "Block",
	TypeRaw:         "Raw",
}

// TypeFromString returns a Type from its string representation. TypeInvalid
// is returned if the string does not represent an existing Type.
func TypeFromString(s string) Type {
	for typ, str := range typeStrings {
		if s == str {
			return typ
		}
	}
	return TypeInvalid
}

// Value holds a value of a particular Type.
type Value interface {
	// Type returns the type of the value.
	Type() Type

	// String returns a string representation of the current value.
	String() string

	// Copy returns a copy of the value, which can be safely modified.
	Copy() Value
}

// NewValue returns new Value of the given Type. The initial value will be the
// zero for the type.
func NewValue(typ Type) Value {
	newValue, ok := valueGenerators[typ]
	if !ok {
		return nil
	}
	return newValue()
}

type valueGenerator func() Value

var valueGenerators = map[Type]valueGenerator{
	TypeInt:         func() Value { return ValueInt(0) },
	TypeUint:        func() Value { return ValueUint(0) },
	TypeFloat:       func() Value { return ValueFloat(0) },
	TypeEnum:        func() Value { return ValueEnum(0) },
	TypeFlags:       func() Value { return ValueFlags(0) },
	TypeString:      func() Value { return ValueString("") },
	TypeVarString:   func() Value { return ValueVarString("") },
	TypeVector2:     func() Value { return ValueVector2{} },
	TypeVector3:     func() Value { return ValueVector3{} },
	TypeQuaternion:  func() Value { return ValueQuaternion{} },
	TypeColor:       func() Value { return ValueColor{} },
	TypeColor8:      func() Value { return ValueColor8{} },
	TypeBounds:      func() Value { return ValueBounds{} },
	TypeShortBounds: func() Value { return ValueShortBounds{} },
	TypePad:         func() Value { return ValuePad(nil) },
	TypeTagRef:      func() Value { return new(TagRef) },
	TypeBlock:       func() Value { return new(Block) },
	TypeRaw:         func() Value { return new(Raw) },
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

func joinFloats(f ...float32) string {
	var s strings.Builder
	for i, v := range f {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(formatFloat(v))
	}
	return s.String()
}

////////////////////////////////////////////////////////////////
// Values

// ValueInt holds a signed integer field of any width.
type ValueInt int32

func (ValueInt) Type() Type {
	return TypeInt
}
func (t ValueInt) String() string {
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueInt) Copy() Value {
	return t
}

////////////////

// ValueUint holds an unsigned integer field of any width.
type ValueUint uint32

func (ValueUint) Type() Type {
	return TypeUint
}
func (t ValueUint) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
func (t ValueUint) Copy() Value {
	return t
}

////////////////

type ValueFloat float32

func (ValueFloat) Type() Type {
	return TypeFloat
}
func (t ValueFloat) String() string {
	return formatFloat(float32(t))
}
func (t ValueFloat) Copy() Value {
	return t
}

////////////////

// ValueEnum holds the index of an enumerated option.
type ValueEnum int32

func (ValueEnum) Type() Type {
	return TypeEnum
}
func (t ValueEnum) String() string {
	return strconv.FormatInt(int64(t), 10)
}
func (t ValueEnum) Copy() Value {
	return t
}

////////////////

// ValueFlags holds a set of bit flags.
type ValueFlags uint32

func (ValueFlags) Type() Type {
	return TypeFlags
}
func (t ValueFlags) String() string {
	return "0x" + strconv.FormatUint(uint64(t), 16)
}
func (t ValueFlags) Copy() Value {
	return t
}

// Has returns whether bit i is set.
func (t ValueFlags) Has(i uint) bool {
	return t&(1<<i) != 0
}

////////////////

// ValueString holds the text of a fixed-width string field, without its
// terminating null bytes. A string read from a field whose unused bytes are
// not all zero also holds those bytes, following a null byte, so that they
// are written back unchanged.
type ValueString string

// Text returns the string up to its first null byte.
func (t ValueString) Text() string {
	if i := strings.IndexByte(string(t), 0); i >= 0 {
		return string(t[:i])
	}
	return string(t)
}

func (ValueString) Type() Type {
	return TypeString
}
func (t ValueString) String() string {
	return string(t)
}
func (t ValueString) Copy() Value {
	return t
}

////////////////

// ValueVarString holds the text of a length-prefixed string field.
type ValueVarString string

func (ValueVarString) Type() Type {
	return TypeVarString
}
func (t ValueVarString) String() string {
	return string(t)
}
func (t ValueVarString) Copy() Value {
	return t
}

////////////////

type ValueVector2 struct {
	X, Y float32
}

func (ValueVector2) Type() Type {
	return TypeVector2
}
func (t ValueVector2) String() string {
	return joinFloats(t.X, t.Y)
}
func (t ValueVector2) Copy() Value {
	return t
}

////////////////

type ValueVector3 struct {
	X, Y, Z float32
}

func (ValueVector3) Type() Type {
	return TypeVector3
}
func (t ValueVector3) String() string {
	return joinFloats(t.X, t.Y, t.Z)
}
func (t ValueVector3) Copy() Value {
	return t
}

////////////////

type ValueQuaternion struct {
	I, J, K, W float32
}

func (ValueQuaternion) Type() Type {
	return TypeQuaternion
}
func (t ValueQuaternion) String() string {
	return joinFloats(t.I, t.J, t.K, t.W)
}
func (t ValueQuaternion) Copy() Value {
	return t
}

////////////////

// ValueColor holds a floating-point color. Fields without an alpha channel
// ignore A.
type ValueColor struct {
	A, R, G, B float32
}

func (ValueColor) Type() Type {
	return TypeColor
}
func (t ValueColor) String() string {
	return joinFloats(t.A, t.R, t.G, t.B)
}
func (t ValueColor) Copy() Value {
	return t
}

////////////////

// ValueColor8 holds a color with 8 bits per channel.
type ValueColor8 struct {
	A, R, G, B uint8
}

func (ValueColor8) Type() Type {
	return TypeColor8
}
func (t ValueColor8) String() string {
	var s strings.Builder
	for i, c := range [4]uint8{t.A, t.R, t.G, t.B} {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return s.String()
}
func (t ValueColor8) Copy() Value {
	return t
}

////////////////

// ValueBounds holds a floating-point range.
type ValueBounds struct {
	Min, Max float32
}

func (ValueBounds) Type() Type {
	return TypeBounds
}
func (t ValueBounds) String() string {
	return formatFloat(t.Min) + " .. " + formatFloat(t.Max)
}
func (t ValueBounds) Copy() Value {
	return t
}

////////////////

// ValueShortBounds holds an integer range.
type ValueShortBounds struct {
	Min, Max int16
}

func (ValueShortBounds) Type() Type {
	return TypeShortBounds
}
func (t ValueShortBounds) String() string {
	return strconv.Itoa(int(t.Min)) + " .. " + strconv.Itoa(int(t.Max))
}
func (t ValueShortBounds) Copy() Value {
	return t
}

////////////////

// ValuePad holds the content of a padding field. Padding of new records is
// zero; padding read from a file is kept so that it can be written back
// unchanged.
type ValuePad []byte

func (ValuePad) Type() Type {
	return TypePad
}
func (t ValuePad) String() string {
	return "pad(" + strconv.Itoa(len(t)) + ")"
}
func (t ValuePad) Copy() Value {
	if t == nil {
		return t
	}
	c := make(ValuePad, len(t))
	copy(c, t)
	return c
}

// IsZero returns whether every byte of the padding is zero.
func (t ValuePad) IsZero() bool {
	for _, b := range t {
		if b != 0 {
			return false
		}
	}
	return true
}

////////////////

// Block is a variable-count array of elements. Count is the declared number
// of elements; it must equal the length of Elements when the tree is encoded.
type Block struct {
	// Count is the declared number of elements.
	Count uint32

	// Version selects the element layout of the block.
	Version uint32

	// Address and Definition are runtime values stored with the block. They
	// are not interpreted.
	Address    uint32
	Definition uint32

	// Elements is the content of the block.
	Elements []*Element
}

func (*Block) Type() Type {
	return TypeBlock
}
func (t *Block) String() string {
	return "Block(count:" + strconv.Itoa(t.Len()) + ")"
}
func (t *Block) Copy() Value {
	c := *t
	if t.Elements != nil {
		c.Elements = make([]*Element, len(t.Elements))
		for i, e := range t.Elements {
			c.Elements[i] = e.Copy()
		}
	}
	return &c
}

// Len returns the number of elements in the block.
func (t *Block) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Elements)
}

// Append adds elements to the end of the block, updating Count.
func (t *Block) Append(e ...*Element) {
	t.Elements = append(t.Elements, e...)
	t.Sync()
}

// Remove removes the element at index i, updating Count.
func (t *Block) Remove(i int) {
	if i < 0 || i >= len(t.Elements) {
		return
	}
	copy(t.Elements[i:], t.Elements[i+1:])
	t.Elements[len(t.Elements)-1] = nil
	t.Elements = t.Elements[:len(t.Elements)-1]
	t.Sync()
}

// Sync sets Count to the number of elements.
func (t *Block) Sync() {
	t.Count = uint32(len(t.Elements))
}

////////////////

// Raw is an opaque span of bytes, such as a compressed color plate or a
// precomputed collision structure. Size is the declared length; the encoder
// writes the length of Data.
type Raw struct {
	Size    uint32
	Flags   uint32
	Offset  uint32
	Address uint64

	// Lead holds the bytes of a lead pad preceding Data, for fields that have
	// one.
	Lead []byte

	Data []byte
}

func (*Raw) Type() Type {
	return TypeRaw
}
func (t *Raw) String() string {
	return "Raw(len:" + strconv.Itoa(len(t.Data)) + ")"
}
func (t *Raw) Copy() Value {
	c := *t
	if t.Lead != nil {
		c.Lead = make([]byte, len(t.Lead))
		copy(c.Lead, t.Lead)
	}
	if t.Data != nil {
		c.Data = make([]byte, len(t.Data))
		copy(c.Data, t.Data)
	}
	return &c
}

// SetData sets the content of the raw data, updating Size.
func (t *Raw) SetData(b []byte) {
	t.Data = b
	t.Size = uint32(len(b))
}
