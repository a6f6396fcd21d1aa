// The tagfile package handles the representation and manipulation of game
// asset "tag" files.
//
// A tag file begins with a fixed header identifying the tag group (the asset
// type) and the engine build that produced it, followed by a body. The body is
// a single record of typed fields, some of which are blocks: variable-count
// arrays of further records. Such data structures begin with a Tree struct. A
// Tree contains a root Element, whose fields may contain Blocks of child
// Elements, which in turn contain more Blocks, and so on.
//
// Each field of an Element has a value of a certain type. Every available type
// implements the Value interface, and is prefixed with "Value". References to
// other tag files are held by TagRef values, and opaque byte payloads by Raw
// values.
//
// Trees can be decoded from and encoded to the binary tag format with the
// "tag" sub-package. The "defs" sub-package provides the schemas of the
// supported asset types, and the "loader" sub-package resolves references
// between tag files.
package tagfile

import (
	"strconv"
	"strings"
)

////////////////////////////////////////////////////////////////

// Code is a four-character code, such as the group of a tag file, or the
// engine tag of the build that produced it. Codes are stored as raw bytes.
type Code [4]byte

// MakeCode returns a Code from the first four bytes of s. Shorter strings are
// padded with spaces.
func MakeCode(s string) Code {
	c := Code{' ', ' ', ' ', ' '}
	copy(c[:], s)
	return c
}

// NullCode is the group of a reference that does not refer to any group.
var NullCode = Code{0xFF, 0xFF, 0xFF, 0xFF}

// String returns the code as text. Non-printable bytes are replaced with '.'.
func (c Code) String() string {
	var b [4]byte
	for i, r := range c {
		if 0x20 <= r && r <= 0x7E {
			b[i] = r
		} else {
			b[i] = '.'
		}
	}
	return string(b[:])
}

// IsNull returns whether the code is zero or NullCode.
func (c Code) IsNull() bool {
	return c == Code{} || c == NullCode
}

////////////////////////////////////////////////////////////////

// Header holds the fields of the fixed header at the start of every tag file.
type Header struct {
	// Reserved holds the leading bytes of the header, which are not
	// interpreted, and are written back unchanged.
	Reserved [36]byte

	// Group is the tag group of the file, identifying the asset type.
	Group Code

	// Checksum is the checksum of the body. It is recomputed when the tree
	// is encoded.
	Checksum uint32

	// DataLength is the length of the body, in bytes. It is recomputed when
	// the tree is encoded.
	DataLength uint32

	// Spare holds reserved bytes following the data length.
	Spare [4]byte

	// Version is the format version of the tag group.
	Version uint16

	// Marker is an engine-specific marker, usually 0x00FF.
	Marker uint16

	// Engine is the engine tag, which identifies the build that produced the
	// file, and which selects the layout of the body.
	Engine Code
}

// Tree represents the content of a single tag file.
type Tree struct {
	// Header is the header of the file.
	Header Header

	// Root is the top-level record of the body.
	Root *Element
}

// Copy returns a deep copy of the tree, which can be safely modified.
func (t *Tree) Copy() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{
		Header: t.Header,
		Root:   t.Root.Copy(),
	}
}

// Refs returns every reference within the tree, in document order: fields of
// an element are visited in declared order, and the elements of a block are
// visited before the fields that follow the block.
func (t *Tree) Refs() []*TagRef {
	if t == nil || t.Root == nil {
		return nil
	}
	var refs []*TagRef
	t.Root.Walk(func(path string, value Value) bool {
		if ref, ok := value.(*TagRef); ok {
			refs = append(refs, ref)
		}
		return true
	})
	return refs
}

////////////////////////////////////////////////////////////////

// Field is a named value within an Element.
type Field struct {
	Name  string
	Value Value
}

// Element represents a single record of the body, either the top-level
// record, or an element of a Block. Fields are ordered as they appear in the
// record's schema. Padding fields have an empty name.
type Element struct {
	Fields []Field
}

// NewElement returns an Element with the given fields.
func NewElement(fields ...Field) *Element {
	return &Element{Fields: fields}
}

// Index returns the index of the first field with the given name, or -1 if
// no such field exists.
func (e *Element) Index(name string) int {
	if e == nil || name == "" {
		return -1
	}
	for i, f := range e.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value of a field. The value will be nil if the field is not
// defined.
func (e *Element) Get(name string) Value {
	i := e.Index(name)
	if i < 0 {
		return nil
	}
	return e.Fields[i].Value
}

// Set sets the value of an existing field. Returns false if the field does
// not exist. The type of a value is checked only when the tree is encoded.
func (e *Element) Set(name string, value Value) bool {
	i := e.Index(name)
	if i < 0 {
		return false
	}
	e.Fields[i].Value = value
	return true
}

// Block returns the Block of the given field, or nil if the field is not a
// block.
func (e *Element) Block(name string) *Block {
	b, _ := e.Get(name).(*Block)
	return b
}

// Ref returns the TagRef of the given field, or nil if the field is not a
// reference.
func (e *Element) Ref(name string) *TagRef {
	r, _ := e.Get(name).(*TagRef)
	return r
}

// Raw returns the Raw data of the given field, or nil if the field is not raw
// data.
func (e *Element) Raw(name string) *Raw {
	r, _ := e.Get(name).(*Raw)
	return r
}

// Copy returns a deep copy of the element.
func (e *Element) Copy() *Element {
	if e == nil {
		return nil
	}
	c := &Element{Fields: make([]Field, len(e.Fields))}
	for i, f := range e.Fields {
		c.Fields[i].Name = f.Name
		if f.Value != nil {
			c.Fields[i].Value = f.Value.Copy()
		}
	}
	return c
}

// Walk calls fn for each field of the element and its descendants, depth
// first, in declared order. path is a dotted path to the field, with element
// indexes in brackets. If fn returns false for a block, the elements of the
// block are skipped.
func (e *Element) Walk(fn func(path string, value Value) bool) {
	e.walk("", fn)
}

func (e *Element) walk(prefix string, fn func(path string, value Value) bool) {
	if e == nil {
		return
	}
	for _, f := range e.Fields {
		if f.Name == "" {
			continue
		}
		path := joinPath(prefix, f.Name)
		if !fn(path, f.Value) {
			continue
		}
		if b, ok := f.Value.(*Block); ok {
			for i, child := range b.Elements {
				child.walk(path+"["+strconv.Itoa(i)+"]", fn)
			}
		}
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	var s strings.Builder
	s.Grow(len(prefix) + 1 + len(name))
	s.WriteString(prefix)
	s.WriteByte('.')
	s.WriteString(name)
	return s.String()
}
