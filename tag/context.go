package tag

import (
	"encoding/binary"

	"github.com/tagtools/tagfile"
)

// Layout identifies a variant of the body of an asset schema. The set of
// layouts is closed; each engine tag selects exactly one.
type Layout uint8

const (
	LayoutUnknown Layout = iota
	// First generation.
	LayoutClassic
	// Second generation, early builds.
	LayoutLegacy
	// Second generation, builds between legacy and retail.
	LayoutIntermediate
	// Second generation, shipped builds.
	LayoutRetail
)

var layoutStrings = map[Layout]string{
	LayoutClassic:      "classic",
	LayoutLegacy:       "legacy",
	LayoutIntermediate: "intermediate",
	LayoutRetail:       "retail",
}

func (l Layout) String() string {
	if s, ok := layoutStrings[l]; ok {
		return s
	}
	return "unknown"
}

// LayoutFromString returns the Layout named by s, or LayoutUnknown.
func LayoutFromString(s string) Layout {
	for l, str := range layoutStrings {
		if s == str {
			return l
		}
	}
	return LayoutUnknown
}

// Dialect holds the parameters selected by an engine tag.
type Dialect struct {
	// Engine is the engine tag.
	Engine tagfile.Code
	// Order is the byte order of numeric fields.
	Order binary.ByteOrder
	// Layout selects the body of each asset schema.
	Layout Layout
	// TerminatedNames indicates that reference names are followed by a null
	// byte.
	TerminatedNames bool
}

// Context carries the state of a single decode or encode call. It is
// immutable; derived contexts are returned by its methods.
type Context struct {
	Order   binary.ByteOrder
	Dialect Dialect
}

func newContext(d Dialect) Context {
	return Context{Order: d.Order, Dialect: d}
}

// WithByteOrder returns a copy of the context using byte order o.
func (c Context) WithByteOrder(o binary.ByteOrder) Context {
	c.Order = o
	return c
}

// Swapped returns a copy of the context using the byte order opposite to the
// current one.
func (c Context) Swapped() Context {
	if c.Order == binary.ByteOrder(binary.BigEndian) {
		return c.WithByteOrder(binary.LittleEndian)
	}
	return c.WithByteOrder(binary.BigEndian)
}
