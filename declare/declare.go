// The declare package is used to generate tagfile structures in a declarative
// style.
//
// A declaration names fields, and gives their values as plain Go values. The
// schema of the tag group supplies the kind of each field, which determines
// how the values are converted. Fields that are not declared keep the default
// value of their schema.
//
// The easiest way to use this package is to import it directly into the
// current package:
//
//     import . "github.com/tagtools/tagfile/declare"
//
// This allows the package's identifiers to be used directly without a
// qualifier.
package declare

import (
	"fmt"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/tag"
)

// Tree declares a tagfile.Tree of a group, for the dialect of an engine tag.
type Tree struct {
	Group  string
	Engine string
	Fields []Field
}

// File declares a Tree.
func File(group, engine string, fields ...Field) Tree {
	return Tree{Group: group, Engine: engine, Fields: fields}
}

// Declare evaluates the Tree declaration using the schemas of reg. If reg is
// nil, tag.DefaultRegistry is used.
//
// Returns an error if the registry has no schema for the group and engine, if
// a declared field does not exist, or if the values of a field cannot be
// converted to its kind.
func (dtree Tree) Declare(reg *tag.Registry) (*tagfile.Tree, error) {
	if reg == nil {
		reg = tag.DefaultRegistry
	}
	group := tagfile.MakeCode(dtree.Group)
	engine := tagfile.MakeCode(dtree.Engine)
	dialect, err := reg.Dialect(engine)
	if err != nil {
		return nil, err
	}
	body, err := reg.Body(group, dialect)
	if err != nil {
		return nil, err
	}
	tree, err := reg.NewTree(group, engine)
	if err != nil {
		return nil, err
	}
	if err := apply(body, tree.Root, dtree.Fields, ""); err != nil {
		return nil, err
	}
	return tree, nil
}

// Field declares the value of a field of an element.
type Field struct {
	name string
	// Values of a field.
	value []interface{}
	// Elements of a block field.
	elements []Element
	// Version of a block field, if declared.
	version *uint32
}

// Value declares a field with the given values. The values are converted
// according to the kind of the field:
//
//     int*, uint*, float, enum*, flags*:
//         A single number.
//
//     string, variable string:
//         A single string or []byte.
//
//     vector2, bounds, short bounds:
//         2 numbers.
//
//     vector3, rgb:
//         3 numbers. Colors are given in R, G, B order.
//
//     quaternion, rgba, argb, argb8:
//         4 numbers, in the order of the name of the kind. For example, argb
//         is given as A, R, G, B.
//
//     pad:
//         A single []byte.
//
//     tag reference:
//         1) A single string, which is the name of the referent. The group
//            is the expected group of the field.
//         2) A group string and a name string.
//
//     raw data:
//         A single []byte or string.
//
// The value may also be a single tagfile.Value of the type corresponding to
// the kind, in which case the value itself is used.
func Value(name string, value ...interface{}) Field {
	return Field{name: name, value: value}
}

// Block declares the elements of a block field.
func Block(name string, elements ...Element) Field {
	return Field{name: name, elements: elements}
}

// VersionedBlock declares the elements of a block field using a specific
// element version.
func VersionedBlock(name string, version uint32, elements ...Element) Field {
	return Field{name: name, elements: elements, version: &version}
}

// Element declares an element of a block.
type Element []Field

// Elem declares an element with the given fields.
func Elem(fields ...Field) Element {
	return Element(fields)
}

func apply(s *tag.Struct, e *tagfile.Element, fields []Field, path string) error {
	for _, f := range fields {
		i := s.Index(f.name)
		if i < 0 {
			return fmt.Errorf("%s: no field %q in %s", path, f.name, s.Name)
		}
		sf := s.Fields[i]
		p := f.name
		if path != "" {
			p = path + "." + f.name
		}
		if sf.Kind == tag.KindBlock {
			if err := applyBlock(sf, e.Fields[i].Value.(*tagfile.Block), f, p); err != nil {
				return err
			}
			continue
		}
		if f.elements != nil {
			return fmt.Errorf("%s: %s field declared as block", p, sf.Kind)
		}
		v, err := value(sf, e.Fields[i].Value, f.value)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		e.Fields[i].Value = v
	}
	return nil
}

func applyBlock(sf tag.Field, b *tagfile.Block, f Field, path string) error {
	if f.value != nil {
		return fmt.Errorf("%s: block field declared with values", path)
	}
	if f.version != nil {
		b.Version = *f.version
	}
	s := sf.Block.Struct(b.Version)
	if s == nil {
		return fmt.Errorf("%s: block has no version %d", path, b.Version)
	}
	for i, delem := range f.elements {
		e := s.New()
		if err := apply(s, e, delem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
		b.Append(e)
	}
	return nil
}
