// The defs package provides the schemas of the supported asset types, for
// both generations of the format. Importing the package registers the schemas
// into tag.DefaultRegistry.
package defs

import (
	"github.com/tagtools/tagfile/tag"
)

// Groups of the supported asset types.
const (
	GroupBitmap   = "bitm"
	GroupScenery  = "scen"
	GroupLight    = "ligh"
	GroupScenario = "scnr"
)

// Second generation layouts.
var secondGen = []tag.Layout{tag.LayoutLegacy, tag.LayoutIntermediate, tag.LayoutRetail}

// Schemas returns the schemas of the supported asset types.
func Schemas() []*tag.Schema {
	return []*tag.Schema{
		bitmapSchema,
		scenerySchema,
		lightSchema,
		scenarioSchema,
	}
}

// Register adds the schemas to reg.
func Register(reg *tag.Registry) error {
	for _, s := range Schemas() {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := Register(tag.DefaultRegistry); err != nil {
		panic("defs: " + err.Error())
	}
}

// fields concatenates lists of fields.
func fields(lists ...[]tag.Field) []tag.Field {
	var f []tag.Field
	for _, l := range lists {
		f = append(f, l...)
	}
	return f
}

// refBlock returns a block definition whose elements each hold a single
// reference.
func refBlock(name, field, group string, max uint32) *tag.BlockDef {
	return tag.NewBlockDef(name, max, tag.NewStruct(name, tag.Ref(field, group)))
}
