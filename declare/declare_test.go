package declare_test

import (
	"fmt"
	"testing"

	"github.com/tagtools/tagfile"
	. "github.com/tagtools/tagfile/declare"
	_ "github.com/tagtools/tagfile/defs"
	"github.com/tagtools/tagfile/tag"
)

func Example() {
	tree, err := File("scnr", "BLM!",
		Value("local_north", 0.5),
		Value("hud_messages", `scenarios\solo\hud_messages`),
		Block("scenery_palette",
			Elem(Value("name", `scenery\rocks\boulder`)),
			Elem(Value("name", "scen", `scenery\trees\pine`)),
		),
		Block("scenery",
			Elem(
				Value("type", 1),
				Value("position", 10, 20, 0.5),
				Value("rotation", 1.57, 0, 0),
				Value("primary_color", 255, 128, 64, 0),
			),
		),
	).Declare(nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, ref := range tree.Refs() {
		if !ref.IsNull() {
			fmt.Println(ref)
		}
	}
	// Output:
	// scen:scenery\rocks\boulder
	// scen:scenery\trees\pine
	// hmt :scenarios\solo\hud_messages
}

func TestDeclareValues(t *testing.T) {
	tree, err := File("ligh", "blam",
		Value("flags", 3),
		Value("radius", 2.5),
		Value("radius_modifier", 0.5, 1),
		Value("color_lower_bound", 1, 0.5, 0.25, 0),
		Value("color", tagfile.ValueColor{R: 1, G: 1, B: 1}),
		Value("lens_flare", `effects\flares\sun`),
	).Declare(nil)
	if err != nil {
		t.Fatal(err)
	}
	e := tree.Root
	if v := e.Get("flags"); v != tagfile.ValueFlags(3) {
		t.Errorf("flags: got %v", v)
	}
	if v := e.Get("radius"); v != tagfile.ValueFloat(2.5) {
		t.Errorf("radius: got %v", v)
	}
	if v := e.Get("radius_modifier"); v != (tagfile.ValueBounds{Min: 0.5, Max: 1}) {
		t.Errorf("radius_modifier: got %v", v)
	}
	if v := e.Get("color_lower_bound"); v != (tagfile.ValueColor{A: 1, R: 0.5, G: 0.25, B: 0}) {
		t.Errorf("color_lower_bound: got %v", v)
	}
	ref := e.Ref("lens_flare")
	if ref.Group != tagfile.MakeCode("lens") || ref.Name != `effects\flares\sun` || ref.NameLength != 18 {
		t.Errorf("lens_flare: got %+v", ref)
	}
	if tree.Header.Engine != tag.EngineClassic {
		t.Errorf("unexpected engine %s", tree.Header.Engine)
	}
	if _, _, err := tag.Build(tree); err != nil {
		t.Errorf("declared tree does not encode: %s", err)
	}
}

func TestDeclareErrors(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
	}{
		{"group", File("none", "blam")},
		{"engine", File("ligh", "none")},
		{"field", File("ligh", "blam", Value("nothing", 1))},
		{"count", File("ligh", "blam", Value("color", 1, 2))},
		{"type", File("ligh", "blam", Value("radius", "large"))},
		{"value type", File("ligh", "blam", Value("radius", tagfile.ValueInt(1)))},
		{"block values", File("scnr", "blam", Value("skies", 1))},
		{"block version", File("bitm", "ambl", VersionedBlock("bitmaps", 1, Elem()))},
		{"element field", File("scnr", "blam", Block("skies", Elem(Value("nothing", 1))))},
	}
	for _, test := range tests {
		if _, err := test.tree.Declare(nil); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}

func TestDeclareVersionedBlock(t *testing.T) {
	tree, err := File("bitm", "BLM!",
		VersionedBlock("bitmaps", 0, Elem(Value("width", 64), Value("height", 32))),
	).Declare(nil)
	if err != nil {
		t.Fatal(err)
	}
	b := tree.Root.Block("bitmaps")
	if b.Version != 0 || b.Len() != 1 || b.Count != 1 {
		t.Fatalf("unexpected block %+v", b)
	}
	if v := b.Elements[0].Get("height"); v != tagfile.ValueInt(32) {
		t.Errorf("height: got %v", v)
	}
}
