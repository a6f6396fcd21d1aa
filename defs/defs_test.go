package defs

import (
	"bytes"
	"testing"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/tag"
)

// fill sets a distinct value for each field of e, adding one element to each
// block.
func fill(t *testing.T, s *tag.Struct, e *tagfile.Element, depth int) {
	for i, f := range s.Fields {
		field := &e.Fields[i]
		n := float32(i) + 0.5
		switch f.Kind {
		case tag.KindInt8, tag.KindInt16, tag.KindInt32:
			field.Value = tagfile.ValueInt(i + 1)
		case tag.KindUint8, tag.KindUint16, tag.KindUint32:
			field.Value = tagfile.ValueUint(i + 1)
		case tag.KindFloat:
			field.Value = tagfile.ValueFloat(n)
		case tag.KindEnum16, tag.KindEnum32:
			field.Value = tagfile.ValueEnum(1)
		case tag.KindFlags8, tag.KindFlags16, tag.KindFlags32:
			field.Value = tagfile.ValueFlags(0x5)
		case tag.KindString:
			field.Value = tagfile.ValueString(f.Name)
		case tag.KindVector2:
			field.Value = tagfile.ValueVector2{X: n, Y: -n}
		case tag.KindVector3:
			field.Value = tagfile.ValueVector3{X: n, Y: -n, Z: 1}
		case tag.KindQuaternion:
			field.Value = tagfile.ValueQuaternion{W: 1}
		case tag.KindRGB, tag.KindRGBA, tag.KindARGB:
			field.Value = tagfile.ValueColor{A: 1, R: 0.5, G: 0.25, B: 0.125}
		case tag.KindARGB8:
			field.Value = tagfile.ValueColor8{A: 255, R: 1, G: 2, B: 3}
		case tag.KindShortBounds:
			field.Value = tagfile.ValueShortBounds{Min: -1, Max: 1}
		case tag.KindBounds:
			field.Value = tagfile.ValueBounds{Min: 0, Max: n}
		case tag.KindTagRef:
			field.Value.(*tagfile.TagRef).SetName("tests\\" + f.Name)
		case tag.KindRaw:
			field.Value.(*tagfile.Raw).SetData([]byte(f.Name))
		case tag.KindVarString:
			field.Value = tagfile.ValueVarString("comment on " + f.Name)
		case tag.KindBlock:
			if depth > 3 {
				continue
			}
			b := field.Value.(*tagfile.Block)
			st := f.Block.Struct(b.Version)
			if st == nil {
				t.Fatalf("block %s has no version %d", f.Name, b.Version)
			}
			child := st.New()
			fill(t, st, child, depth+1)
			b.Append(child)
		}
	}
}

func TestSchemasCoverLayouts(t *testing.T) {
	for _, s := range Schemas() {
		for _, l := range []tag.Layout{tag.LayoutClassic, tag.LayoutLegacy, tag.LayoutIntermediate, tag.LayoutRetail} {
			if s.Bodies[l] == nil {
				t.Errorf("%s: no %s body", s.Name, l)
			}
		}
		if tag.DefaultRegistry.Schema(s.Group) != s {
			t.Errorf("%s: not registered", s.Name)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	reg := tag.DefaultRegistry
	for _, s := range Schemas() {
		for _, d := range tag.Dialects() {
			tree, err := reg.NewTree(s.Group, d.Engine)
			if err != nil {
				t.Fatalf("%s/%s: %s", s.Name, d.Engine, err)
			}
			fill(t, s.Bodies[d.Layout], tree.Root, 0)

			b, warn, err := tag.Build(tree)
			if err != nil {
				t.Fatalf("%s/%s: encode: %s", s.Name, d.Engine, err)
			}
			if warn != nil {
				t.Errorf("%s/%s: encode warnings: %s", s.Name, d.Engine, warn)
			}
			decoded, warn, err := tag.Parse(b)
			if err != nil {
				t.Fatalf("%s/%s: decode: %s", s.Name, d.Engine, err)
			}
			if warn != nil {
				t.Errorf("%s/%s: decode warnings: %s", s.Name, d.Engine, warn)
			}
			if n, m := len(decoded.Refs()), len(tree.Refs()); n != m {
				t.Errorf("%s/%s: expected %d references, got %d", s.Name, d.Engine, m, n)
			}
			again, _, err := tag.Build(decoded)
			if err != nil {
				t.Fatalf("%s/%s: re-encode: %s", s.Name, d.Engine, err)
			}
			if !bytes.Equal(again, b) {
				t.Errorf("%s/%s: round trip differs", s.Name, d.Engine)
			}
		}
	}
}

func TestBitmapColorPlateLeadPad(t *testing.T) {
	tree, err := tag.DefaultRegistry.NewTree(tagfile.MakeCode(GroupBitmap), tag.EngineRetail)
	if err != nil {
		t.Fatal(err)
	}
	empty, _, err := tag.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	tree.Root.Raw("compressed_color_plate").SetData([]byte{1, 2, 3, 4, 5, 6})
	b, _, err := tag.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(b) - len(empty); n != 4+6 {
		t.Errorf("expected color plate to add 10 bytes, added %d", n)
	}
	if !bytes.HasSuffix(b, []byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6}) {
		t.Errorf("expected lead pad before color plate, got % 02X", b[len(b)-10:])
	}
}

func TestRetailTrailingFields(t *testing.T) {
	for _, s := range Schemas() {
		if s.Group == tagfile.MakeCode(GroupBitmap) {
			continue
		}
		legacy := s.Bodies[tag.LayoutLegacy]
		retail := s.Bodies[tag.LayoutRetail]
		if retail.Size() <= legacy.Size() {
			t.Errorf("%s: retail body (%d) is not larger than legacy body (%d)", s.Name, retail.Size(), legacy.Size())
		}
	}
}

func TestScenarioLegacyComment(t *testing.T) {
	tree, err := tag.DefaultRegistry.NewTree(tagfile.MakeCode(GroupScenario), tag.EngineLegacy)
	if err != nil {
		t.Fatal(err)
	}
	comments := tree.Root.Block("comments")
	st := tag.DefaultRegistry.Schema(tagfile.MakeCode(GroupScenario)).Bodies[tag.LayoutLegacy]
	def := st.Fields[st.Index("comments")].Block
	comment := def.Struct(0).New()
	comment.Set("comment", tagfile.ValueVarString("hi"))
	comments.Append(comment)

	b, _, err := tag.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	// Little-endian dialect; the comment length is big-endian.
	if !bytes.HasSuffix(b, []byte{0, 0, 0, 2, 'h', 'i'}) {
		t.Errorf("expected big-endian comment length")
	}
	decoded, _, err := tag.Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.Root.Block("comments").Elements[0].Get("comment")
	if got != tagfile.ValueVarString("hi") {
		t.Errorf("unexpected comment %v", got)
	}
}
