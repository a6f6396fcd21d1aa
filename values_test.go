package tagfile_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/tagtools/tagfile"
)

func TestType_String(t *testing.T) {
	if tagfile.TypeString.String() != "string" {
		t.Error("unexpected result from String")
	}

	if tagfile.Type(0).String() != "Invalid" {
		t.Error("unexpected result from String")
	}
}

func TestTypeFromString(t *testing.T) {
	if tagfile.TypeFromString("TagRef") != tagfile.TypeTagRef {
		t.Error("unexpected result from TypeFromString")
	}

	if tagfile.TypeFromString("UnknownType") != tagfile.TypeInvalid {
		t.Error("unexpected result from TypeFromString")
	}
}

func TestNewValue(t *testing.T) {
	if _, ok := tagfile.NewValue(tagfile.TypeString).(tagfile.ValueString); !ok {
		t.Error("expected ValueString from NewValue")
	}

	if _, ok := tagfile.NewValue(tagfile.TypeBlock).(*tagfile.Block); !ok {
		t.Error("expected *Block from NewValue")
	}

	if tagfile.NewValue(tagfile.TypeInvalid) != nil {
		t.Error("expected nil value from NewValue")
	}
}

var types = []tagfile.Type{
	tagfile.TypeInt,
	tagfile.TypeUint,
	tagfile.TypeFloat,
	tagfile.TypeEnum,
	tagfile.TypeFlags,
	tagfile.TypeString,
	tagfile.TypeVarString,
	tagfile.TypeVector2,
	tagfile.TypeVector3,
	tagfile.TypeQuaternion,
	tagfile.TypeColor,
	tagfile.TypeColor8,
	tagfile.TypeBounds,
	tagfile.TypeShortBounds,
	tagfile.TypePad,
	tagfile.TypeTagRef,
	tagfile.TypeBlock,
	tagfile.TypeRaw,
}

func TestValueType(t *testing.T) {
	for _, typ := range types {
		v := tagfile.NewValue(typ)
		if v == nil || v.Type() != typ {
			t.Errorf("unexpected value from NewValue(%s)", typ)
		}
	}
}

func TestValueCopy(t *testing.T) {
	for _, typ := range types {
		v := tagfile.NewValue(typ)
		if !reflect.DeepEqual(v, v.Copy()) {
			t.Errorf("copy of value %q is not equal to original", v.Type().String())
		}
	}
}

func TestValueCopyIsDeep(t *testing.T) {
	pad := tagfile.ValuePad{1, 2}
	padc := pad.Copy().(tagfile.ValuePad)
	padc[0] = 9
	if pad[0] != 1 {
		t.Error("copy of pad shares bytes with original")
	}

	raw := &tagfile.Raw{Lead: []byte{0, 0}, Data: []byte{1, 2, 3}}
	rawc := raw.Copy().(*tagfile.Raw)
	rawc.Data[0] = 9
	rawc.Lead[0] = 9
	if raw.Data[0] != 1 || raw.Lead[0] != 0 {
		t.Error("copy of raw shares bytes with original")
	}

	ref := tagfile.NewTagRef(tagfile.MakeCode("bitm"), "a")
	refc := ref.Copy().(*tagfile.TagRef)
	refc.SetName("b")
	if ref.Name != "a" {
		t.Error("copy of reference shares name with original")
	}
}

type vtest struct {
	v tagfile.Value
	s string
}

func compareStrings(t *testing.T, vts ...vtest) {
	for _, vt := range vts {
		if vt.v.String() != vt.s {
			t.Errorf("unexpected result from String method of value %q (%q expected, got %q)", vt.v.Type().String(), vt.s, vt.v.String())
		}
	}
}

func TestValueString(t *testing.T) {
	compareStrings(t,
		vtest{tagfile.ValueString("test string"), "test string"},
		vtest{tagfile.ValueVarString("test\000string"), "test\000string"},

		vtest{tagfile.ValueInt(42), "42"},
		vtest{tagfile.ValueInt(-42), "-42"},
		vtest{tagfile.ValueUint(4294967295), "4294967295"},
		vtest{tagfile.ValueEnum(3), "3"},
		vtest{tagfile.ValueFlags(0x1F), "0x1f"},

		vtest{tagfile.ValueFloat(8388607.314159), "8388607.5"},
		vtest{tagfile.ValueFloat(math.Pi), "3.1415927"},
		vtest{tagfile.ValueFloat(-math.Phi), "-1.618034"},
		vtest{tagfile.ValueFloat(math.Inf(1)), "+Inf"},
		vtest{tagfile.ValueFloat(math.Inf(-1)), "-Inf"},
		vtest{tagfile.ValueFloat(math.NaN()), "NaN"},

		vtest{tagfile.ValueVector2{X: 1, Y: -2}, "1, -2"},
		vtest{tagfile.ValueVector3{X: 1, Y: 2, Z: 0.5}, "1, 2, 0.5"},
		vtest{tagfile.ValueQuaternion{I: 0, J: 0, K: 0, W: 1}, "0, 0, 0, 1"},
		vtest{tagfile.ValueColor{A: 1, R: 0.5, G: 0.25, B: 0}, "1, 0.5, 0.25, 0"},
		vtest{tagfile.ValueColor8{A: 255, R: 128, G: 64, B: 0}, "255, 128, 64, 0"},
		vtest{tagfile.ValueBounds{Min: 0.5, Max: 2}, "0.5 .. 2"},
		vtest{tagfile.ValueShortBounds{Min: -3, Max: 7}, "-3 .. 7"},
		vtest{tagfile.ValuePad(make([]byte, 12)), "pad(12)"},

		vtest{tagfile.NewTagRef(tagfile.MakeCode("bitm"), `ui\cursor`), `bitm:ui\cursor`},
		vtest{tagfile.NewTagRef(tagfile.MakeCode("hmt"), `ui\text`), `hmt :ui\text`},
		vtest{&tagfile.TagRef{Group: tagfile.NullCode}, "null"},
		vtest{&tagfile.Block{Elements: []*tagfile.Element{{}, {}}}, "Block(count:2)"},
		vtest{&tagfile.Raw{Data: []byte("abc")}, "Raw(len:3)"},
	)
}

func TestValueFlags_Has(t *testing.T) {
	f := tagfile.ValueFlags(0x5)
	if !f.Has(0) || f.Has(1) || !f.Has(2) {
		t.Error("unexpected result from Has")
	}
}

func TestValuePad_IsZero(t *testing.T) {
	if !tagfile.ValuePad(nil).IsZero() || !(tagfile.ValuePad{0, 0}).IsZero() {
		t.Error("expected zero padding")
	}
	if (tagfile.ValuePad{0, 1}).IsZero() {
		t.Error("expected non-zero padding")
	}
}

func TestBlock(t *testing.T) {
	var b tagfile.Block
	a, c, d := tagfile.NewElement(), tagfile.NewElement(), tagfile.NewElement()
	b.Append(a, c, d)
	if b.Count != 3 || b.Len() != 3 {
		t.Fatalf("expected 3 elements, got count %d, len %d", b.Count, b.Len())
	}
	b.Remove(1)
	if b.Count != 2 || b.Elements[0] != a || b.Elements[1] != d {
		t.Errorf("unexpected elements after Remove")
	}
	b.Remove(5)
	if b.Count != 2 {
		t.Errorf("Remove out of range changed the block")
	}
	b.Count = 7
	b.Sync()
	if b.Count != 2 {
		t.Errorf("Sync did not reset count")
	}
	var nb *tagfile.Block
	if nb.Len() != 0 {
		t.Errorf("expected nil block to be empty")
	}
}

func TestRawSetData(t *testing.T) {
	var r tagfile.Raw
	r.SetData([]byte{1, 2, 3, 4})
	if r.Size != 4 || len(r.Data) != 4 {
		t.Errorf("unexpected raw %+v", r)
	}
}
