package declare

import (
	"fmt"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/tag"
)

// normNumber converts any number type except complex numbers to a float64.
// float64 represents every 32-bit integer exactly.
func normNumber(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func normBytes(v interface{}) ([]byte, bool) {
	switch v := v.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	}
	return nil, false
}

func normString(v interface{}) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

// numbers converts exactly n values to numbers.
func numbers(n int, v []interface{}) ([]float64, error) {
	if len(v) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d values", n, len(v))
	}
	f := make([]float64, n)
	for i, v := range v {
		x, ok := normNumber(v)
		if !ok {
			return nil, fmt.Errorf("value %d: expected number, got %T", i, v)
		}
		f[i] = x
	}
	return f, nil
}

func float32s(n int, v []interface{}) ([]float32, error) {
	f, err := numbers(n, v)
	if err != nil {
		return nil, err
	}
	x := make([]float32, n)
	for i, f := range f {
		x[i] = float32(f)
	}
	return x, nil
}

// value converts the declared values v of a field to a tagfile.Value. cur is
// the current value of the field, which is modified in place for reference
// and raw data fields.
func value(f tag.Field, cur tagfile.Value, v []interface{}) (tagfile.Value, error) {
	if len(v) == 1 {
		if tv, ok := v[0].(tagfile.Value); ok {
			if tv.Type() != f.Kind.ValueType() {
				return nil, fmt.Errorf("%s field cannot hold %s", f.Kind, tv.Type())
			}
			return tv, nil
		}
	}

	switch f.Kind {
	case tag.KindInt8, tag.KindInt16, tag.KindInt32:
		n, err := numbers(1, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueInt(n[0]), nil
	case tag.KindUint8, tag.KindUint16, tag.KindUint32:
		n, err := numbers(1, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueUint(n[0]), nil
	case tag.KindFloat:
		n, err := float32s(1, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueFloat(n[0]), nil
	case tag.KindEnum16, tag.KindEnum32:
		n, err := numbers(1, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueEnum(n[0]), nil
	case tag.KindFlags8, tag.KindFlags16, tag.KindFlags32:
		n, err := numbers(1, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueFlags(n[0]), nil
	case tag.KindString, tag.KindVarString:
		if len(v) != 1 {
			return nil, fmt.Errorf("expected 1 string, got %d values", len(v))
		}
		s, ok := normString(v[0])
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v[0])
		}
		if f.Kind == tag.KindString {
			return tagfile.ValueString(s), nil
		}
		return tagfile.ValueVarString(s), nil
	case tag.KindVector2:
		n, err := float32s(2, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueVector2{X: n[0], Y: n[1]}, nil
	case tag.KindVector3:
		n, err := float32s(3, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueVector3{X: n[0], Y: n[1], Z: n[2]}, nil
	case tag.KindQuaternion:
		n, err := float32s(4, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueQuaternion{I: n[0], J: n[1], K: n[2], W: n[3]}, nil
	case tag.KindRGB:
		n, err := float32s(3, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueColor{R: n[0], G: n[1], B: n[2]}, nil
	case tag.KindRGBA:
		n, err := float32s(4, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueColor{R: n[0], G: n[1], B: n[2], A: n[3]}, nil
	case tag.KindARGB:
		n, err := float32s(4, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueColor{A: n[0], R: n[1], G: n[2], B: n[3]}, nil
	case tag.KindARGB8:
		n, err := numbers(4, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueColor8{A: uint8(n[0]), R: uint8(n[1]), G: uint8(n[2]), B: uint8(n[3])}, nil
	case tag.KindShortBounds:
		n, err := numbers(2, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueShortBounds{Min: int16(n[0]), Max: int16(n[1])}, nil
	case tag.KindBounds:
		n, err := float32s(2, v)
		if err != nil {
			return nil, err
		}
		return tagfile.ValueBounds{Min: n[0], Max: n[1]}, nil
	case tag.KindPad:
		if len(v) != 1 {
			return nil, fmt.Errorf("expected 1 byte slice, got %d values", len(v))
		}
		b, ok := v[0].([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte, got %T", v[0])
		}
		return tagfile.ValuePad(b), nil
	case tag.KindTagRef:
		ref := cur.(*tagfile.TagRef)
		switch len(v) {
		case 1:
		case 2:
			group, ok := normString(v[0])
			if !ok {
				return nil, fmt.Errorf("expected group string, got %T", v[0])
			}
			ref.Group = tagfile.MakeCode(group)
			v = v[1:]
		default:
			return nil, fmt.Errorf("expected 1 or 2 strings, got %d values", len(v))
		}
		name, ok := normString(v[0])
		if !ok {
			return nil, fmt.Errorf("expected name string, got %T", v[0])
		}
		ref.SetName(name)
		return ref, nil
	case tag.KindRaw:
		if len(v) != 1 {
			return nil, fmt.Errorf("expected 1 byte slice, got %d values", len(v))
		}
		b, ok := normBytes(v[0])
		if !ok {
			return nil, fmt.Errorf("expected []byte, got %T", v[0])
		}
		raw := cur.(*tagfile.Raw)
		raw.SetData(b)
		return raw, nil
	}
	return nil, fmt.Errorf("cannot declare %s field", f.Kind)
}
