package tag

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/errors"
)

// Dump writes to w a readable representation of the tag file decoded from r.
func (d Decoder) Dump(w io.Writer, r io.Reader) (warn, err error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	if w == nil {
		return nil, errors.New("nil writer")
	}

	tree, warn, err := d.Decode(r)
	if err != nil {
		return warn, err
	}

	bw := bufio.NewWriter(w)
	h := tree.Header
	bw.WriteString("Group: ")
	dumpCode(bw, h.Group)
	bw.WriteString("\nEngine: ")
	dumpCode(bw, h.Engine)
	if dialect, err := d.registry().Dialect(h.Engine); err == nil {
		fmt.Fprintf(bw, " (%s)", dialect.Layout)
	}
	fmt.Fprintf(bw, "\nVersion: %d", h.Version)
	fmt.Fprintf(bw, "\nMarker: 0x%04X", h.Marker)
	fmt.Fprintf(bw, "\nChecksum: %08X", h.Checksum)
	fmt.Fprintf(bw, "\nDataLength: %d", h.DataLength)
	if h.Reserved != [36]byte{} {
		bw.WriteString("\nReserved: ")
		dumpBytes(bw, 0, h.Reserved[:])
	}
	bw.WriteString("\nBody: {")
	dumpElement(bw, 1, tree.Root)
	bw.WriteString("\n}\n")

	if err := bw.Flush(); err != nil {
		return warn, err
	}
	return warn, nil
}

func dumpElement(w *bufio.Writer, indent int, e *tagfile.Element) {
	for _, f := range e.Fields {
		if f.Name == "" {
			if pad, ok := f.Value.(tagfile.ValuePad); ok && pad.IsZero() {
				continue
			}
		}
		dumpNewline(w, indent)
		name := f.Name
		if name == "" {
			name = "<pad>"
		}
		w.WriteString(name)
		w.WriteString(": ")
		dumpValue(w, indent, f.Value)
	}
}

func dumpValue(w *bufio.Writer, indent int, v tagfile.Value) {
	switch v := v.(type) {
	case nil:
		w.WriteString("<nil>")
	case tagfile.ValueString:
		dumpString(w, indent, string(v))
	case tagfile.ValueVarString:
		dumpString(w, indent, string(v))
	case tagfile.ValuePad:
		dumpBytes(w, indent, v)
	case *tagfile.TagRef:
		w.WriteString("TagRef ")
		dumpCode(w, v.Group)
		if !v.IsNull() {
			w.WriteByte(' ')
			dumpString(w, indent, v.Name)
		}
	case *tagfile.Block:
		fmt.Fprintf(w, "Block (count:%d) (version:%d) {", len(v.Elements), v.Version)
		for i, e := range v.Elements {
			dumpNewline(w, indent+1)
			fmt.Fprintf(w, "#%d: {", i)
			dumpElement(w, indent+2, e)
			dumpNewline(w, indent+1)
			w.WriteByte('}')
		}
		dumpNewline(w, indent)
		w.WriteByte('}')
	case *tagfile.Raw:
		fmt.Fprintf(w, "Raw (flags:%08X) ", v.Flags)
		if len(v.Lead) > 0 {
			w.WriteString("Lead: ")
			dumpBytes(w, indent, v.Lead)
			dumpNewline(w, indent+1)
			w.WriteString("Data: ")
		}
		dumpBytes(w, indent, v.Data)
	default:
		fmt.Fprintf(w, "%s(%s)", v.Type(), v.String())
	}
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

func dumpCode(w *bufio.Writer, c tagfile.Code) {
	w.WriteString(c.String())
	fmt.Fprintf(w, " (% 02X)", c[:])
}

func dumpString(w *bufio.Writer, indent int, s string) {
	for _, r := range s {
		if !unicode.IsGraphic(r) {
			dumpBytes(w, indent, []byte(s))
			return
		}
	}
	fmt.Fprintf(w, "(len:%d) ", len(s))
	w.WriteString(strconv.Quote(s))
}

func dumpBytes(w *bufio.Writer, indent int, b []byte) {
	fmt.Fprintf(w, "(len:%d)", len(b))
	const width = 16
	for j := 0; j < len(b); j += width {
		dumpNewline(w, indent+1)
		w.WriteString("| ")
		for i := j; i < j+width; {
			if i < len(b) {
				s := strconv.FormatUint(uint64(b[i]), 16)
				if len(s) == 1 {
					w.WriteString("0")
				}
				w.WriteString(s)
			} else if len(b) < width {
				break
			} else {
				w.WriteString("  ")
			}
			i++
			if i%8 == 0 && i < j+width {
				w.WriteString("  ")
			} else {
				w.WriteString(" ")
			}
		}
		w.WriteString("|")
		n := len(b)
		if j+width < n {
			n = j + width
		}
		for i := j; i < n; i++ {
			if 32 <= b[i] && b[i] <= 126 {
				w.WriteRune(rune(b[i]))
			} else {
				w.WriteByte('.')
			}
		}
		w.WriteByte('|')
	}
}
