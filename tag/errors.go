package tag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/errors"
)

// ErrNilTree indicates that Encode received a tree without a root element.
var ErrNilTree = errors.New("tree has no root element")

// TruncatedInput indicates that a read required more bytes than remain in the
// input.
type TruncatedInput struct {
	// Offset is the position of the read.
	Offset int64
	// Need is the number of bytes required by the read.
	Need int64
	// Have is the number of bytes remaining.
	Have int64
}

func (err TruncatedInput) Error() string {
	return fmt.Sprintf("truncated input at %d: need %d bytes, have %d", err.Offset, err.Need, err.Have)
}

// SchemaViolation indicates that the content of a file disagrees with its
// schema, such as a block header whose count or stride does not match.
type SchemaViolation struct {
	// Path is the location of the field within the tree.
	Path string
	// Reason describes the violation.
	Reason string
}

func (err SchemaViolation) Error() string {
	if err.Path == "" {
		return "schema violation: " + err.Reason
	}
	return "schema violation at " + err.Path + ": " + err.Reason
}

// UnsupportedSchemaVersion indicates that no schema is registered for the
// combination of tag group and engine tag.
type UnsupportedSchemaVersion struct {
	Group  tagfile.Code
	Engine tagfile.Code
	// Layout is the layout selected by the engine tag. It is LayoutUnknown if
	// the engine tag itself is not registered.
	Layout Layout
}

func (err UnsupportedSchemaVersion) Error() string {
	if err.Layout == LayoutUnknown {
		return fmt.Sprintf("unsupported engine tag %q", err.Engine.String())
	}
	return fmt.Sprintf("unsupported schema: group %q has no %s body (engine %q)", err.Group.String(), err.Layout, err.Engine.String())
}

// BuildError indicates that a tree cannot be encoded because it does not
// satisfy its schema.
type BuildError struct {
	// Path is the location of the field within the tree.
	Path string
	// Reason describes the problem.
	Reason string
}

func (err BuildError) Error() string {
	if err.Path == "" {
		return "build error: " + err.Reason
	}
	return "build error at " + err.Path + ": " + err.Reason
}

// DataError wraps an error that occurred while decoding byte data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

////////////////////////////////////////////////////////////////
// Warnings

// TrailingData indicates that bytes remain after the body has been read.
type TrailingData struct {
	Offset int64
	Count  int64
}

func (err TrailingData) Error() string {
	return fmt.Sprintf("%d trailing bytes at %d", err.Count, err.Offset)
}

// NonZeroPadding indicates that a padding span, or the unused tail of a fixed
// string, contains non-zero bytes. The bytes are kept in the tree.
type NonZeroPadding struct {
	Offset int64
	Path   string
	Bytes  []byte
}

func (err NonZeroPadding) Error() string {
	return fmt.Sprintf("non-zero padding at %d (%s): % 02X", err.Offset, err.Path, err.Bytes)
}

// CountExceedsMax indicates that a block has more elements than its definition
// allows.
type CountExceedsMax struct {
	Path  string
	Count uint32
	Max   uint32
}

func (err CountExceedsMax) Error() string {
	return fmt.Sprintf("block %s: count %d exceeds maximum %d", err.Path, err.Count, err.Max)
}

// ChecksumMismatch indicates that the checksum stored in the header differs
// from the checksum of the body.
type ChecksumMismatch struct {
	Header   uint32
	Computed uint32
}

func (err ChecksumMismatch) Error() string {
	return fmt.Sprintf("checksum mismatch: header %08X, computed %08X", err.Header, err.Computed)
}

// LengthMismatch indicates that the data length stored in the header differs
// from the length of the body.
type LengthMismatch struct {
	Header uint32
	Actual int64
}

func (err LengthMismatch) Error() string {
	return fmt.Sprintf("length mismatch: header %d, body %d", err.Header, err.Actual)
}
