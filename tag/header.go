package tag

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/tagtools/tagfile"
)

// HeaderSize is the size of the header of every tag file.
const HeaderSize = 64

// Offsets of header fields.
const (
	offsetGroup      = 0x24
	offsetChecksum   = 0x28
	offsetHeaderSize = 0x2C
	offsetDataLength = 0x30
	offsetSpare      = 0x34
	offsetVersion    = 0x38
	offsetMarker     = 0x3A
	offsetEngine     = 0x3C
)

// DefaultMarker is the marker of shipped tag files.
const DefaultMarker = 0x00FF

// Checksum returns the checksum of a body.
func Checksum(body []byte) uint32 {
	return crc32.ChecksumIEEE(body)
}

// readHeader reads the header of a tag file. The engine tag is read first,
// and selects the dialect used to read the remaining fields.
func readHeader(r *Reader, reg *Registry) (h tagfile.Header, d Dialect, err error) {
	b, err := r.Bytes(HeaderSize)
	if err != nil {
		return h, d, err
	}
	copy(h.Engine[:], b[offsetEngine:])
	if d, err = reg.Dialect(h.Engine); err != nil {
		return h, d, err
	}
	o := d.Order

	copy(h.Reserved[:], b[:offsetGroup])
	copy(h.Group[:], b[offsetGroup:])
	h.Checksum = o.Uint32(b[offsetChecksum:])
	if size := o.Uint32(b[offsetHeaderSize:]); size != HeaderSize {
		return h, d, SchemaViolation{Reason: fmt.Sprintf("header size is %d, expected %d", size, HeaderSize)}
	}
	h.DataLength = o.Uint32(b[offsetDataLength:])
	copy(h.Spare[:], b[offsetSpare:offsetVersion])
	h.Version = o.Uint16(b[offsetVersion:])
	h.Marker = o.Uint16(b[offsetMarker:])
	return h, d, nil
}

// appendHeader returns the bytes of a header in byte order o.
func appendHeader(b []byte, h tagfile.Header, o binary.ByteOrder) []byte {
	var p [HeaderSize]byte
	copy(p[:], h.Reserved[:])
	copy(p[offsetGroup:], h.Group[:])
	o.PutUint32(p[offsetChecksum:], h.Checksum)
	o.PutUint32(p[offsetHeaderSize:], HeaderSize)
	o.PutUint32(p[offsetDataLength:], h.DataLength)
	copy(p[offsetSpare:], h.Spare[:])
	o.PutUint16(p[offsetVersion:], h.Version)
	o.PutUint16(p[offsetMarker:], h.Marker)
	copy(p[offsetEngine:], h.Engine[:])
	return append(b, p[:]...)
}

// NewTree returns a tree of the given group for the given engine, with a
// default root element. Returns UnsupportedSchemaVersion if the registry has
// no body for the combination.
func (r *Registry) NewTree(group, engine tagfile.Code) (*tagfile.Tree, error) {
	d, err := r.Dialect(engine)
	if err != nil {
		return nil, err
	}
	body, err := r.Body(group, d)
	if err != nil {
		return nil, err
	}
	return &tagfile.Tree{
		Header: tagfile.Header{
			Group:   group,
			Version: r.Schema(group).Version,
			Marker:  DefaultMarker,
			Engine:  engine,
		},
		Root: body.New(),
	}, nil
}
