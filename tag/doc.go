// The tag package implements a decoder and encoder for the binary tag format.
//
// A tag file consists of a 64-byte header followed by a body. The engine tag
// at the end of the header selects a Dialect, which determines the byte order
// of numeric fields, the Layout of the body, and whether reference names are
// null-terminated. The group of the header, together with the layout, selects
// the Struct describing the body from a Registry.
//
// The body is made of scopes. A scope is either the top-level record, or every
// element of one block. Within a scope, the fixed records of all elements come
// first. They are followed by the content of each non-empty block of the
// scope, depth-first in declared order, then by the names of references and
// the content of variable strings, then by the payloads of raw data fields.
// Each block's content begins with a 16-byte header holding a signature, the
// element version, the element count and the element stride.
//
// Decoding returns a fatal error, and a list of warnings. Warnings indicate
// content that was read successfully but does not round-trip cleanly, such as
// trailing bytes, or a checksum that does not match the body.
package tag
