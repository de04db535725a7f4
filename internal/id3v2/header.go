// Package id3v2 implements the ID3v2.2/2.3/2.4 tag codec (spec.md §4.3.2):
// header and frame parsing, synchsafe vs plain sizing, unsynchronisation,
// the frame variant types, downgrade-on-write to v2.3, and the generic
// conversion mapping. Grounded on dhowden/tag's id3v2.go/id3v2frames.go/
// id3v2metadata.go, generalized from a single flattened map[string]interface{}
// result into a typed Frame list so every variant (comment, picture,
// popularimeter, UFID, ...) keeps its structure instead of losing it to a
// type-switch at read time.
package id3v2

import (
	"io"
	"strings"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
)

// Version is the ID3v2 minor version.
type Version int

const (
	V2_2 Version = 2
	V2_3 Version = 3
	V2_4 Version = 4
)

// Header is the 10-byte ID3v2 tag header (spec.md §4.3.2).
type Header struct {
	Version           Version
	Revision          byte
	Unsynchronisation bool
	ExtendedHeader    bool
	Experimental      bool
	FooterPresent     bool // v2.4 only
	Size              uint32
}

// ParseHeader reads the fixed 10-byte ID3v2 header from r.
func ParseHeader(r io.Reader) (Header, error) {
	b, err := byteio.ReadBytes(r, 10)
	if err != nil {
		return Header{}, err
	}
	if string(b[0:3]) != "ID3" {
		return Header{}, errs.New(errs.UnknownFormat, "missing ID3 signature")
	}

	var h Header
	switch b[3] {
	case 2:
		h.Version = V2_2
	case 3:
		h.Version = V2_3
	case 4:
		h.Version = V2_4
	default:
		return Header{}, errs.ID3v2Err(errs.BadID3v2Version, "unsupported ID3v2 version %d", b[3])
	}
	h.Revision = b[4]

	flags := b[5]
	h.Unsynchronisation = byteio.GetBit(flags, 7)
	h.ExtendedHeader = byteio.GetBit(flags, 6)
	h.Experimental = byteio.GetBit(flags, 5)
	h.FooterPresent = h.Version == V2_4 && byteio.GetBit(flags, 4)

	h.Size = byteio.Unsynchsafe([4]byte{b[6], b[7], b[8], b[9]})
	return h, nil
}

// SerializeHeader renders h back to its 10-byte wire form.
func SerializeHeader(h Header) []byte {
	out := make([]byte, 10)
	copy(out[0:3], "ID3")
	out[3] = byte(h.Version)
	out[4] = h.Revision
	var flags byte
	if h.Unsynchronisation {
		flags |= 1 << 7
	}
	if h.ExtendedHeader {
		flags |= 1 << 6
	}
	if h.Experimental {
		flags |= 1 << 5
	}
	if h.FooterPresent {
		flags |= 1 << 4
	}
	out[5] = flags
	ss := byteio.Synchsafe(h.Size)
	copy(out[6:10], ss[:])
	return out
}

// frameIDLen returns the on-disk frame-header ID width for a version: 3
// bytes in v2.2, 4 bytes in v2.3/v2.4.
func frameIDLen(v Version) int {
	if v == V2_2 {
		return 3
	}
	return 4
}

func isPaddingName(name string) bool {
	return strings.TrimSpace(strings.Trim(name, "\x00")) == ""
}
