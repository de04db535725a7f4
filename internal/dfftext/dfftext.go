// Package dfftext implements the DSDIFF (DFF) text chunk tag codec
// (spec.md §4.3.7 analog for DSD): the "DIIN" Edited Master
// Information sub-chunks (DIAR artist / DITI title) and the "COMT"
// comment list. Grounded on original_source's lofty dsd/dff/read.rs
// (parse_diin_chunk/parse_comt_chunk), whose null-terminated-string and
// fixed 6-byte-timestamp-plus-2-field-header COMT record layout this
// package reproduces.
package dfftext

import (
	"strings"

	"github.com/silvertag/audiotags/internal/errs"
)

// EditedMasterInfo is the DIIN chunk's artist/title pair.
type EditedMasterInfo struct {
	Artist string
	Title  string
}

// Comment is one COMT entry's free text (lofty's DffComment; this
// module drops the record's timestamp/type/reference fields on read,
// matching lofty's own DffComment, which keeps only text).
type Comment struct {
	Text string
}

// Tag is the aggregate of every text-bearing chunk a DFF file can
// carry.
type Tag struct {
	DIIN     *EditedMasterInfo
	Comments []Comment
}

// IsEmpty reports whether the tag carries no information.
func (t Tag) IsEmpty() bool {
	return t.DIIN == nil && len(t.Comments) == 0
}

func trimNulTerminator(b []byte) string {
	return strings.TrimSuffix(string(b), "\x00")
}

// ParseDIIN decodes a DIIN chunk body (the sub-chunk stream after the
// DIIN chunk's own header has already been stripped).
func ParseDIIN(b []byte) (EditedMasterInfo, error) {
	var info EditedMasterInfo
	off := 0
	for off+12 <= len(b) {
		id := string(b[off : off+4])
		size := beUint64(b[off+4 : off+12])
		off += 12
		if off+int(size) > len(b) {
			return EditedMasterInfo{}, errs.New(errs.SizeMismatch, "DFF DIIN sub-chunk %q exceeds remaining data", id)
		}
		body := b[off : off+int(size)]
		off += int(size)
		switch id {
		case "DIAR":
			info.Artist = trimNulTerminator(body)
		case "DITI":
			info.Title = trimNulTerminator(body)
		}
	}
	return info, nil
}

// ParseComments decodes a COMT chunk body: a 2-byte entry count, then
// per entry a 6-byte timestamp, 2-byte comment type, 2-byte comment
// reference, a 4-byte character count, and the text itself.
func ParseComments(b []byte) ([]Comment, error) {
	if len(b) < 2 {
		return nil, nil
	}
	count := beUint16(b[0:2])
	off := 2
	var out []Comment
	for i := 0; i < int(count); i++ {
		if off+12 > len(b) {
			return nil, errs.New(errs.SizeMismatch, "DFF COMT chunk truncated before entry %d", i)
		}
		off += 6 + 2 + 2 // timestamp + cmtType + cmtRef
		count32 := beUint32(b[off : off+4])
		off += 4
		if off+int(count32) > len(b) {
			return nil, errs.New(errs.SizeMismatch, "DFF COMT entry %d text exceeds remaining data", i)
		}
		text := trimNulTerminator(b[off : off+int(count32)])
		off += int(count32)
		out = append(out, Comment{Text: text})
	}
	return out, nil
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func beUint64(b []byte) uint64 {
	var n uint64
	for _, x := range b {
		n = n<<8 | uint64(x)
	}
	return n
}
