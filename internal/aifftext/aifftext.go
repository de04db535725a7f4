// Package aifftext implements the AIFF text chunk tag codec (spec.md
// §4.3.7): the NAME/AUTH/"(c) " whole-chunk text fields, repeatable
// ANNO annotation chunks, and the structured COMT comment list
// (timestamp + marker ID + text per entry). Grounded on
// original_source's lofty iff/aiff/read.rs, whose chunk dispatch loop
// shows the exact AiffTextChunks{name, author, copyright, annotations,
// comments} shape and the COMT sub-format (big-endian u16 count, then
// per-entry u32 timestamp + u16 marker ID + u16 size + text).
package aifftext

import (
	"strings"

	"github.com/silvertag/audiotags/internal/errs"
)

// Comment is one COMT entry: a SMPTE-style timestamp, an optional
// marker ID referencing a MARK chunk, and free text.
type Comment struct {
	Timestamp uint32
	MarkerID  uint16
	Text      string
}

// Tag is the aggregate of every text-bearing chunk an AIFF/AIFC file
// can carry. All fields are optional; an all-empty Tag carries no
// information (mirroring lofty's "all chunks absent -> no tag" rule).
type Tag struct {
	Name        string
	Author      string
	Copyright   string
	Annotations []string
	Comments    []Comment
}

// IsEmpty reports whether every field is unset.
func (t Tag) IsEmpty() bool {
	return t.Name == "" && t.Author == "" && t.Copyright == "" &&
		len(t.Annotations) == 0 && len(t.Comments) == 0
}

// TrimPad strips the single trailing NUL pad byte IFF chunk readers
// leave on odd-length text when they don't stop exactly at chunk size.
func TrimPad(s string) string {
	return strings.TrimSuffix(s, "\x00")
}

// PadToEven appends a NUL pad byte if s has odd length, as IFF chunk
// bodies must always occupy an even number of bytes on disk.
func PadToEven(s string) string {
	if len(s)%2 == 1 {
		return s + "\x00"
	}
	return s
}

// ParseComments decodes a COMT chunk body (after any chunk-level
// framing has already been stripped by the container reader).
func ParseComments(b []byte) ([]Comment, error) {
	if len(b) < 2 {
		return nil, nil
	}
	count := beUint16(b[0:2])
	off := 2
	var out []Comment
	for i := 0; i < int(count); i++ {
		if off+8 > len(b) {
			return nil, errs.New(errs.SizeMismatch, "AIFF COMT chunk truncated before entry %d", i)
		}
		ts := beUint32(b[off : off+4])
		marker := beUint16(b[off+4 : off+6])
		size := beUint16(b[off+6 : off+8])
		off += 8
		if off+int(size) > len(b) {
			return nil, errs.New(errs.SizeMismatch, "AIFF COMT entry %d text exceeds remaining data", i)
		}
		text := string(b[off : off+int(size)])
		off += int(size)
		if size%2 == 1 {
			off++
		}
		out = append(out, Comment{Timestamp: ts, MarkerID: marker, Text: text})
	}
	return out, nil
}

// SerializeComments renders a COMT chunk body from comments.
func SerializeComments(comments []Comment) []byte {
	var out []byte
	out = appendBE16(out, uint16(len(comments)))
	for _, c := range comments {
		out = appendBE32(out, c.Timestamp)
		out = appendBE16(out, c.MarkerID)
		out = appendBE16(out, uint16(len(c.Text)))
		out = append(out, c.Text...)
		if len(c.Text)%2 == 1 {
			out = append(out, 0)
		}
	}
	return out
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func appendBE16(out []byte, v uint16) []byte {
	return append(out, byte(v>>8), byte(v))
}
func appendBE32(out []byte, v uint32) []byte {
	return append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
