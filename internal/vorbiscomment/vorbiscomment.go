// Package vorbiscomment implements the Vorbis Comment tag codec
// (spec.md §4.3.5): the vendor string, the little-endian-length-prefixed
// "KEY=value" entry list, key validity, and METADATA_BLOCK_PICTURE /
// legacy COVERART attachment handling shared by FLAC, Ogg Vorbis, Ogg
// Opus, and Ogg Speex. Grounded on dhowden/tag's flac.go
// (readVorbisComment/parseComment: vendor-then-count-then-entries
// layout, lower-cased key lookup) generalized to a full read/write
// entry list instead of a one-shot map, since dhowden/tag never writes
// a tag back.
package vorbiscomment

import (
	"encoding/binary"
	"strings"

	"github.com/silvertag/audiotags/internal/errs"
)

// Entry is one "KEY=value" pair, preserving the original key casing
// (spec.md: Vorbis keys are case-insensitive for lookup but round-trip
// their original casing) and insertion order.
type Entry struct {
	Key   string
	Value string
}

// Comment is the parsed comment block: vendor string plus the entry
// list, in on-disk order.
type Comment struct {
	Vendor  string
	Entries []Entry
}

// ValidKeyChar reports whether r is legal in a Vorbis Comment key: ASCII
// 0x20-0x7D excluding '=' (the Vorbis I spec's field name charset).
func ValidKeyChar(r rune) bool {
	return r >= 0x20 && r <= 0x7D && r != '='
}

// ValidateKey checks every character of key against ValidKeyChar.
func ValidateKey(key string) error {
	if key == "" {
		return errs.New(errs.UnsupportedTag, "Vorbis Comment key must not be empty")
	}
	for _, r := range key {
		if !ValidKeyChar(r) {
			return errs.New(errs.UnsupportedTag, "Vorbis Comment key %q contains invalid character %q", key, r)
		}
	}
	return nil
}

// Parse decodes a raw Vorbis Comment packet/block body (the bytes
// immediately after any container-specific framing, e.g. FLAC's block
// header or Ogg's "OpusTags"/"\x03vorbis" packet signature).
func Parse(b []byte) (Comment, error) {
	off := 0
	vendor, n, err := readLengthPrefixed(b, off)
	if err != nil {
		return Comment{}, err
	}
	off = n

	if off+4 > len(b) {
		return Comment{}, errs.New(errs.SizeMismatch, "Vorbis Comment truncated before entry count")
	}
	count := binary.LittleEndian.Uint32(b[off : off+4])
	off += 4

	c := Comment{Vendor: vendor}
	for i := uint32(0); i < count; i++ {
		raw, next, err := readLengthPrefixed(b, off)
		if err != nil {
			return Comment{}, err
		}
		off = next

		eq := strings.IndexByte(raw, '=')
		if eq < 0 {
			continue // malformed entry, skip rather than abort the whole tag
		}
		c.Entries = append(c.Entries, Entry{Key: raw[:eq], Value: raw[eq+1:]})
	}
	return c, nil
}

func readLengthPrefixed(b []byte, off int) (string, int, error) {
	if off+4 > len(b) {
		return "", off, errs.New(errs.SizeMismatch, "Vorbis Comment truncated before length prefix")
	}
	n := binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	if off+int(n) > len(b) {
		return "", off, errs.New(errs.SizeMismatch, "Vorbis Comment entry length %d exceeds remaining data", n)
	}
	s := string(b[off : off+int(n)])
	return s, off + int(n), nil
}

// Serialize renders c back to its on-disk packet body.
func Serialize(c Comment) []byte {
	var out []byte
	out = appendLengthPrefixed(out, c.Vendor)

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(c.Entries)))
	out = append(out, count[:]...)

	for _, e := range c.Entries {
		out = appendLengthPrefixed(out, e.Key+"="+e.Value)
	}
	return out
}

func appendLengthPrefixed(out []byte, s string) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(s)))
	out = append(out, n[:]...)
	return append(out, s...)
}

// Get returns the first entry's value for a case-insensitive key match,
// or "" if absent.
func (c Comment) Get(key string) string {
	for _, e := range c.Entries {
		if strings.EqualFold(e.Key, key) {
			return e.Value
		}
	}
	return ""
}

// GetAll returns every entry's value for a case-insensitive key match,
// in insertion order (spec.md §8 scenario 5: repeated ARTIST entries).
func (c Comment) GetAll(key string) []string {
	var out []string
	for _, e := range c.Entries {
		if strings.EqualFold(e.Key, key) {
			out = append(out, e.Value)
		}
	}
	return out
}
