// Package id3v1 implements the 128-byte trailing ID3v1/ID3v1.1 tag codec
// (spec.md §4.3.1). The teacher's retrieved sources no longer carry an
// id3v1.go (only the hash.go/sum.go/tag.go call sites and id3v1_test.go
// survived retrieval), so the exact layout below is taken directly from
// spec.md §4.3.1/§8 scenario 1 and cross-checked against the original
// Rust source's lofty/src/id3/v1/read.rs and write.rs (see DESIGN.md).
package id3v1

import (
	"strconv"
	"strings"

	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/textcodec"
)

// Size is the fixed length of an ID3v1/ID3v1.1 tag.
const Size = 128

// Tag is the byte-exact ID3v1 representation (spec.md §3 "Format-specific
// tags": preserve all native fields with no ItemKey mapping is trivial
// here since every ID3v1 field maps 1:1 to an ItemKey).
type Tag struct {
	Title, Artist, Album, Comment string
	Year                          string // four ASCII digits (BestAttempt/Relaxed: the trimmed digit run), or "" if absent/invalid
	Track                         int    // 0 = absent (ID3v1, no track byte)
	IsV1Dot1                      bool
	Genre                         byte // 255 = absent
}

// ErrNotID3v1 is returned by Parse when b doesn't start with "TAG".
var ErrNotID3v1 = errs.New(errs.FakeTag, "missing \"TAG\" signature")

// Parse decodes a 128-byte ID3v1 tail (spec.md §4.3.1, scenario 1).
func Parse(b []byte, mode gentag.ParsingMode) (Tag, error) {
	if len(b) != Size {
		return Tag{}, errs.New(errs.SizeMismatch, "ID3v1 tag must be %d bytes, got %d", Size, len(b))
	}
	if string(b[0:3]) != "TAG" {
		return Tag{}, ErrNotID3v1
	}

	var t Tag
	t.Title = trimLatin1(b[3:33])
	t.Artist = trimLatin1(b[33:63])
	t.Album = trimLatin1(b[63:93])

	// Year parse in Strict mode requires exactly four ASCII digits;
	// otherwise it is simply absent rather than an error (spec.md
	// §4.3.1). BestAttempt/Relaxed accept it even with non-digit bytes
	// trimmed, best-effort.
	yearBytes := b[93:97]
	switch {
	case allASCIIDigits(yearBytes):
		t.Year = string(yearBytes)
	case mode != gentag.Strict:
		if y := strings.TrimRight(trimLatin1(yearBytes), " "); allASCIIDigits([]byte(y)) && len(y) > 0 {
			t.Year = y
		}
	}

	comment := b[97:127]
	// ID3v1.1: byte 28 of the comment field (index 125) is zero and byte
	// 29 (index 126) is non-zero => track number lives in byte 29.
	if comment[28] == 0 && comment[29] != 0 {
		t.IsV1Dot1 = true
		t.Track = int(comment[29])
		t.Comment = trimLatin1(comment[:28])
	} else {
		t.Comment = trimLatin1(comment)
	}

	t.Genre = b[127]
	return t, nil
}

func allASCIIDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func trimLatin1(b []byte) string {
	s, _ := textcodec.Decode(textcodec.Latin1, b)
	return strings.TrimRight(s, "\x00")
}

// Serialize renders t back to its 128-byte wire form, null-padding every
// field (spec.md §4.3.1).
func Serialize(t Tag) []byte {
	out := make([]byte, Size)
	copy(out[0:3], "TAG")
	putLatin1(out[3:33], t.Title)
	putLatin1(out[33:63], t.Artist)
	putLatin1(out[63:93], t.Album)
	if len(t.Year) == 4 {
		copy(out[93:97], t.Year)
	}
	if t.IsV1Dot1 {
		putLatin1(out[97:125], t.Comment)
		out[125] = 0
		out[126] = byte(t.Track)
	} else {
		putLatin1(out[97:127], t.Comment)
	}
	out[127] = t.Genre
	return out
}

func putLatin1(dst []byte, s string) {
	b, err := textcodec.Encode(textcodec.Latin1, s)
	if err != nil {
		b = []byte(s)
	}
	n := copy(dst, b)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// ToGeneric converts an ID3v1.Tag to the format-neutral gentag.Tag
// (spec.md §4.4).
func ToGeneric(t Tag) gentag.Tag {
	g := gentag.Tag{Type: gentag.ID3v1}
	if t.Title != "" {
		g.Set(itemkey.TrackTitle, gentag.Text(t.Title))
	}
	if t.Artist != "" {
		g.Set(itemkey.TrackArtist, gentag.Text(t.Artist))
	}
	if t.Album != "" {
		g.Set(itemkey.AlbumTitle, gentag.Text(t.Album))
	}
	if t.Year != "" {
		g.Set(itemkey.Year, gentag.Text(t.Year))
	}
	if t.Comment != "" {
		g.Set(itemkey.Comment, gentag.Text(t.Comment))
	}
	if t.Track != 0 {
		g.Set(itemkey.TrackNumber, gentag.Text(strconv.Itoa(t.Track)))
	}
	if t.Genre != 255 {
		if name, ok := GenreName(t.Genre); ok {
			g.Set(itemkey.Genre, gentag.Text(name))
		}
	}
	return g
}

// FromGeneric builds a Tag from a generic gentag.Tag, dropping anything
// that doesn't fit ID3v1's fixed fields (spec.md §4.4: "if unmapped, the
// item is dropped").
func FromGeneric(g gentag.Tag) Tag {
	var t Tag
	t.Title = g.TextOf(itemkey.TrackTitle)
	t.Artist = g.TextOf(itemkey.TrackArtist)
	t.Album = g.TextOf(itemkey.AlbumTitle)
	t.Year = g.TextOf(itemkey.Year)
	t.Comment = g.TextOf(itemkey.Comment)
	t.Genre = 255
	if id, ok := GenreID(g.TextOf(itemkey.Genre)); ok {
		t.Genre = id
	}
	if n := g.TextOf(itemkey.TrackNumber); n != "" {
		if v, err := strconv.Atoi(n); err == nil && v > 0 && v < 256 {
			t.Track = v
			t.IsV1Dot1 = true
		}
	}
	return t
}
