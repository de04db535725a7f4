// Package ape implements the APEv1/APEv2 tag codec (spec.md §4.3.3):
// the 32-byte APETAGEX header/footer, item (key, flags, value) triples,
// and the key validity rules APE items must satisfy. Grounded on
// llehouerou-go-mp3's trailing_tags_test.go (APETAGEX preamble/version/
// size/item-count/flags layout) and original_source's
// lofty/src/ape/tag/{read,item}.rs (item loop, invalid-key list, key
// length/charset rules); dhowden/tag has no APE support at all.
package ape

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/silvertag/audiotags/internal/errs"
)

// Preamble is the fixed 8-byte APE tag signature.
const Preamble = "APETAGEX"

// HeaderFooterSize is the fixed size of either the header or footer
// structure (32 bytes total, including the 8-byte preamble).
const HeaderFooterSize = 32

// invalidKeys is the set of APE item keys that collide with other tag
// formats and must never appear (lofty's ape/tag/item.rs INVALID_KEYS).
var invalidKeys = map[string]bool{
	"ID3": true, "TAG": true, "OGGS": true, "MP+": true,
}

// ItemType discriminates an APE item's value kind (lofty's ItemValue,
// flags bits 1-2 of the per-item flags word).
type ItemType int

const (
	ItemText ItemType = iota
	ItemBinary
	ItemLocator
)

// Item is one APE tag entry.
type Item struct {
	Key      string
	Type     ItemType
	ReadOnly bool
	Text     string // valid for ItemText, ItemLocator
	Binary   []byte // valid for ItemBinary
}

// Header (or footer, same 32-byte layout) precedes/follows the item list.
type Header struct {
	Version   uint32 // 1000 = APEv1, 2000 = APEv2
	Size      uint32 // size of the tag, including the footer, excluding the header
	ItemCount uint32
	HasHeader bool
	HasFooter bool
	IsHeader  bool
	ReadOnly  bool
}

const (
	flagHasHeader = 1 << 31
	flagHasFooter = 1 << 30
	flagIsHeader  = 1 << 29
	flagReadOnly  = 1 << 0
)

// ParseHeader decodes a 32-byte APE header/footer structure (the caller
// has already matched the 8-byte "APETAGEX" preamble and is positioned at
// byte 8).
func ParseHeader(b []byte) (Header, error) {
	if len(b) != HeaderFooterSize-8 {
		return Header{}, errs.New(errs.SizeMismatch, "APE header/footer body must be %d bytes, got %d", HeaderFooterSize-8, len(b))
	}
	version := binary.LittleEndian.Uint32(b[0:4])
	size := binary.LittleEndian.Uint32(b[4:8])
	itemCount := binary.LittleEndian.Uint32(b[8:12])
	flags := binary.LittleEndian.Uint32(b[12:16])
	return Header{
		Version:   version,
		Size:      size,
		ItemCount: itemCount,
		HasHeader: flags&flagHasHeader != 0,
		HasFooter: flags&flagHasFooter != 0,
		IsHeader:  flags&flagIsHeader != 0,
		ReadOnly:  flags&flagReadOnly != 0,
	}, nil
}

// SerializeHeader renders h (plus the preamble) back to its 32-byte wire
// form.
func SerializeHeader(h Header) []byte {
	out := make([]byte, HeaderFooterSize)
	copy(out[0:8], Preamble)
	binary.LittleEndian.PutUint32(out[8:12], h.Version)
	binary.LittleEndian.PutUint32(out[12:16], h.Size)
	binary.LittleEndian.PutUint32(out[16:20], h.ItemCount)
	var flags uint32
	if h.HasHeader {
		flags |= flagHasHeader
	}
	if h.HasFooter {
		flags |= flagHasFooter
	}
	if h.IsHeader {
		flags |= flagIsHeader
	}
	if h.ReadOnly {
		flags |= flagReadOnly
	}
	binary.LittleEndian.PutUint32(out[20:24], flags)
	return out
}

// ValidateKey checks the key-validity rules lofty's ApeItem::new enforces:
// not one of the reserved format-collision keys, length 2-255, and every
// character in the printable ASCII range 0x20-0x7E.
func ValidateKey(key string) error {
	if invalidKeys[strings.ToUpper(key)] {
		return errs.New(errs.UnsupportedTag, "APE item key %q is reserved", key)
	}
	if len(key) < 2 || len(key) > 255 {
		return errs.New(errs.UnsupportedTag, "APE item key %q has invalid length %d", key, len(key))
	}
	for _, r := range key {
		if r < 0x20 || r > 0x7E {
			return errs.New(errs.UnsupportedTag, "APE item key %q contains invalid character %q", key, r)
		}
	}
	return nil
}

// ParseItems decodes header.ItemCount items from b, the tag body
// immediately following the header (or, for a footer-first read, the
// region preceding it). Malformed items (bad key, zero length) are
// skipped rather than aborting the whole tag, mirroring lofty's
// read_ape_tag_with_header behaviour of logging and continuing.
func ParseItems(b []byte, itemCount uint32) ([]Item, error) {
	var items []Item
	off := 0
	for i := uint32(0); i < itemCount; i++ {
		if off+8 > len(b) {
			break
		}
		valueSize := binary.LittleEndian.Uint32(b[off : off+4])
		flags := binary.LittleEndian.Uint32(b[off+4 : off+8])
		off += 8

		keyEnd := off
		for keyEnd < len(b) && b[keyEnd] != 0 {
			keyEnd++
		}
		if keyEnd >= len(b) {
			break
		}
		key := string(b[off:keyEnd])
		off = keyEnd + 1

		if !utf8.ValidString(key) {
			off += int(valueSize)
			continue
		}
		if err := ValidateKey(key); err != nil {
			off += int(valueSize)
			continue
		}
		if valueSize == 0 {
			continue
		}
		if off+int(valueSize) > len(b) {
			break
		}
		value := b[off : off+int(valueSize)]
		off += int(valueSize)

		readOnly := flags&1 == 1
		itemType := ItemType((flags >> 1) & 3)

		item := Item{Key: key, Type: itemType, ReadOnly: readOnly}
		switch itemType {
		case ItemText:
			item.Text = string(value)
		case ItemLocator:
			item.Text = string(value)
		case ItemBinary:
			item.Binary = append([]byte(nil), value...)
		default:
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// SerializeItems renders items back to their on-disk form (key/value
// pairs only, no header/footer).
func SerializeItems(items []Item) []byte {
	var out []byte
	for _, it := range items {
		var value []byte
		switch it.Type {
		case ItemBinary:
			value = it.Binary
		default:
			value = []byte(it.Text)
		}
		var sz [4]byte
		binary.LittleEndian.PutUint32(sz[:], uint32(len(value)))
		out = append(out, sz[:]...)

		var flags [4]byte
		f := uint32(it.Type) << 1
		if it.ReadOnly {
			f |= 1
		}
		binary.LittleEndian.PutUint32(flags[:], f)
		out = append(out, flags[:]...)

		out = append(out, []byte(it.Key)...)
		out = append(out, 0)
		out = append(out, value...)
	}
	return out
}
