// Package ilst implements the MP4/M4A "ilst" metadata atom tag codec
// (spec.md §4.3.4): the iTunes-style data-atom type codes, the trkn/disk
// index-and-total pairs, freeform "----" (mean/name/data) atoms, and the
// generic conversion. Grounded on dhowden/tag's mp4.go (readAtomData's
// atomTypes class table, readCustomAtom's mean/name/data handling,
// trkn/disk pairing, genre-ID/genre-name fallback) generalized to a
// full read/write atom model instead of a one-shot decode-into-map; the
// box walk that locates the ilst atom in the first place lives in
// internal/container/mp4, which hands this package the flattened list
// of (key, values) pairs below.
package ilst

import "encoding/binary"

// DataType is the iTunes "well-known type" in a data atom's 4-byte
// class field (dhowden/tag's atomTypes, extended with the BE signed/
// unsigned integer classes Apple's spec also defines).
type DataType uint32

const (
	TypeImplicit   DataType = 0
	TypeUTF8       DataType = 1
	TypeUTF16      DataType = 2
	TypeJPEG       DataType = 13
	TypePNG        DataType = 14
	TypeBESignedInt DataType = 21
	TypeBEUnsignedInt DataType = 22
)

// Value is one "data" sub-atom: a typed, possibly-repeated payload. A
// key may carry more than one Value (multiple covr pictures, or, by
// convention, repeated freeform entries).
type Value struct {
	Type DataType
	Data []byte
}

func (v Value) Text() string { return string(v.Data) }

// Uint extracts a big-endian unsigned integer of whatever width Data
// happens to be (iTunes uses 1, 2, 4, or 8 byte widths depending on
// atom, e.g. a single byte for "cpil"/"pgap", two bytes for "tmpo").
func (v Value) Uint() uint64 {
	var n uint64
	for _, b := range v.Data {
		n = n<<8 | uint64(b)
	}
	return n
}

// Atom is one ilst child box after flattening: Name is the raw 4-byte
// atom name for standard atoms (e.g. "\xa9nam", "trkn", "covr") or the
// literal "----" for freeform atoms, in which case Mean/FreeformName
// hold the "mean"/"name" sub-atom payloads (dhowden/tag's readCustomAtom;
// "mean" is conventionally "com.apple.iTunes").
type Atom struct {
	Name         string
	Mean         string
	FreeformName string
	Values       []Value
}

// IsFreeform reports whether a is a "----" atom.
func (a Atom) IsFreeform() bool { return a.Name == "----" }

// TrackDisc decodes an 8-byte trkn/disk payload (2 reserved bytes, a
// big-endian uint16 index, a big-endian uint16 total, 2 reserved bytes)
// into (index, total). dhowden/tag's mp4.go instead reads a single byte
// at a fixed offset, which only works for indices/totals under 256; this
// reads the full two-byte field Apple's spec actually defines.
func TrackDisc(data []byte) (index, total int) {
	if len(data) < 6 {
		return 0, 0
	}
	index = int(binary.BigEndian.Uint16(data[2:4]))
	if len(data) >= 8 {
		total = int(binary.BigEndian.Uint16(data[4:6]))
	}
	return index, total
}

// EncodeTrackDisc renders (index, total) back to the 8-byte trkn/disk
// payload form.
func EncodeTrackDisc(index, total int) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint16(out[2:4], uint16(index))
	binary.BigEndian.PutUint16(out[4:6], uint16(total))
	return out
}

// freeformKey renders a freeform atom's identity into the single string
// key the generic conversion layer and Remainder use for lookups.
func freeformKey(mean, name string) string {
	return "----:" + mean + ":" + name
}
