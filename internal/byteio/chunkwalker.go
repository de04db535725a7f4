package byteio

import (
	"encoding/binary"
	"io"
)

// SizeWidth is the byte width of a chunk/atom's size field.
type SizeWidth int

const (
	Size32 SizeWidth = 4
	Size64 SizeWidth = 8
)

// ChunkWalker is the small abstraction design note §9 calls for: a single
// chunk-header reader parameterized by endianness and size width, so RIFF
// (32-bit LE), AIFF (32-bit BE) and DFF (64-bit BE) share one
// implementation instead of three copy-pasted loops.
type ChunkWalker struct {
	Order     binary.ByteOrder
	SizeWidth SizeWidth
	IDWidth   int // 4 for RIFF/AIFF/DFF fourCCs
}

// Chunk is one header read from the walker: an identifier and a payload
// size (not including the header itself).
type Chunk struct {
	ID   string
	Size int64
}

// Next reads the next chunk header from r.
func (w ChunkWalker) Next(r io.Reader) (Chunk, error) {
	id, err := ReadString(r, w.IDWidth)
	if err != nil {
		return Chunk{}, err
	}
	switch w.SizeWidth {
	case Size64:
		b, err := ReadBytes(r, 8)
		if err != nil {
			return Chunk{}, err
		}
		return Chunk{ID: id, Size: int64(w.Order.Uint64(b))}, nil
	default:
		b, err := ReadBytes(r, 4)
		if err != nil {
			return Chunk{}, err
		}
		return Chunk{ID: id, Size: int64(w.Order.Uint32(b))}, nil
	}
}

// RIFFWalker walks little-endian 32-bit RIFF/LIST chunks (WAV).
var RIFFWalker = ChunkWalker{Order: binary.LittleEndian, SizeWidth: Size32, IDWidth: 4}

// AIFFWalker walks big-endian 32-bit FORM chunks (AIFF).
var AIFFWalker = ChunkWalker{Order: binary.BigEndian, SizeWidth: Size32, IDWidth: 4}

// DFFWalker walks big-endian 64-bit FRM8 chunks (Philips DSDIFF).
var DFFWalker = ChunkWalker{Order: binary.BigEndian, SizeWidth: Size64, IDWidth: 4}

// DSFWalker walks little-endian 64-bit Sony DSF chunks. Unlike the other
// three walkers, a DSF chunk's size field counts its own 12-byte header,
// so callers must subtract that header width from Chunk.Size to get the
// payload length.
var DSFWalker = ChunkWalker{Order: binary.LittleEndian, SizeWidth: Size64, IDWidth: 4}

// Padded rounds n up to the next even number, the RIFF/AIFF chunk padding
// rule from spec.md §4.2 ("Chunks are padded to even length; the pad byte
// is not counted in the size").
func Padded(n int64) int64 {
	if n%2 != 0 {
		return n + 1
	}
	return n
}
