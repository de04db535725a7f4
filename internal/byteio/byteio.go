// Package byteio provides the seekable read/write primitives shared by
// every container walker and tag codec: fixed-size reads, big/little
// endian integer decoding, and the synchsafe integer form ID3v2 uses for
// its header and v2.4 frame sizes. Grounded on dhowden/tag's util.go
// (readBytes/readInt/get7BitChunkedInt), generalized to free functions
// over io.Reader and to also support 64-bit big-endian sizes (DFF) and
// writing.
package byteio

import (
	"encoding/binary"
	"io"

	"github.com/silvertag/audiotags/internal/errs"
)

// FileHandle is the capability set spec.md §6 requires of the I/O
// collaborator: seekable read/write with truncate and length.
type FileHandle interface {
	io.Reader
	io.Writer
	io.Seeker
	Truncate(size int64) error
	Length() (int64, error)
}

// ReadBytes reads exactly n bytes from r, wrapping io.ErrUnexpectedEOF /
// io.EOF as errs.IO.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errs.Wrap(err, errs.IO, "read %d bytes", n)
	}
	return b, nil
}

// ReadString reads n bytes and returns them as a raw (Latin-1/ASCII) string.
func ReadString(r io.Reader, n int) (string, error) {
	b, err := ReadBytes(r, n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BEUint32 reads a 4-byte big-endian unsigned integer.
func BEUint32(r io.Reader) (uint32, error) {
	b, err := ReadBytes(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// BEUint64 reads an 8-byte big-endian unsigned integer (DFF chunk sizes).
func BEUint64(r io.Reader) (uint64, error) {
	b, err := ReadBytes(r, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// LEUint32 reads a 4-byte little-endian unsigned integer (RIFF/Vorbis Comments).
func LEUint32(r io.Reader) (uint32, error) {
	b, err := ReadBytes(r, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// BEUintN reads an n-byte (n <= 8) big-endian unsigned integer, the
// generalised form of dhowden/tag's getInt/readInt for arbitrary widths
// (3-byte ID3v2.2 frame sizes, 3-byte FLAC block lengths, ...).
func BEUintN(b []byte) uint64 {
	var n uint64
	for _, x := range b {
		n = n<<8 | uint64(x)
	}
	return n
}

// ReadBEUintN reads n bytes and decodes them as a big-endian integer.
func ReadBEUintN(r io.Reader, n int) (uint64, error) {
	b, err := ReadBytes(r, n)
	if err != nil {
		return 0, err
	}
	return BEUintN(b), nil
}

// Synchsafe encodes n (must be < 2^28) as four bytes with bit 7 of each
// byte clear, per spec.md's Synchsafe integer glossary entry.
func Synchsafe(n uint32) [4]byte {
	return [4]byte{
		byte((n >> 21) & 0x7F),
		byte((n >> 14) & 0x7F),
		byte((n >> 7) & 0x7F),
		byte(n & 0x7F),
	}
}

// Unsynchsafe decodes the four-byte synchsafe form back to a plain
// integer. Generalizes dhowden/tag's get7BitChunkedInt to a fixed 4-byte
// big-endian input (ID3v2Header.Size).
func Unsynchsafe(b [4]byte) uint32 {
	return uint32(b[0])<<21 | uint32(b[1])<<14 | uint32(b[2])<<7 | uint32(b[3])
}

// ReadSynchsafe reads 4 bytes and decodes them as a synchsafe integer.
func ReadSynchsafe(r io.Reader) (uint32, error) {
	b, err := ReadBytes(r, 4)
	if err != nil {
		return 0, err
	}
	return Unsynchsafe([4]byte{b[0], b[1], b[2], b[3]}), nil
}

// GetBit reports whether bit n (0 = LSB) of b is set. Ported verbatim from
// dhowden/tag's util.go getBit.
func GetBit(b byte, n uint) bool {
	x := byte(1 << n)
	return b&x == x
}

// Unsynchroniser is an io.Reader that collapses every 0xFF 0x00 pair back
// to a single 0xFF, implementing the streaming unsynchronisation removal
// transform from spec.md's Unsynchronisation glossary entry. Ported from
// dhowden/tag's id3v2.go unsynchroniser, generalized to exported use by
// every ID3v2 frame reader (tag-wide in v2.4, per-frame in v2.3).
type Unsynchroniser struct {
	io.Reader
	prevFF bool
}

func (u *Unsynchroniser) Read(p []byte) (int, error) {
	b := make([]byte, 1)
	i := 0
	for i < len(p) {
		n, err := u.Reader.Read(b)
		if err != nil || n == 0 {
			return i, err
		}
		if u.prevFF && b[0] == 0x00 {
			u.prevFF = false
			continue
		}
		p[i] = b[0]
		i++
		u.prevFF = b[0] == 0xFF
	}
	return i, nil
}

// WriteUnsynchronised writes b to w, inserting a 0x00 after a 0xFF byte
// when that 0xFF is the last byte, or is followed by 0x00 or by a byte
// whose top three bits are set (a frame-sync-like pattern); any other
// 0xFF is written as is. Unsynchroniser reverses it.
func WriteUnsynchronised(w io.Writer, b []byte) (int, error) {
	out := make([]byte, 0, len(b)+len(b)/8)
	for i, x := range b {
		out = append(out, x)
		if x == 0xFF {
			if i+1 >= len(b) || b[i+1] == 0x00 || b[i+1]&0xE0 == 0xE0 {
				out = append(out, 0x00)
			}
		}
	}
	return w.Write(out)
}
