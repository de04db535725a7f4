package id3v2

import (
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/gentag"
)

// FrameFlags is the two-byte per-frame flag set carried by v2.3/v2.4 frame
// headers (v2.2 has none). Ported from dhowden/tag's id3v2.go
// ID3v2FrameFlags.
type FrameFlags struct {
	TagAlterPreservation  bool
	FileAlterPreservation bool
	ReadOnly              bool

	GroupIdentity       bool
	Compression         bool
	Encryption          bool
	Unsynchronisation   bool
	DataLengthIndicator bool
}

func parseFrameFlags(b []byte) FrameFlags {
	msg, format := b[0], b[1]
	return FrameFlags{
		TagAlterPreservation:  byteio.GetBit(msg, 6),
		FileAlterPreservation: byteio.GetBit(msg, 5),
		ReadOnly:              byteio.GetBit(msg, 4),
		GroupIdentity:         byteio.GetBit(format, 7),
		Compression:           byteio.GetBit(format, 3),
		Encryption:            byteio.GetBit(format, 2),
		Unsynchronisation:     byteio.GetBit(format, 1),
		DataLengthIndicator:   byteio.GetBit(format, 0),
	}
}

func serializeFrameFlags(f FrameFlags) [2]byte {
	var msg, format byte
	if f.TagAlterPreservation {
		msg |= 1 << 6
	}
	if f.FileAlterPreservation {
		msg |= 1 << 5
	}
	if f.ReadOnly {
		msg |= 1 << 4
	}
	if f.GroupIdentity {
		format |= 1 << 7
	}
	if f.Compression {
		format |= 1 << 3
	}
	if f.Encryption {
		format |= 1 << 2
	}
	if f.Unsynchronisation {
		format |= 1 << 1
	}
	if f.DataLengthIndicator {
		format |= 1 << 0
	}
	return [2]byte{msg, format}
}

// RawFrame is an undecoded frame: an ID, its flags, and its payload with
// per-frame unsynchronisation and any data-length-indicator already
// stripped.
type RawFrame struct {
	ID    string
	Flags FrameFlags
	Data  []byte
}

// parseFrames walks the frame region of a tag (r already positioned just
// past the 10-byte header, already wrapped in a byteio.Unsynchroniser by
// the caller if the tag-wide unsynchronisation flag is set) until offset
// reaches h.Size or a padding (all-zero) frame ID is hit.
func parseFrames(r io.Reader, h Header, mode gentag.ParsingMode) ([]RawFrame, error) {
	var frames []RawFrame
	idLen := frameIDLen(h.Version)
	var consumed uint32
	bestEffort := mode != gentag.Strict

	for consumed < h.Size {
		id, err := byteio.ReadString(r, idLen)
		if err != nil {
			if bestEffort {
				break
			}
			return frames, err
		}
		consumed += uint32(idLen)
		if isPaddingName(id) {
			break
		}

		var size uint32
		var flags FrameFlags
		switch h.Version {
		case V2_2:
			sb, err := byteio.ReadBytes(r, 3)
			if err != nil {
				return frames, err
			}
			size = uint32(byteio.BEUintN(sb))
			consumed += 3
		case V2_3:
			sb, err := byteio.ReadBytes(r, 4)
			if err != nil {
				return frames, err
			}
			size = uint32(byteio.BEUintN(sb))
			consumed += 4
			fb, err := byteio.ReadBytes(r, 2)
			if err != nil {
				return frames, err
			}
			flags = parseFrameFlags(fb)
			consumed += 2
		case V2_4:
			ss, err := byteio.ReadSynchsafe(r)
			if err != nil {
				return frames, err
			}
			size = ss
			consumed += 4
			fb, err := byteio.ReadBytes(r, 2)
			if err != nil {
				return frames, err
			}
			flags = parseFrameFlags(fb)
			consumed += 2
		}

		if size == 0 {
			continue
		}

		data, err := byteio.ReadBytes(r, int(size))
		if err != nil {
			if bestEffort {
				break
			}
			return frames, err
		}
		consumed += size

		if flags.DataLengthIndicator && len(data) >= 4 {
			data = data[4:]
		}
		if flags.Unsynchronisation && !h.Unsynchronisation {
			// v2.3 unsynchronisation is always per-frame. v2.4 allows it
			// per-frame too, but only needs handling here when the tag-wide
			// flag wasn't set (otherwise the caller's Unsynchroniser has
			// already stripped it from the whole frame region).
			data = removeUnsync(data)
		}

		frames = append(frames, RawFrame{ID: id, Flags: flags, Data: data})
	}
	return frames, nil
}

func removeUnsync(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}

func serializeFrame(id string, flags FrameFlags, data []byte, v Version) []byte {
	var out []byte
	switch v {
	case V2_2:
		out = append(out, []byte(id)...)
		n := uint32(len(data))
		out = append(out, byte(n>>16), byte(n>>8), byte(n))
	case V2_3:
		out = append(out, []byte(id)...)
		var sz [4]byte
		n := uint32(len(data))
		sz[0], sz[1], sz[2], sz[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
		out = append(out, sz[:]...)
		fb := serializeFrameFlags(flags)
		out = append(out, fb[:]...)
	case V2_4:
		out = append(out, []byte(id)...)
		ss := byteio.Synchsafe(uint32(len(data)))
		out = append(out, ss[:]...)
		fb := serializeFrameFlags(flags)
		out = append(out, fb[:]...)
	}
	out = append(out, data...)
	return out
}
