// Package riff locates the tag-bearing and audio-data regions of a RIFF
// WAVE file (spec.md §4.2): the "fmt " chunk's basic stream properties,
// an optional "LIST"/"INFO" chunk (handed to internal/riffinfo), an
// optional "id3 " chunk (handed to internal/id3v2), and the "data"
// chunk's audio byte range. Chunk framing (4-character ID + 32-bit
// little-endian size, even-padded) walks through byteio.RIFFWalker, the
// same parameterized chunk walker internal/container/aiff and
// internal/container/dsd drive with their own big-endian/64-bit
// variants (see internal/byteio's DESIGN.md entry for why this module
// keeps one format-agnostic walker instead of a format-specific library
// like github.com/go-audio/riff).
package riff

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/riffinfo"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// Properties is the subset of "fmt " chunk fields the container layer
// reports.
type Properties struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// File is the result of walking a RIFF/WAVE file.
type File struct {
	Properties     Properties
	RiffInfo       *riffinfo.List
	RiffInfoRegion Region
	ID3v2Region    *Region
	AudioRegion    Region
}

// Walk reads the RIFF/WAVE outer header and every top-level sub-chunk.
// r must be positioned at the start of the "RIFF" signature.
func Walk(r io.ReadSeeker) (*File, error) {
	tag, err := byteio.ReadString(r, 4)
	if err != nil {
		return nil, err
	}
	if tag != "RIFF" {
		return nil, errs.New(errs.UnknownFormat, "riff: missing RIFF signature")
	}
	if _, err := byteio.LEUint32(r); err != nil { // overall file size, unused
		return nil, err
	}
	form, err := byteio.ReadString(r, 4)
	if err != nil {
		return nil, err
	}
	if form != "WAVE" {
		return nil, errs.New(errs.UnknownFormat, "riff: not a WAVE file (form type %q)", form)
	}

	f := &File{}
	for {
		chunk, err := byteio.RIFFWalker.Next(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		bodyOffset, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}

		switch chunk.ID {
		case "fmt ":
			body, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			f.Properties = parseFmt(body)
		case "LIST":
			listType, err := byteio.ReadString(r, 4)
			if err != nil {
				return nil, err
			}
			remaining := chunk.Size - 4
			if listType == "INFO" {
				body, err := byteio.ReadBytes(r, int(remaining))
				if err != nil {
					return nil, err
				}
				list, err := riffinfo.ParseChunks(body)
				if err != nil {
					return nil, err
				}
				f.RiffInfo = &list
				f.RiffInfoRegion = Region{Offset: bodyOffset + 4, Size: remaining}
			} else if _, err := r.Seek(remaining, io.SeekCurrent); err != nil {
				return nil, err
			}
		case "id3 ", "ID3 ":
			f.ID3v2Region = &Region{Offset: bodyOffset, Size: chunk.Size}
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		case "data":
			f.AudioRegion = Region{Offset: bodyOffset, Size: chunk.Size}
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		default:
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		}

		// Even-pad, per the RIFF chunk alignment rule (spec.md §4.2).
		if pad := byteio.Padded(chunk.Size) - chunk.Size; pad > 0 {
			if _, err := r.Seek(pad, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

func parseFmt(b []byte) Properties {
	if len(b) < 16 {
		return Properties{}
	}
	return Properties{
		AudioFormat:   binary.LittleEndian.Uint16(b[0:2]),
		Channels:      binary.LittleEndian.Uint16(b[2:4]),
		SampleRate:    binary.LittleEndian.Uint32(b[4:8]),
		BitsPerSample: binary.LittleEndian.Uint16(b[14:16]),
	}
}
