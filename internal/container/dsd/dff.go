// Package dsd locates the tag-bearing and audio-data regions of a
// Philips DSDIFF (DFF) file (spec.md §4.2): the "FRM8"/"DSD " header
// (64-bit big-endian chunk sizes, unlike RIFF/AIFF's 32-bit), the
// "PROP"→"SND " sub-chunk carrying sample rate/channel count, the
// "DSD " audio chunk, the "DIIN"/"COMT" text chunks handed to
// internal/dfftext, and an optional "ID3 " chunk region for
// internal/id3v2. Grounded on original_source's lofty dsd/dff/read.rs
// (verify_dff/read_from/parse_prop_chunk), whose chunk dispatch this
// package reproduces using byteio.DFFWalker for top-level framing.
package dsd

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/dfftext"
	"github.com/silvertag/audiotags/internal/errs"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// Properties is read from the "PROP"→"SND " sub-chunks.
type Properties struct {
	SampleRate  uint32
	Channels    uint8
	SampleCount uint64
	Compression string
}

// File is the result of walking a DFF file.
type File struct {
	Properties  Properties
	Text        dfftext.Tag
	ID3v2Region *Region
	AudioRegion Region
}

// Walk reads the FRM8 header and every top-level sub-chunk. r must be
// positioned at the start of the "FRM8" signature.
func Walk(r io.ReadSeeker) (*File, error) {
	magic, err := byteio.ReadString(r, 4)
	if err != nil {
		return nil, err
	}
	if magic != "FRM8" {
		return nil, errs.New(errs.UnknownFormat, "dff: missing FRM8 signature")
	}
	if _, err := byteio.ReadBEUintN(r, 8); err != nil { // overall size, unused
		return nil, err
	}
	form, err := byteio.ReadString(r, 4)
	if err != nil {
		return nil, err
	}
	if form != "DSD " {
		return nil, errs.New(errs.UnknownFormat, "dff: not a DSD file (form type %q)", form)
	}

	f := &File{}
	var sawSND bool
	for {
		chunk, err := byteio.DFFWalker.Next(r)
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
		case "PROP":
			body, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			props, ok := parseProp(body)
			if ok {
				f.Properties.SampleRate = props.SampleRate
				f.Properties.Channels = props.Channels
				f.Properties.Compression = props.Compression
				sawSND = true
			}
		case "DSD ":
			f.AudioRegion = Region{Offset: bodyOffset, Size: chunk.Size}
			if f.Properties.Channels > 0 {
				f.Properties.SampleCount = uint64(chunk.Size) / uint64(f.Properties.Channels) * 8
			}
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		case "ID3 ", "id3 ":
			f.ID3v2Region = &Region{Offset: bodyOffset, Size: chunk.Size}
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		case "DIIN":
			body, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			info, err := dfftext.ParseDIIN(body)
			if err != nil {
				return nil, err
			}
			f.Text.DIIN = &info
		case "COMT":
			body, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			comments, err := dfftext.ParseComments(body)
			if err != nil {
				return nil, err
			}
			f.Text.Comments = append(f.Text.Comments, comments...)
		default:
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}

	if !sawSND {
		return nil, errs.New(errs.UnknownFormat, "dff: file does not contain a PROP/SND chunk")
	}

	return f, nil
}

// parseProp decodes a "PROP" chunk body, descending into its "SND "
// sub-chunks ("FS  " sample rate, "CHNL" channel count, "CMPR"
// compression type); lofty's parse_prop_chunk is the model, minus the
// loudspeaker-configuration field this module doesn't expose.
func parseProp(b []byte) (Properties, bool) {
	if len(b) < 4 || string(b[0:4]) != "SND " {
		return Properties{}, false
	}
	var props Properties
	off := 4
	for off+12 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.BigEndian.Uint64(b[off+4 : off+12]))
		off += 12
		if off+size > len(b) {
			break
		}
		body := b[off : off+size]
		off += size
		switch id {
		case "FS  ":
			if len(body) >= 4 {
				props.SampleRate = binary.BigEndian.Uint32(body[0:4])
			}
		case "CHNL":
			if len(body) >= 2 {
				props.Channels = uint8(binary.BigEndian.Uint16(body[0:2]))
			}
		case "CMPR":
			if len(body) >= 4 {
				props.Compression = string(body[0:4])
			}
		}
	}
	return props, true
}
