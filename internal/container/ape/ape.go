// Package ape locates the tag-bearing and audio-data regions of a
// Monkey's Audio (.ape) stream (spec.md §4.2): the "MAC " header
// carrying compression level, channel count, sample rate, bit depth and
// total frame/block counts, and the trailing APEv2 (rarely ID3v1) tag
// cluster parsed by internal/ape, the same tag placement
// internal/container/wavpack already reuses. No pack source retrieves
// Monkey's Audio's own header (only its tag format, internal/ape, is
// modeled on original_source's lofty/src/ape/tag/mod.rs); the "MAC "
// header fields below follow the Monkey's Audio SDK's long-stable,
// publicly documented APE_HEADER layout for format versions >= 3.98,
// the same kind of gap internal/container/wavpack documents for its
// own block header.
package ape

import (
	"bytes"
	"io"

	apetag "github.com/silvertag/audiotags/internal/ape"
	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
)

// Magic is the Monkey's Audio file signature.
var Magic = []byte("MAC ")

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// Properties is read from the "MAC " header.
type Properties struct {
	Version          uint16
	CompressionLevel uint16
	Channels         uint16
	BitsPerSample    uint16
	SampleRate       uint32
	TotalFrames      uint32
	FinalFrameBlocks uint32
	BlocksPerFrame   uint32
}

// TagRegions locates the trailing tag cluster.
type TagRegions struct {
	APEv2 *Region
	ID3v1 *Region
}

// File is the result of walking a Monkey's Audio stream.
type File struct {
	Properties Properties
	Tags       TagRegions
}

// modernFormat is the version threshold (3.98) at which the descriptor
// block preceding the header was introduced.
const modernFormat = 3980

// Parse reads the "MAC " header for stream properties, then locates the
// trailing tag cluster from the end of the file.
func Parse(r io.ReadSeeker) (*File, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	magic, err := byteio.ReadBytes(r, 4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic) {
		return nil, errs.New(errs.UnknownFormat, "ape: missing MAC signature")
	}
	versionBytes, err := byteio.ReadBytes(r, 2)
	if err != nil {
		return nil, err
	}
	version := leUint16(versionBytes)

	var props Properties
	props.Version = version
	if version >= modernFormat {
		props, err = parseModernHeader(r, version)
	} else {
		props, err = parseLegacyHeader(r, version)
	}
	if err != nil {
		return nil, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	cursor := end

	var tags TagRegions
	if id3Tag, err := readID3v1(r, cursor); err != nil {
		return nil, err
	} else if id3Tag != nil {
		tags.ID3v1 = id3Tag
		cursor -= id3Tag.Size
	}
	if apeTag, err := readAPEv2(r, cursor); err != nil {
		return nil, err
	} else if apeTag != nil {
		tags.APEv2 = apeTag
	}

	return &File{Properties: props, Tags: tags}, nil
}

// parseModernHeader reads the 3.98+ layout: a descriptor block (sizes
// and an MD5) followed by a fixed APE_HEADER.
func parseModernHeader(r io.ReadSeeker, version uint16) (Properties, error) {
	if _, err := byteio.ReadBytes(r, 2); err != nil { // padding
		return Properties{}, err
	}
	descriptor, err := byteio.ReadBytes(r, 44)
	if err != nil {
		return Properties{}, err
	}
	headerBytes := leUint32(descriptor[4:8])
	header, err := byteio.ReadBytes(r, int(headerBytes))
	if err != nil {
		return Properties{}, err
	}
	if len(header) < 24 {
		return Properties{}, errs.New(errs.SizeMismatch, "ape: header block too short (%d bytes)", len(header))
	}
	return Properties{
		Version:          version,
		CompressionLevel: leUint16(header[0:2]),
		Channels:         leUint16(header[18:20]),
		BitsPerSample:    leUint16(header[16:18]),
		SampleRate:       leUint32(header[20:24]),
		BlocksPerFrame:   leUint32(header[4:8]),
		FinalFrameBlocks: leUint32(header[8:12]),
		TotalFrames:      leUint32(header[12:16]),
	}, nil
}

// parseLegacyHeader reads the pre-3.98 fixed-size APE_HEADER (no
// separate descriptor block).
func parseLegacyHeader(r io.ReadSeeker, version uint16) (Properties, error) {
	header, err := byteio.ReadBytes(r, 24)
	if err != nil {
		return Properties{}, err
	}
	return Properties{
		Version:          version,
		CompressionLevel: leUint16(header[0:2]),
		Channels:         leUint16(header[4:6]),
		SampleRate:       leUint32(header[6:10]),
		TotalFrames:      leUint32(header[14:18]),
		FinalFrameBlocks: leUint32(header[18:22]),
		BitsPerSample:    16,
	}, nil
}

func leUint16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readID3v1(r io.ReadSeeker, end int64) (*Region, error) {
	if end < 128 {
		return nil, nil
	}
	b, err := readAt(r, end-128, 3)
	if err != nil {
		return nil, err
	}
	if string(b) != "TAG" {
		return nil, nil
	}
	return &Region{Offset: end - 128, Size: 128}, nil
}

func readAPEv2(r io.ReadSeeker, end int64) (*Region, error) {
	if end < int64(apetag.HeaderFooterSize) {
		return nil, nil
	}
	footer, err := readAt(r, end-int64(apetag.HeaderFooterSize), apetag.HeaderFooterSize)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(footer[0:8], []byte(apetag.Preamble)) {
		return nil, nil
	}
	h, err := apetag.ParseHeader(footer[8:])
	if err != nil {
		return nil, err
	}
	if h.IsHeader {
		return nil, nil
	}
	size := int64(h.Size)
	offset := end - size
	if h.HasHeader {
		offset -= int64(apetag.HeaderFooterSize)
		size += int64(apetag.HeaderFooterSize)
	}
	return &Region{Offset: offset, Size: size}, nil
}

func readAt(r io.ReadSeeker, offset int64, n int) ([]byte, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	b, err := byteio.ReadBytes(r, n)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return nil, err
	}
	return b, nil
}
