// Package mpc locates the stream properties and trailing APEv2 tag
// region of a Musepack (.mpc) file (spec.md §4.2). Musepack has two
// incompatible on-disk stream versions: SV8 (packet-framed, "MPCK"
// signature) and the older SV7/SV4-6 fixed-header form ("MP+"
// signature, or a bare version nibble for SV4-6). This package parses
// SV8's "SH" (Stream Header) packet for sample rate/channels/sample
// count. For SV7 it only checks the "MP+" signature and reports fixed
// 44100 Hz stereo properties with no sample count; SV4-6 streams are
// rejected as an unknown format.
// Musepack's own stream-header bitstream isn't in the pack (only
// original_source's ape/tag/mod.rs confirms Musepack carries APEv2
// tags, and file_type.rs gives the magic bytes); the packet/header
// layout below follows Musepack's publicly documented SV7/SV8 formats.
package mpc

import (
	"bytes"
	"io"

	"github.com/silvertag/audiotags/internal/ape"
	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// StreamVersion discriminates the two incompatible Musepack bitstreams.
type StreamVersion int

const (
	SV7 StreamVersion = iota
	SV8
)

// sv8SampleRateTable is the SV8 stream header's 3-bit sample-rate index.
var sv8SampleRateTable = [4]uint32{44100, 48000, 37800, 32000}

// Properties is read from the stream header.
type Properties struct {
	Version     StreamVersion
	SampleRate  uint32
	Channels    uint8
	SampleCount uint64
}

// TagRegions locates the trailing tag cluster.
type TagRegions struct {
	APEv2 *Region
}

// File is the result of walking a Musepack stream.
type File struct {
	Properties Properties
	Tags       TagRegions
}

// Parse reads the stream header (SV8 packet stream or SV7 fixed
// header), then locates the trailing APEv2 tag from end of file.
func Parse(r io.ReadSeeker) (*File, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	magic, err := byteio.ReadBytes(r, 4)
	if err != nil {
		return nil, err
	}

	var props Properties
	switch {
	case bytes.Equal(magic, []byte("MPCK")):
		props, err = parseSV8(r)
	case bytes.Equal(magic[0:3], []byte("MP+")):
		props, err = parseSV7(r)
	default:
		return nil, errs.New(errs.UnknownFormat, "mpc: missing MPCK/MP+ signature")
	}
	if err != nil {
		return nil, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	var tags TagRegions
	if apeTag, err := readAPEv2(r, end); err != nil {
		return nil, err
	} else if apeTag != nil {
		tags.APEv2 = apeTag
	}

	return &File{Properties: props, Tags: tags}, nil
}

// parseSV8 walks the SV8 packet stream looking for the mandatory "SH"
// (Stream Header) packet, which always precedes any audio packet.
func parseSV8(r io.ReadSeeker) (Properties, error) {
	for {
		key, err := byteio.ReadString(r, 2)
		if err != nil {
			return Properties{}, errs.Wrap(err, errs.UnknownFormat, "mpc: stream ended before an SH packet")
		}
		size, sizeFieldLen, err := readPacketSize(r)
		if err != nil {
			return Properties{}, err
		}
		// size counts the 2-byte key and the size field itself.
		payloadSize := size - 2 - sizeFieldLen
		if payloadSize < 0 {
			return Properties{}, errs.New(errs.SizeMismatch, "mpc: packet %q has a negative payload size", key)
		}
		body, err := byteio.ReadBytes(r, payloadSize)
		if err != nil {
			return Properties{}, err
		}
		if key == "SH" {
			return parseStreamHeader(body)
		}
		if key == "SE" {
			return Properties{}, errs.New(errs.UnknownFormat, "mpc: stream ended before an SH packet")
		}
	}
}

// parseStreamHeader decodes an SV8 "SH" packet body: 4-byte CRC,
// 1-byte stream version, a variable-length sample count, a
// variable-length beginning-silence count, then a 16-bit field packing
// the sample-rate index (3 bits), max used bands (5 bits), channel
// count minus one (4 bits), mid/side flag (1 bit) and remaining
// reserved bits.
func parseStreamHeader(b []byte) (Properties, error) {
	if len(b) < 5 {
		return Properties{}, errs.New(errs.SizeMismatch, "mpc: SH packet too short")
	}
	off := 5 // CRC (4) + stream version (1)
	sampleCount, n, err := readVarInt(b[off:])
	if err != nil {
		return Properties{}, err
	}
	off += n
	_, n, err = readVarInt(b[off:]) // beginning silence, unused
	if err != nil {
		return Properties{}, err
	}
	off += n
	if off+2 > len(b) {
		return Properties{}, errs.New(errs.SizeMismatch, "mpc: SH packet truncated before flags field")
	}
	flags := uint16(b[off])<<8 | uint16(b[off+1])
	rateIdx := (flags >> 13) & 0x7
	channels := uint8((flags>>4)&0xF) + 1

	return Properties{
		Version:     SV8,
		SampleRate:  sv8SampleRateTable[rateIdx%4],
		Channels:    channels,
		SampleCount: sampleCount,
	}, nil
}

// parseSV7 reads the older fixed-size SV7 header; the "MP+" magic has
// already been consumed by the caller.
func parseSV7(r io.ReadSeeker) (Properties, error) {
	header, err := byteio.ReadBytes(r, 4)
	if err != nil {
		return Properties{}, err
	}
	// byte 0 bit 0-3: stream major version; the sample rate is a fixed
	// 44100 Hz for every SV7 stream, and channel count is always 2.
	_ = header
	return Properties{
		Version:    SV7,
		SampleRate: 44100,
		Channels:   2,
	}, nil
}

// readPacketSize reads an SV8 variable-length packet size (the same
// 7-bits-per-byte encoding as readVarInt, but consumed from a stream
// rather than a byte slice already in memory) and reports how many
// bytes the encoding occupied.
func readPacketSize(r io.ReadSeeker) (size int, bytesConsumed int, err error) {
	for i := 0; i < 10; i++ {
		b, err := byteio.ReadBytes(r, 1)
		if err != nil {
			return 0, 0, err
		}
		size = (size << 7) | int(b[0]&0x7F)
		if b[0]&0x80 == 0 {
			return size, i + 1, nil
		}
	}
	return 0, 0, errs.New(errs.BadFrameLength, "mpc: packet size field too long")
}

// readVarInt reads a musepack variable-length integer (MIDI-style: each
// byte contributes 7 bits, continuation signaled by the top bit) from
// b, returning the value and the number of bytes consumed.
func readVarInt(b []byte) (uint64, int, error) {
	var result uint64
	for i := 0; i < len(b) && i < 10; i++ {
		result = (result << 7) | uint64(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	return 0, 0, errs.New(errs.BadFrameLength, "mpc: variable-length integer truncated")
}

func readAPEv2(r io.ReadSeeker, end int64) (*Region, error) {
	if end < int64(ape.HeaderFooterSize) {
		return nil, nil
	}
	footer, err := readAt(r, end-int64(ape.HeaderFooterSize), ape.HeaderFooterSize)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(footer[0:8], []byte(ape.Preamble)) {
		return nil, nil
	}
	h, err := ape.ParseHeader(footer[8:])
	if err != nil {
		return nil, err
	}
	if h.IsHeader {
		return nil, nil
	}
	size := int64(h.Size)
	offset := end - size
	if h.HasHeader {
		offset -= int64(ape.HeaderFooterSize)
		size += int64(ape.HeaderFooterSize)
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
