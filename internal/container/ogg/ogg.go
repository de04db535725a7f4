// Package ogg locates the comment packet and audio packets of an Ogg
// bitstream (spec.md §4.2): the "OggS" page framing (27-byte header +
// a lacing/segment table, granule position, serial number, sequence
// number, CRC), the continuation rule that lets a packet span more
// than one page, and the Vorbis/Opus/Speex first-byte packet-type
// identification that tells the codec which header packet carries the
// Vorbis Comment block. Page/packet framing and the continuation rule
// (header_type_flag bit 0x1) are grounded on the teacher's ogg.go
// (readPackets/ReadOGGTags); this package generalizes that one-shot
// Vorbis-only reader into a codec-identifying page walk that records
// byte Regions instead of copying packet payloads into a buffer.
package ogg

import (
	"bytes"
	"errors"
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/vorbiscomment"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// Codec identifies the payload format carried by an Ogg bitstream's
// logical stream, from its first packet's magic signature.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecVorbis
	CodecOpus
	CodecSpeex
)

// PageHeader is the fixed 27-byte-plus-segment-table Ogg page header.
type PageHeader struct {
	Version         byte
	HeaderType      byte
	GranulePosition uint64
	SerialNumber    uint32
	PageSequence    uint32
	Checksum        uint32
	Segments        []byte
}

// Continuation reports whether this page's first packet continues a
// packet begun on a previous page (header_type_flag bit 0x1).
func (h PageHeader) Continuation() bool { return h.HeaderType&0x1 != 0 }

// pageSize sums the page's lacing/segment table to the byte length of
// its body.
func (h PageHeader) pageSize() int64 {
	var n int64
	for _, s := range h.Segments {
		n += int64(s)
	}
	return n
}

// Page is one parsed Ogg page: its header plus the file offsets of its
// body (the lacing values' payload, excluding the "OggS" capture
// pattern and header/segment-table bytes).
type Page struct {
	Header     PageHeader
	BodyOffset int64
	BodySize   int64
}

// ReadPage reads one page. r must be positioned at the start of the
// "OggS" capture pattern.
func ReadPage(r io.ReadSeeker) (Page, error) {
	magic, err := byteio.ReadBytes(r, 4)
	if err != nil {
		return Page{}, err
	}
	if !bytes.Equal(magic, []byte("OggS")) {
		return Page{}, errs.New(errs.UnknownFormat, "ogg: missing OggS capture pattern")
	}
	head, err := byteio.ReadBytes(r, 22)
	if err != nil {
		return Page{}, err
	}
	h := PageHeader{
		Version:         head[0],
		HeaderType:      head[1],
		GranulePosition: byteio.BEUintN(reverse(head[2:10])),
		SerialNumber:    uint32(byteio.BEUintN(reverse(head[10:14]))),
		PageSequence:    uint32(byteio.BEUintN(reverse(head[14:18]))),
		Checksum:        uint32(byteio.BEUintN(reverse(head[18:22]))),
	}
	nSegRaw, err := byteio.ReadBytes(r, 1)
	if err != nil {
		return Page{}, err
	}
	nSeg := int(nSegRaw[0])
	segments, err := byteio.ReadBytes(r, nSeg)
	if err != nil {
		return Page{}, err
	}
	h.Segments = segments

	bodyOffset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return Page{}, err
	}
	size := h.pageSize()
	if _, err := r.Seek(size, io.SeekCurrent); err != nil {
		return Page{}, err
	}
	return Page{Header: h, BodyOffset: bodyOffset, BodySize: size}, nil
}

// reverse returns a reversed copy of b, converting Ogg's little-endian
// multi-byte header fields into a big-endian byte order BEUintN can
// decode directly.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// Packet is one reassembled logical packet: the concatenation of every
// page-body segment that makes it up, plus the list of file byte
// Regions (one per contributing page) a rewriter must patch in place.
// SerialNumber and FirstPageSequence identify the stream and position
// of the packet's first page, so a rewriter repaginating this packet
// knows which serial number to stamp on its replacement pages and
// where renumbering subsequent pages must resume from.
type Packet struct {
	Data              []byte
	Regions           []Region
	SerialNumber      uint32
	FirstPageSequence uint32
}

// ReadPackets reads pages starting at the reader's current position,
// reassembling logical packets (a packet spans more than one page
// whenever a page's header_type_flag bit 0x1 is set), until wantCount
// complete packets have been collected. wantCount <= 0 reads to EOF.
// This mirrors the teacher's readPackets, generalized to report each
// packet's constituent page Regions instead of copying payloads into
// one contiguous buffer.
func ReadPackets(r io.ReadSeeker, wantCount int) ([]Packet, error) {
	var packets []Packet
	var current *Packet
	for {
		if wantCount > 0 && len(packets) >= wantCount {
			return packets, nil
		}
		pageStart, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		page, err := ReadPage(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if current != nil {
					packets = append(packets, *current)
				}
				return packets, nil
			}
			return nil, err
		}
		if !page.Header.Continuation() {
			if current != nil {
				packets = append(packets, *current)
			}
			current = &Packet{SerialNumber: page.Header.SerialNumber, FirstPageSequence: page.Header.PageSequence}
		} else if current == nil {
			return nil, errs.New(errs.UnknownFormat, "ogg: continuation page with no preceding packet")
		}

		body, err := readBodyAt(r, page.BodyOffset, page.BodySize)
		if err != nil {
			return nil, err
		}
		current.Data = append(current.Data, body...)
		pageEnd := page.BodyOffset + page.BodySize
		current.Regions = append(current.Regions, Region{Offset: pageStart, Size: pageEnd - pageStart})

		// A page boundary always ends the packet unless the page's last
		// lacing value is exactly 255 (meaning the packet isn't finished
		// yet and continues onto the next page).
		if !lastSegmentIsFull(page.Header.Segments) {
			packets = append(packets, *current)
			current = nil
		}
	}
}

func lastSegmentIsFull(segments []byte) bool {
	if len(segments) == 0 {
		return false
	}
	return segments[len(segments)-1] == 255
}

func readBodyAt(r io.ReadSeeker, offset, size int64) ([]byte, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	b, err := byteio.ReadBytes(r, int(size))
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return nil, err
	}
	return b, nil
}

// identifyCodec inspects a first identification packet's signature
// (Vorbis: packet type 1 + "vorbis"; Opus: "OpusHead"; Speex: "Speex   ", three trailing spaces).
func identifyCodec(first []byte) Codec {
	switch {
	case len(first) >= 7 && first[0] == 1 && string(first[1:7]) == "vorbis":
		return CodecVorbis
	case len(first) >= 8 && string(first[0:8]) == "OpusHead":
		return CodecOpus
	case len(first) >= 8 && string(first[0:8]) == "Speex   ":
		return CodecSpeex
	default:
		return CodecUnknown
	}
}

// File is the result of walking an Ogg bitstream's first logical
// stream.
type File struct {
	Codec         Codec
	Comment       *vorbiscomment.Comment
	CommentPacket Packet
}

// Walk reads the identification packet, then the comment header
// packet, and decodes the Vorbis Comment block it carries (Vorbis
// comment packets are prefixed with a 1-byte type + 6-byte "vorbis"
// signature; Opus comment packets use an 8-byte "OpusTags" signature
// instead, with no leading type byte). r must be positioned at the
// start of the first "OggS" page.
func Walk(r io.ReadSeeker) (*File, error) {
	idPackets, err := ReadPackets(r, 1)
	if err != nil {
		return nil, err
	}
	if len(idPackets) != 1 {
		return nil, errs.New(errs.UnknownFormat, "ogg: missing identification packet")
	}
	codec := identifyCodec(idPackets[0].Data)
	if codec == CodecUnknown {
		return nil, errs.New(errs.UnknownFormat, "ogg: unrecognised codec identification packet")
	}

	commentPackets, err := ReadPackets(r, 0)
	if err != nil {
		return nil, err
	}
	if len(commentPackets) == 0 {
		return nil, errs.New(errs.UnknownFormat, "ogg: missing comment header packet")
	}
	packet := commentPackets[0]

	var payload []byte
	switch codec {
	case CodecVorbis, CodecSpeex:
		if len(packet.Data) < 7 || packet.Data[0] != 3 {
			return nil, errs.New(errs.UnknownFormat, "ogg: expected Vorbis comment packet type 3")
		}
		payload = packet.Data[7:]
	case CodecOpus:
		if len(packet.Data) < 8 || string(packet.Data[0:8]) != "OpusTags" {
			return nil, errs.New(errs.UnknownFormat, "ogg: expected OpusTags comment packet")
		}
		payload = packet.Data[8:]
	}

	comment, err := vorbiscomment.Parse(payload)
	if err != nil {
		return nil, err
	}

	return &File{Codec: codec, Comment: &comment, CommentPacket: packet}, nil
}
