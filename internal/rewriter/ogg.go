package rewriter

import (
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/container/ogg"
	"github.com/silvertag/audiotags/internal/errs"
)

// RewriteOggComment replaces an Ogg bitstream's comment packet with
// newPacketData (the codec's signature prefix followed by a freshly
// serialized Vorbis Comment block) and renumbers every later page's
// sequence number, per spec.md §4.5 step 4: "the metadata packet is
// rebuilt, repaginated, and all pages after it are rewritten with
// corrected sequence numbers and CRCs." Unlike every other container
// this package handles, Ogg's page framing means the generic Patch
// primitive doesn't apply directly - a byte-for-byte size delta isn't
// enough, since the page count covering the packet can itself change.
//
// old is the File.CommentPacket a prior ogg.Walk
// produced; its Regions give the exact whole-page byte ranges (start
// of "OggS" through end of body) the old comment packet occupies.
func RewriteOggComment(f byteio.FileHandle, old ogg.Packet, newPacketData []byte) error {
	if len(old.Regions) == 0 {
		return errs.New(errs.SizeMismatch, "rewriter: comment packet has no regions to replace")
	}
	oldStart := old.Regions[0].Offset
	last := old.Regions[len(old.Regions)-1]
	oldEnd := last.Offset + last.Size

	newPages := ogg.SerializePackets(old.SerialNumber, old.FirstPageSequence, [][]byte{newPacketData}, 0)

	fileLen, err := f.Length()
	if err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: file length")
	}
	tailLen := fileLen - oldEnd
	if tailLen < 0 {
		return errs.New(errs.SizeMismatch, "rewriter: comment packet region extends past end of file")
	}

	if _, err := f.Seek(oldEnd, io.SeekStart); err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: seek to tail")
	}
	tail := make([]byte, tailLen)
	if _, err := io.ReadFull(f, tail); err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: read tail")
	}

	if _, err := f.Seek(oldStart, io.SeekStart); err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: seek to comment packet start")
	}
	if _, err := f.Write(newPages); err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: write repaginated comment packet")
	}

	nextSequence := old.FirstPageSequence + uint32(newPageCount(newPages))
	renumbered, err := renumberPages(tail, old.SerialNumber, nextSequence)
	if err != nil {
		return err
	}
	if _, err := f.Write(renumbered); err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: write renumbered tail")
	}

	if err := f.Truncate(oldStart + int64(len(newPages)) + int64(len(renumbered))); err != nil {
		return errs.Wrap(err, errs.IO, "rewriter: truncate")
	}
	return nil
}

func newPageCount(pages []byte) int {
	n := 0
	for off := 0; off < len(pages); {
		segCount := int(pages[off+26])
		bodyLen := 0
		for _, s := range pages[off+27 : off+27+segCount] {
			bodyLen += int(s)
		}
		off += 27 + segCount + bodyLen
		n++
	}
	return n
}

// renumberPages walks every page in tail belonging to serial, replacing
// its sequence number with a contiguous count starting at nextSequence
// and recomputing its checksum. Pages belonging to other logical
// streams (serial numbers this rewrite doesn't touch, in a
// multiplexed file) pass through unchanged along with their original
// sequence numbers.
func renumberPages(tail []byte, serial uint32, nextSequence uint32) ([]byte, error) {
	out := make([]byte, 0, len(tail))
	for off := 0; off < len(tail); {
		if off+27 > len(tail) || string(tail[off:off+4]) != "OggS" {
			return nil, errs.New(errs.UnknownFormat, "ogg: malformed page while renumbering tail")
		}
		segCount := int(tail[off+26])
		headerLen := 27 + segCount
		if off+headerLen > len(tail) {
			return nil, errs.New(errs.UnknownFormat, "ogg: truncated segment table while renumbering tail")
		}
		bodyLen := 0
		for _, s := range tail[off+27 : off+headerLen] {
			bodyLen += int(s)
		}
		pageLen := headerLen + bodyLen
		if off+pageLen > len(tail) {
			return nil, errs.New(errs.UnknownFormat, "ogg: truncated page body while renumbering tail")
		}
		page := make([]byte, pageLen)
		copy(page, tail[off:off+pageLen])

		pageSerial := leUint32(page[14:18])
		if pageSerial == serial {
			putLEUint32(page[18:22], nextSequence)
			nextSequence++
			putLEUint32(page[22:26], 0)
			crc := ogg.Checksum(page)
			putLEUint32(page[22:26], crc)
		}
		out = append(out, page...)
		off += pageLen
	}
	return out, nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLEUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
