package ogg

import (
	"encoding/binary"
)

// crcTable is the lookup table for Ogg's page checksum: a direct
// (non-reflected) CRC-32 with polynomial 0x04c11db7 and a zero initial
// value, distinct from the reflected CRC-32 the hash/crc32 package
// computes. Table construction and the per-byte update below are
// grounded on the zeozeozeo-tag ogg.go oggCRCTable/oggCRCUpdate pair
// (itself derived from the teacher's BSD-licensed base).
var crcTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04c11db7
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}()

func crcUpdate(crc uint32, p []byte) uint32 {
	for _, v := range p {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^v]
	}
	return crc
}

// Checksum computes an Ogg page's CRC over its serialized bytes: pageBytes
// must be a complete page (header, segment table, and body) with its
// checksum field still zeroed.
func Checksum(pageBytes []byte) uint32 {
	return crcUpdate(0, pageBytes)
}

// lace splits a page body of length n into Ogg lacing values: a run of
// 255 for every complete 255-byte segment, followed by a final value in
// [0,254] that marks this page as the packet's last (emitted even when
// n is an exact multiple of 255, since a trailing 255 would otherwise
// read as "packet continues"). When packetContinues is true, the body
// fills the page exactly (n must be a multiple of 255) and no
// terminating value is written: the packet resumes on the next page.
func lace(n int, packetContinues bool) []byte {
	var segs []byte
	for n >= 255 {
		segs = append(segs, 255)
		n -= 255
	}
	if !packetContinues {
		segs = append(segs, byte(n))
	}
	return segs
}

// SerializePage renders one Ogg page to bytes: the "OggS" capture
// pattern, the 22-byte fixed header, the lacing table, the body, and a
// freshly computed checksum. continuation marks header_type_flag bit
// 0x1 (this page continues a packet begun on a previous page); last
// marks bit 0x4 (this page ends the logical stream); packetContinues
// marks that the packet being written doesn't end on this page (its
// lacing table must not carry a terminating value).
func SerializePage(serial, sequence uint32, granule uint64, continuation, last, packetContinues bool, body []byte) []byte {
	segs := lace(len(body), packetContinues)

	headerType := byte(0)
	if continuation {
		headerType |= 0x1
	}
	if last {
		headerType |= 0x4
	}

	out := make([]byte, 0, 27+len(segs)+len(body))
	out = append(out, "OggS"...)
	out = append(out, 0, headerType)

	var granuleBuf [8]byte
	binary.LittleEndian.PutUint64(granuleBuf[:], granule)
	out = append(out, granuleBuf[:]...)

	var u32Buf [4]byte
	binary.LittleEndian.PutUint32(u32Buf[:], serial)
	out = append(out, u32Buf[:]...)
	binary.LittleEndian.PutUint32(u32Buf[:], sequence)
	out = append(out, u32Buf[:]...)

	crcOffset := len(out)
	out = append(out, 0, 0, 0, 0) // checksum placeholder, patched below

	out = append(out, byte(len(segs)))
	out = append(out, segs...)
	out = append(out, body...)

	crc := Checksum(out)
	binary.LittleEndian.PutUint32(out[crcOffset:crcOffset+4], crc)
	return out
}

// SerializePackets lays out one or more packets as a sequence of pages,
// each page filled up to maxPageBytes of body before a packet must
// continue onto the next page. Every packet after the first starts on
// a fresh page (callers rebuilding a single comment packet pass one
// packet and get back exactly the pages needed to hold it).
func SerializePackets(serial uint32, startSequence uint32, packets [][]byte, maxPageBytes int) []byte {
	if maxPageBytes <= 0 {
		maxPageBytes = 255 * 255
	}
	var out []byte
	sequence := startSequence
	for _, data := range packets {
		offset := 0
		for {
			remaining := len(data) - offset
			take := remaining
			continuation := offset > 0
			more := false
			if take > maxPageBytes {
				take = maxPageBytes
				more = true
			}
			body := data[offset : offset+take]
			out = append(out, SerializePage(serial, sequence, 0, continuation, false, more, body)...)
			sequence++
			offset += take
			if !more {
				break
			}
		}
	}
	return out
}
