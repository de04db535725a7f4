package ogg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/vorbiscomment"
)

// buildPage lays out one Ogg page: "OggS" + 22-byte fixed header +
// segment table + body, splitting body into 255-byte lacing values
// (continued set to continuation across pages when requested).
func buildPage(headerType byte, seq uint32, body []byte) []byte {
	var out []byte
	out = append(out, "OggS"...)
	out = append(out, 0)          // version
	out = append(out, headerType) // header_type_flag
	out = append(out, make([]byte, 8)...)
	out = append(out, 0, 0, 0, 1) // serial number
	out = append(out, byte(seq>>24), byte(seq>>16), byte(seq>>8), byte(seq))
	out = append(out, make([]byte, 4)...) // checksum

	var segments []byte
	remaining := len(body)
	for remaining >= 255 {
		segments = append(segments, 255)
		remaining -= 255
	}
	segments = append(segments, byte(remaining))

	out = append(out, byte(len(segments)))
	out = append(out, segments...)
	out = append(out, body...)
	return out
}

func TestReadPageParsesHeader(t *testing.T) {
	data := buildPage(0x02, 0, []byte("hello"))
	p, err := ReadPage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), p.Header.HeaderType)
	assert.False(t, p.Header.Continuation())
	assert.Equal(t, int64(5), p.BodySize)
}

func TestReadPacketsReassemblesContinuedPacket(t *testing.T) {
	// A page's last lacing value of exactly 255 means "packet not yet
	// finished" (no zero terminator), forcing continuation onto the
	// next page.
	part1 := bytes.Repeat([]byte{'a'}, 255)
	part2 := []byte("tail")

	var page1 []byte
	page1 = append(page1, "OggS"...)
	page1 = append(page1, 0, 0x00)
	page1 = append(page1, make([]byte, 8)...)
	page1 = append(page1, 0, 0, 0, 1)
	page1 = append(page1, 0, 0, 0, 0)
	page1 = append(page1, make([]byte, 4)...)
	page1 = append(page1, 1, 255) // one segment, unterminated
	page1 = append(page1, part1...)

	page2 := buildPage(0x01, 1, part2) // continuation

	var buf bytes.Buffer
	buf.Write(page1)
	buf.Write(page2)

	packets, err := ReadPackets(bytes.NewReader(buf.Bytes()), 1)
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Equal(t, append(append([]byte{}, part1...), part2...), packets[0].Data)
	require.Len(t, packets[0].Regions, 2)
}

func TestWalkDecodesVorbisComment(t *testing.T) {
	idPacket := append([]byte{1}, "vorbis"...)
	idPacket = append(idPacket, make([]byte, 23)...)

	comment := vorbiscomment.Comment{
		Vendor:  "test",
		Entries: []vorbiscomment.Entry{{Key: "TITLE", Value: "Song"}},
	}
	commentBody := vorbiscomment.Serialize(comment)
	commentPacket := append(append([]byte{3}, "vorbis"...), commentBody...)

	var buf bytes.Buffer
	buf.Write(buildPage(0x02, 0, idPacket))
	buf.Write(buildPage(0x00, 1, commentPacket))

	f, err := Walk(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, CodecVorbis, f.Codec)
	require.NotNil(t, f.Comment)
	assert.Equal(t, "Song", f.Comment.Get("TITLE"))
}

func TestWalkRejectsUnknownCodec(t *testing.T) {
	idPacket := append([]byte{0}, "garbage-id-packet-data"...)
	data := buildPage(0x02, 0, idPacket)
	_, err := Walk(bytes.NewReader(data))
	assert.Error(t, err)
}
