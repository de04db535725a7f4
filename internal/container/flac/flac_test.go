package flac

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/vorbiscomment"
)

func encodeStreamInfo(minBlock, maxBlock uint16, minFrame, maxFrame uint32, sampleRate uint32, channels, bps uint8, sampleCount uint64, md5 [16]byte) []byte {
	var out []byte
	out = append(out, byte(minBlock>>8), byte(minBlock))

	bits2 := uint64(maxBlock)<<48 | (uint64(minFrame)&0xFFFFFF)<<24 | (uint64(maxFrame) & 0xFFFFFF)
	var b2 [8]byte
	for i := 0; i < 8; i++ {
		b2[i] = byte(bits2 >> uint(56-8*i))
	}
	out = append(out, b2[:]...)

	bits3 := (uint64(sampleRate)&0xFFFFF)<<44 | (uint64(channels-1)&0x7)<<41 | (uint64(bps-1)&0x1F)<<36 | (sampleCount & 0xFFFFFFFFF)
	var b3 [8]byte
	for i := 0; i < 8; i++ {
		b3[i] = byte(bits3 >> uint(56-8*i))
	}
	out = append(out, b3[:]...)

	out = append(out, md5[:]...)
	return out
}

func blockHeader(isLast bool, btype BlockType, length int) []byte {
	b0 := byte(btype)
	if isLast {
		b0 |= 0x80
	}
	return []byte{b0, byte(length >> 16), byte(length >> 8), byte(length)}
}

func buildStream(t *testing.T, comment vorbiscomment.Comment) []byte {
	t.Helper()
	si := encodeStreamInfo(4096, 4096, 1000, 2000, 44100, 2, 16, 123456, [16]byte{})

	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write(blockHeader(false, TypeStreamInfo, len(si)))
	buf.Write(si)

	vc := vorbiscomment.Serialize(comment)
	buf.Write(blockHeader(true, TypeVorbisComment, len(vc)))
	buf.Write(vc)

	buf.Write([]byte{0xFF, 0xF8, 0x00, 0x00}) // fake audio frame sync
	return buf.Bytes()
}

func TestWalkLocatesCommentAndAudioOffset(t *testing.T) {
	comment := vorbiscomment.Comment{
		Vendor: "test encoder",
		Entries: []vorbiscomment.Entry{
			{Key: "TITLE", Value: "Song"},
			{Key: "ARTIST", Value: "Band"},
		},
	}
	data := buildStream(t, comment)

	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotNil(t, f.Comment)
	assert.Equal(t, "Song", f.Comment.Get("TITLE"))
	assert.Equal(t, "Band", f.Comment.Get("ARTIST"))
	assert.Equal(t, int64(len(data)-4), f.AudioOffset)

	region := f.CommentRegion
	vc := vorbiscomment.Serialize(comment)
	assert.Equal(t, data[region.Offset:region.Offset+region.Size], vc)
}

func TestWalkRejectsBadMagic(t *testing.T) {
	_, err := Walk(bytes.NewReader([]byte("nope")))
	assert.Error(t, err)
}

func TestParseReadsPropertiesAndRegions(t *testing.T) {
	comment := vorbiscomment.Comment{Vendor: "enc", Entries: []vorbiscomment.Entry{{Key: "TITLE", Value: "Song"}}}
	data := buildStream(t, comment)

	f, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	assert.Equal(t, uint8(2), f.Properties.Channels)
	assert.Equal(t, uint8(16), f.Properties.BitsPerSample)
	assert.Equal(t, "Song", f.Comment.Get("TITLE"))
}
