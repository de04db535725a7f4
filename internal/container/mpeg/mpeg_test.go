package mpeg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/ape"
	"github.com/silvertag/audiotags/internal/id3v2"
)

// mp3V1LayerIIIFrame builds one valid, fixed-bitrate MPEG1 Layer III
// frame of exactly the right length to resynchronise on the next frame.
func mp3V1LayerIIIFrame(bitrate int) []byte {
	// version=3 (V1), layer=1 (III) -> byte1 = 1111 1011 = 0xFB
	byte1 := byte(0xFB)
	brIdx := -1
	table := bitrateTable(Version1, LayerIII)
	for i, b := range table {
		if b == bitrate {
			brIdx = i
			break
		}
	}
	if brIdx < 0 {
		panic("bitrate not in table")
	}
	// sampling rate index 0 = 44100, channel mode Stereo (00)
	byte2 := byte(brIdx<<4) | (0 << 2)
	byte3 := byte(0) // stereo, no padding, no private/emphasis bits set

	fh, ok := parseFrameHeader([4]byte{byte1, byte2, byte3, 0})
	if !ok {
		panic("built an invalid frame header in test fixture")
	}
	frame := make([]byte, fh.FrameLength)
	frame[0], frame[1], frame[2], frame[3] = byte1, byte2, byte3, 0
	return frame
}

func TestParseFrameHeaderRejectsBadSync(t *testing.T) {
	_, ok := parseFrameHeader([4]byte{0x00, 0x00, 0x00, 0x00})
	assert.False(t, ok)
}

func TestParseFrameHeaderDecodesV1LayerIII(t *testing.T) {
	frame := mp3V1LayerIIIFrame(128)
	fh, ok := parseFrameHeader([4]byte{frame[0], frame[1], frame[2], frame[3]})
	require.True(t, ok)
	assert.Equal(t, Version1, fh.Version)
	assert.Equal(t, LayerIII, fh.Layer)
	assert.Equal(t, 128, fh.Bitrate)
	assert.Equal(t, 44100, fh.SampleRate)
	assert.Equal(t, Stereo, fh.Mode)
}

func TestLocateID3v2FindsLeadingTag(t *testing.T) {
	h := id3v2.Header{Version: id3v2.V2_3, Size: 100}
	var buf bytes.Buffer
	buf.Write(id3v2.SerializeHeader(h))
	buf.Write(make([]byte, 100))
	buf.Write(mp3V1LayerIIIFrame(128))

	region, err := LocateID3v2(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, region)
	assert.Equal(t, int64(0), region.Offset)
	assert.Equal(t, int64(110), region.Size)
}

func TestLocateID3v2AbsentReturnsNil(t *testing.T) {
	data := mp3V1LayerIIIFrame(128)
	region, err := LocateID3v2(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Nil(t, region)
}

func TestLocateTrailingTagsFindsID3v1AndAPEv2(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(mp3V1LayerIIIFrame(128))
	audioEnd := int64(buf.Len())

	items := ape.SerializeItems([]ape.Item{{Key: "Title", Type: ape.ItemText, Text: "Song"}})
	apeHeader := ape.Header{Version: 2000, ItemCount: 1, HasFooter: true}
	apeHeader.Size = uint32(len(items) + ape.HeaderFooterSize)
	buf.Write(items)
	buf.Write(ape.SerializeHeader(apeHeader))

	id3v1Tag := make([]byte, 128)
	copy(id3v1Tag, "TAG")
	buf.Write(id3v1Tag)

	regions, cursor, err := LocateTrailingTags(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, regions.ID3v1)
	require.NotNil(t, regions.APEv2)
	assert.Equal(t, int64(128), regions.ID3v1.Size)
	assert.Equal(t, audioEnd, cursor)
	assert.Equal(t, audioEnd, regions.APEv2.Offset)
}

func TestParseLocatesAllRegionsAndProperties(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; i < 5; i++ {
		buf.Write(mp3V1LayerIIIFrame(128))
	}
	id3v1Tag := make([]byte, 128)
	copy(id3v1Tag, "TAG")
	buf.Write(id3v1Tag)

	f, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, f.ID3v1)
	assert.Nil(t, f.ID3v2)
	assert.Equal(t, 128, f.Properties.Bitrate)
	assert.Equal(t, 44100, f.Properties.SampleRate)
	assert.False(t, f.Properties.VBR)
}
