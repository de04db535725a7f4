package wavpack

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/ape"
)

func buildBlockHeader(totalSamples uint32, flags uint32) []byte {
	b := make([]byte, blockHeaderSize)
	copy(b[0:4], Magic)
	binary.LittleEndian.PutUint32(b[4:8], uint32(blockHeaderSize-8))
	binary.LittleEndian.PutUint32(b[12:16], totalSamples)
	binary.LittleEndian.PutUint32(b[24:28], flags)
	return b
}

func TestParseReadsBlockHeaderAndAPEv2(t *testing.T) {
	// bytesPerSample-1 = 1 (16-bit), mono=0 (stereo), rate index 9 (44100)
	flags := uint32(1) | uint32(9)<<23
	header := buildBlockHeader(48000, flags)

	items := ape.SerializeItems([]ape.Item{{Key: "Title", Type: ape.ItemText, Text: "Song"}})
	apeHeader := ape.Header{Version: 2000, ItemCount: 1, HasFooter: true}
	apeHeader.Size = uint32(len(items) + ape.HeaderFooterSize)

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(items)
	buf.Write(ape.SerializeHeader(apeHeader))

	f, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	assert.Equal(t, uint8(2), f.Properties.Channels)
	assert.Equal(t, uint8(16), f.Properties.BitsPerSample)
	assert.Equal(t, uint32(48000), f.Properties.TotalSamples)
	require.NotNil(t, f.Tags.APEv2)
	assert.Equal(t, int64(len(header)), f.Tags.APEv2.Offset)
}

func TestParseRejectsBadMagic(t *testing.T) {
	header := make([]byte, blockHeaderSize)
	_, err := Parse(bytes.NewReader(header))
	assert.Error(t, err)
}
