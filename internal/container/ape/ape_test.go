package ape

import (
	"bytes"
	"encoding/binary"
	"testing"

	apetag "github.com/silvertag/audiotags/internal/ape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildModernHeader(channels, bitsPerSample uint16, sampleRate uint32) []byte {
	var out []byte
	out = append(out, "MAC "...)
	var version [2]byte
	binary.LittleEndian.PutUint16(version[:], 3990)
	out = append(out, version[:]...)
	out = append(out, 0, 0) // padding

	descriptor := make([]byte, 44)
	binary.LittleEndian.PutUint32(descriptor[4:8], 24) // nHeaderBytes
	out = append(out, descriptor...)

	header := make([]byte, 24)
	binary.LittleEndian.PutUint16(header[0:2], 2000) // compression level
	binary.LittleEndian.PutUint32(header[4:8], 4608)  // blocks per frame
	binary.LittleEndian.PutUint32(header[8:12], 100)  // final frame blocks
	binary.LittleEndian.PutUint32(header[12:16], 10)  // total frames
	binary.LittleEndian.PutUint16(header[16:18], bitsPerSample)
	binary.LittleEndian.PutUint16(header[18:20], channels)
	binary.LittleEndian.PutUint32(header[20:24], sampleRate)
	out = append(out, header...)
	return out
}

func TestParseReadsModernHeaderAndAPEv2(t *testing.T) {
	data := buildModernHeader(2, 16, 44100)

	items := apetag.SerializeItems([]apetag.Item{{Key: "Title", Type: apetag.ItemText, Text: "Song"}})
	apeHeader := apetag.Header{Version: 2000, ItemCount: 1, HasFooter: true}
	apeHeader.Size = uint32(len(items) + apetag.HeaderFooterSize)

	data = append(data, items...)
	data = append(data, apetag.SerializeHeader(apeHeader)...)

	f, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(2), f.Properties.Channels)
	assert.Equal(t, uint16(16), f.Properties.BitsPerSample)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	require.NotNil(t, f.Tags.APEv2)
}

func TestParseRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("JUNK")
	buf.Write(make([]byte, 20))
	_, err := Parse(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
