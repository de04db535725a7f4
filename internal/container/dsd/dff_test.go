package dsd

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beChunk64(id string, body []byte) []byte {
	var out []byte
	out = append(out, id...)
	var sz [8]byte
	binary.BigEndian.PutUint64(sz[:], uint64(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func propBody(sampleRate uint32, channels uint16) []byte {
	var fs [4]byte
	binary.BigEndian.PutUint32(fs[:], sampleRate)
	var ch [2]byte
	binary.BigEndian.PutUint16(ch[:], channels)

	body := append([]byte("SND "), beChunk64("FS  ", fs[:])...)
	body = append(body, beChunk64("CHNL", ch[:])...)
	return body
}

func buildDFF(t *testing.T, audio []byte) []byte {
	t.Helper()
	var body []byte
	body = append(body, "DSD "...)
	body = append(body, beChunk64("PROP", propBody(2822400, 2))...)
	body = append(body, beChunk64("DSD ", audio)...)

	var out []byte
	out = append(out, "FRM8"...)
	var sz [8]byte
	binary.BigEndian.PutUint64(sz[:], uint64(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func TestWalkParsesPropAndAudio(t *testing.T) {
	data := buildDFF(t, bytes.Repeat([]byte{0xAA}, 16))
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint32(2822400), f.Properties.SampleRate)
	assert.Equal(t, uint8(2), f.Properties.Channels)
	assert.Equal(t, uint64(64), f.Properties.SampleCount) // 16 bytes / 2 channels * 8
	assert.Equal(t, int64(16), f.AudioRegion.Size)
}

func TestWalkRejectsBadForm(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("FRM8")
	var sz [8]byte
	binary.BigEndian.PutUint64(sz[:], 4)
	buf.Write(sz[:])
	buf.WriteString("JUNK")
	_, err := Walk(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
