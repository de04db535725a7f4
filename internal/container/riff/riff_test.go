package riff

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/riffinfo"
)

func leChunk(id string, body []byte) []byte {
	var out []byte
	out = append(out, id...)
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func buildWAV(t *testing.T, fmtBody, listBody, dataBody []byte) []byte {
	t.Helper()
	var body []byte
	body = append(body, "WAVE"...)
	body = append(body, leChunk("fmt ", fmtBody)...)
	if listBody != nil {
		body = append(body, leChunk("LIST", listBody)...)
	}
	body = append(body, leChunk("data", dataBody)...)

	var out []byte
	out = append(out, "RIFF"...)
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func fmtChunkBody(channels uint16, sampleRate uint32, bitsPerSample uint16) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(b[2:4], channels)
	binary.LittleEndian.PutUint32(b[4:8], sampleRate)
	binary.LittleEndian.PutUint32(b[8:12], sampleRate*uint32(channels)*uint32(bitsPerSample)/8)
	binary.LittleEndian.PutUint16(b[12:14], channels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(b[14:16], bitsPerSample)
	return b
}

func TestWalkParsesFmtAndData(t *testing.T) {
	data := buildWAV(t, fmtChunkBody(2, 44100, 16), nil, []byte{1, 2, 3, 4})
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(2), f.Properties.Channels)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	assert.Equal(t, uint16(16), f.Properties.BitsPerSample)
	assert.Equal(t, int64(4), f.AudioRegion.Size)
	assert.Equal(t, data[f.AudioRegion.Offset:f.AudioRegion.Offset+f.AudioRegion.Size], []byte{1, 2, 3, 4})
}

func TestWalkParsesListInfo(t *testing.T) {
	var l riffinfo.List
	l.Set("INAM", "Song")
	l.Set("IART", "Band")
	listBody := append([]byte("INFO"), riffinfo.SerializeChunks(l)...)

	data := buildWAV(t, fmtChunkBody(1, 22050, 8), listBody, []byte{0})
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotNil(t, f.RiffInfo)
	assert.Equal(t, "Song", f.RiffInfo.Get("INAM"))
	assert.Equal(t, "Band", f.RiffInfo.Get("IART"))

	region := f.RiffInfoRegion
	assert.Equal(t, data[region.Offset:region.Offset+region.Size], riffinfo.SerializeChunks(l))
}

func TestWalkRejectsNonWAVE(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], 4)
	buf.Write(sz[:])
	buf.WriteString("JUNK")
	_, err := Walk(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
