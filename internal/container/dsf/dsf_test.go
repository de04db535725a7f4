package dsf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leChunk(id string, body []byte) []byte {
	var out []byte
	out = append(out, id...)
	var sz [8]byte
	binary.LittleEndian.PutUint64(sz[:], uint64(len(body)+12))
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func fmtBody(channels, sampleRate, bits uint32, sampleCount uint64) []byte {
	var out [40]byte
	binary.LittleEndian.PutUint32(out[0:4], 1)  // format version
	binary.LittleEndian.PutUint32(out[4:8], 0)  // format ID
	binary.LittleEndian.PutUint32(out[8:12], 2) // channel type
	binary.LittleEndian.PutUint32(out[12:16], channels)
	binary.LittleEndian.PutUint32(out[16:20], sampleRate)
	binary.LittleEndian.PutUint32(out[20:24], bits)
	binary.LittleEndian.PutUint64(out[24:32], sampleCount)
	return out[:]
}

// buildDSF assembles a minimal DSF stream: the 28-byte "DSD " header
// (with an id3Offset pointer when withID3 is set), a "fmt " chunk, a
// "data" chunk, and an optional trailing stand-in ID3v2 region.
func buildDSF(t *testing.T, audio []byte, withID3 bool) []byte {
	t.Helper()
	var body []byte
	body = append(body, leChunk("fmt ", fmtBody(2, 2822400, 1, uint64(len(audio)*8)))...)
	body = append(body, leChunk("data", audio)...)

	const headerSize = 28
	var id3Offset uint64
	if withID3 {
		id3Offset = uint64(headerSize + len(body))
	}

	var out []byte
	out = append(out, "DSD "...)
	var chunkSize [8]byte
	binary.LittleEndian.PutUint64(chunkSize[:], headerSize)
	out = append(out, chunkSize[:]...)
	var fileSize [8]byte
	binary.LittleEndian.PutUint64(fileSize[:], uint64(headerSize+len(body)))
	out = append(out, fileSize[:]...)
	var id3 [8]byte
	binary.LittleEndian.PutUint64(id3[:], id3Offset)
	out = append(out, id3[:]...)
	out = append(out, body...)
	if withID3 {
		out = append(out, []byte("ID3_STUB")...)
	}
	return out
}

func TestWalkParsesFmtAndData(t *testing.T) {
	data := buildDSF(t, bytes.Repeat([]byte{0x55}, 16), false)
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), f.Properties.Channels)
	assert.Equal(t, uint32(2822400), f.Properties.SampleRate)
	assert.Equal(t, int64(16), f.AudioRegion.Size)
}

func TestWalkLocatesID3Region(t *testing.T) {
	data := buildDSF(t, bytes.Repeat([]byte{0x55}, 8), true)
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotNil(t, f.ID3v2Region)
	assert.Equal(t, int64(len("ID3_STUB")), f.ID3v2Region.Size)
}

func TestWalkRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("JUNK")
	var sz [8]byte
	binary.LittleEndian.PutUint64(sz[:], 28)
	buf.Write(sz[:])
	buf.Write(make([]byte, 16))
	_, err := Walk(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
