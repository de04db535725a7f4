package audiosum

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func buildWAV(fmtBody, dataBody []byte) []byte {
	var body []byte
	body = append(body, "WAVE"...)
	body = append(body, leChunk("fmt ", fmtBody)...)
	body = append(body, leChunk("data", dataBody)...)

	var out []byte
	out = append(out, "RIFF"...)
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], uint32(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func fmtChunkBody() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:2], 1)
	binary.LittleEndian.PutUint16(b[2:4], 2)
	binary.LittleEndian.PutUint32(b[4:8], 44100)
	binary.LittleEndian.PutUint32(b[8:12], 44100*2*2)
	binary.LittleEndian.PutUint16(b[12:14], 4)
	binary.LittleEndian.PutUint16(b[14:16], 16)
	return b
}

func TestSumIsStableAcrossDifferentTagBytes(t *testing.T) {
	audio := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	a := buildWAV(fmtChunkBody(), audio)
	b := buildWAV(fmtChunkBody(), audio)
	// A different fmt chunk (different sample rate) shouldn't be hashed
	// either, but here we just confirm two structurally identical files
	// with the same audio payload hash the same.
	sumA, err := Sum(bytes.NewReader(a))
	require.NoError(t, err)
	sumB, err := Sum(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB)

	want := sha1.Sum(audio)
	assert.Equal(t, hex.EncodeToString(want[:]), sumA)
}

func TestSumChangesWithAudioData(t *testing.T) {
	a := buildWAV(fmtChunkBody(), []byte{1, 2, 3, 4})
	b := buildWAV(fmtChunkBody(), []byte{5, 6, 7, 8})

	sumA, err := Sum(bytes.NewReader(a))
	require.NoError(t, err)
	sumB, err := Sum(bytes.NewReader(b))
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumB)
}
