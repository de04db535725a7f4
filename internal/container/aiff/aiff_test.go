package aiff

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beChunk(id string, body []byte) []byte {
	var out []byte
	out = append(out, id...)
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

// encodeExtendedFloat packs an integer sample rate as an 80-bit IEEE
// 754 extended precision value, the inverse of decodeExtendedFloat.
func encodeExtendedFloat(v uint32) [10]byte {
	var out [10]byte
	if v == 0 {
		return out
	}
	exponent := 0
	mantissa := uint64(v)
	for mantissa < (uint64(1) << 63) {
		mantissa <<= 1
		exponent--
	}
	biased := 16383 + 63 + exponent
	out[0] = byte(biased >> 8)
	out[1] = byte(biased)
	for i := 0; i < 8; i++ {
		out[9-i] = byte(mantissa >> (8 * i))
	}
	return out
}

func pstring(s string) []byte {
	b := append([]byte{byte(len(s))}, s...)
	if len(b)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func commBody(channels uint16, frames uint32, bits uint16, sampleRate uint32) []byte {
	var out []byte
	var ch, bt [2]byte
	binary.BigEndian.PutUint16(ch[:], channels)
	binary.BigEndian.PutUint16(bt[:], bits)
	var fr [4]byte
	binary.BigEndian.PutUint32(fr[:], frames)
	out = append(out, ch[:]...)
	out = append(out, fr[:]...)
	out = append(out, bt[:]...)
	ext := encodeExtendedFloat(sampleRate)
	out = append(out, ext[:]...)
	return out
}

func buildAIFF(t *testing.T, name string, audio []byte) []byte {
	t.Helper()
	var body []byte
	body = append(body, "AIFF"...)
	body = append(body, beChunk("COMM", commBody(2, 1000, 16, 44100))...)
	if name != "" {
		body = append(body, beChunk("NAME", []byte(name))...)
	}
	ssnd := append([]byte{0, 0, 0, 0, 0, 0, 0, 0}, audio...)
	body = append(body, beChunk("SSND", ssnd)...)

	var out []byte
	out = append(out, "FORM"...)
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func TestWalkParsesCOMMAndSSND(t *testing.T) {
	data := buildAIFF(t, "Song", []byte{1, 2, 3, 4})
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(2), f.Properties.Channels)
	assert.Equal(t, uint32(1000), f.Properties.SampleFrames)
	assert.Equal(t, uint16(16), f.Properties.BitsPerSample)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	assert.False(t, f.Properties.Compressed)
	assert.Equal(t, "Song", f.Text.Name)
	assert.Equal(t, int64(12), f.AudioRegion.Size) // 8-byte SSND header + 4 bytes audio
}

func TestWalkRejectsBadForm(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("FORM")
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], 4)
	buf.Write(sz[:])
	buf.WriteString("JUNK")
	_, err := Walk(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}

func TestWalkRequiresSSND(t *testing.T) {
	var body []byte
	body = append(body, "AIFF"...)
	body = append(body, beChunk("COMM", commBody(1, 10, 8, 8000))...)

	var out []byte
	out = append(out, "FORM"...)
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(len(body)))
	out = append(out, sz[:]...)
	out = append(out, body...)

	_, err := Walk(bytes.NewReader(out))
	assert.Error(t, err)
}
