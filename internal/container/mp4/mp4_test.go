package mp4

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(name string, body []byte) []byte {
	var out []byte
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(8+len(body)))
	out = append(out, sz[:]...)
	out = append(out, name...)
	out = append(out, body...)
	return out
}

func dataAtom(class uint32, payload []byte) []byte {
	body := make([]byte, 8+len(payload))
	body[0] = 0
	body[1] = byte(class >> 16)
	body[2] = byte(class >> 8)
	body[3] = byte(class)
	copy(body[8:], payload)
	return box("data", body)
}

func mvhdBody() []byte {
	b := make([]byte, 20)
	binary.BigEndian.PutUint32(b[12:16], 1000) // timescale
	binary.BigEndian.PutUint32(b[16:20], 5000) // duration
	return b
}

func buildMP4(t *testing.T, ilstBody []byte, mdatBody []byte) []byte {
	t.Helper()
	moovBody := append(box("mvhd", mvhdBody()),
		box("udta", box("meta", append([]byte{0, 0, 0, 0}, box("ilst", ilstBody)...)))...)
	var out []byte
	out = append(out, box("ftyp", []byte("M4A isomM4A "))...)
	out = append(out, box("moov", moovBody)...)
	out = append(out, box("mdat", mdatBody)...)
	return out
}

func TestWalkParsesTitleAtomAndMdat(t *testing.T) {
	nam := box("\xa9nam", dataAtom(1, []byte("Song")))
	data := buildMP4(t, nam, []byte{1, 2, 3, 4})

	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, f.Atoms, 1)
	assert.Equal(t, "\xa9nam", f.Atoms[0].Name)
	require.Len(t, f.Atoms[0].Values, 1)
	assert.Equal(t, "Song", f.Atoms[0].Values[0].Text())
	assert.InDelta(t, 5.0, f.Properties.DurationSeconds, 0.001)
	assert.Equal(t, int64(4), f.AudioRegion.Size)
	assert.Equal(t, data[f.AudioRegion.Offset:f.AudioRegion.Offset+f.AudioRegion.Size], []byte{1, 2, 3, 4})
}

func TestWalkParsesFreeformAtom(t *testing.T) {
	mean := box("mean", append([]byte{0, 0, 0, 0}, "com.apple.iTunes"...))
	name := box("name", append([]byte{0, 0, 0, 0}, "SUBTITLE"...))
	freeform := box("----", append(append(mean, name...), dataAtom(1, []byte("hello"))...))

	data := buildMP4(t, freeform, nil)
	f, err := Walk(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, f.Atoms, 1)
	assert.True(t, f.Atoms[0].IsFreeform())
	assert.Equal(t, "com.apple.iTunes", f.Atoms[0].Mean)
	assert.Equal(t, "SUBTITLE", f.Atoms[0].FreeformName)
	require.Len(t, f.Atoms[0].Values, 1)
	assert.Equal(t, "hello", f.Atoms[0].Values[0].Text())
}

func TestWalkRejectsBadAtomLength(t *testing.T) {
	var buf bytes.Buffer
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], 2) // shorter than the 8-byte header itself
	buf.Write(sz[:])
	buf.WriteString("ftyp")
	_, err := Walk(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
