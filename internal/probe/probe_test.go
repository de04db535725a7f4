package probe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/ape"
	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/riffinfo"
	"github.com/silvertag/audiotags/internal/taggedfile"
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

func buildWAV(fmtBody, listBody, dataBody []byte) []byte {
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
	binary.LittleEndian.PutUint16(b[0:2], 1)
	binary.LittleEndian.PutUint16(b[2:4], channels)
	binary.LittleEndian.PutUint32(b[4:8], sampleRate)
	binary.LittleEndian.PutUint32(b[8:12], sampleRate*uint32(channels)*uint32(bitsPerSample)/8)
	binary.LittleEndian.PutUint16(b[12:14], channels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(b[14:16], bitsPerSample)
	return b
}

func TestIdentifyRecognisesWAV(t *testing.T) {
	data := buildWAV(fmtChunkBody(2, 44100, 16), nil, []byte{1, 2, 3, 4})
	ft, err := Identify(bytes.NewReader(data), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, taggedfile.WAV, ft)
}

func TestIdentifyRecognisesFLAC(t *testing.T) {
	data := append([]byte("fLaC"), make([]byte, 40)...)
	ft, err := Identify(bytes.NewReader(data), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, taggedfile.FLAC, ft)
}

func TestIdentifyDisambiguatesMPEGAndAAC(t *testing.T) {
	// byte1 = 0xFB: version bits 11 (V1), layer bits 01 (III) -> MPEG.
	mpegBuf := []byte{0xFF, 0xFB, 0x90, 0x00}
	ft, err := Identify(bytes.NewReader(mpegBuf), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, taggedfile.MPEG, ft)

	// byte1 = 0xF9: bit 0x10 set, bits 0x06 clear -> ADTS.
	aacBuf := []byte{0xFF, 0xF9, 0x4C, 0x80}
	ft, err = Identify(bytes.NewReader(aacBuf), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, taggedfile.AAC, ft)
}

func TestIdentifyFailsOnUnknownSignature(t *testing.T) {
	_, err := Identify(bytes.NewReader([]byte("not an audio file at all, just junk")), ParseOptions{MaxJunkBytes: 64})
	assert.Error(t, err)
}

func TestReadFromWAVAssemblesPropertiesAndTags(t *testing.T) {
	var l riffinfo.List
	l.Set("INAM", "Song")
	l.Set("IART", "Band")
	listBody := append([]byte("INFO"), riffinfo.SerializeChunks(l)...)

	data := buildWAV(fmtChunkBody(2, 44100, 16), listBody, []byte{0, 0})

	tf, err := ReadFrom(bytes.NewReader(data), ParseOptions{ReadTags: true})
	require.NoError(t, err)
	assert.Equal(t, taggedfile.WAV, tf.Type)
	assert.Equal(t, uint32(44100), tf.Properties.SampleRate)
	assert.Equal(t, uint8(2), tf.Properties.Channels)

	tag, ok := tf.Tag(gentag.RIFFInfo)
	require.True(t, ok)
	assert.Equal(t, "Song", tag.TextOf(itemkey.TrackTitle))
}

func mp3Frame(byte1 byte) []byte {
	// byte2: bitrate index 9 (128kbps for V1/LIII), rate index 0 (44100).
	byte2 := byte(9<<4) | (0 << 2)
	byte3 := byte(0)
	return []byte{0xFF, byte1, byte2, byte3}
}

func TestReadFromMPEGWithAPEv2Tag(t *testing.T) {
	frame := mp3Frame(0xFB)
	// MPEG1 Layer III, 128kbps, 44100Hz frame length = 144*128000/44100 = 417 bytes.
	padded := make([]byte, 417)
	copy(padded, frame)

	items := ape.SerializeItems([]ape.Item{{Key: "Title", Type: ape.ItemText, Text: "Song"}})
	apeHeader := ape.Header{Version: 2000, ItemCount: 1, HasFooter: true}
	apeHeader.Size = uint32(len(items) + ape.HeaderFooterSize)

	var buf bytes.Buffer
	buf.Write(padded)
	buf.Write(items)
	buf.Write(ape.SerializeHeader(apeHeader))

	tf, err := ReadFrom(bytes.NewReader(buf.Bytes()), ParseOptions{ReadTags: true})
	require.NoError(t, err)
	assert.Equal(t, taggedfile.MPEG, tf.Type)

	tag, ok := tf.Tag(gentag.APEv2)
	require.True(t, ok)
	assert.NotEmpty(t, tag.Items)
}
