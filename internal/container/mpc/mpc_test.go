package mpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/ape"
)

// varInt encodes n using Musepack's 7-bits-per-byte variable-length
// scheme (continuation signaled by the top bit).
func varInt(n uint64) []byte {
	if n == 0 {
		return []byte{0}
	}
	var groups []byte
	for n > 0 {
		groups = append([]byte{byte(n & 0x7F)}, groups...)
		n >>= 7
	}
	for i := 0; i < len(groups)-1; i++ {
		groups[i] |= 0x80
	}
	return groups
}

func buildSHPacket(sampleRateIdx, channels uint16, sampleCount uint64) []byte {
	var body []byte
	body = append(body, make([]byte, 4)...) // CRC
	body = append(body, 8)                  // stream version
	body = append(body, varInt(sampleCount)...)
	body = append(body, varInt(0)...) // beginning silence

	flags := (sampleRateIdx & 0x7 << 13) | ((channels - 1) & 0xF << 4)
	body = append(body, byte(flags>>8), byte(flags))

	packetLen := 2 + 1 + len(body) // key + size field (1 byte, fits here) + body
	var packet []byte
	packet = append(packet, "SH"...)
	packet = append(packet, varInt(uint64(packetLen))...)
	packet = append(packet, body...)
	return packet
}

func TestParseReadsSV8StreamHeader(t *testing.T) {
	sh := buildSHPacket(0, 2, 123456) // rate index 0 = 44100 Hz, stereo

	items := ape.SerializeItems([]ape.Item{{Key: "Title", Type: ape.ItemText, Text: "Song"}})
	apeHeader := ape.Header{Version: 2000, ItemCount: 1, HasFooter: true}
	apeHeader.Size = uint32(len(items) + ape.HeaderFooterSize)

	var buf bytes.Buffer
	buf.WriteString("MPCK")
	buf.Write(sh)
	buf.Write(items)
	buf.Write(ape.SerializeHeader(apeHeader))

	f, err := Parse(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, SV8, f.Properties.Version)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	assert.Equal(t, uint8(2), f.Properties.Channels)
	assert.Equal(t, uint64(123456), f.Properties.SampleCount)
	require.NotNil(t, f.Tags.APEv2)
}

func TestParseRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("JUNK")
	_, err := Parse(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
