package aac

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adtsFrame builds a 7-byte-header ADTS frame (no CRC) with the given
// sampling-frequency-table index, channel configuration, and a payload
// of payloadLen zero bytes.
func adtsFrame(freqIdx, channelConfig byte, payloadLen int) []byte {
	frameLength := uint32(7 + payloadLen)
	header := make([]byte, 7)
	header[0] = 0xFF
	header[1] = 0xF1 // MPEG-4, layer 0, protection_absent=1 (no CRC)
	header[2] = (freqIdx << 2) | ((channelConfig >> 2) & 0x1)
	header[3] = ((channelConfig & 0x3) << 6) | byte((frameLength>>11)&0x3)
	header[4] = byte((frameLength >> 3) & 0xFF)
	header[5] = byte((frameLength&0x7)<<5) | 0x1F
	header[6] = 0xFC
	return append(header, make([]byte, payloadLen)...)
}

func TestWalkReadsFirstFrameProperties(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(adtsFrame(4, 2, 50))  // 44100 Hz, stereo
	buf.Write(adtsFrame(4, 2, 50))

	f, err := Walk(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), f.Properties.SampleRate)
	assert.Equal(t, uint8(2), f.Properties.Channels)
	assert.Equal(t, 2, f.Properties.FrameCount)
	assert.False(t, f.Properties.HasCRC)
}

func TestWalkRejectsMissingSyncword(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := Walk(bytes.NewReader(data))
	assert.Error(t, err)
}
