package dfftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beChunk16(id string, body []byte) []byte {
	var out []byte
	out = append(out, id...)
	var sz [8]byte
	n := uint64(len(body))
	for i := 7; i >= 0; i-- {
		sz[i] = byte(n)
		n >>= 8
	}
	out = append(out, sz[:]...)
	out = append(out, body...)
	return out
}

func TestParseDIIN(t *testing.T) {
	body := append(beChunk16("DIAR", []byte("Artist\x00")), beChunk16("DITI", []byte("Title\x00"))...)
	info, err := ParseDIIN(body)
	require.NoError(t, err)
	assert.Equal(t, "Artist", info.Artist)
	assert.Equal(t, "Title", info.Title)
}

func TestParseCommentsSingleEntry(t *testing.T) {
	var body []byte
	body = append(body, 0, 1) // count = 1
	body = append(body, make([]byte, 6)...)
	body = append(body, 0, 0) // cmtType
	body = append(body, 0, 0) // cmtRef
	text := "hello"
	body = append(body, 0, 0, 0, byte(len(text)))
	body = append(body, text...)

	comments, err := ParseComments(body)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hello", comments[0].Text)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Tag{}.IsEmpty())
	assert.False(t, Tag{Comments: []Comment{{Text: "x"}}}.IsEmpty())
}
