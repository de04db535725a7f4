package taggedfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
)

func TestFromExtensionKnownAndUnknown(t *testing.T) {
	ft, ok := FromExtension("mp3")
	require.True(t, ok)
	assert.Equal(t, MPEG, ft)

	ft, ok = FromExtension("m4a")
	require.True(t, ok)
	assert.Equal(t, MP4, ft)

	_, ok = FromExtension("xyz")
	assert.False(t, ok)
}

func TestPrimaryTagType(t *testing.T) {
	assert.Equal(t, gentag.ID3v2_4, MPEG.PrimaryTagType())
	assert.Equal(t, gentag.APEv2, WavPack.PrimaryTagType())
	assert.Equal(t, gentag.VorbisComment, FLAC.PrimaryTagType())
	assert.Equal(t, gentag.MP4Ilst, MP4.PrimaryTagType())
	assert.Equal(t, gentag.DFFText, DFF.PrimaryTagType())
}

func TestSupports(t *testing.T) {
	assert.True(t, MPEG.Supports(gentag.ID3v2_4))
	assert.True(t, MPEG.Supports(gentag.APEv2))
	assert.False(t, MPEG.Supports(gentag.MP4Ilst))
	assert.True(t, AIFF.Supports(gentag.AIFFText))
}

func TestTaggedFilePrimaryTag(t *testing.T) {
	tf := TaggedFile{
		Type: MPEG,
		Tags: []gentag.Tag{
			{Type: gentag.ID3v1},
			{Type: gentag.ID3v2_4, Items: []gentag.TagItem{{Value: gentag.Text("x")}}},
		},
	}
	tag, ok := tf.PrimaryTag()
	require.True(t, ok)
	assert.Equal(t, gentag.ID3v2_4, tag.Type)

	_, ok = tf.Tag(gentag.VorbisComment)
	assert.False(t, ok)
}
