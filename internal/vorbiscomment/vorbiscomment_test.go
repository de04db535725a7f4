package vorbiscomment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/picture"
)

func TestParseSerializeRoundTrip(t *testing.T) {
	c := Comment{
		Vendor: "reference libFLAC 1.4.3",
		Entries: []Entry{
			{Key: "TITLE", Value: "Song"},
			{Key: "ARTIST", Value: "Artist"},
		},
	}
	raw := Serialize(c)
	got, err := Parse(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("parsed comment doesn't match original (-want +got):\n%s", diff)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	c := Comment{Entries: []Entry{{Key: "Title", Value: "Song"}}}
	assert.Equal(t, "Song", c.Get("TITLE"))
	assert.Equal(t, "Song", c.Get("title"))
}

func TestGetAllPreservesOrder(t *testing.T) {
	c := Comment{Entries: []Entry{
		{Key: "ARTIST", Value: "First"},
		{Key: "ARTIST", Value: "Second"},
	}}
	assert.Equal(t, []string{"First", "Second"}, c.GetAll("artist"))
}

func TestValidateKeyRejectsEquals(t *testing.T) {
	assert.Error(t, ValidateKey("BAD=KEY"))
	assert.NoError(t, ValidateKey("TITLE"))
}

func TestPictureBlockRoundTrip(t *testing.T) {
	p := picture.Picture{PictureType: picture.CoverFront, MIMEType: "image/png", Description: "front", Data: []byte{1, 2, 3}}
	encoded := EncodePictureBlock(p)
	decoded, err := DecodePictureBlock(encoded)
	require.NoError(t, err)
	assert.Equal(t, p.PictureType, decoded.PictureType)
	assert.Equal(t, p.MIMEType, decoded.MIMEType)
	assert.Equal(t, p.Description, decoded.Description)
	assert.Equal(t, p.Data, decoded.Data)
}

func TestToGenericSplitsTrackNumberSlash(t *testing.T) {
	c := Comment{Entries: []Entry{
		{Key: "TITLE", Value: "Song"},
		{Key: "TRACKNUMBER", Value: "3/12"},
	}}
	g := ToGeneric(c)
	assert.Equal(t, gentag.VorbisComment, g.Type)
	assert.Equal(t, "Song", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "3", g.TextOf(itemkey.TrackNumber))
	assert.Equal(t, "12", g.TextOf(itemkey.TrackTotal))
}

func TestToGenericPerformerOverridesArtist(t *testing.T) {
	c := Comment{Entries: []Entry{
		{Key: "ARTIST", Value: "Composer Name"},
		{Key: "PERFORMER", Value: "Performing Artist"},
	}}
	g := ToGeneric(c)
	assert.Equal(t, "Performing Artist", g.TextOf(itemkey.TrackArtist))
}

func TestToGenericMultiValuedArtistPreservesAll(t *testing.T) {
	c := Comment{Entries: []Entry{
		{Key: "ARTIST", Value: "One"},
		{Key: "ARTIST", Value: "Two"},
	}}
	g := ToGeneric(c)
	all := g.GetAll(itemkey.TrackArtist)
	require.Len(t, all, 2)
	assert.Equal(t, "One", all[0].Value.Text)
	assert.Equal(t, "Two", all[1].Value.Text)
}

func TestToGenericPreservesUnknownKeyInRemainder(t *testing.T) {
	c := Comment{Entries: []Entry{{Key: "CUSTOMFIELD", Value: "x"}}}
	g := ToGeneric(c)
	rem, ok := g.Remainder.(*Remainder)
	require.True(t, ok)
	require.Len(t, rem.Unmapped, 1)
	assert.Equal(t, "CUSTOMFIELD", rem.Unmapped[0].Key)
}

func TestMergeRoundTripsTitleAndTrack(t *testing.T) {
	c := Comment{Entries: []Entry{
		{Key: "TITLE", Value: "Song"},
		{Key: "TRACKNUMBER", Value: "3/12"},
	}}
	g := ToGeneric(c)
	rem := g.Remainder.(*Remainder)
	out := rem.Merge(g).(Comment)

	assert.Equal(t, "Song", out.Get("TITLE"))
	assert.Equal(t, "3/12", out.Get("TRACKNUMBER"))
}
