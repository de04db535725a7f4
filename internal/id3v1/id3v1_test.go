package id3v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

func buildTag(title, artist, album, year, comment string, track int, genre byte) []byte {
	b := make([]byte, Size)
	copy(b[0:3], "TAG")
	putLatin1(b[3:33], title)
	putLatin1(b[33:63], artist)
	putLatin1(b[63:93], album)
	copy(b[93:97], year)
	if track > 0 {
		putLatin1(b[97:125], comment)
		b[125] = 0
		b[126] = byte(track)
	} else {
		putLatin1(b[97:127], comment)
	}
	b[127] = genre
	return b
}

func TestParseV1Dot0(t *testing.T) {
	b := buildTag("Title", "Artist", "Album", "1997", "a comment", 0, 17)
	tag, err := Parse(b, gentag.Strict)
	require.NoError(t, err)
	assert.Equal(t, "Title", tag.Title)
	assert.Equal(t, "Artist", tag.Artist)
	assert.Equal(t, "Album", tag.Album)
	assert.Equal(t, "1997", tag.Year)
	assert.Equal(t, "a comment", tag.Comment)
	assert.False(t, tag.IsV1Dot1)
	assert.Equal(t, 0, tag.Track)
	assert.Equal(t, byte(17), tag.Genre)
}

func TestParseV1Dot1Track(t *testing.T) {
	b := buildTag("Title", "Artist", "Album", "2003", "short comment", 7, 0)
	tag, err := Parse(b, gentag.Strict)
	require.NoError(t, err)
	assert.True(t, tag.IsV1Dot1)
	assert.Equal(t, 7, tag.Track)
	assert.Equal(t, "short comment", tag.Comment)
}

func TestParseMissingSignature(t *testing.T) {
	b := buildTag("x", "y", "z", "2000", "c", 0, 0)
	copy(b[0:3], "XXX")
	_, err := Parse(b, gentag.Strict)
	assert.ErrorIs(t, err, ErrNotID3v1)
}

func TestParseWrongSize(t *testing.T) {
	_, err := Parse(make([]byte, 64), gentag.Strict)
	assert.Error(t, err)
}

func TestParseYearStrictRejectsGarbage(t *testing.T) {
	b := buildTag("t", "a", "al", "19 3", "c", 0, 0)
	tag, err := Parse(b, gentag.Strict)
	require.NoError(t, err)
	assert.Empty(t, tag.Year)
}

func TestParseYearBestAttemptTrims(t *testing.T) {
	b := buildTag("t", "a", "al", "98", "c", 0, 0)
	// The year field is "98" plus NUL padding, which Strict rejects;
	// BestAttempt trims the padding and keeps the digit run.
	tag, err := Parse(b, gentag.BestAttempt)
	require.NoError(t, err)
	assert.Equal(t, "98", tag.Year)
}

func TestSerializeRoundTrip(t *testing.T) {
	orig := Tag{
		Title: "Round", Artist: "Trip", Album: "Test",
		Year: "2024", Comment: "ok", Track: 5, IsV1Dot1: true, Genre: 0,
	}
	b := Serialize(orig)
	require.Len(t, b, Size)
	got, err := Parse(b, gentag.Strict)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestGenericRoundTrip(t *testing.T) {
	orig := Tag{
		Title: "Foo", Artist: "Bar", Album: "Baz",
		Year: "2001", Comment: "hey", Track: 3, IsV1Dot1: true, Genre: 17,
	}
	g := ToGeneric(orig)
	assert.Equal(t, "Foo", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "Rock", g.TextOf(itemkey.Genre))

	back := FromGeneric(g)
	assert.Equal(t, orig.Title, back.Title)
	assert.Equal(t, orig.Artist, back.Artist)
	assert.Equal(t, orig.Album, back.Album)
	assert.Equal(t, orig.Year, back.Year)
	assert.Equal(t, orig.Comment, back.Comment)
	assert.Equal(t, orig.Track, back.Track)
	assert.Equal(t, orig.Genre, back.Genre)
}

func TestGenreLookup(t *testing.T) {
	name, ok := GenreName(17)
	require.True(t, ok)
	assert.Equal(t, "Rock", name)

	id, ok := GenreID("rock")
	require.True(t, ok)
	assert.Equal(t, byte(17), id)

	_, ok = GenreName(255)
	assert.False(t, ok)

	_, ok = GenreID("Not A Genre")
	assert.False(t, ok)
}
