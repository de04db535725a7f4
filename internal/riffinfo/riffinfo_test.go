package riffinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

func TestParseSerializeChunksRoundTrip(t *testing.T) {
	l := List{Entries: []Entry{
		{Key: "INAM", Value: "Song"},
		{Key: "IART", Value: "Artist"},
	}}
	raw := SerializeChunks(l)
	got, err := ParseChunks(raw)
	require.NoError(t, err)
	assert.Equal(t, l.Entries, got.Entries)
}

func TestSetReplacesCaseInsensitively(t *testing.T) {
	var l List
	l.Set("INAM", "First")
	l.Set("inam", "Second")
	require.Len(t, l.Entries, 1)
	assert.Equal(t, "Second", l.Get("INAM"))
}

func TestRemove(t *testing.T) {
	var l List
	l.Set("INAM", "Song")
	v, ok := l.Remove("inam")
	assert.True(t, ok)
	assert.Equal(t, "Song", v)
	assert.Empty(t, l.Entries)
}

func TestParseChunksPadsOddLength(t *testing.T) {
	raw := append([]byte("INAM"), 3, 0, 0, 0)
	raw = append(raw, "ab\x00"...)
	raw = append(raw, 0) // alignment pad
	l, err := ParseChunks(raw)
	require.NoError(t, err)
	require.Len(t, l.Entries, 1)
	assert.Equal(t, "ab", l.Entries[0].Value)
}

func TestToGenericMapsSimpleAndTrackFields(t *testing.T) {
	l := List{Entries: []Entry{
		{Key: "INAM", Value: "Song"},
		{Key: "IART", Value: "Artist"},
		{Key: "IPRT", Value: "3"},
		{Key: "IFRM", Value: "12"},
	}}
	g := ToGeneric(l)
	assert.Equal(t, gentag.RIFFInfo, g.Type)
	assert.Equal(t, "Song", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "Artist", g.TextOf(itemkey.TrackArtist))
	assert.Equal(t, "3", g.TextOf(itemkey.TrackNumber))
	assert.Equal(t, "12", g.TextOf(itemkey.TrackTotal))
}

func TestToGenericPreservesUnknownKeyInRemainder(t *testing.T) {
	l := List{Entries: []Entry{{Key: "IKEY", Value: "jazz, live"}}}
	g := ToGeneric(l)
	rem, ok := g.Remainder.(*Remainder)
	require.True(t, ok)
	require.Len(t, rem.Unmapped, 1)
	assert.Equal(t, "IKEY", rem.Unmapped[0].Key)
}

func TestMergeRoundTripsTitleAndTrack(t *testing.T) {
	l := List{Entries: []Entry{
		{Key: "INAM", Value: "Song"},
		{Key: "IPRT", Value: "3"},
	}}
	g := ToGeneric(l)
	rem := g.Remainder.(*Remainder)
	out := rem.Merge(g).(List)

	assert.Equal(t, "Song", out.Get("INAM"))
	assert.Equal(t, "3", out.Get("IPRT"))
}
