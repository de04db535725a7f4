package ilst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

func TestTrackDiscRoundTrip(t *testing.T) {
	data := EncodeTrackDisc(3, 12)
	n, total := TrackDisc(data)
	assert.Equal(t, 3, n)
	assert.Equal(t, 12, total)
}

func TestToGenericMapsSimpleAndTrackAtoms(t *testing.T) {
	atoms := []Atom{
		{Name: "\xa9nam", Values: []Value{{Type: TypeUTF8, Data: []byte("Song")}}},
		{Name: "\xa9ART", Values: []Value{{Type: TypeUTF8, Data: []byte("Artist")}}},
		{Name: "trkn", Values: []Value{{Type: TypeImplicit, Data: EncodeTrackDisc(3, 12)}}},
	}
	g := ToGeneric(atoms)
	assert.Equal(t, gentag.MP4Ilst, g.Type)
	assert.Equal(t, "Song", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "Artist", g.TextOf(itemkey.TrackArtist))
	assert.Equal(t, "3", g.TextOf(itemkey.TrackNumber))
	assert.Equal(t, "12", g.TextOf(itemkey.TrackTotal))
}

func TestToGenericFallsBackToGenreID(t *testing.T) {
	atoms := []Atom{
		{Name: "geID", Values: []Value{{Type: TypeBESignedInt, Data: []byte{0, 0, 0, 21}}}},
	}
	g := ToGeneric(atoms)
	assert.Equal(t, "Rock", g.TextOf(itemkey.Genre))
}

func TestToGenericMapsFreeformMusicBrainzID(t *testing.T) {
	atoms := []Atom{
		{Name: "----", Mean: "com.apple.iTunes", FreeformName: "MusicBrainz Track Id",
			Values: []Value{{Type: TypeUTF8, Data: []byte("abc-123")}}},
	}
	g := ToGeneric(atoms)
	assert.Equal(t, "abc-123", g.TextOf(itemkey.MusicBrainzRecordingID))
}

func TestToGenericPreservesUnknownFreeformInRemainder(t *testing.T) {
	atoms := []Atom{
		{Name: "----", Mean: "com.apple.iTunes", FreeformName: "CUSTOM_FIELD",
			Values: []Value{{Type: TypeUTF8, Data: []byte("x")}}},
	}
	g := ToGeneric(atoms)
	rem, ok := g.Remainder.(*Remainder)
	require.True(t, ok)
	require.Len(t, rem.Unmapped, 1)
	assert.Equal(t, "CUSTOM_FIELD", rem.Unmapped[0].FreeformName)
}

func TestMergeRoundTripsTitleAndTrack(t *testing.T) {
	atoms := []Atom{
		{Name: "\xa9nam", Values: []Value{{Type: TypeUTF8, Data: []byte("Song")}}},
		{Name: "trkn", Values: []Value{{Type: TypeImplicit, Data: EncodeTrackDisc(3, 12)}}},
	}
	g := ToGeneric(atoms)
	rem := g.Remainder.(*Remainder)
	out := rem.Merge(g).([]Atom)

	byName := map[string]Atom{}
	for _, a := range out {
		byName[a.Name] = a
	}
	require.Contains(t, byName, "\xa9nam")
	assert.Equal(t, "Song", byName["\xa9nam"].Values[0].Text())
	n, total := TrackDisc(byName["trkn"].Values[0].Data)
	assert.Equal(t, 3, n)
	assert.Equal(t, 12, total)
}
