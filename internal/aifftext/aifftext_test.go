package aifftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, Tag{}.IsEmpty())
	assert.False(t, Tag{Name: "Song"}.IsEmpty())
}

func TestTrimAndPad(t *testing.T) {
	assert.Equal(t, "abc", TrimPad("abc\x00"))
	assert.Equal(t, "abc", TrimPad("abc"))
	assert.Equal(t, "ab\x00\x00", PadToEven("ab\x00"))
	assert.Equal(t, "abc\x00", PadToEven("abc"))
}

func TestCommentsRoundTrip(t *testing.T) {
	comments := []Comment{
		{Timestamp: 1000, MarkerID: 1, Text: "first"},
		{Timestamp: 2000, MarkerID: 0, Text: "ab"},
	}
	raw := SerializeComments(comments)
	got, err := ParseComments(raw)
	require.NoError(t, err)
	assert.Equal(t, comments, got)
}

func TestToGenericMapsNameAuthorAnnotations(t *testing.T) {
	tag := Tag{
		Name:        "Song",
		Author:      "Artist",
		Copyright:   "2024 Someone",
		Annotations: []string{"one", "two"},
	}
	g := ToGeneric(tag)
	assert.Equal(t, gentag.AIFFText, g.Type)
	assert.Equal(t, "Song", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "Artist", g.TextOf(itemkey.TrackArtist))
	assert.Equal(t, "2024 Someone", g.TextOf(itemkey.Copyright))

	all := g.GetAll(itemkey.Comment)
	require.Len(t, all, 2)
	assert.Equal(t, "one", all[0].Value.Text)
	assert.Equal(t, "two", all[1].Value.Text)
}

func TestMergePreservesComments(t *testing.T) {
	tag := Tag{
		Name:     "Song",
		Comments: []Comment{{Timestamp: 1, MarkerID: 2, Text: "note"}},
	}
	g := ToGeneric(tag)
	rem := g.Remainder.(*Remainder)
	out := rem.Merge(g).(Tag)

	assert.Equal(t, "Song", out.Name)
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "note", out.Comments[0].Text)
}
