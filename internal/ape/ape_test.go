package ape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

func buildItemBytes(items []Item) []byte {
	return SerializeItems(items)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Version: 2000, Size: 123, ItemCount: 2, HasHeader: true, HasFooter: true}
	raw := SerializeHeader(h)
	require.Equal(t, HeaderFooterSize, len(raw))
	require.Equal(t, Preamble, string(raw[0:8]))

	got, err := ParseHeader(raw[8:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestParseHeaderRejectsWrongBodyLength(t *testing.T) {
	_, err := ParseHeader([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestValidateKeyRejectsReservedNames(t *testing.T) {
	for _, k := range []string{"ID3", "tag", "OggS", "mp+"} {
		assert.Error(t, ValidateKey(k), "key %q should be reserved", k)
	}
}

func TestValidateKeyRejectsShortAndLongKeys(t *testing.T) {
	assert.Error(t, ValidateKey("A"))
	assert.Error(t, ValidateKey(string(make([]byte, 256))))
	assert.NoError(t, ValidateKey("AB"))
}

func TestParseItemsTextAndBinary(t *testing.T) {
	raw := buildItemBytes([]Item{
		{Key: "Artist", Type: ItemText, Text: "Test Artist"},
		{Key: "Cover Art (front)", Type: ItemBinary, Binary: append([]byte("cover.jpg\x00"), []byte{0xFF, 0xD8, 0xFF}...)},
	})
	items, err := ParseItems(raw, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Test Artist", items[0].Text)
	assert.Equal(t, ItemBinary, items[1].Type)
}

func TestParseItemsSkipsReservedKey(t *testing.T) {
	raw := buildItemBytes([]Item{
		{Key: "ID3", Type: ItemText, Text: "junk"},
		{Key: "Title", Type: ItemText, Text: "Real Title"},
	})
	items, err := ParseItems(raw, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Title", items[0].Key)
}

func TestToGenericMapsSimpleAndTrackFields(t *testing.T) {
	items := []Item{
		{Key: "Title", Type: ItemText, Text: "Song"},
		{Key: "Track", Type: ItemText, Text: "4/9"},
		{Key: "Genre", Type: ItemText, Text: "Rock"},
	}
	g := ToGeneric(2000, items)
	assert.Equal(t, gentag.APEv2, g.Type)
	assert.Equal(t, "Song", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "4", g.TextOf(itemkey.TrackNumber))
	assert.Equal(t, "9", g.TextOf(itemkey.TrackTotal))
	assert.Equal(t, "Rock", g.TextOf(itemkey.Genre))
}

func TestToGenericExtractsCoverArt(t *testing.T) {
	items := []Item{
		{Key: "Cover Art (front)", Type: ItemBinary, Binary: append([]byte("cover.png\x00"), []byte{1, 2, 3}...)},
	}
	g := ToGeneric(2000, items)
	require.Len(t, g.Pictures, 1)
	assert.Equal(t, "image/png", g.Pictures[0].MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, g.Pictures[0].Data)
}

func TestToGenericPreservesUnmappedKeyAsRemainder(t *testing.T) {
	items := []Item{
		{Key: "Some Custom Field", Type: ItemText, Text: "value"},
	}
	g := ToGeneric(1000, items)
	assert.Equal(t, gentag.APEv1, g.Type)
	rem, ok := g.Remainder.(*Remainder)
	require.True(t, ok)
	require.Len(t, rem.Unmapped, 1)
	assert.Equal(t, "Some Custom Field", rem.Unmapped[0].Key)
}

func TestMergeRoundTripsTrackAndTitle(t *testing.T) {
	items := []Item{
		{Key: "Title", Type: ItemText, Text: "Song"},
		{Key: "Track", Type: ItemText, Text: "4/9"},
	}
	g := ToGeneric(2000, items)
	rem := g.Remainder.(*Remainder)
	out := rem.Merge(g).([]Item)

	byKey := map[string]Item{}
	for _, it := range out {
		byKey[it.Key] = it
	}
	assert.Equal(t, "Song", byKey["Title"].Text)
	assert.Equal(t, "4/9", byKey["Track"].Text)
}
