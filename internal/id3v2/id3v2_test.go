package id3v2

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/picture"
)

func buildRawTag(version Version, frames ...Frame) []byte {
	t := Tag{Header: Header{Version: version}, Frames: frames}
	return Serialize(t)
}

func TestParseHeaderV24(t *testing.T) {
	h := Header{Version: V2_4, Unsynchronisation: true, Size: 1234}
	raw := SerializeHeader(h)
	got, err := ParseHeader(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestParseHeaderRejectsBadSignature(t *testing.T) {
	_, err := ParseHeader(bytes.NewReader([]byte("XXXX000000")))
	assert.Error(t, err)
}

func TestTextFrameRoundTripV23(t *testing.T) {
	raw := buildRawTag(V2_3, Frame{ID: "TIT2", Value: Text{Values: []string{"A Title"}}})
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)
	f, ok := tag.Get("TIT2")
	require.True(t, ok)
	txt, ok := f.Value.(Text)
	require.True(t, ok)
	assert.Equal(t, []string{"A Title"}, txt.Values)
}

func TestV22FrameIDCanonicalized(t *testing.T) {
	raw := buildRawTag(V2_2, Frame{ID: "TT2", Value: Text{Values: []string{"Old Style"}}})
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)
	f, ok := tag.Get("TIT2")
	require.True(t, ok)
	txt := f.Value.(Text)
	assert.Equal(t, "Old Style", txt.Joined())
}

func TestCommentFrameRoundTrip(t *testing.T) {
	want := CommentOrLyrics{Language: "eng", Description: "d", Text: "hello world"}
	raw := buildRawTag(V2_3, Frame{ID: "COMM", Value: want})
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)
	f, ok := tag.Get("COMM")
	require.True(t, ok)
	c := f.Value.(CommentOrLyrics)
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("parsed COMM frame doesn't match original (-want +got):\n%s", diff)
	}
}

func TestAPICFrameRoundTrip(t *testing.T) {
	want := picture.Picture{MIMEType: "image/png", PictureType: picture.CoverFront, Data: []byte{1, 2, 3, 4}}
	raw := buildRawTag(V2_3, Frame{ID: "APIC", Value: Picture{Pic: want}})
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)
	f, ok := tag.Get("APIC")
	require.True(t, ok)
	p := f.Value.(Picture)
	if diff := cmp.Diff(want, p.Pic); diff != "" {
		t.Errorf("parsed APIC frame doesn't match original (-want +got):\n%s", diff)
	}
}

func TestGenreExpansion(t *testing.T) {
	tests := map[string]string{
		"Test":      "Test",
		"(17) Test": "Rock Test",
		"(17)":      "Rock",
		"Test(17)":  "Test(17)",
		"(17)(93)":  "Rock Psychedelic Rock",
		"(RX)":      "Remix",
		"(CR)":      "Cover",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseGenreContent(in), "input %q", in)
	}
}

func TestTDRCSplitToV23(t *testing.T) {
	raw := buildRawTag(V2_4, Frame{ID: "TDRC", Value: Text{Values: []string{"2024-06-03T14:08:49"}}})
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)

	down := DowngradeToV23(tag)
	year, ok := down.Get("TYER")
	require.True(t, ok)
	assert.Equal(t, "2024", year.Value.(Text).Joined())

	date, ok := down.Get("TDAT")
	require.True(t, ok)
	assert.Equal(t, "0306", date.Value.(Text).Joined())

	tym, ok := down.Get("TIME")
	require.True(t, ok)
	assert.Equal(t, "1408", tym.Value.(Text).Joined())
}

func TestToGenericMapsTrackAndGenre(t *testing.T) {
	raw := buildRawTag(V2_3,
		Frame{ID: "TIT2", Value: Text{Values: []string{"Song"}}},
		Frame{ID: "TRCK", Value: Text{Values: []string{"3/12"}}},
		Frame{ID: "TCON", Value: Text{Values: []string{"(17)"}}},
	)
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)

	g := ToGeneric(tag)
	assert.Equal(t, "Song", g.TextOf(itemkey.TrackTitle))
	assert.Equal(t, "3", g.TextOf(itemkey.TrackNumber))
	assert.Equal(t, "12", g.TextOf(itemkey.TrackTotal))
	assert.Equal(t, "Rock", g.TextOf(itemkey.Genre))
}

func TestDuplicateTextFrameFirstNonEmptyWins(t *testing.T) {
	raw := buildRawTag(V2_3,
		Frame{ID: "TIT2", Value: Text{Values: []string{"First"}}},
		Frame{ID: "TIT2", Value: Text{Values: []string{"Second"}}},
	)
	tag, err := Parse(bytes.NewReader(raw), gentag.Strict)
	require.NoError(t, err)
	g := ToGeneric(tag)
	assert.Equal(t, "First", g.TextOf(itemkey.TrackTitle))
}

func TestUnsynchroniserCollapsesFF00(t *testing.T) {
	r := &byteio.Unsynchroniser{Reader: bytes.NewReader([]byte{0xFF, 0x00, 0x01})}
	got := make([]byte, 2)
	n, err := r.Read(got)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xFF, 0x01}, got)
}
