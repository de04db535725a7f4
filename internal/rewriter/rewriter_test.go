package rewriter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/container/ogg"
	"github.com/silvertag/audiotags/internal/vorbiscomment"
)

func TestPatchPadsInPlaceWhenReplacementFits(t *testing.T) {
	original := []byte("HEADbeforeOLDTAGVALUE!!afterTAIL")
	region := Region{Offset: 10, Size: 13} // "OLDTAGVALUE!!"

	f := NewMemFile(original)
	err := Patch(f, region, []byte("NEW"), PatchOptions{AllowPadding: true})
	require.NoError(t, err)

	got := f.Bytes()
	assert.Equal(t, len(original), len(got), "padding must preserve file length")
	assert.Equal(t, "HEADbeforeNEW\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00afterTAIL", string(got))
}

func TestPatchShiftsTailAndPropagatesSizeDelta(t *testing.T) {
	// A fake RIFF-shaped buffer: 4-byte RIFF size field at offset 4
	// covering everything after it, an inner "old" region to replace.
	body := []byte("WAVEfmt istuffOLDREGIONmoredata")
	riffSize := uint32(len(body))
	original := append([]byte("RIFF"), byte(riffSize), byte(riffSize >> 8), byte(riffSize >> 16), byte(riffSize >> 24))
	original = append(original, body...)

	region := Region{Offset: 8 + int64(len("WAVEfmt i")), Size: int64(len("stuffOLDREGION"))}

	f := NewMemFile(original)
	err := Patch(f, region, []byte("X"), PatchOptions{
		SizeFields: []SizeField{{Offset: 4, Width: 4, BigEndian: false}},
	})
	require.NoError(t, err)

	got := f.Bytes()
	wantLen := len(original) - 14 + 1
	assert.Equal(t, wantLen, len(got))

	gotSize := uint32(got[4]) | uint32(got[5])<<8 | uint32(got[6])<<16 | uint32(got[7])<<24
	assert.Equal(t, riffSize-14+1, gotSize)
}

func TestPatchRejectsRegionPastEndOfFile(t *testing.T) {
	f := NewMemFile([]byte("short"))
	err := Patch(f, Region{Offset: 0, Size: 100}, []byte("x"), PatchOptions{})
	assert.Error(t, err)
}

func TestPromoteBoxTo64Bit(t *testing.T) {
	// box header: 4-byte size (32-bit) + 4-byte type, followed by body.
	body := make([]byte, 16)
	boxLen := 8 + len(body)
	box := []byte{0, 0, 0, byte(boxLen)}
	box = append(box, "free"...)
	box = append(box, body...)

	f := NewMemFile(box)
	err := PromoteBoxTo64Bit(f, 0, int64(boxLen), nil)
	require.NoError(t, err)

	got := f.Bytes()
	assert.Equal(t, []byte{0, 0, 0, 1}, got[0:4])
	assert.Equal(t, "free", string(got[4:8]))
	wantExt := uint64(boxLen + 8)
	gotExt := uint64(0)
	for _, b := range got[8:16] {
		gotExt = gotExt<<8 | uint64(b)
	}
	assert.Equal(t, wantExt, gotExt)
	assert.Equal(t, body, got[16:16+len(body)])
}

func buildOggStream(serial uint32, idPacket, commentPacket, audioPacket []byte) []byte {
	var out []byte
	out = append(out, ogg.SerializePage(serial, 0, 0, false, false, false, idPacket)...)
	out = append(out, ogg.SerializePage(serial, 1, 0, false, false, false, commentPacket)...)
	out = append(out, ogg.SerializePage(serial, 2, 0, false, true, false, audioPacket)...)
	return out
}

func TestRewriteOggCommentGrowsPacketAndRenumbersTail(t *testing.T) {
	serial := uint32(42)
	idPacket := append([]byte{1}, "vorbis_id_stuff_padded_to_look_real"...)
	oldComment := vorbiscomment.Comment{Vendor: "v1", Entries: []vorbiscomment.Entry{{Key: "TITLE", Value: "Old"}}}
	oldPacket := append([]byte{3}, "vorbis"...)
	oldPacket = append(oldPacket, vorbiscomment.Serialize(oldComment)...)
	audioPacket := []byte("audio-data-unchanged")

	original := buildOggStream(serial, idPacket, oldPacket, audioPacket)

	packets, err := ogg.ReadPackets(bytes.NewReader(original), 0)
	require.NoError(t, err)
	require.Len(t, packets, 3)
	commentPacket := packets[1]

	newComment := vorbiscomment.Comment{
		Vendor: "v1",
		Entries: []vorbiscomment.Entry{
			{Key: "TITLE", Value: "A Much Longer New Title That Grows The Packet Considerably"},
			{Key: "ARTIST", Value: "Someone"},
		},
	}
	newPacket := append([]byte{3}, "vorbis"...)
	newPacket = append(newPacket, vorbiscomment.Serialize(newComment)...)

	f := NewMemFile(original)
	err = RewriteOggComment(f, commentPacket, newPacket)
	require.NoError(t, err)

	rewritten := f.Bytes()
	reparsed, err := ogg.ReadPackets(bytes.NewReader(rewritten), 0)
	require.NoError(t, err)
	require.Len(t, reparsed, 3)

	assert.Equal(t, idPacket, reparsed[0].Data)
	assert.Equal(t, newPacket, reparsed[1].Data)
	assert.Equal(t, audioPacket, reparsed[2].Data)
}
