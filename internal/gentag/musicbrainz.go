package gentag

import "github.com/silvertag/audiotags/internal/itemkey"

// MusicBrainzInfo carries the MusicBrainz Picard identifiers a Tag may
// hold (https://picard.musicbrainz.org/docs/mappings/). Adapted from
// dhowden/tag's mbz package (mbz.Info / tag.MBInfo, tag.MusicBrainz): the
// teacher's version worked on raw per-format frame maps and had to special
// case TXXX/UFID string lookups per ID3v2 sub-version; because every
// codec's native→generic conversion already lands these fields on the
// same ItemKeys, ExtractMusicBrainz below is a single format-independent lookup.
type MusicBrainzInfo struct {
	AcoustID          string
	RecordingID       string
	TrackID           string
	ReleaseID         string
	ReleaseGroupID    string
	ArtistID          string
	AlbumArtistID     string
}

// ExtractMusicBrainz pulls the known MusicBrainz/AcoustID identifiers out
// of a generic Tag.
func ExtractMusicBrainz(t Tag) MusicBrainzInfo {
	return MusicBrainzInfo{
		AcoustID:       t.TextOf(itemkey.AcoustID),
		RecordingID:    t.TextOf(itemkey.MusicBrainzRecordingID),
		TrackID:        t.TextOf(itemkey.MusicBrainzTrackID),
		ReleaseID:      t.TextOf(itemkey.MusicBrainzReleaseID),
		ReleaseGroupID: t.TextOf(itemkey.MusicBrainzReleaseGroupID),
		ArtistID:       t.TextOf(itemkey.MusicBrainzArtistID),
		AlbumArtistID:  t.TextOf(itemkey.MusicBrainzAlbumArtistID),
	}
}
