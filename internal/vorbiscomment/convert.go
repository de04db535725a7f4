package vorbiscomment

import (
	"strings"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

var simpleKeys = map[string]itemkey.Key{
	"title":                itemkey.TrackTitle,
	"titlesort":            itemkey.TrackTitleSortOrder,
	"artist":               itemkey.TrackArtist,
	"artistsort":           itemkey.TrackArtistSortOrder,
	"album":                itemkey.AlbumTitle,
	"albumsort":            itemkey.AlbumTitleSortOrder,
	"albumartist":          itemkey.AlbumArtist,
	"albumartistsort":      itemkey.AlbumArtistSortOrder,
	"composer":             itemkey.Composer,
	"composersort":         itemkey.ComposerSortOrder,
	"conductor":            itemkey.Conductor,
	"remixer":              itemkey.Remixer,
	"producer":             itemkey.Producer,
	"lyricist":             itemkey.Lyricist,
	"arranger":             itemkey.Arranger,
	"organization":         itemkey.Publisher,
	"label":                itemkey.Label,
	"copyright":            itemkey.Copyright,
	"license":              itemkey.License,
	"encoded-by":           itemkey.EncodedBy,
	"encoder":              itemkey.EncoderSoftware,
	"encodersettings":      itemkey.EncoderSettings,
	"comment":              itemkey.Comment,
	"description":          itemkey.Description,
	"language":             itemkey.Language,
	"lyrics":               itemkey.Lyrics,
	"grouping":             itemkey.Grouping,
	"mood":                 itemkey.Mood,
	"version":              itemkey.Description,
	"genre":                itemkey.Genre,
	"date":                 itemkey.RecordingDate,
	"originaldate":         itemkey.OriginalReleaseDate,
	"isrc":                 itemkey.ISRC,
	"barcode":              itemkey.Barcode,
	"catalognumber":        itemkey.CatalogNumber,
	"bpm":                  itemkey.BPM,
	"key":                  itemkey.InitialKey,
	"replaygain_album_gain": itemkey.ReplayGainAlbumGain,
	"replaygain_album_peak": itemkey.ReplayGainAlbumPeak,
	"replaygain_track_gain": itemkey.ReplayGainTrackGain,
	"replaygain_track_peak": itemkey.ReplayGainTrackPeak,
	"musicbrainz_trackid":         itemkey.MusicBrainzRecordingID,
	"musicbrainz_releasetrackid":  itemkey.MusicBrainzTrackID,
	"musicbrainz_albumid":         itemkey.MusicBrainzReleaseID,
	"musicbrainz_releasegroupid":  itemkey.MusicBrainzReleaseGroupID,
	"musicbrainz_artistid":        itemkey.MusicBrainzArtistID,
	"musicbrainz_albumartistid":   itemkey.MusicBrainzAlbumArtistID,
	"musicbrainz_workid":          itemkey.MusicBrainzWorkID,
	"musicbrainz_discid":          itemkey.MusicBrainzDiscID,
	"acoustid_id":                 itemkey.AcoustID,
	"acoustid_fingerprint":        itemkey.AcoustIDFingerprint,
	"compilation":                 itemkey.FlagCompilation,
	"podcast":                     itemkey.FlagPodcast,
}

// ToGeneric follows dhowden/tag's flac.go Artist(): PERFORMER takes
// priority over ARTIST for the performing-artist field. Composer is read
// only from COMPOSER entries; ARTIST is not used as a composer fallback.

// Remainder carries comment entries ToGeneric couldn't map (design
// note §9's Split/Merge protocol), keyed by their original casing.
type Remainder struct {
	Vendor   string
	Unmapped []Entry
}

// ToGeneric converts a parsed Vorbis Comment into the generic Tag.
func ToGeneric(c Comment) gentag.Tag {
	g := gentag.Tag{Type: gentag.VorbisComment}
	rem := &Remainder{Vendor: c.Vendor}

	var trackNum, trackTotal, discNum, discTotal string
	var artistValues, performerValues []string

	for _, e := range c.Entries {
		lower := strings.ToLower(e.Key)
		switch lower {
		case "tracknumber":
			trackNum, trackTotal = splitMaybeSlash(e.Value, trackTotal)
			continue
		case "tracktotal":
			trackTotal = e.Value
			continue
		case "discnumber":
			discNum, discTotal = splitMaybeSlash(e.Value, discTotal)
			continue
		case "disctotal":
			discTotal = e.Value
			continue
		case "artist":
			artistValues = append(artistValues, e.Value)
			continue
		case "performer":
			performerValues = append(performerValues, e.Value)
			continue
		case metadataBlockPictureKey, legacyCoverArtKey, legacyCoverArtMIMEKey:
			continue // handled by ExtractPictures
		}

		if ik, ok := simpleKeys[lower]; ok {
			if itemkey.MultiValued(ik) {
				g.Add(gentag.TagItem{Key: gentag.Known(ik), Value: gentag.Text(e.Value)})
			} else if _, exists := g.Get(ik); !exists {
				g.Set(ik, gentag.Text(e.Value))
			}
			continue
		}
		rem.Unmapped = append(rem.Unmapped, e)
	}

	// PERFORMER names the performing artist and takes priority over
	// ARTIST when both are present (dhowden/tag's flac.go Artist()):
	// in classical tagging ARTIST often names the composer instead.
	trackArtists := performerValues
	if len(trackArtists) == 0 {
		trackArtists = artistValues
	}
	for _, v := range trackArtists {
		g.Add(gentag.TagItem{Key: gentag.Known(itemkey.TrackArtist), Value: gentag.Text(v)})
	}

	if trackNum != "" {
		g.Set(itemkey.TrackNumber, gentag.Text(trackNum))
	}
	if trackTotal != "" {
		g.Set(itemkey.TrackTotal, gentag.Text(trackTotal))
	}
	if discNum != "" {
		g.Set(itemkey.DiscNumber, gentag.Text(discNum))
	}
	if discTotal != "" {
		g.Set(itemkey.DiscTotal, gentag.Text(discTotal))
	}

	for _, p := range ExtractPictures(c) {
		g.Pictures = append(g.Pictures, p)
	}

	g.Remainder = rem
	return g
}

// splitMaybeSlash handles Vorbis's two competing track/disc total
// conventions: "TRACKNUMBER=3/12" (a single slash-joined field) or a
// separate "TRACKTOTAL=12" entry. total is the value already seen from
// the other convention, preserved if this one doesn't carry one.
func splitMaybeSlash(s, total string) (num, newTotal string) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, total
}

// Merge rebuilds the Vorbis Comment entry list from g plus the
// remainder's preserved entries and vendor string.
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	out := Comment{Vendor: r.Vendor}
	out.Entries = append(out.Entries, r.Unmapped...)

	have := map[string]bool{}
	for _, e := range out.Entries {
		have[strings.ToLower(e.Key)] = true
	}

	for key, ik := range simpleKeys {
		if have[key] {
			continue
		}
		for _, ti := range g.GetAll(ik) {
			if ti.Value.Kind != gentag.KindText {
				continue
			}
			out.Entries = append(out.Entries, Entry{Key: canonicalCase(key), Value: ti.Value.Text})
		}
	}
	if n := g.TextOf(itemkey.TrackNumber); n != "" {
		if total := g.TextOf(itemkey.TrackTotal); total != "" {
			out.Entries = append(out.Entries, Entry{Key: "TRACKNUMBER", Value: n + "/" + total})
		} else {
			out.Entries = append(out.Entries, Entry{Key: "TRACKNUMBER", Value: n})
		}
	}
	if n := g.TextOf(itemkey.DiscNumber); n != "" {
		if total := g.TextOf(itemkey.DiscTotal); total != "" {
			out.Entries = append(out.Entries, Entry{Key: "DISCNUMBER", Value: n + "/" + total})
		} else {
			out.Entries = append(out.Entries, Entry{Key: "DISCNUMBER", Value: n})
		}
	}
	for _, p := range g.Pictures {
		out.Entries = append(out.Entries, Entry{Key: metadataBlockPictureKey, Value: EncodePictureBlock(p)})
	}
	for _, item := range g.Items {
		if item.Key.K != itemkey.Unknown || item.Key.Raw == "" {
			continue
		}
		out.Entries = append(out.Entries, Entry{Key: item.Key.Raw, Value: item.Value.Text})
	}
	return out
}

// canonicalCase renders the conventional all-uppercase field-name form
// most Vorbis Comment writers use (e.g. "musicbrainz_trackid" ->
// "MUSICBRAINZ_TRACKID"), since the simpleKeys table is keyed lowercase
// for case-insensitive matching on read.
func canonicalCase(key string) string {
	return strings.ToUpper(key)
}
