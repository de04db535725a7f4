package id3v2

import (
	"strconv"
	"strings"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/picture"
)

// simpleTextFrames maps canonical (v2.3/v2.4-shaped) text-frame IDs
// straight onto an ItemKey, generalizing dhowden/tag's id3v2metadata.go
// frameNames table (title/artist/album/composer/...) to the complete set
// spec.md §4.4 names.
var simpleTextFrames = map[string]itemkey.Key{
	"TIT2": itemkey.TrackTitle,
	"TIT1": itemkey.Grouping,
	"TIT3": itemkey.Description,
	"TSOT": itemkey.TrackTitleSortOrder,
	"TPE1": itemkey.TrackArtist,
	"TSOP": itemkey.TrackArtistSortOrder,
	"TPE2": itemkey.AlbumArtist,
	"TSO2": itemkey.AlbumArtistSortOrder,
	"TPE3": itemkey.Conductor,
	"TPE4": itemkey.Remixer,
	"TALB": itemkey.AlbumTitle,
	"TSOA": itemkey.AlbumTitleSortOrder,
	"TOAL": itemkey.OriginalAlbum,
	"TOPE": itemkey.OriginalArtist,
	"TOLY": itemkey.OriginalLyricist,
	"TCOM": itemkey.Composer,
	"TSOC": itemkey.ComposerSortOrder,
	"TEXT": itemkey.Lyricist,
	"TPUB": itemkey.Publisher,
	"TCOP": itemkey.Copyright,
	"TENC": itemkey.EncodedBy,
	"TSSE": itemkey.EncoderSettings,
	"TLAN": itemkey.Language,
	"TKEY": itemkey.InitialKey,
	"TBPM": itemkey.BPM,
	"TMOO": itemkey.Mood,
	"TOWN": itemkey.FileOwner,
	"TIT4": itemkey.Work,
	"MVNM": itemkey.Movement,
	"GRP1": itemkey.Grouping,
}

func itemKeyFrameID(k itemkey.Key) string {
	for id, kk := range simpleTextFrames {
		if kk == k {
			return id
		}
	}
	return ""
}

// txxxDescriptionKeys maps known TXXX description strings (case-insensitive)
// to ItemKeys, grounded on dhowden/tag's mbz package tags table
// (MusicBrainz Picard's well-known free-form description conventions).
var txxxDescriptionKeys = map[string]itemkey.Key{
	"acoustid id":                      itemkey.AcoustID,
	"acoustid fingerprint":             itemkey.AcoustIDFingerprint,
	"musicbrainz album id":             itemkey.MusicBrainzReleaseID,
	"musicbrainz album artist id":      itemkey.MusicBrainzAlbumArtistID,
	"musicbrainz artist id":            itemkey.MusicBrainzArtistID,
	"musicbrainz release group id":     itemkey.MusicBrainzReleaseGroupID,
	"musicbrainz release track id":     itemkey.MusicBrainzTrackID,
	"musicbrainz work id":              itemkey.MusicBrainzWorkID,
	"musicbrainz disc id":              itemkey.MusicBrainzDiscID,
	"replaygain_album_gain":            itemkey.ReplayGainAlbumGain,
	"replaygain_album_peak":            itemkey.ReplayGainAlbumPeak,
	"replaygain_track_gain":            itemkey.ReplayGainTrackGain,
	"replaygain_track_peak":            itemkey.ReplayGainTrackPeak,
	"barcode":                          itemkey.Barcode,
	"catalognumber":                    itemkey.CatalogNumber,
	"script":                           itemkey.Script,
}

// ufidProviderMusicBrainz is the owner string dhowden/tag's mbz package
// recognises for the MusicBrainz recording UFID.
const ufidProviderMusicBrainz = "http://musicbrainz.org"

// ToGeneric converts a parsed Tag into the format-neutral gentag.Tag,
// implementing the "first non-empty wins" duplicate-frame rule and the
// Split/Merge protocol (remainder carries frames with no ItemKey mapping).
func ToGeneric(t Tag) gentag.Tag {
	tagType := gentag.ID3v2_3
	switch t.Header.Version {
	case V2_2:
		tagType = gentag.ID3v2_2
	case V2_4:
		tagType = gentag.ID3v2_4
	}
	g := gentag.Tag{Type: tagType}
	rem := &Remainder{Version: t.Header.Version}

	seenSimple := map[itemkey.Key]bool{}
	for _, f := range t.Frames {
		if key, ok := simpleTextFrames[f.ID]; ok {
			txt, ok := f.Value.(Text)
			if !ok {
				continue
			}
			joined := txt.Joined()
			if joined == "" || seenSimple[key] {
				continue
			}
			seenSimple[key] = true
			g.Set(key, gentag.Text(joined))
			continue
		}

		switch f.ID {
		case "TCON":
			if txt, ok := f.Value.(Text); ok && !seenSimple[itemkey.Genre] {
				name := parseGenreContent(txt.Joined())
				if name != "" {
					seenSimple[itemkey.Genre] = true
					g.Add(gentag.TagItem{Key: gentag.Known(itemkey.Genre), Value: gentag.Text(name)})
				}
			}
		case "TRCK":
			if txt, ok := f.Value.(Text); ok {
				n, total := gentag.ParseXOfN(txt.Joined())
				if n != 0 {
					g.Set(itemkey.TrackNumber, gentag.Text(strconv.Itoa(n)))
				}
				if total != 0 {
					g.Set(itemkey.TrackTotal, gentag.Text(strconv.Itoa(total)))
				}
			}
		case "TPOS":
			if txt, ok := f.Value.(Text); ok {
				n, total := gentag.ParseXOfN(txt.Joined())
				if n != 0 {
					g.Set(itemkey.DiscNumber, gentag.Text(strconv.Itoa(n)))
				}
				if total != 0 {
					g.Set(itemkey.DiscTotal, gentag.Text(strconv.Itoa(total)))
				}
			}
		case "TDRC":
			setTimestampOnce(&g, itemkey.RecordingDate, f, seenSimple)
		case "TDRL":
			setTimestampOnce(&g, itemkey.ReleaseDate, f, seenSimple)
		case "TDOR":
			setTimestampOnce(&g, itemkey.OriginalReleaseDate, f, seenSimple)
		case "TYER":
			if !seenSimple[itemkey.Year] {
				if txt, ok := f.Value.(Text); ok && txt.Joined() != "" {
					seenSimple[itemkey.Year] = true
					g.Set(itemkey.Year, gentag.Text(txt.Joined()))
				}
			}
		case "TORY":
			if !seenSimple[itemkey.OriginalReleaseDate] {
				if txt, ok := f.Value.(Text); ok && txt.Joined() != "" {
					seenSimple[itemkey.OriginalReleaseDate] = true
					g.Set(itemkey.OriginalReleaseDate, gentag.Text(txt.Joined()))
				}
			}
		case "TDTG":
			setTimestampOnce(&g, itemkey.TaggingTime, f, seenSimple)
		case "TDEN":
			setTimestampOnce(&g, itemkey.EncodingTime, f, seenSimple)
		case "TCMP":
			if txt, ok := f.Value.(Text); ok {
				g.Set(itemkey.FlagCompilation, gentag.Text(gentag.NormalizeFlag(gentag.ParseFlag(txt.Joined()))))
			}
		case "TPCS":
			if txt, ok := f.Value.(Text); ok {
				g.Set(itemkey.FlagPodcast, gentag.Text(gentag.NormalizeFlag(gentag.ParseFlag(txt.Joined()))))
			}
		case "COMM":
			if c, ok := f.Value.(CommentOrLyrics); ok {
				text := c.Text
				if text == "" {
					text = c.Description
				}
				g.Add(gentag.TagItem{Key: gentag.Known(itemkey.Comment), Value: gentag.Text(text), Lang: c.Language, Description: c.Description})
			}
		case "USLT":
			if c, ok := f.Value.(CommentOrLyrics); ok && !seenSimple[itemkey.Lyrics] {
				seenSimple[itemkey.Lyrics] = true
				g.Add(gentag.TagItem{Key: gentag.Known(itemkey.Lyrics), Value: gentag.Text(c.Text), Lang: c.Language, Description: c.Description})
			}
		case "APIC":
			if p, ok := f.Value.(Picture); ok {
				g.Pictures = append(g.Pictures, p.Pic)
			}
		case "TXXX":
			if u, ok := f.Value.(UserText); ok {
				lower := strings.ToLower(strings.TrimSpace(u.Description))
				if key, ok := txxxDescriptionKeys[lower]; ok {
					g.Set(key, gentag.Text(u.Value))
				} else {
					g.Add(gentag.TagItem{Key: gentag.UnknownKey(u.Description), Value: gentag.Text(u.Value), Description: u.Description})
				}
			}
		case "WXXX":
			if u, ok := f.Value.(UserURL); ok {
				g.Add(gentag.TagItem{Key: gentag.UnknownKey("WXXX:" + u.Description), Value: gentag.Locator(u.URL), Description: u.Description})
			}
		case "UFID":
			if u, ok := f.Value.(UFID); ok && u.Owner == ufidProviderMusicBrainz && !seenSimple[itemkey.MusicBrainzRecordingID] {
				seenSimple[itemkey.MusicBrainzRecordingID] = true
				g.Set(itemkey.MusicBrainzRecordingID, gentag.Text(string(u.Identifier)))
			} else {
				rem.UFIDs = append(rem.UFIDs, f)
			}
		case "POPM":
			rem.Popularimeters = append(rem.Popularimeters, f)
		case "TIPL", "TMCL":
			rem.KeyValueLists = append(rem.KeyValueLists, f)
		case "PRIV":
			rem.Private = append(rem.Private, f)
		case "RVA2":
			rem.RVA2s = append(rem.RVA2s, f)
		default:
			if strings.HasPrefix(f.ID, "W") {
				if u, ok := f.Value.(URL); ok {
					g.Add(gentag.TagItem{Key: gentag.UnknownKey(f.ID), Value: gentag.Locator(string(u))})
					continue
				}
			}
			rem.Unmapped = append(rem.Unmapped, f)
		}
	}

	g.Remainder = rem
	return g
}

func setTimestampOnce(g *gentag.Tag, key itemkey.Key, f Frame, seen map[itemkey.Key]bool) {
	if seen[key] {
		return
	}
	txt, ok := f.Value.(Text)
	if !ok || txt.Joined() == "" {
		return
	}
	seen[key] = true
	g.Set(key, gentag.Text(txt.Joined()))
}

// Remainder implements gentag.Remainder for ID3v2: it carries the frames
// ToGeneric couldn't reduce to a single ItemKey (POPM, UFID owners other
// than MusicBrainz, TIPL/TMCL role lists, PRIV, RVA2, and anything
// entirely unrecognised) so Merge can restore them untouched.
type Remainder struct {
	Version        Version
	UFIDs          []Frame
	Popularimeters []Frame
	KeyValueLists  []Frame
	Private        []Frame
	RVA2s          []Frame
	Unmapped       []Frame
}

// Merge rebuilds a Tag from g's items plus the frames this Remainder
// preserved untouched (design note §9's Split/Merge protocol).
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	t := Tag{Header: Header{Version: r.Version}}
	t.Frames = append(t.Frames, r.UFIDs...)
	t.Frames = append(t.Frames, r.Popularimeters...)
	t.Frames = append(t.Frames, r.KeyValueLists...)
	t.Frames = append(t.Frames, r.Private...)
	t.Frames = append(t.Frames, r.RVA2s...)
	t.Frames = append(t.Frames, r.Unmapped...)

	have := map[string]bool{}
	for _, f := range t.Frames {
		have[f.ID] = true
	}

	for id, key := range simpleTextFrames {
		if have[id] {
			continue
		}
		if s := g.TextOf(key); s != "" {
			t.Frames = append(t.Frames, Frame{ID: id, Value: Text{Values: []string{s}}})
		}
	}
	if s := g.TextOf(itemkey.Genre); s != "" {
		t.Frames = append(t.Frames, Frame{ID: "TCON", Value: Text{Values: []string{formatGenreContent(s)}}})
	}
	if n, total := g.TextOf(itemkey.TrackNumber), g.TextOf(itemkey.TrackTotal); n != "" || total != "" {
		nv, _ := strconv.Atoi(n)
		tv, _ := strconv.Atoi(total)
		t.Frames = append(t.Frames, Frame{ID: "TRCK", Value: Text{Values: []string{gentag.FormatXOfN(nv, tv)}}})
	}
	if n, total := g.TextOf(itemkey.DiscNumber), g.TextOf(itemkey.DiscTotal); n != "" || total != "" {
		nv, _ := strconv.Atoi(n)
		tv, _ := strconv.Atoi(total)
		t.Frames = append(t.Frames, Frame{ID: "TPOS", Value: Text{Values: []string{gentag.FormatXOfN(nv, tv)}}})
	}
	if s := g.TextOf(itemkey.RecordingDate); s != "" {
		t.Frames = append(t.Frames, Frame{ID: "TDRC", Value: Text{Values: []string{s}}})
	}
	if s := g.TextOf(itemkey.ReleaseDate); s != "" {
		t.Frames = append(t.Frames, Frame{ID: "TDRL", Value: Text{Values: []string{s}}})
	}
	if s := g.TextOf(itemkey.MusicBrainzRecordingID); s != "" {
		t.Frames = append(t.Frames, Frame{ID: "UFID", Value: UFID{Owner: ufidProviderMusicBrainz, Identifier: []byte(s)}})
	}
	for k, lower := range map[itemkey.Key]string{
		itemkey.AcoustID:                   "Acoustid Id",
		itemkey.MusicBrainzReleaseID:       "MusicBrainz Album Id",
		itemkey.MusicBrainzAlbumArtistID:   "MusicBrainz Album Artist Id",
		itemkey.MusicBrainzArtistID:        "MusicBrainz Artist Id",
		itemkey.MusicBrainzReleaseGroupID: "MusicBrainz Release Group Id",
	} {
		if s := g.TextOf(k); s != "" {
			t.Frames = append(t.Frames, Frame{ID: "TXXX", Value: UserText{Description: lower, Value: s}})
		}
	}
	for _, c := range g.GetAll(itemkey.Comment) {
		if c.Value.Kind == gentag.KindText {
			t.Frames = append(t.Frames, Frame{ID: "COMM", Value: CommentOrLyrics{Language: defaultLang(c.Lang), Description: c.Description, Text: c.Value.Text}})
		}
	}
	if s := g.TextOf(itemkey.Lyrics); s != "" {
		t.Frames = append(t.Frames, Frame{ID: "USLT", Value: CommentOrLyrics{Language: "eng", Text: s}})
	}
	for _, p := range g.Pictures {
		t.Frames = append(t.Frames, Frame{ID: "APIC", Value: Picture{Pic: picture.Picture{
			PictureType: p.PictureType,
			MIMEType:    p.MIMEType,
			Description: p.Description,
			Data:        p.Data,
		}, Description: p.Description}})
	}
	for _, item := range g.Items {
		if item.Key.K != itemkey.Unknown {
			continue
		}
		if strings.HasPrefix(item.Key.Raw, "WXXX:") {
			t.Frames = append(t.Frames, Frame{ID: "WXXX", Value: UserURL{Description: strings.TrimPrefix(item.Key.Raw, "WXXX:"), URL: item.Value.Text}})
			continue
		}
		if item.Value.Kind == gentag.KindLocator {
			t.Frames = append(t.Frames, Frame{ID: item.Key.Raw, Value: URL(item.Value.Text)})
			continue
		}
		t.Frames = append(t.Frames, Frame{ID: "TXXX", Value: UserText{Description: item.Key.Raw, Value: item.Value.Text}})
	}
	return t
}

func defaultLang(lang string) string {
	if lang == "" {
		return "eng"
	}
	return lang
}
