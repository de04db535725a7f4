package ape

import (
	"strconv"
	"strings"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/picture"
)

// apePictureKeys are the standard binary-item keys APE uses for attached
// art; each value is a null-terminated filename followed by the image
// bytes (lofty's APE_PICTURE_TYPES / Picture::from_ape_bytes).
var apePictureKeys = map[string]picture.Type{
	"Cover Art (front)": picture.CoverFront,
	"Cover Art (back)":  picture.CoverBack,
}

var simpleKeys = map[string]itemkey.Key{
	"Title":          itemkey.TrackTitle,
	"Artist":         itemkey.TrackArtist,
	"Album":          itemkey.AlbumTitle,
	"Album Artist":   itemkey.AlbumArtist,
	"Composer":       itemkey.Composer,
	"Conductor":      itemkey.Conductor,
	"Publisher":      itemkey.Publisher,
	"Label":          itemkey.Label,
	"Copyright":      itemkey.Copyright,
	"Comment":        itemkey.Comment,
	"Genre":          itemkey.Genre,
	"Year":           itemkey.Year,
	"ISRC":           itemkey.ISRC,
	"Barcode":        itemkey.Barcode,
	"CatalogNumber":  itemkey.CatalogNumber,
	"Language":       itemkey.Language,
	"Grouping":       itemkey.Grouping,
	"Mood":           itemkey.Mood,
	"BPM":            itemkey.BPM,
	"InitialKey":     itemkey.InitialKey,
	"EncodedBy":      itemkey.EncodedBy,
	"Lyrics":         itemkey.Lyrics,
	"MUSICBRAINZ_TRACKID":        itemkey.MusicBrainzRecordingID,
	"MUSICBRAINZ_ALBUMID":        itemkey.MusicBrainzReleaseID,
	"MUSICBRAINZ_ARTISTID":       itemkey.MusicBrainzArtistID,
	"MUSICBRAINZ_ALBUMARTISTID":  itemkey.MusicBrainzAlbumArtistID,
	"MUSICBRAINZ_RELEASEGROUPID": itemkey.MusicBrainzReleaseGroupID,
}

// Remainder carries APE items ToGeneric couldn't map to an ItemKey, so
// Merge can write them back untouched.
type Remainder struct {
	Unmapped []Item
}

// ToGeneric converts parsed APE items into the generic Tag (spec.md
// §4.4). Track/Disc use APE's own "n/total" text convention, matching
// ID3v2's TRCK/TPOS rendering.
func ToGeneric(version uint32, items []Item) gentag.Tag {
	tagType := gentag.APEv2
	if version < 2000 {
		tagType = gentag.APEv1
	}
	g := gentag.Tag{Type: tagType}
	rem := &Remainder{}

	for _, it := range items {
		if pt, ok := apePictureKeys[it.Key]; ok && it.Type == ItemBinary {
			name, data := splitFilename(it.Binary)
			g.Pictures = append(g.Pictures, picture.Picture{
				PictureType: pt,
				MIMEType:    mimeFromFilename(name),
				Data:        data,
			})
			continue
		}
		if it.Type != ItemText && it.Type != ItemLocator {
			rem.Unmapped = append(rem.Unmapped, it)
			continue
		}

		switch it.Key {
		case "Track":
			n, total := gentag.ParseXOfN(it.Text)
			if n != 0 {
				g.Set(itemkey.TrackNumber, gentag.Text(strconv.Itoa(n)))
			}
			if total != 0 {
				g.Set(itemkey.TrackTotal, gentag.Text(strconv.Itoa(total)))
			}
		case "Disc", "Media":
			n, total := gentag.ParseXOfN(it.Text)
			if n != 0 {
				g.Set(itemkey.DiscNumber, gentag.Text(strconv.Itoa(n)))
			}
			if total != 0 {
				g.Set(itemkey.DiscTotal, gentag.Text(strconv.Itoa(total)))
			}
		default:
			if key, ok := simpleKeys[it.Key]; ok {
				if itemkey.MultiValued(key) {
					for _, v := range strings.Split(it.Text, "\x00") {
						g.Add(gentag.TagItem{Key: gentag.Known(key), Value: gentag.Text(v)})
					}
				} else {
					g.Set(key, gentag.Text(it.Text))
				}
				continue
			}
			rem.Unmapped = append(rem.Unmapped, it)
		}
	}

	g.Remainder = rem
	return g
}

// Merge rebuilds the APE item list from g plus the remainder's preserved
// items (design note §9's Split/Merge protocol).
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	var items []Item
	items = append(items, r.Unmapped...)

	have := map[string]bool{}
	for _, it := range items {
		have[it.Key] = true
	}

	for key, ik := range simpleKeys {
		if have[key] {
			continue
		}
		for _, ti := range g.GetAll(ik) {
			if ti.Value.Kind != gentag.KindText {
				continue
			}
			items = append(items, Item{Key: key, Type: ItemText, Text: ti.Value.Text})
		}
	}
	if n, total := g.TextOf(itemkey.TrackNumber), g.TextOf(itemkey.TrackTotal); n != "" || total != "" {
		nv, _ := strconv.Atoi(n)
		tv, _ := strconv.Atoi(total)
		items = append(items, Item{Key: "Track", Type: ItemText, Text: gentag.FormatXOfN(nv, tv)})
	}
	if n, total := g.TextOf(itemkey.DiscNumber), g.TextOf(itemkey.DiscTotal); n != "" || total != "" {
		nv, _ := strconv.Atoi(n)
		tv, _ := strconv.Atoi(total)
		items = append(items, Item{Key: "Disc", Type: ItemText, Text: gentag.FormatXOfN(nv, tv)})
	}
	for _, p := range g.Pictures {
		key := "Cover Art (front)"
		if p.PictureType == picture.CoverBack {
			key = "Cover Art (back)"
		}
		ext := picture.ExtFromMIME(p.MIMEType)
		name := "cover." + ext
		if ext == "" {
			name = "cover"
		}
		data := append([]byte(name+"\x00"), p.Data...)
		items = append(items, Item{Key: key, Type: ItemBinary, Binary: data})
	}
	for _, item := range g.Items {
		if item.Key.K != itemkey.Unknown || item.Key.Raw == "" {
			continue
		}
		items = append(items, Item{Key: item.Key.Raw, Type: ItemText, Text: item.Value.Text})
	}
	return items
}

func splitFilename(b []byte) (name string, data []byte) {
	for i, x := range b {
		if x == 0 {
			return string(b[:i]), b[i+1:]
		}
	}
	return "", b
}

func mimeFromFilename(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	default:
		return ""
	}
}
