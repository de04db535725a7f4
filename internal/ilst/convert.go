package ilst

import (
	"strconv"
	"strings"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/picture"
)

var simpleAtoms = map[string]itemkey.Key{
	"\xa9nam": itemkey.TrackTitle,
	"sonm":    itemkey.TrackTitleSortOrder,
	"\xa9ART": itemkey.TrackArtist,
	"\xa9art": itemkey.TrackArtist,
	"soar":    itemkey.TrackArtistSortOrder,
	"aART":    itemkey.AlbumArtist,
	"soaa":    itemkey.AlbumArtistSortOrder,
	"\xa9alb": itemkey.AlbumTitle,
	"soal":    itemkey.AlbumTitleSortOrder,
	"\xa9wrt": itemkey.Composer,
	"soco":    itemkey.ComposerSortOrder,
	"\xa9too": itemkey.EncoderSoftware,
	"cprt":    itemkey.Copyright,
	"\xa9grp": itemkey.Grouping,
	"keyw":    itemkey.PodcastKeywords,
	"\xa9lyr": itemkey.Lyrics,
	"\xa9cmt": itemkey.Comment,
	"tvsh":    itemkey.PodcastSeries,
	"catg":    itemkey.PodcastCategory,
	"\xa9wrk": itemkey.Work,
	"\xa9mvn": itemkey.Movement,
}

var freeformKeys = map[string]itemkey.Key{
	"musicbrainz track id":         itemkey.MusicBrainzRecordingID,
	"musicbrainz album id":         itemkey.MusicBrainzReleaseID,
	"musicbrainz artist id":        itemkey.MusicBrainzArtistID,
	"musicbrainz album artist id":  itemkey.MusicBrainzAlbumArtistID,
	"musicbrainz release group id": itemkey.MusicBrainzReleaseGroupID,
	"musicbrainz work id":          itemkey.MusicBrainzWorkID,
	"musicbrainz disc id":          itemkey.MusicBrainzDiscID,
	"acoustid id":                  itemkey.AcoustID,
	"acoustid fingerprint":         itemkey.AcoustIDFingerprint,
	"barcode":                      itemkey.Barcode,
	"catalognumber":                itemkey.CatalogNumber,
	"script":                       itemkey.Script,
}

// Remainder carries atoms ToGeneric had no ItemKey for, keyed the same
// way the decoder produced them (design note §9's Split/Merge protocol).
type Remainder struct {
	Unmapped []Atom
}

// ToGeneric converts a flattened ilst atom list (as internal/container/mp4
// extracts them) into the generic Tag.
func ToGeneric(atoms []Atom) gentag.Tag {
	g := gentag.Tag{Type: gentag.MP4Ilst}
	rem := &Remainder{}

	var geID, gnreID int

	for _, a := range atoms {
		if a.IsFreeform() {
			key := strings.ToLower(a.FreeformName)
			if ik, ok := freeformKeys[key]; ok && len(a.Values) > 0 {
				g.Set(ik, gentag.Text(a.Values[0].Text()))
				continue
			}
			rem.Unmapped = append(rem.Unmapped, a)
			continue
		}

		switch a.Name {
		case "trkn":
			if len(a.Values) > 0 {
				n, total := TrackDisc(a.Values[0].Data)
				if n != 0 {
					g.Set(itemkey.TrackNumber, gentag.Text(strconv.Itoa(n)))
				}
				if total != 0 {
					g.Set(itemkey.TrackTotal, gentag.Text(strconv.Itoa(total)))
				}
			}
		case "disk":
			if len(a.Values) > 0 {
				n, total := TrackDisc(a.Values[0].Data)
				if n != 0 {
					g.Set(itemkey.DiscNumber, gentag.Text(strconv.Itoa(n)))
				}
				if total != 0 {
					g.Set(itemkey.DiscTotal, gentag.Text(strconv.Itoa(total)))
				}
			}
		case "\xa9day":
			if len(a.Values) > 0 {
				text := a.Values[0].Text()
				g.Set(itemkey.RecordingDate, gentag.Text(text))
				if len(text) >= 4 {
					g.Set(itemkey.Year, gentag.Text(text[:4]))
				}
			}
		case "\xa9gen":
			if len(a.Values) > 0 {
				g.Set(itemkey.Genre, gentag.Text(a.Values[0].Text()))
			}
		case "gnre":
			if len(a.Values) > 0 {
				gnreID = int(a.Values[0].Uint())
			}
		case "geID":
			if len(a.Values) > 0 {
				geID = int(a.Values[0].Uint())
			}
		case "tmpo":
			if len(a.Values) > 0 {
				g.Set(itemkey.BPM, gentag.Text(strconv.Itoa(int(a.Values[0].Uint()))))
			}
		case "cpil":
			if len(a.Values) > 0 {
				g.Set(itemkey.FlagCompilation, gentag.Text(gentag.NormalizeFlag(a.Values[0].Uint() != 0)))
			}
		case "pcst":
			if len(a.Values) > 0 {
				g.Set(itemkey.FlagPodcast, gentag.Text(gentag.NormalizeFlag(a.Values[0].Uint() != 0)))
			}
		case "covr":
			for _, v := range a.Values {
				pic := picture.Picture{PictureType: picture.CoverFront, Data: v.Data}
				switch v.Type {
				case TypeJPEG:
					pic.MIMEType = "image/jpeg"
				case TypePNG:
					pic.MIMEType = "image/png"
				}
				g.Pictures = append(g.Pictures, pic)
			}
		default:
			if ik, ok := simpleAtoms[a.Name]; ok && len(a.Values) > 0 {
				g.Set(ik, gentag.Text(a.Values[0].Text()))
				continue
			}
			rem.Unmapped = append(rem.Unmapped, a)
		}
	}

	if g.TextOf(itemkey.Genre) == "" {
		if name := GenreName(geID, gnreID); name != "" {
			g.Set(itemkey.Genre, gentag.Text(name))
		}
	}

	g.Remainder = rem
	return g
}

// Merge rebuilds the ilst atom list from g plus the remainder's preserved
// freeform/unknown atoms.
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	var atoms []Atom
	atoms = append(atoms, r.Unmapped...)

	have := map[string]bool{}
	for _, a := range atoms {
		have[a.Name] = true
	}

	for name, ik := range simpleAtoms {
		if have[name] {
			continue
		}
		if v := g.TextOf(ik); v != "" {
			atoms = append(atoms, Atom{Name: name, Values: []Value{{Type: TypeUTF8, Data: []byte(v)}}})
		}
	}
	if n, total := g.TextOf(itemkey.TrackNumber), g.TextOf(itemkey.TrackTotal); n != "" || total != "" {
		atoms = append(atoms, Atom{Name: "trkn", Values: []Value{{Type: TypeImplicit, Data: EncodeTrackDisc(atoiOr0(n), atoiOr0(total))}}})
	}
	if n, total := g.TextOf(itemkey.DiscNumber), g.TextOf(itemkey.DiscTotal); n != "" || total != "" {
		atoms = append(atoms, Atom{Name: "disk", Values: []Value{{Type: TypeImplicit, Data: EncodeTrackDisc(atoiOr0(n), atoiOr0(total))}}})
	}
	if d := g.TextOf(itemkey.RecordingDate); d != "" {
		atoms = append(atoms, Atom{Name: "\xa9day", Values: []Value{{Type: TypeUTF8, Data: []byte(d)}}})
	}
	if gen := g.TextOf(itemkey.Genre); gen != "" {
		atoms = append(atoms, Atom{Name: "\xa9gen", Values: []Value{{Type: TypeUTF8, Data: []byte(gen)}}})
	}
	if bpm := g.TextOf(itemkey.BPM); bpm != "" {
		atoms = append(atoms, Atom{Name: "tmpo", Values: []Value{{Type: TypeBESignedInt, Data: []byte{byte(atoiOr0(bpm) >> 8), byte(atoiOr0(bpm))}}}})
	}
	if fc, ok := g.Get(itemkey.FlagCompilation); ok {
		atoms = append(atoms, Atom{Name: "cpil", Values: []Value{{Type: TypeBEUnsignedInt, Data: []byte{flagByte(fc.Value.Text)}}}})
	}
	if len(g.Pictures) > 0 {
		covr := Atom{Name: "covr"}
		for _, p := range g.Pictures {
			dt := TypeJPEG
			if p.MIMEType == "image/png" {
				dt = TypePNG
			}
			covr.Values = append(covr.Values, Value{Type: dt, Data: p.Data})
		}
		atoms = append(atoms, covr)
	}
	for _, item := range g.Items {
		if item.Key.K != itemkey.Unknown || item.Key.Raw == "" {
			continue
		}
		atoms = append(atoms, Atom{
			Name:         "----",
			Mean:         "com.apple.iTunes",
			FreeformName: item.Key.Raw,
			Values:       []Value{{Type: TypeUTF8, Data: []byte(item.Value.Text)}},
		})
	}
	return atoms
}

func atoiOr0(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func flagByte(s string) byte {
	if gentag.ParseFlag(s) {
		return 1
	}
	return 0
}
