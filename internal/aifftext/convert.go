package aifftext

import (
	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

// Remainder carries the COMT comment list, which has no ItemKey
// equivalent in the generic model (spec.md §3's restricted subset has
// no timestamp/marker-ID bearing comment type).
type Remainder struct {
	Comments []Comment
}

// ToGeneric converts a parsed Tag into the generic Tag. ANNO
// annotations map to the multi-valued Comment key; NAME/AUTH/"(c) " map
// to title/artist/copyright directly, the only fields AIFF text chunks
// can unambiguously express.
func ToGeneric(t Tag) gentag.Tag {
	g := gentag.Tag{Type: gentag.AIFFText}

	if t.Name != "" {
		g.Set(itemkey.TrackTitle, gentag.Text(t.Name))
	}
	if t.Author != "" {
		g.Set(itemkey.TrackArtist, gentag.Text(t.Author))
	}
	if t.Copyright != "" {
		g.Set(itemkey.Copyright, gentag.Text(t.Copyright))
	}
	for _, a := range t.Annotations {
		g.Add(gentag.TagItem{Key: gentag.Known(itemkey.Comment), Value: gentag.Text(a)})
	}

	g.Remainder = &Remainder{Comments: t.Comments}
	return g
}

// Merge rebuilds a Tag from g plus the remainder's preserved COMT list.
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	var t Tag
	t.Name = g.TextOf(itemkey.TrackTitle)
	t.Author = g.TextOf(itemkey.TrackArtist)
	t.Copyright = g.TextOf(itemkey.Copyright)

	for _, ti := range g.GetAll(itemkey.Comment) {
		if ti.Value.Kind == gentag.KindText {
			t.Annotations = append(t.Annotations, ti.Value.Text)
		}
	}
	t.Comments = r.Comments
	return t
}
