package dfftext

import (
	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

// Remainder carries the full COMT comment list. ToGeneric also exposes
// each comment's text as a Comment item, but Merge writes back this
// preserved list and ignores the generic Comment items.
type Remainder struct {
	Comments []Comment
}

// ToGeneric converts a parsed Tag into the generic Tag. DIIN's
// artist/title map directly; COMT entries map to the multi-valued
// Comment key, the only field DFF comments can unambiguously express.
func ToGeneric(t Tag) gentag.Tag {
	g := gentag.Tag{Type: gentag.DFFText}

	if t.DIIN != nil {
		if t.DIIN.Artist != "" {
			g.Set(itemkey.TrackArtist, gentag.Text(t.DIIN.Artist))
		}
		if t.DIIN.Title != "" {
			g.Set(itemkey.TrackTitle, gentag.Text(t.DIIN.Title))
		}
	}
	for _, c := range t.Comments {
		g.Add(gentag.TagItem{Key: gentag.Known(itemkey.Comment), Value: gentag.Text(c.Text)})
	}

	g.Remainder = &Remainder{Comments: t.Comments}
	return g
}

// Merge rebuilds a Tag from g plus the remainder's preserved COMT list.
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	var t Tag

	artist := g.TextOf(itemkey.TrackArtist)
	title := g.TextOf(itemkey.TrackTitle)
	if artist != "" || title != "" {
		t.DIIN = &EditedMasterInfo{Artist: artist, Title: title}
	}
	t.Comments = r.Comments
	return t
}
