package riffinfo

import (
	"strings"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/itemkey"
)

// simpleKeys mirrors lofty's RiffInfoList accessor table (IART/INAM/
// IPRD/IGNR/ICMT/ICRD) plus the handful of other INFO codes the RIFF
// spec defines that have an obvious ItemKey home.
var simpleKeys = map[string]itemkey.Key{
	"IART": itemkey.TrackArtist,
	"INAM": itemkey.TrackTitle,
	"IPRD": itemkey.AlbumTitle,
	"IGNR": itemkey.Genre,
	"ICMT": itemkey.Comment,
	"ICOP": itemkey.Copyright,
	"ISFT": itemkey.EncoderSoftware,
	"IENG": itemkey.Producer,
	"ISBJ": itemkey.Description,
	"ITCH": itemkey.EncodedBy,
}

// Remainder carries INFO entries ToGeneric couldn't map, keyed by their
// original four-character code.
type Remainder struct {
	Unmapped []Entry
}

// ToGeneric converts a parsed INFO list into the generic Tag. Track/disc
// numbering is RIFF's IPRT ("part")/IFRM ("frames", used conventionally
// as track total) pair; RIFF INFO has no corresponding disc fields.
func ToGeneric(l List) gentag.Tag {
	g := gentag.Tag{Type: gentag.RIFFInfo}
	rem := &Remainder{}

	for _, e := range l.Entries {
		key := strings.ToUpper(e.Key)
		switch key {
		case "IPRT":
			g.Set(itemkey.TrackNumber, gentag.Text(e.Value))
			continue
		case "IFRM":
			g.Set(itemkey.TrackTotal, gentag.Text(e.Value))
			continue
		case "ICRD":
			g.Set(itemkey.RecordingDate, gentag.Text(e.Value))
			continue
		}
		if ik, ok := simpleKeys[key]; ok {
			if _, exists := g.Get(ik); !exists {
				g.Set(ik, gentag.Text(e.Value))
			}
			continue
		}
		rem.Unmapped = append(rem.Unmapped, e)
	}

	g.Remainder = rem
	return g
}

// Merge rebuilds the INFO entry list from g plus the remainder's
// preserved entries.
func (r *Remainder) Merge(g gentag.Tag) interface{} {
	var out List
	for _, e := range r.Unmapped {
		out.Set(e.Key, e.Value)
	}

	for key, ik := range simpleKeys {
		if out.Get(key) != "" {
			continue
		}
		if v := g.TextOf(ik); v != "" {
			out.Set(key, v)
		}
	}
	if n := g.TextOf(itemkey.TrackNumber); n != "" {
		out.Set("IPRT", n)
	}
	if n := g.TextOf(itemkey.TrackTotal); n != "" {
		out.Set("IFRM", n)
	}
	if d := g.TextOf(itemkey.RecordingDate); d != "" {
		out.Set("ICRD", d)
	} else if y := g.TextOf(itemkey.Year); y != "" {
		out.Set("ICRD", y)
	}
	for _, item := range g.Items {
		if item.Key.K != itemkey.Unknown || item.Key.Raw == "" {
			continue
		}
		if len(item.Key.Raw) == 4 {
			out.Set(item.Key.Raw, item.Value.Text)
		}
	}
	return out
}
