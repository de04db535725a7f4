package id3v2

import (
	"fmt"

	"github.com/silvertag/audiotags/internal/gentag"
)

// v24OnlyFrameIDs has no v2.3 representation and is dropped outright on
// downgrade (spec.md §4.3.2 "Writing policy on downgrade to v2.3").
var v24OnlyFrameIDs = map[string]bool{
	"ASPI": true, "EQU2": true, "RVA2": true, "SEEK": true, "SIGN": true,
	"TDEN": true, "TDRL": true, "TDTG": true, "TMOO": true, "TPRO": true,
	"TSOA": true, "TSOP": true, "TSOT": true, "TSST": true,
}

// DowngradeToV23 rewrites t (assumed v2.4) into its v2.3 form per spec.md
// §4.3.2: drop v2.4-only IDs, split TDRC into TYER+TDAT+TIME, reduce TDOR
// to TORY, merge TIPL+TMCL into IPLS, and rewrite TCON refinement-form
// genres with (RX)/(CR) markers. Other frames are copied unchanged; the
// text encoding is chosen later by Serialize, which writes v2.3 text as
// Latin-1 or UTF-16 with BOM, since v2.3 disallows encodings 2 and 3.
func DowngradeToV23(t Tag) Tag {
	out := Tag{Header: t.Header}
	out.Header.Version = V2_3

	var tipl, tmcl *Frame
	for i := range t.Frames {
		f := t.Frames[i]
		if v24OnlyFrameIDs[f.ID] {
			continue
		}
		switch f.ID {
		case "TDRC":
			out.Frames = append(out.Frames, splitTDRC(f)...)
			continue
		case "TDOR":
			if txt, ok := f.Value.(Text); ok {
				out.Frames = append(out.Frames, Frame{ID: "TORY", Value: Text{Values: []string{yearOf(txt.Joined())}}})
			}
			continue
		case "TIPL":
			tipl = &t.Frames[i]
			continue
		case "TMCL":
			tmcl = &t.Frames[i]
			continue
		case "TCON":
			if txt, ok := f.Value.(Text); ok {
				out.Frames = append(out.Frames, Frame{ID: "TCON", Value: Text{Values: []string{downgradeGenreText(txt.Joined())}}})
				continue
			}
		}
		out.Frames = append(out.Frames, downgradeTextEncoding(f))
	}

	if tipl != nil || tmcl != nil {
		var pairs [][2]string
		if tipl != nil {
			if kv, ok := tipl.Value.(KeyValueList); ok {
				pairs = append(pairs, kv.Pairs...)
			}
		}
		if tmcl != nil {
			if kv, ok := tmcl.Value.(KeyValueList); ok {
				pairs = append(pairs, kv.Pairs...)
			}
		}
		out.Frames = append(out.Frames, Frame{ID: "IPLS", Value: KeyValueList{Pairs: pairs}})
	}

	return out
}

func yearOf(ts string) string {
	if len(ts) >= 4 {
		return ts[:4]
	}
	return ts
}

// splitTDRC breaks an ISO-8601-shaped v2.4 TDRC value into the
// TYER+TDAT+TIME triple spec.md §8 scenario 2 requires, omitting any
// frame whose component isn't present in the source timestamp.
func splitTDRC(f Frame) []Frame {
	txt, ok := f.Value.(Text)
	if !ok {
		return nil
	}
	ts, err := gentag.ParseTimestamp(txt.Joined(), gentag.BestAttempt)
	if err != nil {
		return nil
	}
	var out []Frame
	out = append(out, Frame{ID: "TYER", Value: Text{Values: []string{fmt.Sprintf("%04d", ts.Year)}}})
	if ts.HasDate {
		out = append(out, Frame{ID: "TDAT", Value: Text{Values: []string{fmt.Sprintf("%02d%02d", ts.Day, ts.Month)}}})
	}
	if ts.HasTime {
		out = append(out, Frame{ID: "TIME", Value: Text{Values: []string{fmt.Sprintf("%02d%02d", ts.Hour, ts.Minute)}}})
	}
	return out
}

// downgradeGenreText rewrites a free-text genre name into TCON's
// "(refinement)" form when it matches a standard ID3v1 genre, and maps
// the synthetic names ToGeneric produces for ID3v2.4's "RX"/"CR" markers
// back to those markers.
func downgradeGenreText(s string) string {
	switch s {
	case "Remix":
		return "(RX)"
	case "Cover":
		return "(CR)"
	default:
		return formatGenreContent(s)
	}
}

// downgradeTextEncoding returns f unchanged. The encoding byte is not
// part of the Text model, so the UTF-8 (3) and UTF-16BE (2) encodings
// that v2.2/v2.3 disallow (spec.md §4.3.2) are avoided by Serialize's
// encoding choice rather than rewritten here.
func downgradeTextEncoding(f Frame) Frame {
	if _, ok := f.Value.(Text); ok {
		// The encoding byte isn't modelled as part of Text; Serialize always
		// emits v2.3 text frames as UTF-16BOM when the joined value isn't
		// pure ASCII, so there is nothing further to rewrite at this layer.
		return f
	}
	return f
}
