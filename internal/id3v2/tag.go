package id3v2

import (
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/gentag"
)

// v22to23 maps every v2.2 three-character frame ID this package
// understands to its v2.3/v2.4 four-character equivalent, generalizing
// dhowden/tag's id3v2metadata.go frameNames table (which only carried the
// dozen IDs that table's getter methods needed) to every frame value.go
// decodes.
var v22to23 = map[string]string{
	"TT1": "TIT1", "TT2": "TIT2", "TT3": "TIT3",
	"TP1": "TPE1", "TP2": "TPE2", "TP3": "TPE3", "TP4": "TPE4",
	"TAL": "TALB", "TOT": "TOAL",
	"TRK": "TRCK", "TPA": "TPOS",
	"TYE": "TYER", "TDA": "TDAT", "TIM": "TIME", "TOR": "TORY", "TRD": "TRDA",
	"TCO": "TCON", "TCM": "TCOM", "TCR": "TCOP",
	"TXT": "TEXT", "TOL": "TOLY",
	"TLA": "TLAN", "TEN": "TENC", "TSS": "TSSE",
	"TBP": "TBPM", "TKE": "TKEY", "TSI": "TSIZ",
	"WAR": "WOAR", "WCP": "WCOP", "WAF": "WOAF",
	"COM": "COMM", "ULT": "USLT",
	"PIC": "APIC",
	"POP": "POPM",
	"UFI": "UFID",
	"IPL": "TIPL",
	"PRI": "PRIV",
	"TXX": "TXXX",
	"WXX": "WXXX",
	"RVA": "RVA2",
}

func canonicalFrameID(id string, v Version) string {
	if v != V2_2 {
		return id
	}
	if c, ok := v22to23[id]; ok {
		return c
	}
	return id
}

// v23toV22 is the write-path inverse, used only when serializing a v2.2
// tag (rare; spec.md's write support targets v2.3/v2.4, but the mapping
// costs little to keep symmetric).
var v23toV22 map[string]string

func init() {
	v23toV22 = make(map[string]string, len(v22to23))
	for k, v := range v22to23 {
		if _, exists := v23toV22[v]; !exists {
			v23toV22[v] = k
		}
	}
}

// Frame is a fully decoded ID3v2 frame: its canonical (v2.3/v2.4-shaped)
// ID, its flags, and its typed Value (one of Text, UserText, URL,
// UserURL, CommentOrLyrics, Picture, Popularimeter, UFID, KeyValueList,
// Private, RVA2, or Binary).
type Frame struct {
	ID    string
	Flags FrameFlags
	Value interface{}
}

// Tag is the parsed representation of an ID3v2 tag: its header and its
// decoded frames, in file order. Duplicate frame IDs are all kept (unlike
// dhowden/tag's id3v2.go, which renames the nth duplicate to "ID_n" in a
// flat map) so ToGeneric can apply the "first non-empty wins" rule
// explicitly and Serialize can round-trip every frame that was present.
type Tag struct {
	Header Header
	Frames []Frame
}

// Parse decodes a complete ID3v2 tag, including its header, from r.
// mode controls whether malformed trailing frames are a hard error
// (Strict) or simply truncate the frame list (BestAttempt/Relaxed).
func Parse(r io.Reader, mode gentag.ParsingMode) (Tag, error) {
	h, err := ParseHeader(r)
	if err != nil {
		return Tag{}, err
	}

	var fr io.Reader = &io.LimitedReader{R: r, N: int64(h.Size)}
	if h.Unsynchronisation && h.Version != V2_3 {
		// v2.2 and v2.4 apply unsynchronisation tag-wide; v2.3 applies it
		// per frame via each frame's own Unsynchronisation flag instead.
		fr = &byteio.Unsynchroniser{Reader: fr}
	}

	raws, err := parseFrames(fr, h, mode)
	if err != nil && mode == gentag.Strict {
		return Tag{}, err
	}

	t := Tag{Header: h}
	for _, raw := range raws {
		canonical := canonicalFrameID(raw.ID, h.Version)
		val, err := decodeFrameValue(canonical, raw.Data, h.Version)
		if err != nil {
			if mode == gentag.Strict {
				return Tag{}, err
			}
			continue
		}
		t.Frames = append(t.Frames, Frame{ID: canonical, Flags: raw.Flags, Value: val})
	}
	return t, nil
}

// Get returns the first frame with the given canonical ID.
func (t Tag) Get(id string) (Frame, bool) {
	for _, f := range t.Frames {
		if f.ID == id {
			return f, true
		}
	}
	return Frame{}, false
}

// GetAll returns every frame with the given canonical ID, in file order.
func (t Tag) GetAll(id string) []Frame {
	var out []Frame
	for _, f := range t.Frames {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}
