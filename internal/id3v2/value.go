package id3v2

import (
	"bytes"
	"strings"

	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/picture"
	"github.com/silvertag/audiotags/internal/textcodec"
)

// Text is the decoded value of a T??? text-information frame. v2.4 allows
// multiple values null-separated within one frame (e.g. multi-valued
// TPE1); Values holds every one, in order.
type Text struct {
	Values []string
}

func (t Text) Joined() string { return strings.Join(t.Values, "/") }

// UserText is TXXX/TXX: a free-form (Description, Value) pair.
type UserText struct {
	Description string
	Value       string
}

// URL is a W??? frame: a bare Latin-1 URL with no encoding byte.
type URL string

// UserURL is WXXX/WXX: a (Description, URL) pair, Description encoded per
// its own encoding byte, URL always Latin-1.
type UserURL struct {
	Description string
	URL         string
}

// CommentOrLyrics is COMM/COM or USLT: (Language, Description, Text).
type CommentOrLyrics struct {
	Language    string
	Description string
	Text        string
}

// Picture is APIC/PIC decoded into the generic picture type plus the
// frame's own description.
type Picture struct {
	Pic         picture.Picture
	Description string
}

// Popularimeter is POPM: an email identifying the rating scheme's owner,
// a 0-255 rating and an optional play counter.
type Popularimeter struct {
	Email   string
	Rating  byte
	Counter uint64
}

// UFID is a unique file identifier frame: an owner (reverse-DNS or URL
// string) and an opaque identifier.
type UFID struct {
	Owner      string
	Identifier []byte
}

// KeyValueList is TIPL/IPLS (involved people) or TMCL (musician credits):
// alternating role/name pairs within a single text frame.
type KeyValueList struct {
	Pairs [][2]string
}

// Private is PRIV: an owner identifier plus opaque application data.
type Private struct {
	Owner string
	Data  []byte
}

// RVA2Channel is one channel adjustment within an RVA2 frame.
type RVA2Channel struct {
	ChannelType byte
	VolumeAdj   float64 // in dB, decoded from the 16-bit fixed point value
	PeakBits    byte
	Peak        []byte
}

// RVA2 is the relative volume adjustment (v2.4) frame.
type RVA2 struct {
	Identification string
	Channels       []RVA2Channel
}

// Binary is the fallback decoding for any frame ID this package doesn't
// model explicitly (or GEOB/ETCO/... that are preserved opaquely).
type Binary []byte

func decodeFrameValue(canonicalID string, data []byte, v Version) (interface{}, error) {
	if len(data) == 0 {
		return nil, errs.ID3v2Err(errs.EmptyFrame, "empty %s frame", canonicalID)
	}
	switch {
	case canonicalID == "APIC":
		return decodeAPIC(data)
	case canonicalID == "PIC":
		return decodePIC(data)
	case canonicalID == "COMM" || canonicalID == "USLT":
		return decodeCommentOrLyrics(data)
	case canonicalID == "TXXX":
		return decodeUserText(data)
	case canonicalID == "WXXX":
		return decodeUserURL(data)
	case canonicalID == "POPM":
		return decodePOPM(data)
	case canonicalID == "UFID":
		owner, ident := splitCString(data)
		return UFID{Owner: owner, Identifier: append([]byte(nil), ident...)}, nil
	case canonicalID == "PRIV":
		owner, rest := splitCString(data)
		return Private{Owner: owner, Data: append([]byte(nil), rest...)}, nil
	case canonicalID == "RVA2":
		return decodeRVA2(data)
	case canonicalID == "TIPL" || canonicalID == "TMCL" || canonicalID == "IPLS":
		return decodeKeyValueList(data)
	case len(canonicalID) > 0 && canonicalID[0] == 'T':
		return decodeText(data)
	case len(canonicalID) > 0 && canonicalID[0] == 'W':
		return URL(strings.TrimRight(string(data), "\x00")), nil
	default:
		return Binary(append([]byte(nil), data...)), nil
	}
}

func decodeText(b []byte) (Text, error) {
	enc := textcodec.Encoding(b[0])
	s, err := textcodec.Decode(enc, b[1:])
	if err != nil {
		return Text{}, err
	}
	// A decoded null character is always a single 0x00 byte in the
	// resulting UTF-8 string regardless of the source encoding's width, so
	// one separator form is enough to split multi-valued v2.4 text frames.
	parts := strings.Split(s, "\x00")
	var out []string
	for _, p := range parts {
		p = strings.Trim(p, "\x00")
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return Text{Values: out}, nil
}

func decodeUserText(b []byte) (UserText, error) {
	enc := textcodec.Encoding(b[0])
	head, tail, err := textcodec.SplitNullTerminated(b[1:], enc)
	if err != nil {
		return UserText{}, err
	}
	desc, err := textcodec.Decode(enc, head)
	if err != nil {
		return UserText{}, err
	}
	val, err := textcodec.Decode(enc, tail)
	if err != nil {
		return UserText{}, err
	}
	return UserText{Description: desc, Value: val}, nil
}

func decodeUserURL(b []byte) (UserURL, error) {
	enc := textcodec.Encoding(b[0])
	head, tail, err := textcodec.SplitNullTerminated(b[1:], enc)
	if err != nil {
		return UserURL{}, err
	}
	desc, err := textcodec.Decode(enc, head)
	if err != nil {
		return UserURL{}, err
	}
	return UserURL{Description: desc, URL: strings.TrimRight(string(tail), "\x00")}, nil
}

func decodeCommentOrLyrics(b []byte) (CommentOrLyrics, error) {
	if len(b) < 4 {
		return CommentOrLyrics{}, errs.ID3v2Err(errs.BadFrame, "short COMM/USLT frame")
	}
	enc := textcodec.Encoding(b[0])
	lang := string(b[1:4])
	head, tail, err := textcodec.SplitNullTerminated(b[4:], enc)
	if err != nil {
		return CommentOrLyrics{}, err
	}
	desc, err := textcodec.Decode(enc, head)
	if err != nil {
		return CommentOrLyrics{}, err
	}
	text, err := textcodec.Decode(enc, tail)
	if err != nil {
		return CommentOrLyrics{}, err
	}
	return CommentOrLyrics{Language: lang, Description: desc, Text: text}, nil
}

func decodeAPIC(b []byte) (Picture, error) {
	enc := textcodec.Encoding(b[0])
	parts := bytes.SplitN(b[1:], []byte{0}, 2)
	if len(parts) != 2 {
		return Picture{}, errs.ID3v2Err(errs.BadPictureFormat, "malformed APIC frame")
	}
	mime := string(parts[0])
	rest := parts[1]
	if len(rest) < 1 {
		return Picture{}, errs.ID3v2Err(errs.BadPictureFormat, "malformed APIC frame")
	}
	picType := rest[0]
	head, tail, err := textcodec.SplitNullTerminated(rest[1:], enc)
	if err != nil {
		return Picture{}, err
	}
	desc, err := textcodec.Decode(enc, head)
	if err != nil {
		return Picture{}, err
	}
	return Picture{
		Pic: picture.Picture{
			PictureType: picture.Type(picType),
			MIMEType:    mime,
			Data:        append([]byte(nil), tail...),
		},
		Description: desc,
	}, nil
}

// decodePIC handles the v2.2 "PIC" frame, whose image format field is a
// 3-character extension rather than a MIME string.
func decodePIC(b []byte) (Picture, error) {
	if len(b) < 5 {
		return Picture{}, errs.ID3v2Err(errs.BadPictureFormat, "malformed PIC frame")
	}
	enc := textcodec.Encoding(b[0])
	ext := string(b[1:4])
	picType := b[4]
	head, tail, err := textcodec.SplitNullTerminated(b[5:], enc)
	if err != nil {
		return Picture{}, err
	}
	desc, err := textcodec.Decode(enc, head)
	if err != nil {
		return Picture{}, err
	}
	return Picture{
		Pic: picture.Picture{
			PictureType: picture.Type(picType),
			MIMEType:    picture.MIMEFromExt(strings.ToLower(ext)),
			Data:        append([]byte(nil), tail...),
		},
		Description: desc,
	}, nil
}

func decodePOPM(b []byte) (Popularimeter, error) {
	owner, rest := splitCString(b)
	if len(rest) == 0 {
		return Popularimeter{}, errs.ID3v2Err(errs.BadFrame, "malformed POPM frame")
	}
	p := Popularimeter{Email: owner, Rating: rest[0]}
	rest = rest[1:]
	var counter uint64
	for _, x := range rest {
		counter = counter<<8 | uint64(x)
	}
	p.Counter = counter
	return p, nil
}

func decodeRVA2(b []byte) (RVA2, error) {
	ident, rest := splitCString(b)
	r := RVA2{Identification: ident}
	for len(rest) >= 4 {
		ch := rest[0]
		raw := int16(uint16(rest[1])<<8 | uint16(rest[2]))
		peakBits := rest[3]
		peakBytes := int((peakBits + 7) / 8)
		rest = rest[4:]
		var peak []byte
		if len(rest) >= peakBytes {
			peak = append([]byte(nil), rest[:peakBytes]...)
			rest = rest[peakBytes:]
		}
		r.Channels = append(r.Channels, RVA2Channel{
			ChannelType: ch,
			VolumeAdj:   float64(raw) / 512.0,
			PeakBits:    peakBits,
			Peak:        peak,
		})
	}
	return r, nil
}

func decodeKeyValueList(b []byte) (KeyValueList, error) {
	t, err := decodeText(b)
	if err != nil {
		return KeyValueList{}, err
	}
	var kv KeyValueList
	for i := 0; i+1 < len(t.Values); i += 2 {
		kv.Pairs = append(kv.Pairs, [2]string{t.Values[i], t.Values[i+1]})
	}
	return kv, nil
}

// splitCString splits b at the first NUL byte, as used by the Latin-1
// owner/identification prefixes of UFID, POPM, PRIV and RVA2.
func splitCString(b []byte) (head string, rest []byte) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b), nil
	}
	return string(b[:i]), b[i+1:]
}

