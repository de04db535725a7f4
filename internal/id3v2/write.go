package id3v2

import (
	"unicode/utf8"

	"github.com/silvertag/audiotags/internal/textcodec"
)

// Serialize renders a complete ID3v2 tag (header + frames) to its wire
// form. Callers that need v2.3 output on a tag produced from generic
// conversion should run it through DowngradeToV23 first; Serialize itself
// only picks an allowed text encoding per version, it doesn't reduce
// frame IDs.
func Serialize(t Tag) []byte {
	var body []byte
	for _, f := range t.Frames {
		data := encodeFrameValue(f, t.Header.Version)
		body = append(body, serializeFrame(f.ID, f.Flags, data, t.Header.Version)...)
	}
	t.Header.Size = uint32(len(body))
	out := SerializeHeader(t.Header)
	out = append(out, body...)
	return out
}

func pickEncoding(s string, v Version) textcodec.Encoding {
	if isASCII(s) {
		return textcodec.Latin1
	}
	if v == V2_4 {
		return textcodec.UTF8
	}
	return textcodec.UTF16BOM
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func encodeFrameValue(f Frame, v Version) []byte {
	switch val := f.Value.(type) {
	case Text:
		sep := "/"
		if v == V2_4 {
			sep = "\x00"
		}
		joined := joinValues(val.Values, sep)
		enc := pickEncoding(joined, v)
		payload, _ := textcodec.Encode(enc, joined)
		return append([]byte{byte(enc)}, payload...)

	case UserText:
		enc := pickEncoding(val.Description+val.Value, v)
		descB, _ := textcodec.Encode(enc, val.Description)
		delim, _ := textcodec.Delimiter(enc)
		valB, _ := textcodec.Encode(enc, val.Value)
		out := []byte{byte(enc)}
		out = append(out, descB...)
		out = append(out, delim...)
		out = append(out, valB...)
		return out

	case URL:
		return []byte(val)

	case UserURL:
		enc := pickEncoding(val.Description, v)
		descB, _ := textcodec.Encode(enc, val.Description)
		delim, _ := textcodec.Delimiter(enc)
		out := []byte{byte(enc)}
		out = append(out, descB...)
		out = append(out, delim...)
		out = append(out, []byte(val.URL)...)
		return out

	case CommentOrLyrics:
		enc := pickEncoding(val.Description+val.Text, v)
		lang := val.Language
		if len(lang) != 3 {
			lang = "eng"
		}
		descB, _ := textcodec.Encode(enc, val.Description)
		delim, _ := textcodec.Delimiter(enc)
		textB, _ := textcodec.Encode(enc, val.Text)
		out := []byte{byte(enc)}
		out = append(out, []byte(lang)...)
		out = append(out, descB...)
		out = append(out, delim...)
		out = append(out, textB...)
		return out

	case Picture:
		enc := pickEncoding(val.Description, v)
		descB, _ := textcodec.Encode(enc, val.Description)
		delim, _ := textcodec.Delimiter(enc)
		out := []byte{byte(enc)}
		out = append(out, []byte(val.Pic.MIMEType)...)
		out = append(out, 0)
		out = append(out, byte(val.Pic.PictureType))
		out = append(out, descB...)
		out = append(out, delim...)
		out = append(out, val.Pic.Data...)
		return out

	case Popularimeter:
		out := []byte(val.Email)
		out = append(out, 0, val.Rating)
		if val.Counter != 0 {
			var cb []byte
			n := val.Counter
			for n > 0 {
				cb = append([]byte{byte(n)}, cb...)
				n >>= 8
			}
			out = append(out, cb...)
		}
		return out

	case UFID:
		out := []byte(val.Owner)
		out = append(out, 0)
		out = append(out, val.Identifier...)
		return out

	case Private:
		out := []byte(val.Owner)
		out = append(out, 0)
		out = append(out, val.Data...)
		return out

	case KeyValueList:
		var values []string
		for _, p := range val.Pairs {
			values = append(values, p[0], p[1])
		}
		sep := "/"
		if v == V2_4 {
			sep = "\x00"
		}
		joined := joinValues(values, sep)
		enc := pickEncoding(joined, v)
		payload, _ := textcodec.Encode(enc, joined)
		return append([]byte{byte(enc)}, payload...)

	case RVA2:
		out := []byte(val.Identification)
		out = append(out, 0)
		for _, ch := range val.Channels {
			raw := int16(ch.VolumeAdj * 512.0)
			out = append(out, ch.ChannelType, byte(uint16(raw)>>8), byte(uint16(raw)))
			out = append(out, ch.PeakBits)
			out = append(out, ch.Peak...)
		}
		return out

	case Binary:
		return []byte(val)

	default:
		return nil
	}
}

func joinValues(vs []string, sep string) string {
	out := ""
	for i, v := range vs {
		if i > 0 {
			out += sep
		}
		out += v
	}
	return out
}
