// Package textcodec decodes and encodes the text encodings ID3v2, APE,
// Vorbis Comments and ilst atoms use: Latin-1, UTF-8, and UTF-16 (with BOM
// or fixed byte order). Grounded on the retrieved
// other_examples/yorkxin-mp3len internal/id3/parse.go, which decodes
// ID3v2's UTF-16 text frames with golang.org/x/text/encoding/unicode piped
// through golang.org/x/text/transform rather than a hand-rolled
// unicode/utf16 loop (the approach dhowden/tag's id3v2frames.go takes) —
// we follow the x/text idiom since it's the one real pack dependency that
// actually fits this concern, and it additionally gives us well-tested
// malformed-surrogate handling for free.
package textcodec

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/silvertag/audiotags/internal/errs"
)

// Encoding is the ID3v2 text-encoding byte (spec.md §4.3.2): 0=Latin-1,
// 1=UTF-16 with BOM, 2=UTF-16BE without BOM, 3=UTF-8.
type Encoding byte

const (
	Latin1       Encoding = 0
	UTF16BOM     Encoding = 1
	UTF16BE      Encoding = 2
	UTF8         Encoding = 3
)

// Delimiter returns the null-termination sequence for enc: one zero byte
// for single-byte encodings, two for UTF-16 (spec.md §4.3.2).
func Delimiter(enc Encoding) ([]byte, error) {
	switch enc {
	case Latin1, UTF8:
		return []byte{0}, nil
	case UTF16BOM, UTF16BE:
		return []byte{0, 0}, nil
	default:
		return nil, errs.New(errs.TextDecode, "invalid encoding byte %#x", enc)
	}
}

// Decode converts b (encoded per enc) to a UTF-8 Go string. Invariant
// (spec.md §3, ItemValue): the result is always valid UTF-8.
func Decode(enc Encoding, b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	switch enc {
	case Latin1:
		return decodeLatin1(b), nil
	case UTF8:
		if !utf8.Valid(b) {
			return "", errs.New(errs.StringFromUTF8, "invalid UTF-8 text frame payload")
		}
		return string(b), nil
	case UTF16BOM:
		return decodeUTF16(b, unicode.BigEndian, unicode.ExpectBOM)
	case UTF16BE:
		return decodeUTF16(b, unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return "", errs.New(errs.TextDecode, "invalid encoding byte %#x", enc)
	}
}

func decodeLatin1(b []byte) string {
	dec := charmap.ISO8859_1.NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		// charmap.ISO8859_1 is a total function over all 256 byte values,
		// so this path is unreachable, but fall back defensively.
		r := make([]rune, len(b))
		for i, x := range b {
			r[i] = rune(x)
		}
		return string(r)
	}
	return string(out)
}

func decodeUTF16(b []byte, fallback unicode.Endianness, bomPolicy unicode.BOMPolicy) (string, error) {
	enc := unicode.UTF16(fallback, bomPolicy)
	tr := transform.NewReader(bytes.NewReader(b), enc.NewDecoder())
	out, err := io.ReadAll(tr)
	if err != nil {
		return "", errs.Wrap(err, errs.TextDecode, "decoding UTF-16 text")
	}
	return string(out), nil
}

// Encode converts a UTF-8 Go string to the wire bytes for enc. UTF16BOM
// output starts with a BOM (little-endian); UTF16BE output has none.
func Encode(enc Encoding, s string) ([]byte, error) {
	switch enc {
	case Latin1:
		encd := charmap.ISO8859_1.NewEncoder()
		out, err := encd.Bytes([]byte(s))
		if err != nil {
			return nil, errs.Wrap(err, errs.TextEncode, "encoding Latin-1 text")
		}
		return out, nil
	case UTF8:
		return []byte(s), nil
	case UTF16BOM:
		return encodeUTF16(s, unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return encodeUTF16(s, unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return nil, errs.New(errs.TextEncode, "invalid encoding byte %#x", enc)
	}
}

func encodeUTF16(s string, order unicode.Endianness, bomPolicy unicode.BOMPolicy) ([]byte, error) {
	enc := unicode.UTF16(order, bomPolicy)
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errs.Wrap(err, errs.TextEncode, "encoding UTF-16 text")
	}
	return out, nil
}

// SplitNullTerminated splits b on the first occurrence of enc's
// null-termination delimiter, returning the two halves. Ported from
// dhowden/tag's id3v2frames.go dataSplit, used to separate a frame's
// description from its content (COMM/USLT/APIC/TXXX).
func SplitNullTerminated(b []byte, enc Encoding) (head, tail []byte, err error) {
	delim, err := Delimiter(enc)
	if err != nil {
		return nil, nil, err
	}
	parts := bytes.SplitN(b, delim, 2)
	if len(parts) <= 1 {
		return parts[0], nil, nil
	}
	head, tail = parts[0], parts[1]
	// A UTF-16 delimiter can appear misaligned: the first 0x00 0x00 found
	// may start on the high byte of the prior character, leaving an
	// odd-length head. As in dhowden/tag's dataSplit, that 0x00 is moved
	// back onto the head. For single-byte encodings a doubled NUL is
	// trimmed from the tail.
	if len(delim) == 2 && len(head)%2 == 1 && len(tail) > 0 && tail[0] == 0 {
		head = b[:len(head)+1]
		tail = tail[1:]
	}
	if len(tail) > 0 && tail[0] == 0 && len(delim) == 1 {
		tail = tail[1:]
	}
	return head, tail, nil
}
