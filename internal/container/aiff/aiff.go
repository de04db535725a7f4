// Package aiff locates the tag-bearing and audio-data regions of an
// AIFF/AIFC file (spec.md §4.2): the mandatory "FORM"/"AIFF"|"AIFC"
// header, the "COMM" stream properties chunk, the "SSND" audio chunk,
// the NAME/AUTH/"(c) "/ANNO/COMT text chunks handed to
// internal/aifftext, and an optional "ID3 "/"id3 " chunk region for
// internal/id3v2. Chunk dispatch is grounded on original_source's lofty
// iff/aiff/read.rs, whose read_from loop walks the same chunk set in
// the same order; framing (4-byte fourCC + big-endian 32-bit size,
// even-padded) goes through byteio.AIFFWalker.
package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"

	"github.com/silvertag/audiotags/internal/aifftext"
	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// Properties is read from the "COMM" chunk.
type Properties struct {
	Channels      uint16
	SampleFrames  uint32
	BitsPerSample uint16
	SampleRate    uint32
	Compressed    bool
}

// File is the result of walking an AIFF/AIFC file.
type File struct {
	Properties  Properties
	Text        aifftext.Tag
	ID3v2Region *Region
	AudioRegion Region
}

// Walk reads the FORM header and every top-level sub-chunk. r must be
// positioned at the start of the "FORM" signature.
func Walk(r io.ReadSeeker) (*File, error) {
	form, err := byteio.ReadString(r, 4)
	if err != nil {
		return nil, err
	}
	if form != "FORM" {
		return nil, errs.New(errs.UnknownFormat, "aiff: missing FORM signature")
	}
	if _, err := byteio.BEUint32(r); err != nil { // overall size, unused
		return nil, err
	}
	kind, err := byteio.ReadString(r, 4)
	if err != nil {
		return nil, err
	}
	compressed := false
	switch kind {
	case "AIFF":
	case "AIFC":
		compressed = true
	default:
		return nil, errs.New(errs.UnknownFormat, "aiff: not an AIFF/AIFC file (form type %q)", kind)
	}

	f := &File{}
	var sawSSND bool
	for {
		chunk, err := byteio.AIFFWalker.Next(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		bodyOffset, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}

		switch chunk.ID {
		case "COMM":
			body, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			props, err := parseCOMM(body)
			if err != nil {
				return nil, err
			}
			props.Compressed = compressed
			f.Properties = props
		case "SSND":
			// SSND carries an 8-byte offset/blocksize header before the
			// raw sample data (lofty's read_from treats the whole chunk,
			// header included, as the audio stream length).
			sawSSND = true
			f.AudioRegion = Region{Offset: bodyOffset, Size: chunk.Size}
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		case "ID3 ", "id3 ":
			f.ID3v2Region = &Region{Offset: bodyOffset, Size: chunk.Size}
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		case "NAME":
			text, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			f.Text.Name = aifftext.TrimPad(string(text))
		case "AUTH":
			text, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			f.Text.Author = aifftext.TrimPad(string(text))
		case "(c) ":
			text, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			f.Text.Copyright = aifftext.TrimPad(string(text))
		case "ANNO":
			text, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			f.Text.Annotations = append(f.Text.Annotations, aifftext.TrimPad(string(text)))
		case "COMT":
			body, err := byteio.ReadBytes(r, int(chunk.Size))
			if err != nil {
				return nil, err
			}
			if len(f.Text.Comments) == 0 {
				comments, err := aifftext.ParseComments(body)
				if err != nil {
					return nil, err
				}
				f.Text.Comments = comments
			}
		default:
			if _, err := r.Seek(chunk.Size, io.SeekCurrent); err != nil {
				return nil, err
			}
		}

		if pad := byteio.Padded(chunk.Size) - chunk.Size; pad > 0 {
			if _, err := r.Seek(pad, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}

	if !sawSSND {
		return nil, errs.New(errs.UnknownFormat, "aiff: file does not contain an SSND chunk")
	}

	return f, nil
}

// parseCOMM decodes the fixed 18-byte AIFF COMM body (numChannels,
// numSampleFrames, sampleSize, and the 80-bit IEEE 754 extended-
// precision sampleRate). AIFC COMM chunks may carry extra compression-
// type bytes after these 18, which this function ignores.
func parseCOMM(b []byte) (Properties, error) {
	if len(b) < 18 {
		return Properties{}, errs.New(errs.SizeMismatch, "aiff: COMM chunk shorter than 18 bytes")
	}
	br := bytes.NewReader(b)
	channels, err := byteio.ReadBEUintN(br, 2)
	if err != nil {
		return Properties{}, err
	}
	frames, err := byteio.ReadBEUintN(br, 4)
	if err != nil {
		return Properties{}, err
	}
	bits, err := byteio.ReadBEUintN(br, 2)
	if err != nil {
		return Properties{}, err
	}
	var extended [10]byte
	if _, err := io.ReadFull(br, extended[:]); err != nil {
		return Properties{}, errs.Wrap(err, errs.IO, "aiff: reading COMM sample rate")
	}
	return Properties{
		Channels:      uint16(channels),
		SampleFrames:  uint32(frames),
		BitsPerSample: uint16(bits),
		SampleRate:    decodeExtendedFloat(extended),
	}, nil
}

// decodeExtendedFloat converts an 80-bit big-endian IEEE 754 extended
// precision value (the classic AIFF COMM sample-rate encoding) to its
// nearest integer. The format is a 1-bit sign, 15-bit biased exponent
// (bias 16383), and a 64-bit mantissa with an explicit integer bit.
func decodeExtendedFloat(b [10]byte) uint32 {
	sign := b[0]&0x80 != 0
	exponent := int(b[0]&0x7f)<<8 | int(b[1])
	var mantissa uint64
	for i := 2; i < 10; i++ {
		mantissa = mantissa<<8 | uint64(b[i])
	}
	if exponent == 0 && mantissa == 0 {
		return 0
	}
	value := math.Ldexp(float64(mantissa), exponent-16383-63)
	if sign {
		value = -value
	}
	return uint32(value)
}
