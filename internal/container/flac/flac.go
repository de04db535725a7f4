// Package flac locates the metadata block chain and audio frame
// boundary of a FLAC stream (spec.md §4.2): the mandatory fLaC magic,
// the StreamInfo/VorbisComment/Picture/... block chain, and the offset
// where compressed audio frames begin. Stream properties are read
// through github.com/mewkiz/flac, grounded on ausocean-av's
// exp/flac/decode.go, which drives the same library for sample rate,
// bit depth and channel count; the VorbisComment and Picture block
// bodies are located by a hand-rolled block-header walk (the 1-bit
// last-flag + 7-bit type + 24-bit big-endian length layout mewkiz/flac's
// own meta package documents) and handed to internal/vorbiscomment,
// which already knows how to decode them.
package flac

import (
	"bytes"
	"io"

	flacfmt "github.com/mewkiz/flac"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/picture"
	"github.com/silvertag/audiotags/internal/vorbiscomment"
)

// Magic is the FLAC stream marker (spec.md §6).
var Magic = []byte("fLaC")

// BlockType is the metadata block type, the 7-bit field mewkiz/flac's
// meta.BlockHeader calls BlockType.
type BlockType uint8

const (
	TypeStreamInfo BlockType = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
)

// BlockHeader is one metadata block header.
type BlockHeader struct {
	IsLast bool
	Type   BlockType
	Length int64
}

// Region locates a byte range within the file, relative to the start of
// the stream (i.e. the first byte of the fLaC magic).
type Region struct {
	Offset int64
	Size   int64
}

// Properties is the subset of StreamInfo the container layer surfaces;
// full audio decoding is out of scope.
type Properties struct {
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	TotalSamples  uint64
}

// File is the result of locating every region of interest in a FLAC
// stream.
type File struct {
	Properties    Properties
	Comment       *vorbiscomment.Comment
	CommentRegion Region
	Pictures      []picture.Picture
	AudioOffset   int64
}

// ReadProperties decodes the stream's basic audio properties via
// github.com/mewkiz/flac. r must be positioned at the start of the fLaC
// stream; the call only consumes the metadata chain, never an audio
// frame.
func ReadProperties(r io.Reader) (Properties, error) {
	stream, err := flacfmt.Parse(r)
	if err != nil {
		return Properties{}, errs.Wrap(err, errs.SizeMismatch, "flac: parse stream")
	}
	defer stream.Close()
	return Properties{
		SampleRate:    stream.Info.SampleRate,
		Channels:      uint8(stream.Info.NChannels),
		BitsPerSample: uint8(stream.Info.BitsPerSample),
		TotalSamples:  stream.Info.NSamples,
	}, nil
}

// Walk locates the metadata block chain and the audio frame boundary,
// without interpreting any block's bytes beyond handing the
// VorbisComment and Picture block bodies to the codecs that already know
// how to decode them. r must be positioned at the start of the fLaC
// magic and must support Seek (used only to skip uninteresting blocks
// and to report the resulting offsets).
func Walk(r io.ReadSeeker) (*File, error) {
	magic, err := byteio.ReadBytes(r, 4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic) {
		return nil, errs.New(errs.UnknownFormat, "flac: missing fLaC magic")
	}

	f := &File{}
	for {
		raw, err := byteio.ReadBytes(r, 4)
		if err != nil {
			return nil, errs.Wrap(err, errs.IO, "flac: read metadata block header")
		}
		h := BlockHeader{
			IsLast: raw[0]&0x80 != 0,
			Type:   BlockType(raw[0] &^ 0x80),
			Length: int64(byteio.BEUintN(raw[1:4])),
		}

		bodyOffset, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, errs.Wrap(err, errs.IO, "flac: seek to block body")
		}

		switch h.Type {
		case TypeVorbisComment:
			body, err := byteio.ReadBytes(r, int(h.Length))
			if err != nil {
				return nil, err
			}
			c, err := vorbiscomment.Parse(body)
			if err != nil {
				return nil, errs.Wrap(err, errs.SizeMismatch, "flac: parse VorbisComment block")
			}
			f.Comment = &c
			f.CommentRegion = Region{Offset: bodyOffset, Size: h.Length}
		case TypePicture:
			body, err := byteio.ReadBytes(r, int(h.Length))
			if err != nil {
				return nil, err
			}
			pic, err := vorbiscomment.DecodePictureBlockBytes(body)
			if err != nil {
				return nil, errs.Wrap(err, errs.UnsupportedPicture, "flac: parse Picture block")
			}
			f.Pictures = append(f.Pictures, pic)
		default:
			if _, err := r.Seek(h.Length, io.SeekCurrent); err != nil {
				return nil, errs.Wrap(err, errs.IO, "flac: skip block type %d", h.Type)
			}
		}

		if h.IsLast {
			break
		}
	}

	f.AudioOffset, err = r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errs.Wrap(err, errs.IO, "flac: seek to audio offset")
	}
	return f, nil
}

// Parse combines ReadProperties and Walk into the single entry point the
// probe layer calls: r is read twice, once for the library-backed
// property decode and once for the region-locating walk, since
// mewkiz/flac exposes no block offsets of its own.
func Parse(r io.ReadSeeker) (*File, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(err, errs.IO, "flac: seek to start")
	}
	props, err := ReadProperties(r)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errs.Wrap(err, errs.IO, "flac: rewind after properties")
	}
	f, err := Walk(r)
	if err != nil {
		return nil, err
	}
	f.Properties = props
	return f, nil
}
