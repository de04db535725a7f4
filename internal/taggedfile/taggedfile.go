// Package taggedfile defines the file-type enumeration and the parsed
// result type every container parser's output is assembled into
// (spec.md §3 "FileProperties"/"TaggedFile"/"BoundTaggedFile"). Grounded
// on original_source's file_type.rs (FileType, primary_tag_type,
// supports_tag_type, from_ext), extended with the two container formats
// that file enumerates separately from lofty's listed set (Dsf, Dff —
// spec.md §1 lists both, original_source's FileType has no DSD member at
// all), and on the teacher's tag.go (its single-purpose Metadata
// interface is what TaggedFile's (FileType, FileProperties, []Tag)
// triple replaces with an open, multi-tag-capable model).
package taggedfile

import (
	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/gentag"
)

// FileType enumerates every container format this module understands,
// plus Custom for resolver-registered formats (internal/resolver).
type FileType int

const (
	FileTypeUnknown FileType = iota
	AAC
	AIFF
	APE
	FLAC
	MPEG
	MP4
	MPC
	Opus
	Vorbis
	Speex
	WAV
	WavPack
	DSF
	DFF
	Custom
)

func (f FileType) String() string {
	switch f {
	case AAC:
		return "AAC"
	case AIFF:
		return "AIFF"
	case APE:
		return "APE"
	case FLAC:
		return "FLAC"
	case MPEG:
		return "MPEG"
	case MP4:
		return "MP4"
	case MPC:
		return "MPC"
	case Opus:
		return "Opus"
	case Vorbis:
		return "Vorbis"
	case Speex:
		return "Speex"
	case WAV:
		return "WAV"
	case WavPack:
		return "WavPack"
	case DSF:
		return "DSF"
	case DFF:
		return "DFF"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// PrimaryTagType returns the native tag format a file type is written
// with by default, per original_source's primary_tag_type table.
func (f FileType) PrimaryTagType() gentag.TagType {
	switch f {
	case AAC, AIFF, MPEG, WAV:
		return gentag.ID3v2_4
	case APE, MPC, WavPack:
		return gentag.APEv2
	case FLAC, Opus, Vorbis, Speex:
		return gentag.VorbisComment
	case MP4:
		return gentag.MP4Ilst
	case DFF:
		return gentag.DFFText
	default:
		return gentag.TagTypeUnknown
	}
}

// SupportedTagTypes returns every native tag format a file type can
// carry (the subset check TaggedFile's invariant relies on). WAV/AIFF
// can each carry both their own text-chunk format and ID3v2; AAC/MPEG
// additionally tolerate a trailing APEv1/2 and ID3v1 the way MP3 does.
func (f FileType) SupportedTagTypes() []gentag.TagType {
	switch f {
	case AAC, MPEG:
		return []gentag.TagType{gentag.ID3v2_2, gentag.ID3v2_3, gentag.ID3v2_4, gentag.ID3v1, gentag.APEv1, gentag.APEv2}
	case AIFF:
		return []gentag.TagType{gentag.AIFFText, gentag.ID3v2_2, gentag.ID3v2_3, gentag.ID3v2_4}
	case WAV:
		return []gentag.TagType{gentag.RIFFInfo, gentag.ID3v2_2, gentag.ID3v2_3, gentag.ID3v2_4}
	case APE, MPC, WavPack:
		return []gentag.TagType{gentag.APEv1, gentag.APEv2, gentag.ID3v1}
	case FLAC, Opus, Vorbis, Speex:
		return []gentag.TagType{gentag.VorbisComment}
	case MP4:
		return []gentag.TagType{gentag.MP4Ilst}
	case DFF:
		return []gentag.TagType{gentag.DFFText, gentag.ID3v2_2, gentag.ID3v2_3, gentag.ID3v2_4}
	case DSF:
		return []gentag.TagType{gentag.ID3v2_2, gentag.ID3v2_3, gentag.ID3v2_4}
	default:
		return nil
	}
}

// Supports reports whether f can carry a tag of the given type.
func (f FileType) Supports(t gentag.TagType) bool {
	for _, supported := range f.SupportedTagTypes() {
		if supported == t {
			return true
		}
	}
	return false
}

// FromExtension maps a lowercase file extension (without the leading
// dot) to a FileType, per original_source's FileType::from_ext.
func FromExtension(ext string) (FileType, bool) {
	switch ext {
	case "aac":
		return AAC, true
	case "ape":
		return APE, true
	case "aiff", "aif", "afc", "aifc":
		return AIFF, true
	case "mp3", "mp2", "mp1":
		return MPEG, true
	case "wav", "wave":
		return WAV, true
	case "wv":
		return WavPack, true
	case "opus":
		return Opus, true
	case "flac":
		return FLAC, true
	case "ogg":
		return Vorbis, true
	case "mp4", "m4a", "m4b", "m4p", "m4r", "m4v", "3gp":
		return MP4, true
	case "mpc", "mp+", "mpp":
		return MPC, true
	case "spx":
		return Speex, true
	case "dsf":
		return DSF, true
	case "dff":
		return DFF, true
	default:
		return FileTypeUnknown, false
	}
}

// FileProperties is the per-codec-extended properties bundle spec.md §3
// defines. Fields that don't apply to a given FileType are left at
// their zero value.
type FileProperties struct {
	DurationSeconds float64
	OverallBitrate  int // kbps
	AudioBitrate    int // kbps
	SampleRate      uint32
	BitDepth        uint8
	Channels        uint8
	ChannelMask     uint32

	// MPEGVersion/MPEGLayer/ChannelMode are only populated when Type is
	// MPEG or AAC.
	MPEGVersion string
	MPEGLayer   string
	ChannelMode string

	// MP4Codec names the first audio sample entry's codec fourCC
	// (e.g. "mp4a"), only populated when Type is MP4.
	MP4Codec string
}

// Region locates a byte range within the parsed file: here, the span of
// raw audio data a format's container framing encloses, excluding
// leading/trailing tag regions. Left nil for formats (Ogg, FLAC,
// WavPack, Musepack, Monkey's Audio) whose audio data isn't bounded by
// a single contiguous chunk the way RIFF/AIFF/MP4/MPEG/AAC/DSD are.
type Region struct {
	Offset int64
	Size   int64
}

// TaggedFile is the immutable-after-parse result spec.md §3 names: a
// file type, its properties, and every native tag found, with at most
// one Tag per TagType (enforced by probe's assembly, not by this type).
type TaggedFile struct {
	Type        FileType
	Properties  FileProperties
	Tags        []gentag.Tag
	AudioRegion *Region
}

// Tag returns the tag of the given type, or false if none is present.
func (tf TaggedFile) Tag(t gentag.TagType) (gentag.Tag, bool) {
	for _, tag := range tf.Tags {
		if tag.Type == t {
			return tag, true
		}
	}
	return gentag.Tag{}, false
}

// PrimaryTag returns the tag matching Type.PrimaryTagType(), or false if
// the file carries no tag of that type.
func (tf TaggedFile) PrimaryTag() (gentag.Tag, bool) {
	return tf.Tag(tf.Type.PrimaryTagType())
}

// BoundTaggedFile pairs a TaggedFile with the file handle it was parsed
// from, so mutations can be written back in place (spec.md §3).
type BoundTaggedFile struct {
	TaggedFile
	Handle byteio.FileHandle
}
