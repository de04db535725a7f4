// Package aac locates the tag-bearing regions and reads the stream
// properties of a raw AAC-ADTS file (spec.md §4.2): the same leading
// ID3v2 / trailing ID3v1-APEv2-Lyrics3v2 tag placement an MP3 stream
// uses (reused directly from internal/container/mpeg), and the ADTS
// frame header (sampling frequency index, channel configuration,
// frame length) used to derive basic audio properties. ADTS framing
// isn't covered by any pack source (original_source's file_type.rs only
// disambiguates AAC from MPEG by its second header byte, spec.md §4.1),
// so the frame header table here follows the well-known, publicly fixed
// ISO/IEC 13818-7 ADTS bitstream layout.
package aac

import (
	"io"

	"github.com/silvertag/audiotags/internal/byteio"
	"github.com/silvertag/audiotags/internal/container/mpeg"
	"github.com/silvertag/audiotags/internal/errs"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// samplingFrequencyTable is the ADTS sampling_frequency_index lookup
// (ISO/IEC 13818-7 Table 1.A.9); indices 13-14 are reserved and 15 is
// the explicit-frequency escape, neither produced by real encoders.
var samplingFrequencyTable = [13]uint32{
	96000, 88200, 64000, 48000, 44100, 32000, 24000,
	22050, 16000, 12000, 11025, 8000, 7350,
}

// Properties is read from the first ADTS frame header.
type Properties struct {
	SampleRate uint32
	Channels   uint8
	FrameCount int
	HasCRC     bool
}

// TagRegions mirrors internal/container/mpeg.TagRegions; AAC-ADTS shares
// the same tag placement conventions as MP3.
type TagRegions = mpeg.TagRegions

// File is the result of walking an AAC-ADTS stream.
type File struct {
	Properties  Properties
	ID3v2Region *Region
	Tags        TagRegions
	AudioRegion Region
}

// Walk locates the leading/trailing tag regions the same way
// internal/container/mpeg does, then scans the ADTS frames between them
// for stream properties.
func Walk(r io.ReadSeeker) (*File, error) {
	id3Region, err := mpeg.LocateID3v2(r)
	if err != nil {
		return nil, err
	}
	tags, audioEnd, err := mpeg.LocateTrailingTags(r)
	if err != nil {
		return nil, err
	}

	var audioStart int64
	if id3Region != nil {
		audioStart = id3Region.Offset + id3Region.Size
	}
	if _, err := r.Seek(audioStart, io.SeekStart); err != nil {
		return nil, err
	}

	props, err := scanFrames(r, audioStart, audioEnd)
	if err != nil {
		return nil, err
	}

	f := &File{
		Properties:  props,
		Tags:        tags,
		AudioRegion: Region{Offset: audioStart, Size: audioEnd - audioStart},
	}
	if id3Region != nil {
		region := *id3Region
		f.ID3v2Region = &region
	}
	return f, nil
}

// scanFrames reads the first ADTS frame header for properties, then
// walks subsequent frames (using each frame's own length field) purely
// to count them.
func scanFrames(r io.ReadSeeker, start, end int64) (Properties, error) {
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return Properties{}, err
	}

	var props Properties
	cursor := start
	for cursor < end {
		header, err := byteio.ReadBytes(r, 7)
		if err != nil {
			if cursor == start {
				return Properties{}, errs.New(errs.UnknownFormat, "aac: stream too short for an ADTS header")
			}
			break
		}
		if header[0] != 0xFF || header[1]&0xF0 != 0xF0 {
			if cursor == start {
				return Properties{}, errs.New(errs.UnknownFormat, "aac: missing ADTS syncword")
			}
			break
		}

		protectionAbsent := header[1]&0x1 != 0
		freqIdx := (header[2] >> 2) & 0xF
		channelConfig := ((header[2] & 0x1) << 2) | (header[3] >> 6)
		frameLength := (uint32(header[3]&0x3) << 11) | (uint32(header[4]) << 3) | (uint32(header[5]) >> 5)

		if props.FrameCount == 0 {
			props.HasCRC = !protectionAbsent
			if int(freqIdx) < len(samplingFrequencyTable) {
				props.SampleRate = samplingFrequencyTable[freqIdx]
			}
			props.Channels = channelConfig
		}
		props.FrameCount++

		if frameLength < 7 {
			break
		}
		next := cursor + int64(frameLength)
		if next <= cursor || next > end {
			break
		}
		if _, err := r.Seek(next, io.SeekStart); err != nil {
			return Properties{}, err
		}
		cursor = next
	}

	if props.FrameCount == 0 {
		return Properties{}, errs.New(errs.UnknownFormat, "aac: no ADTS frames found")
	}
	return props, nil
}
