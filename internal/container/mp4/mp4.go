// Package mp4 locates the tag-bearing and audio-data regions of an
// MP4/M4A container (spec.md §4.2): the "moov"/"udta"/"meta"/"ilst"
// descent that holds iTunes-style metadata, the "mvhd"/"stsd" boxes
// that carry basic stream properties, and the "mdat" audio region.
// Atom framing (32-bit size, 4-byte fourCC, the size==1 64-bit extended
// length and size==0 extends-to-EOF conventions) is grounded on
// original_source's lofty mp4/atom_info.rs AtomInfo::read; the "meta"/
// "ilst"/"----" freeform descent is grounded on the teacher's mp4.go
// readAtoms/readCustomAtom, generalized to record byte Regions instead
// of decoding straight into a map.
package mp4

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/ilst"
)

// Region locates a byte range within the file.
type Region struct {
	Offset int64
	Size   int64
}

// boxHeader is one atom's framing: Size is the full atom length
// (header included), HeaderLen is 8 or 16 depending on whether an
// extended 64-bit size field was present.
type boxHeader struct {
	Name      string
	Size      int64
	HeaderLen int64
}

func readBoxHeader(r io.ReadSeeker, bound int64) (boxHeader, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return boxHeader{}, err
	}
	var rawSize uint32
	if err := binary.Read(r, binary.BigEndian, &rawSize); err != nil {
		return boxHeader{}, err
	}
	var name [4]byte
	if _, err := io.ReadFull(r, name[:]); err != nil {
		return boxHeader{}, err
	}

	h := boxHeader{Name: string(name[:]), HeaderLen: 8}
	switch rawSize {
	case 0:
		h.Size = bound - start
	case 1:
		var ext uint64
		if err := binary.Read(r, binary.BigEndian, &ext); err != nil {
			return boxHeader{}, err
		}
		h.Size = int64(ext)
		h.HeaderLen = 16
	default:
		h.Size = int64(rawSize)
	}
	if h.Size < h.HeaderLen {
		return boxHeader{}, errs.New(errs.BadAtom, "mp4: atom %q has invalid length %d", h.Name, h.Size)
	}
	return h, nil
}

// Properties is read from the "mvhd" and audio "stsd" sample entry
// boxes.
type Properties struct {
	DurationSeconds float64
	SampleRate      uint32
	Channels        uint16
	BitsPerSample   uint16
}

// File is the result of walking an MP4/M4A file.
type File struct {
	Properties  Properties
	Atoms       []ilst.Atom
	ILSTRegion  Region
	AudioRegion Region
}

// Walk reads the top-level box tree. r must be positioned at the start
// of the file (the first top-level atom, normally "ftyp").
func Walk(r io.ReadSeeker) (*File, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	f := &File{}
	var timescale, duration uint32
	var walk func(bound int64) error
	walk = func(bound int64) error {
		for {
			pos, err := r.Seek(0, io.SeekCurrent)
			if err != nil {
				return err
			}
			if pos >= bound {
				return nil
			}
			h, err := readBoxHeader(r, bound)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			bodyStart := pos + h.HeaderLen
			bodyEnd := pos + h.Size

			switch h.Name {
			case "moov", "udta":
				if err := walk(bodyEnd); err != nil {
					return err
				}
			case "meta":
				// 4-byte version/flags field precedes the child boxes.
				if _, err := r.Seek(4, io.SeekCurrent); err != nil {
					return err
				}
				if err := walk(bodyEnd); err != nil {
					return err
				}
			case "ilst":
				f.ILSTRegion = Region{Offset: bodyStart, Size: bodyEnd - bodyStart}
				atoms, err := readILSTChildren(r, bodyEnd)
				if err != nil {
					return err
				}
				f.Atoms = atoms
				if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
					return err
				}
			case "mvhd":
				body := make([]byte, h.Size-h.HeaderLen)
				if _, err := io.ReadFull(r, body); err != nil {
					return err
				}
				timescale, duration = parseMvhd(body)
			case "trak":
				if err := walk(bodyEnd); err != nil {
					return err
				}
			case "mdia", "minf", "stbl":
				if err := walk(bodyEnd); err != nil {
					return err
				}
			case "stsd":
				body := make([]byte, h.Size-h.HeaderLen)
				if _, err := io.ReadFull(r, body); err != nil {
					return err
				}
				if props, ok := parseStsdAudio(body); ok {
					f.Properties.SampleRate = props.SampleRate
					f.Properties.Channels = props.Channels
					f.Properties.BitsPerSample = props.BitsPerSample
				}
			case "mdat":
				f.AudioRegion = Region{Offset: bodyStart, Size: bodyEnd - bodyStart}
				if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
					return err
				}
			default:
				if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
					return err
				}
			}
		}
	}

	if err := walk(end); err != nil {
		return nil, err
	}
	if timescale > 0 {
		f.Properties.DurationSeconds = float64(duration) / float64(timescale)
	}
	return f, nil
}

// readILSTChildren flattens every ilst child atom into the (key,
// values) shape internal/ilst consumes, resolving "----" freeform
// mean/name sub-atoms per the teacher's readCustomAtom.
func readILSTChildren(r io.ReadSeeker, bound int64) ([]ilst.Atom, error) {
	var out []ilst.Atom
	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		if pos >= bound {
			return out, nil
		}
		h, err := readBoxHeader(r, bound)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		bodyEnd := pos + h.Size

		if h.Name == "----" {
			atom, err := readFreeformAtom(r, bodyEnd)
			if err != nil {
				return nil, err
			}
			out = append(out, atom)
			if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
				return nil, err
			}
			continue
		}

		values, err := readDataChildren(r, bodyEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, ilst.Atom{Name: h.Name, Values: values})
		if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
			return nil, err
		}
	}
}

// readDataChildren reads every "data" sub-atom of a standard ilst
// entry: 1-byte version + 3-byte class flags (the well-known-type
// code), 4 reserved/locale bytes, then the payload.
func readDataChildren(r io.ReadSeeker, bound int64) ([]ilst.Value, error) {
	var out []ilst.Value
	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, err
		}
		if pos >= bound {
			return out, nil
		}
		h, err := readBoxHeader(r, bound)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		bodyEnd := pos + h.Size
		if h.Name != "data" {
			if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
				return nil, err
			}
			continue
		}
		body := make([]byte, h.Size-h.HeaderLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		if len(body) < 8 {
			return nil, errs.New(errs.SizeMismatch, "mp4: data atom shorter than 8 bytes")
		}
		class := uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
		out = append(out, ilst.Value{Type: ilst.DataType(class), Data: body[8:]})
	}
}

// readFreeformAtom parses a "----" atom's mean/name/data children per
// the teacher's readCustomAtom (mean must be "com.apple.iTunes" for
// the atom to round-trip through the generic tag conversion, but this
// container layer preserves whatever mean/name it finds either way).
func readFreeformAtom(r io.ReadSeeker, bound int64) (ilst.Atom, error) {
	atom := ilst.Atom{Name: "----"}
	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return ilst.Atom{}, err
		}
		if pos >= bound {
			return atom, nil
		}
		h, err := readBoxHeader(r, bound)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return atom, nil
			}
			return ilst.Atom{}, err
		}
		bodyEnd := pos + h.Size
		switch h.Name {
		case "mean", "name":
			body := make([]byte, h.Size-h.HeaderLen)
			if _, err := io.ReadFull(r, body); err != nil {
				return ilst.Atom{}, err
			}
			if len(body) >= 4 {
				if h.Name == "mean" {
					atom.Mean = string(body[4:])
				} else {
					atom.FreeformName = string(body[4:])
				}
			}
		case "data":
			body := make([]byte, h.Size-h.HeaderLen)
			if _, err := io.ReadFull(r, body); err != nil {
				return ilst.Atom{}, err
			}
			if len(body) >= 8 {
				class := uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
				atom.Values = append(atom.Values, ilst.Value{Type: ilst.DataType(class), Data: body[8:]})
			}
		default:
			if _, err := r.Seek(bodyEnd, io.SeekStart); err != nil {
				return ilst.Atom{}, err
			}
		}
	}
}

// parseMvhd decodes just the timescale/duration fields this package
// needs from the "mvhd" box, handling both the version-0 (32-bit) and
// version-1 (64-bit) layouts.
func parseMvhd(b []byte) (timescale, duration uint32) {
	if len(b) < 1 {
		return 0, 0
	}
	version := b[0]
	if version == 1 {
		if len(b) < 32 {
			return 0, 0
		}
		timescale = binary.BigEndian.Uint32(b[20:24])
		duration = uint32(binary.BigEndian.Uint64(b[24:32]))
		return timescale, duration
	}
	if len(b) < 20 {
		return 0, 0
	}
	timescale = binary.BigEndian.Uint32(b[12:16])
	duration = binary.BigEndian.Uint32(b[16:20])
	return timescale, duration
}

// parseStsdAudio scans an "stsd" sample table for the first audio
// sample entry and decodes its channel count, sample size, and sample
// rate, per the well-known QuickTime/MP4 AudioSampleEntry layout
// (8-byte reserved/version+revision/vendor, channels, sample size,
// pre-defined/reserved, then a 16.16 fixed-point sample rate).
func parseStsdAudio(b []byte) (Properties, bool) {
	if len(b) < 8 {
		return Properties{}, false
	}
	count := binary.BigEndian.Uint32(b[4:8])
	if count == 0 || len(b) < 16 {
		return Properties{}, false
	}
	entrySize := binary.BigEndian.Uint32(b[8:12])
	entryStart := 24 // skip version/flags(4)/entry_count(4), then the entry's size/format/reserved(6)/data_ref_index(2)
	if int(entrySize) < entryStart || len(b) < entryStart+20 {
		return Properties{}, false
	}
	entry := b[entryStart:]
	if len(entry) < 20 {
		return Properties{}, false
	}
	channels := binary.BigEndian.Uint16(entry[8:10])
	sampleSize := binary.BigEndian.Uint16(entry[10:12])
	sampleRateFixed := binary.BigEndian.Uint32(entry[16:20])
	return Properties{
		Channels:      channels,
		BitsPerSample: sampleSize,
		SampleRate:    sampleRateFixed >> 16,
	}, true
}
