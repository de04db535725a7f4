// Package picture defines the generic Picture type and the ID3v2 APIC
// picture-type enumeration other formats map onto (spec.md §3). Grounded
// on dhowden/tag's id3v2frames.go Picture struct and pictureTypes map,
// generalized from a display-string lookup to a typed enum with explicit
// MIME type and raw data fields so every codec can round-trip a picture
// without re-deriving its extension from a two-case MIME switch.
package picture

// Type is the ID3v2 APIC picture-type enumeration (spec.md §4.3.2). Other
// formats (ilst covr, Vorbis METADATA_BLOCK_PICTURE, APE binary items) map
// onto a restricted subset of this same enum rather than defining their
// own, per spec.md §3 ("other formats map to a restricted subset").
type Type byte

const (
	Other                     Type = 0x00
	FileIcon32                Type = 0x01
	OtherFileIcon              Type = 0x02
	CoverFront                Type = 0x03
	CoverBack                  Type = 0x04
	LeafletPage                Type = 0x05
	Media                      Type = 0x06
	LeadArtist                 Type = 0x07
	Artist                     Type = 0x08
	Conductor                  Type = 0x09
	Band                       Type = 0x0A
	Composer                   Type = 0x0B
	Lyricist                   Type = 0x0C
	RecordingLocation          Type = 0x0D
	DuringRecording            Type = 0x0E
	DuringPerformance          Type = 0x0F
	MovieScreenCapture         Type = 0x10
	BrightColouredFish         Type = 0x11
	Illustration               Type = 0x12
	BandLogotype               Type = 0x13
	PublisherLogotype          Type = 0x14
)

var names = map[Type]string{
	Other:              "Other",
	FileIcon32:         "32x32 pixels 'file icon' (PNG only)",
	OtherFileIcon:      "Other file icon",
	CoverFront:         "Cover (front)",
	CoverBack:          "Cover (back)",
	LeafletPage:        "Leaflet page",
	Media:              "Media",
	LeadArtist:         "Lead artist/lead performer/soloist",
	Artist:             "Artist/performer",
	Conductor:          "Conductor",
	Band:               "Band/Orchestra",
	Composer:           "Composer",
	Lyricist:           "Lyricist/text writer",
	RecordingLocation:  "Recording Location",
	DuringRecording:    "During recording",
	DuringPerformance:  "During performance",
	MovieScreenCapture: "Movie/video screen capture",
	BrightColouredFish: "A bright coloured fish",
	Illustration:       "Illustration",
	BandLogotype:       "Band/artist logotype",
	PublisherLogotype:  "Publisher/Studio logotype",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "Unknown"
}

// Picture is the generic (format-neutral) attached-picture value (spec.md
// §3): a (PictureType, MimeType, Description, Data) tuple.
type Picture struct {
	PictureType Type
	MIMEType    string
	Description string
	Data        []byte
}

// ExtFromMIME returns the conventional file extension for a picture MIME
// type, used when a caller wants to dump a Picture to disk. Ported from
// dhowden/tag's id3v2frames.go readAPICFrame ext switch.
func ExtFromMIME(mime string) string {
	switch mime {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	default:
		return ""
	}
}

// MIMEFromExt is the inverse of ExtFromMIME, used by the ID3v2.2 PIC frame
// whose "Image format" field is a 3-character extension rather than a
// MIME type (dhowden/tag's id3v2frames.go readPICFrame).
func MIMEFromExt(ext string) string {
	switch ext {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return ""
	}
}

// PNGHeader is the magic prefix used to sniff an "implicit" MP4 covr atom
// as PNG vs JPEG (spec.md §4.3.4; dhowden/tag's mp4.go pngHeader).
var PNGHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// JPEGHeader is the magic prefix for JPEG (SOI marker).
var JPEGHeader = []byte{0xFF, 0xD8, 0xFF}
