// Package itemkey defines the format-neutral semantic key space that every
// tag codec's native fields are mapped to and from (spec.md §3, §4.4).
// Grounded on dhowden/tag's "frames"/"atoms" name tables
// (id3v2metadata.go, mp4.go) which map a handful of semantic names
// ("title", "artist", "track", ...) to each format's native key; ItemKey
// generalizes that into a single closed enum shared by every codec instead
// of one ad hoc map per format.
package itemkey

// Key is a closed enumeration of semantic tag fields, plus Unknown for any
// native key with no ItemKey mapping. The set below covers every item
// spec.md names explicitly (title/artist/album/track/disc/genre/date/
// compilation/podcast/pictures/MusicBrainz IDs/...) plus the commonly
// paired fields a complete implementation needs (sort names, ReplayGain,
// grouping, mood, work/movement, podcast fields, lyrics, publisher...).
type Key int

const (
	Unknown Key = iota

	TrackTitle
	TrackTitleSortOrder
	TrackArtist
	TrackArtistSortOrder
	TrackNumber
	TrackTotal
	AlbumTitle
	AlbumTitleSortOrder
	AlbumArtist
	AlbumArtistSortOrder
	DiscNumber
	DiscTotal
	Genre
	Composer
	ComposerSortOrder
	Conductor
	Producer
	Lyricist
	Arranger
	Remixer
	Publisher
	Label
	OriginalArtist
	OriginalAlbum
	OriginalLyricist
	RecordingDate
	ReleaseDate
	OriginalReleaseDate
	Year
	Copyright
	License
	EncodedBy
	EncoderSoftware
	EncoderSettings
	Comment
	Description
	Language
	Lyrics
	Script
	Grouping
	Mood
	Work
	Movement
	MovementNumber
	MovementTotal
	FlagCompilation
	FlagPodcast
	PodcastSeries
	PodcastURL
	PodcastGlobalUniqueID
	PodcastKeywords
	PodcastCategory
	InitialKey
	BPM
	ISRC
	Barcode
	CatalogNumber
	Popularimeter
	ReplayGainAlbumGain
	ReplayGainAlbumPeak
	ReplayGainTrackGain
	ReplayGainTrackPeak
	AppleXID
	AppleID3v2ContentGroup
	FileOwner
	TaggingTime
	EncodingTime
	Color
	IntegratorName
	StructuredLocator

	// MusicBrainz identifiers (dhowden/tag: mbz.Info / tag.MBInfo).
	MusicBrainzRecordingID
	MusicBrainzTrackID
	MusicBrainzReleaseID
	MusicBrainzReleaseGroupID
	MusicBrainzArtistID
	MusicBrainzAlbumArtistID
	MusicBrainzWorkID
	MusicBrainzDiscID
	AcoustID
	AcoustIDFingerprint

	// Generic attachments (not text items, but share the ItemKey space so
	// a codec's key→ItemKey table has one lookup path for everything).
	CoverFront
	CoverBack
)

var names = map[Key]string{
	Unknown:                    "Unknown",
	TrackTitle:                 "TrackTitle",
	TrackTitleSortOrder:        "TrackTitleSortOrder",
	TrackArtist:                "TrackArtist",
	TrackArtistSortOrder:       "TrackArtistSortOrder",
	TrackNumber:                "TrackNumber",
	TrackTotal:                 "TrackTotal",
	AlbumTitle:                 "AlbumTitle",
	AlbumTitleSortOrder:        "AlbumTitleSortOrder",
	AlbumArtist:                "AlbumArtist",
	AlbumArtistSortOrder:       "AlbumArtistSortOrder",
	DiscNumber:                 "DiscNumber",
	DiscTotal:                  "DiscTotal",
	Genre:                      "Genre",
	Composer:                   "Composer",
	ComposerSortOrder:          "ComposerSortOrder",
	Conductor:                  "Conductor",
	Producer:                   "Producer",
	Lyricist:                   "Lyricist",
	Arranger:                   "Arranger",
	Remixer:                    "Remixer",
	Publisher:                  "Publisher",
	Label:                      "Label",
	OriginalArtist:             "OriginalArtist",
	OriginalAlbum:              "OriginalAlbum",
	OriginalLyricist:           "OriginalLyricist",
	RecordingDate:              "RecordingDate",
	ReleaseDate:                "ReleaseDate",
	OriginalReleaseDate:        "OriginalReleaseDate",
	Year:                       "Year",
	Copyright:                  "Copyright",
	License:                    "License",
	EncodedBy:                  "EncodedBy",
	EncoderSoftware:            "EncoderSoftware",
	EncoderSettings:            "EncoderSettings",
	Comment:                    "Comment",
	Description:                "Description",
	Language:                   "Language",
	Lyrics:                     "Lyrics",
	Script:                     "Script",
	Grouping:                   "Grouping",
	Mood:                       "Mood",
	Work:                       "Work",
	Movement:                   "Movement",
	MovementNumber:             "MovementNumber",
	MovementTotal:              "MovementTotal",
	FlagCompilation:            "FlagCompilation",
	FlagPodcast:                "FlagPodcast",
	PodcastSeries:              "PodcastSeries",
	PodcastURL:                 "PodcastURL",
	PodcastGlobalUniqueID:      "PodcastGlobalUniqueID",
	PodcastKeywords:            "PodcastKeywords",
	PodcastCategory:            "PodcastCategory",
	InitialKey:                 "InitialKey",
	BPM:                        "BPM",
	ISRC:                       "ISRC",
	Barcode:                    "Barcode",
	CatalogNumber:              "CatalogNumber",
	Popularimeter:              "Popularimeter",
	ReplayGainAlbumGain:        "ReplayGainAlbumGain",
	ReplayGainAlbumPeak:        "ReplayGainAlbumPeak",
	ReplayGainTrackGain:        "ReplayGainTrackGain",
	ReplayGainTrackPeak:        "ReplayGainTrackPeak",
	AppleXID:                   "AppleXID",
	AppleID3v2ContentGroup:     "AppleID3v2ContentGroup",
	FileOwner:                  "FileOwner",
	TaggingTime:                "TaggingTime",
	EncodingTime:               "EncodingTime",
	Color:                      "Color",
	IntegratorName:             "IntegratorName",
	StructuredLocator:          "StructuredLocator",
	MusicBrainzRecordingID:     "MusicBrainzRecordingID",
	MusicBrainzTrackID:         "MusicBrainzTrackID",
	MusicBrainzReleaseID:       "MusicBrainzReleaseID",
	MusicBrainzReleaseGroupID:  "MusicBrainzReleaseGroupID",
	MusicBrainzArtistID:        "MusicBrainzArtistID",
	MusicBrainzAlbumArtistID:   "MusicBrainzAlbumArtistID",
	MusicBrainzWorkID:          "MusicBrainzWorkID",
	MusicBrainzDiscID:          "MusicBrainzDiscID",
	AcoustID:                   "AcoustID",
	AcoustIDFingerprint:        "AcoustIDFingerprint",
	CoverFront:                 "CoverFront",
	CoverBack:                  "CoverBack",
}

// String implements fmt.Stringer for a known Key; an unregistered Key
// value (shouldn't happen given the enum is closed) prints as "Key(?)".
func (k Key) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Key(?)"
}

// MultiValued reports whether multiple TagItems may share this Key in a
// single Tag (spec.md §3: "multi-valued keys ... may repeat").
func MultiValued(k Key) bool {
	switch k {
	case TrackArtist, Genre, Comment, Composer, Conductor, Lyricist, Arranger,
		Remixer, Producer, PodcastKeywords, PodcastCategory:
		return true
	default:
		return false
	}
}
