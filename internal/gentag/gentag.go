// Package gentag implements the format-neutral Tag the probe/container
// layer converts every native tag into, and back (spec.md §3 "Tag
// (generic)", §4.4, §9 "Cross-tag conversion"). It generalizes the
// single-purpose Metadata interface dhowden/tag's tag.go exposes
// (Title()/Artist()/Album()/...) into an open (ItemKey, ItemValue) list so
// that adding a semantic field never requires touching every codec's
// interface implementation.
package gentag

import (
	"github.com/silvertag/audiotags/internal/itemkey"
	"github.com/silvertag/audiotags/internal/picture"
)

// ItemValueKind discriminates the ItemValue sum type (spec.md §3).
type ItemValueKind int

const (
	KindText ItemValueKind = iota
	KindLocator
	KindBinary
)

// ItemValue is the sum of Text/Locator/Binary values spec.md §3 defines.
// Invariant: for KindText and KindLocator, Text is valid UTF-8 (enforced
// by internal/textcodec at decode time).
type ItemValue struct {
	Kind   ItemValueKind
	Text   string // valid for KindText, KindLocator
	Binary []byte // valid for KindBinary
}

func Text(s string) ItemValue    { return ItemValue{Kind: KindText, Text: s} }
func Locator(s string) ItemValue { return ItemValue{Kind: KindLocator, Text: s} }
func Binary(b []byte) ItemValue  { return ItemValue{Kind: KindBinary, Binary: b} }

// Key pairs an itemkey.Key with the raw native key name, carrying the
// "Unknown(String)" arm of spec.md §3's ItemKey sum type: when K is
// itemkey.Unknown, Raw holds the codec-native key that didn't map to
// anything in the closed enumeration (e.g. an unrecognised ID3v2 frame ID,
// a freeform ilst atom name, or a Vorbis Comment key). Raw is preserved on
// round-trip only when the codec allows arbitrary keys (spec.md §3).
type Key struct {
	K   itemkey.Key
	Raw string
}

// Known builds a Key for a recognised itemkey.Key.
func Known(k itemkey.Key) Key { return Key{K: k} }

// UnknownKey builds the Unknown(raw) arm.
func UnknownKey(raw string) Key { return Key{K: itemkey.Unknown, Raw: raw} }

func (k Key) String() string {
	if k.K == itemkey.Unknown && k.Raw != "" {
		return "Unknown(" + k.Raw + ")"
	}
	return k.K.String()
}

// TagItem is the (ItemKey, ItemValue, Lang, Description) tuple of spec.md
// §3. Lang/Description are only populated by codecs that model them
// (ID3v2 COMM/USLT, ilst ----:mean:name); otherwise both are empty.
type TagItem struct {
	Key         Key
	Value       ItemValue
	Lang        string // ISO-639 shape, not validated beyond length/charset
	Description string
}

// Tag is the generic (TagType, items, pictures) value of spec.md §3.
type Tag struct {
	Type     TagType
	Items    []TagItem
	Pictures []picture.Picture

	// Remainder carries format-specific data with no ItemKey mapping,
	// implementing the Split/Merge protocol of design note §9: a codec's
	// native→generic conversion returns (Remainder, Tag); a later
	// Remainder.Merge(Tag) reconstructs the native representation without
	// losing anything the generic model can't express.
	Remainder Remainder
}

// TagType enumerates the on-disk tag formats spec.md §1 lists.
type TagType int

const (
	TagTypeUnknown TagType = iota
	ID3v1
	ID3v2_2
	ID3v2_3
	ID3v2_4
	APEv1
	APEv2
	MP4Ilst
	VorbisComment
	RIFFInfo
	AIFFText
	DFFText
)

func (t TagType) String() string {
	switch t {
	case ID3v1:
		return "ID3v1"
	case ID3v2_2:
		return "ID3v2.2"
	case ID3v2_3:
		return "ID3v2.3"
	case ID3v2_4:
		return "ID3v2.4"
	case APEv1:
		return "APEv1"
	case APEv2:
		return "APEv2"
	case MP4Ilst:
		return "ilst"
	case VorbisComment:
		return "VorbisComment"
	case RIFFInfo:
		return "RIFFInfo"
	case AIFFText:
		return "AIFFText"
	case DFFText:
		return "DFFText"
	default:
		return "Unknown"
	}
}

// Remainder is the per-codec "everything we couldn't map to an ItemKey"
// bag. Each codec supplies its own concrete type implementing this
// interface (design note §9's Split/Merge protocol).
type Remainder interface {
	// Merge writes back any fields of Tag that the owning codec doesn't
	// natively support, alongside the remainder's own preserved native
	// fields, producing the codec's native tag representation. Concrete
	// codec packages type-assert the returned value to their own type.
	Merge(t Tag) interface{}
}

// Get returns the first item for key k (and, for items that distinguish
// by description/lang, the first unconditionally) or false if absent.
func (t Tag) Get(k itemkey.Key) (TagItem, bool) {
	for _, it := range t.Items {
		if it.Key.K == k {
			return it, true
		}
	}
	return TagItem{}, false
}

// GetAll returns every item for key k, in insertion order (spec.md §8
// scenario 5: repeated Vorbis Comments ARTIST entries preserved in order).
func (t Tag) GetAll(k itemkey.Key) []TagItem {
	var out []TagItem
	for _, it := range t.Items {
		if it.Key.K == k {
			out = append(out, it)
		}
	}
	return out
}

// Set replaces every existing item for a single-valued key k with one new
// item, or appends if k is multi-valued (spec.md §3 invariant: "at most
// one item per (ItemKey, description, lang) triple for single-valued
// keys").
func (t *Tag) Set(k itemkey.Key, v ItemValue) {
	if itemkey.MultiValued(k) {
		t.Items = append(t.Items, TagItem{Key: Known(k), Value: v})
		return
	}
	for i := range t.Items {
		if t.Items[i].Key.K == k {
			t.Items[i].Value = v
			return
		}
	}
	t.Items = append(t.Items, TagItem{Key: Known(k), Value: v})
}

// Add appends a new item unconditionally (used for multi-valued keys and
// for items carrying Lang/Description that must stay distinct).
func (t *Tag) Add(item TagItem) {
	t.Items = append(t.Items, item)
}

// Remove deletes every item for key k.
func (t *Tag) Remove(k itemkey.Key) {
	out := t.Items[:0]
	for _, it := range t.Items {
		if it.Key.K != k {
			out = append(out, it)
		}
	}
	t.Items = out
}

// TextOf returns the first text value for k, or "" if absent or not text.
func (t Tag) TextOf(k itemkey.Key) string {
	it, ok := t.Get(k)
	if !ok || it.Value.Kind != KindText {
		return ""
	}
	return it.Value.Text
}
