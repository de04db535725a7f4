package vorbiscomment

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/silvertag/audiotags/internal/errs"
	"github.com/silvertag/audiotags/internal/picture"
)

// metadataBlockPictureKey is the standard Xiph comment key carrying a
// base64-encoded FLAC PICTURE metadata block (spec.md §4.3.5); the
// legacy iTunes/early-tagger convention of a bare base64 COVERART entry
// (optionally paired with COVERARTMIME) is also recognised on read.
const metadataBlockPictureKey = "METADATA_BLOCK_PICTURE"
const legacyCoverArtKey = "COVERART"
const legacyCoverArtMIMEKey = "COVERARTMIME"

// DecodePictureBlock decodes a base64-encoded FLAC PICTURE block body
// (the value of a METADATA_BLOCK_PICTURE entry): type, MIME, description,
// width/height/depth/colors, then length-prefixed image data.
func DecodePictureBlock(b64 string) (picture.Picture, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return picture.Picture{}, errs.Wrap(err, errs.UnsupportedPicture, "bad base64 in METADATA_BLOCK_PICTURE")
	}
	return decodePictureBlockBytes(raw)
}

// DecodePictureBlockBytes decodes a raw (non-base64) FLAC PICTURE
// metadata block body, the form the block takes natively inside a FLAC
// stream rather than as a Vorbis Comment entry value.
func DecodePictureBlockBytes(b []byte) (picture.Picture, error) {
	return decodePictureBlockBytes(b)
}

func decodePictureBlockBytes(b []byte) (picture.Picture, error) {
	off := 0
	readU32 := func() (uint32, error) {
		if off+4 > len(b) {
			return 0, errs.New(errs.SizeMismatch, "truncated picture block")
		}
		v := binary.BigEndian.Uint32(b[off : off+4])
		off += 4
		return v, nil
	}
	readStr := func() (string, error) {
		n, err := readU32()
		if err != nil {
			return "", err
		}
		if off+int(n) > len(b) {
			return "", errs.New(errs.SizeMismatch, "truncated picture block string")
		}
		s := string(b[off : off+int(n)])
		off += int(n)
		return s, nil
	}

	ptype, err := readU32()
	if err != nil {
		return picture.Picture{}, err
	}
	mime, err := readStr()
	if err != nil {
		return picture.Picture{}, err
	}
	desc, err := readStr()
	if err != nil {
		return picture.Picture{}, err
	}
	// width, height, depth, colour-count: not modeled by the generic
	// Picture type (spec.md §3's restricted subset), read past and
	// discarded.
	for i := 0; i < 4; i++ {
		if _, err := readU32(); err != nil {
			return picture.Picture{}, err
		}
	}
	dataLen, err := readU32()
	if err != nil {
		return picture.Picture{}, err
	}
	if off+int(dataLen) > len(b) {
		return picture.Picture{}, errs.New(errs.SizeMismatch, "picture block data length exceeds remaining bytes")
	}
	data := append([]byte(nil), b[off:off+int(dataLen)]...)

	return picture.Picture{
		PictureType: picture.Type(ptype),
		MIMEType:    mime,
		Description: desc,
		Data:        data,
	}, nil
}

// EncodePictureBlock renders p to the base64 form a METADATA_BLOCK_PICTURE
// entry's value holds.
func EncodePictureBlock(p picture.Picture) string {
	var b []byte
	putU32 := func(v uint32) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], v)
		b = append(b, n[:]...)
	}
	putStr := func(s string) {
		putU32(uint32(len(s)))
		b = append(b, s...)
	}

	putU32(uint32(p.PictureType))
	putStr(p.MIMEType)
	putStr(p.Description)
	putU32(0) // width: not modeled by the generic Picture type
	putU32(0) // height
	putU32(0) // colour depth
	putU32(0) // colour count (0 for non-indexed formats)
	putU32(uint32(len(p.Data)))
	b = append(b, p.Data...)

	return base64.StdEncoding.EncodeToString(b)
}

// ExtractPictures pulls every METADATA_BLOCK_PICTURE (and, failing that,
// a legacy COVERART/COVERARTMIME pair) out of c's entries.
func ExtractPictures(c Comment) []picture.Picture {
	var pics []picture.Picture
	for _, v := range c.GetAll(metadataBlockPictureKey) {
		if p, err := DecodePictureBlock(v); err == nil {
			pics = append(pics, p)
		}
	}
	if len(pics) > 0 {
		return pics
	}
	if raw := c.Get(legacyCoverArtKey); raw != "" {
		if data, err := base64.StdEncoding.DecodeString(raw); err == nil {
			pics = append(pics, picture.Picture{
				PictureType: picture.CoverFront,
				MIMEType:    c.Get(legacyCoverArtMIMEKey),
				Data:        data,
			})
		}
	}
	return pics
}
