package resolver

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/taggedfile"
)

func TestRegisterAndLookup(t *testing.T) {
	name := "TestFormatRegisterAndLookup"
	h := Handler{
		Extension:      "tf1",
		PrimaryTagType: gentag.ID3v2_4,
		Guess: func(buf []byte) bool {
			return bytes.HasPrefix(buf, []byte("TESTFMT"))
		},
		Read: func(r io.ReadSeeker) (*taggedfile.TaggedFile, error) {
			return &taggedfile.TaggedFile{Type: taggedfile.Custom}, nil
		},
	}
	Register(name, h)

	got, ok := Lookup(name)
	require.True(t, ok)
	assert.Equal(t, "tf1", got.Extension)

	guessed, ok := GuessAll([]byte("TESTFMT..."))
	require.True(t, ok)
	assert.Equal(t, name, guessed)

	_, ok = GuessAll([]byte("nope"))
	assert.False(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	name := "TestFormatDuplicate"
	Register(name, Handler{})
	assert.Panics(t, func() {
		Register(name, Handler{})
	})
}
