package rewriter

import (
	"io"

	"github.com/silvertag/audiotags/internal/errs"
)

// MemFile is a byteio.FileHandle backed entirely by a byte slice, for
// exercising Patch/RewriteOggComment without touching disk. Grounded on
// ausocean-av's exp/flac/decode.go writeSeeker (buf/pos fields, the
// capacity-aware growth in Write, the three-way Seek), extended with
// Read, Truncate and Length to satisfy the full FileHandle interface
// writeSeeker itself doesn't implement.
type MemFile struct {
	buf []byte
	pos int
}

// NewMemFile creates a MemFile pre-loaded with contents, positioned at
// the start.
func NewMemFile(contents []byte) *MemFile {
	buf := make([]byte, len(contents))
	copy(buf, contents)
	return &MemFile{buf: buf}
}

// Bytes returns the file's current contents.
func (m *MemFile) Bytes() []byte { return m.buf }

func (m *MemFile) Read(p []byte) (int, error) {
	if m.pos >= len(m.buf) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += n
	return n, nil
}

func (m *MemFile) Write(p []byte) (int, error) {
	minCap := m.pos + len(p)
	if minCap > cap(m.buf) {
		grown := make([]byte, len(m.buf), minCap+len(p))
		copy(grown, m.buf)
		m.buf = grown
	}
	if minCap > len(m.buf) {
		m.buf = m.buf[:minCap]
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *MemFile) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = int64(m.pos) + offset
	case io.SeekEnd:
		newPos = int64(len(m.buf)) + offset
	default:
		return 0, errs.New(errs.IO, "memfile: invalid whence %d", whence)
	}
	if newPos < 0 {
		return 0, errs.New(errs.IO, "memfile: negative result pos")
	}
	m.pos = int(newPos)
	return newPos, nil
}

func (m *MemFile) Truncate(size int64) error {
	if size < 0 {
		return errs.New(errs.IO, "memfile: negative truncate size")
	}
	if int(size) <= len(m.buf) {
		m.buf = m.buf[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func (m *MemFile) Length() (int64, error) {
	return int64(len(m.buf)), nil
}
