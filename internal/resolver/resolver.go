// Package resolver implements the process-wide custom file type
// registry spec.md §4.6 describes: a one-shot `name → handler` map,
// consulted by internal/probe before its built-in format detection when
// enabled. Grounded directly on original_source's resolve.rs
// (register_custom_resolver/CUSTOM_RESOLVERS/lookup_resolver), adapted
// from its trait-object-behind-a-leaked-Box design (required by Rust's
// 'static lifetime rules) to a plain Go map guarded by a mutex.
package resolver

import (
	"fmt"
	"io"
	"sync"

	"github.com/silvertag/audiotags/internal/gentag"
	"github.com/silvertag/audiotags/internal/taggedfile"
)

// Handler is what a caller registers for a custom file type: everything
// internal/probe needs to detect and parse it, the Go counterpart of
// resolve.rs's FileResolver trait.
type Handler struct {
	// Extension is the file extension (without the leading dot) this
	// handler is associated with, or "" if none.
	Extension string

	// PrimaryTagType is the native tag format files of this type are
	// written with by default.
	PrimaryTagType gentag.TagType

	// SupportedTagTypes lists every native tag format this handler's
	// files can carry.
	SupportedTagTypes []gentag.TagType

	// Guess attempts to recognise this file type from up to the first
	// 36 bytes of the stream (the same window internal/probe's
	// built-in detection uses). A false return means "not this
	// type".
	Guess func(buf []byte) bool

	// Read parses a stream already confirmed (by Guess, or by a
	// caller-forced file type) to be this handler's format.
	Read func(r io.ReadSeeker) (*taggedfile.TaggedFile, error)
}

var (
	mu        sync.Mutex
	resolvers = map[string]Handler{}
	order     []string // registration order, for deterministic Guess iteration
)

// Register adds a handler under name. It panics on a duplicate name,
// matching resolve.rs's register_custom_resolver, which asserts no
// existing entry shares the name: a second registration under the same
// name is a programming error the caller must fix, not a runtime
// condition to recover from.
func Register(name string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := resolvers[name]; exists {
		panic(fmt.Sprintf("resolver: %q already registered", name))
	}
	resolvers[name] = h
	order = append(order, name)
}

// Lookup returns the handler registered under name, if any.
func Lookup(name string) (Handler, bool) {
	mu.Lock()
	defer mu.Unlock()
	h, ok := resolvers[name]
	return h, ok
}

// GuessAll runs every registered handler's Guess function over buf, in
// registration order, returning the first match. internal/probe calls
// this before its built-in signature switch when custom resolvers are
// enabled (spec.md §4.1: "Custom resolvers ... are consulted before
// built-ins").
func GuessAll(buf []byte) (name string, ok bool) {
	mu.Lock()
	snapshot := make([]string, len(order))
	copy(snapshot, order)
	handlers := make(map[string]Handler, len(resolvers))
	for k, v := range resolvers {
		handlers[k] = v
	}
	mu.Unlock()

	for _, name := range snapshot {
		h := handlers[name]
		if h.Guess != nil && h.Guess(buf) {
			return name, true
		}
	}
	return "", false
}
