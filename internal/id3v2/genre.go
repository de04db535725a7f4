package id3v2

import (
	"strconv"
	"strings"

	"github.com/silvertag/audiotags/internal/id3v1"
)

// parseGenreContent decodes the TCON/TCO "content type" form, which layers
// ID3v1 genre-ID references on top of free text: "17", "(17)", "(17)Rock",
// "(4)(27)CoolGenre", or bare free text. Refinement text that isn't itself
// a remix/cover marker follows the last parenthesised reference, if any.
func parseGenreContent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "(") {
		if n, err := strconv.Atoi(s); err == nil {
			if name, ok := id3v1.GenreName(byte(n)); ok {
				return name
			}
		}
		return s
	}

	var parts []string
	for strings.HasPrefix(s, "(") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			break
		}
		token := s[1:end]
		s = s[end+1:]
		switch token {
		case "RX":
			parts = append(parts, "Remix")
		case "CR":
			parts = append(parts, "Cover")
		default:
			if n, err := strconv.Atoi(token); err == nil {
				if name, ok := id3v1.GenreName(byte(n)); ok {
					parts = append(parts, name)
				}
			}
		}
	}
	if rest := strings.TrimSpace(s); rest != "" {
		parts = append(parts, rest)
	}
	return strings.Join(parts, " ")
}

// formatGenreContent renders a free-text genre back into ID3v1-referencing
// TCON form when it exactly matches a standard genre name, for maximum
// compatibility with readers that only understand the numeric form;
// anything else is written out as plain text.
func formatGenreContent(name string) string {
	if id, ok := id3v1.GenreID(name); ok {
		return "(" + strconv.Itoa(int(id)) + ")"
	}
	return name
}
