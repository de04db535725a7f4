package gentag

import (
	"strconv"
	"strings"
)

// ParseXOfN parses the "n/total" rendering ID3v2 and APE use for
// track/disc numbers (spec.md §4.4), e.g. "3/12" -> (3, 12). Generalizes
// dhowden/tag's id3v2metadata.go parseXofN (same algorithm, exported).
func ParseXOfN(s string) (n, total int) {
	parts := strings.SplitN(s, "/", 2)
	n, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return n, total
}

// FormatXOfN renders (n, total) in the "n/total" (or bare "n") form.
// Setting only a total (n == 0, total != 0) emits "0/total" per spec.md
// §4.4 ("Setting only a total emits 0/total"). Removing the total alone
// (total == 0) preserves the bare number.
func FormatXOfN(n, total int) string {
	if total == 0 {
		return strconv.Itoa(n)
	}
	return strconv.Itoa(n) + "/" + strconv.Itoa(total)
}

// NormalizeFlag renders a boolean flag item (FlagCompilation, FlagPodcast)
// as "1"/"0", the cross-format normalization spec.md §4.4 requires.
func NormalizeFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseFlag parses the cross-format boolean flag rendering. Any non-empty
// value other than "0" or "false" (in any case) is treated as true
// (matching common third-party tagger leniency for "true"/"yes" style
// legacy values).
func ParseFlag(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "0" && !strings.EqualFold(s, "false")
}
