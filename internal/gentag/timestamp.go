package gentag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/silvertag/audiotags/internal/errs"
)

// Timestamp is the partial ISO-8601 value spec.md §6 defines for TDRC et
// al., Vorbis DATE, and ilst day: a prefix of
// YYYY[-MM[-DD[THH[:MM[:SS]]]]]. Absent date fields are zero and absent
// time fields are governed by HasTime. String omits a zero day, and a zero
// minute/second, so "THH:00" renders back as "THH" rather than the
// precision it was given.
type Timestamp struct {
	Year                       int
	Month, Day                 int // 1-12, 1-31; 0 = absent
	Hour, Minute, Second       int // 0-23, 0-59, 0-59; HasTime governs presence
	HasDate, HasTime           bool
}

// ParsingMode mirrors spec.md §4.1's ParseOptions.parsing_mode.
type ParsingMode int

const (
	Strict ParsingMode = iota
	BestAttempt
	Relaxed
)

// ParseTimestamp parses s per spec.md §6: Strict requires digits and
// hyphen/colon separators exactly as written; BestAttempt additionally
// accepts a space in place of 'T' and spaces as zero padding in the
// month, day and time fields; Relaxed parses exactly as BestAttempt does
// and does not strip any other non-digit characters. The compact form
// YYYYMMDDTHHMMSS is accepted in BestAttempt and Relaxed.
func ParseTimestamp(s string, mode ParsingMode) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, errs.New(errs.BadTimestamp, "empty timestamp")
	}

	// Compact form: YYYYMMDD(THHMMSS)?
	if mode != Strict && isAllDigitsOrT(s) && (len(s) == 8 || len(s) == 15) {
		return parseCompact(s)
	}

	var ts Timestamp
	// Year
	if len(s) < 4 {
		return Timestamp{}, errs.New(errs.BadTimestamp, "timestamp too short: %q", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad year in %q", s)
	}
	ts.Year = year
	rest := s[4:]

	readPart := func(sep byte, width int) (int, bool, error) {
		if len(rest) == 0 {
			return 0, false, nil
		}
		if rest[0] != sep {
			if mode == Strict {
				return 0, false, errs.New(errs.BadTimestamp, "expected %q in %q", string(sep), s)
			}
			// BestAttempt/Relaxed: a space may substitute for 'T'.
			if !(sep == 'T' && rest[0] == ' ') {
				return 0, false, errs.New(errs.BadTimestamp, "expected %q in %q", string(sep), s)
			}
		}
		if len(rest) < 1+width {
			return 0, false, errs.New(errs.BadTimestamp, "truncated timestamp %q", s)
		}
		field := rest[1 : 1+width]
		if mode != Strict {
			// BestAttempt/Relaxed: spaces count as zero padding.
			field = strings.ReplaceAll(field, " ", "0")
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return 0, false, errs.Wrap(err, errs.BadTimestamp, "bad numeric field in %q", s)
		}
		rest = rest[1+width:]
		return v, true, nil
	}

	if month, ok, err := readPart('-', 2); err != nil {
		return Timestamp{}, err
	} else if ok {
		ts.Month = month
		ts.HasDate = true
		if day, ok, err := readPart('-', 2); err != nil {
			return Timestamp{}, err
		} else if ok {
			ts.Day = day
		}
	}

	if hour, ok, err := readPart('T', 2); err != nil {
		return Timestamp{}, err
	} else if ok {
		ts.Hour = hour
		ts.HasTime = true
		if minute, ok, err := readPart(':', 2); err != nil {
			return Timestamp{}, err
		} else if ok {
			ts.Minute = minute
			if second, ok, err := readPart(':', 2); err != nil {
				return Timestamp{}, err
			} else if ok {
				ts.Second = second
			}
		}
	}

	return ts, nil
}

func isAllDigitsOrT(s string) bool {
	for _, r := range s {
		if r == 'T' {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseCompact(s string) (Timestamp, error) {
	var ts Timestamp
	n := func(a, b int) (int, error) { return strconv.Atoi(s[a:b]) }
	var err error
	if ts.Year, err = n(0, 4); err != nil {
		return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad compact timestamp %q", s)
	}
	if ts.Month, err = n(4, 6); err != nil {
		return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad compact timestamp %q", s)
	}
	if ts.Day, err = n(6, 8); err != nil {
		return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad compact timestamp %q", s)
	}
	ts.HasDate = true
	if len(s) == 15 {
		if s[8] != 'T' {
			return Timestamp{}, errs.New(errs.BadTimestamp, "expected T in compact timestamp %q", s)
		}
		if ts.Hour, err = n(9, 11); err != nil {
			return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad compact timestamp %q", s)
		}
		if ts.Minute, err = n(11, 13); err != nil {
			return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad compact timestamp %q", s)
		}
		if ts.Second, err = n(13, 15); err != nil {
			return Timestamp{}, errs.Wrap(err, errs.BadTimestamp, "bad compact timestamp %q", s)
		}
		ts.HasTime = true
	}
	return ts, nil
}

// String renders the timestamp back to the YYYY[-MM[-DD[THH:MM:SS]]] form.
func (ts Timestamp) String() string {
	s := fmt.Sprintf("%04d", ts.Year)
	if !ts.HasDate {
		return s
	}
	s += fmt.Sprintf("-%02d", ts.Month)
	if ts.Day != 0 {
		s += fmt.Sprintf("-%02d", ts.Day)
	}
	if !ts.HasTime {
		return s
	}
	s += fmt.Sprintf("T%02d", ts.Hour)
	if ts.Minute != 0 || ts.Second != 0 {
		s += fmt.Sprintf(":%02d", ts.Minute)
	}
	if ts.Second != 0 {
		s += fmt.Sprintf(":%02d", ts.Second)
	}
	return s
}
