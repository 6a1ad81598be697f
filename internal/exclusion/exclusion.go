// Package exclusion parses user-supplied "do not run" dates.
//
// Two token forms are understood: YYYY-MM-DD excludes one specific day,
// MM-DD excludes that month and day every year. Tokens come from a
// comma/whitespace separated string (usually the SKIP_DATES environment
// variable) and from a line-oriented file where # starts a comment.
// Anything that does not parse is dropped without complaint; a typo in
// the skip list must never stop the daily run.
package exclusion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
)

var (
	fixedRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	recurringRe = regexp.MustCompile(`^\d{2}-\d{2}$`)
)

// Date is a calendar date without clock or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthDay is a date that repeats every year.
type MonthDay struct {
	Month time.Month
	Day   int
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// Set is the union of fixed and recurring exclusion dates. The zero value
// is not usable; construct with [New] or one of the parse functions.
type Set struct {
	fixed     map[Date]struct{}
	recurring map[MonthDay]struct{}
}

// New returns an empty set.
func New() *Set {
	return &Set{
		fixed:     make(map[Date]struct{}),
		recurring: make(map[MonthDay]struct{}),
	}
}

// ParseTokens splits text on runs of commas and whitespace and adds every
// well-formed token to a new set. Malformed tokens, and well-formed
// tokens naming impossible dates such as 2025-02-30, are skipped.
func ParseTokens(text string) *Set {
	s := New()
	s.addTokens(text)
	return s
}

func (s *Set) addTokens(text string) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, tok := range fields {
		switch {
		case fixedRe.MatchString(tok):
			t, err := time.Parse(time.DateOnly, tok)
			if err != nil {
				continue
			}
			s.fixed[Date{t.Year(), t.Month(), t.Day()}] = struct{}{}
		case recurringRe.MatchString(tok):
			if md, ok := parseMonthDay(tok); ok {
				s.recurring[md] = struct{}{}
			}
		}
	}
}

// parseMonthDay validates MM-DD against a leap year so that 02-29 is
// accepted; it then simply never matches in common years.
func parseMonthDay(tok string) (MonthDay, bool) {
	t, err := time.Parse("2006-01-02", "2000-"+tok)
	if err != nil {
		return MonthDay{}, false
	}
	return MonthDay{t.Month(), t.Day()}, true
}

// ParseFile reads one or more tokens per line. Everything from the first
// # to the end of a line is a comment; blank lines are skipped.
func ParseFile(r io.Reader) (*Set, error) {
	s := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.addTokens(line)
	}
	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("read exclusion file: %w", err)
	}
	return s, nil
}

// Load merges the tokens in envValue with those in the file at path.
// A missing file is normal and yields just the environment tokens. Any
// other file error is returned alongside the environment tokens, so the
// caller can log it and carry on.
func Load(envValue, path string) (*Set, error) {
	s := ParseTokens(envValue)
	if path == "" {
		return s, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("open exclusion file: %w", err)
	}
	defer f.Close()

	fromFile, err := ParseFile(f)
	s.Union(fromFile)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Union adds every date in other to s and returns s.
func (s *Set) Union(other *Set) *Set {
	if other == nil {
		return s
	}
	for d := range other.fixed {
		s.fixed[d] = struct{}{}
	}
	for md := range other.recurring {
		s.recurring[md] = struct{}{}
	}
	return s
}

// Contains reports whether the calendar date of t is excluded, either as
// a fixed date or through its month and day. A nil set contains nothing.
func (s *Set) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	if _, ok := s.fixed[Date{t.Year(), t.Month(), t.Day()}]; ok {
		return true
	}
	_, ok := s.recurring[MonthDay{t.Month(), t.Day()}]
	return ok
}

// Len returns the number of distinct tokens in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fixed) + len(s.recurring)
}

// Fixed returns the one-time dates in ascending order.
func (s *Set) Fixed() []Date {
	out := make([]Date, 0, len(s.fixed))
	for d := range s.fixed {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Recurring returns the yearly dates in ascending order.
func (s *Set) Recurring() []MonthDay {
	out := make([]MonthDay, 0, len(s.recurring))
	for md := range s.recurring {
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
