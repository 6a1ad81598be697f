package textpolicy

import (
	"strings"
	"unicode/utf8"
)

// Verdict is the result of checking a body against a LengthPolicy.
type Verdict int

const (
	Accepted Verdict = iota
	TooShort
	TooLong
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// LengthPolicy is a closed interval of rune counts.
type LengthPolicy struct {
	Min int
	Max int
}

// DefaultPolicy is the report's 28 to 70 character window.
var DefaultPolicy = LengthPolicy{Min: 28, Max: 70}

// Len counts characters, not bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Validate classifies text against the policy.
func (p LengthPolicy) Validate(text string) Verdict {
	n := Len(text)
	switch {
	case n < p.Min:
		return TooShort
	case n > p.Max:
		return TooLong
	default:
		return Accepted
	}
}

// Clamp returns text cut to at most Max runes and ending in 。. An
// overlong text is cut to Max-1 runes so the terminal mark always fits;
// a dangling 、 or ： at the cut is dropped first.
func (p LengthPolicy) Clamp(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > p.Max {
		runes = runes[:p.Max-1]
	}
	s := string(runes)
	if strings.HasSuffix(s, Terminal) {
		return s
	}
	s = strings.TrimRight(s, "、：")
	if Len(s) >= p.Max {
		// Exactly Max runes without a terminal: the mark replaces the last one.
		s = string([]rune(s)[:p.Max-1])
	}
	return s + Terminal
}
