// Package textpolicy enforces the character-set and length rules for the
// generated insight sentence.
package textpolicy

import (
	"regexp"
	"strings"
	"unicode"
)

// Label is the prefix the report puts in front of the insight body.
// Models like to echo it back; Clean removes it so it is added exactly once
// at assembly time.
const Label = "気づき："

// Terminal is the sentence-final mark every body must end with.
const Terminal = "。"

// boundaryCutset is trimmed from both ends before filtering.
const boundaryCutset = " \t\r\n　「」『』【】（）()[]\"'“”‘’"

var asciiAlphaRe = regexp.MustCompile(`[A-Za-z]+`)

// Clean normalizes raw model output into a candidate body. It never fails:
//
//   - boundary whitespace, brackets and quotes are trimmed
//   - runs of ASCII letters are removed
//   - every rune outside hiragana, katakana, kanji and 。、： is removed
//   - a leading 気づき： label is stripped
//   - the result is terminated with 。
//
// Clean is idempotent. Input with nothing usable cleans to "".
func Clean(raw string) string {
	s := strings.Trim(raw, boundaryCutset)
	s = asciiAlphaRe.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if Allowed(r) {
			return r
		}
		return -1
	}, s)

	for strings.HasPrefix(s, Label) {
		s = strings.TrimPrefix(s, Label)
	}

	if strings.HasSuffix(s, Terminal) {
		return s
	}
	s = strings.TrimRight(s, "、：")
	if s == "" {
		return ""
	}
	return s + Terminal
}

// Allowed reports whether r may appear in a body.
func Allowed(r rune) bool {
	switch r {
	case '。', '、', '：', 'ー':
		return true
	}
	return unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han)
}
