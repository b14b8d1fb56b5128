// Package safety decides which windows may receive synthetic input.
//
// A title is forbidden when it matches any deny pattern. It is a candidate
// target only when it is not forbidden and matches at least one allow
// pattern. Deny patterns are always evaluated first.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// RegexPrefix marks a pattern as a regular expression instead of a substring.
const RegexPrefix = "re:"

// DefaultDenyPatterns identify source-code editors. Typing into one of these
// silently corrupts files.
var DefaultDenyPatterns = []string{
	"visual studio code",
	"vs code",
	"vscode",
	"code.exe",
	".py -",
	".js -",
	".ts -",
	"workspace",
	"copilot",
	"github copilot",
}

// DefaultAllowPatterns identify the demo application window.
var DefaultAllowPatterns = []string{
	"DatingApp (Demo)",
	"datingapp",
	"dejtingapp",
	"flutter app",
	"dating app demo",
}

// PatternSet matches titles case-insensitively against substrings and
// regular expressions.
type PatternSet struct {
	raw        []string
	substrings []string
	regexps    []*regexp.Regexp
}

// NewPatternSet compiles patterns. Entries prefixed with "re:" are compiled as
// case-insensitive regular expressions; everything else is a substring.
// Blank entries are ignored.
func NewPatternSet(patterns []string) (*PatternSet, error) {
	ps := &PatternSet{}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		ps.raw = append(ps.raw, p)
		if expr, ok := strings.CutPrefix(p, RegexPrefix); ok {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			ps.regexps = append(ps.regexps, re)
			continue
		}
		ps.substrings = append(ps.substrings, strings.ToLower(p))
	}
	return ps, nil
}

// MustPatternSet is like NewPatternSet but panics on an invalid pattern.
func MustPatternSet(patterns []string) *PatternSet {
	ps, err := NewPatternSet(patterns)
	if err != nil {
		panic(err)
	}
	return ps
}

// Match returns the first pattern matching title.
func (ps *PatternSet) Match(title string) (string, bool) {
	if ps == nil {
		return "", false
	}
	lower := strings.ToLower(title)
	for _, s := range ps.substrings {
		if strings.Contains(lower, s) {
			return s, true
		}
	}
	for _, re := range ps.regexps {
		if re.MatchString(title) {
			return RegexPrefix + re.String()[len("(?i)"):], true
		}
	}
	return "", false
}

// Patterns returns the patterns as configured.
func (ps *PatternSet) Patterns() []string {
	if ps == nil {
		return nil
	}
	out := make([]string, len(ps.raw))
	copy(out, ps.raw)
	return out
}

// Len returns the number of patterns in the set.
func (ps *PatternSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.raw)
}
