package safety

import (
	"fmt"
	"strings"
)

// Policy names.
const (
	PolicyStrict     = "strict"
	PolicyPermissive = "permissive"
)

// DefaultMinFallbackTitle is the shortest trimmed title a permissive policy
// accepts as a last-resort target.
const DefaultMinFallbackTitle = 10

// Policy decides which windows may receive synthetic input.
type Policy interface {
	// Name returns the policy identifier ("strict" or "permissive").
	Name() string

	// IsForbidden reports whether the window must never receive input.
	IsForbidden(title string) bool

	// IsCandidateTarget reports whether the window is a legitimate target.
	IsCandidateTarget(title string) bool

	// FallbackCandidate reports whether the window may be used when no
	// candidate target was found after all discovery attempts.
	FallbackCandidate(title string) bool

	// Classify explains the decision for a title.
	Classify(title string) Classification
}

// Strict fails closed: only allow-listed, non-forbidden windows are targets.
type Strict struct {
	*Classifier
}

func (Strict) Name() string { return PolicyStrict }

// FallbackCandidate is always false for the strict policy.
func (Strict) FallbackCandidate(string) bool { return false }

// Permissive behaves like Strict but accepts any non-forbidden window with a
// substantial title once discovery is exhausted. This weakens the safety
// guarantee and must be selected explicitly.
type Permissive struct {
	*Classifier
	MinTitle int
}

func (Permissive) Name() string { return PolicyPermissive }

// FallbackCandidate accepts non-forbidden titles of at least MinTitle runes.
func (p Permissive) FallbackCandidate(title string) bool {
	if p.IsForbidden(title) {
		return false
	}
	min := p.MinTitle
	if min <= 0 {
		min = DefaultMinFallbackTitle
	}
	return len([]rune(strings.TrimSpace(title))) >= min
}

// NewPolicy returns the named policy backed by c. An empty name selects the
// strict policy.
func NewPolicy(name string, c *Classifier, minFallbackTitle int) (Policy, error) {
	if c == nil {
		c = DefaultClassifier()
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyStrict:
		return Strict{Classifier: c}, nil
	case PolicyPermissive:
		return Permissive{Classifier: c, MinTitle: minFallbackTitle}, nil
	default:
		return nil, fmt.Errorf("unknown safety policy: %q (use strict or permissive)", name)
	}
}
