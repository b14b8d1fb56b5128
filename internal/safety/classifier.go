package safety

// Verdict is the classification of a single window title.
type Verdict string

const (
	VerdictForbidden Verdict = "forbidden"
	VerdictTarget    Verdict = "target"
	VerdictIgnored   Verdict = "ignored"
)

// Classification explains a Verdict.
type Classification struct {
	Title   string  `yaml:"title"             json:"title"`
	Verdict Verdict `yaml:"verdict"           json:"verdict"`
	Pattern string  `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// Classifier applies deny and allow patterns to window titles.
type Classifier struct {
	Deny  *PatternSet
	Allow *PatternSet
}

// NewClassifier compiles deny and allow pattern lists.
func NewClassifier(deny, allow []string) (*Classifier, error) {
	d, err := NewPatternSet(deny)
	if err != nil {
		return nil, err
	}
	a, err := NewPatternSet(allow)
	if err != nil {
		return nil, err
	}
	return &Classifier{Deny: d, Allow: a}, nil
}

// DefaultClassifier uses DefaultDenyPatterns and DefaultAllowPatterns.
func DefaultClassifier() *Classifier {
	return &Classifier{
		Deny:  MustPatternSet(DefaultDenyPatterns),
		Allow: MustPatternSet(DefaultAllowPatterns),
	}
}

// IsForbidden reports whether title matches any deny pattern.
func (c *Classifier) IsForbidden(title string) bool {
	_, ok := c.Deny.Match(title)
	return ok
}

// IsCandidateTarget reports whether title is not forbidden and matches an
// allow pattern. Ambiguous titles are not targets.
func (c *Classifier) IsCandidateTarget(title string) bool {
	if c.IsForbidden(title) {
		return false
	}
	_, ok := c.Allow.Match(title)
	return ok
}

// Classify returns the verdict for title together with the pattern that
// decided it.
func (c *Classifier) Classify(title string) Classification {
	if p, ok := c.Deny.Match(title); ok {
		return Classification{Title: title, Verdict: VerdictForbidden, Pattern: p}
	}
	if p, ok := c.Allow.Match(title); ok {
		return Classification{Title: title, Verdict: VerdictTarget, Pattern: p}
	}
	return Classification{Title: title, Verdict: VerdictIgnored}
}
