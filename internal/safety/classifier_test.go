package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_ForbiddenEditorTitles(t *testing.T) {
	c := DefaultClassifier()
	titles := []string{
		"main.py - MyProject - Visual Studio Code",
		"DatingApp (Demo) - VISUAL STUDIO CODE",
		"vscode",
		"server.js - api",
		"GitHub Copilot Chat",
		"dejtingapp workspace",
	}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			assert.True(t, c.IsForbidden(title))
			assert.False(t, c.IsCandidateTarget(title), "forbidden title must never be a target")
			assert.Equal(t, VerdictForbidden, c.Classify(title).Verdict)
		})
	}
}

func TestClassifier_CandidateTargets(t *testing.T) {
	c := DefaultClassifier()
	titles := []string{
		"DatingApp (Demo)",
		"datingapp",
		"DejtingApp - Login",
		"My Flutter App",
		"Dating App Demo",
	}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			assert.False(t, c.IsForbidden(title))
			assert.True(t, c.IsCandidateTarget(title))
			cl := c.Classify(title)
			assert.Equal(t, VerdictTarget, cl.Verdict)
			assert.NotEmpty(t, cl.Pattern)
		})
	}
}

func TestClassifier_AmbiguousTitlesAreIgnored(t *testing.T) {
	c := DefaultClassifier()
	for _, title := range []string{"", "Terminal", "Firefox", "Files - Home"} {
		assert.False(t, c.IsCandidateTarget(title), title)
		assert.Equal(t, VerdictIgnored, c.Classify(title).Verdict, title)
	}
}

func TestClassifier_DenyBeatsAllowForEveryPair(t *testing.T) {
	c := DefaultClassifier()
	for _, deny := range DefaultDenyPatterns {
		for _, allow := range DefaultAllowPatterns {
			title := allow + " | " + deny
			assert.False(t, c.IsCandidateTarget(title), title)
		}
	}
}

func TestPatternSet_Regex(t *testing.T) {
	ps, err := NewPatternSet([]string{"re:^dating.*\\(demo\\)$", "  "})
	require.NoError(t, err)
	assert.Equal(t, 1, ps.Len())

	p, ok := ps.Match("DatingApp (Demo)")
	assert.True(t, ok)
	assert.Equal(t, "re:^dating.*\\(demo\\)$", p)

	_, ok = ps.Match("Old DatingApp (Demo)")
	assert.False(t, ok)
}

func TestPatternSet_InvalidRegex(t *testing.T) {
	_, err := NewPatternSet([]string{"re:([a-"})
	assert.Error(t, err)
}

func TestPatternSet_NilIsEmpty(t *testing.T) {
	var ps *PatternSet
	_, ok := ps.Match("anything")
	assert.False(t, ok)
	assert.Zero(t, ps.Len())
	assert.Nil(t, ps.Patterns())
}
