package search

import (
	"regexp"
	"strings"

	"outswap/internal/models"
)

const (
	scoreTitleExact  = 100
	scoreTitlePrefix = 50
	scoreTitleSubstr = 30
	scoreTagExact    = 40
	scoreTagSubstr   = 20
	scoreDescWord    = 5
)

// Term is a normalized free-text query.
type Term struct {
	text string
	word *regexp.Regexp
}

// NewTerm lowercases and trims the query. It returns nil for a blank query.
func NewTerm(query string) *Term {
	text := strings.ToLower(strings.TrimSpace(query))
	if text == "" {
		return nil
	}
	return &Term{
		text: text,
		word: regexp.MustCompile(`(?i)` + WordPattern(text)),
	}
}

func (t *Term) String() string { return t.text }

// WordPattern matches text as a whole word. The edges are non-word runes or
// the ends of the input, so queries like "c++" still match.
func WordPattern(text string) string {
	return `(^|\W)` + regexp.QuoteMeta(text) + `(\W|$)`
}

// Matches reports whether the outfit satisfies the free-text predicate:
// substring of the title, substring of any tag or whole word in the description.
func (t *Term) Matches(o models.Outfit) bool {
	if strings.Contains(strings.ToLower(o.Title), t.text) {
		return true
	}
	for _, tag := range o.StyleTags {
		if strings.Contains(strings.ToLower(tag), t.text) {
			return true
		}
	}
	return t.word.MatchString(o.Description)
}

// Score ranks an outfit against the term. Title and tag tiers are each
// exclusive and independent of each other.
func (t *Term) Score(o models.Outfit) int {
	score := 0

	title := strings.ToLower(o.Title)
	switch {
	case title == t.text:
		score += scoreTitleExact
	case strings.HasPrefix(title, t.text):
		score += scoreTitlePrefix
	case strings.Contains(title, t.text):
		score += scoreTitleSubstr
	}

	exactTag, partialTag := false, false
	for _, tag := range o.StyleTags {
		tag = strings.ToLower(tag)
		if tag == t.text {
			exactTag = true
			break
		}
		if strings.Contains(tag, t.text) {
			partialTag = true
		}
	}
	if exactTag {
		score += scoreTagExact
	} else if partialTag {
		score += scoreTagSubstr
	}

	if t.word.MatchString(o.Description) {
		score += scoreDescWord
	}
	return score
}

// Score is a convenience wrapper for one-off scoring.
func Score(o models.Outfit, query string) int {
	t := NewTerm(query)
	if t == nil {
		return 0
	}
	return t.Score(o)
}
