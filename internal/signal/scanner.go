// Package signal scores job descriptions for AI/automation and offshoring
// exposure by lexical keyword matching.
package signal

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/textclean"
)

// shortKeywordLen is the longest keyword that must match as a whole word.
// Anything longer matches as a plain substring.
const shortKeywordLen = 3

type matcher struct {
	keyword string
	word    *regexp.Regexp // nil for substring keywords
}

func (m matcher) match(text string) bool {
	if m.word != nil {
		return m.word.MatchString(text)
	}
	return strings.Contains(text, m.keyword)
}

// Scanner matches cleaned text against two immutable lexicons. It is safe
// for concurrent use.
type Scanner struct {
	ai         []matcher
	offshoring []matcher
}

// NewScanner compiles the lexicons. Keywords are lower-cased, blank entries
// dropped and duplicates collapsed; the input slices are not retained.
func NewScanner(lex Lexicons) *Scanner {
	return &Scanner{
		ai:         compile(lex.AI),
		offshoring: compile(lex.Offshoring),
	}
}

func compile(keywords []string) []matcher {
	seen := make(map[string]bool, len(keywords))
	out := make([]matcher, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true

		m := matcher{keyword: kw}
		if utf8.RuneCountInString(kw) <= shortKeywordLen {
			// "ai" must not fire inside "said".
			m.word = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
		out = append(out, m)
	}
	return out
}

// Scan cleans the description and reports which lexicon entries it contains.
// Each keyword is counted at most once regardless of repeats.
func (s *Scanner) Scan(description string) model.KeywordSignalReport {
	text := textclean.CleanText(description)

	aiFound := findMatches(text, s.ai)
	offFound := findMatches(text, s.offshoring)

	aiScore := len(aiFound)
	offScore := len(offFound)

	return model.KeywordSignalReport{
		AIKeywordCount:          len(aiFound),
		OffshoringKeywordCount:  len(offFound),
		AIKeywordsFound:         aiFound,
		OffshoringKeywordsFound: offFound,
		AIScore:                 aiScore,
		OffshoringScore:         offScore,
		AISignalLevel:           Bucketize(aiScore),
		OffshoringSignalLevel:   Bucketize(offScore),
	}
}

func findMatches(text string, matchers []matcher) []string {
	found := make([]string, 0)
	if text == "" {
		return found
	}
	for _, m := range matchers {
		if m.match(text) {
			found = append(found, m.keyword)
		}
	}
	return found
}

// Bucketize maps a score to its signal level: 0 none, 1 low, 2-3 medium,
// 4+ high.
func Bucketize(score int) model.SignalLevel {
	switch {
	case score <= 0:
		return model.SignalNone
	case score <= 1:
		return model.SignalLow
	case score <= 3:
		return model.SignalMedium
	default:
		return model.SignalHigh
	}
}
