package draft

import "strings"

// MatchKind names the strategy that resolved a message.
type MatchKind string

const (
	KindExact   MatchKind = "exact"
	KindDirect  MatchKind = "direct"
	KindSurname MatchKind = "surname"
	KindFuzzy   MatchKind = "fuzzy"
)

// Result is a resolved candidate together with how it was found.
type Result struct {
	Candidate  Candidate
	Confidence float64
	Kind       MatchKind
}

// Thresholds tunes the looser matching stages.
type Thresholds struct {
	// FuzzyHigh accepts a fuzzy score outright.
	FuzzyHigh float64
	// FuzzyLow accepts a fuzzy score only when the candidate's surname is in the text.
	FuzzyLow float64
	// SurnameScore is the confidence reported for unique-surname matches.
	SurnameScore float64
	// MinWords is the fewest content words a message needs unless one of them
	// names a candidate on its own.
	MinWords int
}

// DefaultThresholds returns the values the bots settled on most often.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FuzzyHigh:    85,
		FuzzyLow:     75,
		SurnameScore: 95,
		MinWords:     2,
	}
}

// DefaultStopwords is chatter that shows up in draft channels between picks.
var DefaultStopwords = []string{
	"skip", "pass", "lol", "lmao", "lmfao", "rofl", "haha", "hahaha", "ok", "okay", "k",
	"nice", "gg", "wp", "yes", "yep", "yeah", "no", "nope", "nah", "idk", "wow", "bruh",
	"damn", "lfg", "ty", "thx", "thanks", "nvm", "oops", "hmm", "brb", "rip", "smh",
	"tbh", "imo", "wtf", "omg", "the", "a", "an", "and", "i", "im", "is", "my", "me",
	"pick", "picks", "picking", "take", "taking", "taken", "with", "at", "for", "to",
	"of", "here", "next", "up", "sorry", "mb",
}

// Matcher resolves free text to at most one roster candidate using a fixed
// precedence: exact, direct substring, unique surname, fuzzy.
type Matcher struct {
	thresholds Thresholds
	stopwords  map[string]struct{}
	maxGram    int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThresholds replaces the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(m *Matcher) {
		m.thresholds = t
	}
}

// WithStopwords replaces the stopword set. Words are normalized first.
func WithStopwords(words []string) Option {
	return func(m *Matcher) {
		m.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			if n := Normalize(w); n != "" && !strings.Contains(n, " ") {
				m.stopwords[n] = struct{}{}
			}
		}
	}
}

// NewMatcher builds a Matcher with the default thresholds and stopwords.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		thresholds: DefaultThresholds(),
		maxGram:    3,
	}
	WithStopwords(DefaultStopwords)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Thresholds returns the active thresholds.
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// IsStopword reports whether a normalized token is chatter.
func (m *Matcher) IsStopword(token string) bool {
	_, ok := m.stopwords[token]
	return ok
}

// HasContent reports whether text keeps at least one non-stopword after
// normalization.
func (m *Matcher) HasContent(text string) bool {
	return len(m.contentWords(strings.Fields(Normalize(text)))) > 0
}

// Match resolves text against idx. The boolean is false when nothing matched
// confidently enough; ambiguous input never guesses.
func (m *Matcher) Match(text string, idx *Index) (Result, bool) {
	q := Normalize(text)
	if q == "" || idx.Len() == 0 {
		return Result{}, false
	}

	words := strings.Fields(q)
	content := m.contentWords(words)
	if m.isNoise(q, content, idx) {
		return Result{}, false
	}

	if c, ok := idx.Lookup(q); ok {
		return Result{Candidate: c, Confidence: 100, Kind: KindExact}, true
	}

	if c, ok := directMatch(q, idx); ok {
		return Result{Candidate: c, Confidence: 100, Kind: KindDirect}, true
	}

	for _, w := range words {
		if c, ok := idx.UniqueSurname(w); ok {
			return Result{Candidate: c, Confidence: m.thresholds.SurnameScore, Kind: KindSurname}, true
		}
	}

	return m.fuzzyMatch(words, content, idx)
}

func (m *Matcher) contentWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !m.IsStopword(w) {
			out = append(out, w)
		}
	}
	return out
}

// isNoise rejects stopword-only chatter and short messages that do not name a
// single-token candidate or a unique surname.
func (m *Matcher) isNoise(q string, content []string, idx *Index) bool {
	if len(content) == 0 {
		return true
	}
	if len(content) >= m.thresholds.MinWords {
		return false
	}
	if _, ok := idx.Lookup(q); ok {
		return false
	}
	for _, w := range content {
		if _, ok := idx.Lookup(w); ok {
			return false
		}
		if _, ok := idx.UniqueSurname(w); ok {
			return false
		}
	}
	return true
}

// directMatch finds the first candidate, in roster order, whose key occurs in
// q on word boundaries.
func directMatch(q string, idx *Index) (Candidate, bool) {
	padded := " " + q + " "
	for _, key := range idx.keys {
		if strings.Contains(padded, " "+key+" ") {
			return idx.byKey[key], true
		}
	}
	return Candidate{}, false
}

func (m *Matcher) fuzzyMatch(words, content []string, idx *Index) (Result, bool) {
	phrases := m.phrases(content)

	var (
		best      Candidate
		bestScore float64
		ties      int
	)
	for _, key := range idx.keys {
		score := TokenSetRatio(phrases[0], key)
		for _, p := range phrases[1:] {
			if s := TokenSortRatio(p, key); s > score {
				score = s
			}
		}
		switch {
		case ties == 0 || score > bestScore:
			best, bestScore, ties = idx.byKey[key], score, 1
		case score == bestScore:
			ties++
		}
	}
	// Two candidates scoring the same is ambiguous, not a coin flip.
	if ties != 1 {
		return Result{}, false
	}

	if bestScore >= m.thresholds.FuzzyHigh {
		return Result{Candidate: best, Confidence: bestScore, Kind: KindFuzzy}, true
	}
	if bestScore >= m.thresholds.FuzzyLow && containsWord(words, best.Surname) {
		return Result{Candidate: best, Confidence: bestScore, Kind: KindFuzzy}, true
	}
	return Result{}, false
}

// phrases returns the whole content text followed by its 2..maxGram word windows.
func (m *Matcher) phrases(content []string) []string {
	out := []string{strings.Join(content, " ")}
	for n := 2; n <= m.maxGram; n++ {
		if n >= len(content) {
			break
		}
		for i := 0; i+n <= len(content); i++ {
			out = append(out, strings.Join(content[i:i+n], " "))
		}
	}
	return out
}

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}
