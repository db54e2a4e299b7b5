package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		roster   []string
		text     string
		wantOK   bool
		wantName string
		wantKind MatchKind
		wantConf float64
	}{
		{
			name:     "exact with pick number",
			roster:   []string{"LeBron James", "Kevin Durant"},
			text:     "65. lebron james",
			wantOK:   true,
			wantName: "LeBron James",
			wantKind: KindExact,
			wantConf: 100,
		},
		{
			name:     "unique surname",
			roster:   []string{"LeBron James", "Darius Garland"},
			text:     "Garland",
			wantOK:   true,
			wantName: "Darius Garland",
			wantKind: KindSurname,
			wantConf: 95,
		},
		{
			name:   "shared first name is ambiguous",
			roster: []string{"Jalen Green", "Jalen Brown"},
			text:   "Jalen",
		},
		{
			name:   "stopword only",
			roster: []string{"Skip Bayless", "LeBron James"},
			text:   "skip",
		},
		{
			name:   "chatter",
			roster: []string{"LeBron James", "Kevin Durant"},
			text:   "lol ok gg",
		},
		{
			name:     "direct substring in chatter",
			roster:   []string{"LeBron James", "Kevin Durant"},
			text:     "I'll take Kevin Durant here lol",
			wantOK:   true,
			wantName: "Kevin Durant",
			wantKind: KindDirect,
			wantConf: 100,
		},
		{
			name:     "direct needs whole words",
			roster:   []string{"Ja Morant", "LeBron James"},
			text:     "pajama morant",
			wantOK:   true,
			wantName: "Ja Morant",
			wantKind: KindSurname,
			wantConf: 95,
		},
		{
			name:     "direct ties go to roster order",
			roster:   []string{"Anthony Davis", "Anthony Edwards"},
			text:     "anthony edwards or anthony davis",
			wantOK:   true,
			wantName: "Anthony Davis",
			wantKind: KindDirect,
			wantConf: 100,
		},
		{
			name:     "exact beats near neighbours",
			roster:   []string{"Jaylin Williams", "Jalen Williams"},
			text:     "Jalen Williams",
			wantOK:   true,
			wantName: "Jalen Williams",
			wantKind: KindExact,
			wantConf: 100,
		},
		{
			name:     "fuzzy above high threshold",
			roster:   []string{"LeBron James", "Kevin Durant", "Kevin Love"},
			text:     "kevin durent",
			wantOK:   true,
			wantName: "Kevin Durant",
			wantKind: KindFuzzy,
			wantConf: 91.67,
		},
		{
			name:     "fuzzy in low band with surname present",
			roster:   []string{"Jalen Green", "Draymond Green"},
			text:     "drymn green",
			wantOK:   true,
			wantName: "Draymond Green",
			wantKind: KindFuzzy,
			wantConf: 78.57,
		},
		{
			name:   "fuzzy in low band without surname",
			roster: []string{"LeBron James", "Kevin Durant"},
			text:   "lebron jmaes",
		},
		{
			name:   "first name plus initial",
			roster: []string{"Jalen Green", "Jalen Brown"},
			text:   "jalen g",
		},
		{
			name:   "mentions only",
			roster: []string{"LeBron James"},
			text:   "<@1234> <:fire:99>",
		},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := m.Match(tt.text, BuildIndex(tt.roster))
			require.Equal(t, tt.wantOK, ok, "result %+v", res)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantName, res.Candidate.DisplayName)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.InDelta(t, tt.wantConf, res.Confidence, 0.01)
		})
	}
}

func TestMatcher_SharedSurnameNeverGuesses(t *testing.T) {
	idx := BuildIndex([]string{"Jalen Green", "Draymond Green", "LeBron James"})

	_, ok := NewMatcher().Match("green", idx)
	assert.False(t, ok)

	// Even with the word floor lowered the two Greens tie on the fuzzy stage.
	th := DefaultThresholds()
	th.MinWords = 1
	_, ok = NewMatcher(WithThresholds(th)).Match("green", idx)
	assert.False(t, ok)
}

func TestMatcher_EmptyIndex(t *testing.T) {
	_, ok := NewMatcher().Match("lebron james", BuildIndex(nil))
	assert.False(t, ok)
	_, ok = NewMatcher().Match("lebron james", nil)
	assert.False(t, ok)
}

func TestMatcher_CustomStopwords(t *testing.T) {
	m := NewMatcher(WithStopwords([]string{"Yo", "two words", ""}))
	assert.True(t, m.IsStopword("yo"))
	assert.False(t, m.IsStopword("two words"))
	assert.False(t, m.IsStopword("skip"), "custom list replaces the defaults")
}

func TestMatcher_Deterministic(t *testing.T) {
	idx := BuildIndex([]string{
		"Jalen Green", "Jalen Brown", "Jalen Williams", "Jaylin Williams",
		"Draymond Green", "Danny Green", "Jaden Ivey", "Jalen Duren",
	})
	m := NewMatcher()
	inputs := []string{"jalen wiliams", "jalen", "draymnd green", "green", "jaden ivy", "duren"}

	for _, in := range inputs {
		first, firstOK := m.Match(in, idx)
		for i := 0; i < 20; i++ {
			got, ok := m.Match(in, idx)
			require.Equal(t, firstOK, ok, "input %q", in)
			require.Equal(t, first, got, "input %q", in)
		}
	}
}

func TestMatcher_HasContent(t *testing.T) {
	m := NewMatcher()

	assert.False(t, m.HasContent("lol"))
	assert.False(t, m.HasContent("nice!! 🔥"))
	assert.False(t, m.HasContent("  "))
	assert.False(t, m.HasContent("<@123> ok 42"))
	assert.True(t, m.HasContent("this one"))
	assert.True(t, m.HasContent("durant"))
}
