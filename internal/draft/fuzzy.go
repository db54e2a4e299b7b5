package draft

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Ratio scores two strings 0-100 by edit distance relative to the longer one.
func Ratio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	d := fuzzy.LevenshteinDistance(a, b)
	score := 100 * (1 - float64(d)/float64(longest))
	if score < 0 {
		return 0
	}
	return score
}

// TokenSortRatio compares the two strings with their words sorted, so word
// order does not matter ("james lebron" == "lebron james").
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared words and the leftovers of each side. When
// one side's words are a subset of the other's the score is 100.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for w := range setA {
		if _, ok := setB[w]; ok {
			common = append(common, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range setB {
		if _, ok := setA[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	if sect != "" && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		if r := Ratio(sect, combinedA); r > best {
			best = r
		}
		if r := Ratio(sect, combinedB); r > best {
			best = r
		}
	}
	return best
}

func sortedTokens(s string) string {
	words := strings.Fields(s)
	sort.Strings(words)
	return strings.Join(words, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
