package draft

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// <:name:123>, <a:name:123>, <@123>, <@!123>, <@&123>, <#123>, </cmd:123>, <t:1700000000:R>
	platformTokenRE = regexp.MustCompile(`<(?:a?:[^:\s>]+:\d+|[@#][!&]?\d+|/[^:>\s]+:\d+|t:\d+(?::[A-Za-z])?)>`)
	urlRE           = regexp.MustCompile(`https?://\S+`)
	parentheticalRE = regexp.MustCompile(`\([^()]*\)`)
	numericRE       = regexp.MustCompile(`[$€£]?\d+(?:[.,]\d+)?`)
	nonLetterRE     = regexp.MustCompile(`[^A-Za-z\s]+`)
	leadingPickRE   = regexp.MustCompile(`^\s*(\d+)\s*[.):\-]?`)
)

// Normalize reduces chat text to its canonical matching form: lowercase ASCII
// letters separated by single spaces. It never fails; input that is entirely
// noise normalizes to the empty string.
func Normalize(raw string) string {
	s := platformTokenRE.ReplaceAllString(raw, " ")
	s = urlRE.ReplaceAllString(s, " ")
	s = stripInvisible(s)
	s = foldDiacritics(s)
	s = dropApostrophes(s)
	s = parentheticalRE.ReplaceAllString(s, " ")
	s = numericRE.ReplaceAllString(s, " ")
	s = nonLetterRE.ReplaceAllString(s, " ")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ExtractLeadingOrdinal returns the pick number a drafter typed in front of the
// name ("65. lebron", "12) curry", "3 - jokic").
func ExtractLeadingOrdinal(raw string) (int, bool) {
	m := leadingPickRE.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x200B && r <= 0x200F, // zero-width space/joiners, LRM/RLM
			r >= 0x202A && r <= 0x202E, // bidi embeddings and overrides
			r >= 0x2060 && r <= 0x2064,
			r >= 0x2066 && r <= 0x2069, // bidi isolates
			r == 0xFEFF:
			return -1
		}
		return r
	}, s)
}

func foldDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// "O'Neal" and "ONeal" should produce the same key, so apostrophes vanish
// instead of becoming word breaks.
func dropApostrophes(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '\u2018', '\u2019', '\u02BC', '`', '\u00B4':
			return -1
		}
		return r
	}, s)
}
