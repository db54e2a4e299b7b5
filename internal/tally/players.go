// Package tally counts ATD wins from a results channel's history: how often
// each player appears on a winning roster, and how many drafts each drafter
// has won.
package tally

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hunterjsb/draftbot/internal/draft"
)

var (
	// Winning rosters list players beside their season, so only lines with a
	// year are read.
	yearPattern = regexp.MustCompile(`\d{4}`)
	namePattern = regexp.MustCompile(`\b[A-Z][a-zA-Z'’.]+(?: [A-Z][a-zA-Z'’.]+)+\b`)

	apostrophes = strings.NewReplacer("’", "'", "`", "'", "´", "'")
)

// Count is one row of a results table.
type Count struct {
	Name string
	Wins int
	// ATDs holds the draft numbers a drafter won, ascending. Empty for players.
	ATDs []int
}

// counter keeps first-seen order so ties sort the way they were read.
type counter struct {
	order []string
	rows  map[string]*Count
}

func newCounter() *counter {
	return &counter{rows: make(map[string]*Count)}
}

func (c *counter) add(key, name string) *Count {
	row, ok := c.rows[key]
	if !ok {
		row = &Count{Name: name}
		c.rows[key] = row
		c.order = append(c.order, key)
	}
	row.Wins++
	return row
}

func (c *counter) sorted() []Count {
	out := make([]Count, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.rows[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Wins > out[j].Wins })
	return out
}

// PlayerWins counts two- and three-word capitalized names on every dated line
// of posts. Names that normalize onto a roster entry in idx take the roster's
// spelling. idx may be nil.
func PlayerWins(posts []string, idx *draft.Index) []Count {
	c := newCounter()
	for _, post := range posts {
		for _, line := range strings.Split(post, "\n") {
			if !yearPattern.MatchString(line) {
				continue
			}
			for _, name := range namePattern.FindAllString(line, -1) {
				if n := len(strings.Fields(name)); n < 2 || n > 3 {
					continue
				}
				key := draft.Normalize(name)
				display := titleName(name)
				if cand, ok := idx.Lookup(key); ok {
					display = cand.DisplayName
				}
				c.add(key, display)
			}
		}
	}
	return c.sorted()
}

// titleName lowercases name and capitalizes words longer than two letters, so
// "LEBRON JAMES" and "Lebron James" count together.
func titleName(name string) string {
	words := strings.Fields(strings.ToLower(apostrophes.Replace(name)))
	for i, w := range words {
		if len([]rune(w)) > 2 {
			r := []rune(w)
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}

// PlayerRows renders counts as a sheet table with a header row.
func PlayerRows(counts []Count) [][]interface{} {
	rows := [][]interface{}{{"Player", "Wins"}}
	for _, c := range counts {
		rows = append(rows, []interface{}{c.Name, c.Wins})
	}
	return rows
}
