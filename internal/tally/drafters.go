package tally

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	dashes         = strings.NewReplacer("–", "-", "—", "-")
	atdPattern     = regexp.MustCompile(`(?i)#+\s*ATD\s*(\d+)`)
	skipPattern    = regexp.MustCompile(`(?i)cancelled|nfl`)
	winnerPattern  = regexp.MustCompile(`(?i)Winner\s*[-:]*\s*(.*?)(?:\n|$)`)
	mentionPattern = regexp.MustCompile(`<@!?(\d+)>|@([\w .'\-#]+)`)
)

// ResolveUser turns a mentioned user ID into a display name.
type ResolveUser func(ctx context.Context, userID string) string

// Skipped is a draft block that was read but credited to nobody.
type Skipped struct {
	ATD    int
	Reason string
}

// DrafterWins credits every drafter named on a block's Winner line. A post may
// hold several blocks, each opened by a "## ATD <n>" heading. Cancelled and
// NFL drafts are ignored.
func DrafterWins(ctx context.Context, posts []string, resolve ResolveUser) ([]Count, []Skipped) {
	c := newCounter()
	var skipped []Skipped
	for _, post := range posts {
		for _, block := range splitBlocks(dashes.Replace(post)) {
			m := atdPattern.FindStringSubmatch(block)
			if m == nil {
				continue
			}
			atd, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if skipPattern.MatchString(block) {
				continue
			}

			w := winnerPattern.FindStringSubmatch(block)
			if w == nil {
				skipped = append(skipped, Skipped{ATD: atd, Reason: "no winner line"})
				continue
			}
			mentions := mentionPattern.FindAllStringSubmatch(strings.TrimSpace(w[1]), -1)
			if len(mentions) == 0 {
				skipped = append(skipped, Skipped{ATD: atd, Reason: "no winners named"})
				continue
			}

			for _, mention := range mentions {
				name := strings.TrimSpace(mention[2])
				if id := mention[1]; id != "" {
					name = resolve(ctx, id)
				}
				row := c.add(name, name)
				row.ATDs = append(row.ATDs, atd)
			}
		}
	}

	out := c.sorted()
	for i := range out {
		sort.Ints(out[i].ATDs)
	}
	return out, skipped
}

// splitBlocks cuts text before every ATD heading. Text ahead of the first
// heading comes back as its own block.
func splitBlocks(text string) []string {
	locs := atdPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	blocks := make([]string, 0, len(locs)+1)
	if locs[0][0] > 0 {
		blocks = append(blocks, text[:locs[0][0]])
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, strings.TrimSpace(text[loc[0]:end]))
	}
	return blocks
}

// FallbackName is how an unresolvable mention is credited.
func FallbackName(userID string) string {
	return "User_" + userID
}

// DrafterRows renders counts as a sheet table with a header row.
func DrafterRows(counts []Count) [][]interface{} {
	rows := [][]interface{}{{"Drafters", "Wins", "ATD"}}
	for _, c := range counts {
		atds := make([]string, len(c.ATDs))
		for i, n := range c.ATDs {
			atds[i] = fmt.Sprintf("ATD %d", n)
		}
		rows = append(rows, []interface{}{c.Name, c.Wins, strings.Join(atds, ", ")})
	}
	return rows
}
