package tally

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterjsb/draftbot/internal/draft"
)

func TestPlayerWins(t *testing.T) {
	posts := []string{
		"ATD 4 winning team\n2012 LeBron James\n2005-06 Kobe Bryant\nShoutout Kevin Durant for hosting",
		"1996 Michael Jordan, 2005 KOBE BRYANT\n2016 Steph Curry",
		"2009 Lebron James / 2003 Amar’e Stoudemire / 1988 Magic Johnson Jr Smith Extra",
	}
	idx := draft.BuildIndex([]string{"Player", "LeBron James", "Stephen Curry"})

	got := PlayerWins(posts, idx)

	wins := map[string]int{}
	for _, c := range got {
		wins[c.Name] = c.Wins
	}
	assert.Equal(t, 2, wins["LeBron James"], "roster spelling wins")
	assert.Equal(t, 2, wins["Kobe Bryant"])
	assert.Equal(t, 1, wins["Michael Jordan"])
	assert.Equal(t, 1, wins["Steph Curry"], "nicknames are not merged")
	assert.Equal(t, 1, wins["Amar'e Stoudemire"])
	assert.NotContains(t, wins, "Kevin Durant", "undated lines are skipped")
	assert.NotContains(t, wins, "Magic Johnson Jr Smith Extra", "long runs are not names")

	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "LeBron James", got[0].Name, "ties keep first-seen order")
	assert.Equal(t, "Kobe Bryant", got[1].Name)
}

func TestTitleName(t *testing.T) {
	tests := map[string]string{
		"LEBRON JAMES":      "Lebron James",
		"Amar’e Stoudemire": "Amar'e Stoudemire",
		"De Andre Jordan":   "de Andre Jordan",
	}
	for in, want := range tests {
		if got := titleName(in); got != want {
			t.Errorf("titleName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDrafterWins(t *testing.T) {
	posts := []string{
		"## ATD 12\nTheme: 90s\nWinner — <@111>\n\n## ATD 3\nWinner: @hoopsguru",
		"# ATD 7 (cancelled)\nWinner: <@111>",
		"### ATD 9\nWinners: <@!111> and <@222>",
		"## ATD 10\nNo vote this time",
		"## ATD 11\nWinner: tbd",
		"## ATD 2 NFL edition\nWinner: <@222>",
		"general chatter without a heading",
	}
	names := map[string]string{"111": "hunter"}
	resolve := func(_ context.Context, id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return FallbackName(id)
	}

	got, skipped := DrafterWins(context.Background(), posts, resolve)

	require.Len(t, got, 3)
	assert.Equal(t, Count{Name: "hunter", Wins: 2, ATDs: []int{9, 12}}, got[0])
	assert.Equal(t, Count{Name: "hoopsguru", Wins: 1, ATDs: []int{3}}, got[1])
	assert.Equal(t, Count{Name: "User_222", Wins: 1, ATDs: []int{9}}, got[2])

	assert.Equal(t, []Skipped{
		{ATD: 10, Reason: "no winner line"},
		{ATD: 11, Reason: "no winners named"},
	}, skipped)
}

func TestSplitBlocks(t *testing.T) {
	blocks := splitBlocks("intro\n## ATD 1\nWinner: @a\n##ATD 2\nWinner: @b")
	assert.Equal(t, []string{"intro\n", "## ATD 1\nWinner: @a", "##ATD 2\nWinner: @b"}, blocks)
	assert.Equal(t, []string{"no headings"}, splitBlocks("no headings"))
}

func TestRows(t *testing.T) {
	players := PlayerRows([]Count{{Name: "LeBron James", Wins: 3}})
	assert.Equal(t, [][]interface{}{{"Player", "Wins"}, {"LeBron James", 3}}, players)

	drafters := DrafterRows([]Count{{Name: "hunter", Wins: 2, ATDs: []int{3, 12}}, {Name: "x", Wins: 1}})
	assert.Equal(t, [][]interface{}{
		{"Drafters", "Wins", "ATD"},
		{"hunter", 2, "ATD 3, ATD 12"},
		{"x", 1, ""},
	}, drafters)
}
