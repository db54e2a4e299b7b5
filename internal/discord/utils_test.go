package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestParsePrefixCommand(t *testing.T) {
	tests := []struct {
		content  string
		prefix   string
		wantName string
		wantArg  string
		wantOK   bool
	}{
		{content: "!undo", prefix: "!", wantName: "undo", wantOK: true},
		{content: "  !DraftReset  ", prefix: "!", wantName: "draftreset", wantOK: true},
		{content: "!force 12. LeBron James", prefix: "!", wantName: "force", wantArg: "12. LeBron James", wantOK: true},
		{content: "!color   #ff0000 ", prefix: "!", wantName: "color", wantArg: "#ff0000", wantOK: true},
		{content: "$status", prefix: "$", wantName: "status", wantOK: true},
		{content: "!", prefix: "!", wantOK: false},
		{content: "lebron james", prefix: "!", wantOK: false},
		{content: "!undo", prefix: "", wantOK: false},
	}

	for _, tt := range tests {
		name, arg, ok := parsePrefixCommand(tt.content, tt.prefix)
		assert.Equal(t, tt.wantOK, ok, "content %q", tt.content)
		assert.Equal(t, tt.wantName, name, "content %q", tt.content)
		assert.Equal(t, tt.wantArg, arg, "content %q", tt.content)
	}
}

func TestOptionString(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
		{Name: "hex", Type: discordgo.ApplicationCommandOptionString, Value: "#00ff00"},
	}

	assert.Equal(t, "#00ff00", optionString(opts, "player", "hex"))
	assert.Equal(t, "", optionString(opts, "player"))
	assert.Equal(t, "", optionString(nil, "hex"))
}

func TestAuthorID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "member-1"}},
	}}
	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "user-2"},
	}}

	assert.Equal(t, "member-1", authorID(guild))
	assert.Equal(t, "user-2", authorID(dm))
	assert.Equal(t, "", authorID(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}
