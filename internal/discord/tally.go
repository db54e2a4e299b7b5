package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/engine"
	"github.com/hunterjsb/draftbot/internal/sheets"
	"github.com/hunterjsb/draftbot/internal/tally"
)

const (
	playerWinsCommand  = "playerwins"
	drafterWinsCommand = "drafterwins"
	historyPageSize    = 100
	tallyTimeout       = 5 * time.Minute
)

// EnableTally registers /playerwins and /drafterwins, which rebuild the win
// tables in the configured results sheet. Call it before Start.
func (b *DiscordBot) EnableTally(client *sheets.Client) {
	b.sheets = client
	b.CommandHandlers[playerWinsCommand] = b.handleTallyCommand
	b.CommandHandlers[drafterWinsCommand] = b.handleTallyCommand
}

func tallyDefinitions() []*discordgo.ApplicationCommand {
	channelOption := func(desc string) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  desc,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		}}
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        playerWinsCommand,
			Description: "Recount player appearances on winning ATD rosters",
			Options:     channelOption("Channel with the winning rosters"),
		},
		{
			Name:        drafterWinsCommand,
			Description: "Recount ATD wins per drafter",
			Options:     channelOption("Channel with the ATD results"),
		},
	}
}

func (b *DiscordBot) handleTallyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	log := b.logger.Named("tally").With(zap.String("command", data.Name))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Warn("error deferring response", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(withGuild(context.Background(), i.GuildID), tallyTimeout)
	defer cancel()

	allowed, err := b.Engine.Authorize(ctx, authorID(i))
	if err != nil {
		log.Warn("role lookup failed", zap.Error(err))
	}
	if !allowed {
		b.sendError(s, i, "Not allowed", engine.DenialText)
		return
	}

	cfg := b.Config.Tally
	channelID, tab := cfg.PlayerChannelID, cfg.PlayerTab
	if data.Name == drafterWinsCommand {
		channelID, tab = cfg.ResultsChannelID, cfg.DrafterTab
	}
	if id := optionChannelID(data.Options, "channel"); id != "" {
		channelID = id
	}
	if channelID == "" {
		b.sendError(s, i, "No channel", "Pick a channel or configure one for this count.")
		return
	}

	posts, err := fetchHistory(ctx, s, channelID)
	if err != nil {
		log.Error("reading channel history failed", zap.String("channel", channelID), zap.Error(err))
		b.sendError(s, i, "History unavailable", "Could not read that channel's messages.")
		return
	}

	var (
		rows    [][]interface{}
		summary string
	)
	if data.Name == drafterWinsCommand {
		counts, skipped := tally.DrafterWins(ctx, posts, b.memberName(i.GuildID))
		for _, sk := range skipped {
			log.Warn("ATD not credited", zap.Int("atd", sk.ATD), zap.String("reason", sk.Reason))
		}
		rows = tally.DrafterRows(counts)
		summary = fmt.Sprintf("%d drafters with wins, %d drafts skipped.", len(counts), len(skipped))
	} else {
		counts := tally.PlayerWins(posts, rosterIndex(b.Engine))
		rows = tally.PlayerRows(counts)
		summary = fmt.Sprintf("%d players counted.", len(counts))
	}

	if err := b.writeTally(ctx, tab, rows); err != nil {
		log.Error("writing results failed", zap.String("tab", tab), zap.Error(err))
		b.sendError(s, i, "Sheet update failed", "Could not write the results sheet.")
		return
	}
	log.Info("results written", zap.String("channel", channelID), zap.Int("messages", len(posts)), zap.Int("rows", len(rows)-1))

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{{
			Title:       "Results updated",
			Description: fmt.Sprintf("Read %d messages from <#%s>. %s", len(posts), channelID, summary),
			Color:       0x00ff00,
			Fields:      []*discordgo.MessageEmbedField{{Name: "Tab", Value: tab, Inline: true}},
		}},
	}); err != nil {
		log.Warn("error editing response", zap.Error(err))
	}
}

func (b *DiscordBot) writeTally(ctx context.Context, tab string, rows [][]interface{}) error {
	if b.sheets == nil {
		return fmt.Errorf("no sheets client")
	}
	ws, err := b.sheets.EnsureWorksheet(ctx, b.Config.Tally.SheetID, tab)
	if err != nil {
		return err
	}
	return ws.ReplaceValues(ctx, rows, sheets.HeaderStyle())
}

// fetchHistory returns the text of every non-empty message in the channel,
// oldest first.
func fetchHistory(ctx context.Context, s *discordgo.Session, channelID string) ([]string, error) {
	var (
		posts  []string
		before string
	)
	for {
		page, err := s.ChannelMessages(channelID, historyPageSize, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetching messages before %q: %w", before, err)
		}
		for _, m := range page {
			if m.Content != "" {
				posts = append(posts, m.Content)
			}
		}
		if len(page) < historyPageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	// Pages arrive newest first.
	for l, r := 0, len(posts)-1; l < r; l, r = l+1, r-1 {
		posts[l], posts[r] = posts[r], posts[l]
	}
	return posts, nil
}

// memberName resolves mentions to guild display names, falling back to a
// placeholder when the member has left.
func (b *DiscordBot) memberName(guildID string) tally.ResolveUser {
	return func(ctx context.Context, userID string) string {
		m, err := b.Session.State.Member(guildID, userID)
		if err != nil {
			m, err = b.Session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		}
		if err != nil || m == nil || m.User == nil {
			return tally.FallbackName(userID)
		}
		return m.DisplayName()
	}
}

// rosterIndex merges every board's names so counted players take the sheet's
// spelling.
func rosterIndex(eng *engine.Engine) *draft.Index {
	var names []string
	for _, id := range eng.ContextIDs() {
		dc, ok := eng.Context(id)
		if !ok {
			continue
		}
		for _, c := range dc.Index().Candidates() {
			names = append(names, c.DisplayName)
		}
	}
	return draft.BuildIndex(names)
}
