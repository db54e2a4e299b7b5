package discord

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/draft"
	"github.com/hunterjsb/draftbot/internal/engine"
)

// handleWhoisCommand resolves a name with the draft matcher and asks the LLM
// for a short scouting note.
func (b *DiscordBot) handleWhoisCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	query, season := splitSeason(optionString(options, "player"))
	if v := strings.TrimSpace(optionString(options, "season")); v != "" {
		season = v
	}
	log := b.logger.Named("whois")

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Warn("error deferring response", zap.Error(err))
		return
	}

	contextID, res, ok := resolvePlayer(b.Engine, i.ChannelID, query)
	if !ok {
		log.Debug("no match", zap.String("query", query), zap.String("normalized", draft.Normalize(query)))
		b.sendError(s, i, "No match", fmt.Sprintf("Could not find a player matching %q.", query))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	blurb, err := b.scout(ctx, res.Candidate.DisplayName, season)
	if err != nil {
		log.Warn("scouting request failed", zap.String("player", res.Candidate.DisplayName), zap.Error(err))
		b.sendError(s, i, "Scouting unavailable", "Could not reach the scouting service right now.")
		return
	}
	log.Debug("scouting note ready",
		zap.String("player", res.Candidate.DisplayName),
		zap.String("season", season),
		zap.Int("cached", b.whois.Len()))

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{whoisEmbed(b.Engine, contextID, res, season, blurb)},
	}); err != nil {
		log.Warn("error editing response", zap.Error(err))
	}
}

// resolvePlayer tries the current channel's board first, then every other
// tracked board in configuration order.
func resolvePlayer(eng *engine.Engine, channelID, query string) (string, draft.Result, bool) {
	if res, ok := eng.Resolve(channelID, query); ok {
		return channelID, res, true
	}
	for _, id := range eng.ContextIDs() {
		if id == channelID {
			continue
		}
		if res, ok := eng.Resolve(id, query); ok {
			return id, res, true
		}
	}
	return "", draft.Result{}, false
}

// seasonPattern matches a year or a season range such as 2005-06 or 1995/1996.
var seasonPattern = regexp.MustCompile(`\b(?:19|20)\d{2}(?:\s*[-–—/]\s*(?:\d{4}|\d{2}))?\b`)

// splitSeason pulls a season out of a query like "Kobe 2005-06".
func splitSeason(query string) (name, season string) {
	loc := seasonPattern.FindStringIndex(query)
	if loc == nil {
		return strings.TrimSpace(query), ""
	}
	season = strings.Join(strings.Fields(query[loc[0]:loc[1]]), "")
	name = strings.Join(strings.Fields(query[:loc[0]]+" "+query[loc[1]:]), " ")
	return name, season
}

func scoutPrompt(player, season string) string {
	if season == "" {
		return fmt.Sprintf("In two sentences, give a fantasy basketball scouting note on %s: role, strengths, and draft risk.", player)
	}
	return fmt.Sprintf("In two sentences, give a fantasy basketball scouting note on %s in the %s season: role, strengths, and draft risk.", player, season)
}

// scout returns a cached blurb or asks OpenAI for a new one. Blurbs are cached
// per player and season.
func (b *DiscordBot) scout(ctx context.Context, player, season string) (string, error) {
	key := player + "|" + season
	if blurb, ok := b.whois.Get(key); ok {
		return blurb, nil
	}
	blurb, err := b.OpenAI.GenerateResponse(ctx, scoutPrompt(player, season))
	if err != nil {
		return "", err
	}
	b.whois.Set(key, blurb)
	return blurb, nil
}

func whoisEmbed(eng *engine.Engine, contextID string, res draft.Result, season, blurb string) *discordgo.MessageEmbed {
	board := contextID
	status := "Available"
	if dc, ok := eng.Context(contextID); ok {
		board = dc.Name
	}
	if rec, ok := eng.Session(contextID).Lookup(res.Candidate.Key); ok {
		status = fmt.Sprintf("Picked %d by <@%s>", rec.Seq, rec.AssignerID)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Board", Value: board, Inline: true},
		{Name: "Status", Value: status, Inline: true},
		{Name: "Match", Value: fmt.Sprintf("%s (%.0f)", res.Kind, res.Confidence), Inline: true},
	}
	if season != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Season", Value: season, Inline: true})
	}

	return &discordgo.MessageEmbed{
		Title:       res.Candidate.DisplayName,
		Description: blurb,
		Color:       0x2659d9,
		Fields:      fields,
	}
}
