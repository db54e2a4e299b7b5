package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/cache"
	"github.com/hunterjsb/draftbot/internal/config"
	"github.com/hunterjsb/draftbot/internal/engine"
)

const (
	slashPrefix   = "draft"
	whoisCommand  = "whois"
	openAttempts  = 5
	maxOpenDelay  = 30 * time.Second
	handleTimeout = 30 * time.Second
	whoisTTL      = time.Hour
	purgeInterval = 10 * time.Minute
)

// NewSession creates a Discord session with the intents the bot reads messages with.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	return session, nil
}

// NewDiscordBot creates a new Discord bot on an existing session
func NewDiscordBot(session *discordgo.Session, cfg *config.Config, eng *engine.Engine, disp *engine.Dispatcher, logger *zap.Logger) *DiscordBot {
	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &DiscordBot{
		Session:         session,
		Config:          cfg,
		Engine:          eng,
		Dispatcher:      disp,
		GuildID:         cfg.GuildID,
		CommandHandlers: make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)),
		logger:          logger,
		queues:          newQueues(),
		whois:           cache.New[string, string](whoisTTL),
	}
	if cfg.OpenAIToken != "" {
		bot.OpenAI = NewOpenAIClient(cfg.OpenAIToken, cfg.MaxTokens, cfg.Temperature)
	}

	for _, cmd := range eng.Commands() {
		bot.CommandHandlers[slashPrefix+cmd.Name] = bot.handleSlashCommand
	}
	if bot.OpenAI != nil {
		bot.CommandHandlers[whoisCommand] = bot.handleWhoisCommand
	}

	return bot
}

// Start starts the Discord bot
func (b *DiscordBot) Start() error {
	user, err := b.Session.User("@me")
	if err != nil {
		return fmt.Errorf("error getting bot user: %w", err)
	}
	b.BotUserID = user.ID

	b.Session.AddHandler(b.interactionHandler)
	b.Session.AddHandler(b.messageCreate)
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("connected to gateway",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
		if b.OnReady != nil {
			b.OnReady()
		}
	})

	if err := b.open(); err != nil {
		return err
	}

	registeredCommands, err := b.registerCommands()
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	b.Commands = registeredCommands
	b.stopJanitor = b.whois.StartJanitor(purgeInterval)

	b.logger.Info("bot is running",
		zap.Int("commands", len(registeredCommands)),
		zap.Strings("channels", b.Engine.ContextIDs()))
	return nil
}

// open connects the websocket, backing off between failed attempts.
func (b *DiscordBot) open() error {
	delay := time.Second
	var err error
	for attempt := 1; attempt <= openAttempts; attempt++ {
		if err = b.Session.Open(); err == nil {
			return nil
		}
		b.logger.Warn("gateway connect failed",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		if attempt == openAttempts {
			break
		}
		time.Sleep(delay)
		delay *= 2
		if delay > maxOpenDelay {
			delay = maxOpenDelay
		}
	}
	return fmt.Errorf("error opening Discord session: %w", err)
}

// Stop removes the registered commands, drains pending work and closes the session.
func (b *DiscordBot) Stop() error {
	b.logger.Info("removing commands", zap.Int("count", len(b.Commands)))
	for _, cmd := range b.Commands {
		err := b.Session.ApplicationCommandDelete(b.Session.State.User.ID, b.GuildID, cmd.ID)
		if err != nil {
			b.logger.Warn("error removing command", zap.String("command", cmd.Name), zap.Error(err))
		}
	}

	b.queues.close()
	if b.stopJanitor != nil {
		b.stopJanitor()
	}
	return b.Session.Close()
}

// registerCommands registers the defined slash commands
func (b *DiscordBot) registerCommands() ([]*discordgo.ApplicationCommand, error) {
	defs := b.commandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, len(defs))

	for i, cmd := range defs {
		registered, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, b.GuildID, cmd)
		if err != nil {
			return nil, fmt.Errorf("error creating command '%s': %w", cmd.Name, err)
		}
		registeredCommands[i] = registered
	}

	return registeredCommands, nil
}

// commandDefinitions mirrors the engine's command registry as slash commands.
func (b *DiscordBot) commandDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range b.Engine.Commands() {
		def := &discordgo.ApplicationCommand{
			Name:        slashPrefix + cmd.Name,
			Description: cmd.Description,
		}
		switch cmd.Name {
		case "force":
			def.Options = []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "player",
				Description: "Exact player name as written on the sheet",
				Required:    true,
			}}
		case "color":
			def.Options = []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "hex",
				Description: "Highlight color, e.g. #2659d9",
				Required:    true,
			}}
		}
		defs = append(defs, def)
	}

	if b.OpenAI != nil {
		defs = append(defs, &discordgo.ApplicationCommand{
			Name:        whoisCommand,
			Description: "Scouting blurb for a player on this channel's board",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "player",
					Description: "Player name, nicknames and typos welcome",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "season",
					Description: "Season to scout, e.g. 2005-06",
				},
			},
		})
	}
	if b.sheets != nil {
		defs = append(defs, tallyDefinitions()...)
	}
	return defs
}

// interactionHandler handles Discord interaction events
func (b *DiscordBot) interactionHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type == discordgo.InteractionApplicationCommand {
		commandName := i.ApplicationCommandData().Name

		if handler, ok := b.CommandHandlers[commandName]; ok {
			handler(s, i)
		}
	}
}

// handleSlashCommand runs an engine command from a /draft* interaction on the
// channel's queue so it is ordered with pick messages.
func (b *DiscordBot) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	name := strings.TrimPrefix(data.Name, slashPrefix)
	arg := optionString(data.Options, "player", "hex")

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		b.logger.Warn("error deferring response", zap.String("command", data.Name), zap.Error(err))
		return
	}

	ok := b.queues.submit(i.ChannelID, func() {
		ctx, cancel := context.WithTimeout(withGuild(context.Background(), i.GuildID), handleTimeout)
		defer cancel()

		a := b.Engine.OnCommand(ctx, i.ChannelID, authorID(i), name, arg)
		if a.Kind == engine.ActionNone {
			b.sendError(s, i, "Unknown command", "That command is not available here.")
			return
		}
		chat := &interactionChat{session: s, interaction: i.Interaction, logger: b.logger}
		if err := b.Dispatcher.Dispatch(ctx, a, chat); err != nil {
			b.logger.Warn("command dispatch failed", zap.String("command", data.Name), zap.Error(err))
		}
	})
	if !ok {
		b.sendError(s, i, "Shutting down", "The bot is restarting. Try again in a moment.")
	}
}

// sendError sends an error embed
func (b *DiscordBot) sendError(s *discordgo.Session, i *discordgo.InteractionCreate, title, description string) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       0xff0000,
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}); err != nil {
		b.logger.Warn("error editing error response", zap.Error(err))
	}
}
