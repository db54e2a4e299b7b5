package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/cache"
	"github.com/hunterjsb/draftbot/internal/config"
	"github.com/hunterjsb/draftbot/internal/engine"
	"github.com/hunterjsb/draftbot/internal/sheets"
)

// DiscordBot represents the draft bot's Discord connection
type DiscordBot struct {
	Session         *discordgo.Session
	Config          *config.Config
	Engine          *engine.Engine
	Dispatcher      *engine.Dispatcher
	OpenAI          *OpenAIClient
	BotUserID       string
	GuildID         string
	Commands        []*discordgo.ApplicationCommand
	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	// OnReady runs after every gateway READY, including reconnects.
	OnReady func()

	logger *zap.Logger
	queues *queues
	whois  *cache.TTL[string, string]
	sheets *sheets.Client

	stopJanitor func()
}

// OpenAIClient wraps the OpenAI API client
type OpenAIClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}
