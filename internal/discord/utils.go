package discord

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// SetupCloseHandler creates a handler that will catch SIGINT and SIGTERM signals
// and gracefully close the application
func SetupCloseHandler(logger *zap.Logger, cleanupFunc func() error) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := cleanupFunc(); err != nil {
			logger.Error("error during cleanup", zap.Error(err))
			_ = logger.Sync()
			os.Exit(1)
		}
		_ = logger.Sync()
		os.Exit(0)
	}()
}

// parsePrefixCommand splits "!undo" or "!force 12. LeBron James" into the
// command name and its argument.
func parsePrefixCommand(content, prefix string) (name, arg string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(content[len(prefix):])
	if rest == "" {
		return "", "", false
	}
	name, arg, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

// authorID returns the invoking user for guild and DM interactions alike.
func authorID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// optionString returns the first string option whose name is in names.
func optionString(options []*discordgo.ApplicationCommandInteractionDataOption, names ...string) string {
	for _, opt := range options {
		if opt.Type != discordgo.ApplicationCommandOptionString {
			continue
		}
		for _, n := range names {
			if opt.Name == n {
				return opt.StringValue()
			}
		}
	}
	return ""
}

// optionChannelID returns the ID of the channel option called name.
func optionChannelID(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Type != discordgo.ApplicationCommandOptionChannel || opt.Name != name {
			continue
		}
		if id, ok := opt.Value.(string); ok {
			return id
		}
	}
	return ""
}
