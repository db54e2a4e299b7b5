package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// messageChat answers a pick message in its channel.
type messageChat struct {
	session *discordgo.Session
	message *discordgo.Message
	logger  *zap.Logger
}

func (c *messageChat) React(ctx context.Context, symbol string) error {
	return c.session.MessageReactionAdd(c.message.ChannelID, c.message.ID, symbol, discordgo.WithContext(ctx))
}

func (c *messageChat) Reply(ctx context.Context, text string) error {
	_, err := c.session.ChannelMessageSendReply(c.message.ChannelID, text, c.message.Reference(), discordgo.WithContext(ctx))
	return err
}

func (c *messageChat) ReplyTransient(ctx context.Context, text string, ttl time.Duration) error {
	sent, err := c.session.ChannelMessageSendReply(c.message.ChannelID, text, c.message.Reference(), discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	time.AfterFunc(ttl, func() {
		if err := c.session.ChannelMessageDelete(sent.ChannelID, sent.ID); err != nil {
			c.logger.Debug("could not delete transient reply", zap.String("message", sent.ID), zap.Error(err))
		}
	})
	return nil
}

// interactionChat answers a deferred slash command by editing its response.
type interactionChat struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	logger      *zap.Logger
}

func (c *interactionChat) React(ctx context.Context, symbol string) error {
	return c.edit(ctx, symbol, 0x2ecc71)
}

func (c *interactionChat) Reply(ctx context.Context, text string) error {
	return c.edit(ctx, text, 0x2659d9)
}

func (c *interactionChat) ReplyTransient(ctx context.Context, text string, ttl time.Duration) error {
	if err := c.edit(ctx, text, 0xff0000); err != nil {
		return err
	}
	time.AfterFunc(ttl, func() {
		if err := c.session.InteractionResponseDelete(c.interaction); err != nil {
			c.logger.Debug("could not delete transient response", zap.Error(err))
		}
	})
	return nil
}

func (c *interactionChat) edit(ctx context.Context, text string, color int) error {
	embed := &discordgo.MessageEmbed{
		Description: text,
		Color:       color,
	}
	_, err := c.session.InteractionResponseEdit(c.interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	return err
}
