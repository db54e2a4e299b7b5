package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/hunterjsb/draftbot/internal/engine"
)

// messageCreate queues messages from tracked channels. Everything for one
// channel is handled in arrival order.
func (b *DiscordBot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == b.BotUserID {
		return
	}
	if _, ok := b.Engine.Context(m.ChannelID); !ok {
		return
	}

	if !b.queues.submit(m.ChannelID, func() { b.handleMessage(s, m.Message) }) {
		b.logger.Debug("dropping message during shutdown", zap.String("channel", m.ChannelID))
	}
}

func (b *DiscordBot) handleMessage(s *discordgo.Session, m *discordgo.Message) {
	ctx, cancel := context.WithTimeout(withGuild(context.Background(), m.GuildID), handleTimeout)
	defer cancel()

	chat := &messageChat{session: s, message: m, logger: b.logger}

	var a engine.Action
	if name, arg, ok := parsePrefixCommand(m.Content, b.Config.CommandPrefix); ok {
		if _, known := b.Engine.LookupCommand(name); known {
			a = b.Engine.OnCommand(ctx, m.ChannelID, m.Author.ID, name, arg)
			b.dispatch(ctx, a, chat)
			return
		}
	}

	a = b.Engine.OnMessage(ctx, engine.Message{
		ContextID:       m.ChannelID,
		AuthorID:        m.Author.ID,
		Text:            m.Content,
		ReplyParentText: b.parentText(ctx, s, m),
		HasAttachments:  len(m.Attachments) > 0,
	})
	b.dispatch(ctx, a, chat)
}

func (b *DiscordBot) dispatch(ctx context.Context, a engine.Action, chat engine.Chat) {
	if err := b.Dispatcher.Dispatch(ctx, a, chat); err != nil {
		b.logger.Warn("dispatch failed",
			zap.String("context", a.ContextID),
			zap.String("kind", a.Kind.String()),
			zap.Error(err))
	}
}

// parentText returns the content of the message m replies to, if any.
func (b *DiscordBot) parentText(ctx context.Context, s *discordgo.Session, m *discordgo.Message) string {
	if m.ReferencedMessage != nil {
		return m.ReferencedMessage.Content
	}
	if m.MessageReference == nil || m.MessageReference.MessageID == "" {
		return ""
	}
	channelID := m.MessageReference.ChannelID
	if channelID == "" {
		channelID = m.ChannelID
	}
	parent, err := s.ChannelMessage(channelID, m.MessageReference.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		b.logger.Debug("could not fetch reply parent",
			zap.String("channel", channelID),
			zap.String("message", m.MessageReference.MessageID),
			zap.Error(err))
		return ""
	}
	return parent.Content
}
