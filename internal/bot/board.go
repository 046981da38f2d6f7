package bot

import (
	"context"
	"fmt"
	"rustbot/internal/discord"
	"rustbot/internal/monitor"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CardStore holds the static info cards and the message that shows them.
type CardStore interface {
	Cards() []*discordgo.MessageEmbed
	Add(card *discordgo.MessageEmbed)
	RemoveAt(index int) bool
	Pointer() monitor.LiveMessagePointer
	SetPointer(pointer monitor.LiveMessagePointer)
	Persist(ctx context.Context) error
}

// InfoBoard re-posts the info cards as a single message after every change.
type InfoBoard struct {
	store     CardStore
	messenger discord.Messenger
	logger    zerolog.Logger
}

func NewInfoBoard(store CardStore, messenger discord.Messenger) *InfoBoard {
	return &InfoBoard{
		store:     store,
		messenger: messenger,
		logger:    log.With().Str("service", "InfoBoard").Logger(),
	}
}

// Publish removes the previous message and posts all cards to channelID.
// Without cards nothing is posted.
func (b *InfoBoard) Publish(ctx context.Context, channelID string) error {

	// Old message
	previous := b.store.Pointer()
	if previous.MessageID != "" {
		err := b.messenger.Delete(ctx, previous.ChannelID, previous.MessageID)
		switch {
		case err == nil:
			b.logger.Info().Msg(fmt.Sprintf("Old info message %s deleted", previous))
		case discord.IsGone(err):
			b.logger.Debug().Msg(fmt.Sprintf("Old info message %s was already gone", previous))
		default:
			b.logger.Error().Err(err).Msg(fmt.Sprintf("Could not delete old info message %s", previous))
		}
		b.store.SetPointer(monitor.LiveMessagePointer{})
	}

	cards := b.store.Cards()
	if len(cards) == 0 {
		b.logger.Info().Msg("No info cards to display")
		return b.store.Persist(ctx)
	}

	// New message
	messageID, err := b.messenger.Send(ctx, channelID, cards)
	if err != nil {
		if persistErr := b.store.Persist(ctx); persistErr != nil {
			b.logger.Error().Err(persistErr).Msg("Could not save info cards")
		}
		return fmt.Errorf("could not send info cards to channel %s: %w", channelID, err)
	}
	b.store.SetPointer(monitor.LiveMessagePointer{ChannelID: channelID, MessageID: messageID})
	b.logger.Info().Msg(fmt.Sprintf("New info message %s sent to channel %s", messageID, channelID))
	return b.store.Persist(ctx)
}
