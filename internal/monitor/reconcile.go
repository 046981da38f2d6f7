package monitor

import (
	"context"
	"errors"
	"fmt"
	"rustbot/internal/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Action is what a reconciliation did to the live message.
type Action string

const (
	ActionNone    Action = "none"
	ActionEdited  Action = "edited"
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// Reconciler keeps a single live message in sync with the rendered cards.
// It is the only writer of the live message pointer.
type Reconciler struct {
	messenger discord.Messenger
	store     Store
	metrics   *Metrics
	logger    zerolog.Logger
}

func NewReconciler(messenger discord.Messenger, store Store, metrics *Metrics) *Reconciler {
	return &Reconciler{
		messenger: messenger,
		store:     store,
		metrics:   metrics,
		logger:    log.With().Str("service", "Reconciler").Logger(),
	}
}

// Sync edits the live message to show cards, or creates a new one when the
// stored message cannot be found.
func (r *Reconciler) Sync(ctx context.Context, cards []*discordgo.MessageEmbed) (Action, error) {
	action, err := r.sync(ctx, cards)
	r.metrics.observeReconcile(action)
	return action, err
}

func (r *Reconciler) sync(ctx context.Context, cards []*discordgo.MessageEmbed) (Action, error) {
	pointer := r.store.Pointer()
	if pointer.ChannelID == "" {
		return ActionNone, fmt.Errorf("%w: no channel is configured, use a monitor command in the desired channel first", ErrChannelUnresolvable)
	}

	// Channel
	if err := r.messenger.ResolveChannel(ctx, pointer.ChannelID); err != nil {
		if discord.IsStale(err) {
			r.logger.Warn().Err(err).Msg(fmt.Sprintf("Channel %s is no longer usable, resetting live message pointer", pointer.ChannelID))
			r.setPointer(ctx, LiveMessagePointer{})
		}
		return ActionNone, fmt.Errorf("%w: %w", ErrChannelUnresolvable, err)
	}

	// Existing message
	if pointer.MessageID != "" {
		err := r.messenger.ResolveMessage(ctx, pointer.ChannelID, pointer.MessageID)
		if err == nil {
			err = r.messenger.Edit(ctx, pointer.ChannelID, pointer.MessageID, cards)
			if err == nil {
				r.logger.Debug().Msg(fmt.Sprintf("Live message %s updated", pointer))
				return ActionEdited, nil
			}
			if !discord.IsGone(err) {
				return ActionNone, fmt.Errorf("edit live message %s: %w", pointer, err)
			}
		}
		r.logger.Info().Err(fmt.Errorf("%w: %w", ErrMessageUnresolvable, err)).Msg("Live message not found, creating a new one")
	}

	return r.create(ctx, pointer.ChannelID, cards)
}

func (r *Reconciler) create(ctx context.Context, channelID string, cards []*discordgo.MessageEmbed) (Action, error) {
	capabilities, err := r.messenger.ChannelCapabilities(ctx, channelID)
	if err != nil {
		return ActionNone, fmt.Errorf("check permissions in channel %s: %w", channelID, err)
	}
	if !capabilities.Allowed() {
		return ActionNone, fmt.Errorf("%w: channel %s (send=%t, embed=%t, view=%t)",
			ErrPermissionDenied, channelID, capabilities.CanSend, capabilities.CanEmbed, capabilities.CanView)
	}

	messageID, err := r.messenger.Send(ctx, channelID, cards)
	if err != nil {
		return ActionNone, fmt.Errorf("send live message to channel %s: %w", channelID, err)
	}
	r.logger.Info().Msg(fmt.Sprintf("New live message %s created in channel %s", messageID, channelID))

	r.setPointer(ctx, LiveMessagePointer{ChannelID: channelID, MessageID: messageID})
	return ActionCreated, nil
}

// DeleteOrphan removes the live message, if any, and clears the pointer.
// A message that is already gone counts as deleted.
func (r *Reconciler) DeleteOrphan(ctx context.Context) (Action, error) {
	pointer := r.store.Pointer()
	if pointer.MessageID == "" || pointer.ChannelID == "" {
		return ActionNone, nil
	}

	r.logger.Info().Msg(fmt.Sprintf("Deleting orphaned live message %s", pointer))
	err := r.messenger.Delete(ctx, pointer.ChannelID, pointer.MessageID)
	if err != nil && !discord.IsStale(err) {
		r.metrics.observeReconcile(ActionNone)
		return ActionNone, fmt.Errorf("delete live message %s: %w", pointer, err)
	}
	if err != nil {
		r.logger.Debug().Err(err).Msg("Orphaned live message was already gone")
	}

	r.setPointer(ctx, LiveMessagePointer{})
	r.metrics.observeReconcile(ActionDeleted)
	return ActionDeleted, nil
}

// setPointer stores and persists a new pointer. A failed write is logged only,
// the in-memory pointer stays authoritative.
func (r *Reconciler) setPointer(ctx context.Context, pointer LiveMessagePointer) {
	r.store.SetPointer(pointer)
	if err := r.store.Persist(ctx); err != nil {
		r.logger.Error().Err(errors.Join(ErrPersistenceFailure, err)).Msg("Could not persist live message pointer")
	}
}
