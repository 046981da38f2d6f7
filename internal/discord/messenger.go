// Package discord is the boundary between the bot and the Discord REST API
// for everything that posts, edits or removes channel messages.
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrUnknownMessage = errors.New("unknown message")
	ErrMissingAccess  = errors.New("missing access")
)

// Capabilities are the permissions the bot needs to post cards in a channel.
type Capabilities struct {
	CanSend  bool
	CanEmbed bool
	CanView  bool
}

// Allowed reports whether all the required permissions are present.
func (c Capabilities) Allowed() bool {
	return c.CanSend && c.CanEmbed && c.CanView
}

// Messenger is the set of message operations the monitor and the info board rely on.
type Messenger interface {
	ResolveChannel(ctx context.Context, channelID string) error
	ResolveMessage(ctx context.Context, channelID, messageID string) error
	Send(ctx context.Context, channelID string, cards []*discordgo.MessageEmbed) (string, error)
	Edit(ctx context.Context, channelID, messageID string, cards []*discordgo.MessageEmbed) error
	Delete(ctx context.Context, channelID, messageID string) error
	ChannelCapabilities(ctx context.Context, channelID string) (Capabilities, error)
}

// SessionMessenger implements Messenger over a discordgo session.
type SessionMessenger struct {
	session *discordgo.Session
}

func NewSessionMessenger(session *discordgo.Session) *SessionMessenger {
	return &SessionMessenger{session: session}
}

func (m *SessionMessenger) ResolveChannel(ctx context.Context, channelID string) error {
	_, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	return classify(err)
}

func (m *SessionMessenger) ResolveMessage(ctx context.Context, channelID, messageID string) error {
	_, err := m.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	return classify(err)
}

func (m *SessionMessenger) Send(ctx context.Context, channelID string, cards []*discordgo.MessageEmbed) (string, error) {
	message, err := m.session.ChannelMessageSendEmbeds(channelID, cards, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return message.ID, nil
}

func (m *SessionMessenger) Edit(ctx context.Context, channelID, messageID string, cards []*discordgo.MessageEmbed) error {
	_, err := m.session.ChannelMessageEditEmbeds(channelID, messageID, cards, discordgo.WithContext(ctx))
	return classify(err)
}

func (m *SessionMessenger) Delete(ctx context.Context, channelID, messageID string) error {
	return classify(m.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (m *SessionMessenger) ChannelCapabilities(ctx context.Context, channelID string) (Capabilities, error) {
	if m.session.State == nil || m.session.State.User == nil {
		return Capabilities{}, fmt.Errorf("session is not ready")
	}
	permissions, err := m.session.UserChannelPermissions(m.session.State.User.ID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return Capabilities{}, classify(err)
	}
	return CapabilitiesFrom(permissions), nil
}

// CapabilitiesFrom extracts the posting capabilities from a permission bit set.
func CapabilitiesFrom(permissions int64) Capabilities {
	return Capabilities{
		CanSend:  permissions&discordgo.PermissionSendMessages != 0,
		CanEmbed: permissions&discordgo.PermissionEmbedLinks != 0,
		CanView:  permissions&discordgo.PermissionViewChannel != 0,
	}
}

// IsGone reports whether err means the channel or message no longer exists.
func IsGone(err error) bool {
	return errors.Is(err, ErrUnknownChannel) || errors.Is(err, ErrUnknownMessage)
}

// IsStale reports whether err means a stored channel or message pointer can
// no longer be used: the target is gone or the bot lost access to it.
func IsStale(err error) bool {
	return IsGone(err) || errors.Is(err, ErrMissingAccess)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return err
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownChannel:
		return fmt.Errorf("%w: %w", ErrUnknownChannel, err)
	case discordgo.ErrCodeUnknownMessage:
		return fmt.Errorf("%w: %w", ErrUnknownMessage, err)
	case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
		return fmt.Errorf("%w: %w", ErrMissingAccess, err)
	default:
		return err
	}
}
