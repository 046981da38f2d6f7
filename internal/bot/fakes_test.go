package bot

import (
	"context"
	"fmt"
	"rustbot/internal/discord"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type fakeTrigger struct {
	mu       sync.Mutex
	accepted bool
	err      error
	calls    int
}

func (t *fakeTrigger) TriggerUpdate(context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	return t.accepted, t.err
}

type fakeLifecycle struct {
	starts int
	stops  int
}

func (l *fakeLifecycle) Start(context.Context) { l.starts++ }
func (l *fakeLifecycle) Stop()                 { l.stops++ }

// fakeMessenger keeps the messages of each channel in memory
type fakeMessenger struct {
	mu        sync.Mutex
	messages  map[string][]*discordgo.MessageEmbed
	next      int
	sendErr   error
	deleteErr error
	deletes   []string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{messages: map[string][]*discordgo.MessageEmbed{}}
}

func (m *fakeMessenger) ResolveChannel(context.Context, string) error {
	return nil
}

func (m *fakeMessenger) ResolveMessage(_ context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[channelID+"/"+messageID]; !ok {
		return discord.ErrUnknownMessage
	}
	return nil
}

func (m *fakeMessenger) Send(_ context.Context, channelID string, cards []*discordgo.MessageEmbed) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.next++
	id := fmt.Sprintf("msg-%d", m.next)
	m.messages[channelID+"/"+id] = cards
	return id, nil
}

func (m *fakeMessenger) Edit(_ context.Context, channelID, messageID string, cards []*discordgo.MessageEmbed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[channelID+"/"+messageID] = cards
	return nil
}

func (m *fakeMessenger) Delete(_ context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, channelID+"/"+messageID)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.messages, channelID+"/"+messageID)
	return nil
}

func (m *fakeMessenger) ChannelCapabilities(context.Context, string) (discord.Capabilities, error) {
	return discord.Capabilities{CanSend: true, CanEmbed: true, CanView: true}, nil
}

func (m *fakeMessenger) message(channelID, messageID string) ([]*discordgo.MessageEmbed, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cards, ok := m.messages[channelID+"/"+messageID]
	return cards, ok
}

func (m *fakeMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func stringArg(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func intArg(name string, value int64) *discordgo.ApplicationCommandInteractionDataOption {
	// Discord sends numbers as JSON floats
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func boolArg(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: value}
}

func request(channelID string, options ...*discordgo.ApplicationCommandInteractionDataOption) Request {
	r := Request{ChannelID: channelID, User: "admin", Options: map[string]*discordgo.ApplicationCommandInteractionDataOption{}}
	for _, option := range options {
		r.Options[option.Name] = option
	}
	return r
}
