package monitor_test

import (
	"context"
	"fmt"
	"rustbot/internal/discord"
	"rustbot/internal/monitor"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type fakeStore struct {
	mu         sync.Mutex
	entities   []monitor.TrackedEntity
	pointer    monitor.LiveMessagePointer
	persists   int
	persistErr error
}

func (s *fakeStore) List() []monitor.TrackedEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]monitor.TrackedEntity(nil), s.entities...)
}

func (s *fakeStore) Pointer() monitor.LiveMessagePointer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer
}

func (s *fakeStore) SetPointer(pointer monitor.LiveMessagePointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = pointer
}

func (s *fakeStore) Persist(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persists++
	return s.persistErr
}

func (s *fakeStore) setEntities(entities ...monitor.TrackedEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = entities
}

func (s *fakeStore) persistCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persists
}

// fakeMessenger keeps messages in memory, keyed by channel then message id.
type fakeMessenger struct {
	mu           sync.Mutex
	channels     map[string]map[string][]*discordgo.MessageEmbed
	capabilities discord.Capabilities
	channelErr   error
	deleteErr    error
	nextID       int

	sends   int
	edits   int
	deletes int
}

func newFakeMessenger(channelIDs ...string) *fakeMessenger {
	m := &fakeMessenger{
		channels:     map[string]map[string][]*discordgo.MessageEmbed{},
		capabilities: discord.Capabilities{CanSend: true, CanEmbed: true, CanView: true},
	}
	for _, id := range channelIDs {
		m.channels[id] = map[string][]*discordgo.MessageEmbed{}
	}
	return m
}

func (m *fakeMessenger) ResolveChannel(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.channelErr != nil {
		return m.channelErr
	}
	if _, ok := m.channels[channelID]; !ok {
		return discord.ErrUnknownChannel
	}
	return nil
}

func (m *fakeMessenger) ResolveMessage(_ context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[channelID][messageID]; !ok {
		return discord.ErrUnknownMessage
	}
	return nil
}

func (m *fakeMessenger) Send(_ context.Context, channelID string, cards []*discordgo.MessageEmbed) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	channel, ok := m.channels[channelID]
	if !ok {
		return "", discord.ErrUnknownChannel
	}
	m.sends++
	m.nextID++
	id := fmt.Sprintf("msg-%d", m.nextID)
	channel[id] = cards
	return id, nil
}

func (m *fakeMessenger) Edit(_ context.Context, channelID, messageID string, cards []*discordgo.MessageEmbed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[channelID][messageID]; !ok {
		return discord.ErrUnknownMessage
	}
	m.edits++
	m.channels[channelID][messageID] = cards
	return nil
}

func (m *fakeMessenger) Delete(_ context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.channels[channelID][messageID]; !ok {
		return discord.ErrUnknownMessage
	}
	m.deletes++
	delete(m.channels[channelID], messageID)
	return nil
}

func (m *fakeMessenger) ChannelCapabilities(_ context.Context, channelID string) (discord.Capabilities, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[channelID]; !ok {
		return discord.Capabilities{}, discord.ErrUnknownChannel
	}
	return m.capabilities, nil
}

// post puts a message in place as if it had been sent in an earlier run.
func (m *fakeMessenger) post(channelID, messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channelID][messageID] = nil
}

func (m *fakeMessenger) message(channelID, messageID string) ([]*discordgo.MessageEmbed, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cards, ok := m.channels[channelID][messageID]
	return cards, ok
}

func (m *fakeMessenger) messageCount(channelID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels[channelID])
}

func (m *fakeMessenger) counts() (sends, edits, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sends, m.edits, m.deletes
}

// fakeRenderer renders the entity id as title and the failure, if any, as description.
type fakeRenderer struct {
	panicOn string
}

func (r fakeRenderer) RenderCard(status monitor.EntityStatus, entity monitor.TrackedEntity) *discordgo.MessageEmbed {
	if r.panicOn != "" && r.panicOn == entity.ID {
		panic("cannot render " + entity.ID)
	}
	card := &discordgo.MessageEmbed{Title: status.EntityID}
	if status.Failure != nil {
		card.Description = status.Failure.String()
	} else {
		card.Description = fmt.Sprintf("%d/%d", status.Server.Players, status.Server.MaxPlayers)
	}
	return card
}

func (fakeRenderer) RenderErrorCard(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "error", Description: message}
}

func titles(cards []*discordgo.MessageEmbed) []string {
	result := make([]string, 0, len(cards))
	for _, card := range cards {
		result = append(result, card.Title)
	}
	return result
}
