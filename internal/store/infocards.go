package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"rustbot/internal/monitor"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type infoCardFile struct {
	StoredEmbeds          []*discordgo.MessageEmbed `json:"storedEmbeds"`
	StoredEmbedsChannelID *string                   `json:"storedEmbedsChannelId"`
	StoredEmbedsMessageID *string                   `json:"storedEmbedsMessageId"`
}

// InfoCardStore holds the static server info cards and where they are posted.
type InfoCardStore struct {
	mu       sync.RWMutex
	cards    []*discordgo.MessageEmbed
	pointer  monitor.LiveMessagePointer
	persist  sync.Mutex
	queue    *writeQueue
	filename string
	logger   zerolog.Logger
}

func OpenInfoCardStore(path string) (*InfoCardStore, error) {
	s := &InfoCardStore{
		filename: filepath.Base(path),
		logger:   log.With().Str("service", "InfoCardStore").Logger(),
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Warn().Msg(fmt.Sprintf("File %s not found, starting without info cards", s.filename))
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", s.filename, err)
	default:
		var file infoCardFile
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", s.filename, err)
		}
		for _, card := range file.StoredEmbeds {
			if card != nil {
				s.cards = append(s.cards, card)
			}
		}
		if file.StoredEmbedsChannelID != nil {
			s.pointer.ChannelID = *file.StoredEmbedsChannelID
		}
		if file.StoredEmbedsMessageID != nil {
			s.pointer.MessageID = *file.StoredEmbedsMessageID
		}
		s.pointer = normalizePointer(s.pointer)
		s.logger.Info().Msg(fmt.Sprintf("%d info cards loaded from %s", len(s.cards), s.filename))
	}

	s.queue = newWriteQueue(path)
	return s, nil
}

func (s *InfoCardStore) Cards() []*discordgo.MessageEmbed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*discordgo.MessageEmbed(nil), s.cards...)
}

func (s *InfoCardStore) Add(card *discordgo.MessageEmbed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, card)
}

// RemoveAt removes the card at the zero-based index and reports whether
// the index was valid.
func (s *InfoCardStore) RemoveAt(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.cards) {
		return false
	}
	s.cards = append(s.cards[:index:index], s.cards[index+1:]...)
	return true
}

func (s *InfoCardStore) Pointer() monitor.LiveMessagePointer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointer
}

func (s *InfoCardStore) SetPointer(pointer monitor.LiveMessagePointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = normalizePointer(pointer)
}

func (s *InfoCardStore) Persist(ctx context.Context) error {
	s.persist.Lock()
	data, err := s.encode()
	if err != nil {
		s.persist.Unlock()
		return err
	}
	result, err := s.queue.submit(ctx, data)
	s.persist.Unlock()
	if err != nil {
		return err
	}

	if err := wait(ctx, result); err != nil {
		s.logger.Error().Err(err).Msg(fmt.Sprintf("Could not save info cards to %s", s.filename))
		return err
	}
	s.logger.Debug().Msg(fmt.Sprintf("Info cards saved to %s", s.filename))
	return nil
}

func (s *InfoCardStore) encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file := infoCardFile{StoredEmbeds: append([]*discordgo.MessageEmbed{}, s.cards...)}
	if s.pointer.ChannelID != "" {
		channelID := s.pointer.ChannelID
		file.StoredEmbedsChannelID = &channelID
	}
	if s.pointer.MessageID != "" {
		messageID := s.pointer.MessageID
		file.StoredEmbedsMessageID = &messageID
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal info cards: %w", err)
	}
	return data, nil
}

func (s *InfoCardStore) Close() {
	s.queue.close()
}
