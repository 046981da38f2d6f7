package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"rustbot/internal/monitor"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

type monitorFile struct {
	MonitorMessageInfo messageInfo    `json:"monitorMessageInfo"`
	MonitoredServers   []serverRecord `json:"monitoredServers"`
}

type messageInfo struct {
	ChannelID *string `json:"channelId"`
	MessageID *string `json:"messageId"`
}

type serverRecord struct {
	ID              string  `json:"id"`
	ShowDescription bool    `json:"showDescription"`
	Color           *string `json:"color"`
}

// MonitorData is the content of the monitor data file.
type MonitorData struct {
	Pointer  monitor.LiveMessagePointer
	Entities []monitor.TrackedEntity
}

// MonitorStore holds the tracked servers and the live message pointer in
// memory and writes them to disk on Persist.
type MonitorStore struct {
	mu       sync.RWMutex
	data     MonitorData
	persist  sync.Mutex
	queue    *writeQueue
	filename string
	logger   zerolog.Logger
}

// OpenMonitorStore loads path. A missing file starts an empty store, a file
// that cannot be parsed is an error.
func OpenMonitorStore(path string) (*MonitorStore, error) {
	s := &MonitorStore{
		filename: filepath.Base(path),
		logger:   log.With().Str("service", "MonitorStore").Logger(),
	}
	data, err := ReadMonitorFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Msg(fmt.Sprintf("File %s not found, starting with empty monitor data", s.filename))
	} else if err != nil {
		return nil, err
	} else {
		s.logger.Info().Msg(fmt.Sprintf("%d monitor targets loaded from %s", len(data.Entities), s.filename))
	}
	s.data = data
	s.queue = newWriteQueue(path)
	return s, nil
}

// ReadMonitorFile parses a monitor data file, normalizing its entries.
func ReadMonitorFile(path string) (MonitorData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return MonitorData{}, err
	}
	if !gjson.ValidBytes(raw) {
		return MonitorData{}, fmt.Errorf("failed to parse %s: invalid JSON", filepath.Base(path))
	}

	var data MonitorData
	info := gjson.GetBytes(raw, "monitorMessageInfo")
	if info.IsObject() {
		data.Pointer = normalizePointer(monitor.LiveMessagePointer{
			ChannelID: info.Get("channelId").String(),
			MessageID: info.Get("messageId").String(),
		})
	}

	seen := map[string]int{}
	for _, server := range gjson.GetBytes(raw, "monitoredServers").Array() {
		id := server.Get("id")
		if !id.Exists() || id.Type == gjson.Null || id.String() == "" {
			continue
		}
		entity := monitor.TrackedEntity{
			ID:              id.String(),
			ShowDescription: server.Get("showDescription").Type == gjson.True,
		}
		if color := server.Get("color"); color.Type == gjson.String {
			entity.Color = normalizeColor(color.String())
		}
		// Later duplicates replace earlier ones
		if index, ok := seen[entity.ID]; ok {
			data.Entities[index] = entity
			continue
		}
		seen[entity.ID] = len(data.Entities)
		data.Entities = append(data.Entities, entity)
	}
	return data, nil
}

func normalizeColor(color string) string {
	return strings.ToUpper(strings.TrimSpace(color))
}

func normalizePointer(pointer monitor.LiveMessagePointer) monitor.LiveMessagePointer {
	if pointer.ChannelID == "" {
		pointer.MessageID = ""
	}
	return pointer
}

func (s *MonitorStore) List() []monitor.TrackedEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]monitor.TrackedEntity(nil), s.data.Entities...)
}

func (s *MonitorStore) Get(id string) (monitor.TrackedEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entity := range s.data.Entities {
		if entity.ID == id {
			return entity, true
		}
	}
	return monitor.TrackedEntity{}, false
}

// Upsert replaces the entity with the same id, or appends it.
// It reports whether the entity is new.
func (s *MonitorStore) Upsert(entity monitor.TrackedEntity) bool {
	entity.Color = normalizeColor(entity.Color)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Entities {
		if s.data.Entities[i].ID == entity.ID {
			s.data.Entities[i] = entity
			s.logger.Info().Msg(fmt.Sprintf("Updated monitor target %s", entity.ID))
			return false
		}
	}
	s.data.Entities = append(s.data.Entities, entity)
	s.logger.Info().Msg(fmt.Sprintf("Added monitor target %s", entity.ID))
	return true
}

// RemoveByID reports whether an entity was removed.
func (s *MonitorStore) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entity := range s.data.Entities {
		if entity.ID == id {
			s.data.Entities = append(s.data.Entities[:i:i], s.data.Entities[i+1:]...)
			s.logger.Info().Msg(fmt.Sprintf("Removed monitor target %s", id))
			return true
		}
	}
	s.logger.Warn().Msg(fmt.Sprintf("Attempted to remove unknown monitor target %s", id))
	return false
}

func (s *MonitorStore) Pointer() monitor.LiveMessagePointer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Pointer
}

func (s *MonitorStore) SetPointer(pointer monitor.LiveMessagePointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Pointer = normalizePointer(pointer)
}

// Persist writes the current state and waits until it is on disk.
func (s *MonitorStore) Persist(ctx context.Context) error {
	// Snapshot and enqueue together so files are written in state order
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
		s.logger.Error().Err(err).Msg(fmt.Sprintf("Could not save monitor data to %s", s.filename))
		return err
	}
	s.logger.Debug().Msg(fmt.Sprintf("Monitor data saved to %s", s.filename))
	return nil
}

func (s *MonitorStore) encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file := monitorFile{MonitoredServers: make([]serverRecord, 0, len(s.data.Entities))}
	if s.data.Pointer.ChannelID != "" {
		channelID := s.data.Pointer.ChannelID
		file.MonitorMessageInfo.ChannelID = &channelID
	}
	if s.data.Pointer.MessageID != "" {
		messageID := s.data.Pointer.MessageID
		file.MonitorMessageInfo.MessageID = &messageID
	}
	for _, entity := range s.data.Entities {
		record := serverRecord{ID: entity.ID, ShowDescription: entity.ShowDescription}
		if entity.Color != "" {
			color := entity.Color
			record.Color = &color
		}
		file.MonitoredServers = append(file.MonitoredServers, record)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal monitor data: %w", err)
	}
	return data, nil
}

// Close flushes pending writes. Persist fails with ErrClosed afterwards.
func (s *MonitorStore) Close() {
	s.queue.close()
}
