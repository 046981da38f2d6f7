package monitor

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=source.go StatusSource

// StatusSource looks up the live status of a single entity. FetchStatus must
// not fail: every problem is reported through EntityStatus.Failure.
type StatusSource interface {
	Enabled() bool
	FetchStatus(ctx context.Context, entityID string) EntityStatus
}

// Store holds the tracked entities and the live message pointer.
type Store interface {
	List() []TrackedEntity
	Pointer() LiveMessagePointer
	SetPointer(pointer LiveMessagePointer)
	Persist(ctx context.Context) error
}

// Renderer turns statuses into display cards.
type Renderer interface {
	RenderCard(status EntityStatus, entity TrackedEntity) *discordgo.MessageEmbed
	RenderErrorCard(message string) *discordgo.MessageEmbed
}
