package bot

import (
	"context"
	"errors"
	"fmt"
	"rustbot/internal/monitor"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// TrackedStore is the part of the monitor store the commands change.
type TrackedStore interface {
	Get(id string) (monitor.TrackedEntity, bool)
	Upsert(entity monitor.TrackedEntity) bool
	RemoveByID(id string) bool
	Pointer() monitor.LiveMessagePointer
	SetPointer(pointer monitor.LiveMessagePointer)
	Persist(ctx context.Context) error
}

type Trigger interface {
	TriggerUpdate(ctx context.Context) (bool, error)
}

const disabledReply = "BattleMetrics token is not configured. Monitoring is unavailable."

// MonitorCommands manage the tracked servers and the live message.
type MonitorCommands struct {
	store   TrackedStore
	trigger Trigger
	enabled bool
}

func NewMonitorCommands(store TrackedStore, trigger Trigger, enabled bool) MonitorCommands {
	return MonitorCommands{store: store, trigger: trigger, enabled: enabled}
}

func (m MonitorCommands) Commands() []Command {
	return []Command{
		{
			Name:        "setrustmonitor",
			Description: "Add or update a server in the BattleMetrics monitor",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(OPTION_BMID, "BattleMetrics Server ID", true),
				stringOption(OPTION_COLOR, "Embed HEX color (6 chars, e.g., FF0000). Leave empty for auto.", false),
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        OPTION_DESCRIPTION,
					Description: "Show the server description in the card",
				},
			},
			Failure: "❌ An internal error occurred while configuring monitoring.",
			Handle:  m.SetMonitor,
		},
		{
			Name:        "stoprustmonitor",
			Description: "Remove a server from the BattleMetrics monitor",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(OPTION_BMID, "BattleMetrics Server ID to remove", true),
			},
			Failure: "❌ An internal error occurred while removing the server from monitoring.",
			Handle:  m.StopMonitor,
		},
		{
			Name:        "refreshmonitor",
			Description: "Refresh the monitoring message now",
			Failure:     "❌ An internal error occurred while refreshing monitoring.",
			Handle:      m.Refresh,
		},
	}
}

func (m MonitorCommands) SetMonitor(ctx context.Context, request Request) (string, error) {

	if !m.enabled {
		return "", UserError(disabledReply)
	}

	// Validate
	id, err := ParseServerID(request.String(OPTION_BMID))
	if err != nil {
		return "", err
	}
	color := ""
	if input := request.String(OPTION_COLOR); input != "" {
		if color, err = ParseColor(input); err != nil {
			return "", err
		}
	}

	// Keep the description flag unless it is given
	entity := monitor.TrackedEntity{ID: id, Color: color}
	if previous, ok := m.store.Get(id); ok {
		entity.ShowDescription = previous.ShowDescription
	}
	if show, ok := request.Bool(OPTION_DESCRIPTION); ok {
		entity.ShowDescription = show
	}
	isNew := m.store.Upsert(entity)

	// The first channel a monitor command is used in hosts the live message
	if m.store.Pointer().ChannelID == "" {
		m.store.SetPointer(monitor.LiveMessagePointer{ChannelID: request.ChannelID})
		log.Info().Msg(fmt.Sprintf("Monitoring channel set to %s", request.ChannelID))
	}
	if err := m.store.Persist(ctx); err != nil {
		return "", fmt.Errorf("could not save monitor %s: %w", id, err)
	}

	action := "updated"
	if isNew {
		action = "added"
	}
	shown := color
	if shown == "" {
		shown = "Auto"
	}
	log.Info().Msg(fmt.Sprintf("Monitor target %s %s by %s, color %s", id, action, request.User, shown))

	reply := fmt.Sprintf("✅ Monitoring settings for BMID `%s` %s. Color: **%s**.", id, action, shown)
	return reply + "\n" + m.refresh(ctx), nil
}

func (m MonitorCommands) StopMonitor(ctx context.Context, request Request) (string, error) {

	id := request.String(OPTION_BMID)
	if !m.store.RemoveByID(id) {
		return "", UserError("Server with BMID `%s` not found in the monitoring list.", id)
	}
	if err := m.store.Persist(ctx); err != nil {
		return "", fmt.Errorf("could not save removal of monitor %s: %w", id, err)
	}
	log.Info().Msg(fmt.Sprintf("Monitor target %s removed by %s", id, request.User))

	reply := fmt.Sprintf("✅ Server with BMID `%s` removed from monitoring.", id)
	if !m.enabled {
		return reply, nil
	}
	return reply + "\n" + m.refresh(ctx), nil
}

func (m MonitorCommands) Refresh(ctx context.Context, _ Request) (string, error) {

	accepted, err := m.trigger.TriggerUpdate(ctx)
	switch {
	case errors.Is(err, monitor.ErrDisabled):
		return "", UserError(disabledReply)
	case errors.Is(err, monitor.ErrStopped):
		return "", UserError("Monitoring is shutting down.")
	case err != nil:
		return "", err
	case !accepted:
		return "⏳ Monitoring is currently updating. Please wait for it to finish.", nil
	default:
		return "✅ Monitoring status refreshed.", nil
	}
}

// refresh triggers an update after a change and describes the outcome
func (m MonitorCommands) refresh(ctx context.Context) string {
	accepted, err := m.trigger.TriggerUpdate(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not trigger a monitoring update")
		return "Changes will show on the next update."
	}
	if !accepted {
		return "An update is already running, changes will show on the next one."
	}
	return "Status updated."
}
