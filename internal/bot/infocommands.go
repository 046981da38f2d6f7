package bot

import (
	"context"
	"fmt"
	"rustbot/internal/common"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var (
	days       = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	modes      = []string{"Vanilla", "Modded", "Survival", "Softcore", "Hardcore", "Primitive"}
	teamLimits = []string{"Solo", "Duo", "Trio", "Squad", "NoLimit"}
	maps       = []string{"Procedural", "Barren", "Custom", "Hapis Island", "Savas Island"}
)

// InfoCommands manage the static server info cards.
type InfoCommands struct {
	store       CardStore
	board       *InfoBoard
	defaultIcon string
	clock       common.Clock
}

func NewInfoCommands(store CardStore, board *InfoBoard, defaultIcon string, clock common.Clock) InfoCommands {
	return InfoCommands{store: store, board: board, defaultIcon: defaultIcon, clock: clock}
}

func (c InfoCommands) Commands() []Command {
	minIndex := float64(1)
	return []Command{
		{
			Name:        "addembed",
			Description: "Add an additional server info embed",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption(OPTION_SERVER_NAME, "Server name", true),
				stringOption(OPTION_COLOR, "Embed HEX color (e.g., FAA61A)", true),
				stringOption(OPTION_IP_ADDRESS, "Server IP:PORT", true),
				stringOption(OPTION_WIPE_DAY, "Day of the week for wipe", true, days...),
				stringOption(OPTION_WIPE_TIME, "Wipe time (HH:MM format, e.g., 14:00)", true),
				stringOption(OPTION_RESTART_TIME, "Daily restart time (HH:MM format)", true),
				stringOption(OPTION_MODE, "Server mode", true, modes...),
				stringOption(OPTION_TEAM_LIMIT, "Team size limit", true, teamLimits...),
				stringOption(OPTION_MAP, "Server map", true, maps...),
				stringOption(OPTION_ICON_URL, "URL for the server icon (optional)", false),
			},
			Failure: "❌ An internal error occurred while adding the embed.",
			Handle:  c.AddCard,
		},
		{
			Name:        "removeembed",
			Description: "Remove a server info embed by its number",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OPTION_INDEX,
					Description: "The number of the embed to remove (starting from 1)",
					Required:    true,
					MinValue:    &minIndex,
				},
			},
			Failure: "❌ An internal error occurred while removing the embed.",
			Handle:  c.RemoveCard,
		},
	}
}

func (c InfoCommands) AddCard(ctx context.Context, request Request) (string, error) {

	if len(c.store.Cards()) >= maxCardsPerMessage {
		return "", UserError("A message can hold at most %d embeds. Remove one first.", maxCardsPerMessage)
	}

	icon := request.String(OPTION_ICON_URL)
	if icon == "" {
		icon = c.defaultIcon
	}
	name := request.String(OPTION_SERVER_NAME)
	card, err := BuildInfoCard(InfoCard{
		ServerName:  name,
		Color:       request.String(OPTION_COLOR),
		Address:     request.String(OPTION_IP_ADDRESS),
		WipeDay:     request.String(OPTION_WIPE_DAY),
		WipeTime:    request.String(OPTION_WIPE_TIME),
		RestartTime: request.String(OPTION_RESTART_TIME),
		Mode:        request.String(OPTION_MODE),
		TeamLimit:   request.String(OPTION_TEAM_LIMIT),
		Map:         request.String(OPTION_MAP),
		IconURL:     icon,
	}, c.clock.Now())
	if err != nil {
		return "", err
	}

	c.store.Add(card)
	if err := c.board.Publish(ctx, request.ChannelID); err != nil {
		return "", err
	}

	total := len(c.store.Cards())
	log.Info().Msg(fmt.Sprintf("Embed for server %q added by %s, total %d", name, request.User, total))
	return fmt.Sprintf("✅ Embed for server \"%s\" added successfully! (Total: %d)", name, total), nil
}

func (c InfoCommands) RemoveCard(ctx context.Context, request Request) (string, error) {

	position := request.Int(OPTION_INDEX)
	index, err := ParseIndex(position, len(c.store.Cards()))
	if err != nil {
		return "", err
	}
	if !c.store.RemoveAt(index) {
		return "", fmt.Errorf("failed to remove embed number %d", position)
	}
	if err := c.board.Publish(ctx, request.ChannelID); err != nil {
		return "", err
	}

	log.Info().Msg(fmt.Sprintf("Embed #%d removed by %s, remaining %d", position, request.User, len(c.store.Cards())))
	return fmt.Sprintf("✅ Embed #%d removed successfully!", position), nil
}
