package bot

import (
	"fmt"
	"rustbot/internal/common"
	"rustbot/internal/monitor"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Default card color, same for online and offline servers
const defaultColor int = 0x242429
const errorColor int = 0xFF0000

// Discord refuses empty field names
const blankField = "\u200b"

// Most embeds a single message can carry
const maxCardsPerMessage = 10

// CardRenderer draws the monitoring cards.
type CardRenderer struct {
	clock common.Clock
}

func NewCardRenderer(clock common.Clock) CardRenderer {
	return CardRenderer{clock: clock}
}

func (r CardRenderer) RenderCard(status monitor.EntityStatus, entity monitor.TrackedEntity) *discordgo.MessageEmbed {

	failed := status.IsFailed()
	online := !failed && status.Server.Online

	color := defaultColor
	if value, ok := ColorValue(entity.Color); ok {
		color = value
	}

	embed := discordgo.MessageEmbed{
		Title:     "📊 Server Monitoring",
		Color:     color,
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("ID: %s", status.EntityID)},
		Timestamp: status.LastUpdate.Format(time.RFC3339),
	}

	// Name
	name := status.DisplayName
	if name == "" {
		name = "N/A"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🖥️ Server:", Value: name})

	// Status
	switch {
	case failed:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🔴 Status:", Value: fmt.Sprintf("Offline (%s)", status.Failure)})
	case online:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🟢 Status:",
			Value: fmt.Sprintf("Online - %d/%d", status.Server.Players, status.Server.MaxPlayers),
		})
	default:
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🔴 Status:", Value: "Offline"})
	}

	if failed {
		return &embed
	}

	if status.Server.Connect != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🔌 Connect:", Value: fmt.Sprintf("`%s`", status.Server.Connect)})
	}
	if entity.ShowDescription && status.Server.Description != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "📝 Description:", Value: status.Server.Description})
	}
	return &embed
}

func (r CardRenderer) RenderErrorCard(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "⚠️ Monitoring Error",
		Description: message,
		Color:       errorColor,
		Timestamp:   r.clock.Now().Format(time.RFC3339),
	}
}

// InfoCard is the input of /addembed
type InfoCard struct {
	ServerName  string
	Color       string
	Address     string
	WipeDay     string
	WipeTime    string
	RestartTime string
	Mode        string
	TeamLimit   string
	Map         string
	IconURL     string
}

// BuildInfoCard validates card and renders it. Wipe and restart times are
// shown as Discord timestamps, so every reader sees their own local time.
func BuildInfoCard(card InfoCard, now time.Time) (*discordgo.MessageEmbed, error) {

	color, err := ParseColor(card.Color)
	if err != nil {
		return nil, err
	}
	colorValue, _ := ColorValue(color)
	day, err := ParseWeekday(card.WipeDay)
	if err != nil {
		return nil, err
	}
	wipeHour, wipeMinute, err := ParseClock(card.WipeTime)
	if err != nil {
		return nil, err
	}
	restartHour, restartMinute, err := ParseClock(card.RestartTime)
	if err != nil {
		return nil, err
	}

	wipe := NextWeekly(now, day, wipeHour, wipeMinute).Unix()
	restart := NextDaily(now, restartHour, restartMinute).Unix()

	summary := fmt.Sprintf("**Address:** `connect %s`\n", card.Address)
	summary += fmt.Sprintf("**Wipe:** %s at <t:%d:t> (<t:%d:R>)\n", day, wipe, wipe)
	summary += fmt.Sprintf("**Restart:** Daily at <t:%d:t> (<t:%d:R>)", restart, restart)

	return &discordgo.MessageEmbed{
		Color:  colorValue,
		Author: &discordgo.MessageEmbedAuthor{Name: card.ServerName, IconURL: card.IconURL},
		Fields: []*discordgo.MessageEmbedField{
			{Name: blankField, Value: summary},
			{Name: "Mode", Value: card.Mode, Inline: true},
			{Name: "Limit", Value: card.TeamLimit, Inline: true},
			{Name: "Map", Value: card.Map, Inline: true},
		},
	}, nil
}
