package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Option names shared by several commands
const (
	OPTION_BMID         = "bmid"
	OPTION_COLOR        = "color"
	OPTION_DESCRIPTION  = "description"
	OPTION_SERVER_NAME  = "servername"
	OPTION_IP_ADDRESS   = "ipaddress"
	OPTION_WIPE_DAY     = "wipe_day"
	OPTION_WIPE_TIME    = "wipe_time"
	OPTION_RESTART_TIME = "restart_time"
	OPTION_MODE         = "mode"
	OPTION_TEAM_LIMIT   = "teamlimit"
	OPTION_MAP          = "map"
	OPTION_ICON_URL     = "iconurl"
	OPTION_INDEX        = "index"
)

// Request is the part of an interaction a command works with.
type Request struct {
	ChannelID string
	User      string
	Options   map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func NewRequest(interaction *discordgo.InteractionCreate) Request {
	request := Request{
		ChannelID: interaction.ChannelID,
		Options:   map[string]*discordgo.ApplicationCommandInteractionDataOption{},
	}
	if interaction.Member != nil && interaction.Member.User != nil {
		request.User = interaction.Member.User.Username
	} else if interaction.User != nil {
		request.User = interaction.User.Username
	}
	for _, option := range interaction.ApplicationCommandData().Options {
		request.Options[option.Name] = option
	}
	return request
}

// String returns the option value, or "" when it was not given
func (r Request) String(name string) string {
	if option, ok := r.Options[name]; ok {
		return option.StringValue()
	}
	return ""
}

func (r Request) Int(name string) int64 {
	if option, ok := r.Options[name]; ok {
		return option.IntValue()
	}
	return 0
}

// Bool reports the option value and whether it was given
func (r Request) Bool(name string) (bool, bool) {
	if option, ok := r.Options[name]; ok {
		return option.BoolValue(), true
	}
	return false, false
}

// Command is a slash command. Handle returns the reply shown to the caller.
type Command struct {
	Name        string
	Description string
	Options     []*discordgo.ApplicationCommandOption
	// Failure is the reply when Handle fails with an error that is not user facing
	Failure string
	Handle  func(ctx context.Context, request Request) (string, error)
}

// ApplicationCommand restricts every command to guild administrators
func (c Command) ApplicationCommand() *discordgo.ApplicationCommand {
	permissions := int64(discordgo.PermissionAdministrator)
	dm := false
	return &discordgo.ApplicationCommand{
		Name:                     c.Name,
		Description:              c.Description,
		Options:                  c.Options,
		DefaultMemberPermissions: &permissions,
		DMPermission:             &dm,
	}
}

func stringOption(name, description string, required bool, choices ...string) *discordgo.ApplicationCommandOption {
	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
	for _, choice := range choices {
		option.Choices = append(option.Choices, &discordgo.ApplicationCommandOptionChoice{Name: choice, Value: choice})
	}
	return option
}
