package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Immediate ephemeral answer to an interaction
type ResponseString struct {
	string
}

// Acknowledges an interaction; the answer follows with ResponseEdit
type ResponseDeferred struct{}

// Fills in the answer of a deferred interaction
type ResponseEdit struct {
	string
}

type Response interface {
	Send(discord *discordgo.Session, interaction *discordgo.Interaction) error
}

func (response ResponseString) Send(discord *discordgo.Session, interaction *discordgo.Interaction) error {
	return discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: response.string, Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (response ResponseDeferred) Send(discord *discordgo.Session, interaction *discordgo.Interaction) error {
	return discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (response ResponseEdit) Send(discord *discordgo.Session, interaction *discordgo.Interaction) error {
	content := response.string
	_, err := discord.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}
