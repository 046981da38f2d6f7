package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	REPLY_NOT_IN_GUILD = "This command can only be used within a server."
	REPLY_NOT_ADMIN    = "❌ You must have Administrator permissions to use this command."
	REPLY_UNKNOWN      = "❌ Unknown command '%s'."
	REPLY_UNEXPECTED   = "❌ An unexpected error occurred while executing this command. Please try again later or contact the administrator."

	connectAttempts = 5
)

// Lifecycle is the part of the coordinator the bot drives.
type Lifecycle interface {
	Start(ctx context.Context)
	Stop()
}

type Bot struct {
	session     *discordgo.Session
	clientID    string
	guildID     string
	coordinator Lifecycle
	commands    map[string]Command
	ready       sync.Once
	ctx         context.Context
	logger      zerolog.Logger
}

func NewBot(session *discordgo.Session, clientID string, guildID string, coordinator Lifecycle, groups ...[]Command) *Bot {
	bot := &Bot{
		session:     session,
		clientID:    clientID,
		guildID:     guildID,
		coordinator: coordinator,
		commands:    map[string]Command{},
		ctx:         context.Background(),
		logger:      log.With().Str("service", "Bot").Logger(),
	}
	for _, group := range groups {
		for _, command := range group {
			bot.commands[command.Name] = command
		}
	}
	return bot
}

// Run connects to Discord and serves interactions until ctx is done
func (bot *Bot) Run(ctx context.Context) error {

	bot.ctx = ctx
	bot.session.AddHandler(bot.onReady)
	bot.session.AddHandler(bot.onInteraction)

	// Open session
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, bot.session.Open()
	}, bot.retryOptions("open the Discord session")...)
	if err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer func() {
		bot.coordinator.Stop()
		if err := bot.session.Close(); err != nil {
			bot.logger.Error().Err(err).Msg("Could not close the Discord session")
		}
		bot.logger.Info().Msg("Discord session closed")
	}()

	// Register commands in the guild
	_, err = backoff.Retry(ctx, func() ([]*discordgo.ApplicationCommand, error) {
		return bot.session.ApplicationCommandBulkOverwrite(bot.clientID, bot.guildID, bot.applicationCommands(), discordgo.WithContext(ctx))
	}, bot.retryOptions("register the slash commands")...)
	if err != nil {
		return fmt.Errorf("could not register commands in guild %s: %w", bot.guildID, err)
	}
	bot.logger.Info().Msg(fmt.Sprintf("Registered %d commands in guild %s", len(bot.commands), bot.guildID))

	<-ctx.Done()
	bot.logger.Info().Msg("Shutting down")
	return nil
}

func (bot *Bot) retryOptions(what string) []backoff.RetryOption {
	return []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(connectAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			bot.logger.Warn().Err(err).Msg(fmt.Sprintf("Could not %s, retrying in %s", what, next))
		}),
	}
}

func (bot *Bot) applicationCommands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{}
	for _, command := range bot.commands {
		commands = append(commands, command.ApplicationCommand())
	}
	return commands
}

func (bot *Bot) onReady(discord *discordgo.Session, ready *discordgo.Ready) {
	bot.logger.Info().Msg(fmt.Sprintf("Logged in as %s", ready.User.Username))
	if err := discord.UpdateWatchStatus(0, "Rust servers"); err != nil {
		bot.logger.Warn().Err(err).Msg("Could not set the presence")
	}
	// Reconnects fire Ready again
	bot.ready.Do(func() {
		bot.coordinator.Start(bot.ctx)
	})
}

func (bot *Bot) onInteraction(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {

	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	command, rejection, ok := bot.admit(interaction)
	if !ok {
		if err := (ResponseString{rejection}).Send(discord, interaction.Interaction); err != nil {
			bot.logger.Error().Err(err).Msg("Could not reply to the interaction")
		}
		return
	}

	if err := (ResponseDeferred{}).Send(discord, interaction.Interaction); err != nil {
		bot.logger.Error().Err(err).Msg(fmt.Sprintf("Could not defer /%s", command.Name))
		return
	}
	reply := bot.execute(bot.ctx, command, NewRequest(interaction))
	if err := (ResponseEdit{reply}).Send(discord, interaction.Interaction); err != nil {
		bot.logger.Error().Err(err).Msg(fmt.Sprintf("Could not send the reply of /%s", command.Name))
	}
}

// admit returns the command an interaction asks for, or the reply rejecting it
func (bot *Bot) admit(interaction *discordgo.InteractionCreate) (Command, string, bool) {

	if interaction.GuildID == "" || interaction.Member == nil {
		return Command{}, REPLY_NOT_IN_GUILD, false
	}

	name := interaction.ApplicationCommandData().Name
	command, ok := bot.commands[name]
	if !ok {
		bot.logger.Warn().Msg(fmt.Sprintf("Unknown command /%s", name))
		return Command{}, fmt.Sprintf(REPLY_UNKNOWN, name), false
	}

	if interaction.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		user := ""
		if interaction.Member.User != nil {
			user = interaction.Member.User.Username
		}
		bot.logger.Warn().Msg(fmt.Sprintf("User %s tried /%s without Administrator permissions", user, name))
		return Command{}, REPLY_NOT_ADMIN, false
	}

	return command, "", true
}

// execute runs a command and turns its outcome into the reply text
func (bot *Bot) execute(ctx context.Context, command Command, request Request) (reply string) {

	defer func() {
		if r := recover(); r != nil {
			bot.logger.Error().Msg(fmt.Sprintf("Panic in /%s: %v\n%s", command.Name, r, debug.Stack()))
			reply = REPLY_UNEXPECTED
		}
	}()

	bot.logger.Info().Msg(fmt.Sprintf("User %s runs /%s in channel %s", request.User, command.Name, request.ChannelID))
	reply, err := command.Handle(ctx, request)
	if err != nil {
		fallback := command.Failure
		if fallback == "" {
			fallback = REPLY_UNEXPECTED
		}
		bot.logger.Error().Err(err).Msg(fmt.Sprintf("/%s failed", command.Name))
		return ReplyText(err, fallback)
	}
	return reply
}
