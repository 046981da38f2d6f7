package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"rustbot/internal/battlemetrics"
	"rustbot/internal/bot"
	"rustbot/internal/common"
	"rustbot/internal/config"
	"rustbot/internal/discord"
	"rustbot/internal/monitor"
	"rustbot/internal/server"
	"rustbot/internal/store"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		Long: `Connect to Discord, register the slash commands in the configured guild
and keep the monitoring message up to date until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil {
		return nil, err
	}
	return config.Load(viper.New(), envFile)
}

func runServe(cmd *cobra.Command, _ []string) error {

	// Configuration
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.MonitoringEnabled() {
		log.Warn().Msg("BATTLEMETRICS_TOKEN is not set, server monitoring is disabled")
	}

	// Storage, owned by a single process
	lock, err := store.LockDir(cfg.DataPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Error().Err(err).Msg("Could not release the data directory lock")
		}
	}()
	monitors, err := store.OpenMonitorStore(cfg.MonitorDataPath())
	if err != nil {
		return err
	}
	defer monitors.Close()
	cards, err := store.OpenInfoCardStore(cfg.EmbedsDataPath())
	if err != nil {
		return err
	}
	defer cards.Close()

	// Discord
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	messenger := discord.NewSessionMessenger(session)

	// Monitoring
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clock := common.NewClock()
	source := battlemetrics.NewClient(cfg.BattleMetricsURL, cfg.BattleMetricsToken, cfg.RequestTimeout, clock)
	coordinator := monitor.NewCoordinator(
		monitor.Config{Interval: cfg.Interval, InitialDelay: cfg.InitialDelay, RequestDelay: cfg.RequestDelay},
		source, monitors, messenger, bot.NewCardRenderer(clock),
		monitor.WithClock(clock), monitor.WithMetrics(monitor.NewMetrics(registry)),
	)

	board := bot.NewInfoBoard(cards, messenger)
	rustbot := bot.NewBot(session, cfg.ClientID, cfg.GuildID, coordinator,
		bot.NewMonitorCommands(monitors, coordinator, source.Enabled()).Commands(),
		bot.NewInfoCommands(cards, board, cfg.DefaultEmbedIcon, clock).Commands(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, rustbot, cfg.HTTPAddress, server.NewRouter(coordinator, registry))
}

type runner interface {
	Run(ctx context.Context) error
}

// serve runs the bot and, when an address is set, the HTTP server. The
// first one to fail stops the other.
func serve(ctx context.Context, bot runner, address string, router http.Handler) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return bot.Run(ctx)
	})
	if address != "" {
		group.Go(func() error {
			return server.Run(ctx, address, router)
		})
	}
	err := group.Wait()
	log.Info().Msg("Stopped")
	return err
}
