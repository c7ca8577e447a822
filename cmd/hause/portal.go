package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/systemhause/hause/internal/config"
	"github.com/systemhause/hause/internal/notify"
	"github.com/systemhause/hause/internal/notify/discord"
	"github.com/systemhause/hause/internal/notify/slack"
	"github.com/systemhause/hause/internal/portal"
)

func newPortalCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Start the portal API server",
		Long:  "Launches the builder-facing JSON API and the daily digest cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPortal(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "hause.yaml", "path to SystemHause config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}

func runPortal(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Portal.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return portal.Start(ctx, portal.StartOpts{
		DB:         gormDB,
		Port:       port,
		DigestCron: cfg.Portal.DigestCron,
		Notifiers:  notifiersFromConfig(cfg),
		Out:        cmd.OutOrStdout(),
	})
}

// notifiersFromConfig builds the notifier set from config. Misconfigured
// channels are logged and skipped so one bad token does not block the portal.
func notifiersFromConfig(cfg *config.Config) []notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Notify.Command != "" {
		notifiers = append(notifiers, &notify.CommandNotifier{Command: cfg.Notify.Command})
	}

	if cfg.Notify.Slack.BotToken != "" {
		n, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			log.Printf("portal: slack notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, n)
		}
	}

	if cfg.Notify.Discord.BotToken != "" {
		n, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.Channel,
		})
		if err != nil {
			log.Printf("portal: discord notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, n)
		}
	}

	return notifiers
}
