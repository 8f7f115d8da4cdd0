package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"sensor-bot/internal/config"
	"sensor-bot/internal/logging"
	"sensor-bot/internal/services"
)

type options struct {
	configPath    string
	disableAlerts bool
	debug         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "sensor-bot",
		Short:         "Poll local sensors and report them to a Telegram chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	cmd.Flags().BoolVarP(&opts.disableAlerts, "disable-alerts", "a", false, "do not evaluate triggers or send alerts")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "force debug logging")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	// Load config
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return err
	}
	if opts.disableAlerts {
		cfg.App.EnableAlerts = false
	}
	if opts.debug {
		cfg.App.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.App.LogDir, cfg.App.LogLevel)
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		return err
	}
	defer func() {
		if err := logger.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}()
	mainLogger := logger.Named("main")

	if mainLogger.Level() != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := services.Build(cfg, logger)
	if err != nil {
		mainLogger.Errorf("Failed to build service: %v", err)
		return err
	}

	mainLogger.Infof("Starting with %d sensors, alerts enabled: %t", len(cfg.Sensors), bool(cfg.App.EnableAlerts))
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		mainLogger.Errorf("Stopped with error: %v", err)
		return fmt.Errorf("sensor-bot: %w", err)
	}
	mainLogger.Infof("Exiting")
	return nil
}
