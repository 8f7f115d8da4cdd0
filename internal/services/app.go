package services

import (
	"fmt"
	"time"

	"sensor-bot/internal/api"
	"sensor-bot/internal/config"
	"sensor-bot/internal/logging"
	"sensor-bot/internal/notification"
	"sensor-bot/internal/providers"
	"sensor-bot/internal/sensors"
	"sensor-bot/internal/state"
	"sensor-bot/internal/updates"
	"sensor-bot/pkg/telegram"
)

// longPollMargin is added to the getUpdates wait hint to form the HTTP timeout.
const longPollMargin = 15 * time.Second

// Build wires the sensor pipeline described by cfg into a Service.
func Build(cfg *config.Config, logger *logging.Logger) (*Service, error) {
	registry, err := updates.NewRegistry(cfg.Commands)
	if err != nil {
		return nil, fmt.Errorf("build command registry: %w", err)
	}
	sender, err := providers.NewTelegram(cfg.Bot.APIURL, cfg.Bot.Token, cfg.Bot.MaxSendsPerSecond, logger.Named("telegram"))
	if err != nil {
		return nil, err
	}

	snapshots := state.NewSnapshotChannel()
	alertsEnabled := bool(cfg.App.EnableAlerts)
	var alerts *state.AlertChannel
	if alertsEnabled {
		alerts = state.NewAlertChannel(state.AlertQueueSize)
	}

	runner := sensors.NewExecRunner(cfg.CommandTimeout(), bool(cfg.App.UseShell))
	poller := sensors.NewPoller(cfg.SensorSpecs(), runner, snapshots, alerts, cfg.RefreshInterval(), alertsEnabled, logger.Named("sensors"))

	client := telegram.NewClient(cfg.Bot.APIURL, cfg.Bot.Token, cfg.PollTimeout()+longPollMargin)
	listener := updates.NewListener(client, sender, registry, snapshots, updates.ListenerConfig{
		ChatID:       cfg.Bot.ChatID,
		AllowedUsers: cfg.Bot.AllowedUsers,
		Wait:         cfg.PollTimeout(),
	}, logger.Named("updates"))

	units := []Unit{
		{Name: "sensors", Run: poller.Run},
		{Name: "updates", Run: listener.Run},
	}

	var hub *api.Hub
	apiLogger := logger.Named("api")
	if cfg.API.Listen != "" {
		hub = api.NewHub(apiLogger)
	}

	if alertsEnabled {
		var observers []notification.Observer
		if hub != nil {
			observers = append(observers, hub)
		}
		dispatcher := notification.New(alerts, sender, cfg.Bot.ChatID, logger.Named("alerts"), observers...)
		units = append(units, Unit{Name: "alerts", Run: dispatcher.Run})
	}

	if hub != nil {
		router := api.NewRouter(apiLogger, api.NewHandler(snapshots, hub, apiLogger))
		units = append(units, Unit{Name: "api", Run: api.NewServer(cfg.API.Listen, router, hub, apiLogger).Run})
	}

	return New(logger.Named("coordinator"), units...), nil
}
