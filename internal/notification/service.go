package notification

import (
	"context"

	"sensor-bot/internal/logging"
	"sensor-bot/internal/metrics"
	"sensor-bot/internal/models"
	"sensor-bot/internal/providers"
	"sensor-bot/internal/state"
)

// Observer is told about every alert after its delivery attempt.
type Observer interface {
	Broadcast(alert models.Alert)
}

// Service drains the alert channel and delivers alerts one at a time to the configured chat.
type Service struct {
	alerts    *state.AlertChannel
	sender    providers.Sender
	chatID    int64
	observers []Observer
	logger    *logging.Logger
}

// New constructs a notification Service.
func New(alerts *state.AlertChannel, sender providers.Sender, chatID int64, logger *logging.Logger, observers ...Observer) *Service {
	return &Service{
		alerts:    alerts,
		sender:    sender,
		chatID:    chatID,
		observers: observers,
		logger:    logger,
	}
}

// Run delivers alerts until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Infof("Alert dispatcher started")
	for {
		alert, err := s.alerts.Dequeue(ctx)
		if err != nil {
			s.logger.Infof("Alert dispatcher stopped")
			return nil
		}
		metrics.AlertQueueSize.Set(float64(s.alerts.Len()))
		s.handleAlert(ctx, alert)
	}
}

// handleAlert sends one alert. A failed delivery is logged and the alert is dropped.
func (s *Service) handleAlert(ctx context.Context, alert models.Alert) {
	final := "success"
	if !s.sender.Send(ctx, s.chatID, alert.Render()) {
		final = "failed"
	}
	metrics.AlertsDeliveredTotal.WithLabelValues(final).Inc()
	s.logger.Infof("Alert %s for %s dispatched: %s", alert.ID, alert.Sensor, final)

	for _, o := range s.observers {
		o.Broadcast(alert)
	}
}
