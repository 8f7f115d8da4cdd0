package state

import (
	"context"

	"sensor-bot/internal/models"
)

// AlertQueueSize is the capacity of the alert channel.
const AlertQueueSize = 1024

// AlertChannel is a bounded FIFO of alerts. Producers block when it is full.
type AlertChannel struct {
	alerts chan models.Alert
}

func NewAlertChannel(size int) *AlertChannel {
	if size <= 0 {
		size = AlertQueueSize
	}
	return &AlertChannel{alerts: make(chan models.Alert, size)}
}

// Enqueue appends alert, waiting for space. It returns ctx.Err() if cancelled first.
func (c *AlertChannel) Enqueue(ctx context.Context, alert models.Alert) error {
	select {
	case c.alerts <- alert:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue removes the oldest alert, waiting for one. It returns ctx.Err() if cancelled first.
func (c *AlertChannel) Dequeue(ctx context.Context) (models.Alert, error) {
	select {
	case alert := <-c.alerts:
		return alert, nil
	case <-ctx.Done():
		return models.Alert{}, ctx.Err()
	}
}

func (c *AlertChannel) Len() int { return len(c.alerts) }

func (c *AlertChannel) Cap() int { return cap(c.alerts) }
