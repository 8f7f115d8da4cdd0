package sensors

import (
	"context"
	"time"

	"sensor-bot/internal/logging"
	"sensor-bot/internal/metrics"
	"sensor-bot/internal/models"
	"sensor-bot/internal/state"
	"sensor-bot/internal/utils"
)

// Poller reads every sensor once per cycle, publishes the snapshot and
// turns matching trigger rules into alerts.
type Poller struct {
	specs         []models.SensorSpec
	names         []string
	runner        CommandRunner
	snapshots     *state.SnapshotChannel
	alerts        *state.AlertChannel
	interval      time.Duration
	alertsEnabled bool
	logger        *logging.Logger
	now           func() time.Time
}

// NewPoller constructs a Poller. alerts may be nil when alerting is disabled.
func NewPoller(specs []models.SensorSpec, runner CommandRunner, snapshots *state.SnapshotChannel, alerts *state.AlertChannel, interval time.Duration, alertsEnabled bool, logger *logging.Logger) *Poller {
	return &Poller{
		specs:         specs,
		names:         models.SensorNames(specs),
		runner:        runner,
		snapshots:     snapshots,
		alerts:        alerts,
		interval:      interval,
		alertsEnabled: alertsEnabled && alerts != nil,
		logger:        logger,
		now:           time.Now,
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Infof("Sensor poller started: %d sensors, interval %s, alerts enabled: %t", len(p.specs), p.interval, p.alertsEnabled)
	for {
		snap := p.Poll(ctx)
		if ctx.Err() != nil {
			break
		}
		p.snapshots.Publish(snap)

		if p.alertsEnabled {
			if err := p.Evaluate(ctx, snap); err != nil {
				break
			}
		}

		if err := utils.Sleep(ctx, p.interval); err != nil {
			break
		}
	}
	p.logger.Infof("Sensor poller stopped")
	return nil
}

// Poll runs every sensor command once and returns the resulting snapshot.
// A failing sensor is reported as unavailable and does not affect the others.
func (p *Poller) Poll(ctx context.Context) models.Snapshot {
	start := time.Now()
	snap := models.NewSnapshot(p.names, p.now())
	for _, spec := range p.specs {
		if ctx.Err() != nil {
			break
		}
		snap.Values[spec.Name] = p.read(ctx, spec)
	}
	metrics.PollCycleDuration.Observe(time.Since(start).Seconds())
	return snap
}

func (p *Poller) read(ctx context.Context, spec models.SensorSpec) models.Value {
	out, err := p.runner.Run(ctx, spec.Command)
	if err != nil {
		p.logger.Errorf("Sensor %s: %v", spec.Name, err)
		metrics.SensorReadsTotal.WithLabelValues(spec.Name, "exec_error").Inc()
		return models.Unavailable()
	}

	value, err := models.Coerce(spec.Kind, out)
	if err != nil {
		p.logger.Warnf("Sensor %s: cannot read %s value: %v", spec.Name, spec.Kind, err)
		metrics.SensorReadsTotal.WithLabelValues(spec.Name, "coerce_error").Inc()
		return models.Unavailable()
	}

	metrics.SensorReadsTotal.WithLabelValues(spec.Name, "ok").Inc()
	switch value.Kind {
	case models.KindInteger:
		metrics.SensorValue.WithLabelValues(spec.Name).Set(float64(value.Int))
	case models.KindFloat:
		metrics.SensorValue.WithLabelValues(spec.Name).Set(value.Float)
	}
	p.logger.Debugf("Sensor %s = %s", spec.Name, value)
	return value
}

// Evaluate checks every rule of every available reading and enqueues an alert per match.
// It only fails when ctx is cancelled while waiting for queue space.
func (p *Poller) Evaluate(ctx context.Context, snap models.Snapshot) error {
	for _, spec := range p.specs {
		value := snap.Get(spec.Name)
		if !value.Available() {
			continue
		}
		for _, rule := range spec.Triggers {
			if !rule.Matches(value) {
				continue
			}
			alert := models.NewAlert(spec, rule, value, p.now())
			if err := p.alerts.Enqueue(ctx, alert); err != nil {
				p.logger.Warnf("Alert for %s not queued: %v", spec.Name, err)
				return err
			}
			metrics.AlertsEnqueuedTotal.WithLabelValues(spec.Name).Inc()
			metrics.AlertQueueSize.Set(float64(p.alerts.Len()))
			p.logger.Infof("Queued alert: id=%s sensor=%s trigger=%s value=%s", alert.ID, spec.Name, rule, value)
		}
	}
	return nil
}
