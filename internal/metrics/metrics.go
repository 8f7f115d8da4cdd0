package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sensor metrics
	SensorReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorbot_sensor_reads_total",
			Help: "Total number of sensor command runs",
		},
		[]string{"sensor", "result"}, // result: ok, exec_error, coerce_error
	)

	SensorValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensorbot_sensor_value",
			Help: "Last numeric reading of each sensor",
		},
		[]string{"sensor"},
	)

	PollCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sensorbot_poll_cycle_duration_seconds",
			Help:    "Time spent running all sensor commands in one cycle",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Alert metrics
	AlertsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorbot_alerts_enqueued_total",
			Help: "Total number of alerts produced by trigger rules",
		},
		[]string{"sensor"},
	)

	AlertQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorbot_alert_queue_size",
			Help: "Alerts waiting for delivery",
		},
	)

	AlertsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorbot_alerts_delivered_total",
			Help: "Total number of alert delivery attempts",
		},
		[]string{"status"}, // status: success, failed
	)

	// Bot API metrics
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorbot_messages_sent_total",
			Help: "Total number of sendMessage calls",
		},
		[]string{"status"},
	)

	UpdatesPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorbot_updates_polls_total",
			Help: "Total number of getUpdates requests by outcome",
		},
		[]string{"result"}, // result: ok, unauthorized, server_error, http_error, transport_error, malformed, skipped
	)

	UpdatesOffset = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensorbot_updates_offset",
			Help: "Current getUpdates offset",
		},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensorbot_commands_total",
			Help: "Total number of handled chat commands",
		},
		[]string{"command"},
	)
)
