package models

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AlertTimeFormat is the clock format used when an alert is delivered.
const AlertTimeFormat = "15:04:05"

// Alert is one triggered rule. Alerts are never merged.
type Alert struct {
	ID      uuid.UUID `json:"id"`
	Time    time.Time `json:"time"`
	Sensor  string    `json:"sensor"`
	Message string    `json:"message"`
}

// NewAlert builds the alert for a rule that matched value.
func NewAlert(spec SensorSpec, rule TriggerRule, value Value, now time.Time) Alert {
	return Alert{
		ID:      uuid.New(),
		Time:    now.Truncate(time.Second),
		Sensor:  spec.Name,
		Message: FormatAlertMessage(spec.Template(), spec.Name, rule, value),
	}
}

// FormatAlertMessage fills {sensor}, {trigger} and {value} in template and wraps it in bold.
func FormatAlertMessage(template, sensor string, rule TriggerRule, value Value) string {
	r := strings.NewReplacer(
		"{sensor}", html.EscapeString(sensor),
		"{trigger}", html.EscapeString(rule.String()),
		"{value}", html.EscapeString(value.String()),
	)
	return "<b>" + r.Replace(template) + "</b>"
}

// Render returns the text delivered to the chat.
func (a Alert) Render() string {
	return fmt.Sprintf("%s: %s\n%s", a.Time.Format(AlertTimeFormat), a.Sensor, a.Message)
}
