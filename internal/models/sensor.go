package models

import "strings"

// DefaultAlertText is used when a sensor has no alert_text.
const DefaultAlertText = "{sensor}: {value} {trigger}"

// Command is a sensor command: either a single command line or an argument list.
type Command struct {
	Line string
	Args []string
}

func (c Command) Empty() bool {
	return strings.TrimSpace(c.Line) == "" && len(c.Args) == 0
}

func (c Command) String() string {
	if len(c.Args) > 0 {
		return strings.Join(c.Args, " ")
	}
	return c.Line
}

// SensorSpec is the static definition of one sensor.
type SensorSpec struct {
	Name      string
	Command   Command
	Kind      ValueKind
	Triggers  []TriggerRule
	AlertText string
}

// Template returns the alert template, falling back to DefaultAlertText.
func (s SensorSpec) Template() string {
	if s.AlertText == "" {
		return DefaultAlertText
	}
	return s.AlertText
}

// SensorNames lists the names of specs in order.
func SensorNames(specs []SensorSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
