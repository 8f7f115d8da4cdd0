package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"sensor-bot/internal/models"
)

// Flag is a boolean that also accepts true/on/enable/yes strings.
type Flag bool

func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar flag", node.Line)
	}
	*f = Flag(IsEnabled(node.Value))
	return nil
}

// IsEnabled reports whether s is one of true, on, enable or yes.
func IsEnabled(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "enable", "yes":
		return true
	default:
		return false
	}
}

// Sensor is one entry of the sensors mapping.
type Sensor struct {
	Name string
	spec models.SensorSpec
}

// Sensors keeps the file order of the sensors mapping.
type Sensors []Sensor

type rawSensor struct {
	Cmd       rawCommand `yaml:"cmd"`
	Type      string     `yaml:"type"`
	Trigger   yaml.Node  `yaml:"trigger"`
	AlertText string     `yaml:"alert_text"`
}

type rawCommand models.Command

func (c *rawCommand) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Line = node.Value
		return nil
	case yaml.SequenceNode:
		return node.Decode(&c.Args)
	default:
		return fmt.Errorf("line %d: cmd must be a string or a list", node.Line)
	}
}

func (s *Sensors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: sensors must be a mapping", node.Line)
	}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if seen[name] {
			return fmt.Errorf("line %d: duplicate sensor %q", node.Content[i].Line, name)
		}
		seen[name] = true

		var raw rawSensor
		if err := node.Content[i+1].Decode(&raw); err != nil {
			return fmt.Errorf("sensor %s: %w", name, err)
		}
		spec, err := raw.toSpec(name)
		if err != nil {
			return fmt.Errorf("sensor %s: %w", name, err)
		}
		*s = append(*s, Sensor{Name: name, spec: spec})
	}
	return nil
}

func (r rawSensor) toSpec(name string) (models.SensorSpec, error) {
	cmd := models.Command(r.Cmd)
	if cmd.Empty() {
		return models.SensorSpec{}, fmt.Errorf("cmd is required")
	}
	kind, err := models.ParseValueKind(r.Type)
	if err != nil {
		return models.SensorSpec{}, err
	}
	triggers, err := parseTriggers(&r.Trigger, kind)
	if err != nil {
		return models.SensorSpec{}, err
	}
	return models.SensorSpec{
		Name:      name,
		Command:   cmd,
		Kind:      kind,
		Triggers:  triggers,
		AlertText: r.AlertText,
	}, nil
}

// parseTriggers reads an op: threshold mapping in file order.
func parseTriggers(node *yaml.Node, kind models.ValueKind) ([]models.TriggerRule, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: trigger must be a mapping of operator to threshold", node.Line)
	}
	rules := make([]models.TriggerRule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		op, err := models.ParseOperator(node.Content[i].Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Content[i].Line, err)
		}
		valueNode := node.Content[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: threshold for %s must be a scalar", valueNode.Line, op)
		}
		threshold, err := models.Coerce(kind, valueNode.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: threshold for %s: %w", valueNode.Line, op, err)
		}
		rules = append(rules, models.TriggerRule{Op: op, Threshold: threshold})
	}
	return rules, nil
}
