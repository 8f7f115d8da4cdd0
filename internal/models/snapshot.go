package models

import "time"

// Snapshot holds one reading per configured sensor, taken in a single poll cycle.
type Snapshot struct {
	TakenAt time.Time
	Names   []string
	Values  map[string]Value
}

// NewSnapshot returns a snapshot with every sensor set to unavailable.
func NewSnapshot(names []string, takenAt time.Time) Snapshot {
	values := make(map[string]Value, len(names))
	for _, n := range names {
		values[n] = Unavailable()
	}
	return Snapshot{TakenAt: takenAt, Names: names, Values: values}
}

// Get returns the reading for name, or unavailable for an unknown sensor.
func (s Snapshot) Get(name string) Value {
	return s.Values[name]
}

// Has reports whether name is a sensor of this snapshot.
func (s Snapshot) Has(name string) bool {
	_, ok := s.Values[name]
	return ok
}

// SensorReading is the JSON view of one entry.
type SensorReading struct {
	Name      string `json:"name"`
	Value     Value  `json:"value"`
	Available bool   `json:"available"`
}

// Readings returns the snapshot entries in config order.
func (s Snapshot) Readings() []SensorReading {
	out := make([]SensorReading, 0, len(s.Names))
	for _, n := range s.Names {
		v := s.Values[n]
		out = append(out, SensorReading{Name: n, Value: v, Available: v.Available()})
	}
	return out
}
