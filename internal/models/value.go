package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind is the declared type of a sensor reading.
type ValueKind int

const (
	KindUnavailable ValueKind = iota
	KindString
	KindInteger
	KindFloat
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "unavailable"
	}
}

// ParseValueKind accepts the type names used in the config file.
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "str", "string":
		return KindString, nil
	case "int", "integer":
		return KindInteger, nil
	case "float":
		return KindFloat, nil
	default:
		return KindUnavailable, fmt.Errorf("unknown sensor type %q", s)
	}
}

// Value is a tagged sensor reading. The zero Value is unavailable.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

func Unavailable() Value { return Value{} }

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

func IntValue(i int64) Value { return Value{Kind: KindInteger, Int: i} }

func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Available reports whether the reading holds a real value.
func (v Value) Available() bool { return v.Kind != KindUnavailable }

func (v Value) numeric() bool { return v.Kind == KindInteger || v.Kind == KindFloat }

// Coerce converts command output to the declared kind. Empty text never coerces.
func Coerce(kind ValueKind, text string) (Value, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unavailable(), fmt.Errorf("empty output")
	}
	switch kind {
	case KindString:
		return StringValue(text), nil
	case KindInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Unavailable(), fmt.Errorf("parse int %q: %w", text, err)
		}
		return IntValue(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Unavailable(), fmt.Errorf("parse float %q: %w", text, err)
		}
		return FloatValue(f), nil
	default:
		return Unavailable(), fmt.Errorf("cannot coerce to %s", kind)
	}
}

// String renders the value for messages. Floats always carry a decimal point.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	default:
		return "unavailable"
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Compare orders v against other: -1, 0 or 1. ok is false when the kinds cannot be compared.
func (v Value) Compare(other Value) (cmp int, ok bool) {
	switch {
	case v.Kind == KindString && other.Kind == KindString:
		return strings.Compare(v.Str, other.Str), true
	case v.Kind == KindInteger && other.Kind == KindInteger:
		return compareOrdered(v.Int, other.Int), true
	case v.numeric() && other.numeric():
		a, b := v.asFloat(), other.asFloat()
		if math.IsNaN(a) || math.IsNaN(b) {
			return 0, false
		}
		return compareOrdered(a, b), true
	default:
		return 0, false
	}
}

func (v Value) asFloat() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}
	return v.Float
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MarshalJSON emits the reading as a plain JSON value, or null when unavailable.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindInteger:
		return json.Marshal(v.Int)
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return json.Marshal(formatFloat(v.Float))
		}
		return json.Marshal(v.Float)
	default:
		return []byte("null"), nil
	}
}
