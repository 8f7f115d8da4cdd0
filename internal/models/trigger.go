package models

import (
	"fmt"
	"strings"
)

// Operator is a trigger comparison.
type Operator string

const (
	OpGE Operator = "ge"
	OpLE Operator = "le"
	OpGT Operator = "gt"
	OpLT Operator = "lt"
	OpEQ Operator = "eq"
	OpNE Operator = "ne"
)

func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpGE, OpLE, OpGT, OpLT, OpEQ, OpNE:
		return op, nil
	default:
		return "", fmt.Errorf("unknown trigger operator %q", s)
	}
}

// TriggerRule fires when a reading compares to Threshold according to Op.
type TriggerRule struct {
	Op        Operator
	Threshold Value
}

// Matches reports whether value satisfies the rule. Unavailable or mismatched kinds never match.
func (r TriggerRule) Matches(value Value) bool {
	if !value.Available() {
		return false
	}
	cmp, ok := value.Compare(r.Threshold)
	if !ok {
		return false
	}
	return evaluateCondition(r.Op, cmp)
}

// String renders the rule as "op threshold", e.g. "gt 80.0".
func (r TriggerRule) String() string {
	return fmt.Sprintf("%s %s", r.Op, r.Threshold)
}

func evaluateCondition(op Operator, cmp int) bool {
	switch op {
	case OpEQ:
		return cmp == 0
	case OpNE:
		return cmp != 0
	case OpGT:
		return cmp > 0
	case OpGE:
		return cmp >= 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	default:
		return false
	}
}
