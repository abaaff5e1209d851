package config

import "fmt"

// InterestLevel is how eagerly the node wants gossip about a topic.
type InterestLevel uint8

const (
	// InterestLow asks peers for as little gossip as possible.
	InterestLow InterestLevel = iota + 1
	// InterestNormal is the default propagation eagerness.
	InterestNormal
	// InterestHigh asks to be among the first to receive gossip.
	InterestHigh
)

const interestHint = "allowed values: low, normal, high"

// ParseInterestLevel converts the document spelling of a level.
func ParseInterestLevel(s string) (InterestLevel, error) {
	switch s {
	case "low":
		return InterestLow, nil
	case "normal":
		return InterestNormal, nil
	case "high":
		return InterestHigh, nil
	default:
		return 0, fmt.Errorf("unknown interest level %q", s)
	}
}

// Valid reports whether l is one of the three recognized levels.
func (l InterestLevel) Valid() bool {
	return l >= InterestLow && l <= InterestHigh
}

func (l InterestLevel) String() string {
	switch l {
	case InterestLow:
		return "low"
	case InterestNormal:
		return "normal"
	case InterestHigh:
		return "high"
	default:
		return fmt.Sprintf("InterestLevel(%d)", uint8(l))
	}
}

// MarshalYAML implements yaml.Marshaler.
func (l InterestLevel) MarshalYAML() (interface{}, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", l)
	}
	return l.String(), nil
}
