package models

import (
	"encoding/json"
	"fmt"
)

// State tells the display whether a value has been fetched, kept from an
// earlier poll, or is explicitly unavailable.
type State int

const (
	StateLoading State = iota // never fetched
	StateAvailable
	StateStale
	StateUnavailable
)

var stateNames = [...]string{"loading", "available", "stale", "unavailable"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if n == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

const (
	LoadingText     = "Loading..."
	UnavailableText = "N/A"
)

// Field is one display value of the macro panel.
type Field struct {
	Value string `json:"value,omitempty"`
	State State  `json:"state"`
}

// Display renders the field or its placeholder.
func (f Field) Display() string {
	switch f.State {
	case StateAvailable, StateStale:
		return f.Value
	case StateLoading:
		return LoadingText
	default:
		return UnavailableText
	}
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value string `json:"value,omitempty"`
		State State  `json:"state"`
		Text  string `json:"text"`
	}{f.Value, f.State, f.Display()})
}
