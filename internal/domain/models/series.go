package models

import (
	"fmt"
	"time"
)

// Point is one chart sample; Time is unix seconds.
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// Series is strictly increasing by Time with no duplicate timestamps.
type Series struct {
	Symbol string  `json:"symbol"`
	Points []Point `json:"points"`
}

// Closes returns the values in time order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

type ChartState int

const (
	ChartIdle ChartState = iota
	ChartFetching
	ChartReady
	ChartFailed
)

var chartStateNames = [...]string{"idle", "fetching", "ready", "failed"}

func (s ChartState) String() string {
	if s < 0 || int(s) >= len(chartStateNames) {
		return "unknown"
	}
	return chartStateNames[s]
}

func (s ChartState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ChartState) UnmarshalText(b []byte) error {
	for i, n := range chartStateNames {
		if n == string(b) {
			*s = ChartState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown chart state %q", b)
}

// ChartView is the chart panel state for the selected ticker.
type ChartView struct {
	Symbol    string     `json:"symbol"`
	State     ChartState `json:"state"`
	Points    []Point    `json:"points"`
	RSI       []float64  `json:"rsi,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
