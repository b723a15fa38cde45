package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known price for a symbol.
type Quote struct {
	Symbol    string
	Price     float64
	State     State
	FetchedAt time.Time
}

// PendingQuote is the placeholder shown before the first poll completes.
func PendingQuote(symbol string) Quote {
	return Quote{Symbol: symbol, State: StateLoading}
}

// UnavailableQuote marks a failed fetch for symbol.
func UnavailableQuote(symbol string, at time.Time) Quote {
	return Quote{Symbol: symbol, State: StateUnavailable, FetchedAt: at}
}

// Display renders "$123.45", "N/A" or "Loading...".
func (q Quote) Display() string {
	switch q.State {
	case StateAvailable, StateStale:
		d := decimal.NewFromFloat(q.Price)
		if d.IsNegative() {
			return "-$" + d.Abs().StringFixed(2)
		}
		return "$" + d.StringFixed(2)
	case StateLoading:
		return LoadingText
	default:
		return UnavailableText
	}
}

func (q Quote) MarshalJSON() ([]byte, error) {
	type wire struct {
		Symbol    string     `json:"symbol"`
		Price     *float64   `json:"price"`
		State     State      `json:"state"`
		Text      string     `json:"text"`
		FetchedAt *time.Time `json:"fetched_at,omitempty"`
	}
	w := wire{Symbol: q.Symbol, State: q.State, Text: q.Display()}
	if q.State == StateAvailable || q.State == StateStale {
		p := q.Price
		w.Price = &p
	}
	if !q.FetchedAt.IsZero() {
		at := q.FetchedAt
		w.FetchedAt = &at
	}
	return json.Marshal(w)
}
