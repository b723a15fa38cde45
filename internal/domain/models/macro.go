package models

import "time"

// MacroReading is the decoded /macro payload. Empty strings mean the field was absent.
type MacroReading struct {
	DXY          string
	TenYearYield string
	Inflation    string
	FedRate      string
}

// SentimentReading is the decoded /fear-greed payload.
type SentimentReading struct {
	Score int
}

// MacroSnapshot merges the macro and sentiment calls.
// Fresh is set once both calls of the same refresh round have succeeded.
type MacroSnapshot struct {
	DXY          Field     `json:"dxy"`
	TenYearYield Field     `json:"ten_year_yield"`
	Inflation    Field     `json:"inflation"`
	FedRate      Field     `json:"fed_rate"`
	FearGreed    Sentiment `json:"fear_greed"`
	Fresh        bool      `json:"fresh"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PendingMacro is the snapshot before any refresh.
func PendingMacro() MacroSnapshot {
	pending := Field{State: StateLoading}
	return MacroSnapshot{
		DXY:          pending,
		TenYearYield: pending,
		Inflation:    pending,
		FedRate:      pending,
		FearGreed:    Sentiment{State: StateLoading},
	}
}

// MarketLine is one row of the market summary.
type MarketLine struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Quote *Quote `json:"quote,omitempty"`
	Text  string `json:"text"`
}

// SummaryView is the market summary panel state.
type SummaryView struct {
	Markets []MarketLine  `json:"markets"`
	Macro   MacroSnapshot `json:"macro"`
}
