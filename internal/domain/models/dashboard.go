package models

import "time"

// Dashboard is the immutable per-render snapshot handed to the display shell.
type Dashboard struct {
	Tickers        []Quote       `json:"tickers"`
	Summary        SummaryView   `json:"summary"`
	News           []NewsItem    `json:"news"`
	Chart          ChartView     `json:"chart"`
	Reports        []ReportEntry `json:"reports"`
	Active         string        `json:"active"`
	Loading        bool          `json:"loading"`
	LoadingMessage string        `json:"loading_message,omitempty"`
	GeneratedAt    time.Time     `json:"generated_at"`
}
