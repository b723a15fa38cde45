package models

import "time"

// ReportEntry is one past lookup in the session log.
type ReportEntry struct {
	Symbol      string    `json:"symbol"`
	SubmittedAt string    `json:"submitted_at"` // "HH:MM:SS"
	At          time.Time `json:"-"`
}

// SymbolRequest is the body of submit and select calls.
type SymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,max=16"`
}
