package model

import "time"

// CashSource identifies where a cash balance figure came from.
type CashSource string

// Cash sources.
const (
	CashSourceManual CashSource = "manual"
	CashSourceOFX    CashSource = "ofx"
	CashSourcePlaid  CashSource = "plaid"
	CashSourceImport CashSource = "import"
)

// CashBalance is the money available for the next payment run.
// Negative balances are allowed.
type CashBalance struct {
	RecordedAt time.Time
	Source     CashSource
	Reference  string // account or file the figure was read from
	Amount     float64
}
