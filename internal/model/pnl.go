package model

import "github.com/shopspring/decimal"

// PnLEntry is a manually recorded profit/loss amount for one month.
type PnLEntry struct {
	ID     string  `json:"id"`
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes,omitempty"`
}

// MonthlyPnL combines manual entries with option premiums realized in the
// same month.
type MonthlyPnL struct {
	Month   string          `json:"month"`
	Manual  decimal.Decimal `json:"manual"`
	Options decimal.Decimal `json:"options"`
	Total   decimal.Decimal `json:"total"`
}
