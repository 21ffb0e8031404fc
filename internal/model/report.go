package model

import "github.com/shopspring/decimal"

// TradeInsight is an option trade decorated with eagerly recomputed
// derived values.
type TradeInsight struct {
	OptionTrade
	ROI      decimal.Decimal `json:"roi"`
	Distance *StrikeDistance `json:"distance,omitempty"`
}

// Report is everything the xlsx export, and nothing else, needs.
type Report struct {
	GeneratedAt string
	Assets      []Asset
	TotalValue  decimal.Decimal
	Trades      []TradeInsight
	Monthly     []MonthlyPnL
}
