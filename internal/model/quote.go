package model

import "github.com/shopspring/decimal"

// QuoteRequest carries one symbol to price, pre-classified by the caller.
// The price service partitions by the declared Type and never re-classifies.
type QuoteRequest struct {
	Symbol string
	Name   string
	Type   AssetType
}

type AllocationSlice struct {
	Type    AssetType       `json:"type"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

type AssetSummary struct {
	TotalValue  decimal.Decimal   `json:"totalValue"`
	AssetCount  int               `json:"assetCount"`
	Allocations []AllocationSlice `json:"allocations"`
}

type TradeStats struct {
	OpenCount        int             `json:"openCount"`
	ClosedCount      int             `json:"closedCount"`
	ExpiredCount     int             `json:"expiredCount"`
	TotalPremium     decimal.Decimal `json:"totalPremium"`
	ActiveCollateral decimal.Decimal `json:"activeCollateral"`
}
