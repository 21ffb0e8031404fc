package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type AssetType string

const (
	AssetTypeStock  AssetType = "STOCK"
	AssetTypeCrypto AssetType = "CRYPTO"
	AssetTypeCash   AssetType = "CASH"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeStock, AssetTypeCrypto, AssetTypeCash:
		return true
	}
	return false
}

// Asset is a single holding. Dates are kept as strings to stay
// byte-compatible with backups written by the web client.
type Asset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Ticker       string    `json:"ticker,omitempty"`
	Type         AssetType `json:"type"`
	Quantity     float64   `json:"quantity"`
	CurrentPrice float64   `json:"currentPrice"`
	Currency     string    `json:"currency"`
	LastUpdated  string    `json:"lastUpdated,omitempty"`
}

// DisplayTicker falls back to the uppercased name when no ticker was entered.
func (a Asset) DisplayTicker() string {
	if a.Ticker != "" {
		return a.Ticker
	}
	return strings.ToUpper(a.Name)
}

func (a Asset) Value() decimal.Decimal {
	return decimal.NewFromFloat(a.Quantity).Mul(decimal.NewFromFloat(a.CurrentPrice))
}
