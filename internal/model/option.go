package model

import "github.com/shopspring/decimal"

type TradeType string

const (
	TradeTypeShortPut TradeType = "SHORT_PUT"
	TradeTypeLongCall TradeType = "LONG_CALL"
)

func (t TradeType) Valid() bool {
	return t == TradeTypeShortPut || t == TradeTypeLongCall
}

type TradeStatus string

const (
	TradeStatusOpen    TradeStatus = "OPEN"
	TradeStatusClosed  TradeStatus = "CLOSED"
	TradeStatusExpired TradeStatus = "EXPIRED"
)

func (s TradeStatus) Valid() bool {
	switch s {
	case TradeStatusOpen, TradeStatusClosed, TradeStatusExpired:
		return true
	}
	return false
}

type OptionTrade struct {
	ID               string      `json:"id"`
	Ticker           string      `json:"ticker"`
	Type             TradeType   `json:"type"`
	Status           TradeStatus `json:"status"`
	OpenDate         string      `json:"openDate"`
	ExpiryDate       string      `json:"expiryDate"`
	StrikePrice      float64     `json:"strikePrice"`
	Premium          float64     `json:"premium"`
	CollateralOrCost float64     `json:"collateralOrCost"`
	ClosePrice       *float64    `json:"closePrice,omitempty"`
	Notes            string      `json:"notes,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// ROI returns the percent return rounded to 2 decimal places.
//
// SHORT_PUT: premium over collateral, valid while the collateral basis holds.
// LONG_CALL: zero until the trade is CLOSED with a recorded close price,
// then the gain over the premium paid.
func (t OptionTrade) ROI() decimal.Decimal {
	switch t.Type {
	case TradeTypeShortPut:
		if t.CollateralOrCost == 0 {
			return decimal.Zero
		}
		return decimal.NewFromFloat(t.Premium).
			Div(decimal.NewFromFloat(t.CollateralOrCost)).
			Mul(hundred).
			Round(2)
	case TradeTypeLongCall:
		if t.Status != TradeStatusClosed || t.ClosePrice == nil || t.Premium == 0 {
			return decimal.Zero
		}
		return decimal.NewFromFloat(*t.ClosePrice).
			Sub(decimal.NewFromFloat(t.Premium)).
			Div(decimal.NewFromFloat(t.Premium)).
			Mul(hundred).
			Round(2)
	}
	return decimal.Zero
}

// StrikeDistance is the signed percent gap between the current market price
// and the strike, with strategy-dependent labeling.
type StrikeDistance struct {
	Percent   decimal.Decimal `json:"percent"`
	Favorable bool            `json:"favorable"`
	Label     string          `json:"label"`
}

// DistanceToStrike labels both strategies off the identical market > strike
// comparison: a short put above strike is out of the money (safe), a long
// call above strike is in the money (profitable).
func (t OptionTrade) DistanceToStrike(marketPrice float64) StrikeDistance {
	d := StrikeDistance{}

	if t.StrikePrice != 0 {
		d.Percent = decimal.NewFromFloat(marketPrice).
			Sub(decimal.NewFromFloat(t.StrikePrice)).
			Div(decimal.NewFromFloat(t.StrikePrice)).
			Mul(hundred).
			Round(2)
	}

	aboveStrike := marketPrice > t.StrikePrice
	d.Favorable = aboveStrike

	switch t.Type {
	case TradeTypeShortPut:
		if aboveStrike {
			d.Label = "out of the money"
		} else {
			d.Label = "in the money"
		}
	case TradeTypeLongCall:
		if aboveStrike {
			d.Label = "in the money"
		} else {
			d.Label = "out of the money"
		}
	}

	return d
}
