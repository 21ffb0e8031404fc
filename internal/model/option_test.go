package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestOptionTradeROI_ShortPut(t *testing.T) {
	trade := OptionTrade{
		Type:             TradeTypeShortPut,
		Status:           TradeStatusOpen,
		Premium:          500,
		CollateralOrCost: 10000,
	}

	assert.Equal(t, "5", trade.ROI().String())
}

func TestOptionTradeROI_ShortPutZeroCollateral(t *testing.T) {
	trade := OptionTrade{Type: TradeTypeShortPut, Premium: 500}

	assert.True(t, trade.ROI().IsZero())
}

func TestOptionTradeROI_LongCallClosed(t *testing.T) {
	trade := OptionTrade{
		Type:       TradeTypeLongCall,
		Status:     TradeStatusClosed,
		Premium:    300,
		ClosePrice: floatPtr(450),
	}

	assert.Equal(t, "50", trade.ROI().String())
}

func TestOptionTradeROI_LongCallOpen(t *testing.T) {
	trade := OptionTrade{
		Type:    TradeTypeLongCall,
		Status:  TradeStatusOpen,
		Premium: 300,
	}

	assert.True(t, trade.ROI().IsZero())
}

func TestOptionTradeROI_LongCallClosedWithoutClosePrice(t *testing.T) {
	trade := OptionTrade{
		Type:    TradeTypeLongCall,
		Status:  TradeStatusClosed,
		Premium: 300,
	}

	assert.True(t, trade.ROI().IsZero())
}

// Both strategies label off the same market > strike comparison, with
// opposite wording.
func TestDistanceToStrike_Labeling(t *testing.T) {
	shortPut := OptionTrade{Type: TradeTypeShortPut, StrikePrice: 100}
	longCall := OptionTrade{Type: TradeTypeLongCall, StrikePrice: 100}

	putDistance := shortPut.DistanceToStrike(110)
	assert.True(t, putDistance.Favorable)
	assert.Equal(t, "out of the money", putDistance.Label)
	assert.Equal(t, "10", putDistance.Percent.String())

	callDistance := longCall.DistanceToStrike(110)
	assert.True(t, callDistance.Favorable)
	assert.Equal(t, "in the money", callDistance.Label)
	assert.Equal(t, "10", callDistance.Percent.String())
}

func TestDistanceToStrike_BelowStrike(t *testing.T) {
	shortPut := OptionTrade{Type: TradeTypeShortPut, StrikePrice: 100}
	longCall := OptionTrade{Type: TradeTypeLongCall, StrikePrice: 100}

	putDistance := shortPut.DistanceToStrike(90)
	assert.False(t, putDistance.Favorable)
	assert.Equal(t, "in the money", putDistance.Label)
	assert.Equal(t, "-10", putDistance.Percent.String())

	callDistance := longCall.DistanceToStrike(90)
	assert.False(t, callDistance.Favorable)
	assert.Equal(t, "out of the money", callDistance.Label)
}

func TestAssetDisplayTicker(t *testing.T) {
	withTicker := Asset{Name: "Apple", Ticker: "AAPL"}
	assert.Equal(t, "AAPL", withTicker.DisplayTicker())

	withoutTicker := Asset{Name: "bitcoin"}
	assert.Equal(t, "BITCOIN", withoutTicker.DisplayTicker())
}

func TestAssetValue(t *testing.T) {
	asset := Asset{Quantity: 2.5, CurrentPrice: 100}
	assert.Equal(t, "250", asset.Value().String())
}
