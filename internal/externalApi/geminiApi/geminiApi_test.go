package geminiApi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceResponse_PlainJSON(t *testing.T) {
	prices, err := ParsePriceResponse(`{"AAPL":190.5,"MSTR":330}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 190.5, "MSTR": 330}, prices)
}

func TestParsePriceResponse_FencedJSON(t *testing.T) {
	text := "```json\n{\"AAPL\": 190.5}\n```"
	prices, err := ParsePriceResponse(text)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 190.5}, prices)
}

func TestParsePriceResponse_BareFence(t *testing.T) {
	text := "```\n{\"MSTR\": 330}\n```"
	prices, err := ParsePriceResponse(text)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"MSTR": 330}, prices)
}

func TestParsePriceResponse_SurroundingWhitespace(t *testing.T) {
	prices, err := ParsePriceResponse("\n  {\"AAPL\": 1}  \n")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"AAPL": 1}, prices)
}

func TestParsePriceResponse_Prose(t *testing.T) {
	_, err := ParsePriceResponse("I could not find prices for those tickers.")
	assert.Error(t, err)
}
