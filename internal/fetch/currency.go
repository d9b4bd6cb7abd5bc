package fetch

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/abelbrown/lookout/internal/calc"
)

// ErrNoRates is returned when the rate service answers with no usable pairs.
var ErrNoRates = errors.New("no currency rates")

// tradingViewEndpoint is the forex scanner queried for USD pairs.
const tradingViewEndpoint = "https://scanner.tradingview.com/forex/scan?label-product=related-symbols"

// tradingViewQuery asks for the close price of the most popular XXXUSD pairs.
const tradingViewQuery = `{
  "columns": ["name", "type", "close"],
  "ignore_unknown_fields": true,
  "options": {"lang": "en"},
  "range": [0, 15],
  "sort": {"sortBy": "popularity_rank", "sortOrder": "asc"},
  "filter2": {"operator": "and", "operands": [
    {"expression": {"left": "type", "operation": "equal", "right": "forex"}},
    {"expression": {"left": "exchange", "operation": "equal", "right": "FX_IDC"}},
    {"expression": {"left": "currency_id", "operation": "equal", "right": "USD"}},
    {"expression": {"left": "base_currency_id", "operation": "in_range", "right":
      ["EUR", "JPY", "GBP", "AUD", "CAD", "CHF", "CNY", "NZD", "SEK", "NOK", "MXN", "SGD", "HKD", "KRW", "PLN"]}}
  ]}
}`

// Currency fetches exchange rates from the TradingView forex scanner.
type Currency struct {
	f        *Fetcher
	endpoint string
}

// NewCurrency returns a currency rate source.
func NewCurrency(f *Fetcher) *Currency {
	return &Currency{f: f, endpoint: tradingViewEndpoint}
}

type scanResponse struct {
	Data []struct {
		S string `json:"s"` // "FX_IDC:EURUSD"
		D []any  `json:"d"` // name, type, close
	} `json:"data"`
}

// Rates returns the USD value of one unit of each listed currency, with
// usd itself at 1.
func (c *Currency) Rates(ctx context.Context) (calc.Rates, error) {
	var resp scanResponse
	req := request{
		method: http.MethodPost,
		url:    c.endpoint,
		body:   []byte(tradingViewQuery),
		headers: map[string]string{
			"Content-Type": "text/plain;charset=UTF-8",
			"Accept":       "application/vnd.tv.rangedSelection.v1+json",
			"Referer":      "https://www.tradingview.com/",
		},
	}
	if err := c.f.fetchJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	return parseRates(resp)
}

func parseRates(resp scanResponse) (calc.Rates, error) {
	rates := calc.Rates{"usd": 1}
	for _, row := range resp.Data {
		_, pair, ok := strings.Cut(row.S, ":")
		if !ok || len(pair) < 6 || len(row.D) < 3 {
			continue
		}
		price, ok := row.D[2].(float64)
		if !ok || price <= 0 {
			continue
		}
		rates[strings.ToLower(pair[:3])] = price
	}
	if len(rates) == 1 {
		return nil, ErrNoRates
	}
	return rates, nil
}
