package yahooModel

import "github.com/shopspring/decimal"

type RawChart struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ChartResult struct {
	Meta       Meta       `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

type Indicators struct {
	Quote []Quote `json:"quote"`
}

// Close holds nil for bars the exchange has not settled yet.
type Quote struct {
	Close []*float64 `json:"close"`
}

type Price struct {
	Symbol   string
	Currency string
	Close    decimal.Decimal
}
