package httpModel

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Asset struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AnalyzeRequest accepts {"assets": [...]} as well as a bare array of assets.
type AnalyzeRequest struct {
	Assets []Asset `json:"assets"`
}

func (r *AnalyzeRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Assets)
	}

	type plain AnalyzeRequest
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = AnalyzeRequest(p)
	return nil
}

type BreakdownItem struct {
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Risk       string  `json:"risk"`
}

type AnalyzeResponse struct {
	TotalValue float64         `json:"total_value"`
	Currency   string          `json:"currency"`
	Breakdown  []BreakdownItem `json:"breakdown"`
	AIInsight  string          `json:"ai_insight"`
}

type SymbolsResponse struct {
	Symbols  []string `json:"symbols"`
	Currency string   `json:"currency"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
