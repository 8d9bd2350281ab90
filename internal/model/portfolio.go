package model

import (
	"github.com/shopspring/decimal"
)

type RiskTier string

const (
	RiskHigh   RiskTier = "High"
	RiskNormal RiskTier = "Normal"
	RiskLow    RiskTier = "Low"
)

var (
	highRiskThreshold   = decimal.NewFromInt(50)
	normalRiskThreshold = decimal.NewFromInt(25)
)

// ClassifyRisk maps a portfolio share in percent to a concentration tier.
// Exactly 50 is Normal and exactly 25 is Low.
func ClassifyRisk(percentage decimal.Decimal) RiskTier {
	switch {
	case percentage.GreaterThan(highRiskThreshold):
		return RiskHigh
	case percentage.GreaterThan(normalRiskThreshold):
		return RiskNormal
	default:
		return RiskLow
	}
}

type Holding struct {
	Symbol   string
	Quantity decimal.Decimal
}

type PricedHolding struct {
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal // unit price in target currency
	Value      decimal.Decimal
	Percentage decimal.Decimal
	Risk       RiskTier
}

type PortfolioSummary struct {
	TotalValue    decimal.Decimal
	Currency      string
	Breakdown     []PricedHolding
	FxRate        FxRate
	AIInsight     string
	InsightStatus InsightStatus
}
