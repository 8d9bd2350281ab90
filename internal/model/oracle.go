package model

import "github.com/shopspring/decimal"

// FxRate is a USD to target currency rate. Degraded is set when the provider
// failed and Rate holds the configured fallback.
type FxRate struct {
	Rate     decimal.Decimal
	Degraded bool
}

type InsightStatus string

const (
	InsightGenerated     InsightStatus = "generated"
	InsightNotConfigured InsightStatus = "not_configured"
	InsightFailed        InsightStatus = "failed"
)

type Insight struct {
	Text   string
	Status InsightStatus
}

func (i Insight) Degraded() bool {
	return i.Status != InsightGenerated
}
