package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/portfolio_analyzer/internal/model"
	"github.com/KotFed0t/portfolio_analyzer/utils"
)

const (
	NotConfiguredText = "AI insight unavailable. API key not set."
	FailedText        = "AI insight could not be generated."

	systemPrompt = "You are a financial analyst."
)

type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type InsightGenerator struct {
	generator      TextGenerator
	currencySymbol string
}

// New builds the generator. A nil generator means no provider credential was
// configured and every summary is the not-configured placeholder.
func New(generator TextGenerator, currency string) *InsightGenerator {
	return &InsightGenerator{generator: generator, currencySymbol: currencySymbol(currency)}
}

func (g *InsightGenerator) Configured() bool {
	return g.generator != nil
}

// Summarize never fails; provider problems are reported through Status.
func (g *InsightGenerator) Summarize(ctx context.Context, breakdown []model.PricedHolding) model.Insight {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InsightGenerator.Summarize"

	if g.generator == nil {
		slog.Debug("insight provider not configured", slog.String("rqID", rqID), slog.String("op", op))
		return model.Insight{Text: NotConfiguredText, Status: model.InsightNotConfigured}
	}

	text, err := g.generator.Generate(ctx, systemPrompt, BuildPrompt(breakdown, g.currencySymbol))
	if err != nil {
		slog.Warn("insight generation failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Insight{Text: FailedText, Status: model.InsightFailed}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		slog.Warn("insight provider returned blank text", slog.String("rqID", rqID), slog.String("op", op))
		return model.Insight{Text: FailedText, Status: model.InsightFailed}
	}

	return model.Insight{Text: text, Status: model.InsightGenerated}
}

func BuildPrompt(breakdown []model.PricedHolding, currencySymbol string) string {
	var sb strings.Builder
	sb.WriteString("Given the following portfolio with asset values, percentages, and risk ratings, provide a concise 2-3 line summary. Avoid repetition and be clear:\n\n")
	for _, item := range breakdown {
		fmt.Fprintf(&sb, "%s: %s%s (%s%%), Risk: %s\n",
			item.Symbol,
			currencySymbol,
			item.Value.StringFixed(2),
			item.Percentage.StringFixed(2),
			item.Risk,
		)
	}
	sb.WriteString("\nRespond with a short summary of the portfolio's risk and allocation.")
	return sb.String()
}

func currencySymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return currency + " "
	}
}
