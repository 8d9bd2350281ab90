package geminiApi

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/internal/externalApi"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"google.golang.org/genai"
)

type GeminiApi struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

func New(ctx context.Context, cfg *config.Config) (*GeminiApi, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Insight.GeminiApi.Key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiApi{
		client:      client,
		model:       cfg.Insight.GeminiApi.Model,
		temperature: float32(cfg.Insight.Temperature),
		timeout:     cfg.Insight.Timeout,
	}, nil
}

func (a *GeminiApi) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GeminiApi.Generate"

	slog.Debug("start GeminiApi.Generate request", slog.String("rqID", rqID), slog.String("model", a.model))

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(a.temperature),
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), genCfg)
	if err != nil {
		slog.Error("error while calling GeminiApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	text := extractText(result)
	if text == "" {
		return "", externalApi.ErrEmptyResult
	}

	slog.Debug("GeminiApi.Generate request complete", slog.String("rqID", rqID))

	return text, nil
}

func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return sb.String()
}
