package groqApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_analyzer/config"
	"github.com/KotFed0t/portfolio_analyzer/internal/externalApi"
	"github.com/KotFed0t/portfolio_analyzer/internal/model/groqModel"
	"github.com/KotFed0t/portfolio_analyzer/utils"
	"github.com/go-resty/resty/v2"
)

const chatCompletionsUrl = "/chat/completions"

// GroqApi talks to the OpenAI compatible chat completions endpoint of Groq.
type GroqApi struct {
	client      *resty.Client
	model       string
	temperature float64
}

func New(cfg *config.Config) *GroqApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.Insight.Timeout).
		SetBaseURL(cfg.Insight.GroqApi.Url).
		SetAuthToken(cfg.Insight.GroqApi.Key)

	return &GroqApi{
		client:      client,
		model:       cfg.Insight.GroqApi.Model,
		temperature: cfg.Insight.Temperature,
	}
}

func (a *GroqApi) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GroqApi.Generate"

	slog.Debug("start GroqApi.Generate request", slog.String("rqID", rqID), slog.String("model", a.model))

	body := groqModel.ChatCompletionRequest{
		Model: a.model,
		Messages: []groqModel.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: a.temperature,
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(chatCompletionsUrl)

	if err != nil {
		slog.Error("error while dialing GroqApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	if resp.IsError() {
		errResp := groqModel.ErrorResponse{}
		_ = json.Unmarshal(resp.Body(), &errResp)
		slog.Error(
			"GroqApi responded with error status",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode()),
			slog.String("message", errResp.Error.Message),
		)
		return "", fmt.Errorf("groq api status %d: %s", resp.StatusCode(), errResp.Error.Message)
	}

	completion := groqModel.ChatCompletionResponse{}
	err = json.Unmarshal(resp.Body(), &completion)
	if err != nil {
		slog.Error("can't unmarshall response into groqModel.ChatCompletionResponse", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", externalApi.ErrEmptyResult
	}

	slog.Debug("GroqApi.Generate request complete", slog.String("rqID", rqID))

	return completion.Choices[0].Message.Content, nil
}
