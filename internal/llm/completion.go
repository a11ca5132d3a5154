package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

func (c *client) Completion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	if req == nil {
		return nil, fmt.Errorf("llmclient: request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}

	c.logger.Debug("llm request starting",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_bytes", len(req.Prompt)),
	)

	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.cfg.Model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(req.Prompt),
		},
		Temperature:      openai.Float(req.Params.Temperature),
		MaxTokens:        openai.Int(req.Params.MaxTokens),
		N:                openai.Int(req.Params.N),
		FrequencyPenalty: openai.Float(req.Params.FrequencyPenalty),
		PresencePenalty:  openai.Float(req.Params.PresencePenalty),
	}

	resp, err := c.sdk.Completions.New(ctx, params, option.WithAPIKey(req.APIKey))
	if err != nil {
		err = mapProviderError(err)
		c.logger.Error("llm request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	if len(resp.Choices) == 0 {
		c.logger.Error("llm provider returned no choices",
			zap.String("model", c.cfg.Model),
		)
		return nil, fmt.Errorf("llmclient: provider returned no choices")
	}

	choice := resp.Choices[0]
	out := &CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Text:         choice.Text,
		FinishReason: string(choice.FinishReason),
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	c.logger.Info("llm request completed",
		zap.String("model", out.Model),
		zap.String("finish_reason", out.FinishReason),
		zap.Int64("prompt_tokens", out.Usage.PromptTokens),
		zap.Int64("completion_tokens", out.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// mapProviderError flattens SDK errors into "llmclient: upstream <status>: <message>".
func mapProviderError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("llmclient: upstream %d: %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("llmclient: upstream %d", apiErr.StatusCode)
	}
	return fmt.Errorf("llmclient: %w", err)
}
