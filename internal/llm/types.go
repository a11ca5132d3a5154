package llm

import (
	"context"
	"errors"
)

// Params are the sampling parameters sent with a completion.
type Params struct {
	Temperature      float64
	MaxTokens        int64
	N                int64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultParams is the fixed parameter set used for reviews: a single
// completion, no stop sequence, no frequency or presence penalty.
var DefaultParams = Params{
	Temperature:      0.5,
	MaxTokens:        1024,
	N:                1,
	FrequencyPenalty: 0,
	PresencePenalty:  0,
}

type CompletionRequest struct {
	APIKey string
	Prompt string
	Params Params
}

func (r *CompletionRequest) Validate() error {
	if r.APIKey == "" {
		return errors.New("api key is required")
	}
	if r.Prompt == "" {
		return errors.New("prompt is required")
	}
	if r.Params.Temperature < 0 || r.Params.Temperature > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	if r.Params.N < 1 {
		return errors.New("n must be at least 1")
	}
	return nil
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type CompletionResponse struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

type Client interface {
	Completion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
