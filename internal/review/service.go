package review

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"winereview/internal/cache"
	"winereview/internal/llm"
	"winereview/internal/metrics"
	"winereview/internal/persona"
	"winereview/pkg/logging/logging"
)

// Request is the input of one review generation.
type Request struct {
	Varietal string `json:"varietal"`
	Region   string `json:"region"`
	Persona  string `json:"persona"`
}

// Service returns a cached review for a prompt or generates and stores one.
type Service struct {
	cache      cache.ReviewCache
	secrets    SecretProvider
	llm        llm.Client
	secretName string
	params     llm.Params
}

// SecretProvider resolves the generation API key.
type SecretProvider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

func NewService(c cache.ReviewCache, sp SecretProvider, client llm.Client, secretName string) *Service {
	return &Service{
		cache:      c,
		secrets:    sp,
		llm:        client,
		secretName: secretName,
		params:     llm.DefaultParams,
	}
}

// Generate validates the persona, builds the prompt and resolves the review.
// An invalid persona returns *persona.InvalidPersonaError before any
// collaborator is called.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	prompt, err := persona.BuildPrompt(req.Persona, req.Varietal, req.Region)
	if err != nil {
		return "", err
	}

	ctx = logging.WithFields(ctx,
		zap.String("persona", req.Persona),
		zap.String("prompt_hash", cache.PromptHash(prompt)),
	)
	return s.Review(ctx, prompt)
}

// Review returns the stored review for prompt, or generates, normalizes and
// stores a new one. The API key is resolved on every call, hit or miss.
func (s *Service) Review(ctx context.Context, prompt string) (string, error) {
	logger := logging.L(ctx)
	start := time.Now()

	apiKey, err := s.secrets.GetSecret(ctx, s.secretName)
	if err != nil {
		return "", &UpstreamError{Op: OpSecret, Err: err}
	}

	// ---- store lookup ----
	lookupStart := time.Now()
	stored, hit, err := s.cache.Find(ctx, prompt)
	lookupLatency := time.Since(lookupStart)
	if err != nil {
		return "", &UpstreamError{Op: OpStore, Err: err}
	}

	if hit {
		logger.Info("cache_decision",
			zap.Bool("cache_hit", true),
			logging.Millis("cache_lookup_latency_ms", lookupLatency),
			logging.Millis("total_latency_ms", time.Since(start)),
		)
		return stored, nil
	}

	// ---- miss: generate ----
	llmStart := time.Now()
	resp, err := s.llm.Completion(ctx, &llm.CompletionRequest{
		APIKey: apiKey,
		Prompt: prompt,
		Params: s.params,
	})
	llmLatency := time.Since(llmStart)
	if err != nil {
		metrics.GenerationSeconds.WithLabelValues("error").Observe(llmLatency.Seconds())
		return "", &UpstreamError{Op: OpGenerate, Err: err}
	}
	metrics.GenerationSeconds.WithLabelValues("ok").Observe(llmLatency.Seconds())

	review := Normalize(resp.Text)

	if err := s.cache.Insert(ctx, prompt, review); err != nil {
		if !errors.Is(err, cache.ErrDuplicate) {
			return "", &UpstreamError{Op: OpStore, Err: err}
		}
		// a concurrent request stored this prompt first; ours is still valid
		logger.Warn("review already stored by a concurrent request")
	}

	logger.Info("cache_decision",
		zap.Bool("cache_hit", false),
		logging.Millis("cache_lookup_latency_ms", lookupLatency),
		logging.Millis("llm_latency_ms", llmLatency),
		logging.Millis("total_latency_ms", time.Since(start)),
	)

	return review, nil
}
