package review

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"winereview/internal/cache"
	"winereview/internal/llm"
	"winereview/internal/persona"
	"winereview/pkg/logging/logging"
)

type mockLLMClient struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	lastReq *llm.CompletionRequest
}

func (m *mockLLMClient) Completion(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Text: m.text, FinishReason: "stop"}, nil
}

type mockSecrets struct {
	value string
	err   error
	calls int
}

func (m *mockSecrets) GetSecret(_ context.Context, name string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.value, nil
}

type failingCache struct {
	findErr   error
	insertErr error
	finds     int
	inserts   int
}

func (f *failingCache) Find(context.Context, string) (string, bool, error) {
	f.finds++
	return "", false, f.findErr
}

func (f *failingCache) Insert(context.Context, string, string) error {
	f.inserts++
	return f.insertErr
}

func newTestService(store cache.ReviewCache, gen *mockLLMClient, sec *mockSecrets) *Service {
	return NewService(store, sec, gen, "openai-api-key")
}

func TestGenerateMissThenHit(t *testing.T) {
	store := cache.NewMemoryReviewCache()
	gen := &mockLLMClient{text: "\n\n  Cherry and earth.\n\n\n\nLong finish.  \n"}
	sec := &mockSecrets{value: "sk-test"}
	svc := newTestService(store, gen, sec)

	req := Request{Varietal: "Pinot Noir", Region: "Burgundy", Persona: "novice"}
	const wantPrompt = "Generate a wine review for someone who is new to Pinot Noir from Burgundy."
	const wantReview = "Cherry and earth.\n\nLong finish."

	first, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if first != wantReview {
		t.Fatalf("unexpected review %q", first)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
	if gen.lastReq.Prompt != wantPrompt {
		t.Fatalf("unexpected prompt %q", gen.lastReq.Prompt)
	}
	if gen.lastReq.APIKey != "sk-test" {
		t.Fatalf("api key not passed through: %q", gen.lastReq.APIKey)
	}
	if gen.lastReq.Params != llm.DefaultParams {
		t.Fatalf("unexpected params %#v", gen.lastReq.Params)
	}

	stored, hit, err := store.Find(context.Background(), wantPrompt)
	if err != nil || !hit || stored != wantReview {
		t.Fatalf("store not populated: %q hit=%v err=%v", stored, hit, err)
	}

	second, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if second != first {
		t.Fatalf("expected identical review, got %q vs %q", second, first)
	}
	if gen.calls != 1 {
		t.Fatalf("expected no additional generation call, got %d total", gen.calls)
	}
	if sec.calls != 2 {
		t.Fatalf("expected one secret lookup per request, got %d calls", sec.calls)
	}
}

func TestGenerateCacheHitReturnsStoredValueVerbatim(t *testing.T) {
	store := cache.NewMemoryReviewCache()
	prompt := "Generate a wine review for someone who is familiar with Syrah from Cornas."
	if err := store.Insert(context.Background(), prompt, "  stored\n\n\n\nas is  "); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gen := &mockLLMClient{text: "fresh"}
	svc := newTestService(store, gen, &mockSecrets{value: "k"})

	got, err := svc.Generate(context.Background(), Request{Varietal: "Syrah", Region: "Cornas", Persona: "connoisseur"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "  stored\n\n\n\nas is  " {
		t.Fatalf("hit must not be post-processed, got %q", got)
	}
	if gen.calls != 0 {
		t.Fatalf("generation called on hit")
	}
}

func TestGenerateInvalidPersonaTouchesNothing(t *testing.T) {
	store := &failingCache{}
	gen := &mockLLMClient{text: "x"}
	sec := &mockSecrets{value: "k"}
	svc := NewService(store, sec, gen, "s")

	_, err := svc.Generate(context.Background(), Request{Varietal: "Merlot", Region: "Pomerol", Persona: "expert"})

	var ipe *persona.InvalidPersonaError
	if !errors.As(err, &ipe) {
		t.Fatalf("expected InvalidPersonaError, got %v", err)
	}
	if err.Error() != "Invalid persona 'expert'. Expected one of: newcomer, novice, connoisseur" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if store.finds != 0 || store.inserts != 0 || gen.calls != 0 || sec.calls != 0 {
		t.Fatalf("collaborators called: finds=%d inserts=%d gen=%d secrets=%d",
			store.finds, store.inserts, gen.calls, sec.calls)
	}
}

func TestGenerateUpstreamFailures(t *testing.T) {
	boom := errors.New("boom")
	req := Request{Varietal: "Malbec", Region: "Mendoza", Persona: "newcomer"}

	tests := []struct {
		name   string
		store  cache.ReviewCache
		gen    *mockLLMClient
		sec    *mockSecrets
		wantOp Op
	}{
		{
			name:   "store lookup",
			store:  &failingCache{findErr: boom},
			gen:    &mockLLMClient{text: "x"},
			sec:    &mockSecrets{value: "k"},
			wantOp: OpStore,
		},
		{
			name:   "secret lookup",
			store:  cache.NewMemoryReviewCache(),
			gen:    &mockLLMClient{text: "x"},
			sec:    &mockSecrets{err: boom},
			wantOp: OpSecret,
		},
		{
			name:   "generation",
			store:  cache.NewMemoryReviewCache(),
			gen:    &mockLLMClient{err: boom},
			sec:    &mockSecrets{value: "k"},
			wantOp: OpGenerate,
		},
		{
			name:   "store insert",
			store:  &failingCache{insertErr: boom},
			gen:    &mockLLMClient{text: "x"},
			sec:    &mockSecrets{value: "k"},
			wantOp: OpStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.store, tt.sec, tt.gen, "s")
			_, err := svc.Generate(context.Background(), req)

			var ue *UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if ue.Op != tt.wantOp {
				t.Fatalf("expected op %q, got %q", tt.wantOp, ue.Op)
			}
			if !errors.Is(err, boom) {
				t.Fatalf("cause not preserved: %v", err)
			}
			if !strings.Contains(err.Error(), "boom") {
				t.Fatalf("message should carry cause: %q", err.Error())
			}
		})
	}
}

func TestGenerateDuplicateInsertStillSucceeds(t *testing.T) {
	store := &failingCache{insertErr: cache.ErrDuplicate}
	svc := NewService(store, &mockSecrets{value: "k"}, &mockLLMClient{text: " generated "}, "s")

	got, err := svc.Generate(context.Background(), Request{Varietal: "Gamay", Region: "Beaujolais", Persona: "novice"})
	if err != nil {
		t.Fatalf("duplicate insert must not fail the request: %v", err)
	}
	if got != "generated" {
		t.Fatalf("unexpected review %q", got)
	}
}

func TestGenerateCacheHitStillRequiresSecret(t *testing.T) {
	store := cache.NewMemoryReviewCache()
	prompt := "Generate a wine review for someone who is new to Riesling from Mosel."
	if err := store.Insert(context.Background(), prompt, "Petrol and lime."); err != nil {
		t.Fatalf("seed: %v", err)
	}
	boom := errors.New("vault unreachable")
	gen := &mockLLMClient{text: "x"}
	sec := &mockSecrets{err: boom}
	svc := newTestService(store, gen, sec)

	_, err := svc.Generate(context.Background(), Request{Varietal: "Riesling", Region: "Mosel", Persona: "novice"})

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Op != OpSecret {
		t.Fatalf("expected secret UpstreamError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if sec.calls != 1 || gen.calls != 0 {
		t.Fatalf("unexpected calls: secrets=%d gen=%d", sec.calls, gen.calls)
	}
}

func TestGenerateLogsLatencyInMilliseconds(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logging.WithLogger(context.Background(), zap.New(core))

	svc := newTestService(cache.NewMemoryReviewCache(), &mockLLMClient{text: "ok"}, &mockSecrets{value: "k"})
	if _, err := svc.Generate(ctx, Request{Varietal: "Nebbiolo", Region: "Barolo", Persona: "connoisseur"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	entries := logs.FilterMessage("cache_decision").All()
	if len(entries) != 1 {
		t.Fatalf("expected one cache_decision entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"cache_lookup_latency_ms", "llm_latency_ms", "total_latency_ms"} {
		if _, ok := fields[key].(float64); !ok {
			t.Fatalf("%s should be a float64 millisecond value, got %#v", key, fields[key])
		}
	}
	if fields["cache_hit"] != false {
		t.Fatalf("expected cache_hit=false, got %#v", fields["cache_hit"])
	}
}
