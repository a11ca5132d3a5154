package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"winereview/internal/handlers"
	"winereview/internal/review"
)

type fakeGenerator struct{ calls int }

func (f *fakeGenerator) Generate(_ context.Context, req review.Request) (string, error) {
	f.calls++
	return "review for " + req.Varietal, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeGenerator) {
	t.Helper()
	gen := &fakeGenerator{}
	r := chi.NewRouter()
	SetupRouter(r, zaptest.NewLogger(t), handlers.NewReviewHandler(gen), Options{})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, gen
}

func TestRouterGenerateReview(t *testing.T) {
	srv, gen := newTestServer(t)

	resp, err := http.Post(srv.URL+"/generate-review", "application/json",
		strings.NewReader(`{"varietal":"Nebbiolo","region":"Barolo","persona":"connoisseur"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["review"] != "review for Nebbiolo" || gen.calls != 1 {
		t.Fatalf("unexpected body %v (calls %d)", body, gen.calls)
	}
}

func TestRouterRejectsGetOnGenerateReview(t *testing.T) {
	srv, gen := newTestServer(t)

	resp, err := http.Get(srv.URL + "/generate-review")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not be called")
	}
}

func TestRouterHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRouterHealthzChecksStore(t *testing.T) {
	tests := []struct {
		name       string
		health     func(context.Context) error
		wantStatus int
		wantBody   string
	}{
		{name: "no check", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "store reachable", health: func(context.Context) error { return nil }, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "store down", health: func(context.Context) error { return errors.New("dial tcp: connection refused") }, wantStatus: http.StatusServiceUnavailable, wantBody: "dial tcp: connection refused\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			SetupRouter(r, zaptest.NewLogger(t), handlers.NewReviewHandler(&fakeGenerator{}), Options{Health: tt.health})
			srv := httptest.NewServer(r)
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/healthz")
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if string(body) != tt.wantBody {
				t.Fatalf("unexpected body %q", body)
			}
		})
	}
}
