package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/logger"
	"github.com/meddot/meddot-backend/pkg/types"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestHealthLiveSetsEnvHeader(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	resp := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get(envHeader); got != "dev" {
		t.Fatalf("expected env header dev, got %q", got)
	}
}

func TestHealthReadyAllChecksPass(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	calls := 0
	ok := pingerFunc(func(ctx context.Context) error {
		calls++
		if _, has := ctx.Deadline(); !has {
			t.Fatalf("expected readiness deadline")
		}
		return nil
	})

	resp := httptest.NewRecorder()
	handler := HealthReady(cfg, testLogger(),
		ReadinessCheck{Name: "postgres", Pinger: ok},
		ReadinessCheck{Name: "redis"},
	)
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if calls != 1 {
		t.Fatalf("expected one ping, got %d", calls)
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	failing := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), ReadinessCheck{Name: "redis", Pinger: failing}).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["dependency"] != "redis" {
		t.Fatalf("unexpected details %v", body.Error.Details)
	}
}
