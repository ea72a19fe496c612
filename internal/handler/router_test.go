package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aurion-studio/aurion-web/backend/internal/config"
	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
	relayService "github.com/aurion-studio/aurion-web/backend/internal/service/relay"
)

func newTestRouter() http.Handler {
	cfg := &config.Config{
		Server: config.ServerConfig{RelayPath: "/api/aurion-chat", MaxBodySize: 1024},
		AI:     config.AIConfig{Provider: config.ProviderOpenAI},
	}
	return NewRouter(cfg, zerolog.New(io.Discard), profile.NewMemoryStore(profile.Seed()), relayService.NewService(nil))
}

func TestHealthReportsDisconnectedEngine(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body["connected"] != false || body["provider"] != "openai" {
		t.Fatalf("unexpected health body %v", body)
	}
}

func TestRelayMountedOnConfiguredPath(t *testing.T) {
	router := newTestRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/aurion-chat", strings.NewReader(`{"message":"hi"}`)))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected engine-not-connected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "engine not connected") {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/aurion-chat", nil))
	if resp.Code != http.StatusOK || resp.Body.Len() != 0 {
		t.Fatalf("expected empty 200 preflight, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestProfilesListing(t *testing.T) {
	resp := httptest.NewRecorder()
	newTestRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))

	var list []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(list) != len(profile.Seed()) {
		t.Fatalf("expected %d profiles, got %d", len(profile.Seed()), len(list))
	}
	if _, leaked := list[0]["SystemPrompt"]; leaked {
		t.Fatal("system prompts must not be listed")
	}
}
