package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()
	srv := httptest.NewServer(NewServer(secret, &logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "secret")
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestMetricsExposed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "secret")
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStatsRequiresAuth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "secret")
	resp, err := http.Get(srv.URL + "/api/v1/stats")
	if err != nil {
		t.Fatalf("GET /api/v1/stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "secret")
	resp, err := http.Post(srv.URL+"/ops/login", "application/json",
		bytes.NewBufferString(`{"secret":"wrong"}`))
	if err != nil {
		t.Fatalf("POST /ops/login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginForbiddenWithoutConfiguredSecret(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "")
	resp, err := http.Post(srv.URL+"/ops/login", "application/json",
		bytes.NewBufferString(`{"secret":""}`))
	if err != nil {
		t.Fatalf("POST /ops/login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestLoginThenStats(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "secret")

	resp, err := http.Post(srv.URL+"/ops/login", "application/json",
		bytes.NewBufferString(`{"secret":"secret"}`))
	if err != nil {
		t.Fatalf("POST /ops/login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if body.Token == "" {
		t.Fatal("empty token")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	statsResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/stats: %v", err)
	}
	defer statsResp.Body.Close()
	if statsResp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", statsResp.StatusCode)
	}

	var stats map[string]any
	if err := json.NewDecoder(statsResp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if _, ok := stats["uptime_seconds"]; !ok {
		t.Fatalf("stats = %v", stats)
	}
}

func TestStatsRejectsGarbageToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, "secret")
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
