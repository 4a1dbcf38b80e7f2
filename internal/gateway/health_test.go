package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth_AllHealthy(t *testing.T) {
	t.Parallel()

	g := &Gateway{
		assets:  &fakeAssets{},
		store:   &fakeStats{},
		channel: &fakeChannel{ready: true},
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if resp.Assets != "ok" {
		t.Errorf("assets = %q, want %q", resp.Assets, "ok")
	}
	if resp.Store != "ok" {
		t.Errorf("store = %q, want %q", resp.Store, "ok")
	}
	if resp.Channel != "connected" {
		t.Errorf("channel = %q, want %q", resp.Channel, "connected")
	}
}

func TestHealth_AssetsDegraded(t *testing.T) {
	t.Parallel()

	g := &Gateway{
		assets: &fakeAssets{err: errors.New("asset unavailable: han.otf")},
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "degraded" {
		t.Errorf("status = %q, want %q", resp.Status, "degraded")
	}
	if !strings.Contains(resp.Assets, "han.otf") {
		t.Errorf("assets = %q, want the failing asset named", resp.Assets)
	}
}

func TestHealth_StoreDegraded(t *testing.T) {
	t.Parallel()

	g := &Gateway{
		assets: &fakeAssets{},
		store:  &fakeStats{pingErr: errors.New("database is locked")},
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "degraded" {
		t.Errorf("status = %q, want %q", resp.Status, "degraded")
	}
	if resp.Assets != "ok" {
		t.Errorf("assets = %q, want %q", resp.Assets, "ok")
	}
}

func TestHealth_ChannelConnectingStaysOK(t *testing.T) {
	t.Parallel()

	g := &Gateway{
		channel: &fakeChannel{ready: false},
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if resp.Channel != "connecting" {
		t.Errorf("channel = %q, want %q", resp.Channel, "connecting")
	}
}

func TestHealth_NoServices(t *testing.T) {
	t.Parallel()

	g := &Gateway{}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.handleHealth().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("status = %q, want %q", resp.Status, "ok")
	}
	if resp.Assets != "" || resp.Store != "" || resp.Channel != "" {
		t.Errorf("unresolved services should be omitted: %+v", resp)
	}
}
