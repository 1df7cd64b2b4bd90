package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthReturnsServiceShape(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(nil, nil)
	h.Register(app)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if body["service"] != "ccmwf-go" {
		t.Errorf("service field = %q, want ccmwf-go", body["service"])
	}
	if _, ok := body["version"]; !ok {
		t.Error("expected a version field")
	}
}

func TestReadyWithNoBackendsConfigured(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(nil, nil)
	h.Register(app)

	req := httptest.NewRequest("GET", "/ready", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	// No backends configured means no checks fail: ready.
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPoolMetricsEndpointRespondsOK(t *testing.T) {
	app := fiber.New()
	h := NewHealthHandler(nil, nil)
	h.Register(app)

	req := httptest.NewRequest("GET", "/metrics/pools", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
