package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/middleware"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/config"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/logging"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithOutput(config.LogConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	mw := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/ghost%0Aforged", nil)
	mw.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("Expected status 404, got %v", entry["status"])
	}
	if entry["level"] != "warning" {
		t.Errorf("Expected warning level, got %v", entry["level"])
	}
	if entry["path"] != "/api/analytics/ghostforged" {
		t.Errorf("Expected newline stripped from path, got %v", entry["path"])
	}
}
