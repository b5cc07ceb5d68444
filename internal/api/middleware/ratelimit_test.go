package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/middleware"
)

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects requests beyond the burst", func(t *testing.T) {
		// A very low rate means no token is refilled during the test.
		mw := middleware.RateLimit(0.001, 2)(ok)

		codes := make([]int, 3)
		for i := range codes {
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analytics/batch", nil))
			codes[i] = w.Code
		}

		if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
			t.Errorf("Expected the burst to pass, got %v", codes)
		}
		if codes[2] != http.StatusTooManyRequests {
			t.Errorf("Expected 429 after the burst, got %d", codes[2])
		}
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		mw := middleware.RateLimit(0, 0)(ok)

		for i := 0; i < 50; i++ {
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/analytics/batch", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Request %d: expected 200, got %d", i, w.Code)
			}
		}
	})
}
