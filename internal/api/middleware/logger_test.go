package middleware_test

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/middleware"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLogger(t *testing.T) {
	t.Run("logs method path and status", func(t *testing.T) {
		buf := captureLog(t)
		h := middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/report/x", nil))

		line := buf.String()
		if !strings.Contains(line, "[INFO] GET /api/report/x 404") {
			t.Errorf("Unexpected log line: %q", line)
		}
	})

	t.Run("server errors are logged at error level", func(t *testing.T) {
		buf := captureLog(t)
		h := middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/report/generate/x", nil))

		if !strings.Contains(buf.String(), "[ERROR] POST") {
			t.Errorf("Expected error level, got %q", buf.String())
		}
	})

	t.Run("strips line breaks from the path", func(t *testing.T) {
		buf := captureLog(t)
		h := middleware.Logger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.URL.Path = "/a\nFAKE ENTRY"
		h.ServeHTTP(httptest.NewRecorder(), req)

		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("Expected a single log line, got %q", buf.String())
		}
	})
}
