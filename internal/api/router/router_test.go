package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beespeak/honeypot/internal/history"
	"github.com/beespeak/honeypot/internal/pipeline"
	"github.com/beespeak/honeypot/internal/session"
	"github.com/beespeak/honeypot/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.New("error", "json")
	svc := pipeline.NewService(session.NewMemoryStore(), history.NewMemoryStore(), pipeline.Options{
		Logger:       logger,
		SyncDispatch: true,
	})
	reg := prometheus.NewRegistry()
	return New(&Config{
		Logger:          logger,
		PipelineHandler: pipeline.NewHandler(svc, logger),
		APIKey:          "test-key",
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMetricsIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessRequiresAPIKey(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/honeypot/process", strings.NewReader("{}")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProcessWithAPIKey(t *testing.T) {
	body := `{
		"sessionId": "s1",
		"message": {"sender": "scammer", "text": "send money now", "timestamp": 1},
		"metadata": {"channel": "SMS", "language": "English", "locale": "IN"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot/process", strings.NewReader(body))
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_scam":true`)
}
