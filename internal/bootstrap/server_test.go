package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/farefinder/config"
	"github.com/Domenick1991/farefinder/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearch struct {
	payload json.RawMessage
}

func (s stubSearch) CheapestDates(context.Context, domain.CheapestDatesQuery) (json.RawMessage, error) {
	return s.payload, nil
}

func (s stubSearch) FlightDestinations(context.Context, domain.FlightDestinationsQuery) (json.RawMessage, error) {
	return s.payload, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{DebugMode: true}
	cfg.HTTP.Address = "127.0.0.1:0"
	cfg.HTTP.Swagger = true
	cfg.Amadeus.ClientID = "key"
	cfg.Amadeus.ClientSecret = "secret"
	return cfg
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewHandler_Routes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# metrics")
	})
	h := NewHandler(testConfig(), stubSearch{payload: json.RawMessage(`{"data":[]}`)}, metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(h, httptest.NewRequest(http.MethodGet, "/cheapest-dates?origin=MAD&destination=BCN", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	w = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "# metrics", w.Body.String())

	w = serve(h, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewHandler_CORS(t *testing.T) {
	h := NewHandler(testConfig(), stubSearch{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://fares.example.com")
	w := serve(h, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewHandler_SwaggerDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Swagger = false
	h := NewHandler(cfg, stubSearch{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, testConfig(), stubSearch{}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	cancel()
	require.NoError(t, <-done)
}
