package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/abgdnv/storefront/internal/config"
	platformconfig "github.com/abgdnv/storefront/internal/platform/config"
	"github.com/abgdnv/storefront/internal/platform/messaging"
	"github.com/abgdnv/storefront/internal/platform/web"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogDocument = `[
  {"id": 1, "nombre": "Mouse", "categoria": "Perifericos", "precio": 10, "imagen": "mouse.png", "stock": 3},
  {"id": 2, "nombre": "Monitor", "categoria": "Pantallas", "precio": 150.5, "imagen": "monitor.png", "stock": 1}
]`

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, event.Subject())
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "productos.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogDocument), 0o600))

	cfg := &config.Config{}
	cfg.Catalog = config.CatalogConfig{Source: config.SourceFile, Path: path, PageSize: 4, Locale: "es"}
	cfg.Checkout.Customer = checkout.Customer{Name: "Jose Gonzalez", Email: "josegonzalez@gmail.com", Address: "Calle 13, Texas"}
	cfg.Checkout.Receipts.Dir = filepath.Join(dir, "receipts")
	return cfg
}

func Test_Storefront_EndToEnd(t *testing.T) {
	// given
	cfg := testConfig(t)
	publisher := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := SetupDependencies(cfg, Infrastructure{Publisher: publisher}, logger)
	require.NoError(t, err)
	require.NoError(t, deps.Session.LoadCatalog(context.Background()))
	handler := SetupHttpHandler(deps)

	do := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		req.Header.Set(web.RequestIDHeader, "e2e-request")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	// when
	for range 2 {
		rr := do(http.MethodPost, "/api/v1/cart/items/1")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := do(http.MethodPost, "/api/v1/cart/checkout")

	// then
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "e2e-request", rr.Header().Get(web.RequestIDHeader))

	var resp rest.CheckoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Exported)
	assert.Equal(t, 2, resp.Receipt.ItemCount)
	assert.Equal(t, "20.00", resp.Receipt.Subtotal)
	assert.Equal(t, "4.20", resp.Receipt.Tax)
	assert.Equal(t, "24.20", resp.Receipt.Total)
	assert.Empty(t, resp.Cart.Lines)

	document, err := os.ReadFile(filepath.Join(cfg.Checkout.Receipts.Dir, "receipt_"+resp.Receipt.ID.String()+".txt"))
	require.NoError(t, err)
	assert.Contains(t, string(document), "Jose Gonzalez")

	assert.Equal(t, []string{
		messaging.NotificationsSubjectPrefix + ".success",
		messaging.NotificationsSubjectPrefix + ".success",
		messaging.ReceiptsFinalizedSubject,
		messaging.NotificationsSubjectPrefix + ".success",
	}, publisher.subjects)
}

func Test_Storefront_HealthFollowsCatalog(t *testing.T) {
	// given
	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := SetupDependencies(cfg, Infrastructure{}, logger)
	require.NoError(t, err)
	assert.False(t, deps.Session.Ready())

	// when
	require.NoError(t, deps.Session.LoadCatalog(context.Background()))

	// then
	assert.True(t, deps.Session.Ready())
}

func Test_newSource(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         config.CatalogConfig
		expectError bool
	}{
		{name: "http", cfg: config.CatalogConfig{Source: config.SourceHTTP, URL: "http://localhost/productos", Timeout: time.Second}},
		{name: "http behind a breaker", cfg: config.CatalogConfig{Source: config.SourceHTTP, URL: "http://localhost/productos", Timeout: time.Second,
			Breaker: platformconfig.CircuitBreakerConfig{ConsecutiveFailures: 3, OpenTimeout: time.Second}}},
		{name: "file", cfg: config.CatalogConfig{Source: config.SourceFile, Path: "productos.json"}},
		{name: "postgres without pool", cfg: config.CatalogConfig{Source: config.SourcePostgres}, expectError: true},
		{name: "unknown", cfg: config.CatalogConfig{Source: "ftp"}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			src, err := newSource(tc.cfg, nil)

			// then
			if tc.expectError {
				require.Error(t, err)
				assert.Nil(t, src)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, src)
		})
	}
}

func Test_SetupHttpHandler_Metrics(t *testing.T) {
	testCases := []struct {
		name         string
		metrics      http.Handler
		expectedCode int
	}{
		{
			name: "mounted when a handler is given",
			metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "receipts_finalized_total 1\n")
			}),
			expectedCode: http.StatusOK,
		},
		{
			name:         "absent otherwise",
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			cfg := testConfig(t)
			cfg.Telemetry.Metrics.Path = "/metrics"
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			deps, err := SetupDependencies(cfg, Infrastructure{Metrics: tc.metrics}, logger)
			require.NoError(t, err)

			// when
			rr := httptest.NewRecorder()
			SetupHttpHandler(deps).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}
