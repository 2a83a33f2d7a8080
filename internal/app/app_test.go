package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockdash/internal/config"
	"stockdash/internal/exporter"
	"stockdash/internal/shared/testutil"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	a, err := NewApplication(cfg, logger, nil, nil)
	require.NoError(t, err)
	return a
}

// upload builds a multipart body. Empty content skips the file part.
func upload(t *testing.T, prices, sectors string, sectorValues ...string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for field, content := range map[string]string{"prices": prices, "sectors": sectors} {
		if content == "" {
			continue
		}
		part, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for _, v := range sectorValues {
		require.NoError(t, mw.WriteField("sector", v))
	}
	require.NoError(t, mw.Close())

	return body, mw.FormDataContentType()
}

func post(t *testing.T, a *Application, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestDashboardEndpoint(t *testing.T) {
	a := newTestApp(t, nil)

	body, ct := upload(t, testutil.PricesCSV, testutil.SectorsCSV)
	rec := post(t, a, "/api/dashboard", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, []interface{}{"AAA", "BBB", "CCC"}, out["symbols"])
	assert.Equal(t, []interface{}{"Banking", "Telecom"}, out["available_sectors"])
	assert.NotNil(t, out["correlation"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestDashboardEndpointFilter(t *testing.T) {
	a := newTestApp(t, nil)

	tests := []struct {
		name        string
		sectors     []string
		wantSymbols []interface{}
		wantApplied bool
	}{
		{"no filter", nil, []interface{}{"AAA", "BBB", "CCC"}, false},
		{"one sector", []string{"Banking"}, []interface{}{"AAA"}, true},
		{"every sector", []string{"Telecom", "Banking"}, []interface{}{"AAA", "BBB", "CCC"}, false},
		{"empty selection", []string{""}, []interface{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := upload(t, testutil.PricesCSV, testutil.SectorsCSV, tt.sectors...)
			rec := post(t, a, "/api/dashboard", body, ct)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			out := decode(t, rec)
			assert.Equal(t, tt.wantSymbols, out["symbols"])
			assert.Equal(t, tt.wantApplied, out["filter"].(map[string]interface{})["applied"])
		})
	}
}

func TestDashboardEndpointErrors(t *testing.T) {
	a := newTestApp(t, nil)

	badKey := "Ticker,Date,Close\nAAA,01-01-2024 10:00,1\n"

	tests := []struct {
		name       string
		prices     string
		sectors    string
		wantStatus int
		wantCode   string
	}{
		{"sectors missing", testutil.PricesCSV, "", http.StatusBadRequest, "INPUT_MISSING"},
		{"both missing", "", "", http.StatusBadRequest, "INPUT_MISSING"},
		{"missing key", badKey, testutil.SectorsCSV, http.StatusUnprocessableEntity, "MISSING_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := upload(t, tt.prices, tt.sectors)
			rec := post(t, a, "/api/dashboard", body, ct)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			problem := decode(t, rec)
			assert.Equal(t, tt.wantCode, problem["error_code"])
			assert.Equal(t, "/api/dashboard", problem["instance"])
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		rec := post(t, a, "/api/dashboard", nil, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		problem := decode(t, rec)
		assert.Equal(t, "INPUT_MISSING", problem["error_code"])
		assert.Equal(t, []interface{}{"prices", "sectors"}, problem["details"].(map[string]interface{})["inputs"])
	})
}

func TestDashboardEndpointTooLarge(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) { cfg.Server.MaxUploadBytes = 64 })

	body, ct := upload(t, testutil.PricesCSV, testutil.SectorsCSV)
	rec := post(t, a, "/api/dashboard", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestWorkbookEndpoint(t *testing.T) {
	a := newTestApp(t, nil)

	body, ct := upload(t, testutil.PricesCSV, testutil.SectorsCSV)
	rec := post(t, a, "/api/dashboard/workbook", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"dashboard-")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), exporter.SheetCorrelation)
}

func TestSectorsEndpoint(t *testing.T) {
	a := newTestApp(t, nil)

	body, ct := upload(t, testutil.PricesCSV, testutil.SectorsCSV)
	rec := post(t, a, "/api/dashboard/sectors", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, []interface{}{"Banking", "Telecom"}, out["sectors"])
	assert.Equal(t, float64(2), out["count"])
}

func TestHealthEndpoints(t *testing.T) {
	a := newTestApp(t, nil)

	for _, path := range []string{"/health", "/health/ready", "/health/live", "/version"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, config.AppVersion, decode(t, rec)["version"])
		})
	}
}

func TestMetricsDisabled(t *testing.T) {
	a := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFound(t *testing.T) {
	a := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitedAPI(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})
	require.NotNil(t, a.RateLimiter)

	body, ct := upload(t, testutil.PricesCSV, testutil.SectorsCSV)
	assert.Equal(t, http.StatusOK, post(t, a, "/api/dashboard/sectors", body, ct).Code)

	body, ct = upload(t, testutil.PricesCSV, testutil.SectorsCSV)
	assert.Equal(t, http.StatusTooManyRequests, post(t, a, "/api/dashboard/sectors", body, ct).Code)

	// health stays outside the limiter
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = port
		cfg.Server.ShutdownTimeout = time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/health/live"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
