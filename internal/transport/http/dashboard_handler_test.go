package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockdash/internal/errors"
	"stockdash/internal/exporter"
	"stockdash/internal/infrastructure"
	"stockdash/internal/services"
	"stockdash/internal/shared/testutil"
)

func newTestHandler(t *testing.T) *DashboardHandler {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	return NewDashboardHandler(
		services.NewDashboardService(infrastructure.NoopTelemetry(), logger),
		exporter.NewWorkbookRenderer(logger),
		logger,
		apperrors.NewErrorHandler(logger, false),
	)
}

// multipartRequest builds a POST carrying the given file parts and sector
// values. Parts are written in a fixed order.
func multipartRequest(t *testing.T, files [][2]string, sectors []string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f[0], f[0]+".csv")
		require.NoError(t, err)
		_, err = io.WriteString(part, f[1])
		require.NoError(t, err)
	}
	for _, v := range sectors {
		require.NoError(t, mw.WriteField(SectorField, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func parsedRequest(t *testing.T, files [][2]string, sectors []string) *http.Request {
	t.Helper()

	req := multipartRequest(t, files, sectors)
	require.NoError(t, req.ParseMultipartForm(multipartMemory))
	return req
}

func TestDashboardHandler_ParseFilter(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		sectors []string
		want    []string // nil means no filter
	}{
		{name: "no sector field", sectors: nil, want: nil},
		{name: "single sector", sectors: []string{"Banking"}, want: []string{"Banking"}},
		{name: "values are trimmed", sectors: []string{" Banking ", "Telecom\t"}, want: []string{"Banking", "Telecom"}},
		{name: "blank values are dropped", sectors: []string{"Banking", "", "  "}, want: []string{"Banking"}},
		{name: "lone empty value selects nothing", sectors: []string{""}, want: []string{}},
		{name: "only blanks select nothing", sectors: []string{" ", ""}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := h.parseFilter(parsedRequest(t, nil, tt.sectors))
			require.NoError(t, err)

			if tt.want == nil {
				assert.Nil(t, filter)
				return
			}
			require.NotNil(t, filter)
			assert.Equal(t, tt.want, filter.Sectors)
		})
	}
}

func TestDashboardHandler_ParseFilterTooLong(t *testing.T) {
	h := newTestHandler(t)

	filter, err := h.parseFilter(parsedRequest(t, nil, []string{strings.Repeat("x", 300)}))
	assert.Nil(t, filter)

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestReadPart(t *testing.T) {
	tests := []struct {
		name     string
		files    [][2]string
		field    string
		wantRows int
		wantNil  bool
		wantCode string
	}{
		{
			name:     "csv part",
			files:    [][2]string{{SectorsField, testutil.SectorsCSV}},
			field:    SectorsField,
			wantRows: 2,
		},
		{
			name:    "missing part",
			files:   [][2]string{{PricesField, testutil.PricesCSV}},
			field:   SectorsField,
			wantNil: true,
		},
		{
			name:     "empty part",
			files:    [][2]string{{PricesField, ""}},
			field:    PricesField,
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "malformed csv",
			files:    [][2]string{{PricesField, "Symbol,Close\n\"A,1\n"}},
			field:    PricesField,
			wantCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := readPart(parsedRequest(t, tt.files, nil), tt.field)

			if tt.wantCode != "" {
				assert.Nil(t, frame)
				var apiErr *apperrors.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
				return
			}

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, frame)
				return
			}
			require.NotNil(t, frame)
			assert.Equal(t, tt.wantRows, frame.Len())
		})
	}
}

func TestDashboardHandler_ReadInputsNotMultipart(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	_, err := h.readInputs(req)
	var missing *apperrors.InputMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{PricesField, SectorsField}, missing.Inputs)
}

func TestDashboardHandler_Routes(t *testing.T) {
	both := [][2]string{{PricesField, testutil.PricesCSV}, {SectorsField, testutil.SectorsCSV}}

	tests := []struct {
		name        string
		path        string
		files       [][2]string
		sectors     []string
		wantStatus  int
		wantSymbols []interface{}
		wantApplied bool
	}{
		{
			name:        "unfiltered dashboard",
			path:        "/",
			files:       both,
			wantStatus:  http.StatusOK,
			wantSymbols: []interface{}{"AAA", "BBB", "CCC"},
		},
		{
			name:        "sector filter",
			path:        "/",
			files:       both,
			sectors:     []string{" Telecom "},
			wantStatus:  http.StatusOK,
			wantSymbols: []interface{}{"BBB"},
			wantApplied: true,
		},
		{
			name:        "empty selection",
			path:        "/",
			files:       both,
			sectors:     []string{""},
			wantStatus:  http.StatusOK,
			wantSymbols: []interface{}{},
			wantApplied: true,
		},
		{
			name:       "sectors part missing",
			path:       "/",
			files:      both[:1],
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestHandler(t).Routes().ServeHTTP(rec, multipartRequest(t, tt.files, tt.sectors))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "INPUT_MISSING", out["error_code"])
				return
			}
			assert.Equal(t, tt.wantSymbols, out["symbols"])
			filter, ok := out["filter"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.wantApplied, filter["applied"])
		})
	}
}
