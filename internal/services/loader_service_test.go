package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
	"stockdash/internal/exporter"
	"stockdash/internal/shared/testutil"
	"stockdash/internal/store"
)

func loadRequest(t *testing.T, sectorsCSV string) LoadRequest {
	t.Helper()
	return LoadRequest{
		PricesPath:  testutil.WriteFile(t, "merged_output.csv", testutil.PricesCSV),
		SectorsPath: testutil.WriteFile(t, "sector_mapping_updated.csv", sectorsCSV),
		ExportPath:  filepath.Join(t.TempDir(), "converted", "merged_output.csv"),
		Table:       "stock_data",
	}
}

func TestLoaderService_Run(t *testing.T) {
	logger, handler := newTestLogger(t)
	telemetry, reader := newRecordingTelemetry(t)

	st := new(MockTableStore)
	st.On("ReplaceTable", mock.Anything, "stock_data", mock.MatchedBy(func(f *dataset.Frame) bool {
		return f.Len() == 9
	})).Return(int64(9), nil)

	svc := NewLoaderService(st, exporter.NewCSVWriter("", logger), telemetry, logger)
	req := loadRequest(t, testutil.SectorsCSV)

	result, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 9, result.PriceRows)
	assert.Equal(t, 2, result.SectorRows)
	assert.Equal(t, 9, result.MergedRows)
	assert.Equal(t, int64(9), result.StoredRows)
	assert.Equal(t, []string{"Symbol", "Date", "Close", "Volume", "Sector"}, result.Columns)
	st.AssertExpectations(t)

	exported, err := dataset.ReadCSVFile(req.ExportPath)
	require.NoError(t, err)
	assert.Equal(t, result.Columns, exported.Columns)
	assert.Equal(t, 9, exported.Len())

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Load completed")
	testutil.AssertNoErrors(t, handler)
	assert.Equal(t, int64(1), counterTotal(t, reader, "pipeline_runs_total"))
}

func TestLoaderService_MissingKey(t *testing.T) {
	logger, _ := newTestLogger(t)

	st := new(MockTableStore)
	svc := NewLoaderService(st, exporter.NewCSVWriter("", logger), nil, logger)
	req := loadRequest(t, "Ticker,Sector\nAAA,Banking\n")

	result, err := svc.Run(context.Background(), req)
	assert.Nil(t, result)

	var missing *apperrors.MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"sectors"}, missing.Sources)

	st.AssertNotCalled(t, "ReplaceTable", mock.Anything, mock.Anything, mock.Anything)
	_, statErr := os.Stat(req.ExportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoaderService_StoreFailure(t *testing.T) {
	logger, _ := newTestLogger(t)

	st := new(MockTableStore)
	st.On("ReplaceTable", mock.Anything, "stock_data", mock.Anything).
		Return(int64(0), apperrors.NewStorageError("failed to create table", errors.New("disk full")))

	svc := NewLoaderService(st, exporter.NewCSVWriter("", logger), nil, logger)
	req := loadRequest(t, testutil.SectorsCSV)

	_, err := svc.Run(context.Background(), req)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)

	_, statErr := os.Stat(req.ExportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoaderService_InvalidRequest(t *testing.T) {
	logger, _ := newTestLogger(t)
	svc := NewLoaderService(new(MockTableStore), exporter.NewCSVWriter("", logger), nil, logger)

	tests := []struct {
		name   string
		mutate func(*LoadRequest)
	}{
		{name: "missing table", mutate: func(r *LoadRequest) { r.Table = "" }},
		{name: "missing export path", mutate: func(r *LoadRequest) { r.ExportPath = "" }},
		{name: "missing prices path", mutate: func(r *LoadRequest) { r.PricesPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := loadRequest(t, testutil.SectorsCSV)
			tt.mutate(&req)

			_, err := svc.Run(context.Background(), req)
			assert.ErrorContains(t, err, "invalid load request")
		})
	}
}

func TestLoaderService_MissingFile(t *testing.T) {
	logger, _ := newTestLogger(t)
	svc := NewLoaderService(new(MockTableStore), exporter.NewCSVWriter("", logger), nil, logger)

	req := loadRequest(t, testutil.SectorsCSV)
	req.PricesPath = filepath.Join(t.TempDir(), "absent.csv")

	_, err := svc.Run(context.Background(), req)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestLoaderService_SQLite(t *testing.T) {
	logger, _ := newTestLogger(t)
	ctx := context.Background()

	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "stock_data.db"), logger)
	require.NoError(t, err)
	defer st.Close()

	svc := NewLoaderService(st, exporter.NewCSVWriter("", logger), nil, logger)

	// Running twice replaces the table rather than appending to it.
	for i := 0; i < 2; i++ {
		_, err := svc.Run(ctx, loadRequest(t, testutil.SectorsCSV))
		require.NoError(t, err)
	}

	n, err := st.CountRows(ctx, "stock_data")
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)
}
