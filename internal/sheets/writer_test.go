package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/model"
	"github.com/Veraticus/payrank/internal/ranking"
	"github.com/Veraticus/payrank/internal/service"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.EnableFormatting)
	assert.Equal(t, DefaultSpreadsheetName, cfg.SpreadsheetName)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 3, cfg.RetryAttempts)
}

func testReport() *service.RunReport {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	allocated := []model.Invoice{
		{
			ID: "VEND-000001", Vendor: "Landlord Holdings", Category: model.CategoryRent,
			Importance: model.ImportanceCritical, Status: model.StatusApproved, Override: model.OverrideAuto,
			Amount: 800, InvoiceDate: day, DueDate: day.AddDate(0, 0, 5), Score: 0.9333, AgeDays: 31,
		},
		{
			ID: "VEND-000002", Vendor: "Print Shop", Category: model.CategoryServices,
			Importance: model.ImportanceLow, Status: model.StatusHold, Override: model.OverrideManualHold,
			Amount: 300.456, InvoiceDate: day, DueDate: day.AddDate(0, 1, 0), Score: 0.41234, AgeDays: 31,
		},
	}
	return &service.RunReport{
		GeneratedAt: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		Weights:     model.DefaultWeights(),
		Rows:        ranking.Waterline(allocated, 1000),
		Summary:     ranking.Summarize(allocated, 1000),
	}
}

func TestPrepareReportData(t *testing.T) {
	values, headerRow := prepareReportData(testReport())

	assert.Equal(t, []any{"Payment Run", "Jun 1, 2024 09:30"}, values[0])
	assert.Equal(t, []any{"Available Cash", 1000.0}, values[3])
	assert.Equal(t, []any{"Approved", 800.0, 1}, values[4])
	assert.Equal(t, []any{"On Hold", 300.46, 1}, values[5])
	assert.Equal(t, []any{"Weights (importance/age/amount)", "60/30/10"}, values[10])

	assert.Equal(t, waterlineHeader, values[headerRow])
	require.Len(t, values, headerRow+3)

	first := values[headerRow+1]
	assert.Equal(t, 1, first[0])
	assert.Equal(t, "VEND-000001", first[1])
	assert.Equal(t, 800.0, first[amountColumn])
	assert.Equal(t, 800.0, first[cumulativeColumn])
	assert.Equal(t, "Approved", first[11])

	second := values[headerRow+2]
	assert.Equal(t, 0.4123, second[8])
	assert.Equal(t, 800.0, second[cumulativeColumn])
	assert.Equal(t, "Hold", second[11])
	assert.Equal(t, "ManualHold", second[12])
}

func TestPrepareReportDataMarksOverBudget(t *testing.T) {
	report := testReport()
	report.Rows = ranking.Waterline([]model.Invoice{report.Rows[0].Invoice}, 500)

	values, headerRow := prepareReportData(report)
	assert.Equal(t, "Approved (over budget)", values[headerRow+1][11])
}

func TestCurrencyPattern(t *testing.T) {
	assert.Equal(t, `"$"#,##0.00`, currencyPattern("usd"))
	assert.Equal(t, `"€"#,##0.00`, currencyPattern("EUR"))
	assert.Equal(t, "#,##0.00", currencyPattern("XXXX"))
}

func TestFormattingRequests(t *testing.T) {
	requests := formattingRequests(42, 20, 13, "USD")
	require.Len(t, requests, 7)
	for _, req := range requests {
		if req.RepeatCell != nil {
			assert.Equal(t, int64(42), req.RepeatCell.Range.SheetId)
		}
	}
	assert.Equal(t, int64(42), requests[6].UpdateSheetProperties.Properties.SheetId)

	summary := requests[3].RepeatCell.Range
	assert.Equal(t, int64(3), summary.StartRowIndex)
	assert.Equal(t, int64(8), summary.EndRowIndex)

	frozen := requests[6].UpdateSheetProperties.Properties.GridProperties.FrozenRowCount
	assert.Equal(t, int64(14), frozen)

	amounts := requests[4].RepeatCell
	assert.Equal(t, int64(14), amounts.Range.StartRowIndex)
	assert.Equal(t, int64(amountColumn), amounts.Range.StartColumnIndex)
	assert.Equal(t, `"$"#,##0.00`, amounts.Cell.UserEnteredFormat.NumberFormat.Pattern)
}

func TestMockWriter(t *testing.T) {
	mock := NewMockWriter()
	assert.Nil(t, mock.Last())

	report := testReport()
	require.NoError(t, mock.Write(context.Background(), report))
	assert.Same(t, report, mock.Last())

	mock.Err = errors.New("quota exceeded")
	assert.ErrorIs(t, mock.Write(context.Background(), report), mock.Err)
	assert.Len(t, mock.Reports(), 2)
}

func TestAPIError(t *testing.T) {
	assert.NoError(t, apiError(nil))

	plain := errors.New("dial tcp: timeout")
	assert.Same(t, plain, apiError(plain))

	tests := []struct {
		code      int
		retryable bool
	}{
		{code: http.StatusTooManyRequests, retryable: true},
		{code: http.StatusServiceUnavailable, retryable: true},
		{code: http.StatusForbidden, retryable: false},
		{code: http.StatusNotFound, retryable: false},
	}
	for _, tt := range tests {
		err := apiError(fmt.Errorf("write: %w", &googleapi.Error{Code: tt.code}))
		var marked *common.RetryableError
		require.ErrorAs(t, err, &marked)
		assert.Equal(t, tt.retryable, marked.Retryable, tt.code)
		assert.Equal(t, tt.retryable, common.IsRetryable(err), tt.code)
	}
	assert.ErrorIs(t, apiError(&googleapi.Error{Code: http.StatusTooManyRequests}), common.ErrRateLimit)
}

func TestFindTab(t *testing.T) {
	doc := &gsheets.Spreadsheet{Sheets: []*gsheets.Sheet{
		{Properties: &gsheets.SheetProperties{Title: "Sheet1", SheetId: 0}},
		{Properties: &gsheets.SheetProperties{Title: "Waterline", SheetId: 917}},
	}}

	id, ok := findTab(doc, "waterline")
	assert.True(t, ok)
	assert.Equal(t, int64(917), id)

	_, ok = findTab(doc, "Archive")
	assert.False(t, ok)
	_, ok = findTab(nil, "Waterline")
	assert.False(t, ok)
}

func TestTabRange(t *testing.T) {
	assert.Equal(t, "'Waterline'!A:Z", tabRange("Waterline", "A:Z"))
	assert.Equal(t, "'Bob''s Run'!A1", tabRange("Bob's Run", "A1"))
}

func TestConfigTab(t *testing.T) {
	assert.Equal(t, DefaultSheetTitle, Config{}.tab())
	assert.Equal(t, "May", Config{SheetTitle: " May "}.tab())
	assert.Equal(t, DefaultSheetTitle, DefaultConfig().tab())
}

func TestNewWriterRejectsInvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
