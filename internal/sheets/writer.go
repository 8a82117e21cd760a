package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/service"
)

// Writer publishes payment runs to one tab of a spreadsheet. The tab is
// created on first use and rewritten on every run.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := newService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write replaces the tab's contents with the report.
func (w *Writer) Write(ctx context.Context, report *service.RunReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	w.logger.Info("publishing payment run",
		"invoices", len(report.Rows),
		"generated_at", report.GeneratedAt.Format(time.RFC3339))

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	spreadsheetID, err := w.spreadsheet(ctx)
	if err != nil {
		return err
	}

	var sheetID int64
	err = common.WithRetry(ctx, func() error {
		var ensureErr error
		sheetID, ensureErr = w.ensureTab(ctx, spreadsheetID)
		return apiError(ensureErr)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %q: %w", w.config.tab(), err)
	}

	values, headerRow := prepareReportData(report)

	err = common.WithRetry(ctx, func() error {
		if _, clearErr := w.service.Spreadsheets.Values.
			Clear(spreadsheetID, tabRange(w.config.tab(), "A:Z"), &sheets.ClearValuesRequest{}).
			Context(ctx).Do(); clearErr != nil {
			return apiError(fmt.Errorf("failed to clear tab: %w", clearErr))
		}
		return apiError(w.writeValues(ctx, spreadsheetID, values))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write payment run: %w", err)
	}

	if w.config.EnableFormatting {
		requests := formattingRequests(sheetID, len(values), headerRow, w.config.Currency)
		err = common.WithRetry(ctx, func() error {
			_, batchErr := w.service.Spreadsheets.
				BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
				Context(ctx).Do()
			return apiError(batchErr)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("payment run published",
		"spreadsheet_id", spreadsheetID,
		"tab", w.config.tab(),
		"rows", len(values))
	return nil
}

// apiError marks Google API failures for WithRetry: quota and server errors
// are worth retrying, other client errors are not.
func apiError(err error) error {
	var gerr *googleapi.Error
	if err == nil || !errors.As(err, &gerr) {
		return err
	}
	if gerr.Code == http.StatusTooManyRequests {
		err = fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	}
	return &common.RetryableError{Err: err, Retryable: gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500}
}

// newService authenticates with a service account key or an OAuth2
// refresh token, whichever is configured.
func newService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").
			TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"})
	}

	return sheets.NewService(ctx, option.WithTokenSource(tokenSource))
}

// spreadsheet returns the configured spreadsheet or creates a new one.
func (w *Writer) spreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		return w.config.SpreadsheetID, nil
	}

	created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: w.config.tab()}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created spreadsheet; set sheets.spreadsheet_id to reuse it",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureTab returns the ID of the configured tab, adding it if missing.
func (w *Writer) ensureTab(ctx context.Context, spreadsheetID string) (int64, error) {
	doc, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}
	if id, ok := findTab(doc, w.config.tab()); ok {
		return id, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: w.config.tab()},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add tab: %w", err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("unable to add tab: empty reply")
	}

	w.logger.Debug("added tab", "title", w.config.tab())
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// findTab looks a tab up by title, ignoring case.
func findTab(doc *sheets.Spreadsheet, title string) (int64, bool) {
	if doc == nil {
		return 0, false
	}
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && strings.EqualFold(sheet.Properties.Title, title) {
			return sheet.Properties.SheetId, true
		}
	}
	return 0, false
}

// tabRange qualifies an A1 range with a tab title.
func tabRange(title, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), cells)
}

// writeValues writes rows in batches of BatchSize.
func (w *Writer) writeValues(ctx context.Context, spreadsheetID string, values [][]any) error {
	for start := 0; start < len(values); start += w.config.BatchSize {
		end := min(start+w.config.BatchSize, len(values))

		_, err := w.service.Spreadsheets.Values.
			Update(spreadsheetID, tabRange(w.config.tab(), fmt.Sprintf("A%d", start+1)), &sheets.ValueRange{Values: values[start:end]}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write rows %d-%d: %w", start+1, end, err)
		}

		w.logger.Debug("wrote rows", "start", start+1, "end", end)
	}
	return nil
}

func gridRange(sheetID, startRow, endRow, startCol, endCol int64) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    startRow,
		EndRowIndex:      endRow,
		StartColumnIndex: startCol,
		EndColumnIndex:   endCol,
		ForceSendFields:  []string{"SheetId"},
	}
}

func boldRange(r *sheets.GridRange, fontSize int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: r,
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true, FontSize: fontSize},
				},
			},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}

func currencyRange(r *sheets.GridRange, pattern string) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: r,
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: pattern},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}

// formattingRequests styles the title, the summary amounts, and the
// waterline table, and freezes the waterline header.
func formattingRequests(sheetID int64, totalRows, headerRow int, currency string) []*sheets.Request {
	pattern := currencyPattern(currency)
	header := int64(headerRow)
	total := int64(totalRows)
	columns := int64(len(waterlineHeader))

	return []*sheets.Request{
		boldRange(gridRange(sheetID, 0, 1, 0, 2), 16),
		boldRange(gridRange(sheetID, 2, header, 0, 1), 0),
		boldRange(gridRange(sheetID, header, header+1, 0, columns), 0),
		currencyRange(gridRange(sheetID, summaryFirstAmountRow, summaryLastAmountRow+1, 1, 2), pattern),
		currencyRange(gridRange(sheetID, header+1, total, amountColumn, cumulativeColumn+1), pattern),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "COLUMNS",
					StartIndex:      0,
					EndIndex:        columns,
					ForceSendFields: []string{"SheetId"},
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:         sheetID,
					GridProperties:  &sheets.GridProperties{FrozenRowCount: header + 1},
					ForceSendFields: []string{"SheetId"},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}
