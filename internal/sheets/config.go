// Package sheets exports allocation runs to Google Sheets.
package sheets

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/Veraticus/payrank/internal/common"
)

// Defaults for a new spreadsheet.
const (
	DefaultSpreadsheetName = "Payment Run"
	DefaultSheetTitle      = "Waterline"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	SheetTitle         string
	TimeZone           string
	Currency           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  DefaultSpreadsheetName,
		SheetTitle:       DefaultSheetTitle,
		TimeZone:         "America/New_York",
		Currency:         "USD",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// tab returns the tab title, falling back to DefaultSheetTitle.
func (c Config) tab() string {
	if t := strings.TrimSpace(c.SheetTitle); t != "" {
		return t
	}
	return DefaultSheetTitle
}

// Validate reports the first problem with the configuration. Exactly one of
// OAuth2 or a service account must be set up.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !hasOAuth && !hasServiceAccount:
		return fmt.Errorf("%w: no authentication method configured; run 'payrank auth sheets' or set sheets.service_account_path", common.ErrMissingConfig)
	case hasOAuth && hasServiceAccount:
		return fmt.Errorf("%w: both OAuth2 and a service account are configured", common.ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	if c.Currency != "" && money.GetCurrency(strings.ToUpper(c.Currency)) == nil {
		return fmt.Errorf("%w: unknown currency %q", common.ErrInvalidConfig, c.Currency)
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("%w: time zone %q: %v", common.ErrInvalidConfig, c.TimeZone, err)
		}
	}
	return nil
}
