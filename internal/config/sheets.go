package config

import (
	"os"

	"github.com/Veraticus/payrank/internal/sheets"
	"github.com/spf13/viper"
)

// DefaultSheetsTokenFile is where 'payrank auth sheets' keeps the OAuth2 token.
const DefaultSheetsTokenFile = "$HOME/.config/payrank/sheets-token.json"

// SheetsTokenFile returns the expanded OAuth2 token path.
func SheetsTokenFile() string {
	path := viper.GetString("sheets.token_file")
	if path == "" {
		path = DefaultSheetsTokenFile
	}
	return ExpandPath(path)
}

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// Viper keys (config file or PAYRANK_ env vars) win over GOOGLE_SHEETS_* variables.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.sheet_title"); v != "" {
		config.SheetTitle = v
	}
	config.Currency = Currency()

	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}

	// A token saved by the interactive flow stands in for a configured one.
	if config.RefreshToken == "" && config.ClientID != "" && config.ServiceAccountPath == "" {
		if token, err := sheets.LoadToken(SheetsTokenFile()); err == nil {
			config.RefreshToken = token.RefreshToken
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
