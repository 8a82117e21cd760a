package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PAYRANK_TEST_DIR", "/srv/payrank")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data", "payrank.db"), ExpandPath("~/data/payrank.db"))
	assert.Equal(t, "/srv/payrank/payrank.db", ExpandPath("$PAYRANK_TEST_DIR/payrank.db"))
	assert.Equal(t, "/tmp/plain.db", ExpandPath("/tmp/plain.db"))
}

func TestDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults(viper.GetViper())

	assert.Equal(t, "USD", Currency())
	assert.Equal(t, DefaultScheduleSpec, ScheduleSpec())
	assert.Equal(t, ExpandPath(DefaultDatabasePath), DatabasePath())

	plaidCfg := LoadPlaidConfig()
	assert.Equal(t, "sandbox", plaidCfg.Environment)

	tuiCfg := LoadTUI()
	assert.Equal(t, "default", tuiCfg.Theme)
	assert.InDelta(t, 5, tuiCfg.WeightStep, 0.0001)
	assert.True(t, tuiCfg.ShowHelp)
	assert.False(t, viper.GetBool("schedule.auto_commit"))
}

func TestOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults(viper.GetViper())

	viper.Set("currency", " eur ")
	viper.Set("database.path", "/var/lib/payrank.db")
	viper.Set("schedule.cron", "@daily")

	assert.Equal(t, "EUR", Currency())
	assert.Equal(t, "/var/lib/payrank.db", DatabasePath())
	assert.Equal(t, "@daily", ScheduleSpec())

	viper.Set("tui.weight_step", -1)
	assert.InDelta(t, 5, LoadTUI().WeightStep, 0.0001)
}

func TestLoadSheetsConfigUsesSavedToken(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults(viper.GetViper())
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}

	tokenFile := filepath.Join(t.TempDir(), "sheets-token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"refresh_token":"saved-refresh"}`), 0600))

	viper.Set("sheets.client_id", "client")
	viper.Set("sheets.client_secret", "secret")
	viper.Set("sheets.token_file", tokenFile)
	viper.Set("currency", "eur")

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "saved-refresh", cfg.RefreshToken)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, tokenFile, SheetsTokenFile())
}

func TestLoadSheetsConfigRequiresCredentials(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults(viper.GetViper())
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
	} {
		t.Setenv(key, "")
	}
	viper.Set("sheets.token_file", filepath.Join(t.TempDir(), "missing.json"))

	_, err := LoadSheetsConfig()
	assert.Error(t, err)
}
