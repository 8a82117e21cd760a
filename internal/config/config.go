package config

import (
	"strings"

	"github.com/Veraticus/payrank/internal/plaid"
	"github.com/Veraticus/payrank/internal/sheets"
	"github.com/spf13/viper"
)

// Defaults applied when nothing is configured.
const (
	DefaultDatabasePath = "$HOME/.local/share/payrank/payrank.db"
	DefaultCurrency     = "USD"
	// DefaultScheduleSpec recomputes the run every weekday morning.
	DefaultScheduleSpec = "0 8 * * 1-5"
)

// SetDefaults registers default values for every key payrank reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("currency", DefaultCurrency)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("plaid.environment", "sandbox")
	v.SetDefault("sheets.callback_addr", sheets.DefaultCallbackAddr)
	v.SetDefault("schedule.cron", DefaultScheduleSpec)
	v.SetDefault("schedule.auto_commit", false)
	v.SetDefault("tui.theme", "default")
	v.SetDefault("tui.weight_step", 5)
	v.SetDefault("tui.show_help", true)
}

// DatabasePath returns the expanded SQLite path.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// Currency returns the ISO code used to format amounts.
func Currency() string {
	cur := strings.ToUpper(strings.TrimSpace(viper.GetString("currency")))
	if cur == "" {
		return DefaultCurrency
	}
	return cur
}

// ScheduleSpec returns the cron expression for the payment-run watcher.
func ScheduleSpec() string {
	spec := strings.TrimSpace(viper.GetString("schedule.cron"))
	if spec == "" {
		return DefaultScheduleSpec
	}
	return spec
}

// TUI holds the interactive waterline preferences.
type TUI struct {
	Theme      string
	WeightStep float64
	ShowHelp   bool
}

// LoadTUI reads the tui.* keys.
func LoadTUI() TUI {
	t := TUI{
		Theme:      strings.TrimSpace(viper.GetString("tui.theme")),
		WeightStep: viper.GetFloat64("tui.weight_step"),
		ShowHelp:   viper.GetBool("tui.show_help"),
	}
	if t.WeightStep <= 0 {
		t.WeightStep = 5
	}
	return t
}

// LoadPlaidConfig reads Plaid credentials from viper.
func LoadPlaidConfig() plaid.Config {
	cfg := plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
		AccountIDs:  viper.GetStringSlice("plaid.account_ids"),
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}
	return cfg
}
