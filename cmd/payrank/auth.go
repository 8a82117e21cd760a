package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/payrank/internal/cli"
	"github.com/Veraticus/payrank/internal/common"
	"github.com/Veraticus/payrank/internal/config"
	"github.com/Veraticus/payrank/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize payrank to write Google Sheets",
		Long: `Sign in with Google so 'payrank export sheets' can publish runs.

The sign-in URL is printed to the log; Google redirects back to a local
listener on --callback. The token is saved to sheets.token_file and the
refresh token is written to the config file. A saved token is reused
unless --force is given.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID (default: sheets.client_id or $GOOGLE_SHEETS_CLIENT_ID)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (default: sheets.client_secret or $GOOGLE_SHEETS_CLIENT_SECRET)")
	cmd.Flags().String("callback", "", "host:port for the sign-in redirect")
	cmd.Flags().Bool("force", false, "sign in again even if a token is saved")
	_ = viper.BindPFlag("sheets.callback_addr", cmd.Flags().Lookup("callback"))

	return cmd
}

// sheetsCredentials resolves the OAuth2 client from flags, then config, then
// the environment.
func sheetsCredentials(cmd *cobra.Command) (id, secret string, err error) {
	pick := func(flag, key, env string) string {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			return v
		}
		if v := viper.GetString(key); v != "" {
			return v
		}
		return os.Getenv(env)
	}

	id = pick("client-id", "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	secret = pick("client-secret", "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	if id == "" || secret == "" {
		return "", "", common.NewUserError("OAuth2 client not configured: set sheets.client_id and sheets.client_secret or pass --client-id and --client-secret", common.ErrMissingConfig)
	}
	return id, secret, nil
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	clientID, clientSecret, err := sheetsCredentials(cmd)
	if err != nil {
		return err
	}

	oauth := sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    config.SheetsTokenFile(),
		CallbackAddr: viper.GetString("sheets.callback_addr"),
	}
	slog.Debug("Starting Google Sheets authentication", "token_file", oauth.TokenFile, "callback", oauth.CallbackAddr)

	get := sheets.GetOrCreateToken
	if force, _ := cmd.Flags().GetBool("force"); force {
		get = sheets.AuthenticateOAuth2Interactive
	}
	token, err := get(cmd.Context(), oauth)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)

	w := out(cmd)
	if err := saveConfig(); err != nil {
		slog.Warn("Could not save refresh token to config file", "error", err)
		fmt.Fprintln(w, cli.FormatWarning("Token saved to "+oauth.TokenFile+" but the config file was not updated"))
	} else {
		fmt.Fprintln(w, cli.FormatSuccess("Google Sheets authorized"))
	}
	fmt.Fprintln(w, cli.FormatInfo("Run 'payrank export sheets' to publish a payment run"))
	return nil
}

// saveConfig writes viper's settings to the config file in use, creating
// ~/.config/payrank/config.yaml when none was loaded.
func saveConfig() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "payrank", "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return viper.WriteConfigAs(path)
}
