package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// DefaultCallbackAddr is where the browser is sent back after sign-in.
const DefaultCallbackAddr = "localhost:8080"

// DefaultAuthTimeout bounds how long the interactive flow waits.
const DefaultAuthTimeout = 5 * time.Minute

// OAuth2Config holds the installed-app credentials and where the token lives.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string        // optional; the token is not persisted when empty
	CallbackAddr string        // host:port for the redirect listener
	Timeout      time.Duration // zero means DefaultAuthTimeout
}

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

var callbackPage = template.Must(template.New("callback").Parse(`<html><body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<script>window.setTimeout(function(){window.close();}, 3000);</script>
</body></html>`))

// callbackHandler accepts one redirect carrying state and hands its code on.
func callbackHandler(state string, codes chan<- string, errs chan<- error) http.Handler {
	render := func(w http.ResponseWriter, status int, title, message string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = callbackPage.Execute(w, struct{ Title, Message string }{title, message})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			render(w, http.StatusBadRequest, "Authentication Failed", "The sign-in response did not match this request. Run 'payrank auth sheets' again.")
			errs <- fmt.Errorf("oauth2 state mismatch")
		case q.Get("error") != "":
			render(w, http.StatusForbidden, "Authentication Failed", "Google reported: "+q.Get("error"))
			errs <- fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("code") == "":
			render(w, http.StatusBadRequest, "Authentication Failed", "No authorization code received.")
			errs <- fmt.Errorf("no authorization code received")
		default:
			render(w, http.StatusOK, "Authentication Successful!", "You can close this window and return to payrank.")
			codes <- q.Get("code")
		}
	})
}

// AuthenticateOAuth2Interactive runs the browser sign-in flow and returns a
// token with offline access. The token is saved when TokenFile is set.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	addr := config.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthTimeout
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	state := uuid.NewString()
	codes := make(chan string, 1)
	errs := make(chan error, 2)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, codes, errs))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if serveErr := server.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			errs <- fmt.Errorf("callback server failed: %w", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			slog.Warn("Error shutting down callback server", "error", shutdownErr)
		}
	}()

	oc := oauthConfig(config.ClientID, config.ClientSecret, "http://"+listener.Addr().String()+"/callback")
	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	slog.Info("🔐 Google Sheets Authentication Required")
	slog.Info("Please visit this URL to authenticate", "url", authURL)
	slog.Info("Waiting for authentication...", "timeout", timeout)

	var code string
	select {
	case code = <-codes:
		slog.Info("Received authorization code")
	case err := <-errs:
		return nil, err
	case <-time.After(timeout):
		return nil, fmt.Errorf("authentication timed out after %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, token); err != nil {
			slog.Warn("Failed to save token", "error", err, "file", config.TokenFile)
		} else {
			slog.Info("Token saved", "file", config.TokenFile)
		}
	}
	return token, nil
}

// LoadToken reads a token saved by SaveToken.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", tokenFile, err)
	}
	if token.RefreshToken == "" && token.AccessToken == "" {
		return nil, fmt.Errorf("token %s is empty", tokenFile)
	}
	return token, nil
}

// SaveToken writes a token readable only by the current user.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// RefreshTokenIfNeeded returns token unchanged while it is valid, and a
// refreshed (and re-saved) token once it has expired.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	slog.Info("Token expired, refreshing...")
	fresh, err := oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, fresh); err != nil {
			slog.Warn("Failed to save refreshed token", "error", err)
		}
	}
	return fresh, nil
}

// GetOrCreateToken reuses the saved token when there is one and otherwise
// runs the interactive flow.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		token, err := LoadToken(config.TokenFile)
		if err == nil {
			slog.Info("Loaded existing token", "file", config.TokenFile)
			return RefreshTokenIfNeeded(ctx, config, token)
		}
		slog.Debug("No usable saved token, starting OAuth2 flow", "error", err)
	}

	return AuthenticateOAuth2Interactive(ctx, config)
}
