package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/verse/internal/spotify/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Spotify authentication",
	Long:  `Commands for managing Spotify OAuth authentication.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Spotify",
	Long:  `Authenticates with Spotify using the OAuth PKCE flow.`,
	RunE:  runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored Spotify credentials",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if cfg.Spotify.ClientID == "" {
		return fmt.Errorf("spotify.client_id not configured. Set it in your config file or via VERSE_SPOTIFY_CLIENT_ID")
	}

	pkce, err := auth.NewPKCE()
	if err != nil {
		return fmt.Errorf("failed to generate PKCE: %w", err)
	}

	authCfg := auth.NewConfig(cfg.Spotify.ClientID)
	if cfg.Spotify.RedirectURI != "" {
		authCfg.RedirectURI = cfg.Spotify.RedirectURI
	}

	callbackServer, err := auth.NewCallbackServer(redirectPort(authCfg.RedirectURI))
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	callbackServer.Start()
	defer func() { _ = callbackServer.Shutdown(context.Background()) }()

	authURL := authCfg.AuthorizeURLFor(pkce)
	fmt.Printf("Open this URL in your browser to authenticate:\n\n%s\n\n", authURL)
	fmt.Println("Waiting for authentication...")

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	result, err := callbackServer.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authentication timed out: %w", err)
	}
	if result.Error != "" {
		return fmt.Errorf("authentication failed: %s", result.Error)
	}
	if result.State != pkce.State {
		return fmt.Errorf("state mismatch: possible CSRF attack")
	}

	token, err := auth.ExchangeCode(ctx, cfg.Spotify.ClientID, result.Code, authCfg.RedirectURI, pkce.Verifier)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}
	if err := storage.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "authenticated"})
		return nil
	}
	fmt.Println("Authentication successful! Token stored.")
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	fmt.Println("Logged out. Stored credentials removed.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	token, err := storage.Load()
	authenticated := err == nil && token != nil

	if JSONOutput() {
		out := map[string]interface{}{"authenticated": authenticated}
		if authenticated {
			out["expired"] = token.IsExpired()
			out["token_path"] = storage.Path()
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if !authenticated {
		fmt.Println("Not authenticated. Run 'verse auth login' to authenticate.")
		return nil
	}

	fmt.Println("Authenticated with Spotify.")
	if token.IsExpired() {
		fmt.Println("Access token is expired and will be refreshed on next use.")
	}
	if Verbose() {
		fmt.Printf("Token path: %s\n", storage.Path())
	}
	return nil
}

// redirectPort extracts the port from the redirect URI, falling back to the
// default callback port.
func redirectPort(redirectURI string) int {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return 8898
	}
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	return 8898
}
