package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/standup/internal/api"
)

var (
	loginToken  string
	loginLogout bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for the standup service",
	Long: heredoc.Doc(`
		Store the bearer token sent with every request.

		With auth.device_auth_url and auth.token_url configured, login runs
		the OAuth2 device code flow and refreshes the token automatically.
		Otherwise pass a token directly with --token.
	`),
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Static bearer token to store")
	loginCmd.Flags().BoolVar(&loginLogout, "logout", false, "Forget the stored token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	path := api.TokenPath(baseDir)

	if loginLogout {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}

	if loginToken != "" {
		if err := api.SaveToken(path, &oauth2.Token{AccessToken: loginToken, TokenType: "Bearer"}); err != nil {
			return err
		}
		fmt.Println("Token saved.")
		return nil
	}

	oauthCfg := api.OAuthConfig(cfg.Auth.ClientID, cfg.Auth.DeviceAuthURL, cfg.Auth.TokenURL, cfg.Auth.Scopes)
	if oauthCfg == nil {
		return errors.New("no OAuth2 endpoints configured: set auth.device_auth_url and auth.token_url, or pass --token")
	}
	if _, err := api.DeviceLogin(cmd.Context(), oauthCfg, path, os.Stdout); err != nil {
		return err
	}
	logger.Info("device login completed")
	fmt.Println("Logged in.")
	return nil
}
