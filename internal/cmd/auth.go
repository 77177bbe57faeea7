package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arubanetworks/central-cli/internal/config"
	"github.com/arubanetworks/central-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Configure and manage Aruba Central API credentials stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		url     string
		token   string
		profile string
		envFile string
		verify  bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save API credentials",
		Long: strings.TrimSpace(`
Save Aruba Central credentials securely to your OS keychain.

You'll need:
- Base URL: your regional API gateway (e.g. https://apigw-uswest4.central.arubanetworks.com)
- Access Token: generate from Account Home > API Gateway > System Apps & Tokens

Optional:
- Profile: save multiple gateways and switch between them
`),
		Example: strings.TrimSpace(`
  # Login with flags
  central auth login --url https://apigw-uswest4.central.arubanetworks.com --token YOUR_TOKEN

  # Save to a named profile
  central auth login --url https://apigw-eucentral3.central.arubanetworks.com --token YOUR_TOKEN --profile eu

  # Load credentials from a .env file
  central auth login --env-file .env
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				applyAuthEnvFileRuntimeVars(envVars)

				if url == "" {
					url = strings.TrimSpace(envVars["CENTRAL_BASE_URL"])
				}
				if token == "" {
					token = strings.TrimSpace(envVars["CENTRAL_ACCESS_TOKEN"])
				}
				if !cmd.Flags().Changed("profile") {
					if envProfile := strings.TrimSpace(envVars["CENTRAL_PROFILE"]); envProfile != "" {
						profile = envProfile
					}
				}
			}

			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			// Normalize URL (remove trailing slash)
			url = strings.TrimSuffix(url, "/")

			// Validate URL to prevent SSRF attacks
			if err := validation.ValidateCentralURL(url); err != nil {
				return fmt.Errorf("invalid URL: %w", err)
			}

			account := config.Account{
				BaseURL:     url,
				AccessToken: token,
			}

			if verify {
				client := newClientFactory().newClient(account)
				reachable, err := client.Reachable(cmd.Context())
				if err != nil {
					return fmt.Errorf("credential check failed: %w", err)
				}
				if !reachable {
					return fmt.Errorf("gateway did not accept the credentials")
				}
			}

			if err := config.SaveProfile(profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Authentication credentials saved successfully!")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Base URL: %s\n", url)
			if profile != "" && profile != "default" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Profile: %s\n", profile)
			}

			return nil
		}),
	}

	cmd.Flags().StringVar(&url, "url", "", "Central API gateway URL (e.g. https://apigw-uswest4.central.arubanetworks.com)")
	cmd.Flags().StringVar(&token, "token", "", "API access token")
	cmd.Flags().StringVar(&profile, "profile", "default", "Profile name to save credentials under")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load CENTRAL_* values from a .env file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the credentials against the gateway before saving")
	flagAlias(cmd.Flags(), "url", "ur")
	flagAlias(cmd.Flags(), "token", "tk")
	flagAlias(cmd.Flags(), "profile", "pf")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}

	return envVars, nil
}

// applyAuthEnvFileRuntimeVars copies keyring/runtime settings from --env-file
// into process environment when they are not already exported.
func applyAuthEnvFileRuntimeVars(envVars map[string]string) {
	keys := []string{
		"CENTRAL_KEYRING_BACKEND",
		"CENTRAL_KEYRING_PASSWORD",
		"CENTRAL_CREDENTIALS_DIR",
	}

	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value := strings.TrimSpace(envVars[key])
		if value == "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the currently saved authentication configuration (access token is masked for security).",
		Example: strings.TrimSpace(`
  # Check authentication status
  central auth status

  # JSON output for scripting
  central auth status --json
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			envBaseURL := strings.TrimSpace(os.Getenv("CENTRAL_BASE_URL"))
			envToken := strings.TrimSpace(os.Getenv("CENTRAL_ACCESS_TOKEN"))
			usingEnv := envBaseURL != "" || envToken != ""

			account, err := config.LoadAccount()
			if err != nil {
				if err == config.ErrNotConfigured {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'central auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'central auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			var profile string
			if !usingEnv {
				if current, err := config.CurrentProfile(); err == nil {
					profile = current
				}
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"base_url":      account.BaseURL,
					"access_token":  maskToken(account.AccessToken),
					"source":        map[bool]string{true: "env", false: "keychain"}[usingEnv],
				}
				if profile != "" {
					payload["profile"] = profile
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Authenticated")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Base URL: %s\n", account.BaseURL)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Access Token: %s\n", maskToken(account.AccessToken))
			if profile != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Profile: %s\n", profile)
			}
			if usingEnv {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "  Source: env")
			}

			return nil
		}),
	}

	return cmd
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from keychain",
		Long:  "Delete the stored authentication credentials from your OS keychain.",
		Example: strings.TrimSpace(`
  # Remove stored credentials
  central auth logout
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if profile == "" {
				current, err := config.CurrentProfile()
				if err == nil {
					profile = current
				}
			}

			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
					return nil
				}
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			if profile == "" || profile == "default" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed successfully.")
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed successfully.\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile name to remove (defaults to current)")
	flagAlias(cmd.Flags(), "profile", "pf")

	return cmd
}

// maskToken masks an API token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) < 8 {
		return strings.Repeat("*", len(token)) // Match actual length
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
