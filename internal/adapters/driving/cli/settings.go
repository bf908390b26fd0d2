package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finconnect/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the configuration stored in config.toml.

Environment variables (FINCONNECT_*) override the stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save it to config.toml.

Keys:
  data_dir              module cache directory
  repository.kind       file, http or github
  repository.location   directory, base URL or owner/repo[@ref]
  repository.github_token  GitHub token for the github repository
  errors_path           JSON error-code table
  verbose               true or false`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Printf("  Data directory: %s\n", settings.DataDir)
	cmd.Printf("  Error table: %s\n", valueOr(settings.ErrorsPath, "(built-in)"))
	cmd.Printf("  Verbose: %t\n", settings.Verbose)
	cmd.Println()

	cmd.Println("[Repository]")
	cmd.Printf("  Kind: %s\n", settings.RepositoryKind)
	cmd.Printf("  Location: %s\n", valueOr(settings.Repository, "(not set)"))
	if settings.RepositoryKind == domain.RepositoryGitHub {
		if settings.GitHubToken != "" {
			cmd.Printf("  Token: %s\n", maskToken(settings.GitHubToken))
		} else {
			cmd.Printf("  Token: (not set, unauthenticated rate limits apply)\n")
		}
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	key, value := args[0], args[1]
	switch key {
	case "data_dir":
		settings.DataDir = value
	case "repository.kind":
		settings.RepositoryKind = domain.RepositoryKind(value)
	case "repository.location":
		settings.Repository = value
	case "repository.github_token":
		settings.GitHubToken = value
	case "errors_path":
		settings.ErrorsPath = value
	case "verbose":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false, got %q", value)
		}
		settings.Verbose = v
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Saved %s.\n", key)
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
