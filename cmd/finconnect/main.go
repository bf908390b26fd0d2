// Command finconnect fetches accounts and transactions from financial
// institutions through installable source modules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/finconnect/internal/adapters/driven/config/file"
	repofile "github.com/custodia-labs/finconnect/internal/adapters/driven/repository/file"
	"github.com/custodia-labs/finconnect/internal/adapters/driven/repository/github"
	"github.com/custodia-labs/finconnect/internal/adapters/driven/repository/httprepo"
	"github.com/custodia-labs/finconnect/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/finconnect/internal/adapters/driving/cli"
	"github.com/custodia-labs/finconnect/internal/connectors"
	"github.com/custodia-labs/finconnect/internal/core/domain"
	"github.com/custodia-labs/finconnect/internal/core/ports/driven"
	"github.com/custodia-labs/finconnect/internal/core/services"
	"github.com/custodia-labs/finconnect/internal/logger"
	"github.com/custodia-labs/finconnect/internal/normalisers/banking"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceFactory(buildServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildServices wires the adapters into the core services.
func buildServices(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	defaults := domain.Settings{RepositoryKind: domain.RepositoryFile}
	if home, err := os.UserHomeDir(); err == nil {
		defaults.DataDir = filepath.Join(home, ".finconnect", "data")
	}
	if opts.DataDir != "" {
		defaults.DataDir = opts.DataDir
	}
	settingsService := services.NewSettingsService(configStore, defaults)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if opts.DataDir != "" {
		settings.DataDir = opts.DataDir
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}

	codes, err := file.LoadErrorCodes(settings.ErrorsPath)
	if err != nil {
		return nil, err
	}

	repo, err := newRepository(settings)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open module cache: %w", err)
	}
	logger.Debug("module cache at %s", store.Path())

	registry := services.NewModuleRegistry(repo, store)
	sessions := services.NewSessionBuilder(registry, connectors.NewDefaultFactory())
	connector := services.NewConnector(sessions, banking.New(), services.NewErrorClassifier(codes))

	return &cli.Services{
		Connector: connector,
		Modules:   registry,
		Settings:  settingsService,
		Close:     store.Close,
	}, nil
}

// newRepository selects the module repository adapter.
func newRepository(settings *domain.Settings) (driven.ModuleRepository, error) {
	switch settings.RepositoryKind {
	case domain.RepositoryHTTP:
		return httprepo.New(settings.Repository)
	case domain.RepositoryGitHub:
		return github.New(settings.Repository, settings.GitHubToken)
	default:
		root := settings.Repository
		if root == "" {
			root = filepath.Join(filepath.Dir(settings.DataDir), "modules")
		}
		return repofile.New(root)
	}
}
