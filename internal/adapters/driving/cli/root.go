// Package cli implements the finconnect command line.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finconnect/internal/core/ports/driving"
	"github.com/custodia-labs/finconnect/internal/logger"
)

// version is set at build time.
var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Version returns the connector version.
func Version() string {
	return version
}

// Options holds the global flags.
type Options struct {
	// ConfigDir holds config.toml. Empty uses ~/.finconnect.
	ConfigDir string

	// DataDir overrides the configured module cache directory.
	DataDir string

	// Verbose enables debug logging.
	Verbose bool

	// Timeout bounds each command. Zero means no timeout.
	Timeout time.Duration
}

// Services are the driving ports used by the commands.
type Services struct {
	Connector driving.Connector
	Modules   driving.ModuleService
	Settings  driving.SettingsService

	// Close releases the services. May be nil.
	Close func() error
}

// ServiceFactory builds the services once the global flags are parsed.
type ServiceFactory func(opts Options) (*Services, error)

var (
	opts          Options
	buildServices ServiceFactory
	servicesBuilt bool
	closeServices func() error

	connectorService driving.Connector
	moduleService    driving.ModuleService
	settingsService  driving.SettingsService
)

// SetServiceFactory registers the factory called before a command needs
// the services.
func SetServiceFactory(f ServiceFactory) {
	buildServices = f
	servicesBuilt = false
}

var rootCmd = &cobra.Command{
	Use:   "finconnect",
	Short: "Fetch accounts and transactions from financial institutions",
	Long: `finconnect logs into a financial institution through a source module and
prints its accounts or transactions as a JSON envelope.

Source modules are installed from the configured repository on first use.
Failures are reported in the envelope with a stable error code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if opts.Verbose {
			logger.SetVerbose(true)
		}
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigDir, "config", "", "configuration directory (default ~/.finconnect)")
	flags.StringVar(&opts.DataDir, "data-dir", "", "module cache directory (overrides the configuration)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.Verbose, "debug", false, "enable debug logging for this run")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "abort the command after this duration (0 = no timeout)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		// PersistentPostRunE does not run after a failed command.
		return errors.Join(err, shutdown())
	}
	return nil
}

// ensureServices builds the services on first use.
func ensureServices() error {
	if buildServices == nil || servicesBuilt {
		return nil
	}
	svcs, err := buildServices(opts)
	if err != nil {
		return err
	}
	connectorService = svcs.Connector
	moduleService = svcs.Modules
	settingsService = svcs.Settings
	closeServices = svcs.Close
	servicesBuilt = true
	return nil
}

func shutdown() error {
	if closeServices == nil {
		return nil
	}
	closer := closeServices
	closeServices = nil
	return closer()
}

// commandContext applies the --timeout flag to the command context.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}
