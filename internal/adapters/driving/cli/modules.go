package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules published by the repository",
	Long: `Lists the modules of the configured repository with their published
version and the locally installed version, if any.`,
	Args: cobra.NoArgs,
	RunE: runModules,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check the module cache is usable",
	Args:  cobra.NoArgs,
	RunE:  runTest,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update installed modules",
	Long: `Refreshes every installed module from the repository. If the update
fails, the local data directory is wiped and the update retried once.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(updateCmd)
}

func runModules(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if moduleService == nil {
		return errors.New("module service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	modules, err := moduleService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list modules: %w", err)
	}
	if len(modules) == 0 {
		cmd.Println("No modules published.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tINSTALLED")
	for _, m := range modules {
		installed := "-"
		if m.Installed {
			installed = m.InstalledVersion
			if m.NeedsUpdate() {
				installed += " (update available)"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Version, installed)
	}
	return w.Flush()
}

func runTest(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if moduleService == nil {
		return errors.New("module service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := moduleService.Test(ctx); err != nil {
		return err
	}
	cmd.Println("Module cache is usable.")
	return nil
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if moduleService == nil {
		return errors.New("module service not configured")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	cmd.Println("Updating modules...")
	if err := moduleService.UpdateAll(ctx); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	cmd.Println("Modules are up to date.")
	return nil
}
