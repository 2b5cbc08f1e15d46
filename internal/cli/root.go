// Package cli wires the cobra command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dcx-dev/dcx/internal/branding"
	"github.com/dcx-dev/dcx/internal/config"
	"github.com/dcx-dev/dcx/internal/registry"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds devcontainer configuration files from the
community template index: pull the index, search it, and materialize a
template with resolved options and add-on features into a workspace.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// loadIndex reads the persisted community index, pointing the user at
// the update command when it has not been pulled yet.
func loadIndex() (*registry.Index, error) {
	path := config.IndexPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("missing %s\n\n\tRun `%s update` first", path, branding.CLIName())
	}
	return registry.ReadIndexFile(path)
}
