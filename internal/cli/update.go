package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcx-dev/dcx/internal/branding"
	"github.com/dcx-dev/dcx/internal/config"
	"github.com/dcx-dev/dcx/internal/registry"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Pull the community index of templates and features",
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if err := config.EnsureDir(); err != nil {
		return err
	}

	// The "registry.index_ref" config key overrides the built-in index.
	indexRef := config.Get("registry.index_ref")
	if indexRef == "" {
		indexRef = branding.IndexRef()
	}

	dest := config.IndexPath()
	if err := registry.NewClient().PullIndex(indexRef, dest); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", dest)
	return nil
}
