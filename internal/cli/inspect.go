package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dcx-dev/dcx/internal/registry"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Show a template's or feature's metadata and options",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Emit the raw entry as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	index, err := loadIndex()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	id := args[0]

	if t := index.GetTemplate(id); t != nil {
		if inspectJSON {
			return writeJSON(cmd, t)
		}
		fmt.Fprintf(out, "Template:    %s\n", t.ID)
		fmt.Fprintf(out, "Version:     %s\n", t.Version)
		fmt.Fprintf(out, "Name:        %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", t.Description)
		}
		if t.Type != "" {
			fmt.Fprintf(out, "Type:        %s\n", t.Type)
		}
		if t.FileCount != nil {
			fmt.Fprintf(out, "Files:       %d\n", *t.FileCount)
		}
		if len(t.Platforms) > 0 {
			fmt.Fprintf(out, "Platforms:   %s\n", strings.Join(t.Platforms, ", "))
		}
		printOptions(cmd, t.Options)
		return nil
	}

	if f := index.GetFeature(id); f != nil {
		if inspectJSON {
			return writeJSON(cmd, f)
		}
		fmt.Fprintf(out, "Feature:     %s\n", f.ID)
		fmt.Fprintf(out, "Version:     %s\n", f.Version)
		fmt.Fprintf(out, "Name:        %s\n", f.Name)
		if f.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", f.Description)
		}
		if f.Deprecated {
			fmt.Fprintln(out, "Deprecated:  yes")
		}
		if f.DocumentationURL != "" {
			fmt.Fprintf(out, "Docs:        %s\n", f.DocumentationURL)
		}
		printOptions(cmd, f.Options)
		return nil
	}

	return fmt.Errorf("no template or feature with id %q", id)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}

func printOptions(cmd *cobra.Command, options map[string]registry.DevOption) {
	if len(options) == 0 {
		return
	}

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	t := newTable("OPTION", "TYPE", "DEFAULT", "VALUES")
	for _, name := range names {
		opt := options[name]
		t.Row(name, opt.Kind(), opt.ConfiguredDefault(), strings.Join(opt.AllowedValues(), ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), t)
}
