package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dcx-dev/dcx/internal/registry"
)

var listCollectionID string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List index collections, or one collection's contents",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCollectionID, "collection-id", "C", "", "Show the features and templates of one collection (by OCI reference)")
	rootCmd.AddCommand(listCmd)
}

var (
	tableBorderStyle = lipgloss.NewStyle().Faint(true)
	tableHeaderStyle = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func runList(cmd *cobra.Command, args []string) error {
	index, err := loadIndex()
	if err != nil {
		return err
	}
	if listCollectionID != "" {
		return listCollection(cmd, index, listCollectionID)
	}
	return listOverview(cmd, index)
}

func listOverview(cmd *cobra.Command, index *registry.Index) error {
	t := newTable("NAME", "OCI REFERENCE", "FEATURES", "TEMPLATES")
	for _, c := range index.Collections() {
		t.Row(
			c.SourceInformation.Name,
			c.SourceInformation.OCIReference,
			strconv.Itoa(len(c.Features)),
			strconv.Itoa(len(c.Templates)),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}

func listCollection(cmd *cobra.Command, index *registry.Index, ociReference string) error {
	collection := index.GetCollection(ociReference)
	if collection == nil {
		return fmt.Errorf("no collection with OCI reference %q", ociReference)
	}

	out := cmd.OutOrStdout()
	info := collection.SourceInformation
	fmt.Fprintf(out, "Name:       %s\n", info.Name)
	fmt.Fprintf(out, "Maintainer: %s\n", info.Maintainer)
	fmt.Fprintf(out, "Contact:    %s\n", info.Contact)
	fmt.Fprintf(out, "Repository: %s\n", info.Repository)
	fmt.Fprintf(out, "Reference:  %s\n\n", info.OCIReference)

	t := newTable("", "TYPE", "ID", "NAME", "DESCRIPTION")
	row := 0
	for i := range collection.Features {
		f := &collection.Features[i]
		row++
		t.Row(strconv.Itoa(row), "feature", abbreviateID(f.ID, info.OCIReference), f.Name, firstLine(f.Description))
	}
	for i := range collection.Templates {
		tpl := &collection.Templates[i]
		row++
		t.Row(strconv.Itoa(row), "template", abbreviateID(tpl.ID, info.OCIReference), tpl.Name, firstLine(tpl.Description))
	}
	fmt.Fprintln(out, t)
	return nil
}

// abbreviateID shortens ids that repeat the collection's OCI reference,
// keeping the table narrow.
func abbreviateID(id, ociReference string) string {
	if ociReference != "" && strings.HasPrefix(id, ociReference+"/") {
		return "~" + strings.TrimPrefix(id, ociReference)
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 72 {
		s = s[:69] + "..."
	}
	return s
}
