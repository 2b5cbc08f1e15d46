package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/dcx-dev/dcx/internal/registry"
)

var (
	searchCollection        string
	searchFields            []string
	searchJSON              bool
	searchFuzzy             bool
	searchIncludeDeprecated bool
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search the index for templates or features",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCollection, "collection", "c", "templates", "What to search: templates or features")
	searchCmd.Flags().StringSliceVar(&searchFields, "fields", []string{"id", "name", "description", "keywords"}, "Fields to match against")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Emit results as JSON")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "Fuzzy-match ids and names instead of exact field matching")
	searchCmd.Flags().BoolVar(&searchIncludeDeprecated, "include-deprecated", false, "Include deprecated entries")
	rootCmd.AddCommand(searchCmd)
}

type searchResult struct {
	Collection  string   `json:"collection"`
	ID          string   `json:"id"`
	Version     string   `json:"version"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	index, err := loadIndex()
	if err != nil {
		return err
	}

	var candidates []searchResult
	switch searchCollection {
	case "templates":
		candidates = templateCandidates(index)
	case "features":
		candidates = featureCandidates(index)
	default:
		return fmt.Errorf("unknown collection %q: expected templates or features", searchCollection)
	}

	var results []searchResult
	if searchFuzzy {
		results = fuzzyMatch(args[0], candidates)
	} else {
		exact := searchCollection == "features"
		for _, c := range candidates {
			if matches(c, args[0], exact) {
				results = append(results, c)
			}
		}
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "\t")
		if results == nil {
			results = []searchResult{}
		}
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	t := newTable("COLLECTION", "ID", "VERSION", "NAME")
	for _, r := range results {
		t.Row(r.Collection, r.ID, r.Version, r.Name)
	}
	fmt.Fprintln(out, t)
	return nil
}

func templateCandidates(index *registry.Index) []searchResult {
	var out []searchResult
	for _, c := range index.Collections() {
		if !searchIncludeDeprecated && c.Deprecated() {
			continue
		}
		for _, t := range c.Templates {
			out = append(out, searchResult{
				Collection:  c.SourceInformation.Name,
				ID:          t.ID,
				Version:     t.Version,
				Name:        t.Name,
				Description: t.Description,
				Keywords:    t.Keywords,
			})
		}
	}
	return out
}

func featureCandidates(index *registry.Index) []searchResult {
	var out []searchResult
	for _, c := range index.Collections() {
		for _, f := range c.Features {
			if !searchIncludeDeprecated && f.Deprecated {
				continue
			}
			out = append(out, searchResult{
				Collection:  c.SourceInformation.Name,
				ID:          f.ID,
				Version:     f.Version,
				Name:        f.Name,
				Description: f.Description,
				Keywords:    f.Keywords,
			})
		}
	}
	return out
}

// matches applies the selected fields. Feature ids and names match
// exactly (ids are globally unique there); template ids and names match
// by case-insensitive substring. Descriptions always match by substring,
// keywords by exact membership.
func matches(c searchResult, value string, exact bool) bool {
	lower := strings.ToLower(value)
	for _, field := range searchFields {
		switch field {
		case "id":
			if exact && c.ID == value {
				return true
			}
			if !exact && strings.Contains(strings.ToLower(c.ID), lower) {
				return true
			}
		case "name":
			if exact && c.Name == value {
				return true
			}
			if !exact && strings.Contains(strings.ToLower(c.Name), lower) {
				return true
			}
		case "description":
			if strings.Contains(strings.ToLower(c.Description), lower) {
				return true
			}
		case "keywords":
			if slices.Contains(c.Keywords, value) {
				return true
			}
		}
	}
	return false
}

// fuzzyMatch ranks candidates by fuzzy score against "id name".
func fuzzyMatch(value string, candidates []searchResult) []searchResult {
	haystack := make([]string, len(candidates))
	for i, c := range candidates {
		haystack[i] = c.ID + " " + c.Name
	}
	found := fuzzy.Find(value, haystack)
	out := make([]searchResult, 0, len(found))
	for _, m := range found {
		out = append(out, candidates[m.Index])
	}
	return out
}
