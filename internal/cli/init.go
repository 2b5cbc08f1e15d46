package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcx-dev/dcx/internal/prompt"
	"github.com/dcx-dev/dcx/internal/registry"
	"github.com/dcx-dev/dcx/internal/template"
)

var (
	initNonInteractive    bool
	initAttemptSingleFile bool
	initIncludeDeprecated bool
	initTemplateID        string
	initTag               string
	initFeatures          []string
	initWorkspace         string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Materialize a devcontainer template into a workspace",
	Long: `Pulls a template archive, resolves its options, optionally adds
features, and writes the scaffolded files into the workspace folder.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initNonInteractive, "non-interactive", "z", false, "Resolve every option to its default without prompting")
	initCmd.Flags().BoolVarP(&initAttemptSingleFile, "attempt-single-file", "s", false, "Write a bare .devcontainer.json when the template allows it")
	initCmd.Flags().BoolVar(&initIncludeDeprecated, "include-deprecated", false, "Offer deprecated templates and features")
	initCmd.Flags().StringVarP(&initTemplateID, "template-id", "t", "", "Template OCI reference (skips the starting point prompt)")
	initCmd.Flags().StringVarP(&initTag, "tag", "n", "latest", "Template tag to pull")
	initCmd.Flags().StringArrayVarP(&initFeatures, "include-feature", "f", nil, "Feature id to add (repeatable)")
	initCmd.Flags().StringVarP(&initWorkspace, "workspace-folder", "w", "", "Target folder (default: current directory)")
	rootCmd.AddCommand(initCmd)
}

// Starting point choices offered when no template id is given.
const (
	startExisting = "Pick a template from the index"
	startByRef    = "Enter a template OCI reference"
	startEmpty    = "Start from a minimal devcontainer.json"
)

func runInit(cmd *cobra.Command, args []string) error {
	workspace := initWorkspace
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving workspace folder: %w", err)
		}
		workspace = wd
	}

	index, err := loadIndex()
	if err != nil {
		return err
	}
	client := registry.NewClient()
	prompter := prompt.Terminal{}

	builder, err := pickStartPoint(index, client, prompter)
	if err != nil {
		return err
	}

	// The index entry tracks latest; a pinned tag or a template missing
	// from the index needs its manifest read out of the archive itself.
	if initTag != "latest" || builder.Config == nil {
		if err := builder.ExtractConfig(); err != nil {
			return err
		}
	}

	if initNonInteractive {
		if err := builder.UseDefaults(); err != nil {
			return err
		}
		for _, id := range initFeatures {
			feature, err := getFeature(index, client, id)
			if err != nil {
				return err
			}
			builder.Features.UseDefaultValues(feature)
		}
	} else {
		resolver := prompt.Interactive{Prompter: prompter}
		if err := builder.UseResolver(resolver); err != nil {
			return err
		}
		if err := addFeatures(cmd, index, client, prompter, resolver, builder); err != nil {
			return err
		}
	}

	if err := builder.Apply(workspace, initAttemptSingleFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote devcontainer files to %s\n", workspace)
	return nil
}

// pickStartPoint resolves the template archive to scaffold from: the
// --template-id flag, an interactive pick, a typed reference, or the
// built-in empty start point.
func pickStartPoint(index *registry.Index, client *registry.Client, prompter prompt.Prompter) (*template.Builder, error) {
	if initTemplateID != "" {
		return builderFor(index, client, initTemplateID)
	}
	if initNonInteractive {
		return nil, errors.New("--non-interactive requires --template-id")
	}

	choice, err := prompter.Select("Choose a starting point:", []string{startExisting, startByRef, startEmpty}, 0)
	if err != nil {
		return nil, err
	}

	switch choice {
	case startExisting:
		templates := index.Templates(initIncludeDeprecated)
		if len(templates) == 0 {
			return nil, errors.New("the index has no templates")
		}
		ids := make([]string, len(templates))
		for i, t := range templates {
			ids[i] = t.ID
		}
		id, err := prompter.Select("Pick a template:", ids, 0)
		if err != nil {
			return nil, err
		}
		return builderFor(index, client, id)

	case startByRef:
		id, err := prompter.Input("Template OCI reference:", "", nil)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, errors.New("no template reference given")
		}
		return builderFor(index, client, id)

	default:
		return template.EmptyStartPoint()
	}
}

// builderFor pulls the template archive at the requested tag and pairs
// it with the index entry when one exists.
func builderFor(index *registry.Index, client *registry.Client, id string) (*template.Builder, error) {
	ref, err := registry.ParseReference(id)
	if err != nil {
		return nil, err
	}
	archive, err := client.PullArchive(ref.WithTag(initTag))
	if err != nil {
		return nil, err
	}

	var config *registry.Template
	if found := index.GetTemplate(id); found != nil {
		t := *found
		config = &t
	}
	return template.NewBuilder(archive, config), nil
}

// getFeature resolves a feature id against the index first, falling back
// to pulling the artifact and reading its manifest.
func getFeature(index *registry.Index, client *registry.Client, id string) (*registry.Feature, error) {
	if feature := index.GetFeature(id); feature != nil {
		return feature, nil
	}

	ref, err := registry.ParseReference(id)
	if err != nil {
		return nil, fmt.Errorf("feature %q not in index and not a valid OCI reference: %w", id, err)
	}
	archive, err := client.PullArchive(ref)
	if err != nil {
		return nil, err
	}
	return registry.ExtractFeatureManifest(archive)
}

// addFeatures resolves the --include-feature flags interactively, then
// keeps offering more until the user declines.
func addFeatures(cmd *cobra.Command, index *registry.Index, client *registry.Client, prompter prompt.Prompter, resolver prompt.Resolver, builder *template.Builder) error {
	out := cmd.OutOrStdout()

	for _, id := range initFeatures {
		feature, err := getFeature(index, client, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Adding feature: %s\n", feature.ID)
		if err := builder.Features.UseResolvedValues(feature, resolver); err != nil {
			return err
		}
	}

	var suggestions []string
	for _, feature := range index.Features(initIncludeDeprecated) {
		suggestions = append(suggestions, feature.ID)
	}

	for {
		more, err := prompter.Confirm("Add a feature?", false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}

		id, err := prompter.Input("Feature id (OCI reference):", "", suggestions)
		if err != nil {
			return err
		}
		if id == "" {
			continue
		}

		feature, err := getFeature(index, client, id)
		if err != nil {
			return err
		}
		if err := builder.Features.UseResolvedValues(feature, resolver); err != nil {
			return err
		}
	}
}
