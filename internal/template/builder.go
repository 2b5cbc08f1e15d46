package template

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/jsonc"

	"github.com/dcx-dev/dcx/internal/prompt"
	"github.com/dcx-dev/dcx/internal/registry"
)

// placeholderRe matches ${templateOption:name} tokens, with optional
// whitespace around the name. Applied to raw bytes: template files are
// not required to be valid UTF-8.
var placeholderRe = regexp.MustCompile(`\$\{templateOption:\s*(\w+)\s*\}`)

// singleFileName is the consolidated configuration file written when
// single-file mode applies.
const singleFileName = ".devcontainer.json"

// Builder holds a template archive with its manifest, the resolved
// option context, and the accumulated feature entries, and materializes
// them onto a workspace.
type Builder struct {
	Config   *registry.Template
	Context  map[string]string
	Features *FeatureEntries

	archive []byte
}

// NewBuilder wraps raw tar bytes. config may be nil when the template
// was not found in the index; ExtractConfig fills it from the archive.
func NewBuilder(archive []byte, config *registry.Template) *Builder {
	return &Builder{
		Config:   config,
		Context:  make(map[string]string),
		Features: NewFeatureEntries(),
		archive:  archive,
	}
}

// ExtractConfig replaces the template manifest with the one inside the
// archive. Needed when the index entry is missing or a non-latest tag
// was pulled.
func (b *Builder) ExtractConfig() error {
	config, err := registry.ExtractTemplateManifest(b.archive)
	if err != nil {
		return err
	}
	b.Config = config
	return nil
}

// UseDefaults fills the context with every option's configured default.
func (b *Builder) UseDefaults() error {
	if b.Config == nil {
		return errors.New("missing template configuration")
	}
	clear(b.Context)
	for name, opt := range b.Config.Options {
		b.Context[name] = opt.ConfiguredDefault()
	}
	return nil
}

// UseResolver fills the context by resolving every option, in name order.
func (b *Builder) UseResolver(r prompt.Resolver) error {
	if b.Config == nil {
		return errors.New("missing template configuration")
	}
	clear(b.Context)
	for _, name := range sortedOptionNames(b.Config.Options) {
		value, err := r.Resolve(name, b.Config.Options[name])
		if err != nil {
			return err
		}
		b.Context[name] = value.String()
	}
	return nil
}

// Apply walks the archive and writes the substituted files under
// workspace. Writes are independent and non-transactional: the first
// error aborts, leaving already-written files in place.
func (b *Builder) Apply(workspace string, attemptSingleFile bool) error {
	tr := tar.NewReader(bytes.NewReader(b.archive))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", registry.ErrMalformedArchive, err)
		}

		if skipEntry(hdr.Name) {
			continue
		}

		dest, err := workspacePath(workspace, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dest, err)
			}
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return fmt.Errorf("%w: %v", registry.ErrMalformedArchive, err)
			}
			substituted := b.substitute(content)

			if isConfigEntry(hdr.Name) {
				if attemptSingleFile && b.singleFileEligible() {
					dest = filepath.Join(workspace, singleFileName)
				}
				if b.Features.Len() > 0 {
					if err := b.writeMerged(dest, substituted); err != nil {
						return err
					}
					continue
				}
			}

			if err := writeFile(dest, substituted); err != nil {
				return err
			}
		default:
			// Symlinks, hardlinks, and the rest are ignored.
		}
	}
	return nil
}

// substitute replaces placeholder tokens with context values. Unresolved
// names substitute to the empty string with a warning; substitution
// never fails the operation.
func (b *Builder) substitute(content []byte) []byte {
	return placeholderRe.ReplaceAllFunc(content, func(token []byte) []byte {
		name := string(placeholderRe.FindSubmatch(token)[1])
		value, ok := b.Context[name]
		if !ok {
			log.Warn("no value provided for template option", "name", name)
			return nil
		}
		return []byte(value)
	})
}

// singleFileEligible decides whether the configuration may be written as
// a bare .devcontainer.json. Compose and Dockerfile templates carry
// sibling files the configuration must reference, so they never qualify.
// Most image templates have exactly four files (devcontainer.json, the
// manifest, NOTES.md, README.md); more than that implies extra content
// under .devcontainer/.
func (b *Builder) singleFileEligible() bool {
	if b.Config == nil || b.Config.Type == "" {
		return false
	}
	switch b.Config.Type {
	case registry.TemplateDockerCompose:
		log.Warn("skipping single-file output: the selected template includes a docker-compose.yml")
		return false
	case registry.TemplateDockerfile:
		log.Warn("skipping single-file output: the selected template includes a Dockerfile")
		return false
	case registry.TemplateImage:
		if b.Config.FileCount != nil && *b.Config.FileCount > 4 {
			log.Warn("skipping single-file output: the selected template carries extra files", "fileCount", *b.Config.FileCount)
			return false
		}
		return true
	}
	return false
}

// writeMerged parses the substituted configuration (tolerating comments),
// folds the accumulated feature entries into its "features" object, and
// writes the result tab-indented. Comments do not survive this path.
func (b *Builder) writeMerged(dest string, content []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(content), &doc); err != nil {
		return fmt.Errorf("format of devcontainer.json is invalid: %w", err)
	}

	if existing, ok := doc["features"].(map[string]any); ok {
		for key, values := range b.Features.Value() {
			existing[key] = values
		}
	} else {
		doc["features"] = b.Features.Value()
	}

	out, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("serializing devcontainer.json: %w", err)
	}
	return writeFile(dest, append(out, '\n'))
}

func writeFile(dest string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// skipEntry filters documentation and manifest files that belong to the
// template package, not to the scaffolded workspace.
func skipEntry(name string) bool {
	switch path.Base(path.Clean(name)) {
	case "NOTES.md", "README.md", registry.TemplateManifestName:
		return true
	}
	return false
}

// isConfigEntry reports whether the entry is the primary configuration
// file, in either of its two accepted locations.
func isConfigEntry(name string) bool {
	clean := path.Clean(name)
	return clean == singleFileName ||
		clean == ".devcontainer/devcontainer.json" ||
		strings.HasSuffix(clean, "/"+singleFileName) ||
		strings.HasSuffix(clean, "/.devcontainer/devcontainer.json")
}

// workspacePath joins an archive entry path onto the workspace, rejecting
// absolute paths and traversal outside it.
func workspacePath(workspace, name string) (string, error) {
	if path.IsAbs(name) {
		return "", fmt.Errorf("%w: absolute entry path %q", registry.ErrMalformedArchive, name)
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: entry path %q escapes the workspace", registry.ErrMalformedArchive, name)
	}
	return filepath.Join(workspace, filepath.FromSlash(clean)), nil
}
