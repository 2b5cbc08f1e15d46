package registry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceInformation identifies the publisher of a collection.
type SourceInformation struct {
	Name         string `json:"name"`
	Maintainer   string `json:"maintainer"`
	Contact      string `json:"contact"`
	Repository   string `json:"repository"`
	OCIReference string `json:"ociReference"`
}

// MountType is the docker mount flavor.
type MountType string

const (
	MountBind   MountType = "bind"
	MountVolume MountType = "volume"
)

// DockerMount declares a mount requested by a feature.
type DockerMount struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Type   MountType `json:"type"`
}

func (m DockerMount) String() string {
	return fmt.Sprintf("source=%s, target=%s, type=%s", m.Source, m.Target, m.Type)
}

// LifecycleHook is a devcontainer lifecycle command: a single command
// string, a command argv list, or a named map of either.
type LifecycleHook struct {
	Command  string
	Commands []string
	Named    map[string]LifecycleHook
}

func (h *LifecycleHook) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*h = LifecycleHook{Command: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*h = LifecycleHook{Commands: list}
		return nil
	}
	var named map[string]LifecycleHook
	if err := json.Unmarshal(data, &named); err != nil {
		return fmt.Errorf("lifecycle hook must be a string, array, or object: %w", err)
	}
	*h = LifecycleHook{Named: named}
	return nil
}

func (h LifecycleHook) MarshalJSON() ([]byte, error) {
	switch {
	case h.Named != nil:
		return json.Marshal(h.Named)
	case h.Commands != nil:
		return json.Marshal(h.Commands)
	default:
		return json.Marshal(h.Command)
	}
}

func (h LifecycleHook) String() string {
	switch {
	case h.Named != nil:
		parts := make([]string, 0, len(h.Named))
		for key, hook := range h.Named {
			parts = append(parts, key+"="+hook.String())
		}
		return strings.Join(parts, "; ")
	case h.Commands != nil:
		return strings.Join(h.Commands, ", ")
	default:
		return h.Command
	}
}

// Customizations is the tool-specific configuration bag. It is kept as
// opaque JSON with named accessors for the known paths, instead of ad hoc
// lookups spread through callers.
type Customizations struct {
	raw json.RawMessage
}

func (c *Customizations) UnmarshalJSON(data []byte) error {
	c.raw = append(c.raw[:0], data...)
	return nil
}

func (c Customizations) MarshalJSON() ([]byte, error) {
	if c.raw == nil {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// VSCodeExtensions returns the extension ids under vscode.extensions,
// or nil when the path is absent or not a string list.
func (c Customizations) VSCodeExtensions() []string {
	var doc struct {
		VSCode struct {
			Extensions []any `json:"extensions"`
		} `json:"vscode"`
	}
	if err := json.Unmarshal(c.raw, &doc); err != nil {
		return nil
	}
	if doc.VSCode.Extensions == nil {
		return nil
	}
	ids := make([]string, 0, len(doc.VSCode.Extensions))
	for _, v := range doc.VSCode.Extensions {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Feature is a reusable add-on installable into a container, addressable
// by id and major version.
type Feature struct {
	ID                   string               `json:"id"`
	Version              string               `json:"version"`
	Name                 string               `json:"name"`
	Description          string               `json:"description,omitempty"`
	DocumentationURL     string               `json:"documentationURL,omitempty"`
	LicenseURL           string               `json:"licenseURL,omitempty"`
	Keywords             []string             `json:"keywords,omitempty"`
	Options              map[string]DevOption `json:"options,omitempty"`
	ContainerEnv         map[string]string    `json:"containerEnv,omitempty"`
	Privileged           *bool                `json:"privileged,omitempty"`
	Init                 *bool                `json:"init,omitempty"`
	CapAdd               []string             `json:"capAdd,omitempty"`
	SecurityOpt          []string             `json:"securityOpt,omitempty"`
	Entrypoint           string               `json:"entrypoint,omitempty"`
	Customizations       *Customizations      `json:"customizations,omitempty"`
	InstallsAfter        []string             `json:"installsAfter,omitempty"`
	LegacyIDs            []string             `json:"legacyIds,omitempty"`
	Deprecated           bool                 `json:"deprecated,omitempty"`
	Mounts               []DockerMount        `json:"mounts,omitempty"`
	OnCreateCommand      *LifecycleHook       `json:"onCreateCommand,omitempty"`
	UpdateContentCommand *LifecycleHook       `json:"updateContentCommand,omitempty"`
	PostCreateCommand    *LifecycleHook       `json:"postCreateCommand,omitempty"`
	PostStartCommand     *LifecycleHook       `json:"postStartCommand,omitempty"`
	PostAttachCommand    *LifecycleHook       `json:"postAttachCommand,omitempty"`
	Owner                string               `json:"owner"`
	MajorVersion         string               `json:"majorVersion"`
}

// Key returns the merge identity of the feature, "{id}:{majorVersion}".
func (f *Feature) Key() string {
	return f.ID + ":" + f.MajorVersion
}

// TemplateType distinguishes the container source of a template.
type TemplateType string

const (
	TemplateImage         TemplateType = "image"
	TemplateDockerfile    TemplateType = "dockerfile"
	TemplateDockerCompose TemplateType = "dockerCompose"
)

func (t *TemplateType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("template type is not a string: %w", err)
	}
	switch TemplateType(s) {
	case TemplateImage, TemplateDockerfile, TemplateDockerCompose:
		*t = TemplateType(s)
		return nil
	default:
		return fmt.Errorf("unknown template type %q", s)
	}
}

// Template is a devcontainer scaffold archive, addressable by id.
type Template struct {
	ID               string               `json:"id"`
	Version          string               `json:"version"`
	Name             string               `json:"name"`
	Description      string               `json:"description,omitempty"`
	DocumentationURL string               `json:"documentationURL,omitempty"`
	LicenseURL       string               `json:"licenseURL,omitempty"`
	Options          map[string]DevOption `json:"options,omitempty"`
	Platforms        []string             `json:"platforms,omitempty"`
	Publisher        string               `json:"publisher,omitempty"`
	Keywords         []string             `json:"keywords,omitempty"`
	Type             TemplateType         `json:"type,omitempty"`
	FileCount        *int                 `json:"fileCount,omitempty"`
	FeatureIDs       []string             `json:"featureIds,omitempty"`
	Owner            string               `json:"owner"`
}

// Collection is a publisher-owned bundle of features and templates
// sharing one registry source. Identity is the OCI reference.
type Collection struct {
	SourceInformation SourceInformation `json:"sourceInformation"`
	Features          []Feature         `json:"features"`
	Templates         []Template        `json:"templates"`
}

// Deprecated reports whether the collection is retired. There is no flag
// for this in the index; the one known retired collection marks it in the
// maintainer field.
func (c *Collection) Deprecated() bool {
	return strings.Contains(strings.ToLower(c.SourceInformation.Maintainer), "deprecated")
}
