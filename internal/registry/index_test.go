package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleIndex = `{
	"collections": [
		{
			"sourceInformation": {
				"name": "Dev Containers",
				"maintainer": "Dev Container Spec Maintainers",
				"contact": "https://github.com/devcontainers",
				"repository": "https://github.com/devcontainers/templates",
				"ociReference": "ghcr.io/devcontainers/templates"
			},
			"features": [],
			"templates": [
				{
					"id": "ghcr.io/devcontainers/templates/go",
					"version": "1.2.3",
					"name": "Go",
					"description": "Develop Go applications.",
					"options": {
						"imageVariant": {
							"type": "string",
							"default": "1.22-bookworm",
							"proposals": ["1.22-bookworm", "1.21-bookworm"]
						}
					},
					"type": "image",
					"fileCount": 4,
					"owner": "devcontainers"
				},
				{
					"id": "ghcr.io/devcontainers/templates/broken",
					"version": "1.0.0",
					"name": "Broken",
					"type": "mystery",
					"owner": "devcontainers"
				}
			]
		},
		{
			"sourceInformation": {
				"name": "Community Features",
				"maintainer": "community",
				"contact": "x",
				"repository": "x",
				"ociReference": "ghcr.io/community/features"
			},
			"features": [
				{
					"id": "ghcr.io/community/features/node",
					"version": "2.1.0",
					"name": "Node.js",
					"owner": "community",
					"majorVersion": "2"
				},
				{
					"id": "ghcr.io/community/features/no-version",
					"name": "Missing version",
					"owner": "community",
					"majorVersion": "1"
				}
			],
			"templates": []
		},
		{
			"sourceInformation": {"name": "No identity"},
			"features": [],
			"templates": []
		},
		{
			"sourceInformation": {
				"name": "Bad shape",
				"maintainer": "x",
				"contact": "x",
				"repository": "x",
				"ociReference": "ghcr.io/bad/shape"
			},
			"features": {"not": "an array"},
			"templates": []
		}
	]
}`

func TestParseIndex_PartialRecovery(t *testing.T) {
	idx, err := ParseIndex([]byte(sampleIndex))
	if err != nil {
		t.Fatalf("ParseIndex error: %v", err)
	}

	stats := idx.Stats()
	if stats.Collections != 2 {
		t.Errorf("Collections = %d, want 2", stats.Collections)
	}
	if stats.SkippedCollections != 2 {
		t.Errorf("SkippedCollections = %d, want 2", stats.SkippedCollections)
	}
	if stats.Templates != 1 {
		t.Errorf("Templates = %d, want 1", stats.Templates)
	}
	if stats.SkippedTemplates != 1 {
		t.Errorf("SkippedTemplates = %d, want 1", stats.SkippedTemplates)
	}
	if stats.Features != 1 {
		t.Errorf("Features = %d, want 1", stats.Features)
	}
	if stats.SkippedFeatures != 1 {
		t.Errorf("SkippedFeatures = %d, want 1", stats.SkippedFeatures)
	}

	// A sibling of a skipped entry survives.
	tpl := idx.GetTemplate("ghcr.io/devcontainers/templates/go")
	if tpl == nil {
		t.Fatal("GetTemplate returned nil for a valid template")
	}
	if tpl.Type != TemplateImage {
		t.Errorf("Type = %q, want %q", tpl.Type, TemplateImage)
	}
	if tpl.FileCount == nil || *tpl.FileCount != 4 {
		t.Errorf("FileCount = %v, want 4", tpl.FileCount)
	}

	feature := idx.GetFeature("ghcr.io/community/features/node")
	if feature == nil {
		t.Fatal("GetFeature returned nil for a valid feature")
	}
	if feature.Key() != "ghcr.io/community/features/node:2" {
		t.Errorf("Key = %q, want %q", feature.Key(), "ghcr.io/community/features/node:2")
	}
}

func TestParseIndex_FatalShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "]["},
		{"top level array", `[]`},
		{"missing collections", `{"other": []}`},
		{"collections not array", `{"collections": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIndex([]byte(tt.raw))
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestParseIndex_EmptyCollections(t *testing.T) {
	idx, err := ParseIndex([]byte(`{"collections": []}`))
	if err != nil {
		t.Fatalf("ParseIndex error: %v", err)
	}
	if len(idx.Collections()) != 0 {
		t.Errorf("Collections len = %d, want 0", len(idx.Collections()))
	}
}

func TestReadIndexFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devcontainer-index.json")
	if err := os.WriteFile(path, []byte(sampleIndex), 0644); err != nil {
		t.Fatal(err)
	}

	idx, err := ReadIndexFile(path)
	if err != nil {
		t.Fatalf("ReadIndexFile error: %v", err)
	}
	if len(idx.Collections()) != 2 {
		t.Errorf("Collections len = %d, want 2", len(idx.Collections()))
	}

	if _, err := ReadIndexFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

const deprecatedIndex = `{
	"collections": [
		{
			"sourceInformation": {
				"name": "Old Templates",
				"maintainer": "nobody (DEPRECATED)",
				"contact": "x",
				"repository": "x",
				"ociReference": "ghcr.io/old/templates"
			},
			"features": [
				{
					"id": "ghcr.io/old/templates/live-feature",
					"version": "1.0.0",
					"name": "Still live",
					"owner": "old",
					"majorVersion": "1"
				},
				{
					"id": "ghcr.io/old/templates/dead-feature",
					"version": "1.0.0",
					"name": "Retired",
					"deprecated": true,
					"owner": "old",
					"majorVersion": "1"
				}
			],
			"templates": [
				{
					"id": "ghcr.io/old/templates/legacy",
					"version": "1.0.0",
					"name": "Legacy",
					"owner": "old"
				}
			]
		}
	]
}`

func TestDeprecationFiltering(t *testing.T) {
	idx, err := ParseIndex([]byte(deprecatedIndex))
	if err != nil {
		t.Fatalf("ParseIndex error: %v", err)
	}

	// Templates inherit deprecation from their collection's maintainer.
	if got := len(idx.Templates(false)); got != 0 {
		t.Errorf("Templates(false) len = %d, want 0", got)
	}
	if got := len(idx.Templates(true)); got != 1 {
		t.Errorf("Templates(true) len = %d, want 1", got)
	}

	// Features carry their own per-item flag.
	if got := len(idx.Features(false)); got != 1 {
		t.Errorf("Features(false) len = %d, want 1", got)
	}
	if got := len(idx.Features(true)); got != 2 {
		t.Errorf("Features(true) len = %d, want 2", got)
	}

	// Lookups see deprecated entries regardless.
	if idx.GetTemplate("ghcr.io/old/templates/legacy") == nil {
		t.Error("GetTemplate should find templates in deprecated collections")
	}
	if idx.GetFeature("ghcr.io/old/templates/dead-feature") == nil {
		t.Error("GetFeature should find deprecated features")
	}
}

func TestGetCollection(t *testing.T) {
	idx, err := ParseIndex([]byte(sampleIndex))
	if err != nil {
		t.Fatalf("ParseIndex error: %v", err)
	}
	c := idx.GetCollection("ghcr.io/devcontainers/templates")
	if c == nil {
		t.Fatal("GetCollection returned nil")
	}
	if c.SourceInformation.Name != "Dev Containers" {
		t.Errorf("Name = %q, want %q", c.SourceInformation.Name, "Dev Containers")
	}
	if idx.GetCollection("ghcr.io/nobody/home") != nil {
		t.Error("GetCollection should return nil for unknown references")
	}
}
