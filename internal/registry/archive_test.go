package registry

import (
	"archive/tar"
	"bytes"
	"errors"
	"testing"
)

func tarArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range entries {
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Size:     int64(len(content)),
			Mode:     0644,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractTemplateManifest(t *testing.T) {
	archive := tarArchive(t, map[string]string{
		".devcontainer/devcontainer.json": `{"image": "x"}`,
		"devcontainer-template.json": `{
			"id": "ghcr.io/acme/templates/go",
			"version": "2.1.0",
			"name": "Go",
			"type": "image",
			"fileCount": 3,
			"owner": "acme"
		}`,
	})

	tpl, err := ExtractTemplateManifest(archive)
	if err != nil {
		t.Fatalf("ExtractTemplateManifest error: %v", err)
	}
	if tpl.ID != "ghcr.io/acme/templates/go" {
		t.Errorf("ID = %q", tpl.ID)
	}
	if tpl.Type != TemplateImage {
		t.Errorf("Type = %q, want image", tpl.Type)
	}
	if tpl.FileCount == nil || *tpl.FileCount != 3 {
		t.Errorf("FileCount = %v, want 3", tpl.FileCount)
	}
}

func TestExtractTemplateManifest_Nested(t *testing.T) {
	archive := tarArchive(t, map[string]string{
		"src/go/devcontainer-template.json": `{"id": "x", "version": "1.0.0", "name": "X", "owner": "o"}`,
	})
	tpl, err := ExtractTemplateManifest(archive)
	if err != nil {
		t.Fatalf("ExtractTemplateManifest error: %v", err)
	}
	if tpl.ID != "x" {
		t.Errorf("ID = %q, want x", tpl.ID)
	}
}

func TestExtractTemplateManifest_Missing(t *testing.T) {
	archive := tarArchive(t, map[string]string{"README.md": "hello"})
	_, err := ExtractTemplateManifest(archive)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestExtractTemplateManifest_Garbage(t *testing.T) {
	_, err := ExtractTemplateManifest([]byte("definitely not a tar stream, padded to look like one ........"))
	if !errors.Is(err, ErrMalformedArchive) {
		t.Errorf("error = %v, want ErrMalformedArchive", err)
	}
}

func TestExtractFeatureManifest_DerivesMajorVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		major   string
	}{
		{
			name:    "explicit majorVersion kept",
			content: `{"id": "f", "version": "3.1.4", "name": "F", "owner": "o", "majorVersion": "9"}`,
			major:   "9",
		},
		{
			name:    "derived from semver",
			content: `{"id": "f", "version": "3.1.4", "name": "F", "owner": "o"}`,
			major:   "3",
		},
		{
			name:    "non-semver version left empty",
			content: `{"id": "f", "version": "not-a-version", "name": "F", "owner": "o"}`,
			major:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive := tarArchive(t, map[string]string{"devcontainer-feature.json": tt.content})
			feature, err := ExtractFeatureManifest(archive)
			if err != nil {
				t.Fatalf("ExtractFeatureManifest error: %v", err)
			}
			if feature.MajorVersion != tt.major {
				t.Errorf("MajorVersion = %q, want %q", feature.MajorVersion, tt.major)
			}
		})
	}
}
