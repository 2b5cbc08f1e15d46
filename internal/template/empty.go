package template

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dcx-dev/dcx/internal/registry"
)

// emptyDevcontainerJSON is the single scaffolded file of the empty start
// point: a minimal image-based configuration with one placeholder.
const emptyDevcontainerJSON = "{\n\t\"name\": \"dcx default\",\n\t\"image\": \"mcr.microsoft.com/devcontainers/base:${templateOption:imageVariant}\"\n}\n"

// emptyManifest declares the empty start point's single option.
var emptyManifest = map[string]any{
	"id":      "dcx-base-template",
	"version": "1.0.0",
	"name":    "Base Template (dcx)",
	"options": map[string]any{
		"imageVariant": map[string]any{
			"type":    "string",
			"default": "jammy",
			"proposals": []string{
				"bookworm",
				"bullseye",
				"jammy",
				"focal",
			},
		},
	},
	"type":      "image",
	"fileCount": 2,
	"owner":     "dcx-dev",
}

// EmptyStartPoint synthesizes an in-memory template archive equivalent to
// a minimal registry package, for starting from scratch. The archive is a
// byte-valid tar stream and its manifest is decoded through the same path
// as registry-sourced archives, so nothing downstream special-cases it.
func EmptyStartPoint() (*Builder, error) {
	archive, err := buildEmptyArchive()
	if err != nil {
		return nil, fmt.Errorf("synthesizing empty start point: %w", err)
	}
	b := NewBuilder(archive, nil)
	if err := b.ExtractConfig(); err != nil {
		return nil, fmt.Errorf("synthesizing empty start point: %w", err)
	}
	return b, nil
}

func buildEmptyArchive() ([]byte, error) {
	manifestJSON, err := json.MarshalIndent(emptyManifest, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	now := time.Now()

	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     ".devcontainer/",
		Mode:     0775,
		Uid:      1000,
		Gid:      1000,
		ModTime:  now,
	}); err != nil {
		return nil, err
	}

	writeEntry := func(name string, content []byte) error {
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Size:     int64(len(content)),
			Mode:     0664,
			Uid:      1000,
			Gid:      1000,
			ModTime:  now,
		}); err != nil {
			return err
		}
		_, err := tw.Write(content)
		return err
	}

	if err := writeEntry(".devcontainer/devcontainer.json", []byte(emptyDevcontainerJSON)); err != nil {
		return nil, err
	}
	if err := writeEntry(registry.TemplateManifestName, manifestJSON); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
