package registry

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Manifest file names inside template and feature archives.
const (
	TemplateManifestName = "devcontainer-template.json"
	FeatureManifestName  = "devcontainer-feature.json"
)

// ExtractTemplateManifest scans a tar archive for its
// devcontainer-template.json and decodes it.
func ExtractTemplateManifest(archive []byte) (*Template, error) {
	raw, err := findManifest(archive, TemplateManifestName)
	if err != nil {
		return nil, err
	}
	var template Template
	if err := json.Unmarshal(raw, &template); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", TemplateManifestName, err)
	}
	return &template, nil
}

// ExtractFeatureManifest scans a tar archive for its
// devcontainer-feature.json and decodes it. Manifests shipped inside
// archives usually omit majorVersion (the index adds it at publish time),
// so it is derived from the semver version when missing.
func ExtractFeatureManifest(archive []byte) (*Feature, error) {
	raw, err := findManifest(archive, FeatureManifestName)
	if err != nil {
		return nil, err
	}
	var feature Feature
	if err := json.Unmarshal(raw, &feature); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FeatureManifestName, err)
	}
	if feature.MajorVersion == "" && feature.Version != "" {
		if v, err := semver.NewVersion(feature.Version); err == nil {
			feature.MajorVersion = strconv.FormatUint(v.Major(), 10)
		}
	}
	return &feature, nil
}

// findManifest returns the content of the first archive entry whose path
// ends with name.
func findManifest(archive []byte, name string) ([]byte, error) {
	tr := tar.NewReader(bytes.NewReader(archive))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if strings.HasSuffix(hdr.Name, name) {
			raw, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
			}
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s in archive", ErrNotFound, name)
}
