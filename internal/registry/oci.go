package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
)

// Media types published by the devcontainers index and collections.
const (
	indexLayerMediaType   = "application/vnd.devcontainers.index.layer.v1+json"
	archiveLayerMediaType = "application/vnd.devcontainers.layer.v1+tar"

	ociManifestMediaType = "application/vnd.oci.image.manifest.v1+json"
)

// Client pulls artifact layers from an OCI registry over its HTTP API.
type Client struct {
	httpClient *http.Client

	// scheme lets tests point the client at a plain-HTTP test server.
	scheme string
}

// NewClient returns a Client using the default HTTP client.
func NewClient() *Client {
	return &Client{httpClient: http.DefaultClient, scheme: "https"}
}

type ociDescriptor struct {
	MediaType string `json:"mediaType"`
	Digest    string `json:"digest"`
	Size      int64  `json:"size"`
}

type ociManifest struct {
	Layers []ociDescriptor `json:"layers"`
}

// PullIndex fetches the community index artifact and writes its JSON
// layer to dest.
func (c *Client) PullIndex(indexRef, dest string) error {
	ref, err := ParseReference(indexRef)
	if err != nil {
		return err
	}

	blob, err := c.layerBytes(ref, indexLayerMediaType)
	if err != nil {
		return fmt.Errorf("pulling devcontainer index: %w", err)
	}

	if err := os.WriteFile(dest, blob, 0644); err != nil {
		return fmt.Errorf("writing index file: %w", err)
	}

	log.Debug("pulled devcontainer index", "bytes", len(blob), "dest", dest)
	return nil
}

// PullArchive fetches the tar layer of a template or feature artifact.
// Gzip-compressed layers are decompressed transparently.
func (c *Client) PullArchive(ref Reference) ([]byte, error) {
	blob, err := c.layerBytes(ref, archiveLayerMediaType)
	if err != nil {
		return nil, fmt.Errorf("pulling archive for %s: %w", ref, err)
	}

	if len(blob) > 2 && blob[0] == 0x1f && blob[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("%w: bad gzip layer: %v", ErrMalformedArchive, err)
		}
		defer zr.Close()
		blob, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: decompressing layer: %v", ErrMalformedArchive, err)
		}
	}

	log.Debug("pulled archive", "ref", ref.String(), "bytes", len(blob))
	return blob, nil
}

// layerBytes resolves the artifact manifest and downloads the first layer
// matching the wanted media type.
func (c *Client) layerBytes(ref Reference, mediaType string) ([]byte, error) {
	token, err := c.token(ref)
	if err != nil {
		// Many registries serve anonymous pulls without a token.
		log.Debug("token request failed, continuing anonymously", "registry", ref.Registry, "err", err)
	}

	manifestURL := fmt.Sprintf("%s://%s/v2/%s/manifests/%s", c.scheme, ref.Registry, ref.Repository, ref.TagName())
	body, err := c.get(manifestURL, token, ociManifestMediaType)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}

	var manifest ociManifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest JSON: %w", err)
	}

	var layer *ociDescriptor
	for i := range manifest.Layers {
		if manifest.Layers[i].MediaType == mediaType {
			layer = &manifest.Layers[i]
			break
		}
	}
	if layer == nil {
		return nil, fmt.Errorf("%w: no layer with media type %s", ErrNotFound, mediaType)
	}

	blobURL := fmt.Sprintf("%s://%s/v2/%s/blobs/%s", c.scheme, ref.Registry, ref.Repository, layer.Digest)
	blob, err := c.get(blobURL, token, "")
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", layer.Digest, err)
	}
	return blob, nil
}

// token requests an anonymous pull token. GHCR and most public registries
// accept this flow; failures are non-fatal.
func (c *Client) token(ref Reference) (string, error) {
	tokenURL := fmt.Sprintf("%s://%s/token?service=%s&scope=%s",
		c.scheme, ref.Registry, url.QueryEscape(ref.Registry),
		url.QueryEscape("repository:"+ref.Repository+":pull"))

	body, err := c.get(tokenURL, "", "")
	if err != nil {
		return "", err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	return payload.Token, nil
}

func (c *Client) get(rawURL, token, accept string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "dcx")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(resp.Body)
}
