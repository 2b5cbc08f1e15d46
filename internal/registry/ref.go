package registry

import (
	"fmt"
	"strings"
)

// Reference is a parsed OCI artifact reference: registry/repository[:tag].
type Reference struct {
	Registry   string
	Repository string
	Tag        string
}

// ParseReference splits an OCI reference into its registry host,
// repository path, and optional tag.
func ParseReference(s string) (Reference, error) {
	name := s
	tag := ""

	// A colon after the last slash is a tag separator; earlier colons
	// belong to the registry host port.
	if i := strings.LastIndex(name, ":"); i > strings.LastIndex(name, "/") {
		name, tag = name[:i], name[i+1:]
	}

	host, repo, ok := strings.Cut(name, "/")
	if !ok || host == "" || repo == "" {
		return Reference{}, fmt.Errorf("invalid OCI reference %q", s)
	}

	return Reference{Registry: host, Repository: repo, Tag: tag}, nil
}

// ID returns the tagless identity, "{registry}/{repository}".
func (r Reference) ID() string {
	return r.Registry + "/" + r.Repository
}

// TagName returns the tag, defaulting to "latest".
func (r Reference) TagName() string {
	if r.Tag == "" {
		return "latest"
	}
	return r.Tag
}

// WithTag returns a copy of the reference pinned to the given tag.
func (r Reference) WithTag(tag string) Reference {
	r.Tag = tag
	return r
}

func (r Reference) String() string {
	return r.ID() + ":" + r.TagName()
}
