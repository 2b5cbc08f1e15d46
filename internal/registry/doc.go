// Package registry models the community devcontainer index and fetches
// template/feature artifacts from OCI registries.
package registry
