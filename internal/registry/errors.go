package registry

import "errors"

var (
	// ErrNotFound indicates an expected manifest file is absent from an
	// archive, or a requested layer is missing from an OCI manifest.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFormat indicates the index document is not an object
	// containing a "collections" array. Fatal to the whole parse.
	ErrInvalidFormat = errors.New("invalid index format")

	// ErrSchemaViolation indicates a single collection, feature, or
	// template entry failed validation. Recovered by skipping the entry.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrMalformedArchive indicates a corrupt tar stream.
	ErrMalformedArchive = errors.New("malformed archive")
)
