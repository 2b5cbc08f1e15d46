package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Stats counts what the index parser kept and what it skipped.
type Stats struct {
	Collections        int
	Features           int
	Templates          int
	SkippedCollections int
	SkippedFeatures    int
	SkippedTemplates   int
}

// Index is the aggregated catalog of collections, features, and templates
// from the community registry. It is built once per invocation and is
// immutable afterwards.
type Index struct {
	collections []Collection
	stats       Stats
}

// ReadIndexFile reads and parses the persisted index JSON.
func ReadIndexFile(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading index file %s: %w", path, err)
	}
	return ParseIndex(raw)
}

// ParseIndex parses raw index JSON into a typed catalog. The top level
// must be an object with a "collections" array; anything else is fatal.
// Within it, the decode is tolerant at two independent levels: a
// collection whose sourceInformation (its identity) cannot be parsed, or
// whose features/templates fields are not arrays, is skipped whole; a
// single feature or template entry failing validation is skipped alone,
// keeping its siblings and its collection. The catalog is maintained by
// many third parties, so an all-or-nothing parse would make the whole
// tool unusable over one bad entry.
func ParseIndex(raw []byte) (*Index, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	rawCollections, ok := doc["collections"]
	if !ok {
		return nil, fmt.Errorf("%w: missing \"collections\"", ErrInvalidFormat)
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(rawCollections, &elements); err != nil {
		return nil, fmt.Errorf("%w: \"collections\" is not an array", ErrInvalidFormat)
	}

	if err := compileSchemas(); err != nil {
		return nil, err
	}

	idx := &Index{}
	for _, element := range elements {
		collection, ok := parseCollection(element, &idx.stats)
		if !ok {
			idx.stats.SkippedCollections++
			continue
		}
		idx.collections = append(idx.collections, collection)
	}
	idx.stats.Collections = len(idx.collections)

	log.Debug("loaded devcontainer index",
		"collections", idx.stats.Collections,
		"features", idx.stats.Features,
		"templates", idx.stats.Templates,
		"skipped_collections", idx.stats.SkippedCollections,
		"skipped_features", idx.stats.SkippedFeatures,
		"skipped_templates", idx.stats.SkippedTemplates)

	return idx, nil
}

// parseCollection decodes one collection element. The bool result is
// false when the whole collection must be skipped.
func parseCollection(element json.RawMessage, stats *Stats) (Collection, bool) {
	var rc struct {
		SourceInformation json.RawMessage `json:"sourceInformation"`
		Features          json.RawMessage `json:"features"`
		Templates         json.RawMessage `json:"templates"`
	}
	if err := json.Unmarshal(element, &rc); err != nil || len(rc.SourceInformation) == 0 {
		log.Warn("skipping collection: cannot parse sourceInformation")
		return Collection{}, false
	}

	var info SourceInformation
	if err := validateEntry(sourceInfoSchema, rc.SourceInformation); err != nil {
		log.Warn("skipping collection: invalid sourceInformation", "err", err)
		return Collection{}, false
	}
	if err := json.Unmarshal(rc.SourceInformation, &info); err != nil {
		log.Warn("skipping collection: cannot decode sourceInformation", "err", err)
		return Collection{}, false
	}

	var rawFeatures []json.RawMessage
	if err := json.Unmarshal(rc.Features, &rawFeatures); err != nil {
		log.Warn("skipping collection: features is not an array", "oci_ref", info.OCIReference)
		return Collection{}, false
	}
	var rawTemplates []json.RawMessage
	if err := json.Unmarshal(rc.Templates, &rawTemplates); err != nil {
		log.Warn("skipping collection: templates is not an array", "oci_ref", info.OCIReference)
		return Collection{}, false
	}

	collection := Collection{
		SourceInformation: info,
		Features:          make([]Feature, 0, len(rawFeatures)),
		Templates:         make([]Template, 0, len(rawTemplates)),
	}

	for _, rf := range rawFeatures {
		var feature Feature
		if err := validateEntry(featureSchema, rf); err != nil {
			log.Warn("skipping feature", "oci_ref", info.OCIReference, "err", err)
			stats.SkippedFeatures++
			continue
		}
		if err := json.Unmarshal(rf, &feature); err != nil {
			log.Warn("skipping feature", "oci_ref", info.OCIReference, "err", fmt.Errorf("%w: %v", ErrSchemaViolation, err))
			stats.SkippedFeatures++
			continue
		}
		collection.Features = append(collection.Features, feature)
		stats.Features++
	}

	for _, rt := range rawTemplates {
		var template Template
		if err := validateEntry(templateSchema, rt); err != nil {
			log.Warn("skipping template", "oci_ref", info.OCIReference, "err", err)
			stats.SkippedTemplates++
			continue
		}
		if err := json.Unmarshal(rt, &template); err != nil {
			log.Warn("skipping template", "oci_ref", info.OCIReference, "err", fmt.Errorf("%w: %v", ErrSchemaViolation, err))
			stats.SkippedTemplates++
			continue
		}
		collection.Templates = append(collection.Templates, template)
		stats.Templates++
	}

	return collection, true
}

// Stats returns the parse counters for diagnostics.
func (x *Index) Stats() Stats { return x.stats }

// Collections returns all retained collections in document order.
func (x *Index) Collections() []Collection { return x.collections }

// GetCollection returns the collection with the given OCI reference.
func (x *Index) GetCollection(ociReference string) *Collection {
	for i := range x.collections {
		if x.collections[i].SourceInformation.OCIReference == ociReference {
			return &x.collections[i]
		}
	}
	return nil
}

// Features flattens all collections' features. Deprecation is a per-item
// flag for features.
func (x *Index) Features(includeDeprecated bool) []*Feature {
	var features []*Feature
	for i := range x.collections {
		for j := range x.collections[i].Features {
			feature := &x.collections[i].Features[j]
			if !includeDeprecated && feature.Deprecated {
				continue
			}
			features = append(features, feature)
		}
	}
	return features
}

// GetFeature returns the first feature with the given id, including
// deprecated ones.
func (x *Index) GetFeature(id string) *Feature {
	for _, feature := range x.Features(true) {
		if feature.ID == id {
			return feature
		}
	}
	return nil
}

// Templates flattens all collections' templates. Unlike features,
// deprecation is judged at the collection level here (see
// Collection.Deprecated); the asymmetry follows the published index.
func (x *Index) Templates(includeDeprecated bool) []*Template {
	var templates []*Template
	for i := range x.collections {
		if !includeDeprecated && x.collections[i].Deprecated() {
			continue
		}
		for j := range x.collections[i].Templates {
			templates = append(templates, &x.collections[i].Templates[j])
		}
	}
	return templates
}

// GetTemplate returns the first template with the given id, including
// deprecated ones.
func (x *Index) GetTemplate(id string) *Template {
	for _, template := range x.Templates(true) {
		if template.ID == id {
			return template
		}
	}
	return nil
}
