package template

import (
	"sort"

	"github.com/dcx-dev/dcx/internal/prompt"
	"github.com/dcx-dev/dcx/internal/registry"
)

// FeatureEntries accumulates per-feature option values keyed by the
// feature's merge identity ("{id}:{majorVersion}"), for later merging
// into the generated devcontainer.json. It grows within a session and is
// merged at most once.
type FeatureEntries struct {
	entries map[string]map[string]any
}

// NewFeatureEntries returns an empty accumulator.
func NewFeatureEntries() *FeatureEntries {
	return &FeatureEntries{entries: make(map[string]map[string]any)}
}

// UseResolvedValues resolves each declared option and records only the
// values that differ from the configured default, keeping the generated
// configuration minimal. Options resolve in name order so interactive
// sessions are deterministic.
func (e *FeatureEntries) UseResolvedValues(feature *registry.Feature, r prompt.Resolver) error {
	values := make(map[string]any)
	for _, name := range sortedOptionNames(feature.Options) {
		opt := feature.Options[name]
		value, err := r.Resolve(name, opt)
		if err != nil {
			return err
		}
		if value.String() == opt.ConfiguredDefault() {
			continue
		}
		values[name] = value.JSON()
	}
	e.entries[feature.Key()] = values
	return nil
}

// UseDefaultValues records the feature with an empty option object,
// accepting all of its defaults.
func (e *FeatureEntries) UseDefaultValues(feature *registry.Feature) {
	e.entries[feature.Key()] = make(map[string]any)
}

// Len reports how many features have been accumulated. Zero means no
// "features" key needs to be introduced at all.
func (e *FeatureEntries) Len() int {
	return len(e.entries)
}

// Value returns the accumulator as a JSON-ready object.
func (e *FeatureEntries) Value() map[string]any {
	out := make(map[string]any, len(e.entries))
	for key, values := range e.entries {
		out[key] = values
	}
	return out
}

func sortedOptionNames(options map[string]registry.DevOption) []string {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
