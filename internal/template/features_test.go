package template

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dcx-dev/dcx/internal/prompt"
	"github.com/dcx-dev/dcx/internal/registry"
)

// mapResolver resolves options from a fixed name->value table, recording
// the order in which it was asked.
type mapResolver struct {
	values map[string]prompt.Value
	asked  []string
}

func (r *mapResolver) Resolve(name string, opt registry.DevOption) (prompt.Value, error) {
	r.asked = append(r.asked, name)
	v, ok := r.values[name]
	if !ok {
		return prompt.Value{}, errors.New("unexpected option " + name)
	}
	return v, nil
}

func testFeature() *registry.Feature {
	return &registry.Feature{
		ID:           "ghcr.io/acme/features/node",
		MajorVersion: "2",
		Options: map[string]registry.DevOption{
			"version": {
				Proposals: &registry.ProposalsOption{Default: "lts", Proposals: []string{"lts", "latest"}},
			},
			"installYarn": {
				Boolean: &registry.BooleanOption{Default: registry.NewBoolDefault("false")},
			},
			"flavor": {
				Enum: &registry.EnumOption{Default: "slim", Enum: []string{"slim", "full"}},
			},
		},
	}
}

func TestUseResolvedValues_OmitsDefaults(t *testing.T) {
	r := &mapResolver{values: map[string]prompt.Value{
		"version":     prompt.StringValue("lts"),
		"installYarn": prompt.BoolValue(true),
		"flavor":      prompt.StringValue("full"),
	}}

	entries := NewFeatureEntries()
	if err := entries.UseResolvedValues(testFeature(), r); err != nil {
		t.Fatalf("UseResolvedValues error: %v", err)
	}

	want := []string{"flavor", "installYarn", "version"}
	if !reflect.DeepEqual(r.asked, want) {
		t.Errorf("resolution order = %v, want %v", r.asked, want)
	}

	entry, ok := entries.Value()["ghcr.io/acme/features/node:2"]
	if !ok {
		t.Fatalf("entry missing: %v", entries.Value())
	}
	values := entry.(map[string]any)
	// "version" matched its default and is dropped; the others differ.
	if _, ok := values["version"]; ok {
		t.Error("default-valued option must be omitted")
	}
	if values["installYarn"] != true {
		t.Errorf("installYarn = %v (%T), want true bool", values["installYarn"], values["installYarn"])
	}
	if values["flavor"] != "full" {
		t.Errorf("flavor = %v, want full", values["flavor"])
	}
}

func TestUseResolvedValues_PropagatesErrors(t *testing.T) {
	r := &mapResolver{values: map[string]prompt.Value{}}
	entries := NewFeatureEntries()
	if err := entries.UseResolvedValues(testFeature(), r); err == nil {
		t.Error("expected resolver error to propagate")
	}
	if entries.Len() != 0 {
		t.Errorf("Len = %d, want 0 after a failed resolution", entries.Len())
	}
}

func TestUseDefaultValues(t *testing.T) {
	entries := NewFeatureEntries()
	entries.UseDefaultValues(testFeature())

	if entries.Len() != 1 {
		t.Fatalf("Len = %d, want 1", entries.Len())
	}
	values := entries.Value()["ghcr.io/acme/features/node:2"].(map[string]any)
	if len(values) != 0 {
		t.Errorf("values = %v, want empty object", values)
	}
}

func TestFeatureEntries_LastWriteWins(t *testing.T) {
	feature := testFeature()
	entries := NewFeatureEntries()
	entries.UseDefaultValues(feature)

	r := &mapResolver{values: map[string]prompt.Value{
		"version":     prompt.StringValue("latest"),
		"installYarn": prompt.BoolValue(false),
		"flavor":      prompt.StringValue("slim"),
	}}
	if err := entries.UseResolvedValues(feature, r); err != nil {
		t.Fatal(err)
	}

	if entries.Len() != 1 {
		t.Fatalf("Len = %d, want 1: the same feature must not duplicate", entries.Len())
	}
	values := entries.Value()["ghcr.io/acme/features/node:2"].(map[string]any)
	if values["version"] != "latest" {
		t.Errorf("version = %v, want latest", values["version"])
	}
}
