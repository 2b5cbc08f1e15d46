package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// BoolDefault carries a boolean option default, which appears in the wild
// both as a JSON bool and as the strings "true"/"false". The original form
// is preserved for round-tripping.
type BoolDefault struct {
	value  string
	isBool bool
}

// NewBoolDefault returns a BoolDefault holding the given string form.
func NewBoolDefault(s string) BoolDefault {
	return BoolDefault{value: s}
}

func (d *BoolDefault) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		d.value = strconv.FormatBool(b)
		d.isBool = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("boolean option default must be a bool or string: %w", err)
	}
	d.value = s
	d.isBool = false
	return nil
}

func (d BoolDefault) MarshalJSON() ([]byte, error) {
	if d.isBool {
		b, _ := strconv.ParseBool(d.value)
		return json.Marshal(b)
	}
	return json.Marshal(d.value)
}

func (d BoolDefault) String() string { return d.value }

// BooleanOption is a yes/no option.
type BooleanOption struct {
	Default     BoolDefault `json:"default"`
	Description string      `json:"description,omitempty"`
}

// EnumOption is a string option restricted to a fixed set of values.
type EnumOption struct {
	Default     string   `json:"default"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum"`
}

// ProposalsOption is a free-form string option with optional suggestions.
// The default is required upstream, but enough published collections omit
// it that it has to be tolerated here.
type ProposalsOption struct {
	Default     string   `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Proposals   []string `json:"proposals,omitempty"`
}

// DevOption is a template or feature option schema. Exactly one of the
// three shape fields is set. The wire format discriminates boolean vs
// string via the "type" field; the two string shapes are distinguished
// only by the presence of "enum", so the enum shape is tried first.
type DevOption struct {
	Boolean   *BooleanOption
	Enum      *EnumOption
	Proposals *ProposalsOption
}

func (o *DevOption) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("option is not an object: %w", err)
	}

	var kind string
	if t, ok := raw["type"]; ok {
		if err := json.Unmarshal(t, &kind); err != nil {
			return fmt.Errorf("option type is not a string: %w", err)
		}
	}

	switch kind {
	case "boolean":
		if _, ok := raw["default"]; !ok {
			return fmt.Errorf("boolean option is missing a default")
		}
		var b BooleanOption
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*o = DevOption{Boolean: &b}
		return nil
	case "string":
		if _, ok := raw["enum"]; ok {
			var e EnumOption
			if err := json.Unmarshal(data, &e); err != nil {
				return err
			}
			if _, ok := raw["default"]; !ok {
				return fmt.Errorf("enum option is missing a default")
			}
			*o = DevOption{Enum: &e}
			return nil
		}
		var p ProposalsOption
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*o = DevOption{Proposals: &p}
		return nil
	default:
		return fmt.Errorf("unknown option type %q", kind)
	}
}

func (o DevOption) MarshalJSON() ([]byte, error) {
	switch {
	case o.Boolean != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*BooleanOption
		}{"boolean", o.Boolean})
	case o.Enum != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*EnumOption
		}{"string", o.Enum})
	case o.Proposals != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*ProposalsOption
		}{"string", o.Proposals})
	default:
		return nil, fmt.Errorf("empty option")
	}
}

// Kind returns the wire-level option type, "boolean" or "string".
func (o DevOption) Kind() string {
	if o.Boolean != nil {
		return "boolean"
	}
	return "string"
}

// ConfiguredDefault returns the option default as a string. Boolean
// defaults coerce to "true"/"false". A proposals option missing its
// default falls back to the first proposal, then to the empty string.
func (o DevOption) ConfiguredDefault() string {
	switch {
	case o.Boolean != nil:
		return o.Boolean.Default.String()
	case o.Enum != nil:
		return o.Enum.Default
	case o.Proposals != nil:
		if o.Proposals.Default != "" {
			return o.Proposals.Default
		}
		if len(o.Proposals.Proposals) > 0 {
			return o.Proposals.Proposals[0]
		}
		return ""
	default:
		return ""
	}
}

// Description returns the option description, empty when absent.
func (o DevOption) Description() string {
	switch {
	case o.Boolean != nil:
		return o.Boolean.Description
	case o.Enum != nil:
		return o.Enum.Description
	case o.Proposals != nil:
		return o.Proposals.Description
	default:
		return ""
	}
}

// AllowedValues returns the enum values or proposals, nil for booleans.
func (o DevOption) AllowedValues() []string {
	switch {
	case o.Enum != nil:
		return o.Enum.Enum
	case o.Proposals != nil:
		return o.Proposals.Proposals
	default:
		return nil
	}
}
