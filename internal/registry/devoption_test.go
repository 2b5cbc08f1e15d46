package registry

import (
	"encoding/json"
	"testing"
)

func TestDevOption_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		kind    string
		def     string
		wantErr bool
	}{
		{
			name: "boolean with bool default",
			raw:  `{"type": "boolean", "default": true}`,
			kind: "boolean",
			def:  "true",
		},
		{
			name: "boolean with string default",
			raw:  `{"type": "boolean", "default": "false"}`,
			kind: "boolean",
			def:  "false",
		},
		{
			name:    "boolean without default",
			raw:     `{"type": "boolean"}`,
			wantErr: true,
		},
		{
			name: "enum",
			raw:  `{"type": "string", "default": "lts", "enum": ["lts", "latest"]}`,
			kind: "string",
			def:  "lts",
		},
		{
			name:    "enum without default",
			raw:     `{"type": "string", "enum": ["lts", "latest"]}`,
			wantErr: true,
		},
		{
			name: "proposals with default",
			raw:  `{"type": "string", "default": "jammy", "proposals": ["jammy", "focal"]}`,
			kind: "string",
			def:  "jammy",
		},
		{
			name: "proposals without default falls back to first",
			raw:  `{"type": "string", "proposals": ["bookworm", "bullseye"]}`,
			kind: "string",
			def:  "bookworm",
		},
		{
			name: "free-form string without anything",
			raw:  `{"type": "string"}`,
			kind: "string",
			def:  "",
		},
		{
			name:    "unknown type",
			raw:     `{"type": "integer", "default": 3}`,
			wantErr: true,
		},
		{
			name:    "missing type",
			raw:     `{"default": "x"}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			raw:     `"string"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opt DevOption
			err := json.Unmarshal([]byte(tt.raw), &opt)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if opt.Kind() != tt.kind {
				t.Errorf("Kind = %q, want %q", opt.Kind(), tt.kind)
			}
			if opt.ConfiguredDefault() != tt.def {
				t.Errorf("ConfiguredDefault = %q, want %q", opt.ConfiguredDefault(), tt.def)
			}
		})
	}
}

// An option carrying both enum and proposals decodes as an enum; the enum
// restriction is the stronger contract.
func TestDevOption_EnumWinsOverProposals(t *testing.T) {
	raw := `{"type": "string", "default": "a", "enum": ["a", "b"], "proposals": ["c"]}`
	var opt DevOption
	if err := json.Unmarshal([]byte(raw), &opt); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if opt.Enum == nil {
		t.Fatal("Enum shape not selected")
	}
	if opt.Proposals != nil {
		t.Error("Proposals should be nil when enum is present")
	}
	got := opt.AllowedValues()
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("AllowedValues = %v, want [a b]", got)
	}
}

// Boolean defaults keep their original wire form when re-encoded.
func TestBoolDefault_RoundTrip(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"type": "boolean", "default": true}`, `{"type":"boolean","default":true}`},
		{`{"type": "boolean", "default": "true"}`, `{"type":"boolean","default":"true"}`},
	}

	for _, tt := range tests {
		var opt DevOption
		if err := json.Unmarshal([]byte(tt.raw), &opt); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		out, err := json.Marshal(opt)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		if string(out) != tt.want {
			t.Errorf("Marshal = %s, want %s", out, tt.want)
		}
	}
}
