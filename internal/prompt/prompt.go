// Package prompt resolves template and feature option values, either
// from configured defaults or interactively.
package prompt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dcx-dev/dcx/internal/registry"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// Value is a resolved option value, either a bool or a string.
type Value struct {
	isBool bool
	b      bool
	s      string
}

// BoolValue wraps a boolean resolution.
func BoolValue(b bool) Value { return Value{isBool: true, b: b} }

// StringValue wraps a string resolution.
func StringValue(s string) Value { return Value{s: s} }

// String renders the value the way it is compared against configured
// defaults and stored in the template context.
func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// JSON returns the value with its native JSON type.
func (v Value) JSON() any {
	if v.isBool {
		return v.b
	}
	return v.s
}

// Resolver maps an option schema to a resolved value.
type Resolver interface {
	Resolve(name string, opt registry.DevOption) (Value, error)
}

// Defaults resolves every option to its configured default without
// consulting the user. Used in non-interactive mode.
type Defaults struct{}

func (Defaults) Resolve(name string, opt registry.DevOption) (Value, error) {
	def := opt.ConfiguredDefault()
	if opt.Boolean != nil {
		if b, err := strconv.ParseBool(def); err == nil {
			return BoolValue(b), nil
		}
		// A malformed boolean default still resolves; collections with
		// sloppy manifests must not break non-interactive runs.
		return StringValue(def), nil
	}
	return StringValue(def), nil
}

// Prompter renders a single prompt round. The terminal implementation
// lives in this package; tests substitute their own.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
	Select(message string, options []string, cursor int) (string, error)
	Input(message, def string, suggestions []string) (string, error)
}

// Interactive resolves options by prompting.
type Interactive struct {
	Prompter Prompter
}

func (r Interactive) Resolve(name string, opt registry.DevOption) (Value, error) {
	def := opt.ConfiguredDefault()

	switch {
	case opt.Boolean != nil:
		message := opt.Boolean.Description
		if message == "" {
			message = fmt.Sprintf("Include %s?", name)
		}
		defValue, err := strconv.ParseBool(def)
		if err != nil {
			return Value{}, fmt.Errorf("option %s: invalid boolean default %q", name, def)
		}
		result, err := r.Prompter.Confirm(message, defValue)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(result), nil

	case opt.Enum != nil:
		message := opt.Enum.Description
		if message == "" {
			message = fmt.Sprintf("Choose value for %s:", name)
		}
		cursor := 0
		for i, v := range opt.Enum.Enum {
			if v == def {
				cursor = i
				break
			}
		}
		result, err := r.Prompter.Select(message, opt.Enum.Enum, cursor)
		if err != nil {
			return Value{}, err
		}
		return StringValue(result), nil

	case opt.Proposals != nil:
		message := opt.Proposals.Description
		if message == "" {
			message = fmt.Sprintf("What value for %s?", name)
		}
		var suggestions []string
		if len(opt.Proposals.Proposals) > 0 {
			suggestions = SuggestionList(def, opt.Proposals.Proposals)
		}
		result, err := r.Prompter.Input(message, def, suggestions)
		if err != nil {
			return Value{}, err
		}
		return StringValue(result), nil

	default:
		return Value{}, fmt.Errorf("option %s: empty schema", name)
	}
}

// SuggestionList prepends the default to the proposals when it is
// non-empty and not already present, so a stored default stays reachable
// even when it matches none of them.
func SuggestionList(def string, proposals []string) []string {
	if def == "" {
		return proposals
	}
	for _, p := range proposals {
		if p == def {
			return proposals
		}
	}
	out := make([]string, 0, len(proposals)+1)
	out = append(out, def)
	out = append(out, proposals...)
	return out
}
