package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/index.schema.json
var schemaBytes []byte

var (
	compileOnce sync.Once
	compileErr  error
	printer     = message.NewPrinter(language.English)

	sourceInfoSchema *jsonschema.Schema
	featureSchema    *jsonschema.Schema
	templateSchema   *jsonschema.Schema
)

// compileSchemas compiles the embedded entry schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("index.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}

		compile := func(fragment string) *jsonschema.Schema {
			if compileErr != nil {
				return nil
			}
			s, err := c.Compile("index.schema.json#/$defs/" + fragment)
			if err != nil {
				compileErr = fmt.Errorf("compiling %s schema: %w", fragment, err)
			}
			return s
		}
		sourceInfoSchema = compile("sourceInformation")
		featureSchema = compile("feature")
		templateSchema = compile("template")
	})
	return compileErr
}

// validateEntry checks one raw index element against a compiled schema.
// A failure is an ErrSchemaViolation carrying the first concrete issue.
func validateEntry(schema *jsonschema.Schema, raw json.RawMessage) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := schema.Validate(inst); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("%w: %s", ErrSchemaViolation, firstIssue(ve))
		}
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

// firstIssue walks the validation error tree and returns the first leaf
// message with its instance location.
func firstIssue(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	msg := ve.Error()
	if ve.ErrorKind != nil {
		msg = ve.ErrorKind.LocalizedString(printer)
	}
	if len(ve.InstanceLocation) > 0 {
		return "/" + joinPointer(ve.InstanceLocation) + ": " + msg
	}
	return msg
}

func joinPointer(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "/"
		}
		out += s
	}
	return out
}
