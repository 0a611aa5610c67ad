package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Shape is a compiled JSON schema for a response body.
type Shape struct {
	name   string
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON schema document. The name identifies the schema in errors.
func CompileSchema(name string, raw []byte) (*Shape, error) {
	url := "mem://schemas/" + name + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Shape{name: name, schema: schema}, nil
}

// CompileSchemaValue compiles a schema that has already been decoded, for instance from a
// YAML document.
func CompileSchemaValue(name string, schema any) (*Shape, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", name, err)
	}
	return CompileSchema(name, raw)
}

// Validate checks data against the schema. Data may be any value that encodes to JSON.
func (s *Shape) Validate(data any) error {
	doc, err := normalize(data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

func normalize(data any) (any, error) {
	var raw []byte
	switch d := data.(type) {
	case json.RawMessage:
		raw = d
	case []byte:
		raw = d
	default:
		var err error
		if raw, err = json.Marshal(data); err != nil {
			return nil, err
		}
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
