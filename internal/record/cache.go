package record

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
)

// SchemaCache compiles the header schema and every payload schema exactly
// once and reuses the compiled validators for every Validate call (spec
// §4.3: "the schema cache is compiled once at process start").
type SchemaCache struct {
	header   *jsonschema.Schema
	payloads map[Type]*jsonschema.Schema
}

// NewSchemaCache compiles all schemas and returns the ready-to-use cache.
func NewSchemaCache() (*SchemaCache, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(headerSchemaID, bytes.NewReader([]byte(headerSchemaJSON))); err != nil {
		return nil, fmt.Errorf("record: add header schema: %w", err)
	}
	header, err := compiler.Compile(headerSchemaID)
	if err != nil {
		return nil, fmt.Errorf("record: compile header schema: %w", err)
	}

	payloads := make(map[Type]*jsonschema.Schema, len(AllTypes()))
	for _, t := range AllTypes() {
		id, doc, ok := payloadSchemaJSON(t)
		if !ok {
			continue
		}
		if err := compiler.AddResource(id, bytes.NewReader([]byte(doc))); err != nil {
			return nil, fmt.Errorf("record: add %s schema: %w", t, err)
		}
		schema, err := compiler.Compile(id)
		if err != nil {
			return nil, fmt.Errorf("record: compile %s schema: %w", t, err)
		}
		payloads[t] = schema
	}

	return &SchemaCache{header: header, payloads: payloads}, nil
}

// ValidateHeaderJSON validates raw header JSON against the header schema.
func (c *SchemaCache) ValidateHeaderJSON(raw []byte) error {
	v, err := decodeAny(raw)
	if err != nil {
		return &ggerr.SchemaError{Path: "header", Message: err.Error()}
	}
	if err := c.header.Validate(v); err != nil {
		return &ggerr.SchemaError{Path: "header", Message: err.Error()}
	}
	return nil
}

// ValidatePayloadJSON validates raw payload JSON against the schema for its
// record type. An unknown type is itself a schema error.
func (c *SchemaCache) ValidatePayloadJSON(t Type, raw []byte) error {
	schema, ok := c.payloads[t]
	if !ok {
		return &ggerr.SchemaError{Path: "header.type", Message: fmt.Sprintf("unknown record type %q", t)}
	}
	v, err := decodeAny(raw)
	if err != nil {
		return &ggerr.SchemaError{Path: "payload", Message: err.Error()}
	}
	if err := schema.Validate(v); err != nil {
		return &ggerr.SchemaError{Path: "payload", Message: err.Error()}
	}
	return nil
}
