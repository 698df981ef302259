package lesson

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// payloadSchema describes the minimum shape a lesson payload must have
// before the client accepts it from the stream. The backend is trusted
// for content, not for structure.
var payloadSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"lesson": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":      map[string]any{"type": "string"},
				"paragraphs": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []any{"title", "paragraphs"},
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":       map[string]any{"type": "integer"},
					"type":     map[string]any{"enum": []any{"mcq", "short"}},
					"question": map[string]any{"type": "string"},
				},
				"required": []any{"id", "type", "question"},
			},
		},
		"vocabs": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"term":    map[string]any{"type": "string"},
					"meaning": map[string]any{"type": "string"},
				},
				"required": []any{"term", "meaning"},
			},
		},
	},
	"required": []any{"lesson", "questions", "vocabs"},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		defBytes, err := json.Marshal(payloadSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://lesson-payload.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ValidatePayload checks a raw lesson payload against the schema.
func ValidatePayload(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := compiled()
	if err != nil {
		return fmt.Errorf("compile lesson schema: %w", err)
	}

	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("lesson payload validation failed: %w", err)
	}
	return nil
}
